package main

import (
	"os"

	"github.com/isl-service/capcore/app"
)

func main() {
	err := app.Execute()
	if err != nil {
		os.Exit(1)
	}
}
