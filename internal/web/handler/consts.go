package handler

const (
	// APIPath is the prefix of every JSON route.
	APIPath = "/api"

	// RouterRootPath is the root path of a route group.
	RouterRootPath = "/"

	// ErrNilRouterFatalLogMsg is used if the router or the capability service is nil.
	ErrNilRouterFatalLogMsg = "router or capability service is nil"
)
