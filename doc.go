// Package main provides the entry point of capcore, the permission resolution
// service of the multi tenant web suite. It serves effective permission
// snapshots and authorization decisions over HTTP and offers maintenance
// commands for migrations, the permission catalog and the tenant feature flag.
package main
