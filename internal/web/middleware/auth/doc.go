// Package auth provides the principal and permission middleware of the web application.
//
// Authentication happens upstream: the gateway forwards the verified caller in
// the X-User-Id, X-Tenant-Id and X-Legacy-Role headers. Middleware parses them
// into a capability.Principal stored in fiber.Locals and answers 401 when any
// of them is missing or malformed. RequirePermission then asks the capability
// service for a decision and answers 403 on a denial.
//
// Usage:
//
//	api := app.Group("/api", auth.Middleware)
//	api.Get("/reports", auth.RequirePermission(caps, "reportes.ver"), reports)
package auth
