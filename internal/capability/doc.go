// Package capability resolves the fine grained permission keys of a principal.
//
// A tenant stores roles, permissions, role links and per user overrides in four
// tables whose identity columns are named differently across deployments. The
// package discovers those names (Schema), reads the per tenant feature flag,
// computes effective permissions as (role keys ∪ allow) \ deny, caches the
// resulting Snapshot in a fresh and a stale tier and falls back to a static
// legacy role policy whenever the fine grained model is off or unreachable.
//
// Authorizer is the entry point for request pipelines, Service groups the
// administrative mutators and readers.
package capability
