// Package permission resolves "resource:action" grants for the dashboard.
//
// A permission string has exactly one colon with a non-empty resource and
// action on either side. The only wildcard is the literal action "*":
// "users:*" grants every action on users. There is no pattern matching
// beyond that.
//
// Resolution is pure. A Set built from the same strings in any order yields
// the same answers. Malformed strings are kept for exact membership checks
// but are dropped from grouped views such as GroupByResource.
//
// On top of the resolver the package offers role defaults (DefaultsFor),
// navigation filtering (FilterNav) and HTTP route guards
// (RequirePermission, RequireResource).
package permission
