// Package storage is the credential store of the session layer.
//
// A Store chains three tiers: a session tier that lives as long as the
// process, a persistent tier (badger on disk, or redis when several
// processes share one login), and an in-memory fallback that absorbs
// write failures of the other two. The store is plain key/value; it
// enforces no expiry and never returns write errors to its caller.
package storage
