// Package auth holds the client-side session primitives of the gamenet
// admin panel: the credential and user model, the token lifecycle checks
// used to decide when a session must be refreshed, input sanitization for
// the login form, and the sentinel errors surfaced to the UI layer.
//
// Tokens are never verified here. Signature validation belongs to the
// server; this package only inspects the payload for its expiry claim and
// treats anything it cannot read as expired.
package auth
