// Package session is the auth session controller of the dashboard client.
//
// A Controller owns the active credential. It is the only writer of
// credential transitions (bootstrap, login, logout, refresh, profile
// update) and publishes each transition as an immutable State snapshot
// computed by the pure Reduce function. Subscribers see every transition in
// order and never observe a half-applied one, such as a token without a user.
//
// The lifecycle is
//
//	Unauthenticated -> Authenticating -> Authenticated -> Unauthenticated
//
// with the Loading flag marking the not-yet-determined phases (startup and
// profile re-validation).
//
// While authenticated, a background loop re-inspects the token every
// CheckInterval (5 minutes by default). A token inside the refresh window
// is refreshed. A failed refresh, or a token found already expired, forces
// a logout. Manual RefreshToken calls and the loop share a singleflight
// group, so concurrent refreshes collapse into one request.
package session
