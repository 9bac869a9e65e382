// Package apiclient talks to the gamenet dashboard auth endpoints.
//
// The client covers four calls:
//
//	POST /auth/login    {email, password, remember_me} -> {token, user, user_type, expires_at}
//	POST /auth/refresh  Bearer token, {remember_me}    -> {token, expires_at}
//	GET  /profile       Bearer token                   -> {user}
//	POST /auth/logout   Bearer token
//
// Every call runs through a resilience.Executor: each attempt is bounded by
// the configured timeout (30s by default) and transient failures are retried
// up to three attempts in total with exponential backoff. Transient means a
// transport error, an attempt timeout, or a 408, 429 or 5xx response. Other
// 4xx responses, including 401 and 403, fail immediately.
//
// Non-2xx responses surface as *StatusError, which matches the sentinel
// errors of this package through errors.Is.
package apiclient
