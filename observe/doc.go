// Package observe provides the logging, tracing and metrics used by the
// session layer.
//
// Every session operation (bootstrap, login, logout, refresh, profile
// update) runs through a Middleware that opens a span, records duration and
// outcome counters, and writes one structured log line. Sensitive fields
// such as passwords and tokens are redacted before they reach any sink.
package observe
