// Package lockout implements the login attempt limiter.
//
// Every failed login appends a timestamp. Timestamps older than the window
// (15 minutes by default) are pruned whenever the record is read or
// written. Once the trailing window holds MaxAttempts failures (5 by
// default) further logins are blocked locally, without a network call,
// until enough of those failures age out. A successful login clears the
// record.
//
// The record lives in the persistent tier of a storage.Store, so a lockout
// survives a restart whether or not the user chose "remember me".
package lockout
