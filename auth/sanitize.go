package auth

import (
	"regexp"
	"strings"
)

var (
	scriptBlockPattern = regexp.MustCompile(`(?is)<script\b[^>]*>.*?</script\s*>`)
	scriptURIPattern   = regexp.MustCompile(`(?i)\b(javascript|vbscript|data)\s*:`)
	eventAttrPattern   = regexp.MustCompile(`(?i)\bon[a-z]+\s*=`)
)

// SanitizeInput strips script-like fragments and angle brackets from s and
// trims surrounding whitespace.
func SanitizeInput(s string) string {
	s = scriptBlockPattern.ReplaceAllString(s, "")
	s = scriptURIPattern.ReplaceAllString(s, "")
	s = eventAttrPattern.ReplaceAllString(s, "")
	s = strings.NewReplacer("<", "", ">", "").Replace(s)
	return strings.TrimSpace(s)
}

// LoginCredentials is the raw login form input.
type LoginCredentials struct {
	Email    string
	Password string
}

// Sanitized returns the credentials ready to send: the email is cleaned,
// trimmed and lowercased. The password is passed through untouched so that
// legitimate special characters survive.
func (c LoginCredentials) Sanitized() LoginCredentials {
	return LoginCredentials{
		Email:    strings.ToLower(SanitizeInput(c.Email)),
		Password: c.Password,
	}
}

// Validate reports ErrMissingCredentials when either field is empty.
func (c LoginCredentials) Validate() error {
	if c.Email == "" || c.Password == "" {
		return ErrMissingCredentials
	}
	return nil
}
