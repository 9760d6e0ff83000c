package model

import "strings"

// Credentials are supplied per session and never persisted.
type Credentials struct {
	Username string
	Password string
}

// Normalize trims surrounding whitespace the way form input is cleaned up.
func (c Credentials) Normalize() Credentials {
	return Credentials{Username: strings.TrimSpace(c.Username), Password: strings.TrimSpace(c.Password)}
}

// Empty reports whether any of the credential fields is missing.
func (c Credentials) Empty() bool {
	return c.Username == "" || c.Password == ""
}
