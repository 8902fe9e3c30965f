// Package normalize provides canonical forms for user-supplied field values.
//
// Every write path should normalize through these helpers so that lookups
// (especially case-insensitive email matching) behave consistently.
package normalize

import "strings"

// Email lowercases and trims an email address. Emails are always stored and
// compared in this form.
func Email(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// Name trims surrounding whitespace but preserves case.
func Name(s string) string {
	return strings.TrimSpace(s)
}

// AuthMethod lowercases and trims an auth method label.
func AuthMethod(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// Status lowercases and trims a status label.
func Status(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// QueryParam trims a query or form parameter.
func QueryParam(s string) string {
	return strings.TrimSpace(s)
}
