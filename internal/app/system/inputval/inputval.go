// Package inputval validates the shape of user-supplied input values.
//
// These checks are format-only: they say whether a value could be valid,
// not whether it refers to anything that exists.
package inputval

import (
	"net/url"
	"strings"
)

// IsValidEmail reports whether s looks like a plausible email address.
// The rules are stricter than a bare "contains @" check but deliberately
// permissive about the domain (single-label domains like "localhost" are
// allowed for dev/test environments). Display-name forms such as
// "User <user@example.com>" are rejected.
func IsValidEmail(s string) bool {
	s = strings.TrimSpace(s)
	if s == "" {
		return false
	}

	at := strings.LastIndex(s, "@")
	if at <= 0 || at == len(s)-1 {
		return false
	}
	local, domain := s[:at], s[at+1:]

	if !validDotAtom(local) || !validDotAtom(domain) {
		return false
	}
	return true
}

// validDotAtom checks a dot-separated email part: no spaces or angle
// brackets, no leading/trailing dot, no consecutive dots.
func validDotAtom(part string) bool {
	if part == "" {
		return false
	}
	if strings.HasPrefix(part, ".") || strings.HasSuffix(part, ".") {
		return false
	}
	if strings.Contains(part, "..") {
		return false
	}
	for _, r := range part {
		switch r {
		case ' ', '\t', '<', '>', '@', ',', ';', '"':
			return false
		}
	}
	return true
}

// allowedAuthMethods are the sign-in methods this app supports.
var allowedAuthMethods = []string{"internal", "google"}

// IsValidAuthMethod reports whether the given auth method is supported.
// Comparison is case-insensitive and whitespace-tolerant.
func IsValidAuthMethod(method string) bool {
	m := strings.ToLower(strings.TrimSpace(method))
	for _, allowed := range allowedAuthMethods {
		if m == allowed {
			return true
		}
	}
	return false
}

// AllowedAuthMethodsList returns the supported auth methods in display order.
func AllowedAuthMethodsList() []string {
	out := make([]string, len(allowedAuthMethods))
	copy(out, allowedAuthMethods)
	return out
}

// IsValidHTTPURL reports whether s is an absolute http(s) URL.
func IsValidHTTPURL(s string) bool {
	s = strings.TrimSpace(s)
	if s == "" {
		return false
	}
	u, err := url.Parse(s)
	if err != nil {
		return false
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return false
	}
	return u.Host != ""
}

// IsValidObjectID reports whether s is a 24-character hex string
// (the textual form of a Mongo ObjectID).
func IsValidObjectID(s string) bool {
	s = strings.TrimSpace(s)
	if len(s) != 24 {
		return false
	}
	for _, r := range s {
		switch {
		case r >= '0' && r <= '9':
		case r >= 'a' && r <= 'f':
		case r >= 'A' && r <= 'F':
		default:
			return false
		}
	}
	return true
}
