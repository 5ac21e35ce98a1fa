package utils

import "strings"

// Returns nil on an empty or all whitespace string
func StringOrNil(s string) *string {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	return &s
}

// Normalize lowercases and trims keys compared case-insensitively, like emails and sport names.
func Normalize(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}
