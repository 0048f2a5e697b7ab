package service

import "strings"

// NormalizeEmail lowercases and trims an address before lookups and inserts.
// Provider specific aliasing (dots, +suffix) is kept since seniors receive mail at the exact address.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
