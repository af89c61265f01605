package utils

import (
	gonanoid "github.com/matoous/go-nanoid/v2"
)

const idAlphabet = "0123456789ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz"

// GenerateLinkToken returns a URL-safe one-time token for calendar
// connect links.
func GenerateLinkToken() (string, error) {
	return gonanoid.Generate(idAlphabet, 21)
}
