package room

import (
	"math/rand"
	"strings"
)

const codeLength = 4

// DefaultMaxCodeAttempts bounds how many random codes are tried before
// giving up with ErrCodeSpaceExhausted.
const DefaultMaxCodeAttempts = 100

// Alphabet omits I, O, 0 and 1 so codes survive being read aloud.
const alphabet = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"

// generateCode returns a code from next for which taken reports false,
// trying at most attempts codes.
func generateCode(taken func(string) bool, attempts int, next func() string) (string, error) {
	for n := 0; n < attempts; n++ {
		code := next()
		if !taken(code) {
			return code, nil
		}
	}
	return "", ErrCodeSpaceExhausted
}

func randomCode() string {
	b := make([]byte, codeLength)
	for i := range b {
		b[i] = alphabet[rand.Intn(len(alphabet))]
	}
	return string(b)
}

// NormalizeCode makes user-typed codes comparable with issued ones.
func NormalizeCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}
