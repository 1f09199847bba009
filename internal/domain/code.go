package domain

import (
	"crypto/rand"
	"strings"
)

const (
	codeAlphabet = "0123456789ABCDEFGHIJKLMNOPQRSTUVWXYZ"
	// largest multiple of len(codeAlphabet) that fits in a byte
	codeByteLimit = 252

	DefaultCodeLength = 6
)

// GenerateCode returns a random uppercase alphanumeric invite code of the
// given length. Uniqueness is enforced by the store, not here.
func GenerateCode(length int) string {
	if length <= 0 {
		length = DefaultCodeLength
	}

	code := make([]byte, 0, length)
	buf := make([]byte, length*2)
	for len(code) < length {
		// crypto/rand.Read does not return an error since Go 1.24
		_, _ = rand.Read(buf)
		for _, b := range buf {
			if b >= codeByteLimit {
				continue
			}
			code = append(code, codeAlphabet[int(b)%len(codeAlphabet)])
			if len(code) == length {
				break
			}
		}
	}
	return string(code)
}

// NormalizeCode uppercases and trims user supplied codes.
func NormalizeCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}
