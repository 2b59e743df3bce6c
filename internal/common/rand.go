package common

import (
	"crypto/rand"
	"encoding/base64"
)

// RandBytes returns size bytes read from the operating system CSPRNG.
func RandBytes(size int) ([]byte, error) {
	b := make([]byte, size)
	if _, err := rand.Read(b); err != nil {
		return nil, err
	}
	return b, nil
}

// RandBase64String returns size random bytes encoded with standard base64.
// The encoded string is longer than size (4 characters per 3 bytes, padded).
func RandBase64String(size int) (string, error) {
	b, err := RandBytes(size)
	if err != nil {
		return "", err
	}
	return base64.StdEncoding.EncodeToString(b), nil
}
