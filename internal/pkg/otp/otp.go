// Package otp generates the numeric one-time passwords mailed to users.
package otp

import (
	"crypto/rand"
	"fmt"
	"math/big"
)

const (
	Length  = 6
	lowest  = 100000
	highest = 999999
)

// Generate returns a code drawn uniformly from [100000, 999999].
func Generate() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(highest-lowest+1))
	if err != nil {
		return "", fmt.Errorf("generate otp: %w", err)
	}
	return fmt.Sprintf("%d", n.Int64()+lowest), nil
}

// Valid reports whether code looks like something Generate could have produced.
func Valid(code string) bool {
	if len(code) != Length {
		return false
	}
	for _, r := range code {
		if r < '0' || r > '9' {
			return false
		}
	}
	return code[0] != '0'
}
