package pkg

import (
	"crypto/rand"
	"fmt"
	"math/big"
	"strings"

	"github.com/google/uuid"
)

const (
	sessionCodeAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
	sessionCodeHalf     = 4
)

// GenerateSessionCode - returns a code shaped like "K3QZ-7MBA".
func GenerateSessionCode() (string, error) {
	var sb strings.Builder

	alphabetSize := big.NewInt(int64(len(sessionCodeAlphabet)))
	for i := range 2 * sessionCodeHalf {
		if i == sessionCodeHalf {
			sb.WriteByte('-')
		}

		n, err := rand.Int(rand.Reader, alphabetSize)
		if err != nil {
			return "", fmt.Errorf("failed to read random: %w", err)
		}

		sb.WriteByte(sessionCodeAlphabet[n.Int64()])
	}

	return sb.String(), nil
}

// GeneratePlayerID - generates a new opaque player token.
func GeneratePlayerID() string {
	return uuid.NewString()
}
