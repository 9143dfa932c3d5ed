package domain

import (
	"crypto/rand"
	"fmt"
	"math/big"
	"strings"
)

const (
	InviteCodeLen  = 8
	inviteAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
)

// NewInviteCode mints a crypto-random 8 character uppercase
// alphanumeric code. Uniqueness is the database's job; collisions make
// the caller mint again.
func NewInviteCode() (string, error) {
	max := big.NewInt(int64(len(inviteAlphabet)))
	b := make([]byte, InviteCodeLen)
	for i := range b {
		n, err := rand.Int(rand.Reader, max)
		if err != nil {
			return "", fmt.Errorf("generate invite code: %w", err)
		}
		b[i] = inviteAlphabet[n.Int64()]
	}
	return string(b), nil
}

// NormalizeInviteCode uppercases and trims user input. Returns "" when
// the result is not a plausible code, the caller answers with a
// validation error without touching storage.
func NormalizeInviteCode(s string) string {
	code := strings.ToUpper(strings.TrimSpace(s))
	if len(code) != InviteCodeLen {
		return ""
	}
	for _, r := range code {
		if !strings.ContainsRune(inviteAlphabet, r) {
			return ""
		}
	}
	return code
}
