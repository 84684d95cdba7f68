package auth

import (
	"crypto/rand"
	"encoding/base64"
	"math/big"
	"time"

	"github.com/google/uuid"
)

const SessionExpiry = 7 * 24 * time.Hour

// Unambiguous alphabet for invite codes: no 0/O, 1/I/L.
const inviteAlphabet = "ABCDEFGHJKMNPQRSTUVWXYZ23456789"

const InviteCodeLength = 8

// GenerateKey returns an opaque token key: 32 random bytes, URL-safe base64.
func GenerateKey() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return base64.URLEncoding.EncodeToString(b), nil
}

func NewSessionID() string {
	return uuid.NewString()
}

func GenerateInviteCode() (string, error) {
	code := make([]byte, InviteCodeLength)
	max := big.NewInt(int64(len(inviteAlphabet)))
	for i := range code {
		n, err := rand.Int(rand.Reader, max)
		if err != nil {
			return "", err
		}
		code[i] = inviteAlphabet[n.Int64()]
	}
	return string(code), nil
}
