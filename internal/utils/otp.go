package utils // package utils provides helper functions for codes and hashing

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"math/big"
)

// GenerateOTP returns a fresh random numeric code of the given length.  Each
// digit comes from crypto/rand, so collisions across the lifetime of one
// pending registration are not a practical concern.
func GenerateOTP(length int) (string, error) {
	digits := make([]byte, length)
	for i := range digits {
		n, err := rand.Int(rand.Reader, big.NewInt(10))
		if err != nil {
			return "", err
		}
		digits[i] = byte('0' + n.Int64())
	}
	return string(digits), nil
}

// HashOTP returns the SHA-256 hash of a verification code as a hex string.
// Only the hash is stored, so a leaked otps table does not expose live codes.
func HashOTP(code string) string {
	sum := sha256.Sum256([]byte(code))
	return hex.EncodeToString(sum[:])
}
