package utils

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"
)

// SumSHA256 returns the SHA-256 checksum of the provided data.
func SumSHA256(data []byte) [32]byte {
	return sha256.Sum256(data)
}

// HexSHA256 returns the hex-encoded SHA-256 of parts joined by a NUL separator.
func HexSHA256(parts ...string) string {
	sum := SumSHA256([]byte(strings.Join(parts, "\x00")))
	return hex.EncodeToString(sum[:])
}
