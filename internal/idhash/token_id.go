package idhash

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
)

// ComputeTokenID computes a deterministic token id using SHA256.
// Formula: SHA256(chain|contract_address)
// Returns hex-encoded hash (64 characters).
func ComputeTokenID(chain, contractAddress string) string {
	data := fmt.Sprintf("%s|%s", chain, contractAddress)

	hash := sha256.Sum256([]byte(data))
	return hex.EncodeToString(hash[:])
}
