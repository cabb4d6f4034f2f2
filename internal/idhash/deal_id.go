package idhash

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"

	"github.com/mr-tron/base58"
)

// ComputeDealID computes a deterministic deal_id using SHA256.
// Formula: SHA256(name|address|purchase_price_cents|created_at)
// Returns hex-encoded hash (64 characters).
func ComputeDealID(name, address string, purchasePrice float64, createdAt int64) string {
	data := fmt.Sprintf("%s|%s|%d|%d",
		name,
		address,
		int64(purchasePrice*100),
		createdAt,
	)

	hash := sha256.Sum256([]byte(data))
	return hex.EncodeToString(hash[:])
}

// ShortID derives the short, paste-friendly form of a hex ID: base58
// over the first 8 bytes. Invalid hex yields an empty string.
func ShortID(hexID string) string {
	raw, err := hex.DecodeString(hexID)
	if err != nil || len(raw) < 8 {
		return ""
	}
	return base58.Encode(raw[:8])
}
