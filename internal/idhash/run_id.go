package idhash

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
)

// ComputeRunID computes a deterministic run_id for one simulation run.
// Formula: SHA256(deal_id|runs|horizon|exit_method|seed)
// Returns hex-encoded hash (64 characters).
func ComputeRunID(dealID string, runs, horizonYears int, exitMethod string, seed int64) string {
	data := fmt.Sprintf("%s|%d|%d|%s|%d",
		dealID,
		runs,
		horizonYears,
		exitMethod,
		seed,
	)

	hash := sha256.Sum256([]byte(data))
	return hex.EncodeToString(hash[:])
}
