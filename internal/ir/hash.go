package ir

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
)

// Domain prefixes for content-addressed digests.
// Version suffix enables future algorithm migration.
const (
	DomainOrigins = "vrorigins/origins/v1"
)

// hashWithDomain computes SHA-256 hash with domain separation.
// Format: SHA256(domain + 0x00 + data)
func hashWithDomain(domain string, data []byte) string {
	h := sha256.New()
	h.Write([]byte(domain))
	h.Write([]byte{0x00})
	h.Write(data)
	return hex.EncodeToString(h.Sum(nil))
}

// ResultDigest computes a stable digest for a resolved origin list.
// Two resolutions of the same action with equal records (same order, same
// field values) produce the same digest.
func ResultDigest(actionSet, action string, records []BindingOriginData) (string, error) {
	if records == nil {
		records = []BindingOriginData{}
	}
	canonical, err := MarshalCanonical(map[string]any{
		"action_set": actionSet,
		"action":     action,
		"origins":    records,
	})
	if err != nil {
		return "", fmt.Errorf("ResultDigest: failed to marshal: %w", err)
	}
	return hashWithDomain(DomainOrigins, canonical), nil
}
