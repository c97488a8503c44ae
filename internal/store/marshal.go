package store

import (
	"encoding/json"
	"fmt"

	"github.com/roach88/vrorigins/internal/ir"
)

// marshalRecords converts resolved records to canonical JSON TEXT.
// A nil slice is stored as an empty array.
func marshalRecords(records []ir.BindingOriginData) (string, error) {
	if records == nil {
		records = []ir.BindingOriginData{}
	}
	data, err := ir.MarshalCanonical(records)
	if err != nil {
		return "", fmt.Errorf("marshal records: %w", err)
	}
	return string(data), nil
}

// unmarshalRecords parses stored records. Always returns a non-nil slice.
func unmarshalRecords(data string) ([]ir.BindingOriginData, error) {
	records := []ir.BindingOriginData{}
	if data == "" || data == "[]" {
		return records, nil
	}
	if err := json.Unmarshal([]byte(data), &records); err != nil {
		return nil, fmt.Errorf("unmarshal records: %w", err)
	}
	return records, nil
}
