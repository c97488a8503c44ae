package store

import (
	"path/filepath"
	"testing"

	"github.com/roach88/vrorigins/internal/ir"
)

// createTestStore opens a fresh database in a temp dir.
func createTestStore(t *testing.T) *Store {
	t.Helper()
	path := filepath.Join(t.TempDir(), "test.db")
	s, err := Open(path)
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func squeezeRecords() []ir.BindingOriginData {
	return []ir.BindingOriginData{
		{
			LocalizedControllerType: "Index Controller",
			LocalizedHand:           "Left Hand",
			LocalizedInputSource:    "Grip",
			DevicePathName:          "/user/hand/left",
			InputPathName:           "/input/grip",
			ModeName:                "grab",
			SlotName:                "grab",
			InputSourceType:         "grip",
		},
	}
}

// createTestResolution builds a successful resolution with a real digest.
func createTestResolution(t *testing.T, id string, seq int64, set, action string) ir.Resolution {
	t.Helper()
	records := squeezeRecords()
	digest, err := ir.ResultDigest(set, action, records)
	if err != nil {
		t.Fatalf("ResultDigest() failed: %v", err)
	}
	return ir.Resolution{
		ID:        id,
		Seq:       seq,
		ActionSet: set,
		Action:    action,
		Policy:    "omit_origin",
		Outcome:   ir.OutcomeOK,
		Records:   records,
		Digest:    digest,
	}
}
