package store

import (
	"context"
	"fmt"

	"github.com/roach88/vrorigins/internal/ir"
)

// WriteResolution appends a resolution record.
// Uses ON CONFLICT(id) DO NOTHING so retried writes of the same ID are
// ignored.
//
// Records are stored as canonical JSON. Failed resolutions store an empty
// record list and no digest regardless of what res carries.
func (s *Store) WriteResolution(ctx context.Context, res ir.Resolution) error {
	if res.ID == "" {
		return fmt.Errorf("write resolution: empty id")
	}
	if res.Outcome == "" {
		return fmt.Errorf("write resolution %s: empty outcome", res.ID)
	}

	records := res.Records
	digest := res.Digest
	if !res.Succeeded() {
		records = nil
		digest = ""
	}

	recordsJSON, err := marshalRecords(records)
	if err != nil {
		return fmt.Errorf("write resolution: %w", err)
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO resolutions
		(id, seq, action_set, action, policy, outcome, records, record_count, digest)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO NOTHING
	`,
		res.ID,
		res.Seq,
		res.ActionSet,
		res.Action,
		res.Policy,
		res.Outcome,
		recordsJSON,
		len(records),
		digest,
	)
	if err != nil {
		return fmt.Errorf("write resolution: %w", err)
	}
	return nil
}

// BindingUILaunch is one request to open the binding configuration UI.
type BindingUILaunch struct {
	ID            string `json:"id"`
	Seq           int64  `json:"seq"`
	ActionSet     string `json:"action_set,omitempty"`
	Device        string `json:"device"`
	ShowOnDesktop bool   `json:"show_on_desktop"`
	Outcome       string `json:"outcome"`
}

// WriteBindingUILaunch appends a binding UI launch record.
func (s *Store) WriteBindingUILaunch(ctx context.Context, l BindingUILaunch) error {
	if l.ID == "" {
		return fmt.Errorf("write binding ui launch: empty id")
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO binding_ui_launches
		(id, seq, action_set, device, show_on_desktop, outcome)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO NOTHING
	`,
		l.ID,
		l.Seq,
		l.ActionSet,
		l.Device,
		l.ShowOnDesktop,
		l.Outcome,
	)
	if err != nil {
		return fmt.Errorf("write binding ui launch: %w", err)
	}
	return nil
}
