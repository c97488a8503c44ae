package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/roach88/vrorigins/internal/ir"
)

const resolutionColumns = `id, seq, action_set, action, policy, outcome, records, digest`

// ReadResolution retrieves a single resolution by ID.
// Returns sql.ErrNoRows if not found.
func (s *Store) ReadResolution(ctx context.Context, id string) (ir.Resolution, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT `+resolutionColumns+`
		FROM resolutions
		WHERE id = ?
	`, id)
	return scanResolution(row)
}

// ListResolutions returns the most recent resolutions in ascending seq
// order. limit <= 0 returns every row.
//
// Returns an empty slice (not nil) when the history is empty.
func (s *Store) ListResolutions(ctx context.Context, limit int) ([]ir.Resolution, error) {
	query := `
		SELECT ` + resolutionColumns + ` FROM (
			SELECT ` + resolutionColumns + `
			FROM resolutions
			ORDER BY seq DESC, id COLLATE BINARY DESC
			LIMIT ?
		)
		ORDER BY seq ASC, id COLLATE BINARY ASC
	`
	if limit <= 0 {
		limit = -1
	}
	rows, err := s.db.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("query resolutions: %w", err)
	}
	return collectResolutions(rows)
}

// ListResolutionsFor returns every resolution of one action, ordered by seq.
func (s *Store) ListResolutionsFor(ctx context.Context, actionSet, action string) ([]ir.Resolution, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT `+resolutionColumns+`
		FROM resolutions
		WHERE action_set = ? AND action = ?
		ORDER BY seq ASC, id COLLATE BINARY ASC
	`, actionSet, action)
	if err != nil {
		return nil, fmt.Errorf("query resolutions for %s %s: %w", actionSet, action, err)
	}
	return collectResolutions(rows)
}

// LatestSuccessful returns the most recent successful resolution of each
// distinct (action_set, action) pair, ordered by that resolution's seq.
func (s *Store) LatestSuccessful(ctx context.Context) ([]ir.Resolution, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT `+resolutionColumns+`
		FROM resolutions r
		WHERE outcome = ?
		  AND seq = (
			SELECT MAX(seq) FROM resolutions
			WHERE action_set = r.action_set AND action = r.action AND outcome = ?
		  )
		ORDER BY seq ASC, id COLLATE BINARY ASC
	`, ir.OutcomeOK, ir.OutcomeOK)
	if err != nil {
		return nil, fmt.Errorf("query latest resolutions: %w", err)
	}
	return collectResolutions(rows)
}

// MaxSeq returns the highest stored seq across both tables, or 0 when the
// store is empty. Used to resume the logical clock after a restart.
func (s *Store) MaxSeq(ctx context.Context) (int64, error) {
	var seq int64
	err := s.db.QueryRowContext(ctx, `
		SELECT COALESCE(MAX(seq), 0) FROM (
			SELECT seq FROM resolutions
			UNION ALL
			SELECT seq FROM binding_ui_launches
		)
	`).Scan(&seq)
	if err != nil {
		return 0, fmt.Errorf("query max seq: %w", err)
	}
	return seq, nil
}

// ListBindingUILaunches returns every binding UI launch ordered by seq.
func (s *Store) ListBindingUILaunches(ctx context.Context) ([]BindingUILaunch, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, seq, action_set, device, show_on_desktop, outcome
		FROM binding_ui_launches
		ORDER BY seq ASC, id COLLATE BINARY ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("query binding ui launches: %w", err)
	}
	defer rows.Close()

	launches := []BindingUILaunch{}
	for rows.Next() {
		var l BindingUILaunch
		if err := rows.Scan(&l.ID, &l.Seq, &l.ActionSet, &l.Device, &l.ShowOnDesktop, &l.Outcome); err != nil {
			return nil, fmt.Errorf("scan binding ui launch: %w", err)
		}
		launches = append(launches, l)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate binding ui launches: %w", err)
	}
	return launches, nil
}

// scanner is satisfied by *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

func scanResolution(row scanner) (ir.Resolution, error) {
	var (
		res     ir.Resolution
		records string
	)
	if err := row.Scan(&res.ID, &res.Seq, &res.ActionSet, &res.Action, &res.Policy, &res.Outcome, &records, &res.Digest); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return ir.Resolution{}, err
		}
		return ir.Resolution{}, fmt.Errorf("scan resolution: %w", err)
	}
	decoded, err := unmarshalRecords(records)
	if err != nil {
		return ir.Resolution{}, fmt.Errorf("resolution %s: %w", res.ID, err)
	}
	res.Records = decoded
	return res, nil
}

func collectResolutions(rows *sql.Rows) ([]ir.Resolution, error) {
	defer rows.Close()

	out := []ir.Resolution{}
	for rows.Next() {
		res, err := scanResolution(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, res)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate resolutions: %w", err)
	}
	return out, nil
}
