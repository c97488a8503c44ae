package command

import (
	"context"
	"fmt"

	"github.com/roach88/vrorigins/internal/origins"
)

// ReplayResult compares one stored resolution with a fresh one.
type ReplayResult struct {
	ActionSet    string `json:"action_set"`
	Action       string `json:"action"`
	StoredID     string `json:"stored_id"`
	StoredDigest string `json:"stored_digest"`
	Digest       string `json:"digest,omitempty"`
	Outcome      string `json:"outcome"`
	Unchanged    bool   `json:"unchanged"`
}

// Replay re-resolves the latest successful resolution of every stored
// action and reports whether the current bindings still produce the same
// digest. The fresh resolutions are recorded like any other call.
func (s *Service) Replay(ctx context.Context) ([]ReplayResult, error) {
	if s.history == nil {
		return nil, fmt.Errorf("replay: no history store configured")
	}

	latest, err := s.history.LatestSuccessful(ctx)
	if err != nil {
		return nil, fmt.Errorf("replay: %w", err)
	}

	results := make([]ReplayResult, 0, len(latest))
	for _, stored := range latest {
		fresh, err := s.Resolve(ctx, stored.ActionSet, stored.Action)
		if origins.CodeOf(err) == origins.ErrCodeCanceled {
			return nil, fmt.Errorf("replay: %w", err)
		}
		results = append(results, ReplayResult{
			ActionSet:    stored.ActionSet,
			Action:       stored.Action,
			StoredID:     stored.ID,
			StoredDigest: stored.Digest,
			Digest:       fresh.Digest,
			Outcome:      fresh.Outcome,
			Unchanged:    err == nil && fresh.Digest == stored.Digest,
		})
	}

	s.logger.Info("history replayed", "actions", len(results))
	return results, nil
}
