package store

import (
	"context"
	"database/sql"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/vrorigins/internal/ir"
)

func TestWriteReadResolution(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()

	want := createTestResolution(t, "res-1", 1, "/actions/default", "/actions/default/in/squeeze")
	require.NoError(t, s.WriteResolution(ctx, want))

	got, err := s.ReadResolution(ctx, "res-1")
	require.NoError(t, err)
	assert.Equal(t, want, got)
}

func TestWriteResolution_Idempotent(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()

	res := createTestResolution(t, "res-1", 1, "/actions/default", "/actions/default/in/squeeze")
	require.NoError(t, s.WriteResolution(ctx, res))

	res.Seq = 99
	require.NoError(t, s.WriteResolution(ctx, res))

	got, err := s.ReadResolution(ctx, "res-1")
	require.NoError(t, err)
	assert.Equal(t, int64(1), got.Seq, "second write with same ID must be ignored")
}

func TestWriteResolution_FailureDropsRecords(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()

	res := createTestResolution(t, "res-1", 1, "/actions/default", "/actions/default/in/squeeze")
	res.Outcome = "QUERY_FAILED"
	require.NoError(t, s.WriteResolution(ctx, res))

	got, err := s.ReadResolution(ctx, "res-1")
	require.NoError(t, err)
	assert.Equal(t, "QUERY_FAILED", got.Outcome)
	assert.Empty(t, got.Records)
	assert.NotNil(t, got.Records)
	assert.Empty(t, got.Digest)
}

func TestWriteResolution_Rejects(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()

	assert.Error(t, s.WriteResolution(ctx, ir.Resolution{Outcome: ir.OutcomeOK}))
	assert.Error(t, s.WriteResolution(ctx, ir.Resolution{ID: "x"}))
}

func TestReadResolution_NotFound(t *testing.T) {
	s := createTestStore(t)

	_, err := s.ReadResolution(context.Background(), "missing")
	assert.True(t, errors.Is(err, sql.ErrNoRows))
}

func TestListResolutions(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()

	empty, err := s.ListResolutions(ctx, 0)
	require.NoError(t, err)
	assert.NotNil(t, empty)
	assert.Empty(t, empty)

	// Written out of seq order on purpose.
	for _, r := range []ir.Resolution{
		createTestResolution(t, "c", 3, "/actions/default", "/actions/default/in/menu"),
		createTestResolution(t, "a", 1, "/actions/default", "/actions/default/in/squeeze"),
		createTestResolution(t, "b", 2, "/actions/default", "/actions/default/in/squeeze"),
	} {
		require.NoError(t, s.WriteResolution(ctx, r))
	}

	all, err := s.ListResolutions(ctx, 0)
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, []string{"a", "b", "c"}, ids(all))

	last, err := s.ListResolutions(ctx, 2)
	require.NoError(t, err)
	assert.Equal(t, []string{"b", "c"}, ids(last))

	squeeze, err := s.ListResolutionsFor(ctx, "/actions/default", "/actions/default/in/squeeze")
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b"}, ids(squeeze))
}

func TestLatestSuccessful(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()

	failed := createTestResolution(t, "d", 4, "/actions/default", "/actions/default/in/squeeze")
	failed.Outcome = "MISALIGNED"

	for _, r := range []ir.Resolution{
		createTestResolution(t, "a", 1, "/actions/default", "/actions/default/in/squeeze"),
		createTestResolution(t, "b", 2, "/actions/default", "/actions/default/in/menu"),
		createTestResolution(t, "c", 3, "/actions/default", "/actions/default/in/squeeze"),
		failed,
	} {
		require.NoError(t, s.WriteResolution(ctx, r))
	}

	latest, err := s.LatestSuccessful(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"b", "c"}, ids(latest))
}

func TestBindingUILaunches(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.WriteBindingUILaunch(ctx, BindingUILaunch{
		ID:            "l-1",
		Seq:           5,
		Device:        "/user/hand/right",
		ShowOnDesktop: true,
		Outcome:       ir.OutcomeOK,
	}))

	launches, err := s.ListBindingUILaunches(ctx)
	require.NoError(t, err)
	require.Len(t, launches, 1)
	assert.True(t, launches[0].ShowOnDesktop)
	assert.Equal(t, "/user/hand/right", launches[0].Device)

	assert.Error(t, s.WriteBindingUILaunch(ctx, BindingUILaunch{}))
}

func TestMaxSeq(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()

	seq, err := s.MaxSeq(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(0), seq)

	require.NoError(t, s.WriteResolution(ctx, createTestResolution(t, "a", 3, "/actions/default", "/actions/default/in/squeeze")))
	require.NoError(t, s.WriteBindingUILaunch(ctx, BindingUILaunch{ID: "l", Seq: 7, Device: "/user/hand/right", Outcome: ir.OutcomeOK}))

	seq, err = s.MaxSeq(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(7), seq)
}

func ids(rs []ir.Resolution) []string {
	out := make([]string, len(rs))
	for i, r := range rs {
		out[i] = r.ID
	}
	return out
}
