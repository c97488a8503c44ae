package command

import (
	"context"
	"io"
	"log/slog"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/vrorigins/internal/ir"
	"github.com/roach88/vrorigins/internal/manifest"
	"github.com/roach88/vrorigins/internal/openvr"
	"github.com/roach88/vrorigins/internal/openvr/simvr"
	"github.com/roach88/vrorigins/internal/origins"
	"github.com/roach88/vrorigins/internal/store"
	"github.com/roach88/vrorigins/internal/testutil"
	"github.com/roach88/vrorigins/internal/vrstate"
)

const (
	defaultSet = "/actions/default"
	squeeze    = "/actions/default/in/squeeze"
	menu       = "/actions/default/in/menu"
)

const manifestJSON = `{
  "action_sets": [{"name": "/actions/default"}],
  "actions": [
    {"name": "/actions/default/in/squeeze", "type": "boolean"},
    {"name": "/actions/default/in/menu", "type": "boolean"}
  ]
}`

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func loadRig(t *testing.T) *simvr.Runtime {
	t.Helper()
	rig, err := simvr.LoadRig(filepath.Join("..", "openvr", "simvr", "testdata", "index.yaml"))
	require.NoError(t, err)
	return simvr.New(rig)
}

type fixture struct {
	svc     *Service
	rt      *simvr.Runtime
	history *store.Store
}

func newFixture(t *testing.T, opts ...Option) *fixture {
	t.Helper()
	ctx := context.Background()

	history, err := store.Open(filepath.Join(t.TempDir(), "history.db"))
	require.NoError(t, err)
	t.Cleanup(func() { history.Close() })

	base := []Option{
		WithLogger(discardLogger()),
		WithHistory(history),
		WithClock(testutil.NewDeterministicClock()),
		WithIDGenerator(testutil.NewSequentialIDGenerator("res")),
	}
	svc := New(vrstate.New(vrstate.WithLogger(discardLogger())), append(base, opts...)...)

	m, err := manifest.Parse("actions.json", []byte(manifestJSON))
	require.NoError(t, err)

	rt := loadRig(t)
	require.NoError(t, svc.Connect(ctx, rt, m, ConnectOptions{}))

	return &fixture{svc: svc, rt: rt, history: history}
}

func TestGetBindingOrigins(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	records, ok := f.svc.GetBindingOrigins(ctx, defaultSet, squeeze)
	require.True(t, ok)
	require.Len(t, records, 2)
	assert.Equal(t, "Left Hand", records[0].LocalizedHand)
	assert.Equal(t, "/user/hand/left", records[0].DevicePathName)
	assert.Equal(t, "Right Hand", records[1].LocalizedHand)
	assert.Equal(t, "/user/hand/right", records[1].DevicePathName)
}

func TestGetBindingOrigins_NoResult(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	records, ok := f.svc.GetBindingOrigins(ctx, defaultSet, "/actions/default/in/nope")
	assert.False(t, ok)
	assert.Nil(t, records)

	_, ok = f.svc.GetBindingOrigins(ctx, "/actions/other", squeeze)
	assert.False(t, ok)
}

func TestGetBindingOrigins_EmptyIsAResult(t *testing.T) {
	f := newFixture(t)

	records, ok := f.svc.GetBindingOrigins(context.Background(), defaultSet, menu)
	require.True(t, ok)
	assert.NotNil(t, records)
	assert.Empty(t, records)
}

func TestResolve_RecordsHistory(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	ok, err := f.svc.Resolve(ctx, defaultSet, squeeze)
	require.NoError(t, err)
	assert.NotEmpty(t, ok.Digest)

	f.rt.Fail(simvr.OpActionBindingInfo, openvr.InputErrorIPCError)
	failed, err := f.svc.Resolve(ctx, defaultSet, squeeze)
	require.Error(t, err)
	assert.Equal(t, string(origins.ErrCodeQueryFailed), failed.Outcome)

	rows, err := f.history.ListResolutions(ctx, 0)
	require.NoError(t, err)
	require.Len(t, rows, 2)

	assert.Equal(t, "res-0001", rows[0].ID)
	assert.Equal(t, int64(1), rows[0].Seq)
	assert.Equal(t, ir.OutcomeOK, rows[0].Outcome)
	assert.Equal(t, ok.Digest, rows[0].Digest)
	assert.Equal(t, ok.Records, rows[0].Records)
	assert.Equal(t, "omit_origin", rows[0].Policy)

	assert.Equal(t, "res-0002", rows[1].ID)
	assert.Equal(t, "QUERY_FAILED", rows[1].Outcome)
	assert.Empty(t, rows[1].Records)
}

func TestResolve_PolicyOption(t *testing.T) {
	f := newFixture(t, WithPolicy(origins.PolicyFailCall))
	f.rt.FailLocalizedName(42, ir.InputStringHand, openvr.InputErrorInvalidHandle)

	res, err := f.svc.Resolve(context.Background(), defaultSet, squeeze)
	require.Error(t, err)
	assert.Equal(t, string(origins.ErrCodeMetadataIncomplete), res.Outcome)
	assert.Equal(t, "fail_call", res.Policy)
}

func TestResolve_WithoutHistory(t *testing.T) {
	svc := New(vrstate.New(), WithLogger(discardLogger()))

	res, err := svc.Resolve(context.Background(), defaultSet, squeeze)
	require.Error(t, err)
	assert.Empty(t, res.ID)
	assert.Equal(t, string(origins.ErrCodeUnknownActionSet), res.Outcome)
}

func TestLaunchBindingConfiguration(t *testing.T) {
	f := newFixture(t, WithAppKey("steam.app.123"))
	ctx := context.Background()

	f.svc.LaunchBindingConfiguration(ctx, true)

	reqs := f.rt.BindingUIRequests()
	require.Len(t, reqs, 1)
	assert.Equal(t, "steam.app.123", reqs[0].AppKey)
	assert.Equal(t, ir.ActionSetHandle(0), reqs[0].ActionSet)
	assert.Equal(t, ir.InputSourceHandle(2), reqs[0].Device)
	assert.True(t, reqs[0].ShowOnDesktop)

	f.rt.Fail(simvr.OpOpenBindingUI, openvr.InputErrorPermissionDenied)
	f.svc.LaunchBindingConfiguration(ctx, false)

	launches, err := f.history.ListBindingUILaunches(ctx)
	require.NoError(t, err)
	require.Len(t, launches, 2)
	assert.Equal(t, ir.OutcomeOK, launches[0].Outcome)
	assert.Equal(t, BindingUIDevice, launches[0].Device)
	assert.Equal(t, "PermissionDenied", launches[1].Outcome)
}

func TestLaunchBindingConfiguration_NoRuntime(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	require.NoError(t, f.svc.Disconnect(ctx))

	f.svc.LaunchBindingConfiguration(ctx, false)

	assert.Empty(t, f.rt.BindingUIRequests())
	launches, err := f.history.ListBindingUILaunches(ctx)
	require.NoError(t, err)
	require.Len(t, launches, 1)
	assert.Equal(t, "RUNTIME_UNAVAILABLE", launches[0].Outcome)
}

func TestIsDashboardVisible(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	assert.False(t, f.svc.IsDashboardVisible(ctx))

	f.rt.SetDashboardVisible(true)
	assert.True(t, f.svc.IsDashboardVisible(ctx))

	require.NoError(t, f.svc.Disconnect(ctx))
	assert.False(t, f.svc.IsDashboardVisible(ctx))
}

func TestClock(t *testing.T) {
	c := NewClockAt(41)
	assert.Equal(t, int64(42), c.Next())
	assert.Equal(t, int64(42), c.Current())
	assert.Equal(t, int64(1), NewClock().Next())
}

func TestUUIDv7Generator(t *testing.T) {
	var gen UUIDv7Generator
	a, b := gen.Generate(), gen.Generate()
	assert.Len(t, a, 36)
	assert.NotEqual(t, a, b)
}
