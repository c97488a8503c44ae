package origins

import (
	"bytes"
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
	"golang.org/x/sync/errgroup"

	"github.com/roach88/vrorigins/internal/ir"
	"github.com/roach88/vrorigins/internal/openvr"
	"github.com/roach88/vrorigins/internal/openvr/simvr"
	"github.com/roach88/vrorigins/internal/vrstate"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

const (
	setKey    = "default"
	actionKey = "squeeze"
)

var discard = slog.New(slog.NewTextHandler(io.Discard, nil))

// fixture is the registry/runtime pair most tests start from:
// set "default" (1), action "squeeze" (7), active sets [1],
// origins [0, 42, 0, 99] with one binding info per non-zero origin.
type fixture struct {
	state *vrstate.State
	rt    *simvr.Runtime
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	ctx := context.Background()

	rt := simvr.New(&simvr.Rig{
		ActionSets: []simvr.RigActionSet{{Name: setKey, Handle: 1}, {Name: "menu", Handle: 2}},
		Actions: []simvr.RigAction{
			{
				Name:    actionKey,
				Handle:  7,
				Origins: []uint64{0, 42, 0, 99},
				Bindings: []simvr.RigBinding{
					{BindingInfoText: ir.BindingInfoText{
						DevicePathName: "/user/hand/left", InputPathName: "/input/grip",
						ModeName: "grab", SlotName: "grab", InputSourceType: "grab",
					}},
					{BindingInfoText: ir.BindingInfoText{
						DevicePathName: "/user/hand/right", InputPathName: "/input/grip",
						ModeName: "grab", SlotName: "grab", InputSourceType: "grab",
					}},
				},
			},
			{Name: "idle", Handle: 8, Origins: []uint64{0, 0}},
		},
		Origins: map[uint64]simvr.RigOrigin{
			42: {ControllerType: "Index Controller", Hand: "Left Hand", InputSource: "Grip"},
			99: {ControllerType: "Index Controller", Hand: "Right Hand", InputSource: "Grip"},
		},
	})

	state := vrstate.New(vrstate.WithLogger(discard))
	require.NoError(t, state.LoadRegistry(ctx,
		[]ir.ActionSet{{Name: setKey, Handle: 1}, {Name: "menu", Handle: 2}},
		[]ir.Action{{Name: actionKey, Handle: 7}, {Name: "idle", Handle: 8}},
	))
	require.NoError(t, state.SetActiveSets(ctx, []ir.ActiveActionSet{{ActionSet: 1}}))
	require.NoError(t, state.SetContext(ctx, rt))

	return &fixture{state: state, rt: rt}
}

func (f *fixture) resolver(opts ...Option) *Resolver {
	return New(f.state, append([]Option{WithLogger(discard)}, opts...)...)
}

var (
	leftGrip = ir.BindingOriginData{
		LocalizedControllerType: "Index Controller",
		LocalizedHand:           "Left Hand",
		LocalizedInputSource:    "Grip",
		DevicePathName:          "/user/hand/left",
		InputPathName:           "/input/grip",
		ModeName:                "grab",
		SlotName:                "grab",
		InputSourceType:         "grab",
	}
	rightGrip = ir.BindingOriginData{
		LocalizedControllerType: "Index Controller",
		LocalizedHand:           "Right Hand",
		LocalizedInputSource:    "Grip",
		DevicePathName:          "/user/hand/right",
		InputPathName:           "/input/grip",
		ModeName:                "grab",
		SlotName:                "grab",
		InputSourceType:         "grab",
	}
)

func TestResolveFiltersZeroAndKeepsOrder(t *testing.T) {
	f := newFixture(t)

	records, err := f.resolver().Resolve(context.Background(), setKey, actionKey)
	require.NoError(t, err)
	assert.Equal(t, []ir.BindingOriginData{leftGrip, rightGrip}, records)

	// Names were only requested for the two real origins
	assert.Equal(t, 6, f.rt.Calls(simvr.OpOriginLocalizedName))
}

func TestResolveReversedOrigins(t *testing.T) {
	f := newFixture(t)
	f.rt.SetOrigins(7, 99, 0, 42)

	records, err := f.resolver().Resolve(context.Background(), setKey, actionKey)
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, "Right Hand", records[0].LocalizedHand)
	assert.Equal(t, "Left Hand", records[1].LocalizedHand)
}

func TestResolveUnknownActionSet(t *testing.T) {
	f := newFixture(t)
	r := f.resolver()

	for _, action := range []string{actionKey, "idle", "nonexistent", ""} {
		_, err := r.Resolve(context.Background(), "missing", action)
		assert.Equal(t, ErrCodeUnknownActionSet, CodeOf(err), "action %q", action)
		assert.True(t, IsExpected(err))

		records, ok := r.Lookup(context.Background(), "missing", action)
		assert.False(t, ok)
		assert.Nil(t, records)
	}
	assert.Equal(t, 0, f.rt.Calls(simvr.OpUpdateActionState))
}

func TestResolveUnknownAction(t *testing.T) {
	f := newFixture(t)

	_, err := f.resolver().Resolve(context.Background(), setKey, "missing")
	assert.Equal(t, ErrCodeUnknownAction, CodeOf(err))
	assert.True(t, IsExpected(err))
	assert.Equal(t, 0, f.rt.Calls(simvr.OpUpdateActionState))
}

func TestResolveRuntimeUnavailable(t *testing.T) {
	f := newFixture(t)
	require.NoError(t, f.state.ClearContext(context.Background()))

	_, err := f.resolver().Resolve(context.Background(), setKey, actionKey)
	assert.Equal(t, ErrCodeRuntimeUnavailable, CodeOf(err))
	assert.True(t, IsExpected(err))
	assert.Equal(t, 0, f.rt.Calls(simvr.OpUpdateActionState))

	_, ok := f.resolver().Lookup(context.Background(), setKey, actionKey)
	assert.False(t, ok)
}

func TestResolveNoBoundOrigins(t *testing.T) {
	f := newFixture(t)

	records, ok := f.resolver().Lookup(context.Background(), setKey, "idle")
	require.True(t, ok)
	require.NotNil(t, records)
	assert.Empty(t, records)
	assert.Equal(t, 0, f.rt.Calls(simvr.OpOriginLocalizedName))
}

func TestResolveIdempotent(t *testing.T) {
	f := newFixture(t)
	r := f.resolver()

	first, err := r.Resolve(context.Background(), setKey, actionKey)
	require.NoError(t, err)
	second, err := r.Resolve(context.Background(), setKey, actionKey)
	require.NoError(t, err)

	assert.Equal(t, first, second)
}

func TestResolveRefreshesAllActiveSets(t *testing.T) {
	f := newFixture(t)
	active := []ir.ActiveActionSet{{ActionSet: 2, Priority: 10}, {ActionSet: 1}}
	require.NoError(t, f.state.SetActiveSets(context.Background(), active))

	_, err := f.resolver().Resolve(context.Background(), setKey, actionKey)
	require.NoError(t, err)
	assert.Equal(t, active, f.rt.ActiveSets())
}

func TestResolveUpdateFailureIsFatalWithoutRetry(t *testing.T) {
	f := newFixture(t)
	f.rt.Fail(simvr.OpUpdateActionState, openvr.InputErrorIPCError)

	_, err := f.resolver().Resolve(context.Background(), setKey, actionKey)
	require.Error(t, err)
	assert.True(t, IsQueryError(err, QueryUpdateActions))
	code, ok := openvr.InputErrorCodeOf(err)
	require.True(t, ok)
	assert.Equal(t, openvr.InputErrorIPCError, code)

	assert.Equal(t, 1, f.rt.Calls(simvr.OpUpdateActionState))
	assert.Equal(t, 0, f.rt.Calls(simvr.OpActionOrigins))
}

func TestResolveNoActiveSetsFails(t *testing.T) {
	f := newFixture(t)
	require.NoError(t, f.state.SetActiveSets(context.Background(), nil))

	_, err := f.resolver().Resolve(context.Background(), setKey, actionKey)
	assert.True(t, IsQueryError(err, QueryUpdateActions))
}

func TestResolveOriginsFailure(t *testing.T) {
	f := newFixture(t)
	f.rt.Fail(simvr.OpActionOrigins, openvr.InputErrorInvalidHandle)

	_, err := f.resolver().Resolve(context.Background(), setKey, actionKey)
	assert.True(t, IsQueryError(err, QueryActionOrigins))

	var re *ResolveError
	require.ErrorAs(t, err, &re)
	assert.Equal(t, uint64(7), re.Handle)
	assert.Equal(t, 0, f.rt.Calls(simvr.OpActionBindingInfo))
}

func TestResolveBindingInfoFailure(t *testing.T) {
	f := newFixture(t)
	f.rt.Fail(simvr.OpActionBindingInfo, openvr.InputErrorBufferTooSmall)

	records, err := f.resolver().Resolve(context.Background(), setKey, actionKey)
	assert.Nil(t, records)
	assert.True(t, IsQueryError(err, QueryBindingInfo))
	assert.False(t, IsExpected(err))
}

func TestResolveMisalignedBindingInfo(t *testing.T) {
	tests := []struct {
		name  string
		infos []ir.InputBindingInfo
	}{
		{"short", []ir.InputBindingInfo{ir.BindingInfoText{DevicePathName: "/user/hand/left"}.Encode()}},
		{"long", []ir.InputBindingInfo{{}, {}, {}}},
		{"empty", nil},
	}

	for _, policy := range []MetadataPolicy{PolicyOmitOrigin, PolicyFailCall, PolicyPositional} {
		for _, tt := range tests {
			t.Run(string(policy)+"/"+tt.name, func(t *testing.T) {
				f := newFixture(t)
				f.rt.SetBindingInfo(7, tt.infos...)

				records, err := f.resolver(WithPolicy(policy)).Resolve(context.Background(), setKey, actionKey)
				assert.Nil(t, records)
				assert.Equal(t, ErrCodeMisaligned, CodeOf(err))

				var re *ResolveError
				require.ErrorAs(t, err, &re)
				assert.Equal(t, "2", re.Details["origins"])
			})
		}
	}
}

func TestResolveNameFailureOmitsOnlyThatOrigin(t *testing.T) {
	f := newFixture(t)
	f.rt.FailLocalizedName(42, ir.InputStringHand, openvr.InputErrorInvalidHandle)

	var logs bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&logs, &slog.HandlerOptions{Level: slog.LevelDebug}))
	r := New(f.state, WithLogger(logger))

	records, err := r.Resolve(context.Background(), setKey, actionKey)
	require.NoError(t, err)

	// Origin 99 keeps its own binding info (right hand), not origin 42's
	assert.Equal(t, []ir.BindingOriginData{rightGrip}, records)
	assert.Contains(t, logs.String(), "failed to get origin localized name")
	assert.Contains(t, logs.String(), "runtime_code=InvalidHandle")
	assert.Contains(t, logs.String(), "origin omitted")
}

func TestResolveNameFailureFailCall(t *testing.T) {
	f := newFixture(t)
	f.rt.FailLocalizedName(99, ir.InputStringInputSource, openvr.InputErrorInvalidHandle)

	_, err := f.resolver(WithPolicy(PolicyFailCall)).Resolve(context.Background(), setKey, actionKey)
	assert.Equal(t, ErrCodeMetadataIncomplete, CodeOf(err))

	var re *ResolveError
	require.ErrorAs(t, err, &re)
	assert.Equal(t, uint64(99), re.Handle)
	assert.Equal(t, QueryLocalizedName, re.Query)
	assert.Equal(t, 0, f.rt.Calls(simvr.OpActionBindingInfo))
}

func TestResolvePositionalPolicy(t *testing.T) {
	f := newFixture(t)
	r := f.resolver(WithPolicy(PolicyPositional))

	records, err := r.Resolve(context.Background(), setKey, actionKey)
	require.NoError(t, err)
	assert.Equal(t, []ir.BindingOriginData{leftGrip, rightGrip}, records)

	// A dropped name shrinks one list; the bounds check catches it
	f.rt.FailLocalizedName(42, ir.InputStringControllerType, openvr.InputErrorInvalidHandle)
	records, err = r.Resolve(context.Background(), setKey, actionKey)
	assert.Nil(t, records)
	assert.Equal(t, ErrCodeMisaligned, CodeOf(err))

	var re *ResolveError
	require.ErrorAs(t, err, &re)
	assert.Equal(t, "1", re.Details["controller_types"])
	assert.Equal(t, "2", re.Details["hands"])
}

func TestResolveDecodeFailure(t *testing.T) {
	f := newFixture(t)
	bad := ir.BindingInfoText{DevicePathName: "/user/hand/right"}.Encode()
	bad.ModeName[0] = 0xff
	f.rt.SetBindingInfo(7, ir.BindingInfoText{DevicePathName: "/user/hand/left"}.Encode(), bad)

	records, err := f.resolver().Resolve(context.Background(), setKey, actionKey)
	assert.Nil(t, records)
	assert.Equal(t, ErrCodeDecodeFailed, CodeOf(err))

	var de *ir.DecodeError
	require.ErrorAs(t, err, &de)
	assert.Equal(t, "mode_name", de.Field)

	var re *ResolveError
	require.ErrorAs(t, err, &re)
	assert.Equal(t, "1", re.Details["index"])
}

func TestResolveCanceledWhileWaiting(t *testing.T) {
	f := newFixture(t)
	r := f.resolver()

	release := make(chan struct{})
	held := make(chan struct{})
	go func() {
		_ = f.state.WithSession(context.Background(), func(*vrstate.Session) error {
			close(held)
			<-release
			return nil
		})
	}()
	<-held
	defer close(release)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	_, err := r.Resolve(ctx, setKey, actionKey)
	assert.Equal(t, ErrCodeCanceled, CodeOf(err))
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestResolveConcurrentCallers(t *testing.T) {
	f := newFixture(t)
	r := f.resolver()

	const callers = 16
	results := make([][]ir.BindingOriginData, callers)

	var g errgroup.Group
	for i := 0; i < callers; i++ {
		i := i
		g.Go(func() error {
			action := actionKey
			if i%2 == 1 {
				action = "idle"
			}
			records, err := r.Resolve(context.Background(), setKey, action)
			results[i] = records
			return err
		})
	}
	require.NoError(t, g.Wait())

	for i, records := range results {
		if i%2 == 1 {
			assert.Empty(t, records)
			continue
		}
		assert.Equal(t, []ir.BindingOriginData{leftGrip, rightGrip}, records)
	}
	assert.Equal(t, callers, f.rt.Calls(simvr.OpUpdateActionState))
}

func TestParsePolicy(t *testing.T) {
	p, err := ParsePolicy("")
	require.NoError(t, err)
	assert.Equal(t, PolicyOmitOrigin, p)

	p, err = ParsePolicy("positional")
	require.NoError(t, err)
	assert.Equal(t, PolicyPositional, p)

	_, err = ParsePolicy("lenient")
	assert.Error(t, err)
}

func TestResolveErrorMessage(t *testing.T) {
	f := newFixture(t)
	f.rt.Fail(simvr.OpActionOrigins, openvr.InputErrorInvalidHandle)

	_, err := f.resolver().Resolve(context.Background(), setKey, actionKey)
	require.Error(t, err)
	assert.Equal(t,
		"QUERY_FAILED: runtime query action_origins failed (action_set=default, action=squeeze): ActionOrigins: InvalidHandle",
		err.Error())
}
