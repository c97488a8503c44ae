package simvr

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/vrorigins/internal/ir"
	"github.com/roach88/vrorigins/internal/openvr"
)

func loadIndexRig(t *testing.T) *Runtime {
	t.Helper()
	rig, err := LoadRig(filepath.Join("testdata", "index.yaml"))
	require.NoError(t, err)
	return New(rig)
}

func TestHandlesFromRig(t *testing.T) {
	rt := loadIndexRig(t)

	set, err := rt.ActionSetHandle("/actions/default")
	require.NoError(t, err)
	assert.Equal(t, ir.ActionSetHandle(1), set)

	squeeze, err := rt.ActionHandle("/actions/default/in/squeeze")
	require.NoError(t, err)
	assert.Equal(t, ir.ActionHandle(7), squeeze)

	// Auto-assigned after the highest explicit handle
	menu, err := rt.ActionHandle("/actions/default/in/menu")
	require.NoError(t, err)
	assert.Equal(t, ir.ActionHandle(8), menu)

	right, err := rt.InputSourceHandle("/user/hand/right")
	require.NoError(t, err)
	assert.Equal(t, ir.InputSourceHandle(2), right)
}

func TestUnknownNames(t *testing.T) {
	rt := loadIndexRig(t)

	_, err := rt.ActionSetHandle("/actions/missing")
	code, ok := openvr.InputErrorCodeOf(err)
	require.True(t, ok)
	assert.Equal(t, openvr.InputErrorNameNotFound, code)

	_, err = rt.ActionHandle("/actions/default/in/missing")
	code, _ = openvr.InputErrorCodeOf(err)
	assert.Equal(t, openvr.InputErrorNameNotFound, code)
}

func TestOriginsRequireRefresh(t *testing.T) {
	rt := loadIndexRig(t)

	_, err := rt.ActionOrigins(1, 7)
	code, _ := openvr.InputErrorCodeOf(err)
	assert.Equal(t, openvr.InputErrorNoData, code)

	require.NoError(t, rt.UpdateActionState([]ir.ActiveActionSet{{ActionSet: 1}}))

	origins, err := rt.ActionOrigins(1, 7)
	require.NoError(t, err)
	assert.Equal(t, []ir.OriginHandle{0, 42, 0, 99}, origins)
	assert.Equal(t, []ir.ActiveActionSet{{ActionSet: 1}}, rt.ActiveSets())
}

func TestUpdateActionStateValidation(t *testing.T) {
	rt := loadIndexRig(t)

	err := rt.UpdateActionState(nil)
	code, _ := openvr.InputErrorCodeOf(err)
	assert.Equal(t, openvr.InputErrorNoActiveActionSet, code)

	err = rt.UpdateActionState([]ir.ActiveActionSet{{ActionSet: 55}})
	code, _ = openvr.InputErrorCodeOf(err)
	assert.Equal(t, openvr.InputErrorInvalidHandle, code)

	assert.Equal(t, 2, rt.Calls(OpUpdateActionState))
}

func TestLocalizedNames(t *testing.T) {
	rt := loadIndexRig(t)

	name, err := rt.OriginLocalizedName(42, ir.InputStringHand)
	require.NoError(t, err)
	assert.Equal(t, "Left Hand", name)

	name, err = rt.OriginLocalizedName(99, ir.InputStringControllerType)
	require.NoError(t, err)
	assert.Equal(t, "Index Controller", name)

	name, err = rt.OriginLocalizedName(99, ir.InputStringAll)
	require.NoError(t, err)
	assert.Equal(t, "Right Hand Index Controller Grip", name)

	_, err = rt.OriginLocalizedName(5, ir.InputStringHand)
	assert.Error(t, err)
}

func TestBindingInfoEncoded(t *testing.T) {
	rt := loadIndexRig(t)

	infos, err := rt.ActionBindingInfo(7)
	require.NoError(t, err)
	require.Len(t, infos, 2)

	path, err := ir.DecodeFixed(infos[1].DevicePathName[:])
	require.NoError(t, err)
	assert.Equal(t, "/user/hand/right", path)
}

func TestFailureInjection(t *testing.T) {
	rt := loadIndexRig(t)

	rt.Fail(OpUpdateActionState, openvr.InputErrorIPCError)
	err := rt.UpdateActionState([]ir.ActiveActionSet{{ActionSet: 1}})
	code, _ := openvr.InputErrorCodeOf(err)
	assert.Equal(t, openvr.InputErrorIPCError, code)

	rt.ClearFailure(OpUpdateActionState)
	assert.NoError(t, rt.UpdateActionState([]ir.ActiveActionSet{{ActionSet: 1}}))

	rt.FailLocalizedName(42, ir.InputStringHand, openvr.InputErrorInvalidHandle)
	_, err = rt.OriginLocalizedName(42, ir.InputStringHand)
	assert.Error(t, err)
	_, err = rt.OriginLocalizedName(42, ir.InputStringInputSource)
	assert.NoError(t, err)
}

func TestOpenBindingUIRecorded(t *testing.T) {
	rt := loadIndexRig(t)

	require.NoError(t, rt.OpenBindingUI("", 0, 2, true))
	assert.Equal(t, []BindingUIRequest{{Device: 2, ShowOnDesktop: true}}, rt.BindingUIRequests())
}

func TestParseRigRejectsUnknownFields(t *testing.T) {
	_, err := ParseRig([]byte("action_sets: []\nactoins: []\n"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "actoins")
}

func TestParseRigRejectsBadFailures(t *testing.T) {
	_, err := ParseRig([]byte(`
action_sets: [{name: /actions/default}]
actions: []
failures:
  update_action_state: Exploded
`))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "update_action_state")

	_, err = ParseRig([]byte(`
action_sets: [{name: /actions/default}]
actions: []
failures:
  localized_names:
    42: {elbow: InvalidHandle}
`))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown kind")
}

func TestParseRigDuplicateNames(t *testing.T) {
	_, err := ParseRig([]byte(`
action_sets:
  - name: /actions/default
  - name: /actions/default
actions: []
`))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "duplicate")
}

func TestCorruptBinding(t *testing.T) {
	rig, err := ParseRig([]byte(`
action_sets: [{name: /actions/default, handle: 1}]
actions:
  - name: /actions/default/in/squeeze
    handle: 2
    origins: [5]
    bindings:
      - device_path: /user/hand/left
        corrupt: slot
`))
	require.NoError(t, err)
	rt := New(rig)

	infos, err := rt.ActionBindingInfo(2)
	require.NoError(t, err)
	_, err = ir.DecodeFixed(infos[0].SlotName[:])
	assert.Error(t, err)
}
