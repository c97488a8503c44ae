package ir

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodeFixed(t *testing.T) {
	tests := []struct {
		name     string
		input    []byte
		expected string
	}{
		{"nul terminated", []byte("/user/hand/left\x00garbage"), "/user/hand/left"},
		{"empty", []byte{0, 0, 0}, ""},
		{"no terminator", []byte("trigger"), "trigger"},
		{"zero length", []byte{}, ""},
		{"multibyte", []byte("Gâchette\x00"), "Gâchette"},
		// "e" + combining acute accent is normalized to the precomposed form
		{"nfc", []byte("Cafe\u0301\x00"), "Caf\u00e9"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := DecodeFixed(tt.input)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, got)
		})
	}
}

func TestDecodeFixedInvalidUTF8(t *testing.T) {
	buf := []byte{'a', 'b', 0xff, 'c', 0}

	_, err := DecodeFixed(buf)
	require.Error(t, err)

	var de *DecodeError
	require.True(t, errors.As(err, &de))
	assert.Equal(t, 2, de.Offset)
	assert.Contains(t, err.Error(), "invalid UTF-8 at byte 2")
}

func TestDecodeFixedIgnoresBytesAfterTerminator(t *testing.T) {
	buf := []byte{'o', 'k', 0, 0xff, 0xfe}

	got, err := DecodeFixed(buf)
	require.NoError(t, err)
	assert.Equal(t, "ok", got)
}

func TestBindingInfoTextEncodeRoundTrip(t *testing.T) {
	text := BindingInfoText{
		DevicePathName:  "/user/hand/right",
		InputPathName:   "/input/grip",
		ModeName:        "button",
		SlotName:        "click",
		InputSourceType: "button",
	}

	info := text.Encode()
	data, err := NewBindingOriginData(LocalizedNames{
		ControllerType: "Index Controller",
		Hand:           "Right Hand",
		InputSource:    "Grip",
	}, &info)
	require.NoError(t, err)

	assert.Equal(t, BindingOriginData{
		LocalizedControllerType: "Index Controller",
		LocalizedHand:           "Right Hand",
		LocalizedInputSource:    "Grip",
		DevicePathName:          "/user/hand/right",
		InputPathName:           "/input/grip",
		ModeName:                "button",
		SlotName:                "click",
		InputSourceType:         "button",
	}, data)
}

func TestEncodeTruncatesToCapacity(t *testing.T) {
	long := make([]byte, FixedBufferSize*2)
	for i := range long {
		long[i] = 'x'
	}

	info := BindingInfoText{DevicePathName: string(long)}.Encode()
	got, err := DecodeFixed(info.DevicePathName[:])
	require.NoError(t, err)
	assert.Len(t, got, FixedBufferSize-1)
}

func TestNewBindingOriginDataNamesFailingField(t *testing.T) {
	info := BindingInfoText{DevicePathName: "/user/hand/left"}.Encode()
	info.SlotName[0] = 0xc3 // truncated two-byte sequence
	info.SlotName[1] = 0

	_, err := NewBindingOriginData(LocalizedNames{}, &info)
	require.Error(t, err)

	var de *DecodeError
	require.True(t, errors.As(err, &de))
	assert.Equal(t, "slot_name", de.Field)
	assert.Equal(t, 0, de.Offset)
}
