package openvr

import (
	"errors"
	"fmt"
)

// InputErrorCode mirrors the runtime's input error enumeration.
type InputErrorCode int

const (
	InputErrorNone                     InputErrorCode = 0
	InputErrorNameNotFound             InputErrorCode = 1
	InputErrorWrongType                InputErrorCode = 2
	InputErrorInvalidHandle            InputErrorCode = 3
	InputErrorInvalidParam             InputErrorCode = 4
	InputErrorNoSteam                  InputErrorCode = 5
	InputErrorMaxCapacityReached       InputErrorCode = 6
	InputErrorIPCError                 InputErrorCode = 7
	InputErrorNoActiveActionSet        InputErrorCode = 8
	InputErrorInvalidDevice            InputErrorCode = 9
	InputErrorInvalidSkeleton          InputErrorCode = 10
	InputErrorInvalidBoneCount         InputErrorCode = 11
	InputErrorInvalidCompressedData    InputErrorCode = 12
	InputErrorNoData                   InputErrorCode = 13
	InputErrorBufferTooSmall           InputErrorCode = 14
	InputErrorMismatchedActionManifest InputErrorCode = 15
	InputErrorMissingSkeletonData      InputErrorCode = 16
	InputErrorInvalidBoneIndex         InputErrorCode = 17
	InputErrorInvalidPriority          InputErrorCode = 18
	InputErrorPermissionDenied         InputErrorCode = 19
	InputErrorInvalidRenderModel       InputErrorCode = 20
)

var inputErrorNames = map[InputErrorCode]string{
	InputErrorNone:                     "None",
	InputErrorNameNotFound:             "NameNotFound",
	InputErrorWrongType:                "WrongType",
	InputErrorInvalidHandle:            "InvalidHandle",
	InputErrorInvalidParam:             "InvalidParam",
	InputErrorNoSteam:                  "NoSteam",
	InputErrorMaxCapacityReached:       "MaxCapacityReached",
	InputErrorIPCError:                 "IPCError",
	InputErrorNoActiveActionSet:        "NoActiveActionSet",
	InputErrorInvalidDevice:            "InvalidDevice",
	InputErrorInvalidSkeleton:          "InvalidSkeleton",
	InputErrorInvalidBoneCount:         "InvalidBoneCount",
	InputErrorInvalidCompressedData:    "InvalidCompressedData",
	InputErrorNoData:                   "NoData",
	InputErrorBufferTooSmall:           "BufferTooSmall",
	InputErrorMismatchedActionManifest: "MismatchedActionManifest",
	InputErrorMissingSkeletonData:      "MissingSkeletonData",
	InputErrorInvalidBoneIndex:         "InvalidBoneIndex",
	InputErrorInvalidPriority:          "InvalidPriority",
	InputErrorPermissionDenied:         "PermissionDenied",
	InputErrorInvalidRenderModel:       "InvalidRenderModel",
}

// String returns the runtime's name for the code.
func (c InputErrorCode) String() string {
	if name, ok := inputErrorNames[c]; ok {
		return name
	}
	return fmt.Sprintf("InputErrorCode(%d)", int(c))
}

// InputError is returned by Input methods when the runtime reports failure.
type InputError struct {
	// Op names the runtime call (e.g. "UpdateActionState").
	Op string

	// Code is the runtime's error code.
	Code InputErrorCode
}

func (e *InputError) Error() string {
	return fmt.Sprintf("%s: %s", e.Op, e.Code)
}

// NewInputError creates an InputError for op.
func NewInputError(op string, code InputErrorCode) *InputError {
	return &InputError{Op: op, Code: code}
}

// InputErrorCodeOf extracts the runtime error code from err.
// Returns InputErrorNone and false when err is not an InputError.
func InputErrorCodeOf(err error) (InputErrorCode, bool) {
	var ie *InputError
	if errors.As(err, &ie) {
		return ie.Code, true
	}
	return InputErrorNone, false
}

// ParseInputErrorCode converts a runtime error name (e.g. "InvalidHandle")
// back to its code.
func ParseInputErrorCode(name string) (InputErrorCode, error) {
	for code, n := range inputErrorNames {
		if n == name {
			return code, nil
		}
	}
	return InputErrorNone, fmt.Errorf("unknown input error %q", name)
}
