package origins

import (
	"errors"
	"fmt"
)

// ErrorCode categorizes resolution failures.
type ErrorCode string

const (
	// ErrCodeUnknownActionSet indicates the action set name is not registered.
	ErrCodeUnknownActionSet ErrorCode = "UNKNOWN_ACTION_SET"

	// ErrCodeUnknownAction indicates the action name is not registered.
	ErrCodeUnknownAction ErrorCode = "UNKNOWN_ACTION"

	// ErrCodeRuntimeUnavailable indicates no runtime session is connected.
	ErrCodeRuntimeUnavailable ErrorCode = "RUNTIME_UNAVAILABLE"

	// ErrCodeQueryFailed indicates a runtime query failed; Query names it.
	ErrCodeQueryFailed ErrorCode = "QUERY_FAILED"

	// ErrCodeMisaligned indicates the per-origin lists do not line up.
	ErrCodeMisaligned ErrorCode = "MISALIGNED"

	// ErrCodeDecodeFailed indicates a binding info text buffer is not valid text.
	ErrCodeDecodeFailed ErrorCode = "DECODE_FAILED"

	// ErrCodeMetadataIncomplete indicates a localized name query failed
	// under PolicyFailCall.
	ErrCodeMetadataIncomplete ErrorCode = "METADATA_INCOMPLETE"

	// ErrCodeCanceled indicates the caller's context ended while waiting
	// for shared state.
	ErrCodeCanceled ErrorCode = "CANCELED"
)

// Query names the runtime call a ResolveError refers to.
type Query string

const (
	QueryUpdateActions Query = "update_actions"
	QueryActionOrigins Query = "action_origins"
	QueryLocalizedName Query = "localized_name"
	QueryBindingInfo   Query = "binding_info"
)

// ResolveError is returned by Resolver.Resolve.
type ResolveError struct {
	// Code identifies the failure category.
	Code ErrorCode

	// Message is a human-readable description.
	Message string

	// Query is the failing runtime call (QUERY_FAILED, METADATA_INCOMPLETE).
	Query Query

	// ActionSet and Action are the names the caller asked for.
	ActionSet string
	Action    string

	// Handle is the runtime handle involved (action set, action or origin).
	Handle uint64

	// Details contains additional context (list lengths, field names).
	Details map[string]string

	// Err is the underlying error, if any.
	Err error
}

// Error implements the error interface.
func (e *ResolveError) Error() string {
	msg := fmt.Sprintf("%s: %s (action_set=%s, action=%s)", e.Code, e.Message, e.ActionSet, e.Action)
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *ResolveError) Unwrap() error {
	return e.Err
}

// CodeOf returns the ErrorCode of err, or "" if err is not a ResolveError.
func CodeOf(err error) ErrorCode {
	var re *ResolveError
	if errors.As(err, &re) {
		return re.Code
	}
	return ""
}

// IsExpected reports whether err is an expected "no result" condition:
// an unregistered name or a disconnected runtime.
func IsExpected(err error) bool {
	switch CodeOf(err) {
	case ErrCodeUnknownActionSet, ErrCodeUnknownAction, ErrCodeRuntimeUnavailable:
		return true
	}
	return false
}

// IsQueryError reports whether err is a failed runtime query, optionally
// restricted to one query kind (pass "" for any).
func IsQueryError(err error, q Query) bool {
	var re *ResolveError
	if !errors.As(err, &re) || re.Code != ErrCodeQueryFailed {
		return false
	}
	return q == "" || re.Query == q
}

func newUnknownActionSetError(q *request) *ResolveError {
	return &ResolveError{
		Code:      ErrCodeUnknownActionSet,
		Message:   "action set not registered",
		ActionSet: q.setKey,
		Action:    q.actionKey,
	}
}

func newUnknownActionError(q *request) *ResolveError {
	return &ResolveError{
		Code:      ErrCodeUnknownAction,
		Message:   "action not registered",
		ActionSet: q.setKey,
		Action:    q.actionKey,
	}
}

func newRuntimeUnavailableError(q *request) *ResolveError {
	return &ResolveError{
		Code:      ErrCodeRuntimeUnavailable,
		Message:   "runtime not connected",
		ActionSet: q.setKey,
		Action:    q.actionKey,
	}
}

func newCanceledError(q *request, err error) *ResolveError {
	return &ResolveError{
		Code:      ErrCodeCanceled,
		Message:   "waiting for shared state",
		ActionSet: q.setKey,
		Action:    q.actionKey,
		Err:       err,
	}
}

func newQueryError(q *request, query Query, handle uint64, err error) *ResolveError {
	return &ResolveError{
		Code:      ErrCodeQueryFailed,
		Message:   fmt.Sprintf("runtime query %s failed", query),
		Query:     query,
		ActionSet: q.setKey,
		Action:    q.actionKey,
		Handle:    handle,
		Err:       err,
	}
}

func newMisalignedError(q *request, lengths map[string]int) *ResolveError {
	details := make(map[string]string, len(lengths))
	for k, v := range lengths {
		details[k] = fmt.Sprintf("%d", v)
	}
	return &ResolveError{
		Code:      ErrCodeMisaligned,
		Message:   "per-origin metadata lists differ in length",
		ActionSet: q.setKey,
		Action:    q.actionKey,
		Handle:    uint64(q.action),
		Details:   details,
	}
}

func newDecodeError(q *request, index int, err error) *ResolveError {
	return &ResolveError{
		Code:      ErrCodeDecodeFailed,
		Message:   fmt.Sprintf("binding info %d holds invalid text", index),
		ActionSet: q.setKey,
		Action:    q.actionKey,
		Handle:    uint64(q.action),
		Details:   map[string]string{"index": fmt.Sprintf("%d", index)},
		Err:       err,
	}
}

func newMetadataIncompleteError(q *request, origin uint64, err error) *ResolveError {
	return &ResolveError{
		Code:      ErrCodeMetadataIncomplete,
		Message:   "localized name unavailable for origin",
		Query:     QueryLocalizedName,
		ActionSet: q.setKey,
		Action:    q.actionKey,
		Handle:    origin,
		Err:       err,
	}
}
