// Package testutil provides shared test doubles for faster.
//
// It should only be imported by test files (*_test.go).
package testutil

import "errors"

// Mock errors for simulating failures of the queue, the executor and the
// speech backend.
var (
	// ErrMockTaskStoreUnavailable simulates a task store that cannot be written.
	ErrMockTaskStoreUnavailable = errors.New("task store unavailable")

	// ErrMockExecutorCrashed simulates an executor that could not be launched.
	ErrMockExecutorCrashed = errors.New("executor crashed")

	// ErrMockCaptureFailed simulates a dictation dialog that errored.
	ErrMockCaptureFailed = errors.New("capture failed")

	// ErrMockSpeakFailed simulates a text-to-speech process that errored.
	ErrMockSpeakFailed = errors.New("speak failed")
)
