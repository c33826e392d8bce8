// Package external provides the result type returned by adapters that call
// third-party services (identity provider, generative AI, OCR).
//
// Adapters never panic or return bare errors for remote failures. They return
// a Result carrying either the payload or a tagged Failure, and the calling
// usecase decides how much of the failure is visible to the client.
package external

import "fmt"

// FailureKind classifies why an external call did not produce a usable payload.
type FailureKind string

const (
	// KindRejected means the remote service answered and refused the input
	// (invalid token, blocked prompt, etc.).
	KindRejected FailureKind = "rejected"
	// KindInvalidResponse means the call succeeded but the payload could not be
	// used (missing claim, unparsable model output).
	KindInvalidResponse FailureKind = "invalid_response"
	// KindUnavailable means the call itself failed (transport, quota, 5xx).
	KindUnavailable FailureKind = "unavailable"
)

// Failure is the tagged failure half of a Result.
type Failure struct {
	Kind  FailureKind
	Cause error
}

// Error implements error.
func (f *Failure) Error() string {
	if f.Cause == nil {
		return string(f.Kind)
	}
	return fmt.Sprintf("%s: %v", f.Kind, f.Cause)
}

// Unwrap exposes the underlying cause to errors.Is / errors.As.
func (f *Failure) Unwrap() error {
	return f.Cause
}

// Result holds either a payload or a Failure, never both.
type Result[T any] struct {
	value   T
	failure *Failure
}

// OK wraps a successful payload.
func OK[T any](v T) Result[T] {
	return Result[T]{value: v}
}

// Fail builds a failed Result.
func Fail[T any](kind FailureKind, cause error) Result[T] {
	return Result[T]{failure: &Failure{Kind: kind, Cause: cause}}
}

// Unwrap returns the payload and a nil Failure on success, or the zero value
// and the Failure otherwise.
func (r Result[T]) Unwrap() (T, *Failure) {
	if r.failure != nil {
		var zero T
		return zero, r.failure
	}
	return r.value, nil
}

// Failed reports whether the Result carries a Failure.
func (r Result[T]) Failed() bool {
	return r.failure != nil
}
