package shard

import (
	"errors"
	"fmt"
)

// Namespace prefixes sentinel error messages so they are recognisable in
// aggregated logs even after wrapping.
const Namespace = "shard"

var (
	// ErrPromiseAlreadySet is returned when SetValue/SetException is called
	// on a future-state that is no longer pending.
	ErrPromiseAlreadySet = errors.New(Namespace + ": promise already fulfilled")

	// ErrContinuationAlreadyAttached is returned when a second continuation
	// is attached to a future-state that already owns one.
	ErrContinuationAlreadyAttached = errors.New(Namespace + ": continuation already attached")

	// ErrStateConsumed is returned by Get when the value or exception was
	// already extracted.
	ErrStateConsumed = errors.New(Namespace + ": future value already consumed")

	// ErrNotReady is returned by Get when the state is still pending.
	ErrNotReady = errors.New(Namespace + ": future is not ready")

	// ErrBrokenPromise is the sentinel comparable via errors.Is; use
	// errors.As with *BrokenPromiseError to recover the pending identity.
	ErrBrokenPromise = errors.New(Namespace + ": broken promise")
)

// BrokenPromiseError is the exceptional completion a pending future receives
// when its promise is abandoned via Promise.Discard while still pending; a
// promise that is merely dropped and garbage collected produces nothing.
// Any attached continuation receives it. It mirrors the teacher's
// TaskMetaError shape (error + Unwrap + recoverable metadata via errors.As)
// so callers can distinguish a broken promise from a user exception without
// string matching.
type BrokenPromiseError struct {
	// Label optionally names the promise, for diagnostics; empty if unset.
	Label string
}

func (e *BrokenPromiseError) Error() string {
	if e.Label == "" {
		return ErrBrokenPromise.Error()
	}
	return fmt.Sprintf("%s (%s)", ErrBrokenPromise.Error(), e.Label)
}

func (e *BrokenPromiseError) Unwrap() error { return ErrBrokenPromise }

// FinallyError wraps a failure raised by a finally() callback together with
// the original outcome it ran after, preserving both via Go 1.20 multi-%w
// wrapping so errors.Is/errors.As can reach either cause. This realizes
// spec.md §9's "cause-chain policy" without replicating the original
// nested_exception wrapper type.
type FinallyError struct {
	Cause    error // the finally() failure
	Original error // the outcome finally() observed; nil if upstream was a value
}

func (e *FinallyError) Error() string {
	if e.Original == nil {
		return e.Cause.Error()
	}
	return fmt.Sprintf("%s (after: %s)", e.Cause.Error(), e.Original.Error())
}

func (e *FinallyError) Unwrap() []error {
	if e.Original == nil {
		return []error{e.Cause}
	}
	return []error{e.Cause, e.Original}
}
