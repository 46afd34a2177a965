package webxr

import "errors"

// Errors surfaced by session requests. Every asynchronous failure in the
// request chain is converted to one of these (wrapping the host's reason)
// and retained on the session; see Session.Err.
var (
	// ErrUnavailable means the host exposes no XR capability at all.
	// Non-retryable until the host environment changes.
	ErrUnavailable = errors.New("webxr: not available")

	// ErrSessionActive means a session already exists. The caller must
	// end it before requesting another.
	ErrSessionActive = errors.New("webxr: session already active")

	// ErrIncompatibleSurface means the rendering surface could not be
	// made compatible with XR presentation.
	ErrIncompatibleSurface = errors.New("webxr: no compatible rendering surface")

	// ErrSessionRejected means the host refused to grant the session.
	ErrSessionRejected = errors.New("webxr: session request rejected")

	// ErrReferenceSpace means the host refused the reference-space
	// request; without a reference space no pose data can be produced.
	ErrReferenceSpace = errors.New("webxr: reference space request rejected")
)
