package webxr

import (
	"github.com/gogpu/webxr/host"
	"github.com/gogpu/webxr/snapshot"
)

// SessionMode selects the kind of XR experience to request.
type SessionMode uint8

const (
	// SessionModeInline is non-immersive, rendered in the page.
	SessionModeInline SessionMode = iota

	// SessionModeImmersiveVR is a full headset takeover.
	SessionModeImmersiveVR

	// SessionModeImmersiveAR is pass-through augmented reality.
	SessionModeImmersiveAR
)

// String returns the mode string as the host platform names it.
func (m SessionMode) String() string {
	switch m {
	case SessionModeInline:
		return host.ModeInline
	case SessionModeImmersiveVR:
		return host.ModeImmersiveVR
	case SessionModeImmersiveAR:
		return host.ModeImmersiveAR
	default:
		return "unknown"
	}
}

// ReferenceSpaceKind selects the coordinate frame poses are reported
// against.
type ReferenceSpaceKind uint8

const (
	// RefSpaceViewer is head-locked, no tracking.
	RefSpaceViewer ReferenceSpaceKind = iota

	// RefSpaceLocal is seated, origin at the initial head position.
	RefSpaceLocal

	// RefSpaceLocalFloor is standing, origin at floor level.
	RefSpaceLocalFloor

	// RefSpaceBoundedFloor is room-scale with boundaries.
	RefSpaceBoundedFloor

	// RefSpaceUnbounded is for large-scale AR experiences.
	RefSpaceUnbounded
)

// String returns the space-kind string as the host platform names it.
func (k ReferenceSpaceKind) String() string {
	switch k {
	case RefSpaceViewer:
		return host.SpaceViewer
	case RefSpaceLocal:
		return host.SpaceLocal
	case RefSpaceLocalFloor:
		return host.SpaceLocalFloor
	case RefSpaceBoundedFloor:
		return host.SpaceBoundedFloor
	case RefSpaceUnbounded:
		return host.SpaceUnbounded
	default:
		return "unknown"
	}
}

// requiredFeatures returns the feature list a session request must carry
// for this space kind. Viewer and local spaces are granted by default and
// need no feature entry.
func (k ReferenceSpaceKind) requiredFeatures() []string {
	switch k {
	case RefSpaceViewer, RefSpaceLocal:
		return nil
	default:
		return []string{k.String()}
	}
}

// SessionState is the lifecycle state of a Session.
type SessionState uint8

const (
	// StateIdle means no session, or a request that collapsed back.
	StateIdle SessionState = iota

	// StateRequesting means the request chain is in flight.
	StateRequesting

	// StateReady means the host granted a session and setup is underway.
	StateReady

	// StateRunning means frames can be produced.
	StateRunning

	// StateVisible means content is visible to the user.
	StateVisible

	// StateVisibleBlurred means content is visible but not focused.
	StateVisibleBlurred

	// StateEnded is terminal for this session instance.
	StateEnded
)

// String returns the state name.
func (s SessionState) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateRequesting:
		return "requesting"
	case StateReady:
		return "ready"
	case StateRunning:
		return "running"
	case StateVisible:
		return "visible"
	case StateVisibleBlurred:
		return "visible-blurred"
	case StateEnded:
		return "ended"
	default:
		return "unknown"
	}
}

// presenting reports whether frames may be produced in this state.
func (s SessionState) presenting() bool {
	switch s {
	case StateRunning, StateVisible, StateVisibleBlurred:
		return true
	default:
		return false
	}
}

// Mat4 is a column-major 4x4 matrix. See host.Mat4.
type Mat4 = host.Mat4

// Viewport is an integer pixel rectangle. See host.Viewport.
type Viewport = host.Viewport

// MaxViews is the stereo maximum; hosts reporting more views have the
// extras silently dropped.
const MaxViews = snapshot.MaxViews

// HeadIndex is the sentinel view index selecting the head transform.
const HeadIndex = snapshot.HeadIndex

// View is one eye's worth of frame data.
type View struct {
	// ProjectionMatrix is the projection the host wants this view
	// rendered with.
	ProjectionMatrix Mat4

	// ViewMatrix is the eye transform in reference-space coordinates.
	ViewMatrix Mat4

	// Viewport is the pixel rectangle to render this view into.
	Viewport Viewport
}

// Frame is the per-frame data returned by BeginFrame. It is a value
// snapshot: unlike the accessors on Session, it stays readable after the
// frame callback returns, but its handles and poses describe a frame that
// has already been submitted by then.
type Frame struct {
	// PredictedDisplayTime is the host timestamp for the frame, in
	// milliseconds.
	PredictedDisplayTime float64

	// ViewCount is the number of valid entries in Views (1 or 2).
	ViewCount int

	// Views holds per-view data, up to the stereo maximum.
	Views [MaxViews]View
}
