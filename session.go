package webxr

import (
	"github.com/gogpu/gpucontext"

	"github.com/gogpu/webxr/frameclock"
	"github.com/gogpu/webxr/host"
	"github.com/gogpu/webxr/layer"
	"github.com/gogpu/webxr/snapshot"
)

// Session is the single live XR session. At most one exists per System
// at any time; a second request while one is live fails with
// ErrSessionActive.
//
// A Session is owned by its System's controller: all state transitions
// happen on the host's logical thread in response to host events or End.
// Consumers only ever observe transitions through State, Err, and the
// frame-data accessors; host errors never propagate raw.
//
// All methods are safe to call on a nil Session and report "no data".
type Session struct {
	sys      *System
	mode     SessionMode
	refSpace ReferenceSpaceKind

	state        SessionState
	err          error
	live         bool
	hostSession  host.Session
	space        host.Space
	grantedSpace string
	lay          *layer.Layer
	snap         *snapshot.Builder
}

// State returns the session's lifecycle state.
func (s *Session) State() SessionState {
	if s == nil {
		return StateIdle
	}
	return s.state
}

// setState records a transition.
func (s *Session) setState(next SessionState) {
	if s.state == next {
		return
	}
	Logger().Debug("session state", "from", s.state.String(), "to", next.String())
	s.state = next
}

// Err returns the failure that collapsed this session's request chain,
// or nil. It wraps one of the package sentinel errors.
func (s *Session) Err() error {
	if s == nil {
		return nil
	}
	return s.err
}

// Mode returns the requested session mode.
func (s *Session) Mode() SessionMode {
	if s == nil {
		return SessionModeInline
	}
	return s.mode
}

// ReferenceSpace returns the requested reference-space kind.
func (s *Session) ReferenceSpace() ReferenceSpaceKind {
	if s == nil {
		return RefSpaceViewer
	}
	return s.refSpace
}

// GrantedReferenceSpace returns the space-kind string the host actually
// granted, which may differ in formatting from the request. Empty until
// the session reaches StateRunning.
func (s *Session) GrantedReferenceSpace() string {
	if s == nil {
		return ""
	}
	return s.grantedSpace
}

// LayerKind returns the negotiated compositor layer tier.
func (s *Session) LayerKind() layer.Kind {
	if s == nil {
		return layer.KindNone
	}
	return s.lay.Kind()
}

// End ends the session and releases everything it owns: the frame clock
// substitution, the compositor layer, and the reference space. If a
// request chain is still in flight, its remaining steps become no-ops.
//
// End is idempotent, and ending a session whose host-side object is
// already gone is not an error.
func (s *Session) End() {
	if s == nil || s.sys == nil {
		return
	}
	s.sys.teardown(s, StateEnded, nil)
}

// BindDevice is the surface revalidation extension point.
//
// It currently performs no binding work: the host side binds the
// rendering surface during layer creation, and no backend validation is
// done here. It reports true once the session has reached StateReady and
// false before that or after teardown. Do not rely on it rejecting a
// device from an incompatible backend.
func (s *Session) BindDevice(device gpucontext.DeviceProvider) bool {
	if s == nil || device == nil {
		return false
	}
	switch s.state {
	case StateIdle, StateRequesting, StateEnded:
		return false
	}
	return true
}

// BeginFrame returns the frame data for the frame callback currently in
// flight: the predicted display time and per-view projection, view and
// viewport data. It reports false between frames, before the session is
// presenting, and after it ends.
func (s *Session) BeginFrame() (Frame, bool) {
	if s == nil || !s.state.presenting() || !s.snap.Valid() {
		return Frame{}, false
	}

	t, _ := s.snap.Time()
	f := Frame{PredictedDisplayTime: t, ViewCount: s.snap.ViewCount()}
	for i := 0; i < f.ViewCount; i++ {
		v := &f.Views[i]
		// Zero matrices stand in for views the host reported without
		// data; the caller decides what to substitute.
		v.ProjectionMatrix, _ = s.snap.Projection(i)
		v.ViewMatrix, _ = s.snap.Transform(i)
		v.Viewport, _ = s.snap.Viewport(i)
	}
	return f, true
}

// EndFrame is a deliberate no-op retained for API symmetry with
// BeginFrame: submission happens implicitly when the substituted frame
// callback returns.
func (s *Session) EndFrame() {}

// ViewCount returns the number of views in the current pose: 1 for mono,
// 2 for stereo, clamped to the stereo maximum. It reports 1 when no pose
// exists and 0 on a nil session.
func (s *Session) ViewCount() int {
	if s == nil {
		return 0
	}
	return s.snap.ViewCount()
}

// HeadTransform returns the head transform for the current frame.
func (s *Session) HeadTransform() (Mat4, bool) {
	if s == nil {
		return Mat4{}, false
	}
	return s.snap.Transform(HeadIndex)
}

// ViewTransform returns the eye transform for a view of the current
// frame. HeadIndex selects the head transform.
func (s *Session) ViewTransform(viewIndex int) (Mat4, bool) {
	if s == nil {
		return Mat4{}, false
	}
	return s.snap.Transform(viewIndex)
}

// Projection returns the projection matrix for a view of the current
// frame.
func (s *Session) Projection(viewIndex int) (Mat4, bool) {
	if s == nil {
		return Mat4{}, false
	}
	return s.snap.Projection(viewIndex)
}

// Viewport returns the viewport for a view of the current frame.
func (s *Session) Viewport(viewIndex int) (Viewport, bool) {
	if s == nil {
		return Viewport{}, false
	}
	return s.snap.Viewport(viewIndex)
}

// RenderTargetSize returns the render target dimensions for the current
// frame, derived from whichever layer tier is active.
func (s *Session) RenderTargetSize() (width, height int, ok bool) {
	if s == nil {
		return 0, 0, false
	}
	return s.snap.RenderTargetSize()
}

// Framebuffer returns the shared framebuffer handle for the current
// frame on the base-layer path, or zero on the projection-layer path and
// between frames.
func (s *Session) Framebuffer() host.FramebufferID {
	if s == nil {
		return 0
	}
	return s.snap.Framebuffer()
}

// ColorTexture returns the color texture handle for a view of the
// current frame. Only the projection-layer path exposes per-view
// textures; the base-layer path exposes Framebuffer instead.
func (s *Session) ColorTexture(viewIndex int) (host.TextureID, bool) {
	if s == nil {
		return 0, false
	}
	return s.snap.ColorTexture(viewIndex)
}

// DepthTexture returns the depth texture handle for a view of the
// current frame, when depth was granted on the projection layer.
func (s *Session) DepthTexture(viewIndex int) (host.TextureID, bool) {
	if s == nil {
		return 0, false
	}
	return s.snap.DepthTexture(viewIndex)
}

// xrScheduler is the session-driven frame scheduler the bridge swaps in
// while a session is presenting. Each scheduled tick asks the session
// for its next frame, computes the viewer pose for that callback only,
// populates the snapshot, invokes the consumer callback, and clears the
// snapshot before returning.
type xrScheduler struct {
	s *Session
}

// Name implements frameclock.Scheduler.
func (*xrScheduler) Name() string { return "xr" }

// Schedule implements frameclock.Scheduler.
func (x *xrScheduler) Schedule(cb frameclock.Callback) {
	s := x.s
	hs := s.hostSession
	if hs == nil || !s.state.presenting() {
		// The session died under a tick already in flight; keep the
		// render loop alive through the generic primitive.
		s.sys.rt.RequestAnimationFrame(func(now float64) { cb(now) })
		return
	}
	hs.RequestAnimationFrame(func(now float64, f host.Frame) {
		if !s.sys.isCurrent(s) {
			cb(now)
			return
		}
		if pose, ok := f.ViewerPose(s.space); ok {
			s.snap.Begin(now, pose, s.lay, f)
		}
		cb(now)
		s.snap.Clear()
	})
}

var _ frameclock.Scheduler = (*xrScheduler)(nil)
