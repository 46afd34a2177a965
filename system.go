package webxr

import (
	"fmt"
	"sync"

	"github.com/gogpu/webxr/frameclock"
	"github.com/gogpu/webxr/host"
	"github.com/gogpu/webxr/layer"
	"github.com/gogpu/webxr/snapshot"
)

// System owns the XR bridge for one host runtime: the capability cache,
// the single session slot, and the frame clock bridge the render loop
// schedules through.
//
// The host platform supports one live session; System enforces that with
// an admission check on RequestSession. All host callbacks arrive on the
// host's single logical thread of control.
type System struct {
	rt     host.Runtime
	opts   systemOptions
	bridge *frameclock.Bridge

	caps capabilityCache

	mu     sync.Mutex
	active *Session
}

// New creates a System over the given host runtime.
//
// When no WithLoopDriver option is given and the runtime implements
// host.LoopDriver, the runtime drives its own pause/resume cycle during
// scheduler swaps.
func New(rt host.Runtime, opts ...Option) *System {
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	driver := o.driver
	if driver == nil {
		if d, ok := rt.(host.LoopDriver); ok {
			driver = d
		}
	}
	return &System{
		rt:     rt,
		opts:   o,
		bridge: frameclock.NewBridge(frameclock.NewPassThrough(rt), driver),
	}
}

// IsAvailable reports whether the host exposes XR at all.
func (sys *System) IsAvailable() bool {
	return sys.rt != nil && sys.rt.Available()
}

// IsSessionModeSupported reports whether a session mode is supported.
//
// The underlying host check is asynchronous, but this call answers
// synchronously: the first query for a mode triggers the host check and
// returns a provisional answer (optimistic for immersive VR, pessimistic
// otherwise). Once the host answers, the authoritative result is cached
// and returned by subsequent calls. Callers needing certainty should
// poll again after giving the host a chance to respond.
func (sys *System) IsSessionModeSupported(mode SessionMode) bool {
	if !sys.IsAvailable() {
		return false
	}

	if st, ok := sys.caps.get(mode); ok {
		return st
	}

	// Trigger the host query; the cache is append-only, so a result that
	// raced in between stays authoritative.
	sys.rt.SupportsSession(mode.String(), func(supported bool) {
		sys.caps.record(mode, supported)
	})

	if st, ok := sys.caps.get(mode); ok {
		return st
	}

	// Provisional answer until the host responds.
	return mode == SessionModeImmersiveVR
}

// RequestSession starts the asynchronous session request chain:
// surface compatibility, host session grant, listener registration,
// compositor layer negotiation, and reference-space grant.
//
// The returned session starts in StateRequesting; poll State (or use
// WithNotify) to observe it reach StateRunning or collapse to StateIdle
// with the failure retained in Err. Any step failing is fatal to the
// request; there is no retry, and a fresh request may be issued after
// the collapse.
//
// Immediate failures: ErrUnavailable when the host has no XR capability,
// ErrSessionActive when a session already holds the slot.
func (sys *System) RequestSession(mode SessionMode, refSpace ReferenceSpaceKind) (*Session, error) {
	if !sys.IsAvailable() {
		return nil, ErrUnavailable
	}

	sys.mu.Lock()
	if sys.active != nil {
		sys.mu.Unlock()
		return nil, ErrSessionActive
	}
	s := &Session{
		sys:      sys,
		mode:     mode,
		refSpace: refSpace,
		state:    StateRequesting,
		live:     true,
		snap:     snapshot.NewBuilder(),
	}
	sys.active = s
	sys.mu.Unlock()

	Logger().Debug("requesting session",
		"mode", mode.String(), "refSpace", refSpace.String())
	sys.notify(s)

	sys.rt.EnsureCompatible(func(err error) {
		if !sys.isCurrent(s) {
			return
		}
		if err != nil {
			sys.fail(s, fmt.Errorf("%w: %w", ErrIncompatibleSurface, err))
			return
		}
		sys.requestHostSession(s)
	})

	return s, nil
}

// ActiveSession returns the session currently holding the slot, or nil.
func (sys *System) ActiveSession() *Session {
	sys.mu.Lock()
	defer sys.mu.Unlock()
	return sys.active
}

// ScheduleFrame schedules cb through the frame clock bridge. While a
// session is presenting, cb runs inside the session's frame callback
// with a valid snapshot; otherwise it runs off the host's generic
// animation primitive. The render loop should schedule every tick here
// and never needs to know whether a session exists.
func (sys *System) ScheduleFrame(cb frameclock.Callback) {
	sys.bridge.Schedule(cb)
}

// Clock returns the frame clock bridge.
func (sys *System) Clock() *frameclock.Bridge {
	return sys.bridge
}

// isCurrent reports whether s still owns the session slot. Every
// continuation in the request chain gates on this before mutating state,
// which makes ending a session cancel the rest of its in-flight chain.
func (sys *System) isCurrent(s *Session) bool {
	sys.mu.Lock()
	defer sys.mu.Unlock()
	return sys.active == s && s.live
}

// requestHostSession is step two of the chain: the host session grant,
// listener registration, and layer negotiation.
func (sys *System) requestHostSession(s *Session) {
	sys.rt.RequestSession(s.mode.String(), s.refSpace.requiredFeatures(), func(hs host.Session, err error) {
		if !sys.isCurrent(s) {
			// Granted after cancellation: hand it straight back.
			if err == nil && hs != nil {
				hs.End()
			}
			return
		}
		if err != nil {
			sys.fail(s, fmt.Errorf("%w: %w", ErrSessionRejected, err))
			return
		}

		s.hostSession = hs
		hs.OnEnd(func() { sys.handleHostEnd(s) })
		hs.OnVisibilityChange(func(v host.VisibilityState) { sys.handleVisibility(s, v) })
		s.setState(StateReady)
		sys.notify(s)

		if !sys.negotiateLayer(s, hs) {
			return
		}
		sys.requestReferenceSpace(s, hs)
	})
}

// negotiateLayer is step three: create the highest-fidelity compositor
// layer the host supports. Reports false after failing the chain.
func (sys *System) negotiateLayer(s *Session, hs host.Session) bool {
	cp, ok := sys.rt.(host.CompositorProvider)
	if !ok {
		sys.fail(s, fmt.Errorf("%w: host runtime cannot composite", layer.ErrNegotiationFailed))
		return false
	}
	comp, err := cp.NewCompositor(hs)
	if err != nil {
		sys.fail(s, fmt.Errorf("%w: %w", layer.ErrNegotiationFailed, err))
		return false
	}
	lay, err := layer.NewNegotiator(sys.opts.layerConfig, Logger()).Negotiate(comp)
	if err != nil {
		sys.fail(s, err)
		return false
	}
	s.lay = lay
	return true
}

// requestReferenceSpace is the final step. Reaching StateRunning
// activates the frame clock bridge; activating any earlier would produce
// poses against an undefined frame.
func (sys *System) requestReferenceSpace(s *Session, hs host.Session) {
	hs.RequestReferenceSpace(s.refSpace.String(), func(sp host.Space, err error) {
		if !sys.isCurrent(s) {
			return
		}
		if err != nil {
			sys.fail(s, fmt.Errorf("%w: %w", ErrReferenceSpace, err))
			return
		}

		s.space = sp
		s.grantedSpace = sp.Kind()
		s.setState(StateRunning)
		sys.bridge.Activate(&xrScheduler{s: s})
		Logger().Info("session running",
			"mode", s.mode.String(),
			"refSpace", s.grantedSpace,
			"layer", s.lay.Kind().String())
		sys.notify(s)
	})
}

// fail collapses an in-flight request back to idle, releasing the slot
// so a fresh request may be issued.
func (sys *System) fail(s *Session, err error) {
	Logger().Warn("session request failed", "error", err)
	sys.teardown(s, StateIdle, err)
}

// handleHostEnd reacts to the host's end event. It also fires for ends
// the bridge initiated itself, in which case teardown already ran and
// this is a no-op.
func (sys *System) handleHostEnd(s *Session) {
	sys.teardown(s, StateEnded, nil)
}

// handleVisibility tracks host visibility while presenting. A "hidden"
// notification keeps the session in StateRunning: frames may still be
// requested, they are simply not shown.
func (sys *System) handleVisibility(s *Session, v host.VisibilityState) {
	if !s.State().presenting() {
		return
	}
	var next SessionState
	switch v {
	case host.VisibilityVisible:
		next = StateVisible
	case host.VisibilityVisibleBlurred:
		next = StateVisibleBlurred
	case host.VisibilityHidden:
		next = StateRunning
	default:
		return
	}
	if s.state == next {
		return
	}
	s.setState(next)
	sys.notify(s)
}

// teardown is the single exit path for a session: it deactivates the
// frame clock bridge, ends the host session, destroys the compositor
// layer, drops the reference space, invalidates the snapshot, and
// releases the slot. It is
// idempotent; later host end events for an already-down session change
// nothing.
func (sys *System) teardown(s *Session, final SessionState, err error) {
	if s == nil {
		return
	}

	sys.mu.Lock()
	owned := sys.active == s
	if owned {
		sys.active = nil
	}
	alreadyDown := !s.live && !owned
	s.live = false
	sys.mu.Unlock()

	if alreadyDown {
		return
	}

	if owned {
		sys.bridge.Deactivate()
	}
	if hs := s.hostSession; hs != nil {
		s.hostSession = nil
		// Ending an already-ended host session is a no-op, so this is
		// safe for host-initiated ends too.
		hs.End()
	}
	if s.lay != nil {
		s.lay.Destroy()
		s.lay = nil
	}
	s.space = nil
	s.grantedSpace = ""
	s.snap.Clear()
	s.err = err
	s.setState(final)

	Logger().Debug("session released", "state", final.String())
	sys.notify(s)
}

// notify invokes the WithNotify callback, if configured.
func (sys *System) notify(s *Session) {
	if sys.opts.notify != nil {
		sys.opts.notify(s, s.State())
	}
}

// capabilityCache is the tri-state per-mode support cache. It is
// append-only: entries move from unknown to a definite answer, never back.
type capabilityCache struct {
	mu    sync.RWMutex
	modes map[SessionMode]bool
}

// get returns the cached authoritative answer for mode, if one exists.
func (c *capabilityCache) get(mode SessionMode) (supported, ok bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	supported, ok = c.modes[mode]
	return supported, ok
}

// record stores the host's answer unless one is already present.
func (c *capabilityCache) record(mode SessionMode, supported bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.modes == nil {
		c.modes = make(map[SessionMode]bool)
	}
	if _, exists := c.modes[mode]; exists {
		return
	}
	c.modes[mode] = supported
}
