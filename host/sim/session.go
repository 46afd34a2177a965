// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package sim

import (
	"github.com/gogpu/webxr/host"
)

// Session is a simulated host session.
type Session struct {
	rt       *Runtime
	mode     string
	features []string

	onEnd    func()
	onVis    func(host.VisibilityState)
	frameCbs []host.FrameCallback
	ended    bool
}

// Mode returns the mode string the session was requested with.
func (s *Session) Mode() string { return s.mode }

// RequiredFeatures returns the feature list the session was requested with.
func (s *Session) RequiredFeatures() []string { return s.features }

// Ended reports whether the host has torn the session down.
func (s *Session) Ended() bool { return s.ended }

// OnEnd implements host.Session.
func (s *Session) OnEnd(fn func()) { s.onEnd = fn }

// OnVisibilityChange implements host.Session.
func (s *Session) OnVisibilityChange(fn func(host.VisibilityState)) { s.onVis = fn }

// RequestReferenceSpace implements host.Session.
func (s *Session) RequestReferenceSpace(kind string, done func(host.Space, error)) {
	s.rt.queue(func() {
		if s.rt.cfg.ReferenceSpaceErr != nil {
			done(nil, s.rt.cfg.ReferenceSpaceErr)
			return
		}
		granted := kind
		if s.rt.cfg.GrantedSpaceKind != "" {
			granted = s.rt.cfg.GrantedSpaceKind
		}
		done(space{kind: granted}, nil)
	})
}

// RequestAnimationFrame implements host.Session.
// Callbacks accumulate until the next PumpFrame; requesting on an ended
// session is silently dropped, as the host platform does.
func (s *Session) RequestAnimationFrame(cb host.FrameCallback) {
	if s.ended {
		return
	}
	s.frameCbs = append(s.frameCbs, cb)
}

// End implements host.Session. The end event is delivered asynchronously
// via the completion queue; ending twice is a no-op.
func (s *Session) End() {
	if s.ended {
		return
	}
	s.rt.queue(func() { s.finish() })
}

// finish tears the session down and fires the end handler once.
func (s *Session) finish() {
	if s.ended {
		return
	}
	s.ended = true
	s.frameCbs = nil
	if s.rt.session == s {
		s.rt.session = nil
	}
	if s.onEnd != nil {
		s.onEnd()
	}
}

// space is a granted reference space.
type space struct{ kind string }

// Kind implements host.Space.
func (s space) Kind() string { return s.kind }

// frame is the transient per-refresh frame object. live is cleared when
// the pumping callback returns, after which poses are refused.
type frame struct {
	rt   *Runtime
	seq  int
	live bool
}

// ViewerPose implements host.Frame.
func (f *frame) ViewerPose(sp host.Space) (host.Pose, bool) {
	if !f.live || sp == nil {
		return host.Pose{}, false
	}
	return f.rt.pose(), true
}

var (
	_ host.Session            = (*Session)(nil)
	_ host.Frame              = (*frame)(nil)
	_ host.Runtime            = (*Runtime)(nil)
	_ host.CompositorProvider = (*Runtime)(nil)
	_ host.LoopDriver         = (*Runtime)(nil)
)
