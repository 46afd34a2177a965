// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

// Package sim provides a deterministic in-memory host runtime.
//
// The simulated runtime implements the full host contract without a
// browser: asynchronous completions are queued and released explicitly
// with Settle, and frames are produced explicitly with PumpFrame. Tests
// and headless programs control the exact interleaving of session
// establishment, frame delivery, visibility changes and teardown.
//
// The runtime registers itself with the host registry under the name
// "sim" at low priority.
//
// A sim Runtime is not safe for concurrent use; it models the host
// platform's single logical thread of control.
package sim

import (
	"errors"
	"fmt"

	"github.com/gogpu/webxr/host"
)

func init() {
	host.Register("sim", 10, func() (host.Runtime, error) {
		return New(DefaultConfig()), nil
	}, nil)
}

// Config scripts the simulated host's behavior.
type Config struct {
	// Available is the coarse XR availability flag.
	Available bool

	// SupportedModes maps mode strings to per-mode support.
	SupportedModes map[string]bool

	// CompatibilityErr, when non-nil, makes the surface-compatibility
	// step reject with this error.
	CompatibilityErr error

	// SessionErr, when non-nil, makes session requests reject with this
	// error.
	SessionErr error

	// ReferenceSpaceErr, when non-nil, makes reference-space requests
	// reject with this error.
	ReferenceSpaceErr error

	// GrantedSpaceKind overrides the space-kind string the host reports
	// granting. Empty echoes the requested kind.
	GrantedSpaceKind string

	// ProjectionLayers enables the projection layer tier.
	ProjectionLayers bool

	// BaseLayers enables the base layer tier.
	BaseLayers bool

	// Views is the number of views reported per frame.
	Views int

	// EyeWidth, EyeHeight are the per-view render dimensions.
	EyeWidth, EyeHeight int

	// PoseFunc overrides pose generation. seq increments once per pumped
	// frame. Nil uses a built-in generator producing distinct matrices
	// per frame and per view.
	PoseFunc func(seq, views int) host.Pose
}

// DefaultConfig returns a VR-capable host: available, immersive-vr and
// inline supported, both layer tiers present, stereo views at 1024x1024
// per eye.
func DefaultConfig() Config {
	return Config{
		Available: true,
		SupportedModes: map[string]bool{
			host.ModeInline:      true,
			host.ModeImmersiveVR: true,
		},
		ProjectionLayers: true,
		BaseLayers:       true,
		Views:            2,
		EyeWidth:         1024,
		EyeHeight:        1024,
	}
}

// Runtime is the simulated host runtime. It implements host.Runtime,
// host.CompositorProvider and host.LoopDriver.
type Runtime struct {
	cfg Config

	pending []func()             // queued async completions
	rafGen  []func(now float64)  // generic animation callbacks
	session *Session

	now     float64
	seq     int
	nextTex uint32

	pauses  int
	resumes int
	paused  bool
}

// New creates a simulated runtime with the given config.
func New(cfg Config) *Runtime {
	if cfg.Views <= 0 {
		cfg.Views = 1
	}
	if cfg.EyeWidth <= 0 {
		cfg.EyeWidth = 1024
	}
	if cfg.EyeHeight <= 0 {
		cfg.EyeHeight = 1024
	}
	return &Runtime{cfg: cfg, nextTex: 0x100}
}

// Available implements host.Runtime.
func (r *Runtime) Available() bool {
	return r.cfg.Available
}

// SupportsSession implements host.Runtime.
func (r *Runtime) SupportsSession(mode string, done func(bool)) {
	r.queue(func() { done(r.cfg.SupportedModes[mode]) })
}

// EnsureCompatible implements host.Runtime.
func (r *Runtime) EnsureCompatible(done func(error)) {
	r.queue(func() { done(r.cfg.CompatibilityErr) })
}

// RequestSession implements host.Runtime.
func (r *Runtime) RequestSession(mode string, requiredFeatures []string, done func(host.Session, error)) {
	r.queue(func() {
		if r.cfg.SessionErr != nil {
			done(nil, r.cfg.SessionErr)
			return
		}
		if !r.cfg.SupportedModes[mode] {
			done(nil, fmt.Errorf("sim: session mode %q not supported", mode))
			return
		}
		if r.session != nil && !r.session.ended {
			done(nil, errors.New("sim: a session is already presenting"))
			return
		}
		s := &Session{rt: r, mode: mode, features: append([]string(nil), requiredFeatures...)}
		r.session = s
		done(s, nil)
	})
}

// RequestAnimationFrame implements host.Runtime.
func (r *Runtime) RequestAnimationFrame(cb func(now float64)) {
	r.rafGen = append(r.rafGen, cb)
}

// NewCompositor implements host.CompositorProvider.
func (r *Runtime) NewCompositor(s host.Session) (host.Compositor, error) {
	ss, ok := s.(*Session)
	if !ok || ss.rt != r {
		return nil, errors.New("sim: session does not belong to this runtime")
	}
	return &compositor{rt: r}, nil
}

// Pause implements host.LoopDriver.
func (r *Runtime) Pause() {
	r.pauses++
	r.paused = true
}

// Resume implements host.LoopDriver.
func (r *Runtime) Resume() {
	r.resumes++
	r.paused = false
}

// Pauses returns how many times the loop driver was paused.
func (r *Runtime) Pauses() int { return r.pauses }

// Resumes returns how many times the loop driver was resumed.
func (r *Runtime) Resumes() int { return r.resumes }

// Settle runs queued asynchronous completions until none remain,
// returning how many ran. Completions queued by completions run too.
func (r *Runtime) Settle() int {
	n := 0
	for len(r.pending) > 0 {
		next := r.pending[0]
		r.pending = r.pending[1:]
		next()
		n++
	}
	return n
}

// PumpFrame advances the simulated clock one display refresh and fires
// every scheduled animation callback exactly once: generic callbacks
// first, then session frame callbacks with a fresh transient frame.
// A paused loop driver delivers nothing.
func (r *Runtime) PumpFrame() {
	if r.paused {
		return
	}
	r.now += 1000.0 / 90.0
	r.seq++

	generic := r.rafGen
	r.rafGen = nil
	for _, cb := range generic {
		cb(r.now)
	}

	s := r.session
	if s == nil || s.ended || len(s.frameCbs) == 0 {
		return
	}
	cbs := s.frameCbs
	s.frameCbs = nil
	f := &frame{rt: r, seq: r.seq, live: true}
	for _, cb := range cbs {
		cb(r.now, f)
	}
	f.live = false
}

// EndSessionFromHost simulates a host-initiated session end (user exit,
// device removal). The end event is queued like any other completion.
func (r *Runtime) EndSessionFromHost() {
	if r.session == nil || r.session.ended {
		return
	}
	s := r.session
	r.queue(func() { s.finish() })
}

// SetVisibility queues a visibility-change event on the live session.
func (r *Runtime) SetVisibility(state host.VisibilityState) {
	s := r.session
	if s == nil || s.ended {
		return
	}
	r.queue(func() {
		if !s.ended && s.onVis != nil {
			s.onVis(state)
		}
	})
}

// HasPendingFrameRequests reports whether any session frame callback is
// scheduled but not yet delivered.
func (r *Runtime) HasPendingFrameRequests() bool {
	return r.session != nil && len(r.session.frameCbs) > 0
}

// HasPendingAnimationRequests reports whether any generic animation
// callback is scheduled but not yet delivered.
func (r *Runtime) HasPendingAnimationRequests() bool {
	return len(r.rafGen) > 0
}

func (r *Runtime) queue(fn func()) {
	r.pending = append(r.pending, fn)
}

func (r *Runtime) pose() host.Pose {
	if r.cfg.PoseFunc != nil {
		return r.cfg.PoseFunc(r.seq, r.cfg.Views)
	}
	return generatePose(r.seq, r.cfg.Views)
}

// generatePose builds a plausible pose: the head drifts along +z per
// frame, eyes sit at a fixed interpupillary offset, and each projection
// is a perspective matrix skewed differently per eye so every matrix in
// a stereo frame is distinct.
func generatePose(seq, views int) host.Pose {
	drift := float32(seq) * 0.01
	head := host.Identity()
	head[14] = drift

	p := host.Pose{Transform: head}
	for i := 0; i < views; i++ {
		eye := "none"
		offset := float32(0)
		skew := float32(0)
		if views > 1 {
			if i == 0 {
				eye, offset, skew = "left", -0.032, -0.08
			} else {
				eye, offset, skew = "right", 0.032, 0.08
			}
		}

		t := host.Identity()
		t[12] = offset + float32(i)*0.001
		t[14] = drift

		// Symmetric-frustum perspective with a per-eye horizontal skew
		// and a per-frame near-plane wobble so matrices differ frame to
		// frame as real tracking data does.
		proj := host.Mat4{}
		proj[0] = 1.19175
		proj[5] = 1.19175
		proj[8] = skew + float32(i)*0.001
		proj[10] = -1.0001 - float32(seq)*1e-5
		proj[11] = -1
		proj[14] = -0.02
		p.Views = append(p.Views, host.View{Eye: eye, Transform: t, Projection: proj})
	}
	return p
}
