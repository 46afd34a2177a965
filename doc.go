// Package webxr bridges a synchronous, poll-driven render loop to a
// browser-hosted XR session that is asynchronous, promise/event-driven,
// and exposes pose data only transiently inside a per-frame callback.
//
// # Overview
//
// webxr is part of the GoGPU ecosystem. It owns three things:
//
//   - the session lifecycle state machine, driven across the host's
//     asynchronous boundaries (capability query, session grant, layer
//     negotiation, reference-space grant, session end)
//   - the frame clock bridge, which substitutes the render loop's
//     generic animation-scheduling primitive with the XR session's own
//     while a session is presenting, and restores it on exit
//   - the per-frame snapshot, which marshals transient host pose and
//     texture data into a form the polling consumer can read for the
//     duration of one frame callback
//
// The actual 3D rendering pipeline, texture upload and compositing are
// out of scope: color and depth textures are exposed only as opaque
// per-view handles.
//
// # Quick Start
//
//	rt, err := host.Default()
//	if err != nil {
//	    log.Fatal(err)
//	}
//	sys := webxr.New(rt)
//
//	if !sys.IsAvailable() {
//	    return // no XR on this host
//	}
//
//	// Must be called from a user gesture on real browser hosts.
//	sess, err := sys.RequestSession(webxr.SessionModeImmersiveVR, webxr.RefSpaceLocalFloor)
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	// Render loop: schedule through the system; frame data is valid
//	// inside the callback only.
//	var tick func(now float64)
//	tick = func(now float64) {
//	    if frame, ok := sess.BeginFrame(); ok {
//	        for i := 0; i < frame.ViewCount; i++ {
//	            // render frame.Views[i]
//	        }
//	        sess.EndFrame()
//	    }
//	    sys.ScheduleFrame(tick)
//	}
//	sys.ScheduleFrame(tick)
//
// # Architecture
//
// The library is organized into:
//   - Public API: System, Session, Frame, package-level logger
//   - host: the collaborator contract for host XR runtimes, plus a
//     registry for runtime bindings and a simulated runtime (host/sim)
//   - layer: compositor layer negotiation with ordered projection-to-base
//     fallback
//   - frameclock: the single frame-scheduling primitive and its swap
//     mechanism
//   - snapshot: per-frame pose and handle marshaling with strict
//     invalidation
//
// # Concurrency
//
// The scheduling model is single-threaded cooperative: all host
// callbacks arrive on one logical thread, and suspension happens only at
// the asynchronous boundaries listed above. Frame callbacks are never
// reentered, so the snapshot needs no locking, only disciplined
// invalidation. Accessors called between frames report "no data" rather
// than stale values.
package webxr

// Version information
const (
	// Version is the current version of the library
	Version = "0.1.0"
)
