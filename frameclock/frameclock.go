// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package frameclock

import (
	"sync/atomic"

	"github.com/gogpu/webxr/host"
)

// Callback is a consumer frame callback. now is the host's timestamp for
// the frame, in milliseconds.
type Callback func(now float64)

// Scheduler schedules one invocation of a consumer frame callback.
// Implementations decide which host primitive drives the invocation.
type Scheduler interface {
	// Name returns the scheduler identifier (e.g. "passthrough", "xr").
	Name() string

	// Schedule arranges for cb to run on the next frame boundary.
	// Each call schedules exactly one invocation.
	Schedule(cb Callback)
}

// PassThrough is the default Scheduler: it forwards to the host's generic
// animation primitive and attaches no XR state.
type PassThrough struct {
	rt host.Runtime
}

// NewPassThrough creates a pass-through scheduler over the given runtime.
// A nil runtime yields a scheduler that invokes callbacks immediately with
// a zero timestamp, the identity behavior for hosts without a loop.
func NewPassThrough(rt host.Runtime) *PassThrough {
	return &PassThrough{rt: rt}
}

// Name implements Scheduler.
func (*PassThrough) Name() string { return "passthrough" }

// Schedule implements Scheduler.
func (p *PassThrough) Schedule(cb Callback) {
	if p.rt == nil {
		cb(0)
		return
	}
	p.rt.RequestAnimationFrame(func(now float64) { cb(now) })
}

// Bridge holds the single owned reference to the active Scheduler.
//
// The active scheduler is stored atomically: Schedule may be called from
// the render loop while a session transition swaps schedulers. Activate
// and Deactivate must only be called from the session controller.
type Bridge struct {
	fallback Scheduler
	driver   host.LoopDriver
	active   atomic.Pointer[schedulerBox]
}

// schedulerBox wraps a Scheduler so atomic.Pointer has a concrete type.
type schedulerBox struct{ s Scheduler }

// NewBridge creates a Bridge whose initial scheduler is fallback.
// driver may be nil when the render loop needs no pause around swaps.
func NewBridge(fallback Scheduler, driver host.LoopDriver) *Bridge {
	if driver == nil {
		driver = host.NopLoopDriver{}
	}
	b := &Bridge{fallback: fallback, driver: driver}
	b.active.Store(&schedulerBox{s: fallback})
	return b
}

// Schedule forwards to the active scheduler.
func (b *Bridge) Schedule(cb Callback) {
	b.active.Load().s.Schedule(cb)
}

// Active returns the name of the active scheduler.
func (b *Bridge) Active() string {
	return b.active.Load().s.Name()
}

// Activate swaps s in as the active scheduler and cycles the loop driver
// so the swap takes effect starting with the next scheduled tick.
func (b *Bridge) Activate(s Scheduler) {
	b.active.Store(&schedulerBox{s: s})
	b.driver.Pause()
	b.driver.Resume()
}

// Deactivate restores the fallback scheduler. Calling Deactivate when the
// fallback is already active is a no-op: the driver is not cycled again.
func (b *Bridge) Deactivate() {
	if b.active.Load().s == b.fallback {
		return
	}
	b.active.Store(&schedulerBox{s: b.fallback})
	b.driver.Pause()
	b.driver.Resume()
}
