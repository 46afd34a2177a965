// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

// Package frameclock owns the single frame-scheduling primitive of the
// render loop.
//
// Exactly one Scheduler is active at a time. While no XR session exists,
// the active scheduler is a pass-through wrapping the host's generic
// animation primitive. When a session starts presenting, the session
// controller swaps in a session-driven scheduler; when the session ends,
// the pass-through is restored. The rest of the render loop schedules
// frames through the Bridge and never learns which scheduler is active.
//
// Swaps are bracketed by pausing and resuming the render loop driver so
// the new scheduler takes effect with the next scheduled tick, not the
// one already in flight.
package frameclock
