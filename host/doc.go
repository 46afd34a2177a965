// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

// Package host defines the contract between the XR bridge and the
// browser-hosted XR runtime it drives.
//
// The bridge core (package webxr and its sub-packages) never talks to a
// browser directly. It talks to a Runtime, which abstracts the asynchronous,
// promise-and-event shaped surface of the host platform:
//
//   - an availability flag and an asynchronous per-mode support query
//   - an asynchronous session request taking a mode string and a
//     required-features list
//   - session objects that emit "end" and "visibility change" events
//   - a reference-space request keyed by a space-kind string
//   - a per-frame pose exposing a head transform and per-eye view data
//   - compositor-layer creation in two tiers (projection, base)
//
// # Asynchrony model
//
// Every asynchronous host operation takes a completion callback instead of
// returning a result. The host must invoke each callback exactly once, from
// the single logical thread of control that drives the render loop. Callers
// are expected to gate each continuation on session identity; see the
// session controller in package webxr.
//
// # Handles
//
// GPU objects owned by the host (framebuffers, textures) never cross the
// boundary as pointers. They cross as typed integer IDs (FramebufferID,
// TextureID) that are only meaningful back on the host side.
//
// # Registry
//
// Host runtime bindings self-register via Register, the same way rendering
// backends register with the surface registry in gogpu/gg. Default() selects
// the highest-priority available runtime, so applications normally write:
//
//	rt, err := host.Default()
//	if err != nil { ... }
//	sys := webxr.New(rt)
//
// The sim sub-package provides a deterministic in-memory runtime registered
// at low priority, suitable for tests and headless development.
package host
