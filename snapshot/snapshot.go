// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

// Package snapshot marshals transient host frame data into a form the
// polling consumer can read for the duration of one frame callback.
//
// A snapshot is valid only between Begin and Clear, which bracket the
// consumer callback inside the session-driven frame scheduler. Every
// accessor reports "no data" outside that window rather than returning
// stale values; the caller decides whether to substitute an identity
// matrix.
package snapshot

import (
	"github.com/gogpu/webxr/host"
	"github.com/gogpu/webxr/layer"
)

// MaxViews is the stereo maximum. Hosts reporting more views have the
// extras silently dropped.
const MaxViews = 2

// HeadIndex is the sentinel view index selecting the head transform
// instead of a per-eye transform.
const HeadIndex = -1

// viewData is one marshaled view.
type viewData struct {
	transform    host.Mat4
	projection   host.Mat4
	viewport     host.Viewport
	hasViewport  bool
	colorTexture host.TextureID
	depthTexture host.TextureID
}

// Builder owns the per-frame snapshot. It is exclusively owned by the
// single in-flight frame callback; no synchronization is used, only
// disciplined invalidation.
type Builder struct {
	valid       bool
	time        float64
	head        host.Mat4
	views       [MaxViews]viewData
	viewCount   int
	framebuffer host.FramebufferID
	targetW     int
	targetH     int
	hasTarget   bool
}

// NewBuilder creates an empty Builder. All accessors report no data until
// the first Begin.
func NewBuilder() *Builder {
	return &Builder{}
}

// Begin captures the given pose and layer state for the frame callback
// now in flight. View counts above MaxViews are clamped.
func (b *Builder) Begin(now float64, pose host.Pose, lay *layer.Layer, f host.Frame) {
	b.valid = true
	b.time = now
	b.head = pose.Transform

	n := len(pose.Views)
	if n > MaxViews {
		n = MaxViews
	}
	b.viewCount = n
	for i := 0; i < n; i++ {
		v := &b.views[i]
		v.transform = pose.Views[i].Transform
		v.projection = pose.Views[i].Projection
		v.viewport, v.hasViewport = lay.Viewport(f, i)
		if sub, ok := lay.SubImage(f, i); ok {
			v.colorTexture = sub.ColorTexture
			v.depthTexture = sub.DepthTexture
		} else {
			v.colorTexture = 0
			v.depthTexture = 0
		}
	}

	b.framebuffer = lay.Framebuffer()
	b.targetW, b.targetH, b.hasTarget = lay.RenderTargetSize()
}

// Clear invalidates the snapshot. Must run before the owning frame
// callback returns so no reader ever observes stale values.
func (b *Builder) Clear() {
	*b = Builder{}
}

// Valid reports whether a pose is currently available.
func (b *Builder) Valid() bool {
	return b.valid
}

// Time returns the host timestamp of the current frame, or false when no
// frame is in flight.
func (b *Builder) Time() (float64, bool) {
	if !b.valid {
		return 0, false
	}
	return b.time, true
}

// ViewCount returns the number of views in the current pose.
// It defaults to 1 when no pose exists, and never exceeds MaxViews.
func (b *Builder) ViewCount() int {
	if !b.valid || b.viewCount == 0 {
		return 1
	}
	return b.viewCount
}

// Transform returns the transform for a view, or the head transform when
// viewIndex is HeadIndex.
func (b *Builder) Transform(viewIndex int) (host.Mat4, bool) {
	if !b.valid {
		return host.Mat4{}, false
	}
	if viewIndex == HeadIndex {
		return b.head, true
	}
	if viewIndex < 0 || viewIndex >= b.viewCount {
		return host.Mat4{}, false
	}
	return b.views[viewIndex].transform, true
}

// Projection returns the projection matrix for a view.
func (b *Builder) Projection(viewIndex int) (host.Mat4, bool) {
	if !b.valid || viewIndex < 0 || viewIndex >= b.viewCount {
		return host.Mat4{}, false
	}
	return b.views[viewIndex].projection, true
}

// Viewport returns the viewport rectangle for a view.
func (b *Builder) Viewport(viewIndex int) (host.Viewport, bool) {
	if !b.valid || viewIndex < 0 || viewIndex >= b.viewCount {
		return host.Viewport{}, false
	}
	v := b.views[viewIndex]
	if !v.hasViewport {
		return host.Viewport{}, false
	}
	return v.viewport, true
}

// RenderTargetSize returns the active layer's render target dimensions.
func (b *Builder) RenderTargetSize() (width, height int, ok bool) {
	if !b.valid || !b.hasTarget {
		return 0, 0, false
	}
	return b.targetW, b.targetH, true
}

// ColorTexture returns the color texture handle for a view.
// Only the projection-layer path exposes per-view textures.
func (b *Builder) ColorTexture(viewIndex int) (host.TextureID, bool) {
	if !b.valid || viewIndex < 0 || viewIndex >= b.viewCount {
		return 0, false
	}
	if b.views[viewIndex].colorTexture == 0 {
		return 0, false
	}
	return b.views[viewIndex].colorTexture, true
}

// DepthTexture returns the depth texture handle for a view, when depth
// was granted on the projection layer.
func (b *Builder) DepthTexture(viewIndex int) (host.TextureID, bool) {
	if !b.valid || viewIndex < 0 || viewIndex >= b.viewCount {
		return 0, false
	}
	if b.views[viewIndex].depthTexture == 0 {
		return 0, false
	}
	return b.views[viewIndex].depthTexture, true
}

// Framebuffer returns the shared framebuffer handle on the base-layer
// path, or zero on the projection-layer path and between frames.
func (b *Builder) Framebuffer() host.FramebufferID {
	if !b.valid {
		return 0
	}
	return b.framebuffer
}
