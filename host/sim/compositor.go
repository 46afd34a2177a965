// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package sim

import (
	"errors"

	"github.com/gogpu/gputypes"

	"github.com/gogpu/webxr/host"
)

// ErrTierUnsupported is returned when a layer tier is disabled in the
// runtime config.
var ErrTierUnsupported = errors.New("sim: compositor tier not supported")

// compositor creates simulated layers sized from the runtime config.
type compositor struct {
	rt *Runtime
}

// CreateProjectionLayer implements host.Compositor.
func (c *compositor) CreateProjectionLayer(init host.ProjectionLayerInit) (host.ProjectionLayer, error) {
	if !c.rt.cfg.ProjectionLayers {
		return nil, ErrTierUnsupported
	}
	if init.ColorFormat == gputypes.TextureFormatUndefined {
		return nil, errors.New("sim: projection layer requires a color format")
	}
	scale := init.ScaleFactor
	if scale <= 0 {
		scale = 1.0
	}
	return &projectionLayer{
		rt:       c.rt,
		width:    int(float64(c.rt.cfg.EyeWidth) * scale),
		height:   int(float64(c.rt.cfg.EyeHeight) * scale),
		hasDepth: init.DepthFormat != gputypes.TextureFormatUndefined,
	}, nil
}

// CreateBaseLayer implements host.Compositor.
func (c *compositor) CreateBaseLayer(init host.BaseLayerInit) (host.BaseLayer, error) {
	if !c.rt.cfg.BaseLayers {
		return nil, ErrTierUnsupported
	}
	scale := init.ScaleFactor
	if scale <= 0 {
		scale = 1.0
	}
	c.rt.nextTex++
	return &baseLayer{
		rt: c.rt,
		fb: host.FramebufferID(c.rt.nextTex),
		// Side-by-side stereo packing in one framebuffer.
		width:  int(float64(c.rt.cfg.EyeWidth*c.rt.clampedViews()) * scale),
		height: int(float64(c.rt.cfg.EyeHeight) * scale),
	}, nil
}

// clampedViews caps the configured view count at the packing limit of a
// shared framebuffer.
func (r *Runtime) clampedViews() int {
	if r.cfg.Views > 2 {
		return 2
	}
	return r.cfg.Views
}

// projectionLayer is the per-view sub-image tier. Texture handles rotate
// per frame, as host swap chains do.
type projectionLayer struct {
	rt        *Runtime
	width     int
	height    int
	hasDepth  bool
	destroyed bool
}

// TextureSize implements host.ProjectionLayer.
func (l *projectionLayer) TextureSize() (int, int) { return l.width, l.height }

// SubImage implements host.ProjectionLayer.
func (l *projectionLayer) SubImage(f host.Frame, viewIndex int) (host.SubImage, bool) {
	ff, ok := f.(*frame)
	if !ok || !ff.live || l.destroyed {
		return host.SubImage{}, false
	}
	if viewIndex < 0 || viewIndex >= l.rt.cfg.Views {
		return host.SubImage{}, false
	}
	// Distinct, stable-within-frame handles: two per view per frame.
	base := uint32(ff.seq)*16 + uint32(viewIndex)*2 //nolint:gosec // small test values
	sub := host.SubImage{
		ColorTexture: host.TextureID(0x1000 + base),
		Viewport:     host.Viewport{X: 0, Y: 0, Width: l.width, Height: l.height},
	}
	if l.hasDepth {
		sub.DepthTexture = host.TextureID(0x2000 + base)
	}
	return sub, true
}

// Destroy implements host.ProjectionLayer.
func (l *projectionLayer) Destroy() { l.destroyed = true }

// baseLayer is the shared-framebuffer fallback tier.
type baseLayer struct {
	rt        *Runtime
	fb        host.FramebufferID
	width     int
	height    int
	destroyed bool
}

// Framebuffer implements host.BaseLayer.
func (l *baseLayer) Framebuffer() host.FramebufferID {
	if l.destroyed {
		return 0
	}
	return l.fb
}

// FramebufferSize implements host.BaseLayer.
func (l *baseLayer) FramebufferSize() (int, int) { return l.width, l.height }

// Viewport implements host.BaseLayer.
func (l *baseLayer) Viewport(f host.Frame, viewIndex int) (host.Viewport, bool) {
	ff, ok := f.(*frame)
	if !ok || !ff.live || l.destroyed {
		return host.Viewport{}, false
	}
	views := l.rt.clampedViews()
	if viewIndex < 0 || viewIndex >= l.rt.cfg.Views {
		return host.Viewport{}, false
	}
	if viewIndex >= views {
		// Extra host views share the last packed viewport slot.
		viewIndex = views - 1
	}
	w := l.width / views
	return host.Viewport{X: viewIndex * w, Y: 0, Width: w, Height: l.height}, true
}

// Destroy implements host.BaseLayer.
func (l *baseLayer) Destroy() { l.destroyed = true }

var (
	_ host.Compositor      = (*compositor)(nil)
	_ host.ProjectionLayer = (*projectionLayer)(nil)
	_ host.BaseLayer       = (*baseLayer)(nil)
)
