// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

// Package layer negotiates the compositor layer for an XR session.
//
// Two tiers exist: a projection layer (per-view sub-images, higher
// fidelity) and a base layer (one shared framebuffer, viewport-subdivided
// per view). Negotiation always attempts the projection tier first and
// falls back to the base tier only on an actual creation failure — never
// because the projection tier was merely untried.
package layer

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/gogpu/gputypes"

	"github.com/gogpu/webxr/host"
)

// Kind identifies which compositor layer tier is active.
type Kind uint8

const (
	// KindNone means no layer has been negotiated.
	KindNone Kind = iota

	// KindProjection is the per-view sub-image tier.
	KindProjection

	// KindBase is the shared-framebuffer fallback tier.
	KindBase
)

// String returns the layer kind name.
func (k Kind) String() string {
	switch k {
	case KindProjection:
		return "projection"
	case KindBase:
		return "base"
	default:
		return "none"
	}
}

// ErrNegotiationFailed is returned when neither layer tier could be
// created. It carries the session-request chain down with it.
var ErrNegotiationFailed = errors.New("layer: failed to create compositor layer")

// Config controls the formats and scale requested during negotiation.
type Config struct {
	// ColorFormat is the color texel format requested for the projection
	// tier.
	ColorFormat gputypes.TextureFormat

	// DepthFormat is the depth/stencil texel format requested for the
	// projection tier. TextureFormatUndefined requests no depth texture.
	DepthFormat gputypes.TextureFormat

	// ScaleFactor scales layer resolution relative to the host's
	// recommended render target size. 0 means 1.0.
	ScaleFactor float64
}

// DefaultConfig returns the format pair requested by default: 8-bit RGBA
// color with a combined 24-bit depth / 8-bit stencil attachment.
func DefaultConfig() Config {
	return Config{
		ColorFormat: gputypes.TextureFormatRGBA8Unorm,
		DepthFormat: gputypes.TextureFormatDepth24PlusStencil8,
		ScaleFactor: 1.0,
	}
}

// Layer is the negotiated compositor layer. Exactly one tier is populated.
// Its lifetime is bound to the session that negotiated it.
type Layer struct {
	kind       Kind
	projection host.ProjectionLayer
	base       host.BaseLayer
}

// Kind returns the active tier.
func (l *Layer) Kind() Kind {
	if l == nil {
		return KindNone
	}
	return l.kind
}

// RenderTargetSize returns the render target dimensions for the active
// tier: per-view texture size for projection, framebuffer size for base.
func (l *Layer) RenderTargetSize() (width, height int, ok bool) {
	switch l.Kind() {
	case KindProjection:
		w, h := l.projection.TextureSize()
		return w, h, true
	case KindBase:
		w, h := l.base.FramebufferSize()
		return w, h, true
	default:
		return 0, 0, false
	}
}

// SubImage returns the per-view sub-image for the given frame.
// Only the projection tier has sub-images.
func (l *Layer) SubImage(f host.Frame, viewIndex int) (host.SubImage, bool) {
	if l.Kind() != KindProjection {
		return host.SubImage{}, false
	}
	return l.projection.SubImage(f, viewIndex)
}

// Viewport returns the per-view viewport for the given frame.
// For the projection tier this is the sub-image viewport; for the base
// tier it is the framebuffer subdivision the host assigned to the view.
func (l *Layer) Viewport(f host.Frame, viewIndex int) (host.Viewport, bool) {
	switch l.Kind() {
	case KindProjection:
		sub, ok := l.projection.SubImage(f, viewIndex)
		if !ok {
			return host.Viewport{}, false
		}
		return sub.Viewport, true
	case KindBase:
		return l.base.Viewport(f, viewIndex)
	default:
		return host.Viewport{}, false
	}
}

// Framebuffer returns the shared framebuffer handle.
// Only the base tier has one; other tiers return zero.
func (l *Layer) Framebuffer() host.FramebufferID {
	if l.Kind() != KindBase {
		return 0
	}
	return l.base.Framebuffer()
}

// Destroy releases the host-side resources of whichever tier is active.
// Destroy is idempotent.
func (l *Layer) Destroy() {
	if l == nil {
		return
	}
	switch l.kind {
	case KindProjection:
		l.projection.Destroy()
	case KindBase:
		l.base.Destroy()
	}
	l.kind = KindNone
	l.projection = nil
	l.base = nil
}

// Negotiator creates the highest-fidelity layer a compositor supports.
type Negotiator struct {
	cfg Config
	log *slog.Logger
}

// NewNegotiator creates a Negotiator with the given config.
// A nil logger disables logging.
func NewNegotiator(cfg Config, log *slog.Logger) *Negotiator {
	if cfg.ScaleFactor <= 0 {
		cfg.ScaleFactor = 1.0
	}
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}
	return &Negotiator{cfg: cfg, log: log}
}

// Negotiate attempts the projection tier with the configured format pair,
// then falls back to the base tier. Both failing returns
// ErrNegotiationFailed wrapping the base-tier error.
func (n *Negotiator) Negotiate(comp host.Compositor) (*Layer, error) {
	proj, err := comp.CreateProjectionLayer(host.ProjectionLayerInit{
		ColorFormat: n.cfg.ColorFormat,
		DepthFormat: n.cfg.DepthFormat,
		ScaleFactor: n.cfg.ScaleFactor,
	})
	if err == nil {
		n.log.Info("negotiated compositor layer", "tier", KindProjection.String())
		return &Layer{kind: KindProjection, projection: proj}, nil
	}
	n.log.Warn("projection layer unavailable, falling back to base layer", "error", err)

	base, err := comp.CreateBaseLayer(host.BaseLayerInit{
		ScaleFactor: n.cfg.ScaleFactor,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrNegotiationFailed, err)
	}
	n.log.Info("negotiated compositor layer", "tier", KindBase.String())
	return &Layer{kind: KindBase, base: base}, nil
}
