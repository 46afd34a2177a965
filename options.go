package webxr

import (
	"github.com/gogpu/webxr/host"
	"github.com/gogpu/webxr/layer"
)

// Option configures a System during creation.
//
// Example:
//
//	// Defaults: layer formats RGBA8 + Depth24PlusStencil8, driver taken
//	// from the runtime when it implements host.LoopDriver.
//	sys := webxr.New(rt)
//
//	// Custom layer negotiation config:
//	sys := webxr.New(rt, webxr.WithLayerConfig(layer.Config{
//	    ColorFormat: gputypes.TextureFormatRGBA8Unorm,
//	    ScaleFactor: 0.8,
//	}))
type Option func(*systemOptions)

// systemOptions holds optional configuration for System creation.
type systemOptions struct {
	layerConfig layer.Config
	driver      host.LoopDriver
	notify      func(s *Session, state SessionState)
}

// defaultOptions returns the default system options.
func defaultOptions() systemOptions {
	return systemOptions{
		layerConfig: layer.DefaultConfig(),
	}
}

// WithLayerConfig sets the compositor layer negotiation config: the
// color/depth texel format pair requested for the projection tier and the
// resolution scale for both tiers.
func WithLayerConfig(cfg layer.Config) Option {
	return func(o *systemOptions) {
		o.layerConfig = cfg
	}
}

// WithLoopDriver sets the render loop driver the frame clock bridge
// pauses and resumes around scheduler swaps. Without this option the
// runtime itself is used when it implements host.LoopDriver.
func WithLoopDriver(d host.LoopDriver) Option {
	return func(o *systemOptions) {
		o.driver = d
	}
}

// WithNotify registers a callback invoked after every session state
// transition, including request failures collapsing back to idle.
// The callback runs on the host's logical thread; it must not block.
func WithNotify(fn func(s *Session, state SessionState)) Option {
	return func(o *systemOptions) {
		o.notify = fn
	}
}
