// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package host

import (
	"github.com/gogpu/gputypes"
)

// Session mode strings, as the host platform names them.
const (
	ModeInline      = "inline"
	ModeImmersiveVR = "immersive-vr"
	ModeImmersiveAR = "immersive-ar"
)

// Reference space kind strings, as the host platform names them.
const (
	SpaceViewer       = "viewer"
	SpaceLocal        = "local"
	SpaceLocalFloor   = "local-floor"
	SpaceBoundedFloor = "bounded-floor"
	SpaceUnbounded    = "unbounded"
)

// VisibilityState describes how session content is presented to the user.
type VisibilityState string

// Visibility states reported by the host's visibility-change event.
const (
	VisibilityVisible        VisibilityState = "visible"
	VisibilityVisibleBlurred VisibilityState = "visible-blurred"
	VisibilityHidden         VisibilityState = "hidden"
)

// FramebufferID is an opaque host-side framebuffer handle.
// Zero means "no framebuffer".
type FramebufferID uint32

// TextureID is an opaque host-side texture handle.
// Zero means "no texture".
type TextureID uint32

// Runtime is the entry point into a host XR platform.
//
// All methods taking a completion callback are asynchronous: they return
// immediately and invoke the callback exactly once later, on the single
// logical thread that drives the render loop. Implementations must never
// invoke a callback concurrently with other bridge code.
type Runtime interface {
	// Available reports synchronously whether the host exposes XR at all.
	Available() bool

	// SupportsSession queries support for a session mode string.
	// The result arrives asynchronously via done.
	SupportsSession(mode string, done func(supported bool))

	// EnsureCompatible prepares the rendering surface for XR presentation
	// (the host-side "make XR compatible" step). done receives a non-nil
	// error if the surface cannot be made compatible.
	EnsureCompatible(done func(err error))

	// RequestSession asks the host to grant a session of the given mode.
	// requiredFeatures lists feature strings the session cannot function
	// without (typically the requested reference-space kind). On success
	// done receives a live Session; on rejection a non-nil error.
	RequestSession(mode string, requiredFeatures []string, done func(s Session, err error))

	// RequestAnimationFrame schedules cb for the next generic display
	// refresh. This is the host's non-XR scheduling primitive; it carries
	// no pose data.
	RequestAnimationFrame(cb func(now float64))
}

// Session is a live host-side XR session.
type Session interface {
	// OnEnd registers fn to be invoked when the host ends the session,
	// whether by user action, device removal, or an End call.
	// Only one handler is retained; later calls replace earlier ones.
	OnEnd(fn func())

	// OnVisibilityChange registers fn for visibility-change events.
	// Only one handler is retained; later calls replace earlier ones.
	OnVisibilityChange(fn func(state VisibilityState))

	// RequestReferenceSpace asks for the coordinate frame poses will be
	// reported against. The granted Space's Kind may differ in formatting
	// from the requested kind string.
	RequestReferenceSpace(kind string, done func(space Space, err error))

	// RequestAnimationFrame schedules cb for the session's next frame.
	// Unlike the Runtime primitive, the callback receives a Frame that is
	// valid only until cb returns.
	RequestAnimationFrame(cb FrameCallback)

	// End asks the host to end the session. Ending an already-ended
	// session is a no-op. The OnEnd handler fires when teardown completes.
	End()
}

// FrameCallback receives one host frame. The Frame and anything derived
// from it (poses, sub-images, viewports) are invalid after cb returns.
type FrameCallback func(now float64, f Frame)

// Space is a granted reference space.
type Space interface {
	// Kind returns the space-kind string the host actually granted.
	Kind() string
}

// Frame is the per-refresh snapshot object the host hands to a session
// frame callback. It is transient: host implementations may recycle it.
type Frame interface {
	// ViewerPose computes the viewer pose against the given reference
	// space. ok is false when tracking is lost or the space is nil.
	ViewerPose(space Space) (pose Pose, ok bool)
}

// Pose is a moment-in-time viewer pose.
type Pose struct {
	// Transform is the head transform in reference-space coordinates.
	Transform Mat4

	// Views holds one entry per eye the host wants rendered. Mono hosts
	// report one view; stereo hosts two. Hosts may report more, which the
	// bridge clamps.
	Views []View
}

// View is a single eye's worth of pose data.
type View struct {
	// Eye is "left", "right", or "none".
	Eye string

	// Transform is the eye transform in reference-space coordinates.
	Transform Mat4

	// Projection is the projection matrix the host wants this eye
	// rendered with.
	Projection Mat4
}

// ProjectionLayerInit configures creation of a projection layer.
type ProjectionLayerInit struct {
	// ColorFormat is the requested color texel format.
	ColorFormat gputypes.TextureFormat

	// DepthFormat is the requested depth/stencil texel format.
	// TextureFormatUndefined requests no depth attachment.
	DepthFormat gputypes.TextureFormat

	// ScaleFactor scales the layer's texture resolution relative to the
	// host's recommended size. 0 means 1.0.
	ScaleFactor float64
}

// BaseLayerInit configures creation of a base (fallback) layer.
type BaseLayerInit struct {
	// ScaleFactor scales the framebuffer resolution relative to the
	// host's recommended size. 0 means 1.0.
	ScaleFactor float64
}

// Compositor creates compositor layers for a session. A new Compositor is
// obtained per session via NewCompositor on the runtime's CompositorProvider.
type Compositor interface {
	// CreateProjectionLayer attempts the high-fidelity tier: a layer with
	// per-view sub-images. Returns an error when the capability is absent
	// or the host rejects the parameters.
	CreateProjectionLayer(init ProjectionLayerInit) (ProjectionLayer, error)

	// CreateBaseLayer creates the fallback tier: a single shared
	// framebuffer subdivided into per-view viewports.
	CreateBaseLayer(init BaseLayerInit) (BaseLayer, error)
}

// CompositorProvider is implemented by runtimes that can composite.
// NewCompositor binds the compositor to the session and the rendering
// surface prepared by EnsureCompatible.
type CompositorProvider interface {
	NewCompositor(s Session) (Compositor, error)
}

// ProjectionLayer is the high-fidelity compositor layer tier.
type ProjectionLayer interface {
	// TextureSize returns the per-view texture dimensions in pixels.
	TextureSize() (width, height int)

	// SubImage returns the sub-image for one view of the given frame.
	// ok is false when the view index is out of range for this frame.
	// The returned handles are valid only for the current frame callback.
	SubImage(f Frame, viewIndex int) (SubImage, bool)

	// Destroy releases the layer's host-side resources.
	Destroy()
}

// SubImage is one view's slice of a projection layer for one frame.
type SubImage struct {
	ColorTexture TextureID
	DepthTexture TextureID // zero when no depth attachment was granted
	Viewport     Viewport
}

// BaseLayer is the fallback compositor layer tier: one shared framebuffer,
// viewport-subdivided per view.
type BaseLayer interface {
	// Framebuffer returns the shared framebuffer handle.
	Framebuffer() FramebufferID

	// FramebufferSize returns the framebuffer dimensions in pixels.
	FramebufferSize() (width, height int)

	// Viewport returns the viewport for one view of the given frame.
	// ok is false when the view index is out of range for this frame.
	Viewport(f Frame, viewIndex int) (Viewport, bool)

	// Destroy releases the layer's host-side resources.
	Destroy()
}

// LoopDriver is the render loop driver the bridge pauses and resumes when
// it swaps the frame-scheduling primitive, so the swap takes effect on the
// next scheduled tick rather than the one already in flight.
type LoopDriver interface {
	Pause()
	Resume()
}

// NopLoopDriver is a LoopDriver for hosts whose render loop needs no
// explicit pause around a scheduler swap.
type NopLoopDriver struct{}

// Pause implements LoopDriver.
func (NopLoopDriver) Pause() {}

// Resume implements LoopDriver.
func (NopLoopDriver) Resume() {}

var _ LoopDriver = NopLoopDriver{}
