// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package sim

import (
	"errors"
	"testing"

	"github.com/gogpu/gputypes"

	"github.com/gogpu/webxr/host"
)

// requestSession drives a session request to completion and fails the
// test on rejection.
func requestSession(t *testing.T, rt *Runtime, mode string) *Session {
	t.Helper()
	var got host.Session
	var gotErr error
	rt.RequestSession(mode, nil, func(s host.Session, err error) {
		got, gotErr = s, err
	})
	rt.Settle()
	if gotErr != nil {
		t.Fatalf("RequestSession(%q) error = %v", mode, gotErr)
	}
	return got.(*Session)
}

func TestSettleDefersCompletions(t *testing.T) {
	rt := New(DefaultConfig())

	var answered bool
	rt.SupportsSession(host.ModeImmersiveVR, func(ok bool) {
		answered = ok
	})
	if answered {
		t.Fatal("completion fired synchronously, want deferred until Settle")
	}
	if n := rt.Settle(); n != 1 {
		t.Errorf("Settle() = %d completions, want 1", n)
	}
	if !answered {
		t.Error("immersive-vr support = false, want true")
	}
}

func TestSettleRunsChainedCompletions(t *testing.T) {
	rt := New(DefaultConfig())

	var order []string
	rt.EnsureCompatible(func(error) {
		order = append(order, "compat")
		rt.SupportsSession(host.ModeInline, func(bool) {
			order = append(order, "support")
		})
	})
	rt.Settle()

	if len(order) != 2 || order[0] != "compat" || order[1] != "support" {
		t.Errorf("completion order = %v, want [compat support]", order)
	}
}

func TestRequestSessionRejections(t *testing.T) {
	scripted := errors.New("scripted failure")

	t.Run("scripted error", func(t *testing.T) {
		cfg := DefaultConfig()
		cfg.SessionErr = scripted
		rt := New(cfg)

		var gotErr error
		rt.RequestSession(host.ModeImmersiveVR, nil, func(_ host.Session, err error) {
			gotErr = err
		})
		rt.Settle()
		if !errors.Is(gotErr, scripted) {
			t.Errorf("error = %v, want scripted failure", gotErr)
		}
	})

	t.Run("unsupported mode", func(t *testing.T) {
		cfg := DefaultConfig()
		cfg.SupportedModes = map[string]bool{host.ModeInline: true}
		rt := New(cfg)

		var gotErr error
		rt.RequestSession(host.ModeImmersiveVR, nil, func(_ host.Session, err error) {
			gotErr = err
		})
		rt.Settle()
		if gotErr == nil {
			t.Error("error = nil, want rejection for unsupported mode")
		}
	})

	t.Run("second concurrent session", func(t *testing.T) {
		rt := New(DefaultConfig())
		requestSession(t, rt, host.ModeImmersiveVR)

		var gotErr error
		rt.RequestSession(host.ModeImmersiveVR, nil, func(_ host.Session, err error) {
			gotErr = err
		})
		rt.Settle()
		if gotErr == nil {
			t.Error("error = nil, want rejection while a session is presenting")
		}
	})
}

func TestSessionCarriesRequestArguments(t *testing.T) {
	rt := New(DefaultConfig())

	var s *Session
	rt.RequestSession(host.ModeImmersiveVR, []string{host.SpaceLocalFloor}, func(hs host.Session, err error) {
		if err != nil {
			t.Fatalf("RequestSession error = %v", err)
		}
		s = hs.(*Session)
	})
	rt.Settle()

	if s.Mode() != host.ModeImmersiveVR {
		t.Errorf("Mode() = %q, want %q", s.Mode(), host.ModeImmersiveVR)
	}
	feats := s.RequiredFeatures()
	if len(feats) != 1 || feats[0] != host.SpaceLocalFloor {
		t.Errorf("RequiredFeatures() = %v, want [%s]", feats, host.SpaceLocalFloor)
	}
}

func TestReferenceSpaceGrant(t *testing.T) {
	t.Run("echoes requested kind", func(t *testing.T) {
		rt := New(DefaultConfig())
		s := requestSession(t, rt, host.ModeImmersiveVR)

		var sp host.Space
		s.RequestReferenceSpace(host.SpaceLocal, func(got host.Space, err error) {
			if err != nil {
				t.Fatalf("RequestReferenceSpace error = %v", err)
			}
			sp = got
		})
		rt.Settle()
		if sp.Kind() != host.SpaceLocal {
			t.Errorf("Kind() = %q, want %q", sp.Kind(), host.SpaceLocal)
		}
	})

	t.Run("granted kind override", func(t *testing.T) {
		cfg := DefaultConfig()
		cfg.GrantedSpaceKind = host.SpaceLocal
		rt := New(cfg)
		s := requestSession(t, rt, host.ModeImmersiveVR)

		var sp host.Space
		s.RequestReferenceSpace(host.SpaceLocalFloor, func(got host.Space, _ error) {
			sp = got
		})
		rt.Settle()
		if sp.Kind() != host.SpaceLocal {
			t.Errorf("Kind() = %q, want downgraded %q", sp.Kind(), host.SpaceLocal)
		}
	})

	t.Run("scripted rejection", func(t *testing.T) {
		scripted := errors.New("space denied")
		cfg := DefaultConfig()
		cfg.ReferenceSpaceErr = scripted
		rt := New(cfg)
		s := requestSession(t, rt, host.ModeImmersiveVR)

		var gotErr error
		s.RequestReferenceSpace(host.SpaceLocal, func(_ host.Space, err error) {
			gotErr = err
		})
		rt.Settle()
		if !errors.Is(gotErr, scripted) {
			t.Errorf("error = %v, want scripted rejection", gotErr)
		}
	})
}

func TestPumpFrameOrderingAndOneShot(t *testing.T) {
	rt := New(DefaultConfig())
	s := requestSession(t, rt, host.ModeImmersiveVR)

	var order []string
	rt.RequestAnimationFrame(func(float64) { order = append(order, "generic") })
	s.RequestAnimationFrame(func(float64, host.Frame) { order = append(order, "session") })

	rt.PumpFrame()
	if len(order) != 2 || order[0] != "generic" || order[1] != "session" {
		t.Fatalf("delivery order = %v, want [generic session]", order)
	}

	// Callbacks are one-shot: a second pump delivers nothing.
	rt.PumpFrame()
	if len(order) != 2 {
		t.Errorf("second pump delivered %d extra callbacks, want 0", len(order)-2)
	}
}

func TestPumpFrameWhilePausedDeliversNothing(t *testing.T) {
	rt := New(DefaultConfig())
	s := requestSession(t, rt, host.ModeImmersiveVR)

	fired := 0
	s.RequestAnimationFrame(func(float64, host.Frame) { fired++ })

	rt.Pause()
	rt.PumpFrame()
	if fired != 0 {
		t.Fatal("frame delivered while paused")
	}
	if !rt.HasPendingFrameRequests() {
		t.Error("pending frame request lost during pause")
	}

	rt.Resume()
	rt.PumpFrame()
	if fired != 1 {
		t.Errorf("callbacks after resume = %d, want 1", fired)
	}
	if rt.Pauses() != 1 || rt.Resumes() != 1 {
		t.Errorf("Pauses()/Resumes() = %d/%d, want 1/1", rt.Pauses(), rt.Resumes())
	}
}

func TestFrameTimeAdvancesMonotonically(t *testing.T) {
	rt := New(DefaultConfig())
	s := requestSession(t, rt, host.ModeImmersiveVR)

	var times []float64
	for i := 0; i < 3; i++ {
		s.RequestAnimationFrame(func(now float64, _ host.Frame) {
			times = append(times, now)
		})
		rt.PumpFrame()
	}
	if len(times) != 3 {
		t.Fatalf("delivered %d frames, want 3", len(times))
	}
	for i := 1; i < len(times); i++ {
		if times[i] <= times[i-1] {
			t.Errorf("time[%d] = %v not after time[%d] = %v", i, times[i], i-1, times[i-1])
		}
	}
}

func TestTransientFrameRefusedAfterCallback(t *testing.T) {
	rt := New(DefaultConfig())
	s := requestSession(t, rt, host.ModeImmersiveVR)

	var sp host.Space
	s.RequestReferenceSpace(host.SpaceLocal, func(got host.Space, _ error) { sp = got })
	rt.Settle()

	var leaked host.Frame
	s.RequestAnimationFrame(func(_ float64, f host.Frame) {
		if _, ok := f.ViewerPose(sp); !ok {
			t.Error("ViewerPose inside the callback = no data, want pose")
		}
		leaked = f
	})
	rt.PumpFrame()

	if _, ok := leaked.ViewerPose(sp); ok {
		t.Error("ViewerPose on a retained frame = ok, want refusal")
	}
	if _, ok := leaked.ViewerPose(nil); ok {
		t.Error("ViewerPose with a nil space = ok, want refusal")
	}
}

func TestGeneratedPosesDistinct(t *testing.T) {
	rt := New(DefaultConfig())
	s := requestSession(t, rt, host.ModeImmersiveVR)

	var sp host.Space
	s.RequestReferenceSpace(host.SpaceLocal, func(got host.Space, _ error) { sp = got })
	rt.Settle()

	var poses []host.Pose
	for i := 0; i < 2; i++ {
		s.RequestAnimationFrame(func(_ float64, f host.Frame) {
			p, ok := f.ViewerPose(sp)
			if !ok {
				t.Fatal("ViewerPose = no data inside callback")
			}
			poses = append(poses, p)
		})
		rt.PumpFrame()
	}

	if len(poses[0].Views) != 2 {
		t.Fatalf("views = %d, want stereo pair", len(poses[0].Views))
	}
	// Within one frame the two eyes differ; across frames each eye differs.
	if poses[0].Views[0].Projection == poses[0].Views[1].Projection {
		t.Error("left and right projections identical within a frame")
	}
	if poses[0].Views[0].Transform == poses[0].Views[1].Transform {
		t.Error("left and right transforms identical within a frame")
	}
	if poses[0].Views[0].Projection == poses[1].Views[0].Projection {
		t.Error("projection identical across frames")
	}
	if poses[0].Transform == poses[1].Transform {
		t.Error("head transform identical across frames")
	}
}

func TestEndFiresHandlerOnce(t *testing.T) {
	rt := New(DefaultConfig())
	s := requestSession(t, rt, host.ModeImmersiveVR)

	ends := 0
	s.OnEnd(func() { ends++ })

	s.End()
	s.End()
	rt.Settle()

	if ends != 1 {
		t.Errorf("end handler fired %d times, want 1", ends)
	}
	if !s.Ended() {
		t.Error("Ended() = false after End settled")
	}
	// The slot frees for a new session.
	requestSession(t, rt, host.ModeImmersiveVR)
}

func TestEndSessionFromHost(t *testing.T) {
	rt := New(DefaultConfig())
	s := requestSession(t, rt, host.ModeImmersiveVR)

	ended := false
	s.OnEnd(func() { ended = true })

	rt.EndSessionFromHost()
	if ended {
		t.Fatal("host end delivered synchronously, want queued")
	}
	rt.Settle()
	if !ended {
		t.Error("end handler not fired after Settle")
	}

	// Frame requests after the end are dropped.
	s.RequestAnimationFrame(func(float64, host.Frame) {
		t.Error("frame callback fired on an ended session")
	})
	rt.PumpFrame()
}

func TestSetVisibilityQueuesEvent(t *testing.T) {
	rt := New(DefaultConfig())
	s := requestSession(t, rt, host.ModeImmersiveVR)

	var states []host.VisibilityState
	s.OnVisibilityChange(func(v host.VisibilityState) { states = append(states, v) })

	rt.SetVisibility(host.VisibilityVisibleBlurred)
	rt.SetVisibility(host.VisibilityVisible)
	if len(states) != 0 {
		t.Fatal("visibility delivered synchronously, want queued")
	}
	rt.Settle()
	if len(states) != 2 || states[0] != host.VisibilityVisibleBlurred || states[1] != host.VisibilityVisible {
		t.Errorf("states = %v, want [blurred visible] in order", states)
	}
}

func TestCompositorTiers(t *testing.T) {
	newCompositor := func(t *testing.T, cfg Config) (*Runtime, host.Compositor) {
		t.Helper()
		rt := New(cfg)
		s := requestSession(t, rt, host.ModeImmersiveVR)
		comp, err := rt.NewCompositor(s)
		if err != nil {
			t.Fatalf("NewCompositor error = %v", err)
		}
		return rt, comp
	}

	t.Run("projection disabled", func(t *testing.T) {
		cfg := DefaultConfig()
		cfg.ProjectionLayers = false
		_, comp := newCompositor(t, cfg)

		if _, err := comp.CreateProjectionLayer(host.ProjectionLayerInit{
			ColorFormat: gputypes.TextureFormatRGBA8Unorm,
		}); !errors.Is(err, ErrTierUnsupported) {
			t.Errorf("CreateProjectionLayer error = %v, want ErrTierUnsupported", err)
		}
		if _, err := comp.CreateBaseLayer(host.BaseLayerInit{}); err != nil {
			t.Errorf("CreateBaseLayer error = %v, want fallback tier available", err)
		}
	})

	t.Run("base disabled", func(t *testing.T) {
		cfg := DefaultConfig()
		cfg.BaseLayers = false
		_, comp := newCompositor(t, cfg)

		if _, err := comp.CreateBaseLayer(host.BaseLayerInit{}); !errors.Is(err, ErrTierUnsupported) {
			t.Errorf("CreateBaseLayer error = %v, want ErrTierUnsupported", err)
		}
	})

	t.Run("projection requires color format", func(t *testing.T) {
		_, comp := newCompositor(t, DefaultConfig())
		if _, err := comp.CreateProjectionLayer(host.ProjectionLayerInit{}); err == nil {
			t.Error("CreateProjectionLayer accepted undefined color format")
		}
	})

	t.Run("foreign session", func(t *testing.T) {
		rt := New(DefaultConfig())
		other := New(DefaultConfig())
		s := requestSession(t, other, host.ModeImmersiveVR)
		if _, err := rt.NewCompositor(s); err == nil {
			t.Error("NewCompositor accepted a session from another runtime")
		}
	})
}

func TestProjectionLayerSubImages(t *testing.T) {
	cfg := DefaultConfig()
	cfg.EyeWidth, cfg.EyeHeight = 800, 600
	rt := New(cfg)
	s := requestSession(t, rt, host.ModeImmersiveVR)
	comp, err := rt.NewCompositor(s)
	if err != nil {
		t.Fatalf("NewCompositor error = %v", err)
	}

	lay, err := comp.CreateProjectionLayer(host.ProjectionLayerInit{
		ColorFormat: gputypes.TextureFormatRGBA8Unorm,
		DepthFormat: gputypes.TextureFormatDepth24PlusStencil8,
	})
	if err != nil {
		t.Fatalf("CreateProjectionLayer error = %v", err)
	}
	if w, h := lay.TextureSize(); w != 800 || h != 600 {
		t.Errorf("TextureSize() = %dx%d, want 800x600", w, h)
	}

	s.RequestAnimationFrame(func(_ float64, f host.Frame) {
		left, ok := lay.SubImage(f, 0)
		if !ok {
			t.Fatal("SubImage(0) = no data inside callback")
		}
		right, ok := lay.SubImage(f, 1)
		if !ok {
			t.Fatal("SubImage(1) = no data inside callback")
		}
		if left.ColorTexture == right.ColorTexture {
			t.Error("left and right color textures identical")
		}
		if left.DepthTexture == 0 || right.DepthTexture == 0 {
			t.Error("depth textures missing despite a requested depth format")
		}
		if left.Viewport.Width != 800 || left.Viewport.Height != 600 {
			t.Errorf("sub-image viewport = %+v, want full 800x600 texture", left.Viewport)
		}
		if _, ok := lay.SubImage(f, 2); ok {
			t.Error("SubImage(2) = ok beyond the configured view count")
		}
	})
	rt.PumpFrame()

	lay.Destroy()
	s.RequestAnimationFrame(func(_ float64, f host.Frame) {
		if _, ok := lay.SubImage(f, 0); ok {
			t.Error("SubImage = ok on a destroyed layer")
		}
	})
	rt.PumpFrame()
}

func TestBaseLayerViewports(t *testing.T) {
	cfg := DefaultConfig()
	cfg.EyeWidth, cfg.EyeHeight = 500, 400
	rt := New(cfg)
	s := requestSession(t, rt, host.ModeImmersiveVR)
	comp, err := rt.NewCompositor(s)
	if err != nil {
		t.Fatalf("NewCompositor error = %v", err)
	}

	lay, err := comp.CreateBaseLayer(host.BaseLayerInit{})
	if err != nil {
		t.Fatalf("CreateBaseLayer error = %v", err)
	}
	if lay.Framebuffer() == 0 {
		t.Error("Framebuffer() = 0, want a nonzero handle")
	}
	if w, h := lay.FramebufferSize(); w != 1000 || h != 400 {
		t.Errorf("FramebufferSize() = %dx%d, want side-by-side 1000x400", w, h)
	}

	s.RequestAnimationFrame(func(_ float64, f host.Frame) {
		left, ok := lay.Viewport(f, 0)
		if !ok || left.X != 0 || left.Width != 500 {
			t.Errorf("Viewport(0) = %+v, %v, want left half", left, ok)
		}
		right, ok := lay.Viewport(f, 1)
		if !ok || right.X != 500 || right.Width != 500 {
			t.Errorf("Viewport(1) = %+v, %v, want right half", right, ok)
		}
	})
	rt.PumpFrame()

	lay.Destroy()
	if lay.Framebuffer() != 0 {
		t.Error("Framebuffer() != 0 after Destroy")
	}
}

func TestScaleFactorSizesLayers(t *testing.T) {
	rt := New(DefaultConfig())
	s := requestSession(t, rt, host.ModeImmersiveVR)
	comp, err := rt.NewCompositor(s)
	if err != nil {
		t.Fatalf("NewCompositor error = %v", err)
	}

	lay, err := comp.CreateProjectionLayer(host.ProjectionLayerInit{
		ColorFormat: gputypes.TextureFormatRGBA8Unorm,
		ScaleFactor: 0.5,
	})
	if err != nil {
		t.Fatalf("CreateProjectionLayer error = %v", err)
	}
	if w, h := lay.TextureSize(); w != 512 || h != 512 {
		t.Errorf("TextureSize() at scale 0.5 = %dx%d, want 512x512", w, h)
	}
}

func TestRegistryProvidesSimRuntime(t *testing.T) {
	rt, err := host.New("sim")
	if err != nil {
		t.Fatalf(`host.New("sim") error = %v`, err)
	}
	if _, ok := rt.(*Runtime); !ok {
		t.Fatalf(`host.New("sim") = %T, want *sim.Runtime`, rt)
	}
	if !rt.Available() {
		t.Error("registry-built sim runtime unavailable, want default config availability")
	}
}
