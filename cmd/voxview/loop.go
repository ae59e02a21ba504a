package main

import (
	"fmt"
	"time"

	"github.com/go-gl/glfw/v3.3/glfw"

	"mini-vox/internal/graphics"
	"mini-vox/internal/profiling"
)

// frameStep is the simulated frame time of headless runs.
const frameStep = 1.0 / 60

func runHeadless(opts options, frames int) error {
	dev := graphics.NewHeadlessDevice()
	s, err := newScene(dev, opts, windowWidth, windowHeight)
	if err != nil {
		return err
	}
	defer s.dispose()

	start := time.Now()
	for i := range frames {
		profiling.ResetFrame()
		dev.Reset()
		elapsed := float64(i) * frameStep
		s.tick(elapsed, i > 0 && i%60 == 0)
		s.renderer.Render(s.world, frameStep)
	}
	// let the workers drain so the last stats are complete
	deadline := time.Now().Add(5 * time.Second)
	for s.chunks.Stats().InFlight > 0 && time.Now().Before(deadline) {
		s.renderer.Render(s.world, frameStep)
		time.Sleep(time.Millisecond)
	}

	st := s.chunks.Stats()
	log.Info("%d frames in %s", frames, time.Since(start).Round(time.Millisecond))
	log.Info("cached=%d visible=%d workers=%d volumes=%d draws=%d live meshes=%d",
		st.Cached, st.Visible, st.Workers, st.Volumes, len(dev.Draws), dev.LiveMeshes())
	log.Info("slowest sections of the last frame:\n%s", profiling.TopN(5))
	if st.Failed {
		return fmt.Errorf("chunk build pool failed")
	}
	return nil
}

func runWindow(opts options) error {
	if err := glfw.Init(); err != nil {
		return err
	}
	defer glfw.Terminate()

	window, err := setupWindow()
	if err != nil {
		return err
	}
	dev, err := graphics.NewGLDevice()
	if err != nil {
		return err
	}
	defer dev.Dispose()

	fbw, fbh := window.GetFramebufferSize()
	dev.Viewport(fbw, fbh)
	s, err := newScene(dev, opts, fbw, fbh)
	if err != nil {
		return err
	}
	defer s.dispose()

	window.SetFramebufferSizeCallback(func(w *glfw.Window, width, height int) {
		dev.Viewport(width, height)
		s.renderer.UpdateViewport(width, height)
	})
	window.SetKeyCallback(func(w *glfw.Window, key glfw.Key, scancode int, action glfw.Action, mods glfw.ModifierKey) {
		if key == glfw.KeyEscape && action == glfw.Press {
			w.SetShouldClose(true)
		}
	})

	frames := 0
	start := time.Now()
	lastTime := start
	lastSecond := start
	for !window.ShouldClose() {
		now := time.Now()
		dt := now.Sub(lastTime).Seconds()
		lastTime = now

		second := now.Sub(lastSecond) >= time.Second
		if second {
			st := s.chunks.Stats()
			log.Debug("fps=%d cached=%d visible=%d queued=%d", frames, st.Cached, st.Visible, st.Queued)
			frames = 0
			lastSecond = now
		}

		profiling.ResetFrame()
		s.tick(now.Sub(start).Seconds(), second)
		dev.Clear(0.53, 0.81, 0.92)
		s.renderer.Render(s.world, dt)

		window.SwapBuffers()
		glfw.PollEvents()
		frames++
	}
	return nil
}

func setupWindow() (*glfw.Window, error) {
	glfw.WindowHint(glfw.ContextVersionMajor, 4)
	glfw.WindowHint(glfw.ContextVersionMinor, 1)
	glfw.WindowHint(glfw.OpenGLForwardCompatible, glfw.True)
	glfw.WindowHint(glfw.OpenGLProfile, glfw.OpenGLCoreProfile)

	window, err := glfw.CreateWindow(windowWidth, windowHeight, "voxview", nil, nil)
	if err != nil {
		return nil, err
	}
	window.MakeContextCurrent()
	glfw.SwapInterval(1)
	return window, nil
}
