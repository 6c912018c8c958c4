package prism

import (
	"github.com/go-gl/glfw/v3.3/glfw"
)

// ClientModule creates the single GLFW window and the wgpu device behind it.
// Install it once, before any module that needs the GPU; a second install
// panics.
type ClientModule struct {
	WindowWidth  int
	WindowHeight int
	WindowTitle  string
}

func (mod ClientModule) Install(app *App, cmd *Commands) {
	ensureSingleInstall(app, "client")

	if mod.WindowWidth <= 0 {
		mod.WindowWidth = 1280
	}
	if mod.WindowHeight <= 0 {
		mod.WindowHeight = 720
	}
	if mod.WindowTitle == "" {
		mod.WindowTitle = "Prism"
	}

	windowState := createWindowState(mod.WindowWidth, mod.WindowHeight, mod.WindowTitle)
	gpuState := createGpuState(windowState)

	cmd.AddResources(windowState, gpuState)

	app.UseSystem(
		System(windowEventsSystem).
			InStage(PreUpdate).
			RunAlways(),
	)
}

func windowEventsSystem(state *WindowState, gpuState *GpuState, cmd *Commands) {
	glfw.PollEvents()

	if state.windowGlfw.ShouldClose() {
		cmd.Quit()
		return
	}

	state.Resized = false
	width, height := state.windowGlfw.GetFramebufferSize()
	if width != state.WindowWidth || height != state.WindowHeight {
		state.WindowWidth = width
		state.WindowHeight = height
		state.Resized = true
		gpuState.reconfigure(width, height)
	}
}
