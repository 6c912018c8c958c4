package prism

import (
	"github.com/go-gl/mathgl/mgl32"
)

// FlyCameraModule installs the Camera resource and the WASD/mouse-look
// systems driving it. When a Project resource is already installed, the
// manifest's camera settings seed the initial state.
type FlyCameraModule struct{}

func (m FlyCameraModule) Install(app *App, cmd *Commands) {
	cam := NewCamera()

	if project := Resource[Project](app); project != nil {
		project.Camera.apply(cam)
	}
	if windowState := Resource[WindowState](app); windowState != nil {
		cam.Resize(windowState.WindowWidth, windowState.WindowHeight)
	}

	cmd.AddResources(cam)

	app.UseSystem(
		System(flyCameraInputSystem).
			InStage(Update).
			RunAlways(),
	)
	app.UseSystem(
		System(flyCameraControlSystem).
			InStage(Update).
			RunAlways(),
	)
}

func flyCameraInputSystem(input *Input, cam *Camera) {
	if input.JustPressed[KeyTab] {
		input.MouseCaptured = !input.MouseCaptured
	}
	if input.JustPressed[KeyEscape] {
		input.MouseCaptured = false
	}

	cam.move = mgl32.Vec3{}
	if input.Pressed[KeyW] || input.Pressed[KeyUp] {
		cam.move[2] += 1
	}
	if input.Pressed[KeyS] || input.Pressed[KeyDown] {
		cam.move[2] -= 1
	}
	if input.Pressed[KeyA] || input.Pressed[KeyLeft] {
		cam.move[0] -= 1
	}
	if input.Pressed[KeyD] || input.Pressed[KeyRight] {
		cam.move[0] += 1
	}
	if input.Pressed[KeySpace] {
		cam.move[1] += 1
	}
	if input.Pressed[KeyShift] {
		cam.move[1] -= 1
	}

	if input.MouseCaptured {
		cam.look[0] = float32(input.MouseDeltaX)
		cam.look[1] = float32(input.MouseDeltaY)
	} else {
		cam.look = mgl32.Vec2{}
	}
}

func flyCameraControlSystem(cam *Camera, time *Time, windowState *WindowState) {
	if windowState.Resized {
		cam.Resize(windowState.WindowWidth, windowState.WindowHeight)
	}

	dt := time.DtSeconds()
	if dt <= 0 {
		return
	}
	cam.update(dt)
}
