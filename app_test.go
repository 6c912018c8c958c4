package prism

import (
	"reflect"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type MockResource1 struct {
	name string
}
type MockResource2 struct {
	name string
}

func TestApp_changeState(t *testing.T) {
	app := &App{
		stateful:     true,
		initialState: 1,
		state:        1,
		finalState:   2,
	}

	app.changeState(2)
	assert.Equal(t, State(2), app.nextState)
	assert.True(t, app.stateTransitioning)

	app.executeChangeState(2)
	assert.Equal(t, State(2), app.state)
}

func TestApp_addResources(t *testing.T) {
	app := &App{
		resources: make(map[reflect.Type]any),
	}

	resource1 := &MockResource1{name: "Resource1"}
	app.addResources(resource1)

	require.Contains(t, app.resources, reflect.TypeOf(MockResource1{}))
	assert.Same(t, resource1, app.resources[reflect.TypeOf(MockResource1{})])

	// A second resource of the same type is a conflict.
	assert.Panics(t, func() {
		app.addResources(&MockResource1{name: "Duplicate"})
	})

	// Resources must be pointers so systems can mutate them.
	assert.Panics(t, func() {
		app.addResources(MockResource2{name: "ByValue"})
	})
}

func TestResource(t *testing.T) {
	app := &App{
		resources: make(map[reflect.Type]any),
	}
	resource := &MockResource1{name: "Resource1"}
	app.addResources(resource)

	assert.Same(t, resource, Resource[MockResource1](app))
	assert.Nil(t, Resource[MockResource2](app))
}

func TestApp_callSystem(t *testing.T) {
	app := &App{
		resources: make(map[reflect.Type]any),
	}
	app.addResources(&MockResource1{name: "Resource1"})

	var gotResource *MockResource1
	var gotCommands *Commands
	app.callSystem(func(cmd *Commands, res *MockResource1) {
		gotCommands = cmd
		gotResource = res
	})

	require.NotNil(t, gotCommands)
	assert.Same(t, app, gotCommands.app)
	require.NotNil(t, gotResource)
	assert.Equal(t, "Resource1", gotResource.name)
}

func TestApp_callSystem_unresolvable(t *testing.T) {
	app := &App{
		resources: make(map[reflect.Type]any),
	}

	assert.Panics(t, func() {
		app.callSystem(func(res *MockResource2) {})
	})
}

func TestApp_Run_quit(t *testing.T) {
	frames := 0
	app := NewAppBuilder().Build()
	app.UseSystem(
		System(func(cmd *Commands) {
			frames++
			if frames == 3 {
				cmd.Quit()
			}
		}).InStage(Update).RunAlways(),
	)

	app.Run()

	assert.Equal(t, 3, frames)
}

func TestApp_Run_stageOrder(t *testing.T) {
	var order []string
	record := func(name string) systemFn {
		return func() {
			if len(order) < 3 {
				order = append(order, name)
			}
		}
	}

	app := NewAppBuilder().Build()
	app.UseSystem(System(record("render")).InStage(Render).RunAlways())
	app.UseSystem(System(record("prelude")).InStage(Prelude).RunAlways())
	app.UseSystem(System(record("update")).InStage(Update).RunAlways())
	app.UseSystem(
		System(func(cmd *Commands) { cmd.Quit() }).InStage(Finale).RunAlways(),
	)

	app.Run()

	assert.Equal(t, []string{"prelude", "update", "render"}, order)
}
