package prism

import (
	"fmt"
	"reflect"
)

// installTag records which exclusive modules have been installed. Modules
// that own process-wide state (the window, the GPU device, the pipeline)
// register here so a double install fails fast instead of fighting over the
// surface.
type installTag struct {
	names map[string]bool
}

func ensureSingleInstall(app *App, name string) {
	t := reflect.TypeOf(installTag{})
	res, ok := app.resources[t]
	if !ok {
		app.addResources(&installTag{names: map[string]bool{name: true}})
		return
	}
	tag := res.(*installTag)
	if tag.names[name] {
		app.Logger().Errorf("module %s installed twice", name)
		panic(fmt.Sprintf("module %s installed twice", name))
	}
	tag.names[name] = true
}
