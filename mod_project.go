package prism

import "fmt"

// ProjectModule installs the Project resource. Set Path to load a TOML
// manifest from disk, or Project to inject one directly; with neither, the
// built-in default project is used.
type ProjectModule struct {
	Path    string
	Project *Project
}

func (m *ProjectModule) Install(app *App, cmd *Commands) {
	project := m.Project
	if project == nil {
		if m.Path != "" {
			loaded, err := LoadProject(m.Path)
			if err != nil {
				panic(err)
			}
			project = loaded
		} else {
			project = DefaultProject()
		}
	} else if err := project.Validate(); err != nil {
		panic(fmt.Errorf("invalid project %q: %w", project.Name, err))
	}

	app.Logger().Infof("project: %s (pipeline shader %q)", project.Name, project.Pipeline.Shader)
	cmd.AddResources(project)
}
