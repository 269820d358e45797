package strata

// Commands is the facade modules and systems use to reconfigure the app
// while it runs.
type Commands struct {
	app *App
}

func (cmd *Commands) AddResources(resources ...any) *Commands {
	cmd.app.addResources(resources...)
	return cmd
}

func (cmd *Commands) UseSystem(system systemScheduleBuilder) *Commands {
	cmd.app.UseSystem(system)
	return cmd
}

// Quit stops the run loop after the current frame.
func (cmd *Commands) Quit() {
	cmd.app.quit()
}
