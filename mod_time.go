package strata

import (
	"time"
)

// Time tracks wall-clock frame timing. Dt is the previous frame's duration
// in seconds, Frame the number of completed frames.
type Time struct {
	Time  time.Time
	Dt    float32
	Frame uint64
}

type TimeModule struct {
}

func (mod TimeModule) Install(app *App, cmd *Commands) {
	cmd.AddResources(&Time{
		Time: time.Now(),
	})
	cmd.UseSystem(System(timeSystem).InStage(Prelude))
}

func timeSystem(timeResource *Time) {
	now := time.Now()

	timeResource.Dt = float32(now.Sub(timeResource.Time).Seconds())
	timeResource.Time = now
	timeResource.Frame++
}
