package strata

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// WorldConfig carries the world parameters and the per-frame budgets of the
// streaming loop. Zero fields fall back to defaults when the world module
// installs; negative values are rejected outright.
type WorldConfig struct {
	Seed           int64 `yaml:"seed"`
	RenderDistance int   `yaml:"render_distance"`
	WorldExtent    int   `yaml:"world_extent"`
	WorldHeight    int   `yaml:"world_height"`

	MaxInFlight      int `yaml:"max_in_flight"`
	DiscoverPerFrame int `yaml:"discover_per_frame"`
	ChunksPerFrame   int `yaml:"chunks_per_frame"`
	MeshPerFrame     int `yaml:"mesh_per_frame"`

	Workers    int `yaml:"workers"`
	QueueDepth int `yaml:"queue_depth"`
}

func DefaultWorldConfig() WorldConfig {
	return WorldConfig{
		Seed:             1337,
		RenderDistance:   12,
		WorldExtent:      64,
		WorldHeight:      256,
		MaxInFlight:      1024,
		DiscoverPerFrame: 64,
		ChunksPerFrame:   32,
		MeshPerFrame:     32,
	}
}

// LoadWorldConfig reads a YAML file over the defaults. Fields missing from
// the file keep their default values.
func LoadWorldConfig(path string) (WorldConfig, error) {
	cfg := DefaultWorldConfig()

	raw, err := os.ReadFile(path)
	if err != nil {
		return WorldConfig{}, fmt.Errorf("config: read %s: %w", path, err)
	}
	if err := yaml.Unmarshal(raw, &cfg); err != nil {
		return WorldConfig{}, fmt.Errorf("config: parse %s: %w", path, err)
	}
	return cfg, nil
}

// withDefaults fills zero fields from DefaultWorldConfig. Seed passes
// through untouched, zero included. Workers and QueueDepth stay zero so the
// task pool can size itself.
func (c WorldConfig) withDefaults() WorldConfig {
	def := DefaultWorldConfig()
	if c.RenderDistance == 0 {
		c.RenderDistance = def.RenderDistance
	}
	if c.WorldExtent == 0 {
		c.WorldExtent = def.WorldExtent
	}
	if c.WorldHeight == 0 {
		c.WorldHeight = def.WorldHeight
	}
	if c.MaxInFlight == 0 {
		c.MaxInFlight = def.MaxInFlight
	}
	if c.DiscoverPerFrame == 0 {
		c.DiscoverPerFrame = def.DiscoverPerFrame
	}
	if c.ChunksPerFrame == 0 {
		c.ChunksPerFrame = def.ChunksPerFrame
	}
	if c.MeshPerFrame == 0 {
		c.MeshPerFrame = def.MeshPerFrame
	}
	return c
}

// validated panics on configurations that cannot mean anything.
func (c WorldConfig) validated() WorldConfig {
	if c.RenderDistance < 0 || c.WorldExtent < 0 || c.WorldHeight < 0 ||
		c.MaxInFlight < 0 || c.DiscoverPerFrame < 0 || c.ChunksPerFrame < 0 ||
		c.MeshPerFrame < 0 || c.Workers < 0 || c.QueueDepth < 0 {
		panic(fmt.Sprintf("config: negative values make no sense: %+v", c))
	}
	if c.WorldExtent <= c.RenderDistance {
		panic(fmt.Sprintf("config: world extent %d must exceed render distance %d",
			c.WorldExtent, c.RenderDistance))
	}
	return c
}
