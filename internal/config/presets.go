package config

import (
	"sort"

	"github.com/san-kum/orbitsim/internal/physics"
)

var Presets = map[string]*Config{
	"binary": DefaultConfig(),
	"circular": {
		Integrator: "forest-ruth", G: 1, Dt: 0.01, Steps: 1000,
		FPS: DefaultFPS, Scale: 200, Width: DefaultWidth, Height: DefaultHeight, RecordEvery: 1,
		Bodies: FromBodies(physics.CircularBinary(1, 0.5, 0.5, 1)),
	},
	"figure-eight": {
		Integrator: "forest-ruth", G: 1, Dt: 0.001, Steps: 6326,
		FPS: DefaultFPS, Scale: 200, Width: DefaultWidth, Height: DefaultHeight, RecordEvery: 10,
		Bodies: FromBodies(physics.FigureEight()),
	},
	"sun-earth-moon": {
		Integrator: "forest-ruth", G: physics.G, Dt: 3600, Steps: 8766,
		FPS: DefaultFPS, Scale: DefaultScale, Width: DefaultWidth, Height: DefaultHeight, RecordEvery: 24,
		Bodies: FromBodies(physics.SunEarthMoon()),
	},
}

// GetPreset returns a copy of the named preset, or nil.
func GetPreset(name string) *Config {
	p, ok := Presets[name]
	if !ok {
		return nil
	}
	return p.Clone()
}

func ListPresets() []string {
	names := make([]string, 0, len(Presets))
	for name := range Presets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
