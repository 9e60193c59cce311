package storage

import (
	"encoding/json"
	"io"
	"os"

	"github.com/san-kum/orbitsim/internal/dynamo"
)

type ExportData struct {
	System      string             `json:"system"`
	Integrator  string             `json:"integrator"`
	G           float64            `json:"g"`
	Dt          float64            `json:"dt"`
	Steps       int                `json:"steps"`
	EnergyDrift float64            `json:"energy_drift"`
	Bodies      []BodyInfo         `json:"bodies"`
	Times       []float64          `json:"times"`
	States      [][]float64        `json:"states"`
	Metrics     map[string]float64 `json:"metrics"`
	NonFinite   []string           `json:"non_finite,omitempty"`
}

func NewExportData(run Run, result *dynamo.Result) ExportData {
	states, times := result.Flatten()
	metrics, nonFinite := splitMetrics(result.Metrics)
	return ExportData{
		System:      run.System,
		Integrator:  run.Integrator,
		G:           run.G,
		Dt:          run.Dt,
		Steps:       len(times),
		EnergyDrift: finiteDrift(result.EnergyDrift),
		Bodies:      bodyInfo(result),
		Times:       times,
		States:      states,
		Metrics:     metrics,
		NonFinite:   nonFinite,
	}
}

func WriteJSON(w io.Writer, run Run, result *dynamo.Result) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(NewExportData(run, result))
}

func ExportJSON(path string, run Run, result *dynamo.Result) error {
	file, err := os.Create(path)
	if err != nil {
		return err
	}
	defer file.Close()

	return WriteJSON(file, run, result)
}

func ExportJSONStdout(run Run, result *dynamo.Result) error {
	return WriteJSON(os.Stdout, run, result)
}

// ExportCSV writes one row per snapshot: time followed by x, y, vx, vy of
// every body.
func ExportCSV(path string, result *dynamo.Result) error {
	file, err := os.Create(path)
	if err != nil {
		return err
	}
	defer file.Close()

	return writeStates(file, result)
}

func WriteCSV(w io.Writer, result *dynamo.Result) error {
	return writeStates(w, result)
}
