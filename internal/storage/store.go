package storage

import (
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/san-kum/orbitsim/internal/dynamo"
	"github.com/san-kum/orbitsim/internal/vmath"
)

const (
	metadataFile = "metadata.json"
	statesFile   = "states.csv"
)

// ErrMalformedRun indicates a run directory whose files do not agree.
var ErrMalformedRun = errors.New("storage: malformed run")

// Store keeps one directory per run holding metadata.json and states.csv.
type Store struct {
	baseDir string
}

func New(baseDir string) *Store {
	return &Store{baseDir: baseDir}
}

func (s *Store) Init() error {
	return os.MkdirAll(s.baseDir, 0755)
}

// BodyInfo is the time-invariant part of a body.
type BodyInfo struct {
	Name     string  `json:"name"`
	Mass     float64 `json:"mass"`
	Color    string  `json:"color,omitempty"`
	RadiusPx int     `json:"radius_px,omitempty"`
}

type RunMetadata struct {
	ID          string             `json:"id"`
	System      string             `json:"system"`
	Timestamp   time.Time          `json:"timestamp"`
	Integrator  string             `json:"integrator"`
	G           float64            `json:"g"`
	Dt          float64            `json:"dt"`
	Steps       int                `json:"steps"`
	StepsTaken  int                `json:"steps_taken"`
	EnergyDrift float64            `json:"energy_drift"`
	Bodies      []BodyInfo         `json:"bodies"`
	Metrics     map[string]float64 `json:"metrics"`
	// NonFinite lists the metrics that were NaN or Inf. JSON cannot hold
	// them, so they are left out of Metrics.
	NonFinite []string `json:"non_finite,omitempty"`
}

// Run describes what produced a result.
type Run struct {
	System     string
	Integrator string
	G          float64
	Dt         float64
	Steps      int
}

func (s *Store) Save(run Run, result *dynamo.Result) (string, error) {
	if err := s.Init(); err != nil {
		return "", err
	}

	now := time.Now()
	runID, runDir, err := s.newRunDir(run.System, now)
	if err != nil {
		return "", err
	}

	metrics, nonFinite := splitMetrics(result.Metrics)
	meta := RunMetadata{
		ID:          runID,
		System:      run.System,
		Timestamp:   now,
		Integrator:  run.Integrator,
		G:           run.G,
		Dt:          run.Dt,
		Steps:       run.Steps,
		StepsTaken:  result.StepsTaken,
		EnergyDrift: finiteDrift(result.EnergyDrift),
		Bodies:      bodyInfo(result),
		Metrics:     metrics,
		NonFinite:   nonFinite,
	}

	if err := writeRun(runDir, meta, result); err != nil {
		if rmErr := os.RemoveAll(runDir); rmErr != nil {
			logrus.WithError(rmErr).WithField("dir", runDir).Warn("failed to remove incomplete run")
		}
		return "", fmt.Errorf("save run %s: %w", runID, err)
	}

	logrus.WithFields(logrus.Fields{
		"run":       runID,
		"snapshots": len(result.Snapshots),
	}).Debug("run saved")

	return runID, nil
}

func writeRun(runDir string, meta RunMetadata, result *dynamo.Result) error {
	metaFile, err := os.Create(filepath.Join(runDir, metadataFile))
	if err != nil {
		return err
	}

	enc := json.NewEncoder(metaFile)
	enc.SetIndent("", "  ")
	if err := enc.Encode(meta); err != nil {
		metaFile.Close()
		return err
	}
	if err := metaFile.Close(); err != nil {
		return err
	}

	return ExportCSV(filepath.Join(runDir, statesFile), result)
}

// splitMetrics separates the finite metrics from the names of those that
// are NaN or Inf.
func splitMetrics(m map[string]float64) (map[string]float64, []string) {
	out := make(map[string]float64, len(m))
	var bad []string
	for name, v := range m {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			bad = append(bad, name)
			continue
		}
		out[name] = v
	}
	sort.Strings(bad)
	return out, bad
}

func finiteDrift(d float64) float64 {
	if math.IsNaN(d) || math.IsInf(d, 0) {
		return dynamo.NoDrift
	}
	return d
}

// newRunDir creates a fresh directory, suffixing the ID when runs of the
// same system start within the same second.
func (s *Store) newRunDir(system string, now time.Time) (string, string, error) {
	base := fmt.Sprintf("%s_%d", system, now.Unix())
	for i := 0; ; i++ {
		runID := base
		if i > 0 {
			runID = fmt.Sprintf("%s-%d", base, i)
		}
		runDir := filepath.Join(s.baseDir, runID)
		err := os.Mkdir(runDir, 0755)
		if err == nil {
			return runID, runDir, nil
		}
		if !os.IsExist(err) {
			return "", "", err
		}
	}
}

func bodyInfo(result *dynamo.Result) []BodyInfo {
	if len(result.Snapshots) == 0 {
		return nil
	}
	bodies := result.Snapshots[0].Bodies
	info := make([]BodyInfo, len(bodies))
	for i, b := range bodies {
		info[i] = BodyInfo{Name: b.Name, Mass: b.Mass, Color: b.Color, RadiusPx: b.RadiusPx}
	}
	return info
}

// List returns all readable runs, oldest first.
func (s *Store) List() ([]RunMetadata, error) {
	entries, err := os.ReadDir(s.baseDir)
	if err != nil {
		if os.IsNotExist(err) {
			return []RunMetadata{}, nil
		}
		return nil, err
	}

	runs := make([]RunMetadata, 0)
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}

		meta, err := s.Load(entry.Name())
		if err != nil {
			logrus.WithError(err).WithField("dir", entry.Name()).Debug("skipping unreadable run")
			continue
		}

		runs = append(runs, *meta)
	}

	sort.SliceStable(runs, func(i, j int) bool {
		return runs[i].Timestamp.Before(runs[j].Timestamp)
	})
	return runs, nil
}

func (s *Store) Load(runID string) (*RunMetadata, error) {
	data, err := os.ReadFile(filepath.Join(s.baseDir, runID, metadataFile))
	if err != nil {
		return nil, err
	}

	var meta RunMetadata
	if err := json.Unmarshal(data, &meta); err != nil {
		return nil, fmt.Errorf("run %s: %w", runID, err)
	}

	return &meta, nil
}

// LoadStates returns the flattened rows [x0 y0 vx0 vy0 x1 ...] and their times.
func (s *Store) LoadStates(runID string) ([][]float64, []float64, error) {
	file, err := os.Open(filepath.Join(s.baseDir, runID, statesFile))
	if err != nil {
		return nil, nil, err
	}
	defer file.Close()

	return readStates(file)
}

// LoadResult rebuilds the recorded snapshots of a run, reattaching the body
// metadata to every row.
func (s *Store) LoadResult(runID string) (*RunMetadata, *dynamo.Result, error) {
	meta, err := s.Load(runID)
	if err != nil {
		return nil, nil, err
	}
	states, times, err := s.LoadStates(runID)
	if err != nil {
		return nil, nil, err
	}

	result := &dynamo.Result{
		Snapshots:   make([]dynamo.Snapshot, len(states)),
		Metrics:     make(map[string]float64, len(meta.Metrics)+len(meta.NonFinite)),
		EnergyDrift: meta.EnergyDrift,
		StepsTaken:  meta.StepsTaken,
	}
	for name, v := range meta.Metrics {
		result.Metrics[name] = v
	}
	for _, name := range meta.NonFinite {
		result.Metrics[name] = math.NaN()
	}
	for i, row := range states {
		if len(row) != 4*len(meta.Bodies) {
			return nil, nil, fmt.Errorf("run %s row %d: %d values for %d bodies: %w",
				runID, i, len(row), len(meta.Bodies), ErrMalformedRun)
		}
		bodies := make(dynamo.Bodies, len(meta.Bodies))
		for j, info := range meta.Bodies {
			v := row[4*j : 4*j+4]
			bodies[j] = dynamo.Body{
				Name:     info.Name,
				Mass:     info.Mass,
				Color:    info.Color,
				RadiusPx: info.RadiusPx,
				Pos:      vmath.Vec2{X: v[0], Y: v[1]},
				Vel:      vmath.Vec2{X: v[2], Y: v[3]},
			}
		}
		result.Snapshots[i] = dynamo.Snapshot{Time: times[i], Bodies: bodies}
	}

	return meta, result, nil
}

func writeStates(w io.Writer, result *dynamo.Result) error {
	cw := csv.NewWriter(w)

	if len(result.Snapshots) == 0 {
		cw.Flush()
		return cw.Error()
	}

	header := []string{"time"}
	for i := range result.Snapshots[0].Bodies {
		header = append(header,
			fmt.Sprintf("x%d", i), fmt.Sprintf("y%d", i),
			fmt.Sprintf("vx%d", i), fmt.Sprintf("vy%d", i))
	}
	if err := cw.Write(header); err != nil {
		return err
	}

	states, times := result.Flatten()
	for i := range states {
		row := make([]string, 0, len(states[i])+1)
		row = append(row, strconv.FormatFloat(times[i], 'g', -1, 64))
		for _, val := range states[i] {
			row = append(row, strconv.FormatFloat(val, 'g', -1, 64))
		}
		if err := cw.Write(row); err != nil {
			return err
		}
	}

	cw.Flush()
	return cw.Error()
}

func readStates(r io.Reader) ([][]float64, []float64, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1

	records, err := cr.ReadAll()
	if err != nil {
		return nil, nil, err
	}

	if len(records) < 2 {
		return [][]float64{}, []float64{}, nil
	}

	times := make([]float64, 0, len(records)-1)
	states := make([][]float64, 0, len(records)-1)

	for i := 1; i < len(records); i++ {
		record := records[i]
		if len(record) == 0 {
			continue
		}

		t, err := strconv.ParseFloat(record[0], 64)
		if err != nil {
			return nil, nil, fmt.Errorf("line %d: %w", i+1, err)
		}

		state := make([]float64, 0, len(record)-1)
		for j := 1; j < len(record); j++ {
			val, err := strconv.ParseFloat(record[j], 64)
			if err != nil {
				return nil, nil, fmt.Errorf("line %d column %d: %w", i+1, j+1, err)
			}
			state = append(state, val)
		}
		times = append(times, t)
		states = append(states, state)
	}

	return states, times, nil
}
