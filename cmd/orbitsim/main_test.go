package main

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/sirupsen/logrus"
	logtest "github.com/sirupsen/logrus/hooks/test"
	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/san-kum/orbitsim/internal/storage"
)

func subcommand(t *testing.T, name string, args ...string) *cobra.Command {
	t.Helper()
	root := newRootCmd()
	cmd, _, err := root.Find([]string{name})
	require.NoError(t, err)
	require.NoError(t, cmd.ParseFlags(args))
	return cmd
}

func execute(t *testing.T, args ...string) error {
	t.Helper()
	root := newRootCmd()
	root.SetArgs(args)
	root.SetOut(&strings.Builder{})
	root.SetErr(&strings.Builder{})
	return root.Execute()
}

func TestResolveConfigDefaults(t *testing.T) {
	cmd := subcommand(t, "run")

	cfg, system, err := resolveConfig(cmd)
	require.NoError(t, err)
	assert.Equal(t, "binary", system)
	assert.Equal(t, "forest-ruth", cfg.Integrator)
	assert.Equal(t, 86400.0, cfg.Dt)
	assert.Len(t, cfg.Bodies, 2)
}

func TestResolveConfigPresetWithOverrides(t *testing.T) {
	cmd := subcommand(t, "run", "--preset", "circular", "--dt", "0.02", "--integrator", "verlet")

	cfg, system, err := resolveConfig(cmd)
	require.NoError(t, err)
	assert.Equal(t, "circular", system)
	assert.Equal(t, 0.02, cfg.Dt)
	assert.Equal(t, "verlet", cfg.Integrator)
	assert.Equal(t, 1000, cfg.Steps, "unset flags keep the preset value")
	assert.Equal(t, 1.0, cfg.G)
}

func TestResolveConfigUnknownPreset(t *testing.T) {
	cmd := subcommand(t, "run", "--preset", "nope")

	_, _, err := resolveConfig(cmd)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "circular")
}

func TestResolveConfigFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "pair.yaml")
	require.NoError(t, os.WriteFile(path, []byte("integrator: verlet\ng: 1\ndt: 0.5\nsteps: 7\n"), 0644))

	cmd := subcommand(t, "live", "--config", path, "--steps", "9", "--fps", "30")

	cfg, system, err := resolveConfig(cmd)
	require.NoError(t, err)
	assert.Equal(t, "pair", system)
	assert.Equal(t, "verlet", cfg.Integrator)
	assert.Equal(t, 0.5, cfg.Dt)
	assert.Equal(t, 9, cfg.Steps)
	assert.Equal(t, 30, cfg.FPS)
}

func TestRunListExport(t *testing.T) {
	dir := t.TempDir()

	require.NoError(t, execute(t, "run", "--data", dir, "--preset", "circular", "--steps", "50"))

	runs, err := storage.New(dir).List()
	require.NoError(t, err)
	require.Len(t, runs, 1)
	run := runs[0]
	assert.Equal(t, "circular", run.System)
	assert.Equal(t, 50, run.StepsTaken)

	require.NoError(t, execute(t, "list", "--data", dir))
	require.NoError(t, execute(t, "plot", "--data", dir, run.ID))
	require.NoError(t, execute(t, "period", "--data", dir, run.ID))

	csvPath := filepath.Join(dir, "out.csv")
	require.NoError(t, execute(t, "export-csv", "--data", dir, "-o", csvPath, run.ID))
	data, err := os.ReadFile(csvPath)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(data), "time,x0,y0,vx0,vy0,x1"))

	jsonPath := filepath.Join(dir, "out.json")
	require.NoError(t, execute(t, "export-json", "--data", dir, "-o", jsonPath, run.ID))
	data, err = os.ReadFile(jsonPath)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"system": "circular"`)

	svgPath := filepath.Join(dir, "out.svg")
	require.NoError(t, execute(t, "export-svg", "--data", dir, "-o", svgPath, run.ID))
	data, err = os.ReadFile(svgPath)
	require.NoError(t, err)
	assert.Contains(t, string(data), "<svg")
}

func TestRunRejectsInvalidConfig(t *testing.T) {
	err := execute(t, "run", "--data", t.TempDir(), "--dt", "0")
	require.Error(t, err)

	err = execute(t, "run", "--data", t.TempDir(), "--integrator", "rk4")
	require.Error(t, err)
}

func TestRunBlownUpIsSaved(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, execute(t, "run", "--data", dir, "--integrator", "euler", "--dt", "1e300", "--steps", "5"))

	runs, err := storage.New(dir).List()
	require.NoError(t, err)
	require.Len(t, runs, 1)
	assert.Equal(t, -1.0, runs[0].EnergyDrift)
}

func TestCompareAndConvergence(t *testing.T) {
	require.NoError(t, execute(t, "compare", "--preset", "circular", "--steps", "100"))
	require.NoError(t, execute(t, "compare", "--preset", "circular", "--steps", "20", "euler", "verlet"))
	require.Error(t, execute(t, "compare", "--preset", "circular", "rk4"))

	require.NoError(t, execute(t, "convergence", "verlet", "--steps", "100,200"))
	require.Error(t, execute(t, "convergence", "verlet", "--masses", "1"))
}

func TestPlainLive(t *testing.T) {
	hook := logtest.NewGlobal()
	defer hook.Reset()

	require.NoError(t, execute(t, "live", "--plain", "--log-level", "info", "--integrator", "euler", "--preset", "circular", "--frames", "2", "--fps", "1000", "--cols", "20", "--rows", "8"))

	var ended *logrus.Entry
	for _, e := range hook.AllEntries() {
		if e.Message == "live session ended" {
			ended = e
		}
	}
	require.NotNil(t, ended)
	assert.Positive(t, ended.Data["steps"])
	assert.Positive(t, ended.Data["energy_drift"])
}

func TestPresetsAndLyapunov(t *testing.T) {
	require.NoError(t, execute(t, "presets"))
	require.NoError(t, execute(t, "lyapunov", "--preset", "circular", "--steps", "100"))
}
