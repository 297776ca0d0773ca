package config

import (
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/chazu/facet/pkg/normals"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefault(t *testing.T) {
	cfg := Default()
	assert.Equal(t, normals.DefaultOptions(), cfg.Normals)
	assert.Equal(t, KernelSdfx, cfg.Tessellation.Kernel)
	assert.Equal(t, 200, cfg.Tessellation.Cells)
	assert.Zero(t, cfg.Tessellation.WeldTolerance)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.NoError(t, cfg.Validate())
}

func TestReadFull(t *testing.T) {
	src := `
[normals]
feature_angle = 45.0
splitting = false
consistency = true
flip_normals = true
auto_orient_normals = true
compute_point_normals = false
compute_cell_normals = true
non_manifold_traversal = false
output_points_precision = "single"

[tessellation]
kernel = "manifold"
cells = 64
weld_tolerance = 0.001

[log]
level = "debug"
`
	cfg, err := Read(strings.NewReader(src))
	require.NoError(t, err)

	assert.Equal(t, normals.Options{
		FeatureAngle:          45,
		Splitting:             false,
		Consistency:           true,
		FlipNormals:           true,
		AutoOrientNormals:     true,
		ComputePointNormals:   false,
		ComputeCellNormals:    true,
		NonManifoldTraversal:  false,
		OutputPointsPrecision: normals.SinglePrecision,
	}, cfg.Normals)
	assert.Equal(t, KernelManifold, cfg.Tessellation.Kernel)
	assert.Equal(t, 64, cfg.Tessellation.Cells)
	assert.InDelta(t, 0.001, cfg.Tessellation.WeldTolerance, 1e-12)

	level, err := cfg.Log.SlogLevel()
	require.NoError(t, err)
	assert.Equal(t, slog.LevelDebug, level)
}

func TestReadPartialKeepsDefaults(t *testing.T) {
	cfg, err := Read(strings.NewReader("[normals]\nauto_orient_normals = true\n"))
	require.NoError(t, err)

	want := normals.DefaultOptions()
	want.AutoOrientNormals = true
	assert.Equal(t, want, cfg.Normals)
	assert.Equal(t, 200, cfg.Tessellation.Cells)
	assert.Equal(t, "info", cfg.Log.Level)
}

func TestReadEmpty(t *testing.T) {
	cfg, err := Read(strings.NewReader(""))
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestReadClampsFeatureAngle(t *testing.T) {
	cfg, err := Read(strings.NewReader("[normals]\nfeature_angle = -10.0\n"))
	require.NoError(t, err)
	assert.Zero(t, cfg.Normals.FeatureAngle)
}

func TestReadErrors(t *testing.T) {
	tests := []struct {
		name string
		src  string
		want string
	}{
		{"unknown key", "[normals]\nsmoothing = 3\n", "smoothing"},
		{"bad precision", "[normals]\noutput_points_precision = \"half\"\n", "invalid output precision"},
		{"bad kernel", "[tessellation]\nkernel = \"cgal\"\n", "tessellation.kernel"},
		{"zero cells", "[tessellation]\ncells = 0\n", "tessellation.cells"},
		{"negative weld", "[tessellation]\nweld_tolerance = -1.0\n", "weld_tolerance"},
		{"bad level", "[log]\nlevel = \"chatty\"\n", "log.level"},
		{"syntax", "[normals\n", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Read(strings.NewReader(tt.src))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestLoad(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, DefaultFile)
	require.NoError(t, os.WriteFile(path, []byte("[log]\nlevel = \"warn\"\n"), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	level, err := cfg.Log.SlogLevel()
	require.NoError(t, err)
	assert.Equal(t, slog.LevelWarn, level)

	_, err = Load(filepath.Join(dir, "missing.toml"))
	require.Error(t, err)
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestSlogLevel(t *testing.T) {
	tests := []struct {
		in   string
		want slog.Level
	}{
		{"", slog.LevelInfo},
		{"debug", slog.LevelDebug},
		{"INFO", slog.LevelInfo},
		{" warn ", slog.LevelWarn},
		{"error", slog.LevelError},
	}
	for _, tt := range tests {
		got, err := Log{Level: tt.in}.SlogLevel()
		require.NoError(t, err, tt.in)
		assert.Equal(t, tt.want, got, tt.in)
	}
}
