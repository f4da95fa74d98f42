package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ironsheep/registry-segmenter/internal/geometry"
)

func writeSettings(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "settings.env")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestDefault(t *testing.T) {
	cfg := Default()
	require.NoError(t, cfg.Validate())

	assert.Equal(t, 10, cfg.KernelX)
	assert.Equal(t, 3, cfg.KernelY)
	assert.Equal(t, 60, cfg.Threshold)
	assert.Equal(t, 8, cfg.Iterations)
	assert.Equal(t, 2, cfg.Clusters())
	assert.InDelta(t, 0.012, cfg.Expansion, 1e-12)
	assert.InDelta(t, 0.025, cfg.IndentWidth, 1e-12)
	assert.Equal(t, 1.0, cfg.StdThresh)
	assert.Equal(t, int64(0), cfg.Seed)
	assert.Equal(t, 30*time.Second, cfg.OCRTimeout)
}

func TestLoad_SettingsFile(t *testing.T) {
	path := writeSettings(t, `
# 1990s layout
kernel_shape_x=14
kernel_shape_y=4
thresh_value=90
columns_per_page=3
pages_per_image=2
bb_expansion_percent=0.02
expansion_style=half
split_indents=true
match_rate=85
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 14, cfg.KernelX)
	assert.Equal(t, 4, cfg.KernelY)
	assert.Equal(t, 90, cfg.Threshold)
	assert.Equal(t, 6, cfg.Clusters())
	assert.InDelta(t, 0.02, cfg.Expansion, 1e-12)
	assert.True(t, cfg.SplitIndents)
	assert.Equal(t, 8, cfg.Iterations, "unset keys keep their defaults")

	want := geometry.ExpandHalf(geometry.BoundingBox{X: 10, Y: 10, W: 10, H: 10}, 100, 100, 0.2, 0.2)
	got := cfg.Expander()(geometry.BoundingBox{X: 10, Y: 10, W: 10, H: 10}, 100, 100, 0.2, 0.2)
	assert.Equal(t, want, got)
}

func TestLoad_EnvironmentOverridesFile(t *testing.T) {
	path := writeSettings(t, "thresh_value=90\niterations=5\n")
	t.Setenv("REGSEG_THRESH_VALUE", "120")
	t.Setenv("REGSEG_OCR_TIMEOUT", "5s")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 120, cfg.Threshold)
	assert.Equal(t, 5, cfg.Iterations)
	assert.Equal(t, 5*time.Second, cfg.OCRTimeout)
}

func TestLoad_NoFile(t *testing.T) {
	t.Setenv("REGSEG_WORKERS", "2")
	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, 2, cfg.Workers)
}

func TestLoad_Errors(t *testing.T) {
	tests := []struct {
		name    string
		content string
		key     string
	}{
		{"unparsable int", "iterations=many\n", "iterations"},
		{"unparsable bool", "debug=maybe\n", "debug"},
		{"threshold out of range", "thresh_value=256\n", "thresh_value"},
		{"zero kernel", "kernel_shape_x=0\n", "kernel_shape_x"},
		{"zero columns", "columns_per_page=0\n", "columns_per_page"},
		{"bad style", "expansion_style=double\n", "expansion_style"},
		{"bad colour", "line_color=chartreuse\n", "line_color"},
		{"debug without dir", "debug=true\ndebug_dir=\n", "debug_dir"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(writeSettings(t, tt.content))
			require.Error(t, err)

			var cfgErr *Error
			require.True(t, errors.As(err, &cfgErr), "got %v", err)
			assert.Equal(t, tt.key, cfgErr.Key)
		})
	}
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "absent.env"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to read settings file")
}

func TestSaveRoundTrip(t *testing.T) {
	cfg := Default()
	cfg.Threshold = 75
	cfg.Expansion = 0.015
	cfg.SplitIndents = true
	cfg.ExpansionStyle = ExpandHalf
	cfg.OCRTimeout = 90 * time.Second
	cfg.Seed = 42

	path := filepath.Join(t.TempDir(), "saved.env")
	require.NoError(t, cfg.Save(path))

	loaded, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, cfg, loaded)
}

func TestWith(t *testing.T) {
	base := Default()

	cfg, err := base.With(map[string]string{"columns_per_page": "3", "STD_THRESH": "1.5"})
	require.NoError(t, err)
	assert.Equal(t, 3, cfg.ColumnsPerPage)
	assert.Equal(t, 1.5, cfg.StdThresh)
	assert.Equal(t, 2, base.ColumnsPerPage, "receiver is not modified")

	_, err = base.With(map[string]string{"colour": "red"})
	var cfgErr *Error
	require.ErrorAs(t, err, &cfgErr)
	assert.Equal(t, "colour", cfgErr.Key)
}

func TestKeysCoverValues(t *testing.T) {
	values := Default().Values()
	for _, k := range Keys() {
		assert.Contains(t, values, k)
	}
	assert.Len(t, values, len(Keys()))
}

func TestErrorMessage(t *testing.T) {
	err := &Error{Key: "iterations", Value: "x", Err: errors.New("bad")}
	assert.Equal(t, `invalid setting iterations="x": bad`, err.Error())
	assert.Equal(t, "invalid setting workers: must be positive", (&Error{Key: "workers", Reason: "must be positive"}).Error())
}
