package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestDefault(t *testing.T) {
	cfg := Default()

	require.True(t, cfg.CheckBlur)
	require.Equal(t, 100.0, cfg.BlurThreshold)
	require.True(t, cfg.CheckExposure)
	require.Equal(t, 0.5, cfg.DarkThreshold)
	require.Equal(t, 0.5, cfg.BrightThreshold)
	require.True(t, cfg.CheckResolution)
	require.Equal(t, 800, cfg.MinWidth)
	require.Equal(t, 600, cfg.MinHeight)
	require.True(t, cfg.CheckNoise)
	require.Equal(t, 1000.0, cfg.NoiseThreshold)
	require.True(t, cfg.CheckDuplicates)
	require.Equal(t, 5, cfg.DuplicateSimilarity)
	require.True(t, cfg.CheckClosedEyes)
	require.False(t, cfg.FilterNoPeople)

	require.NoError(t, cfg.Validate())
}

func TestLoad_OverlaysDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	data := []byte("blur_threshold: 55.5\ncheck_noise: false\nfilter_no_people: true\n")
	require.NoError(t, os.WriteFile(path, data, 0644))

	cfg, err := Load(path)
	require.NoError(t, err)

	require.Equal(t, 55.5, cfg.BlurThreshold)
	require.False(t, cfg.CheckNoise)
	require.True(t, cfg.FilterNoPeople)

	// Untouched options keep their defaults.
	require.True(t, cfg.CheckBlur)
	require.Equal(t, 800, cfg.MinWidth)
	require.Equal(t, 5, cfg.DuplicateSimilarity)
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	require.Error(t, err)
}

func TestLoad_MalformedYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("check_blur: [unclosed"), 0644))

	_, err := Load(path)
	require.Error(t, err)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*FilterConfig)
		errMsg string
	}{
		{"similarity too high", func(c *FilterConfig) { c.DuplicateSimilarity = 65 }, "duplicate_similarity"},
		{"similarity negative", func(c *FilterConfig) { c.DuplicateSimilarity = -1 }, "duplicate_similarity"},
		{"dark threshold above one", func(c *FilterConfig) { c.DarkThreshold = 1.5 }, "dark_threshold"},
		{"bright threshold negative", func(c *FilterConfig) { c.BrightThreshold = -0.1 }, "bright_threshold"},
		{"zero width", func(c *FilterConfig) { c.MinWidth = 0 }, "minimum resolution"},
		{"negative height", func(c *FilterConfig) { c.MinHeight = -1 }, "minimum resolution"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			cfg := Default()
			tc.mutate(&cfg)
			err := cfg.Validate()
			require.Error(t, err)
			require.Contains(t, err.Error(), tc.errMsg)
		})
	}
}

func TestValidate_BoundaryValues(t *testing.T) {
	cfg := Default()
	cfg.DuplicateSimilarity = 0
	require.NoError(t, cfg.Validate())

	cfg.DuplicateSimilarity = 64
	require.NoError(t, cfg.Validate())

	cfg.DarkThreshold = 0
	cfg.BrightThreshold = 1
	require.NoError(t, cfg.Validate())
}

func TestNeedsFaceDetection(t *testing.T) {
	cfg := Default()
	cfg.CheckClosedEyes = false
	cfg.FilterNoPeople = false
	require.False(t, cfg.NeedsFaceDetection())

	cfg.FilterNoPeople = true
	require.True(t, cfg.NeedsFaceDetection())

	cfg.FilterNoPeople = false
	cfg.CheckClosedEyes = true
	require.True(t, cfg.NeedsFaceDetection())
}

func TestRunOptionsValidate(t *testing.T) {
	dir := t.TempDir()

	opts := RunOptions{InputDir: dir, Action: ActionReport}
	require.NoError(t, opts.Validate())

	opts = RunOptions{InputDir: filepath.Join(dir, "absent"), Action: ActionReport}
	require.ErrorContains(t, opts.Validate(), "does not exist")

	file := filepath.Join(dir, "file.txt")
	require.NoError(t, os.WriteFile(file, []byte("x"), 0644))
	opts = RunOptions{InputDir: file, Action: ActionReport}
	require.ErrorContains(t, opts.Validate(), "not a directory")

	opts = RunOptions{InputDir: dir, Action: ActionCopy}
	require.ErrorContains(t, opts.Validate(), "--output is required")

	opts = RunOptions{InputDir: dir, Action: ActionMove, OutputDir: filepath.Join(dir, "out")}
	require.NoError(t, opts.Validate())

	opts = RunOptions{InputDir: dir, Action: "shred"}
	require.ErrorContains(t, opts.Validate(), "unknown action")
}
