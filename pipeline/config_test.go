package pipeline

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nvr-ai/go-motionseg/flow"
)

func writeConfig(t *testing.T, name, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestDefaultConfigIsValid(t *testing.T) {
	cfg := DefaultConfig()
	require.NoError(t, cfg.Validate())
	assert.Equal(t, flow.MethodHierarchical, cfg.Method)
	assert.Equal(t, 5, cfg.Flow.WinSize)
	assert.Equal(t, 20, cfg.Flow.Iterations)
	assert.Equal(t, 3, cfg.Flow.Levels)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		want   error
	}{
		{"zero tsteps", func(c *Config) { c.TSteps = 0 }, flow.ErrInvalidWindow},
		{"negative sigma", func(c *Config) { c.Sigma = -1 }, ErrInvalidConfig},
		{"negative threshold", func(c *Config) { c.Threshold = -0.5 }, ErrInvalidConfig},
		{"negative min size", func(c *Config) { c.MinSize = -1 }, ErrInvalidConfig},
		{"no workers", func(c *Config) { c.Workers = 0 }, ErrInvalidConfig},
		{"negative max width", func(c *Config) { c.MaxWidth = -3 }, ErrInvalidConfig},
		{"zero spacing", func(c *Config) { c.VectorSpacing = 0 }, ErrInvalidConfig},
		{"empty output", func(c *Config) { c.OutputDir = "" }, ErrInvalidConfig},
		{"unknown method", func(c *Config) { c.Method = "farneback" }, ErrInvalidConfig},
		{"bad flow config", func(c *Config) { c.Flow.WinSize = 0 }, ErrInvalidConfig},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(&cfg)
			err := cfg.Validate()
			require.Error(t, err)
			assert.True(t, errors.Is(err, tt.want), "got %v", err)
		})
	}
}

func TestLoadConfigOverridesOnlyPresentFields(t *testing.T) {
	path := writeConfig(t, "run.json", `{
		"sigma": 2.5,
		"method": "hs",
		"workers": 4,
		"iterations": 50,
		"alpha": 0.5
	}`)

	cfg, err := LoadConfig(path, DefaultConfig())
	require.NoError(t, err)

	assert.Equal(t, 2.5, cfg.Sigma)
	assert.Equal(t, flow.MethodHornSchunck, cfg.Method)
	assert.Equal(t, 4, cfg.Workers)
	assert.Equal(t, 50, cfg.Flow.Iterations)
	assert.Equal(t, 0.5, cfg.Flow.Alpha)

	def := DefaultConfig()
	assert.Equal(t, def.TSteps, cfg.TSteps)
	assert.Equal(t, def.MinSize, cfg.MinSize)
	assert.Equal(t, def.Flow.Levels, cfg.Flow.Levels)
	assert.Equal(t, def.Flow.WinSize, cfg.Flow.WinSize)
}

func TestLoadConfigErrors(t *testing.T) {
	tests := []struct {
		name string
		path func(t *testing.T) string
		want error
	}{
		{"wrong extension", func(t *testing.T) string { return writeConfig(t, "run.yaml", "{}") }, ErrInvalidConfig},
		{"missing", func(t *testing.T) string { return filepath.Join(t.TempDir(), "none.json") }, ErrInvalidConfig},
		{"bad json", func(t *testing.T) string { return writeConfig(t, "run.json", "{sigma:") }, ErrInvalidConfig},
		{"invalid value", func(t *testing.T) string { return writeConfig(t, "run.json", `{"workers": 0}`) }, ErrInvalidConfig},
		{"invalid window", func(t *testing.T) string { return writeConfig(t, "run.json", `{"tsteps": 0}`) }, flow.ErrInvalidWindow},
		{"too large", func(t *testing.T) string {
			return writeConfig(t, "run.json", `{"sigma": 1}`+strings.Repeat(" ", maxConfigFileSize))
		}, ErrInvalidConfig},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			base := DefaultConfig()
			cfg, err := LoadConfig(tt.path(t), base)
			require.Error(t, err)
			assert.True(t, errors.Is(err, tt.want), "got %v", err)
			assert.Equal(t, base, cfg)
		})
	}
}
