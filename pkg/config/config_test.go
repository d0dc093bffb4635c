package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/richard-senior/refstats/internal/logger"
	"github.com/richard-senior/refstats/pkg/loader"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// writeTemp writes content to a yaml file in a temp dir and returns its path
func writeTemp(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "refstats.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestDefaultConfig(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "Man United", cfg.TrackedTeam)
	assert.Equal(t, "combined_seasons.csv", cfg.Source)
	assert.NoError(t, Validate(cfg))
	assert.IsType(t, &loader.FileSource{}, cfg.NewSource())
}

func TestLoadOverlaysDefaults(t *testing.T) {
	path := writeTemp(t, `
tracked_team: Arsenal
source: data/results.html
format: html
log_level: debug
chart_width: 800
loader:
  normalize_seasons: true
  table_selector: table.results
  aliases:
    home_team: [Hosts]
`)
	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "Arsenal", cfg.TrackedTeam)
	assert.Equal(t, filepath.Join(filepath.Dir(path), "data/results.html"), cfg.Source)
	assert.Equal(t, loader.FormatHTML, cfg.Format)
	assert.Equal(t, 800, cfg.ChartWidth)
	// untouched keys keep their defaults
	assert.Equal(t, 512, cfg.ChartHeight)
	assert.Equal(t, ":8080", cfg.ListenAddr)
	assert.True(t, cfg.Loader.NormalizeSeasons)
	assert.Equal(t, "table.results", cfg.Loader.TableSelector)
	assert.Equal(t, []string{"Hosts"}, cfg.Loader.Aliases["home_team"])
}

func TestLoadKeepsURLsAndAbsolutePaths(t *testing.T) {
	path := writeTemp(t, "source: https://example.org/results.csv\ndb_path: /var/lib/refstats.db\n")
	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "https://example.org/results.csv", cfg.Source)
	assert.Equal(t, "/var/lib/refstats.db", cfg.DbPath)
	assert.IsType(t, &loader.URLSource{}, cfg.NewSource())
}

func TestLoadErrors(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)

	_, err = Load(writeTemp(t, "tracked_team: [unclosed"))
	assert.Error(t, err)

	_, err = Load(writeTemp(t, "format: xlsx\n"))
	assert.ErrorContains(t, err, "format")
}

func TestValidate(t *testing.T) {
	cases := map[string]func(c *Config){
		"empty team":    func(c *Config) { c.TrackedTeam = " " },
		"empty source":  func(c *Config) { c.Source = "" },
		"log output":    func(c *Config) { c.LogOutput = "x" },
		"log level":     func(c *Config) { c.LogLevel = "chatty" },
		"narrow chart":  func(c *Config) { c.ChartWidth = 10 },
		"short chart":   func(c *Config) { c.ChartHeight = 10 },
		"unknown alias": func(c *Config) { c.Loader.Aliases = map[string][]string{"kickoff": {"KO"}} },
	}
	for name, mutate := range cases {
		t.Run(name, func(t *testing.T) {
			cfg := DefaultConfig()
			mutate(cfg)
			assert.Error(t, Validate(cfg))
		})
	}
}

func TestApplyLoggingTimestamps(t *testing.T) {
	cfg := DefaultConfig()
	cfg.LogOutput = "f"
	cfg.LogPath = filepath.Join(t.TempDir(), "refstats.log")
	cfg.LogTimestamps = true
	require.NoError(t, cfg.ApplyLogging())
	defer func() {
		logger.SetShowDateTime(false)
		logger.Close()
		logger.SetWriter(os.Stderr)
	}()

	logger.Warn("stamped")
	data, err := os.ReadFile(cfg.LogPath)
	require.NoError(t, err)
	assert.Regexp(t, `^\d{4}/\d{2}/\d{2} \d{2}:\d{2}:\d{2} .*stamped`, string(data))
}
