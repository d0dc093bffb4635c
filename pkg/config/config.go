package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/richard-senior/refstats/internal/logger"
	"github.com/richard-senior/refstats/pkg/loader"
	"gopkg.in/yaml.v3"
)

// Config contains every tunable of the dashboard, MCP server and CLI.
// It is built once at startup and passed down explicitly.
type Config struct {
	// === Data ===
	TrackedTeam string         `yaml:"tracked_team"` // the team every view is computed for (default: "Man United")
	Source      string         `yaml:"source"`       // path or URL of the match data (default: "combined_seasons.csv")
	Format      loader.Format  `yaml:"format"`       // csv, html or sqlite, detected from Source when empty
	DbPath      string         `yaml:"db_path"`      // sqlite database used by import (default: "refstats.db")
	Loader      loader.Options `yaml:"loader"`       // column aliases, season normalisation etc.

	// === Logging ===
	LogOutput     string `yaml:"log_output"`     // c(onsole), e(rr), f(ile) or b(oth) (default: "c")
	LogPath       string `yaml:"log_path"`       // log file for f and b output (default: logger.DefaultLogPath)
	LogLevel      string `yaml:"log_level"`      // debug, info, warn, error (default: "info")
	LogTimestamps bool   `yaml:"log_timestamps"` // prefix lines with date and time (default: false)

	// === Dashboard ===
	ListenAddr string `yaml:"listen_addr"` // HTTP listen address (default: ":8080")

	// === Rendering ===
	OutputDir   string `yaml:"output_dir"`   // where report writes charts (default: "charts")
	ChartWidth  int    `yaml:"chart_width"`  // SVG width in pixels (default: 1024)
	ChartHeight int    `yaml:"chart_height"` // SVG height in pixels (default: 512)

	// === MCP ===
	PromptsDir string `yaml:"prompts_dir"` // optional directory of extra prompt JSON files
}

// DefaultConfig returns the configuration used when no file is given
func DefaultConfig() *Config {
	return &Config{
		TrackedTeam: "Man United",
		Source:      "combined_seasons.csv",
		DbPath:      "refstats.db",
		LogOutput:   "c",
		LogPath:     logger.DefaultLogPath,
		LogLevel:    "info",
		ListenAddr:  ":8080",
		OutputDir:   "charts",
		ChartWidth:  1024,
		ChartHeight: 512,
	}
}

// Load overlays the YAML file at path on DefaultConfig and validates the result.
// An empty path returns the defaults.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()
	if path == "" {
		return cfg, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config file %s: %w", path, err)
	}
	cfg.resolvePaths(filepath.Dir(path))
	if err := Validate(cfg); err != nil {
		return nil, fmt.Errorf("invalid config %s: %w", path, err)
	}
	return cfg, nil
}

// resolvePaths makes relative file locations relative to the config file
func (c *Config) resolvePaths(dir string) {
	rel := func(p string) string {
		if p == "" || p == ":memory:" || filepath.IsAbs(p) || isURL(p) {
			return p
		}
		return filepath.Join(dir, p)
	}
	c.Source = rel(c.Source)
	c.DbPath = rel(c.DbPath)
	c.PromptsDir = rel(c.PromptsDir)
}

func isURL(p string) bool {
	return strings.HasPrefix(p, "http://") || strings.HasPrefix(p, "https://")
}

// Validate ensures all configuration values are usable
func Validate(cfg *Config) error {
	if strings.TrimSpace(cfg.TrackedTeam) == "" {
		return fmt.Errorf("tracked_team must not be empty")
	}
	if cfg.Source == "" {
		return fmt.Errorf("source must not be empty")
	}
	switch cfg.Format {
	case "", loader.FormatCSV, loader.FormatHTML, loader.FormatSQLite:
	default:
		return fmt.Errorf("format must be one of csv, html or sqlite, got: %s", cfg.Format)
	}
	if len(cfg.LogOutput) != 1 || !strings.ContainsAny(cfg.LogOutput, "cefb") {
		return fmt.Errorf("log_output must be one of c, e, f or b, got: %q", cfg.LogOutput)
	}
	if _, err := logger.ParseLevel(cfg.LogLevel); err != nil {
		return err
	}
	if cfg.ChartWidth < 200 || cfg.ChartWidth > 8192 {
		return fmt.Errorf("chart_width should be between 200 and 8192, got: %d", cfg.ChartWidth)
	}
	if cfg.ChartHeight < 150 || cfg.ChartHeight > 8192 {
		return fmt.Errorf("chart_height should be between 150 and 8192, got: %d", cfg.ChartHeight)
	}
	for canonical := range cfg.Loader.Aliases {
		if !isCanonical(canonical) {
			return fmt.Errorf("loader alias key %q is not a known column", canonical)
		}
	}
	return nil
}

func isCanonical(name string) bool {
	_, ok := loader.DefaultAliases[name]
	return ok
}

// NewSource builds the loader source described by the config
func (c *Config) NewSource() loader.Source {
	return loader.NewSource(c.Source, c.Format, c.Loader)
}

// ApplyLogging configures the package logger from the config
func (c *Config) ApplyLogging() error {
	level, err := logger.ParseLevel(c.LogLevel)
	if err != nil {
		return err
	}
	logger.SetLevel(level)
	logger.SetShowDateTime(c.LogTimestamps)
	return logger.SetLogOutput(rune(c.LogOutput[0]), c.LogPath)
}
