package render

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/richard-senior/refstats/internal/logger"
	"github.com/richard-senior/refstats/pkg/refstats"
)

// Chart names, also used as file and URL names
const (
	ChartWinRateReferee  = "winrate-referee"
	ChartGoalDiffReferee = "goaldiff-referee"
	ChartWinRateSeason   = "winrate-season"
	ChartHeatmap         = "heatmap"
)

// ChartNames lists every chart in dashboard order
var ChartNames = []string{ChartWinRateReferee, ChartGoalDiffReferee, ChartWinRateSeason, ChartHeatmap}

// Chart renders one named chart for r
func Chart(name string, r *refstats.Report, opts Options) ([]byte, error) {
	switch name {
	case ChartWinRateReferee:
		return WinRateByReferee(r.Referees, opts)
	case ChartGoalDiffReferee:
		return GoalDifferenceByReferee(r.Referees, opts)
	case ChartWinRateSeason:
		return WinRateBySeason(r.Seasons, opts)
	case ChartHeatmap:
		return Heatmap(r.Matrix, opts)
	}
	return nil, fmt.Errorf("unknown chart %q", name)
}

// WriteAll writes every chart as <name>.svg plus summary.md into dir and returns the paths written
func WriteAll(dir string, r *refstats.Report, opts Options) ([]string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create %s: %w", dir, err)
	}
	var paths []string
	for _, name := range ChartNames {
		data, err := Chart(name, r, opts)
		if err != nil {
			return paths, err
		}
		p := filepath.Join(dir, name+".svg")
		if err := os.WriteFile(p, data, 0o644); err != nil {
			return paths, fmt.Errorf("failed to write %s: %w", p, err)
		}
		paths = append(paths, p)
	}
	md, err := SummaryMarkdown(r)
	if err != nil {
		return paths, err
	}
	p := filepath.Join(dir, "summary.md")
	if err := os.WriteFile(p, []byte(md), 0o644); err != nil {
		return paths, fmt.Errorf("failed to write %s: %w", p, err)
	}
	paths = append(paths, p)
	logger.Info("Wrote report to", dir)
	return paths, nil
}
