package tools

import (
	"fmt"
	"path/filepath"

	"github.com/richard-senior/refstats/internal/logger"
	"github.com/richard-senior/refstats/pkg/protocol"
	"github.com/richard-senior/refstats/pkg/refstats"
	"github.com/richard-senior/refstats/pkg/render"
	"github.com/richard-senior/refstats/pkg/service"
	"github.com/richard-senior/refstats/pkg/util"
)

// RefereeTools serves the referee analytics tools from one service
type RefereeTools struct {
	svc *service.Service
}

func NewRefereeTools(svc *service.Service) *RefereeTools {
	return &RefereeTools{svc: svc}
}

func selectionProperties() map[string]protocol.ToolProperty {
	return map[string]protocol.ToolProperty{
		"team": {
			Type:        "string",
			Description: "The team to analyse ie. 'Man United'. Close misspellings are resolved. Defaults to the configured team.",
		},
		"seasons": {
			Type:        "array",
			Items:       &protocol.ToolProperty{Type: "string"},
			Description: "Seasons to include ie. ['2019-2020', '2020/21']. Omit for every season.",
		},
		"referees": {
			Type:        "array",
			Items:       &protocol.ToolProperty{Type: "string"},
			Description: "Referees to include ie. ['M Dean']. Omit for every referee who took charge of the team.",
		},
	}
}

func RefereeStatsTool() protocol.Tool {
	return protocol.Tool{
		Name: "referee_stats",
		Description: `
		Reports how a football team has fared under each referee across the selected seasons.
		Returns per referee win/draw/loss counts, win rate and goal differential, per season win rates,
		the referee by season win-rate matrix and a markdown summary table.
		This tool should be used when:
		- The user asks whether a referee is good or bad for their team
		- The user wants a team's record broken down by referee or season
		`,
		InputSchema: protocol.InputSchema{
			Type:       "object",
			Properties: selectionProperties(),
			Required:   []string{},
		},
	}
}

func RefereeChartsTool() protocol.Tool {
	props := selectionProperties()
	props["directory"] = protocol.ToolProperty{
		Type:        "string",
		Description: "The absolute directory in which to write the SVG charts. Defaults to the configured output directory.",
	}
	props["width"] = protocol.ToolProperty{
		Type:        "integer",
		Description: "Chart width in pixels. Defaults to the configured width.",
	}
	props["height"] = protocol.ToolProperty{
		Type:        "integer",
		Description: "Chart height in pixels. Defaults to the configured height.",
	}
	return protocol.Tool{
		Name: "referee_charts",
		Description: `
		Draws the referee analytics for a team as SVG files: win rate by referee, goal differential by referee,
		win rate by season and a referee by season heatmap, plus a summary.md.
		Returns the paths written.
		`,
		InputSchema: protocol.InputSchema{
			Type:       "object",
			Properties: props,
			Required:   []string{},
		},
	}
}

// queryFromParams reads team, seasons and referees from tool arguments
func queryFromParams(params any) (service.Query, map[string]any, error) {
	paramsMap := map[string]any{}
	if params != nil {
		m, ok := params.(map[string]any)
		if !ok {
			return service.Query{}, nil, fmt.Errorf("invalid parameters format")
		}
		paramsMap = m
	}
	q := service.Query{}
	if v, ok := paramsMap["team"]; ok && v != nil {
		team, err := util.GetAsString(v)
		if err != nil {
			return q, nil, fmt.Errorf("team: %w", err)
		}
		q.Team = team
	}
	var err error
	if q.Seasons, err = util.GetAsStringSlice(paramsMap["seasons"]); err != nil {
		return q, nil, fmt.Errorf("seasons: %w", err)
	}
	if q.Referees, err = util.GetAsStringSlice(paramsMap["referees"]); err != nil {
		return q, nil, fmt.Errorf("referees: %w", err)
	}
	return q, paramsMap, nil
}

// HandleRefereeStats runs the pipeline for the requested selection
func (rt *RefereeTools) HandleRefereeStats(params any) (any, error) {
	q, _, err := queryFromParams(params)
	if err != nil {
		return nil, err
	}
	r, err := rt.svc.Report(q)
	if err != nil {
		return nil, err
	}
	md, err := render.SummaryMarkdown(r)
	if err != nil {
		return nil, err
	}
	logger.Info("referee_stats", r.Team, len(r.Matches))
	return map[string]any{
		"team":                  r.Team,
		"selection":             r.Selection,
		"empty":                 r.Empty,
		"matches":               len(r.Matches),
		"byWinRate":             r.WinRateView(),
		"byGoalDifferential":    r.GoalDifferentialView(),
		"byMatchCount":          r.MatchCountView(),
		"seasons":               r.Seasons,
		"matrix":                r.Matrix,
		"summaryMarkdown":       md,
		"outcomeCounts":         outcomeCounts(r.Matches),
		"totalGoalDifferential": totalGoalDifferential(r.Matches),
	}, nil
}

// HandleRefereeCharts writes the charts for the requested selection
func (rt *RefereeTools) HandleRefereeCharts(params any) (any, error) {
	q, paramsMap, err := queryFromParams(params)
	if err != nil {
		return nil, err
	}
	dir := rt.svc.Config().OutputDir
	if v, ok := paramsMap["directory"].(string); ok && v != "" {
		dir = v
	}
	dir, err = filepath.Abs(dir)
	if err != nil {
		return nil, fmt.Errorf("invalid directory: %w", err)
	}
	opts := rt.svc.ChartOptions()
	if opts.Width, err = intParam(paramsMap, "width", opts.Width, 200); err != nil {
		return nil, err
	}
	if opts.Height, err = intParam(paramsMap, "height", opts.Height, 150); err != nil {
		return nil, err
	}
	r, err := rt.svc.Report(q)
	if err != nil {
		return nil, err
	}
	paths, err := render.WriteAll(dir, r, opts)
	if err != nil {
		return nil, err
	}
	return map[string]any{
		"team":  r.Team,
		"empty": r.Empty,
		"files": paths,
	}, nil
}

// intParam reads an optional integer argument no smaller than lo
func intParam(params map[string]any, name string, def, lo int) (int, error) {
	v, ok := params[name]
	if !ok || v == nil {
		return def, nil
	}
	n, err := util.GetAsInteger(v)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", name, err)
	}
	if n < lo || n > 8192 {
		return 0, fmt.Errorf("%s must be between %d and 8192, got %d", name, lo, n)
	}
	return n, nil
}

func outcomeCounts(ms []refstats.DerivedMatch) map[refstats.Outcome]int {
	ret := map[refstats.Outcome]int{refstats.Win: 0, refstats.Draw: 0, refstats.Loss: 0}
	for _, m := range ms {
		ret[m.Outcome]++
	}
	return ret
}

func totalGoalDifferential(ms []refstats.DerivedMatch) int {
	total := 0
	for _, m := range ms {
		total += m.GoalDifferential
	}
	return total
}
