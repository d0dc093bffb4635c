package render

import (
	"bytes"
	"fmt"
	"math"

	"github.com/richard-senior/refstats/pkg/refstats"
	"github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"
)

// NoDataMessage is shown in place of a chart when the selection is empty
const NoDataMessage = "No data for this selection"

// Options size and title a rendered chart
type Options struct {
	Width  int
	Height int
	Title  string
}

// DefaultOptions matches the default chart size in config
func DefaultOptions() Options {
	return Options{Width: 1024, Height: 512}
}

func (o Options) withTitle(title string) Options {
	if o.Title == "" {
		o.Title = title
	}
	if o.Width <= 0 {
		o.Width = DefaultOptions().Width
	}
	if o.Height <= 0 {
		o.Height = DefaultOptions().Height
	}
	return o
}

var (
	winColour     = drawing.ColorFromHex("2e7d32")
	lossColour    = drawing.ColorFromHex("c62828")
	neutralColour = drawing.ColorFromHex("1565c0")
	gridColour    = drawing.ColorFromHex("e0e0e0")
)

func percentFormatter(v interface{}) string {
	if f, ok := v.(float64); ok {
		return fmt.Sprintf("%.0f%%", f)
	}
	return ""
}

func meanFormatter(v interface{}) string {
	if f, ok := v.(float64); ok {
		return fmt.Sprintf("%+.1f", f)
	}
	return ""
}

// barWidth fits n bars into the plot area
func barWidth(width, n int) int {
	w := (width-160)/n - 10
	if w < 8 {
		return 8
	}
	if w > 80 {
		return 80
	}
	return w
}

// renderBars draws bars from the bottom of the axis, or up and down from zero when fromZero is set
func renderBars(opts Options, bars []chart.Value, yAxis chart.YAxis, fromZero bool) ([]byte, error) {
	bc := chart.BarChart{
		Title:        opts.Title,
		TitleStyle:   chart.Style{FontSize: 14},
		Background:   chart.Style{Padding: chart.Box{Top: 48, Left: 16, Right: 16, Bottom: 16}},
		Width:        opts.Width,
		Height:       opts.Height,
		BarWidth:     barWidth(opts.Width, len(bars)),
		BarSpacing:   10,
		XAxis:        chart.Style{FontSize: 9, TextRotationDegrees: 45},
		YAxis:        yAxis,
		Bars:         bars,
		UseBaseValue: fromZero,
	}
	var buf bytes.Buffer
	if err := bc.Render(chart.SVG, &buf); err != nil {
		return nil, fmt.Errorf("failed to render %s: %w", opts.Title, err)
	}
	return buf.Bytes(), nil
}

/**
 * WinRateByReferee draws one bar per referee, highest win rate first,
 * on a fixed 0-100% axis so charts for different selections compare directly.
 */
func WinRateByReferee(stats []refstats.RefereeStat, opts Options) ([]byte, error) {
	opts = opts.withTitle("Win rate by referee")
	if len(stats) == 0 {
		return Placeholder(opts)
	}
	var bars []chart.Value
	for _, s := range refstats.SortByWinRate(stats) {
		bars = append(bars, chart.Value{
			Label: s.Referee,
			Value: s.WinRate,
			Style: chart.Style{FillColor: neutralColour, StrokeColor: neutralColour},
		})
	}
	return renderBars(opts, bars, chart.YAxis{
		Name:           "Win rate",
		Range:          &chart.ContinuousRange{Min: 0, Max: 100},
		ValueFormatter: percentFormatter,
		GridMajorStyle: chart.Style{StrokeColor: gridColour, StrokeWidth: 1},
	}, false)
}

// GoalDifferenceByReferee draws the mean goal differential per match for each referee, worst first
func GoalDifferenceByReferee(stats []refstats.RefereeStat, opts Options) ([]byte, error) {
	opts = opts.withTitle("Goal differential by referee")
	if len(stats) == 0 {
		return Placeholder(opts)
	}
	lo, hi := 0.0, 0.0
	var bars []chart.Value
	for _, s := range refstats.SortByGoalDifferential(stats) {
		v := s.MeanGoalDifferential
		lo, hi = math.Min(lo, v), math.Max(hi, v)
		colour := winColour
		if v < 0 {
			colour = lossColour
		}
		bars = append(bars, chart.Value{
			Label: s.Referee,
			Value: v,
			Style: chart.Style{FillColor: colour, StrokeColor: colour},
		})
	}
	// a zero span range cannot be drawn
	if lo == hi {
		lo, hi = -1, 1
	}
	return renderBars(opts, bars, chart.YAxis{
		Name:           "Mean goal differential",
		Range:          &chart.ContinuousRange{Min: lo - 0.5, Max: hi + 0.5},
		ValueFormatter: meanFormatter,
		GridMajorStyle: chart.Style{StrokeColor: gridColour, StrokeWidth: 1},
	}, true)
}

// WinRateBySeason draws the season trend as a line with a dot per season
func WinRateBySeason(stats []refstats.SeasonStat, opts Options) ([]byte, error) {
	opts = opts.withTitle("Win rate by season")
	if len(stats) == 0 {
		return Placeholder(opts)
	}
	xs := make([]float64, len(stats))
	ys := make([]float64, len(stats))
	ticks := make([]chart.Tick, len(stats))
	for i, s := range stats {
		xs[i] = float64(i)
		ys[i] = s.WinRate
		ticks[i] = chart.Tick{Value: float64(i), Label: s.Season}
	}
	c := chart.Chart{
		Title:      opts.Title,
		TitleStyle: chart.Style{FontSize: 14},
		Width:      opts.Width,
		Height:     opts.Height,
		Background: chart.Style{Padding: chart.Box{Top: 48, Left: 16, Right: 16, Bottom: 16}},
		XAxis: chart.XAxis{
			Name:  "Season",
			Style: chart.Style{FontSize: 9, TextRotationDegrees: 45},
			Range: &chart.ContinuousRange{Min: -0.5, Max: float64(len(stats)) - 0.5},
			Ticks: ticks,
		},
		YAxis: chart.YAxis{
			Name:           "Win rate",
			Range:          &chart.ContinuousRange{Min: 0, Max: 100},
			ValueFormatter: percentFormatter,
			GridMajorStyle: chart.Style{StrokeColor: gridColour, StrokeWidth: 1},
		},
		Series: []chart.Series{
			chart.ContinuousSeries{
				Name:    "Win rate",
				XValues: xs,
				YValues: ys,
				Style: chart.Style{
					StrokeColor: neutralColour,
					StrokeWidth: 2,
					DotColor:    neutralColour,
					DotWidth:    4,
				},
			},
		},
	}
	var buf bytes.Buffer
	if err := c.Render(chart.SVG, &buf); err != nil {
		return nil, fmt.Errorf("failed to render %s: %w", opts.Title, err)
	}
	return buf.Bytes(), nil
}
