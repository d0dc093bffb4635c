package render

import (
	"fmt"

	"github.com/richard-senior/refstats/pkg/refstats"
	"github.com/richard-senior/refstats/pkg/util"
)

const (
	heatmapLeft   = 150 // room for referee names
	heatmapTop    = 110 // title plus rotated season labels
	heatmapMargin = 20
	minCellWidth  = 36
	minCellHeight = 18
	titleStyle    = "font-size: 16px; font-family: Arial; fill: black;"
	axisStyle     = "font-size: 11px; font-family: Arial; fill: #333333;"
	cellStyle     = "font-size: 10px; font-family: Arial; fill: black;"
)

// heatColour shades a win rate from red (0%) through amber to green (100%)
func heatColour(rate float64) string {
	if rate < 0 {
		rate = 0
	}
	if rate > 100 {
		rate = 100
	}
	lerp := func(a, b int, t float64) int { return a + int(float64(b-a)*t) }
	var r, g, b int
	if rate <= 50 {
		t := rate / 50
		r, g, b = lerp(0xef, 0xff, t), lerp(0x9a, 0xe0, t), lerp(0x9a, 0x82, t)
	} else {
		t := (rate - 50) / 50
		r, g, b = lerp(0xff, 0x81, t), lerp(0xe0, 0xc7, t), lerp(0x82, 0x84, t)
	}
	return fmt.Sprintf("#%02x%02x%02x", r, g, b)
}

/**
 * Heatmap draws the referee x season win-rate matrix as a grid of shaded cells,
 * referees down the left and seasons along the top. Every cell carries its
 * value to one decimal place and a tooltip with the underlying match count.
 */
func Heatmap(mx *refstats.Matrix, opts Options) ([]byte, error) {
	opts = opts.withTitle("Win rate by referee and season")
	if mx == nil || mx.Size() == 0 {
		return Placeholder(opts)
	}
	nr, ns := len(mx.Referees), len(mx.Seasons)

	cellW := max((opts.Width-heatmapLeft-heatmapMargin)/ns, minCellWidth)
	cellH := max((opts.Height-heatmapTop-heatmapMargin)/nr, minCellHeight)
	svg := util.NewBlankSVG(heatmapLeft+cellW*ns+heatmapMargin, heatmapTop+cellH*nr+heatmapMargin)
	svg.Name = "heatmap"

	bg, err := util.NewSVGRect(0, 0, svg.Width, svg.Height, "#ffffff", 0)
	if err != nil {
		return nil, err
	}
	svg.AddRect(bg)

	title, err := svg.AddText("title", opts.Title, titleStyle, svg.Width/2, 24, 2)
	if err != nil {
		return nil, err
	}
	title.Anchor = "middle"

	for j, season := range mx.Seasons {
		x := heatmapLeft + j*cellW + cellW/2
		label, err := svg.AddText("season", season, axisStyle, x, heatmapTop-8, 2)
		if err != nil {
			return nil, err
		}
		label.Rotate = -45
	}

	for i, referee := range mx.Referees {
		y := heatmapTop + i*cellH
		label, err := svg.AddText("referee", referee, axisStyle, heatmapLeft-6, y+cellH/2+4, 2)
		if err != nil {
			return nil, err
		}
		label.Anchor = "end"

		for j, season := range mx.Seasons {
			rate := mx.WinRate[i][j]
			x := heatmapLeft + j*cellW
			cell, err := util.NewSVGRect(x, y, cellW, cellH, heatColour(rate), 1)
			if err != nil {
				return nil, err
			}
			cell.Stroke = "#ffffff"
			cell.Title = fmt.Sprintf("%s, %s: %.1f%% from %d matches", referee, season, rate, mx.Counts[i][j])
			svg.AddRect(cell)

			value, err := svg.AddText("value", fmt.Sprintf("%.1f", rate), cellStyle, x+cellW/2, y+cellH/2+4, 2)
			if err != nil {
				return nil, err
			}
			value.Anchor = "middle"
		}
	}

	out, err := svg.ToSVG()
	if err != nil {
		return nil, fmt.Errorf("failed to render heatmap: %w", err)
	}
	return []byte(out), nil
}

// Placeholder is an otherwise blank chart carrying NoDataMessage
func Placeholder(opts Options) ([]byte, error) {
	opts = opts.withTitle("")
	svg := util.NewBlankSVG(opts.Width, opts.Height)
	svg.Name = "placeholder"
	bg, err := util.NewSVGRect(0, 0, opts.Width, opts.Height, "#fafafa", 0)
	if err != nil {
		return nil, err
	}
	bg.Stroke = "#e0e0e0"
	svg.AddRect(bg)
	if opts.Title != "" {
		t, err := svg.AddText("title", opts.Title, titleStyle, opts.Width/2, 24, 1)
		if err != nil {
			return nil, err
		}
		t.Anchor = "middle"
	}
	msg, err := svg.AddWrappedText("message", NoDataMessage, titleStyle, opts.Width/2, opts.Height/2, opts.Width-40, 1)
	if err != nil {
		return nil, err
	}
	msg.Anchor = "middle"
	out, err := svg.ToSVG()
	if err != nil {
		return nil, err
	}
	return []byte(out), nil
}
