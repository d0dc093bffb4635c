package render

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/richard-senior/refstats/pkg/refstats"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const team = "Man United"

func sampleReport(t *testing.T) *refstats.Report {
	t.Helper()
	tbl := refstats.NewTable([]refstats.Match{
		{HomeTeam: team, AwayTeam: "Chelsea", HomeGoals: 2, AwayGoals: 0, Season: "2019-2020", Referee: "M Dean"},
		{HomeTeam: "Spurs", AwayTeam: team, HomeGoals: 1, AwayGoals: 0, Season: "2019-2020", Referee: "M Dean"},
		{HomeTeam: team, AwayTeam: "Leeds", HomeGoals: 1, AwayGoals: 1, Season: "2020-2021", Referee: "A Taylor"},
		{HomeTeam: "Everton", AwayTeam: team, HomeGoals: 0, AwayGoals: 4, Season: "2020-2021", Referee: "M Dean"},
		{HomeTeam: team, AwayTeam: "Wolves", HomeGoals: 0, AwayGoals: 0, Season: "2020-2021", Referee: "M Dean"},
	})
	r, err := refstats.RunDefault(tbl, team)
	require.NoError(t, err)
	return r
}

func emptyReport(t *testing.T) *refstats.Report {
	t.Helper()
	r, err := refstats.Run(refstats.NewTable(nil), team, refstats.Selection{})
	require.NoError(t, err)
	require.True(t, r.Empty)
	return r
}

func assertSVG(t *testing.T, data []byte) {
	t.Helper()
	s := string(data)
	assert.Contains(t, s, "<svg")
	assert.Contains(t, s, "</svg>")
}

func TestChartsRender(t *testing.T) {
	r := sampleReport(t)
	for _, name := range ChartNames {
		t.Run(name, func(t *testing.T) {
			data, err := Chart(name, r, Options{Width: 800, Height: 400})
			require.NoError(t, err)
			assertSVG(t, data)
			assert.NotContains(t, string(data), NoDataMessage)
		})
	}
	_, err := Chart("pie", r, DefaultOptions())
	assert.Error(t, err)
}

func TestChartsEmptySelectionRenderPlaceholder(t *testing.T) {
	r := emptyReport(t)
	for _, name := range ChartNames {
		data, err := Chart(name, r, Options{})
		require.NoError(t, err, name)
		assertSVG(t, data)
		assert.Contains(t, string(data), NoDataMessage, name)
	}
}

func TestGoalDifferenceAllLevel(t *testing.T) {
	stats := []refstats.RefereeStat{{Referee: "A", Matches: 1, Draws: 1}, {Referee: "B", Matches: 2, Draws: 2}}
	data, err := GoalDifferenceByReferee(stats, DefaultOptions())
	require.NoError(t, err)
	assertSVG(t, data)
}

func TestGoalDifferencePlotsMean(t *testing.T) {
	// ten wins by one goal: mean +1, sum +10
	stats := []refstats.RefereeStat{{Referee: "A", Matches: 10, Wins: 10, WinRate: 100, GoalDifferential: 10, MeanGoalDifferential: 1}}
	data, err := GoalDifferenceByReferee(stats, DefaultOptions())
	require.NoError(t, err)
	s := string(data)
	assert.Contains(t, s, ">+1.5</text>")
	assert.NotContains(t, s, "+10")
	assert.NotContains(t, s, "+11")
}

func TestWinRateBySeasonSinglePoint(t *testing.T) {
	data, err := WinRateBySeason([]refstats.SeasonStat{{Season: "2020-2021", Matches: 1, Wins: 1, WinRate: 100}}, DefaultOptions())
	require.NoError(t, err)
	assertSVG(t, data)
}

func TestHeatmapCells(t *testing.T) {
	r := sampleReport(t)
	data, err := Heatmap(r.Matrix, Options{Width: 600, Height: 300})
	require.NoError(t, err)
	s := string(data)

	// A Taylor 2019-2020 has no matches and is drawn as 0.0
	assert.Contains(t, s, ">0.0</text>")
	// M Dean 2020-2021: one win one draw
	assert.Contains(t, s, ">50.0</text>")
	assert.Contains(t, s, "M Dean, 2020-2021: 50.0% from 2 matches")
	assert.Contains(t, s, "A Taylor, 2019-2020: 0.0% from 0 matches")
	assert.Equal(t, r.Matrix.Size(), strings.Count(s, "matches</title>"))
	assert.Contains(t, s, "2019-2020")
}

func TestHeatColour(t *testing.T) {
	assert.Equal(t, "#ef9a9a", heatColour(0))
	assert.Equal(t, "#ffe082", heatColour(50))
	assert.Equal(t, "#81c784", heatColour(100))
	assert.Equal(t, heatColour(100), heatColour(140))
}

func TestSummaryHTMLOrdersByMatchCount(t *testing.T) {
	html, err := SummaryHTML(sampleReport(t))
	require.NoError(t, err)
	dean := strings.Index(html, "<td>M Dean</td>")
	taylor := strings.Index(html, "<td>A Taylor</td>")
	require.True(t, dean > 0 && taylor > 0)
	assert.Less(t, dean, taylor)
	assert.Contains(t, html, "<td>50.0%</td>")
	assert.Contains(t, html, "<td>+5</td>")
}

func TestSummaryEscapesNames(t *testing.T) {
	tbl := refstats.NewTable([]refstats.Match{
		{HomeTeam: team, AwayTeam: "X", HomeGoals: 1, AwayGoals: 0, Season: "2020", Referee: "<b>Ref</b>"},
	})
	r, err := refstats.RunDefault(tbl, team)
	require.NoError(t, err)
	html, err := SummaryHTML(r)
	require.NoError(t, err)
	assert.NotContains(t, html, "<b>Ref</b>")
}

func TestSummaryMarkdown(t *testing.T) {
	md, err := SummaryMarkdown(sampleReport(t))
	require.NoError(t, err)
	assert.Contains(t, md, "Man United: matches by referee")
	assert.Contains(t, md, "| M Dean")
	assert.Contains(t, md, "Win rate")
	assert.NotContains(t, md, "<table")

	md, err = SummaryMarkdown(emptyReport(t))
	require.NoError(t, err)
	assert.Contains(t, md, NoDataMessage)
}

func TestWriteAll(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "out")
	paths, err := WriteAll(dir, sampleReport(t), DefaultOptions())
	require.NoError(t, err)
	assert.Len(t, paths, len(ChartNames)+1)
	for _, p := range paths {
		info, err := os.Stat(p)
		require.NoError(t, err)
		assert.Positive(t, info.Size())
	}
	assert.FileExists(t, filepath.Join(dir, "heatmap.svg"))
	assert.FileExists(t, filepath.Join(dir, "summary.md"))
}
