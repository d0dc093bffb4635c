package dashboard

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/richard-senior/refstats/pkg/config"
	"github.com/richard-senior/refstats/pkg/refstats"
	"github.com/richard-senior/refstats/pkg/render"
	"github.com/richard-senior/refstats/pkg/service"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const fixture = `home_team,away_team,home_goals,away_goals,Season,Referee
Man United,Chelsea,2,0,2019-2020,M Dean
Spurs,Man United,1,0,2019-2020,M Dean
Man United,Leeds,1,1,2020-2021,A Taylor
Everton,Man United,0,4,2020-2021,M Dean
Arsenal,Liverpool,3,1,2020-2021,C Pawson
`

func newRouter(t *testing.T, csv string) (http.Handler, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "combined_seasons.csv")
	require.NoError(t, os.WriteFile(path, []byte(csv), 0o644))
	cfg := config.DefaultConfig()
	cfg.Source = path
	return NewHandler(service.New(cfg, nil)).SetupRoutes(), path
}

func do(h http.Handler, method, target string) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(method, target, nil))
	return rec
}

func TestReportDefaultSelection(t *testing.T) {
	h, _ := newRouter(t, fixture)
	rec := do(h, "GET", "/api/report")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

	var rep refstats.Report
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &rep))
	assert.Equal(t, "Man United", rep.Team)
	assert.Len(t, rep.Matches, 4)
	assert.Equal(t, []string{"A Taylor", "M Dean"}, rep.Selection.Referees)
	assert.NotContains(t, rep.Selection.Referees, "C Pawson")
}

func TestReportRepeatableParams(t *testing.T) {
	h, _ := newRouter(t, fixture)
	rec := do(h, "GET", "/api/report?season=2019-2020&season=2020-2021&referee=M+Dean")
	require.Equal(t, http.StatusOK, rec.Code)

	var rep refstats.Report
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &rep))
	assert.Equal(t, []string{"2019-2020", "2020-2021"}, rep.Selection.Seasons)
	assert.Len(t, rep.Matches, 3)
	require.Len(t, rep.Referees, 1)
	assert.Equal(t, 3, rep.Referees[0].Matches)
}

func TestReportMissingColumns(t *testing.T) {
	h, _ := newRouter(t, "home_team,away_team\nA,B\n")
	rec := do(h, "GET", "/api/report")
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.Contains(t, rec.Body.String(), "home_goals")

	assert.Equal(t, http.StatusUnprocessableEntity, do(h, "GET", "/").Code)
}

func TestCharts(t *testing.T) {
	h, _ := newRouter(t, fixture)
	for _, name := range render.ChartNames {
		rec := do(h, "GET", "/charts/"+name+".svg")
		require.Equal(t, http.StatusOK, rec.Code, name)
		assert.Equal(t, "image/svg+xml", rec.Header().Get("Content-Type"))
		assert.Contains(t, rec.Body.String(), "<svg")
	}

	rec := do(h, "GET", "/charts/heatmap.svg?season=1888-1889")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), render.NoDataMessage)

	assert.Equal(t, http.StatusNotFound, do(h, "GET", "/charts/pie.svg").Code)
}

func TestIndex(t *testing.T) {
	h, _ := newRouter(t, fixture)
	rec := do(h, "GET", "/?season=2019-2020")
	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()

	assert.Contains(t, body, `<option value="2019-2020" selected>`)
	assert.Contains(t, body, `<option value="2020-2021">`)
	assert.Contains(t, body, `<option value="M Dean" selected>`)
	assert.NotContains(t, body, "C Pawson")
	assert.Contains(t, body, "2 matches selected")
	assert.Contains(t, body, "/charts/heatmap.svg?season=2019-2020")
	assert.Contains(t, body, `<table class="summary">`)
	assert.NotContains(t, body, render.NoDataMessage)
}

func TestIndexEmptySelection(t *testing.T) {
	h, _ := newRouter(t, fixture)
	rec := do(h, "GET", "/?referee=Nobody")
	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, render.NoDataMessage)
	assert.Equal(t, 4, strings.Count(body, "referee=Nobody"))
}

func TestSubmittedFormWithNothingSelected(t *testing.T) {
	h, _ := newRouter(t, fixture)
	rec := do(h, "GET", "/api/report?filtered=1")
	require.Equal(t, http.StatusOK, rec.Code)
	var rep refstats.Report
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &rep))
	assert.True(t, rep.Empty)
	assert.Empty(t, rep.Matches)

	// a list left blank on the form still selects nothing
	rec = do(h, "GET", "/api/report?filtered=1&season=2019-2020")
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &rep))
	assert.True(t, rep.Empty)

	rec = do(h, "GET", "/?filtered=1")
	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, render.NoDataMessage)
	assert.NotContains(t, body, " selected>")
	assert.Contains(t, body, "/charts/heatmap.svg?filtered=1")

	rec = do(h, "GET", "/charts/heatmap.svg?filtered=1")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), render.NoDataMessage)
}

func TestReload(t *testing.T) {
	h, path := newRouter(t, fixture)
	require.Equal(t, http.StatusOK, do(h, "GET", "/api/report").Code)

	require.NoError(t, os.WriteFile(path, []byte(fixture+"Man United,Wolves,0,0,2021-2022,P Tierney\n"), 0o644))
	rec := do(h, "POST", "/api/reload")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"success","matches":6}`, rec.Body.String())

	assert.Equal(t, http.StatusMethodNotAllowed, do(h, "GET", "/api/reload").Code)
}
