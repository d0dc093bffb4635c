package resources

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/richard-senior/refstats/pkg/config"
	"github.com/richard-senior/refstats/pkg/service"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const fixture = `home_team,away_team,home_goals,away_goals,Season,Referee
Man United,Chelsea,2,0,2019-2020,M Dean
Man United,Leeds,1,1,2020-2021,A Taylor
Arsenal,Liverpool,3,1,2020-2021,C Pawson
`

func newProvider(t *testing.T) *Provider {
	t.Helper()
	path := filepath.Join(t.TempDir(), "combined_seasons.csv")
	require.NoError(t, os.WriteFile(path, []byte(fixture), 0o644))
	cfg := config.DefaultConfig()
	cfg.Source = path
	return NewProvider(service.New(cfg, nil))
}

func TestGetResources(t *testing.T) {
	res := newProvider(t).GetResources()
	var uris []string
	for _, r := range res {
		uris = append(uris, r.URI)
	}
	assert.Equal(t, []string{
		"refstats://seasons",
		"refstats://referees",
		"refstats://summary",
		"refstats://charts/winrate-referee.svg",
		"refstats://charts/goaldiff-referee.svg",
		"refstats://charts/winrate-season.svg",
		"refstats://charts/heatmap.svg",
	}, uris)
}

func TestReadReferees(t *testing.T) {
	res, err := newProvider(t).Read(RefereesURI)
	require.NoError(t, err)
	require.Len(t, res.Contents, 1)
	assert.Equal(t, RefereesURI, res.Contents[0].URI)
	assert.JSONEq(t, `["A Taylor", "M Dean"]`, res.Contents[0].Text)
}

func TestReadSummaryAndCharts(t *testing.T) {
	p := newProvider(t)
	res, err := p.Read(SummaryURI)
	require.NoError(t, err)
	assert.Equal(t, "text/markdown", res.Contents[0].MimeType)
	assert.Contains(t, res.Contents[0].Text, "M Dean")
	assert.NotContains(t, res.Contents[0].Text, "C Pawson")

	res, err = p.Read(ChartURI("winrate-season"))
	require.NoError(t, err)
	assert.Contains(t, res.Contents[0].Text, "<svg")
}

func TestReadUnknown(t *testing.T) {
	p := newProvider(t)
	_, err := p.Read("refstats://nothing")
	assert.ErrorIs(t, err, ErrResourceNotFound)
	_, err = p.Read(ChartURI("pie"))
	assert.ErrorIs(t, err, ErrResourceNotFound)
}
