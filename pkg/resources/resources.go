package resources

import (
	"encoding/json"
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/richard-senior/refstats/internal/logger"
	"github.com/richard-senior/refstats/pkg/protocol"
	"github.com/richard-senior/refstats/pkg/render"
	"github.com/richard-senior/refstats/pkg/service"
)

const (
	Scheme      = "refstats://"
	SeasonsURI  = Scheme + "seasons"
	RefereesURI = Scheme + "referees"
	SummaryURI  = Scheme + "summary"
	chartPrefix = Scheme + "charts/"
)

// ErrResourceNotFound is returned by Read for an unknown uri
var ErrResourceNotFound = errors.New("resource not found")

// Provider serves the tracked team's default report as MCP resources
type Provider struct {
	svc *service.Service
}

func NewProvider(svc *service.Service) *Provider {
	return &Provider{svc: svc}
}

// ChartURI is the resource uri of a named chart
func ChartURI(name string) string {
	return chartPrefix + name + ".svg"
}

// GetResources returns every resource the provider can read
func (p *Provider) GetResources() []protocol.Resource {
	ret := []protocol.Resource{
		{
			URI:         SeasonsURI,
			Name:        "seasons",
			Description: "Every season in the match data",
			MimeType:    "application/json",
		},
		{
			URI:         RefereesURI,
			Name:        "referees",
			Description: "Referees who took charge of the tracked team",
			MimeType:    "application/json",
		},
		{
			URI:         SummaryURI,
			Name:        "summary",
			Description: "Matches, results and win rate by referee for the tracked team",
			MimeType:    "text/markdown",
		},
	}
	for _, name := range render.ChartNames {
		ret = append(ret, protocol.Resource{
			URI:      ChartURI(name),
			Name:     name,
			MimeType: "image/svg+xml",
		})
	}
	return ret
}

// Read returns the contents of the resource at uri
func (p *Provider) Read(uri string) (*protocol.ResourceResult, error) {
	logger.Info("Handling resource read for:", uri)
	text, mime, err := p.read(uri)
	if err != nil {
		return nil, err
	}
	return &protocol.ResourceResult{Contents: []protocol.ResourceContents{{URI: uri, MimeType: mime, Text: text}}}, nil
}

func (p *Provider) read(uri string) (string, string, error) {
	switch uri {
	case SeasonsURI:
		t, err := p.svc.Table()
		if err != nil {
			return "", "", err
		}
		return asJSON(t.Seasons())
	case RefereesURI:
		t, err := p.svc.Table()
		if err != nil {
			return "", "", err
		}
		team := service.ResolveTeam(t, "", p.svc.Config().TrackedTeam)
		return asJSON(t.RefereesFor(team))
	case SummaryURI:
		r, err := p.svc.Report(service.Query{})
		if err != nil {
			return "", "", err
		}
		md, err := render.SummaryMarkdown(r)
		return md, "text/markdown", err
	}

	if name, ok := strings.CutPrefix(uri, chartPrefix); ok {
		name = strings.TrimSuffix(name, ".svg")
		if !slices.Contains(render.ChartNames, name) {
			return "", "", fmt.Errorf("%w: %s", ErrResourceNotFound, uri)
		}
		r, err := p.svc.Report(service.Query{})
		if err != nil {
			return "", "", err
		}
		data, err := render.Chart(name, r, p.svc.ChartOptions())
		return string(data), "image/svg+xml", err
	}
	return "", "", fmt.Errorf("%w: %s", ErrResourceNotFound, uri)
}

func asJSON(v any) (string, string, error) {
	b, err := json.MarshalIndent(v, "", " ")
	if err != nil {
		return "", "", err
	}
	return string(b), "application/json", nil
}
