package service

import (
	"fmt"
	"strings"

	"github.com/richard-senior/refstats/internal/logger"
	"github.com/richard-senior/refstats/pkg/config"
	"github.com/richard-senior/refstats/pkg/loader"
	"github.com/richard-senior/refstats/pkg/refstats"
	"github.com/richard-senior/refstats/pkg/render"
	"github.com/richard-senior/refstats/pkg/util"
)

// Query is a request for one report. Empty fields fall back to the
// configured team and the default selection.
type Query struct {
	Team     string   `json:"team,omitempty"`
	Seasons  []string `json:"seasons,omitempty"`
	Referees []string `json:"referees,omitempty"`
}

// Service answers report queries against the configured source.
// It is safe for concurrent use: each call runs its own pipeline pass over
// the shared immutable table held by the cache.
type Service struct {
	cfg   *config.Config
	cache *loader.Cache
	src   loader.Source
}

func New(cfg *config.Config, cache *loader.Cache) *Service {
	return NewWithSource(cfg, cache, cfg.NewSource())
}

// NewWithSource is New with an explicit source, mostly for tests
func NewWithSource(cfg *config.Config, cache *loader.Cache, src loader.Source) *Service {
	if cache == nil {
		cache = loader.NewCache()
	}
	return &Service{cfg: cfg, cache: cache, src: src}
}

func (s *Service) Config() *config.Config {
	return s.cfg
}

// Table returns the current table, loading it on first use or when the source changed
func (s *Service) Table() (*refstats.Table, error) {
	return s.cache.Get(s.src)
}

// Reload forces the source to be read again
func (s *Service) Reload() (*refstats.Table, error) {
	t, err := s.cache.Reload(s.src)
	if err != nil {
		return nil, err
	}
	logger.Info("Reloaded matches", t.Len())
	return t, nil
}

// ChartOptions sizes charts from config
func (s *Service) ChartOptions() render.Options {
	return render.Options{Width: s.cfg.ChartWidth, Height: s.cfg.ChartHeight}
}

// Report resolves q against the table and runs the pipeline
func (s *Service) Report(q Query) (*refstats.Report, error) {
	t, err := s.Table()
	if err != nil {
		return nil, err
	}
	team := ResolveTeam(t, q.Team, s.cfg.TrackedTeam)
	sel := ResolveSelection(t, team, q.Seasons, q.Referees)
	r, err := refstats.Run(t, team, sel)
	if err != nil {
		return nil, fmt.Errorf("failed to build report for %s: %w", team, err)
	}
	if r.Empty {
		logger.Info("No matches for selection", team)
	}
	return r, nil
}

// ResolveTeam maps a user supplied name onto a team in t, falling back to
// fallback when name is blank and to the name itself when nothing matches
func ResolveTeam(t *refstats.Table, name, fallback string) string {
	name = strings.TrimSpace(name)
	if name == "" {
		name = fallback
	}
	resolved, ok := util.ResolveName(name, t.Teams())
	if !ok {
		logger.Warn("Team not found in data", name)
		return name
	}
	if resolved != name {
		logger.Debug("Resolved team", name, resolved)
	}
	return resolved
}

/**
 * ResolveSelection builds the season and referee sets for team.
 * A nil list selects everything the default selection would while an
 * empty non-nil list selects nothing. Seasons are
 * matched exactly or after normalisation, referees exactly or fuzzily.
 * Values that match nothing are kept so they simply select no rows.
 */
func ResolveSelection(t *refstats.Table, team string, seasons, referees []string) refstats.Selection {
	sel := refstats.DefaultSelection(t, team)
	if seasons != nil {
		known := t.Seasons()
		sel.Seasons = resolveAll(seasons, func(v string) string {
			for _, k := range known {
				if k == v {
					return k
				}
				if same, err := util.IsSameSeason(k, v); err == nil && same {
					return k
				}
			}
			return v
		})
	}
	if referees != nil {
		known := t.Referees()
		sel.Referees = resolveAll(referees, func(v string) string {
			if r, ok := util.ResolveName(v, known); ok {
				return r
			}
			return v
		})
	}
	return sel
}

func resolveAll(vals []string, resolve func(string) string) []string {
	seen := map[string]bool{}
	ret := []string{}
	for _, v := range vals {
		v = strings.TrimSpace(v)
		if v == "" {
			continue
		}
		r := resolve(v)
		if !seen[r] {
			seen[r] = true
			ret = append(ret, r)
		}
	}
	return ret
}
