package store

import (
	"fmt"
	"strings"

	"github.com/richard-senior/refstats/internal/logger"
	"github.com/richard-senior/refstats/pkg/refstats"
)

// Compile-time check to ensure MatchRecord implements Persistable interface
var _ Persistable = (*MatchRecord)(nil)

// MatchRecord is the persisted form of a refstats.Match
type MatchRecord struct {
	ID        string `json:"id" column:"id" dbtype:"TEXT" primary:"true"`
	HomeTeam  string `json:"homeTeam" column:"home_team" dbtype:"TEXT NOT NULL" index:"true"`
	AwayTeam  string `json:"awayTeam" column:"away_team" dbtype:"TEXT NOT NULL" index:"true"`
	HomeGoals int    `json:"homeGoals" column:"home_goals" dbtype:"INTEGER NOT NULL"`
	AwayGoals int    `json:"awayGoals" column:"away_goals" dbtype:"INTEGER NOT NULL"`
	Season    string `json:"season" column:"season" dbtype:"TEXT NOT NULL" index:"true"`
	Referee   string `json:"referee" column:"referee" dbtype:"TEXT NOT NULL" index:"true"`
}

// NewMatchRecord wraps m. seq distinguishes repeat fixtures between the same sides in a season.
func NewMatchRecord(m refstats.Match, seq int) *MatchRecord {
	return &MatchRecord{
		ID:        MatchID(m, seq),
		HomeTeam:  m.HomeTeam,
		AwayTeam:  m.AwayTeam,
		HomeGoals: m.HomeGoals,
		AwayGoals: m.AwayGoals,
		Season:    m.Season,
		Referee:   m.Referee,
	}
}

// MatchID is season|home|away|seq
func MatchID(m refstats.Match, seq int) string {
	return strings.Join([]string{m.Season, m.HomeTeam, m.AwayTeam, fmt.Sprint(seq)}, "|")
}

// Match converts back to the domain type
func (r *MatchRecord) Match() refstats.Match {
	return refstats.Match{
		HomeTeam:  r.HomeTeam,
		AwayTeam:  r.AwayTeam,
		HomeGoals: r.HomeGoals,
		AwayGoals: r.AwayGoals,
		Season:    r.Season,
		Referee:   r.Referee,
	}
}

/////////////////////////////////////////////////////////////////////////
////// Persistable Interface Implementation
/////////////////////////////////////////////////////////////////////////

// GetPrimaryKey returns the primary key as a map
func (r *MatchRecord) GetPrimaryKey() map[string]any {
	return map[string]any{"id": r.ID}
}

// SetPrimaryKey sets the primary key from a map
func (r *MatchRecord) SetPrimaryKey(pk map[string]any) error {
	id, ok := pk["id"]
	if !ok {
		return fmt.Errorf("primary key 'id' not found")
	}
	idStr, ok := id.(string)
	if !ok {
		return fmt.Errorf("primary key 'id' must be a string")
	}
	r.ID = idStr
	return nil
}

// GetTableName returns the table name for matches
func (r *MatchRecord) GetTableName() string {
	return "matches"
}

// BeforeSave rejects records the dashboard could never load back
func (r *MatchRecord) BeforeSave() error {
	if r.ID == "" {
		return fmt.Errorf("match has no id")
	}
	if r.HomeGoals < 0 || r.AwayGoals < 0 {
		return fmt.Errorf("match %s has negative goals", r.ID)
	}
	return nil
}

func (r *MatchRecord) AfterSave() error {
	return nil
}

/////////////////////////////////////////////////////////////////////////
////// Table helpers
/////////////////////////////////////////////////////////////////////////

// SaveMatches upserts every row of t in one transaction and returns how many were written
func (s *Store) SaveMatches(t *refstats.Table) (int, error) {
	seen := make(map[string]int)
	var objs []Persistable
	t.Each(func(_ int, m refstats.Match) {
		key := MatchID(m, 0)
		objs = append(objs, NewMatchRecord(m, seen[key]))
		seen[key]++
	})
	if err := s.BulkSave(objs); err != nil {
		return 0, fmt.Errorf("failed to save matches: %w", err)
	}
	logger.Info("Saved matches", len(objs))
	return len(objs), nil
}

// LoadTable reads every stored match, in the order first imported
func (s *Store) LoadTable() (*refstats.Table, error) {
	return s.loadWhere("1 = 1 ORDER BY rowid")
}

// LoadSeason reads the stored matches for one season
func (s *Store) LoadSeason(season string) (*refstats.Table, error) {
	return s.loadWhere("season = ? ORDER BY rowid", season)
}

func (s *Store) loadWhere(where string, args ...any) (*refstats.Table, error) {
	results, err := s.FindWhere(&MatchRecord{}, where, args...)
	if err != nil {
		return nil, err
	}
	rows := make([]refstats.Match, 0, len(results))
	for _, r := range results {
		rec, ok := r.(*MatchRecord)
		if !ok {
			return nil, fmt.Errorf("unexpected record type %T", r)
		}
		rows = append(rows, rec.Match())
	}
	return refstats.NewTable(rows), nil
}
