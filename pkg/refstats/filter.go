package refstats

import "fmt"

// Selection is the set of seasons and referees a user has ticked.
// An empty set selects nothing.
type Selection struct {
	Seasons  []string `json:"seasons"`
	Referees []string `json:"referees"`
}

// DefaultSelection selects every season in the table and every referee
// that officiated one of team's matches
func DefaultSelection(t *Table, team string) Selection {
	return Selection{
		Seasons:  t.Seasons(),
		Referees: t.RefereesFor(team),
	}
}

// Filtered is the result of a filter pass
type Filtered struct {
	Team    string         `json:"team"`
	Matches []DerivedMatch `json:"matches"`
}

// IsEmpty reports the empty-selection condition. It is not an error.
func (f *Filtered) IsEmpty() bool {
	return f == nil || len(f.Matches) == 0
}

func toSet(vals []string) map[string]bool {
	ret := make(map[string]bool, len(vals))
	for _, v := range vals {
		ret[v] = true
	}
	return ret
}

// FilterMatches keeps the rows where team played, the season is selected
// and the referee is selected, in source order, and derives each of them
func FilterMatches(t *Table, team string, sel Selection) (*Filtered, error) {
	seasons := toSet(sel.Seasons)
	referees := toSet(sel.Referees)

	ret := &Filtered{Team: team, Matches: []DerivedMatch{}}
	var derr error
	t.Each(func(i int, m Match) {
		if derr != nil || !m.Involves(team) || !seasons[m.Season] || !referees[m.Referee] {
			return
		}
		d, err := Derive(m, team)
		if err != nil {
			derr = fmt.Errorf("row %d: %w", i+1, err)
			return
		}
		ret.Matches = append(ret.Matches, d)
	})
	if derr != nil {
		return nil, derr
	}
	return ret, nil
}
