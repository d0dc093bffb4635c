package refstats

import (
	"sort"
	"strconv"
	"strings"
)

// Canonical column names
const (
	ColHomeTeam  = "home_team"
	ColAwayTeam  = "away_team"
	ColHomeGoals = "home_goals"
	ColAwayGoals = "away_goals"
	ColSeason    = "Season"
	ColReferee   = "Referee"
)

// CanonicalColumns is the schema every source must provide, in this order
var CanonicalColumns = []string{ColHomeTeam, ColAwayTeam, ColHomeGoals, ColAwayGoals, ColSeason, ColReferee}

// Table is an immutable set of matches. Nothing in this package mutates one after construction.
type Table struct {
	rows []Match
}

// NewTable copies rows into a new table
func NewTable(rows []Match) *Table {
	cp := make([]Match, len(rows))
	copy(cp, rows)
	return &Table{rows: cp}
}

// Len returns the number of rows
func (t *Table) Len() int {
	if t == nil {
		return 0
	}
	return len(t.rows)
}

// Rows returns a copy of the rows
func (t *Table) Rows() []Match {
	if t == nil {
		return nil
	}
	cp := make([]Match, len(t.rows))
	copy(cp, t.rows)
	return cp
}

// Each calls fn for every row in order without copying the backing slice
func (t *Table) Each(fn func(i int, m Match)) {
	if t == nil {
		return
	}
	for i, m := range t.rows {
		fn(i, m)
	}
}

// Seasons returns the distinct seasons in ascending order
func (t *Table) Seasons() []string {
	return t.distinct(func(m Match) []string { return []string{m.Season} })
}

// Referees returns the distinct referees in ascending order
func (t *Table) Referees() []string {
	return t.distinct(func(m Match) []string { return []string{m.Referee} })
}

// RefereesFor returns the referees that officiated team's matches, ascending
func (t *Table) RefereesFor(team string) []string {
	return t.distinct(func(m Match) []string {
		if m.Involves(team) {
			return []string{m.Referee}
		}
		return nil
	})
}

// Teams returns every team appearing on either side, ascending
func (t *Table) Teams() []string {
	return t.distinct(func(m Match) []string { return []string{m.HomeTeam, m.AwayTeam} })
}

func (t *Table) distinct(keys func(Match) []string) []string {
	seen := make(map[string]bool)
	ret := []string{}
	t.Each(func(_ int, m Match) {
		for _, k := range keys(m) {
			if !seen[k] {
				seen[k] = true
				ret = append(ret, k)
			}
		}
	})
	sort.Strings(ret)
	return ret
}

// CheckColumns returns a *MissingColumnsError naming every canonical column absent from header
func CheckColumns(header []string) error {
	present := make(map[string]bool, len(header))
	for _, h := range header {
		present[h] = true
	}
	var missing []string
	for _, c := range CanonicalColumns {
		if !present[c] {
			missing = append(missing, c)
		}
	}
	if len(missing) > 0 {
		return &MissingColumnsError{Missing: missing}
	}
	return nil
}

/**
 * NewTableFromRecords builds a table from a header row and string records
 * that already use the canonical column names. Extra columns are ignored.
 * No partial table is returned on failure.
 */
func NewTableFromRecords(header []string, records [][]string) (*Table, error) {
	return NewTableFromSourceRows(header, records, nil)
}

// NewTableFromSourceRows is NewTableFromRecords for records that were
// filtered out of a larger source. sourceRows[i] is the 1-based data row
// records[i] came from and is what errors report. A nil sourceRows numbers
// records in order.
func NewTableFromSourceRows(header []string, records [][]string, sourceRows []int) (*Table, error) {
	if err := CheckColumns(header); err != nil {
		return nil, err
	}
	idx := make(map[string]int, len(header))
	for i, h := range header {
		if _, dup := idx[h]; !dup {
			idx[h] = i
		}
	}

	rows := make([]Match, 0, len(records))
	for i, rec := range records {
		r := i
		if i < len(sourceRows) {
			r = sourceRows[i] - 1
		}
		get := func(col string) string {
			i := idx[col]
			if i >= len(rec) {
				return ""
			}
			return strings.TrimSpace(rec[i])
		}
		m := Match{
			HomeTeam: get(ColHomeTeam),
			AwayTeam: get(ColAwayTeam),
			Season:   get(ColSeason),
			Referee:  get(ColReferee),
		}
		for _, c := range []struct {
			name string
			val  string
		}{{ColHomeTeam, m.HomeTeam}, {ColAwayTeam, m.AwayTeam}, {ColSeason, m.Season}, {ColReferee, m.Referee}} {
			if c.val == "" {
				return nil, &InvalidRecordError{Row: r + 1, Column: c.name, Reason: "empty value"}
			}
		}
		var err error
		if m.HomeGoals, err = parseGoals(r+1, ColHomeGoals, get(ColHomeGoals)); err != nil {
			return nil, err
		}
		if m.AwayGoals, err = parseGoals(r+1, ColAwayGoals, get(ColAwayGoals)); err != nil {
			return nil, err
		}
		rows = append(rows, m)
	}
	return &Table{rows: rows}, nil
}

func parseGoals(row int, col, val string) (int, error) {
	// some exports write goals as floats e.g. "2.0"
	v := strings.TrimSuffix(val, ".0")
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, &InvalidRecordError{Row: row, Column: col, Value: val, Reason: "not an integer"}
	}
	if n < 0 {
		return 0, &InvalidRecordError{Row: row, Column: col, Value: val, Reason: "negative goals"}
	}
	return n, nil
}
