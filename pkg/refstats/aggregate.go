package refstats

import "sort"

// ////////////////////////////////////////////////////////////////////////
// ////// Referee
// ////////////////////////////////////////////////////////////////////////

// RefereeStat summarises the tracked team's matches under one referee
type RefereeStat struct {
	Referee              string  `json:"referee"`
	Matches              int     `json:"matches"`
	Wins                 int     `json:"wins"`
	Draws                int     `json:"draws"`
	Losses               int     `json:"losses"`
	WinRate              float64 `json:"winRate"`
	GoalDifferential     int     `json:"goalDifferential"`
	MeanGoalDifferential float64 `json:"meanGoalDifferential"`
}

type tally struct {
	n, w, d, l, gd int
}

func (t *tally) add(m DerivedMatch) {
	t.n++
	t.gd += m.GoalDifferential
	switch m.Outcome {
	case Win:
		t.w++
	case Draw:
		t.d++
	case Loss:
		t.l++
	}
}

func (t *tally) winRate() float64 {
	if t.n == 0 {
		return 0
	}
	return 100 * float64(t.w) / float64(t.n)
}

func (t *tally) meanGD() float64 {
	if t.n == 0 {
		return 0
	}
	return float64(t.gd) / float64(t.n)
}

func group(ms []DerivedMatch, key func(DerivedMatch) string) ([]string, map[string]*tally) {
	groups := make(map[string]*tally)
	keys := []string{}
	for _, m := range ms {
		k := key(m)
		t, ok := groups[k]
		if !ok {
			t = &tally{}
			groups[k] = t
			keys = append(keys, k)
		}
		t.add(m)
	}
	sort.Strings(keys)
	return keys, groups
}

// AggregateByReferee groups ms by referee, ordered by referee name
func AggregateByReferee(ms []DerivedMatch) []RefereeStat {
	keys, groups := group(ms, func(m DerivedMatch) string { return m.Referee })
	ret := make([]RefereeStat, 0, len(keys))
	for _, k := range keys {
		t := groups[k]
		ret = append(ret, RefereeStat{
			Referee:              k,
			Matches:              t.n,
			Wins:                 t.w,
			Draws:                t.d,
			Losses:               t.l,
			WinRate:              t.winRate(),
			GoalDifferential:     t.gd,
			MeanGoalDifferential: t.meanGD(),
		})
	}
	return ret
}

func sortReferees(stats []RefereeStat, less func(a, b RefereeStat) bool) []RefereeStat {
	ret := make([]RefereeStat, len(stats))
	copy(ret, stats)
	sort.SliceStable(ret, func(i, j int) bool {
		if less(ret[i], ret[j]) {
			return true
		}
		if less(ret[j], ret[i]) {
			return false
		}
		return ret[i].Referee < ret[j].Referee
	})
	return ret
}

// SortByWinRate returns a copy ordered by win rate descending, then referee ascending
func SortByWinRate(stats []RefereeStat) []RefereeStat {
	return sortReferees(stats, func(a, b RefereeStat) bool { return a.WinRate > b.WinRate })
}

// SortByGoalDifferential returns a copy ordered by mean goal differential ascending, then referee ascending
func SortByGoalDifferential(stats []RefereeStat) []RefereeStat {
	return sortReferees(stats, func(a, b RefereeStat) bool { return a.MeanGoalDifferential < b.MeanGoalDifferential })
}

// SortByMatchCount returns a copy ordered by matches descending, then referee ascending
func SortByMatchCount(stats []RefereeStat) []RefereeStat {
	return sortReferees(stats, func(a, b RefereeStat) bool { return a.Matches > b.Matches })
}

// ////////////////////////////////////////////////////////////////////////
// ////// Season
// ////////////////////////////////////////////////////////////////////////

// SeasonStat summarises the tracked team's matches in one season
type SeasonStat struct {
	Season  string  `json:"season"`
	Matches int     `json:"matches"`
	Wins    int     `json:"wins"`
	Draws   int     `json:"draws"`
	Losses  int     `json:"losses"`
	WinRate float64 `json:"winRate"`
}

// AggregateBySeason groups ms by season, ordered ascending by season string
func AggregateBySeason(ms []DerivedMatch) []SeasonStat {
	keys, groups := group(ms, func(m DerivedMatch) string { return m.Season })
	ret := make([]SeasonStat, 0, len(keys))
	for _, k := range keys {
		t := groups[k]
		ret = append(ret, SeasonStat{
			Season:  k,
			Matches: t.n,
			Wins:    t.w,
			Draws:   t.d,
			Losses:  t.l,
			WinRate: t.winRate(),
		})
	}
	return ret
}

// ////////////////////////////////////////////////////////////////////////
// ////// Referee x Season
// ////////////////////////////////////////////////////////////////////////

// Matrix is a dense referee by season win-rate grid.
// Cells with no matches hold 0, the same as a 0% win rate; Counts tells them apart.
type Matrix struct {
	Referees []string    `json:"referees"`
	Seasons  []string    `json:"seasons"`
	WinRate  [][]float64 `json:"winRate"`
	Counts   [][]int     `json:"counts"`
}

// AggregateMatrix builds the referee x season grid for ms
func AggregateMatrix(ms []DerivedMatch) *Matrix {
	refs, _ := group(ms, func(m DerivedMatch) string { return m.Referee })
	seasons, _ := group(ms, func(m DerivedMatch) string { return m.Season })
	_, cells := group(ms, func(m DerivedMatch) string { return m.Referee + "\x00" + m.Season })

	ret := &Matrix{
		Referees: refs,
		Seasons:  seasons,
		WinRate:  make([][]float64, len(refs)),
		Counts:   make([][]int, len(refs)),
	}
	for i, r := range refs {
		ret.WinRate[i] = make([]float64, len(seasons))
		ret.Counts[i] = make([]int, len(seasons))
		for j, s := range seasons {
			if t, ok := cells[r+"\x00"+s]; ok {
				ret.WinRate[i][j] = t.winRate()
				ret.Counts[i][j] = t.n
			}
		}
	}
	return ret
}

// At returns the win rate for referee and season, 0 when either is unknown
func (mx *Matrix) At(referee, season string) float64 {
	i := sort.SearchStrings(mx.Referees, referee)
	j := sort.SearchStrings(mx.Seasons, season)
	if i >= len(mx.Referees) || mx.Referees[i] != referee || j >= len(mx.Seasons) || mx.Seasons[j] != season {
		return 0
	}
	return mx.WinRate[i][j]
}

// Size returns the number of cells
func (mx *Matrix) Size() int {
	return len(mx.Referees) * len(mx.Seasons)
}
