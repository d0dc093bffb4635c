package refstats

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const tracked = "Tracked"

func exampleTable() *Table {
	return NewTable([]Match{
		{HomeTeam: "TeamX", AwayTeam: tracked, HomeGoals: 1, AwayGoals: 3, Season: "2020", Referee: "A"},
		{HomeTeam: tracked, AwayTeam: "TeamY", HomeGoals: 2, AwayGoals: 2, Season: "2020", Referee: "A"},
	})
}

func mixedTable() *Table {
	return NewTable([]Match{
		{HomeTeam: tracked, AwayTeam: "T1", HomeGoals: 2, AwayGoals: 0, Season: "2019-2020", Referee: "M Dean"},
		{HomeTeam: "T2", AwayTeam: tracked, HomeGoals: 1, AwayGoals: 0, Season: "2019-2020", Referee: "M Dean"},
		{HomeTeam: tracked, AwayTeam: "T3", HomeGoals: 1, AwayGoals: 1, Season: "2020-2021", Referee: "A Taylor"},
		{HomeTeam: "T4", AwayTeam: tracked, HomeGoals: 0, AwayGoals: 4, Season: "2020-2021", Referee: "C Pawson"},
		{HomeTeam: tracked, AwayTeam: "T5", HomeGoals: 3, AwayGoals: 1, Season: "2021-2022", Referee: "A Taylor"},
		{HomeTeam: "T6", AwayTeam: "T7", HomeGoals: 5, AwayGoals: 0, Season: "2021-2022", Referee: "K Friend"},
	})
}

func TestClassify(t *testing.T) {
	m := Match{HomeTeam: "TeamX", AwayTeam: tracked, HomeGoals: 1, AwayGoals: 3, Season: "2020", Referee: "A"}
	out, err := Classify(m, tracked)
	require.NoError(t, err)
	assert.Equal(t, Win, out)

	out, err = Classify(m, "TeamX")
	require.NoError(t, err)
	assert.Equal(t, Loss, out)

	draw := Match{HomeTeam: tracked, AwayTeam: "TeamY", HomeGoals: 2, AwayGoals: 2}
	out, err = Classify(draw, tracked)
	require.NoError(t, err)
	assert.Equal(t, Draw, out)
}

func TestClassifyAmbiguousSide(t *testing.T) {
	m := Match{HomeTeam: "TeamX", AwayTeam: "TeamY", HomeGoals: 1, AwayGoals: 0, Season: "2020", Referee: "A"}
	_, err := Classify(m, tracked)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrAmbiguousTeamSide))

	var ate *AmbiguousTeamSideError
	require.True(t, errors.As(err, &ate))
	assert.Equal(t, tracked, ate.Team)
	assert.Equal(t, m, ate.Match)

	_, err = GoalDifferential(m, tracked)
	assert.ErrorIs(t, err, ErrAmbiguousTeamSide)

	_, err = DeriveAll([]Match{m}, tracked)
	assert.ErrorIs(t, err, ErrAmbiguousTeamSide)
}

func TestDeriveSides(t *testing.T) {
	m := Match{HomeTeam: "TeamX", AwayTeam: tracked, HomeGoals: 1, AwayGoals: 3, Season: "2020", Referee: "A"}
	away, err := Derive(m, tracked)
	require.NoError(t, err)
	assert.False(t, away.Home)
	assert.Equal(t, 2, away.GoalDifferential)
	assert.Equal(t, Win, away.Outcome)

	home, err := Derive(m, "TeamX")
	require.NoError(t, err)
	assert.True(t, home.Home)
	assert.Equal(t, -2, home.GoalDifferential)
	assert.Equal(t, Loss, home.Outcome)

	for _, d := range []DerivedMatch{away, home} {
		gd, err := GoalDifferential(m, d.Team)
		require.NoError(t, err)
		assert.Equal(t, gd, d.GoalDifferential)
		out, err := Classify(m, d.Team)
		require.NoError(t, err)
		assert.Equal(t, out, d.Outcome)
	}

	_, err = Derive(m, "TeamZ")
	assert.ErrorIs(t, err, ErrAmbiguousTeamSide)
}

func TestOutcomeAgreesWithGoalDifferential(t *testing.T) {
	mixedTable().Each(func(_ int, m Match) {
		for _, team := range []string{m.HomeTeam, m.AwayTeam} {
			d, err := Derive(m, team)
			require.NoError(t, err)
			assert.True(t, d.Outcome.Valid())
			switch d.Outcome {
			case Win:
				assert.Greater(t, d.TeamGoals(), d.OpponentGoals())
				assert.Positive(t, d.GoalDifferential)
			case Loss:
				assert.Negative(t, d.GoalDifferential)
			case Draw:
				assert.Zero(t, d.GoalDifferential)
			}
		}
	})
}

func TestExampleScenario(t *testing.T) {
	tbl := exampleTable()
	r, err := Run(tbl, tracked, Selection{Seasons: []string{"2020"}, Referees: []string{"A"}})
	require.NoError(t, err)
	require.False(t, r.Empty)
	require.Len(t, r.Matches, 2)

	assert.Equal(t, Win, r.Matches[0].Outcome)
	assert.Equal(t, Draw, r.Matches[1].Outcome)
	assert.Equal(t, 2, r.Matches[0].GoalDifferential)
	assert.Equal(t, 0, r.Matches[1].GoalDifferential)

	require.Len(t, r.Referees, 1)
	assert.Equal(t, "A", r.Referees[0].Referee)
	assert.InDelta(t, 50.0, r.Referees[0].WinRate, 1e-9)
	assert.InDelta(t, 1.0, r.Referees[0].MeanGoalDifferential, 1e-9)

	require.Len(t, r.Seasons, 1)
	assert.InDelta(t, 50.0, r.Seasons[0].WinRate, 1e-9)

	assert.InDelta(t, 50.0, r.Matrix.At("A", "2020"), 1e-9)
}

func TestFilterSelection(t *testing.T) {
	tbl := mixedTable()
	f, err := FilterMatches(tbl, tracked, Selection{
		Seasons:  []string{"2020-2021", "2021-2022"},
		Referees: []string{"A Taylor", "K Friend"},
	})
	require.NoError(t, err)
	require.Len(t, f.Matches, 2)
	for _, m := range f.Matches {
		assert.True(t, m.Involves(tracked))
		assert.Equal(t, "A Taylor", m.Referee)
	}
	// source order preserved
	assert.Equal(t, "2020-2021", f.Matches[0].Season)
	assert.Equal(t, "2021-2022", f.Matches[1].Season)
}

func TestEmptySelectionIsNotAnError(t *testing.T) {
	tbl := mixedTable()

	r, err := Run(tbl, tracked, Selection{})
	require.NoError(t, err)
	assert.True(t, r.Empty)
	assert.Empty(t, r.Referees)
	assert.Empty(t, r.Seasons)
	assert.Zero(t, r.Matrix.Size())

	r, err = Run(tbl, tracked, Selection{Seasons: []string{"1999"}, Referees: []string{"M Dean"}})
	require.NoError(t, err)
	assert.True(t, r.Empty)

	r, err = Run(tbl, "Nobody FC", DefaultSelection(tbl, "Nobody FC"))
	require.NoError(t, err)
	assert.True(t, r.Empty)
}

func TestDefaultSelection(t *testing.T) {
	sel := DefaultSelection(mixedTable(), tracked)
	assert.Equal(t, []string{"2019-2020", "2020-2021", "2021-2022"}, sel.Seasons)
	// K Friend only refereed a match without the tracked team
	assert.Equal(t, []string{"A Taylor", "C Pawson", "M Dean"}, sel.Referees)
}

func TestRefereeAggregates(t *testing.T) {
	r, err := RunDefault(mixedTable(), tracked)
	require.NoError(t, err)

	total := 0
	for _, s := range r.Referees {
		total += s.Matches
		assert.Equal(t, s.Matches, s.Wins+s.Draws+s.Losses)
	}
	assert.Equal(t, len(r.Matches), total)

	byName := map[string]RefereeStat{}
	for _, s := range r.Referees {
		byName[s.Referee] = s
	}
	assert.InDelta(t, 50.0, byName["M Dean"].WinRate, 1e-9)
	assert.InDelta(t, 0.5, byName["M Dean"].MeanGoalDifferential, 1e-9)
	assert.InDelta(t, 50.0, byName["A Taylor"].WinRate, 1e-9)
	assert.InDelta(t, 1.0, byName["A Taylor"].MeanGoalDifferential, 1e-9)
	assert.InDelta(t, 100.0, byName["C Pawson"].WinRate, 1e-9)
}

func TestSortOrders(t *testing.T) {
	stats := []RefereeStat{
		{Referee: "C", Matches: 2, WinRate: 50, MeanGoalDifferential: 1},
		{Referee: "A", Matches: 4, WinRate: 50, MeanGoalDifferential: -1},
		{Referee: "B", Matches: 4, WinRate: 75, MeanGoalDifferential: 1},
	}
	names := func(ss []RefereeStat) []string {
		var ret []string
		for _, s := range ss {
			ret = append(ret, s.Referee)
		}
		return ret
	}
	assert.Equal(t, []string{"B", "A", "C"}, names(SortByWinRate(stats)))
	assert.Equal(t, []string{"A", "B", "C"}, names(SortByGoalDifferential(stats)))
	assert.Equal(t, []string{"A", "B", "C"}, names(SortByMatchCount(stats)))
	// input untouched
	assert.Equal(t, []string{"C", "A", "B"}, names(stats))
}

func TestSeasonAggregatesAscending(t *testing.T) {
	r, err := RunDefault(mixedTable(), tracked)
	require.NoError(t, err)
	require.Len(t, r.Seasons, 3)
	assert.Equal(t, "2019-2020", r.Seasons[0].Season)
	assert.Equal(t, "2020-2021", r.Seasons[1].Season)
	assert.Equal(t, "2021-2022", r.Seasons[2].Season)
	assert.InDelta(t, 50.0, r.Seasons[1].WinRate, 1e-9)
	assert.InDelta(t, 100.0, r.Seasons[2].WinRate, 1e-9)
}

func TestMatrixIsDenseAndZeroFilled(t *testing.T) {
	r, err := RunDefault(mixedTable(), tracked)
	require.NoError(t, err)
	mx := r.Matrix
	assert.Equal(t, []string{"A Taylor", "C Pawson", "M Dean"}, mx.Referees)
	assert.Equal(t, []string{"2019-2020", "2020-2021", "2021-2022"}, mx.Seasons)
	assert.Equal(t, 9, mx.Size())
	require.Len(t, mx.WinRate, 3)
	for i := range mx.WinRate {
		assert.Len(t, mx.WinRate[i], 3)
	}
	// never refereed together
	assert.Equal(t, 0.0, mx.At("C Pawson", "2019-2020"))
	assert.Equal(t, 0, mx.Counts[1][0])
	// a real 0% cell
	assert.Equal(t, 0.0, mx.At("A Taylor", "2020-2021"))
	assert.Equal(t, 1, mx.Counts[0][1])
	assert.Equal(t, 100.0, mx.At("A Taylor", "2021-2022"))
	assert.Equal(t, 0.0, mx.At("Unknown", "2021-2022"))
}

func TestAggregatesOfNothing(t *testing.T) {
	assert.NotNil(t, AggregateByReferee(nil))
	assert.Empty(t, AggregateByReferee(nil))
	assert.Empty(t, AggregateBySeason(nil))
	mx := AggregateMatrix(nil)
	assert.Empty(t, mx.Referees)
	assert.Empty(t, mx.Seasons)
}

func TestRunIsRepeatableAndDoesNotMutate(t *testing.T) {
	tbl := mixedTable()
	before := tbl.Rows()
	a, err := RunDefault(tbl, tracked)
	require.NoError(t, err)
	b, err := RunDefault(tbl, tracked)
	require.NoError(t, err)
	assert.Equal(t, a, b)
	assert.Equal(t, before, tbl.Rows())
}

func TestNewTableFromRecords(t *testing.T) {
	header := []string{"Referee", "home_team", "away_team", "home_goals", "away_goals", "Season", "extra"}
	tbl, err := NewTableFromRecords(header, [][]string{
		{"M Dean", "Man United", "Chelsea", "2", "1.0", "2019-2020", "x"},
	})
	require.NoError(t, err)
	require.Equal(t, 1, tbl.Len())
	assert.Equal(t, Match{HomeTeam: "Man United", AwayTeam: "Chelsea", HomeGoals: 2, AwayGoals: 1, Season: "2019-2020", Referee: "M Dean"}, tbl.Rows()[0])
}

func TestNewTableFromRecordsMissingColumns(t *testing.T) {
	_, err := NewTableFromRecords([]string{"home_team", "away_team", "away_goals"}, nil)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrMissingColumns)
	var mce *MissingColumnsError
	require.ErrorAs(t, err, &mce)
	assert.Equal(t, []string{"home_goals", "Season", "Referee"}, mce.Missing)
	assert.Contains(t, err.Error(), "home_goals, Season, Referee")
}

func TestNewTableFromRecordsBadValues(t *testing.T) {
	header := CanonicalColumns
	_, err := NewTableFromRecords(header, [][]string{{"A", "B", "two", "1", "2020", "R"}})
	assert.ErrorIs(t, err, ErrInvalidRecord)

	_, err = NewTableFromRecords(header, [][]string{{"A", "B", "-1", "1", "2020", "R"}})
	assert.ErrorIs(t, err, ErrInvalidRecord)

	_, err = NewTableFromRecords(header, [][]string{{"A", "B", "1", "1", "2020", " "}})
	var ire *InvalidRecordError
	require.ErrorAs(t, err, &ire)
	assert.Equal(t, 1, ire.Row)
	assert.Equal(t, ColReferee, ire.Column)
}

func TestNewTableFromSourceRows(t *testing.T) {
	records := [][]string{
		{"A", "B", "1", "1", "2020", "R"},
		{"A", "B", "two", "1", "2020", "R"},
	}
	_, err := NewTableFromSourceRows(CanonicalColumns, records, []int{2, 7})
	var ire *InvalidRecordError
	require.ErrorAs(t, err, &ire)
	assert.Equal(t, 7, ire.Row)
	assert.Equal(t, ColHomeGoals, ire.Column)

	// without source rows the position in records is reported
	_, err = NewTableFromSourceRows(CanonicalColumns, records, nil)
	require.ErrorAs(t, err, &ire)
	assert.Equal(t, 2, ire.Row)
}

func TestTableCopiesInput(t *testing.T) {
	rows := []Match{{HomeTeam: "A", AwayTeam: "B", Season: "s", Referee: "r"}}
	tbl := NewTable(rows)
	rows[0].HomeTeam = "changed"
	assert.Equal(t, "A", tbl.Rows()[0].HomeTeam)
	assert.Equal(t, []string{"A", "B"}, tbl.Teams())
}
