package refstats

// Report holds everything the dashboard shows for one selection
type Report struct {
	Team      string         `json:"team"`
	Selection Selection      `json:"selection"`
	Empty     bool           `json:"empty"`
	Matches   []DerivedMatch `json:"matches"`
	Referees  []RefereeStat  `json:"referees"`
	Seasons   []SeasonStat   `json:"seasons"`
	Matrix    *Matrix        `json:"matrix"`
}

/**
 * Run filters t down to team's selected matches and computes every view.
 * It is synchronous and does not touch t, so concurrent callers may share a table.
 */
func Run(t *Table, team string, sel Selection) (*Report, error) {
	f, err := FilterMatches(t, team, sel)
	if err != nil {
		return nil, err
	}
	return &Report{
		Team:      team,
		Selection: sel,
		Empty:     f.IsEmpty(),
		Matches:   f.Matches,
		Referees:  AggregateByReferee(f.Matches),
		Seasons:   AggregateBySeason(f.Matches),
		Matrix:    AggregateMatrix(f.Matches),
	}, nil
}

// RunDefault runs with DefaultSelection
func RunDefault(t *Table, team string) (*Report, error) {
	return Run(t, team, DefaultSelection(t, team))
}

// WinRateView is the referee stats ordered for the win-rate chart
func (r *Report) WinRateView() []RefereeStat {
	return SortByWinRate(r.Referees)
}

// GoalDifferentialView is the referee stats ordered for the goal-differential chart
func (r *Report) GoalDifferentialView() []RefereeStat {
	return SortByGoalDifferential(r.Referees)
}

// MatchCountView is the referee stats ordered for the summary table
func (r *Report) MatchCountView() []RefereeStat {
	return SortByMatchCount(r.Referees)
}
