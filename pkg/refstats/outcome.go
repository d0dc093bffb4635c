package refstats

import (
	"fmt"
	"strconv"
)

// Outcome is the result of a match from the tracked team's point of view
type Outcome string

const (
	Win  Outcome = "W"
	Draw Outcome = "D"
	Loss Outcome = "L"
)

// Valid reports whether o is one of Win, Draw or Loss
func (o Outcome) Valid() bool {
	return o == Win || o == Draw || o == Loss
}

// Points returns league points for the outcome (3/1/0)
func (o Outcome) Points() int {
	switch o {
	case Win:
		return 3
	case Draw:
		return 1
	}
	return 0
}

func itoa(i int) string {
	return strconv.Itoa(i)
}

// side works out which goals belong to team. home is only meaningful when err is nil.
func side(m Match, team string) (home bool, err error) {
	switch team {
	case m.HomeTeam:
		return true, nil
	case m.AwayTeam:
		return false, nil
	}
	return false, &AmbiguousTeamSideError{Team: team, Match: m}
}

/**
 * Classify labels m as a Win, Draw or Loss for team.
 * When team appears on neither side an *AmbiguousTeamSideError is returned
 * and the outcome is empty.
 */
func Classify(m Match, team string) (Outcome, error) {
	gd, err := GoalDifferential(m, team)
	if err != nil {
		return "", err
	}
	return outcomeOf(gd), nil
}

func outcomeOf(gd int) Outcome {
	switch {
	case gd > 0:
		return Win
	case gd < 0:
		return Loss
	default:
		return Draw
	}
}

// GoalDifferential returns team's goals minus the opponent's goals
func GoalDifferential(m Match, team string) (int, error) {
	home, err := side(m, team)
	if err != nil {
		return 0, err
	}
	return sideDifferential(m, home), nil
}

func sideDifferential(m Match, home bool) int {
	if home {
		return m.HomeGoals - m.AwayGoals
	}
	return m.AwayGoals - m.HomeGoals
}

// Derive builds the tracked-team view of a single match
func Derive(m Match, team string) (DerivedMatch, error) {
	home, err := side(m, team)
	if err != nil {
		return DerivedMatch{}, err
	}
	gd := sideDifferential(m, home)
	return DerivedMatch{
		Match:            m,
		Team:             team,
		Home:             home,
		Outcome:          outcomeOf(gd),
		GoalDifferential: gd,
	}, nil
}

// DeriveAll derives every match in ms, stopping at the first failure
func DeriveAll(ms []Match, team string) ([]DerivedMatch, error) {
	ret := make([]DerivedMatch, 0, len(ms))
	for i, m := range ms {
		d, err := Derive(m, team)
		if err != nil {
			return nil, fmt.Errorf("match %d: %w", i, err)
		}
		ret = append(ret, d)
	}
	return ret, nil
}
