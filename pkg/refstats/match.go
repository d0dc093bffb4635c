package refstats

import "strings"

// Match is a single played fixture as read from the source table
type Match struct {
	HomeTeam  string `json:"homeTeam"`
	AwayTeam  string `json:"awayTeam"`
	HomeGoals int    `json:"homeGoals"`
	AwayGoals int    `json:"awayGoals"`
	Season    string `json:"season"`
	Referee   string `json:"referee"`
}

// Involves reports whether team played on either side
func (m Match) Involves(team string) bool {
	return m.HomeTeam == team || m.AwayTeam == team
}

// Opponent returns the other side's name, or "" when team did not play
func (m Match) Opponent(team string) string {
	switch team {
	case m.HomeTeam:
		return m.AwayTeam
	case m.AwayTeam:
		return m.HomeTeam
	}
	return ""
}

// String renders the fixture as "Home 2-1 Away (Season, Referee)"
func (m Match) String() string {
	var sb strings.Builder
	sb.WriteString(m.HomeTeam)
	sb.WriteString(" ")
	sb.WriteString(itoa(m.HomeGoals))
	sb.WriteString("-")
	sb.WriteString(itoa(m.AwayGoals))
	sb.WriteString(" ")
	sb.WriteString(m.AwayTeam)
	sb.WriteString(" (")
	sb.WriteString(m.Season)
	sb.WriteString(", ")
	sb.WriteString(m.Referee)
	sb.WriteString(")")
	return sb.String()
}

// DerivedMatch is a Match seen from the tracked team's side.
// It is built fresh on every filter pass and never written back.
type DerivedMatch struct {
	Match
	Team             string  `json:"team"`
	Home             bool    `json:"home"`
	Outcome          Outcome `json:"outcome"`
	GoalDifferential int     `json:"goalDifferential"`
}

// TeamGoals returns the goals scored by the tracked side
func (d DerivedMatch) TeamGoals() int {
	if d.Home {
		return d.HomeGoals
	}
	return d.AwayGoals
}

// OpponentGoals returns the goals conceded by the tracked side
func (d DerivedMatch) OpponentGoals() int {
	if d.Home {
		return d.AwayGoals
	}
	return d.HomeGoals
}
