package loader

import (
	"strings"

	"github.com/go-gota/gota/dataframe"
	"github.com/richard-senior/refstats/pkg/refstats"
)

// DefaultAliases maps each canonical column to the header names other
// exports use for it. Comparison is done on normalised keys, see columnKey.
var DefaultAliases = map[string][]string{
	refstats.ColHomeTeam:  {"HomeTeam", "Home", "Home Team", "home_team_name"},
	refstats.ColAwayTeam:  {"AwayTeam", "Away", "Away Team", "away_team_name"},
	refstats.ColHomeGoals: {"FTHG", "HG", "HomeGoals", "Home Score", "home_score"},
	refstats.ColAwayGoals: {"FTAG", "AG", "AwayGoals", "Away Score", "away_score"},
	refstats.ColSeason:    {"season", "Season Name"},
	refstats.ColReferee:   {"referee", "Ref", "Official"},
}

// columnKey lowercases and drops spaces, underscores, hyphens and any BOM
func columnKey(name string) string {
	name = strings.TrimPrefix(name, "\ufeff")
	name = strings.ToLower(strings.TrimSpace(name))
	return strings.NewReplacer(" ", "", "_", "", "-", "").Replace(name)
}

// aliasIndex builds normalised header key -> canonical name
func aliasIndex(extra map[string][]string) map[string]string {
	ret := make(map[string]string)
	add := func(aliases map[string][]string) {
		for canonical, names := range aliases {
			ret[columnKey(canonical)] = canonical
			for _, n := range names {
				ret[columnKey(n)] = canonical
			}
		}
	}
	add(DefaultAliases)
	add(extra)
	return ret
}

// canonicalHeader returns the header with every recognised name replaced by its
// canonical form. The first column claiming a canonical name wins, later ones keep their names.
func canonicalHeader(header []string, extra map[string][]string) []string {
	idx := aliasIndex(extra)
	taken := make(map[string]bool)
	// exact canonical names take priority over aliases
	for _, h := range header {
		for _, c := range refstats.CanonicalColumns {
			if strings.TrimSpace(strings.TrimPrefix(h, "\ufeff")) == c {
				taken[c] = true
			}
		}
	}
	ret := make([]string, len(header))
	for i, h := range header {
		clean := strings.TrimSpace(strings.TrimPrefix(h, "\ufeff"))
		ret[i] = clean
		canonical, ok := idx[columnKey(clean)]
		if !ok || canonical == clean {
			continue
		}
		if taken[canonical] {
			continue
		}
		taken[canonical] = true
		ret[i] = canonical
	}
	return ret
}

// normaliseColumns renames alias columns of df to their canonical names
func normaliseColumns(df dataframe.DataFrame, extra map[string][]string) dataframe.DataFrame {
	names := df.Names()
	canonical := canonicalHeader(names, extra)
	for i, old := range names {
		if canonical[i] != old {
			df = df.Rename(canonical[i], old)
		}
	}
	return df
}
