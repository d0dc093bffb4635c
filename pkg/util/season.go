package util

import (
	"fmt"
	"strings"
)

/**
* NormalizeSeason returns a season in the form YYYY-YYYY.
* Accepted inputs are YYYY-YYYY, YYYY/YYYY, YYYY-YY, YYYY/YY, YY/YY, YYYY (single year seasons)
* and numbers such as 2019.
 */
func NormalizeSeason(season any) (string, error) {
	if season == nil {
		return "", fmt.Errorf("must pass a season")
	}
	ss, err := GetAsString(season)
	if err != nil {
		return "", err
	}
	ss = strings.TrimSpace(ss)

	split := func(s string) (string, string, bool) {
		for _, d := range []string{"-", "/", "_"} {
			if a, b, ok := strings.Cut(s, d); ok {
				return a, b, true
			}
		}
		return s, "", false
	}

	first, second, pair := split(ss)
	if !pair {
		if len(ss) == 4 && isDigits(ss) {
			return ss, nil
		}
		return "", fmt.Errorf("invalid season format: %s", ss)
	}
	if !isDigits(first) || !isDigits(second) {
		return "", fmt.Errorf("invalid season format: %s", ss)
	}

	switch len(first) {
	case 4:
	case 2:
		first = "20" + first
	default:
		return "", fmt.Errorf("invalid season format: %s", ss)
	}
	switch len(second) {
	case 4:
	case 2:
		// the century of the second year follows the first, so 1999/00 becomes 1999-2000
		y, _ := GetAsInteger(first)
		s, _ := GetAsInteger(second)
		century := y / 100 * 100
		if s < y%100 {
			century += 100
		}
		second = fmt.Sprintf("%d", century+s)
	default:
		return "", fmt.Errorf("invalid season format: %s", ss)
	}
	return first + "-" + second, nil
}

// SeasonFirstYear returns the year a season starts in
func SeasonFirstYear(season any) (int, error) {
	s, err := NormalizeSeason(season)
	if err != nil {
		return 0, err
	}
	return GetAsInteger(s[:4])
}

/**
* Returns true if the given two parameters represent the same season
 */
func IsSameSeason(s1 any, s2 any) (bool, error) {
	season1, err := NormalizeSeason(s1)
	if err != nil {
		return false, err
	}
	season2, err := NormalizeSeason(s2)
	if err != nil {
		return false, err
	}
	return season1 == season2, nil
}

func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
