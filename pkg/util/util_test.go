package util

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizeSeason(t *testing.T) {
	cases := map[any]string{
		"2019-2020": "2019-2020",
		"2019/2020": "2019-2020",
		"2019/20":   "2019-2020",
		"2019-20":   "2019-2020",
		"19/20":     "2019-2020",
		"1999/00":   "1999-2000",
		" 2021 ":    "2021",
		2022:        "2022",
	}
	for in, want := range cases {
		got, err := NormalizeSeason(in)
		require.NoError(t, err, "input %v", in)
		assert.Equal(t, want, got, "input %v", in)
	}

	for _, bad := range []any{"", "20xx-21", "2019-2020-2021x", "12345", nil} {
		_, err := NormalizeSeason(bad)
		assert.Error(t, err, "input %v", bad)
	}
}

func TestSeasonHelpers(t *testing.T) {
	y, err := SeasonFirstYear("2019/20")
	require.NoError(t, err)
	assert.Equal(t, 2019, y)

	same, err := IsSameSeason("2019/20", "2019-2020")
	require.NoError(t, err)
	assert.True(t, same)
}

func TestResolveName(t *testing.T) {
	teams := []string{"Man City", "Man United", "Chelsea"}

	got, ok := ResolveName("Man United", teams)
	require.True(t, ok)
	assert.Equal(t, "Man United", got)

	got, ok = ResolveName("man united", teams)
	require.True(t, ok)
	assert.Equal(t, "Man United", got)

	got, ok = ResolveName("Man Unitd", teams)
	require.True(t, ok)
	assert.Equal(t, "Man United", got)

	_, ok = ResolveName("Arsenal", teams)
	assert.False(t, ok)

	_, ok = ResolveName("  ", teams)
	assert.False(t, ok)
}

func TestFuzzyMatch(t *testing.T) {
	assert.Equal(t, 0, FuzzyMatch("united", "Man United"))
	assert.Equal(t, 3, LevenshteinDistance("kitten", "sitting"))
	assert.Equal(t, 1.0, FuzzyMatchScore("Chelsea", "chelsea"))
}

func TestGetAsStringSlice(t *testing.T) {
	got, err := GetAsStringSlice("2019-2020, 2020-2021,,")
	require.NoError(t, err)
	assert.Equal(t, []string{"2019-2020", "2020-2021"}, got)

	got, err = GetAsStringSlice([]any{"M Dean", 7})
	require.NoError(t, err)
	assert.Equal(t, []string{"M Dean", "7"}, got)

	got, err = GetAsStringSlice(nil)
	require.NoError(t, err)
	assert.Nil(t, got)

	_, err = GetAsStringSlice(3.5)
	assert.Error(t, err)
}

func TestSVGRendering(t *testing.T) {
	s := NewBlankSVG(200, 100)
	r, err := NewSVGRect(10, 10, 50, 20, "#ff0000", 1)
	require.NoError(t, err)
	r.Title = "A & B"
	s.AddRect(r)

	_, err = s.AddText("label", "<Dean>", "", 5, 5, 2)
	require.NoError(t, err)
	bg, err := NewSVGRect(0, 0, 200, 100, "", 0)
	require.NoError(t, err)
	s.AddRect(bg)

	out, err := s.ToSVG()
	require.NoError(t, err)
	assert.Contains(t, out, `width="200"`)
	assert.Contains(t, out, `height="100"`)
	assert.Contains(t, out, "&lt;Dean&gt;")
	assert.Contains(t, out, "<title>A &amp; B</title>")
	// background is drawn first
	assert.Less(t, strings.Index(out, `fill="#ffffff"`), strings.Index(out, `fill="#ff0000"`))

	_, err = NewSVGRect(0, 0, 0, 10, "", 0)
	assert.Error(t, err)
	_, err = NewBlankSVG(0, 0).ToSVG()
	assert.Error(t, err)
}

func TestWrapText(t *testing.T) {
	lines := WrapText("the quick brown fox jumps", "font-size: 10px;", 60)
	assert.Greater(t, len(lines), 1)
	for _, l := range lines {
		assert.LessOrEqual(t, len(l), 10)
	}
	assert.Equal(t, []string{"short"}, WrapText("short", "", 500))
}
