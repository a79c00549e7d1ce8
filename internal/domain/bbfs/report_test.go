package bbfs

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAnalyze_EmptyHistory(t *testing.T) {
	for _, n := range []int{-3, 0, 1, 7, 100} {
		assert.Equal(t, EmptyHistoryMessage, Analyze(nil, n))
		assert.Equal(t, EmptyHistoryMessage, Analyze([]string{}, n))
	}
}

func TestAnalyze_NoDigits(t *testing.T) {
	assert.Equal(t, NoDigitsMessage, Analyze([]string{"abc", "xyz"}, 7))
}

func TestAnalyze_ReportSections(t *testing.T) {
	report := Analyze([]string{"123", "231", "321"}, 3)

	assert.Contains(t, report, "Analysis of the Last 3 Entries")
	assert.Contains(t, report, "Top 3 Most Frequent Digits")
	assert.Contains(t, report, "Digit `1`: appeared 3 times")
	assert.Contains(t, report, "Digit `2`: appeared 3 times")
	assert.Contains(t, report, "Digit `3`: appeared 3 times")
	assert.Contains(t, report, "BBFS Recommendation (3 digits)")
	assert.Contains(t, report, "`123`")
	assert.Contains(t, report, "`678`")
	assert.Contains(t, report, "Pair `(1, 2)`: appeared together 3 times")
	assert.True(t, strings.HasSuffix(report, Disclaimer))

	// Ranked order follows first appearance on ties.
	i1 := strings.Index(report, "Digit `1`")
	i2 := strings.Index(report, "Digit `2`")
	i3 := strings.Index(report, "Digit `3`")
	assert.True(t, i1 < i2 && i2 < i3)
}

func TestAnalyze_DisclaimerAlwaysPresent(t *testing.T) {
	for _, h := range [][]string{{"1"}, {"90", "abc"}, {"1234", "5678", "9012"}} {
		report := Analyze(h, DefaultTopN)
		assert.NotEmpty(t, report)
		assert.Contains(t, report, Disclaimer)
	}
}

func TestAnalyze_NoPairsSection(t *testing.T) {
	report := Analyze([]string{"1", "1", "2"}, 7)
	assert.NotContains(t, report, "Follower Pairs")
	assert.Contains(t, report, Disclaimer)
}

func TestRun_TopNExceedsDistinct(t *testing.T) {
	a := Run([]string{"1"}, 7)
	require.Equal(t, OutcomeReport, a.Outcome)
	assert.Equal(t, []RankedDigit{{1, 1}}, a.Ranked)
	assert.Equal(t, "1", a.BBFS)
	assert.Equal(t, "6", a.Mirror)
}

func TestRun_MirrorMatchesBBFS(t *testing.T) {
	a := Run([]string{"4821", "0937", "5561", "2284", "1190"}, 5)
	require.Equal(t, OutcomeReport, a.Outcome)
	assert.Len(t, a.Ranked, 5)
	assert.Len(t, a.BBFS, len(a.Ranked))
	assert.Len(t, a.Mirror, len(a.BBFS))
	for i := range a.BBFS {
		d, _ := ParseDigit(rune(a.BBFS[i]))
		m, _ := ParseDigit(rune(a.Mirror[i]))
		assert.Equal(t, Mirror(d), m)
	}
}

func TestRun_InvalidTopNUsesDefault(t *testing.T) {
	a := Run([]string{"0123456789"}, 0)
	assert.Equal(t, DefaultTopN, a.TopN)
	assert.Len(t, a.Ranked, DefaultTopN)
}

func TestAnalysis_PositionIndexes(t *testing.T) {
	a := Run([]string{"a1", "éé345"}, 7)
	assert.Equal(t, []int{1, 2, 3, 4}, a.PositionIndexes())
	assert.Empty(t, Run(nil, 7).PositionIndexes())
}

func TestRun_Positions(t *testing.T) {
	a := Run([]string{"12", "13"}, 7)
	require.Contains(t, a.Positions, 0)
	assert.Equal(t, []RankedDigit{{1, 2}}, a.Positions[0])
	assert.Equal(t, []RankedDigit{{2, 1}, {3, 1}}, a.Positions[1])
}

func TestRun_Outcomes(t *testing.T) {
	assert.Equal(t, OutcomeEmptyHistory, Run(nil, 7).Outcome)
	assert.Equal(t, OutcomeNoDigits, Run([]string{"--"}, 7).Outcome)
	assert.Equal(t, 1, Run([]string{"--"}, 7).Entries)
}

func TestParseTopN(t *testing.T) {
	cases := map[string]int{
		"":    DefaultTopN,
		"8":   8,
		" 4 ": 4,
		"abc": DefaultTopN,
		"0":   DefaultTopN,
		"-2":  DefaultTopN,
		"3.5": DefaultTopN,
		"10":  10,
	}
	for in, want := range cases {
		assert.Equal(t, want, ParseTopN(in), "ParseTopN(%q)", in)
	}
}
