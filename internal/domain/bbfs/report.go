package bbfs

import (
	"fmt"
	"strconv"
	"strings"
)

// DefaultTopN is the BBFS size used when the caller gives none or an invalid one.
const DefaultTopN = 7

// TopPairs is how many follower pairs the report lists.
const TopPairs = 5

// Canned messages. The report text uses *bold*, `mono` and _italic_ markers
// that the display layer is expected to interpret.
const (
	EmptyHistoryMessage = "History data is empty or invalid. Nothing to analyze."
	NoDigitsMessage     = "No valid digits were found in the history."
	Disclaimer          = "_Disclaimer: this analysis is based on historical data and is for reference only. Use it wisely._"
)

// Outcome says which branch an analysis run terminated in.
type Outcome string

const (
	OutcomeReport       Outcome = "report"
	OutcomeEmptyHistory Outcome = "empty_history"
	OutcomeNoDigits     Outcome = "no_digits"
)

// Analysis is the structured result of one run. Report renders it as text.
type Analysis struct {
	Outcome   Outcome               `json:"outcome"`
	Entries   int                   `json:"entries"`
	TopN      int                   `json:"top_n"`
	Ranked    []RankedDigit         `json:"ranked,omitempty"`
	BBFS      string                `json:"bbfs,omitempty"`
	Mirror    string                `json:"mirror,omitempty"`
	Pairs     []RankedPair          `json:"pairs,omitempty"`
	Positions map[int][]RankedDigit `json:"positions,omitempty"`
}

// ParseTopN coerces caller input into a usable top-N. Anything missing,
// non-numeric or below 1 becomes DefaultTopN.
func ParseTopN(s string) int {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil || n <= 0 {
		return DefaultTopN
	}
	return n
}

// Run analyzes history and returns the structured result.
func Run(history []string, topN int) *Analysis {
	if topN <= 0 {
		topN = DefaultTopN
	}
	a := &Analysis{Entries: len(history), TopN: topN}
	if len(history) == 0 {
		a.Outcome = OutcomeEmptyHistory
		return a
	}

	digits := AnalyzeDigits(history)
	if digits.All.Total() == 0 {
		a.Outcome = OutcomeNoDigits
		return a
	}

	a.Outcome = OutcomeReport
	a.Ranked = digits.All.Ranked(topN)

	var bbfs strings.Builder
	for _, rd := range a.Ranked {
		bbfs.WriteByte(byte('0' + rd.Digit))
	}
	a.BBFS = bbfs.String()
	a.Mirror = MirrorString(a.BBFS)

	a.Pairs = CountPairs(history).Top(TopPairs)

	a.Positions = make(map[int][]RankedDigit, len(digits.Positions))
	for _, i := range digits.PositionIndexes() {
		a.Positions[i] = digits.Positions[i].Ranked(0)
	}
	return a
}

// PositionIndexes returns the character positions present in Positions,
// ascending.
func (a *Analysis) PositionIndexes() []int {
	return sortedKeys(a.Positions)
}

// Report renders the analysis as user-facing text.
func (a *Analysis) Report() string {
	switch a.Outcome {
	case OutcomeEmptyHistory:
		return EmptyHistoryMessage
	case OutcomeNoDigits:
		return NoDigitsMessage
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "🔥 *Analysis of the Last %d Entries* 🔥\n\n", a.Entries)

	fmt.Fprintf(&sb, "1️⃣ *Top %d Most Frequent Digits:*\n", len(a.Ranked))
	for _, rd := range a.Ranked {
		fmt.Fprintf(&sb, "   - Digit `%d`: appeared %d times\n", rd.Digit, rd.Count)
	}

	fmt.Fprintf(&sb, "\n2️⃣ *BBFS Recommendation (%d digits):*\n", len(a.BBFS))
	fmt.Fprintf(&sb, "   `%s`\n", a.BBFS)

	sb.WriteString("\n3️⃣ *Mirror Digits of the Top Set:*\n")
	fmt.Fprintf(&sb, "   `%s`\n", a.Mirror)

	if len(a.Pairs) > 0 {
		fmt.Fprintf(&sb, "\n4️⃣ *Top %d Strongest Follower Pairs:*\n", TopPairs)
		for _, rp := range a.Pairs {
			fmt.Fprintf(&sb, "   - Pair `%s`: appeared together %d times\n", rp.Pair, rp.Count)
		}
	}

	sb.WriteString("\n\n")
	sb.WriteString(Disclaimer)
	return sb.String()
}

// Analyze is the engine's entry point: history in, report text out.
// It never fails; empty input and digit-free input produce canned messages.
func Analyze(history []string, topN int) string {
	return Run(history, topN).Report()
}
