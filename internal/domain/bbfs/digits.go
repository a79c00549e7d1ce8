package bbfs

import "sort"

// DigitCounts is a multiset of digits 0-9. It remembers the order in which
// digits were first seen so that ranking can break ties stably.
type DigitCounts struct {
	counts [10]int
	order  []int
	total  int
}

// Add records one occurrence of d. d must be in 0-9.
func (c *DigitCounts) Add(d int) {
	if c.counts[d] == 0 {
		c.order = append(c.order, d)
	}
	c.counts[d]++
	c.total++
}

// Count returns how many times d was recorded.
func (c *DigitCounts) Count(d int) int {
	if d < 0 || d > 9 {
		return 0
	}
	return c.counts[d]
}

// Total returns the number of recorded occurrences.
func (c *DigitCounts) Total() int { return c.total }

// Distinct returns the number of distinct digits recorded.
func (c *DigitCounts) Distinct() int { return len(c.order) }

// Ranked returns up to n digits by descending count. Ties keep first-seen
// order. n <= 0 returns every distinct digit.
func (c *DigitCounts) Ranked(n int) []RankedDigit {
	ranked := make([]RankedDigit, 0, len(c.order))
	for _, d := range c.order {
		ranked = append(ranked, RankedDigit{Digit: d, Count: c.counts[d]})
	}
	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].Count > ranked[j].Count
	})
	if n > 0 && n < len(ranked) {
		ranked = ranked[:n]
	}
	return ranked
}

// RankedDigit is a digit with its occurrence count.
type RankedDigit struct {
	Digit int `json:"digit"`
	Count int `json:"count"`
}

// DigitAnalysis holds the flat multiset and the per-position breakdown.
type DigitAnalysis struct {
	All       DigitCounts
	Positions map[int]*DigitCounts
}

// AnalyzeDigits scans every token and records each digit character, both
// globally and under its character index within the token. Non-digits are
// skipped but still advance the index.
func AnalyzeDigits(history []string) DigitAnalysis {
	a := DigitAnalysis{Positions: make(map[int]*DigitCounts)}
	for _, token := range history {
		i := -1
		for _, r := range token {
			i++
			d, ok := ParseDigit(r)
			if !ok {
				continue
			}
			a.All.Add(d)
			pos, exists := a.Positions[i]
			if !exists {
				pos = &DigitCounts{}
				a.Positions[i] = pos
			}
			pos.Add(d)
		}
	}
	return a
}

// PositionIndexes returns the recorded positions in ascending order.
func (a DigitAnalysis) PositionIndexes() []int {
	return sortedKeys(a.Positions)
}

func sortedKeys[V any](m map[int]V) []int {
	idx := make([]int, 0, len(m))
	for i := range m {
		idx = append(idx, i)
	}
	sort.Ints(idx)
	return idx
}
