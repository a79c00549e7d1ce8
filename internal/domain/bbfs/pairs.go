package bbfs

import (
	"fmt"
	"sort"
)

// Pair is an unordered digit pair, normalized so A < B.
type Pair struct {
	A int `json:"a"`
	B int `json:"b"`
}

// NewPair builds a normalized pair from two digits in any order.
func NewPair(a, b int) Pair {
	if b < a {
		a, b = b, a
	}
	return Pair{A: a, B: b}
}

// String renders the pair as "(a, b)".
func (p Pair) String() string {
	return fmt.Sprintf("(%d, %d)", p.A, p.B)
}

// RankedPair is a pair with the number of tokens it appeared in.
type RankedPair struct {
	Pair
	Count int `json:"count"`
}

// PairCounts counts co-occurring digit pairs, remembering insertion order.
type PairCounts struct {
	counts map[Pair]int
	order  []Pair
	total  int
}

func newPairCounts() *PairCounts {
	return &PairCounts{counts: make(map[Pair]int)}
}

func (c *PairCounts) add(p Pair) {
	if _, seen := c.counts[p]; !seen {
		c.order = append(c.order, p)
	}
	c.counts[p]++
	c.total++
}

// Count returns the count for the pair (a, b) in either order.
func (c *PairCounts) Count(a, b int) int {
	return c.counts[NewPair(a, b)]
}

// Len returns the number of distinct pairs.
func (c *PairCounts) Len() int { return len(c.order) }

// Total returns the sum of all pair counts.
func (c *PairCounts) Total() int { return c.total }

// Top returns up to k pairs by descending count, ties in insertion order.
// k <= 0 returns every pair.
func (c *PairCounts) Top(k int) []RankedPair {
	ranked := make([]RankedPair, 0, len(c.order))
	for _, p := range c.order {
		ranked = append(ranked, RankedPair{Pair: p, Count: c.counts[p]})
	}
	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].Count > ranked[j].Count
	})
	if k > 0 && k < len(ranked) {
		ranked = ranked[:k]
	}
	return ranked
}

// CountPairs counts, for every token, each unordered pair of distinct digits
// present in it. A token adds at most one to any pair no matter how often the
// digits repeat. Non-digits are dropped before de-duplication.
func CountPairs(history []string) *PairCounts {
	pc := newPairCounts()
	for _, token := range history {
		var present [10]bool
		for _, r := range token {
			if d, ok := ParseDigit(r); ok {
				present[d] = true
			}
		}
		// present is indexed by digit, so walking it yields sorted order.
		digits := make([]int, 0, 10)
		for d, ok := range present {
			if ok {
				digits = append(digits, d)
			}
		}
		for i := 0; i < len(digits); i++ {
			for j := i + 1; j < len(digits); j++ {
				pc.add(Pair{A: digits[i], B: digits[j]})
			}
		}
	}
	return pc
}
