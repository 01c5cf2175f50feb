package categorization

import (
	"sort"
	"strings"
	"sync"

	"github.com/lithammer/fuzzysearch/fuzzy"
)

// FuzzyMatchResult is a category name match with its similarity score.
type FuzzyMatchResult struct {
	Category Category
	Score    int // similarity score, 0-100
	Distance int // Levenshtein distance, lower = closer
}

// FuzzyMatcher scores item text against a user's category names using
// Levenshtein distance. It catches near-misses like "продукти" vs
// "продукты" that the exact and keyword passes cannot see.
type FuzzyMatcher struct {
	entries []fuzzyEntry
	mu      sync.RWMutex
}

type fuzzyEntry struct {
	normalized string // lowercased, cleaned name used for comparison
	category   Category
}

// NewFuzzyMatcher builds a matcher over the given categories. Building
// is cheap for per-user category counts, so one per resolution call is
// fine.
func NewFuzzyMatcher(categories []Category) *FuzzyMatcher {
	fm := &FuzzyMatcher{}
	fm.Build(categories)
	return fm
}

// Build reconstructs the entry list from the given categories.
func (fm *FuzzyMatcher) Build(categories []Category) {
	fm.mu.Lock()
	defer fm.mu.Unlock()

	fm.entries = make([]fuzzyEntry, 0, len(categories))
	for _, cat := range categories {
		normalized := normalizeItemText(cat.Name)
		if normalized == "" {
			continue
		}
		fm.entries = append(fm.entries, fuzzyEntry{normalized: normalized, category: cat})
	}
}

// Match finds the best-scoring category at or above the threshold.
// Returns nil when nothing reaches it. Scores run 0-100.
func (fm *FuzzyMatcher) Match(itemName string, threshold int) *FuzzyMatchResult {
	fm.mu.RLock()
	defer fm.mu.RUnlock()

	if len(fm.entries) == 0 {
		return nil
	}

	normalized := normalizeItemText(itemName)

	var best *FuzzyMatchResult
	bestScore := threshold - 1

	for _, e := range fm.entries {
		score := fuzzyScore(normalized, e.normalized)
		if score > bestScore {
			bestScore = score
			best = &FuzzyMatchResult{
				Category: e.category,
				Score:    score,
				Distance: levenshteinDistance(normalized, e.normalized),
			}
		}
	}

	return best
}

// MatchAll returns every category at or above the threshold, sorted by
// score descending.
func (fm *FuzzyMatcher) MatchAll(itemName string, threshold int) []FuzzyMatchResult {
	fm.mu.RLock()
	defer fm.mu.RUnlock()

	if len(fm.entries) == 0 {
		return nil
	}

	normalized := normalizeItemText(itemName)
	var results []FuzzyMatchResult

	for _, e := range fm.entries {
		score := fuzzyScore(normalized, e.normalized)
		if score >= threshold {
			results = append(results, FuzzyMatchResult{
				Category: e.category,
				Score:    score,
				Distance: levenshteinDistance(normalized, e.normalized),
			})
		}
	}

	sort.Slice(results, func(i, j int) bool {
		return results[i].Score > results[j].Score
	})

	return results
}

// PatternCount returns the number of category names in the matcher.
func (fm *FuzzyMatcher) PatternCount() int {
	fm.mu.RLock()
	defer fm.mu.RUnlock()
	return len(fm.entries)
}

// fuzzyScore calculates a similarity score between two strings (0-100)
// from containment checks, Levenshtein distance and subsequence ranking.
func fuzzyScore(s1, s2 string) int {
	// Exact match
	if s1 == s2 {
		return 100
	}

	// Containment in either direction, scored by length ratio
	if strings.Contains(s1, s2) {
		return 75 + (25 * len(s2) / len(s1))
	}
	if strings.Contains(s2, s1) {
		return 75 + (25 * len(s1) / len(s2))
	}

	distance := levenshteinDistance(s1, s2)
	maxLen := len([]rune(s1))
	if l := len([]rune(s2)); l > maxLen {
		maxLen = l
	}
	if maxLen == 0 {
		return 0
	}

	levenshteinScore := 100 * (maxLen - distance) / maxLen
	if levenshteinScore < 0 {
		levenshteinScore = 0
	}

	// Subsequence rank: lower rank = closer strings
	fuzzyLibScore := 0
	if rank := fuzzy.RankMatch(s2, s1); rank >= 0 && rank < len(s1) {
		fuzzyLibScore = 60 - (rank * 40 / len(s1))
	}

	if levenshteinScore > fuzzyLibScore {
		return levenshteinScore
	}
	return fuzzyLibScore
}

// levenshteinDistance calculates the edit distance between two strings,
// counted in runes.
func levenshteinDistance(s1, s2 string) int {
	r1 := []rune(s1)
	r2 := []rune(s2)
	if len(r1) == 0 {
		return len(r2)
	}
	if len(r2) == 0 {
		return len(r1)
	}

	// Two rows instead of the full matrix
	prev := make([]int, len(r2)+1)
	curr := make([]int, len(r2)+1)

	for j := 0; j <= len(r2); j++ {
		prev[j] = j
	}

	for i := 1; i <= len(r1); i++ {
		curr[0] = i
		for j := 1; j <= len(r2); j++ {
			cost := 1
			if r1[i-1] == r2[j-1] {
				cost = 0
			}
			curr[j] = minOf3(
				prev[j]+1,      // deletion
				curr[j-1]+1,    // insertion
				prev[j-1]+cost, // substitution
			)
		}
		prev, curr = curr, prev
	}

	return prev[len(r2)]
}

func minOf3(a, b, c int) int {
	if a < b {
		if a < c {
			return a
		}
		return c
	}
	if b < c {
		return b
	}
	return c
}
