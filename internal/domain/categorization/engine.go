package categorization

import (
	"sync"

	"github.com/cloudflare/ahocorasick"
)

// Engine answers two substring questions over the static vocabulary
// using the Aho-Corasick algorithm: "which category does this shop name
// imply" and "which category keyword appears first in this item text".
// A single pass through the text covers every pattern at once, so the
// cost is O(n + m) regardless of vocabulary size.
type Engine struct {
	shopMatcher *ahocorasick.Matcher
	shopLabels  []string // label per shop pattern index

	kwMatcher *ahocorasick.Matcher
	kwLabels  []string // label per keyword pattern index

	mu sync.RWMutex // protects rebuilding the matchers
}

// NewEngine builds an engine over the built-in vocabulary tables.
func NewEngine() *Engine {
	e := &Engine{}
	e.build(vocabularies, shopVocabularies)
	return e
}

// build constructs the matchers from the given tables. It can be called
// again to rebuild when the vocabulary changes.
func (e *Engine) build(vocabs []vocabulary, shops []shopVocabulary) {
	e.mu.Lock()
	defer e.mu.Unlock()

	var shopPatterns [][]byte
	var shopLabels []string
	for _, sv := range shops {
		for _, shop := range sv.shops {
			shopPatterns = append(shopPatterns, []byte(shop))
			shopLabels = append(shopLabels, sv.label)
		}
	}

	var kwPatterns [][]byte
	var kwLabels []string
	for _, v := range vocabs {
		for _, kw := range v.allWords() {
			kwPatterns = append(kwPatterns, []byte(kw))
			kwLabels = append(kwLabels, v.label)
		}
	}

	e.shopLabels = shopLabels
	e.kwLabels = kwLabels

	if len(shopPatterns) > 0 {
		e.shopMatcher = ahocorasick.NewMatcher(shopPatterns)
	} else {
		e.shopMatcher = nil
	}
	if len(kwPatterns) > 0 {
		e.kwMatcher = ahocorasick.NewMatcher(kwPatterns)
	} else {
		e.kwMatcher = nil
	}
}

// ShopCategory returns the category label implied by a normalized shop
// name. When several shop patterns occur in the name, the one declared
// earliest in the table wins.
func (e *Engine) ShopCategory(shopName string) (string, bool) {
	e.mu.RLock()
	defer e.mu.RUnlock()

	if e.shopMatcher == nil || shopName == "" {
		return "", false
	}

	hits := e.shopMatcher.Match([]byte(shopName))
	if len(hits) == 0 {
		return "", false
	}
	return e.shopLabels[earliest(hits)], true
}

// KeywordCategory returns the label of the first vocabulary keyword
// contained anywhere in the normalized item text. This is the
// auto-provision scan: any keyword hit is enough, no scoring.
func (e *Engine) KeywordCategory(itemName string) (string, bool) {
	e.mu.RLock()
	defer e.mu.RUnlock()

	if e.kwMatcher == nil || itemName == "" {
		return "", false
	}

	hits := e.kwMatcher.Match([]byte(itemName))
	if len(hits) == 0 {
		return "", false
	}
	return e.kwLabels[earliest(hits)], true
}

// PatternCount returns the number of patterns loaded in the engine.
func (e *Engine) PatternCount() int {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return len(e.shopLabels) + len(e.kwLabels)
}

// IsEmpty reports whether the engine has no patterns loaded.
func (e *Engine) IsEmpty() bool {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.shopMatcher == nil && e.kwMatcher == nil
}

// earliest picks the lowest pattern index, which corresponds to the
// earliest table declaration. Match reports hits in text order, not
// declaration order.
func earliest(hits []int) int {
	best := hits[0]
	for _, h := range hits[1:] {
		if h < best {
			best = h
		}
	}
	return best
}
