package categorization

import (
	"context"
	"log/slog"
	"regexp"
	"strings"
	"sync"

	"github.com/google/uuid"
)

// Strategy identifies which cascade stage resolved a category.
type Strategy string

const (
	StrategyExactName Strategy = "exact_name"
	StrategyShop      Strategy = "shop"
	StrategyKeywords  Strategy = "keywords"
	StrategyFuzzy     Strategy = "fuzzy"
	StrategyProvision Strategy = "provision"
)

// Thresholds for the scored stages. Keyword and fuzzy matches below
// these fall through to auto-provisioning.
const (
	keywordThreshold = 0.6
	fuzzyThreshold   = 51 // score above half of the 0-100 scale
)

// Resolution is the outcome of resolving an item to a category.
type Resolution struct {
	Category   *Category
	Confidence float64
	Strategy   Strategy
	Created    bool // true when auto-provisioning inserted a new category
}

// Matcher resolves free-text item names to user categories through five
// ordered strategies; the first success wins and only the last one
// mutates state.
type Matcher struct {
	store  Store
	engine *Engine
	logger *slog.Logger

	// Advisory cache for auto-provisioned categories, keyed by
	// user+label. Losing it only costs a repeated lookup; the unique
	// index is what actually prevents duplicates.
	cacheMu sync.Mutex
	cache   map[string]*Category
}

// NewMatcher creates a matcher over the given store.
func NewMatcher(store Store, logger *slog.Logger) *Matcher {
	if logger == nil {
		logger = slog.Default()
	}
	return &Matcher{
		store:  store,
		engine: NewEngine(),
		logger: logger,
		cache:  make(map[string]*Category),
	}
}

// Match resolves a category for an item, optionally using the shop name
// it was bought at. A blank item name resolves to no category with zero
// confidence. Every non-blank name resolves to something: the final
// stage provisions a category when the earlier ones fail.
func (m *Matcher) Match(ctx context.Context, userID uuid.UUID, itemName, shopName string) (*Resolution, error) {
	name := normalizeItemText(itemName)
	if name == "" {
		return &Resolution{}, nil
	}

	categories, err := m.store.ListByUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	// 1. Exact word overlap with an existing category name.
	if cat := exactNameMatch(name, categories); cat != nil {
		return &Resolution{Category: cat, Confidence: 1.0, Strategy: StrategyExactName}, nil
	}

	// 2. Shop-name lookup, resolved to the user's matching category.
	if shopName != "" {
		if label, ok := m.engine.ShopCategory(normalizeItemText(shopName)); ok {
			if cat := findCategoryByLabel(label, categories); cat != nil {
				return &Resolution{Category: cat, Confidence: 0.8, Strategy: StrategyShop}, nil
			}
		}
	}

	// 3. Keyword dictionaries, highest-scoring category the user has.
	if cat, score := keywordMatch(name, categories); cat != nil && score > keywordThreshold {
		return &Resolution{Category: cat, Confidence: score, Strategy: StrategyKeywords}, nil
	}

	// 4. Fuzzy similarity against the user's category names.
	if res := NewFuzzyMatcher(categories).Match(name, fuzzyThreshold); res != nil {
		cat := res.Category
		return &Resolution{Category: &cat, Confidence: float64(res.Score) / 100, Strategy: StrategyFuzzy}, nil
	}

	// 5. Auto-provision: best keyword label even below threshold, else
	// the catch-all.
	label, ok := m.engine.KeywordCategory(name)
	if !ok {
		label = FallbackCategory
	}

	cat, created, err := m.getOrCreate(ctx, userID, label)
	if err != nil {
		return nil, err
	}
	if created {
		m.logger.Info("auto-provisioned category",
			slog.String("user_id", userID.String()),
			slog.String("category", label))
	}

	return &Resolution{Category: cat, Confidence: 0.3, Strategy: StrategyProvision, Created: created}, nil
}

func (m *Matcher) getOrCreate(ctx context.Context, userID uuid.UUID, label string) (*Category, bool, error) {
	key := userID.String() + "_" + label

	m.cacheMu.Lock()
	if cat, ok := m.cache[key]; ok {
		m.cacheMu.Unlock()
		return cat, false, nil
	}
	m.cacheMu.Unlock()

	cat, created, err := m.store.GetOrCreate(ctx, userID, label)
	if err != nil {
		return nil, false, err
	}

	m.cacheMu.Lock()
	m.cache[key] = cat
	m.cacheMu.Unlock()

	return cat, created, nil
}

// exactNameMatch returns the first category sharing at least one word
// with the item name.
func exactNameMatch(itemName string, categories []Category) *Category {
	itemWords := wordSet(itemName)

	for i := range categories {
		for word := range wordSet(normalizeItemText(categories[i].Name)) {
			if _, shared := itemWords[word]; shared {
				return &categories[i]
			}
		}
	}
	return nil
}

// keywordMatch scores the item against every keyword vocabulary and
// returns the user's category for the best-scoring label. Labels the
// user has no category for are skipped.
func keywordMatch(itemName string, categories []Category) (*Category, float64) {
	words := strings.Fields(itemName)
	if len(words) == 0 {
		return nil, 0
	}

	var best *Category
	bestScore := 0.0

	for _, v := range vocabularies {
		score := v.score(words)
		if score > bestScore {
			if cat := findCategoryByLabel(v.label, categories); cat != nil {
				best = cat
				bestScore = score
			}
		}
	}

	return best, bestScore
}

// findCategoryByLabel matches a canonical label to a user category by
// normalized equality or containment in either direction.
func findCategoryByLabel(label string, categories []Category) *Category {
	target := normalizeItemText(label)

	for i := range categories {
		name := normalizeItemText(categories[i].Name)
		if name == "" {
			continue
		}
		if target == name || strings.Contains(name, target) || strings.Contains(target, name) {
			return &categories[i]
		}
	}
	return nil
}

func wordSet(s string) map[string]struct{} {
	set := make(map[string]struct{})
	for _, w := range strings.Fields(s) {
		set[w] = struct{}{}
	}
	return set
}

var nonWordChars = regexp.MustCompile(`[^\p{L}\p{N}_\s]`)

// normalizeItemText lowercases, strips everything but letters, digits
// and underscores, and collapses whitespace.
func normalizeItemText(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	s = nonWordChars.ReplaceAllString(s, " ")
	return strings.Join(strings.Fields(s), " ")
}
