package categorization

import (
	"context"
	"log/slog"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ReceiptLine is one priced item from a parsed receipt.
type ReceiptLine struct {
	Name       string
	TotalPrice decimal.Decimal
}

// CategoryShare aggregates one category's slice of a receipt.
type CategoryShare struct {
	Category      string
	Items         int
	Amount        decimal.Decimal
	AvgConfidence float64
	Percentage    float64
}

// ReceiptBreakdown is the per-category view of a whole receipt.
type ReceiptBreakdown struct {
	Shares         []CategoryShare
	TotalAmount    decimal.Decimal
	MatchedItems   int
	UnmatchedItems []ReceiptLine
	MatchingRate   float64
}

// Service is the categorization facade: cascade resolution for single
// items, receipt-wide breakdowns, and category suggestions.
type Service struct {
	matcher *Matcher
	store   Store
	index   *SuggestionIndex
	logger  *slog.Logger
}

// NewService creates a categorization service. The suggestion index is
// optional; without it Suggest returns nothing.
func NewService(store Store, index *SuggestionIndex, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		matcher: NewMatcher(store, logger),
		store:   store,
		index:   index,
		logger:  logger,
	}
}

// Resolve runs the five-stage cascade for one item.
func (s *Service) Resolve(ctx context.Context, userID uuid.UUID, itemName, shopName string) (*Resolution, error) {
	return s.matcher.Match(ctx, userID, itemName, shopName)
}

// AnalyzeReceipt resolves a category for every receipt line and
// aggregates amounts, confidence and coverage per category. Shares keep
// first-seen order so repeated runs produce identical output.
func (s *Service) AnalyzeReceipt(ctx context.Context, userID uuid.UUID, shopName string, lines []ReceiptLine) (*ReceiptBreakdown, error) {
	breakdown := &ReceiptBreakdown{TotalAmount: decimal.Zero}
	if len(lines) == 0 {
		return breakdown, nil
	}

	shareIndex := make(map[string]int)
	confidences := make(map[string][]float64)

	for _, line := range lines {
		res, err := s.matcher.Match(ctx, userID, line.Name, shopName)
		if err != nil {
			return nil, err
		}

		breakdown.TotalAmount = breakdown.TotalAmount.Add(line.TotalPrice)

		if res.Category == nil {
			breakdown.UnmatchedItems = append(breakdown.UnmatchedItems, line)
			continue
		}

		name := res.Category.Name
		idx, ok := shareIndex[name]
		if !ok {
			idx = len(breakdown.Shares)
			shareIndex[name] = idx
			breakdown.Shares = append(breakdown.Shares, CategoryShare{Category: name, Amount: decimal.Zero})
		}

		breakdown.Shares[idx].Items++
		breakdown.Shares[idx].Amount = breakdown.Shares[idx].Amount.Add(line.TotalPrice)
		confidences[name] = append(confidences[name], res.Confidence)
	}

	for i := range breakdown.Shares {
		scores := confidences[breakdown.Shares[i].Category]
		if len(scores) > 0 {
			sum := 0.0
			for _, c := range scores {
				sum += c
			}
			breakdown.Shares[i].AvgConfidence = sum / float64(len(scores))
		}
		if breakdown.TotalAmount.IsPositive() {
			share, _ := breakdown.Shares[i].Amount.Div(breakdown.TotalAmount).Float64()
			breakdown.Shares[i].Percentage = share * 100
		}
	}

	breakdown.MatchedItems = len(lines) - len(breakdown.UnmatchedItems)
	breakdown.MatchingRate = float64(breakdown.MatchedItems) / float64(len(lines))

	return breakdown, nil
}

// SuggestStarterCategories proposes popular category labels the user
// does not have yet.
func (s *Service) SuggestStarterCategories(ctx context.Context, userID uuid.UUID, limit int) ([]string, error) {
	categories, err := s.store.ListByUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	existing := make(map[string]struct{}, len(categories))
	for _, cat := range categories {
		existing[cat.Name] = struct{}{}
	}

	var suggested []string
	for _, label := range SuggestedCategories() {
		if _, has := existing[label]; has {
			continue
		}
		suggested = append(suggested, label)
		if limit > 0 && len(suggested) == limit {
			break
		}
	}

	return suggested, nil
}

// Suggest ranks vocabulary categories against free text, typo-tolerant.
func (s *Service) Suggest(query string, limit int) ([]Suggestion, error) {
	if s.index == nil {
		return nil, nil
	}
	return s.index.Suggest(query, limit)
}
