package reconcile

import (
	"math"
	"regexp"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

const (
	// DefaultTimeWindow bounds candidate receipts around the voice
	// timestamp, symmetric in both directions.
	DefaultTimeWindow = 5 * time.Minute

	// FoundThreshold keeps a scored match; NotifyThreshold additionally
	// surfaces it to the user.
	FoundThreshold  = 0.5
	NotifyThreshold = 0.7

	// similarityThreshold accepts one voice-to-receipt item pairing.
	similarityThreshold = 0.6

	// amountCloseThreshold flags the totals as agreeing.
	amountCloseThreshold = 0.8

	// priceTolerance is the accepted relative gap between a spoken and
	// a printed price.
	priceTolerance = 0.1
)

// Outcome is the scored comparison of one voice message against one
// receipt.
type Outcome struct {
	Confidence  float64
	AmountScore float64
	ItemScore   float64
	AmountMatch bool
	ItemsMatch  bool
	Pairs       []MatchPair
}

// ScoreMatch compares a voice extraction to a receipt. With a spoken
// total the verdict weighs totals over items 60/40; without one it
// rests on items alone.
func ScoreMatch(voice *VoiceExtraction, receiptTotal decimal.Decimal, receiptItems []ReceiptItem) Outcome {
	var out Outcome

	if voice.SpokenTotal.IsPositive() && receiptTotal.IsPositive() {
		out.AmountScore = amountScore(voice.SpokenTotal, receiptTotal)
		out.AmountMatch = out.AmountScore > amountCloseThreshold
	}

	out.ItemScore, out.Pairs = matchItems(voice.Items, receiptItems)
	out.ItemsMatch = out.ItemScore > similarityThreshold

	if voice.SpokenTotal.IsPositive() {
		out.Confidence = out.AmountScore*0.6 + out.ItemScore*0.4
	} else {
		out.Confidence = out.ItemScore
	}

	return out
}

// amountScore grades how close two positive totals are, 1 for equal,
// falling linearly to 0 as the gap approaches the larger total.
func amountScore(voiceTotal, receiptTotal decimal.Decimal) float64 {
	v, _ := voiceTotal.Float64()
	r, _ := receiptTotal.Float64()
	if v <= 0 || r <= 0 {
		return 0
	}

	diff := math.Abs(v-r) / math.Max(v, r)
	return math.Max(0, 1-diff)
}

// matchItems pairs every voice item with its best receipt line above
// the similarity threshold. Pairing is greedy per voice item: one
// receipt line may serve several voice items, and the score is averaged
// over all voice items so unmatched ones drag it down.
func matchItems(voiceItems []VoiceItem, receiptItems []ReceiptItem) (float64, []MatchPair) {
	if len(voiceItems) == 0 || len(receiptItems) == 0 {
		return 0, nil
	}

	var pairs []MatchPair
	total := 0.0

	for _, vi := range voiceItems {
		var best *ReceiptItem
		bestSimilarity := 0.0

		for i := range receiptItems {
			similarity := itemSimilarity(vi.Name, receiptItems[i].Name)
			if similarity > bestSimilarity && similarity > similarityThreshold {
				bestSimilarity = similarity
				best = &receiptItems[i]
			}
		}

		if best == nil {
			continue
		}
		pairs = append(pairs, MatchPair{
			VoiceName:    vi.Name,
			VoicePrice:   vi.Price,
			ReceiptName:  best.Name,
			ReceiptPrice: best.UnitPrice,
			Similarity:   bestSimilarity,
			PriceMatch:   priceMatch(vi.Price, best.UnitPrice),
		})
		total += bestSimilarity
	}

	return total / float64(len(voiceItems)), pairs
}

// itemSimilarity blends an edit-distance ratio with the shared-token
// fraction of two item names, 60/40.
func itemSimilarity(voiceName, receiptName string) float64 {
	v := normalizeName(voiceName)
	r := normalizeName(receiptName)

	base := editRatio(v, r)

	vSet := tokenSet(v)
	rSet := tokenSet(r)
	wordSimilarity := 0.0
	if denom := math.Max(float64(len(vSet)), float64(len(rSet))); denom > 0 {
		common := 0
		for w := range vSet {
			if _, ok := rSet[w]; ok {
				common++
			}
		}
		wordSimilarity = float64(common) / denom
	}

	return base*0.6 + wordSimilarity*0.4
}

// editRatio is 1 minus the normalized Levenshtein distance, in runes.
func editRatio(a, b string) float64 {
	if a == b {
		return 1
	}

	ra := []rune(a)
	rb := []rune(b)
	maxLen := len(ra)
	if len(rb) > maxLen {
		maxLen = len(rb)
	}
	if maxLen == 0 {
		return 0
	}

	return 1 - float64(editDistance(ra, rb))/float64(maxLen)
}

// editDistance is the Levenshtein distance over rune slices.
func editDistance(a, b []rune) int {
	if len(a) == 0 {
		return len(b)
	}
	if len(b) == 0 {
		return len(a)
	}

	prev := make([]int, len(b)+1)
	curr := make([]int, len(b)+1)
	for j := 0; j <= len(b); j++ {
		prev[j] = j
	}

	for i := 1; i <= len(a); i++ {
		curr[0] = i
		for j := 1; j <= len(b); j++ {
			cost := 1
			if a[i-1] == b[j-1] {
				cost = 0
			}
			d := prev[j] + 1
			if ins := curr[j-1] + 1; ins < d {
				d = ins
			}
			if sub := prev[j-1] + cost; sub < d {
				d = sub
			}
			curr[j] = d
		}
		prev, curr = curr, prev
	}

	return prev[len(b)]
}

// priceMatch compares a spoken price to a printed one. Either side
// being unknown (zero) counts as agreement.
func priceMatch(voicePrice, receiptPrice decimal.Decimal) bool {
	if voicePrice.IsZero() || receiptPrice.IsZero() {
		return true
	}

	v, _ := voicePrice.Float64()
	r, _ := receiptPrice.Float64()
	diff := math.Abs(v-r) / math.Max(v, r)
	return diff <= priceTolerance
}

func tokenSet(s string) map[string]struct{} {
	set := make(map[string]struct{})
	for _, w := range strings.Fields(s) {
		set[w] = struct{}{}
	}
	return set
}

var nonNameChars = regexp.MustCompile(`[^\p{L}\p{N}_\s]`)

// normalizeName lowercases an item name and strips punctuation for
// comparison.
func normalizeName(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	s = nonNameChars.ReplaceAllString(s, " ")
	return strings.Join(strings.Fields(s), " ")
}
