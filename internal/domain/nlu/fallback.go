package nlu

import (
	"strings"

	"github.com/shopspring/decimal"
)

// Transaction-verb vocabularies for the keyword fallback. A phrase like
// "потратил 5000 сум на хлеб" names the amount before the description and
// slips past every expense template, but the verb still gives the intent
// away.
var expenseKeywords = map[Language][]string{
	LangRussian: {
		"потратил", "трата", "купил", "заплатил", "оплатил", "потрачено",
		"расход", "израсходовал", "минус", "вычесть",
	},
	LangUzbek: {
		"sarfladim", "xarid", "toʻladim", "to'ladim", "chiqim",
	},
	LangEnglish: {
		"spent", "bought", "paid", "expense", "cost", "minus",
	},
}

var incomeKeywords = map[Language][]string{
	LangRussian: {
		"заработал", "получил", "доход", "зарплата", "прибыль",
		"заработок", "плюс", "пришло",
	},
	LangUzbek: {
		"topdim", "oldim", "daromad", "maosh",
	},
	LangEnglish: {
		"earned", "received", "income", "salary", "profit", "plus",
	},
}

// descriptionStopWords are dropped token-wise when deriving the expense
// description from free text.
var descriptionStopWords = map[string]bool{
	"потратил": true, "заплатил": true, "купил": true, "оплатил": true,
	"потрачено": true, "расход": true, "израсходовал": true, "трата": true,
	"сум": true, "руб": true, "рубль": true, "рублей": true, "₽": true,
	"доллар": true, "доллара": true, "долларов": true, "usd": true,
	"евро": true, "eur": true,
	"тысяч": true, "тысячи": true, "тысяча": true, "миллион": true,
	"на": true, "за": true, "в": true, "для": true,
	"som": true, "ming": true, "uchun": true, "sarfladim": true,
	"sotib": true, "oldim": true, "xarid": true,
	"spent": true, "bought": true, "paid": true, "for": true, "on": true,
	"sum": true, "dollars": true, "thousand": true,
}

// parseFallback recognizes free-form expense phrases that no template
// covers. It fires only when an expense verb and a positive amount are
// both present; income-leaning text is left to the income templates, and
// text without a transaction verb stays unclassified.
func (c *Classifier) parseFallback(raw, normalized string, lang Language) *ParsedCommand {
	expense := keywordScore(normalized, expenseKeywords[lang])
	income := keywordScore(normalized, incomeKeywords[lang])
	if expense == 0 || income > expense {
		return nil
	}

	ex, ok := ExtractAmount(normalized, lang, "UZS")
	if !ok || !ex.Amount.IsPositive() {
		return nil
	}

	cmd := &ParsedCommand{
		Intent:     IntentAddExpense,
		Language:   lang,
		Confidence: fallbackConfidence(ex.Amount),
		Slots: ExpenseSlots{
			Description: fallbackDescription(normalized),
			Amount:      ex.Amount,
			Currency:    ex.Currency,
		},
		Raw:        raw,
		Normalized: normalized,
		Pattern:    "fallback:transaction-keywords",
	}
	c.logger.Debug("fallback expense matched",
		"lang", lang, "amount", ex.Amount.String(), "confidence", cmd.Confidence)
	return cmd
}

func keywordScore(text string, words []string) int {
	score := 0
	for _, w := range words {
		if strings.Contains(text, w) {
			score++
		}
	}
	return score
}

// fallbackConfidence starts at 0.5, plus 0.2 for the transaction verb the
// gate already guarantees and 0.2 for a non-trivial amount.
func fallbackConfidence(amount decimal.Decimal) float64 {
	score := 0.5 + 0.2
	if amount.GreaterThan(decimal.NewFromInt(10)) {
		score += 0.2
	}
	return min(1.0, score)
}

// fallbackDescription strips amount tokens, currency words and
// transaction verbs, keeping what the money was spent on.
func fallbackDescription(normalized string) string {
	var kept []string
	for _, tok := range strings.Fields(normalized) {
		if descriptionStopWords[tok] {
			continue
		}
		if _, err := decimal.NewFromString(strings.ReplaceAll(tok, ",", ".")); err == nil {
			continue
		}
		kept = append(kept, tok)
	}
	return strings.Join(kept, " ")
}
