package nlu

import (
	"regexp"
	"strings"

	"github.com/shopspring/decimal"
)

// amountMultipliers are checked against the raw captured amount string in
// order; the first one found scales the parsed value.
var amountMultipliers = []struct {
	word   string
	factor int64
}{
	{"тысяч", 1_000},
	{"тыс", 1_000},
	{"к", 1_000},
	{"миллиард", 1_000_000_000},
	{"миллион", 1_000_000},
	{"млн", 1_000_000},
	{"ming", 1_000},
	{"milliard", 1_000_000_000},
	{"million", 1_000_000},
	{"thousand", 1_000},
	{"billion", 1_000_000_000},
}

var nonAmountChars = regexp.MustCompile(`[^\d.,\s]`)

// ParseAmount converts a captured amount string into a decimal value.
// Grouping spaces are dropped; a comma followed by exactly three digits is
// a thousands separator, one or two digits after a separator a decimal
// part. Multiplier words in the raw string scale the result. Malformed
// input yields zero, never an error.
func ParseAmount(raw string, lang Language) decimal.Decimal {
	cleaned := nonAmountChars.ReplaceAllString(raw, "")
	cleaned = strings.ReplaceAll(cleaned, " ", "")
	cleaned = resolveSeparators(cleaned)

	if cleaned == "" {
		return decimal.Zero
	}

	amount, err := decimal.NewFromString(cleaned)
	if err != nil {
		return decimal.Zero
	}

	lower := strings.ToLower(raw)
	for _, m := range amountMultipliers {
		if strings.Contains(lower, m.word) {
			amount = amount.Mul(decimal.NewFromInt(m.factor))
			break
		}
	}

	return amount
}

// resolveSeparators rewrites an amount to dot-decimal form. A comma
// followed by exactly three digits is grouping ("1,500"); one or two
// digits after the last comma are a decimal part ("1234,56"). A dot after
// the last comma makes the dot the decimal separator ("1,500.00").
func resolveSeparators(s string) string {
	lastComma := strings.LastIndex(s, ",")
	if lastComma == -1 {
		return s
	}
	if lastDot := strings.LastIndex(s, "."); lastDot > lastComma {
		return strings.ReplaceAll(s, ",", "")
	}
	tail := s[lastComma+1:]
	if len(tail) == 3 {
		return strings.ReplaceAll(s, ",", "")
	}
	head := strings.ReplaceAll(s[:lastComma], ",", "")
	head = strings.ReplaceAll(head, ".", "")
	return head + "." + tail
}

// numLit matches a grouped numeric literal plus an optional multiplier
// word, e.g. "5000", "10 000", "1,500.00", "5 тысяч". The \b keeps a
// leading slice of a longer digit run from matching on its own.
const numLit = `\d{1,3}(?:[\s,]?\d{3})*(?:[.,]\d{1,2})?\b` +
	`(?:\s*(?:тысяч(?:а|и)?|тыс|миллион(?:а|ов)?|млн|миллиард(?:а|ов)?|ming|million|milliard|thousand|billion))?`

// Currency regex families, most specific first. Bare numbers bind to the
// caller's base currency.
var currencyPatterns = []struct {
	re       *regexp.Regexp
	currency string
}{
	{regexp.MustCompile(`(?i)(` + numLit + `)\s*(?:руб|рубл(?:ей|я|ь)?|₽|rub)`), "RUB"},
	{regexp.MustCompile(`(?i)(` + numLit + `)\s*(?:сум|som|сом)`), "UZS"},
	{regexp.MustCompile(`(?i)(` + numLit + `)\s*(?:\$|доллар(?:ов|а)?|долл|usd|dollars?)`), "USD"},
	{regexp.MustCompile(`(?i)(` + numLit + `)\s*(?:€|евро|eur|euros?)`), "EUR"},
}

var bareNumber = regexp.MustCompile(numLit)

// currencyMarkers bind a word-numeral amount to a currency.
var currencyMarkers = []struct {
	word     string
	currency string
}{
	{"сум", "UZS"}, {"som", "UZS"}, {"сом", "UZS"},
	{"руб", "RUB"}, {"₽", "RUB"},
	{"долл", "USD"}, {"dollar", "USD"}, {"usd", "USD"}, {"$", "USD"},
	{"евро", "EUR"}, {"euro", "EUR"}, {"eur", "EUR"}, {"€", "EUR"},
}

// ExtractedAmount is one money expression found in text.
type ExtractedAmount struct {
	Amount     decimal.Decimal
	Currency   string
	Confidence float64
}

// ExtractAmount finds the first money expression in normalized text.
// Families are tried in priority order: spelled-out numerals, then
// currency-suffixed literals, then a bare number bound to baseCurrency.
// The first family yielding a positive amount wins.
func ExtractAmount(text string, lang Language, baseCurrency string) (ExtractedAmount, bool) {
	if v, ok := WordsToNumber(text, lang); ok && v.IsPositive() {
		return ExtractedAmount{
			Amount:     v,
			Currency:   markedCurrency(text, baseCurrency),
			Confidence: 0.9,
		}, true
	}

	for _, fam := range currencyPatterns {
		for _, m := range fam.re.FindAllStringSubmatch(text, -1) {
			amount := ParseAmount(m[1], lang)
			if amount.IsPositive() {
				return ExtractedAmount{Amount: amount, Currency: fam.currency, Confidence: 0.9}, true
			}
		}
	}

	for _, m := range bareNumber.FindAllString(text, -1) {
		amount := ParseAmount(m, lang)
		if amount.IsPositive() {
			return ExtractedAmount{Amount: amount, Currency: baseCurrency, Confidence: 0.6}, true
		}
	}

	return ExtractedAmount{Currency: baseCurrency}, false
}

// markedCurrency returns the currency named anywhere in the text, or the
// base currency if none is.
func markedCurrency(text, baseCurrency string) string {
	for _, m := range currencyMarkers {
		if strings.Contains(text, m.word) {
			return m.currency
		}
	}
	return baseCurrency
}
