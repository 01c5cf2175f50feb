package reconcile

import (
	"regexp"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/shopspring/decimal"

	"github.com/ovozpay/nlu-engine/internal/domain/nlu"
)

// Extractor pulls purchase items and spoken totals out of recognized
// voice text. Pattern tables are compiled once at construction; unknown
// languages fall back to the Russian tables.
type Extractor struct {
	items     map[nlu.Language][]*regexp.Regexp
	totals    map[nlu.Language][]*regexp.Regexp
	thousands map[nlu.Language][]*regexp.Regexp
	digits    *regexp.Regexp
}

// NewExtractor compiles the extraction tables.
func NewExtractor() *Extractor {
	compile := func(table map[nlu.Language][]string) map[nlu.Language][]*regexp.Regexp {
		out := make(map[nlu.Language][]*regexp.Regexp, len(table))
		for lang, patterns := range table {
			res := make([]*regexp.Regexp, 0, len(patterns))
			for _, p := range patterns {
				res = append(res, regexp.MustCompile(p))
			}
			out[lang] = res
		}
		return out
	}

	return &Extractor{
		items: compile(map[nlu.Language][]string{
			nlu.LangRussian: {
				`(?i)([\p{L}\p{N}_\s]+?)\s+(?:за\s+)?(\d+(?:\s*тысяч?)?(?:\s*\d+)?)\s*сум`,
				`(?i)([\p{L}\p{N}_\s]+?)\s+(\d+(?:\s*тысяч?)?(?:\s*\d+)?)`,
				`(?i)купил\s+([\p{L}\p{N}_\s]+?)(?:\s+за\s+(\d+(?:\s*тысяч?)?(?:\s*\d+)?)\s*сум)?`,
				`(?i)взял\s+([\p{L}\p{N}_\s]+?)(?:\s+за\s+(\d+(?:\s*тысяч?)?(?:\s*\d+)?)\s*сум)?`,
			},
			nlu.LangUzbek: {
				`(?i)([\p{L}\p{N}_\s]+?)\s+(\d+(?:\s*ming)?(?:\s*\d+)?)\s*sum`,
				`(?i)sotib\s+oldim\s+([\p{L}\p{N}_\s]+?)(?:\s+(\d+(?:\s*ming)?(?:\s*\d+)?)\s*sum)?`,
			},
			nlu.LangEnglish: {
				`(?i)([\p{L}\p{N}_\s]+?)\s+(\d+(?:\s*thousand)?(?:\s*\d+)?)\s*sum`,
				`(?i)bought\s+([\p{L}\p{N}_\s]+?)(?:\s+for\s+(\d+(?:\s*thousand)?(?:\s*\d+)?)\s*sum)?`,
			},
		}),
		totals: compile(map[nlu.Language][]string{
			nlu.LangRussian: {
				`(?i)всего\s+(\d+(?:\s*тысяч?)?(?:\s*\d+)?)\s*сум`,
				`(?i)итого\s+(\d+(?:\s*тысяч?)?(?:\s*\d+)?)\s*сум`,
				`(?i)потратил\s+(\d+(?:\s*тысяч?)?(?:\s*\d+)?)\s*сум`,
				`(?i)заплатил\s+(\d+(?:\s*тысяч?)?(?:\s*\d+)?)\s*сум`,
			},
			nlu.LangUzbek: {
				`(?i)jami\s+(\d+(?:\s*ming)?(?:\s*\d+)?)\s*sum`,
				`(?i)tolash\s+(\d+(?:\s*ming)?(?:\s*\d+)?)\s*sum`,
			},
			nlu.LangEnglish: {
				`(?i)total\s+(\d+(?:\s*thousand)?(?:\s*\d+)?)\s*sum`,
				`(?i)paid\s+(\d+(?:\s*thousand)?(?:\s*\d+)?)\s*sum`,
			},
		}),
		thousands: compile(map[nlu.Language][]string{
			nlu.LangRussian: {
				`(?i)(\d+)\s*тысяч?\s*(\d+)?`,
				`(?i)(\d+)\s*т\s*(\d+)?`,
			},
			nlu.LangUzbek: {
				`(?i)(\d+)\s*ming\s*(\d+)?`,
			},
			nlu.LangEnglish: {
				`(?i)(\d+)\s*thousand\s*(\d+)?`,
			},
		}),
		digits: regexp.MustCompile(`\d+`),
	}
}

// langPatterns picks the pattern list for a language, Russian when the
// language has no list of its own.
func langPatterns(table map[nlu.Language][]*regexp.Regexp, lang nlu.Language) []*regexp.Regexp {
	if patterns, ok := table[lang]; ok {
		return patterns
	}
	return table[nlu.LangRussian]
}

// Items extracts purchase mentions from voice text. Every pattern runs
// over the whole text, so one phrase can yield duplicate items; names
// of one or two letters are discarded as pattern noise.
func (e *Extractor) Items(text string, lang nlu.Language) []VoiceItem {
	lowered := strings.ToLower(text)

	var items []VoiceItem
	for _, re := range langPatterns(e.items, lang) {
		for _, m := range re.FindAllStringSubmatch(lowered, -1) {
			name := strings.TrimSpace(m[1])
			if utf8.RuneCountInString(name) <= 2 {
				continue
			}

			priceStr := "0"
			if len(m) > 2 && m[2] != "" {
				priceStr = m[2]
			}

			items = append(items, VoiceItem{
				Name:       name,
				Price:      e.parsePrice(priceStr, lang),
				Quantity:   1,
				Confidence: 0.8,
			})
		}
	}

	return items
}

// Total extracts the spoken receipt total. The first matching pattern
// wins; zero means no total was spoken.
func (e *Extractor) Total(text string, lang nlu.Language) decimal.Decimal {
	lowered := strings.ToLower(text)

	for _, re := range langPatterns(e.totals, lang) {
		if m := re.FindStringSubmatch(lowered); m != nil {
			return e.parsePrice(m[1], lang)
		}
	}

	return decimal.Zero
}

// parsePrice reads a price fragment, resolving spoken thousands
// ("60 тысяч 500" -> 60500) before falling back to the first bare
// number.
func (e *Extractor) parsePrice(s string, lang nlu.Language) decimal.Decimal {
	if s == "" {
		return decimal.Zero
	}
	s = strings.Join(strings.Fields(s), " ")

	for _, re := range langPatterns(e.thousands, lang) {
		m := re.FindStringSubmatch(s)
		if m == nil {
			continue
		}
		thousands, err := strconv.ParseInt(m[1], 10, 64)
		if err != nil {
			continue
		}
		var remainder int64
		if m[2] != "" {
			if remainder, err = strconv.ParseInt(m[2], 10, 64); err != nil {
				remainder = 0
			}
		}
		return decimal.NewFromInt(thousands*1000 + remainder)
	}

	if m := e.digits.FindString(s); m != "" {
		if n, err := decimal.NewFromString(m); err == nil {
			return n
		}
	}

	return decimal.Zero
}
