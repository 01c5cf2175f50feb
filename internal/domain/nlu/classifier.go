package nlu

import (
	"log/slog"
	"strings"
)

// Classifier turns transcribed user text into a ParsedCommand. It is
// stateless and safe for concurrent use; all pattern tables are package
// data compiled at init.
type Classifier struct {
	logger *slog.Logger
}

func NewClassifier(logger *slog.Logger) *Classifier {
	if logger == nil {
		logger = slog.Default()
	}
	return &Classifier{logger: logger}
}

// Parse classifies text under the user's declared language. Extended
// templates are consulted first and only for the declared language, so a
// specific phrasing ("покажи расходы за март") wins over a base one
// ("мои расходы"). Base templates then run for the declared language and
// fall back to the other locales, covering misdetected input. Last comes
// the keyword fallback for free-form expense phrases. Returns nil when
// nothing matches.
func (c *Classifier) Parse(text string, lang Language) *ParsedCommand {
	if strings.TrimSpace(text) == "" {
		return nil
	}

	normalized := Normalize(text)
	if normalized == "" {
		return nil
	}

	if cmd := c.parseExtended(text, normalized, lang); cmd != nil {
		return cmd
	}
	if cmd := c.parseBase(text, normalized, lang); cmd != nil {
		return cmd
	}
	if cmd := c.parseFallback(text, normalized, lang); cmd != nil {
		return cmd
	}

	c.logger.Debug("no command matched", "lang", lang, "len", len(normalized))
	return nil
}

func (c *Classifier) parseExtended(raw, normalized string, lang Language) *ParsedCommand {
	for _, grp := range extendedPatterns {
		for _, pat := range grp.patterns[lang] {
			m := pat.re.FindStringSubmatch(normalized)
			if m == nil {
				continue
			}

			cmd := &ParsedCommand{
				Intent:     grp.intent,
				Language:   lang,
				Confidence: extendedConfidence(grp.intent, m, normalized),
				Slots:      RawSlots{Groups: m[1:]},
				Raw:        raw,
				Normalized: normalized,
				Pattern:    pat.src,
				Groups:     m[1:],
			}
			c.logger.Debug("extended command matched",
				"intent", cmd.Intent, "lang", lang, "confidence", cmd.Confidence)
			return cmd
		}
	}
	return nil
}

func (c *Classifier) parseBase(raw, normalized string, lang Language) *ParsedCommand {
	for _, grp := range basePatterns {
		for _, l := range orderedLanguages(lang) {
			for _, pat := range grp.patterns[l] {
				m := pat.re.FindStringSubmatch(normalized)
				if m == nil {
					continue
				}

				cmd := &ParsedCommand{
					Intent:     grp.intent,
					Language:   lang,
					Confidence: baseConfidence(grp.intent, m, normalized, lang),
					Slots:      baseSlots(grp.intent, m, normalized, l),
					Raw:        raw,
					Normalized: normalized,
					Pattern:    pat.src,
					Groups:     m[1:],
				}
				c.logger.Debug("command matched",
					"intent", cmd.Intent, "lang", lang, "matched_lang", l,
					"confidence", cmd.Confidence)
				return cmd
			}
		}
	}
	return nil
}

// baseSlots builds the typed parameter record for a base-intent match.
// Listing intents carry no slots.
func baseSlots(intent Intent, m []string, normalized string, matched Language) Slots {
	switch intent {
	case IntentCreateCategory, IntentDeleteCategory:
		return CategorySlots{Name: strings.TrimSpace(m[1])}

	case IntentAddExpense:
		return ExpenseSlots{
			Description: strings.TrimSpace(m[1]),
			Amount:      ParseAmount(amountSpan(m), matched),
			Currency:    markedCurrency(normalized, "UZS"),
		}

	case IntentManageDebt:
		// Only the "долг <кто> <сумма>" template captures anything; the
		// listing templates have no groups.
		if len(m) > 2 && strings.TrimSpace(m[1]) != "" {
			return DebtSlots{
				Person: strings.TrimSpace(m[1]),
				Amount: ParseAmount(amountSpan(m), matched),
			}
		}
		return DebtSlots{}
	}
	return nil
}

// amountSpan widens the captured amount to the end of the match so a
// trailing multiplier word is not lost: "25 тысяч" must parse as 25000,
// not 25. The amount group is the last numeric run of every template, so
// the last occurrence is the right anchor.
func amountSpan(m []string) string {
	if i := strings.LastIndex(m[0], m[2]); i >= 0 {
		return m[0][i:]
	}
	return m[2]
}
