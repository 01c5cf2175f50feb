package nlu

import (
	"regexp"
	"strings"
)

// Abbreviation expansions applied per token. Expansion is token-wise so
// that letters inside regular words are never rewritten.
var tokenExpansions = map[string]string{
	"тыс":  "тысяч",
	"тыс.": "тысяч",
	"т.":   "тысяч",
	"млн":  "миллион",
	"млн.": "миллион",
	"руб":  "рублей",
	"руб.": "рублей",
}

// attachedMultiplier splits forms like "5к", "20тыс" and "3млн" into a
// number token and a multiplier word.
var attachedMultiplier = regexp.MustCompile(`^(\d+(?:[.,]\d+)?)(к|тыс\.?|млн\.?|ming|k)$`)

// Normalize lowercases the input, collapses whitespace, trims sentence
// punctuation and expands amount abbreviations. A standalone "к" is left
// alone: it is a preposition far more often than a multiplier. Empty
// output is valid.
func Normalize(text string) string {
	text = strings.ToLower(strings.TrimSpace(text))
	text = strings.TrimRight(text, ".!?")

	fields := strings.Fields(text)
	out := make([]string, 0, len(fields))

	for _, tok := range fields {
		if repl, ok := tokenExpansions[tok]; ok {
			out = append(out, repl)
			continue
		}

		if m := attachedMultiplier.FindStringSubmatch(tok); m != nil {
			out = append(out, m[1])
			switch m[2] {
			case "млн", "млн.":
				out = append(out, "миллион")
			case "ming":
				out = append(out, "ming")
			default:
				out = append(out, "тысяч")
			}
			continue
		}

		out = append(out, tok)
	}

	return strings.Join(out, " ")
}
