package command

import (
	"strings"

	"github.com/ovozpay/nlu-engine/internal/domain/nlu"
)

// Messages is a language-keyed table of user-facing templates with
// {param} placeholders. Every executor keeps its own table.
type Messages map[nlu.Language]map[string]string

// Format renders the template for key in lang. An unsupported language
// falls back to Russian, a missing key renders as the key itself, and a
// placeholder without a value stays literal.
func (m Messages) Format(lang nlu.Language, key string, params map[string]string) string {
	table, ok := m[lang]
	if !ok {
		table = m[nlu.LangRussian]
	}

	template, ok := table[key]
	if !ok {
		template = key
	}
	if len(params) == 0 {
		return template
	}

	pairs := make([]string, 0, len(params)*2)
	for name, value := range params {
		pairs = append(pairs, "{"+name+"}", value)
	}
	return strings.NewReplacer(pairs...).Replace(template)
}
