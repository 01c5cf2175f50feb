package nlu

import (
	"strings"
	"unicode/utf8"
)

// specificIntents get the larger specificity bonus: their templates are
// long and rarely fire by accident.
var specificIntents = map[Intent]bool{
	IntentCreateGoal:     true,
	IntentAddIncome:      true,
	IntentChangeCurrency: true,
	IntentCreateReminder: true,
	IntentTimeAnalytics:  true,
}

// baseConfidence scores a base-template match. Start at 0.7; a match that
// covers the whole normalized text adds 0.2, a template that defines the
// expected parameter groups adds 0.1, a supported language 0.05.
func baseConfidence(intent Intent, m []string, normalized string, lang Language) float64 {
	score := 0.7

	if m[0] == normalized {
		score += 0.2
	}

	switch intent {
	case IntentAddExpense, IntentManageDebt:
		if len(m)-1 >= 2 {
			score += 0.1
		}
	case IntentCreateCategory, IntentDeleteCategory:
		if len(m) > 1 && strings.TrimSpace(m[1]) != "" {
			score += 0.1
		}
	}

	if lang.Supported() {
		score += 0.05
	}

	return min(1.0, score)
}

// extendedConfidence scores an extended-template match. Start at 0.8;
// text coverage contributes up to 0.1, extracted parameters up to 0.15,
// and intent specificity 0.1 or 0.05.
func extendedConfidence(intent Intent, m []string, normalized string) float64 {
	score := 0.8

	if n := utf8.RuneCountInString(normalized); n > 0 {
		coverage := float64(utf8.RuneCountInString(m[0])) / float64(n)
		score += coverage * 0.1
	}

	params := 0
	for _, g := range m[1:] {
		if g != "" {
			params++
		}
	}
	score += min(float64(params)*0.05, 0.15)

	if specificIntents[intent] {
		score += 0.1
	} else {
		score += 0.05
	}

	return min(1.0, score)
}
