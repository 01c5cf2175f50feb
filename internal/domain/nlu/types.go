// Package nlu turns recognized speech or typed text into structured
// assistant commands. Classification is pattern-table driven across
// Russian, Uzbek and English; tables are compiled once at construction
// and never mutated.
package nlu

import (
	"github.com/shopspring/decimal"
)

// Language is a supported locale tag.
type Language string

const (
	LangRussian Language = "ru"
	LangUzbek   Language = "uz"
	LangEnglish Language = "en"
)

// languageOrder fixes iteration order when trying patterns of languages
// other than the declared one.
var languageOrder = []Language{LangRussian, LangUzbek, LangEnglish}

// Supported reports whether l is one of the assistant's locales.
func (l Language) Supported() bool {
	switch l {
	case LangRussian, LangUzbek, LangEnglish:
		return true
	}
	return false
}

// orderedLanguages returns the declared language first, then the remaining
// supported languages in fixed order. Covers misdetected input language.
func orderedLanguages(declared Language) []Language {
	out := make([]Language, 0, len(languageOrder))
	if declared.Supported() {
		out = append(out, declared)
	}
	for _, l := range languageOrder {
		if l != declared {
			out = append(out, l)
		}
	}
	return out
}

// Intent is a classified user goal.
type Intent string

// Base intents.
const (
	IntentNone           Intent = ""
	IntentCreateCategory Intent = "create_category"
	IntentAddExpense     Intent = "add_expense"
	IntentShowBalance    Intent = "show_balance"
	IntentDeleteCategory Intent = "delete_category"
	IntentManageDebt     Intent = "manage_debt"
	IntentShowStats      Intent = "show_stats"
)

// Extended intents.
const (
	IntentCreateGoal          Intent = "create_goal"
	IntentManageGoals         Intent = "manage_goals"
	IntentCreateSource        Intent = "create_source"
	IntentManageSources       Intent = "manage_sources"
	IntentAddIncome           Intent = "add_income"
	IntentChangeCurrency      Intent = "change_currency"
	IntentChangeLanguage      Intent = "change_language"
	IntentManageNotifications Intent = "manage_notifications"
	IntentCreateReminder      Intent = "create_reminder"
	IntentManageReminders     Intent = "manage_reminders"
	IntentTimeAnalytics       Intent = "time_based_analytics"
	IntentCategoryAnalytics   Intent = "category_analytics"
	IntentComparisonAnalytics Intent = "comparison_analytics"
	IntentCreateDebt          Intent = "create_debt"
	IntentManageDebts         Intent = "manage_debts"
)

// Slots is the typed parameter record of a classified command. Base intents
// carry a concrete variant; extended intents carry RawSlots, since their
// executors re-parse the full text with domain-scoped grammars.
type Slots interface {
	slots()
}

// CategorySlots holds the category name of create/delete category commands.
type CategorySlots struct {
	Name string
}

// ExpenseSlots holds parameters of an add-expense command.
type ExpenseSlots struct {
	Description string
	Amount      decimal.Decimal
	Currency    string
}

// DebtSlots holds parameters of a debt command. Person and Amount are zero
// for listing requests ("who owes me").
type DebtSlots struct {
	Person string
	Amount decimal.Decimal
}

// RawSlots carries the positional capture groups of an extended command.
type RawSlots struct {
	Groups []string
}

func (CategorySlots) slots() {}
func (ExpenseSlots) slots()  {}
func (DebtSlots) slots()     {}
func (RawSlots) slots()      {}

// ParsedCommand is the classifier's output: one intent with its slots and
// a heuristic confidence. A nil *ParsedCommand is the "no intent" sentinel.
type ParsedCommand struct {
	Intent     Intent
	Language   Language
	Confidence float64
	Slots      Slots

	// Raw is the original input, Normalized the text patterns ran against.
	Raw        string
	Normalized string
	// Pattern is the source of the winning pattern, Groups its captures.
	Pattern string
	Groups  []string
}

// Extended reports whether the intent belongs to the extended families
// whose executors re-parse the raw text.
func (i Intent) Extended() bool {
	switch i {
	case IntentCreateGoal, IntentManageGoals,
		IntentCreateSource, IntentManageSources, IntentAddIncome,
		IntentChangeCurrency, IntentChangeLanguage, IntentManageNotifications,
		IntentCreateReminder, IntentManageReminders,
		IntentTimeAnalytics, IntentCategoryAnalytics, IntentComparisonAnalytics,
		IntentCreateDebt, IntentManageDebts:
		return true
	}
	return false
}
