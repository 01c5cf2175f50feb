package nlu

// CommandInfo describes one always-on command for help listings.
type CommandInfo struct {
	Intent      Intent `json:"type"`
	Example     string `json:"example"`
	Description string `json:"description"`
}

var commandDescriptions = map[Language]map[Intent]string{
	LangRussian: {
		IntentCreateCategory: "Создание новой категории расходов",
		IntentAddExpense:     "Добавление нового расхода",
		IntentShowBalance:    "Показать текущий баланс",
		IntentDeleteCategory: "Удаление категории",
		IntentManageDebt:     "Управление долгами",
		IntentShowStats:      "Показать статистику расходов",
	},
	LangUzbek: {
		IntentCreateCategory: "Yangi xarajat kategoriyasini yaratish",
		IntentAddExpense:     "Yangi xarajat qoʻshish",
		IntentShowBalance:    "Joriy balansni koʻrsatish",
		IntentDeleteCategory: "Kategoriyani oʻchirish",
		IntentManageDebt:     "Qarzlarni boshqarish",
		IntentShowStats:      "Xarajatlar statistikasini koʻrsatish",
	},
	LangEnglish: {
		IntentCreateCategory: "Create new expense category",
		IntentAddExpense:     "Add new expense",
		IntentShowBalance:    "Show current balance",
		IntentDeleteCategory: "Delete category",
		IntentManageDebt:     "Manage debts",
		IntentShowStats:      "Show expense statistics",
	},
}

// Examples are curated rather than derived from the templates: a stripped
// regex is not something a user can say out loud.
var commandExamples = map[Language]map[Intent]string{
	LangRussian: {
		IntentCreateCategory: "создай категорию продукты",
		IntentAddExpense:     "потратил на обед 25000 сум",
		IntentShowBalance:    "покажи баланс",
		IntentDeleteCategory: "удали категорию такси",
		IntentManageDebt:     "кто мне должен",
		IntentShowStats:      "покажи статистику",
	},
	LangUzbek: {
		IntentCreateCategory: "kategoriya oziq-ovqat qoʻsh",
		IntentAddExpense:     "tushlik uchun 25000 som sarfladim",
		IntentShowBalance:    "balansimni koʻrsat",
		IntentDeleteCategory: "kategoriya taksi oʻchir",
		IntentManageDebt:     "qarzlarni koʻrsat",
		IntentShowStats:      "statistikani koʻrsat",
	},
	LangEnglish: {
		IntentCreateCategory: "create category groceries",
		IntentAddExpense:     "spent lunch 25000 sum",
		IntentShowBalance:    "show balance",
		IntentDeleteCategory: "delete category taxi",
		IntentManageDebt:     "show debts",
		IntentShowStats:      "show stats",
	},
}

// SupportedCommands lists the base commands with localized descriptions
// and a speakable example each, in resolution order. Unknown languages
// fall back to Russian.
func SupportedCommands(lang Language) []CommandInfo {
	if !lang.Supported() {
		lang = LangRussian
	}

	out := make([]CommandInfo, 0, len(basePatterns))
	for _, grp := range basePatterns {
		out = append(out, CommandInfo{
			Intent:      grp.intent,
			Example:     commandExamples[lang][grp.intent],
			Description: commandDescriptions[lang][grp.intent],
		})
	}
	return out
}
