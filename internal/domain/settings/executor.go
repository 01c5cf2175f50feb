// Package settings executes the preference commands: switching the
// account currency and interface language and toggling notification
// groups.
package settings

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/uuid"

	"github.com/ovozpay/nlu-engine/internal/domain/command"
	"github.com/ovozpay/nlu-engine/internal/domain/nlu"
)

const (
	defaultCurrency = "UZS"
	defaultLanguage = "ru"
)

// currencyCodes maps spoken currency names to ISO codes, per command
// language.
var currencyCodes = map[nlu.Language]map[string]string{
	nlu.LangRussian: {
		"сум":           "UZS",
		"узбекский сум": "UZS",
		"доллар":        "USD",
		"долларов":      "USD",
		"рубль":         "RUB",
		"рублей":        "RUB",
		"евро":          "EUR",
	},
	nlu.LangUzbek: {
		"som":          "UZS",
		"oʻzbek somi":  "UZS",
		"dollar":       "USD",
		"rubl":         "RUB",
		"evro":         "EUR",
	},
	nlu.LangEnglish: {
		"sum":       "UZS",
		"uzbek sum": "UZS",
		"dollar":    "USD",
		"dollars":   "USD",
		"ruble":     "RUB",
		"rubles":    "RUB",
		"euro":      "EUR",
	},
}

// currencyNames renders an ISO code back into the reply language.
var currencyNames = map[nlu.Language]map[string]string{
	nlu.LangRussian: {"UZS": "сум", "USD": "доллар", "RUB": "рубль", "EUR": "евро"},
	nlu.LangUzbek:   {"UZS": "som", "USD": "dollar", "RUB": "rubl", "EUR": "evro"},
	nlu.LangEnglish: {"UZS": "sum", "USD": "dollar", "RUB": "ruble", "EUR": "euro"},
}

var languageCodes = map[nlu.Language]map[string]nlu.Language{
	nlu.LangRussian: {
		"русский":    nlu.LangRussian,
		"узбекский":  nlu.LangUzbek,
		"английский": nlu.LangEnglish,
	},
	nlu.LangUzbek: {
		"rus":    nlu.LangRussian,
		"oʻzbek": nlu.LangUzbek,
		"ingliz": nlu.LangEnglish,
	},
	nlu.LangEnglish: {
		"russian": nlu.LangRussian,
		"uzbek":   nlu.LangUzbek,
		"english": nlu.LangEnglish,
	},
}

var languageNames = map[nlu.Language]map[nlu.Language]string{
	nlu.LangRussian: {nlu.LangRussian: "русский", nlu.LangUzbek: "узбекский", nlu.LangEnglish: "английский"},
	nlu.LangUzbek:   {nlu.LangRussian: "rus", nlu.LangUzbek: "oʻzbek", nlu.LangEnglish: "ingliz"},
	nlu.LangEnglish: {nlu.LangRussian: "Russian", nlu.LangUzbek: "Uzbek", nlu.LangEnglish: "English"},
}

var messages = command.Messages{
	nlu.LangRussian: {
		"currency_changed":            "Валюта изменена на {currency}",
		"language_changed":            "Язык изменен на {language}",
		"unsupported_currency":        `Валюта "{currency}" не поддерживается`,
		"unsupported_language":        `Язык "{language}" не поддерживается`,
		"notification_settings":       "Текущие настройки уведомлений",
		"notifications_enabled":       `Уведомления "{type}" включены`,
		"notifications_disabled":      `Уведомления "{type}" отключены`,
		"currency_not_understood":     "Не удалось распознать команду изменения валюты",
		"language_not_understood":     "Не удалось распознать команду изменения языка",
		"notifications_not_understood": "Не удалось распознать команду управления уведомлениями",
	},
	nlu.LangUzbek: {
		"currency_changed":            "Valyuta {currency}ga oʻzgartirildi",
		"language_changed":            "Til {language}ga oʻzgartirildi",
		"unsupported_currency":        `"{currency}" valyutasi qoʻllab-quvvatlanmaydi`,
		"unsupported_language":        `"{language}" tili qoʻllab-quvvatlanmaydi`,
		"notification_settings":       "Hozirgi bildirishnoma sozlamalari",
		"notifications_enabled":       `"{type}" bildirishnomalari yoqildi`,
		"notifications_disabled":      `"{type}" bildirishnomalari oʻchirildi`,
		"currency_not_understood":     "Valyutani oʻzgartirish buyrugʻini aniqlab boʻlmadi",
		"language_not_understood":     "Tilni oʻzgartirish buyrugʻini aniqlab boʻlmadi",
		"notifications_not_understood": "Bildirishnomalarni boshqarish buyrugʻini aniqlab boʻlmadi",
	},
	nlu.LangEnglish: {
		"currency_changed":            "Currency changed to {currency}",
		"language_changed":            "Language changed to {language}",
		"unsupported_currency":        `Currency "{currency}" is not supported`,
		"unsupported_language":        `Language "{language}" is not supported`,
		"notification_settings":       "Current notification settings",
		"notifications_enabled":       `"{type}" notifications enabled`,
		"notifications_disabled":      `"{type}" notifications disabled`,
		"currency_not_understood":     "Could not understand the currency command",
		"language_not_understood":     "Could not understand the language command",
		"notifications_not_understood": "Could not understand the notification command",
	},
}

// showPhrases route a manage_notifications command to the settings view.
var showPhrases = []string{
	"настрой уведомления",
	"покажи настройки уведомлений",
	"bildirishnomalar sozlamalari",
	"notification settings",
}

// actionWords are capture values that name the toggle direction rather
// than a notification group.
var actionWords = map[string]bool{
	"включи": true, "отключи": true,
	"on": true, "off": true,
	"yoq": true, "yoqish": true,
}

// Executor handles the preference intents.
type Executor struct {
	store  Store
	logger *slog.Logger
}

func NewExecutor(store Store, logger *slog.Logger) *Executor {
	if logger == nil {
		logger = slog.Default()
	}
	return &Executor{store: store, logger: logger}
}

func (e *Executor) Intents() []nlu.Intent {
	return []nlu.Intent{nlu.IntentChangeCurrency, nlu.IntentChangeLanguage, nlu.IntentManageNotifications}
}

// Execute routes one parsed command to its operation.
func (e *Executor) Execute(ctx context.Context, userID uuid.UUID, cmd *nlu.ParsedCommand) command.Result {
	switch cmd.Intent {
	case nlu.IntentChangeCurrency:
		return e.changeCurrency(ctx, userID, cmd)
	case nlu.IntentChangeLanguage:
		return e.changeLanguage(ctx, userID, cmd)
	case nlu.IntentManageNotifications:
		return e.manageNotifications(ctx, userID, cmd)
	default:
		return command.Fail("unknown command type")
	}
}

func (e *Executor) changeCurrency(ctx context.Context, userID uuid.UUID, cmd *nlu.ParsedCommand) command.Result {
	slots, _ := cmd.Slots.(nlu.RawSlots)
	if len(slots.Groups) == 0 {
		return command.Fail(messages.Format(cmd.Language, "currency_not_understood", nil))
	}
	name := strings.ToLower(strings.TrimSpace(slots.Groups[0]))

	code, ok := currencyCodes[cmd.Language][name]
	if !ok {
		return command.Fail(messages.Format(cmd.Language, "unsupported_currency", map[string]string{"currency": name}))
	}

	old := defaultCurrency
	if current, err := e.store.Get(ctx, userID); err != nil {
		return command.Fail(fmt.Sprintf("get settings: %v", err))
	} else if current != nil {
		old = current.Currency
	}

	if err := e.store.SetCurrency(ctx, userID, code); err != nil {
		return command.Fail(fmt.Sprintf("change currency: %v", err))
	}

	e.logger.Info("currency changed", "user_id", userID, "old", old, "new", code)

	display := code
	if n, ok := currencyNames[cmd.Language][code]; ok {
		display = n
	}
	return command.OKData(
		messages.Format(cmd.Language, "currency_changed", map[string]string{"currency": display}),
		map[string]any{"old_currency": old, "new_currency": code},
	)
}

// changeLanguage answers in the language just selected, so the user
// hears the switch take effect immediately.
func (e *Executor) changeLanguage(ctx context.Context, userID uuid.UUID, cmd *nlu.ParsedCommand) command.Result {
	slots, _ := cmd.Slots.(nlu.RawSlots)
	if len(slots.Groups) == 0 {
		return command.Fail(messages.Format(cmd.Language, "language_not_understood", nil))
	}
	name := strings.ToLower(strings.TrimSpace(slots.Groups[0]))

	newLang, ok := languageCodes[cmd.Language][name]
	if !ok {
		return command.Fail(messages.Format(cmd.Language, "unsupported_language", map[string]string{"language": name}))
	}

	old := defaultLanguage
	if current, err := e.store.Get(ctx, userID); err != nil {
		return command.Fail(fmt.Sprintf("get settings: %v", err))
	} else if current != nil {
		old = current.Language
	}

	if err := e.store.SetLanguage(ctx, userID, string(newLang)); err != nil {
		return command.Fail(fmt.Sprintf("change language: %v", err))
	}

	e.logger.Info("language changed", "user_id", userID, "old", old, "new", string(newLang))

	return command.OKData(
		messages.Format(newLang, "language_changed", map[string]string{"language": languageNames[newLang][newLang]}),
		map[string]any{"old_language": old, "new_language": string(newLang)},
	)
}

func (e *Executor) manageNotifications(ctx context.Context, userID uuid.UUID, cmd *nlu.ParsedCommand) command.Result {
	for _, phrase := range showPhrases {
		if strings.Contains(cmd.Normalized, phrase) {
			return e.showNotifications(ctx, userID, cmd.Language)
		}
	}

	enable, ok := notificationAction(cmd.Normalized, cmd.Language)
	if !ok {
		return command.Fail(messages.Format(cmd.Language, "notifications_not_understood", nil))
	}

	slots, _ := cmd.Slots.(nlu.RawSlots)
	spoken := spokenGroup(slots.Groups)
	return e.toggleNotifications(ctx, userID, cmd.Language, spoken, enable)
}

func (e *Executor) showNotifications(ctx context.Context, userID uuid.UUID, lang nlu.Language) command.Result {
	settings := &Settings{Currency: defaultCurrency, Language: defaultLanguage}
	if current, err := e.store.Get(ctx, userID); err != nil {
		return command.Fail(fmt.Sprintf("get settings: %v", err))
	} else if current != nil {
		settings = current
	}

	n, err := e.store.GetNotifications(ctx, userID)
	if err != nil {
		return command.Fail(fmt.Sprintf("get notification settings: %v", err))
	}

	return command.OKData(messages.Format(lang, "notification_settings", nil), map[string]any{
		"settings": map[string]any{
			"reminders_enabled": n.Reminders,
			"goals_enabled":     n.Goals,
			"debts_enabled":     n.Debts,
			"analytics_enabled": n.Analytics,
		},
		"language": settings.Language,
		"currency": settings.Currency,
	})
}

func (e *Executor) toggleNotifications(ctx context.Context, userID uuid.UUID, lang nlu.Language, spoken string, enable bool) command.Result {
	n, err := e.store.GetNotifications(ctx, userID)
	if err != nil {
		return command.Fail(fmt.Sprintf("get notification settings: %v", err))
	}

	var fields []string
	switch {
	case containsAny(spoken, "напомин", "eslatma", "reminder"):
		n.Reminders = enable
		fields = []string{"reminders"}
	case containsAny(spoken, "цел", "maqsad", "goal"):
		n.Goals = enable
		fields = []string{"goals"}
	case containsAny(spoken, "долг", "qarz", "debt"):
		n.Debts = enable
		fields = []string{"debts"}
	case containsAny(spoken, "аналитик", "statistika", "analytic"):
		n.Analytics = enable
		fields = []string{"analytics"}
	default:
		n = Notifications{Reminders: enable, Goals: enable, Debts: enable, Analytics: enable}
		fields = []string{"all"}
		if spoken == "" {
			spoken = allWord(lang)
		}
	}

	if err := e.store.SetNotifications(ctx, userID, n); err != nil {
		return command.Fail(fmt.Sprintf("update notification settings: %v", err))
	}

	action := "disable"
	key := "notifications_disabled"
	if enable {
		action = "enable"
		key = "notifications_enabled"
	}

	e.logger.Info("notifications updated", "user_id", userID, "action", action, "fields", fields)

	return command.OKData(
		messages.Format(lang, key, map[string]string{"type": spoken}),
		map[string]any{"action": action, "notification_type": spoken, "updated_fields": fields},
	)
}

// notificationAction reads the toggle direction out of the spoken text.
func notificationAction(normalized string, lang nlu.Language) (enable, ok bool) {
	switch lang {
	case nlu.LangUzbek:
		if strings.Contains(normalized, "oʻchir") {
			return false, true
		}
		if strings.Contains(normalized, "yoq") {
			return true, true
		}
	case nlu.LangEnglish:
		if strings.Contains(normalized, "disable") || strings.Contains(normalized, "turn off") {
			return false, true
		}
		if strings.Contains(normalized, "enable") || strings.Contains(normalized, "turn on") {
			return true, true
		}
	default:
		if strings.Contains(normalized, "отключи") {
			return false, true
		}
		if strings.Contains(normalized, "включи") {
			return true, true
		}
	}
	return false, false
}

// spokenGroup picks the notification group name out of the captures,
// skipping captures that carry the toggle direction instead.
func spokenGroup(groups []string) string {
	for _, g := range groups {
		g = strings.TrimSpace(g)
		if g != "" && !actionWords[strings.ToLower(g)] {
			return g
		}
	}
	return ""
}

func allWord(lang nlu.Language) string {
	switch lang {
	case nlu.LangUzbek:
		return "hammasi"
	case nlu.LangEnglish:
		return "all"
	default:
		return "все"
	}
}

func containsAny(s string, subs ...string) bool {
	lower := strings.ToLower(s)
	for _, sub := range subs {
		if strings.Contains(lower, sub) {
			return true
		}
	}
	return false
}
