// Package sources executes the income source commands: creating,
// listing, renaming and deactivating sources plus recording income
// against them.
package sources

import (
	"context"
	"fmt"
	"log/slog"
	"regexp"
	"strconv"
	"strings"

	"github.com/google/uuid"

	"github.com/ovozpay/nlu-engine/internal/domain/command"
	"github.com/ovozpay/nlu-engine/internal/domain/nlu"
)

var messages = command.Messages{
	nlu.LangRussian: {
		"no_sources":                  "У вас пока нет источников доходов",
		"sources_list":                "У вас {count} источников доходов",
		"source_not_found":            `Источник "{name}" не найден`,
		"source_exists":               `Источник "{name}" уже существует`,
		"source_created":              `Источник дохода "{name}" создан`,
		"source_deleted":              `Источник "{name}" удален`,
		"source_deleted_transactions": `Источник "{name}" удален (было {transactions} транзакций)`,
		"source_renamed":              `Источник "{old_name}" переименован в "{new_name}"`,
		"income_added":                `Добавлен доход {amount} от источника "{source}"`,
		"amount_not_recognized":       "Не удалось распознать сумму",
		"create_not_understood":       "Не удалось распознать команду создания источника",
		"manage_not_understood":       "Не удалось распознать команду управления источниками",
		"income_not_understood":       "Не удалось распознать команду добавления дохода",
	},
	nlu.LangUzbek: {
		"no_sources":                  "Sizda hali daromad manbalari yoq",
		"sources_list":                "Sizda {count} ta daromad manbasi bor",
		"source_not_found":            `"{name}" manbasi topilmadi`,
		"source_exists":               `"{name}" manbasi allaqachon mavjud`,
		"source_created":              `"{name}" daromad manbasi yaratildi`,
		"source_deleted":              `"{name}" manbasi oʻchirildi`,
		"source_deleted_transactions": `"{name}" manbasi oʻchirildi`,
		"source_renamed":              `"{old_name}" manbasi "{new_name}" ga oʻzgartirildi`,
		"income_added":                `"{source}" manbasidan {amount} daromad qoʻshildi`,
		"amount_not_recognized":       "Summani aniqlab boʻlmadi",
		"create_not_understood":       "Manba yaratish buyrugʻini aniqlab boʻlmadi",
		"manage_not_understood":       "Manbalarni boshqarish buyrugʻini aniqlab boʻlmadi",
		"income_not_understood":       "Daromad qoʻshish buyrugʻini aniqlab boʻlmadi",
	},
	nlu.LangEnglish: {
		"no_sources":                  "You have no income sources yet",
		"sources_list":                "You have {count} income sources",
		"source_not_found":            `Source "{name}" not found`,
		"source_exists":               `Source "{name}" already exists`,
		"source_created":              `Income source "{name}" created`,
		"source_deleted":              `Source "{name}" deleted`,
		"source_deleted_transactions": `Source "{name}" deleted`,
		"source_renamed":              `Source "{old_name}" renamed to "{new_name}"`,
		"income_added":                `Added income {amount} from source "{source}"`,
		"amount_not_recognized":       "Could not recognize the amount",
		"create_not_understood":       "Could not understand the source creation command",
		"manage_not_understood":       "Could not understand the source management command",
		"income_not_understood":       "Could not understand the income command",
	},
}

type sourceAction int

const (
	sourceShow sourceAction = iota
	sourceDelete
	sourceRename
)

type sourceRoute struct {
	re     *regexp.Regexp
	action sourceAction
}

// sourceRoutes resolves a manage_sources command to one of its
// operations. Order matters: the listing phrases must win before the
// delete patterns get a chance to swallow them.
var sourceRoutes = []sourceRoute{
	{regexp.MustCompile(`покажи.*источники|мои источники|источники доходов|manbalarni.*koʻrsat|daromad manbalari|show.*sources|income sources`), sourceShow},
	{regexp.MustCompile(`удали источник\s+(.+)`), sourceDelete},
	{regexp.MustCompile(`(.+?)\s+manbani\s+oʻchir`), sourceDelete},
	{regexp.MustCompile(`delete source\s+(.+)`), sourceDelete},
	{regexp.MustCompile(`переименуй источник\s+(.+?)\s+в\s+(.+)`), sourceRename},
}

// Executor handles the income source intents.
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
	return []nlu.Intent{nlu.IntentCreateSource, nlu.IntentManageSources, nlu.IntentAddIncome}
}

// Execute routes one parsed command to its operation.
func (e *Executor) Execute(ctx context.Context, userID uuid.UUID, cmd *nlu.ParsedCommand) command.Result {
	switch cmd.Intent {
	case nlu.IntentCreateSource:
		return e.createSource(ctx, userID, cmd)
	case nlu.IntentManageSources:
		return e.manageSources(ctx, userID, cmd)
	case nlu.IntentAddIncome:
		return e.addIncome(ctx, userID, cmd)
	default:
		return command.Fail("unknown command type")
	}
}

func (e *Executor) createSource(ctx context.Context, userID uuid.UUID, cmd *nlu.ParsedCommand) command.Result {
	slots, _ := cmd.Slots.(nlu.RawSlots)
	if len(slots.Groups) == 0 {
		return command.Fail(messages.Format(cmd.Language, "create_not_understood", nil))
	}
	name := strings.TrimSpace(slots.Groups[0])
	if name == "" {
		return command.Fail(messages.Format(cmd.Language, "create_not_understood", nil))
	}

	existing, err := e.store.FindExact(ctx, userID, name)
	if err != nil {
		return command.Fail(fmt.Sprintf("find source: %v", err))
	}
	if existing != nil {
		return command.Fail(messages.Format(cmd.Language, "source_exists", map[string]string{"name": name}))
	}

	source := &Source{
		ID:       uuid.New(),
		UserID:   userID,
		Name:     name,
		IsActive: true,
	}
	if err := e.store.Create(ctx, source); err != nil {
		return command.Fail(fmt.Sprintf("create source: %v", err))
	}

	e.logger.Info("source created", "user_id", userID, "source_id", source.ID, "name", name)

	return command.OKData(
		messages.Format(cmd.Language, "source_created", map[string]string{"name": name}),
		map[string]any{"source_id": source.ID.String(), "name": name},
	)
}

// manageSources re-parses the normalized text against the operation
// routes because a single intent covers listing, deletion and renames.
func (e *Executor) manageSources(ctx context.Context, userID uuid.UUID, cmd *nlu.ParsedCommand) command.Result {
	for _, route := range sourceRoutes {
		m := route.re.FindStringSubmatch(cmd.Normalized)
		if m == nil {
			continue
		}
		switch route.action {
		case sourceShow:
			return e.showSources(ctx, userID, cmd.Language)
		case sourceDelete:
			return e.deleteSource(ctx, userID, strings.TrimSpace(m[1]), cmd.Language)
		case sourceRename:
			return e.renameSource(ctx, userID, strings.TrimSpace(m[1]), strings.TrimSpace(m[2]), cmd.Language)
		}
	}
	return command.Fail(messages.Format(cmd.Language, "manage_not_understood", nil))
}

func (e *Executor) showSources(ctx context.Context, userID uuid.UUID, lang nlu.Language) command.Result {
	stats, err := e.store.ListStats(ctx, userID)
	if err != nil {
		return command.Fail(fmt.Sprintf("list sources: %v", err))
	}
	if len(stats) == 0 {
		return command.OKData(
			messages.Format(lang, "no_sources", nil),
			map[string]any{"sources": []map[string]any{}},
		)
	}

	rows := make([]map[string]any, 0, len(stats))
	for _, st := range stats {
		row := map[string]any{
			"id":                 st.Source.ID.String(),
			"name":               st.Source.Name,
			"total_income":       st.TotalIncome.String(),
			"last_income_date":   nil,
			"last_income_amount": nil,
		}
		if st.LastDate != nil {
			row["last_income_date"] = st.LastDate.Format("2006-01-02")
		}
		if st.LastAmount != nil {
			row["last_income_amount"] = st.LastAmount.String()
		}
		rows = append(rows, row)
	}

	return command.OKData(
		messages.Format(lang, "sources_list", map[string]string{"count": strconv.Itoa(len(rows))}),
		map[string]any{"sources": rows},
	)
}

// deleteSource deactivates the source. Linked transactions never block
// the removal, their count only enriches the confirmation.
func (e *Executor) deleteSource(ctx context.Context, userID uuid.UUID, name string, lang nlu.Language) command.Result {
	source, err := e.store.FindByName(ctx, userID, name)
	if err != nil {
		return command.Fail(fmt.Sprintf("find source: %v", err))
	}
	if source == nil {
		return command.Fail(messages.Format(lang, "source_not_found", map[string]string{"name": name}))
	}

	count, err := e.store.CountTransactions(ctx, source.ID)
	if err != nil {
		return command.Fail(fmt.Sprintf("count source transactions: %v", err))
	}

	if err := e.store.Deactivate(ctx, source.ID); err != nil {
		return command.Fail(fmt.Sprintf("delete source: %v", err))
	}

	e.logger.Info("source deleted", "user_id", userID, "source_id", source.ID, "transactions", count)

	key := "source_deleted"
	if count > 0 {
		key = "source_deleted_transactions"
	}
	return command.OKData(
		messages.Format(lang, key, map[string]string{
			"name":         source.Name,
			"transactions": strconv.Itoa(count),
		}),
		map[string]any{"source_id": source.ID.String()},
	)
}

func (e *Executor) renameSource(ctx context.Context, userID uuid.UUID, oldName, newName string, lang nlu.Language) command.Result {
	source, err := e.store.FindByName(ctx, userID, oldName)
	if err != nil {
		return command.Fail(fmt.Sprintf("find source: %v", err))
	}
	if source == nil {
		return command.Fail(messages.Format(lang, "source_not_found", map[string]string{"name": oldName}))
	}

	existing, err := e.store.FindExact(ctx, userID, newName)
	if err != nil {
		return command.Fail(fmt.Sprintf("find source: %v", err))
	}
	if existing != nil && existing.ID != source.ID {
		return command.Fail(messages.Format(lang, "source_exists", map[string]string{"name": newName}))
	}

	oldDisplay := source.Name
	if err := e.store.Rename(ctx, source.ID, newName); err != nil {
		return command.Fail(fmt.Sprintf("rename source: %v", err))
	}

	e.logger.Info("source renamed", "user_id", userID, "source_id", source.ID, "old_name", oldDisplay, "new_name", newName)

	return command.OKData(
		messages.Format(lang, "source_renamed", map[string]string{
			"old_name": oldDisplay,
			"new_name": newName,
		}),
		map[string]any{"source_id": source.ID.String(), "new_name": newName},
	)
}

// addIncome records income against a source, creating the source on the
// fly when no active one matches the spoken name. Group order varies by
// phrasing, so the digit-looking group is the amount.
func (e *Executor) addIncome(ctx context.Context, userID uuid.UUID, cmd *nlu.ParsedCommand) command.Result {
	slots, _ := cmd.Slots.(nlu.RawSlots)
	groups := slots.Groups
	if len(groups) < 2 {
		return command.Fail(messages.Format(cmd.Language, "income_not_understood", nil))
	}

	amountStr, name := groups[0], groups[1]
	if !command.Numeric(amountStr) {
		amountStr, name = groups[1], groups[0]
	}
	name = strings.TrimSpace(name)

	amount, ok := command.ParseAmount(amountStr)
	if !ok || amount.IsZero() {
		return command.Fail(messages.Format(cmd.Language, "amount_not_recognized", nil))
	}

	source, err := e.store.FindByName(ctx, userID, name)
	if err != nil {
		return command.Fail(fmt.Sprintf("find source: %v", err))
	}
	if source == nil {
		source = &Source{
			ID:       uuid.New(),
			UserID:   userID,
			Name:     name,
			IsActive: true,
		}
		if err := e.store.Create(ctx, source); err != nil {
			return command.Fail(fmt.Sprintf("create source: %v", err))
		}
	}

	txID, err := e.store.CreateIncome(ctx, userID, source.ID, amount, "Доход от "+source.Name)
	if err != nil {
		return command.Fail(fmt.Sprintf("add income: %v", err))
	}

	e.logger.Info("income added",
		"user_id", userID, "source_id", source.ID,
		"transaction_id", txID, "amount", amount.String())

	return command.OKData(
		messages.Format(cmd.Language, "income_added", map[string]string{
			"amount": amount.String(),
			"source": source.Name,
		}),
		map[string]any{
			"transaction_id": txID.String(),
			"source_id":      source.ID.String(),
			"amount":         amount.String(),
			"source_name":    source.Name,
		},
	)
}
