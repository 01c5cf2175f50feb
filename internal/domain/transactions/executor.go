// Package transactions executes the base spending commands: category
// administration, expenses, balance and the 30-day statistics report.
package transactions

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/ovozpay/nlu-engine/internal/domain/categorization"
	"github.com/ovozpay/nlu-engine/internal/domain/command"
	"github.com/ovozpay/nlu-engine/internal/domain/nlu"
)

// statsWindow is how far back the statistics report looks.
const statsWindow = 30 * 24 * time.Hour

// defaultCurrency applies when a command names no currency.
const defaultCurrency = "UZS"

// Categorizer resolves a free-text expense description to a category.
// Satisfied by categorization.Service.
type Categorizer interface {
	Resolve(ctx context.Context, userID uuid.UUID, itemName, shopName string) (*categorization.Resolution, error)
}

var messages = command.Messages{
	nlu.LangRussian: {
		"category_name_missing":     "Название категории не указано",
		"category_exists":           `Категория "{name}" уже существует`,
		"category_created":          `Категория "{name}" успешно создана`,
		"invalid_expense":           "Не удалось распознать данные расхода",
		"expense_added":             `Расход "{description}" ({amount}) добавлен`,
		"balance":                   "Ваш текущий баланс: {balance}",
		"category_not_found":        `Категория "{name}" не найдена`,
		"category_has_transactions": `В категории "{name}" есть транзакции ({count}), её нельзя удалить`,
		"category_deleted":          `Категория "{name}" удалена`,
		"stats":                     "Статистика за последние 30 дней",
	},
	nlu.LangUzbek: {
		"category_name_missing":     "Kategoriya nomi koʻrsatilmagan",
		"category_exists":           `"{name}" kategoriyasi allaqachon mavjud`,
		"category_created":          `"{name}" kategoriyasi muvaffaqiyatli yaratildi`,
		"invalid_expense":           "Xarajat maʼlumotlarini aniqlab boʻlmadi",
		"expense_added":             `"{description}" xarajati ({amount}) qoʻshildi`,
		"balance":                   "Sizning joriy balansingiz: {balance}",
		"category_not_found":        `"{name}" kategoriyasi topilmadi`,
		"category_has_transactions": `"{name}" kategoriyasida tranzaksiyalar bor ({count}), uni oʻchirib boʻlmaydi`,
		"category_deleted":          `"{name}" kategoriyasi oʻchirildi`,
		"stats":                     "Soʻnggi 30 kun statistikasi",
	},
	nlu.LangEnglish: {
		"category_name_missing":     "Category name not provided",
		"category_exists":           `Category "{name}" already exists`,
		"category_created":          `Category "{name}" created successfully`,
		"invalid_expense":           "Invalid expense data",
		"expense_added":             `Expense "{description}" ({amount}) added successfully`,
		"balance":                   "Your current balance is {balance}",
		"category_not_found":        `Category "{name}" not found`,
		"category_has_transactions": `Category "{name}" has {count} transactions and cannot be deleted`,
		"category_deleted":          `Category "{name}" deleted successfully`,
		"stats":                     "Statistics for the last 30 days",
	},
}

// Executor runs the base spending commands against the store.
type Executor struct {
	store       Store
	categorizer Categorizer
	logger      *slog.Logger
}

// NewExecutor creates the spending command executor.
func NewExecutor(store Store, categorizer Categorizer, logger *slog.Logger) *Executor {
	if logger == nil {
		logger = slog.Default()
	}
	return &Executor{store: store, categorizer: categorizer, logger: logger}
}

// Intents lists the commands this executor handles.
func (e *Executor) Intents() []nlu.Intent {
	return []nlu.Intent{
		nlu.IntentCreateCategory,
		nlu.IntentAddExpense,
		nlu.IntentShowBalance,
		nlu.IntentDeleteCategory,
		nlu.IntentShowStats,
	}
}

// Execute routes one parsed command to its operation.
func (e *Executor) Execute(ctx context.Context, userID uuid.UUID, cmd *nlu.ParsedCommand) command.Result {
	switch cmd.Intent {
	case nlu.IntentCreateCategory:
		return e.createCategory(ctx, userID, cmd)
	case nlu.IntentAddExpense:
		return e.addExpense(ctx, userID, cmd)
	case nlu.IntentShowBalance:
		return e.showBalance(ctx, userID, cmd.Language)
	case nlu.IntentDeleteCategory:
		return e.deleteCategory(ctx, userID, cmd)
	case nlu.IntentShowStats:
		return e.showStats(ctx, userID, cmd.Language)
	default:
		return command.Fail("unknown command type")
	}
}

func (e *Executor) createCategory(ctx context.Context, userID uuid.UUID, cmd *nlu.ParsedCommand) command.Result {
	slots, _ := cmd.Slots.(nlu.CategorySlots)
	name := strings.TrimSpace(slots.Name)
	if name == "" {
		return command.Fail(messages.Format(cmd.Language, "category_name_missing", nil))
	}

	existing, err := e.store.CategoryByExactName(ctx, userID, name)
	if err != nil {
		return command.Fail(fmt.Sprintf("check category: %v", err))
	}
	if existing != nil {
		return command.Result{
			Err:  messages.Format(cmd.Language, "category_exists", map[string]string{"name": name}),
			Data: map[string]any{"category_id": existing.ID.String()},
		}
	}

	cat, err := e.store.CreateCategory(ctx, userID, name)
	if err != nil {
		return command.Fail(fmt.Sprintf("create category: %v", err))
	}

	e.logger.Info("category created",
		slog.String("user_id", userID.String()),
		slog.String("name", cat.Name))

	return command.OKData(
		messages.Format(cmd.Language, "category_created", map[string]string{"name": name}),
		map[string]any{
			"category_id":   cat.ID.String(),
			"category_name": cat.Name,
		},
	)
}

func (e *Executor) addExpense(ctx context.Context, userID uuid.UUID, cmd *nlu.ParsedCommand) command.Result {
	slots, _ := cmd.Slots.(nlu.ExpenseSlots)
	description := strings.TrimSpace(slots.Description)
	if description == "" || !slots.Amount.IsPositive() {
		return command.Fail(messages.Format(cmd.Language, "invalid_expense", nil))
	}

	res, err := e.categorizer.Resolve(ctx, userID, description, "")
	if err != nil {
		return command.Fail(fmt.Sprintf("resolve category: %v", err))
	}
	if res.Category == nil {
		return command.Fail(messages.Format(cmd.Language, "invalid_expense", nil))
	}

	currency := slots.Currency
	if currency == "" {
		currency = defaultCurrency
	}

	categoryID := res.Category.ID
	tx := &Transaction{
		ID:          uuid.New(),
		UserID:      userID,
		CategoryID:  &categoryID,
		Amount:      slots.Amount.Abs().Neg(),
		Currency:    currency,
		Description: description,
		OccurredAt:  time.Now(),
	}
	if err := e.store.Create(ctx, tx); err != nil {
		return command.Fail(fmt.Sprintf("create transaction: %v", err))
	}

	e.logger.Info("expense added",
		slog.String("user_id", userID.String()),
		slog.String("category", res.Category.Name),
		slog.String("amount", slots.Amount.String()),
		slog.String("strategy", string(res.Strategy)))

	return command.OKData(
		messages.Format(cmd.Language, "expense_added", map[string]string{
			"description": description,
			"amount":      slots.Amount.String(),
		}),
		map[string]any{
			"transaction_id": tx.ID.String(),
			"category":       res.Category.Name,
			"amount":         slots.Amount.String(),
		},
	)
}

func (e *Executor) showBalance(ctx context.Context, userID uuid.UUID, lang nlu.Language) command.Result {
	balance, err := e.store.Balance(ctx, userID)
	if err != nil {
		return command.Fail(fmt.Sprintf("could not calculate balance: %v", err))
	}

	return command.OKData(
		messages.Format(lang, "balance", map[string]string{"balance": balance.String()}),
		map[string]any{"balance": balance.String()},
	)
}

func (e *Executor) deleteCategory(ctx context.Context, userID uuid.UUID, cmd *nlu.ParsedCommand) command.Result {
	slots, _ := cmd.Slots.(nlu.CategorySlots)
	name := strings.TrimSpace(slots.Name)
	if name == "" {
		return command.Fail(messages.Format(cmd.Language, "category_name_missing", nil))
	}

	cat, err := e.store.CategoryByName(ctx, userID, name)
	if err != nil {
		return command.Fail(fmt.Sprintf("find category: %v", err))
	}
	if cat == nil {
		return command.Fail(messages.Format(cmd.Language, "category_not_found", map[string]string{"name": name}))
	}

	count, err := e.store.CountByCategory(ctx, cat.ID)
	if err != nil {
		return command.Fail(fmt.Sprintf("count transactions: %v", err))
	}
	if count > 0 {
		return command.Fail(messages.Format(cmd.Language, "category_has_transactions", map[string]string{
			"name":  name,
			"count": strconv.Itoa(count),
		}))
	}

	if err := e.store.DeleteCategory(ctx, cat.ID); err != nil {
		return command.Fail(fmt.Sprintf("delete category: %v", err))
	}

	e.logger.Info("category deleted",
		slog.String("user_id", userID.String()),
		slog.String("name", cat.Name))

	// The response names the category that was actually deleted, which
	// may be longer than what the user said.
	return command.OK(messages.Format(cmd.Language, "category_deleted", map[string]string{"name": cat.Name}))
}

func (e *Executor) showStats(ctx context.Context, userID uuid.UUID, lang nlu.Language) command.Result {
	since := time.Now().Add(-statsWindow)

	stats, err := e.store.Stats(ctx, userID, since)
	if err != nil {
		return command.Fail(fmt.Sprintf("could not generate statistics: %v", err))
	}

	categories := make([]map[string]any, 0, len(stats.Categories))
	for _, c := range stats.Categories {
		categories = append(categories, map[string]any{
			"category": c.Category,
			"total":    c.Total.String(),
			"count":    c.Count,
		})
	}

	return command.OKData(
		messages.Format(lang, "stats", nil),
		map[string]any{
			"total_spent":       stats.TotalSpent.String(),
			"transaction_count": stats.Count,
			"categories":        categories,
		},
	)
}
