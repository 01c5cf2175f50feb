package command

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ovozpay/nlu-engine/internal/domain/nlu"
)

type stubExecutor struct {
	intents []nlu.Intent
	result  Result
	calls   []*nlu.ParsedCommand
	users   []uuid.UUID
}

func (s *stubExecutor) Intents() []nlu.Intent { return s.intents }

func (s *stubExecutor) Execute(_ context.Context, userID uuid.UUID, cmd *nlu.ParsedCommand) Result {
	s.calls = append(s.calls, cmd)
	s.users = append(s.users, userID)
	return s.result
}

// TestMessages_Format exercises template rendering and its fallbacks.
func TestMessages_Format(t *testing.T) {
	table := Messages{
		nlu.LangRussian: {
			"created": `Категория "{name}" создана`,
			"partial": "Осталось {remaining} из {total}",
		},
		nlu.LangEnglish: {
			"created": `Category "{name}" created`,
		},
	}

	t.Run("replaces placeholders", func(t *testing.T) {
		got := table.Format(nlu.LangRussian, "created", map[string]string{"name": "Продукты"})
		assert.Equal(t, `Категория "Продукты" создана`, got)
	})

	t.Run("several placeholders", func(t *testing.T) {
		got := table.Format(nlu.LangRussian, "partial", map[string]string{
			"remaining": "4000", "total": "10000",
		})
		assert.Equal(t, "Осталось 4000 из 10000", got)
	})

	t.Run("unknown language falls back to russian", func(t *testing.T) {
		got := table.Format(nlu.Language("de"), "created", map[string]string{"name": "X"})
		assert.Equal(t, `Категория "X" создана`, got)
	})

	t.Run("missing key renders as itself", func(t *testing.T) {
		assert.Equal(t, "no_such_key", table.Format(nlu.LangRussian, "no_such_key", nil))
	})

	t.Run("placeholder without a value stays literal", func(t *testing.T) {
		got := table.Format(nlu.LangRussian, "partial", map[string]string{"remaining": "4000"})
		assert.Equal(t, "Осталось 4000 из {total}", got)
	})

	t.Run("nil params", func(t *testing.T) {
		got := table.Format(nlu.LangEnglish, "created", nil)
		assert.Equal(t, `Category "{name}" created`, got)
	})
}

// TestUnrecognized checks the localized no-intent reply.
func TestUnrecognized(t *testing.T) {
	assert.Equal(t, "Не удалось распознать команду. Попробуйте сказать иначе", Unrecognized(nlu.LangRussian).Err)
	assert.Equal(t, "Buyruqni aniqlab boʻlmadi. Boshqacha aytib koʻring", Unrecognized(nlu.LangUzbek).Err)
	assert.Equal(t, "Could not understand the command. Try saying it differently", Unrecognized(nlu.LangEnglish).Err)
	assert.Equal(t, Unrecognized(nlu.LangRussian).Err, Unrecognized(nlu.Language("de")).Err)
	assert.False(t, Unrecognized(nlu.LangRussian).Success)
}

// TestDispatcher_Dispatch checks routing, result passthrough and the
// fallback replies.
func TestDispatcher_Dispatch(t *testing.T) {
	userID := uuid.New()

	t.Run("routes to the registered executor", func(t *testing.T) {
		balance := &stubExecutor{
			intents: []nlu.Intent{nlu.IntentShowBalance, nlu.IntentShowStats},
			result:  OKData("Ваш баланс 100000 сум", map[string]any{"balance": "100000"}),
		}
		expense := &stubExecutor{
			intents: []nlu.Intent{nlu.IntentAddExpense},
			result:  OK("Расход добавлен"),
		}
		d := NewDispatcher(nil, balance, expense)

		cmd := &nlu.ParsedCommand{
			Intent:     nlu.IntentShowBalance,
			Language:   nlu.LangRussian,
			Confidence: 0.95,
			Raw:        "покажи баланс",
		}
		result := d.Dispatch(context.Background(), userID, cmd)

		assert.True(t, result.Success)
		assert.Equal(t, "Ваш баланс 100000 сум", result.Message)
		assert.Equal(t, "100000", result.Data["balance"])
		require.Len(t, balance.calls, 1)
		assert.Same(t, cmd, balance.calls[0])
		assert.Equal(t, userID, balance.users[0])
		assert.Empty(t, expense.calls)
	})

	t.Run("failed result passes through", func(t *testing.T) {
		exec := &stubExecutor{
			intents: []nlu.Intent{nlu.IntentDeleteCategory},
			result:  Fail(`Категория "такси" не найдена`),
		}
		d := NewDispatcher(nil, exec)

		result := d.Dispatch(context.Background(), userID, &nlu.ParsedCommand{
			Intent:   nlu.IntentDeleteCategory,
			Language: nlu.LangRussian,
		})

		assert.False(t, result.Success)
		assert.Equal(t, `Категория "такси" не найдена`, result.Err)
	})

	t.Run("no executor registered", func(t *testing.T) {
		d := NewDispatcher(nil)

		result := d.Dispatch(context.Background(), userID, &nlu.ParsedCommand{
			Intent:   nlu.IntentCreateGoal,
			Language: nlu.LangUzbek,
		})

		assert.False(t, result.Success)
		assert.Equal(t, "Bu buyruq hali qoʻllab-quvvatlanmaydi", result.Err)
	})

	t.Run("nil command", func(t *testing.T) {
		d := NewDispatcher(nil)

		result := d.Dispatch(context.Background(), userID, nil)

		assert.False(t, result.Success)
		assert.Equal(t, Unrecognized(nlu.LangRussian).Err, result.Err)
	})

	t.Run("empty intent keeps the command language", func(t *testing.T) {
		d := NewDispatcher(nil)

		result := d.Dispatch(context.Background(), userID, &nlu.ParsedCommand{
			Intent:   nlu.IntentNone,
			Language: nlu.LangEnglish,
		})

		assert.Equal(t, Unrecognized(nlu.LangEnglish).Err, result.Err)
	})

	t.Run("later registration wins", func(t *testing.T) {
		first := &stubExecutor{intents: []nlu.Intent{nlu.IntentShowBalance}, result: OK("first")}
		second := &stubExecutor{intents: []nlu.Intent{nlu.IntentShowBalance}, result: OK("second")}
		d := NewDispatcher(nil, first, second)

		result := d.Dispatch(context.Background(), userID, &nlu.ParsedCommand{
			Intent:   nlu.IntentShowBalance,
			Language: nlu.LangRussian,
		})

		assert.Equal(t, "second", result.Message)
		assert.Empty(t, first.calls)
	})
}

// TestDispatcher_Supports checks intent registration lookups.
func TestDispatcher_Supports(t *testing.T) {
	d := NewDispatcher(nil, &stubExecutor{intents: []nlu.Intent{nlu.IntentAddExpense}})

	assert.True(t, d.Supports(nlu.IntentAddExpense))
	assert.False(t, d.Supports(nlu.IntentCreateGoal))
}
