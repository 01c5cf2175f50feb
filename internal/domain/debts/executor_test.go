package debts

import (
	"context"
	"errors"
	"sort"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ovozpay/nlu-engine/internal/domain/nlu"
)

var testNow = time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)

type fakeDebtStore struct {
	mu    sync.Mutex
	debts []Debt

	createErr  error
	listErr    error
	overdueErr error
	findErr    error
	payErr     error
	closeErr   error
}

func (f *fakeDebtStore) add(userID uuid.UUID, person string, amount, paid int64, direction, status string, due *time.Time) uuid.UUID {
	f.mu.Lock()
	defer f.mu.Unlock()
	id := uuid.New()
	f.debts = append(f.debts, Debt{
		ID:         id,
		UserID:     userID,
		PersonName: person,
		Amount:     decimal.NewFromInt(amount),
		PaidAmount: decimal.NewFromInt(paid),
		Direction:  direction,
		Status:     status,
		DueDate:    due,
	})
	return id
}

func (f *fakeDebtStore) outstanding(d *Debt, userID uuid.UUID) bool {
	return d.UserID == userID && (d.Status == StatusOpen || d.Status == StatusPartial)
}

func (f *fakeDebtStore) Create(_ context.Context, debt *Debt) error {
	if f.createErr != nil {
		return f.createErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.debts = append(f.debts, *debt)
	return nil
}

func (f *fakeDebtStore) ListOutstanding(_ context.Context, userID uuid.UUID, direction string) ([]Debt, error) {
	if f.listErr != nil {
		return nil, f.listErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []Debt
	for i := range f.debts {
		d := &f.debts[i]
		if f.outstanding(d, userID) && d.Direction == direction {
			out = append(out, *d)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		di, dj := out[i].DueDate, out[j].DueDate
		if di == nil || dj == nil {
			return dj == nil && di != nil
		}
		return di.Before(*dj)
	})
	return out, nil
}

func (f *fakeDebtStore) ListOverdue(_ context.Context, userID uuid.UUID, asOf time.Time) ([]Debt, error) {
	if f.overdueErr != nil {
		return nil, f.overdueErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []Debt
	for i := range f.debts {
		d := &f.debts[i]
		if f.outstanding(d, userID) && d.DueDate != nil && d.DueDate.Before(asOf) {
			out = append(out, *d)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].DueDate.Before(*out[j].DueDate) })
	return out, nil
}

func (f *fakeDebtStore) FindOutstanding(_ context.Context, userID uuid.UUID, person string) (*Debt, error) {
	if f.findErr != nil {
		return nil, f.findErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	needle := strings.ToLower(person)
	for i := range f.debts {
		d := &f.debts[i]
		if f.outstanding(d, userID) && strings.Contains(strings.ToLower(d.PersonName), needle) {
			copied := *d
			return &copied, nil
		}
	}
	return nil, nil
}

func (f *fakeDebtStore) AddPayment(_ context.Context, debtID uuid.UUID, amount decimal.Decimal) (*Debt, error) {
	if f.payErr != nil {
		return nil, f.payErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	for i := range f.debts {
		d := &f.debts[i]
		if d.ID != debtID {
			continue
		}
		d.PaidAmount = d.PaidAmount.Add(amount)
		if d.PaidAmount.GreaterThanOrEqual(d.Amount) {
			d.Status = StatusClosed
		} else {
			d.Status = StatusPartial
		}
		copied := *d
		return &copied, nil
	}
	return nil, errors.New("debt not found")
}

func (f *fakeDebtStore) Close(_ context.Context, debtID uuid.UUID) (*Debt, error) {
	if f.closeErr != nil {
		return nil, f.closeErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	for i := range f.debts {
		d := &f.debts[i]
		if d.ID != debtID {
			continue
		}
		d.PaidAmount = d.Amount
		d.Status = StatusClosed
		copied := *d
		return &copied, nil
	}
	return nil, errors.New("debt not found")
}

func newTestExecutor(store *fakeDebtStore) *Executor {
	e := NewExecutor(store, nil)
	e.now = func() time.Time { return testNow }
	return e
}

func debtCmd(intent nlu.Intent, lang nlu.Language, normalized string, groups ...string) *nlu.ParsedCommand {
	return &nlu.ParsedCommand{
		Intent:     intent,
		Language:   lang,
		Normalized: normalized,
		Slots:      nlu.RawSlots{Groups: groups},
	}
}

func baseDebtCmd(lang nlu.Language, normalized string, slots nlu.DebtSlots) *nlu.ParsedCommand {
	return &nlu.ParsedCommand{
		Intent:     nlu.IntentManageDebt,
		Language:   lang,
		Normalized: normalized,
		Slots:      slots,
	}
}

func datePtr(year int, month time.Month, day int) *time.Time {
	t := time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
	return &t
}

// TestExecutor_Intents pins the claimed debt intents.
func TestExecutor_Intents(t *testing.T) {
	e := NewExecutor(&fakeDebtStore{}, nil)

	intents := e.Intents()
	assert.Len(t, intents, 3)
	assert.Contains(t, intents, nlu.IntentManageDebt)
	assert.Contains(t, intents, nlu.IntentCreateDebt)
	assert.Contains(t, intents, nlu.IntentManageDebts)
}

// TestExecutor_CreateDebt covers directions, group order and due dates.
func TestExecutor_CreateDebt(t *testing.T) {
	userID := uuid.New()

	t.Run("lent with relative due date", func(t *testing.T) {
		store := &fakeDebtStore{}
		e := newTestExecutor(store)

		res := e.Execute(context.Background(), userID,
			debtCmd(nlu.IntentCreateDebt, nlu.LangRussian, "дал в долг алишеру 50000 до завтра",
				"алишеру", "50000", "завтра"))

		require.True(t, res.Success)
		assert.Equal(t, "Долг добавлен: алишеру 50000 до 11.03.2025", res.Message)
		assert.Equal(t, DirectionLent, res.Data["debt_type"])
		assert.Equal(t, "2025-03-11", res.Data["due_date"])

		require.Len(t, store.debts, 1)
		d := store.debts[0]
		assert.Equal(t, "алишеру", d.PersonName)
		assert.Equal(t, "50000", d.Amount.String())
		assert.Equal(t, StatusOpen, d.Status)
		require.NotNil(t, d.DueDate)
		assert.Equal(t, time.Date(2025, 3, 11, 0, 0, 0, 0, time.UTC), *d.DueDate)
	})

	t.Run("borrowed", func(t *testing.T) {
		store := &fakeDebtStore{}
		e := newTestExecutor(store)

		res := e.Execute(context.Background(), userID,
			debtCmd(nlu.IntentCreateDebt, nlu.LangRussian, "взял в долг у коли 200000",
				"коли", "200000"))

		require.True(t, res.Success)
		assert.Equal(t, "Долг добавлен: коли 200000", res.Message)
		assert.Equal(t, DirectionBorrowed, res.Data["debt_type"])
		assert.Nil(t, res.Data["due_date"])
		assert.Equal(t, DirectionBorrowed, store.debts[0].Direction)
	})

	t.Run("english borrowed captures amount first", func(t *testing.T) {
		store := &fakeDebtStore{}
		e := newTestExecutor(store)

		res := e.Execute(context.Background(), userID,
			debtCmd(nlu.IntentCreateDebt, nlu.LangEnglish, "borrowed 5000 from john until tomorrow",
				"5000", "john", "tomorrow"))

		require.True(t, res.Success)
		assert.Equal(t, "Debt added: john 5000", res.Message)
		assert.Equal(t, "john", res.Data["person_name"])
		assert.Equal(t, "5000", res.Data["amount"])
		assert.Equal(t, DirectionBorrowed, res.Data["debt_type"])
		assert.Equal(t, "2025-03-11", res.Data["due_date"])
	})

	t.Run("uzbek lent", func(t *testing.T) {
		store := &fakeDebtStore{}
		e := newTestExecutor(store)

		res := e.Execute(context.Background(), userID,
			debtCmd(nlu.IntentCreateDebt, nlu.LangUzbek, "akamga 100000 qarz berdim",
				"akam", "100000"))

		require.True(t, res.Success)
		assert.Equal(t, "Qarz qoʻshildi: akam 100000", res.Message)
		assert.Equal(t, DirectionLent, res.Data["debt_type"])
	})

	t.Run("explicit due date", func(t *testing.T) {
		store := &fakeDebtStore{}
		e := newTestExecutor(store)

		res := e.Execute(context.Background(), userID,
			debtCmd(nlu.IntentCreateDebt, nlu.LangRussian, "добавь долг санжару 75000 до 25.12",
				"санжару", "75000", "25.12"))

		require.True(t, res.Success)
		assert.Equal(t, "Долг добавлен: санжару 75000 до 25.12.2025", res.Message)
		assert.Equal(t, "2025-12-25", res.Data["due_date"])
	})

	t.Run("invalid date dropped silently", func(t *testing.T) {
		store := &fakeDebtStore{}
		e := newTestExecutor(store)

		res := e.Execute(context.Background(), userID,
			debtCmd(nlu.IntentCreateDebt, nlu.LangRussian, "добавь долг ивану 10000 до 31.02",
				"ивану", "10000", "31.02"))

		require.True(t, res.Success)
		assert.Equal(t, "Долг добавлен: ивану 10000", res.Message)
		assert.Nil(t, res.Data["due_date"])
		assert.Nil(t, store.debts[0].DueDate)
	})

	t.Run("amount not recognized", func(t *testing.T) {
		e := newTestExecutor(&fakeDebtStore{})

		res := e.Execute(context.Background(), userID,
			debtCmd(nlu.IntentCreateDebt, nlu.LangRussian, "дал в долг ивану 0", "ивану", "0"))

		require.False(t, res.Success)
		assert.Equal(t, "Не удалось распознать сумму", res.Err)
	})

	t.Run("too few groups", func(t *testing.T) {
		e := newTestExecutor(&fakeDebtStore{})

		res := e.Execute(context.Background(), userID,
			debtCmd(nlu.IntentCreateDebt, nlu.LangRussian, "дал в долг", "ивану"))

		require.False(t, res.Success)
		assert.Equal(t, "Не удалось распознать команду создания долга", res.Err)
	})

	t.Run("store failure", func(t *testing.T) {
		store := &fakeDebtStore{createErr: errors.New("boom")}
		e := newTestExecutor(store)

		res := e.Execute(context.Background(), userID,
			debtCmd(nlu.IntentCreateDebt, nlu.LangRussian, "дал в долг ивану 10000", "ивану", "10000"))

		require.False(t, res.Success)
		assert.Contains(t, res.Err, "create debt")
	})
}

// TestExecutor_BaseDebtCommand covers the short command form: the quick
// entry and the listing phrases.
func TestExecutor_BaseDebtCommand(t *testing.T) {
	userID := uuid.New()

	t.Run("quick entry defaults to lent", func(t *testing.T) {
		store := &fakeDebtStore{}
		e := newTestExecutor(store)

		res := e.Execute(context.Background(), userID,
			baseDebtCmd(nlu.LangRussian, "долг алишер 50000",
				nlu.DebtSlots{Person: "алишер", Amount: decimal.NewFromInt(50000)}))

		require.True(t, res.Success)
		assert.Equal(t, "Долг добавлен: алишер 50000", res.Message)
		assert.Equal(t, DirectionLent, res.Data["debt_type"])
		require.Len(t, store.debts, 1)
		assert.Equal(t, DirectionLent, store.debts[0].Direction)
		assert.Nil(t, store.debts[0].DueDate)
	})

	t.Run("zero captured amount", func(t *testing.T) {
		e := newTestExecutor(&fakeDebtStore{})

		res := e.Execute(context.Background(), userID,
			baseDebtCmd(nlu.LangRussian, "долг алишер 0", nlu.DebtSlots{Person: "алишер"}))

		require.False(t, res.Success)
		assert.Equal(t, "Не удалось распознать сумму", res.Err)
	})

	t.Run("who owes me", func(t *testing.T) {
		store := &fakeDebtStore{}
		store.add(userID, "Алишер", 50000, 0, DirectionLent, StatusOpen, nil)
		store.add(userID, "Коля", 40000, 10000, DirectionLent, StatusPartial, nil)
		e := newTestExecutor(store)

		res := e.Execute(context.Background(), userID,
			baseDebtCmd(nlu.LangRussian, "кто мне должен", nlu.DebtSlots{}))

		require.True(t, res.Success)
		assert.Equal(t, "Вам должны 2 человек на общую сумму 80000", res.Message)
	})

	t.Run("generic listing shows both directions", func(t *testing.T) {
		store := &fakeDebtStore{}
		store.add(userID, "Алишер", 50000, 0, DirectionLent, StatusOpen, nil)
		store.add(userID, "Бахтиёр", 40000, 10000, DirectionBorrowed, StatusPartial, nil)
		e := newTestExecutor(store)

		res := e.Execute(context.Background(), userID,
			baseDebtCmd(nlu.LangRussian, "покажи долги", nlu.DebtSlots{}))

		require.True(t, res.Success)
		assert.Equal(t, "Вам должны 1 человек на общую сумму 50000\nВы должны 1 человекам на общую сумму 30000", res.Message)
		assert.Equal(t, "50000", res.Data["total_owed_to_me"])
		assert.Equal(t, "30000", res.Data["total_i_owe"])
	})

	t.Run("generic listing with empty ledger", func(t *testing.T) {
		e := newTestExecutor(&fakeDebtStore{})

		res := e.Execute(context.Background(), userID,
			baseDebtCmd(nlu.LangEnglish, "show debts", nlu.DebtSlots{}))

		require.True(t, res.Success)
		assert.Equal(t, "Nobody owes you money\nYou have no debts", res.Message)
	})
}

// TestExecutor_Listings covers the directional and overdue listings.
func TestExecutor_Listings(t *testing.T) {
	userID := uuid.New()

	t.Run("debts to me", func(t *testing.T) {
		store := &fakeDebtStore{}
		store.add(userID, "Коля", 40000, 10000, DirectionLent, StatusPartial, nil)
		store.add(userID, "Алишер", 50000, 0, DirectionLent, StatusOpen, datePtr(2025, 3, 20))
		store.add(userID, "Бахтиёр", 99999, 0, DirectionBorrowed, StatusOpen, nil)
		store.add(userID, "Умид", 77777, 77777, DirectionLent, StatusClosed, nil)
		e := newTestExecutor(store)

		res := e.Execute(context.Background(), userID,
			debtCmd(nlu.IntentManageDebts, nlu.LangRussian, "покажи кто мне должен"))

		require.True(t, res.Success)
		assert.Equal(t, "Вам должны 2 человек на общую сумму 80000", res.Message)

		rows := res.Data["debts"].([]map[string]any)
		require.Len(t, rows, 2)
		assert.Equal(t, "Алишер", rows[0]["person_name"])
		assert.Equal(t, "50000", rows[0]["remaining_amount"])
		assert.Equal(t, "2025-03-20", rows[0]["due_date"])
		assert.Equal(t, "Коля", rows[1]["person_name"])
		assert.Equal(t, "30000", rows[1]["remaining_amount"])
		assert.Equal(t, "10000", rows[1]["paid_amount"])
		assert.Equal(t, StatusPartial, rows[1]["status"])
		assert.Nil(t, rows[1]["due_date"])
		assert.Equal(t, "80000", res.Data["total_amount"])
	})

	t.Run("my debts", func(t *testing.T) {
		store := &fakeDebtStore{}
		store.add(userID, "Бахтиёр", 200000, 50000, DirectionBorrowed, StatusPartial, nil)
		e := newTestExecutor(store)

		res := e.Execute(context.Background(), userID,
			debtCmd(nlu.IntentManageDebts, nlu.LangRussian, "кому я должен"))

		require.True(t, res.Success)
		assert.Equal(t, "Вы должны 1 человекам на общую сумму 150000", res.Message)
	})

	t.Run("empty my debts", func(t *testing.T) {
		e := newTestExecutor(&fakeDebtStore{})

		res := e.Execute(context.Background(), userID,
			debtCmd(nlu.IntentManageDebts, nlu.LangRussian, "мои долги"))

		require.True(t, res.Success)
		assert.Equal(t, "У вас нет долгов", res.Message)
		assert.Empty(t, res.Data["debts"])
	})

	t.Run("uzbek debts to me", func(t *testing.T) {
		store := &fakeDebtStore{}
		store.add(userID, "Alisher", 50000, 0, DirectionLent, StatusOpen, nil)
		e := newTestExecutor(store)

		res := e.Execute(context.Background(), userID,
			debtCmd(nlu.IntentManageDebts, nlu.LangUzbek, "kim menga qarzdor"))

		require.True(t, res.Success)
		assert.Equal(t, "Sizga 1 kishi 50000 summaga qarz", res.Message)
	})

	t.Run("overdue debts of both directions", func(t *testing.T) {
		store := &fakeDebtStore{}
		store.add(userID, "Алишер", 60000, 20000, DirectionLent, StatusPartial, datePtr(2025, 3, 5))
		store.add(userID, "Бахтиёр", 30000, 0, DirectionBorrowed, StatusOpen, datePtr(2025, 2, 28))
		store.add(userID, "Коля", 10000, 0, DirectionLent, StatusOpen, datePtr(2025, 3, 20))
		store.add(userID, "Умид", 5000, 0, DirectionLent, StatusOpen, nil)
		e := newTestExecutor(store)

		res := e.Execute(context.Background(), userID,
			debtCmd(nlu.IntentManageDebts, nlu.LangRussian, "просроченные долги"))

		require.True(t, res.Success)
		assert.Equal(t, "У вас 2 просроченных долгов", res.Message)

		rows := res.Data["debts"].([]map[string]any)
		require.Len(t, rows, 2)
		assert.Equal(t, "Бахтиёр", rows[0]["person_name"])
		assert.Equal(t, DirectionBorrowed, rows[0]["debt_type"])
		assert.Equal(t, 10, rows[0]["days_overdue"])
		assert.Equal(t, "Алишер", rows[1]["person_name"])
		assert.Equal(t, 5, rows[1]["days_overdue"])
		assert.Equal(t, "40000", rows[1]["remaining_amount"])
	})

	t.Run("no overdue debts", func(t *testing.T) {
		store := &fakeDebtStore{}
		store.add(userID, "Коля", 10000, 0, DirectionLent, StatusOpen, datePtr(2025, 3, 20))
		e := newTestExecutor(store)

		res := e.Execute(context.Background(), userID,
			debtCmd(nlu.IntentManageDebts, nlu.LangRussian, "просроченные долги"))

		require.True(t, res.Success)
		assert.Equal(t, "Нет просроченных долгов", res.Message)
	})

	t.Run("unrecognized command", func(t *testing.T) {
		e := newTestExecutor(&fakeDebtStore{})

		res := e.Execute(context.Background(), userID,
			debtCmd(nlu.IntentManageDebts, nlu.LangRussian, "что-то про долги"))

		require.False(t, res.Success)
		assert.Equal(t, "Не удалось распознать команду управления долгами", res.Err)
	})

	t.Run("list failure", func(t *testing.T) {
		store := &fakeDebtStore{listErr: errors.New("boom")}
		e := newTestExecutor(store)

		res := e.Execute(context.Background(), userID,
			debtCmd(nlu.IntentManageDebts, nlu.LangRussian, "мои долги"))

		require.False(t, res.Success)
		assert.Contains(t, res.Err, "list debts")
	})

	t.Run("overdue failure", func(t *testing.T) {
		store := &fakeDebtStore{overdueErr: errors.New("boom")}
		e := newTestExecutor(store)

		res := e.Execute(context.Background(), userID,
			debtCmd(nlu.IntentManageDebts, nlu.LangRussian, "просроченные долги"))

		require.False(t, res.Success)
		assert.Contains(t, res.Err, "list overdue debts")
	})
}

// TestExecutor_Payments covers partial repayments and their limits.
func TestExecutor_Payments(t *testing.T) {
	userID := uuid.New()

	t.Run("partial payment", func(t *testing.T) {
		store := &fakeDebtStore{}
		store.add(userID, "Алишер", 50000, 0, DirectionLent, StatusOpen, nil)
		e := newTestExecutor(store)

		res := e.Execute(context.Background(), userID,
			debtCmd(nlu.IntentManageDebts, nlu.LangRussian, "верни долг алишер 20000"))

		require.True(t, res.Success)
		assert.Equal(t, "Частичный возврат: Алишер вернул 20000. Осталось: 30000", res.Message)
		assert.Equal(t, StatusPartial, res.Data["status"])
		assert.Equal(t, "30000", res.Data["remaining_amount"])
		assert.Equal(t, StatusPartial, store.debts[0].Status)
		assert.Equal(t, "20000", store.debts[0].PaidAmount.String())
	})

	t.Run("closing payment", func(t *testing.T) {
		store := &fakeDebtStore{}
		store.add(userID, "Алишер", 50000, 30000, DirectionLent, StatusPartial, nil)
		e := newTestExecutor(store)

		res := e.Execute(context.Background(), userID,
			debtCmd(nlu.IntentManageDebts, nlu.LangRussian, "верни долг алишер 20000"))

		require.True(t, res.Success)
		assert.Equal(t, "✅ Долг полностью погашен: Алишер вернул 20000", res.Message)
		assert.Equal(t, StatusClosed, res.Data["status"])
		assert.Equal(t, "0", res.Data["remaining_amount"])
	})

	t.Run("payment exceeds remainder", func(t *testing.T) {
		store := &fakeDebtStore{}
		store.add(userID, "Алишер", 50000, 30000, DirectionLent, StatusPartial, nil)
		e := newTestExecutor(store)

		res := e.Execute(context.Background(), userID,
			debtCmd(nlu.IntentManageDebts, nlu.LangRussian, "верни долг алишер 30000"))

		require.False(t, res.Success)
		assert.Equal(t, "Сумма 30000 превышает остаток долга 20000", res.Err)
		assert.Equal(t, "30000", store.debts[0].PaidAmount.String())
	})

	t.Run("uzbek partial payment", func(t *testing.T) {
		store := &fakeDebtStore{}
		store.add(userID, "Alisher", 50000, 0, DirectionLent, StatusOpen, nil)
		e := newTestExecutor(store)

		res := e.Execute(context.Background(), userID,
			debtCmd(nlu.IntentManageDebts, nlu.LangUzbek, "alisherga qarzni 10000 qaytardim"))

		require.True(t, res.Success)
		assert.Equal(t, "Qisman qaytarish: Alisher 10000 qaytardi. Qoldi: 40000", res.Message)
	})

	t.Run("debt not found", func(t *testing.T) {
		e := newTestExecutor(&fakeDebtStore{})

		res := e.Execute(context.Background(), userID,
			debtCmd(nlu.IntentManageDebts, nlu.LangRussian, "верни долг пётр 5000"))

		require.False(t, res.Success)
		assert.Equal(t, `Долг с "пётр" не найден`, res.Err)
	})

	t.Run("find failure", func(t *testing.T) {
		store := &fakeDebtStore{findErr: errors.New("boom")}
		e := newTestExecutor(store)

		res := e.Execute(context.Background(), userID,
			debtCmd(nlu.IntentManageDebts, nlu.LangRussian, "верни долг алишер 5000"))

		require.False(t, res.Success)
		assert.Contains(t, res.Err, "find debt")
	})

	t.Run("payment failure", func(t *testing.T) {
		store := &fakeDebtStore{payErr: errors.New("boom")}
		store.add(userID, "Алишер", 50000, 0, DirectionLent, StatusOpen, nil)
		e := newTestExecutor(store)

		res := e.Execute(context.Background(), userID,
			debtCmd(nlu.IntentManageDebts, nlu.LangRussian, "верни долг алишер 5000"))

		require.False(t, res.Success)
		assert.Contains(t, res.Err, "add debt payment")
	})
}

// TestExecutor_CloseDebt covers the full settlement routes.
func TestExecutor_CloseDebt(t *testing.T) {
	userID := uuid.New()

	t.Run("full return", func(t *testing.T) {
		store := &fakeDebtStore{}
		store.add(userID, "Алишер", 50000, 20000, DirectionLent, StatusPartial, nil)
		e := newTestExecutor(store)

		res := e.Execute(context.Background(), userID,
			debtCmd(nlu.IntentManageDebts, nlu.LangRussian, "вернул долг алишер"))

		require.True(t, res.Success)
		assert.Equal(t, "✅ Долг с Алишер закрыт на сумму 30000", res.Message)
		assert.Equal(t, "30000", res.Data["closed_amount"])
		assert.Equal(t, StatusClosed, store.debts[0].Status)
		assert.Equal(t, "50000", store.debts[0].PaidAmount.String())
	})

	t.Run("settled phrase", func(t *testing.T) {
		store := &fakeDebtStore{}
		store.add(userID, "Умид", 10000, 0, DirectionBorrowed, StatusOpen, nil)
		e := newTestExecutor(store)

		res := e.Execute(context.Background(), userID,
			debtCmd(nlu.IntentManageDebts, nlu.LangRussian, "долг умид погашен"))

		require.True(t, res.Success)
		assert.Equal(t, "✅ Долг с Умид закрыт на сумму 10000", res.Message)
	})

	t.Run("english close", func(t *testing.T) {
		store := &fakeDebtStore{}
		store.add(userID, "John", 5000, 0, DirectionLent, StatusOpen, nil)
		e := newTestExecutor(store)

		res := e.Execute(context.Background(), userID,
			debtCmd(nlu.IntentManageDebts, nlu.LangEnglish, "close debt with john"))

		require.True(t, res.Success)
		assert.Equal(t, "✅ Debt with John closed for 5000", res.Message)
	})

	t.Run("closed debts are invisible", func(t *testing.T) {
		store := &fakeDebtStore{}
		store.add(userID, "Умид", 10000, 10000, DirectionLent, StatusClosed, nil)
		e := newTestExecutor(store)

		res := e.Execute(context.Background(), userID,
			debtCmd(nlu.IntentManageDebts, nlu.LangRussian, "закрой долг с умид"))

		require.False(t, res.Success)
		assert.Equal(t, `Долг с "умид" не найден`, res.Err)
	})

	t.Run("close failure", func(t *testing.T) {
		store := &fakeDebtStore{closeErr: errors.New("boom")}
		store.add(userID, "Умид", 10000, 0, DirectionLent, StatusOpen, nil)
		e := newTestExecutor(store)

		res := e.Execute(context.Background(), userID,
			debtCmd(nlu.IntentManageDebts, nlu.LangRussian, "закрой долг с умид"))

		require.False(t, res.Success)
		assert.Contains(t, res.Err, "close debt")
	})
}

// TestParseDueDate pins the due date vocabulary against a fixed clock.
func TestParseDueDate(t *testing.T) {
	cases := []struct {
		in   string
		want *time.Time
	}{
		{"завтра", datePtr(2025, 3, 11)},
		{"ertaga", datePtr(2025, 3, 11)},
		{"tomorrow", datePtr(2025, 3, 11)},
		{"неделю", datePtr(2025, 3, 17)},
		{"через неделю", datePtr(2025, 3, 17)},
		{"hafta", datePtr(2025, 3, 17)},
		{"месяц", datePtr(2025, 4, 9)},
		{"next month", datePtr(2025, 4, 9)},
		{"25.12", datePtr(2025, 12, 25)},
		{"01.01.26", datePtr(2026, 1, 1)},
		{"15.06.2025", datePtr(2025, 6, 15)},
		{"31.02", nil},
		{"когда-нибудь", nil},
	}

	for _, tc := range cases {
		t.Run(tc.in, func(t *testing.T) {
			got := parseDueDate(tc.in, testNow)
			if tc.want == nil {
				assert.Nil(t, got)
				return
			}
			require.NotNil(t, got)
			assert.Equal(t, *tc.want, *got)
		})
	}
}
