package sources

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

type fakeIncome struct {
	id          uuid.UUID
	userID      uuid.UUID
	sourceID    uuid.UUID
	amount      decimal.Decimal
	description string
	occurredAt  time.Time
}

type fakeSourceStore struct {
	mu      sync.Mutex
	sources []Source
	incomes []fakeIncome

	findErr   error
	createErr error
	listErr   error
	renameErr error
	incomeErr error
}

func (f *fakeSourceStore) add(userID uuid.UUID, name string, active bool) Source {
	f.mu.Lock()
	defer f.mu.Unlock()
	s := Source{
		ID:        uuid.New(),
		UserID:    userID,
		Name:      name,
		IsActive:  active,
		CreatedAt: time.Now(),
		UpdatedAt: time.Now(),
	}
	f.sources = append(f.sources, s)
	return s
}

func (f *fakeSourceStore) addIncome(sourceID uuid.UUID, amount int64, occurredAt time.Time) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.incomes = append(f.incomes, fakeIncome{
		id:         uuid.New(),
		sourceID:   sourceID,
		amount:     decimal.NewFromInt(amount),
		occurredAt: occurredAt,
	})
}

func (f *fakeSourceStore) FindExact(_ context.Context, userID uuid.UUID, name string) (*Source, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, s := range f.sources {
		if s.UserID == userID && s.IsActive && strings.EqualFold(s.Name, name) {
			found := s
			return &found, nil
		}
	}
	return nil, nil
}

func (f *fakeSourceStore) FindByName(_ context.Context, userID uuid.UUID, name string) (*Source, error) {
	if f.findErr != nil {
		return nil, f.findErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	needle := strings.ToLower(name)
	for _, s := range f.sources {
		if s.UserID == userID && s.IsActive && strings.Contains(strings.ToLower(s.Name), needle) {
			found := s
			return &found, nil
		}
	}
	return nil, nil
}

func (f *fakeSourceStore) Create(_ context.Context, source *Source) error {
	if f.createErr != nil {
		return f.createErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	source.CreatedAt = time.Now()
	source.UpdatedAt = source.CreatedAt
	f.sources = append(f.sources, *source)
	return nil
}

func (f *fakeSourceStore) ListStats(_ context.Context, userID uuid.UUID) ([]SourceStats, error) {
	if f.listErr != nil {
		return nil, f.listErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	var stats []SourceStats
	for _, s := range f.sources {
		if s.UserID != userID || !s.IsActive {
			continue
		}
		st := SourceStats{Source: s, TotalIncome: decimal.Zero}
		for _, in := range f.incomes {
			if in.sourceID != s.ID {
				continue
			}
			st.TotalIncome = st.TotalIncome.Add(in.amount)
			if st.LastDate == nil || in.occurredAt.After(*st.LastDate) {
				date, amount := in.occurredAt, in.amount
				st.LastDate = &date
				st.LastAmount = &amount
			}
		}
		stats = append(stats, st)
	}
	sort.Slice(stats, func(i, j int) bool { return stats[i].Source.Name < stats[j].Source.Name })
	return stats, nil
}

func (f *fakeSourceStore) Rename(_ context.Context, sourceID uuid.UUID, newName string) error {
	if f.renameErr != nil {
		return f.renameErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	for i := range f.sources {
		if f.sources[i].ID == sourceID {
			f.sources[i].Name = newName
			f.sources[i].UpdatedAt = time.Now()
		}
	}
	return nil
}

func (f *fakeSourceStore) Deactivate(_ context.Context, sourceID uuid.UUID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i := range f.sources {
		if f.sources[i].ID == sourceID {
			f.sources[i].IsActive = false
		}
	}
	return nil
}

func (f *fakeSourceStore) CountTransactions(_ context.Context, sourceID uuid.UUID) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	count := 0
	for _, in := range f.incomes {
		if in.sourceID == sourceID {
			count++
		}
	}
	return count, nil
}

func (f *fakeSourceStore) CreateIncome(_ context.Context, userID, sourceID uuid.UUID, amount decimal.Decimal, description string) (uuid.UUID, error) {
	if f.incomeErr != nil {
		return uuid.Nil, f.incomeErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	in := fakeIncome{
		id:          uuid.New(),
		userID:      userID,
		sourceID:    sourceID,
		amount:      amount,
		description: description,
		occurredAt:  time.Now(),
	}
	f.incomes = append(f.incomes, in)
	return in.id, nil
}

func createSourceCmd(lang nlu.Language, groups ...string) *nlu.ParsedCommand {
	return &nlu.ParsedCommand{
		Intent:   nlu.IntentCreateSource,
		Language: lang,
		Slots:    nlu.RawSlots{Groups: groups},
	}
}

func manageSourcesCmd(lang nlu.Language, normalized string) *nlu.ParsedCommand {
	return &nlu.ParsedCommand{
		Intent:     nlu.IntentManageSources,
		Language:   lang,
		Normalized: normalized,
		Slots:      nlu.RawSlots{},
	}
}

func incomeCmd(lang nlu.Language, groups ...string) *nlu.ParsedCommand {
	return &nlu.ParsedCommand{
		Intent:   nlu.IntentAddIncome,
		Language: lang,
		Slots:    nlu.RawSlots{Groups: groups},
	}
}

// TestExecutor_Intents pins the claimed source intents.
func TestExecutor_Intents(t *testing.T) {
	e := NewExecutor(&fakeSourceStore{}, nil)

	intents := e.Intents()
	assert.Len(t, intents, 3)
	assert.Contains(t, intents, nlu.IntentCreateSource)
	assert.Contains(t, intents, nlu.IntentManageSources)
	assert.Contains(t, intents, nlu.IntentAddIncome)
}

// TestExecutor_CreateSource covers creation, duplicates and rejects.
func TestExecutor_CreateSource(t *testing.T) {
	userID := uuid.New()

	t.Run("creates a source", func(t *testing.T) {
		store := &fakeSourceStore{}
		e := NewExecutor(store, nil)

		res := e.Execute(context.Background(), userID, createSourceCmd(nlu.LangRussian, "Зарплата"))

		require.True(t, res.Success)
		assert.Equal(t, `Источник дохода "Зарплата" создан`, res.Message)
		assert.Equal(t, "Зарплата", res.Data["name"])
		assert.NotEmpty(t, res.Data["source_id"])

		require.Len(t, store.sources, 1)
		assert.True(t, store.sources[0].IsActive)
	})

	t.Run("duplicate ignoring case", func(t *testing.T) {
		store := &fakeSourceStore{}
		store.add(userID, "зарплата", true)
		e := NewExecutor(store, nil)

		res := e.Execute(context.Background(), userID, createSourceCmd(nlu.LangRussian, "Зарплата"))

		require.False(t, res.Success)
		assert.Equal(t, `Источник "Зарплата" уже существует`, res.Err)
		assert.Len(t, store.sources, 1)
	})

	t.Run("inactive name can be reused", func(t *testing.T) {
		store := &fakeSourceStore{}
		store.add(userID, "Фриланс", false)
		e := NewExecutor(store, nil)

		res := e.Execute(context.Background(), userID, createSourceCmd(nlu.LangRussian, "Фриланс"))

		require.True(t, res.Success)
		assert.Len(t, store.sources, 2)
	})

	t.Run("localizes in english", func(t *testing.T) {
		e := NewExecutor(&fakeSourceStore{}, nil)

		res := e.Execute(context.Background(), userID, createSourceCmd(nlu.LangEnglish, "Freelance"))

		require.True(t, res.Success)
		assert.Equal(t, `Income source "Freelance" created`, res.Message)
	})

	t.Run("missing name", func(t *testing.T) {
		e := NewExecutor(&fakeSourceStore{}, nil)

		res := e.Execute(context.Background(), userID, createSourceCmd(nlu.LangRussian))

		require.False(t, res.Success)
		assert.Equal(t, "Не удалось распознать команду создания источника", res.Err)
	})

	t.Run("store failure", func(t *testing.T) {
		store := &fakeSourceStore{createErr: errors.New("boom")}
		e := NewExecutor(store, nil)

		res := e.Execute(context.Background(), userID, createSourceCmd(nlu.LangRussian, "Зарплата"))

		require.False(t, res.Success)
		assert.Contains(t, res.Err, "create source")
	})
}

// TestExecutor_ShowSources lists sources by name with income summaries.
func TestExecutor_ShowSources(t *testing.T) {
	userID := uuid.New()

	t.Run("no sources yet", func(t *testing.T) {
		e := NewExecutor(&fakeSourceStore{}, nil)

		res := e.Execute(context.Background(), userID, manageSourcesCmd(nlu.LangRussian, "покажи мои источники"))

		require.True(t, res.Success)
		assert.Equal(t, "У вас пока нет источников доходов", res.Message)
		rows, ok := res.Data["sources"].([]map[string]any)
		require.True(t, ok)
		assert.Empty(t, rows)
	})

	t.Run("income summary per source", func(t *testing.T) {
		store := &fakeSourceStore{}
		salary := store.add(userID, "Зарплата", true)
		store.add(userID, "Аванс", true)
		store.add(userID, "Старый", false)
		store.addIncome(salary.ID, 3000000, time.Date(2025, 2, 1, 9, 0, 0, 0, time.UTC))
		store.addIncome(salary.ID, 5000000, time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC))
		e := NewExecutor(store, nil)

		res := e.Execute(context.Background(), userID, manageSourcesCmd(nlu.LangRussian, "источники доходов"))

		require.True(t, res.Success)
		assert.Equal(t, "У вас 2 источников доходов", res.Message)

		rows, ok := res.Data["sources"].([]map[string]any)
		require.True(t, ok)
		require.Len(t, rows, 2)

		assert.Equal(t, "Аванс", rows[0]["name"])
		assert.Equal(t, "0", rows[0]["total_income"])
		assert.Nil(t, rows[0]["last_income_date"])
		assert.Nil(t, rows[0]["last_income_amount"])

		assert.Equal(t, "Зарплата", rows[1]["name"])
		assert.Equal(t, "8000000", rows[1]["total_income"])
		assert.Equal(t, "2025-03-01", rows[1]["last_income_date"])
		assert.Equal(t, "5000000", rows[1]["last_income_amount"])
	})

	t.Run("uzbek count", func(t *testing.T) {
		store := &fakeSourceStore{}
		store.add(userID, "Ish haqi", true)
		e := NewExecutor(store, nil)

		res := e.Execute(context.Background(), userID, manageSourcesCmd(nlu.LangUzbek, "manbalarni koʻrsat"))

		require.True(t, res.Success)
		assert.Equal(t, "Sizda 1 ta daromad manbasi bor", res.Message)
	})

	t.Run("store failure", func(t *testing.T) {
		store := &fakeSourceStore{listErr: errors.New("boom")}
		e := NewExecutor(store, nil)

		res := e.Execute(context.Background(), userID, manageSourcesCmd(nlu.LangRussian, "мои источники"))

		require.False(t, res.Success)
		assert.Contains(t, res.Err, "list sources")
	})
}

// TestExecutor_DeleteSource deactivates without blocking on history.
func TestExecutor_DeleteSource(t *testing.T) {
	userID := uuid.New()

	t.Run("mentions the transaction count", func(t *testing.T) {
		store := &fakeSourceStore{}
		salary := store.add(userID, "Зарплата", true)
		store.addIncome(salary.ID, 5000000, time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC))
		store.addIncome(salary.ID, 5000000, time.Date(2025, 4, 1, 9, 0, 0, 0, time.UTC))
		e := NewExecutor(store, nil)

		res := e.Execute(context.Background(), userID, manageSourcesCmd(nlu.LangRussian, "удали источник зарплата"))

		require.True(t, res.Success)
		assert.Equal(t, `Источник "Зарплата" удален (было 2 транзакций)`, res.Message)
		assert.Equal(t, salary.ID.String(), res.Data["source_id"])
		assert.False(t, store.sources[0].IsActive)
	})

	t.Run("plain message when unused", func(t *testing.T) {
		store := &fakeSourceStore{}
		store.add(userID, "Аванс", true)
		e := NewExecutor(store, nil)

		res := e.Execute(context.Background(), userID, manageSourcesCmd(nlu.LangRussian, "удали источник аванс"))

		require.True(t, res.Success)
		assert.Equal(t, `Источник "Аванс" удален`, res.Message)
	})

	t.Run("uzbek never counts", func(t *testing.T) {
		store := &fakeSourceStore{}
		ish := store.add(userID, "Ish haqi", true)
		store.addIncome(ish.ID, 1500000, time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC))
		e := NewExecutor(store, nil)

		res := e.Execute(context.Background(), userID, manageSourcesCmd(nlu.LangUzbek, "ish manbani oʻchir"))

		require.True(t, res.Success)
		assert.Equal(t, `"Ish haqi" manbasi oʻchirildi`, res.Message)
	})

	t.Run("not found", func(t *testing.T) {
		e := NewExecutor(&fakeSourceStore{}, nil)

		res := e.Execute(context.Background(), userID, manageSourcesCmd(nlu.LangRussian, "удали источник химчистка"))

		require.False(t, res.Success)
		assert.Equal(t, `Источник "химчистка" не найден`, res.Err)
	})

	t.Run("lookup failure", func(t *testing.T) {
		store := &fakeSourceStore{findErr: errors.New("boom")}
		e := NewExecutor(store, nil)

		res := e.Execute(context.Background(), userID, manageSourcesCmd(nlu.LangRussian, "удали источник зарплата"))

		require.False(t, res.Success)
		assert.Contains(t, res.Err, "find source")
	})
}

// TestExecutor_RenameSource covers partial matches and name conflicts.
func TestExecutor_RenameSource(t *testing.T) {
	userID := uuid.New()

	t.Run("renames by partial match", func(t *testing.T) {
		store := &fakeSourceStore{}
		salary := store.add(userID, "Зарплата", true)
		e := NewExecutor(store, nil)

		res := e.Execute(context.Background(), userID, manageSourcesCmd(nlu.LangRussian, "переименуй источник зарплата в основная работа"))

		require.True(t, res.Success)
		assert.Equal(t, `Источник "Зарплата" переименован в "основная работа"`, res.Message)
		assert.Equal(t, salary.ID.String(), res.Data["source_id"])
		assert.Equal(t, "основная работа", res.Data["new_name"])
		assert.Equal(t, "основная работа", store.sources[0].Name)
	})

	t.Run("new name already taken", func(t *testing.T) {
		store := &fakeSourceStore{}
		store.add(userID, "Зарплата", true)
		store.add(userID, "Аванс", true)
		e := NewExecutor(store, nil)

		res := e.Execute(context.Background(), userID, manageSourcesCmd(nlu.LangRussian, "переименуй источник зарплата в аванс"))

		require.False(t, res.Success)
		assert.Equal(t, `Источник "аванс" уже существует`, res.Err)
		assert.Equal(t, "Зарплата", store.sources[0].Name)
	})

	t.Run("conflict with itself is allowed", func(t *testing.T) {
		store := &fakeSourceStore{}
		store.add(userID, "зарплата", true)
		e := NewExecutor(store, nil)

		res := e.Execute(context.Background(), userID, manageSourcesCmd(nlu.LangRussian, "переименуй источник зар в зарплата"))

		require.True(t, res.Success)
		assert.Equal(t, "зарплата", store.sources[0].Name)
	})

	t.Run("old name not found", func(t *testing.T) {
		e := NewExecutor(&fakeSourceStore{}, nil)

		res := e.Execute(context.Background(), userID, manageSourcesCmd(nlu.LangRussian, "переименуй источник ставка в оклад"))

		require.False(t, res.Success)
		assert.Equal(t, `Источник "ставка" не найден`, res.Err)
	})

	t.Run("store failure", func(t *testing.T) {
		store := &fakeSourceStore{renameErr: errors.New("boom")}
		store.add(userID, "Зарплата", true)
		e := NewExecutor(store, nil)

		res := e.Execute(context.Background(), userID, manageSourcesCmd(nlu.LangRussian, "переименуй источник зарплата в оклад"))

		require.False(t, res.Success)
		assert.Contains(t, res.Err, "rename source")
	})
}

// TestExecutor_AddIncome covers both group orders and source creation.
func TestExecutor_AddIncome(t *testing.T) {
	userID := uuid.New()

	t.Run("creates the source on the fly", func(t *testing.T) {
		store := &fakeSourceStore{}
		e := NewExecutor(store, nil)

		res := e.Execute(context.Background(), userID, incomeCmd(nlu.LangRussian, "50000", "фриланса"))

		require.True(t, res.Success)
		assert.Equal(t, `Добавлен доход 50000 от источника "фриланса"`, res.Message)
		assert.Equal(t, "50000", res.Data["amount"])
		assert.Equal(t, "фриланса", res.Data["source_name"])
		assert.NotEmpty(t, res.Data["transaction_id"])

		require.Len(t, store.sources, 1)
		assert.Equal(t, "фриланса", store.sources[0].Name)
		require.Len(t, store.incomes, 1)
		assert.True(t, store.incomes[0].amount.Equal(decimal.NewFromInt(50000)))
		assert.Equal(t, "Доход от фриланса", store.incomes[0].description)
	})

	t.Run("reuses an existing source", func(t *testing.T) {
		store := &fakeSourceStore{}
		freelance := store.add(userID, "Фриланс", true)
		e := NewExecutor(store, nil)

		res := e.Execute(context.Background(), userID, incomeCmd(nlu.LangRussian, "50000", "фриланс"))

		require.True(t, res.Success)
		assert.Equal(t, `Добавлен доход 50000 от источника "Фриланс"`, res.Message)
		assert.Len(t, store.sources, 1)
		require.Len(t, store.incomes, 1)
		assert.Equal(t, freelance.ID, store.incomes[0].sourceID)
	})

	t.Run("uzbek source comes first", func(t *testing.T) {
		store := &fakeSourceStore{}
		e := NewExecutor(store, nil)

		res := e.Execute(context.Background(), userID, incomeCmd(nlu.LangUzbek, "kompaniya", "1 500 000"))

		require.True(t, res.Success)
		assert.Equal(t, `"kompaniya" manbasidan 1500000 daromad qoʻshildi`, res.Message)
		require.Len(t, store.incomes, 1)
		assert.True(t, store.incomes[0].amount.Equal(decimal.NewFromInt(1500000)))
	})

	t.Run("amount unreadable", func(t *testing.T) {
		e := NewExecutor(&fakeSourceStore{}, nil)

		res := e.Execute(context.Background(), userID, incomeCmd(nlu.LangEnglish, "the job", "other work"))

		require.False(t, res.Success)
		assert.Equal(t, "Could not recognize the amount", res.Err)
	})

	t.Run("missing groups", func(t *testing.T) {
		e := NewExecutor(&fakeSourceStore{}, nil)

		res := e.Execute(context.Background(), userID, incomeCmd(nlu.LangRussian, "50000"))

		require.False(t, res.Success)
		assert.Equal(t, "Не удалось распознать команду добавления дохода", res.Err)
	})

	t.Run("store failure", func(t *testing.T) {
		store := &fakeSourceStore{incomeErr: errors.New("boom")}
		store.add(userID, "Зарплата", true)
		e := NewExecutor(store, nil)

		res := e.Execute(context.Background(), userID, incomeCmd(nlu.LangRussian, "50000", "зарплата"))

		require.False(t, res.Success)
		assert.Contains(t, res.Err, "add income")
	})
}

// TestExecutor_ManageFallback rejects unroutable management text.
func TestExecutor_ManageFallback(t *testing.T) {
	e := NewExecutor(&fakeSourceStore{}, nil)

	res := e.Execute(context.Background(), uuid.New(), manageSourcesCmd(nlu.LangEnglish, "do something about sources"))

	require.False(t, res.Success)
	assert.Equal(t, "Could not understand the source management command", res.Err)
}
