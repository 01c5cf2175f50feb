package reconcile

import (
	"context"
	"errors"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ovozpay/nlu-engine/internal/domain/nlu"
	"github.com/ovozpay/nlu-engine/pkg/notify"
)

// fakeStore keeps the reconciliation state in memory, mirroring the
// SQL behavior: the window query returns completed receipts only and a
// voice counts as unmatched while no comparison row references it.
type fakeStore struct {
	mu       sync.Mutex
	voices   []VoiceExtraction
	receipts []ReceiptExtraction
	items    map[uuid.UUID][]ReceiptItem
	matches  map[uuid.UUID]*Match

	saveVoiceErr error
	windowErr    error
	itemsErr     map[uuid.UUID]error
	createErr    error
	updateErr    error
	unmatchedErr error
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		items:    make(map[uuid.UUID][]ReceiptItem),
		matches:  make(map[uuid.UUID]*Match),
		itemsErr: make(map[uuid.UUID]error),
	}
}

func (f *fakeStore) SaveVoice(_ context.Context, voice *VoiceExtraction) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.saveVoiceErr != nil {
		return f.saveVoiceErr
	}
	voice.CreatedAt = time.Now()
	f.voices = append(f.voices, *voice)
	return nil
}

func (f *fakeStore) SaveReceipt(_ context.Context, receipt *ReceiptExtraction, items []ReceiptItem) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	receipt.CreatedAt = time.Now()
	f.receipts = append(f.receipts, *receipt)
	f.items[receipt.ID] = items
	return nil
}

func (f *fakeStore) ReceiptsInWindow(_ context.Context, userID uuid.UUID, from, to time.Time) ([]ReceiptExtraction, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.windowErr != nil {
		return nil, f.windowErr
	}
	var out []ReceiptExtraction
	for _, r := range f.receipts {
		if r.UserID != userID || r.Status != ReceiptCompleted {
			continue
		}
		if r.CapturedAt.Before(from) || r.CapturedAt.After(to) {
			continue
		}
		out = append(out, r)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CapturedAt.After(out[j].CapturedAt) })
	return out, nil
}

func (f *fakeStore) ReceiptItems(_ context.Context, receiptID uuid.UUID) ([]ReceiptItem, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.itemsErr[receiptID]; err != nil {
		return nil, err
	}
	return f.items[receiptID], nil
}

func (f *fakeStore) CreateMatch(_ context.Context, match *Match) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.createErr != nil {
		return f.createErr
	}
	match.CreatedAt = time.Now()
	match.UpdatedAt = match.CreatedAt
	stored := *match
	f.matches[match.ID] = &stored
	return nil
}

func (f *fakeStore) UpdateMatch(_ context.Context, match *Match) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.updateErr != nil {
		return f.updateErr
	}
	match.UpdatedAt = time.Now()
	stored := *match
	f.matches[match.ID] = &stored
	return nil
}

func (f *fakeStore) RecentUnmatchedVoices(_ context.Context, since time.Time, limit int) ([]VoiceExtraction, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.unmatchedErr != nil {
		return nil, f.unmatchedErr
	}
	matched := make(map[uuid.UUID]bool)
	for _, m := range f.matches {
		matched[m.VoiceID] = true
	}
	var out []VoiceExtraction
	for _, v := range f.voices {
		if matched[v.ID] || v.RecordedAt.Before(since) {
			continue
		}
		out = append(out, v)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].RecordedAt.Before(out[j].RecordedAt) })
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (f *fakeStore) addReceipt(userID uuid.UUID, status ReceiptStatus, total int64, capturedAt time.Time, lines ...ReceiptItem) ReceiptExtraction {
	receipt := ReceiptExtraction{
		ID:          uuid.New(),
		UserID:      userID,
		TotalAmount: decimal.NewFromInt(total),
		Status:      status,
		CapturedAt:  capturedAt,
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.receipts = append(f.receipts, receipt)
	f.items[receipt.ID] = lines
	return receipt
}

func (f *fakeStore) matchRows() []Match {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]Match, 0, len(f.matches))
	for _, m := range f.matches {
		out = append(out, *m)
	}
	return out
}

type fakeNotifier struct {
	mu   sync.Mutex
	sent []*notify.Message
	err  error
}

func (f *fakeNotifier) Send(_ context.Context, msg *notify.Message) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	f.sent = append(f.sent, msg)
	return nil
}

func (f *fakeNotifier) SendBatch(_ context.Context, messages []*notify.Message) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	f.sent = append(f.sent, messages...)
	return nil
}

// TestService_RecordVoice checks extraction plus persistence of a
// voice message.
func TestService_RecordVoice(t *testing.T) {
	t.Run("extracts items and total", func(t *testing.T) {
		store := newFakeStore()
		svc := NewService(store, nil, 0, nil)
		userID := uuid.New()

		voice, err := svc.RecordVoice(context.Background(), userID,
			"купил молоко 5000 сум всего 5000 сум", nlu.LangRussian, time.Time{})

		require.NoError(t, err)
		assert.NotEqual(t, uuid.Nil, voice.ID)
		assert.Equal(t, userID, voice.UserID)
		assert.True(t, voice.SpokenTotal.Equal(decimal.NewFromInt(5000)))
		require.NotEmpty(t, voice.Items)
		assert.Equal(t, "купил молоко", voice.Items[0].Name)
		assert.False(t, voice.RecordedAt.IsZero())
		require.Len(t, store.voices, 1)
		assert.Equal(t, voice.ID, store.voices[0].ID)
	})

	t.Run("store failure", func(t *testing.T) {
		store := newFakeStore()
		store.saveVoiceErr = errors.New("connection refused")
		svc := NewService(store, nil, 0, nil)

		_, err := svc.RecordVoice(context.Background(), uuid.New(), "хлеб 2000 сум", nlu.LangRussian, time.Now())
		require.Error(t, err)
		assert.Contains(t, err.Error(), "record voice")
	})
}

// TestService_RecordReceipt checks receipt persistence with numbered
// lines.
func TestService_RecordReceipt(t *testing.T) {
	store := newFakeStore()
	svc := NewService(store, nil, 0, nil)
	userID := uuid.New()

	receipt, err := svc.RecordReceipt(context.Background(), userID, "Корзинка",
		decimal.NewFromInt(10500), time.Time{}, []ReceiptLine{
			{Name: "молоко", Quantity: decimal.NewFromInt(1), UnitPrice: decimal.NewFromInt(8000), TotalPrice: decimal.NewFromInt(8000)},
			{Name: "хлеб", Quantity: decimal.NewFromInt(1), UnitPrice: decimal.NewFromInt(2500), TotalPrice: decimal.NewFromInt(2500)},
		})

	require.NoError(t, err)
	assert.Equal(t, ReceiptCompleted, receipt.Status)
	assert.False(t, receipt.CapturedAt.IsZero())

	items := store.items[receipt.ID]
	require.Len(t, items, 2)
	assert.Equal(t, 1, items[0].LineNumber)
	assert.Equal(t, 2, items[1].LineNumber)
	assert.Equal(t, receipt.ID, items[0].ReceiptID)
	assert.Equal(t, "молоко", items[0].Name)
}

// TestService_FindCandidateReceipts checks the symmetric time window.
func TestService_FindCandidateReceipts(t *testing.T) {
	store := newFakeStore()
	svc := NewService(store, nil, 5*time.Minute, nil)
	userID := uuid.New()
	at := time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)

	before3 := store.addReceipt(userID, ReceiptCompleted, 1000, at.Add(-3*time.Minute))
	after3 := store.addReceipt(userID, ReceiptCompleted, 2000, at.Add(3*time.Minute))
	edge := store.addReceipt(userID, ReceiptCompleted, 3000, at.Add(-5*time.Minute))
	store.addReceipt(userID, ReceiptCompleted, 4000, at.Add(-6*time.Minute))
	store.addReceipt(userID, ReceiptCompleted, 5000, at.Add(6*time.Minute))
	store.addReceipt(userID, ReceiptPendingReview, 6000, at)
	store.addReceipt(uuid.New(), ReceiptCompleted, 7000, at)

	voice := &VoiceExtraction{ID: uuid.New(), UserID: userID, RecordedAt: at}
	got, err := svc.FindCandidateReceipts(context.Background(), voice)

	require.NoError(t, err)
	require.Len(t, got, 3)
	assert.Equal(t, after3.ID, got[0].ID)
	assert.Equal(t, before3.ID, got[1].ID)
	assert.Equal(t, edge.ID, got[2].ID)
}

// TestService_MatchVoiceWithReceipt checks one persisted comparison.
func TestService_MatchVoiceWithReceipt(t *testing.T) {
	userID := uuid.New()
	at := time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)
	voice := &VoiceExtraction{
		ID:          uuid.New(),
		UserID:      userID,
		SpokenTotal: decimal.NewFromInt(8000),
		Items:       []VoiceItem{voiceItem("молоко", 8000)},
		RecordedAt:  at,
	}

	t.Run("completed match", func(t *testing.T) {
		store := newFakeStore()
		svc := NewService(store, nil, 0, nil)
		receipt := store.addReceipt(userID, ReceiptCompleted, 8000, at.Add(-3*time.Minute),
			receiptLine("молоко", 8000))

		match, err := svc.MatchVoiceWithReceipt(context.Background(), voice, &receipt)

		require.NoError(t, err)
		assert.Equal(t, MatchCompleted, match.Status)
		assert.InDelta(t, 1.0, match.Confidence, 1e-9)
		assert.True(t, match.AmountMatch)
		assert.Equal(t, 3, match.TimeDiffMinutes)
		require.Len(t, match.Pairs, 1)

		stored := store.matches[match.ID]
		require.NotNil(t, stored)
		assert.Equal(t, MatchCompleted, stored.Status)
	})

	t.Run("item load failure marks the match failed", func(t *testing.T) {
		store := newFakeStore()
		svc := NewService(store, nil, 0, nil)
		receipt := store.addReceipt(userID, ReceiptCompleted, 8000, at)
		store.itemsErr[receipt.ID] = errors.New("relation missing")

		_, err := svc.MatchVoiceWithReceipt(context.Background(), voice, &receipt)

		require.Error(t, err)
		rows := store.matchRows()
		require.Len(t, rows, 1)
		assert.Equal(t, MatchFailed, rows[0].Status)
		assert.Contains(t, rows[0].ErrorMessage, "relation missing")
	})

	t.Run("create failure", func(t *testing.T) {
		store := newFakeStore()
		store.createErr = errors.New("insert denied")
		svc := NewService(store, nil, 0, nil)
		receipt := store.addReceipt(userID, ReceiptCompleted, 8000, at)

		_, err := svc.MatchVoiceWithReceipt(context.Background(), voice, &receipt)
		require.Error(t, err)
		assert.Empty(t, store.matchRows())
	})
}

// TestService_AutoMatch checks candidate scoring, filtering, ordering,
// per-candidate failure isolation and the push notification.
func TestService_AutoMatch(t *testing.T) {
	userID := uuid.New()
	at := time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)
	voice := &VoiceExtraction{
		ID:          uuid.New(),
		UserID:      userID,
		Language:    nlu.LangRussian,
		SpokenTotal: decimal.NewFromInt(60500),
		Items: []VoiceItem{
			voiceItem("молоко", 0),
			voiceItem("хлеб", 0),
			voiceItem("сыр", 0),
			voiceItem("шоколадка", 0),
			voiceItem("печенье", 0),
		},
		RecordedAt: at,
	}

	t.Run("best match wins and is pushed", func(t *testing.T) {
		store := newFakeStore()
		notifier := &fakeNotifier{}
		svc := NewService(store, notifier, 0, nil)

		full := store.addReceipt(userID, ReceiptCompleted, 60500, at.Add(time.Minute),
			receiptLine("молоко", 8000), receiptLine("хлеб", 2500), receiptLine("сыр", 30000),
			receiptLine("шоколадка", 10000), receiptLine("печенье", 10000))
		partial := store.addReceipt(userID, ReceiptCompleted, 60500, at.Add(2*time.Minute),
			receiptLine("молоко", 8000), receiptLine("хлеб", 2500), receiptLine("сыр", 30000),
			receiptLine("йогурт", 10000), receiptLine("кефир", 10000))
		store.addReceipt(userID, ReceiptCompleted, 12000, at.Add(-3*time.Minute),
			receiptLine("кефир", 12000))
		broken := store.addReceipt(userID, ReceiptCompleted, 60500, at.Add(4*time.Minute))
		store.itemsErr[broken.ID] = errors.New("corrupted lines")
		store.addReceipt(userID, ReceiptCompleted, 60500, at.Add(20*time.Minute),
			receiptLine("молоко", 8000))

		matches, err := svc.AutoMatch(context.Background(), voice)

		require.NoError(t, err)
		require.Len(t, matches, 2)
		assert.Equal(t, full.ID, matches[0].ReceiptID)
		assert.InDelta(t, 1.0, matches[0].Confidence, 1e-9)
		assert.Equal(t, partial.ID, matches[1].ReceiptID)
		assert.InDelta(t, 0.84, matches[1].Confidence, 1e-9)

		// The low-confidence and failed comparisons are persisted even
		// though they are not returned.
		rows := store.matchRows()
		assert.Len(t, rows, 4)
		failed := 0
		for _, row := range rows {
			if row.Status == MatchFailed {
				failed++
			}
		}
		assert.Equal(t, 1, failed)

		require.Len(t, notifier.sent, 1)
		msg := notifier.sent[0]
		assert.Equal(t, userID.String(), msg.UserID)
		assert.Equal(t, notify.KindReceiptLink, msg.Kind)
		assert.Equal(t, "Найден чек, похожий на вашу покупку (совпадение 100%)", msg.Body)
		assert.Equal(t, matches[0].ID.String(), msg.Data["match_id"])
		assert.Equal(t, full.ID.String(), msg.Data["receipt_id"])
	})

	t.Run("confidence under the notify threshold stays silent", func(t *testing.T) {
		store := newFakeStore()
		notifier := &fakeNotifier{}
		svc := NewService(store, notifier, 0, nil)

		// Totals agree but no item lines up: confidence 0.6.
		quiet := &VoiceExtraction{
			ID:          uuid.New(),
			UserID:      userID,
			SpokenTotal: decimal.NewFromInt(10000),
			RecordedAt:  at,
		}
		store.addReceipt(userID, ReceiptCompleted, 10000, at.Add(time.Minute),
			receiptLine("молоко", 10000))

		matches, err := svc.AutoMatch(context.Background(), quiet)

		require.NoError(t, err)
		require.Len(t, matches, 1)
		assert.InDelta(t, 0.6, matches[0].Confidence, 1e-9)
		assert.Empty(t, notifier.sent)
	})

	t.Run("no notifier configured", func(t *testing.T) {
		store := newFakeStore()
		svc := NewService(store, nil, 0, nil)
		store.addReceipt(userID, ReceiptCompleted, 60500, at.Add(time.Minute),
			receiptLine("молоко", 8000), receiptLine("хлеб", 2500), receiptLine("сыр", 30000),
			receiptLine("шоколадка", 10000), receiptLine("печенье", 10000))

		matches, err := svc.AutoMatch(context.Background(), voice)
		require.NoError(t, err)
		assert.Len(t, matches, 1)
	})

	t.Run("delivery failure does not break matching", func(t *testing.T) {
		store := newFakeStore()
		notifier := &fakeNotifier{err: errors.New("gateway down")}
		svc := NewService(store, notifier, 0, nil)
		store.addReceipt(userID, ReceiptCompleted, 60500, at.Add(time.Minute),
			receiptLine("молоко", 8000), receiptLine("хлеб", 2500), receiptLine("сыр", 30000),
			receiptLine("шоколадка", 10000), receiptLine("печенье", 10000))

		matches, err := svc.AutoMatch(context.Background(), voice)
		require.NoError(t, err)
		assert.Len(t, matches, 1)
	})

	t.Run("window query failure", func(t *testing.T) {
		store := newFakeStore()
		store.windowErr = errors.New("timeout")
		svc := NewService(store, nil, 0, nil)

		_, err := svc.AutoMatch(context.Background(), voice)
		require.Error(t, err)
	})
}

// TestService_Sweep checks the periodic rescan of unmatched voices.
func TestService_Sweep(t *testing.T) {
	t.Run("rescans recent voices once", func(t *testing.T) {
		store := newFakeStore()
		svc := NewService(store, nil, 0, nil)
		userID := uuid.New()
		now := time.Now()

		fresh, err := svc.RecordVoice(context.Background(), userID,
			"купил молоко 8000 сум всего 8000 сум", nlu.LangRussian, now.Add(-2*time.Minute))
		require.NoError(t, err)
		_, err = svc.RecordVoice(context.Background(), userID,
			"степлер 3000 сум", nlu.LangRussian, now.Add(-3*time.Minute))
		require.NoError(t, err)
		_, err = svc.RecordVoice(context.Background(), userID,
			"хлеб 2000 сум", nlu.LangRussian, now.Add(-3*time.Hour))
		require.NoError(t, err)

		store.addReceipt(userID, ReceiptCompleted, 8000, now.Add(-time.Minute),
			receiptLine("молоко", 8000))

		found, err := svc.Sweep(context.Background(), time.Hour, 10)

		require.NoError(t, err)
		assert.Equal(t, 1, found)

		// Both recent voices were compared against the receipt; the
		// stale one was left alone.
		rows := store.matchRows()
		assert.Len(t, rows, 2)
		for _, row := range rows {
			assert.Equal(t, MatchCompleted, row.Status)
			if row.VoiceID == fresh.ID {
				assert.Greater(t, row.Confidence, FoundThreshold)
			} else {
				assert.Less(t, row.Confidence, FoundThreshold)
			}
		}

		// A second sweep finds nothing new: every recent voice now has
		// comparison rows.
		found, err = svc.Sweep(context.Background(), time.Hour, 10)
		require.NoError(t, err)
		assert.Zero(t, found)
		assert.Len(t, store.matchRows(), 2)
	})

	t.Run("store failure", func(t *testing.T) {
		store := newFakeStore()
		store.unmatchedErr = errors.New("timeout")
		svc := NewService(store, nil, 0, nil)

		_, err := svc.Sweep(context.Background(), time.Hour, 10)
		require.Error(t, err)
	})
}

// TestReceiptMatchBody checks notification localization.
func TestReceiptMatchBody(t *testing.T) {
	assert.Equal(t, "Найден чек, похожий на вашу покупку (совпадение 84%)",
		receiptMatchBody(nlu.LangRussian, 0.84))
	assert.Equal(t, "Xaridingizga mos chek topildi (moslik 90%)",
		receiptMatchBody(nlu.LangUzbek, 0.9))
	assert.Equal(t, "Found a receipt matching your purchase (75% match)",
		receiptMatchBody(nlu.LangEnglish, 0.75))
	// Unknown languages read as Russian.
	assert.Equal(t, "Найден чек, похожий на вашу покупку (совпадение 100%)",
		receiptMatchBody(nlu.Language("de"), 1.0))
}

// TestTimeDiffMinutes checks the stored whole-minute gap.
func TestTimeDiffMinutes(t *testing.T) {
	at := time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)

	assert.Equal(t, 0, timeDiffMinutes(at, at))
	assert.Equal(t, 3, timeDiffMinutes(at, at.Add(3*time.Minute)))
	assert.Equal(t, 3, timeDiffMinutes(at.Add(3*time.Minute), at))
	assert.Equal(t, 3, timeDiffMinutes(at, at.Add(3*time.Minute+30*time.Second)))
	assert.Equal(t, 0, timeDiffMinutes(at, at.Add(59*time.Second)))
}
