package reconcile

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/ovozpay/nlu-engine/internal/domain/nlu"
	"github.com/ovozpay/nlu-engine/pkg/metrics"
	"github.com/ovozpay/nlu-engine/pkg/notify"
)

// ReceiptLine is one parsed receipt line handed in by the OCR caller.
type ReceiptLine struct {
	Name       string
	Quantity   decimal.Decimal
	UnitPrice  decimal.Decimal
	TotalPrice decimal.Decimal
}

// Service runs the reconciliation flow: record voice messages and
// receipts, score them against each other inside the time window, and
// surface confident matches.
type Service struct {
	store     Store
	extractor *Extractor
	notifier  notify.Notifier
	logger    *slog.Logger
	tracer    trace.Tracer
	window    time.Duration
}

// NewService creates a reconciliation service. The notifier is
// optional; without it confident matches are only persisted, never
// pushed. A non-positive window falls back to the default.
func NewService(store Store, notifier notify.Notifier, window time.Duration, logger *slog.Logger) *Service {
	if window <= 0 {
		window = DefaultTimeWindow
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		store:     store,
		extractor: NewExtractor(),
		notifier:  notifier,
		logger:    logger,
		tracer:    otel.Tracer("reconcile"),
		window:    window,
	}
}

// RecordVoice extracts items and the spoken total from recognized text
// and persists the result.
func (s *Service) RecordVoice(ctx context.Context, userID uuid.UUID, text string, lang nlu.Language, recordedAt time.Time) (*VoiceExtraction, error) {
	if recordedAt.IsZero() {
		recordedAt = time.Now()
	}

	voice := &VoiceExtraction{
		ID:          uuid.New(),
		UserID:      userID,
		Text:        text,
		Language:    lang,
		SpokenTotal: s.extractor.Total(text, lang),
		Items:       s.extractor.Items(text, lang),
		RecordedAt:  recordedAt,
	}

	if err := s.store.SaveVoice(ctx, voice); err != nil {
		return nil, fmt.Errorf("record voice: %w", err)
	}

	s.logger.Info("voice extraction recorded",
		slog.String("voice_id", voice.ID.String()),
		slog.Int("items", len(voice.Items)),
		slog.String("spoken_total", voice.SpokenTotal.String()))

	return voice, nil
}

// RecordReceipt persists a scanned receipt and its lines as a completed
// extraction ready for matching.
func (s *Service) RecordReceipt(ctx context.Context, userID uuid.UUID, shopName string, totalAmount decimal.Decimal, capturedAt time.Time, lines []ReceiptLine) (*ReceiptExtraction, error) {
	if capturedAt.IsZero() {
		capturedAt = time.Now()
	}

	receipt := &ReceiptExtraction{
		ID:          uuid.New(),
		UserID:      userID,
		ShopName:    shopName,
		TotalAmount: totalAmount,
		Status:      ReceiptCompleted,
		CapturedAt:  capturedAt,
	}

	items := make([]ReceiptItem, 0, len(lines))
	for i, line := range lines {
		items = append(items, ReceiptItem{
			ID:         uuid.New(),
			ReceiptID:  receipt.ID,
			Name:       line.Name,
			Quantity:   line.Quantity,
			UnitPrice:  line.UnitPrice,
			TotalPrice: line.TotalPrice,
			LineNumber: i + 1,
		})
	}

	if err := s.store.SaveReceipt(ctx, receipt, items); err != nil {
		return nil, fmt.Errorf("record receipt: %w", err)
	}

	s.logger.Info("receipt extraction recorded",
		slog.String("receipt_id", receipt.ID.String()),
		slog.String("shop", shopName),
		slog.Int("lines", len(items)))

	return receipt, nil
}

// FindCandidateReceipts lists completed receipts captured within the
// window on either side of the voice timestamp.
func (s *Service) FindCandidateReceipts(ctx context.Context, voice *VoiceExtraction) ([]ReceiptExtraction, error) {
	from := voice.RecordedAt.Add(-s.window)
	to := voice.RecordedAt.Add(s.window)
	return s.store.ReceiptsInWindow(ctx, voice.UserID, from, to)
}

// MatchVoiceWithReceipt scores one voice-receipt pair and persists the
// comparison. The match row is created in the processing state first so
// a failure still leaves a record with its error.
func (s *Service) MatchVoiceWithReceipt(ctx context.Context, voice *VoiceExtraction, receipt *ReceiptExtraction) (*Match, error) {
	ctx, span := s.tracer.Start(ctx, "reconcile.match")
	defer span.End()

	match := &Match{
		ID:              uuid.New(),
		UserID:          voice.UserID,
		VoiceID:         voice.ID,
		ReceiptID:       receipt.ID,
		TimeDiffMinutes: timeDiffMinutes(voice.RecordedAt, receipt.CapturedAt),
		Status:          MatchProcessing,
	}
	if err := s.store.CreateMatch(ctx, match); err != nil {
		return nil, fmt.Errorf("create match record: %w", err)
	}

	items, err := s.store.ReceiptItems(ctx, receipt.ID)
	if err != nil {
		s.failMatch(ctx, match, err)
		return nil, fmt.Errorf("load receipt items: %w", err)
	}

	outcome := ScoreMatch(voice, receipt.TotalAmount, items)
	match.Confidence = outcome.Confidence
	match.AmountMatch = outcome.AmountMatch
	match.Pairs = outcome.Pairs
	match.Status = MatchCompleted

	if err := s.store.UpdateMatch(ctx, match); err != nil {
		return nil, fmt.Errorf("store match result: %w", err)
	}

	span.SetAttributes(
		attribute.Float64("reconcile.confidence", match.Confidence),
		attribute.Int("reconcile.pairs", len(match.Pairs)),
	)
	metrics.RecordReconcileMatch(string(match.Status), match.Confidence)

	s.logger.Debug("voice matched against receipt",
		slog.String("voice_id", voice.ID.String()),
		slog.String("receipt_id", receipt.ID.String()),
		slog.Float64("confidence", match.Confidence))

	return match, nil
}

// failMatch marks a match failed, best effort.
func (s *Service) failMatch(ctx context.Context, match *Match, cause error) {
	match.Status = MatchFailed
	match.ErrorMessage = cause.Error()
	if err := s.store.UpdateMatch(ctx, match); err != nil {
		s.logger.Error("failed to record match failure",
			slog.String("match_id", match.ID.String()),
			slog.Any("error", err))
	}
	metrics.RecordReconcileMatch(string(MatchFailed), 0)
}

// AutoMatch scores a voice message against every candidate receipt in
// the window. Per-candidate failures are logged and skipped so one bad
// receipt never hides the others. Matches above the found threshold
// come back sorted by confidence; the best one is pushed to the user
// when it clears the notify threshold.
func (s *Service) AutoMatch(ctx context.Context, voice *VoiceExtraction) ([]Match, error) {
	ctx, span := s.tracer.Start(ctx, "reconcile.auto_match")
	defer span.End()

	receipts, err := s.FindCandidateReceipts(ctx, voice)
	if err != nil {
		return nil, fmt.Errorf("find candidate receipts: %w", err)
	}
	span.SetAttributes(attribute.Int("reconcile.candidates", len(receipts)))

	var matches []Match
	for i := range receipts {
		match, err := s.MatchVoiceWithReceipt(ctx, voice, &receipts[i])
		if err != nil {
			s.logger.Error("receipt comparison failed",
				slog.String("voice_id", voice.ID.String()),
				slog.String("receipt_id", receipts[i].ID.String()),
				slog.Any("error", err))
			continue
		}
		if match.Status == MatchCompleted && match.Confidence > FoundThreshold {
			matches = append(matches, *match)
		}
	}

	sort.SliceStable(matches, func(i, j int) bool {
		return matches[i].Confidence > matches[j].Confidence
	})

	s.logger.Info("auto match finished",
		slog.String("voice_id", voice.ID.String()),
		slog.Int("candidates", len(receipts)),
		slog.Int("found", len(matches)))

	s.notifyBest(ctx, voice, matches)

	return matches, nil
}

// notifyBest pushes the top match when it clears the notify threshold.
// Delivery failures are logged, never propagated into the match result.
func (s *Service) notifyBest(ctx context.Context, voice *VoiceExtraction, matches []Match) {
	if s.notifier == nil || len(matches) == 0 {
		return
	}
	best := matches[0]
	if best.Confidence <= NotifyThreshold {
		return
	}

	msg := &notify.Message{
		UserID: voice.UserID.String(),
		Kind:   notify.KindReceiptLink,
		Body:   receiptMatchBody(voice.Language, best.Confidence),
		Data: map[string]any{
			"match_id":   best.ID.String(),
			"receipt_id": best.ReceiptID.String(),
			"confidence": best.Confidence,
		},
	}
	if err := s.notifier.Send(ctx, msg); err != nil {
		s.logger.Error("match notification failed",
			slog.String("match_id", best.ID.String()),
			slog.Any("error", err))
	}
}

// Sweep reprocesses recent voice messages that have no comparisons yet.
// The periodic job calls this; lookback bounds how far back it reaches.
func (s *Service) Sweep(ctx context.Context, lookback time.Duration, limit int) (int, error) {
	since := time.Now().Add(-lookback)
	voices, err := s.store.RecentUnmatchedVoices(ctx, since, limit)
	if err != nil {
		return 0, fmt.Errorf("sweep unmatched voices: %w", err)
	}

	found := 0
	for i := range voices {
		matches, err := s.AutoMatch(ctx, &voices[i])
		if err != nil {
			s.logger.Error("sweep auto match failed",
				slog.String("voice_id", voices[i].ID.String()),
				slog.Any("error", err))
			continue
		}
		found += len(matches)
	}

	return found, nil
}

func receiptMatchBody(lang nlu.Language, confidence float64) string {
	percent := int(confidence * 100)
	switch lang {
	case nlu.LangUzbek:
		return fmt.Sprintf("Xaridingizga mos chek topildi (moslik %d%%)", percent)
	case nlu.LangEnglish:
		return fmt.Sprintf("Found a receipt matching your purchase (%d%% match)", percent)
	default:
		return fmt.Sprintf("Найден чек, похожий на вашу покупку (совпадение %d%%)", percent)
	}
}

func timeDiffMinutes(a, b time.Time) int {
	d := a.Sub(b)
	if d < 0 {
		d = -d
	}
	return int(d.Minutes())
}
