package reconcile

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/ovozpay/nlu-engine/internal/domain/nlu"
)

// Store is the persistence surface of the reconciliation flow.
type Store interface {
	SaveVoice(ctx context.Context, voice *VoiceExtraction) error
	SaveReceipt(ctx context.Context, receipt *ReceiptExtraction, items []ReceiptItem) error
	ReceiptsInWindow(ctx context.Context, userID uuid.UUID, from, to time.Time) ([]ReceiptExtraction, error)
	ReceiptItems(ctx context.Context, receiptID uuid.UUID) ([]ReceiptItem, error)
	CreateMatch(ctx context.Context, match *Match) error
	UpdateMatch(ctx context.Context, match *Match) error
	RecentUnmatchedVoices(ctx context.Context, since time.Time, limit int) ([]VoiceExtraction, error)
}

// Repository implements Store over Postgres.
type Repository struct {
	db *pgxpool.Pool
}

// NewRepository creates a new reconciliation repository.
func NewRepository(db *pgxpool.Pool) *Repository {
	return &Repository{db: db}
}

// SaveVoice persists a processed voice message with its extracted items.
func (r *Repository) SaveVoice(ctx context.Context, voice *VoiceExtraction) error {
	items, err := json.Marshal(voice.Items)
	if err != nil {
		return fmt.Errorf("marshal voice items: %w", err)
	}

	query := `
		INSERT INTO voice_extractions (id, user_id, text, language, spoken_total, items, recorded_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING created_at
	`

	err = r.db.QueryRow(ctx, query,
		voice.ID,
		voice.UserID,
		voice.Text,
		string(voice.Language),
		voice.SpokenTotal,
		items,
		voice.RecordedAt,
	).Scan(&voice.CreatedAt)
	if err != nil {
		return fmt.Errorf("save voice extraction: %w", err)
	}

	return nil
}

// SaveReceipt persists a receipt header and its lines in one
// transaction.
func (r *Repository) SaveReceipt(ctx context.Context, receipt *ReceiptExtraction, items []ReceiptItem) error {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin receipt transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	headerQuery := `
		INSERT INTO receipt_extractions (id, user_id, shop_name, total_amount, status, captured_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING created_at
	`

	err = tx.QueryRow(ctx, headerQuery,
		receipt.ID,
		receipt.UserID,
		receipt.ShopName,
		receipt.TotalAmount,
		string(receipt.Status),
		receipt.CapturedAt,
	).Scan(&receipt.CreatedAt)
	if err != nil {
		return fmt.Errorf("save receipt extraction: %w", err)
	}

	itemQuery := `
		INSERT INTO receipt_items (id, receipt_id, name, quantity, unit_price, total_price, line_number)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`

	for i := range items {
		items[i].ReceiptID = receipt.ID
		if _, err := tx.Exec(ctx, itemQuery,
			items[i].ID,
			items[i].ReceiptID,
			items[i].Name,
			items[i].Quantity,
			items[i].UnitPrice,
			items[i].TotalPrice,
			items[i].LineNumber,
		); err != nil {
			return fmt.Errorf("save receipt item %d: %w", items[i].LineNumber, err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit receipt transaction: %w", err)
	}

	return nil
}

// ReceiptsInWindow lists completed receipts of a user captured inside
// [from, to], newest first.
func (r *Repository) ReceiptsInWindow(ctx context.Context, userID uuid.UUID, from, to time.Time) ([]ReceiptExtraction, error) {
	query := `
		SELECT id, user_id, shop_name, total_amount, status, captured_at, created_at
		FROM receipt_extractions
		WHERE user_id = $1 AND status = 'completed' AND captured_at BETWEEN $2 AND $3
		ORDER BY captured_at DESC, id
	`

	rows, err := r.db.Query(ctx, query, userID, from, to)
	if err != nil {
		return nil, fmt.Errorf("list receipts in window: %w", err)
	}
	defer rows.Close()

	var receipts []ReceiptExtraction
	for rows.Next() {
		var rec ReceiptExtraction
		var status string
		if err := rows.Scan(&rec.ID, &rec.UserID, &rec.ShopName, &rec.TotalAmount, &status, &rec.CapturedAt, &rec.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan receipt: %w", err)
		}
		rec.Status = ReceiptStatus(status)
		receipts = append(receipts, rec)
	}

	return receipts, rows.Err()
}

// ReceiptItems lists a receipt's lines in printed order.
func (r *Repository) ReceiptItems(ctx context.Context, receiptID uuid.UUID) ([]ReceiptItem, error) {
	query := `
		SELECT id, receipt_id, name, quantity, unit_price, total_price, line_number
		FROM receipt_items
		WHERE receipt_id = $1
		ORDER BY line_number, id
	`

	rows, err := r.db.Query(ctx, query, receiptID)
	if err != nil {
		return nil, fmt.Errorf("list receipt items: %w", err)
	}
	defer rows.Close()

	var items []ReceiptItem
	for rows.Next() {
		var item ReceiptItem
		if err := rows.Scan(&item.ID, &item.ReceiptID, &item.Name, &item.Quantity, &item.UnitPrice, &item.TotalPrice, &item.LineNumber); err != nil {
			return nil, fmt.Errorf("scan receipt item: %w", err)
		}
		items = append(items, item)
	}

	return items, rows.Err()
}

// CreateMatch inserts a match row, usually in the processing state.
func (r *Repository) CreateMatch(ctx context.Context, match *Match) error {
	pairs, err := json.Marshal(match.Pairs)
	if err != nil {
		return fmt.Errorf("marshal match pairs: %w", err)
	}

	query := `
		INSERT INTO receipt_voice_matches
			(id, user_id, voice_id, receipt_id, confidence, amount_match, time_diff_minutes, pairs, status, error_message)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING created_at, updated_at
	`

	err = r.db.QueryRow(ctx, query,
		match.ID,
		match.UserID,
		match.VoiceID,
		match.ReceiptID,
		match.Confidence,
		match.AmountMatch,
		match.TimeDiffMinutes,
		pairs,
		string(match.Status),
		match.ErrorMessage,
	).Scan(&match.CreatedAt, &match.UpdatedAt)
	if err != nil {
		return fmt.Errorf("create match: %w", err)
	}

	return nil
}

// UpdateMatch writes the scored result back onto a match row.
func (r *Repository) UpdateMatch(ctx context.Context, match *Match) error {
	pairs, err := json.Marshal(match.Pairs)
	if err != nil {
		return fmt.Errorf("marshal match pairs: %w", err)
	}

	query := `
		UPDATE receipt_voice_matches
		SET confidence = $2,
		    amount_match = $3,
		    time_diff_minutes = $4,
		    pairs = $5,
		    status = $6,
		    error_message = $7,
		    updated_at = now()
		WHERE id = $1
		RETURNING updated_at
	`

	err = r.db.QueryRow(ctx, query,
		match.ID,
		match.Confidence,
		match.AmountMatch,
		match.TimeDiffMinutes,
		pairs,
		string(match.Status),
		match.ErrorMessage,
	).Scan(&match.UpdatedAt)
	if err != nil {
		return fmt.Errorf("update match: %w", err)
	}

	return nil
}

// RecentUnmatchedVoices lists voice extractions recorded since the
// given time that have no match rows yet, oldest first. The periodic
// sweep feeds on this.
func (r *Repository) RecentUnmatchedVoices(ctx context.Context, since time.Time, limit int) ([]VoiceExtraction, error) {
	query := `
		SELECT v.id, v.user_id, v.text, v.language, v.spoken_total, v.items, v.recorded_at, v.created_at
		FROM voice_extractions v
		WHERE v.recorded_at >= $1
		  AND NOT EXISTS (
			SELECT 1 FROM receipt_voice_matches m WHERE m.voice_id = v.id
		  )
		ORDER BY v.recorded_at, v.id
		LIMIT $2
	`

	rows, err := r.db.Query(ctx, query, since, limit)
	if err != nil {
		return nil, fmt.Errorf("list unmatched voices: %w", err)
	}
	defer rows.Close()

	var voices []VoiceExtraction
	for rows.Next() {
		var voice VoiceExtraction
		var language string
		var itemsJSON []byte
		if err := rows.Scan(&voice.ID, &voice.UserID, &voice.Text, &language, &voice.SpokenTotal, &itemsJSON, &voice.RecordedAt, &voice.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan voice extraction: %w", err)
		}
		voice.Language = nlu.Language(language)
		if len(itemsJSON) > 0 {
			if err := json.Unmarshal(itemsJSON, &voice.Items); err != nil {
				return nil, fmt.Errorf("unmarshal voice items: %w", err)
			}
		}
		voices = append(voices, voice)
	}

	return voices, rows.Err()
}
