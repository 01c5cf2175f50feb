// Package reconcile links spoken purchase descriptions to scanned
// receipts of the same user. Extraction pulls items and totals out of
// the voice text, scoring compares them to receipt lines, and the
// service persists every comparison with its confidence.
package reconcile

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/ovozpay/nlu-engine/internal/domain/nlu"
)

// ReceiptStatus is the processing state of a scanned receipt.
type ReceiptStatus string

const (
	ReceiptProcessing    ReceiptStatus = "processing"
	ReceiptCompleted     ReceiptStatus = "completed"
	ReceiptFailed        ReceiptStatus = "failed"
	ReceiptPendingReview ReceiptStatus = "pending_review"
)

// MatchStatus is the processing state of one voice-receipt comparison.
type MatchStatus string

const (
	MatchProcessing MatchStatus = "processing"
	MatchCompleted  MatchStatus = "completed"
	MatchFailed     MatchStatus = "failed"
)

// VoiceItem is one purchase mentioned in a voice message.
type VoiceItem struct {
	Name       string          `json:"name"`
	Price      decimal.Decimal `json:"price"` // zero when the speaker gave no price
	Quantity   int             `json:"quantity"`
	Confidence float64         `json:"confidence"`
}

// VoiceExtraction is a processed voice message: its raw text plus the
// items and total pulled out of it.
type VoiceExtraction struct {
	ID          uuid.UUID
	UserID      uuid.UUID
	Text        string
	Language    nlu.Language
	SpokenTotal decimal.Decimal
	Items       []VoiceItem
	RecordedAt  time.Time
	CreatedAt   time.Time
}

// ReceiptExtraction is a scanned receipt header.
type ReceiptExtraction struct {
	ID          uuid.UUID
	UserID      uuid.UUID
	ShopName    string
	TotalAmount decimal.Decimal
	Status      ReceiptStatus
	CapturedAt  time.Time
	CreatedAt   time.Time
}

// ReceiptItem is one line of a scanned receipt.
type ReceiptItem struct {
	ID         uuid.UUID
	ReceiptID  uuid.UUID
	Name       string
	Quantity   decimal.Decimal
	UnitPrice  decimal.Decimal
	TotalPrice decimal.Decimal
	LineNumber int
}

// MatchPair is one accepted voice-to-receipt item pairing.
type MatchPair struct {
	VoiceName    string          `json:"voice_name"`
	VoicePrice   decimal.Decimal `json:"voice_price"`
	ReceiptName  string          `json:"receipt_name"`
	ReceiptPrice decimal.Decimal `json:"receipt_price"`
	Similarity   float64         `json:"similarity"`
	PriceMatch   bool            `json:"price_match"`
}

// Match is one persisted voice-receipt comparison.
type Match struct {
	ID              uuid.UUID
	UserID          uuid.UUID
	VoiceID         uuid.UUID
	ReceiptID       uuid.UUID
	Confidence      float64
	AmountMatch     bool
	TimeDiffMinutes int
	Pairs           []MatchPair
	Status          MatchStatus
	ErrorMessage    string
	CreatedAt       time.Time
	UpdatedAt       time.Time
}
