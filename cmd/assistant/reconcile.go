package main

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"github.com/ovozpay/nlu-engine/internal/domain/nlu"
	"github.com/ovozpay/nlu-engine/internal/domain/reconcile"
)

// receiptFile is the JSON shape the reconcile command reads.
type receiptFile struct {
	ShopName    string            `json:"shop_name"`
	TotalAmount decimal.Decimal   `json:"total_amount"`
	Items       []receiptFileItem `json:"items"`
}

type receiptFileItem struct {
	Name     string          `json:"name"`
	Quantity decimal.Decimal `json:"quantity"`
	Price    decimal.Decimal `json:"price"`
}

// reconcileOutput is the JSON rendering of one scored comparison.
type reconcileOutput struct {
	Confidence   float64               `json:"confidence"`
	AmountScore  float64               `json:"amount_score"`
	ItemScore    float64               `json:"item_score"`
	AmountMatch  bool                  `json:"amount_match"`
	ItemsMatch   bool                  `json:"items_match"`
	SpokenTotal  decimal.Decimal       `json:"spoken_total"`
	ReceiptTotal decimal.Decimal       `json:"receipt_total"`
	VoiceItems   []reconcile.VoiceItem `json:"voice_items"`
	Pairs        []reconcile.MatchPair `json:"pairs,omitempty"`
}

func reconcileCmd() *cobra.Command {
	var (
		lang        string
		receiptPath string
	)

	cmd := &cobra.Command{
		Use:   "reconcile [voice text]",
		Short: "Score a voice message against a receipt (storage-free)",
		Long: `Extract purchased items and the spoken total from a voice text, then
score them against a scanned receipt given as JSON. Nothing is persisted.

The receipt file carries shop_name, total_amount and items, each item
with name, quantity and price:

  {"shop_name": "Korzinka", "total_amount": "60500",
   "items": [{"name": "Хлеб", "quantity": "1", "price": "4500"}]}

Example:
  assistant reconcile --receipt receipt.json "купил хлеб и молоко, всего 60500"`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			language := nlu.Language(lang)
			if !language.Supported() {
				return fmt.Errorf("unsupported language: %s", lang)
			}

			raw, err := os.ReadFile(receiptPath)
			if err != nil {
				return fmt.Errorf("failed to read receipt file: %w", err)
			}
			var rf receiptFile
			if err := json.Unmarshal(raw, &rf); err != nil {
				return fmt.Errorf("failed to parse receipt file: %w", err)
			}

			items := make([]reconcile.ReceiptItem, 0, len(rf.Items))
			for i, it := range rf.Items {
				qty := it.Quantity
				if !qty.IsPositive() {
					qty = decimal.NewFromInt(1)
				}
				items = append(items, reconcile.ReceiptItem{
					Name:       it.Name,
					Quantity:   qty,
					UnitPrice:  it.Price,
					TotalPrice: it.Price.Mul(qty),
					LineNumber: i + 1,
				})
			}

			text := strings.Join(args, " ")
			extractor := reconcile.NewExtractor()
			voice := &reconcile.VoiceExtraction{
				Text:        text,
				Language:    language,
				SpokenTotal: extractor.Total(text, language),
				Items:       extractor.Items(text, language),
			}

			outcome := reconcile.ScoreMatch(voice, rf.TotalAmount, items)

			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(reconcileOutput{
				Confidence:   outcome.Confidence,
				AmountScore:  outcome.AmountScore,
				ItemScore:    outcome.ItemScore,
				AmountMatch:  outcome.AmountMatch,
				ItemsMatch:   outcome.ItemsMatch,
				SpokenTotal:  voice.SpokenTotal,
				ReceiptTotal: rf.TotalAmount,
				VoiceItems:   voice.Items,
				Pairs:        outcome.Pairs,
			})
		},
	}

	cmd.Flags().StringVar(&lang, "lang", "ru", "declared input language (ru, uz, en)")
	cmd.Flags().StringVar(&receiptPath, "receipt", "", "path to the receipt JSON file (required)")
	_ = cmd.MarkFlagRequired("receipt")

	return cmd
}
