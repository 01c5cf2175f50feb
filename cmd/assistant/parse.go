package main

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"

	"github.com/spf13/cobra"

	"github.com/ovozpay/nlu-engine/internal/domain/nlu"
)

// parseOutput is the JSON rendering of one classified command.
type parseOutput struct {
	Recognized bool     `json:"recognized"`
	Intent     string   `json:"intent,omitempty"`
	Language   string   `json:"language,omitempty"`
	Confidence float64  `json:"confidence,omitempty"`
	Normalized string   `json:"normalized,omitempty"`
	Pattern    string   `json:"pattern,omitempty"`
	Groups     []string `json:"groups,omitempty"`
	Slots      any      `json:"slots,omitempty"`
}

func parseCmd() *cobra.Command {
	var lang string

	cmd := &cobra.Command{
		Use:   "parse [text]",
		Short: "Classify a voice command (storage-free)",
		Long: `Classify a recognized voice text into an intent with typed slots and a
confidence score. Nothing is persisted.

Examples:
  assistant parse "потратил 5000 сум на хлеб"
  assistant parse --lang uz "qarz alisher 50000"`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			language := nlu.Language(lang)
			if !language.Supported() {
				return fmt.Errorf("unsupported language: %s", lang)
			}

			text := strings.Join(args, " ")
			classifier := nlu.NewClassifier(slog.Default())
			parsed := classifier.Parse(text, language)

			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			if parsed == nil {
				return enc.Encode(parseOutput{Recognized: false})
			}
			return enc.Encode(parseOutput{
				Recognized: true,
				Intent:     string(parsed.Intent),
				Language:   string(parsed.Language),
				Confidence: parsed.Confidence,
				Normalized: parsed.Normalized,
				Pattern:    parsed.Pattern,
				Groups:     parsed.Groups,
				Slots:      parsed.Slots,
			})
		},
	}

	cmd.Flags().StringVar(&lang, "lang", "ru", "declared input language (ru, uz, en)")

	return cmd
}
