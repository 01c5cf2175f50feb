package main

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/ovozpay/nlu-engine/internal/domain/nlu"
	"github.com/ovozpay/nlu-engine/pkg/config"
)

func execCmd() *cobra.Command {
	var (
		lang   string
		userID string
	)

	cmd := &cobra.Command{
		Use:   "exec [text]",
		Short: "Run a voice command through the full pipeline against the database",
		Long: `Classify a recognized voice text and execute it for the given user:
the command's effects are persisted and the localized reply is printed
as JSON.

Examples:
  assistant exec --user 4f8f... "потратил 5000 сум на хлеб"
  assistant exec --user 4f8f... --lang en "my debts"`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return fmt.Errorf("failed to load config: %w", err)
			}
			if !cmd.Flags().Changed("lang") {
				lang = cfg.NLU.DefaultLanguage
			}
			language := nlu.Language(lang)
			if !language.Supported() {
				return fmt.Errorf("unsupported language: %s", lang)
			}
			uid, err := uuid.Parse(userID)
			if err != nil {
				return fmt.Errorf("invalid user id: %w", err)
			}
			deps, err := InitDependencies(cfg, slog.Default())
			if err != nil {
				return err
			}
			defer deps.Cleanup()

			ctx := cmd.Context()
			text := strings.Join(args, " ")
			parsed := deps.Classifier.Parse(text, language)
			res := deps.Dispatcher.Dispatch(ctx, uid, parsed)

			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(res)
		},
	}

	cmd.Flags().StringVar(&lang, "lang", "ru", "declared input language (ru, uz, en); unset falls back to NLU_DEFAULT_LANGUAGE")
	cmd.Flags().StringVar(&userID, "user", "", "user id the command runs for (required)")
	_ = cmd.MarkFlagRequired("user")

	return cmd
}
