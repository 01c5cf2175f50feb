package main

import (
	"encoding/json"

	"github.com/spf13/cobra"

	"github.com/ovozpay/nlu-engine/internal/domain/nlu"
)

func commandsCmd() *cobra.Command {
	var lang string

	cmd := &cobra.Command{
		Use:   "commands",
		Short: "List the supported voice commands",
		Long: `List the always-on voice commands with a speakable example and a
localized description each, in resolution order.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(nlu.SupportedCommands(nlu.Language(lang)))
		},
	}

	cmd.Flags().StringVar(&lang, "lang", "ru", "listing language (ru, uz, en)")

	return cmd
}
