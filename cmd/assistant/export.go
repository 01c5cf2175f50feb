package main

import (
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/ovozpay/nlu-engine/pkg/config"
)

func exportCmd() *cobra.Command {
	var (
		userID  string
		month   string
		format  string
		outPath string
	)

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export a month of transactions to CSV or XLSX",
		Long: `Export one user's transactions for a calendar month: a plain CSV dump
or the two-sheet XLSX monthly report.

Examples:
  assistant export --user 4f8f... --month 2025-03 --format csv --out march.csv
  assistant export --user 4f8f... --month 2025-03 --format xlsx --out march.xlsx`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			uid, err := uuid.Parse(userID)
			if err != nil {
				return fmt.Errorf("invalid user id: %w", err)
			}
			start, err := time.Parse("2006-01", month)
			if err != nil {
				return fmt.Errorf("invalid month, want YYYY-MM: %w", err)
			}

			cfg, err := config.Load()
			if err != nil {
				return fmt.Errorf("failed to load config: %w", err)
			}
			deps, err := InitDependencies(cfg, slog.Default())
			if err != nil {
				return err
			}
			defer deps.Cleanup()

			ctx := cmd.Context()
			switch format {
			case "csv":
				f, err := os.Create(outPath)
				if err != nil {
					return fmt.Errorf("failed to create output file: %w", err)
				}
				defer f.Close()

				n, err := deps.Exporter.WriteCSV(ctx, f, uid, start, start.AddDate(0, 1, 0))
				if err != nil {
					return fmt.Errorf("failed to export csv: %w", err)
				}
				fmt.Fprintf(cmd.OutOrStdout(), "exported %d transactions to %s\n", n, outPath)
				return nil

			case "xlsx":
				report, err := deps.Exporter.MonthlyReportXLSX(ctx, uid, start)
				if err != nil {
					return fmt.Errorf("failed to build report: %w", err)
				}
				if err := os.WriteFile(outPath, report, 0o644); err != nil {
					return fmt.Errorf("failed to write output file: %w", err)
				}
				fmt.Fprintf(cmd.OutOrStdout(), "exported monthly report to %s\n", outPath)
				return nil

			default:
				return fmt.Errorf("unsupported format: %s", format)
			}
		},
	}

	cmd.Flags().StringVar(&userID, "user", "", "user id to export (required)")
	cmd.Flags().StringVar(&month, "month", "", "calendar month, format 2025-03 (required)")
	cmd.Flags().StringVar(&format, "format", "csv", "output format (csv, xlsx)")
	cmd.Flags().StringVar(&outPath, "out", "", "output file path (required)")
	_ = cmd.MarkFlagRequired("user")
	_ = cmd.MarkFlagRequired("month")
	_ = cmd.MarkFlagRequired("out")

	return cmd
}
