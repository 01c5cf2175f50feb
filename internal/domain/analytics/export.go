package analytics

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/gocarina/gocsv"
	"github.com/google/uuid"
	"github.com/xuri/excelize/v2"
)

// csvRow is one line of the CSV export. Amounts keep their stored sign.
type csvRow struct {
	Date        string `csv:"date"`
	Category    string `csv:"category"`
	Amount      string `csv:"amount"`
	Currency    string `csv:"currency"`
	Description string `csv:"description"`
}

// Exporter renders transaction windows as downloadable reports.
type Exporter struct {
	store  Store
	logger *slog.Logger
}

func NewExporter(store Store, logger *slog.Logger) *Exporter {
	if logger == nil {
		logger = slog.Default()
	}
	return &Exporter{store: store, logger: logger}
}

// WriteCSV streams the window's transactions to w and reports the row
// count. An empty window still writes the header line.
func (x *Exporter) WriteCSV(ctx context.Context, w io.Writer, userID uuid.UUID, from, to time.Time) (int, error) {
	rows, err := x.store.Transactions(ctx, userID, from, to)
	if err != nil {
		return 0, err
	}

	out := make([]csvRow, 0, len(rows))
	for _, r := range rows {
		out = append(out, csvRow{
			Date:        r.OccurredAt.Format("2006-01-02"),
			Category:    r.Category,
			Amount:      r.Amount.String(),
			Currency:    r.Currency,
			Description: r.Description,
		})
	}
	if err := gocsv.Marshal(&out, w); err != nil {
		return 0, fmt.Errorf("write csv: %w", err)
	}

	x.logger.Info("csv export", "user_id", userID, "rows", len(out))
	return len(out), nil
}

// MonthlyReportXLSX builds one calendar month's workbook: a summary
// sheet with the totals and the category ranking, and a sheet with the
// raw transactions.
func (x *Exporter) MonthlyReportXLSX(ctx context.Context, userID uuid.UUID, month time.Time) ([]byte, error) {
	p := period{monthStart(month), monthStart(month).AddDate(0, 1, -1)}
	from, to := p.bounds()

	sum, err := x.store.Summary(ctx, userID, from, to, nil)
	if err != nil {
		return nil, err
	}
	ranked, err := x.store.TopCategories(ctx, userID, from, to, 10)
	if err != nil {
		return nil, err
	}
	rows, err := x.store.Transactions(ctx, userID, from, to)
	if err != nil {
		return nil, err
	}

	f := excelize.NewFile()
	const summarySheet = "Summary"
	const txSheet = "Transactions"
	if err := f.SetSheetName("Sheet1", summarySheet); err != nil {
		return nil, fmt.Errorf("rename sheet: %w", err)
	}
	if _, err := f.NewSheet(txSheet); err != nil {
		return nil, fmt.Errorf("add sheet: %w", err)
	}

	write := func(sheet string, col, row int, v any) {
		cell, _ := excelize.CoordinatesToCellName(col, row)
		_ = f.SetCellValue(sheet, cell, v)
	}

	write(summarySheet, 1, 1, "Period")
	write(summarySheet, 2, 1, p.String())
	write(summarySheet, 1, 2, "Expenses")
	write(summarySheet, 2, 2, sum.ExpenseTotal.String())
	write(summarySheet, 1, 3, "Income")
	write(summarySheet, 2, 3, sum.IncomeTotal.String())
	write(summarySheet, 1, 4, "Balance")
	write(summarySheet, 2, 4, sum.IncomeTotal.Sub(sum.ExpenseTotal).String())
	write(summarySheet, 1, 5, "Transactions")
	write(summarySheet, 2, 5, sum.ExpenseCount+sum.IncomeCount)

	rankingHeaders := []string{"Category", "Total", "Count", "Share %"}
	for i, h := range rankingHeaders {
		write(summarySheet, i+1, 7, h)
	}
	rankedTotal := sum.ExpenseTotal
	for i, ct := range ranked {
		share := 0.0
		if rankedTotal.IsPositive() {
			share = roundTenth(ct.Total.Div(rankedTotal).InexactFloat64() * 100)
		}
		write(summarySheet, 1, 8+i, ct.Name)
		write(summarySheet, 2, 8+i, ct.Total.String())
		write(summarySheet, 3, 8+i, ct.Count)
		write(summarySheet, 4, 8+i, share)
	}
	_ = f.SetColWidth(summarySheet, "A", "A", 24)
	_ = f.SetColWidth(summarySheet, "B", "B", 24)

	txHeaders := []string{"Date", "Category", "Amount", "Currency", "Description"}
	for i, h := range txHeaders {
		write(txSheet, i+1, 1, h)
	}
	for i, r := range rows {
		write(txSheet, 1, i+2, r.OccurredAt.Format("2006-01-02"))
		write(txSheet, 2, i+2, r.Category)
		write(txSheet, 3, i+2, r.Amount.String())
		write(txSheet, 4, i+2, r.Currency)
		write(txSheet, 5, i+2, r.Description)
	}
	_ = f.SetColWidth(txSheet, "A", "A", 14)
	_ = f.SetColWidth(txSheet, "B", "B", 22)
	_ = f.SetColWidth(txSheet, "C", "D", 14)
	_ = f.SetColWidth(txSheet, "E", "E", 48)

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("xlsx write: %w", err)
	}

	x.logger.Info("monthly report exported",
		"user_id", userID, "month", p.start.Format("2006-01"), "rows", len(rows))
	return buf.Bytes(), nil
}
