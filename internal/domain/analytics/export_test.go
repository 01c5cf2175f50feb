package analytics

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

// TestExporter_WriteCSV checks the streamed rows and the header line.
func TestExporter_WriteCSV(t *testing.T) {
	userID := uuid.New()

	t.Run("window rows in order", func(t *testing.T) {
		store := &fakeAnalyticsStore{}
		food := store.addCategory(userID, "Еда")
		store.earn(userID, 100000, time.Date(2025, 3, 3, 10, 0, 0, 0, time.UTC), "Доход от Работа")
		store.spend(userID, &food, 50000, time.Date(2025, 3, 5, 13, 0, 0, 0, time.UTC), "обед")
		store.spend(userID, &food, 70000, time.Date(2025, 4, 2, 13, 0, 0, 0, time.UTC), "вне окна")
		ex := NewExporter(store, nil)

		var buf bytes.Buffer
		n, err := ex.WriteCSV(context.Background(), &buf, userID,
			time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC), time.Date(2025, 4, 1, 0, 0, 0, 0, time.UTC))

		require.NoError(t, err)
		assert.Equal(t, 2, n)

		lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
		require.Len(t, lines, 3)
		assert.Equal(t, "date,category,amount,currency,description", lines[0])
		assert.Equal(t, "2025-03-03,,100000,UZS,Доход от Работа", lines[1])
		assert.Equal(t, "2025-03-05,Еда,-50000,UZS,обед", lines[2])
	})

	t.Run("empty window keeps the header", func(t *testing.T) {
		ex := NewExporter(&fakeAnalyticsStore{}, nil)

		var buf bytes.Buffer
		n, err := ex.WriteCSV(context.Background(), &buf, userID,
			time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC), time.Date(2025, 4, 1, 0, 0, 0, 0, time.UTC))

		require.NoError(t, err)
		assert.Zero(t, n)
		assert.Equal(t, "date,category,amount,currency,description", strings.TrimRight(buf.String(), "\n"))
	})

	t.Run("store failure", func(t *testing.T) {
		boom := errors.New("boom")
		ex := NewExporter(&fakeAnalyticsStore{txErr: boom}, nil)

		var buf bytes.Buffer
		_, err := ex.WriteCSV(context.Background(), &buf, userID,
			time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC), time.Date(2025, 4, 1, 0, 0, 0, 0, time.UTC))

		assert.ErrorIs(t, err, boom)
		assert.Zero(t, buf.Len())
	})
}

// TestExporter_MonthlyReportXLSX reopens the workbook and checks both
// sheets.
func TestExporter_MonthlyReportXLSX(t *testing.T) {
	userID := uuid.New()

	t.Run("summary and transactions sheets", func(t *testing.T) {
		store := &fakeAnalyticsStore{}
		food := store.addCategory(userID, "Еда")
		taxi := store.addCategory(userID, "Такси")
		store.earn(userID, 100000, time.Date(2025, 3, 3, 10, 0, 0, 0, time.UTC), "аванс")
		store.spend(userID, &food, 60000, time.Date(2025, 3, 4, 12, 0, 0, 0, time.UTC), "продукты")
		store.spend(userID, &taxi, 30000, time.Date(2025, 3, 5, 9, 0, 0, 0, time.UTC), "аэропорт")
		store.spend(userID, nil, 10000, time.Date(2025, 3, 6, 18, 0, 0, 0, time.UTC), "мелочь")
		store.spend(userID, &food, 70000, time.Date(2025, 4, 2, 12, 0, 0, 0, time.UTC), "апрель")
		ex := NewExporter(store, nil)

		b, err := ex.MonthlyReportXLSX(context.Background(), userID, time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC))
		require.NoError(t, err)

		f, err := excelize.OpenReader(bytes.NewReader(b))
		require.NoError(t, err)
		defer f.Close()

		assert.ElementsMatch(t, []string{"Summary", "Transactions"}, f.GetSheetList())

		cell := func(sheet, ref string) string {
			v, err := f.GetCellValue(sheet, ref)
			require.NoError(t, err)
			return v
		}

		assert.Equal(t, "01.03.2025 - 31.03.2025", cell("Summary", "B1"))
		assert.Equal(t, "100000", cell("Summary", "B2"))
		assert.Equal(t, "100000", cell("Summary", "B3"))
		assert.Equal(t, "0", cell("Summary", "B4"))
		assert.Equal(t, "4", cell("Summary", "B5"))

		assert.Equal(t, "Category", cell("Summary", "A7"))
		assert.Equal(t, "Еда", cell("Summary", "A8"))
		assert.Equal(t, "60000", cell("Summary", "B8"))
		assert.Equal(t, "1", cell("Summary", "C8"))
		assert.Equal(t, "60", cell("Summary", "D8"))
		assert.Equal(t, "Такси", cell("Summary", "A9"))
		assert.Equal(t, "", cell("Summary", "A10"))
		assert.Equal(t, "10000", cell("Summary", "B10"))

		assert.Equal(t, "Date", cell("Transactions", "A1"))
		assert.Equal(t, "2025-03-03", cell("Transactions", "A2"))
		assert.Equal(t, "100000", cell("Transactions", "C2"))
		assert.Equal(t, "2025-03-04", cell("Transactions", "A3"))
		assert.Equal(t, "Еда", cell("Transactions", "B3"))
		assert.Equal(t, "-60000", cell("Transactions", "C3"))
		assert.Equal(t, "", cell("Transactions", "A6"))
	})

	t.Run("store failure", func(t *testing.T) {
		boom := errors.New("boom")
		ex := NewExporter(&fakeAnalyticsStore{summaryErr: boom}, nil)

		_, err := ex.MonthlyReportXLSX(context.Background(), userID, time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC))
		assert.ErrorIs(t, err, boom)
	})
}
