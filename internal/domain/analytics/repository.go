package analytics

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
)

// PeriodSummary aggregates one time window. Expense totals are stored
// negative and reported positive.
type PeriodSummary struct {
	ExpenseTotal decimal.Decimal
	ExpenseCount int
	IncomeTotal  decimal.Decimal
	IncomeCount  int
}

// CategoryTotal is one row of an expense ranking. Name is empty for
// uncategorized spending.
type CategoryTotal struct {
	Name  string
	Total decimal.Decimal
	Count int
}

// DayTotal carries one day of turnover.
type DayTotal struct {
	Day      time.Time
	Expenses decimal.Decimal
	Incomes  decimal.Decimal
}

// MonthTotal carries one month of expenses for trend analysis.
type MonthTotal struct {
	Month time.Time
	Total decimal.Decimal
	Count int
}

// WindowStats aggregates one category over one window.
type WindowStats struct {
	Total decimal.Decimal
	Count int
}

// CategoryRef names a matched category.
type CategoryRef struct {
	ID   uuid.UUID
	Name string
}

// ExpenseDetail is one recent expense of a category.
type ExpenseDetail struct {
	Amount      decimal.Decimal
	Description string
	OccurredAt  time.Time
}

// ExportRow is one transaction of an export. Amount keeps its stored
// sign so the file distinguishes expenses from income.
type ExportRow struct {
	OccurredAt  time.Time
	Category    string
	Amount      decimal.Decimal
	Currency    string
	Description string
}

// Store is the read-side contract of the analytics commands and the
// report exports. All windows are half-open: from inclusive, to
// exclusive.
type Store interface {
	Summary(ctx context.Context, userID uuid.UUID, from, to time.Time, categoryID *uuid.UUID) (*PeriodSummary, error)
	// TopCategories ranks expense categories by total, largest first.
	TopCategories(ctx context.Context, userID uuid.UUID, from, to time.Time, limit int) ([]CategoryTotal, error)
	DailyTotals(ctx context.Context, userID uuid.UUID, from, to time.Time) ([]DayTotal, error)
	// FindCategory looks up a category whose name contains the given
	// fragment, ignoring case. Returns nil without error when none
	// matches.
	FindCategory(ctx context.Context, userID uuid.UUID, name string) (*CategoryRef, error)
	// CategoryWindow aggregates one category's expenses over a window.
	CategoryWindow(ctx context.Context, userID, categoryID uuid.UUID, from, to time.Time) (WindowStats, error)
	RecentExpenses(ctx context.Context, userID, categoryID uuid.UUID, limit int) ([]ExpenseDetail, error)
	// MonthlyTotals groups expenses by calendar month from the given
	// point on, oldest first. A nil category covers all spending.
	MonthlyTotals(ctx context.Context, userID uuid.UUID, categoryID *uuid.UUID, from time.Time) ([]MonthTotal, error)
	// Transactions returns the raw rows of a window for export, oldest
	// first.
	Transactions(ctx context.Context, userID uuid.UUID, from, to time.Time) ([]ExportRow, error)
}

// Repository implements Store on PostgreSQL.
type Repository struct {
	pool *pgxpool.Pool
}

func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

func (r *Repository) Summary(ctx context.Context, userID uuid.UUID, from, to time.Time, categoryID *uuid.UUID) (*PeriodSummary, error) {
	query := `SELECT
			COALESCE(SUM(-amount) FILTER (WHERE amount < 0), 0),
			COUNT(*) FILTER (WHERE amount < 0),
			COALESCE(SUM(amount) FILTER (WHERE amount > 0), 0),
			COUNT(*) FILTER (WHERE amount > 0)
		FROM transactions
		WHERE user_id = $1 AND occurred_at >= $2 AND occurred_at < $3
			AND ($4::uuid IS NULL OR category_id = $4)`

	var sum PeriodSummary
	err := r.pool.QueryRow(ctx, query, userID, from, to, categoryID).Scan(
		&sum.ExpenseTotal, &sum.ExpenseCount, &sum.IncomeTotal, &sum.IncomeCount,
	)
	if err != nil {
		return nil, fmt.Errorf("period summary: %w", err)
	}
	return &sum, nil
}

func (r *Repository) TopCategories(ctx context.Context, userID uuid.UUID, from, to time.Time, limit int) ([]CategoryTotal, error) {
	query := `SELECT COALESCE(c.name, ''), SUM(-t.amount), COUNT(*)
		FROM transactions t
		LEFT JOIN categories c ON c.id = t.category_id
		WHERE t.user_id = $1 AND t.amount < 0 AND t.occurred_at >= $2 AND t.occurred_at < $3
		GROUP BY c.name
		ORDER BY SUM(-t.amount) DESC
		LIMIT $4`

	rows, err := r.pool.Query(ctx, query, userID, from, to, limit)
	if err != nil {
		return nil, fmt.Errorf("top categories: %w", err)
	}
	defer rows.Close()

	var totals []CategoryTotal
	for rows.Next() {
		var ct CategoryTotal
		if err := rows.Scan(&ct.Name, &ct.Total, &ct.Count); err != nil {
			return nil, fmt.Errorf("scan category total: %w", err)
		}
		totals = append(totals, ct)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate category totals: %w", err)
	}
	return totals, nil
}

func (r *Repository) DailyTotals(ctx context.Context, userID uuid.UUID, from, to time.Time) ([]DayTotal, error) {
	query := `SELECT date_trunc('day', occurred_at),
			COALESCE(SUM(-amount) FILTER (WHERE amount < 0), 0),
			COALESCE(SUM(amount) FILTER (WHERE amount > 0), 0)
		FROM transactions
		WHERE user_id = $1 AND occurred_at >= $2 AND occurred_at < $3
		GROUP BY 1
		ORDER BY 1`

	rows, err := r.pool.Query(ctx, query, userID, from, to)
	if err != nil {
		return nil, fmt.Errorf("daily totals: %w", err)
	}
	defer rows.Close()

	var days []DayTotal
	for rows.Next() {
		var day DayTotal
		if err := rows.Scan(&day.Day, &day.Expenses, &day.Incomes); err != nil {
			return nil, fmt.Errorf("scan day total: %w", err)
		}
		days = append(days, day)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate day totals: %w", err)
	}
	return days, nil
}

func (r *Repository) FindCategory(ctx context.Context, userID uuid.UUID, name string) (*CategoryRef, error) {
	query := `SELECT id, name FROM categories
		WHERE user_id = $1 AND name ILIKE '%' || $2 || '%'
		ORDER BY created_at, id
		LIMIT 1`

	var ref CategoryRef
	err := r.pool.QueryRow(ctx, query, userID, name).Scan(&ref.ID, &ref.Name)
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find category: %w", err)
	}
	return &ref, nil
}

func (r *Repository) CategoryWindow(ctx context.Context, userID, categoryID uuid.UUID, from, to time.Time) (WindowStats, error) {
	query := `SELECT COALESCE(SUM(-amount), 0), COUNT(*)
		FROM transactions
		WHERE user_id = $1 AND category_id = $2 AND amount < 0
			AND occurred_at >= $3 AND occurred_at < $4`

	var stats WindowStats
	err := r.pool.QueryRow(ctx, query, userID, categoryID, from, to).Scan(&stats.Total, &stats.Count)
	if err != nil {
		return WindowStats{}, fmt.Errorf("category window: %w", err)
	}
	return stats, nil
}

func (r *Repository) RecentExpenses(ctx context.Context, userID, categoryID uuid.UUID, limit int) ([]ExpenseDetail, error) {
	query := `SELECT -amount, description, occurred_at
		FROM transactions
		WHERE user_id = $1 AND category_id = $2 AND amount < 0
		ORDER BY occurred_at DESC
		LIMIT $3`

	rows, err := r.pool.Query(ctx, query, userID, categoryID, limit)
	if err != nil {
		return nil, fmt.Errorf("recent expenses: %w", err)
	}
	defer rows.Close()

	var details []ExpenseDetail
	for rows.Next() {
		var d ExpenseDetail
		if err := rows.Scan(&d.Amount, &d.Description, &d.OccurredAt); err != nil {
			return nil, fmt.Errorf("scan expense: %w", err)
		}
		details = append(details, d)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate expenses: %w", err)
	}
	return details, nil
}

func (r *Repository) MonthlyTotals(ctx context.Context, userID uuid.UUID, categoryID *uuid.UUID, from time.Time) ([]MonthTotal, error) {
	query := `SELECT date_trunc('month', occurred_at), SUM(-amount), COUNT(*)
		FROM transactions
		WHERE user_id = $1 AND amount < 0 AND occurred_at >= $2
			AND ($3::uuid IS NULL OR category_id = $3)
		GROUP BY 1
		ORDER BY 1`

	rows, err := r.pool.Query(ctx, query, userID, from, categoryID)
	if err != nil {
		return nil, fmt.Errorf("monthly totals: %w", err)
	}
	defer rows.Close()

	var months []MonthTotal
	for rows.Next() {
		var mt MonthTotal
		if err := rows.Scan(&mt.Month, &mt.Total, &mt.Count); err != nil {
			return nil, fmt.Errorf("scan month total: %w", err)
		}
		months = append(months, mt)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate month totals: %w", err)
	}
	return months, nil
}

func (r *Repository) Transactions(ctx context.Context, userID uuid.UUID, from, to time.Time) ([]ExportRow, error) {
	query := `SELECT t.occurred_at, COALESCE(c.name, ''), t.amount, t.currency_code, t.description
		FROM transactions t
		LEFT JOIN categories c ON c.id = t.category_id
		WHERE t.user_id = $1 AND t.occurred_at >= $2 AND t.occurred_at < $3
		ORDER BY t.occurred_at, t.id`

	rows, err := r.pool.Query(ctx, query, userID, from, to)
	if err != nil {
		return nil, fmt.Errorf("list transactions: %w", err)
	}
	defer rows.Close()

	var out []ExportRow
	for rows.Next() {
		var row ExportRow
		if err := rows.Scan(&row.OccurredAt, &row.Category, &row.Amount, &row.Currency, &row.Description); err != nil {
			return nil, fmt.Errorf("scan transaction: %w", err)
		}
		out = append(out, row)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate transactions: %w", err)
	}
	return out, nil
}
