package transactions

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/ovozpay/nlu-engine/internal/domain/categorization"
)

// Transaction is one money movement. Expenses carry negative amounts,
// income positive ones.
type Transaction struct {
	ID          uuid.UUID
	UserID      uuid.UUID
	CategoryID  *uuid.UUID
	SourceID    *uuid.UUID
	Amount      decimal.Decimal
	Currency    string
	Description string
	OccurredAt  time.Time
	CreatedAt   time.Time
}

// CategoryStat aggregates one category's spending inside a stats window.
// Total is an absolute value.
type CategoryStat struct {
	Category string
	Total    decimal.Decimal
	Count    int
}

// Stats summarizes spending over a window, biggest category first.
type Stats struct {
	TotalSpent decimal.Decimal
	Count      int
	Categories []CategoryStat
}

// Store is the persistence surface of the base spending commands.
type Store interface {
	CategoryByExactName(ctx context.Context, userID uuid.UUID, name string) (*categorization.Category, error)
	CategoryByName(ctx context.Context, userID uuid.UUID, name string) (*categorization.Category, error)
	CreateCategory(ctx context.Context, userID uuid.UUID, name string) (*categorization.Category, error)
	DeleteCategory(ctx context.Context, categoryID uuid.UUID) error
	CountByCategory(ctx context.Context, categoryID uuid.UUID) (int, error)
	Create(ctx context.Context, tx *Transaction) error
	Balance(ctx context.Context, userID uuid.UUID) (decimal.Decimal, error)
	Stats(ctx context.Context, userID uuid.UUID, since time.Time) (*Stats, error)
}

// Repository implements Store over Postgres.
type Repository struct {
	db *pgxpool.Pool
}

// NewRepository creates a new transactions repository.
func NewRepository(db *pgxpool.Pool) *Repository {
	return &Repository{db: db}
}

// CategoryByExactName returns the category whose name equals the given
// one ignoring case, or nil when the user has no such category.
func (r *Repository) CategoryByExactName(ctx context.Context, userID uuid.UUID, name string) (*categorization.Category, error) {
	query := `
		SELECT id, user_id, name, created_at, updated_at
		FROM categories
		WHERE user_id = $1 AND lower(name) = lower($2)
		LIMIT 1
	`

	var cat categorization.Category
	err := r.db.QueryRow(ctx, query, userID, name).Scan(
		&cat.ID,
		&cat.UserID,
		&cat.Name,
		&cat.CreatedAt,
		&cat.UpdatedAt,
	)
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("category by exact name: %w", err)
	}

	return &cat, nil
}

// CategoryByName returns the first category whose name contains the
// given text, case-insensitively, or nil when none does.
func (r *Repository) CategoryByName(ctx context.Context, userID uuid.UUID, name string) (*categorization.Category, error) {
	query := `
		SELECT id, user_id, name, created_at, updated_at
		FROM categories
		WHERE user_id = $1 AND name ILIKE '%' || $2 || '%'
		ORDER BY created_at, id
		LIMIT 1
	`

	var cat categorization.Category
	err := r.db.QueryRow(ctx, query, userID, name).Scan(
		&cat.ID,
		&cat.UserID,
		&cat.Name,
		&cat.CreatedAt,
		&cat.UpdatedAt,
	)
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("category by name: %w", err)
	}

	return &cat, nil
}

// CreateCategory inserts a category with the given name.
func (r *Repository) CreateCategory(ctx context.Context, userID uuid.UUID, name string) (*categorization.Category, error) {
	query := `
		INSERT INTO categories (id, user_id, name)
		VALUES ($1, $2, $3)
		RETURNING id, user_id, name, created_at, updated_at
	`

	var cat categorization.Category
	err := r.db.QueryRow(ctx, query, uuid.New(), userID, name).Scan(
		&cat.ID,
		&cat.UserID,
		&cat.Name,
		&cat.CreatedAt,
		&cat.UpdatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("create category %q: %w", name, err)
	}

	return &cat, nil
}

// DeleteCategory removes a category. Deleting an absent category is
// not an error.
func (r *Repository) DeleteCategory(ctx context.Context, categoryID uuid.UUID) error {
	_, err := r.db.Exec(ctx, `DELETE FROM categories WHERE id = $1`, categoryID)
	if err != nil {
		return fmt.Errorf("delete category: %w", err)
	}
	return nil
}

// CountByCategory returns how many transactions reference the category.
func (r *Repository) CountByCategory(ctx context.Context, categoryID uuid.UUID) (int, error) {
	var count int
	err := r.db.QueryRow(ctx,
		`SELECT COUNT(*) FROM transactions WHERE category_id = $1`,
		categoryID,
	).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("count transactions: %w", err)
	}
	return count, nil
}

// Create persists one transaction.
func (r *Repository) Create(ctx context.Context, tx *Transaction) error {
	query := `
		INSERT INTO transactions (id, user_id, category_id, source_id, amount, currency_code, description, occurred_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING created_at
	`

	err := r.db.QueryRow(ctx, query,
		tx.ID,
		tx.UserID,
		tx.CategoryID,
		tx.SourceID,
		tx.Amount,
		tx.Currency,
		tx.Description,
		tx.OccurredAt,
	).Scan(&tx.CreatedAt)
	if err != nil {
		return fmt.Errorf("create transaction: %w", err)
	}

	return nil
}

// Balance sums every transaction of the user, income and expenses alike.
func (r *Repository) Balance(ctx context.Context, userID uuid.UUID) (decimal.Decimal, error) {
	var balance decimal.Decimal
	err := r.db.QueryRow(ctx,
		`SELECT COALESCE(SUM(amount), 0) FROM transactions WHERE user_id = $1`,
		userID,
	).Scan(&balance)
	if err != nil {
		return decimal.Zero, fmt.Errorf("balance: %w", err)
	}
	return balance, nil
}

// Stats aggregates the user's expenses since the given time, overall
// and per category. Categories of deleted rows group under an empty
// name.
func (r *Repository) Stats(ctx context.Context, userID uuid.UUID, since time.Time) (*Stats, error) {
	totalQuery := `
		SELECT COALESCE(ABS(SUM(amount)), 0), COUNT(*)
		FROM transactions
		WHERE user_id = $1 AND amount < 0 AND occurred_at >= $2
	`

	stats := &Stats{}
	err := r.db.QueryRow(ctx, totalQuery, userID, since).Scan(&stats.TotalSpent, &stats.Count)
	if err != nil {
		return nil, fmt.Errorf("stats totals: %w", err)
	}

	byCategoryQuery := `
		SELECT COALESCE(c.name, ''), ABS(SUM(t.amount)), COUNT(*)
		FROM transactions t
		LEFT JOIN categories c ON c.id = t.category_id
		WHERE t.user_id = $1 AND t.amount < 0 AND t.occurred_at >= $2
		GROUP BY c.name
		ORDER BY SUM(t.amount) ASC, c.name
	`

	rows, err := r.db.Query(ctx, byCategoryQuery, userID, since)
	if err != nil {
		return nil, fmt.Errorf("stats by category: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var cs CategoryStat
		if err := rows.Scan(&cs.Category, &cs.Total, &cs.Count); err != nil {
			return nil, fmt.Errorf("scan category stat: %w", err)
		}
		stats.Categories = append(stats.Categories, cs)
	}

	return stats, rows.Err()
}
