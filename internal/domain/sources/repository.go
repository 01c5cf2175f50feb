package sources

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
)

// Source is a named origin of income, such as a salary or a side job.
// Deleting a source only deactivates it so its transactions keep their link.
type Source struct {
	ID        uuid.UUID
	UserID    uuid.UUID
	Name      string
	IsActive  bool
	CreatedAt time.Time
	UpdatedAt time.Time
}

// SourceStats is a source together with its income history summary.
// LastDate and LastAmount are nil when the source has no income yet.
type SourceStats struct {
	Source      Source
	TotalIncome decimal.Decimal
	LastDate    *time.Time
	LastAmount  *decimal.Decimal
}

// Store is the persistence contract of the income source commands.
type Store interface {
	// FindExact looks up an active source by exact name, ignoring case.
	// Returns nil without error when no source matches.
	FindExact(ctx context.Context, userID uuid.UUID, name string) (*Source, error)
	// FindByName looks up an active source whose name contains the given
	// fragment, ignoring case. Returns nil without error when none matches.
	FindByName(ctx context.Context, userID uuid.UUID, name string) (*Source, error)
	Create(ctx context.Context, source *Source) error
	// ListStats returns the active sources ordered by name, each with its
	// total income and most recent income transaction.
	ListStats(ctx context.Context, userID uuid.UUID) ([]SourceStats, error)
	Rename(ctx context.Context, sourceID uuid.UUID, newName string) error
	Deactivate(ctx context.Context, sourceID uuid.UUID) error
	// CountTransactions counts every transaction linked to the source,
	// income and expenses alike.
	CountTransactions(ctx context.Context, sourceID uuid.UUID) (int, error)
	// CreateIncome records a positive transaction against the source and
	// returns the new transaction id.
	CreateIncome(ctx context.Context, userID, sourceID uuid.UUID, amount decimal.Decimal, description string) (uuid.UUID, error)
}

const sourceColumns = "id, user_id, name, is_active, created_at, updated_at"

// Repository implements Store on PostgreSQL.
type Repository struct {
	pool *pgxpool.Pool
}

func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

func scanSource(row pgx.Row) (*Source, error) {
	var s Source
	err := row.Scan(&s.ID, &s.UserID, &s.Name, &s.IsActive, &s.CreatedAt, &s.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &s, nil
}

func (r *Repository) FindExact(ctx context.Context, userID uuid.UUID, name string) (*Source, error) {
	query := `SELECT ` + sourceColumns + `
		FROM sources
		WHERE user_id = $1 AND is_active AND lower(name) = lower($2)`

	source, err := scanSource(r.pool.QueryRow(ctx, query, userID, name))
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find source by exact name: %w", err)
	}
	return source, nil
}

func (r *Repository) FindByName(ctx context.Context, userID uuid.UUID, name string) (*Source, error) {
	query := `SELECT ` + sourceColumns + `
		FROM sources
		WHERE user_id = $1 AND is_active AND name ILIKE '%' || $2 || '%'
		ORDER BY created_at, id
		LIMIT 1`

	source, err := scanSource(r.pool.QueryRow(ctx, query, userID, name))
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find source by name: %w", err)
	}
	return source, nil
}

func (r *Repository) Create(ctx context.Context, source *Source) error {
	query := `INSERT INTO sources (id, user_id, name, is_active)
		VALUES ($1, $2, $3, $4)
		RETURNING created_at, updated_at`

	err := r.pool.QueryRow(ctx, query,
		source.ID, source.UserID, source.Name, source.IsActive,
	).Scan(&source.CreatedAt, &source.UpdatedAt)
	if err != nil {
		return fmt.Errorf("create source: %w", err)
	}
	return nil
}

func (r *Repository) ListStats(ctx context.Context, userID uuid.UUID) ([]SourceStats, error) {
	// Income is any positive transaction linked to the source.
	query := `SELECT s.id, s.user_id, s.name, s.is_active, s.created_at, s.updated_at,
			COALESCE(agg.total, 0),
			last.occurred_at, last.amount
		FROM sources s
		LEFT JOIN LATERAL (
			SELECT SUM(amount) AS total
			FROM transactions
			WHERE source_id = s.id AND amount > 0
		) agg ON TRUE
		LEFT JOIN LATERAL (
			SELECT occurred_at, amount
			FROM transactions
			WHERE source_id = s.id AND amount > 0
			ORDER BY occurred_at DESC
			LIMIT 1
		) last ON TRUE
		WHERE s.user_id = $1 AND s.is_active
		ORDER BY s.name`

	rows, err := r.pool.Query(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("list source stats: %w", err)
	}
	defer rows.Close()

	var stats []SourceStats
	for rows.Next() {
		var st SourceStats
		var lastAmount decimal.NullDecimal
		err := rows.Scan(
			&st.Source.ID, &st.Source.UserID, &st.Source.Name, &st.Source.IsActive,
			&st.Source.CreatedAt, &st.Source.UpdatedAt,
			&st.TotalIncome, &st.LastDate, &lastAmount,
		)
		if err != nil {
			return nil, fmt.Errorf("scan source stats: %w", err)
		}
		if lastAmount.Valid {
			st.LastAmount = &lastAmount.Decimal
		}
		stats = append(stats, st)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate source stats: %w", err)
	}
	return stats, nil
}

func (r *Repository) Rename(ctx context.Context, sourceID uuid.UUID, newName string) error {
	query := `UPDATE sources SET name = $2, updated_at = now() WHERE id = $1`

	if _, err := r.pool.Exec(ctx, query, sourceID, newName); err != nil {
		return fmt.Errorf("rename source: %w", err)
	}
	return nil
}

func (r *Repository) Deactivate(ctx context.Context, sourceID uuid.UUID) error {
	query := `UPDATE sources SET is_active = FALSE, updated_at = now() WHERE id = $1`

	if _, err := r.pool.Exec(ctx, query, sourceID); err != nil {
		return fmt.Errorf("deactivate source: %w", err)
	}
	return nil
}

func (r *Repository) CountTransactions(ctx context.Context, sourceID uuid.UUID) (int, error) {
	query := `SELECT COUNT(*) FROM transactions WHERE source_id = $1`

	var count int
	if err := r.pool.QueryRow(ctx, query, sourceID).Scan(&count); err != nil {
		return 0, fmt.Errorf("count source transactions: %w", err)
	}
	return count, nil
}

func (r *Repository) CreateIncome(ctx context.Context, userID, sourceID uuid.UUID, amount decimal.Decimal, description string) (uuid.UUID, error) {
	// currency_code and occurred_at fall back to the column defaults.
	query := `INSERT INTO transactions (id, user_id, source_id, amount, description)
		VALUES ($1, $2, $3, $4, $5)`

	id := uuid.New()
	if _, err := r.pool.Exec(ctx, query, id, userID, sourceID, amount, description); err != nil {
		return uuid.Nil, fmt.Errorf("create income transaction: %w", err)
	}
	return id, nil
}
