package debts

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
)

// Debt directions, from the user's point of view.
const (
	DirectionLent     = "lent"
	DirectionBorrowed = "borrowed"
)

// Debt statuses. A closing payment flips partial to closed.
const (
	StatusOpen    = "open"
	StatusPartial = "partial"
	StatusClosed  = "closed"
)

// Debt is one person's ledger entry. DueDate is a calendar date, nil
// when no return date was spoken.
type Debt struct {
	ID         uuid.UUID
	UserID     uuid.UUID
	PersonName string
	Amount     decimal.Decimal
	PaidAmount decimal.Decimal
	Direction  string
	Status     string
	DueDate    *time.Time
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// Remaining is the unpaid part of the debt.
func (d *Debt) Remaining() decimal.Decimal {
	return d.Amount.Sub(d.PaidAmount)
}

// Store is the persistence surface of the debt commands.
type Store interface {
	Create(ctx context.Context, debt *Debt) error
	ListOutstanding(ctx context.Context, userID uuid.UUID, direction string) ([]Debt, error)
	ListOverdue(ctx context.Context, userID uuid.UUID, asOf time.Time) ([]Debt, error)
	FindOutstanding(ctx context.Context, userID uuid.UUID, person string) (*Debt, error)
	AddPayment(ctx context.Context, debtID uuid.UUID, amount decimal.Decimal) (*Debt, error)
	Close(ctx context.Context, debtID uuid.UUID) (*Debt, error)
}

// OverdueSource lists overdue debts across all users. The daily notice
// job reads it.
type OverdueSource interface {
	ListAllOverdue(ctx context.Context, asOf time.Time, limit int) ([]Debt, error)
}

const debtColumns = `id, user_id, person_name, amount, paid_amount, direction, status, due_date, created_at, updated_at`

// DB is the slice of pgxpool.Pool the repository uses. Tests substitute
// a pgxmock pool.
type DB interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// Repository implements Store over Postgres.
type Repository struct {
	db DB
}

// NewRepository creates a new debts repository.
func NewRepository(db DB) *Repository {
	return &Repository{db: db}
}

func scanDebt(row pgx.Row) (*Debt, error) {
	var d Debt
	err := row.Scan(
		&d.ID,
		&d.UserID,
		&d.PersonName,
		&d.Amount,
		&d.PaidAmount,
		&d.Direction,
		&d.Status,
		&d.DueDate,
		&d.CreatedAt,
		&d.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &d, nil
}

func collectDebts(rows pgx.Rows) ([]Debt, error) {
	defer rows.Close()
	var debts []Debt
	for rows.Next() {
		d, err := scanDebt(rows)
		if err != nil {
			return nil, fmt.Errorf("scan debt: %w", err)
		}
		debts = append(debts, *d)
	}
	return debts, rows.Err()
}

// Create persists a new debt.
func (r *Repository) Create(ctx context.Context, debt *Debt) error {
	query := `
		INSERT INTO debts (id, user_id, person_name, amount, paid_amount, direction, status, due_date)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING created_at, updated_at
	`

	err := r.db.QueryRow(ctx, query,
		debt.ID,
		debt.UserID,
		debt.PersonName,
		debt.Amount,
		debt.PaidAmount,
		debt.Direction,
		debt.Status,
		debt.DueDate,
	).Scan(&debt.CreatedAt, &debt.UpdatedAt)
	if err != nil {
		return fmt.Errorf("create debt for %q: %w", debt.PersonName, err)
	}

	return nil
}

// ListOutstanding returns the user's open and partially paid debts in
// one direction, nearest due date first, undated ones last.
func (r *Repository) ListOutstanding(ctx context.Context, userID uuid.UUID, direction string) ([]Debt, error) {
	query := `
		SELECT ` + debtColumns + `
		FROM debts
		WHERE user_id = $1 AND direction = $2 AND status IN ('open', 'partial')
		ORDER BY due_date, created_at, id
	`

	rows, err := r.db.Query(ctx, query, userID, direction)
	if err != nil {
		return nil, fmt.Errorf("list debts: %w", err)
	}
	return collectDebts(rows)
}

// ListOverdue returns outstanding debts of both directions whose due
// date passed before asOf.
func (r *Repository) ListOverdue(ctx context.Context, userID uuid.UUID, asOf time.Time) ([]Debt, error) {
	query := `
		SELECT ` + debtColumns + `
		FROM debts
		WHERE user_id = $1 AND status IN ('open', 'partial')
			AND due_date IS NOT NULL AND due_date < $2
		ORDER BY due_date, created_at, id
	`

	rows, err := r.db.Query(ctx, query, userID, asOf)
	if err != nil {
		return nil, fmt.Errorf("list overdue debts: %w", err)
	}
	return collectDebts(rows)
}

// ListAllOverdue returns overdue outstanding debts of every user,
// oldest due date first.
func (r *Repository) ListAllOverdue(ctx context.Context, asOf time.Time, limit int) ([]Debt, error) {
	query := `
		SELECT ` + debtColumns + `
		FROM debts
		WHERE status IN ('open', 'partial')
			AND due_date IS NOT NULL AND due_date < $1
		ORDER BY due_date, created_at, id
		LIMIT $2
	`

	rows, err := r.db.Query(ctx, query, asOf, limit)
	if err != nil {
		return nil, fmt.Errorf("list all overdue debts: %w", err)
	}
	return collectDebts(rows)
}

// FindOutstanding resolves a spoken name to the oldest outstanding debt
// whose person contains it, case-insensitively. Returns nil when no
// debt matches.
func (r *Repository) FindOutstanding(ctx context.Context, userID uuid.UUID, person string) (*Debt, error) {
	query := `
		SELECT ` + debtColumns + `
		FROM debts
		WHERE user_id = $1 AND status IN ('open', 'partial')
			AND person_name ILIKE '%' || $2 || '%'
		ORDER BY created_at, id
		LIMIT 1
	`

	d, err := scanDebt(r.db.QueryRow(ctx, query, userID, person))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find debt %q: %w", person, err)
	}
	return d, nil
}

// AddPayment records a repayment and flips the status: closed once the
// paid total covers the amount, partial otherwise.
func (r *Repository) AddPayment(ctx context.Context, debtID uuid.UUID, amount decimal.Decimal) (*Debt, error) {
	query := `
		UPDATE debts
		SET paid_amount = paid_amount + $2,
			status = CASE WHEN paid_amount + $2 >= amount THEN 'closed' ELSE 'partial' END,
			updated_at = now()
		WHERE id = $1
		RETURNING ` + debtColumns + `
	`

	d, err := scanDebt(r.db.QueryRow(ctx, query, debtID, amount))
	if err != nil {
		return nil, fmt.Errorf("add debt payment: %w", err)
	}
	return d, nil
}

// Close settles the debt in full regardless of the paid total.
func (r *Repository) Close(ctx context.Context, debtID uuid.UUID) (*Debt, error) {
	query := `
		UPDATE debts
		SET paid_amount = amount, status = 'closed', updated_at = now()
		WHERE id = $1
		RETURNING ` + debtColumns + `
	`

	d, err := scanDebt(r.db.QueryRow(ctx, query, debtID))
	if err != nil {
		return nil, fmt.Errorf("close debt: %w", err)
	}
	return d, nil
}
