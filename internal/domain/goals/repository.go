package goals

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
)

// Goal is a savings target. Deadline is a calendar date, nil when the
// user never named one. Paused and deleted goals both live on with
// is_active false.
type Goal struct {
	ID            uuid.UUID
	UserID        uuid.UUID
	Name          string
	TargetAmount  decimal.Decimal
	CurrentAmount decimal.Decimal
	Deadline      *time.Time
	IsActive      bool
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// Store is the persistence surface of the goal commands.
type Store interface {
	Create(ctx context.Context, goal *Goal) error
	ListActive(ctx context.Context, userID uuid.UUID) ([]Goal, error)
	FindActive(ctx context.Context, userID uuid.UUID, name string) (*Goal, error)
	FindPaused(ctx context.Context, userID uuid.UUID, name string) (*Goal, error)
	AddAmount(ctx context.Context, goalID uuid.UUID, amount decimal.Decimal) (*Goal, error)
	SetActive(ctx context.Context, goalID uuid.UUID, active bool) error
}

const goalColumns = `id, user_id, name, target_amount, current_amount, deadline, is_active, created_at, updated_at`

// Repository implements Store over Postgres.
type Repository struct {
	db *pgxpool.Pool
}

// NewRepository creates a new goals repository.
func NewRepository(db *pgxpool.Pool) *Repository {
	return &Repository{db: db}
}

func scanGoal(row pgx.Row) (*Goal, error) {
	var g Goal
	err := row.Scan(
		&g.ID,
		&g.UserID,
		&g.Name,
		&g.TargetAmount,
		&g.CurrentAmount,
		&g.Deadline,
		&g.IsActive,
		&g.CreatedAt,
		&g.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &g, nil
}

// Create persists a new goal.
func (r *Repository) Create(ctx context.Context, goal *Goal) error {
	query := `
		INSERT INTO goals (id, user_id, name, target_amount, current_amount, deadline, is_active)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING created_at, updated_at
	`

	err := r.db.QueryRow(ctx, query,
		goal.ID,
		goal.UserID,
		goal.Name,
		goal.TargetAmount,
		goal.CurrentAmount,
		goal.Deadline,
		goal.IsActive,
	).Scan(&goal.CreatedAt, &goal.UpdatedAt)
	if err != nil {
		return fmt.Errorf("create goal %q: %w", goal.Name, err)
	}

	return nil
}

// ListActive returns the user's active goals, newest first.
func (r *Repository) ListActive(ctx context.Context, userID uuid.UUID) ([]Goal, error) {
	query := `
		SELECT ` + goalColumns + `
		FROM goals
		WHERE user_id = $1 AND is_active
		ORDER BY created_at DESC, id
	`

	rows, err := r.db.Query(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("list goals: %w", err)
	}
	defer rows.Close()

	var goals []Goal
	for rows.Next() {
		g, err := scanGoal(rows)
		if err != nil {
			return nil, fmt.Errorf("scan goal: %w", err)
		}
		goals = append(goals, *g)
	}

	return goals, rows.Err()
}

func (r *Repository) findByName(ctx context.Context, userID uuid.UUID, name string, active bool) (*Goal, error) {
	query := `
		SELECT ` + goalColumns + `
		FROM goals
		WHERE user_id = $1 AND is_active = $3 AND name ILIKE '%' || $2 || '%'
		ORDER BY created_at, id
		LIMIT 1
	`

	g, err := scanGoal(r.db.QueryRow(ctx, query, userID, name, active))
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find goal by name: %w", err)
	}

	return g, nil
}

// FindActive returns the first active goal whose name contains the
// given text, case-insensitively, or nil when none does.
func (r *Repository) FindActive(ctx context.Context, userID uuid.UUID, name string) (*Goal, error) {
	return r.findByName(ctx, userID, name, true)
}

// FindPaused is FindActive over deactivated goals; resume needs it.
func (r *Repository) FindPaused(ctx context.Context, userID uuid.UUID, name string) (*Goal, error) {
	return r.findByName(ctx, userID, name, false)
}

// AddAmount adds to the goal's saved amount atomically and returns the
// updated row.
func (r *Repository) AddAmount(ctx context.Context, goalID uuid.UUID, amount decimal.Decimal) (*Goal, error) {
	query := `
		UPDATE goals
		SET current_amount = current_amount + $2, updated_at = now()
		WHERE id = $1
		RETURNING ` + goalColumns + `
	`

	g, err := scanGoal(r.db.QueryRow(ctx, query, goalID, amount))
	if err != nil {
		return nil, fmt.Errorf("add to goal: %w", err)
	}

	return g, nil
}

// SetActive pauses, resumes or soft-deletes a goal.
func (r *Repository) SetActive(ctx context.Context, goalID uuid.UUID, active bool) error {
	_, err := r.db.Exec(ctx,
		`UPDATE goals SET is_active = $2, updated_at = now() WHERE id = $1`,
		goalID, active,
	)
	if err != nil {
		return fmt.Errorf("set goal active: %w", err)
	}
	return nil
}
