package reminders

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Reminder is a scheduled voice note. A reminder stays pending until it
// is completed or deactivated; NotifiedAt records the delivery sweep
// that picked it up.
type Reminder struct {
	ID          uuid.UUID
	UserID      uuid.UUID
	Title       string
	Description string
	RemindAt    time.Time
	IsActive    bool
	IsCompleted bool
	NotifiedAt  *time.Time
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// Store is the persistence contract of the reminder commands and the
// delivery sweep.
type Store interface {
	Create(ctx context.Context, reminder *Reminder) error
	// ListPending returns active, uncompleted reminders ordered by due
	// time, soonest first.
	ListPending(ctx context.Context, userID uuid.UUID) ([]Reminder, error)
	// FindPending looks up an active, uncompleted reminder whose title
	// contains the given fragment, ignoring case. Returns nil without
	// error when none matches.
	FindPending(ctx context.Context, userID uuid.UUID, title string) (*Reminder, error)
	Reschedule(ctx context.Context, reminderID uuid.UUID, remindAt time.Time) error
	Deactivate(ctx context.Context, reminderID uuid.UUID) error
	Complete(ctx context.Context, reminderID uuid.UUID) error
	// Due returns pending reminders that came due and were not yet
	// delivered.
	Due(ctx context.Context, now time.Time) ([]Reminder, error)
	MarkNotified(ctx context.Context, reminderID uuid.UUID, at time.Time) error
}

const reminderColumns = "id, user_id, title, description, remind_at, is_active, is_completed, notified_at, created_at, updated_at"

// Repository implements Store on PostgreSQL.
type Repository struct {
	pool *pgxpool.Pool
}

func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

func scanReminder(row pgx.Row) (*Reminder, error) {
	var rem Reminder
	err := row.Scan(
		&rem.ID, &rem.UserID, &rem.Title, &rem.Description, &rem.RemindAt,
		&rem.IsActive, &rem.IsCompleted, &rem.NotifiedAt, &rem.CreatedAt, &rem.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &rem, nil
}

func (r *Repository) Create(ctx context.Context, reminder *Reminder) error {
	query := `INSERT INTO reminders (id, user_id, title, description, remind_at, is_active, is_completed)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING created_at, updated_at`

	err := r.pool.QueryRow(ctx, query,
		reminder.ID, reminder.UserID, reminder.Title, reminder.Description,
		reminder.RemindAt, reminder.IsActive, reminder.IsCompleted,
	).Scan(&reminder.CreatedAt, &reminder.UpdatedAt)
	if err != nil {
		return fmt.Errorf("create reminder: %w", err)
	}
	return nil
}

func (r *Repository) ListPending(ctx context.Context, userID uuid.UUID) ([]Reminder, error) {
	query := `SELECT ` + reminderColumns + `
		FROM reminders
		WHERE user_id = $1 AND is_active AND NOT is_completed
		ORDER BY remind_at`

	rows, err := r.pool.Query(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("list reminders: %w", err)
	}
	defer rows.Close()

	return collectReminders(rows)
}

func (r *Repository) FindPending(ctx context.Context, userID uuid.UUID, title string) (*Reminder, error) {
	query := `SELECT ` + reminderColumns + `
		FROM reminders
		WHERE user_id = $1 AND is_active AND NOT is_completed AND title ILIKE '%' || $2 || '%'
		ORDER BY created_at, id
		LIMIT 1`

	reminder, err := scanReminder(r.pool.QueryRow(ctx, query, userID, title))
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find reminder: %w", err)
	}
	return reminder, nil
}

func (r *Repository) Reschedule(ctx context.Context, reminderID uuid.UUID, remindAt time.Time) error {
	// A postponed reminder becomes deliverable again.
	query := `UPDATE reminders SET remind_at = $2, notified_at = NULL, updated_at = now() WHERE id = $1`

	if _, err := r.pool.Exec(ctx, query, reminderID, remindAt); err != nil {
		return fmt.Errorf("reschedule reminder: %w", err)
	}
	return nil
}

func (r *Repository) Deactivate(ctx context.Context, reminderID uuid.UUID) error {
	query := `UPDATE reminders SET is_active = FALSE, updated_at = now() WHERE id = $1`

	if _, err := r.pool.Exec(ctx, query, reminderID); err != nil {
		return fmt.Errorf("deactivate reminder: %w", err)
	}
	return nil
}

func (r *Repository) Complete(ctx context.Context, reminderID uuid.UUID) error {
	query := `UPDATE reminders SET is_completed = TRUE, updated_at = now() WHERE id = $1`

	if _, err := r.pool.Exec(ctx, query, reminderID); err != nil {
		return fmt.Errorf("complete reminder: %w", err)
	}
	return nil
}

func (r *Repository) Due(ctx context.Context, now time.Time) ([]Reminder, error) {
	query := `SELECT ` + reminderColumns + `
		FROM reminders
		WHERE is_active AND NOT is_completed AND notified_at IS NULL AND remind_at <= $1
		ORDER BY remind_at`

	rows, err := r.pool.Query(ctx, query, now)
	if err != nil {
		return nil, fmt.Errorf("list due reminders: %w", err)
	}
	defer rows.Close()

	return collectReminders(rows)
}

func (r *Repository) MarkNotified(ctx context.Context, reminderID uuid.UUID, at time.Time) error {
	query := `UPDATE reminders SET notified_at = $2, updated_at = now() WHERE id = $1`

	if _, err := r.pool.Exec(ctx, query, reminderID, at); err != nil {
		return fmt.Errorf("mark reminder notified: %w", err)
	}
	return nil
}

func collectReminders(rows pgx.Rows) ([]Reminder, error) {
	var reminders []Reminder
	for rows.Next() {
		var rem Reminder
		err := rows.Scan(
			&rem.ID, &rem.UserID, &rem.Title, &rem.Description, &rem.RemindAt,
			&rem.IsActive, &rem.IsCompleted, &rem.NotifiedAt, &rem.CreatedAt, &rem.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("scan reminder: %w", err)
		}
		reminders = append(reminders, rem)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate reminders: %w", err)
	}
	return reminders, nil
}
