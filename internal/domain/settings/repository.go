package settings

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Settings holds the per-user currency and interface language. A user
// without a row runs on the defaults.
type Settings struct {
	UserID    uuid.UUID
	Currency  string
	Language  string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Notifications holds the per-group notification switches.
type Notifications struct {
	Reminders bool
	Goals     bool
	Debts     bool
	Analytics bool
}

// Store is the persistence contract of the preference commands.
type Store interface {
	// Get returns the user's settings row, or nil when none exists yet.
	Get(ctx context.Context, userID uuid.UUID) (*Settings, error)
	SetCurrency(ctx context.Context, userID uuid.UUID, code string) error
	SetLanguage(ctx context.Context, userID uuid.UUID, code string) error
	// GetNotifications returns the stored switches, or everything
	// enabled when the user never changed them.
	GetNotifications(ctx context.Context, userID uuid.UUID) (Notifications, error)
	SetNotifications(ctx context.Context, userID uuid.UUID, n Notifications) error
}

// Repository implements Store on PostgreSQL.
type Repository struct {
	pool *pgxpool.Pool
}

func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

func (r *Repository) Get(ctx context.Context, userID uuid.UUID) (*Settings, error) {
	query := `SELECT user_id, currency_code, language, created_at, updated_at
		FROM user_settings
		WHERE user_id = $1`

	var s Settings
	err := r.pool.QueryRow(ctx, query, userID).Scan(
		&s.UserID, &s.Currency, &s.Language, &s.CreatedAt, &s.UpdatedAt,
	)
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get user settings: %w", err)
	}
	return &s, nil
}

func (r *Repository) SetCurrency(ctx context.Context, userID uuid.UUID, code string) error {
	query := `INSERT INTO user_settings (user_id, currency_code)
		VALUES ($1, $2)
		ON CONFLICT (user_id) DO UPDATE SET currency_code = EXCLUDED.currency_code, updated_at = now()`

	if _, err := r.pool.Exec(ctx, query, userID, code); err != nil {
		return fmt.Errorf("set currency: %w", err)
	}
	return nil
}

func (r *Repository) SetLanguage(ctx context.Context, userID uuid.UUID, code string) error {
	query := `INSERT INTO user_settings (user_id, language)
		VALUES ($1, $2)
		ON CONFLICT (user_id) DO UPDATE SET language = EXCLUDED.language, updated_at = now()`

	if _, err := r.pool.Exec(ctx, query, userID, code); err != nil {
		return fmt.Errorf("set language: %w", err)
	}
	return nil
}

func (r *Repository) GetNotifications(ctx context.Context, userID uuid.UUID) (Notifications, error) {
	query := `SELECT reminders, goals, debts, analytics
		FROM notification_settings
		WHERE user_id = $1`

	var n Notifications
	err := r.pool.QueryRow(ctx, query, userID).Scan(&n.Reminders, &n.Goals, &n.Debts, &n.Analytics)
	if err == pgx.ErrNoRows {
		return Notifications{Reminders: true, Goals: true, Debts: true, Analytics: true}, nil
	}
	if err != nil {
		return Notifications{}, fmt.Errorf("get notification settings: %w", err)
	}
	return n, nil
}

func (r *Repository) SetNotifications(ctx context.Context, userID uuid.UUID, n Notifications) error {
	query := `INSERT INTO notification_settings (user_id, reminders, goals, debts, analytics)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (user_id) DO UPDATE SET
			reminders = EXCLUDED.reminders,
			goals = EXCLUDED.goals,
			debts = EXCLUDED.debts,
			analytics = EXCLUDED.analytics,
			updated_at = now()`

	if _, err := r.pool.Exec(ctx, query, userID, n.Reminders, n.Goals, n.Debts, n.Analytics); err != nil {
		return fmt.Errorf("set notification settings: %w", err)
	}
	return nil
}
