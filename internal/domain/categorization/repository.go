package categorization

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Category is a user-owned expense category.
type Category struct {
	ID        uuid.UUID
	UserID    uuid.UUID
	Name      string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Store is the persistence surface the matcher needs: listing a user's
// categories and idempotent creation for auto-provisioning.
type Store interface {
	ListByUser(ctx context.Context, userID uuid.UUID) ([]Category, error)
	GetOrCreate(ctx context.Context, userID uuid.UUID, name string) (*Category, bool, error)
}

// Repository implements Store over Postgres.
type Repository struct {
	db *pgxpool.Pool
}

// NewRepository creates a new categorization repository.
func NewRepository(db *pgxpool.Pool) *Repository {
	return &Repository{db: db}
}

// ListByUser fetches all categories for a user in creation order.
func (r *Repository) ListByUser(ctx context.Context, userID uuid.UUID) ([]Category, error) {
	query := `
		SELECT id, user_id, name, created_at, updated_at
		FROM categories
		WHERE user_id = $1
		ORDER BY created_at, id
	`

	rows, err := r.db.Query(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	defer rows.Close()

	var categories []Category
	for rows.Next() {
		var cat Category
		if err := rows.Scan(&cat.ID, &cat.UserID, &cat.Name, &cat.CreatedAt, &cat.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan category: %w", err)
		}
		categories = append(categories, cat)
	}

	return categories, rows.Err()
}

// FindByName returns the first category whose name contains the given
// text, case-insensitively, or nil when none does.
func (r *Repository) FindByName(ctx context.Context, userID uuid.UUID, name string) (*Category, error) {
	query := `
		SELECT id, user_id, name, created_at, updated_at
		FROM categories
		WHERE user_id = $1 AND name ILIKE '%' || $2 || '%'
		ORDER BY created_at, id
		LIMIT 1
	`

	var cat Category
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
		return nil, fmt.Errorf("find category by name: %w", err)
	}

	return &cat, nil
}

// GetOrCreate returns the category matching the name, creating it when
// absent. The unique (user_id, name) index makes concurrent creation of
// the same name converge on a single row.
func (r *Repository) GetOrCreate(ctx context.Context, userID uuid.UUID, name string) (*Category, bool, error) {
	existing, err := r.FindByName(ctx, userID, name)
	if err != nil {
		return nil, false, err
	}
	if existing != nil {
		return existing, false, nil
	}

	query := `
		INSERT INTO categories (id, user_id, name)
		VALUES ($1, $2, $3)
		ON CONFLICT (user_id, name) DO UPDATE SET updated_at = now()
		RETURNING id, user_id, name, created_at, updated_at
	`

	var cat Category
	err = r.db.QueryRow(ctx, query, uuid.New(), userID, name).Scan(
		&cat.ID,
		&cat.UserID,
		&cat.Name,
		&cat.CreatedAt,
		&cat.UpdatedAt,
	)
	if err != nil {
		return nil, false, fmt.Errorf("create category %q: %w", name, err)
	}

	return &cat, true, nil
}
