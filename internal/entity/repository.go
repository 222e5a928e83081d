package entity

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Repository handles entity persistence
type Repository struct {
	db *pgxpool.Pool
}

// Ensure the concrete repository satisfies the registry's requirements.
var _ RepositoryInterface = (*Repository)(nil)

// NewRepository creates a new entity repository
func NewRepository(db *pgxpool.Pool) *Repository {
	return &Repository{db: db}
}

// EnsureEntity records an entity on first reference
func (r *Repository) EnsureEntity(ctx context.Context, entityID string) error {
	query := `INSERT INTO entities (id) VALUES ($1) ON CONFLICT (id) DO NOTHING`
	_, err := r.db.Exec(ctx, query, entityID)
	return err
}

// EntityExists reports whether an entity has been recorded
func (r *Repository) EntityExists(ctx context.Context, entityID string) (bool, error) {
	var exists bool
	query := `SELECT EXISTS (SELECT 1 FROM entities WHERE id = $1)`
	err := r.db.QueryRow(ctx, query, entityID).Scan(&exists)
	return exists, err
}
