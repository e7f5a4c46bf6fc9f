package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/storehouse-app/storehouse/internal/domain"
)

type FavoriteRepository interface {
	Exists(ctx context.Context, userID, propertyID uuid.UUID) (bool, error)
	Add(ctx context.Context, favorite domain.Favorite) error
	Remove(ctx context.Context, userID, propertyID uuid.UUID) error
	ListProperties(ctx context.Context, userID uuid.UUID) ([]domain.Property, error)
}

type PGFavoriteRepository struct {
	db *pgxpool.Pool
}

func NewFavoriteRepository(db *pgxpool.Pool) FavoriteRepository {
	return &PGFavoriteRepository{db: db}
}

func (r *PGFavoriteRepository) Exists(ctx context.Context, userID, propertyID uuid.UUID) (bool, error) {
	var exists bool
	err := r.db.QueryRow(ctx, `SELECT EXISTS(SELECT 1 FROM favorites WHERE user_id=$1 AND property_id=$2)`, userID, propertyID).Scan(&exists)
	return exists, err
}

func (r *PGFavoriteRepository) Add(ctx context.Context, favorite domain.Favorite) error {
	_, err := r.db.Exec(ctx, `INSERT INTO favorites (id, user_id, property_id) VALUES ($1, $2, $3) ON CONFLICT (user_id, property_id) DO NOTHING`,
		favorite.ID, favorite.UserID, favorite.PropertyID)
	return err
}

func (r *PGFavoriteRepository) Remove(ctx context.Context, userID, propertyID uuid.UUID) error {
	_, err := r.db.Exec(ctx, `DELETE FROM favorites WHERE user_id=$1 AND property_id=$2`, userID, propertyID)
	return err
}

func (r *PGFavoriteRepository) ListProperties(ctx context.Context, userID uuid.UUID) ([]domain.Property, error) {
	rows, err := r.db.Query(ctx, `
		SELECT p.id, p.title, p.description, p.city, p.country, p.images, p.price_per_night, p.max_guests, p.created_at, p.updated_at
		FROM favorites f JOIN properties p ON p.id = f.property_id
		WHERE f.user_id=$1 ORDER BY f.created_at DESC`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanProperties(rows)
}

var _ FavoriteRepository = (*PGFavoriteRepository)(nil)
