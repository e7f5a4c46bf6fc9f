package repository

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/storehouse-app/storehouse/internal/domain"
)

var ErrNotFound = errors.New("not found")

type PropertyRepository interface {
	List(ctx context.Context, city string, limit int) ([]domain.Property, error)
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Property, error)
	Similar(ctx context.Context, id uuid.UUID, limit int) ([]domain.Property, error)
}

type PGPropertyRepository struct {
	db *pgxpool.Pool
}

func NewPropertyRepository(db *pgxpool.Pool) PropertyRepository {
	return &PGPropertyRepository{db: db}
}

const propertyColumns = `id, title, description, city, country, images, price_per_night, max_guests, created_at, updated_at`

func (r *PGPropertyRepository) List(ctx context.Context, city string, limit int) ([]domain.Property, error) {
	if limit <= 0 {
		limit = 50
	}

	var (
		rows pgx.Rows
		err  error
	)
	if city != "" {
		rows, err = r.db.Query(ctx, `SELECT `+propertyColumns+` FROM properties WHERE city ILIKE $1 ORDER BY created_at DESC LIMIT $2`, city, limit)
	} else {
		rows, err = r.db.Query(ctx, `SELECT `+propertyColumns+` FROM properties ORDER BY created_at DESC LIMIT $1`, limit)
	}
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanProperties(rows)
}

func (r *PGPropertyRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Property, error) {
	row := r.db.QueryRow(ctx, `SELECT `+propertyColumns+` FROM properties WHERE id=$1`, id)
	var p domain.Property
	if err := scanProperty(row, &p); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &p, nil
}

// Similar returns other properties in the same city, closest in price first.
func (r *PGPropertyRepository) Similar(ctx context.Context, id uuid.UUID, limit int) ([]domain.Property, error) {
	if limit <= 0 {
		limit = 4
	}
	rows, err := r.db.Query(ctx, `
		SELECT `+propertyColumns+` FROM properties
		WHERE city = (SELECT city FROM properties WHERE id=$1) AND id <> $1
		ORDER BY abs(price_per_night - (SELECT price_per_night FROM properties WHERE id=$1))
		LIMIT $2`, id, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanProperties(rows)
}

func scanProperty(row pgx.Row, p *domain.Property) error {
	return row.Scan(&p.ID, &p.Title, &p.Description, &p.City, &p.Country, &p.Images, &p.PricePerNight, &p.MaxGuests, &p.CreatedAt, &p.UpdatedAt)
}

func scanProperties(rows pgx.Rows) ([]domain.Property, error) {
	var properties []domain.Property
	for rows.Next() {
		var p domain.Property
		if err := scanProperty(rows, &p); err != nil {
			return nil, err
		}
		properties = append(properties, p)
	}
	return properties, rows.Err()
}

var _ PropertyRepository = (*PGPropertyRepository)(nil)
