package properties

import (
	"context"

	"github.com/google/uuid"
	"github.com/storehouse-app/storehouse/internal/domain"
	"github.com/storehouse-app/storehouse/internal/repository"
)

type PropertyUseCase interface {
	List(ctx context.Context, city string, limit int) ([]domain.Property, error)
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Property, error)
	Similar(ctx context.Context, id uuid.UUID, limit int) ([]domain.Property, error)
}

type Cache interface {
	GetProperties(ctx context.Context) ([]domain.Property, error)
	SetProperties(ctx context.Context, properties []domain.Property) error
}

type PropertyService struct {
	repo  repository.PropertyRepository
	cache Cache
}

func NewPropertyService(repo repository.PropertyRepository, cache Cache) *PropertyService {
	return &PropertyService{repo: repo, cache: cache}
}

// List serves the unfiltered featured set from cache when possible; filtered
// queries always hit the database.
func (s *PropertyService) List(ctx context.Context, city string, limit int) ([]domain.Property, error) {
	if city == "" && s.cache != nil {
		if cached, err := s.cache.GetProperties(ctx); err == nil && cached != nil {
			return cached, nil
		}
	}

	properties, err := s.repo.List(ctx, city, limit)
	if err != nil {
		return nil, err
	}
	if city == "" && s.cache != nil {
		_ = s.cache.SetProperties(ctx, properties)
	}
	return properties, nil
}

func (s *PropertyService) GetByID(ctx context.Context, id uuid.UUID) (*domain.Property, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *PropertyService) Similar(ctx context.Context, id uuid.UUID, limit int) ([]domain.Property, error) {
	return s.repo.Similar(ctx, id, limit)
}

var _ PropertyUseCase = (*PropertyService)(nil)
