package favorites

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/storehouse-app/storehouse/internal/domain"
	"github.com/storehouse-app/storehouse/internal/repository"
)

// ErrUnauthenticated is rejected before any store access; the UI maps it to
// a login prompt rather than a request failure.
var ErrUnauthenticated = errors.New("authentication required to manage favorites")

type FavoriteUseCase interface {
	Toggle(ctx context.Context, userID, propertyID uuid.UUID) (bool, error)
	List(ctx context.Context, userID uuid.UUID) ([]domain.Property, error)
}

type FavoriteService struct {
	favorites  repository.FavoriteRepository
	properties repository.PropertyRepository
}

func NewFavoriteService(favorites repository.FavoriteRepository, properties repository.PropertyRepository) *FavoriteService {
	return &FavoriteService{favorites: favorites, properties: properties}
}

// Toggle flips the membership and returns the new state.
func (s *FavoriteService) Toggle(ctx context.Context, userID, propertyID uuid.UUID) (bool, error) {
	if userID == uuid.Nil {
		return false, ErrUnauthenticated
	}

	if _, err := s.properties.GetByID(ctx, propertyID); err != nil {
		return false, err
	}

	exists, err := s.favorites.Exists(ctx, userID, propertyID)
	if err != nil {
		return false, err
	}

	if exists {
		if err := s.favorites.Remove(ctx, userID, propertyID); err != nil {
			return true, err
		}
		return false, nil
	}

	favorite := domain.Favorite{ID: uuid.New(), UserID: userID, PropertyID: propertyID}
	if err := s.favorites.Add(ctx, favorite); err != nil {
		return false, err
	}
	return true, nil
}

func (s *FavoriteService) List(ctx context.Context, userID uuid.UUID) ([]domain.Property, error) {
	if userID == uuid.Nil {
		return nil, ErrUnauthenticated
	}
	return s.favorites.ListProperties(ctx, userID)
}

var _ FavoriteUseCase = (*FavoriteService)(nil)
