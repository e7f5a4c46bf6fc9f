package properties

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/storehouse-app/storehouse/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

type MockPropertyRepository struct {
	mock.Mock
}

func (m *MockPropertyRepository) List(ctx context.Context, city string, limit int) ([]domain.Property, error) {
	args := m.Called(ctx, city, limit)
	return args.Get(0).([]domain.Property), args.Error(1)
}

func (m *MockPropertyRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Property, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Property), args.Error(1)
}

func (m *MockPropertyRepository) Similar(ctx context.Context, id uuid.UUID, limit int) ([]domain.Property, error) {
	args := m.Called(ctx, id, limit)
	return args.Get(0).([]domain.Property), args.Error(1)
}

type MockCache struct {
	mock.Mock
}

func (m *MockCache) GetProperties(ctx context.Context) ([]domain.Property, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Property), args.Error(1)
}

func (m *MockCache) SetProperties(ctx context.Context, properties []domain.Property) error {
	args := m.Called(ctx, properties)
	return args.Error(0)
}

func TestPropertyService_List_CacheHit(t *testing.T) {
	mockRepo := &MockPropertyRepository{}
	mockCache := &MockCache{}
	service := NewPropertyService(mockRepo, mockCache)

	cached := []domain.Property{{ID: uuid.New(), Title: "Canal House"}}
	mockCache.On("GetProperties", mock.Anything).Return(cached, nil).Once()

	properties, err := service.List(context.Background(), "", 20)

	assert.NoError(t, err)
	assert.Equal(t, cached, properties)
	mockRepo.AssertNotCalled(t, "List")
}

func TestPropertyService_List_CacheMissFillsCache(t *testing.T) {
	mockRepo := &MockPropertyRepository{}
	mockCache := &MockCache{}
	service := NewPropertyService(mockRepo, mockCache)

	fromDB := []domain.Property{{ID: uuid.New(), Title: "Loft"}}
	mockCache.On("GetProperties", mock.Anything).Return(nil, nil).Once()
	mockRepo.On("List", mock.Anything, "", 20).Return(fromDB, nil).Once()
	mockCache.On("SetProperties", mock.Anything, fromDB).Return(nil).Once()

	properties, err := service.List(context.Background(), "", 20)

	assert.NoError(t, err)
	assert.Equal(t, fromDB, properties)
	mockCache.AssertExpectations(t)
}

// Filtered queries bypass the cache entirely.
func TestPropertyService_List_CityFilterSkipsCache(t *testing.T) {
	mockRepo := &MockPropertyRepository{}
	mockCache := &MockCache{}
	service := NewPropertyService(mockRepo, mockCache)

	fromDB := []domain.Property{{ID: uuid.New(), City: "Lyon"}}
	mockRepo.On("List", mock.Anything, "Lyon", 20).Return(fromDB, nil).Once()

	properties, err := service.List(context.Background(), "Lyon", 20)

	assert.NoError(t, err)
	assert.Equal(t, fromDB, properties)
	mockCache.AssertNotCalled(t, "GetProperties")
	mockCache.AssertNotCalled(t, "SetProperties")
}

// A cache read failure degrades to the database instead of failing the
// request.
func TestPropertyService_List_CacheErrorFallsThrough(t *testing.T) {
	mockRepo := &MockPropertyRepository{}
	mockCache := &MockCache{}
	service := NewPropertyService(mockRepo, mockCache)

	fromDB := []domain.Property{{ID: uuid.New()}}
	mockCache.On("GetProperties", mock.Anything).Return(nil, errors.New("redis down")).Once()
	mockRepo.On("List", mock.Anything, "", 20).Return(fromDB, nil).Once()
	mockCache.On("SetProperties", mock.Anything, fromDB).Return(nil).Once()

	properties, err := service.List(context.Background(), "", 20)

	assert.NoError(t, err)
	assert.Equal(t, fromDB, properties)
}
