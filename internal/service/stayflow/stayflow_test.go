package stayflow

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/storehouse-app/storehouse/internal/domain"
	"github.com/storehouse-app/storehouse/internal/stay"
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

type MockDraftStore struct {
	mock.Mock
}

func (m *MockDraftStore) SetDraft(ctx context.Context, session string, draft *domain.BookingDraft) error {
	args := m.Called(ctx, session, draft)
	return args.Error(0)
}

func (m *MockDraftStore) GetDraft(ctx context.Context, session string, propertyID uuid.UUID) (*domain.BookingDraft, error) {
	args := m.Called(ctx, session, propertyID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.BookingDraft), args.Error(1)
}

func (m *MockDraftStore) GetPendingDraft(ctx context.Context, session string) (*domain.BookingDraft, error) {
	args := m.Called(ctx, session)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.BookingDraft), args.Error(1)
}

func (m *MockDraftStore) PromoteToConfirmed(ctx context.Context, session string, booking *domain.Booking) error {
	args := m.Called(ctx, session, booking)
	return args.Error(0)
}

func (m *MockDraftStore) GetConfirmed(ctx context.Context, bookingID uuid.UUID) (*domain.Booking, error) {
	args := m.Called(ctx, bookingID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Booking), args.Error(1)
}

func (m *MockDraftStore) StashRedirect(ctx context.Context, session string, state *domain.RedirectState) error {
	args := m.Called(ctx, session, state)
	return args.Error(0)
}

func (m *MockDraftStore) PopRedirect(ctx context.Context, session string) (*domain.RedirectState, error) {
	args := m.Called(ctx, session)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.RedirectState), args.Error(1)
}

func fixedNow() time.Time {
	return time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
}

func testProperty() *domain.Property {
	return &domain.Property{
		ID:            uuid.New(),
		Title:         "Canal House",
		City:          "Amsterdam",
		Country:       "Netherlands",
		PricePerNight: 180,
		MaxGuests:     4,
	}
}

func newTestService(props *MockPropertyRepository, drafts *MockDraftStore) *StayService {
	return &StayService{
		properties: props,
		drafts:     drafts,
		now:        fixedNow,
	}
}

func TestStayService_Save_ComputesQuote(t *testing.T) {
	mockProps := &MockPropertyRepository{}
	mockDrafts := &MockDraftStore{}
	service := newTestService(mockProps, mockDrafts)

	property := testProperty()
	mockProps.On("GetByID", mock.Anything, property.ID).Return(property, nil).Once()
	mockDrafts.On("SetDraft", mock.Anything, "session-1", mock.AnythingOfType("*domain.BookingDraft")).Return(nil).Once()

	draft, err := service.Save(context.Background(), "session-1", StayInput{
		PropertyID: property.ID,
		CheckIn:    time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC),
		CheckOut:   time.Date(2025, 6, 4, 0, 0, 0, 0, time.UTC),
		Guests:     2,
	})

	assert.NoError(t, err)
	assert.Equal(t, 3, draft.Nights)
	assert.Equal(t, int64(600), draft.Total)
	assert.Equal(t, 2, draft.Guests)
	assert.Equal(t, fixedNow(), draft.UpdatedAt)
	mockDrafts.AssertExpectations(t)
}

// A partially filled stay is still persisted, with the quote zeroed.
func TestStayService_Save_IncompleteStayZeroesQuote(t *testing.T) {
	mockProps := &MockPropertyRepository{}
	mockDrafts := &MockDraftStore{}
	service := newTestService(mockProps, mockDrafts)

	property := testProperty()
	mockProps.On("GetByID", mock.Anything, property.ID).Return(property, nil).Once()
	mockDrafts.On("SetDraft", mock.Anything, "session-1", mock.Anything).Return(nil).Once()

	draft, err := service.Save(context.Background(), "session-1", StayInput{
		PropertyID: property.ID,
		CheckIn:    time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC),
		Guests:     2,
	})

	assert.NoError(t, err)
	assert.Equal(t, 0, draft.Nights)
	assert.Equal(t, int64(0), draft.Total)
	mockDrafts.AssertExpectations(t)
}

func TestStayService_Save_ClampsGuests(t *testing.T) {
	mockProps := &MockPropertyRepository{}
	mockDrafts := &MockDraftStore{}
	service := newTestService(mockProps, mockDrafts)

	property := testProperty()
	mockProps.On("GetByID", mock.Anything, property.ID).Return(property, nil)
	mockDrafts.On("SetDraft", mock.Anything, mock.Anything, mock.Anything).Return(nil)

	draft, err := service.Save(context.Background(), "s", StayInput{PropertyID: property.ID, Guests: 99})
	assert.NoError(t, err)
	assert.Equal(t, 4, draft.Guests)

	draft, err = service.Save(context.Background(), "s", StayInput{PropertyID: property.ID, Guests: 0})
	assert.NoError(t, err)
	assert.Equal(t, 1, draft.Guests)
}

func TestStayService_Hydrate_ReturnsUsableDraft(t *testing.T) {
	mockProps := &MockPropertyRepository{}
	mockDrafts := &MockDraftStore{}
	service := newTestService(mockProps, mockDrafts)

	propertyID := uuid.New()
	saved := &domain.BookingDraft{
		PropertyID: propertyID,
		CheckIn:    time.Date(2025, 6, 10, 0, 0, 0, 0, time.UTC),
		CheckOut:   time.Date(2025, 6, 12, 0, 0, 0, 0, time.UTC),
		Guests:     2,
	}
	mockDrafts.On("GetDraft", mock.Anything, "session-1", propertyID).Return(saved, nil).Once()

	draft, err := service.Hydrate(context.Background(), "session-1", propertyID)

	assert.NoError(t, err)
	assert.Equal(t, saved, draft)
}

// A draft whose check-in already passed is discarded, not surfaced.
func TestStayService_Hydrate_DiscardsStaleDraft(t *testing.T) {
	mockProps := &MockPropertyRepository{}
	mockDrafts := &MockDraftStore{}
	service := newTestService(mockProps, mockDrafts)

	propertyID := uuid.New()
	stale := &domain.BookingDraft{
		PropertyID: propertyID,
		CheckIn:    time.Date(2025, 5, 20, 0, 0, 0, 0, time.UTC),
		CheckOut:   time.Date(2025, 5, 22, 0, 0, 0, 0, time.UTC),
	}
	mockDrafts.On("GetDraft", mock.Anything, "session-1", propertyID).Return(stale, nil).Once()

	draft, err := service.Hydrate(context.Background(), "session-1", propertyID)

	assert.NoError(t, err)
	assert.Nil(t, draft)
}

func TestStayService_Hydrate_NoDraft(t *testing.T) {
	mockProps := &MockPropertyRepository{}
	mockDrafts := &MockDraftStore{}
	service := newTestService(mockProps, mockDrafts)

	propertyID := uuid.New()
	mockDrafts.On("GetDraft", mock.Anything, "session-1", propertyID).Return(nil, nil).Once()

	draft, err := service.Hydrate(context.Background(), "session-1", propertyID)

	assert.NoError(t, err)
	assert.Nil(t, draft)
}

func TestStayService_Submit_Authenticated(t *testing.T) {
	mockProps := &MockPropertyRepository{}
	mockDrafts := &MockDraftStore{}
	service := newTestService(mockProps, mockDrafts)

	property := testProperty()
	mockProps.On("GetByID", mock.Anything, property.ID).Return(property, nil).Once()
	mockDrafts.On("SetDraft", mock.Anything, "user-1", mock.Anything).Return(nil).Once()

	draft, err := service.Submit(context.Background(), "user-1", true, "/property/"+property.ID.String(), StayInput{
		PropertyID: property.ID,
		CheckIn:    time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC),
		CheckOut:   time.Date(2025, 6, 4, 0, 0, 0, 0, time.UTC),
		Guests:     2,
	})

	assert.NoError(t, err)
	assert.NotNil(t, draft)
	assert.Equal(t, int64(600), draft.Total)
	mockDrafts.AssertNotCalled(t, "StashRedirect")
}

// An unauthenticated submit persists the draft and stashes the redirect
// before reporting the login detour.
func TestStayService_Submit_Unauthenticated(t *testing.T) {
	mockProps := &MockPropertyRepository{}
	mockDrafts := &MockDraftStore{}
	service := newTestService(mockProps, mockDrafts)

	property := testProperty()
	path := "/property/" + property.ID.String()

	mockProps.On("GetByID", mock.Anything, property.ID).Return(property, nil).Once()
	mockDrafts.On("SetDraft", mock.Anything, "anon-key", mock.Anything).Return(nil).Once()
	mockDrafts.On("StashRedirect", mock.Anything, "anon-key", mock.MatchedBy(func(state *domain.RedirectState) bool {
		return state.Path == path && state.Draft != nil && state.StashedAt.Equal(fixedNow())
	})).Return(nil).Once()

	draft, err := service.Submit(context.Background(), "anon-key", false, path, StayInput{
		PropertyID: property.ID,
		CheckIn:    time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC),
		CheckOut:   time.Date(2025, 6, 4, 0, 0, 0, 0, time.UTC),
		Guests:     2,
	})

	assert.ErrorIs(t, err, ErrAuthRequired)
	assert.Nil(t, draft)
	mockDrafts.AssertExpectations(t)
}

// Invalid dates short-circuit before anything is persisted.
func TestStayService_Submit_InvalidDates(t *testing.T) {
	mockProps := &MockPropertyRepository{}
	mockDrafts := &MockDraftStore{}
	service := newTestService(mockProps, mockDrafts)

	testCases := []struct {
		name     string
		checkIn  time.Time
		checkOut time.Time
		expected error
	}{
		{"missing dates", time.Time{}, time.Time{}, stay.ErrMissingDates},
		{"past check-in", time.Date(2025, 5, 1, 0, 0, 0, 0, time.UTC), time.Date(2025, 6, 4, 0, 0, 0, 0, time.UTC), stay.ErrCheckInPast},
		{"inverted range", time.Date(2025, 6, 4, 0, 0, 0, 0, time.UTC), time.Date(2025, 6, 4, 0, 0, 0, 0, time.UTC), stay.ErrCheckOutNotAfter},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			draft, err := service.Submit(context.Background(), "s", true, "/p", StayInput{
				PropertyID: uuid.New(),
				CheckIn:    tc.checkIn,
				CheckOut:   tc.checkOut,
				Guests:     1,
			})
			assert.ErrorIs(t, err, tc.expected)
			assert.Nil(t, draft)
		})
	}

	mockDrafts.AssertNotCalled(t, "SetDraft")
	mockDrafts.AssertNotCalled(t, "StashRedirect")
}

func TestStayService_Pending(t *testing.T) {
	mockProps := &MockPropertyRepository{}
	mockDrafts := &MockDraftStore{}
	service := newTestService(mockProps, mockDrafts)

	pending := &domain.BookingDraft{
		PropertyID: uuid.New(),
		CheckIn:    time.Date(2025, 6, 10, 0, 0, 0, 0, time.UTC),
		CheckOut:   time.Date(2025, 6, 12, 0, 0, 0, 0, time.UTC),
	}
	mockDrafts.On("GetPendingDraft", mock.Anything, "session-1").Return(pending, nil).Once()

	draft, err := service.Pending(context.Background(), "session-1")

	assert.NoError(t, err)
	assert.Equal(t, pending, draft)
}
