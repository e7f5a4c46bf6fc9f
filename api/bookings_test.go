package api

import (
	"bytes"
	"context"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/storehouse-app/storehouse/internal/domain"
	"github.com/storehouse-app/storehouse/internal/repository"
	"github.com/storehouse-app/storehouse/internal/service/booking"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

type MockBookingService struct {
	mock.Mock
}

func (m *MockBookingService) Submit(ctx context.Context, caller *domain.User, propertyID uuid.UUID, input booking.GuestIntakeInput) (*domain.Booking, error) {
	args := m.Called(ctx, caller, propertyID, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Booking), args.Error(1)
}

func (m *MockBookingService) GetByID(ctx context.Context, caller *domain.User, id uuid.UUID) (*domain.Booking, error) {
	args := m.Called(ctx, caller, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Booking), args.Error(1)
}

func (m *MockBookingService) ListForUser(ctx context.Context, userID uuid.UUID) ([]domain.Booking, error) {
	args := m.Called(ctx, userID)
	return args.Get(0).([]domain.Booking), args.Error(1)
}

func (m *MockBookingService) ListPending(ctx context.Context) ([]domain.Booking, error) {
	args := m.Called(ctx)
	return args.Get(0).([]domain.Booking), args.Error(1)
}

func (m *MockBookingService) Approve(ctx context.Context, id uuid.UUID) (*domain.Booking, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Booking), args.Error(1)
}

func (m *MockBookingService) Reject(ctx context.Context, id uuid.UUID, reason string) (*domain.Booking, error) {
	args := m.Called(ctx, id, reason)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Booking), args.Error(1)
}

func (m *MockBookingService) ExpirePendingBookings(ctx context.Context) ([]domain.Booking, error) {
	args := m.Called(ctx)
	return args.Get(0).([]domain.Booking), args.Error(1)
}

func (m *MockBookingService) Stats(ctx context.Context) (*repository.BookingStats, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*repository.BookingStats), args.Error(1)
}

func intakeForm(t *testing.T, fields map[string]string, documents []string) (*bytes.Buffer, string) {
	t.Helper()

	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)
	for key, value := range fields {
		assert.NoError(t, writer.WriteField(key, value))
	}
	for _, name := range documents {
		part, err := writer.CreateFormFile("documents", name)
		assert.NoError(t, err)
		_, err = part.Write([]byte("image-bytes"))
		assert.NoError(t, err)
	}
	assert.NoError(t, writer.Close())
	return &buf, writer.FormDataContentType()
}

func validIntakeFields() map[string]string {
	return map[string]string{
		"guest_name":         "Ada Lovelace",
		"email":              "ada@example.com",
		"phone":              "+33612345678",
		"country":            "FR",
		"guests":             "2",
		"check_in":           "2025-06-01",
		"check_out":          "2025-06-04",
		"confirmed_accuracy": "true",
		"agreed_to_terms":    "true",
	}
}

func newBookingTestContext(t *testing.T, propertyID uuid.UUID, body *bytes.Buffer, contentType string, user *domain.User) (*gin.Context, *httptest.ResponseRecorder) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodPost, "/api/properties/"+propertyID.String()+"/bookings", body)
	c.Request.Header.Set("Content-Type", contentType)
	c.Params = gin.Params{{Key: "id", Value: propertyID.String()}}
	if user != nil {
		c.Set(userContextKey, user)
	}
	return c, w
}

func TestBookingHandler_Create(t *testing.T) {
	mockService := &MockBookingService{}
	handler := NewBookingHandler(mockService, &Middleware{})

	propertyID := uuid.New()
	user := &domain.User{ID: uuid.New(), Role: domain.RoleGuest}
	created := &domain.Booking{
		ID:         uuid.New(),
		PropertyID: propertyID,
		UserID:     user.ID,
		Status:     domain.BookingStatusPending,
		Nights:     3,
		Total:      600,
	}

	mockService.On("Submit", mock.Anything, user, propertyID, mock.MatchedBy(func(input booking.GuestIntakeInput) bool {
		return input.GuestName == "Ada Lovelace" && len(input.Documents) == 1
	})).Return(created, nil).Once()

	body, contentType := intakeForm(t, validIntakeFields(), []string{"passport.jpg"})
	c, w := newBookingTestContext(t, propertyID, body, contentType, user)

	handler.create(c)

	assert.Equal(t, http.StatusCreated, w.Code)
	var got domain.Booking
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
	assert.Equal(t, domain.BookingStatusPending, got.Status)
	assert.Equal(t, int64(600), got.Total)
	mockService.AssertExpectations(t)
}

func TestBookingHandler_Create_ValidationError(t *testing.T) {
	mockService := &MockBookingService{}
	handler := NewBookingHandler(mockService, &Middleware{})

	propertyID := uuid.New()
	user := &domain.User{ID: uuid.New()}

	mockService.On("Submit", mock.Anything, user, propertyID, mock.Anything).
		Return(nil, &booking.ValidationError{Message: "upload at least one ID document"}).Once()

	body, contentType := intakeForm(t, validIntakeFields(), nil)
	c, w := newBookingTestContext(t, propertyID, body, contentType, user)

	handler.create(c)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "upload at least one ID document")
}

func TestBookingHandler_Create_SubmitInFlight(t *testing.T) {
	mockService := &MockBookingService{}
	handler := NewBookingHandler(mockService, &Middleware{})

	propertyID := uuid.New()
	user := &domain.User{ID: uuid.New()}

	mockService.On("Submit", mock.Anything, user, propertyID, mock.Anything).
		Return(nil, booking.ErrSubmitInFlight).Once()

	body, contentType := intakeForm(t, validIntakeFields(), []string{"passport.jpg"})
	c, w := newBookingTestContext(t, propertyID, body, contentType, user)

	handler.create(c)

	assert.Equal(t, http.StatusConflict, w.Code)
}

func TestBookingHandler_Create_PropertyNotFound(t *testing.T) {
	mockService := &MockBookingService{}
	handler := NewBookingHandler(mockService, &Middleware{})

	propertyID := uuid.New()
	user := &domain.User{ID: uuid.New()}

	mockService.On("Submit", mock.Anything, user, propertyID, mock.Anything).
		Return(nil, repository.ErrNotFound).Once()

	body, contentType := intakeForm(t, validIntakeFields(), []string{"passport.jpg"})
	c, w := newBookingTestContext(t, propertyID, body, contentType, user)

	handler.create(c)

	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestBookingHandler_Get_Forbidden(t *testing.T) {
	mockService := &MockBookingService{}
	handler := NewBookingHandler(mockService, &Middleware{})

	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)

	user := &domain.User{ID: uuid.New()}
	bookingID := uuid.New()
	c.Request = httptest.NewRequest(http.MethodGet, "/api/bookings/"+bookingID.String(), nil)
	c.Params = gin.Params{{Key: "id", Value: bookingID.String()}}
	c.Set(userContextKey, user)

	mockService.On("GetByID", mock.Anything, user, bookingID).Return(nil, booking.ErrForbidden).Once()

	handler.get(c)

	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestBookingHandler_List(t *testing.T) {
	mockService := &MockBookingService{}
	handler := NewBookingHandler(mockService, &Middleware{})

	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)

	user := &domain.User{ID: uuid.New()}
	c.Request = httptest.NewRequest(http.MethodGet, "/api/bookings/", nil)
	c.Set(userContextKey, user)

	mockService.On("ListForUser", mock.Anything, user.ID).
		Return([]domain.Booking{{ID: uuid.New(), UserID: user.ID}}, nil).Once()

	handler.list(c)

	assert.Equal(t, http.StatusOK, w.Code)
	var got []domain.Booking
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
	assert.Len(t, got, 1)
}
