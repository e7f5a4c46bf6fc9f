package booking

import (
	"context"
	"errors"
	"fmt"
	"io"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/storehouse-app/storehouse/internal/domain"
	"github.com/storehouse-app/storehouse/internal/draftstore"
	"github.com/storehouse-app/storehouse/internal/kafka"
	"github.com/storehouse-app/storehouse/internal/logger"
	"github.com/storehouse-app/storehouse/internal/repository"
	"github.com/storehouse-app/storehouse/internal/stay"
)

// ValidationError marks a rejection that never reached the network or the
// database; the caller keeps its form state and retries.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

func validationErr(msg string) error {
	return &ValidationError{Message: msg}
}

func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

var (
	ErrForbidden       = errors.New("forbidden")
	ErrNotPending      = errors.New("booking is not pending")
	ErrSubmitInFlight  = errors.New("a submission for this property is already in progress")
	errEmailShape      = "invalid email address"
	errNoDocuments     = "upload at least one ID document"
	errTooManyDocs     = "maximum 2 files allowed"
	errAccuracyConsent = "you must confirm the accuracy of your information"
	errTermsConsent    = "you must agree to the terms and conditions"
)

var emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

const maxDocuments = 2

type Document struct {
	Name   string
	Reader io.Reader
}

type GuestIntakeInput struct {
	GuestName         string
	Email             string
	Phone             string
	Country           string
	Guests            int
	CheckIn           time.Time
	CheckOut          time.Time
	ArrivalTime       string
	SpecialRequests   string
	ConfirmedAccuracy bool
	AgreedToTerms     bool
	Documents         []Document
}

type BookingUseCase interface {
	Submit(ctx context.Context, caller *domain.User, propertyID uuid.UUID, input GuestIntakeInput) (*domain.Booking, error)
	GetByID(ctx context.Context, caller *domain.User, id uuid.UUID) (*domain.Booking, error)
	ListForUser(ctx context.Context, userID uuid.UUID) ([]domain.Booking, error)
	ListPending(ctx context.Context) ([]domain.Booking, error)
	Approve(ctx context.Context, id uuid.UUID) (*domain.Booking, error)
	Reject(ctx context.Context, id uuid.UUID, reason string) (*domain.Booking, error)
	ExpirePendingBookings(ctx context.Context) ([]domain.Booking, error)
	Stats(ctx context.Context) (*repository.BookingStats, error)
}

type Cache interface {
	AcquireSubmitLock(ctx context.Context, userID, propertyID uuid.UUID, ttl time.Duration) (bool, error)
	ReleaseSubmitLock(ctx context.Context, userID, propertyID uuid.UUID) error
}

type Producer interface {
	PublishWithRetry(ctx context.Context, topic, key string, value interface{}, maxRetries int) error
}

const publishRetries = 3

type DocumentStore interface {
	Upload(ctx context.Context, name string, r io.Reader) (string, error)
}

type BookingService struct {
	bookings           repository.BookingRepository
	properties         repository.PropertyRepository
	drafts             draftstore.Store
	cache              Cache
	documents          DocumentStore
	producer           Producer
	bookingTopic       string
	notificationsTopic string
	submitTimeout      time.Duration
	submitLockTTL      time.Duration
	reviewTTL          time.Duration
	now                func() time.Time
}

type BookingServiceOption func(*BookingService)

func WithNotificationsTopic(topic string) BookingServiceOption {
	return func(s *BookingService) {
		s.notificationsTopic = topic
	}
}

func NewBookingService(
	bookings repository.BookingRepository,
	properties repository.PropertyRepository,
	drafts draftstore.Store,
	cache Cache,
	documents DocumentStore,
	producer Producer,
	bookingTopic string,
	submitTimeout, submitLockTTL, reviewTTL time.Duration,
	opts ...BookingServiceOption,
) *BookingService {
	service := &BookingService{
		bookings:      bookings,
		properties:    properties,
		drafts:        drafts,
		cache:         cache,
		documents:     documents,
		producer:      producer,
		bookingTopic:  bookingTopic,
		submitTimeout: submitTimeout,
		submitLockTTL: submitLockTTL,
		reviewTTL:     reviewTTL,
		now:           time.Now,
	}
	for _, opt := range opts {
		opt(service)
	}
	return service
}

// Submit validates the guest intake synchronously, then uploads the identity
// documents, inserts the booking and promotes the caller's draft to a
// confirmed record. Validation failures never reach storage or the network.
func (s *BookingService) Submit(ctx context.Context, caller *domain.User, propertyID uuid.UUID, input GuestIntakeInput) (*domain.Booking, error) {
	if err := s.validateIntake(input); err != nil {
		return nil, err
	}

	if s.submitTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.submitTimeout)
		defer cancel()
	}

	property, err := s.properties.GetByID(ctx, propertyID)
	if err != nil {
		return nil, err
	}

	locked := false
	if s.cache != nil {
		ok, err := s.cache.AcquireSubmitLock(ctx, caller.ID, propertyID, s.submitLockTTL)
		if err != nil {
			return nil, err
		}
		if !ok {
			return nil, ErrSubmitInFlight
		}
		locked = true
		defer func() {
			if locked {
				_ = s.cache.ReleaseSubmitLock(ctx, caller.ID, propertyID)
			}
		}()
	}

	urls := make([]string, 0, len(input.Documents))
	for _, doc := range input.Documents {
		url, err := s.documents.Upload(ctx, doc.Name, doc.Reader)
		if err != nil {
			return nil, fmt.Errorf("upload identity document: %w", err)
		}
		urls = append(urls, url)
	}

	// Submitted values win over the draft: recompute the stay from the form.
	guests := stay.ClampGuests(input.Guests, property.MaxGuests)
	nights := stay.Nights(input.CheckIn, input.CheckOut)
	quote := stay.PriceQuote(property.PricePerNight, nights)

	booking := &domain.Booking{
		ID:              uuid.New(),
		PropertyID:      property.ID,
		UserID:          caller.ID,
		GuestName:       strings.TrimSpace(input.GuestName),
		Email:           strings.TrimSpace(input.Email),
		Phone:           strings.TrimSpace(input.Phone),
		Country:         input.Country,
		Guests:          guests,
		CheckIn:         input.CheckIn,
		CheckOut:        input.CheckOut,
		Nights:          quote.Nights,
		PricePerNight:   property.PricePerNight,
		CleaningFee:     quote.CleaningFee,
		ServiceFee:      quote.ServiceFee,
		Total:           quote.Total,
		ArrivalTime:     input.ArrivalTime,
		SpecialRequests: input.SpecialRequests,
		DocumentURLs:    urls,
		Status:          domain.BookingStatusPending,
		ExpiresAt:       s.now().Add(s.reviewTTL),
	}

	if err := s.bookings.Create(ctx, booking); err != nil {
		return nil, err
	}

	if err := s.drafts.PromoteToConfirmed(ctx, caller.ID.String(), booking); err != nil {
		logger.Log.WithField("booking_id", booking.ID).Warnf("promote draft: %v", err)
	}

	if err := s.publish(ctx, "booking_created", booking); err != nil {
		logger.Log.WithField("booking_id", booking.ID).Warnf("publish booking_created: %v", err)
	}

	return booking, nil
}

func (s *BookingService) validateIntake(input GuestIntakeInput) error {
	if strings.TrimSpace(input.GuestName) == "" {
		return validationErr("full name is required")
	}
	email := strings.TrimSpace(input.Email)
	if email == "" {
		return validationErr("email is required")
	}
	if !emailPattern.MatchString(email) {
		return validationErr(errEmailShape)
	}
	if strings.TrimSpace(input.Phone) == "" {
		return validationErr("phone number is required")
	}
	if strings.TrimSpace(input.Country) == "" {
		return validationErr("country is required")
	}
	if err := stay.Validate(input.CheckIn, input.CheckOut, s.now()); err != nil {
		return validationErr(err.Error())
	}
	if !input.ConfirmedAccuracy {
		return validationErr(errAccuracyConsent)
	}
	if !input.AgreedToTerms {
		return validationErr(errTermsConsent)
	}
	if len(input.Documents) == 0 {
		return validationErr(errNoDocuments)
	}
	if len(input.Documents) > maxDocuments {
		return validationErr(errTooManyDocs)
	}
	return nil
}

func (s *BookingService) GetByID(ctx context.Context, caller *domain.User, id uuid.UUID) (*domain.Booking, error) {
	booking, err := s.bookings.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if booking.UserID != caller.ID && caller.Role != domain.RoleAdmin {
		return nil, ErrForbidden
	}
	return booking, nil
}

func (s *BookingService) ListForUser(ctx context.Context, userID uuid.UUID) ([]domain.Booking, error) {
	return s.bookings.ListForUser(ctx, userID)
}

func (s *BookingService) ListPending(ctx context.Context) ([]domain.Booking, error) {
	return s.bookings.ListByStatus(ctx, domain.BookingStatusPending)
}

func (s *BookingService) Approve(ctx context.Context, id uuid.UUID) (*domain.Booking, error) {
	current, err := s.bookings.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if current.Status != domain.BookingStatusPending {
		return nil, ErrNotPending
	}

	updated, err := s.bookings.UpdateStatus(ctx, id, domain.BookingStatusConfirmed, "")
	if err != nil {
		return nil, err
	}
	if err := s.publish(ctx, "booking_confirmed", updated); err != nil {
		logger.Log.WithField("booking_id", updated.ID).Warnf("publish booking_confirmed: %v", err)
	}
	return updated, nil
}

func (s *BookingService) Reject(ctx context.Context, id uuid.UUID, reason string) (*domain.Booking, error) {
	current, err := s.bookings.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if current.Status != domain.BookingStatusPending {
		return nil, ErrNotPending
	}

	updated, err := s.bookings.UpdateStatus(ctx, id, domain.BookingStatusRejected, reason)
	if err != nil {
		return nil, err
	}
	if err := s.publish(ctx, "booking_rejected", updated); err != nil {
		logger.Log.WithField("booking_id", updated.ID).Warnf("publish booking_rejected: %v", err)
	}
	return updated, nil
}

// ExpirePendingBookings marks bookings past their review deadline as expired.
func (s *BookingService) ExpirePendingBookings(ctx context.Context) ([]domain.Booking, error) {
	expired, err := s.bookings.ExpirePendingBefore(ctx, s.now())
	if err != nil {
		return nil, err
	}
	for i := range expired {
		if err := s.publish(ctx, "booking_expired", &expired[i]); err != nil {
			logger.Log.WithField("booking_id", expired[i].ID).Warnf("publish booking_expired: %v", err)
		}
	}
	return expired, nil
}

func (s *BookingService) Stats(ctx context.Context) (*repository.BookingStats, error) {
	return s.bookings.Stats(ctx)
}

func (s *BookingService) publish(ctx context.Context, eventType string, booking *domain.Booking) error {
	if s.producer == nil || s.bookingTopic == "" {
		return nil
	}
	event := kafka.NewBookingEvent(eventType, booking)
	if err := s.producer.PublishWithRetry(ctx, s.bookingTopic, booking.ID.String(), event, publishRetries); err != nil {
		return err
	}
	if s.notificationsTopic != "" {
		return s.producer.PublishWithRetry(ctx, s.notificationsTopic, booking.ID.String(), event, publishRetries)
	}
	return nil
}

var _ BookingUseCase = (*BookingService)(nil)
