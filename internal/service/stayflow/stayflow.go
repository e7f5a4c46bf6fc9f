// Package stayflow implements the stay-selection flow: drafts are saved on
// every edit, hydrated on return visits, and a submission either proceeds to
// the guest-intake step or forks into a login detour with the draft stashed.
package stayflow

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/storehouse-app/storehouse/internal/domain"
	"github.com/storehouse-app/storehouse/internal/draftstore"
	"github.com/storehouse-app/storehouse/internal/repository"
	"github.com/storehouse-app/storehouse/internal/stay"
)

// ErrAuthRequired is a control-flow fork, not a failure: the draft is
// durable and the caller must authenticate before continuing.
var ErrAuthRequired = errors.New("authentication required")

type StayInput struct {
	PropertyID uuid.UUID `json:"property_id"`
	CheckIn    time.Time `json:"check_in"`
	CheckOut   time.Time `json:"check_out"`
	Guests     int       `json:"guests"`
}

type StayUseCase interface {
	Save(ctx context.Context, session string, input StayInput) (*domain.BookingDraft, error)
	Hydrate(ctx context.Context, session string, propertyID uuid.UUID) (*domain.BookingDraft, error)
	Pending(ctx context.Context, session string) (*domain.BookingDraft, error)
	Submit(ctx context.Context, session string, authenticated bool, path string, input StayInput) (*domain.BookingDraft, error)
}

type StayService struct {
	properties repository.PropertyRepository
	drafts     draftstore.Store
	now        func() time.Time
}

func NewStayService(properties repository.PropertyRepository, drafts draftstore.Store) *StayService {
	return &StayService{
		properties: properties,
		drafts:     drafts,
		now:        time.Now,
	}
}

// Save re-persists the full draft on any field change. Incomplete or invalid
// stays are still saved, with nights and total zeroed.
func (s *StayService) Save(ctx context.Context, session string, input StayInput) (*domain.BookingDraft, error) {
	draft, err := s.buildDraft(ctx, input)
	if err != nil {
		return nil, err
	}
	if err := s.drafts.SetDraft(ctx, session, draft); err != nil {
		return nil, err
	}
	return draft, nil
}

// Hydrate returns the saved draft for a property, or nil when none is usable.
// A stale draft (check-in already passed) is discarded silently.
func (s *StayService) Hydrate(ctx context.Context, session string, propertyID uuid.UUID) (*domain.BookingDraft, error) {
	draft, err := s.drafts.GetDraft(ctx, session, propertyID)
	if err != nil {
		return nil, err
	}
	if !stay.AcceptSaved(draft, s.now()) {
		return nil, nil
	}
	return draft, nil
}

func (s *StayService) Pending(ctx context.Context, session string) (*domain.BookingDraft, error) {
	draft, err := s.drafts.GetPendingDraft(ctx, session)
	if err != nil {
		return nil, err
	}
	if !stay.AcceptSaved(draft, s.now()) {
		return nil, nil
	}
	return draft, nil
}

// Submit validates the stay and persists the draft. Unauthenticated callers
// get ErrAuthRequired after the draft and the redirect state are durable;
// authenticated callers get the draft back for the terms step.
func (s *StayService) Submit(ctx context.Context, session string, authenticated bool, path string, input StayInput) (*domain.BookingDraft, error) {
	if err := stay.Validate(input.CheckIn, input.CheckOut, s.now()); err != nil {
		return nil, err
	}

	draft, err := s.buildDraft(ctx, input)
	if err != nil {
		return nil, err
	}
	if err := s.drafts.SetDraft(ctx, session, draft); err != nil {
		return nil, err
	}

	if !authenticated {
		state := &domain.RedirectState{Path: path, Draft: draft, StashedAt: s.now()}
		if err := s.drafts.StashRedirect(ctx, session, state); err != nil {
			return nil, err
		}
		return nil, ErrAuthRequired
	}

	return draft, nil
}

func (s *StayService) buildDraft(ctx context.Context, input StayInput) (*domain.BookingDraft, error) {
	property, err := s.properties.GetByID(ctx, input.PropertyID)
	if err != nil {
		return nil, err
	}

	guests := stay.ClampGuests(input.Guests, property.MaxGuests)

	nights := 0
	if stay.Validate(input.CheckIn, input.CheckOut, s.now()) == nil {
		nights = stay.Nights(input.CheckIn, input.CheckOut)
	}
	quote := stay.PriceQuote(property.PricePerNight, nights)

	return &domain.BookingDraft{
		PropertyID:       property.ID,
		PropertyTitle:    property.Title,
		PropertyImage:    property.CoverImage(),
		PropertyLocation: property.Location(),
		CheckIn:          input.CheckIn,
		CheckOut:         input.CheckOut,
		Guests:           guests,
		Nights:           quote.Nights,
		PricePerNight:    property.PricePerNight,
		CleaningFee:      quote.CleaningFee,
		ServiceFee:       quote.ServiceFee,
		Total:            quote.Total,
		UpdatedAt:        s.now(),
	}, nil
}

var _ StayUseCase = (*StayService)(nil)
