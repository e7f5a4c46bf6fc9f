// Package stay holds the date and pricing rules for a property stay:
// night counting, quote computation, guest clamping and stay validation.
package stay

import (
	"errors"
	"math"
	"time"

	"github.com/storehouse-app/storehouse/internal/domain"
)

const (
	CleaningFee int64 = 25
	ServiceFee  int64 = 35

	// MaxGuestsCap bounds the guest count regardless of the property.
	MaxGuestsCap = 10
)

var (
	ErrMissingDates     = errors.New("check-in and check-out dates are required")
	ErrCheckInPast      = errors.New("check-in date cannot be in the past")
	ErrCheckOutNotAfter = errors.New("check-out date must be after check-in")
)

// IsValidation reports whether err is one of the user-facing stay
// validation errors, as opposed to an infrastructure failure.
func IsValidation(err error) bool {
	return errors.Is(err, ErrMissingDates) || errors.Is(err, ErrCheckInPast) || errors.Is(err, ErrCheckOutNotAfter)
}

// Nights returns the calendar-night count for a stay, rounded up.
// A non-positive range yields 0.
func Nights(checkIn, checkOut time.Time) int {
	diff := checkOut.Sub(checkIn)
	if diff <= 0 {
		return 0
	}
	return int(math.Ceil(diff.Hours() / 24))
}

type Quote struct {
	Nights      int   `json:"nights"`
	CleaningFee int64 `json:"cleaning_fee"`
	ServiceFee  int64 `json:"service_fee"`
	Total       int64 `json:"total"`
}

// PriceQuote computes the stay total: pricePerNight x nights plus fixed
// fees. With zero nights everything is zero, fees included.
func PriceQuote(pricePerNight int64, nights int) Quote {
	if nights <= 0 {
		return Quote{}
	}
	return Quote{
		Nights:      nights,
		CleaningFee: CleaningFee,
		ServiceFee:  ServiceFee,
		Total:       pricePerNight*int64(nights) + CleaningFee + ServiceFee,
	}
}

// ClampGuests forces n into [1, min(maxGuests, MaxGuestsCap)]. Values past
// either bound come back clamped, never as an error.
func ClampGuests(n, maxGuests int) int {
	limit := maxGuests
	if limit > MaxGuestsCap || limit <= 0 {
		limit = MaxGuestsCap
	}
	if n > limit {
		return limit
	}
	if n < 1 {
		return 1
	}
	return n
}

// Validate checks a stay selection against today. today is truncated to a
// calendar date, so a check-in later the same day is still valid.
func Validate(checkIn, checkOut, today time.Time) error {
	if checkIn.IsZero() || checkOut.IsZero() {
		return ErrMissingDates
	}
	if dateOnly(checkIn).Before(dateOnly(today)) {
		return ErrCheckInPast
	}
	if !checkOut.After(checkIn) {
		return ErrCheckOutNotAfter
	}
	return nil
}

// AcceptSaved reports whether a previously saved draft is still usable for
// hydration. Stale or inverted date ranges are discarded silently.
func AcceptSaved(d *domain.BookingDraft, today time.Time) bool {
	if d == nil {
		return false
	}
	return Validate(d.CheckIn, d.CheckOut, today) == nil
}

func dateOnly(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
