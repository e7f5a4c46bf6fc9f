package domain

import (
	"time"

	"github.com/google/uuid"
)

// BookingDraft is an in-progress, unconfirmed booking attempt. It survives
// navigation and a login detour, and is superseded by a Booking once the
// submission is accepted.
type BookingDraft struct {
	PropertyID       uuid.UUID `json:"property_id"`
	PropertyTitle    string    `json:"property_title"`
	PropertyImage    string    `json:"property_image"`
	PropertyLocation string    `json:"property_location"`
	CheckIn          time.Time `json:"check_in"`
	CheckOut         time.Time `json:"check_out"`
	Guests           int       `json:"guests"`
	Nights           int       `json:"nights"`
	PricePerNight    int64     `json:"price_per_night"`
	CleaningFee      int64     `json:"cleaning_fee"`
	ServiceFee       int64     `json:"service_fee"`
	Total            int64     `json:"total"`
	UpdatedAt        time.Time `json:"updated_at"`
}

// RedirectState resumes a booking flow interrupted by a login detour.
type RedirectState struct {
	Path      string        `json:"path"`
	Draft     *BookingDraft `json:"draft,omitempty"`
	StashedAt time.Time     `json:"stashed_at"`
}
