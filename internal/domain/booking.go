package domain

import (
	"time"

	"github.com/google/uuid"
)

type BookingStatus string

const (
	BookingStatusPending   BookingStatus = "PENDING"
	BookingStatusConfirmed BookingStatus = "CONFIRMED"
	BookingStatusRejected  BookingStatus = "REJECTED"
	BookingStatusCancelled BookingStatus = "CANCELLED"
	BookingStatusExpired   BookingStatus = "EXPIRED"
)

type Booking struct {
	ID              uuid.UUID     `json:"id"`
	PropertyID      uuid.UUID     `json:"property_id"`
	UserID          uuid.UUID     `json:"user_id"`
	GuestName       string        `json:"guest_name"`
	Email           string        `json:"email"`
	Phone           string        `json:"phone"`
	Country         string        `json:"country"`
	Guests          int           `json:"guests"`
	CheckIn         time.Time     `json:"check_in"`
	CheckOut        time.Time     `json:"check_out"`
	Nights          int           `json:"nights"`
	PricePerNight   int64         `json:"price_per_night"`
	CleaningFee     int64         `json:"cleaning_fee"`
	ServiceFee      int64         `json:"service_fee"`
	Total           int64         `json:"total"`
	ArrivalTime     string        `json:"arrival_time,omitempty"`
	SpecialRequests string        `json:"special_requests,omitempty"`
	DocumentURLs    []string      `json:"document_urls"`
	Status          BookingStatus `json:"status"`
	RejectReason    string        `json:"reject_reason,omitempty"`
	ExpiresAt       time.Time     `json:"expires_at"`
	CreatedAt       time.Time     `json:"created_at"`
	UpdatedAt       time.Time     `json:"updated_at"`
}
