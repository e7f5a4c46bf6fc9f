package domain

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

type Property struct {
	ID            uuid.UUID `json:"id"`
	Title         string    `json:"title"`
	Description   string    `json:"description"`
	City          string    `json:"city"`
	Country       string    `json:"country"`
	Images        []string  `json:"images"`
	PricePerNight int64     `json:"price_per_night"`
	MaxGuests     int       `json:"max_guests"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

func (p Property) Location() string {
	return fmt.Sprintf("%s, %s", p.City, p.Country)
}

func (p Property) CoverImage() string {
	if len(p.Images) == 0 {
		return ""
	}
	return p.Images[0]
}
