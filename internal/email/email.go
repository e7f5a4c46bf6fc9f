package email

import (
	"context"
	"fmt"

	"github.com/storehouse-app/storehouse/config"
	"github.com/storehouse-app/storehouse/internal/kafka"
	"gopkg.in/gomail.v2"
)

type Sender struct {
	dialer *gomail.Dialer
	from   string
}

func NewSender(cfg config.SMTPConfig) *Sender {
	return &Sender{
		dialer: gomail.NewDialer(cfg.Host, cfg.Port, cfg.User, cfg.Password),
		from:   cfg.From,
	}
}

func (s *Sender) Send(ctx context.Context, event kafka.BookingEvent) error {
	if ctx.Err() != nil {
		return ctx.Err()
	}

	m := gomail.NewMessage()
	m.SetHeader("From", s.from)
	m.SetHeader("To", event.Email)
	m.SetHeader("Subject", subjectFor(event.Type))
	m.SetBody("text/plain", bodyFor(event))

	return s.dialer.DialAndSend(m)
}

func subjectFor(eventType string) string {
	switch eventType {
	case "booking_created":
		return "Your Storehouse booking request was received"
	case "booking_confirmed":
		return "Your Storehouse booking is confirmed"
	case "booking_rejected":
		return "Your Storehouse booking was declined"
	case "booking_expired":
		return "Your Storehouse booking request expired"
	default:
		return "Storehouse booking update"
	}
}

func bodyFor(event kafka.BookingEvent) string {
	return fmt.Sprintf("Hi %s,\n\nBooking %s is now %s.\nStay: %s to %s (%d nights), total %d.\n\nStorehouse",
		event.GuestName, event.BookingID, event.Status,
		event.CheckIn.Format("2006-01-02"), event.CheckOut.Format("2006-01-02"),
		event.Nights, event.Total)
}
