package repository

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/storehouse-app/storehouse/internal/domain"
)

type BookingStats struct {
	Pending          int   `json:"pending"`
	Confirmed        int   `json:"confirmed"`
	Rejected         int   `json:"rejected"`
	Expired          int   `json:"expired"`
	ConfirmedRevenue int64 `json:"confirmed_revenue"`
}

type BookingRepository interface {
	Create(ctx context.Context, booking *domain.Booking) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Booking, error)
	ListForUser(ctx context.Context, userID uuid.UUID) ([]domain.Booking, error)
	ListByStatus(ctx context.Context, status domain.BookingStatus) ([]domain.Booking, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, status domain.BookingStatus, reason string) (*domain.Booking, error)
	ExpirePendingBefore(ctx context.Context, deadline time.Time) ([]domain.Booking, error)
	Stats(ctx context.Context) (*BookingStats, error)
}

type PGBookingRepository struct {
	db *pgxpool.Pool
}

func NewBookingRepository(db *pgxpool.Pool) BookingRepository {
	return &PGBookingRepository{db: db}
}

const bookingColumns = `id, property_id, user_id, guest_name, email, phone, country, guests, check_in, check_out, nights, price_per_night, cleaning_fee, service_fee, total, arrival_time, special_requests, document_urls, status, reject_reason, expires_at, created_at, updated_at`

func (r *PGBookingRepository) Create(ctx context.Context, booking *domain.Booking) error {
	booking.Status = domain.BookingStatusPending
	return r.db.QueryRow(ctx, `INSERT INTO bookings
		(id, property_id, user_id, guest_name, email, phone, country, guests, check_in, check_out, nights, price_per_night, cleaning_fee, service_fee, total, arrival_time, special_requests, document_urls, status, expires_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19, $20)
		RETURNING created_at, updated_at`,
		booking.ID, booking.PropertyID, booking.UserID, booking.GuestName, booking.Email, booking.Phone,
		booking.Country, booking.Guests, booking.CheckIn, booking.CheckOut, booking.Nights,
		booking.PricePerNight, booking.CleaningFee, booking.ServiceFee, booking.Total,
		booking.ArrivalTime, booking.SpecialRequests, booking.DocumentURLs, booking.Status, booking.ExpiresAt).
		Scan(&booking.CreatedAt, &booking.UpdatedAt)
}

func (r *PGBookingRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Booking, error) {
	row := r.db.QueryRow(ctx, `SELECT `+bookingColumns+` FROM bookings WHERE id=$1`, id)
	var b domain.Booking
	if err := scanBooking(row, &b); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &b, nil
}

func (r *PGBookingRepository) ListForUser(ctx context.Context, userID uuid.UUID) ([]domain.Booking, error) {
	rows, err := r.db.Query(ctx, `SELECT `+bookingColumns+` FROM bookings WHERE user_id=$1 ORDER BY created_at DESC`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanBookings(rows)
}

func (r *PGBookingRepository) ListByStatus(ctx context.Context, status domain.BookingStatus) ([]domain.Booking, error) {
	rows, err := r.db.Query(ctx, `SELECT `+bookingColumns+` FROM bookings WHERE status=$1 ORDER BY created_at`, status)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanBookings(rows)
}

func (r *PGBookingRepository) UpdateStatus(ctx context.Context, id uuid.UUID, status domain.BookingStatus, reason string) (*domain.Booking, error) {
	row := r.db.QueryRow(ctx, `UPDATE bookings SET status=$1, reject_reason=$2, updated_at=now() WHERE id=$3 RETURNING `+bookingColumns, status, reason, id)
	var b domain.Booking
	if err := scanBooking(row, &b); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &b, nil
}

func (r *PGBookingRepository) ExpirePendingBefore(ctx context.Context, deadline time.Time) ([]domain.Booking, error) {
	rows, err := r.db.Query(ctx, `UPDATE bookings SET status=$1, updated_at=now() WHERE status=$2 AND expires_at <= $3 RETURNING `+bookingColumns,
		domain.BookingStatusExpired, domain.BookingStatusPending, deadline)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanBookings(rows)
}

func (r *PGBookingRepository) Stats(ctx context.Context) (*BookingStats, error) {
	var s BookingStats
	err := r.db.QueryRow(ctx, `SELECT
		count(*) FILTER (WHERE status='PENDING'),
		count(*) FILTER (WHERE status='CONFIRMED'),
		count(*) FILTER (WHERE status='REJECTED'),
		count(*) FILTER (WHERE status='EXPIRED'),
		coalesce(sum(total) FILTER (WHERE status='CONFIRMED'), 0)
		FROM bookings`).
		Scan(&s.Pending, &s.Confirmed, &s.Rejected, &s.Expired, &s.ConfirmedRevenue)
	if err != nil {
		return nil, err
	}
	return &s, nil
}

func scanBooking(row pgx.Row, b *domain.Booking) error {
	return row.Scan(&b.ID, &b.PropertyID, &b.UserID, &b.GuestName, &b.Email, &b.Phone, &b.Country,
		&b.Guests, &b.CheckIn, &b.CheckOut, &b.Nights, &b.PricePerNight, &b.CleaningFee, &b.ServiceFee,
		&b.Total, &b.ArrivalTime, &b.SpecialRequests, &b.DocumentURLs, &b.Status, &b.RejectReason,
		&b.ExpiresAt, &b.CreatedAt, &b.UpdatedAt)
}

func scanBookings(rows pgx.Rows) ([]domain.Booking, error) {
	var bookings []domain.Booking
	for rows.Next() {
		var b domain.Booking
		if err := scanBooking(rows, &b); err != nil {
			return nil, err
		}
		bookings = append(bookings, b)
	}
	return bookings, rows.Err()
}

var _ BookingRepository = (*PGBookingRepository)(nil)
