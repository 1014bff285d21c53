package booking_models

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/stayvia/booking/logger"
	"github.com/stayvia/booking/models/shared_models"
	"github.com/stayvia/booking/utils"
)

// Booking represents one reservation request. Monetary fields are fixed at
// creation time; only status and updated_at change afterwards, and nothing
// changes once the booking reaches a terminal status.
type Booking struct {
	ID              uuid.UUID  `json:"id"`
	UserID          uuid.UUID  `json:"user_id"`
	PropertyID      uuid.UUID  `json:"property_id"`
	RoomID          uuid.UUID  `json:"room_id"`
	GuestName       string     `json:"guest_name"`
	GuestEmail      string     `json:"guest_email"`
	GuestPhone      string     `json:"guest_phone"`
	CheckIn         time.Time  `json:"check_in"`
	CheckOut        time.Time  `json:"check_out"`
	Nights          int        `json:"nights"`
	Guests          int        `json:"guests"`
	RoomType        string     `json:"room_type"`
	Subtotal        float64    `json:"subtotal"`
	ServiceFee      float64    `json:"service_fee"`
	DeliveryFee     float64    `json:"delivery_fee"`
	Total           float64    `json:"total"`
	PriceNote       *string    `json:"price_note,omitempty"`
	SpecialRequests *string    `json:"special_requests,omitempty"`
	PromoCodeID     *uuid.UUID `json:"promo_code_id,omitempty"`
	Status          string     `json:"status"`
	CreatedAt       time.Time  `json:"created_at"`
	UpdatedAt       time.Time  `json:"updated_at"`
}

const bookingColumns = `
	id, user_id, property_id, room_id, guest_name, guest_email, guest_phone,
	check_in, check_out, nights, guests, room_type,
	subtotal, service_fee, delivery_fee, total, price_note, special_requests,
	promo_code_id, status, created_at, updated_at`

func scanBooking(row pgx.Row) (*Booking, error) {
	b := &Booking{}
	err := row.Scan(
		&b.ID, &b.UserID, &b.PropertyID, &b.RoomID, &b.GuestName, &b.GuestEmail, &b.GuestPhone,
		&b.CheckIn, &b.CheckOut, &b.Nights, &b.Guests, &b.RoomType,
		&b.Subtotal, &b.ServiceFee, &b.DeliveryFee, &b.Total, &b.PriceNote, &b.SpecialRequests,
		&b.PromoCodeID, &b.Status, &b.CreatedAt, &b.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return b, nil
}

// InsertBooking persists a new booking. Runs inside the caller's
// transaction so promo redemption and the insert commit together.
func InsertBooking(ctx context.Context, tx shared_models.DBTX, b *Booking) error {
	if b.ID == uuid.Nil {
		id, err := uuid.NewV7()
		if err != nil {
			return fmt.Errorf("failed to generate UUID for booking: %w", err)
		}
		b.ID = id
	}
	if b.CreatedAt.IsZero() {
		now := time.Now()
		b.CreatedAt = now
		b.UpdatedAt = now
	}

	query := `
		INSERT INTO bookings (` + bookingColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19, $20, $21, $22)`

	_, err := tx.Exec(ctx, query,
		b.ID, b.UserID, b.PropertyID, b.RoomID, b.GuestName, b.GuestEmail, b.GuestPhone,
		b.CheckIn, b.CheckOut, b.Nights, b.Guests, b.RoomType,
		b.Subtotal, b.ServiceFee, b.DeliveryFee, b.Total, b.PriceNote, b.SpecialRequests,
		b.PromoCodeID, b.Status, b.CreatedAt, b.UpdatedAt,
	)
	if err != nil {
		logger.ErrorLogger.Errorf("Failed to insert booking for room %s: %v", b.RoomID, err)
		return fmt.Errorf("failed to create booking: %w", err)
	}
	return nil
}

func GetBookingByID(ctx context.Context, db shared_models.DBTX, bookingID uuid.UUID) (*Booking, error) {
	row := db.QueryRow(ctx, `SELECT `+bookingColumns+` FROM bookings WHERE id = $1`, bookingID)
	b, err := scanBooking(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, utils.NotFound("Booking not found")
		}
		logger.ErrorLogger.Errorf("Failed to fetch booking %s: %v", bookingID, err)
		return nil, fmt.Errorf("database error fetching booking: %w", err)
	}
	return b, nil
}

// GetUserBooking fetches a booking scoped to its owning user. An existing
// booking owned by someone else reads the same as a missing one.
func GetUserBooking(ctx context.Context, db shared_models.DBTX, userID, bookingID uuid.UUID) (*Booking, error) {
	row := db.QueryRow(ctx, `SELECT `+bookingColumns+` FROM bookings WHERE id = $1 AND user_id = $2`, bookingID, userID)
	b, err := scanBooking(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, utils.NotFound("Booking not found")
		}
		logger.ErrorLogger.Errorf("Failed to fetch booking %s for user %s: %v", bookingID, userID, err)
		return nil, fmt.Errorf("database error fetching booking: %w", err)
	}
	return b, nil
}

// GetVendorBooking fetches a booking together with the owning vendor id so
// vendor actions can enforce ownership.
func GetVendorBooking(ctx context.Context, db shared_models.DBTX, vendorID, bookingID uuid.UUID) (*Booking, error) {
	var ownerID uuid.UUID
	row := db.QueryRow(ctx, `
		SELECT `+qualifiedBookingColumns+`, p.vendor_id
		FROM bookings b
		JOIN properties p ON p.id = b.property_id
		WHERE b.id = $1`, bookingID)

	b := &Booking{}
	err := row.Scan(
		&b.ID, &b.UserID, &b.PropertyID, &b.RoomID, &b.GuestName, &b.GuestEmail, &b.GuestPhone,
		&b.CheckIn, &b.CheckOut, &b.Nights, &b.Guests, &b.RoomType,
		&b.Subtotal, &b.ServiceFee, &b.DeliveryFee, &b.Total, &b.PriceNote, &b.SpecialRequests,
		&b.PromoCodeID, &b.Status, &b.CreatedAt, &b.UpdatedAt,
		&ownerID,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, utils.NotFound("Booking not found")
		}
		logger.ErrorLogger.Errorf("Failed to fetch booking %s for vendor %s: %v", bookingID, vendorID, err)
		return nil, fmt.Errorf("database error fetching booking: %w", err)
	}
	if ownerID != vendorID {
		return nil, utils.Forbidden("Not your booking")
	}
	return b, nil
}

const qualifiedBookingColumns = `
	b.id, b.user_id, b.property_id, b.room_id, b.guest_name, b.guest_email, b.guest_phone,
	b.check_in, b.check_out, b.nights, b.guests, b.room_type,
	b.subtotal, b.service_fee, b.delivery_fee, b.total, b.price_note, b.special_requests,
	b.promo_code_id, b.status, b.created_at, b.updated_at`

// Transition applies a state-machine action with the legality check inside
// the UPDATE itself, so two concurrent transitions against the same booking
// cannot both pass the status guard. Zero rows affected means either the
// booking is gone or its current status does not allow the action; the
// follow-up read distinguishes the two for the caller.
func Transition(ctx context.Context, db shared_models.DBTX, bookingID uuid.UUID, action shared_models.BookingAction) (*Booking, error) {
	to, from, ok := shared_models.TransitionTarget(action)
	if !ok {
		return nil, fmt.Errorf("unknown booking action %q", action)
	}

	cmdTag, err := db.Exec(ctx, `
		UPDATE bookings
		SET status = $2, updated_at = now()
		WHERE id = $1 AND status = ANY($3)`,
		bookingID, to, from)
	if err != nil {
		logger.ErrorLogger.Errorf("Failed to transition booking %s via %s: %v", bookingID, action, err)
		return nil, fmt.Errorf("failed to update booking status: %w", err)
	}

	if cmdTag.RowsAffected() == 0 {
		current, err := GetBookingByID(ctx, db, bookingID)
		if err != nil {
			return nil, err
		}
		return nil, utils.BadRequest(utils.CodeInvalidBookingState,
			fmt.Sprintf("Cannot %s a booking in status %s", action, current.Status))
	}

	logger.InfoLogger.Infof("Booking %s transitioned to %s via %s", bookingID, to, action)
	return GetBookingByID(ctx, db, bookingID)
}

// ListUserBookings returns the user's bookings, newest first, with an
// optional status filter.
func ListUserBookings(ctx context.Context, db shared_models.DBTX, userID uuid.UUID, status string, page, limit int) ([]Booking, int, error) {
	return listBookings(ctx, db, `user_id = $1`, []any{userID}, status, "created_at DESC", page, limit)
}

// ListUserActive returns the user's in-flight bookings ordered by check-in.
func ListUserActive(ctx context.Context, db shared_models.DBTX, userID uuid.UUID, page, limit int) ([]Booking, int, error) {
	return listBookings(ctx, db,
		`user_id = $1 AND status = ANY($2)`,
		[]any{userID, activeStatuses()},
		"", "check_in ASC", page, limit)
}

func activeStatuses() []string {
	return []string{
		shared_models.BookingStatusPending,
		shared_models.BookingStatusConfirmed,
		shared_models.BookingStatusPaid,
		shared_models.BookingStatusCheckedIn,
	}
}

// ListUserHistory returns the user's terminal bookings ordered by checkout.
func ListUserHistory(ctx context.Context, db shared_models.DBTX, userID uuid.UUID, status string, page, limit int) ([]Booking, int, error) {
	if status != "" {
		return listBookings(ctx, db, `user_id = $1`, []any{userID}, status, "check_out DESC", page, limit)
	}
	return listBookings(ctx, db,
		`user_id = $1 AND status = ANY($2)`,
		[]any{userID, []string{shared_models.BookingStatusCompleted, shared_models.BookingStatusCancelled}},
		"", "check_out DESC", page, limit)
}

// ListVendorBookings returns bookings across the vendor's properties.
func ListVendorBookings(ctx context.Context, db shared_models.DBTX, propertyIDs []uuid.UUID, status string, page, limit int) ([]Booking, int, error) {
	return listBookings(ctx, db, `property_id = ANY($1)`, []any{propertyIDs}, status, "created_at DESC", page, limit)
}

// ListVendorActive returns in-flight bookings across the vendor's properties.
func ListVendorActive(ctx context.Context, db shared_models.DBTX, propertyIDs []uuid.UUID, page, limit int) ([]Booking, int, error) {
	return listBookings(ctx, db,
		`property_id = ANY($1) AND status = ANY($2)`,
		[]any{propertyIDs, activeStatuses()},
		"", "check_in ASC", page, limit)
}

// ListVendorHistory returns terminal bookings across the vendor's properties.
func ListVendorHistory(ctx context.Context, db shared_models.DBTX, propertyIDs []uuid.UUID, status string, page, limit int) ([]Booking, int, error) {
	if status != "" {
		return listBookings(ctx, db, `property_id = ANY($1)`, []any{propertyIDs}, status, "check_out DESC", page, limit)
	}
	return listBookings(ctx, db,
		`property_id = ANY($1) AND status = ANY($2)`,
		[]any{propertyIDs, []string{shared_models.BookingStatusCompleted, shared_models.BookingStatusCancelled}},
		"", "check_out DESC", page, limit)
}

// ListVendorToday returns confirmed or paid bookings checking in today.
func ListVendorToday(ctx context.Context, db shared_models.DBTX, propertyIDs []uuid.UUID) ([]Booking, error) {
	today := time.Now().Truncate(24 * time.Hour)
	tomorrow := today.Add(24 * time.Hour)

	rows, err := db.Query(ctx, `
		SELECT `+bookingColumns+`
		FROM bookings
		WHERE property_id = ANY($1)
		  AND check_in >= $2 AND check_in < $3
		  AND status = ANY($4)
		ORDER BY check_in ASC`,
		propertyIDs, today, tomorrow,
		[]string{shared_models.BookingStatusConfirmed, shared_models.BookingStatusPaid})
	if err != nil {
		logger.ErrorLogger.Errorf("Failed to fetch today's bookings: %v", err)
		return nil, fmt.Errorf("failed to fetch bookings: %w", err)
	}
	defer rows.Close()
	return collectBookings(rows)
}

func listBookings(ctx context.Context, db shared_models.DBTX, where string, args []any, status, orderBy string, page, limit int) ([]Booking, int, error) {
	if orderBy == "" {
		orderBy = "created_at DESC"
	}
	if status != "" {
		where += fmt.Sprintf(" AND status = $%d", len(args)+1)
		args = append(args, status)
	}

	var total int
	err := db.QueryRow(ctx, `SELECT COUNT(*) FROM bookings WHERE `+where, args...).Scan(&total)
	if err != nil {
		logger.ErrorLogger.Errorf("Failed to count bookings: %v", err)
		return nil, 0, fmt.Errorf("failed to count bookings: %w", err)
	}

	offset := (page - 1) * limit
	query := fmt.Sprintf(`SELECT %s FROM bookings WHERE %s ORDER BY %s LIMIT $%d OFFSET $%d`,
		bookingColumns, where, orderBy, len(args)+1, len(args)+2)
	args = append(args, limit, offset)

	rows, err := db.Query(ctx, query, args...)
	if err != nil {
		logger.ErrorLogger.Errorf("Failed to fetch bookings: %v", err)
		return nil, 0, fmt.Errorf("failed to fetch bookings: %w", err)
	}
	defer rows.Close()

	bookings, err := collectBookings(rows)
	if err != nil {
		return nil, 0, err
	}
	return bookings, total, nil
}

func collectBookings(rows pgx.Rows) ([]Booking, error) {
	var bookings []Booking
	for rows.Next() {
		b, err := scanBooking(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan booking: %w", err)
		}
		bookings = append(bookings, *b)
	}
	return bookings, rows.Err()
}
