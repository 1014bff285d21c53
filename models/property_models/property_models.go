package property_models

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/stayvia/booking/logger"
	"github.com/stayvia/booking/models/shared_models"
	"github.com/stayvia/booking/utils"
)

// The booking core only needs a narrow view of properties, rooms and
// vendors: pricing inputs, availability, ownership and payout state.
// Listing CRUD and search live elsewhere.

type Room struct {
	ID         uuid.UUID `json:"id"`
	PropertyID uuid.UUID `json:"property_id"`
	Name       string    `json:"name"`
	Type       string    `json:"type"`
	Price      float64   `json:"price"`
	PriceNote  *string   `json:"price_note,omitempty"`
	Available  bool      `json:"available"`
}

type Property struct {
	ID       uuid.UUID `json:"id"`
	VendorID uuid.UUID `json:"vendor_id"`
	Name     string    `json:"name"`
}

type Vendor struct {
	ID              uuid.UUID `json:"id"`
	Email           string    `json:"email"`
	BusinessName    string    `json:"business_name"`
	PasswordHash    string    `json:"-"`
	PushToken       *string   `json:"-"`
	PayoutAccountID *string   `json:"-"`
	PayoutOnboarded bool      `json:"-"`
}

// GetRoomWithProperty fetches a room and its owning property in one query.
func GetRoomWithProperty(ctx context.Context, db shared_models.DBTX, roomID uuid.UUID) (*Room, *Property, error) {
	room := &Room{}
	property := &Property{}
	query := `
		SELECT r.id, r.property_id, r.name, r.type, r.price, r.price_note, r.available,
		       p.id, p.vendor_id, p.name
		FROM rooms r
		JOIN properties p ON p.id = r.property_id
		WHERE r.id = $1`

	err := db.QueryRow(ctx, query, roomID).Scan(
		&room.ID, &room.PropertyID, &room.Name, &room.Type, &room.Price, &room.PriceNote, &room.Available,
		&property.ID, &property.VendorID, &property.Name,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil, utils.NotFound("Room not found")
		}
		logger.ErrorLogger.Errorf("Failed to fetch room %s: %v", roomID, err)
		return nil, nil, fmt.Errorf("database error fetching room: %w", err)
	}
	return room, property, nil
}

func GetRoomByID(ctx context.Context, db shared_models.DBTX, roomID uuid.UUID) (*Room, error) {
	room := &Room{}
	query := `
		SELECT id, property_id, name, type, price, price_note, available
		FROM rooms
		WHERE id = $1`

	err := db.QueryRow(ctx, query, roomID).Scan(
		&room.ID, &room.PropertyID, &room.Name, &room.Type, &room.Price, &room.PriceNote, &room.Available,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, utils.NotFound("Room not found")
		}
		logger.ErrorLogger.Errorf("Failed to fetch room %s: %v", roomID, err)
		return nil, fmt.Errorf("database error fetching room: %w", err)
	}
	return room, nil
}

func GetPropertyByID(ctx context.Context, db shared_models.DBTX, propertyID uuid.UUID) (*Property, error) {
	property := &Property{}
	query := `SELECT id, vendor_id, name FROM properties WHERE id = $1`

	err := db.QueryRow(ctx, query, propertyID).Scan(&property.ID, &property.VendorID, &property.Name)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, utils.NotFound("Property not found")
		}
		logger.ErrorLogger.Errorf("Failed to fetch property %s: %v", propertyID, err)
		return nil, fmt.Errorf("database error fetching property: %w", err)
	}
	return property, nil
}

func GetVendorByID(ctx context.Context, db shared_models.DBTX, vendorID uuid.UUID) (*Vendor, error) {
	vendor := &Vendor{}
	query := `
		SELECT id, email, business_name, password_hash, push_token, payout_account_id, payout_onboarded
		FROM vendors
		WHERE id = $1`

	err := db.QueryRow(ctx, query, vendorID).Scan(
		&vendor.ID, &vendor.Email, &vendor.BusinessName, &vendor.PasswordHash,
		&vendor.PushToken, &vendor.PayoutAccountID, &vendor.PayoutOnboarded,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, utils.NotFound("Vendor not found")
		}
		logger.ErrorLogger.Errorf("Failed to fetch vendor %s: %v", vendorID, err)
		return nil, fmt.Errorf("database error fetching vendor: %w", err)
	}
	return vendor, nil
}

// VendorPropertyIDs returns the ids of every property owned by a vendor,
// used to scope vendor booking queries.
func VendorPropertyIDs(ctx context.Context, db shared_models.DBTX, vendorID uuid.UUID) ([]uuid.UUID, error) {
	rows, err := db.Query(ctx, `SELECT id FROM properties WHERE vendor_id = $1`, vendorID)
	if err != nil {
		logger.ErrorLogger.Errorf("Failed to fetch properties for vendor %s: %v", vendorID, err)
		return nil, fmt.Errorf("failed to fetch vendor properties: %w", err)
	}
	defer rows.Close()

	var ids []uuid.UUID
	for rows.Next() {
		var id uuid.UUID
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan property id: %w", err)
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// SaveVendorPushToken stores the vendor push token for notifications.
func SaveVendorPushToken(ctx context.Context, db shared_models.DBTX, vendorID uuid.UUID, token string) error {
	cmdTag, err := db.Exec(ctx, `UPDATE vendors SET push_token = $2 WHERE id = $1`, vendorID, token)
	if err != nil {
		logger.ErrorLogger.Errorf("Failed to save push token for vendor %s: %v", vendorID, err)
		return fmt.Errorf("failed to save push token: %w", err)
	}
	if cmdTag.RowsAffected() == 0 {
		return utils.NotFound("Vendor not found")
	}
	return nil
}
