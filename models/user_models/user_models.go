package user_models

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

// User is a guest account. Vendors live in their own table since they carry
// payout state; see property_models.Vendor.
type User struct {
	ID           uuid.UUID `json:"id"`
	Email        string    `json:"email"`
	Name         string    `json:"name"`
	Phone        *string   `json:"phone,omitempty"`
	PasswordHash string    `json:"-"`
	PushToken    *string   `json:"-"`
	CreatedAt    time.Time `json:"created_at"`
}

func NewUser(email, name, passwordHash string) (*User, error) {
	id, err := uuid.NewV7()
	if err != nil {
		return nil, fmt.Errorf("failed to generate UUID for user: %w", err)
	}
	return &User{
		ID:           id,
		Email:        email,
		Name:         name,
		PasswordHash: passwordHash,
		CreatedAt:    time.Now(),
	}, nil
}

func CreateUser(ctx context.Context, db shared_models.DBTX, user *User) error {
	query := `
		INSERT INTO users (id, email, name, password_hash, created_at)
		VALUES ($1, $2, $3, $4, $5)`

	_, err := db.Exec(ctx, query, user.ID, user.Email, user.Name, user.PasswordHash, user.CreatedAt)
	if err != nil {
		logger.ErrorLogger.Errorf("Failed to insert user %s: %v", user.Email, err)
		return fmt.Errorf("failed to create user: %w", err)
	}
	return nil
}

func GetUserByID(ctx context.Context, db shared_models.DBTX, userID uuid.UUID) (*User, error) {
	user := &User{}
	query := `
		SELECT id, email, name, phone, password_hash, push_token, created_at
		FROM users
		WHERE id = $1`

	err := db.QueryRow(ctx, query, userID).Scan(
		&user.ID, &user.Email, &user.Name, &user.Phone,
		&user.PasswordHash, &user.PushToken, &user.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, utils.NotFound("User not found")
		}
		logger.ErrorLogger.Errorf("Failed to fetch user %s: %v", userID, err)
		return nil, fmt.Errorf("database error fetching user: %w", err)
	}
	return user, nil
}

func GetUserByEmail(ctx context.Context, db shared_models.DBTX, email string) (*User, error) {
	user := &User{}
	query := `
		SELECT id, email, name, phone, password_hash, push_token, created_at
		FROM users
		WHERE lower(email) = lower($1)`

	err := db.QueryRow(ctx, query, email).Scan(
		&user.ID, &user.Email, &user.Name, &user.Phone,
		&user.PasswordHash, &user.PushToken, &user.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, utils.NotFound("User not found")
		}
		logger.ErrorLogger.Errorf("Failed to fetch user by email: %v", err)
		return nil, fmt.Errorf("database error fetching user: %w", err)
	}
	return user, nil
}

// SavePushToken stores the push token used by the notification dispatcher.
func SavePushToken(ctx context.Context, db shared_models.DBTX, userID uuid.UUID, token string) error {
	cmdTag, err := db.Exec(ctx, `UPDATE users SET push_token = $2 WHERE id = $1`, userID, token)
	if err != nil {
		logger.ErrorLogger.Errorf("Failed to save push token for user %s: %v", userID, err)
		return fmt.Errorf("failed to save push token: %w", err)
	}
	if cmdTag.RowsAffected() == 0 {
		return utils.NotFound("User not found")
	}
	return nil
}
