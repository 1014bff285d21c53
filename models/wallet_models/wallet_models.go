package wallet_models

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stayvia/booking/logger"
	"github.com/stayvia/booking/models/shared_models"
	"github.com/stayvia/booking/utils"
)

// Wallet is a per-user stored-value balance, created lazily on first access.
// The balance is only ever mutated together with an appended Transaction.
type Wallet struct {
	ID        uuid.UUID `json:"id"`
	UserID    uuid.UUID `json:"user_id"`
	Balance   float64   `json:"balance"`
	CreatedAt time.Time `json:"created_at"`
}

// Transaction is an immutable ledger entry. CREDITs minus DEBITs for a
// wallet must always equal its balance.
type Transaction struct {
	ID          uuid.UUID `json:"id"`
	WalletID    uuid.UUID `json:"wallet_id"`
	Type        string    `json:"type"`
	Amount      float64   `json:"amount"`
	Description string    `json:"description"`
	Reference   *string   `json:"reference,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}

// GetOrCreateWallet returns the user's wallet, creating an empty one if
// none exists. The upsert on the user_id unique constraint makes two
// concurrent first-time calls both land on the same row.
func GetOrCreateWallet(ctx context.Context, db shared_models.DBTX, userID uuid.UUID) (*Wallet, error) {
	id, err := uuid.NewV7()
	if err != nil {
		return nil, fmt.Errorf("failed to generate UUID for wallet: %w", err)
	}

	wallet := &Wallet{}
	query := `
		INSERT INTO wallets (id, user_id, balance, created_at)
		VALUES ($1, $2, 0, now())
		ON CONFLICT (user_id) DO UPDATE SET user_id = EXCLUDED.user_id
		RETURNING id, user_id, balance, created_at`

	err = db.QueryRow(ctx, query, id, userID).Scan(
		&wallet.ID, &wallet.UserID, &wallet.Balance, &wallet.CreatedAt,
	)
	if err != nil {
		logger.ErrorLogger.Errorf("Failed to get or create wallet for user %s: %v", userID, err)
		return nil, fmt.Errorf("failed to get or create wallet: %w", err)
	}
	return wallet, nil
}

// appendTransaction inserts a ledger row; callers run it inside the same
// transaction as the balance update.
func appendTransaction(ctx context.Context, tx shared_models.DBTX, walletID uuid.UUID, txType string, amount float64, description string, reference *string) error {
	id, err := uuid.NewV7()
	if err != nil {
		return fmt.Errorf("failed to generate UUID for transaction: %w", err)
	}

	_, err = tx.Exec(ctx, `
		INSERT INTO transactions (id, wallet_id, type, amount, description, reference, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, now())`,
		id, walletID, txType, amount, description, reference)
	if err != nil {
		return fmt.Errorf("failed to append transaction: %w", err)
	}
	return nil
}

// CreditTx adds amount to the wallet and appends the matching CREDIT entry.
// Must be called inside a transaction.
func CreditTx(ctx context.Context, tx shared_models.DBTX, userID uuid.UUID, amount float64, description string, reference *string) (*Wallet, error) {
	if amount <= 0 {
		return nil, utils.BadRequest(utils.CodeInvalidAmount, "Credit amount must be positive")
	}

	wallet, err := GetOrCreateWallet(ctx, tx, userID)
	if err != nil {
		return nil, err
	}

	err = tx.QueryRow(ctx, `
		UPDATE wallets SET balance = balance + $1 WHERE id = $2
		RETURNING balance`,
		amount, wallet.ID).Scan(&wallet.Balance)
	if err != nil {
		logger.ErrorLogger.Errorf("Failed to credit wallet %s: %v", wallet.ID, err)
		return nil, fmt.Errorf("failed to credit wallet: %w", err)
	}

	if err := appendTransaction(ctx, tx, wallet.ID, shared_models.TransactionCredit, amount, description, reference); err != nil {
		return nil, err
	}
	return wallet, nil
}

// DebitTx subtracts amount from the wallet and appends the matching DEBIT
// entry. The balance guard sits in the UPDATE itself, so two concurrent
// debits that would jointly overdraw cannot both succeed. Must be called
// inside a transaction.
func DebitTx(ctx context.Context, tx shared_models.DBTX, userID uuid.UUID, amount float64, description string, reference string) (*Wallet, error) {
	if amount <= 0 {
		return nil, utils.BadRequest(utils.CodeInvalidAmount, "Debit amount must be positive")
	}

	wallet, err := GetOrCreateWallet(ctx, tx, userID)
	if err != nil {
		return nil, err
	}

	cmdTag, err := tx.Exec(ctx, `
		UPDATE wallets SET balance = balance - $1
		WHERE id = $2 AND balance >= $1`,
		amount, wallet.ID)
	if err != nil {
		logger.ErrorLogger.Errorf("Failed to debit wallet %s: %v", wallet.ID, err)
		return nil, fmt.Errorf("failed to debit wallet: %w", err)
	}
	if cmdTag.RowsAffected() == 0 {
		return nil, utils.BadRequest(utils.CodeInsufficientBalance, "Insufficient wallet balance")
	}
	wallet.Balance -= amount

	if err := appendTransaction(ctx, tx, wallet.ID, shared_models.TransactionDebit, amount, description, &reference); err != nil {
		return nil, err
	}
	return wallet, nil
}

// Fund credits the wallet in its own transaction ("Wallet top-up").
func Fund(ctx context.Context, pool *pgxpool.Pool, userID uuid.UUID, amount float64) (*Wallet, error) {
	tx, err := pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	wallet, err := CreditTx(ctx, tx, userID, amount, "Wallet top-up", nil)
	if err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("failed to commit wallet funding: %w", err)
	}

	logger.InfoLogger.Infof("Wallet %s funded with %.2f", wallet.ID, amount)
	return wallet, nil
}

// ListTransactions returns the wallet's ledger entries, newest first.
func ListTransactions(ctx context.Context, db shared_models.DBTX, walletID uuid.UUID, page, limit int) ([]Transaction, int, error) {
	offset := (page - 1) * limit

	var total int
	err := db.QueryRow(ctx, `SELECT COUNT(*) FROM transactions WHERE wallet_id = $1`, walletID).Scan(&total)
	if err != nil {
		logger.ErrorLogger.Errorf("Failed to count transactions for wallet %s: %v", walletID, err)
		return nil, 0, fmt.Errorf("failed to count transactions: %w", err)
	}

	rows, err := db.Query(ctx, `
		SELECT id, wallet_id, type, amount, description, reference, created_at
		FROM transactions
		WHERE wallet_id = $1
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3`,
		walletID, limit, offset)
	if err != nil {
		logger.ErrorLogger.Errorf("Failed to fetch transactions for wallet %s: %v", walletID, err)
		return nil, 0, fmt.Errorf("failed to fetch transactions: %w", err)
	}
	defer rows.Close()

	var transactions []Transaction
	for rows.Next() {
		var t Transaction
		if err := rows.Scan(&t.ID, &t.WalletID, &t.Type, &t.Amount, &t.Description, &t.Reference, &t.CreatedAt); err != nil {
			return nil, 0, fmt.Errorf("failed to scan transaction: %w", err)
		}
		transactions = append(transactions, t)
	}
	return transactions, total, rows.Err()
}
