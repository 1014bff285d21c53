package wallet_models

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stayvia/booking/models/shared_models"
	"github.com/stayvia/booking/utils"
)

// walletRow scans like the wallets upsert (RETURNING id, user_id, balance,
// created_at) or the credit UPDATE (RETURNING balance), depending on how
// many destinations the caller passes.
type walletRow struct {
	id      uuid.UUID
	userID  uuid.UUID
	balance float64
}

func (r walletRow) Scan(dest ...any) error {
	if len(dest) == 1 {
		*dest[0].(*float64) = r.balance
		return nil
	}
	*dest[0].(*uuid.UUID) = r.id
	*dest[1].(*uuid.UUID) = r.userID
	*dest[2].(*float64) = r.balance
	*dest[3].(*time.Time) = time.Now()
	return nil
}

// fakeWalletDB serves one wallet row and answers Exec with scripted command
// tags, recording each statement so tests can assert what was (not) written.
type fakeWalletDB struct {
	row  walletRow
	tags []pgconn.CommandTag
	sql  []string
}

func (d *fakeWalletDB) Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error) {
	d.sql = append(d.sql, sql)
	tag := d.tags[0]
	if len(d.tags) > 1 {
		d.tags = d.tags[1:]
	}
	return tag, nil
}

func (d *fakeWalletDB) Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error) {
	return nil, pgx.ErrNoRows
}

func (d *fakeWalletDB) QueryRow(ctx context.Context, sql string, args ...any) pgx.Row {
	return d.row
}

var _ shared_models.DBTX = (*fakeWalletDB)(nil)

func newFakeWalletDB(balance float64, tags ...string) *fakeWalletDB {
	db := &fakeWalletDB{row: walletRow{id: uuid.New(), userID: uuid.New(), balance: balance}}
	for _, tag := range tags {
		db.tags = append(db.tags, pgconn.NewCommandTag(tag))
	}
	return db
}

func appErrCode(t *testing.T, err error) string {
	t.Helper()
	var appErr *utils.AppError
	require.True(t, errors.As(err, &appErr), "expected AppError, got %v", err)
	return appErr.Code
}

func TestGetOrCreateWalletReturnsUpsertedRow(t *testing.T) {
	db := newFakeWalletDB(350)

	wallet, err := GetOrCreateWallet(context.Background(), db, db.row.userID)
	require.NoError(t, err)
	assert.Equal(t, db.row.id, wallet.ID)
	assert.Equal(t, db.row.userID, wallet.UserID)
	assert.Equal(t, 350.0, wallet.Balance)
}

func TestDebitTxInsufficientBalanceLeavesNoTrace(t *testing.T) {
	// The balance guard lives in the UPDATE's WHERE clause; zero rows means
	// the debit must fail as a business error with no ledger entry written.
	db := newFakeWalletDB(100, "UPDATE 0")

	wallet, err := DebitTx(context.Background(), db, db.row.userID, 250, "Booking payment", "PAY_AB12CD34")
	assert.Nil(t, wallet)
	assert.Equal(t, utils.CodeInsufficientBalance, appErrCode(t, err))

	require.Len(t, db.sql, 1)
	assert.Contains(t, db.sql[0], "balance >= $1")
}

func TestDebitTxAppendsLedgerEntry(t *testing.T) {
	db := newFakeWalletDB(500, "UPDATE 1", "INSERT 0 1")

	wallet, err := DebitTx(context.Background(), db, db.row.userID, 200, "Booking payment", "PAY_AB12CD34")
	require.NoError(t, err)
	assert.Equal(t, 300.0, wallet.Balance)

	require.Len(t, db.sql, 2)
	assert.Contains(t, db.sql[1], "INSERT INTO transactions")
}

func TestDebitTxRejectsNonPositiveAmount(t *testing.T) {
	// A fully discounted booking settles without touching the wallet;
	// anything that still asks for a zero or negative debit is a caller bug
	// and must surface as a 400, not a 500.
	db := newFakeWalletDB(500)

	for _, amount := range []float64{0, -50} {
		wallet, err := DebitTx(context.Background(), db, db.row.userID, amount, "Booking payment", "PAY_AB12CD34")
		assert.Nil(t, wallet)
		assert.Equal(t, utils.CodeInvalidAmount, appErrCode(t, err))
	}
	assert.Empty(t, db.sql, "the database must not be touched")
}

func TestCreditTxRejectsNonPositiveAmount(t *testing.T) {
	db := newFakeWalletDB(500)

	wallet, err := CreditTx(context.Background(), db, db.row.userID, 0, "Wallet top-up", nil)
	assert.Nil(t, wallet)
	assert.Equal(t, utils.CodeInvalidAmount, appErrCode(t, err))
	assert.Empty(t, db.sql)
}

func TestCreditTxAppendsLedgerEntry(t *testing.T) {
	db := newFakeWalletDB(500, "INSERT 0 1")

	wallet, err := CreditTx(context.Background(), db, db.row.userID, 150, "Wallet top-up", nil)
	require.NoError(t, err)
	// The fake's RETURNING balance echoes the stored row; what matters here
	// is that exactly one CREDIT ledger entry was appended.
	require.Len(t, db.sql, 1)
	assert.True(t, strings.Contains(db.sql[0], "INSERT INTO transactions"))
	assert.Equal(t, db.row.id, wallet.ID)
}
