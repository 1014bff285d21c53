package payment_models

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stayvia/booking/models/shared_models"
)

// scriptedDB satisfies shared_models.DBTX and answers Exec with a scripted
// sequence of command tags, recording each statement's arguments. It stands
// in for the database row guard: "UPDATE 1" means the guard matched,
// "UPDATE 0" means it did not.
type scriptedDB struct {
	tags []pgconn.CommandTag
	args [][]any
}

func (d *scriptedDB) Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error) {
	d.args = append(d.args, arguments)
	tag := d.tags[0]
	if len(d.tags) > 1 {
		d.tags = d.tags[1:]
	}
	return tag, nil
}

func (d *scriptedDB) Query(ctx context.Context, sql string, arguments ...any) (pgx.Rows, error) {
	return nil, pgx.ErrNoRows
}

type noRow struct{}

func (noRow) Scan(dest ...any) error { return pgx.ErrNoRows }

func (d *scriptedDB) QueryRow(ctx context.Context, sql string, arguments ...any) pgx.Row {
	return noRow{}
}

var _ shared_models.DBTX = (*scriptedDB)(nil)

func TestMarkSuccessRedeliveryIsNoOp(t *testing.T) {
	// First delivery flips the PENDING row; the redelivered event matches
	// zero rows and must report not-applied without an error.
	db := &scriptedDB{tags: []pgconn.CommandTag{
		pgconn.NewCommandTag("UPDATE 1"),
		pgconn.NewCommandTag("UPDATE 0"),
	}}
	paymentID := uuid.New()
	event := []byte(`{"type":"PAYMENT_SUCCESS"}`)

	applied, err := MarkSuccess(context.Background(), db, paymentID, event)
	require.NoError(t, err)
	assert.True(t, applied)

	applied, err = MarkSuccess(context.Background(), db, paymentID, event)
	require.NoError(t, err)
	assert.False(t, applied)
	assert.Len(t, db.args, 2)
}

func TestMarkSuccessGuardsOnPendingStatus(t *testing.T) {
	db := &scriptedDB{tags: []pgconn.CommandTag{pgconn.NewCommandTag("UPDATE 1")}}

	_, err := MarkSuccess(context.Background(), db, uuid.New(), []byte(`{}`))
	require.NoError(t, err)

	require.Len(t, db.args, 1)
	assert.Contains(t, db.args[0], shared_models.PaymentStatusSuccess)
	assert.Contains(t, db.args[0], shared_models.PaymentStatusPending)
}

func TestMarkFailedOnlyMovesPendingRows(t *testing.T) {
	db := &scriptedDB{tags: []pgconn.CommandTag{pgconn.NewCommandTag("UPDATE 0")}}

	// A payment already settled by a webhook matches zero rows; the failure
	// mark must not surface an error for that.
	require.NoError(t, MarkFailed(context.Background(), db, uuid.New()))

	require.Len(t, db.args, 1)
	assert.Contains(t, db.args[0], shared_models.PaymentStatusFailed)
	assert.Contains(t, db.args[0], shared_models.PaymentStatusPending)
}
