package notifications

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"

	"github.com/stayvia/booking/models/booking_models"
	"github.com/stayvia/booking/models/property_models"
	"github.com/stayvia/booking/utils/mail"
)

// emptyDB satisfies shared_models.DBTX and answers every lookup with no
// rows, exercising the dispatcher's failure-swallowing paths.
type emptyDB struct{}

type errRow struct{ err error }

func (r errRow) Scan(dest ...any) error { return r.err }

func (emptyDB) Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error) {
	return pgconn.CommandTag{}, nil
}

func (emptyDB) Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error) {
	return nil, pgx.ErrNoRows
}

func (emptyDB) QueryRow(ctx context.Context, sql string, args ...any) pgx.Row {
	return errRow{pgx.ErrNoRows}
}

type recordingMailer struct {
	mu    sync.Mutex
	calls []string
	last  mail.BookingEmailData
	err   error
}

func (m *recordingMailer) record(name string, data mail.BookingEmailData) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls = append(m.calls, name)
	m.last = data
	return m.err
}

func (m *recordingMailer) callCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.calls)
}

func (m *recordingMailer) SendBookingRequested(email string, d mail.BookingEmailData) error {
	return m.record("requested", d)
}
func (m *recordingMailer) SendBookingConfirmed(email string, d mail.BookingEmailData) error {
	return m.record("confirmed", d)
}
func (m *recordingMailer) SendBookingDeclined(email string, d mail.BookingEmailData) error {
	return m.record("declined", d)
}
func (m *recordingMailer) SendBookingCancelled(email string, d mail.BookingEmailData) error {
	return m.record("cancelled", d)
}
func (m *recordingMailer) SendPaymentReceipt(email string, d mail.BookingEmailData) error {
	return m.record("receipt", d)
}
func (m *recordingMailer) SendVendorNewBooking(email string, d mail.BookingEmailData) error {
	return m.record("vendor_new", d)
}

type noopPush struct{}

func (noopPush) Send(ctx context.Context, token, title, body string, data map[string]string) error {
	return nil
}

func fixtures() (*booking_models.Booking, *property_models.Room, *property_models.Property) {
	booking := &booking_models.Booking{
		ID:         uuid.New(),
		UserID:     uuid.New(),
		GuestName:  "Ada",
		GuestEmail: "ada@example.com",
		CheckIn:    time.Date(2025, 6, 1, 14, 0, 0, 0, time.UTC),
		CheckOut:   time.Date(2025, 6, 4, 11, 0, 0, 0, time.UTC),
		Nights:     3,
		Total:      1270,
	}
	room := &property_models.Room{ID: uuid.New(), Name: "Deluxe Suite"}
	property := &property_models.Property{ID: uuid.New(), VendorID: uuid.New(), Name: "Seaside Villa"}
	return booking, room, property
}

func TestPaymentSucceededEmailsReceipt(t *testing.T) {
	mailer := &recordingMailer{}
	d := NewDispatcher(emptyDB{}, noopPush{}, mailer)

	booking, room, property := fixtures()
	d.PaymentSucceeded(booking, room, property, "PAY_AB12CD34")

	assert.Eventually(t, func() bool { return mailer.callCount() >= 1 }, time.Second, 10*time.Millisecond)

	mailer.mu.Lock()
	defer mailer.mu.Unlock()
	assert.Contains(t, mailer.calls, "receipt")
	assert.Equal(t, "PAY_AB12CD34", mailer.last.Reference)
	assert.Equal(t, "Seaside Villa", mailer.last.PropertyName)
	assert.Equal(t, 1270.0, mailer.last.Total)
}

func TestBookingDecidedPicksEmailByOutcome(t *testing.T) {
	mailer := &recordingMailer{}
	d := NewDispatcher(emptyDB{}, noopPush{}, mailer)
	booking, room, property := fixtures()

	d.BookingDecided(booking, room, property, true)
	assert.Eventually(t, func() bool { return mailer.callCount() >= 1 }, time.Second, 10*time.Millisecond)

	mailer.mu.Lock()
	assert.Contains(t, mailer.calls, "confirmed")
	assert.NotContains(t, mailer.calls, "declined")
	mailer.mu.Unlock()

	declinedMailer := &recordingMailer{}
	d2 := NewDispatcher(emptyDB{}, noopPush{}, declinedMailer)
	d2.BookingDecided(booking, room, property, false)
	assert.Eventually(t, func() bool { return declinedMailer.callCount() >= 1 }, time.Second, 10*time.Millisecond)

	declinedMailer.mu.Lock()
	assert.Contains(t, declinedMailer.calls, "declined")
	declinedMailer.mu.Unlock()
}

func TestDeliveryFailuresDoNotPropagate(t *testing.T) {
	// Every email errors and every user lookup misses; dispatch must log
	// and carry on without panicking the process.
	mailer := &recordingMailer{err: errors.New("smtp down")}
	d := NewDispatcher(emptyDB{}, noopPush{}, mailer)
	booking, room, property := fixtures()

	assert.NotPanics(t, func() {
		d.BookingRequested(booking, room, property)
		d.BookingCancelled(booking, room, property, true)
	})

	assert.Eventually(t, func() bool { return mailer.callCount() >= 2 }, time.Second, 10*time.Millisecond)
}
