package notifications

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/stayvia/booking/clients"
	"github.com/stayvia/booking/logger"
	"github.com/stayvia/booking/models/booking_models"
	"github.com/stayvia/booking/models/property_models"
	"github.com/stayvia/booking/models/shared_models"
	"github.com/stayvia/booking/models/user_models"
	"github.com/stayvia/booking/utils/mail"
)

// Mailer abstracts the lifecycle emails so controller tests can run with a
// fake instead of a live SMTP dialer.
type Mailer interface {
	SendBookingRequested(email string, data mail.BookingEmailData) error
	SendBookingConfirmed(email string, data mail.BookingEmailData) error
	SendBookingDeclined(email string, data mail.BookingEmailData) error
	SendBookingCancelled(email string, data mail.BookingEmailData) error
	SendPaymentReceipt(email string, data mail.BookingEmailData) error
	SendVendorNewBooking(email string, data mail.BookingEmailData) error
}

// SMTPMailer is the production Mailer backed by utils/mail.
type SMTPMailer struct{}

func (SMTPMailer) SendBookingRequested(email string, data mail.BookingEmailData) error {
	return mail.SendBookingRequested(email, data)
}
func (SMTPMailer) SendBookingConfirmed(email string, data mail.BookingEmailData) error {
	return mail.SendBookingConfirmed(email, data)
}
func (SMTPMailer) SendBookingDeclined(email string, data mail.BookingEmailData) error {
	return mail.SendBookingDeclined(email, data)
}
func (SMTPMailer) SendBookingCancelled(email string, data mail.BookingEmailData) error {
	return mail.SendBookingCancelled(email, data)
}
func (SMTPMailer) SendPaymentReceipt(email string, data mail.BookingEmailData) error {
	return mail.SendPaymentReceipt(email, data)
}
func (SMTPMailer) SendVendorNewBooking(email string, data mail.BookingEmailData) error {
	return mail.SendVendorNewBooking(email, data)
}

// Dispatcher fans booking lifecycle events out to push and email. Every
// delivery is fire-and-forget: failures are logged and never surface to the
// request that triggered them.
type Dispatcher struct {
	DB     shared_models.DBTX
	Push   clients.PushSender
	Mailer Mailer

	// sendTimeout bounds each background delivery.
	sendTimeout time.Duration
}

func NewDispatcher(db shared_models.DBTX, push clients.PushSender, mailer Mailer) *Dispatcher {
	return &Dispatcher{DB: db, Push: push, Mailer: mailer, sendTimeout: 15 * time.Second}
}

func (d *Dispatcher) emailData(b *booking_models.Booking, room *property_models.Room, property *property_models.Property, reference string) mail.BookingEmailData {
	return mail.BookingEmailData{
		GuestName:    b.GuestName,
		PropertyName: property.Name,
		RoomName:     room.Name,
		CheckIn:      b.CheckIn.Format("Mon, 02 Jan 2006"),
		CheckOut:     b.CheckOut.Format("Mon, 02 Jan 2006"),
		Nights:       b.Nights,
		Total:        b.Total,
		Reference:    reference,
	}
}

// dispatch runs fn in the background with a bounded context.
func (d *Dispatcher) dispatch(what string, fn func(ctx context.Context) error) {
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), d.sendTimeout)
		defer cancel()
		if err := fn(ctx); err != nil {
			logger.WarnLogger.Warnf("Notification %s failed: %v", what, err)
		}
	}()
}

func (d *Dispatcher) pushToUser(ctx context.Context, userID uuid.UUID, title, body string, data map[string]string) error {
	user, err := user_models.GetUserByID(ctx, d.DB, userID)
	if err != nil {
		return err
	}
	if user.PushToken == nil || *user.PushToken == "" {
		logger.InfoLogger.Infof("User %s has no push token, skipping push", user.ID)
		return nil
	}
	return d.Push.Send(ctx, *user.PushToken, title, body, data)
}

// BookingRequested notifies the guest (receipt of request) and the vendor
// (new request to review).
func (d *Dispatcher) BookingRequested(b *booking_models.Booking, room *property_models.Room, property *property_models.Property) {
	data := d.emailData(b, room, property, "")
	bookingID := b.ID.String()
	userID := b.UserID
	vendorID := property.VendorID
	guestEmail := b.GuestEmail

	d.dispatch("booking_requested push (guest)", func(ctx context.Context) error {
		return d.pushToUser(ctx, userID, "Booking request sent",
			"We sent your request to "+property.Name, map[string]string{"booking_id": bookingID})
	})
	d.dispatch("booking_requested email (guest)", func(ctx context.Context) error {
		return d.Mailer.SendBookingRequested(guestEmail, data)
	})
	d.dispatch("booking_requested push (vendor)", func(ctx context.Context) error {
		vendor, err := property_models.GetVendorByID(ctx, d.DB, vendorID)
		if err != nil {
			return err
		}
		if vendor.PushToken != nil && *vendor.PushToken != "" {
			if err := d.Push.Send(ctx, *vendor.PushToken, "New booking request",
				b.GuestName+" requested "+room.Name, map[string]string{"booking_id": bookingID}); err != nil {
				return err
			}
		}
		return d.Mailer.SendVendorNewBooking(vendor.Email, data)
	})
}

// BookingDecided notifies the guest of an accept or decline.
func (d *Dispatcher) BookingDecided(b *booking_models.Booking, room *property_models.Room, property *property_models.Property, accepted bool) {
	data := d.emailData(b, room, property, "")
	bookingID := b.ID.String()
	userID := b.UserID
	guestEmail := b.GuestEmail

	title, body := "Booking confirmed", "Your stay at "+property.Name+" is confirmed. Complete payment to secure it."
	if !accepted {
		title, body = "Booking declined", "The host could not accommodate your request for "+property.Name+"."
	}

	d.dispatch("booking_decided push", func(ctx context.Context) error {
		return d.pushToUser(ctx, userID, title, body, map[string]string{"booking_id": bookingID})
	})
	d.dispatch("booking_decided email", func(ctx context.Context) error {
		if accepted {
			return d.Mailer.SendBookingConfirmed(guestEmail, data)
		}
		return d.Mailer.SendBookingDeclined(guestEmail, data)
	})
}

// PaymentSucceeded sends the guest a receipt and alerts the vendor.
func (d *Dispatcher) PaymentSucceeded(b *booking_models.Booking, room *property_models.Room, property *property_models.Property, reference string) {
	data := d.emailData(b, room, property, reference)
	bookingID := b.ID.String()
	userID := b.UserID
	vendorID := property.VendorID
	guestEmail := b.GuestEmail

	d.dispatch("payment_success push (guest)", func(ctx context.Context) error {
		return d.pushToUser(ctx, userID, "Payment received",
			"Your booking at "+property.Name+" is paid.", map[string]string{"booking_id": bookingID})
	})
	d.dispatch("payment_success email (guest)", func(ctx context.Context) error {
		return d.Mailer.SendPaymentReceipt(guestEmail, data)
	})
	d.dispatch("payment_success push (vendor)", func(ctx context.Context) error {
		vendor, err := property_models.GetVendorByID(ctx, d.DB, vendorID)
		if err != nil {
			return err
		}
		if vendor.PushToken == nil || *vendor.PushToken == "" {
			return nil
		}
		return d.Push.Send(ctx, *vendor.PushToken, "Booking paid",
			b.GuestName+" paid for "+room.Name, map[string]string{"booking_id": bookingID})
	})
}

// BookingCancelled notifies the counterparty of a cancellation.
func (d *Dispatcher) BookingCancelled(b *booking_models.Booking, room *property_models.Room, property *property_models.Property, byVendor bool) {
	data := d.emailData(b, room, property, "")
	bookingID := b.ID.String()
	userID := b.UserID
	vendorID := property.VendorID
	guestEmail := b.GuestEmail

	d.dispatch("booking_cancelled email (guest)", func(ctx context.Context) error {
		return d.Mailer.SendBookingCancelled(guestEmail, data)
	})

	if byVendor {
		d.dispatch("booking_cancelled push (guest)", func(ctx context.Context) error {
			return d.pushToUser(ctx, userID, "Booking cancelled",
				"The host cancelled your booking at "+property.Name+".", map[string]string{"booking_id": bookingID})
		})
		return
	}

	d.dispatch("booking_cancelled push (vendor)", func(ctx context.Context) error {
		vendor, err := property_models.GetVendorByID(ctx, d.DB, vendorID)
		if err != nil {
			return err
		}
		if vendor.PushToken == nil || *vendor.PushToken == "" {
			return nil
		}
		return d.Push.Send(ctx, *vendor.PushToken, "Booking cancelled",
			b.GuestName+" cancelled their booking for "+room.Name, map[string]string{"booking_id": bookingID})
	})
}
