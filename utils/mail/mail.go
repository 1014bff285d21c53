package mail

import (
	"bytes"
	"crypto/tls"
	"fmt"
	"html/template"
	"io/fs"
	"os"
	"strconv"
	"time"

	gomail "gopkg.in/gomail.v2"

	"github.com/stayvia/booking/logger"
)

// templatesFS is set at startup from the binary's embedded templates; when
// unset the templates are read from disk, which keeps tests simple.
var templatesFS fs.FS

// InitTemplates points the mailer at the embedded template filesystem.
func InitTemplates(f fs.FS) {
	templatesFS = f
}

func parseTemplate(path string) (*template.Template, error) {
	if templatesFS != nil {
		return template.ParseFS(templatesFS, path)
	}
	return template.ParseFiles(path)
}

// Email template paths
const (
	bookingRequestedTemplate = "templates/email/booking_requested.html"
	bookingConfirmedTemplate = "templates/email/booking_confirmed.html"
	bookingDeclinedTemplate  = "templates/email/booking_declined.html"
	bookingCancelledTemplate = "templates/email/booking_cancelled.html"
	paymentReceiptTemplate   = "templates/email/payment_receipt.html"
	vendorNewBookingTemplate = "templates/email/vendor_new_booking.html"
)

// --- Helper function to send email using gomail ---
func sendEmail(toEmail, subject, templatePath string, data interface{}) error {
	mailer := gomail.NewMessage()
	mailer.SetHeader("From", os.Getenv("FROM_EMAIL"))
	mailer.SetHeader("To", toEmail)
	mailer.SetHeader("Subject", subject)

	t, err := parseTemplate(templatePath)
	if err != nil {
		logger.ErrorLogger.Errorf("Failed to parse email template %s: %v", templatePath, err)
		return fmt.Errorf("failed to parse email template: %w", err)
	}

	var body bytes.Buffer
	if err := t.Execute(&body, data); err != nil {
		logger.ErrorLogger.Errorf("Failed to execute email template %s: %v", templatePath, err)
		return fmt.Errorf("failed to execute email template: %w", err)
	}

	mailer.SetBody("text/html", body.String())

	port, err := strconv.Atoi(os.Getenv("SMTP_PORT"))
	if err != nil {
		logger.ErrorLogger.Errorf("Invalid SMTP port: %v", err)
		return fmt.Errorf("invalid SMTP port: %w", err)
	}

	smtpHost := os.Getenv("SMTP_HOST")
	dialer := gomail.NewDialer(smtpHost, port, os.Getenv("SMTP_USERNAME"), os.Getenv("SMTP_PASSWORD"))
	dialer.TLSConfig = &tls.Config{
		InsecureSkipVerify: false,
		ServerName:         smtpHost,
	}

	if err := dialer.DialAndSend(mailer); err != nil {
		logger.ErrorLogger.Errorf("Failed to send email to %s: %v", toEmail, err)
		return fmt.Errorf("failed to send email: %w", err)
	}

	logger.InfoLogger.Printf("Email sent to %s", toEmail)
	return nil
}

// BookingEmailData carries the fields the booking lifecycle templates render.
type BookingEmailData struct {
	GuestName    string
	PropertyName string
	RoomName     string
	CheckIn      string
	CheckOut     string
	Nights       int
	Total        float64
	Reference    string
	Year         int
}

func (d BookingEmailData) withYear() BookingEmailData {
	d.Year = time.Now().Year()
	return d
}

// SendBookingRequested confirms receipt of a new booking request.
func SendBookingRequested(email string, data BookingEmailData) error {
	logger.InfoLogger.Infof("Sending booking requested email to %s", email)
	return sendEmail(email, "We received your booking request", bookingRequestedTemplate, data.withYear())
}

// SendBookingConfirmed tells the guest the host accepted.
func SendBookingConfirmed(email string, data BookingEmailData) error {
	logger.InfoLogger.Infof("Sending booking confirmed email to %s", email)
	return sendEmail(email, "Your booking is confirmed", bookingConfirmedTemplate, data.withYear())
}

// SendBookingDeclined tells the guest the host declined.
func SendBookingDeclined(email string, data BookingEmailData) error {
	logger.InfoLogger.Infof("Sending booking declined email to %s", email)
	return sendEmail(email, "Your booking request was declined", bookingDeclinedTemplate, data.withYear())
}

// SendBookingCancelled tells the guest the booking was cancelled.
func SendBookingCancelled(email string, data BookingEmailData) error {
	logger.InfoLogger.Infof("Sending booking cancelled email to %s", email)
	return sendEmail(email, "Your booking was cancelled", bookingCancelledTemplate, data.withYear())
}

// SendPaymentReceipt sends the guest a receipt after successful settlement.
func SendPaymentReceipt(email string, data BookingEmailData) error {
	logger.InfoLogger.Infof("Sending payment receipt to %s", email)
	return sendEmail(email, "Payment received", paymentReceiptTemplate, data.withYear())
}

// SendVendorNewBooking alerts the host about a fresh booking request.
func SendVendorNewBooking(email string, data BookingEmailData) error {
	logger.InfoLogger.Infof("Sending new booking alert to vendor %s", email)
	return sendEmail(email, "New booking request", vendorNewBookingTemplate, data.withYear())
}
