package shared_models

// Booking lifecycle statuses.
const (
	BookingStatusPending   = "PENDING"
	BookingStatusConfirmed = "CONFIRMED"
	BookingStatusPaid      = "PAID"
	BookingStatusCheckedIn = "CHECKED_IN"
	BookingStatusCompleted = "COMPLETED"
	BookingStatusCancelled = "CANCELLED"
)

// Payment statuses.
const (
	PaymentStatusPending = "PENDING"
	PaymentStatusSuccess = "SUCCESS"
	PaymentStatusFailed  = "FAILED"
)

// Payment methods. Gateway methods are provider names; WALLET settles
// synchronously against the user's stored balance.
const (
	PaymentMethodWallet   = "WALLET"
	PaymentMethodCheckout = "CHECKOUT"
	PaymentMethodRazorpay = "RAZORPAY"
)

// Wallet transaction types.
const (
	TransactionCredit = "CREDIT"
	TransactionDebit  = "DEBIT"
)

// BookingAction names a transition request against a booking.
type BookingAction string

const (
	ActionAccept       BookingAction = "accept"
	ActionDecline      BookingAction = "decline"
	ActionPay          BookingAction = "pay"
	ActionCheckIn      BookingAction = "check-in"
	ActionCancelGuest  BookingAction = "cancel-guest"
	ActionCancelVendor BookingAction = "cancel-vendor"
	ActionComplete     BookingAction = "complete"
)

// transitions maps each action to its legal source statuses and target.
var transitions = map[BookingAction]struct {
	from []string
	to   string
}{
	ActionAccept:       {[]string{BookingStatusPending}, BookingStatusConfirmed},
	ActionDecline:      {[]string{BookingStatusPending}, BookingStatusCancelled},
	ActionPay:          {[]string{BookingStatusPending, BookingStatusConfirmed}, BookingStatusPaid},
	ActionCheckIn:      {[]string{BookingStatusConfirmed, BookingStatusPaid}, BookingStatusCheckedIn},
	ActionCancelGuest:  {[]string{BookingStatusPending, BookingStatusConfirmed}, BookingStatusCancelled},
	ActionCancelVendor: {[]string{BookingStatusConfirmed, BookingStatusPaid}, BookingStatusCancelled},
	ActionComplete:     {[]string{BookingStatusCheckedIn}, BookingStatusCompleted},
}

// TransitionTarget returns the target status for action and the statuses it
// may legally start from. Unknown actions return ok=false.
func TransitionTarget(action BookingAction) (to string, from []string, ok bool) {
	t, ok := transitions[action]
	if !ok {
		return "", nil, false
	}
	return t.to, t.from, true
}

// CanTransition reports whether action is legal from the given status.
func CanTransition(action BookingAction, status string) bool {
	t, ok := transitions[action]
	if !ok {
		return false
	}
	for _, s := range t.from {
		if s == status {
			return true
		}
	}
	return false
}

// IsTerminal reports whether a booking in this status is immutable.
func IsTerminal(status string) bool {
	return status == BookingStatusCompleted || status == BookingStatusCancelled
}
