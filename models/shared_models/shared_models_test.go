package shared_models

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var allStatuses = []string{
	BookingStatusPending,
	BookingStatusConfirmed,
	BookingStatusPaid,
	BookingStatusCheckedIn,
	BookingStatusCompleted,
	BookingStatusCancelled,
}

var allActions = []BookingAction{
	ActionAccept,
	ActionDecline,
	ActionPay,
	ActionCheckIn,
	ActionCancelGuest,
	ActionCancelVendor,
	ActionComplete,
}

func TestTransitionTable(t *testing.T) {
	tests := []struct {
		action BookingAction
		from   string
		legal  bool
	}{
		{ActionAccept, BookingStatusPending, true},
		{ActionAccept, BookingStatusConfirmed, false},
		{ActionAccept, BookingStatusPaid, false},
		{ActionDecline, BookingStatusPending, true},
		{ActionDecline, BookingStatusConfirmed, false},
		{ActionPay, BookingStatusPending, true},
		{ActionPay, BookingStatusConfirmed, true},
		{ActionPay, BookingStatusPaid, false},
		{ActionPay, BookingStatusCancelled, false},
		{ActionCheckIn, BookingStatusConfirmed, true},
		{ActionCheckIn, BookingStatusPaid, true},
		{ActionCheckIn, BookingStatusPending, false},
		{ActionCancelGuest, BookingStatusPending, true},
		{ActionCancelGuest, BookingStatusConfirmed, true},
		{ActionCancelGuest, BookingStatusPaid, false},
		{ActionCancelVendor, BookingStatusConfirmed, true},
		{ActionCancelVendor, BookingStatusPaid, true},
		{ActionCancelVendor, BookingStatusPending, false},
		{ActionComplete, BookingStatusCheckedIn, true},
		{ActionComplete, BookingStatusPaid, false},
	}

	for _, tt := range tests {
		t.Run(string(tt.action)+"_from_"+tt.from, func(t *testing.T) {
			assert.Equal(t, tt.legal, CanTransition(tt.action, tt.from))
		})
	}
}

// Every action must refuse to start from a terminal status, and every
// status/action pair must have a definite answer.
func TestTerminalStatusesAreImmutable(t *testing.T) {
	for _, action := range allActions {
		assert.False(t, CanTransition(action, BookingStatusCompleted), "action %s from COMPLETED", action)
		assert.False(t, CanTransition(action, BookingStatusCancelled), "action %s from CANCELLED", action)
	}
}

func TestTransitionTargetKnownActions(t *testing.T) {
	for _, action := range allActions {
		to, from, ok := TransitionTarget(action)
		require.True(t, ok, "action %s missing from table", action)
		assert.NotEmpty(t, to)
		assert.NotEmpty(t, from)
		for _, s := range from {
			assert.Contains(t, allStatuses, s)
		}
	}

	_, _, ok := TransitionTarget(BookingAction("teleport"))
	assert.False(t, ok)
}

func TestIsTerminal(t *testing.T) {
	assert.True(t, IsTerminal(BookingStatusCompleted))
	assert.True(t, IsTerminal(BookingStatusCancelled))
	assert.False(t, IsTerminal(BookingStatusPending))
	assert.False(t, IsTerminal(BookingStatusPaid))
}
