package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestRefundPercentFor_HardThreshold(t *testing.T) {
	policy := DefaultCancellationPolicy()
	now := time.Date(2026, 9, 15, 10, 0, 0, 0, time.UTC)

	tests := []struct {
		name      string
		slotStart time.Time
		want      int
	}{
		{
			name:      "far before threshold",
			slotStart: now.Add(5 * time.Hour),
			want:      100,
		},
		{
			name:      "exactly at threshold",
			slotStart: now.Add(2 * time.Hour),
			want:      100,
		},
		{
			name:      "one second inside threshold",
			slotStart: now.Add(2*time.Hour - time.Second),
			want:      0,
		},
		{
			name:      "slot already started",
			slotStart: now.Add(-time.Hour),
			want:      0,
		},
		{
			name:      "zero start time treated conservatively",
			slotStart: time.Time{},
			want:      0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.want, policy.RefundPercentFor(tt.slotStart, now))
		})
	}
}

func TestOwnerPenalty(t *testing.T) {
	policy := DefaultCancellationPolicy()
	require.Equal(t, 80.0, policy.OwnerPenalty())

	custom := CancellationPolicy{OwnerCancelFee: 10, OwnerPlatformFee: 25}
	require.Equal(t, 35.0, custom.OwnerPenalty())
}

func TestMonthStart(t *testing.T) {
	now := time.Date(2026, 9, 15, 23, 45, 12, 999, time.UTC)
	require.Equal(t, time.Date(2026, 9, 1, 0, 0, 0, 0, time.UTC), MonthStart(now))

	// Первое число месяца остается первым числом
	first := time.Date(2026, 9, 1, 0, 0, 0, 0, time.UTC)
	require.Equal(t, first, MonthStart(first))
}

func TestSlotIsAvailableFor(t *testing.T) {
	now := time.Date(2026, 9, 15, 10, 0, 0, 0, time.UTC)
	otherUser := int64(7)
	holder := int64(42)

	future := now.Add(10 * time.Minute)
	past := now.Add(-10 * time.Minute)

	tests := []struct {
		name string
		slot Slot
		user int64
		want bool
	}{
		{
			name: "available slot",
			slot: Slot{Status: SlotAvailable},
			user: holder,
			want: true,
		},
		{
			name: "held by same user",
			slot: Slot{Status: SlotHeld, HeldBy: &holder, HeldUntil: &future},
			user: holder,
			want: true,
		},
		{
			name: "held by another user, hold active",
			slot: Slot{Status: SlotHeld, HeldBy: &otherUser, HeldUntil: &future},
			user: holder,
			want: false,
		},
		{
			name: "held by another user, hold expired",
			slot: Slot{Status: SlotHeld, HeldBy: &otherUser, HeldUntil: &past},
			user: holder,
			want: true,
		},
		{
			name: "booked slot",
			slot: Slot{Status: SlotBooked},
			user: holder,
			want: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.want, tt.slot.IsAvailableFor(tt.user, now))
		})
	}
}

func TestBookingStateChecks(t *testing.T) {
	require.True(t, (&Booking{Status: StatusPending}).CanBeCancelled())
	require.True(t, (&Booking{Status: StatusConfirmed}).CanBeCancelled())
	require.False(t, (&Booking{Status: StatusCancelledByPlayer}).CanBeCancelled())
	require.False(t, (&Booking{Status: StatusCancelledByOwner}).CanBeCancelled())
	require.False(t, (&Booking{Status: StatusExpired}).CanBeCancelled())

	require.True(t, (&Booking{Status: StatusCancelledByPlayer}).IsTerminal())
	require.True(t, (&Booking{Status: StatusExpired}).IsTerminal())
	require.False(t, (&Booking{Status: StatusPending}).IsTerminal())
}

func TestCancellationRoleStatus(t *testing.T) {
	require.Equal(t, StatusCancelledByPlayer, RolePlayer.CancelledStatus())
	require.Equal(t, StatusCancelledByOwner, RoleOwner.CancelledStatus())
}
