package appointments

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testHours = Hours{Opening: 8, Closing: 18, SlotMinutes: 30}

func at(t *testing.T, value string) time.Time {
	t.Helper()
	ts, err := time.ParseInLocation("2006-01-02 15:04", value, time.Local)
	require.NoError(t, err)
	return ts
}

func TestSlotBoundaries(t *testing.T) {
	slots := testHours.SlotBoundaries()
	assert.Len(t, slots, 20)
	assert.Equal(t, "08:00", slots[0])
	assert.Equal(t, "17:30", slots[len(slots)-1])
}

func TestAvailableSlotsFutureDay(t *testing.T) {
	now := at(t, "2026-03-10 14:05")

	slots := AvailableSlots(testHours, "2026-03-11", nil, now)
	assert.Len(t, slots, 20, "a future day with no bookings exposes every slot")
}

func TestAvailableSlotsTodayDropsPast(t *testing.T) {
	now := at(t, "2026-03-10 14:05")

	slots := AvailableSlots(testHours, "2026-03-10", nil, now)
	require.NotEmpty(t, slots)
	assert.Equal(t, "14:30", slots[0], "slots at or before the current minute are gone")
	assert.Len(t, slots, 7)
}

func TestAvailableSlotsBoundaryIsExcluded(t *testing.T) {
	// A slot exactly at "now" is not bookable.
	now := at(t, "2026-03-10 14:30")

	slots := AvailableSlots(testHours, "2026-03-10", nil, now)
	require.NotEmpty(t, slots)
	assert.Equal(t, "15:00", slots[0])
}

func TestAvailableSlotsRemovesBooked(t *testing.T) {
	now := at(t, "2026-03-09 09:00")
	booked := map[string]struct{}{
		"10:00": {},
		"10:30": {},
	}

	slots := AvailableSlots(testHours, "2026-03-10", booked, now)
	assert.Len(t, slots, 18)
	assert.NotContains(t, slots, "10:00")
	assert.NotContains(t, slots, "10:30")
}

func TestAvailableSlotsFullyBooked(t *testing.T) {
	now := at(t, "2026-03-09 09:00")
	booked := make(map[string]struct{})
	for _, s := range testHours.SlotBoundaries() {
		booked[s] = struct{}{}
	}

	slots := AvailableSlots(testHours, "2026-03-10", booked, now)
	assert.NotNil(t, slots)
	assert.Empty(t, slots)
}

func TestValidateSchedule(t *testing.T) {
	now := at(t, "2026-03-10 14:05")

	tests := []struct {
		name    string
		date    string
		time    string
		wantErr string
	}{
		{name: "valid future slot", date: "2026-03-11", time: "10:00"},
		{name: "later today", date: "2026-03-10", time: "15:00"},
		{name: "past day", date: "2026-03-09", time: "10:00", wantErr: "past"},
		{name: "earlier today", date: "2026-03-10", time: "13:30", wantErr: "past"},
		{name: "before opening", date: "2026-03-11", time: "07:30", wantErr: "between"},
		{name: "at closing", date: "2026-03-11", time: "18:00", wantErr: "between"},
		{name: "after closing", date: "2026-03-11", time: "19:00", wantErr: "between"},
		{name: "last slot of the day", date: "2026-03-11", time: "17:30"},
		{name: "garbage time", date: "2026-03-11", time: "25:99", wantErr: "invalid"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := testHours.ValidateSchedule(tt.date, tt.time, now)
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}
