// Package appointments implements slot availability and the appointment
// lifecycle for a shop's booking calendar.
package appointments

import (
	"fmt"
	"time"

	"github.com/washpoint/backend/internal/domain"
)

const (
	// DateLayout is the wire format for scheduled dates.
	DateLayout = "2006-01-02"
	// TimeLayout is the wire format for scheduled times.
	TimeLayout = "15:04"
)

// Hours is the shop-wide bookable window: [Opening, Closing) at SlotMinutes
// granularity. One service bay per slot is assumed.
type Hours struct {
	Opening     int
	Closing     int
	SlotMinutes int
}

// SlotBoundaries enumerates every slot start time between opening and closing
// hour, formatted as HH:MM in chronological order.
func (h Hours) SlotBoundaries() []string {
	var out []string
	for hour := h.Opening; hour < h.Closing; hour++ {
		for minute := 0; minute < 60; minute += h.SlotMinutes {
			out = append(out, fmt.Sprintf("%02d:%02d", hour, minute))
		}
	}
	return out
}

// AvailableSlots returns the free slots for a date. Booked times are removed
// and, when the date is today, every slot at or before the current minute is
// dropped: a slot exactly at "now" is not bookable.
func AvailableSlots(h Hours, date string, booked map[string]struct{}, now time.Time) []string {
	isToday := now.Format(DateLayout) == date
	cutoff := now.Format(TimeLayout)

	slots := make([]string, 0)
	for _, slot := range h.SlotBoundaries() {
		if isToday && slot <= cutoff {
			continue
		}
		if _, taken := booked[slot]; taken {
			continue
		}
		slots = append(slots, slot)
	}
	return slots
}

// ValidateSchedule runs the booking-time checks shared by create and
// reschedule: the combined date+time must not be in the past and the hour must
// fall inside business hours. Slot conflicts are checked against the store
// separately.
func (h Hours) ValidateSchedule(date, timeOfDay string, now time.Time) error {
	at, err := time.ParseInLocation(DateLayout+" "+TimeLayout, date+" "+timeOfDay, now.Location())
	if err != nil {
		return domain.Validation("invalid date or time: %q %q", date, timeOfDay)
	}
	if at.Before(now) {
		return domain.Validation("cannot schedule for a past date/time")
	}
	if at.Hour() < h.Opening || at.Hour() >= h.Closing {
		return domain.Validation("time must be between %02d:00 and %02d:00", h.Opening, h.Closing)
	}
	return nil
}
