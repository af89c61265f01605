package service

import (
	"fmt"
	"regexp"
	"time"

	"go-booking-assistant/modules/schedule/entity"
)

var timeFormatRe = regexp.MustCompile(`^([01]?[0-9]|2[0-3]):[0-5][0-9]$`)

// ValidTimeFormat reports whether s is a 24-hour "HH:MM" string.
func ValidTimeFormat(s string) bool {
	return timeFormatRe.MatchString(s)
}

// TimeToMinutes converts a validated "HH:MM" string to minutes of day.
func TimeToMinutes(s string) (int, error) {
	if !ValidTimeFormat(s) {
		return 0, fmt.Errorf("invalid time format: %s", s)
	}
	var h, m int
	if _, err := fmt.Sscanf(s, "%d:%d", &h, &m); err != nil {
		return 0, err
	}
	return h*60 + m, nil
}

// GenerateSlots tiles each active rule's [startTime, endTime) window
// into contiguous appointments of exactly Duration minutes on the given
// date. A trailing window that does not fit entirely before endTime is
// dropped. Wall-clock times are anchored in loc per-date, so the UTC
// offset is correct across DST transitions.
func GenerateSlots(rules []entity.SlotRule, date time.Time, loc *time.Location) []entity.AppointmentSlot {
	year, month, day := date.Date()
	dateStr := fmt.Sprintf("%04d-%02d-%02d", year, int(month), day)

	var slots []entity.AppointmentSlot
	for _, rule := range rules {
		if !rule.IsActive || rule.Duration <= 0 {
			continue
		}
		startMin, err := TimeToMinutes(rule.StartTime)
		if err != nil {
			continue
		}
		endMin, err := TimeToMinutes(rule.EndTime)
		if err != nil || endMin <= startMin {
			continue
		}

		for t := startMin; t+rule.Duration <= endMin; t += rule.Duration {
			start := time.Date(year, month, day, t/60, t%60, 0, 0, loc)
			endT := t + rule.Duration
			end := time.Date(year, month, day, endT/60, endT%60, 0, 0, loc)

			maxBookings := rule.MaxBookings
			if maxBookings < 1 {
				maxBookings = 1
			}
			slots = append(slots, entity.AppointmentSlot{
				Date:            dateStr,
				SlotName:        rule.SlotName,
				Start:           start,
				End:             end,
				DurationMinutes: rule.Duration,
				MaxBookings:     maxBookings,
			})
		}
	}
	return slots
}
