package entity

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"

	"go-booking-assistant/core/entity"

	"github.com/google/uuid"
)

// SlotRule is one bookable window definition inside a day: tile
// [StartTime, EndTime) into Duration-minute appointments, each
// admitting up to MaxBookings concurrent bookings.
type SlotRule struct {
	StartTime   string `json:"startTime"`
	EndTime     string `json:"endTime"`
	Duration    int    `json:"duration"`
	SlotName    string `json:"slotName,omitempty"`
	MaxBookings int    `json:"maxBookings"`
	IsActive    bool   `json:"isActive"`
}

// UnmarshalJSON applies the schema defaults: a rule omitted from the
// payload is active with capacity 1 unless it says otherwise.
func (r *SlotRule) UnmarshalJSON(data []byte) error {
	type plain SlotRule
	aux := plain{MaxBookings: 1, IsActive: true}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	*r = SlotRule(aux)
	return nil
}

type SlotRuleList []SlotRule

func (l SlotRuleList) Value() (driver.Value, error) {
	if l == nil {
		l = SlotRuleList{}
	}
	return json.Marshal(l)
}

func (l *SlotRuleList) Scan(src any) error {
	if src == nil {
		*l = SlotRuleList{}
		return nil
	}
	b, ok := src.([]byte)
	if !ok {
		return fmt.Errorf("slot rules: unsupported scan type %T", src)
	}
	return json.Unmarshal(b, l)
}

// DateOverride replaces a specific date's regular rules entirely. When
// IsAvailable is false the date takes no bookings at all; CustomSlots
// must be empty in that case.
type DateOverride struct {
	Date        string       `json:"date"` // YYYY-MM-DD
	IsAvailable bool         `json:"isAvailable"`
	CustomSlots SlotRuleList `json:"customSlots,omitempty"`
	Reason      string       `json:"reason,omitempty"`
}

type DateOverrideList []DateOverride

func (l DateOverrideList) Value() (driver.Value, error) {
	if l == nil {
		l = DateOverrideList{}
	}
	return json.Marshal(l)
}

func (l *DateOverrideList) Scan(src any) error {
	if src == nil {
		*l = DateOverrideList{}
		return nil
	}
	b, ok := src.([]byte)
	if !ok {
		return fmt.Errorf("date overrides: unsupported scan type %T", src)
	}
	return json.Unmarshal(b, l)
}

// WeeklySchedule is a business's recurring availability for one day of
// the week (0=Sunday..6=Saturday), plus any date-specific overrides
// anchored to that weekday.
type WeeklySchedule struct {
	entity.BaseEntity
	BusinessID    uuid.UUID        `db:"business_id" json:"business_id"`
	DayOfWeek     int              `db:"day_of_week" json:"dayOfWeek"`
	Slots         SlotRuleList     `db:"slots" json:"slots"`
	DateOverrides DateOverrideList `db:"date_overrides" json:"dateOverrides"`
	IsActive      bool             `db:"is_active" json:"isActive"`
}

func (WeeklySchedule) TableName() string {
	return "weekly_schedules"
}

// DaySchedule is the resolved answer for one concrete date.
type DaySchedule struct {
	Rules  []SlotRule `json:"rules"`
	Source string     `json:"source"` // "override" | "regular"
}

const (
	SourceOverride = "override"
	SourceRegular  = "regular"
)

// Business is the read-only owner record the engine needs: whose
// calendar to use and which timezone wall-clock rules apply in.
type Business struct {
	entity.BaseEntity
	UserID       uuid.UUID `db:"user_id" json:"user_id"`
	BusinessName string    `db:"business_name" json:"business_name"`
	Timezone     string    `db:"timezone" json:"timezone"`
}

func (Business) TableName() string {
	return "businesses"
}

// Location resolves the business timezone, defaulting to UTC the same
// way the schedule API does on write.
func (b *Business) Location() (*time.Location, error) {
	if b.Timezone == "" {
		return time.UTC, nil
	}
	return time.LoadLocation(b.Timezone)
}
