package service

import (
	"testing"
	"time"

	"go-booking-assistant/modules/schedule/entity"
)

func TestValidTimeFormat(t *testing.T) {
	valid := []string{"00:00", "9:30", "09:30", "23:59", "12:00"}
	for _, s := range valid {
		if !ValidTimeFormat(s) {
			t.Errorf("expected %q to be valid", s)
		}
	}
	invalid := []string{"24:00", "12:60", "9:5", "noon", "09:30:00", ""}
	for _, s := range invalid {
		if ValidTimeFormat(s) {
			t.Errorf("expected %q to be invalid", s)
		}
	}
}

func TestTimeToMinutes(t *testing.T) {
	cases := map[string]int{
		"00:00": 0,
		"09:30": 570,
		"23:59": 1439,
	}
	for in, want := range cases {
		got, err := TimeToMinutes(in)
		if err != nil {
			t.Fatalf("TimeToMinutes(%q): %v", in, err)
		}
		if got != want {
			t.Errorf("TimeToMinutes(%q) = %d, want %d", in, got, want)
		}
	}
}

func TestGenerateSlotsTiling(t *testing.T) {
	rules := []entity.SlotRule{
		{StartTime: "09:00", EndTime: "12:00", Duration: 60, MaxBookings: 2, IsActive: true},
	}
	date := time.Date(2025, 12, 29, 0, 0, 0, 0, time.UTC)

	slots := GenerateSlots(rules, date, time.UTC)
	if len(slots) != 3 {
		t.Fatalf("expected 3 slots, got %d", len(slots))
	}
	for i, slot := range slots {
		if got := slot.End.Sub(slot.Start); got != 60*time.Minute {
			t.Errorf("slot %d duration = %v, want 60m", i, got)
		}
		if slot.MaxBookings != 2 {
			t.Errorf("slot %d maxBookings = %d, want 2", i, slot.MaxBookings)
		}
		if i > 0 && !slots[i].Start.Equal(slots[i-1].End) {
			t.Errorf("slot %d not contiguous with previous", i)
		}
	}
}

func TestGenerateSlotsDropsPartialWindow(t *testing.T) {
	// 09:00-10:30 with 60-minute slots: only 09:00-10:00 fits.
	rules := []entity.SlotRule{
		{StartTime: "09:00", EndTime: "10:30", Duration: 60, IsActive: true},
	}
	date := time.Date(2025, 12, 29, 0, 0, 0, 0, time.UTC)

	slots := GenerateSlots(rules, date, time.UTC)
	if len(slots) != 1 {
		t.Fatalf("expected 1 slot, got %d", len(slots))
	}
	if slots[0].Start.Hour() != 9 || slots[0].End.Hour() != 10 {
		t.Errorf("unexpected slot window: %v - %v", slots[0].Start, slots[0].End)
	}
}

func TestGenerateSlotsBusinessTimezone(t *testing.T) {
	loc := time.FixedZone("UTC+5", 5*3600)
	rules := []entity.SlotRule{
		{StartTime: "09:00", EndTime: "11:00", Duration: 60, MaxBookings: 1, IsActive: true},
	}
	date := time.Date(2025, 12, 29, 0, 0, 0, 0, loc)

	slots := GenerateSlots(rules, date, loc)
	if len(slots) != 2 {
		t.Fatalf("expected 2 slots, got %d", len(slots))
	}

	wantFirst := time.Date(2025, 12, 29, 9, 0, 0, 0, loc)
	if !slots[0].Start.Equal(wantFirst) {
		t.Errorf("first slot start = %v, want %v", slots[0].Start, wantFirst)
	}
	// 09:00+05:00 is 04:00 UTC.
	if got := slots[0].Start.UTC().Hour(); got != 4 {
		t.Errorf("first slot UTC hour = %d, want 4", got)
	}
	if slots[0].Date != "2025-12-29" {
		t.Errorf("slot date = %q, want 2025-12-29", slots[0].Date)
	}
}

func TestGenerateSlotsSkipsInactiveRules(t *testing.T) {
	rules := []entity.SlotRule{
		{StartTime: "09:00", EndTime: "11:00", Duration: 60, IsActive: false},
		{StartTime: "14:00", EndTime: "15:00", Duration: 60, IsActive: true},
	}
	date := time.Date(2025, 12, 29, 0, 0, 0, 0, time.UTC)

	slots := GenerateSlots(rules, date, time.UTC)
	if len(slots) != 1 {
		t.Fatalf("expected 1 slot, got %d", len(slots))
	}
	if slots[0].Start.Hour() != 14 {
		t.Errorf("slot start hour = %d, want 14", slots[0].Start.Hour())
	}
}

func TestGenerateSlotsDefaultsMaxBookings(t *testing.T) {
	rules := []entity.SlotRule{
		{StartTime: "09:00", EndTime: "10:00", Duration: 60, IsActive: true},
	}
	slots := GenerateSlots(rules, time.Date(2025, 12, 29, 0, 0, 0, 0, time.UTC), time.UTC)
	if len(slots) != 1 || slots[0].MaxBookings != 1 {
		t.Fatalf("expected maxBookings default 1, got %+v", slots)
	}
}
