package service

import (
	"context"
	"testing"
	"time"

	calendarentity "go-booking-assistant/modules/calendar/entity"
	"go-booking-assistant/modules/schedule/entity"
	schedulerepository "go-booking-assistant/modules/schedule/repository"
	scheduleservice "go-booking-assistant/modules/schedule/service"

	"github.com/google/uuid"
)

type fakeScheduleRepo struct {
	business  entity.Business
	schedules []entity.WeeklySchedule
}

func (f *fakeScheduleRepo) GetByBusinessAndDay(ctx context.Context, businessID uuid.UUID, dayOfWeek int) (*entity.WeeklySchedule, error) {
	for i := range f.schedules {
		if f.schedules[i].DayOfWeek == dayOfWeek {
			return &f.schedules[i], nil
		}
	}
	return nil, nil
}

func (f *fakeScheduleRepo) GetActiveByBusiness(ctx context.Context, businessID uuid.UUID) ([]entity.WeeklySchedule, error) {
	var active []entity.WeeklySchedule
	for _, ws := range f.schedules {
		if ws.IsActive {
			active = append(active, ws)
		}
	}
	return active, nil
}

func (f *fakeScheduleRepo) GetAllByBusiness(ctx context.Context, businessID uuid.UUID) ([]entity.WeeklySchedule, error) {
	return f.schedules, nil
}

func (f *fakeScheduleRepo) Upsert(ctx context.Context, ws *entity.WeeklySchedule) (*entity.WeeklySchedule, error) {
	return ws, nil
}

func (f *fakeScheduleRepo) Delete(ctx context.Context, businessID uuid.UUID, dayOfWeek int) (bool, error) {
	return false, nil
}

func (f *fakeScheduleRepo) GetBusiness(ctx context.Context, businessID uuid.UUID) (*entity.Business, error) {
	b := f.business
	return &b, nil
}

func (f *fakeScheduleRepo) GetBusinessByUser(ctx context.Context, userID uuid.UUID) (*entity.Business, error) {
	b := f.business
	return &b, nil
}

func (f *fakeScheduleRepo) ListBusinesses(ctx context.Context) ([]entity.Business, error) {
	return []entity.Business{f.business}, nil
}

var _ schedulerepository.ScheduleRepository = (*fakeScheduleRepo)(nil)

type fakeGateway struct {
	events     []calendarentity.CalendarEvent
	listCalls  int
	lastFrom   time.Time
	lastTo     time.Time
	insertedID string
	inserted   []*calendarentity.EventInput
	deleted    []string
	listErr    error
	insertErr  error
	deleteErr  error
}

func (f *fakeGateway) ListEvents(ctx context.Context, ownerID uuid.UUID, from, to time.Time) ([]calendarentity.CalendarEvent, error) {
	f.listCalls++
	f.lastFrom, f.lastTo = from, to
	if f.listErr != nil {
		return nil, f.listErr
	}
	return f.events, nil
}

func (f *fakeGateway) InsertEvent(ctx context.Context, ownerID uuid.UUID, input *calendarentity.EventInput) (string, error) {
	if f.insertErr != nil {
		return "", f.insertErr
	}
	f.inserted = append(f.inserted, input)
	if f.insertedID == "" {
		return "evt-1", nil
	}
	return f.insertedID, nil
}

func (f *fakeGateway) DeleteEvent(ctx context.Context, ownerID uuid.UUID, eventID string) error {
	if f.deleteErr != nil {
		return f.deleteErr
	}
	f.deleted = append(f.deleted, eventID)
	return nil
}

func karachi(t *testing.T) *time.Location {
	t.Helper()
	loc, err := time.LoadLocation("Asia/Karachi")
	if err != nil {
		t.Fatalf("load timezone: %v", err)
	}
	return loc
}

func mondayBusinessFixture(t *testing.T) (*fakeScheduleRepo, uuid.UUID) {
	t.Helper()
	businessID := uuid.New()
	repo := &fakeScheduleRepo{
		business: entity.Business{
			UserID:       uuid.New(),
			BusinessName: "Glow Salon",
			Timezone:     "Asia/Karachi",
		},
		schedules: []entity.WeeklySchedule{
			{
				DayOfWeek: 1, // Monday
				Slots: entity.SlotRuleList{
					{StartTime: "09:00", EndTime: "11:00", Duration: 60, MaxBookings: 1, IsActive: true},
				},
				IsActive: true,
			},
		},
	}
	repo.business.ID = businessID
	return repo, businessID
}

func pinnedClock() func() time.Time {
	return func() time.Time {
		return time.Date(2025, 12, 1, 12, 0, 0, 0, time.UTC)
	}
}

func TestResolveTwoOpenSlots(t *testing.T) {
	repo, businessID := mondayBusinessFixture(t)
	gw := &fakeGateway{}
	svc := NewAvailabilityServiceWithClock(scheduleservice.NewScheduleService(repo), gw, pinnedClock())

	resp, err := svc.Resolve(context.Background(), businessID, "2025-12-29", "2025-12-29")
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if resp.TotalOpen != 2 {
		t.Fatalf("expected 2 open slots, got %d", resp.TotalOpen)
	}

	loc := karachi(t)
	want := []time.Time{
		time.Date(2025, 12, 29, 9, 0, 0, 0, loc),
		time.Date(2025, 12, 29, 10, 0, 0, 0, loc),
	}
	for i, slot := range resp.Slots {
		if !slot.Start.Equal(want[i]) {
			t.Errorf("slot %d start = %v, want %v", i, slot.Start, want[i])
		}
		if slot.CurrentBookings != 0 {
			t.Errorf("slot %d currentBookings = %d, want 0", i, slot.CurrentBookings)
		}
	}
	if gw.listCalls != 1 {
		t.Errorf("expected a single range query, got %d", gw.listCalls)
	}
}

func TestResolveBookingEventConsumesCapacity(t *testing.T) {
	repo, businessID := mondayBusinessFixture(t)
	loc := karachi(t)
	gw := &fakeGateway{
		events: []calendarentity.CalendarEvent{
			{
				ID:      "evt-existing",
				Summary: "Booking with Glow Salon : Haircut",
				Start:   time.Date(2025, 12, 29, 9, 0, 0, 0, loc),
				End:     time.Date(2025, 12, 29, 10, 0, 0, 0, loc),
				Private: map[string]string{"booking_ref": "glow-salon"},
			},
		},
	}
	svc := NewAvailabilityServiceWithClock(scheduleservice.NewScheduleService(repo), gw, pinnedClock())

	resp, err := svc.Resolve(context.Background(), businessID, "2025-12-29", "2025-12-29")
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	// maxBookings is 1, so the 09:00 slot is gone and 10:00 survives.
	if resp.TotalOpen != 1 {
		t.Fatalf("expected 1 open slot, got %d", resp.TotalOpen)
	}
	if got := resp.Slots[0].Start.In(loc).Hour(); got != 10 {
		t.Errorf("remaining slot hour = %d, want 10", got)
	}
}

func TestResolveBookingEventWithSpareCapacity(t *testing.T) {
	repo, businessID := mondayBusinessFixture(t)
	repo.schedules[0].Slots[0].MaxBookings = 2
	loc := karachi(t)
	gw := &fakeGateway{
		events: []calendarentity.CalendarEvent{
			{
				ID:      "evt-existing",
				Summary: "Booking with Glow Salon : Haircut",
				Start:   time.Date(2025, 12, 29, 9, 0, 0, 0, loc),
				End:     time.Date(2025, 12, 29, 10, 0, 0, 0, loc),
				Private: map[string]string{"booking_ref": "glow-salon"},
			},
		},
	}
	svc := NewAvailabilityServiceWithClock(scheduleservice.NewScheduleService(repo), gw, pinnedClock())

	resp, err := svc.Resolve(context.Background(), businessID, "2025-12-29", "2025-12-29")
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if resp.TotalOpen != 2 {
		t.Fatalf("expected 2 open slots, got %d", resp.TotalOpen)
	}
	if resp.Slots[0].CurrentBookings != 1 {
		t.Errorf("first slot currentBookings = %d, want 1", resp.Slots[0].CurrentBookings)
	}
}

func TestResolveForeignEventBlocksSlot(t *testing.T) {
	repo, businessID := mondayBusinessFixture(t)
	repo.schedules[0].Slots[0].MaxBookings = 2
	loc := karachi(t)
	gw := &fakeGateway{
		events: []calendarentity.CalendarEvent{
			{
				ID:      "evt-dentist",
				Summary: "Dentist appointment",
				Start:   time.Date(2025, 12, 29, 9, 30, 0, 0, loc),
				End:     time.Date(2025, 12, 29, 10, 30, 0, 0, loc),
			},
		},
	}
	svc := NewAvailabilityServiceWithClock(scheduleservice.NewScheduleService(repo), gw, pinnedClock())

	resp, err := svc.Resolve(context.Background(), businessID, "2025-12-29", "2025-12-29")
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	// The foreign event straddles both slots; spare capacity does not help.
	if resp.TotalOpen != 0 {
		t.Fatalf("expected 0 open slots, got %d", resp.TotalOpen)
	}
}

func TestResolveUnavailableOverrideYieldsNoSlots(t *testing.T) {
	repo, businessID := mondayBusinessFixture(t)
	repo.schedules[0].DateOverrides = entity.DateOverrideList{
		{Date: "2025-12-29", IsAvailable: false, Reason: "holiday"},
	}
	gw := &fakeGateway{}
	svc := NewAvailabilityServiceWithClock(scheduleservice.NewScheduleService(repo), gw, pinnedClock())

	resp, err := svc.Resolve(context.Background(), businessID, "2025-12-29", "2025-12-29")
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if resp.TotalOpen != 0 {
		t.Fatalf("expected 0 open slots on an overridden holiday, got %d", resp.TotalOpen)
	}
}

func TestResolvePastSlotsHidden(t *testing.T) {
	repo, businessID := mondayBusinessFixture(t)
	gw := &fakeGateway{}
	loc := karachi(t)
	// Clock mid-Monday: the 09:00 slot has already started.
	now := func() time.Time { return time.Date(2025, 12, 29, 9, 30, 0, 0, loc) }
	svc := NewAvailabilityServiceWithClock(scheduleservice.NewScheduleService(repo), gw, now)

	resp, err := svc.Resolve(context.Background(), businessID, "2025-12-29", "2025-12-29")
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if resp.TotalOpen != 1 {
		t.Fatalf("expected only the 10:00 slot, got %d open", resp.TotalOpen)
	}
	if got := resp.Slots[0].Start.In(loc).Hour(); got != 10 {
		t.Errorf("remaining slot hour = %d, want 10", got)
	}
}

func TestResolveRejectsBadDates(t *testing.T) {
	repo, businessID := mondayBusinessFixture(t)
	svc := NewAvailabilityServiceWithClock(scheduleservice.NewScheduleService(repo), &fakeGateway{}, pinnedClock())

	if _, err := svc.Resolve(context.Background(), businessID, "29-12-2025", ""); err == nil {
		t.Error("expected error for malformed start date")
	}
	if _, err := svc.Resolve(context.Background(), businessID, "2025-12-29", "2025-12-28"); err == nil {
		t.Error("expected error for end before start")
	}
}
