package service

import (
	"context"
	stderrors "errors"
	"strings"
	"testing"
	"time"

	"go-booking-assistant/core/errors"
	"go-booking-assistant/modules/booking/dto"
	"go-booking-assistant/modules/booking/entity"
	calendarentity "go-booking-assistant/modules/calendar/entity"
	calendarservice "go-booking-assistant/modules/calendar/service"
	scheduleentity "go-booking-assistant/modules/schedule/entity"
	scheduleservice "go-booking-assistant/modules/schedule/service"

	"github.com/google/uuid"
)

type fakeScheduleRepo struct {
	business  scheduleentity.Business
	schedules []scheduleentity.WeeklySchedule
}

func (f *fakeScheduleRepo) GetByBusinessAndDay(ctx context.Context, businessID uuid.UUID, dayOfWeek int) (*scheduleentity.WeeklySchedule, error) {
	return nil, nil
}

func (f *fakeScheduleRepo) GetActiveByBusiness(ctx context.Context, businessID uuid.UUID) ([]scheduleentity.WeeklySchedule, error) {
	return f.schedules, nil
}

func (f *fakeScheduleRepo) GetAllByBusiness(ctx context.Context, businessID uuid.UUID) ([]scheduleentity.WeeklySchedule, error) {
	return f.schedules, nil
}

func (f *fakeScheduleRepo) Upsert(ctx context.Context, ws *scheduleentity.WeeklySchedule) (*scheduleentity.WeeklySchedule, error) {
	return ws, nil
}

func (f *fakeScheduleRepo) Delete(ctx context.Context, businessID uuid.UUID, dayOfWeek int) (bool, error) {
	return false, nil
}

func (f *fakeScheduleRepo) GetBusiness(ctx context.Context, businessID uuid.UUID) (*scheduleentity.Business, error) {
	b := f.business
	return &b, nil
}

func (f *fakeScheduleRepo) GetBusinessByUser(ctx context.Context, userID uuid.UUID) (*scheduleentity.Business, error) {
	b := f.business
	return &b, nil
}

func (f *fakeScheduleRepo) ListBusinesses(ctx context.Context) ([]scheduleentity.Business, error) {
	return []scheduleentity.Business{f.business}, nil
}

type fakeGateway struct {
	events    []calendarentity.CalendarEvent
	listCalls int
	inserted  []*calendarentity.EventInput
	deleted   []string
	listErr   error
	insertErr error
	deleteErr error
}

func (f *fakeGateway) ListEvents(ctx context.Context, ownerID uuid.UUID, from, to time.Time) ([]calendarentity.CalendarEvent, error) {
	f.listCalls++
	if f.listErr != nil {
		return nil, f.listErr
	}
	var out []calendarentity.CalendarEvent
	for _, ev := range f.events {
		if ev.Overlaps(from, to) {
			out = append(out, ev)
		}
	}
	return out, nil
}

func (f *fakeGateway) InsertEvent(ctx context.Context, ownerID uuid.UUID, input *calendarentity.EventInput) (string, error) {
	if f.insertErr != nil {
		return "", f.insertErr
	}
	f.inserted = append(f.inserted, input)
	id := "evt-new"
	f.events = append(f.events, calendarentity.CalendarEvent{
		ID:      id,
		Summary: input.Summary,
		Start:   input.Start,
		End:     input.End,
		Private: input.Private,
	})
	return id, nil
}

func (f *fakeGateway) DeleteEvent(ctx context.Context, ownerID uuid.UUID, eventID string) error {
	if f.deleteErr != nil {
		return f.deleteErr
	}
	f.deleted = append(f.deleted, eventID)
	remaining := f.events[:0]
	for _, ev := range f.events {
		if ev.ID != eventID {
			remaining = append(remaining, ev)
		}
	}
	f.events = remaining
	return nil
}

type fakeBookingRepo struct {
	bookings  []entity.Booking
	createErr error
}

func (f *fakeBookingRepo) Create(ctx context.Context, b *entity.Booking) (*entity.Booking, error) {
	if f.createErr != nil {
		return nil, f.createErr
	}
	b.ID = uuid.New()
	f.bookings = append(f.bookings, *b)
	return b, nil
}

func (f *fakeBookingRepo) GetByEventID(ctx context.Context, userID uuid.UUID, eventID string) (*entity.Booking, error) {
	for i := range f.bookings {
		if f.bookings[i].EventID == eventID {
			return &f.bookings[i], nil
		}
	}
	return nil, nil
}

func (f *fakeBookingRepo) MarkCancelled(ctx context.Context, userID uuid.UUID, eventID string, at time.Time) error {
	for i := range f.bookings {
		if f.bookings[i].EventID == eventID && f.bookings[i].Status == entity.StatusActive {
			f.bookings[i].Status = entity.StatusCancelled
			f.bookings[i].CancelledAt = &at
		}
	}
	return nil
}

func (f *fakeBookingRepo) ListActiveByConversation(ctx context.Context, userID uuid.UUID, conversationID string) ([]entity.Booking, error) {
	var out []entity.Booking
	for _, b := range f.bookings {
		if b.ConversationID == conversationID && b.Status == entity.StatusActive {
			out = append(out, b)
		}
	}
	return out, nil
}

func (f *fakeBookingRepo) ListActiveBySender(ctx context.Context, userID uuid.UUID, senderID, platform string) ([]entity.Booking, error) {
	var out []entity.Booking
	for _, b := range f.bookings {
		if b.SenderID == senderID && b.Platform == platform && b.Status == entity.StatusActive {
			out = append(out, b)
		}
	}
	return out, nil
}

func (f *fakeBookingRepo) ListActiveByUser(ctx context.Context, userID uuid.UUID, from time.Time) ([]entity.Booking, error) {
	return f.bookings, nil
}

func fixture(t *testing.T) (*fakeBookingRepo, *fakeScheduleRepo, *fakeGateway, BookingService, uuid.UUID) {
	t.Helper()
	businessID := uuid.New()
	scheduleRepo := &fakeScheduleRepo{
		business: scheduleentity.Business{
			UserID:       uuid.New(),
			BusinessName: "Glow Salon",
			Timezone:     "Asia/Karachi",
		},
		schedules: []scheduleentity.WeeklySchedule{
			{
				DayOfWeek: 1, // Monday
				Slots: scheduleentity.SlotRuleList{
					{StartTime: "09:00", EndTime: "11:00", Duration: 60, MaxBookings: 1, IsActive: true},
				},
				IsActive: true,
			},
		},
	}
	scheduleRepo.business.ID = businessID

	bookingRepo := &fakeBookingRepo{}
	gw := &fakeGateway{}
	now := func() time.Time { return time.Date(2025, 12, 1, 12, 0, 0, 0, time.UTC) }
	svc := NewBookingServiceWithClock(bookingRepo, scheduleservice.NewScheduleService(scheduleRepo), gw, now)
	return bookingRepo, scheduleRepo, gw, svc, businessID
}

func commitRequest() *dto.CreateBookingRequest {
	return &dto.CreateBookingRequest{
		ConversationID: "conv-1",
		SenderID:       "sender-1",
		Platform:       entity.PlatformInstagram,
		Summary:        "Haircut",
		Start:          "2025-12-29T09:00:00+05:00",
		End:            "2025-12-29T10:00:00+05:00",
	}
}

func TestCommitSuccess(t *testing.T) {
	bookingRepo, _, gw, svc, businessID := fixture(t)

	resp, err := svc.Commit(context.Background(), businessID, commitRequest())
	if err != nil {
		t.Fatalf("Commit: %v", err)
	}
	if resp.EventID != "evt-new" {
		t.Errorf("event id = %q, want evt-new", resp.EventID)
	}
	if len(bookingRepo.bookings) != 1 {
		t.Fatalf("expected 1 booking row, got %d", len(bookingRepo.bookings))
	}
	if bookingRepo.bookings[0].Status != entity.StatusActive {
		t.Errorf("booking status = %q, want active", bookingRepo.bookings[0].Status)
	}

	if len(gw.inserted) != 1 {
		t.Fatalf("expected 1 inserted event, got %d", len(gw.inserted))
	}
	ev := gw.inserted[0]
	if !strings.HasPrefix(ev.Summary, "Booking with Glow Salon") {
		t.Errorf("event summary = %q, missing business prefix", ev.Summary)
	}
	if ev.Private[calendarservice.BookingMarkerKey] != "glow-salon" {
		t.Errorf("marker = %q, want glow-salon", ev.Private[calendarservice.BookingMarkerKey])
	}
	if gw.listCalls != 1 {
		t.Errorf("expected one fresh event fetch, got %d", gw.listCalls)
	}
}

func TestCommitSecondCallHitsCapacity(t *testing.T) {
	bookingRepo, _, _, svc, businessID := fixture(t)

	if _, err := svc.Commit(context.Background(), businessID, commitRequest()); err != nil {
		t.Fatalf("first Commit: %v", err)
	}

	_, err := svc.Commit(context.Background(), businessID, commitRequest())
	if err == nil {
		t.Fatal("second Commit should conflict")
	}
	if got := errors.ConflictReason(err); got != errors.ConflictCapacity {
		t.Errorf("conflict reason = %q, want capacity", got)
	}
	if len(bookingRepo.bookings) != 1 {
		t.Errorf("expected exactly 1 booking row, got %d", len(bookingRepo.bookings))
	}
}

func TestCommitForeignEventIsOverlap(t *testing.T) {
	_, _, gw, svc, businessID := fixture(t)
	loc, _ := time.LoadLocation("Asia/Karachi")
	gw.events = []calendarentity.CalendarEvent{
		{
			ID:      "evt-dentist",
			Summary: "Dentist",
			Start:   time.Date(2025, 12, 29, 9, 30, 0, 0, loc),
			End:     time.Date(2025, 12, 29, 10, 30, 0, 0, loc),
		},
	}

	_, err := svc.Commit(context.Background(), businessID, commitRequest())
	if err == nil {
		t.Fatal("expected overlap conflict")
	}
	if got := errors.ConflictReason(err); got != errors.ConflictOverlap {
		t.Errorf("conflict reason = %q, want overlap", got)
	}
	if len(gw.inserted) != 0 {
		t.Errorf("no event should be inserted on conflict")
	}
}

func TestCommitUngovernedWindowRejectsAnyOverlap(t *testing.T) {
	_, _, gw, svc, businessID := fixture(t)
	loc, _ := time.LoadLocation("Asia/Karachi")
	// A booking-tagged event overlapping a window no rule governs.
	gw.events = []calendarentity.CalendarEvent{
		{
			ID:      "evt-b",
			Summary: "Booking with Glow Salon : Haircut",
			Start:   time.Date(2025, 12, 29, 14, 0, 0, 0, loc),
			End:     time.Date(2025, 12, 29, 15, 0, 0, 0, loc),
			Private: map[string]string{"booking_ref": "glow-salon"},
		},
	}

	req := commitRequest()
	req.Start = "2025-12-29T14:00:00+05:00"
	req.End = "2025-12-29T15:00:00+05:00"

	_, err := svc.Commit(context.Background(), businessID, req)
	if err == nil {
		t.Fatal("expected overlap conflict")
	}
	if got := errors.ConflictReason(err); got != errors.ConflictOverlap {
		t.Errorf("conflict reason = %q, want overlap", got)
	}
}

func TestCommitValidationBeforeIO(t *testing.T) {
	_, _, gw, svc, businessID := fixture(t)

	cases := []func(*dto.CreateBookingRequest){
		func(r *dto.CreateBookingRequest) { r.Platform = "telegram" },
		func(r *dto.CreateBookingRequest) { r.Start = "not-a-time" },
		func(r *dto.CreateBookingRequest) { r.End = r.Start },
		func(r *dto.CreateBookingRequest) { r.Summary = "" },
		func(r *dto.CreateBookingRequest) { r.ConversationID = "" },
	}
	for i, mutate := range cases {
		req := commitRequest()
		mutate(req)
		_, err := svc.Commit(context.Background(), businessID, req)
		if err == nil {
			t.Errorf("case %d: expected validation error", i)
		}
		if !errors.IsCode(err, errors.ErrInvalidInput) {
			t.Errorf("case %d: expected INVALID_INPUT, got %v", i, err)
		}
	}
	if gw.listCalls != 0 || len(gw.inserted) != 0 {
		t.Errorf("validation failures must not reach the gateway: %d list, %d insert", gw.listCalls, len(gw.inserted))
	}
}

func TestCommitPartialFailure(t *testing.T) {
	bookingRepo, _, gw, svc, businessID := fixture(t)
	bookingRepo.createErr = stderrors.New("connection reset")

	_, err := svc.Commit(context.Background(), businessID, commitRequest())
	if err == nil {
		t.Fatal("expected partial commit error")
	}
	if !errors.IsCode(err, errors.ErrPartialCommit) {
		t.Errorf("expected PARTIAL_COMMIT_INCONSISTENCY, got %v", err)
	}
	// The external event stays; there is no rollback.
	if len(gw.inserted) != 1 {
		t.Errorf("expected the external event to remain inserted")
	}
}

func TestCancelSymmetry(t *testing.T) {
	bookingRepo, _, gw, svc, businessID := fixture(t)

	created, err := svc.Commit(context.Background(), businessID, commitRequest())
	if err != nil {
		t.Fatalf("Commit: %v", err)
	}

	resp, err := svc.Cancel(context.Background(), businessID, created.EventID)
	if err != nil {
		t.Fatalf("Cancel: %v", err)
	}
	if resp.Status != entity.StatusCancelled {
		t.Errorf("status = %q, want cancelled", resp.Status)
	}
	if len(gw.deleted) != 1 || gw.deleted[0] != created.EventID {
		t.Errorf("external event not deleted: %v", gw.deleted)
	}
	if bookingRepo.bookings[0].Status != entity.StatusCancelled || bookingRepo.bookings[0].CancelledAt == nil {
		t.Errorf("local row not cancelled: %+v", bookingRepo.bookings[0])
	}

	// The freed window accepts a new booking again.
	if _, err := svc.Commit(context.Background(), businessID, commitRequest()); err != nil {
		t.Errorf("rebooking the freed slot should succeed, got %v", err)
	}
}

func TestCancelExternalFailureLeavesLocalUntouched(t *testing.T) {
	bookingRepo, _, gw, svc, businessID := fixture(t)

	created, err := svc.Commit(context.Background(), businessID, commitRequest())
	if err != nil {
		t.Fatalf("Commit: %v", err)
	}

	gw.deleteErr = errors.NewAppError(errors.ErrGatewayUnavailable, "provider down", nil)
	if _, err := svc.Cancel(context.Background(), businessID, created.EventID); err == nil {
		t.Fatal("expected cancel to fail")
	}
	if bookingRepo.bookings[0].Status != entity.StatusActive {
		t.Errorf("local row must stay active when the external delete fails")
	}
}

func TestCancelUnknownEvent(t *testing.T) {
	_, _, _, svc, businessID := fixture(t)
	_, err := svc.Cancel(context.Background(), businessID, "evt-missing")
	if !errors.IsCode(err, errors.ErrNotFound) {
		t.Errorf("expected NOT_FOUND, got %v", err)
	}
}

func TestListBookings(t *testing.T) {
	_, _, _, svc, businessID := fixture(t)

	if _, err := svc.Commit(context.Background(), businessID, commitRequest()); err != nil {
		t.Fatalf("Commit: %v", err)
	}

	resp, err := svc.List(context.Background(), businessID, &dto.ListBookingsRequest{ConversationID: "conv-1"})
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if resp.Total != 1 {
		t.Errorf("total = %d, want 1", resp.Total)
	}

	bySender, err := svc.List(context.Background(), businessID, &dto.ListBookingsRequest{
		SenderID: "sender-1", Platform: entity.PlatformInstagram,
	})
	if err != nil {
		t.Fatalf("List by sender: %v", err)
	}
	if bySender.Total != 1 {
		t.Errorf("total by sender = %d, want 1", bySender.Total)
	}

	if _, err := svc.List(context.Background(), businessID, &dto.ListBookingsRequest{}); err == nil {
		t.Error("expected error when no filter is given")
	}
}
