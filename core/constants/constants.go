package constants

import "time"

// Database pool settings
const (
	DatabaseSSLMode         = "disable"
	DatabaseMaxOpenConns    = 25
	DatabaseMaxIdleConns    = 5
	DatabaseConnMaxLifetime = 30 // minutes
)

// Day names indexed by the 0=Sunday..6=Saturday convention used across
// the schedule API.
var DayNames = [7]string{"Sunday", "Monday", "Tuesday", "Wednesday", "Thursday", "Friday", "Saturday"}

// Slot rule bounds
const (
	MinSlotDurationMinutes = 15
	MaxSlotDurationMinutes = 480
	MinMaxBookings         = 1
	MaxMaxBookings         = 10
)

// Calendar gateway settings
const (
	// TokenExpirySkew refreshes tokens slightly before their recorded
	// expiry so an in-flight request never carries a stale token.
	TokenExpirySkew = 5 * time.Minute

	// RefreshLockTTL bounds the per-owner refresh lock so a crashed
	// refresher cannot wedge other requests.
	RefreshLockTTL = 10 * time.Second

	CalendarRequestTimeout = 30 * time.Second
)

// Booking settings
const (
	BookingListLimit          = 50
	DefaultAdvanceBookingDays = 30
)
