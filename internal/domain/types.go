package domain

// Role tags carried on roster documents.
const (
	RoleDriver     = "driver"
	RoleAdmin      = "admin"
	RoleAssistant  = "assistant"
	RoleSuperadmin = "superadmin"
)

// Driver availability states for a given date.
const (
	AvailabilityAvailable   = "available"
	AvailabilityUnavailable = "unavailable"
	AvailabilityNoResponse  = "no_response"
)

// Location/ETA record states.
const (
	EtaStatusPending = "pending"
	EtaStatusReady   = "ready"
	EtaStatusError   = "error"
)

// Driver is a roster entry within one scope. Only active entries with the
// driver role are eligible for scheduling commands.
type Driver struct {
	ID       string `json:"-"`
	Name     string `json:"name"`
	Role     string `json:"role"`
	Active   bool   `json:"active"`
	Modality string `json:"modality,omitempty"`
	FCMToken string `json:"fcmToken,omitempty"`
}

// WaveItem is one scheduled entry inside a wave. Slot codes are stored as
// entered and rendered zero-padded to two digits; routes render upper-case.
type WaveItem struct {
	DriverName string `json:"driverName"`
	Slot       string `json:"slot"`
	Route      string `json:"route"`
	UnitCount  *int   `json:"unitCount,omitempty"`
	Time       string `json:"time,omitempty"`
}

// Wave is an ordered sub-grouping of a shift. Stored order defines waveIndex
// (zero-based) referenced by assistant commands.
type Wave struct {
	Name  string     `json:"name"`
	Time  string     `json:"time,omitempty"`
	Items []WaveItem `json:"items"`
}

// ShiftDoc is one (date, daypart) shift document, id "YYYY-MM-DD_AM".
type ShiftDoc struct {
	Date    string `json:"date"`
	Daypart string `json:"daypart"`
	Waves   []Wave `json:"waves"`
}

// EtaRecord is the latest distance/duration estimate for one driver. Only
// ready records enter a snapshot.
type EtaRecord struct {
	DriverName string  `json:"driverName"`
	Status     string  `json:"status"`
	DistanceKm float64 `json:"distanceKm"`
	EtaMinutes int     `json:"etaMinutes"`
}

// AvailabilityRecord is one driver's availability answer for one date.
type AvailabilityRecord struct {
	Date       string `json:"date"`
	DriverName string `json:"driverName"`
	Status     string `json:"status"`
}

// AttendanceRecord holds days-worked counts for one driver in one calendar
// month, split into the two payroll half-periods.
type AttendanceRecord struct {
	DriverName     string `json:"driverName"`
	Month          int    `json:"month"`
	Year           int    `json:"year"`
	FirstHalfDays  int    `json:"firstHalfDays"`
	SecondHalfDays int    `json:"secondHalfDays"`
}

// ReturnRecord is one parcel-return event for one driver. ParcelIDs may be
// empty, in which case ParcelCount carries the raw count.
type ReturnRecord struct {
	DriverName  string   `json:"driverName"`
	Date        string   `json:"date"`
	Time        string   `json:"time"`
	ParcelIDs   []string `json:"parcelIds,omitempty"`
	ParcelCount int      `json:"parcelCount,omitempty"`
}

// NotificationLogEntry is one sent-notification audit row.
type NotificationLogEntry struct {
	Sender    string `json:"sender"`
	Recipient string `json:"recipient"`
	Body      string `json:"body"`
	SentAt    string `json:"sentAt"`
}

// Count returns the effective parcel count for a return event.
func (r ReturnRecord) Count() int {
	if len(r.ParcelIDs) > 0 {
		return len(r.ParcelIDs)
	}
	return r.ParcelCount
}
