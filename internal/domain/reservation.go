package domain

import "time"

// Layouts for the pickup fields. Dates and times are stored as plain
// strings so they round-trip through JSON unchanged.
const (
	DateLayout = "2006-01-02"
	TimeLayout = "15:04"
)

// Retention windows for the background sweeps.
const (
	CanceledRetention  = 3 * time.Minute
	DeliveredRetention = 30 * time.Second
	RemovingRetention  = 3 * time.Minute
)

// Reservation represents a customer's order for a cake with a pickup slot.
type Reservation struct {
	ID           string            `json:"id"`
	CustomerName string            `json:"customerName"`
	Contact      string            `json:"contact"`
	CakeID       string            `json:"cakeId"`
	PickupDate   string            `json:"pickupDate"`
	PickupTime   string            `json:"pickupTime"`
	Quantity     int               `json:"quantity"`
	Notes        string            `json:"notes,omitempty"`
	Status       ReservationStatus `json:"status"`
	CreatedAt    time.Time         `json:"createdAt"`
	UpdatedAt    *time.Time        `json:"updatedAt,omitempty"`
}

// LastChange returns the instant expiry is measured from: the last
// update if the reservation was ever updated, creation time otherwise.
func (r Reservation) LastChange() time.Time {
	if r.UpdatedAt != nil {
		return *r.UpdatedAt
	}
	return r.CreatedAt
}

// ExpiredAt reports whether a sweep running at the given instant should
// remove the reservation. Canceled reservations age out after three
// minutes, delivered ones after thirty seconds; every other status is
// kept indefinitely.
func (r Reservation) ExpiredAt(now time.Time) bool {
	switch r.Status {
	case StatusCanceled:
		return now.Sub(r.LastChange()) >= CanceledRetention
	case StatusDelivered:
		return now.Sub(r.LastChange()) >= DeliveredRetention
	}
	return false
}

// PickupAt combines the pickup date and time into a single instant for
// sorting. The zero time is returned for malformed fields so such
// records sort first rather than failing the query.
func (r Reservation) PickupAt() time.Time {
	t, err := time.Parse(DateLayout+"T"+TimeLayout, r.PickupDate+"T"+r.PickupTime)
	if err != nil {
		return time.Time{}
	}
	return t
}
