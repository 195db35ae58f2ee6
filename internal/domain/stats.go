package domain

// DailyStats is the derived same-day aggregate of reservation counts.
// Today, pending and confirmed are literal filters over the current
// collection; canceled counts canceled reservations across all dates.
type DailyStats struct {
	Date      string `json:"date"`
	Canceled  int    `json:"canceled"`
	Today     int    `json:"today"`
	Pending   int    `json:"pending"`
	Confirmed int    `json:"confirmed"`
}

// ComputeDailyStats recounts the aggregate for the given calendar date.
func ComputeDailyStats(date string, reservations []Reservation) DailyStats {
	stats := DailyStats{Date: date}
	for _, r := range reservations {
		if r.PickupDate == date {
			stats.Today++
		}
		switch r.Status {
		case StatusPending:
			stats.Pending++
		case StatusConfirmed:
			stats.Confirmed++
		case StatusCanceled:
			stats.Canceled++
		}
	}
	return stats
}
