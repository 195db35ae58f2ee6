package domain

import (
	"testing"
	"time"
)

func TestLastChangeFallsBackToCreatedAt(t *testing.T) {
	created := time.Date(2024, 6, 1, 10, 0, 0, 0, time.UTC)
	r := Reservation{CreatedAt: created}

	if got := r.LastChange(); !got.Equal(created) {
		t.Errorf("expected createdAt %v, got %v", created, got)
	}

	updated := created.Add(time.Hour)
	r.UpdatedAt = &updated
	if got := r.LastChange(); !got.Equal(updated) {
		t.Errorf("expected updatedAt %v, got %v", updated, got)
	}
}

func TestExpiredAt(t *testing.T) {
	base := time.Date(2024, 6, 1, 10, 0, 0, 0, time.UTC)

	tests := []struct {
		name   string
		status ReservationStatus
		age    time.Duration
		want   bool
	}{
		{"canceled before window", StatusCanceled, 2*time.Minute + 59*time.Second, false},
		{"canceled at window", StatusCanceled, 3 * time.Minute, true},
		{"canceled after window", StatusCanceled, time.Hour, true},
		{"delivered before window", StatusDelivered, 29 * time.Second, false},
		{"delivered at window", StatusDelivered, 30 * time.Second, true},
		{"pending never expires", StatusPending, 24 * time.Hour, false},
		{"confirmed never expires", StatusConfirmed, 24 * time.Hour, false},
		{"completed never expires", StatusCompleted, 24 * time.Hour, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := Reservation{Status: tt.status, CreatedAt: base}
			if got := r.ExpiredAt(base.Add(tt.age)); got != tt.want {
				t.Errorf("ExpiredAt = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestPickupAt(t *testing.T) {
	r := Reservation{PickupDate: "2024-06-01", PickupTime: "14:30"}
	want := time.Date(2024, 6, 1, 14, 30, 0, 0, time.UTC)
	if got := r.PickupAt(); !got.Equal(want) {
		t.Errorf("expected %v, got %v", want, got)
	}

	malformed := Reservation{PickupDate: "tomorrow", PickupTime: "noon"}
	if !malformed.PickupAt().IsZero() {
		t.Error("expected zero time for malformed pickup fields")
	}
}

func TestEffectiveStatus(t *testing.T) {
	tests := []struct {
		name string
		cake Cake
		want CakeStatus
	}{
		{"explicit status wins", Cake{Available: false, Status: CakeStatusRemoving}, CakeStatusRemoving},
		{"derived available", Cake{Available: true}, CakeStatusAvailable},
		{"derived out of stock", Cake{Available: false}, CakeStatusOutOfStock},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.cake.EffectiveStatus(); got != tt.want {
				t.Errorf("EffectiveStatus = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestRemovalDue(t *testing.T) {
	base := time.Date(2024, 6, 1, 10, 0, 0, 0, time.UTC)

	c := Cake{Status: CakeStatusRemoving, StatusUpdatedAt: &base}
	if c.RemovalDue(base.Add(2 * time.Minute)) {
		t.Error("cake should not be due before the retention window")
	}
	if !c.RemovalDue(base.Add(3 * time.Minute)) {
		t.Error("cake should be due at the retention window")
	}

	noTimestamp := Cake{Status: CakeStatusRemoving}
	if noTimestamp.RemovalDue(base.Add(time.Hour)) {
		t.Error("cake without status timestamp must never be due")
	}

	available := Cake{Status: CakeStatusAvailable, StatusUpdatedAt: &base}
	if available.RemovalDue(base.Add(time.Hour)) {
		t.Error("available cake must never be due")
	}
}

func TestComputeDailyStats(t *testing.T) {
	today := "2024-06-01"
	reservations := []Reservation{
		{PickupDate: today, Status: StatusPending},
		{PickupDate: today, Status: StatusConfirmed},
		{PickupDate: "2024-06-02", Status: StatusConfirmed},
		{PickupDate: "2024-05-30", Status: StatusCanceled},
		{PickupDate: today, Status: StatusCanceled},
		{PickupDate: "2024-06-03", Status: StatusDelivered},
	}

	stats := ComputeDailyStats(today, reservations)

	if stats.Date != today {
		t.Errorf("expected date %s, got %s", today, stats.Date)
	}
	if stats.Today != 3 {
		t.Errorf("expected 3 pickups today, got %d", stats.Today)
	}
	if stats.Pending != 1 {
		t.Errorf("expected 1 pending, got %d", stats.Pending)
	}
	if stats.Confirmed != 2 {
		t.Errorf("expected 2 confirmed, got %d", stats.Confirmed)
	}
	// canceled counts across all dates
	if stats.Canceled != 2 {
		t.Errorf("expected 2 canceled, got %d", stats.Canceled)
	}
}

func TestStatusValid(t *testing.T) {
	for _, s := range []ReservationStatus{StatusPending, StatusConfirmed, StatusCompleted, StatusCanceled, StatusDelivered} {
		if !s.Valid() {
			t.Errorf("expected %q to be valid", s)
		}
	}
	if ReservationStatus("shipped").Valid() {
		t.Error("expected unknown status to be invalid")
	}
	if !StatusCompleted.Active() {
		t.Error("completed reservations still hold the cake")
	}
	if StatusCanceled.Active() {
		t.Error("canceled reservations release the cake")
	}
}
