package domain

import (
	"errors"
	"time"
)

// Cake represents a sellable menu entry.
type Cake struct {
	ID          string  `json:"id"`
	Name        string  `json:"name"`
	Description string  `json:"description"`
	Price       float64 `json:"price"`
	Image       string  `json:"image"`
	Available   bool    `json:"available"`
	Category    string  `json:"category"`
	// Status is optional; records written before the lifecycle field
	// existed carry only the availability flag.
	Status          CakeStatus `json:"status,omitempty"`
	StatusUpdatedAt *time.Time `json:"statusUpdatedAt,omitempty"`
}

// EffectiveStatus returns the lifecycle status, derived from the
// availability flag when the status field is absent.
func (c Cake) EffectiveStatus() CakeStatus {
	if c.Status != "" {
		return c.Status
	}
	if c.Available {
		return CakeStatusAvailable
	}
	return CakeStatusOutOfStock
}

// RemovalDue reports whether a removing-from-stock cake has aged out at
// the given instant. Cakes without a status-change timestamp never age.
func (c Cake) RemovalDue(now time.Time) bool {
	if c.Status != CakeStatusRemoving || c.StatusUpdatedAt == nil {
		return false
	}
	return now.Sub(*c.StatusUpdatedAt) >= RemovingRetention
}

var ErrCakeHasActiveReservations = errors.New("cake has active reservations")
