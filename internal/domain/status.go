package domain

type ReservationStatus string

const (
	StatusPending   ReservationStatus = "pending"
	StatusConfirmed ReservationStatus = "confirmed"
	StatusCompleted ReservationStatus = "completed"
	StatusCanceled  ReservationStatus = "canceled"
	StatusDelivered ReservationStatus = "delivered"
)

// Valid reports whether s is one of the known reservation statuses.
func (s ReservationStatus) Valid() bool {
	switch s {
	case StatusPending, StatusConfirmed, StatusCompleted, StatusCanceled, StatusDelivered:
		return true
	}
	return false
}

// Active reports whether a reservation in this status still ties up the
// cake it references. Only canceled reservations release the cake.
func (s ReservationStatus) Active() bool {
	return s != StatusCanceled
}

type CakeStatus string

const (
	CakeStatusAvailable  CakeStatus = "available"
	CakeStatusOutOfStock CakeStatus = "out-of-stock"
	CakeStatusRemoving   CakeStatus = "removing-from-stock"
)

// Valid reports whether s is one of the known cake statuses.
func (s CakeStatus) Valid() bool {
	switch s {
	case CakeStatusAvailable, CakeStatusOutOfStock, CakeStatusRemoving:
		return true
	}
	return false
}
