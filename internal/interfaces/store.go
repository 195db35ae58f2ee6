package interfaces

import (
	"context"

	"github.com/developerKhusanjon/ChocoSlot/internal/domain"
)

// Команды для сервисов
type AddReservationCommand struct {
	CustomerName string
	Contact      string
	CakeID       string
	PickupDate   string
	PickupTime   string
	Quantity     int
	Notes        string
	Status       domain.ReservationStatus // пустое значение = pending
}

type AddCakeCommand struct {
	Name        string
	Description string
	Price       float64
	Image       string
	Available   bool
	Category    string
	Status      domain.CakeStatus
}

// Частичные обновления: nil-поле остается без изменений
type ReservationPatch struct {
	CustomerName *string
	Contact      *string
	CakeID       *string
	PickupDate   *string
	PickupTime   *string
	Quantity     *int
	Notes        *string
	Status       *domain.ReservationStatus
}

type CakePatch struct {
	Name        *string
	Description *string
	Price       *float64
	Image       *string
	Available   *bool
	Category    *string
	Status      *domain.CakeStatus
}

// Резервация вместе с тортом, на который она ссылается.
// Cake == nil, если торт был удален (висячая ссылка - не ошибка).
type ReservationWithCake struct {
	Reservation domain.Reservation
	Cake        *domain.Cake
}

// Интерфейс доменного стора (Business Logic)
type Store interface {
	// Load выполняет три чтения из хранилища и инициализирует
	// коллекции; до его завершения Loaded() == false.
	Load(ctx context.Context) error
	Loaded() bool

	AddReservation(cmd AddReservationCommand) domain.Reservation
	UpdateReservation(id string, patch ReservationPatch) error
	DeleteReservation(id string)
	AddCake(cmd AddCakeCommand) domain.Cake
	UpdateCake(id string, patch CakePatch) error
	DeleteCake(id string)

	Reservations() []domain.Reservation
	Cakes() []domain.Cake
	Stats() domain.DailyStats
	TodayReservations() []domain.Reservation
	ReservationWithCake(r domain.Reservation) ReservationWithCake

	Subscribe() (<-chan ChangeEvent, func())
}
