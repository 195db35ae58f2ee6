package store

import (
	"time"

	"github.com/developerKhusanjon/ChocoSlot/internal/domain"
)

// Демонстрационная выборка для пустого хранилища. Включается опцией
// WithSeedData; тесты и дефолтная конфигурация работают без нее.

func seedCakes() []domain.Cake {
	return []domain.Cake{
		{
			ID:          "1",
			Name:        "Chocolate Delight",
			Description: "Rich chocolate cake with ganache",
			Price:       25.99,
			Image:       "https://images.unsplash.com/photo-1578985545062-69928b1d9587?w=400",
			Available:   true,
			Category:    "Chocolate",
		},
		{
			ID:          "2",
			Name:        "Vanilla Dream",
			Description: "Classic vanilla sponge with buttercream",
			Price:       22.99,
			Image:       "https://images.unsplash.com/photo-1464349095431-e9a21285b5f3?w=400",
			Available:   true,
			Category:    "Vanilla",
		},
		{
			ID:          "3",
			Name:        "Strawberry Bliss",
			Description: "Fresh strawberry cake with cream",
			Price:       28.99,
			Image:       "https://images.unsplash.com/photo-1565958011703-44f9829ba187?w=400",
			Available:   true,
			Category:    "Fruit",
		},
		{
			ID:          "4",
			Name:        "Red Velvet",
			Description: "Classic red velvet with cream cheese frosting",
			Price:       26.99,
			Image:       "https://images.unsplash.com/photo-1586985289688-ca3cf47d3e6e?w=400",
			Available:   false,
			Category:    "Special",
		},
	}
}

func seedReservations(today string, now time.Time) []domain.Reservation {
	return []domain.Reservation{
		{
			ID:           "1",
			CustomerName: "Sarah Johnson",
			Contact:      "+1 234 567 8901",
			CakeID:       "1",
			PickupDate:   today,
			PickupTime:   "14:30",
			Quantity:     1,
			Notes:        "Happy Birthday Sarah!",
			Status:       domain.StatusConfirmed,
			CreatedAt:    now,
		},
		{
			ID:           "2",
			CustomerName: "Mike Chen",
			Contact:      "mike@email.com",
			CakeID:       "2",
			PickupDate:   today,
			PickupTime:   "16:00",
			Quantity:     2,
			Status:       domain.StatusPending,
			CreatedAt:    now,
		},
	}
}
