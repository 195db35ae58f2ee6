package interfaces

import "context"

// Ключи слотов в постоянном хранилище. Формат значений - JSON,
// совместимый со структурами пакета domain.
const (
	SlotReservations = "reservations"
	SlotCakes        = "cakes"
	SlotDailyStats   = "dailyStats"
)

// Интерфейс постоянного хранилища (Adapter/{sqlite,postgres,redis,memory}).
// Get возвращает ok=false, если ключ отсутствует.
type KeyValueStore interface {
	Get(ctx context.Context, key string) (value string, ok bool, err error)
	Set(ctx context.Context, key, value string) error
	Delete(ctx context.Context, key string) error
	Close() error
}
