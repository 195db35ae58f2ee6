package interfaces

// События изменений стора. Доставляются подписчикам внутри процесса;
// внешнего брокера в системе нет.
type ChangeKind string

const (
	ChangeReservations ChangeKind = "reservations"
	ChangeCakes        ChangeKind = "cakes"
	ChangeStats        ChangeKind = "dailyStats"
)

type ChangeEvent struct {
	Kind ChangeKind
	// ID затронутой записи; пустой для массовых изменений (sweep, load).
	ID string
}
