package store

import (
	"context"
	"encoding/json"
	"sort"
	"strconv"
	"sync"
	"time"

	"github.com/developerKhusanjon/ChocoSlot/internal/adapter/logger"
	"github.com/developerKhusanjon/ChocoSlot/internal/domain"
	"github.com/developerKhusanjon/ChocoSlot/internal/interfaces"
)

// Проверка контракта на этапе компиляции
var _ interfaces.Store = (*Service)(nil)

// Metrics получает срез агрегатов после каждого пересчета.
type Metrics interface {
	Observe(stats domain.DailyStats, reservations, cakes int)
}

const persistTimeout = 5 * time.Second

// Service - доменный стор: коллекции в памяти, производная статистика
// и зеркалирование каждой мутации в постоянное хранилище. Мутации
// синхронны; запись в хранилище fire-and-forget.
type Service struct {
	kv     interfaces.KeyValueStore
	logger logger.Logger

	mu           sync.Mutex
	reservations []domain.Reservation
	cakes        []domain.Cake
	stats        domain.DailyStats
	loaded       bool
	lastID       int64

	now     func() time.Time
	seed    bool
	metrics Metrics

	// Запись каждого слота сериализована собственным мьютексом:
	// отставшая ранняя запись не может затереть более позднюю,
	// потому что снапшот берется уже под slot-мьютексом.
	writeMu map[string]*sync.Mutex
	writeWG sync.WaitGroup

	subMu   sync.Mutex
	subs    map[int]chan interfaces.ChangeEvent
	nextSub int
}

type Option func(*Service)

// WithSeedData включает загрузку демонстрационной выборки, когда слоты
// хранилища пусты или не читаются.
func WithSeedData() Option {
	return func(s *Service) { s.seed = true }
}

// WithClock подменяет источник времени; используется в тестах.
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

func WithMetrics(m Metrics) Option {
	return func(s *Service) { s.metrics = m }
}

func New(kv interfaces.KeyValueStore, lgr logger.Logger, opts ...Option) *Service {
	s := &Service{
		kv:     kv,
		logger: lgr,
		now:    time.Now,
		writeMu: map[string]*sync.Mutex{
			interfaces.SlotReservations: {},
			interfaces.SlotCakes:        {},
			interfaces.SlotDailyStats:   {},
		},
		subs: make(map[int]chan interfaces.ChangeEvent),
	}
	for _, o := range opts {
		o(s)
	}
	return s
}

// Load читает три слота, инициализирует коллекции и пересчитывает
// статистику. Сбой чтения или битые данные не являются ошибкой:
// коллекция откатывается к дефолту. Load возвращает ошибку только при
// отмене контекста.
func (s *Service) Load(ctx context.Context) error {
	var (
		wg       sync.WaitGroup
		raws     [3]string
		oks      [3]bool
		readErrs [3]error
	)
	slots := [3]string{interfaces.SlotReservations, interfaces.SlotCakes, interfaces.SlotDailyStats}
	wg.Add(len(slots))
	for i, slot := range slots {
		go func(i int, slot string) {
			defer wg.Done()
			raws[i], oks[i], readErrs[i] = s.kv.Get(ctx, slot)
		}(i, slot)
	}
	wg.Wait()

	if err := ctx.Err(); err != nil {
		return err
	}
	for i, err := range readErrs {
		if err != nil {
			s.logger.Warn("load_read_failed", "Falling back to defaults for slot", "", map[string]interface{}{
				"slot":  slots[i],
				"error": err.Error(),
			})
		}
	}

	s.mu.Lock()
	now := s.now()
	today := now.Format(domain.DateLayout)

	s.reservations = nil
	if oks[0] && readErrs[0] == nil {
		if err := json.Unmarshal([]byte(raws[0]), &s.reservations); err != nil {
			s.logger.Warn("load_decode_failed", "Stored reservations are malformed", "", map[string]interface{}{"error": err.Error()})
			s.reservations = nil
		}
	}
	if s.reservations == nil && s.seed {
		s.reservations = seedReservations(today, now)
	}

	s.cakes = nil
	if oks[1] && readErrs[1] == nil {
		if err := json.Unmarshal([]byte(raws[1]), &s.cakes); err != nil {
			s.logger.Warn("load_decode_failed", "Stored cakes are malformed", "", map[string]interface{}{"error": err.Error()})
			s.cakes = nil
		}
	}
	if s.cakes == nil && s.seed {
		s.cakes = seedCakes()
	}

	// Статистика: чужая дата сбрасывается, затем в любом случае идет
	// пересчет от загруженных резерваций (событие load-completion).
	var stored domain.DailyStats
	if oks[2] && readErrs[2] == nil {
		if err := json.Unmarshal([]byte(raws[2]), &stored); err != nil {
			s.logger.Warn("load_decode_failed", "Stored daily stats are malformed", "", map[string]interface{}{"error": err.Error()})
			stored = domain.DailyStats{}
		}
	}
	if stored.Date != today {
		s.stats = domain.DailyStats{Date: today}
	} else {
		s.stats = stored
	}
	s.recomputeStatsLocked()
	s.loaded = true
	s.mu.Unlock()

	// Сброс/пересчет статистики persist-ится сразу, не дожидаясь
	// следующей мутации.
	s.persistSlot(ctx, interfaces.SlotDailyStats)

	s.logger.Info("store_loaded", "Collections loaded from storage", "", map[string]interface{}{
		"reservations": len(s.Reservations()),
		"cakes":        len(s.Cakes()),
	})
	s.notify(interfaces.ChangeEvent{Kind: interfaces.ChangeReservations})
	s.notify(interfaces.ChangeEvent{Kind: interfaces.ChangeCakes})
	s.notify(interfaces.ChangeEvent{Kind: interfaces.ChangeStats})
	return nil
}

func (s *Service) Loaded() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.loaded
}

// --- Мутации ---

func (s *Service) AddReservation(cmd interfaces.AddReservationCommand) domain.Reservation {
	s.mu.Lock()
	now := s.now()
	status := cmd.Status
	if status == "" {
		status = domain.StatusPending
	}
	r := domain.Reservation{
		ID:           s.newIDLocked(),
		CustomerName: cmd.CustomerName,
		Contact:      cmd.Contact,
		CakeID:       cmd.CakeID,
		PickupDate:   cmd.PickupDate,
		PickupTime:   cmd.PickupTime,
		Quantity:     cmd.Quantity,
		Notes:        cmd.Notes,
		Status:       status,
		CreatedAt:    now,
	}
	s.reservations = append(s.reservations, r)
	s.recomputeStatsLocked()
	s.mu.Unlock()

	s.writeThrough(interfaces.SlotReservations)
	s.writeThrough(interfaces.SlotDailyStats)
	s.notify(interfaces.ChangeEvent{Kind: interfaces.ChangeReservations, ID: r.ID})
	s.notify(interfaces.ChangeEvent{Kind: interfaces.ChangeStats})
	return r
}

func (s *Service) UpdateReservation(id string, patch interfaces.ReservationPatch) error {
	s.mu.Lock()
	idx := s.reservationIndexLocked(id)
	if idx < 0 {
		s.mu.Unlock()
		return nil // тихий no-op: вызывающий не отличает "не найдено" от успеха
	}
	r := &s.reservations[idx]

	// Подтвержденная резервация принимает только смену статуса;
	// остальные поля патча отбрасываются.
	locked := r.Status == domain.StatusConfirmed
	dropped := false
	applied := false
	if locked {
		dropped = patch.CustomerName != nil || patch.Contact != nil || patch.CakeID != nil ||
			patch.PickupDate != nil || patch.PickupTime != nil || patch.Quantity != nil || patch.Notes != nil
	} else {
		if patch.CustomerName != nil {
			r.CustomerName = *patch.CustomerName
			applied = true
		}
		if patch.Contact != nil {
			r.Contact = *patch.Contact
			applied = true
		}
		if patch.CakeID != nil {
			r.CakeID = *patch.CakeID
			applied = true
		}
		if patch.PickupDate != nil {
			r.PickupDate = *patch.PickupDate
			applied = true
		}
		if patch.PickupTime != nil {
			r.PickupTime = *patch.PickupTime
			applied = true
		}
		if patch.Quantity != nil {
			r.Quantity = *patch.Quantity
			applied = true
		}
		if patch.Notes != nil {
			r.Notes = *patch.Notes
			applied = true
		}
	}
	if patch.Status != nil {
		r.Status = *patch.Status
		applied = true
	}
	// Полностью отброшенный патч записи не меняет; штамповать updatedAt
	// нечем, иначе он сдвинул бы точку отсчета окна зачистки.
	if applied {
		now := s.now()
		r.UpdatedAt = &now
		s.recomputeStatsLocked()
	}
	s.mu.Unlock()

	if dropped {
		s.logger.Warn("reservation_locked", "Confirmed reservation accepts only status changes", "", map[string]interface{}{"id": id})
	}
	if !applied {
		return nil
	}
	s.writeThrough(interfaces.SlotReservations)
	s.writeThrough(interfaces.SlotDailyStats)
	s.notify(interfaces.ChangeEvent{Kind: interfaces.ChangeReservations, ID: id})
	s.notify(interfaces.ChangeEvent{Kind: interfaces.ChangeStats})
	return nil
}

func (s *Service) DeleteReservation(id string) {
	s.mu.Lock()
	idx := s.reservationIndexLocked(id)
	if idx < 0 {
		s.mu.Unlock()
		return
	}
	s.reservations = append(s.reservations[:idx], s.reservations[idx+1:]...)
	s.recomputeStatsLocked()
	s.mu.Unlock()

	s.writeThrough(interfaces.SlotReservations)
	s.writeThrough(interfaces.SlotDailyStats)
	s.notify(interfaces.ChangeEvent{Kind: interfaces.ChangeReservations, ID: id})
	s.notify(interfaces.ChangeEvent{Kind: interfaces.ChangeStats})
}

func (s *Service) AddCake(cmd interfaces.AddCakeCommand) domain.Cake {
	s.mu.Lock()
	c := domain.Cake{
		ID:          s.newIDLocked(),
		Name:        cmd.Name,
		Description: cmd.Description,
		Price:       cmd.Price,
		Image:       cmd.Image,
		Available:   cmd.Available,
		Category:    cmd.Category,
		Status:      cmd.Status,
	}
	if c.Status == domain.CakeStatusRemoving {
		now := s.now()
		c.StatusUpdatedAt = &now
	}
	s.cakes = append(s.cakes, c)
	s.updateMetricsLocked()
	s.mu.Unlock()

	s.writeThrough(interfaces.SlotCakes)
	s.notify(interfaces.ChangeEvent{Kind: interfaces.ChangeCakes, ID: c.ID})
	return c
}

func (s *Service) UpdateCake(id string, patch interfaces.CakePatch) error {
	s.mu.Lock()
	idx := s.cakeIndexLocked(id)
	if idx < 0 {
		s.mu.Unlock()
		return nil
	}
	c := &s.cakes[idx]

	// Переход в removing-from-stock допустим только без активных
	// (не отмененных) резерваций на этот торт.
	if patch.Status != nil && *patch.Status == domain.CakeStatusRemoving && c.Status != domain.CakeStatusRemoving {
		if n := s.activeReservationsLocked(id); n > 0 {
			s.mu.Unlock()
			s.logger.Warn("cake_removal_rejected", "Cake still has active reservations", "", map[string]interface{}{
				"id":           id,
				"reservations": n,
			})
			return domain.ErrCakeHasActiveReservations
		}
	}

	if patch.Name != nil {
		c.Name = *patch.Name
	}
	if patch.Description != nil {
		c.Description = *patch.Description
	}
	if patch.Price != nil {
		c.Price = *patch.Price
	}
	if patch.Image != nil {
		c.Image = *patch.Image
	}
	if patch.Available != nil {
		c.Available = *patch.Available
	}
	if patch.Category != nil {
		c.Category = *patch.Category
	}
	if patch.Status != nil {
		c.Status = *patch.Status
		if c.Status == domain.CakeStatusRemoving {
			now := s.now()
			c.StatusUpdatedAt = &now
		} else {
			c.StatusUpdatedAt = nil
		}
	}
	s.mu.Unlock()

	s.writeThrough(interfaces.SlotCakes)
	s.notify(interfaces.ChangeEvent{Kind: interfaces.ChangeCakes, ID: id})
	return nil
}

func (s *Service) DeleteCake(id string) {
	s.mu.Lock()
	idx := s.cakeIndexLocked(id)
	if idx < 0 {
		s.mu.Unlock()
		return
	}
	s.cakes = append(s.cakes[:idx], s.cakes[idx+1:]...)
	s.updateMetricsLocked()
	s.mu.Unlock()

	s.writeThrough(interfaces.SlotCakes)
	s.notify(interfaces.ChangeEvent{Kind: interfaces.ChangeCakes, ID: id})
}

// --- Запросы ---

func (s *Service) Reservations() []domain.Reservation {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]domain.Reservation(nil), s.reservations...)
}

func (s *Service) Cakes() []domain.Cake {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]domain.Cake(nil), s.cakes...)
}

func (s *Service) Stats() domain.DailyStats {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.stats
}

// TodayReservations возвращает сегодняшние резервации, отсортированные
// по времени самовывоза; равные времена сохраняют порядок вставки.
func (s *Service) TodayReservations() []domain.Reservation {
	s.mu.Lock()
	today := s.now().Format(domain.DateLayout)
	var out []domain.Reservation
	for _, r := range s.reservations {
		if r.PickupDate == today {
			out = append(out, r)
		}
	}
	s.mu.Unlock()

	sort.SliceStable(out, func(i, j int) bool {
		return out[i].PickupAt().Before(out[j].PickupAt())
	})
	return out
}

// ReservationWithCake дополняет резервацию тортом, на который она
// ссылается; для висячей ссылки Cake == nil.
func (s *Service) ReservationWithCake(r domain.Reservation) interfaces.ReservationWithCake {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.cakes {
		if s.cakes[i].ID == r.CakeID {
			c := s.cakes[i]
			return interfaces.ReservationWithCake{Reservation: r, Cake: &c}
		}
	}
	return interfaces.ReservationWithCake{Reservation: r}
}

// --- Зачистки ---

// SweepCanceled удаляет отмененные резервации старше трех минут.
func (s *Service) SweepCanceled() int {
	return s.sweepReservations("canceled_sweep", domain.StatusCanceled)
}

// SweepDelivered удаляет доставленные резервации старше тридцати секунд.
func (s *Service) SweepDelivered() int {
	return s.sweepReservations("delivered_sweep", domain.StatusDelivered)
}

func (s *Service) sweepReservations(action string, status domain.ReservationStatus) int {
	s.mu.Lock()
	now := s.now()
	var kept []domain.Reservation
	removed := 0
	for _, r := range s.reservations {
		if r.Status == status && r.ExpiredAt(now) {
			removed++
			continue
		}
		kept = append(kept, r)
	}
	if removed == 0 {
		s.mu.Unlock()
		return 0
	}
	s.reservations = kept
	s.recomputeStatsLocked()
	s.mu.Unlock()

	s.logger.Info(action, "Expired reservations removed", "", map[string]interface{}{"removed": removed})
	s.writeThrough(interfaces.SlotReservations)
	s.writeThrough(interfaces.SlotDailyStats)
	s.notify(interfaces.ChangeEvent{Kind: interfaces.ChangeReservations})
	s.notify(interfaces.ChangeEvent{Kind: interfaces.ChangeStats})
	return removed
}

// SweepCakes удаляет торты, пробывшие в removing-from-stock дольше трех минут.
func (s *Service) SweepCakes() int {
	s.mu.Lock()
	now := s.now()
	var kept []domain.Cake
	removed := 0
	for _, c := range s.cakes {
		if c.RemovalDue(now) {
			removed++
			continue
		}
		kept = append(kept, c)
	}
	if removed == 0 {
		s.mu.Unlock()
		return 0
	}
	s.cakes = kept
	s.updateMetricsLocked()
	s.mu.Unlock()

	s.logger.Info("cake_sweep", "Expired cakes removed", "", map[string]interface{}{"removed": removed})
	s.writeThrough(interfaces.SlotCakes)
	s.notify(interfaces.ChangeEvent{Kind: interfaces.ChangeCakes})
	return removed
}

// --- Подписки ---

// Subscribe возвращает канал событий изменений и функцию отписки.
// Медленный подписчик теряет события, но никогда не блокирует стор.
func (s *Service) Subscribe() (<-chan interfaces.ChangeEvent, func()) {
	s.subMu.Lock()
	defer s.subMu.Unlock()
	id := s.nextSub
	s.nextSub++
	ch := make(chan interfaces.ChangeEvent, 16)
	s.subs[id] = ch
	return ch, func() {
		s.subMu.Lock()
		defer s.subMu.Unlock()
		if c, ok := s.subs[id]; ok {
			delete(s.subs, id)
			close(c)
		}
	}
}

func (s *Service) notify(ev interfaces.ChangeEvent) {
	s.subMu.Lock()
	defer s.subMu.Unlock()
	for _, ch := range s.subs {
		select {
		case ch <- ev:
		default:
		}
	}
}

// Flush дожидается завершения всех запущенных write-through записей.
func (s *Service) Flush() {
	s.writeWG.Wait()
}

// --- Внутреннее ---

func (s *Service) reservationIndexLocked(id string) int {
	for i := range s.reservations {
		if s.reservations[i].ID == id {
			return i
		}
	}
	return -1
}

func (s *Service) cakeIndexLocked(id string) int {
	for i := range s.cakes {
		if s.cakes[i].ID == id {
			return i
		}
	}
	return -1
}

func (s *Service) activeReservationsLocked(cakeID string) int {
	n := 0
	for _, r := range s.reservations {
		if r.CakeID == cakeID && r.Status.Active() {
			n++
		}
	}
	return n
}

// newIDLocked выдает идентификатор из текущего момента времени.
// Монотонный счетчик исключает дубликаты при выдаче в один наносекундный тик.
func (s *Service) newIDLocked() string {
	id := s.now().UnixNano()
	if id <= s.lastID {
		id = s.lastID + 1
	}
	s.lastID = id
	return strconv.FormatInt(id, 10)
}

func (s *Service) recomputeStatsLocked() {
	today := s.now().Format(domain.DateLayout)
	s.stats = domain.ComputeDailyStats(today, s.reservations)
	s.updateMetricsLocked()
}

func (s *Service) updateMetricsLocked() {
	if s.metrics != nil {
		s.metrics.Observe(s.stats, len(s.reservations), len(s.cakes))
	}
}

// writeThrough зеркалирует актуальный снапшот слота, не блокируя
// вызывающего. Ошибка записи логируется; мутация в памяти остается в силе.
func (s *Service) writeThrough(slot string) {
	s.writeWG.Add(1)
	go func() {
		defer s.writeWG.Done()
		ctx, cancel := context.WithTimeout(context.Background(), persistTimeout)
		defer cancel()
		s.persistSlot(ctx, slot)
	}()
}

func (s *Service) persistSlot(ctx context.Context, slot string) {
	mu := s.writeMu[slot]
	mu.Lock()
	defer mu.Unlock()

	payload, err := s.encodeSlot(slot)
	if err != nil {
		s.logger.Error("persist_encode_failed", "Failed to encode slot", "", map[string]interface{}{"slot": slot}, err)
		return
	}
	if err := s.kv.Set(ctx, slot, payload); err != nil {
		s.logger.Error("persist_failed", "Failed to write slot", "", map[string]interface{}{"slot": slot}, err)
	}
}

func (s *Service) encodeSlot(slot string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var v interface{}
	switch slot {
	case interfaces.SlotReservations:
		if s.reservations == nil {
			v = []domain.Reservation{}
		} else {
			v = s.reservations
		}
	case interfaces.SlotCakes:
		if s.cakes == nil {
			v = []domain.Cake{}
		} else {
			v = s.cakes
		}
	case interfaces.SlotDailyStats:
		v = s.stats
	}

	b, err := json.Marshal(v)
	if err != nil {
		return "", err
	}
	return string(b), nil
}
