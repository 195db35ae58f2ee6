package sweeper

import (
	"context"
	"sync"
	"time"

	"github.com/developerKhusanjon/ChocoSlot/internal/adapter/logger"
)

// Sweeps - подмножество стора, нужное зачисткам.
type Sweeps interface {
	SweepCanceled() int
	SweepDelivered() int
	SweepCakes() int
}

// Sweeper гоняет три независимые периодические зачистки. Точность не
// требуется: окна допусков измеряются минутами, поэтому обычный опрос
// по тикеру достаточен.
type Sweeper struct {
	store  Sweeps
	logger logger.Logger

	canceledEvery  time.Duration
	deliveredEvery time.Duration
	cakesEvery     time.Duration

	cancel context.CancelFunc
	wg     sync.WaitGroup
}

func New(store Sweeps, lgr logger.Logger, canceledEvery, deliveredEvery, cakesEvery time.Duration) *Sweeper {
	return &Sweeper{
		store:          store,
		logger:         lgr,
		canceledEvery:  canceledEvery,
		deliveredEvery: deliveredEvery,
		cakesEvery:     cakesEvery,
	}
}

func (s *Sweeper) Start(ctx context.Context) error {
	ctx, s.cancel = context.WithCancel(ctx)

	s.wg.Add(3)
	go s.loop(ctx, "canceled_sweep", s.canceledEvery, s.store.SweepCanceled)
	go s.loop(ctx, "delivered_sweep", s.deliveredEvery, s.store.SweepDelivered)
	go s.loop(ctx, "cake_sweep", s.cakesEvery, s.store.SweepCakes)

	s.logger.Info("sweeper_started", "Expiry sweeps running", "", map[string]interface{}{
		"canceled_every":  s.canceledEvery.String(),
		"delivered_every": s.deliveredEvery.String(),
		"cakes_every":     s.cakesEvery.String(),
	})
	return nil
}

func (s *Sweeper) loop(ctx context.Context, action string, every time.Duration, sweep func() int) {
	defer s.wg.Done()

	ticker := time.NewTicker(every)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if n := sweep(); n > 0 {
				s.logger.Debug(action, "Sweep pass removed expired records", "", map[string]interface{}{"removed": n})
			}
		}
	}
}

// Shutdown останавливает тикеры и дожидается выхода всех циклов, чтобы
// зачистки не работали по уже закрытому стору.
func (s *Sweeper) Shutdown(ctx context.Context) error {
	if s.cancel != nil {
		s.cancel()
	}

	done := make(chan struct{})
	go func() {
		s.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
