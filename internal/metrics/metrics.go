package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/developerKhusanjon/ChocoSlot/internal/domain"
)

// Recorder выставляет агрегаты стора в Prometheus-гейджи. Обновляется
// стором после каждого пересчета статистики.
type Recorder struct {
	todayPickups prometheus.Gauge
	pending      prometheus.Gauge
	confirmed    prometheus.Gauge
	canceled     prometheus.Gauge
	reservations prometheus.Gauge
	cakes        prometheus.Gauge
}

func NewRecorder(reg prometheus.Registerer) *Recorder {
	f := promauto.With(reg)
	return &Recorder{
		todayPickups: f.NewGauge(prometheus.GaugeOpts{
			Namespace: "chocoslot",
			Name:      "today_pickups",
			Help:      "Reservations with a pickup date of today.",
		}),
		pending: f.NewGauge(prometheus.GaugeOpts{
			Namespace: "chocoslot",
			Name:      "pending_reservations",
			Help:      "Reservations currently pending.",
		}),
		confirmed: f.NewGauge(prometheus.GaugeOpts{
			Namespace: "chocoslot",
			Name:      "confirmed_reservations",
			Help:      "Reservations currently confirmed.",
		}),
		canceled: f.NewGauge(prometheus.GaugeOpts{
			Namespace: "chocoslot",
			Name:      "canceled_reservations",
			Help:      "Canceled reservations not yet swept.",
		}),
		reservations: f.NewGauge(prometheus.GaugeOpts{
			Namespace: "chocoslot",
			Name:      "reservations_total",
			Help:      "Size of the reservation collection.",
		}),
		cakes: f.NewGauge(prometheus.GaugeOpts{
			Namespace: "chocoslot",
			Name:      "cakes_total",
			Help:      "Size of the cake collection.",
		}),
	}
}

func (r *Recorder) Observe(stats domain.DailyStats, reservations, cakes int) {
	r.todayPickups.Set(float64(stats.Today))
	r.pending.Set(float64(stats.Pending))
	r.confirmed.Set(float64(stats.Confirmed))
	r.canceled.Set(float64(stats.Canceled))
	r.reservations.Set(float64(reservations))
	r.cakes.Set(float64(cakes))
}
