package infra

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Исходы попытки входа
const (
	AuthOutcomeSuccess = "success"
	AuthOutcomeFailure = "failure"
	AuthOutcomeError   = "error"
)

type Metrics struct {
	// Latency HTTP по шаблону маршрута (не по сырому пути, чтобы не раздувать кардинальность)
	RequestDuration *prometheus.HistogramVec

	// Попытки входа: success, failure, error
	AuthAttempts *prometheus.CounterVec

	// Мутации учеток администратором и самим пользователем
	IdentityMutations *prometheus.CounterVec
}

func NewMetrics(reg prometheus.Registerer) *Metrics {
	// Null Object: без регистратора пишем в локальный реестр, который никуда не подключен
	if reg == nil {
		reg = prometheus.NewRegistry()
	}

	return &Metrics{
		RequestDuration: promauto.With(reg).NewHistogramVec(prometheus.HistogramOpts{
			Name:    "taskhub_http_request_duration_seconds",
			Help:    "Histogram of HTTP request latencies.",
			Buckets: []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5},
		}, []string{"method", "route", "status"}),

		AuthAttempts: promauto.With(reg).NewCounterVec(prometheus.CounterOpts{
			Name: "taskhub_auth_attempts_total",
			Help: "Total number of login attempts by outcome.",
		}, []string{"outcome"}),

		IdentityMutations: promauto.With(reg).NewCounterVec(prometheus.CounterOpts{
			Name: "taskhub_identity_mutations_total",
			Help: "Total number of identity mutations by operation and result.",
		}, []string{"op", "result"}),
	}
}

// ObserveMutation фиксирует результат мутации учетки
func (m *Metrics) ObserveMutation(op string, err error) {
	if m == nil {
		return
	}
	result := "ok"
	if err != nil {
		result = "error"
	}
	m.IdentityMutations.WithLabelValues(op, result).Inc()
}
