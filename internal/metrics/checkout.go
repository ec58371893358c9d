package metrics

import "github.com/prometheus/client_golang/prometheus"

func init() {
	register(schedulesBuiltTotal, ordersCreatedTotal, smsSentTotal, ordersCacheTotal, notificationsTotal)
}

var (
	schedulesBuiltTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "schedules_built_total",
			Help: "Payment schedules built for the dashboard and confirmation view.",
		},
		[]string{"kind"}, // projected | full | condensed
	)

	ordersCreatedTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "orders_created_total",
			Help: "Orders created through checkout.",
		},
	)

	smsSentTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "sms_codes_total",
			Help: "SMS code send attempts by result.",
		},
		[]string{"result"}, // sent | cooldown | failed
	)

	ordersCacheTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "orders_cache_requests_total",
			Help: "Orders tag cache hits and misses.",
		},
		[]string{"result"},
	)

	notificationsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "notifications_total",
			Help: "User notifications emitted by level.",
		},
		[]string{"level"},
	)
)

func IncScheduleBuilt(kind string) {
	schedulesBuiltTotal.WithLabelValues(norm(kind)).Inc()
}

func IncOrderCreated() {
	ordersCreatedTotal.Inc()
}

func IncSMS(result string) {
	smsSentTotal.WithLabelValues(norm(result)).Inc()
}

func IncOrdersCache(result string) {
	ordersCacheTotal.WithLabelValues(norm(result)).Inc()
}

func IncNotification(level string) {
	notificationsTotal.WithLabelValues(norm(level)).Inc()
}
