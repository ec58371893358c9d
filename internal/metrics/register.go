// Package metrics содержит Prometheus-метрики шлюза.
package metrics

import (
	"strings"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	once       sync.Once
	collectors []prometheus.Collector
)

// register вызывается из init() файлов пакета и ставит коллекторы в очередь на регистрацию.
func register(cs ...prometheus.Collector) {
	collectors = append(collectors, cs...)
}

// MustRegister регистрирует все коллекторы пакета ровно один раз.
func MustRegister() {
	once.Do(func() {
		if len(collectors) > 0 {
			prometheus.MustRegister(collectors...)
		}
	})
}

func norm(s string) string { return strings.ToLower(strings.TrimSpace(s)) }
