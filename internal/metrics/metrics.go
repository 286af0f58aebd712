package metrics

import "github.com/prometheus/client_golang/prometheus"

var (
	StoreWrites = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "ledger_store_writes_total", Help: "Collection writes by result"},
		[]string{"collection", "result"},
	)
	StoreCorruptLoads = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "ledger_store_corrupt_loads_total", Help: "Collection loads that fell back to empty"},
		[]string{"collection"},
	)
	LedgerOperations = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "ledger_operations_total", Help: "Ledger service operations by outcome"},
		[]string{"operation", "outcome"},
	)
	PointsCredited = prometheus.NewCounter(
		prometheus.CounterOpts{Name: "ledger_points_credited_total", Help: "Volunteer points credited on task acceptance"},
	)
)

func Register() {
	prometheus.MustRegister(StoreWrites, StoreCorruptLoads, LedgerOperations, PointsCredited)
}

// Observe records the outcome of one ledger operation.
func Observe(operation string, err error) {
	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	LedgerOperations.WithLabelValues(operation, outcome).Inc()
}
