package metrics

import "github.com/prometheus/client_golang/prometheus"

func init() {
	register(
		accessChecksTotal,
		accessGrantsIssued,
		accessGrantsDeactivated,
		accessLiveSubscribers,
	)
}

var (
	accessChecksTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "access_checks_total",
			Help: "Entitlement checks by result (granted|denied).",
		},
		[]string{"result"},
	)

	accessGrantsIssued = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "access_grants_issued_total",
			Help: "Access grants created after a successful payment.",
		},
	)

	// source: check|dashboard|sweep
	accessGrantsDeactivated = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "access_grants_deactivated_total",
			Help: "Expired access grants flagged inactive, by the path that noticed them.",
		},
		[]string{"source", "result"},
	)

	accessLiveSubscribers = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "access_live_subscribers",
			Help: "Currently open live access subscriptions.",
		},
	)
)

func IncAccessCheck(granted bool) {
	if granted {
		accessChecksTotal.WithLabelValues("granted").Inc()
		return
	}
	accessChecksTotal.WithLabelValues("denied").Inc()
}

func IncGrantIssued() { accessGrantsIssued.Inc() }

func IncGrantDeactivated(source string, err error) {
	result := "ok"
	if err != nil {
		result = "error"
	}
	accessGrantsDeactivated.WithLabelValues(norm(source), result).Inc()
}

func LiveSubscriberOpened() { accessLiveSubscribers.Inc() }
func LiveSubscriberClosed() { accessLiveSubscribers.Dec() }
