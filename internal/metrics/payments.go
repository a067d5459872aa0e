package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

func init() {
	register(
		paymentVerifyRequests,
		paymentVerifyDuration,
		paymentsTotal,
		paymentsRevenueTotal,
	)
}

var (
	// result: ok|fail
	// reason (fail only): not_configured|gateway_rejected|not_successful|transport|unknown
	paymentVerifyRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "payment_verify_requests_total",
			Help: "Gateway verify-by-reference calls by result and reason.",
		},
		[]string{"result", "reason"},
	)

	paymentVerifyDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "payment_verify_duration_seconds",
			Help:    "Duration of gateway verification calls in seconds.",
			Buckets: []float64{0.025, 0.05, 0.1, 0.25, 0.5, 1, 2, 5},
		},
		[]string{"result"},
	)

	paymentsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "payments_total",
			Help: "Recorded payments by status.",
		},
		[]string{"status"},
	)

	paymentsRevenueTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "payments_revenue_total",
			Help: "Total minor-unit value of successful payments, labeled by currency.",
		},
		[]string{"currency"},
	)
)

// ObserveVerify records one gateway verification. reason is ignored on success.
func ObserveVerify(ok bool, reason string, d time.Duration) {
	result := "ok"
	if !ok {
		result = "fail"
	} else {
		reason = ""
	}
	paymentVerifyRequests.WithLabelValues(result, norm(reason)).Inc()
	paymentVerifyDuration.WithLabelValues(result).Observe(d.Seconds())
}

func IncPayment(status string) {
	paymentsTotal.WithLabelValues(norm(status)).Inc()
}

func AddPaymentRevenue(currency string, amount int64) {
	paymentsRevenueTotal.WithLabelValues(norm(currency)).Add(float64(amount))
}
