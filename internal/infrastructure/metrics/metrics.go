package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/shopspring/decimal"
)

// Metrics holds all Prometheus metrics
type Metrics struct {
	// Fund metrics
	FundsCreated       prometheus.Counter
	InvestorsOnboarded prometheus.Counter

	// Capital call metrics
	CapitalCallsIssued  prometheus.Counter
	CapitalCalledAmount prometheus.Histogram
	CapitalCallDuration prometheus.Histogram

	// Distribution metrics
	DistributionsExecuted prometheus.Counter
	DistributedProceeds   prometheus.Histogram
	CarryAmount           prometheus.Histogram
	WaterfallDuration     prometheus.Histogram

	// Attribution metrics
	AttributionCache *prometheus.CounterVec

	// Outbox metrics
	EventsPublished *prometheus.CounterVec

	// API metrics
	HTTPRequests *prometheus.CounterVec
	HTTPDuration *prometheus.HistogramVec
	HTTPInFlight prometheus.Gauge

	// Database metrics
	DBErrors *prometheus.CounterVec
}

var amountBuckets = []float64{1e3, 1e4, 1e5, 1e6, 1e7, 1e8, 1e9}

// New creates all metrics and registers them with reg.
func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)

	return &Metrics{
		// Fund metrics
		FundsCreated: factory.NewCounter(prometheus.CounterOpts{
			Name: "fundflow_funds_created_total",
			Help: "Total number of funds created",
		}),
		InvestorsOnboarded: factory.NewCounter(prometheus.CounterOpts{
			Name: "fundflow_investors_onboarded_total",
			Help: "Total number of investors onboarded",
		}),

		// Capital call metrics
		CapitalCallsIssued: factory.NewCounter(prometheus.CounterOpts{
			Name: "fundflow_capital_calls_issued_total",
			Help: "Total number of capital calls issued",
		}),
		CapitalCalledAmount: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "fundflow_capital_call_amount",
			Help:    "Capital call amounts",
			Buckets: amountBuckets,
		}),
		CapitalCallDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "fundflow_capital_call_duration_seconds",
			Help:    "Duration of capital call issuance",
			Buckets: prometheus.DefBuckets,
		}),

		// Distribution metrics
		DistributionsExecuted: factory.NewCounter(prometheus.CounterOpts{
			Name: "fundflow_distributions_executed_total",
			Help: "Total number of distributions executed",
		}),
		DistributedProceeds: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "fundflow_distribution_proceeds",
			Help:    "Proceeds run through the waterfall",
			Buckets: amountBuckets,
		}),
		CarryAmount: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "fundflow_distribution_carry_amount",
			Help:    "Manager carry paid per distribution",
			Buckets: amountBuckets,
		}),
		WaterfallDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "fundflow_distribution_duration_seconds",
			Help:    "Duration of distribution execution",
			Buckets: prometheus.DefBuckets,
		}),

		// Attribution metrics
		AttributionCache: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "fundflow_attribution_cache_lookups_total",
				Help: "Attribution cache lookups by result",
			},
			[]string{"result"},
		),

		// Outbox metrics
		EventsPublished: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "fundflow_events_published_total",
				Help: "Outbox events published by type and status",
			},
			[]string{"event_type", "status"},
		),

		// API metrics
		HTTPRequests: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "fundflow_http_requests_total",
				Help: "Total HTTP requests",
			},
			[]string{"method", "path", "status"},
		),
		HTTPDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "fundflow_http_duration_seconds",
				Help:    "HTTP request duration",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method", "path"},
		),
		HTTPInFlight: factory.NewGauge(prometheus.GaugeOpts{
			Name: "fundflow_http_requests_in_flight",
			Help: "HTTP requests currently being served",
		}),

		// Database metrics
		DBErrors: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "fundflow_db_errors_total",
				Help: "Database errors seen by the retrier, by SQLSTATE",
			},
			[]string{"code"},
		),
	}
}

// FundCreated counts a new fund.
func (m *Metrics) FundCreated() {
	m.FundsCreated.Inc()
}

// InvestorOnboarded counts a new investor.
func (m *Metrics) InvestorOnboarded() {
	m.InvestorsOnboarded.Inc()
}

// CapitalCallIssued records an issued capital call.
func (m *Metrics) CapitalCallIssued(amount decimal.Decimal, duration time.Duration) {
	m.CapitalCallsIssued.Inc()
	m.CapitalCalledAmount.Observe(amount.InexactFloat64())
	m.CapitalCallDuration.Observe(duration.Seconds())
}

// DistributionExecuted records an executed distribution.
func (m *Metrics) DistributionExecuted(proceeds, carry decimal.Decimal, duration time.Duration) {
	m.DistributionsExecuted.Inc()
	m.DistributedProceeds.Observe(proceeds.InexactFloat64())
	m.CarryAmount.Observe(carry.InexactFloat64())
	m.WaterfallDuration.Observe(duration.Seconds())
}

// AttributionCacheLookup records a cache hit or miss.
func (m *Metrics) AttributionCacheLookup(hit bool) {
	result := "miss"
	if hit {
		result = "hit"
	}
	m.AttributionCache.WithLabelValues(result).Inc()
}

// EventPublished records the outcome of publishing one outbox event.
func (m *Metrics) EventPublished(eventType string, err error) {
	status := "ok"
	if err != nil {
		status = "error"
	}
	m.EventsPublished.WithLabelValues(eventType, status).Inc()
}

// DBError counts a database error with the given SQLSTATE.
func (m *Metrics) DBError(code string) {
	m.DBErrors.WithLabelValues(code).Inc()
}
