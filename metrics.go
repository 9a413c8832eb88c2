package goCognito

import (
	"errors"

	"github.com/prometheus/client_golang/prometheus"
)

const (
	metricsNamespace = "gocognito"

	outcomeSuccess  = "success"
	outcomeInternal = "InternalErrorException"
)

// Metrics holds the engine's Prometheus collectors.
type Metrics struct {
	requests   *prometheus.CounterVec
	challenges *prometheus.CounterVec
	deliveries *prometheus.CounterVec
}

// NewMetrics creates the engine collectors and registers them with reg.
// A nil reg leaves the collectors unregistered, which tests use to read
// counters without a registry.
func NewMetrics(reg prometheus.Registerer) (*Metrics, error) {
	m := &Metrics{
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "auth_requests_total",
			Help:      "Engine operations by outcome.",
		}, []string{"operation", "outcome"}),
		challenges: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "challenges_issued_total",
			Help:      "Authentication challenges returned to callers.",
		}, []string{"challenge"}),
		deliveries: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "codes_delivered_total",
			Help:      "MFA and verification codes handed to the delivery collaborator.",
		}, []string{"medium"}),
	}
	if reg != nil {
		for _, c := range []prometheus.Collector{m.requests, m.challenges, m.deliveries} {
			if err := reg.Register(c); err != nil {
				return nil, err
			}
		}
	}
	return m, nil
}

func (m *Metrics) observe(operation string, err error) {
	if m == nil {
		return
	}
	m.requests.WithLabelValues(operation, outcomeFor(err)).Inc()
}

func (m *Metrics) challengeIssued(name ChallengeName) {
	if m == nil {
		return
	}
	m.challenges.WithLabelValues(string(name)).Inc()
}

func (m *Metrics) codeDelivered(medium DeliveryMedium) {
	if m == nil {
		return
	}
	m.deliveries.WithLabelValues(string(medium)).Inc()
}

func outcomeFor(err error) string {
	if err == nil {
		return outcomeSuccess
	}
	var cerr *Error
	if errors.As(err, &cerr) {
		return cerr.Code()
	}
	return outcomeInternal
}
