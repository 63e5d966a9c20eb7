package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

const (
	ResultSuccess  = "success"
	ResultFailure  = "failure"
	ResultRejected = "rejected"
)

// Metrics holds the application counters on a private registry so tests can
// build as many instances as they like.
type Metrics struct {
	Registry    *prometheus.Registry
	AuthAttempt *prometheus.CounterVec
	Imports     *prometheus.CounterVec
	Submissions *prometheus.CounterVec
}

func New() *Metrics {
	m := &Metrics{
		Registry: prometheus.NewRegistry(),
		AuthAttempt: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "nscv_auth_attempts_total",
			Help: "Login and signup attempts by outcome.",
		}, []string{"op", "result"}),
		Imports: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "nscv_imports_total",
			Help: "Resume file imports by outcome.",
		}, []string{"result"}),
		Submissions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "nscv_submissions_total",
			Help: "Document generation requests by outcome.",
		}, []string{"result"}),
	}
	m.Registry.MustRegister(m.AuthAttempt, m.Imports, m.Submissions)
	return m
}

func (m *Metrics) Auth(op, result string) {
	if m == nil {
		return
	}
	m.AuthAttempt.WithLabelValues(op, result).Inc()
}

func (m *Metrics) Import(result string) {
	if m == nil {
		return
	}
	m.Imports.WithLabelValues(result).Inc()
}

func (m *Metrics) Submission(result string) {
	if m == nil {
		return
	}
	m.Submissions.WithLabelValues(result).Inc()
}
