package service

import "github.com/prometheus/client_golang/prometheus"

// Login outcomes recorded by AuthMetrics.
const (
	loginSuccess  = "success"
	loginInvalid  = "invalid_credentials"
	loginPending  = "pending"
	loginRejected = "rejected"
	loginNotAdmin = "not_admin"
)

// AuthMetrics counts authentication events. A nil *AuthMetrics records nothing.
type AuthMetrics struct {
	logins        *prometheus.CounterVec
	registrations *prometheus.CounterVec
	resetRequests prometheus.Counter
}

// NewAuthMetrics creates the auth counters and registers them on reg.
func NewAuthMetrics(reg prometheus.Registerer) (*AuthMetrics, error) {
	m := &AuthMetrics{
		logins: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "auth_logins_total",
				Help: "Login attempts by result.",
			},
			[]string{"result"},
		),
		registrations: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "auth_registrations_total",
				Help: "Completed registrations by role.",
			},
			[]string{"role"},
		),
		resetRequests: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "password_reset_requests_total",
				Help: "Password reset requests received, including unknown emails.",
			},
		),
	}

	for _, c := range []prometheus.Collector{m.logins, m.registrations, m.resetRequests} {
		if err := reg.Register(c); err != nil {
			return nil, err
		}
	}
	return m, nil
}

func (m *AuthMetrics) login(result string) {
	if m == nil {
		return
	}
	m.logins.WithLabelValues(result).Inc()
}

func (m *AuthMetrics) registration(role string) {
	if m == nil {
		return
	}
	m.registrations.WithLabelValues(role).Inc()
}

func (m *AuthMetrics) resetRequest() {
	if m == nil {
		return
	}
	m.resetRequests.Inc()
}
