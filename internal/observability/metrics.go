package observability

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Outcome labels shared by the login and register counters.
const (
	OutcomeSuccess            = "success"
	OutcomeUserNotFound       = "user_not_found"
	OutcomeInvalidCredentials = "invalid_credentials"
	OutcomeDuplicate          = "duplicate"
	OutcomeInvalid            = "invalid"
	OutcomeError              = "error"
)

// AuthMetrics holds the authentication collectors.
type AuthMetrics struct {
	loginTotal         *prometheus.CounterVec
	registerTotal      *prometheus.CounterVec
	tokenVerifications *prometheus.CounterVec
	hashDuration       *prometheus.HistogramVec
}

// NewAuthMetrics creates the collectors and registers them on reg.
func NewAuthMetrics(reg prometheus.Registerer) (*AuthMetrics, error) {
	m := &AuthMetrics{
		loginTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "auth_login_total",
				Help: "Login attempts by outcome",
			},
			[]string{"outcome"},
		),
		registerTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "auth_register_total",
				Help: "Registration attempts by outcome",
			},
			[]string{"outcome"},
		),
		tokenVerifications: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "auth_token_verifications_total",
				Help: "Bearer token verifications by result",
			},
			[]string{"result"},
		),
		hashDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "auth_password_hash_seconds",
				Help:    "Latency of bcrypt hash and verify operations",
				Buckets: []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5},
			},
			[]string{"op"},
		),
	}

	for _, c := range []prometheus.Collector{m.loginTotal, m.registerTotal, m.tokenVerifications, m.hashDuration} {
		if err := reg.Register(c); err != nil {
			return nil, err
		}
	}
	return m, nil
}

// ObserveLogin counts a login attempt.
func (m *AuthMetrics) ObserveLogin(outcome string) {
	if m == nil {
		return
	}
	m.loginTotal.WithLabelValues(outcome).Inc()
}

// ObserveRegister counts a registration attempt.
func (m *AuthMetrics) ObserveRegister(outcome string) {
	if m == nil {
		return
	}
	m.registerTotal.WithLabelValues(outcome).Inc()
}

// ObserveTokenVerification counts a verification; result is "valid",
// "missing", "malformed", "bad_signature" or "expired".
func (m *AuthMetrics) ObserveTokenVerification(result string) {
	if m == nil {
		return
	}
	m.tokenVerifications.WithLabelValues(result).Inc()
}

// ObserveHash records a bcrypt operation; its signature matches
// auth.HashObserveFunc.
func (m *AuthMetrics) ObserveHash(op string, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.hashDuration.WithLabelValues(op).Observe(elapsed.Seconds())
}
