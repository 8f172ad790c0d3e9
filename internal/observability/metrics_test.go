package observability

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAuthMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	m, err := NewAuthMetrics(reg)
	require.NoError(t, err)

	m.ObserveLogin(OutcomeSuccess)
	m.ObserveLogin(OutcomeSuccess)
	m.ObserveLogin(OutcomeInvalidCredentials)
	m.ObserveRegister(OutcomeDuplicate)
	m.ObserveTokenVerification("expired")
	m.ObserveHash("verify", 30*time.Millisecond)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.loginTotal.WithLabelValues(OutcomeSuccess)))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.loginTotal.WithLabelValues(OutcomeInvalidCredentials)))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.registerTotal.WithLabelValues(OutcomeDuplicate)))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.tokenVerifications.WithLabelValues("expired")))
	assert.Equal(t, 1, testutil.CollectAndCount(m.hashDuration))
}

func TestAuthMetrics_DoubleRegistrationFails(t *testing.T) {
	reg := prometheus.NewRegistry()
	_, err := NewAuthMetrics(reg)
	require.NoError(t, err)

	_, err = NewAuthMetrics(reg)
	assert.Error(t, err)
}

func TestAuthMetrics_NilIsNoop(t *testing.T) {
	var m *AuthMetrics
	assert.NotPanics(t, func() {
		m.ObserveLogin(OutcomeSuccess)
		m.ObserveRegister(OutcomeSuccess)
		m.ObserveTokenVerification("valid")
		m.ObserveHash("hash", time.Millisecond)
	})
}

func TestNewLogger(t *testing.T) {
	tests := []struct {
		name    string
		level   string
		format  string
		wantErr bool
	}{
		{"json info", "info", "json", false},
		{"console debug", "debug", "console", false},
		{"warn default format", "warn", "", false},
		{"invalid level", "verbose", "json", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			logger, err := NewLogger(tt.level, tt.format)
			if tt.wantErr {
				assert.Error(t, err)
				assert.Contains(t, err.Error(), "invalid log level")
				return
			}
			require.NoError(t, err)
			assert.NotNil(t, logger)
		})
	}
}
