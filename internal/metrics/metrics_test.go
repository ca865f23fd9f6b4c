package metrics

import (
	"io"
	"net/http/httptest"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMetrics(t *testing.T) {
	m := New()

	m.GameStarted()
	m.RoundSubmitted("won", "1")
	m.RoundSubmitted("won", "1")
	m.RoundSubmitted("lost", "2")
	m.ValidationFailed("bid_out_of_range")
	m.SetActiveSessions(3)
	m.SessionsEvicted(2)

	assert.Equal(t, 1.0, testutil.ToFloat64(m.gamesStarted))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.roundsSubmitted.WithLabelValues("won", "1")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.roundsSubmitted.WithLabelValues("lost", "2")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.validationErrors.WithLabelValues("bid_out_of_range")))
	assert.Equal(t, 3.0, testutil.ToFloat64(m.activeSessions))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.sessionsEvicted))
}

func TestMetrics_Handler(t *testing.T) {
	m := New()
	m.GameStarted()

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))

	body, err := io.ReadAll(rec.Body)
	require.NoError(t, err)
	assert.Contains(t, string(body), "blackqueen_games_started_total 1")
}

func TestMetrics_NilIsNoop(t *testing.T) {
	var m *Metrics
	assert.NotPanics(t, func() {
		m.GameStarted()
		m.RoundSubmitted("won", "1")
		m.ValidationFailed("x")
		m.SetActiveSessions(1)
		m.SessionsEvicted(1)
	})
}
