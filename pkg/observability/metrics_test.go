package observability

import (
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMetricsRegistered(t *testing.T) {
	RepliesTotal.WithLabelValues("GREETING").Inc()
	ReplyDuration.Observe(0.001)
	StateTransitionsTotal.WithLabelValues("idle", "listening").Inc()
	FailuresTotal.WithLabelValues("capture").Inc()
	UtterancesTotal.WithLabelValues("user").Inc()
	RequestsTotal.WithLabelValues("GET", "2xx", "/x").Inc()
	RequestDuration.WithLabelValues("GET", "/x").Observe(0.1)

	families, err := prometheus.DefaultGatherer.Gather()
	require.NoError(t, err)

	found := map[string]bool{}
	for _, mf := range families {
		found[mf.GetName()] = true
	}

	for _, name := range []string{
		"voice_agent_requests_total",
		"voice_agent_request_duration_seconds",
		"voice_agent_replies_total",
		"voice_agent_reply_duration_seconds",
		"voice_agent_state_transitions_total",
		"voice_agent_failures_total",
		"voice_agent_utterances_total",
		"voice_agent_sessions_active",
	} {
		assert.True(t, found[name], "metric %q not registered", name)
	}
}

func TestMiddlewareRecordsRequests(t *testing.T) {
	app := fiber.New()
	app.Use(MetricsMiddleware())
	app.Get("/ok", func(c *fiber.Ctx) error { return c.SendStatus(fiber.StatusOK) })
	app.Post("/bad", func(c *fiber.Ctx) error { return fiber.NewError(fiber.StatusBadRequest, "nope") })

	okBefore := testutil.ToFloat64(RequestsTotal.WithLabelValues("GET", "2xx", "/ok"))
	badBefore := testutil.ToFloat64(RequestsTotal.WithLabelValues("POST", "4xx", "/bad"))

	resp, err := app.Test(httptest.NewRequest("GET", "/ok", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)

	resp, err = app.Test(httptest.NewRequest("POST", "/bad", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)

	assert.Equal(t, okBefore+1, testutil.ToFloat64(RequestsTotal.WithLabelValues("GET", "2xx", "/ok")))
	assert.Equal(t, badBefore+1, testutil.ToFloat64(RequestsTotal.WithLabelValues("POST", "4xx", "/bad")))
}
