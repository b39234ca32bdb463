package telemetry_test

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tournevent/sameday/internal/telemetry"
	"github.com/tournevent/sameday/pkg/sameday"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap/zapcore"
)

func TestNewLogger_Levels(t *testing.T) {
	logger, err := telemetry.NewLogger("debug", "stderr")
	require.NoError(t, err)
	assert.True(t, logger.Core().Enabled(zapcore.DebugLevel))

	logger, err = telemetry.NewLogger("bogus")
	require.NoError(t, err)
	assert.False(t, logger.Core().Enabled(zapcore.DebugLevel))
	assert.True(t, logger.Core().Enabled(zapcore.InfoLevel))
}

func TestMetrics_ObserveCall(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := telemetry.NewMetrics(reg)

	m.ObserveCall("getServices", time.Now(), nil)
	m.ObserveCall("getServices", time.Now(),
		sameday.NewError("getServices", sameday.CodeRemoteValidation, "Bad Request"))

	assert.Equal(t, 1.0, testutil.ToFloat64(m.RequestsTotal.WithLabelValues("getServices", "sameday", "success")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.RequestsTotal.WithLabelValues("getServices", "sameday", "error")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.CarrierErrors.WithLabelValues("sameday", sameday.CodeRemoteValidation)))

	expected := `
# HELP sameday_carrier_errors_total Total carrier API errors by carrier and error type
# TYPE sameday_carrier_errors_total counter
sameday_carrier_errors_total{carrier="sameday",error_type="REMOTE_VALIDATION_ERROR"} 1
`
	assert.NoError(t, testutil.GatherAndCompare(reg, strings.NewReader(expected), "sameday_carrier_errors_total"))
}

func TestErrorType(t *testing.T) {
	assert.Equal(t, sameday.CodeTransport,
		telemetry.ErrorType(sameday.NewError("getCities", sameday.CodeTransport, "no response")))
	assert.Equal(t, "INVALID_INPUT", telemetry.ErrorType(sameday.ErrInvalidAWB))
	assert.Equal(t, "UNKNOWN", telemetry.ErrorType(errors.New("boom")))
}

func TestInitTracer(t *testing.T) {
	ctx := context.Background()

	tp, shutdown, err := telemetry.InitTracer(ctx, "http://localhost:4318",
		attribute.String("service.name", "sameday-test"))
	require.NoError(t, err)
	require.NotNil(t, tp)

	_, span := tp.Tracer("test").Start(ctx, "noop")
	span.End()

	shutdownCtx, cancel := context.WithTimeout(ctx, 100*time.Millisecond)
	defer cancel()
	// Nothing listens on the endpoint; only check that shutdown returns.
	_ = shutdown(shutdownCtx)
}
