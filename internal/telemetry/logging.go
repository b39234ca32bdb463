package telemetry

import (
	"github.com/uptrace/opentelemetry-go-extra/otelzap"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// NewLogger creates a JSON zap logger wrapped for trace correlation.
// Unknown levels fall back to info. Logs go to stdout unless outputs are
// given; CLI commands log to stderr so stdout stays machine-readable.
func NewLogger(level string, outputs ...string) (*otelzap.Logger, error) {
	zapLevel, err := zapcore.ParseLevel(level)
	if err != nil {
		zapLevel = zapcore.InfoLevel
	}
	if len(outputs) == 0 {
		outputs = []string{"stdout"}
	}

	config := zap.NewProductionConfig()
	config.Level = zap.NewAtomicLevelAt(zapLevel)
	config.Encoding = "json"
	config.OutputPaths = outputs
	config.ErrorOutputPaths = []string{"stderr"}
	config.InitialFields = map[string]any{"carrier": "sameday"}

	zapLogger, err := config.Build()
	if err != nil {
		return nil, err
	}

	return otelzap.New(zapLogger), nil
}
