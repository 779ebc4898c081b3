package observability

import (
	"go.opentelemetry.io/otel/trace"
	"gorm.io/gorm"
	"gorm.io/plugin/opentelemetry/tracing"
)

// InstrumentDB registers the GORM tracing plugin on db. Spans use tp, or the
// global provider when tp is nil, so SetupOTel should run first. Bound query
// variables stay out of spans: they include password hashes and message text.
func InstrumentDB(db *gorm.DB, tp trace.TracerProvider) error {
	opts := []tracing.Option{
		tracing.WithoutMetrics(),
		tracing.WithoutQueryVariables(),
	}
	if tp != nil {
		opts = append(opts, tracing.WithTracerProvider(tp))
	}
	return db.Use(tracing.NewPlugin(opts...))
}
