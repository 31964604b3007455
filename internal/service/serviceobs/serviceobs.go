package serviceobs

import (
	"context"
	"time"

	log "github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"CryptoPulse/internal/metrics"
	"CryptoPulse/internal/model"
	"CryptoPulse/internal/service"
	"CryptoPulse/internal/trace"
)

// observableAnalyzer wraps an Analyzer with logging, tracing and metrics
type observableAnalyzer struct {
	inner   service.Analyzer
	metrics *metrics.Metrics
}

// Wrap wraps an Analyzer with observability middleware. m may be nil.
func Wrap(inner service.Analyzer, m *metrics.Metrics) service.Analyzer {
	return &observableAnalyzer{inner: inner, metrics: m}
}

func (o *observableAnalyzer) Run(ctx context.Context, cfg model.RunConfig) (*model.Report, error) {
	ctx, span := trace.StartSpan(ctx, "service.Run")
	defer span.End()
	span.SetAttributes(
		attribute.String("ticker", cfg.Ticker),
		attribute.String("interval", string(cfg.Interval)),
		attribute.String("rule", string(cfg.Rule)),
	)

	fields := log.Fields{
		"ticker": cfg.Ticker,
		"rule":   cfg.Rule,
		"start":  cfg.Start.Format("2006-01-02"),
		"end":    cfg.End.Format("2006-01-02"),
	}
	if id, ok := trace.TraceID(ctx); ok {
		fields["trace_id"] = id
	}
	log.WithFields(fields).Info("starting analysis")
	start := time.Now()

	report, err := o.inner.Run(ctx, cfg)

	duration := time.Since(start)
	o.metrics.ObserveRun(cfg.Ticker, duration, err)
	fields["duration_ms"] = duration.Milliseconds()

	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		log.WithFields(fields).WithError(err).Error("analysis failed")
		return nil, err
	}

	o.metrics.ObserveReport(report)
	span.SetAttributes(
		attribute.String("run_id", report.RunID),
		attribute.Int("rows", len(report.Table)),
		attribute.Int("alerts", len(report.Alerts)),
	)
	fields["run_id"] = report.RunID
	fields["rows"] = len(report.Table)
	fields["alerts"] = len(report.Alerts)
	fields["downgrades"] = report.Downgrades
	log.WithFields(fields).Info("analysis completed")
	return report, nil
}
