package telemetry

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// MeteredAPI forwards every report to an inner API while also recording
// broken reports, warnings and counts as otel metrics.
type MeteredAPI struct {
	inner API

	broken   metric.Int64Counter
	warnings metric.Int64Counter
	counts   metric.Int64Gauge
}

// NewMeteredAPI creates its instruments on `provider`, if it is nil the
// global meter provider is used so it should be called after telemetry
// setup.
func NewMeteredAPI(inner API, provider metric.MeterProvider) *MeteredAPI {
	if provider == nil {
		provider = otel.GetMeterProvider()
	}
	meter := provider.Meter("mailman-admin/telemetry")
	m := &MeteredAPI{inner: inner}

	var err error
	m.broken, err = meter.Int64Counter(
		"reports.broken",
		metric.WithDescription("Amount of broken component reports."),
	)
	m.record(err)
	m.warnings, err = meter.Int64Counter(
		"reports.warning",
		metric.WithDescription("Amount of warning reports."),
	)
	m.record(err)
	m.counts, err = meter.Int64Gauge(
		"reports.count",
		metric.WithDescription("The last count reported for an id."),
	)
	m.record(err)

	return m
}

func (m *MeteredAPI) record(err error) {
	if err == nil {
		return
	}
	m.inner.ReportBroken("telemetry.metered-api", err)
}

func (m *MeteredAPI) ReportBroken(id string, params ...any) {
	if m.broken != nil {
		m.broken.Add(context.Background(), 1, metric.WithAttributes(attribute.String("id", id)))
	}
	m.inner.ReportBroken(id, params...)
}

func (m *MeteredAPI) ReportWarning(id string, params ...any) {
	if m.warnings != nil {
		m.warnings.Add(context.Background(), 1, metric.WithAttributes(attribute.String("id", id)))
	}
	m.inner.ReportWarning(id, params...)
}

func (m *MeteredAPI) ReportDebug(msg string, params ...any) {
	m.inner.ReportDebug(msg, params...)
}

func (m *MeteredAPI) ReportCount(id string, count int64) {
	if m.counts != nil {
		m.counts.Record(context.Background(), count, metric.WithAttributes(attribute.String("id", id)))
	}
	m.inner.ReportCount(id, count)
}
