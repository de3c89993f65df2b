package observability

import (
	"context"

	"github.com/boddenberg/ops-console-bfa-go/internal/port"

	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

// ============================================================
// Console collaborators backed by zap + Prometheus
// ============================================================

// Diagnostics logs contained dispatch failures with full detail and marks the
// active span as failed. Implements port.Diagnostics.
type Diagnostics struct {
	logger  *zap.Logger
	metrics *Metrics
}

// NewDiagnostics creates the diagnostics sink.
func NewDiagnostics(logger *zap.Logger, metrics *Metrics) *Diagnostics {
	return &Diagnostics{logger: logger, metrics: metrics}
}

// LogError records err. It never fails.
func (d *Diagnostics) LogError(ctx context.Context, err error) {
	if err == nil {
		return
	}
	span := trace.SpanFromContext(ctx)
	span.RecordError(err)
	span.SetStatus(codes.Error, "dispatch failed")

	d.logger.Error("assistant dispatch failed", zap.Error(err))
	d.metrics.IncrEvent("diagnostic")
}

// EventNavigator records navigations requested by the assistant. The console
// frontend performs the actual route change from the returned payload.
type EventNavigator struct {
	logger  *zap.Logger
	metrics *Metrics
}

// NewEventNavigator creates the navigator.
func NewEventNavigator(logger *zap.Logger, metrics *Metrics) *EventNavigator {
	return &EventNavigator{logger: logger, metrics: metrics}
}

// Navigate implements port.Navigator.
func (n *EventNavigator) Navigate(_ context.Context, route string) {
	n.logger.Info("console navigate", zap.String("route", route))
	n.metrics.IncrEvent("navigate")
}

// EventNotifier records toasts emitted to the console.
type EventNotifier struct {
	logger  *zap.Logger
	metrics *Metrics
}

// NewEventNotifier creates the notifier.
func NewEventNotifier(logger *zap.Logger, metrics *Metrics) *EventNotifier {
	return &EventNotifier{logger: logger, metrics: metrics}
}

// Notify implements port.Notifier.
func (n *EventNotifier) Notify(_ context.Context, kind port.NotifyKind, message string) {
	if kind == port.NotifyError {
		n.logger.Warn("console notify", zap.String("kind", string(kind)), zap.String("message", message))
	} else {
		n.logger.Info("console notify", zap.String("kind", string(kind)), zap.String("message", message))
	}
	n.metrics.IncrEvent("notify_" + string(kind))
}
