// Package telemetry records connection lifecycle metrics with Prometheus.
package telemetry

import (
	"errors"
	"fmt"
	"strings"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/temirov/gitremote/internal/remote"
)

const (
	connectAttemptsMetricNameConstant  = "gitremote_connect_attempts_total"
	connectAttemptsMetricHelpConstant  = "Number of connect attempts per direction, successful or not."
	connectFailuresMetricNameConstant  = "gitremote_connect_failures_total"
	connectFailuresMetricHelpConstant  = "Number of connect attempts rejected by the engine per direction."
	disconnectsMetricNameConstant      = "gitremote_disconnects_total"
	disconnectsMetricHelpConstant      = "Number of open connections closed per direction."
	openConnectionsMetricNameConstant  = "gitremote_open_connections"
	openConnectionsMetricHelpConstant  = "Number of connections currently open per direction."
	directionLabelConstant             = "direction"
	registrationErrorTemplateConstant  = "unable to register metric %s: %w"
	textfileErrorTemplateConstant      = "unable to write metrics textfile %s: %w"
	textfilePathMissingMessageConstant = "metrics textfile path is required"
)

// ErrTextfilePathMissing indicates WriteTextfile was called without a destination.
var ErrTextfilePathMissing = errors.New(textfilePathMissingMessageConstant)

// ConnectionMetrics counts connection lifecycle events. It implements remote.LifecycleObserver.
type ConnectionMetrics struct {
	registry        *prometheus.Registry
	connectAttempts *prometheus.CounterVec
	connectFailures *prometheus.CounterVec
	disconnects     *prometheus.CounterVec
	openConnections *prometheus.GaugeVec
}

// NewConnectionMetrics registers the connection metrics on a dedicated registry.
func NewConnectionMetrics() (*ConnectionMetrics, error) {
	metrics := &ConnectionMetrics{
		registry: prometheus.NewRegistry(),
		connectAttempts: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: connectAttemptsMetricNameConstant,
			Help: connectAttemptsMetricHelpConstant,
		}, []string{directionLabelConstant}),
		connectFailures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: connectFailuresMetricNameConstant,
			Help: connectFailuresMetricHelpConstant,
		}, []string{directionLabelConstant}),
		disconnects: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: disconnectsMetricNameConstant,
			Help: disconnectsMetricHelpConstant,
		}, []string{directionLabelConstant}),
		openConnections: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: openConnectionsMetricNameConstant,
			Help: openConnectionsMetricHelpConstant,
		}, []string{directionLabelConstant}),
	}

	collectors := map[string]prometheus.Collector{
		connectAttemptsMetricNameConstant: metrics.connectAttempts,
		connectFailuresMetricNameConstant: metrics.connectFailures,
		disconnectsMetricNameConstant:     metrics.disconnects,
		openConnectionsMetricNameConstant: metrics.openConnections,
	}
	for metricName, collector := range collectors {
		if registrationError := metrics.registry.Register(collector); registrationError != nil {
			return nil, fmt.Errorf(registrationErrorTemplateConstant, metricName, registrationError)
		}
	}

	for _, direction := range remote.Directions() {
		metrics.connectAttempts.WithLabelValues(direction)
		metrics.connectFailures.WithLabelValues(direction)
		metrics.disconnects.WithLabelValues(direction)
		metrics.openConnections.WithLabelValues(direction)
	}

	return metrics, nil
}

// Gatherer exposes the registry holding the connection metrics.
func (metrics *ConnectionMetrics) Gatherer() prometheus.Gatherer {
	return metrics.registry
}

// ConnectionOpened counts a successful connect.
func (metrics *ConnectionMetrics) ConnectionOpened(event remote.ConnectionEvent) {
	direction := event.Direction.String()
	metrics.connectAttempts.WithLabelValues(direction).Inc()
	metrics.openConnections.WithLabelValues(direction).Inc()
}

// ConnectionFailed counts a connect rejected by the engine.
func (metrics *ConnectionMetrics) ConnectionFailed(event remote.ConnectionEvent, _ error) {
	direction := event.Direction.String()
	metrics.connectAttempts.WithLabelValues(direction).Inc()
	metrics.connectFailures.WithLabelValues(direction).Inc()
}

// ConnectionClosed counts a disconnect of an open connection.
func (metrics *ConnectionMetrics) ConnectionClosed(event remote.ConnectionEvent) {
	direction := event.Direction.String()
	metrics.disconnects.WithLabelValues(direction).Inc()
	metrics.openConnections.WithLabelValues(direction).Dec()
}

// WriteTextfile writes the metrics in the Prometheus text format for node-exporter textfile collection.
func (metrics *ConnectionMetrics) WriteTextfile(path string) error {
	trimmedPath := strings.TrimSpace(path)
	if len(trimmedPath) == 0 {
		return ErrTextfilePathMissing
	}
	if writeError := prometheus.WriteToTextfile(trimmedPath, metrics.registry); writeError != nil {
		return fmt.Errorf(textfileErrorTemplateConstant, trimmedPath, writeError)
	}
	return nil
}
