// Package metrics exposes Prometheus counters for editor operations, saves and applies.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const (
	ResultOK       = "ok"
	ResultRejected = "rejected"
	ResultError    = "error"

	// UnknownEntityType labels applies to entity types outside the catalog.
	UnknownEntityType = "unknown"
)

var (
	graphOperationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "trainflow_graph_operations_total",
			Help: "Total number of graph editor operations",
		},
		[]string{"operation", "result"},
	)

	workflowSavesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "trainflow_workflow_saves_total",
			Help: "Total number of workflow saves",
		},
		[]string{"kind", "result"},
	)

	workflowAppliesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "trainflow_workflow_applies_total",
			Help: "Total number of workflows applied to entities",
		},
		[]string{"entity_type", "result"},
	)

	sessionsStartedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "trainflow_sessions_started_total",
			Help: "Total number of editing sessions started",
		},
		[]string{"kind"},
	)
)

// Result maps an operation error to a result label. Rule violations and
// validation failures count as rejected.
func Result(err error, rejected func(error) bool) string {
	switch {
	case err == nil:
		return ResultOK
	case rejected != nil && rejected(err):
		return ResultRejected
	default:
		return ResultError
	}
}

// RecordGraphOperation records one graph mutation such as AddNode or Connect.
func RecordGraphOperation(operation, result string) {
	graphOperationsTotal.WithLabelValues(operation, result).Inc()
}

// RecordWorkflowSave records a save; kind is "create" or "update".
func RecordWorkflowSave(kind, result string) {
	workflowSavesTotal.WithLabelValues(kind, result).Inc()
}

// RecordWorkflowApply records a workflow being applied to an entity row.
func RecordWorkflowApply(entityType, result string) {
	workflowAppliesTotal.WithLabelValues(entityType, result).Inc()
}

// RecordSessionStarted records a new editing session; kind is "new" or "existing".
func RecordSessionStarted(kind string) {
	sessionsStartedTotal.WithLabelValues(kind).Inc()
}

// Handler returns the Prometheus metrics HTTP handler
func Handler() http.Handler {
	return promhttp.Handler()
}
