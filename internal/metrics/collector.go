// Package metrics provides internal Prometheus metrics collection.
// This package is internal and should not be imported by external projects.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Collector holds the engine's Prometheus metrics. A nil *Collector is
// valid and records nothing, so instrumentation can stay unconditional.
type Collector struct {
	routingDecisions   *prometheus.CounterVec
	oracleRequests     *prometheus.CounterVec
	workflowExecutions *prometheus.CounterVec
	workflowDuration   *prometheus.HistogramVec
	nodeDuration       *prometheus.HistogramVec
}

// NewCollector creates a Collector registered on reg. A nil registerer
// uses the default registry.
func NewCollector(namespace string, reg prometheus.Registerer) *Collector {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	factory := func(c prometheus.Collector) {
		reg.MustRegister(c)
	}

	col := &Collector{
		routingDecisions: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "routing_decisions_total",
				Help:      "Routing decisions by chosen handler and composition flag",
			},
			[]string{"handler", "composed"},
		),
		oracleRequests: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "oracle_requests_total",
				Help:      "Oracle calls by outcome",
			},
			[]string{"outcome"},
		),
		workflowExecutions: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "workflow_executions_total",
				Help:      "Workflow executions by type and final status",
			},
			[]string{"workflow_type", "status"},
		),
		workflowDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "workflow_duration_seconds",
				Help:      "Workflow execution duration in seconds",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"workflow_type"},
		),
		nodeDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "workflow_node_duration_seconds",
				Help:      "Workflow node execution duration in seconds",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"workflow_type", "node"},
		),
	}
	factory(col.routingDecisions)
	factory(col.oracleRequests)
	factory(col.workflowExecutions)
	factory(col.workflowDuration)
	factory(col.nodeDuration)
	return col
}

// ObserveRouting records one routing decision.
func (c *Collector) ObserveRouting(handler string, composed bool) {
	if c == nil {
		return
	}
	label := "false"
	if composed {
		label = "true"
	}
	c.routingDecisions.WithLabelValues(handler, label).Inc()
}

// ObserveOracle records one oracle call outcome ("ok", "error",
// "malformed").
func (c *Collector) ObserveOracle(outcome string) {
	if c == nil {
		return
	}
	c.oracleRequests.WithLabelValues(outcome).Inc()
}

// ObserveWorkflow records one finished workflow execution.
func (c *Collector) ObserveWorkflow(workflowType, status string, d time.Duration) {
	if c == nil {
		return
	}
	c.workflowExecutions.WithLabelValues(workflowType, status).Inc()
	c.workflowDuration.WithLabelValues(workflowType).Observe(d.Seconds())
}

// ObserveNode records one node execution.
func (c *Collector) ObserveNode(workflowType, node string, d time.Duration) {
	if c == nil {
		return
	}
	c.nodeDuration.WithLabelValues(workflowType, node).Observe(d.Seconds())
}
