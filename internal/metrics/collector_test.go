package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestCollector_Observations(t *testing.T) {
	t.Parallel()

	reg := prometheus.NewRegistry()
	c := NewCollector("hrflow", reg)

	c.ObserveRouting("recruitment", false)
	c.ObserveRouting("recruitment", false)
	c.ObserveRouting("onboarding", true)
	c.ObserveOracle("ok")
	c.ObserveWorkflow("candidate_screening", "completed", 50*time.Millisecond)
	c.ObserveNode("candidate_screening", "screen_candidate", 10*time.Millisecond)

	if got := testutil.ToFloat64(c.routingDecisions.WithLabelValues("recruitment", "false")); got != 2 {
		t.Fatalf("routing decisions = %v, want 2", got)
	}
	if got := testutil.ToFloat64(c.workflowExecutions.WithLabelValues("candidate_screening", "completed")); got != 1 {
		t.Fatalf("workflow executions = %v, want 1", got)
	}
}

func TestCollector_NilSafe(t *testing.T) {
	t.Parallel()

	var c *Collector
	c.ObserveRouting("x", true)
	c.ObserveOracle("error")
	c.ObserveWorkflow("t", "failed", time.Second)
	c.ObserveNode("t", "n", time.Second)
}
