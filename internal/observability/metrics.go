package observability

import (
	"context"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"coordination-hub/internal/coordination"
)

// Metrics bundles every Prometheus collector the hub exports, following the
// agent-orchestrator's package-level promauto vars but instance-scoped so
// tests can construct isolated registries.
type Metrics struct {
	AgentsByStatus      *prometheus.GaugeVec
	TasksByStatus       *prometheus.GaugeVec
	AssignmentLatency   prometheus.Histogram
	ConflictsDetected   *prometheus.CounterVec
	ConflictsBySeverity *prometheus.CounterVec
}

// NewMetrics registers the hub's collectors against reg. Pass
// prometheus.NewRegistry() in tests to avoid collisions with the global
// default registry.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		AgentsByStatus: factory.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "coordination_hub_agents_by_status",
				Help: "Number of registered agents by status",
			},
			[]string{"status"},
		),
		TasksByStatus: factory.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "coordination_hub_tasks_by_status",
				Help: "Number of known tasks by status",
			},
			[]string{"status"},
		),
		AssignmentLatency: factory.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "coordination_hub_assignment_latency_seconds",
				Help:    "Time from task creation to assignment",
				Buckets: prometheus.DefBuckets,
			},
		),
		ConflictsDetected: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "coordination_hub_conflicts_detected_total",
				Help: "Conflicts found by the conflict detector, by type",
			},
			[]string{"type"},
		),
		ConflictsBySeverity: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "coordination_hub_conflicts_by_severity_total",
				Help: "Conflicts found by the conflict detector, by severity",
			},
			[]string{"severity"},
		),
	}
}

// RunMetricsListener subscribes to the event hub and folds two derived
// metrics out of the plain event stream: time from task_created to
// task_assigned (AssignmentLatency), and conflict counts by type/severity
// off of conflicts_detected. It never mutates coordination state; it only
// observes the same events every websocket and SSE client sees.
func RunMetricsListener(ctx context.Context, hub *coordination.EventHub, metrics *Metrics) {
	id, events := hub.Subscribe()
	defer hub.Unsubscribe(id)

	createdAt := make(map[string]time.Time)

	for {
		select {
		case <-ctx.Done():
			return
		case evt, ok := <-events:
			if !ok {
				return
			}
			switch evt.Type {
			case "task_created":
				createdAt[evt.TaskID] = evt.Timestamp
			case "task_assigned":
				if t, found := createdAt[evt.TaskID]; found {
					metrics.AssignmentLatency.Observe(evt.Timestamp.Sub(t).Seconds())
					delete(createdAt, evt.TaskID)
				}
			case "conflicts_detected":
				conflicts, _ := evt.Payload["conflicts"].([]coordination.Conflict)
				for _, c := range conflicts {
					metrics.ConflictsDetected.WithLabelValues(string(c.Type)).Inc()
					metrics.ConflictsBySeverity.WithLabelValues(string(c.Severity)).Inc()
				}
			}
		}
	}
}
