package coordination

import (
	"sync"
	"time"

	"coordination-hub/internal/clockid"
)

// EventSink is anything that accepts coordination events for broadcast and
// replay. The EventHub is the only production implementation; tests can
// stub it.
type EventSink interface {
	Emit(evt Event)
}

// Registry maintains the set of known agents: their declared capabilities,
// liveness, workload, and rolling performance score. It never blocks a
// caller on transport I/O — ChannelRef.Send is expected to be non-blocking.
type Registry struct {
	mu      sync.RWMutex
	agents  map[string]*Agent
	order   []string // insertion order, for deterministic tie-breaking
	nextSeq uint64
	events  EventSink
}

// NewRegistry creates an empty agent registry that emits events to sink.
func NewRegistry(sink EventSink) *Registry {
	return &Registry{
		agents: make(map[string]*Agent),
		events: sink,
	}
}

// Register is idempotent on id: re-registering an existing agent overwrites
// name/capabilities/channel and resets status to online, but preserves
// performance_score, tasks_completed, and average_task_time.
func (r *Registry) Register(id, name string, capabilities []string, ref ChannelRef) *Agent {
	if name == "" {
		name = id
	}

	r.mu.Lock()
	agent, exists := r.agents[id]
	if !exists {
		agent = &Agent{
			ID:               id,
			PerformanceScore: 1.0,
			seq:              r.nextSeq,
		}
		r.nextSeq++
		r.agents[id] = agent
		r.order = append(r.order, id)
	}

	agent.Name = name
	agent.Capabilities = CapabilitySet(capabilities)
	agent.ChannelRef = ref
	agent.Status = AgentOnline
	agent.CurrentTask = ""
	agent.LastSeen = clockid.Now()
	snapshot := *agent
	r.mu.Unlock()

	r.events.Emit(Event{
		Type:      "agent_registered",
		AgentID:   id,
		Timestamp: clockid.Now(),
		Payload: map[string]any{
			"name":         snapshot.Name,
			"capabilities": capabilities,
		},
	})

	return &snapshot
}

// SetStatus updates an agent's status, last_seen, and (when provided)
// current_task. Transitioning to offline drops the channel reference only;
// current_task is left as-is so an in-flight task assignment survives a
// disconnect intact (spec §5, §9 disconnect semantics).
func (r *Registry) SetStatus(id string, status AgentStatus, currentTask *string) bool {
	r.mu.Lock()
	agent, ok := r.agents[id]
	if !ok {
		r.mu.Unlock()
		return false
	}

	agent.Status = status
	agent.LastSeen = clockid.Now()
	if currentTask != nil {
		agent.CurrentTask = *currentTask
	}
	if status == AgentOffline {
		agent.ChannelRef = nil
	}
	r.mu.Unlock()

	r.events.Emit(Event{
		Type:      "agent_status_updated",
		AgentID:   id,
		Timestamp: clockid.Now(),
		Payload:   map[string]any{"status": string(status)},
	})
	return true
}

// RecordPerformance folds a completed or failed task's outcome into an
// agent's rolling performance score. The averaging and clamping formulas
// are preserved verbatim from the source system (spec §9): average_task_time
// is a two-sample blend, not a true moving average.
func (r *Registry) RecordPerformance(id string, durationMs float64, success bool) {
	r.mu.Lock()
	agent, ok := r.agents[id]
	if !ok {
		r.mu.Unlock()
		return
	}

	if success {
		agent.TasksCompleted++
		if agent.TasksCompleted == 1 {
			agent.AverageTaskTimeMs = durationMs
		} else {
			agent.AverageTaskTimeMs = (agent.AverageTaskTimeMs + durationMs) / 2
		}

		efficiency := clamp(60000/maxFloat(durationMs, 1), 0.1, 2.0)
		agent.PerformanceScore = clamp(0.9*agent.PerformanceScore+0.1*efficiency, 0.1, 2.0)
	} else {
		agent.PerformanceScore = maxFloat(0.1, 0.8*agent.PerformanceScore)
	}
	r.mu.Unlock()

	r.events.Emit(Event{
		Type:      "agent_performance_updated",
		AgentID:   id,
		Timestamp: clockid.Now(),
	})
}

// Select returns the best-qualified online, idle agent for a set of
// required capabilities, or nil if none is available. Selection is
// deterministic: the same snapshot and requirement always produce the same
// winner, ties broken by registration order.
func (r *Registry) Select(required map[string]struct{}) *Agent {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var best *Agent
	var bestScore float64
	var bestSeq uint64

	for _, id := range r.order {
		agent := r.agents[id]
		if agent.Status != AgentOnline || agent.CurrentTask != "" {
			continue
		}

		score := scoreAgent(agent, required)
		if best == nil || score > bestScore || (score == bestScore && agent.seq < bestSeq) {
			best = agent
			bestScore = score
			bestSeq = agent.seq
		}
	}

	if best == nil {
		return nil
	}
	snapshot := *best
	return &snapshot
}

func scoreAgent(agent *Agent, required map[string]struct{}) float64 {
	capabilityScore := 1.0
	if len(required) > 0 {
		matched := 0
		for cap := range required {
			if _, ok := agent.Capabilities[cap]; ok {
				matched++
			}
		}
		capabilityScore = float64(matched) / float64(len(required))
	}

	performanceComponent := agent.PerformanceScore
	workloadComponent := 1.0
	if agent.Status != AgentOnline {
		workloadComponent = 0.5
	}

	return 0.6*capabilityScore + 0.3*performanceComponent + 0.1*workloadComponent
}

// Get returns a copy of the agent record for id, if known.
func (r *Registry) Get(id string) (*Agent, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	agent, ok := r.agents[id]
	if !ok {
		return nil, false
	}
	snapshot := *agent
	return &snapshot, true
}

// All returns a snapshot of every known agent, in registration order.
func (r *Registry) All() []*Agent {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]*Agent, 0, len(r.order))
	for _, id := range r.order {
		snapshot := *r.agents[id]
		out = append(out, &snapshot)
	}
	return out
}

// SweepStale marks any non-offline agent whose last_seen is older than
// staleness as offline, and returns the ids affected. Call periodically
// (spec: every minute, staleness 5 minutes). current_task is left
// untouched, consistent with SetStatus's disconnect semantics.
func (r *Registry) SweepStale(staleness time.Duration) []string {
	cutoff := clockid.Now().Add(-staleness)

	r.mu.Lock()
	var stale []string
	for _, id := range r.order {
		agent := r.agents[id]
		if agent.Status != AgentOffline && agent.LastSeen.Before(cutoff) {
			agent.Status = AgentOffline
			agent.ChannelRef = nil
			stale = append(stale, id)
		}
	}
	r.mu.Unlock()

	for _, id := range stale {
		r.events.Emit(Event{
			Type:      "agent_status_updated",
			AgentID:   id,
			Timestamp: clockid.Now(),
			Payload:   map[string]any{"status": string(AgentOffline), "reason": "liveness_sweep"},
		})
	}
	return stale
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func maxFloat(a, b float64) float64 {
	if a > b {
		return a
	}
	return b
}
