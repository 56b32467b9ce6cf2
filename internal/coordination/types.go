// Package coordination implements the matching-assignment-progress-conflict
// engine: the agent registry, the task coordinator, the conflict detector,
// and the event hub that fans their state changes out to observers.
package coordination

import "time"

// AgentStatus is the lifecycle state of a registered agent.
type AgentStatus string

const (
	AgentOnline  AgentStatus = "online"
	AgentBusy    AgentStatus = "busy"
	AgentOffline AgentStatus = "offline"
)

// ChannelRef is an opaque handle the transport layer hands the registry so
// it can route outbound messages to a specific agent connection. The
// registry never dereferences it; it only holds or drops it.
type ChannelRef interface {
	// Send delivers a single outbound message to this connection. It must
	// not block the caller for long — implementations should use a
	// buffered, non-blocking write and drop the connection on overflow.
	Send(event Event)
	// Close tears down the underlying connection.
	Close()
}

// Agent is a registered worker endpoint.
type Agent struct {
	ID                string
	Name              string
	Capabilities      map[string]struct{}
	Status            AgentStatus
	ChannelRef        ChannelRef
	CurrentTask       string
	LastSeen          time.Time
	PerformanceScore  float64
	TasksCompleted    int
	AverageTaskTimeMs float64

	// seq records registration order so Select can tie-break
	// deterministically; it is not part of the public data model.
	seq uint64
}

// CapabilitySet builds a capability set from a slice of tags.
func CapabilitySet(tags []string) map[string]struct{} {
	set := make(map[string]struct{}, len(tags))
	for _, t := range tags {
		set[t] = struct{}{}
	}
	return set
}

// TaskPriority is informational only; the matcher in Select never reads it
// (see spec §9 "Priority field unused").
type TaskPriority string

const (
	PriorityLow      TaskPriority = "low"
	PriorityMedium   TaskPriority = "medium"
	PriorityHigh     TaskPriority = "high"
	PriorityCritical TaskPriority = "critical"
)

// TaskStatus is a task's position in its lifecycle state machine.
type TaskStatus string

const (
	TaskPending    TaskStatus = "pending"
	TaskAssigned   TaskStatus = "assigned"
	TaskInProgress TaskStatus = "in_progress"
	TaskCompleted  TaskStatus = "completed"
	TaskFailed     TaskStatus = "failed"
)

// Task is a unit of work tracked by the Coordinator.
type Task struct {
	ID                   string
	Description          string
	RequiredCapabilities map[string]struct{}
	Priority             TaskPriority
	Status               TaskStatus
	AssignedAgent        string
	Dependencies         []string
	Progress             int
	CreatedAt            time.Time
	StartedAt            time.Time
	CompletedAt          time.Time
}

// Assignment is the ephemeral (task, agent) binding that exists while a
// task is assigned or in_progress.
type Assignment struct {
	TaskID     string
	AgentID    string
	AssignedAt time.Time
	Reason     string
}

// Event is a single coordination event, broadcast live and retained in the
// event ring for replay.
type Event struct {
	Type      string         `json:"type"`
	AgentID   string         `json:"agentId,omitempty"`
	TaskID    string         `json:"taskId,omitempty"`
	Payload   map[string]any `json:"payload,omitempty"`
	Timestamp time.Time      `json:"timestamp"`
}

// Conflict severities.
type ConflictSeverity string

const (
	SeverityLow    ConflictSeverity = "low"
	SeverityMedium ConflictSeverity = "medium"
	SeverityHigh   ConflictSeverity = "high"
)

// ConflictType enumerates the three conflict classes the detector reports.
type ConflictType string

const (
	ConflictResourceContention ConflictType = "resource_contention"
	ConflictDependencyDeadlock ConflictType = "dependency_deadlock"
	ConflictCapabilityMismatch ConflictType = "capability_mismatch"
)

// Conflict is a single finding produced by the Conflict Detector.
type Conflict struct {
	Type       ConflictType
	TaskIDs    []string
	AgentIDs   []string
	Severity   ConflictSeverity
	Resolution string
}
