package coordination

import (
	"context"
	"errors"
	"sync"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"coordination-hub/internal/clockid"
)

// Coordinator owns the task map and its lifecycle: creation, dependency
// gating, optimal assignment against the Registry, and progress transitions.
type Coordinator struct {
	mu       sync.RWMutex
	tasks    map[string]*Task
	order    []string
	registry *Registry
	events   EventSink
	tracer   trace.Tracer
}

// NewCoordinator wires a coordinator to the registry it assigns against and
// the sink it reports events to.
func NewCoordinator(registry *Registry, events EventSink) *Coordinator {
	return &Coordinator{
		tasks:    make(map[string]*Task),
		registry: registry,
		events:   events,
		tracer:   otel.Tracer("coordination-hub"),
	}
}

// CreateTask validates and records a new task in pending state. It does not
// attempt assignment; callers trigger that separately (see AssignOptimal),
// matching the protocol's "create then attempt immediate assignment" flow.
func (c *Coordinator) CreateTask(description string, requiredCapabilities []string, priority TaskPriority, dependencies []string) (*Task, error) {
	if description == "" {
		return nil, errors.New("description must not be empty")
	}
	if priority == "" {
		priority = PriorityMedium
	}

	task := &Task{
		ID:                   clockid.NewTaskID(),
		Description:          description,
		RequiredCapabilities: CapabilitySet(requiredCapabilities),
		Priority:             priority,
		Status:               TaskPending,
		Dependencies:         dedupePreserveOrder(dependencies),
		Progress:             0,
		CreatedAt:            clockid.Now(),
	}

	c.mu.Lock()
	c.tasks[task.ID] = task
	c.order = append(c.order, task.ID)
	c.mu.Unlock()

	c.events.Emit(Event{
		Type:      "task_created",
		TaskID:    task.ID,
		Timestamp: task.CreatedAt,
		Payload:   map[string]any{"description": description},
	})

	snapshot := *task
	return &snapshot, nil
}

// AssignOptimal attempts to assign task_id to the best-qualified idle agent.
// It is a no-op returning (nil, false) when the task is not pending, has
// unmet dependencies, or no viable agent exists; none of those are errors.
func (c *Coordinator) AssignOptimal(ctx context.Context, taskID string) (*Assignment, bool) {
	ctx, span := c.tracer.Start(ctx, "assign_optimal")
	defer span.End()
	span.SetAttributes(attribute.String("task.id", taskID))

	c.mu.Lock()
	task, ok := c.tasks[taskID]
	if !ok || task.Status != TaskPending {
		c.mu.Unlock()
		span.SetAttributes(attribute.Bool("assigned", false))
		return nil, false
	}
	for _, depID := range task.Dependencies {
		dep, exists := c.tasks[depID]
		if !exists || dep.Status != TaskCompleted {
			c.mu.Unlock()
			span.SetAttributes(attribute.Bool("blocked_by_dependency", true))
			return nil, false
		}
	}
	required := task.RequiredCapabilities
	c.mu.Unlock()

	agent := c.registry.Select(required)
	if agent == nil {
		span.SetAttributes(attribute.Bool("assigned", false))
		c.events.Emit(Event{
			Type:      "task_pending",
			TaskID:    taskID,
			Timestamp: clockid.Now(),
			Payload:   map[string]any{"reason": "no_viable_agent"},
		})
		return nil, false
	}

	now := clockid.Now()
	c.mu.Lock()
	task.Status = TaskAssigned
	task.AssignedAgent = agent.ID
	c.mu.Unlock()

	c.registry.SetStatus(agent.ID, AgentBusy, &taskID)

	assignment := &Assignment{
		TaskID:     taskID,
		AgentID:    agent.ID,
		AssignedAt: now,
		Reason:     "highest scored candidate",
	}
	c.events.Emit(Event{
		Type:      "task_assigned",
		TaskID:    taskID,
		AgentID:   agent.ID,
		Timestamp: now,
		Payload:   map[string]any{"reason": assignment.Reason},
	})
	span.SetAttributes(attribute.Bool("assigned", true), attribute.String("agent.id", agent.ID))
	return assignment, true
}

// UpdateProgress applies a progress/status update to a task, enforcing the
// state machine's permitted transitions (assigned -> in_progress,
// {assigned|in_progress} -> completed|failed). Invalid transitions are
// silently ignored. A progress value is applied only while the task is
// non-terminal and only if it does not decrease the recorded progress,
// preserving invariant 4 (progress = 100 once completed) and the
// non-decreasing property once a task has finished. Returns false only when
// the task id is unknown.
func (c *Coordinator) UpdateProgress(taskID string, progress *int, status *TaskStatus, message string) bool {
	c.mu.Lock()
	task, ok := c.tasks[taskID]
	if !ok {
		c.mu.Unlock()
		return false
	}

	terminal := task.Status == TaskCompleted || task.Status == TaskFailed
	if progress != nil && !terminal {
		if clamped := clampInt(*progress, 0, 100); clamped > task.Progress {
			task.Progress = clamped
		}
	}

	var completedNow bool
	var finishedAgent string
	var finishedSuccess bool

	if status != nil {
		next := *status
		allowed := false
		switch task.Status {
		case TaskAssigned:
			allowed = next == TaskInProgress || next == TaskCompleted || next == TaskFailed
		case TaskInProgress:
			allowed = next == TaskCompleted || next == TaskFailed
		}

		if allowed {
			switch next {
			case TaskInProgress:
				if task.StartedAt.IsZero() {
					task.StartedAt = clockid.Now()
				}
				task.Status = TaskInProgress
			case TaskCompleted:
				task.CompletedAt = clockid.Now()
				task.Progress = 100
				task.Status = TaskCompleted
				completedNow = true
				finishedAgent = task.AssignedAgent
				finishedSuccess = true
			case TaskFailed:
				task.CompletedAt = clockid.Now()
				task.Status = TaskFailed
				completedNow = true
				finishedAgent = task.AssignedAgent
				finishedSuccess = false
			}
		}
	}

	snapshotStatus := task.Status
	snapshotProgress := task.Progress
	startedAt := task.StartedAt
	completedAt := task.CompletedAt
	c.mu.Unlock()

	if completedNow && finishedAgent != "" {
		duration := 0.0
		if finishedSuccess && !startedAt.IsZero() {
			duration = float64(completedAt.Sub(startedAt).Milliseconds())
		}
		c.registry.RecordPerformance(finishedAgent, duration, finishedSuccess)
		idle := ""
		c.registry.SetStatus(finishedAgent, AgentOnline, &idle)
	}

	c.events.Emit(Event{
		Type:      "task_progress_updated",
		TaskID:    taskID,
		Timestamp: clockid.Now(),
		Payload: map[string]any{
			"progress": snapshotProgress,
			"status":   string(snapshotStatus),
			"message":  message,
		},
	})

	if completedNow {
		c.ProcessPendingTasks(context.Background())
	}
	return true
}

// ProcessPendingTasks re-examines every pending task in insertion order and
// attempts assignment. UpdateProgress calls it after any task reaches
// completed or failed; task creation attempts assignment of the new task
// alone via AssignOptimal.
func (c *Coordinator) ProcessPendingTasks(ctx context.Context) {
	c.mu.RLock()
	pending := make([]string, 0, len(c.order))
	for _, id := range c.order {
		if c.tasks[id].Status == TaskPending {
			pending = append(pending, id)
		}
	}
	c.mu.RUnlock()

	for _, id := range pending {
		c.AssignOptimal(ctx, id)
	}
}

// Get returns a copy of a task record, if known.
func (c *Coordinator) Get(id string) (*Task, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	task, ok := c.tasks[id]
	if !ok {
		return nil, false
	}
	snapshot := *task
	return &snapshot, true
}

// All returns a snapshot of every task, in creation order.
func (c *Coordinator) All() []*Task {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]*Task, 0, len(c.order))
	for _, id := range c.order {
		snapshot := *c.tasks[id]
		out = append(out, &snapshot)
	}
	return out
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func dedupePreserveOrder(ids []string) []string {
	if len(ids) == 0 {
		return nil
	}
	seen := make(map[string]struct{}, len(ids))
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}
