package coordination

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"coordination-hub/internal/clockid"
)

// ConflictDetector inspects current Registry and Coordinator state for the
// three conflict classes. It never mutates either; Detect is a pure read.
type ConflictDetector struct {
	registry    *Registry
	coordinator *Coordinator
	events      EventSink
}

// NewConflictDetector wires a detector to the registry and coordinator it
// inspects and the sink it reports findings to.
func NewConflictDetector(registry *Registry, coordinator *Coordinator, events EventSink) *ConflictDetector {
	return &ConflictDetector{registry: registry, coordinator: coordinator, events: events}
}

// Detect runs all three checks against a snapshot of agents and a snapshot
// of tasks (taken one after the other, not atomically together), emits conflicts_detected when the result is non-empty,
// and kicks off the (no-op remediation) resolution event sequence for each
// finding.
func (d *ConflictDetector) Detect() []Conflict {
	agents := d.registry.All()
	tasks := d.coordinator.All()

	var conflicts []Conflict
	conflicts = append(conflicts, d.resourceContention(agents, tasks)...)
	conflicts = append(conflicts, d.dependencyDeadlocks(tasks)...)
	conflicts = append(conflicts, d.capabilityMismatches(agents, tasks)...)

	if len(conflicts) == 0 {
		return conflicts
	}

	d.events.Emit(Event{
		Type:      "conflicts_detected",
		Timestamp: clockid.Now(),
		Payload:   map[string]any{"count": len(conflicts), "conflicts": conflicts},
	})
	for _, c := range conflicts {
		d.startResolution(c)
	}
	return conflicts
}

// resourceContention flags any busy agent assigned to more than one
// non-terminal task. Invariant 1 should prevent this; detection exists to
// catch the violation, not to be its primary guard.
func (d *ConflictDetector) resourceContention(agents []*Agent, tasks []*Task) []Conflict {
	byAgent := make(map[string][]string)
	for _, t := range tasks {
		if t.AssignedAgent == "" {
			continue
		}
		if t.Status == TaskAssigned || t.Status == TaskInProgress {
			byAgent[t.AssignedAgent] = append(byAgent[t.AssignedAgent], t.ID)
		}
	}

	var out []Conflict
	for _, a := range agents {
		taskIDs := byAgent[a.ID]
		if len(taskIDs) > 1 && a.Status == AgentBusy {
			out = append(out, Conflict{
				Type:       ConflictResourceContention,
				TaskIDs:    taskIDs,
				AgentIDs:   []string{a.ID},
				Severity:   SeverityMedium,
				Resolution: "redistribute the extra tasks to idle agents",
			})
		}
	}
	return out
}

// dependencyDeadlocks runs a depth-first traversal with an explicit
// recursion stack over the task-to-dependency graph, reporting each cycle
// once in the order its closing edge was found.
func (d *ConflictDetector) dependencyDeadlocks(tasks []*Task) []Conflict {
	byID := make(map[string]*Task, len(tasks))
	for _, t := range tasks {
		byID[t.ID] = t
	}

	const (
		white = iota
		gray
		black
	)
	color := make(map[string]int, len(tasks))
	reported := make(map[string]bool)
	var stack []string
	var out []Conflict

	var visit func(id string)
	visit = func(id string) {
		color[id] = gray
		stack = append(stack, id)

		if task := byID[id]; task != nil {
			for _, dep := range task.Dependencies {
				if _, exists := byID[dep]; !exists {
					continue
				}
				switch color[dep] {
				case white:
					visit(dep)
				case gray:
					cycle := cycleFromStack(stack, dep)
					key := cycleKey(cycle)
					if !reported[key] {
						reported[key] = true
						out = append(out, Conflict{
							Type:       ConflictDependencyDeadlock,
							TaskIDs:    cycle,
							Severity:   SeverityHigh,
							Resolution: "break the cycle by removing or reordering one dependency edge",
						})
					}
				}
			}
		}

		stack = stack[:len(stack)-1]
		color[id] = black
	}

	for _, t := range tasks {
		if color[t.ID] == white {
			visit(t.ID)
		}
	}
	return out
}

func cycleFromStack(stack []string, start string) []string {
	idx := -1
	for i, id := range stack {
		if id == start {
			idx = i
			break
		}
	}
	if idx == -1 {
		return nil
	}
	cycle := make([]string, len(stack)-idx)
	copy(cycle, stack[idx:])
	return cycle
}

func cycleKey(ids []string) string {
	sorted := append([]string(nil), ids...)
	sort.Strings(sorted)
	return strings.Join(sorted, ",")
}

// capabilityMismatches flags tasks in assigned/in_progress whose assigned
// agent does not cover the task's required capabilities. capability_score
// coverage-not-containment is a deliberate softness of Select; this is how
// such a gap becomes visible after the fact.
func (d *ConflictDetector) capabilityMismatches(agents []*Agent, tasks []*Task) []Conflict {
	agentByID := make(map[string]*Agent, len(agents))
	for _, a := range agents {
		agentByID[a.ID] = a
	}

	var out []Conflict
	for _, t := range tasks {
		if t.Status != TaskAssigned && t.Status != TaskInProgress {
			continue
		}
		agent := agentByID[t.AssignedAgent]
		if agent == nil {
			continue
		}

		var missing []string
		for cap := range t.RequiredCapabilities {
			if _, ok := agent.Capabilities[cap]; !ok {
				missing = append(missing, cap)
			}
		}
		if len(missing) == 0 {
			continue
		}
		sort.Strings(missing)
		out = append(out, Conflict{
			Type:       ConflictCapabilityMismatch,
			TaskIDs:    []string{t.ID},
			AgentIDs:   []string{agent.ID},
			Severity:   SeverityLow,
			Resolution: fmt.Sprintf("agent missing capabilities: %s", strings.Join(missing, ", ")),
		})
	}
	return out
}

// startResolution emits conflict_resolution_started immediately, then
// conflict_resolved after a bounded, type-dependent delay. Remediation
// itself is intentionally a no-op (spec §9): nothing reassigns tasks, breaks
// cycles, or touches agents as a result of this call.
func (d *ConflictDetector) startResolution(c Conflict) {
	d.events.Emit(Event{
		Type:      "conflict_resolution_started",
		TaskID:    firstOrEmpty(c.TaskIDs),
		AgentID:   firstOrEmpty(c.AgentIDs),
		Timestamp: clockid.Now(),
		Payload: map[string]any{
			"type":       string(c.Type),
			"severity":   string(c.Severity),
			"resolution": c.Resolution,
		},
	})

	go func(conf Conflict) {
		time.Sleep(resolutionDelay(conf.Type))
		d.events.Emit(Event{
			Type:      "conflict_resolved",
			TaskID:    firstOrEmpty(conf.TaskIDs),
			AgentID:   firstOrEmpty(conf.AgentIDs),
			Timestamp: clockid.Now(),
			Payload:   map[string]any{"type": string(conf.Type)},
		})
	}(c)
}

func resolutionDelay(t ConflictType) time.Duration {
	switch t {
	case ConflictDependencyDeadlock:
		return 3 * time.Second
	case ConflictResourceContention:
		return 2 * time.Second
	default:
		return 2500 * time.Millisecond
	}
}

func firstOrEmpty(ids []string) string {
	if len(ids) == 0 {
		return ""
	}
	return ids[0]
}
