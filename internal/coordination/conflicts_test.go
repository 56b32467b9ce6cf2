package coordination

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDependencyDeadlockDetection(t *testing.T) {
	registry, coordinator, sink := newHarness()
	detector := NewConflictDetector(registry, coordinator, sink)

	t1, err := coordinator.CreateTask("t1", nil, "", nil)
	require.NoError(t, err)
	t2, err := coordinator.CreateTask("t2", nil, "", []string{t1.ID})
	require.NoError(t, err)

	// Patch t1's dependency to point at t2, completing the cycle T1 -> T2 -> T1.
	fixDependencies(t, coordinator, t1.ID, []string{t2.ID})

	conflicts := detector.Detect()
	var found *Conflict
	for i := range conflicts {
		if conflicts[i].Type == ConflictDependencyDeadlock {
			found = &conflicts[i]
		}
	}
	require.NotNil(t, found)
	assert.Equal(t, SeverityHigh, found.Severity)
	assert.ElementsMatch(t, []string{t1.ID, t2.ID}, found.TaskIDs)
}

func TestCapabilityMismatchDespiteSuccessfulMatch(t *testing.T) {
	registry, coordinator, sink := newHarness()
	detector := NewConflictDetector(registry, coordinator, sink)

	registry.Register("A1", "", []string{"python"}, &fakeChannel{})
	task, err := coordinator.CreateTask("needs sql too", []string{"python", "sql"}, "", nil)
	require.NoError(t, err)

	_, ok := coordinator.AssignOptimal(context.Background(), task.ID)
	require.True(t, ok, "coverage scoring selects the best candidate even with a gap")

	conflicts := detector.Detect()
	var found *Conflict
	for i := range conflicts {
		if conflicts[i].Type == ConflictCapabilityMismatch {
			found = &conflicts[i]
		}
	}
	require.NotNil(t, found)
	assert.Contains(t, found.Resolution, "sql")
}

func TestResourceContentionDetection(t *testing.T) {
	registry, coordinator, sink := newHarness()
	detector := NewConflictDetector(registry, coordinator, sink)

	registry.Register("A1", "", nil, &fakeChannel{})
	busy := AgentBusy
	registry.SetStatus("A1", busy, nil)

	t1, _ := coordinator.CreateTask("one", nil, "", nil)
	t2, _ := coordinator.CreateTask("two", nil, "", nil)
	forceAssignment(t, coordinator, t1.ID, "A1")
	forceAssignment(t, coordinator, t2.ID, "A1")

	conflicts := detector.Detect()
	var found *Conflict
	for i := range conflicts {
		if conflicts[i].Type == ConflictResourceContention {
			found = &conflicts[i]
		}
	}
	require.NotNil(t, found)
	assert.ElementsMatch(t, []string{t1.ID, t2.ID}, found.TaskIDs)
}

// fixDependencies and forceAssignment reach past the public API to set up
// states the normal operations refuse to produce on purpose (a cycle, a
// double assignment) so the detector has something to catch.

func fixDependencies(t *testing.T, c *Coordinator, taskID string, deps []string) {
	t.Helper()
	c.mu.Lock()
	defer c.mu.Unlock()
	c.tasks[taskID].Dependencies = deps
}

func forceAssignment(t *testing.T, c *Coordinator, taskID, agentID string) {
	t.Helper()
	c.mu.Lock()
	defer c.mu.Unlock()
	task := c.tasks[taskID]
	task.Status = TaskAssigned
	task.AssignedAgent = agentID
}
