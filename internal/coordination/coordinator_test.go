package coordination

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newHarness() (*Registry, *Coordinator, *recordingSink) {
	sink := &recordingSink{}
	registry := NewRegistry(sink)
	coordinator := NewCoordinator(registry, sink)
	return registry, coordinator, sink
}

func TestStraightAssignment(t *testing.T) {
	registry, coordinator, _ := newHarness()
	registry.Register("A1", "", []string{"python", "backend"}, &fakeChannel{})

	task, err := coordinator.CreateTask("do the thing", []string{"python"}, "", nil)
	require.NoError(t, err)

	assignment, ok := coordinator.AssignOptimal(context.Background(), task.ID)
	require.True(t, ok)
	assert.Equal(t, "A1", assignment.AgentID)

	agent := mustAgent(t, registry, "A1")
	assert.Equal(t, AgentBusy, agent.Status)
	assert.Equal(t, task.ID, agent.CurrentTask)
}

func TestCapabilityBasedSelectionOverPerformance(t *testing.T) {
	registry, coordinator, _ := newHarness()
	registry.Register("A1", "", []string{"react"}, &fakeChannel{})
	registry.Register("A2", "", []string{"react", "typescript"}, &fakeChannel{})

	task, err := coordinator.CreateTask("build ui", []string{"react", "typescript"}, "", nil)
	require.NoError(t, err)

	assignment, ok := coordinator.AssignOptimal(context.Background(), task.ID)
	require.True(t, ok)
	assert.Equal(t, "A2", assignment.AgentID)
}

func TestDependencyGating(t *testing.T) {
	registry, coordinator, sink := newHarness()

	t1, err := coordinator.CreateTask("first", []string{"python"}, "", nil)
	require.NoError(t, err)
	t2, err := coordinator.CreateTask("second", []string{"python"}, "", []string{t1.ID})
	require.NoError(t, err)

	registry.Register("A1", "", []string{"python"}, &fakeChannel{})

	coordinator.ProcessPendingTasks(context.Background())

	first, ok := coordinator.Get(t1.ID)
	require.True(t, ok)
	assert.Equal(t, TaskAssigned, first.Status)

	second, ok := coordinator.Get(t2.ID)
	require.True(t, ok)
	assert.Equal(t, TaskPending, second.Status, "dependent task must stay pending until its dependency completes")

	progress := 100
	completed := TaskCompleted
	ok = coordinator.UpdateProgress(t1.ID, &progress, &completed, "")
	require.True(t, ok)

	// Completing T1 returns A1 to online; the pending re-scan inside the same
	// UpdateProgress call then hands T2 to A1, so the release is checked in
	// the event order rather than in the final agent state.
	releasedAt, reassignedAt := -1, -1
	for i, evt := range sink.events {
		if releasedAt == -1 && evt.Type == "agent_status_updated" && evt.AgentID == "A1" && evt.Payload["status"] == string(AgentOnline) {
			releasedAt = i
		}
		if evt.Type == "task_assigned" && evt.TaskID == t2.ID {
			reassignedAt = i
		}
	}
	require.NotEqual(t, -1, releasedAt, "A1 must return to online when T1 completes")
	assert.Less(t, releasedAt, reassignedAt, "A1 returns to online before T2 is assigned to it")

	agent := mustAgent(t, registry, "A1")
	assert.Equal(t, AgentBusy, agent.Status)
	assert.Equal(t, t2.ID, agent.CurrentTask)

	second, ok = coordinator.Get(t2.ID)
	require.True(t, ok)
	assert.Equal(t, TaskAssigned, second.Status)
	assert.Equal(t, "A1", second.AssignedAgent)
}

func TestProgressForcedTo100OnCompletion(t *testing.T) {
	registry, coordinator, _ := newHarness()
	registry.Register("A1", "", nil, &fakeChannel{})

	task, err := coordinator.CreateTask("trivial", nil, "", nil)
	require.NoError(t, err)
	coordinator.AssignOptimal(context.Background(), task.ID)

	inProgress := TaskInProgress
	half := 40
	coordinator.UpdateProgress(task.ID, &half, &inProgress, "")

	completed := TaskCompleted
	partial := 55
	coordinator.UpdateProgress(task.ID, &partial, &completed, "")

	got, ok := coordinator.Get(task.ID)
	require.True(t, ok)
	assert.Equal(t, 100, got.Progress, "completion forces progress to 100 regardless of the accompanying value")
	assert.Equal(t, TaskCompleted, got.Status)
}

func TestProgressIgnoredOnceTerminalAndNeverDecreases(t *testing.T) {
	registry, coordinator, _ := newHarness()
	registry.Register("A1", "", nil, &fakeChannel{})

	task, err := coordinator.CreateTask("trivial", nil, "", nil)
	require.NoError(t, err)
	coordinator.AssignOptimal(context.Background(), task.ID)

	inProgress := TaskInProgress
	seventy := 70
	coordinator.UpdateProgress(task.ID, &seventy, &inProgress, "")

	// A stale/decreasing progress report must not roll the value back.
	thirty := 30
	coordinator.UpdateProgress(task.ID, &thirty, nil, "")
	got, ok := coordinator.Get(task.ID)
	require.True(t, ok)
	assert.Equal(t, 70, got.Progress, "progress must not decrease")

	completed := TaskCompleted
	coordinator.UpdateProgress(task.ID, nil, &completed, "")

	// A bare progress report after completion must not rewrite it.
	fifty := 50
	coordinator.UpdateProgress(task.ID, &fifty, nil, "")
	got, ok = coordinator.Get(task.ID)
	require.True(t, ok)
	assert.Equal(t, 100, got.Progress, "progress must stay 100 once completed, invariant 4")
	assert.Equal(t, TaskCompleted, got.Status)
}

func TestTerminalStatesDoNotAcceptFurtherTransitions(t *testing.T) {
	registry, coordinator, _ := newHarness()
	registry.Register("A1", "", nil, &fakeChannel{})
	task, err := coordinator.CreateTask("one-shot", nil, "", nil)
	require.NoError(t, err)
	coordinator.AssignOptimal(context.Background(), task.ID)

	completed := TaskCompleted
	coordinator.UpdateProgress(task.ID, nil, &completed, "")

	inProgress := TaskInProgress
	coordinator.UpdateProgress(task.ID, nil, &inProgress, "")

	got, ok := coordinator.Get(task.ID)
	require.True(t, ok)
	assert.Equal(t, TaskCompleted, got.Status, "terminal state must not leave completed")
}

func TestNoViableAgentLeavesTaskPending(t *testing.T) {
	_, coordinator, sink := newHarness()
	task, err := coordinator.CreateTask("orphan", []string{"rust"}, "", nil)
	require.NoError(t, err)

	_, ok := coordinator.AssignOptimal(context.Background(), task.ID)
	assert.False(t, ok)

	got, _ := coordinator.Get(task.ID)
	assert.Equal(t, TaskPending, got.Status)

	var sawPending bool
	for _, evt := range sink.events {
		if evt.Type == "task_pending" {
			sawPending = true
		}
	}
	assert.True(t, sawPending)
}
