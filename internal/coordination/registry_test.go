package coordination

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type noopSink struct{}

func (noopSink) Emit(Event) {}

type recordingSink struct {
	events []Event
}

func (r *recordingSink) Emit(evt Event) {
	r.events = append(r.events, evt)
}

type fakeChannel struct {
	closed bool
}

func (f *fakeChannel) Send(Event) {}
func (f *fakeChannel) Close()     { f.closed = true }

func TestRegisterIsIdempotentAndPreservesCounters(t *testing.T) {
	r := NewRegistry(noopSink{})

	r.Register("a1", "Agent One", []string{"python"}, &fakeChannel{})
	r.RecordPerformance("a1", 1000, true)
	require.Equal(t, 1, mustAgent(t, r, "a1").TasksCompleted)

	agent := r.Register("a1", "Agent One Renamed", []string{"python", "sql"}, &fakeChannel{})
	assert.Equal(t, 1, agent.TasksCompleted, "re-registration must preserve tasks_completed")
	assert.Equal(t, AgentOnline, agent.Status)
	assert.Empty(t, agent.CurrentTask)
	assert.Equal(t, "Agent One Renamed", agent.Name)
}

func TestSetStatusOfflineDropsChannelButKeepsCurrentTask(t *testing.T) {
	r := NewRegistry(noopSink{})
	ch := &fakeChannel{}
	r.Register("a1", "", []string{"python"}, ch)

	task := "t1"
	r.SetStatus("a1", AgentBusy, &task)

	r.SetStatus("a1", AgentOffline, nil)
	agent := mustAgent(t, r, "a1")
	assert.Equal(t, AgentOffline, agent.Status)
	assert.Equal(t, "t1", agent.CurrentTask, "disconnect must not clear an in-flight task reference")
}

func TestRecordPerformanceFormulas(t *testing.T) {
	r := NewRegistry(noopSink{})
	r.Register("a1", "", nil, &fakeChannel{})

	r.RecordPerformance("a1", 60000, true)
	agent := mustAgent(t, r, "a1")
	assert.Equal(t, 1, agent.TasksCompleted)
	assert.InDelta(t, 60000, agent.AverageTaskTimeMs, 0.001)
	assert.InDelta(t, 1.0, agent.PerformanceScore, 0.001)

	r.RecordPerformance("a1", 30000, true)
	agent = mustAgent(t, r, "a1")
	assert.Equal(t, 2, agent.TasksCompleted)
	assert.InDelta(t, 45000, agent.AverageTaskTimeMs, 0.001, "average_task_time blends prior average with new sample, not a true moving average")

	r2 := NewRegistry(noopSink{})
	r2.Register("a2", "", nil, &fakeChannel{})
	r2.RecordPerformance("a2", 1, false)
	agent2 := mustAgent(t, r2, "a2")
	assert.InDelta(t, 0.8, agent2.PerformanceScore, 0.001)
}

func TestSelectIsDeterministicAndOptimal(t *testing.T) {
	r := NewRegistry(noopSink{})
	r.Register("a1", "", []string{"react"}, &fakeChannel{})
	r.Register("a2", "", []string{"react", "typescript"}, &fakeChannel{})

	required := CapabilitySet([]string{"react", "typescript"})

	first := r.Select(required)
	require.NotNil(t, first)
	assert.Equal(t, "a2", first.ID)

	for i := 0; i < 5; i++ {
		again := r.Select(required)
		require.NotNil(t, again)
		assert.Equal(t, first.ID, again.ID, "selection must be deterministic across repeated calls")
	}
}

func TestSelectTieBreaksByInsertionOrder(t *testing.T) {
	r := NewRegistry(noopSink{})
	r.Register("first", "", []string{"python"}, &fakeChannel{})
	r.Register("second", "", []string{"python"}, &fakeChannel{})

	agent := r.Select(CapabilitySet([]string{"python"}))
	require.NotNil(t, agent)
	assert.Equal(t, "first", agent.ID)
}

func TestSelectReturnsNilWhenNoneIdle(t *testing.T) {
	r := NewRegistry(noopSink{})
	r.Register("a1", "", []string{"python"}, &fakeChannel{})
	task := "t1"
	r.SetStatus("a1", AgentBusy, &task)

	assert.Nil(t, r.Select(CapabilitySet([]string{"python"})))
}

func TestSweepStaleMarksOfflineAndEmits(t *testing.T) {
	sink := &recordingSink{}
	r := NewRegistry(sink)
	r.Register("a1", "", nil, &fakeChannel{})

	// A negative staleness pushes the cutoff into the future, so every
	// non-offline agent's last_seen (always in the past relative to now)
	// is swept without needing to sleep in the test.
	stale := r.SweepStale(-time.Second)
	assert.Equal(t, []string{"a1"}, stale)
	assert.Equal(t, AgentOffline, mustAgent(t, r, "a1").Status)

	var sawSweepEvent bool
	for _, evt := range sink.events {
		if evt.Type == "agent_status_updated" && evt.Payload["reason"] == "liveness_sweep" {
			sawSweepEvent = true
		}
	}
	assert.True(t, sawSweepEvent)
}

func mustAgent(t *testing.T, r *Registry, id string) *Agent {
	t.Helper()
	agent, ok := r.Get(id)
	require.True(t, ok)
	return agent
}
