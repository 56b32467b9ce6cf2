package coordination

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEventHubRecentReturnsInsertionOrder(t *testing.T) {
	hub := NewEventHub(10)
	for i := 0; i < 5; i++ {
		hub.Emit(Event{Type: "task_created", Timestamp: time.Now()})
	}

	recent := hub.Recent(3)
	require.Len(t, recent, 3)

	all := hub.Recent(100)
	assert.Len(t, all, 5)
}

func TestEventHubRingEvictsOldestOnOverflow(t *testing.T) {
	hub := NewEventHub(3)
	for i := 0; i < 5; i++ {
		hub.Emit(Event{Type: "task_created", TaskID: itoa(i), Timestamp: time.Now()})
	}

	recent := hub.Recent(10)
	require.Len(t, recent, 3)
	assert.Equal(t, "2", recent[0].TaskID)
	assert.Equal(t, "4", recent[2].TaskID)
}

func TestEventHubByTypeFilters(t *testing.T) {
	hub := NewEventHub(100)
	hub.Emit(Event{Type: "task_created", Timestamp: time.Now()})
	hub.Emit(Event{Type: "agent_registered", Timestamp: time.Now()})
	hub.Emit(Event{Type: "task_created", Timestamp: time.Now()})

	matched := hub.ByType("task_created", 10)
	assert.Len(t, matched, 2)
	for _, evt := range matched {
		assert.Equal(t, "task_created", evt.Type)
	}
}

func TestEventHubDropsSlowObserver(t *testing.T) {
	hub := NewEventHub(100)
	_, events := hub.Subscribe()

	for i := 0; i < observerQueueSize+10; i++ {
		hub.Emit(Event{Type: "task_created", Timestamp: time.Now()})
	}

	// The observer's channel should have been closed once its buffer
	// overflowed, rather than blocking every subsequent Emit.
	drained := 0
	for range events {
		drained++
	}
	assert.LessOrEqual(t, drained, observerQueueSize)
}

func TestEventHubReplayMatchesLiveHistory(t *testing.T) {
	hub := NewEventHub(100)
	hub.Emit(Event{Type: "task_created", TaskID: "t1", Timestamp: time.Now()})
	hub.Emit(Event{Type: "task_assigned", TaskID: "t1", Timestamp: time.Now()})

	lateJoiner := hub.Recent(10)
	require.Len(t, lateJoiner, 2)
	assert.Equal(t, "task_created", lateJoiner[0].Type)
	assert.Equal(t, "task_assigned", lateJoiner[1].Type)
}

func itoa(i int) string {
	digits := "0123456789"
	if i == 0 {
		return "0"
	}
	var buf []byte
	for i > 0 {
		buf = append([]byte{digits[i%10]}, buf...)
		i /= 10
	}
	return string(buf)
}
