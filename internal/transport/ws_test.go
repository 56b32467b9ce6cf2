package transport

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"coordination-hub/internal/coordination"
)

func newTestServer(t *testing.T) (*Server, *httptest.Server) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	hub := coordination.NewEventHub(100)
	registry := coordination.NewRegistry(hub)
	coordinator := coordination.NewCoordinator(registry, hub)
	conflicts := coordination.NewConflictDetector(registry, coordinator, hub)
	srv := NewServer(registry, coordinator, conflicts, hub, zap.NewNop())

	ctx, cancel := context.WithCancel(context.Background())
	go srv.Run(ctx)
	t.Cleanup(cancel)

	router := gin.New()
	srv.RegisterRoutes(router)

	httpSrv := httptest.NewServer(router)
	t.Cleanup(httpSrv.Close)
	return srv, httpSrv
}

func dialWS(t *testing.T, httpSrv *httptest.Server) *websocket.Conn {
	t.Helper()
	wsURL := "ws" + strings.TrimPrefix(httpSrv.URL, "http") + "/ws"
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	return conn
}

func readEvent(t *testing.T, conn *websocket.Conn) coordination.Event {
	t.Helper()
	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	var evt coordination.Event
	require.NoError(t, conn.ReadJSON(&evt))
	return evt
}

// readEventOfType drains events up to a small bound until one of the given
// type shows up, skipping the other broadcasts (e.g. agent_status_updated)
// a single inbound message can trigger alongside it.
func readEventOfType(t *testing.T, conn *websocket.Conn, eventType string) coordination.Event {
	t.Helper()
	for i := 0; i < 10; i++ {
		evt := readEvent(t, conn)
		if evt.Type == eventType {
			return evt
		}
	}
	t.Fatalf("never saw event of type %q", eventType)
	return coordination.Event{}
}

func TestWebSocketRegisterAgentReplyAndBroadcast(t *testing.T) {
	_, httpSrv := newTestServer(t)

	agentConn := dialWS(t, httpSrv)
	require.NoError(t, agentConn.WriteJSON(map[string]any{
		"type":         "register_agent",
		"agentId":      "A1",
		"capabilities": []string{"python"},
	}))

	reply := readEvent(t, agentConn)
	require.Equal(t, "agent_registered", reply.Type)
	require.Equal(t, true, reply.Payload["success"])
	require.Equal(t, "A1", reply.Payload["agentId"])

	joined := readEventOfType(t, agentConn, "agent_joined")
	require.Equal(t, "A1", joined.AgentID)
}

func TestWebSocketCreateTaskAssignsImmediately(t *testing.T) {
	_, httpSrv := newTestServer(t)

	agentConn := dialWS(t, httpSrv)
	require.NoError(t, agentConn.WriteJSON(map[string]any{
		"type":         "register_agent",
		"agentId":      "A1",
		"capabilities": []string{"python"},
	}))
	// The agent conn also receives the hub's own agent_registered broadcast;
	// skip up to the agent_joined broadcast (loops back to the same conn).
	readEventOfType(t, agentConn, "agent_joined")

	producerConn := dialWS(t, httpSrv)
	require.NoError(t, producerConn.WriteJSON(map[string]any{
		"type":                 "create_task",
		"description":          "ship the feature",
		"requiredCapabilities": []string{"python"},
	}))

	created := readEvent(t, producerConn)
	require.Equal(t, "task_created", created.Type)

	// task_created and agent_status_updated are broadcast to the agent conn
	// ahead of task_assigned.
	assigned := readEventOfType(t, agentConn, "task_assigned")
	require.Equal(t, "task_assigned", assigned.Type)
	require.Equal(t, "A1", assigned.AgentID)
}

func TestTaskProgressBroadcastReflectsCoordinatorStateNotRawRequest(t *testing.T) {
	_, httpSrv := newTestServer(t)

	agentConn := dialWS(t, httpSrv)
	require.NoError(t, agentConn.WriteJSON(map[string]any{
		"type":         "register_agent",
		"agentId":      "A1",
		"capabilities": []string{"python"},
	}))
	readEventOfType(t, agentConn, "agent_joined")

	producerConn := dialWS(t, httpSrv)
	require.NoError(t, producerConn.WriteJSON(map[string]any{
		"type":                 "create_task",
		"description":          "ship the feature",
		"requiredCapabilities": []string{"python"},
	}))
	readEvent(t, producerConn) // task_created
	assigned := readEventOfType(t, agentConn, "task_assigned")
	require.Equal(t, "task_assigned", assigned.Type)
	taskID := assigned.TaskID

	// An out-of-range progress value must be reported back clamped, not raw.
	require.NoError(t, agentConn.WriteJSON(map[string]any{
		"type":     "task_progress",
		"taskId":   taskID,
		"progress": 150,
	}))
	progress := readEventOfType(t, agentConn, "task_progress")
	require.EqualValues(t, 100, progress.Payload["progress"])

	// Completing the task, then sending a further bogus report, must echo
	// the task's real terminal state rather than the rejected values.
	require.NoError(t, agentConn.WriteJSON(map[string]any{
		"type":     "task_progress",
		"taskId":   taskID,
		"progress": 100,
		"status":   "completed",
	}))
	completedEvt := readEventOfType(t, agentConn, "task_progress")
	require.Equal(t, "completed", completedEvt.Payload["status"])

	require.NoError(t, agentConn.WriteJSON(map[string]any{
		"type":     "task_progress",
		"taskId":   taskID,
		"progress": 10,
		"status":   "in_progress",
	}))
	stale := readEventOfType(t, agentConn, "task_progress")
	require.Equal(t, "completed", stale.Payload["status"], "must report the task's real terminal status, not the rejected transition")
	require.EqualValues(t, 100, stale.Payload["progress"], "must not roll back progress forced to 100 on completion")
}

func TestHealthEndpoint(t *testing.T) {
	_, httpSrv := newTestServer(t)

	resp, err := http.Get(httpSrv.URL + "/health")
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var body map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	require.Equal(t, "ok", body["status"])
}
