// Package transport exposes the coordination engine over the wire: a
// bidirectional websocket channel for agents and task producers, a
// server-sent-event stream for observers, and a handful of read-only HTTP
// endpoints.
package transport

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"coordination-hub/internal/clockid"
	"coordination-hub/internal/coordination"
)

const (
	wsSendBuffer  = 256
	wsWriteWait   = 10 * time.Second
	wsPongWait    = 60 * time.Second
	wsPingPeriod  = (wsPongWait * 9) / 10
	wsReadLimit   = 1 << 20
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

// Server holds the wiring every transport surface needs: the coordination
// components it drives, and the set of live bidirectional channels it
// broadcasts across.
type Server struct {
	Registry    *coordination.Registry
	Coordinator *coordination.Coordinator
	Conflicts   *coordination.ConflictDetector
	Hub         *coordination.EventHub
	Logger      *zap.Logger

	mu    sync.RWMutex
	conns map[*agentConn]struct{}
}

// NewServer constructs a transport server bound to the given coordination
// components.
func NewServer(registry *coordination.Registry, coordinator *coordination.Coordinator, conflicts *coordination.ConflictDetector, hub *coordination.EventHub, logger *zap.Logger) *Server {
	return &Server{
		Registry:    registry,
		Coordinator: coordinator,
		Conflicts:   conflicts,
		Hub:         hub,
		Logger:      logger,
		conns:       make(map[*agentConn]struct{}),
	}
}

// Run subscribes to the event hub and rebroadcasts every event to every
// live bidirectional channel, until ctx is cancelled. Call it once, in its
// own goroutine, before accepting connections.
func (s *Server) Run(ctx context.Context) {
	id, events := s.Hub.Subscribe()
	defer s.Hub.Unsubscribe(id)

	for {
		select {
		case <-ctx.Done():
			return
		case evt, ok := <-events:
			if !ok {
				return
			}
			s.broadcast(evt)
		}
	}
}

func (s *Server) broadcast(evt coordination.Event) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for c := range s.conns {
		c.trySend(evt)
	}
}

func (s *Server) broadcastExcept(except *agentConn, evt coordination.Event) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for c := range s.conns {
		if c == except {
			continue
		}
		c.trySend(evt)
	}
}

func (s *Server) trackConn(c *agentConn) {
	s.mu.Lock()
	s.conns[c] = struct{}{}
	s.mu.Unlock()
}

func (s *Server) dropConn(c *agentConn) {
	s.mu.Lock()
	delete(s.conns, c)
	s.mu.Unlock()
}

// agentConn is one open bidirectional channel: a single websocket
// connection used by an agent or a task producer. It implements
// coordination.ChannelRef so the Registry can route directly to it.
type agentConn struct {
	server  *Server
	conn    *websocket.Conn
	send    chan coordination.Event
	agentID string
	closeOnce sync.Once
}

// Send is the coordination.ChannelRef method: a non-blocking, buffered
// enqueue. A full buffer means the connection is not draining fast enough;
// it is torn down rather than allowed to block the caller.
func (c *agentConn) Send(evt coordination.Event) {
	c.trySend(evt)
}

func (c *agentConn) trySend(evt coordination.Event) {
	select {
	case c.send <- evt:
	default:
		c.Close()
	}
}

// Close tears down the underlying connection. Safe to call more than once.
func (c *agentConn) Close() {
	c.closeOnce.Do(func() {
		close(c.send)
	})
}

// HandleWebSocket upgrades the request and starts the connection's read
// and write pumps. Registered under /ws.
func (s *Server) HandleWebSocket(ctx *gin.Context) {
	conn, err := upgrader.Upgrade(ctx.Writer, ctx.Request, nil)
	if err != nil {
		s.Logger.Warn("websocket upgrade failed", zap.Error(err))
		return
	}

	c := &agentConn{
		server: s,
		conn:   conn,
		send:   make(chan coordination.Event, wsSendBuffer),
	}
	s.trackConn(c)

	go c.writePump()
	c.readPump()
}

func (c *agentConn) writePump() {
	ticker := time.NewTicker(wsPingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case evt, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(wsWriteWait))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteJSON(evt); err != nil {
				return
			}
		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(wsWriteWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

func (c *agentConn) readPump() {
	defer func() {
		c.server.dropConn(c)
		c.disconnect()
		c.conn.Close()
		c.Close()
	}()

	c.conn.SetReadLimit(wsReadLimit)
	c.conn.SetReadDeadline(time.Now().Add(wsPongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(wsPongWait))
		return nil
	})

	for {
		_, raw, err := c.conn.ReadMessage()
		if err != nil {
			break
		}

		var msg inboundMessage
		if err := json.Unmarshal(raw, &msg); err != nil {
			c.trySend(errorEvent("task_error", "malformed message"))
			continue
		}
		c.server.dispatch(context.Background(), c, msg)
	}
}

// disconnect implements the spec's cancellation contract: drop the channel
// reference and mark the agent offline, but never touch the task it was
// mid-assignment on.
func (c *agentConn) disconnect() {
	if c.agentID == "" {
		return
	}
	c.server.Registry.SetStatus(c.agentID, coordination.AgentOffline, nil)
}

// inboundMessage is the union of every field any inbound message type uses.
// Unknown fields are ignored by encoding/json already; fields irrelevant to
// a given type are simply left zero.
type inboundMessage struct {
	Type                 string   `json:"type"`
	AgentID              string   `json:"agentId"`
	Name                 string   `json:"name"`
	Capabilities         []string `json:"capabilities"`
	Description          string   `json:"description"`
	RequiredCapabilities []string `json:"requiredCapabilities"`
	Priority             string   `json:"priority"`
	Dependencies         []string `json:"dependencies"`
	TaskID               string   `json:"taskId"`
	Progress             *int     `json:"progress"`
	Status               string   `json:"status"`
	Message              string   `json:"message"`
	CurrentTask          *string  `json:"currentTask"`
	Sender               string   `json:"sender"`
}

func (s *Server) dispatch(ctx context.Context, c *agentConn, msg inboundMessage) {
	switch msg.Type {
	case "register_agent":
		s.handleRegisterAgent(c, msg)
	case "create_task":
		s.handleCreateTask(ctx, c, msg)
	case "task_progress", "update_task_progress":
		s.handleTaskProgress(c, msg)
	case "agent_status":
		s.handleAgentStatus(c, msg)
	case "agent_message":
		s.handleAgentMessage(c, msg)
	case "get_project_status":
		s.handleGetProjectStatus(c)
	case "get_agent_registry":
		s.handleGetAgentRegistry(c)
	case "get_tasks":
		s.handleGetTasks(c)
	default:
		c.trySend(errorEvent("task_error", fmt.Sprintf("unknown message type %q", msg.Type)))
	}
}

func (s *Server) handleRegisterAgent(c *agentConn, msg inboundMessage) {
	if msg.AgentID == "" {
		c.trySend(errorEvent("registration_error", "agentId is required"))
		return
	}

	agent := s.Registry.Register(msg.AgentID, msg.Name, msg.Capabilities, c)
	c.agentID = agent.ID

	c.trySend(coordination.Event{
		Type:      "agent_registered",
		AgentID:   agent.ID,
		Timestamp: clockid.Now(),
		Payload:   map[string]any{"success": true, "agentId": agent.ID},
	})
	s.Hub.Emit(coordination.Event{
		Type:      "agent_joined",
		AgentID:   agent.ID,
		Timestamp: clockid.Now(),
		Payload:   map[string]any{"name": agent.Name},
	})
}

func (s *Server) handleCreateTask(ctx context.Context, c *agentConn, msg inboundMessage) {
	priority := coordination.TaskPriority(msg.Priority)
	task, err := s.Coordinator.CreateTask(msg.Description, msg.RequiredCapabilities, priority, msg.Dependencies)
	if err != nil {
		c.trySend(errorEvent("task_error", err.Error()))
		return
	}

	c.trySend(coordination.Event{
		Type:      "task_created",
		TaskID:    task.ID,
		Timestamp: clockid.Now(),
		Payload:   map[string]any{"success": true, "task": task},
	})

	s.Coordinator.AssignOptimal(ctx, task.ID)
}

func (s *Server) handleTaskProgress(c *agentConn, msg inboundMessage) {
	if msg.TaskID == "" {
		c.trySend(errorEvent("task_error", "taskId is required"))
		return
	}

	var status *coordination.TaskStatus
	if msg.Status != "" {
		ts := coordination.TaskStatus(msg.Status)
		status = &ts
	}

	if ok := s.Coordinator.UpdateProgress(msg.TaskID, msg.Progress, status, msg.Message); !ok {
		c.trySend(errorEvent("task_error", "task not found"))
		return
	}

	task, ok := s.Coordinator.Get(msg.TaskID)
	if !ok {
		return
	}

	s.Hub.Emit(coordination.Event{
		Type:      "task_progress",
		TaskID:    msg.TaskID,
		AgentID:   task.AssignedAgent,
		Timestamp: clockid.Now(),
		Payload: map[string]any{
			"progress": task.Progress,
			"status":   string(task.Status),
			"message":  msg.Message,
		},
	})
}

func (s *Server) handleAgentStatus(c *agentConn, msg inboundMessage) {
	if msg.AgentID == "" {
		c.trySend(errorEvent("registration_error", "agentId is required"))
		return
	}

	if ok := s.Registry.SetStatus(msg.AgentID, coordination.AgentStatus(msg.Status), msg.CurrentTask); !ok {
		c.trySend(errorEvent("registration_error", "agent not found"))
		return
	}

	s.Hub.Emit(coordination.Event{
		Type:      "agent_status_update",
		AgentID:   msg.AgentID,
		Timestamp: clockid.Now(),
		Payload:   map[string]any{"status": msg.Status},
	})
}

// handleAgentMessage forwards a chat-style message to every other open
// channel. The hub does not persist it: it bypasses Hub.Emit and the event
// ring entirely, matching the protocol's "hub does not persist" note.
func (s *Server) handleAgentMessage(c *agentConn, msg inboundMessage) {
	s.broadcastExcept(c, coordination.Event{
		Type:      "agent_message",
		Timestamp: clockid.Now(),
		Payload:   map[string]any{"sender": msg.Sender, "message": msg.Message},
	})
}

func (s *Server) handleGetProjectStatus(c *agentConn) {
	agents := s.Registry.All()
	tasks := s.Coordinator.All()

	status := "active"
	completed := 0
	for _, t := range tasks {
		if t.Status == coordination.TaskCompleted {
			completed++
		}
	}
	switch {
	case len(tasks) == 0:
		status = "initializing"
	case completed == len(tasks):
		status = "completed"
	}

	progress := 0
	if len(tasks) > 0 {
		progress = int(math.Round(100 * float64(completed) / float64(len(tasks))))
	}

	activeAgents := 0
	for _, a := range agents {
		if a.Status != coordination.AgentOffline {
			activeAgents++
		}
	}

	c.trySend(coordination.Event{
		Type:      "project_status_update",
		Timestamp: clockid.Now(),
		Payload: map[string]any{
			"status":         status,
			"progress":       progress,
			"activeAgents":   activeAgents,
			"totalTasks":     len(tasks),
			"completedTasks": completed,
		},
	})
}

func (s *Server) handleGetAgentRegistry(c *agentConn) {
	for _, a := range s.Registry.All() {
		c.trySend(coordination.Event{
			Type:      "agent_registered",
			AgentID:   a.ID,
			Timestamp: clockid.Now(),
			Payload: map[string]any{
				"name":   a.Name,
				"status": string(a.Status),
			},
		})
	}
}

func (s *Server) handleGetTasks(c *agentConn) {
	for _, t := range s.Coordinator.All() {
		c.trySend(coordination.Event{
			Type:      "task_assigned",
			TaskID:    t.ID,
			AgentID:   t.AssignedAgent,
			Timestamp: clockid.Now(),
			Payload:   map[string]any{"task": t},
		})
	}
}

func errorEvent(eventType, message string) coordination.Event {
	return coordination.Event{
		Type:      eventType,
		Timestamp: clockid.Now(),
		Payload:   map[string]any{"error": message},
	}
}
