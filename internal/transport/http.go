package transport

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"coordination-hub/internal/clockid"
	"coordination-hub/internal/coordination"
)

// HandleHealth reports liveness and a coarse view of coordination state.
func (s *Server) HandleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":    "ok",
		"timestamp": clockid.Now(),
		"agents":    len(s.Registry.All()),
		"tasks":     len(s.Coordinator.All()),
	})
}

// HandleListAgents returns a read-only snapshot of every known agent.
func (s *Server) HandleListAgents(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"agents": s.Registry.All()})
}

// HandleListTasks returns a read-only snapshot of every known task.
func (s *Server) HandleListTasks(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"tasks": s.Coordinator.All()})
}

// createTaskRequest is the REST counterpart to the create_task websocket
// message, for producers that prefer a plain request/response endpoint.
type createTaskRequest struct {
	Description          string   `json:"description" binding:"required"`
	RequiredCapabilities []string `json:"requiredCapabilities"`
	Priority             string   `json:"priority"`
	Dependencies         []string `json:"dependencies"`
}

// HandleCreateTask is the task-producer REST path: create, attempt
// immediate assignment, and return the resulting task.
func (s *Server) HandleCreateTask(c *gin.Context) {
	var req createTaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	task, err := s.Coordinator.CreateTask(req.Description, req.RequiredCapabilities, priorityOrDefault(req.Priority), req.Dependencies)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	s.Coordinator.AssignOptimal(c.Request.Context(), task.ID)
	c.JSON(http.StatusCreated, gin.H{"task": task})
}

// HandleGetConflicts runs the conflict detector on demand and returns its
// findings; useful for dashboards polling over plain HTTP instead of the
// event stream.
func (s *Server) HandleGetConflicts(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"conflicts": s.Conflicts.Detect()})
}

// RegisterRoutes wires every HTTP and websocket endpoint onto engine.
func (s *Server) RegisterRoutes(engine gin.IRouter) {
	engine.GET("/health", s.HandleHealth)
	engine.GET("/api/agents", s.HandleListAgents)
	engine.GET("/api/tasks", s.HandleListTasks)
	engine.GET("/api/conflicts", s.HandleGetConflicts)
	engine.POST("/api/tasks", s.HandleCreateTask)
	engine.GET("/events", s.HandleEvents)
	engine.GET("/ws", s.HandleWebSocket)
}

func priorityOrDefault(p string) coordination.TaskPriority {
	if p == "" {
		return coordination.PriorityMedium
	}
	return coordination.TaskPriority(p)
}
