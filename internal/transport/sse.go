package transport

import (
	"io"

	"github.com/gin-gonic/gin"
)

// HandleEvents serves the push-only observer stream at /events: it replays
// recent history so a late joiner's view matches a connection that was
// live when those events originated, then streams everything afterward
// until the client disconnects. No authentication, per the protocol's
// Non-goals.
func (s *Server) HandleEvents(c *gin.Context) {
	id, live := s.Hub.Subscribe()
	defer s.Hub.Unsubscribe(id)

	for _, evt := range s.Hub.Recent(100) {
		c.SSEvent(evt.Type, evt)
	}
	c.Writer.Flush()

	ctx := c.Request.Context()
	c.Stream(func(w io.Writer) bool {
		select {
		case <-ctx.Done():
			return false
		case evt, ok := <-live:
			if !ok {
				return false
			}
			c.SSEvent(evt.Type, evt)
			return true
		}
	})
}
