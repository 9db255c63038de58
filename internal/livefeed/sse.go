package livefeed

import (
	"io"

	"github.com/gin-gonic/gin"
)

// mandatory headers for sse
func SSEHeadersMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Writer.Header().Set("Content-Type", "text/event-stream")
		c.Writer.Header().Set("Cache-Control", "no-cache")
		c.Writer.Header().Set("Connection", "keep-alive")
		c.Writer.Header().Set("Transfer-Encoding", "chunked")
		c.Next()
	}
}

// SSEHandler streams one group's events to a browser client. The group is
// joined for the lifetime of the request and left when the client goes
// away, so membership tracks the open connection exactly.
func SSEHandler(hub *Hub) gin.HandlerFunc {
	return func(c *gin.Context) {
		group := c.Param("group")
		if group == "" {
			c.JSON(400, gin.H{"error": "group required"})
			return
		}

		sub := hub.Subscribe(c.Query("client_id"))
		defer sub.Close()
		sub.Join(group)
		defer sub.Leave(group)

		c.Stream(func(w io.Writer) bool {
			select {
			case ev, ok := <-sub.Events:
				if !ok {
					return false
				}
				c.SSEvent(string(ev.Type), ev)
				return true
			case <-c.Request.Context().Done():
				return false
			}
		})
	}
}
