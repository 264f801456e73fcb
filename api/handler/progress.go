package handler

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/use-agent/sitebrief/progress"
)

const keepAliveInterval = 15 * time.Second

// Progress returns a handler for GET /progress/:session_id.
//
// It streams `data: <event json>` frames as Server-Sent Events. The last
// known event is sent immediately; the stream ends after the terminal
// event, when the client goes away, or after idle without any event.
func Progress(hub *progress.Hub, idle time.Duration) gin.HandlerFunc {
	if idle <= 0 {
		idle = 5 * time.Minute
	}

	return func(c *gin.Context) {
		tracker := hub.Acquire(c.Param("session_id"))
		events, cancel := tracker.Subscribe()
		defer cancel()

		c.Header("Content-Type", "text/event-stream")
		c.Header("Cache-Control", "no-cache")
		c.Header("Connection", "keep-alive")
		c.Header("X-Accel-Buffering", "no")
		c.Status(http.StatusOK)
		c.Writer.Flush()

		idleTimer := time.NewTimer(idle)
		defer idleTimer.Stop()
		keepAlive := time.NewTicker(keepAliveInterval)
		defer keepAlive.Stop()

		for {
			select {
			case <-c.Request.Context().Done():
				return
			case <-idleTimer.C:
				return
			case <-keepAlive.C:
				_, _ = io.WriteString(c.Writer, ": keep-alive\n\n")
				c.Writer.Flush()
			case e, ok := <-events:
				if !ok {
					return
				}
				if err := writeEvent(c.Writer, e); err != nil {
					return
				}
				c.Writer.Flush()
				if e.Terminal() {
					return
				}
				idleTimer.Reset(idle)
			}
		}
	}
}

func writeEvent(w io.Writer, e progress.Event) error {
	data, err := json.Marshal(e)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintf(w, "data: %s\n\n", data)
	return err
}
