package handlers

import (
	"io"

	"github.com/gin-gonic/gin"
	"github.com/yukikurage/sprint-tracker/internal/notify"
)

type EventHandler struct {
	events *notify.Broadcaster
}

func NewEventHandler(events *notify.Broadcaster) *EventHandler {
	return &EventHandler{events: events}
}

// Stream sends completion and alarm cues as server-sent events until the
// client disconnects
func (h *EventHandler) Stream(c *gin.Context) {
	sub := h.events.Subscribe()
	defer h.events.Unsubscribe(sub)

	c.Header("Cache-Control", "no-cache")
	c.Header("X-Accel-Buffering", "no")

	ctx := c.Request.Context()
	c.Stream(func(w io.Writer) bool {
		select {
		case <-ctx.Done():
			return false
		case ev, ok := <-sub:
			if !ok {
				return false
			}
			c.SSEvent(string(ev.Type), ev)
			return true
		}
	})
}
