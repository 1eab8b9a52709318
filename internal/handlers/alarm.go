package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/yukikurage/sprint-tracker/internal/alarm"
	apierrors "github.com/yukikurage/sprint-tracker/internal/errors"
)

type AlarmHandler struct {
	monitor *alarm.Monitor
}

func NewAlarmHandler(monitor *alarm.Monitor) *AlarmHandler {
	return &AlarmHandler{monitor: monitor}
}

func (h *AlarmHandler) state() gin.H {
	return gin.H{
		"alarms":   h.monitor.Active(),
		"count":    h.monitor.Count(),
		"muted":    h.monitor.Muted(),
		"sounding": h.monitor.Sounding(),
	}
}

// ListAlarms returns the active alarms and the mute and sounding flags
func (h *AlarmHandler) ListAlarms(c *gin.Context) {
	c.JSON(http.StatusOK, h.state())
}

// Check runs a due-date scan now instead of waiting for the next tick
func (h *AlarmHandler) Check(c *gin.Context) {
	result := h.monitor.Check()
	state := h.state()
	state["raised"] = result.Raised
	state["cleared"] = result.Cleared
	c.JSON(http.StatusOK, state)
}

// StopAlarm silences the sounding cue; active alarms remain
func (h *AlarmHandler) StopAlarm(c *gin.Context) {
	h.monitor.StopAlarm()
	c.JSON(http.StatusOK, h.state())
}

// SetMuted mutes or unmutes the alarm cue
func (h *AlarmHandler) SetMuted(c *gin.Context) {
	type MuteRequest struct {
		Muted *bool `json:"muted" binding:"required"`
	}

	var req MuteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	h.monitor.SetMuted(*req.Muted)
	c.JSON(http.StatusOK, h.state())
}
