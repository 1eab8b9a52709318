package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/yukikurage/sprint-tracker/internal/constants"
	"github.com/yukikurage/sprint-tracker/internal/dto"
	apierrors "github.com/yukikurage/sprint-tracker/internal/errors"
	"github.com/yukikurage/sprint-tracker/internal/services"
	"github.com/yukikurage/sprint-tracker/internal/views"
)

// maxCalendarDays bounds the range a calendar request may pre-fill.
const maxCalendarDays = 366

// ViewHandler serves the calendar and board projections. The list view is
// served by TaskHandler.ListTasks.
type ViewHandler struct {
	tasks    *services.TaskService
	sprints  *services.SprintService
	enricher dto.Enricher
	location *time.Location
}

func NewViewHandler(tasks *services.TaskService, sprints *services.SprintService, enricher dto.Enricher, location *time.Location) *ViewHandler {
	if location == nil {
		location = time.Local
	}
	return &ViewHandler{
		tasks:    tasks,
		sprints:  sprints,
		enricher: enricher,
		location: location,
	}
}

// Calendar groups tasks by due day. from and to (YYYY-MM-DD) are optional;
// when both are given every day in between is present.
func (h *ViewHandler) Calendar(c *gin.Context) {
	opts := views.CalendarOptions{Location: h.location}

	from, to := c.Query("from"), c.Query("to")
	if (from == "") != (to == "") {
		apierrors.BadRequest(c, "from and to must be given together")
		return
	}
	if from != "" {
		var err error
		if opts.From, err = time.ParseInLocation(constants.CalendarDateLayout, from, h.location); err != nil {
			apierrors.BadRequest(c, "Invalid from date")
			return
		}
		if opts.To, err = time.ParseInLocation(constants.CalendarDateLayout, to, h.location); err != nil {
			apierrors.BadRequest(c, "Invalid to date")
			return
		}
		if opts.To.Before(opts.From) {
			apierrors.BadRequest(c, "to must not be before from")
			return
		}
		if opts.To.Sub(opts.From) > maxCalendarDays*24*time.Hour {
			apierrors.BadRequest(c, "Calendar range is too long")
			return
		}
	}

	days := views.Calendar(h.tasks.ListTasks(), opts)
	c.JSON(http.StatusOK, gin.H{
		"timezone": h.location.String(),
		"days":     h.enricher.Calendar(days),
	})
}

// Board partitions tasks by status. sprint=active restricts it to the
// active sprint; any other non-empty value is taken as a sprint id.
func (h *ViewHandler) Board(c *gin.Context) {
	sprintID := c.Query("sprint")
	if sprintID == "active" {
		sp, ok := h.sprints.ActiveSprint()
		if !ok {
			apierrors.NotFound(c, "No sprint is active")
			return
		}
		sprintID = sp.ID
	} else if sprintID != "" {
		if _, err := h.sprints.GetSprint(sprintID); err != nil {
			apierrors.FromError(c, err, nil)
			return
		}
	}

	board := views.Board(h.tasks.ListTasks(), sprintID)
	c.JSON(http.StatusOK, gin.H{
		"sprint_id": sprintID,
		"columns":   h.enricher.Board(board),
	})
}
