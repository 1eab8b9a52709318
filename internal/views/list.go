package views

import (
	"slices"
	"strings"

	"github.com/yukikurage/sprint-tracker/internal/constants"
	"github.com/yukikurage/sprint-tracker/internal/models"
)

// Directory resolves the names the list search matches against.
type Directory interface {
	UserName(userID uint64) string
	AppName(appID string) string
}

// ListFilter selects and paginates the list view. Empty Statuses or
// Priorities match everything.
type ListFilter struct {
	Query      string
	Statuses   []models.TaskStatus
	Priorities []models.Priority
	Page       int
	PageSize   int
}

// ListPage is one page of the list view.
type ListPage struct {
	Items      []models.Task `json:"items"`
	Page       int           `json:"page"`
	PageSize   int           `json:"page_size"`
	Total      int           `json:"total"`
	TotalPages int           `json:"total_pages"`
}

// Filter returns the matching tasks with completed ones moved after the
// rest. Relative order is otherwise kept.
func Filter(tasks []models.Task, filter ListFilter, dir Directory) []models.Task {
	query := strings.ToLower(strings.TrimSpace(filter.Query))

	var open, completed []models.Task
	for _, t := range tasks {
		if len(filter.Statuses) > 0 && !slices.Contains(filter.Statuses, t.Status) {
			continue
		}
		if len(filter.Priorities) > 0 && !slices.Contains(filter.Priorities, t.Priority) {
			continue
		}
		if query != "" && !matches(t, query, dir) {
			continue
		}
		if t.Status == models.TaskStatusCompleted {
			completed = append(completed, t.Clone())
		} else {
			open = append(open, t.Clone())
		}
	}
	return append(open, completed...)
}

// List filters, orders, and paginates tasks. A page past the end is empty.
func List(tasks []models.Task, filter ListFilter, dir Directory) ListPage {
	page, size := filter.Page, filter.PageSize
	if page < 1 {
		page = 1
	}
	if size < constants.MinPageSize || size > constants.MaxPageSize {
		size = constants.DefaultPageSize
	}

	all := Filter(tasks, filter, dir)
	total := len(all)
	totalPages := (total + size - 1) / size

	// page is client input; compare before multiplying so it cannot overflow
	start := total
	if page <= totalPages {
		start = (page - 1) * size
	}
	end := start + size
	if end > total {
		end = total
	}

	items := make([]models.Task, 0, end-start)
	items = append(items, all[start:end]...)
	return ListPage{
		Items:      items,
		Page:       page,
		PageSize:   size,
		Total:      total,
		TotalPages: totalPages,
	}
}

func matches(t models.Task, query string, dir Directory) bool {
	fields := []string{t.Title, t.Description}
	if dir != nil {
		if t.AssignedTo != nil {
			fields = append(fields, dir.UserName(*t.AssignedTo))
		}
		if t.AppID != nil {
			fields = append(fields, dir.AppName(*t.AppID))
		}
	}
	for _, f := range fields {
		if f != "" && strings.Contains(strings.ToLower(f), query) {
			return true
		}
	}
	return false
}
