package dto

import (
	"time"

	"github.com/yukikurage/sprint-tracker/internal/models"
	"github.com/yukikurage/sprint-tracker/internal/views"
)

// UserDTO represents a user in API responses
type UserDTO struct {
	ID          uint64 `json:"id"`
	Username    string `json:"username"`
	DisplayName string `json:"display_name"`
	AvatarURL   string `json:"avatar_url,omitempty"`
	IsAdmin     bool   `json:"is_admin"`
}

// SprintDTO represents a sprint in API responses
type SprintDTO struct {
	ID        string              `json:"id"`
	Name      string              `json:"name"`
	Goal      string              `json:"goal,omitempty"`
	StartDate time.Time           `json:"start_date"`
	EndDate   time.Time           `json:"end_date"`
	Status    models.SprintStatus `json:"status"`
	CreatedBy uint64              `json:"created_by"`
	CreatedAt time.Time           `json:"created_at"`
	UpdatedAt time.Time           `json:"updated_at"`
}

// SprintSummaryDTO is the sprint reference embedded in tasks
type SprintSummaryDTO struct {
	ID     string              `json:"id"`
	Name   string              `json:"name"`
	Status models.SprintStatus `json:"status"`
}

// CommentDTO represents a comment in API responses
type CommentDTO struct {
	ID              string    `json:"id"`
	Text            string    `json:"text"`
	CreatedAt       time.Time `json:"created_at"`
	CreatedBy       uint64    `json:"created_by"`
	CreatedByName   string    `json:"created_by_name"`
	CreatedByAvatar string    `json:"created_by_avatar,omitempty"`
	Likes           []uint64  `json:"likes"`
	LikeCount       int       `json:"like_count"`
}

// SubtaskDTO represents a subtask in API responses
type SubtaskDTO struct {
	ID        string            `json:"id"`
	Title     string            `json:"title"`
	Completed bool              `json:"completed"`
	DueDate   *time.Time        `json:"due_date"`
	Sprint    *SprintSummaryDTO `json:"sprint"`
	Comments  []CommentDTO      `json:"comments"`
	CreatedAt time.Time         `json:"created_at"`
}

// TaskDTO represents a task in API responses. Sprint is nil when the task
// has no sprint or references one that no longer exists.
type TaskDTO struct {
	ID           string            `json:"id"`
	Title        string            `json:"title"`
	Description  string            `json:"description"`
	Priority     models.Priority   `json:"priority"`
	Status       models.TaskStatus `json:"status"`
	DueDate      time.Time         `json:"due_date"`
	AssignedTo   *uint64           `json:"assigned_to"`
	AssigneeName string            `json:"assignee_name,omitempty"`
	AppID        *string           `json:"app_id"`
	AppName      string            `json:"app_name,omitempty"`
	Sprint       *SprintSummaryDTO `json:"sprint"`
	CreatedBy    uint64            `json:"created_by"`
	CreatorName  string            `json:"creator_name,omitempty"`
	CreatedAt    time.Time         `json:"created_at"`
	UpdatedAt    time.Time         `json:"updated_at"`
	Subtasks     []SubtaskDTO      `json:"subtasks"`
	Comments     []CommentDTO      `json:"comments"`
}

// TaskListResponse represents a paginated list of tasks
type TaskListResponse struct {
	Tasks      []TaskDTO `json:"tasks"`
	Page       int       `json:"page"`
	PageSize   int       `json:"page_size"`
	TotalCount int       `json:"total_count"`
	TotalPages int       `json:"total_pages"`
}

// SprintLookup resolves sprint references
type SprintLookup interface {
	SprintOf(id *string) (models.Sprint, bool)
}

// Enricher converts models into response DTOs, filling in display names
// and resolving sprint references. Either lookup may be nil.
type Enricher struct {
	Sprints SprintLookup
	Names   views.Directory
}

// ToUserDTO converts a User model to UserDTO
func ToUserDTO(user models.User) UserDTO {
	return UserDTO{
		ID:          user.ID,
		Username:    user.Username,
		DisplayName: user.Name(),
		AvatarURL:   user.AvatarURL,
		IsAdmin:     user.IsAdmin,
	}
}

// ToSprintDTO converts a Sprint model to SprintDTO
func ToSprintDTO(sp models.Sprint) SprintDTO {
	return SprintDTO{
		ID:        sp.ID,
		Name:      sp.Name,
		Goal:      sp.Goal,
		StartDate: sp.StartDate,
		EndDate:   sp.EndDate,
		Status:    sp.Status,
		CreatedBy: sp.CreatedBy,
		CreatedAt: sp.CreatedAt,
		UpdatedAt: sp.UpdatedAt,
	}
}

// ToSprintDTOs converts a slice of sprints
func ToSprintDTOs(sprints []models.Sprint) []SprintDTO {
	out := make([]SprintDTO, len(sprints))
	for i, sp := range sprints {
		out[i] = ToSprintDTO(sp)
	}
	return out
}

// ToCommentDTOs converts a comment list
func ToCommentDTOs(comments models.Comments) []CommentDTO {
	out := make([]CommentDTO, len(comments))
	for i, c := range comments {
		likes := append([]uint64{}, c.Likes...)
		out[i] = CommentDTO{
			ID:              c.ID,
			Text:            c.Text,
			CreatedAt:       c.CreatedAt,
			CreatedBy:       c.CreatedBy,
			CreatedByName:   c.CreatedByName,
			CreatedByAvatar: c.CreatedByAvatar,
			Likes:           likes,
			LikeCount:       len(likes),
		}
	}
	return out
}

// Task converts a Task model to TaskDTO
func (e Enricher) Task(task models.Task) TaskDTO {
	dto := TaskDTO{
		ID:          task.ID,
		Title:       task.Title,
		Description: task.Description,
		Priority:    task.Priority,
		Status:      task.Status,
		DueDate:     task.DueDate,
		AssignedTo:  task.AssignedTo,
		AppID:       task.AppID,
		Sprint:      e.sprint(task.SprintID),
		CreatedBy:   task.CreatedBy,
		CreatedAt:   task.CreatedAt,
		UpdatedAt:   task.UpdatedAt,
		Subtasks:    make([]SubtaskDTO, len(task.Subtasks)),
		Comments:    ToCommentDTOs(task.Comments),
	}

	if e.Names != nil {
		dto.CreatorName = e.Names.UserName(task.CreatedBy)
		if task.AssignedTo != nil {
			dto.AssigneeName = e.Names.UserName(*task.AssignedTo)
		}
		if task.AppID != nil {
			dto.AppName = e.Names.AppName(*task.AppID)
		}
	}

	for i, st := range task.Subtasks {
		dto.Subtasks[i] = SubtaskDTO{
			ID:        st.ID,
			Title:     st.Title,
			Completed: st.Completed,
			DueDate:   st.DueDate,
			Sprint:    e.sprint(st.SprintID),
			Comments:  ToCommentDTOs(st.Comments),
			CreatedAt: st.CreatedAt,
		}
	}
	return dto
}

// Tasks converts a slice of tasks
func (e Enricher) Tasks(tasks []models.Task) []TaskDTO {
	out := make([]TaskDTO, len(tasks))
	for i, t := range tasks {
		out[i] = e.Task(t)
	}
	return out
}

// ListResponse converts a list view page
func (e Enricher) ListResponse(page views.ListPage) TaskListResponse {
	return TaskListResponse{
		Tasks:      e.Tasks(page.Items),
		Page:       page.Page,
		PageSize:   page.PageSize,
		TotalCount: page.Total,
		TotalPages: page.TotalPages,
	}
}

// Board converts a board view keyed by status
func (e Enricher) Board(board map[models.TaskStatus][]models.Task) map[models.TaskStatus][]TaskDTO {
	out := make(map[models.TaskStatus][]TaskDTO, len(board))
	for status, tasks := range board {
		out[status] = e.Tasks(tasks)
	}
	return out
}

// Calendar converts a calendar view keyed by ISO date
func (e Enricher) Calendar(days map[string][]models.Task) map[string][]TaskDTO {
	out := make(map[string][]TaskDTO, len(days))
	for day, tasks := range days {
		out[day] = e.Tasks(tasks)
	}
	return out
}

func (e Enricher) sprint(id *string) *SprintSummaryDTO {
	if id == nil || e.Sprints == nil {
		return nil
	}
	sp, ok := e.Sprints.SprintOf(id)
	if !ok {
		return nil
	}
	return &SprintSummaryDTO{ID: sp.ID, Name: sp.Name, Status: sp.Status}
}
