package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"
)

type TaskStatus string

const (
	TaskStatusBacklog    TaskStatus = "backlog"
	TaskStatusOpen       TaskStatus = "open"
	TaskStatusInProgress TaskStatus = "in-progress"
	TaskStatusPaused     TaskStatus = "paused"
	TaskStatusCompleted  TaskStatus = "completed"
	TaskStatusClosed     TaskStatus = "closed"
)

// TaskStatuses lists every status in board column order.
var TaskStatuses = []TaskStatus{
	TaskStatusBacklog,
	TaskStatusOpen,
	TaskStatusInProgress,
	TaskStatusPaused,
	TaskStatusCompleted,
	TaskStatusClosed,
}

// Valid reports whether s is a known status.
func (s TaskStatus) Valid() bool {
	for _, known := range TaskStatuses {
		if s == known {
			return true
		}
	}
	return false
}

// Resolved reports whether the status takes a task out of alarm evaluation.
func (s TaskStatus) Resolved() bool {
	return s == TaskStatusCompleted || s == TaskStatusClosed
}

type Priority string

const (
	PriorityLow    Priority = "low"
	PriorityMedium Priority = "medium"
	PriorityHigh   Priority = "high"
)

func (p Priority) Valid() bool {
	return p == PriorityLow || p == PriorityMedium || p == PriorityHigh
}

// Task is stored as a single document: subtasks and their comments live
// inside the task row.
type Task struct {
	ID          string     `gorm:"primarykey;type:varchar(36)" json:"id"`
	Title       string     `gorm:"not null" json:"title"`
	Description string     `gorm:"type:text" json:"description"`
	Priority    Priority   `gorm:"type:varchar(10);not null;default:'medium'" json:"priority"`
	Status      TaskStatus `gorm:"type:varchar(20);not null;default:'open'" json:"status"`
	DueDate     time.Time  `gorm:"not null" json:"due_date"`
	AssignedTo  *uint64    `json:"assigned_to"`
	AppID       *string    `gorm:"type:varchar(64)" json:"app_id"`
	SprintID    *string    `gorm:"type:varchar(36)" json:"sprint_id"`
	CreatedBy   uint64     `gorm:"not null" json:"created_by"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
	Subtasks    Subtasks   `gorm:"type:text" json:"subtasks"`
	Comments    Comments   `gorm:"type:text" json:"comments"`
}

// Clone returns a deep copy that shares no slices or pointers with t.
func (t Task) Clone() Task {
	out := t
	out.AssignedTo = cloneUint64(t.AssignedTo)
	out.AppID = cloneString(t.AppID)
	out.SprintID = cloneString(t.SprintID)
	out.Subtasks = t.Subtasks.Clone()
	out.Comments = t.Comments.Clone()
	return out
}

// FindSubtask returns the index of the subtask with id, or -1.
func (t *Task) FindSubtask(id string) int {
	for i := range t.Subtasks {
		if t.Subtasks[i].ID == id {
			return i
		}
	}
	return -1
}

// Subtask ids are unique within their parent task only.
type Subtask struct {
	ID        string     `json:"id"`
	Title     string     `json:"title"`
	Completed bool       `json:"completed"`
	DueDate   *time.Time `json:"due_date,omitempty"`
	SprintID  *string    `json:"sprint_id,omitempty"`
	Comments  Comments   `json:"comments"`
	CreatedAt time.Time  `json:"created_at"`
}

func (s Subtask) Clone() Subtask {
	out := s
	if s.DueDate != nil {
		due := *s.DueDate
		out.DueDate = &due
	}
	out.SprintID = cloneString(s.SprintID)
	out.Comments = s.Comments.Clone()
	return out
}

type Subtasks []Subtask

func (s Subtasks) Clone() Subtasks {
	if s == nil {
		return nil
	}
	out := make(Subtasks, len(s))
	for i, st := range s {
		out[i] = st.Clone()
	}
	return out
}

func (s Subtasks) Value() (driver.Value, error) {
	return marshalDocument(s)
}

func (s *Subtasks) Scan(value any) error {
	return unmarshalDocument(value, s)
}

func cloneString(s *string) *string {
	if s == nil {
		return nil
	}
	v := *s
	return &v
}

func cloneUint64(u *uint64) *uint64 {
	if u == nil {
		return nil
	}
	v := *u
	return &v
}

func marshalDocument(v any) (driver.Value, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	return string(data), nil
}

func unmarshalDocument(value any, dest any) error {
	var data []byte
	switch v := value.(type) {
	case nil:
		return nil
	case []byte:
		data = v
	case string:
		data = []byte(v)
	default:
		return fmt.Errorf("unsupported document column type %T", value)
	}
	if len(data) == 0 || string(data) == "null" {
		return nil
	}
	return json.Unmarshal(data, dest)
}
