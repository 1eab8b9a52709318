package models

import "time"

type SprintStatus string

const (
	SprintStatusPlanning  SprintStatus = "planning"
	SprintStatusActive    SprintStatus = "active"
	SprintStatusCompleted SprintStatus = "completed"
)

func (s SprintStatus) Valid() bool {
	return s == SprintStatusPlanning || s == SprintStatusActive || s == SprintStatusCompleted
}

type Sprint struct {
	ID        string       `gorm:"primarykey;type:varchar(36)" json:"id"`
	Name      string       `gorm:"type:varchar(255);not null" json:"name"`
	Goal      string       `gorm:"type:text" json:"goal"`
	StartDate time.Time    `gorm:"not null" json:"start_date"`
	EndDate   time.Time    `gorm:"not null" json:"end_date"`
	Status    SprintStatus `gorm:"type:varchar(20);not null;default:'planning'" json:"status"`
	CreatedBy uint64       `gorm:"not null" json:"created_by"`
	CreatedAt time.Time    `json:"created_at"`
	UpdatedAt time.Time    `json:"updated_at"`
}
