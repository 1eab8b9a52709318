package models

import "time"

// App is the foreign context a task can be tagged with.
type App struct {
	ID        string    `gorm:"primarykey;type:varchar(64)" json:"id"`
	Name      string    `gorm:"type:varchar(255);not null" json:"name"`
	CreatedAt time.Time `json:"created_at"`
}
