package constants

import "time"

// Session and context keys
const (
	SessionCookieName = "tracker_session"
	ContextKeyUserID  = "user_id"
	ContextKeyTask    = "task"
	ContextKeyUser    = "current_user"
)

// Pagination
const (
	MinPageSize     = 1
	DefaultPageSize = 10
	MaxPageSize     = 100
)

// Auth
const (
	MinPasswordLength    = 8
	MaxDisplayNameLength = 100
	SessionMaxAge        = 86400 * 7
)

// Alarms
const (
	DefaultAlarmPollInterval = 30 * time.Second
	PersistTimeout           = 10 * time.Second
)

// AI
const (
	MaxAIGeneratedSubtasks = 10
)

// CalendarDateLayout is the ISO date used as calendar bucket key.
const CalendarDateLayout = "2006-01-02"
