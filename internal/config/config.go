package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
	"github.com/yukikurage/sprint-tracker/internal/constants"
)

type Config struct {
	DBDriver      string
	DBHost        string
	DBPort        string
	DBUser        string
	DBPassword    string
	DBName        string
	SQLitePath    string
	RedisHost     string
	RedisPort     string
	SessionSecret string
	GinMode       string
	HTTPAddr      string
	OpenAIAPIKey  string

	// AdminUsernames are granted administrator rights when they sign up.
	AdminUsernames []string

	AlarmPollInterval time.Duration
	AlarmLeadTime     time.Duration
	ListPageSize      int
	Timezone          string
}

var defaults = map[string]any{
	"DB_DRIVER":           "mysql",
	"DB_HOST":             "localhost",
	"DB_PORT":             "3306",
	"DB_USER":             "taskuser",
	"DB_PASSWORD":         "taskpassword",
	"DB_NAME":             "task_management",
	"SQLITE_PATH":         "tracker.db",
	"REDIS_HOST":          "localhost",
	"REDIS_PORT":          "6379",
	"SESSION_SECRET":      "default-secret-key-change-me",
	"GIN_MODE":            "debug",
	"HTTP_ADDR":           ":8080",
	"OPENAI_API_KEY":      "",
	"ADMIN_USERNAMES":     "",
	"ALARM_POLL_INTERVAL": constants.DefaultAlarmPollInterval.String(),
	"ALARM_LEAD_TIME":     "0s",
	"LIST_PAGE_SIZE":      constants.DefaultPageSize,
	"TIMEZONE":            "Local",
}

// Load reads configuration from defaults, an optional yaml file named by
// CONFIG_FILE, and the environment, in increasing precedence.
func Load() (*Config, error) {
	v := viper.New()
	for key, value := range defaults {
		v.SetDefault(key, value)
	}
	v.AutomaticEnv()

	if file := v.GetString("CONFIG_FILE"); file != "" {
		v.SetConfigFile(file)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", file, err)
		}
	}

	cfg := &Config{
		DBDriver:          strings.ToLower(v.GetString("DB_DRIVER")),
		DBHost:            v.GetString("DB_HOST"),
		DBPort:            v.GetString("DB_PORT"),
		DBUser:            v.GetString("DB_USER"),
		DBPassword:        v.GetString("DB_PASSWORD"),
		DBName:            v.GetString("DB_NAME"),
		SQLitePath:        v.GetString("SQLITE_PATH"),
		RedisHost:         v.GetString("REDIS_HOST"),
		RedisPort:         v.GetString("REDIS_PORT"),
		SessionSecret:     v.GetString("SESSION_SECRET"),
		GinMode:           v.GetString("GIN_MODE"),
		HTTPAddr:          v.GetString("HTTP_ADDR"),
		OpenAIAPIKey:      v.GetString("OPENAI_API_KEY"),
		AdminUsernames:    splitList(v.GetString("ADMIN_USERNAMES")),
		AlarmPollInterval: v.GetDuration("ALARM_POLL_INTERVAL"),
		AlarmLeadTime:     v.GetDuration("ALARM_LEAD_TIME"),
		ListPageSize:      v.GetInt("LIST_PAGE_SIZE"),
		Timezone:          v.GetString("TIMEZONE"),
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks the values that the tracker cannot run without.
func (c *Config) Validate() error {
	switch c.DBDriver {
	case "mysql", "postgres", "sqlite":
	default:
		return fmt.Errorf("unsupported DB_DRIVER %q", c.DBDriver)
	}
	if c.AlarmPollInterval <= 0 {
		return fmt.Errorf("ALARM_POLL_INTERVAL must be positive, got %s", c.AlarmPollInterval)
	}
	if c.AlarmLeadTime < 0 {
		return fmt.Errorf("ALARM_LEAD_TIME must not be negative, got %s", c.AlarmLeadTime)
	}
	if c.ListPageSize < constants.MinPageSize || c.ListPageSize > constants.MaxPageSize {
		return fmt.Errorf("LIST_PAGE_SIZE must be between %d and %d", constants.MinPageSize, constants.MaxPageSize)
	}
	if _, err := time.LoadLocation(c.Timezone); err != nil {
		return fmt.Errorf("invalid TIMEZONE %q: %w", c.Timezone, err)
	}
	return nil
}

// Location returns the calendar bucketing time zone.
func (c *Config) Location() *time.Location {
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return time.Local
	}
	return loc
}

// IsAdminUsername reports whether username is listed in ADMIN_USERNAMES.
func (c *Config) IsAdminUsername(username string) bool {
	for _, name := range c.AdminUsernames {
		if strings.EqualFold(name, username) {
			return true
		}
	}
	return false
}

func splitList(value string) []string {
	var out []string
	for _, part := range strings.Split(value, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
