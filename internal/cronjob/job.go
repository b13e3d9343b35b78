package cronjob

import "time"

// ScheduleType defines how a reminder's fire time is determined.
type ScheduleType string

const (
	// ScheduleEvery fires at a fixed interval (Go duration string, e.g. "5m", "1h30m").
	ScheduleEvery ScheduleType = "every"
	// ScheduleCron uses a standard 5-field cron expression.
	ScheduleCron ScheduleType = "cron"
	// ScheduleAt fires once at a specific RFC 3339 timestamp.
	ScheduleAt ScheduleType = "at"
)

// Job is one scheduled reminder: a text to deliver back to the chat it was
// created from, on a schedule.
type Job struct {
	ID           string       `json:"id"`
	Text         string       `json:"text"`
	ScheduleType ScheduleType `json:"schedule_type"`
	Schedule     string       `json:"schedule"`   // "5m" | "0 9 * * *" | "2026-03-01T09:00:00Z"
	ChannelID    string       `json:"channel_id"` // delivery channel
	ChatID       string       `json:"chat_id"`    // delivery chat
	Enabled      bool         `json:"enabled"`

	// --- runtime state ---
	LastFiredAt    *time.Time `json:"last_fired_at,omitempty"`
	NextFireAt     *time.Time `json:"next_fire_at,omitempty"`
	ConsecutiveErr int        `json:"consecutive_err,omitempty"`
	CreatedAt      time.Time  `json:"created_at"`
}
