package model

import "time"

// ReminderStatus is the lifecycle state of a reminder row.
type ReminderStatus string

const (
	ReminderStatusActive    ReminderStatus = "active"
	ReminderStatusCompleted ReminderStatus = "completed"
	ReminderStatusCancelled ReminderStatus = "cancelled"
)

// Reminder is a persisted reminder record. The store owns it; the scheduler
// only holds a transient timer handle keyed by ID.
type Reminder struct {
	ID          string         `json:"id"`
	UserID      string         `json:"user_id"`
	Message     string         `json:"message"`
	ScheduledAt time.Time      `json:"scheduled_at"`
	Timezone    string         `json:"timezone"`
	ChannelID   string         `json:"channel_id,omitempty"`
	ServerID    string         `json:"server_id,omitempty"`
	Status      ReminderStatus `json:"status"`
	CreatedAt   time.Time      `json:"created_at"`
}
