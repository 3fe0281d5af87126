package models

import (
	"time"
)

// Security event types emitted by the authority.
const (
	EventLoginSuccess   = "admin_login_success"
	EventLoginFailure   = "admin_login_failure"
	EventLogout         = "admin_logout"
	EventSessionExpired = "admin_session_expired"
	EventSessionCorrupt = "admin_session_corrupt"
	EventActivityPing   = "admin_activity_ping"
)

// SecurityEvent is one row of the admin auth audit stream. EventBucket is a
// murmur3-derived partition used by the ClickHouse table and Kafka key.
type SecurityEvent struct {
	EventBucket int       `db:"event_bucket" json:"event_bucket"`
	AdminID     int       `db:"admin_id" json:"admin_id"`
	Email       string    `db:"email" json:"email"`
	EventDate   string    `db:"event_date" json:"event_date"`
	EventTime   time.Time `db:"event_time" json:"event_time"`
	EventType   string    `db:"event_type" json:"event_type"`
	IPAddress   string    `db:"ip_address" json:"ip_address"`
	SessionID   string    `db:"session_id" json:"session_id"`
	Details     string    `db:"details" json:"details"`
}
