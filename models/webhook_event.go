package models

import (
	"time"

	"gorm.io/datatypes"
)

// WebhookEvent is an audit row for every webhook delivery we accepted,
// terminal re-deliveries and unhandled types included.
type WebhookEvent struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	CreatedAt time.Time `json:"createdAt"`

	EventType string         `gorm:"column:event_type;size:64;index" json:"eventType"`
	Payload   datatypes.JSON `gorm:"column:payload" json:"payload"`
}
