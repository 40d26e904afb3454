// models/sms_record.go
package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type MessageType string

const (
	MessageReservation  MessageType = "reservation"  // booking confirmation
	MessageReminder     MessageType = "reminder"     // upcoming appointment
	MessageNotification MessageType = "notification" // status change
	MessageCustom       MessageType = "custom"
	MessageBulk         MessageType = "bulk"
)

const (
	SMSStatusSent   = "sent"
	SMSStatusFailed = "failed"
)

// SMSRecord is the append-only dispatch audit trail. One row per attempt,
// written whether the channel succeeded or not, never updated.
type SMSRecord struct {
	ID            uuid.UUID   `gorm:"type:uuid;primary_key" json:"id"`
	SentBy        *uuid.UUID  `gorm:"type:uuid;index" json:"sent_by"`
	ReservationID *uuid.UUID  `gorm:"type:uuid;index" json:"reservation_id"`
	Phone         string      `gorm:"not null;index" json:"phone"`
	Message       string      `gorm:"type:text;not null" json:"message"`
	MessageType   MessageType `gorm:"type:varchar(20);not null;index" json:"message_type"`
	Status        string      `gorm:"type:varchar(10);not null;index" json:"status"` // sent, failed
	MessageID     string      `json:"message_id"`                                    // provider delivery id
	Cost          float64     `gorm:"type:decimal(10,2);default:0.0" json:"cost"`
	SentAt        time.Time   `json:"sent_at"`
}

func (s *SMSRecord) BeforeCreate(tx *gorm.DB) (err error) {
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	return
}
