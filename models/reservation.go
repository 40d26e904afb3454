package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type ReservationStatus string

const (
	StatusPending   ReservationStatus = "pending"
	StatusConfirmed ReservationStatus = "confirmed"
	StatusCompleted ReservationStatus = "completed"
	StatusCancelled ReservationStatus = "cancelled"
)

// Active reports whether the reservation still occupies its slot. Cancelled
// and completed reservations free the (date, time) pair for rebooking.
func (s ReservationStatus) Active() bool {
	return s != StatusCancelled && s != StatusCompleted
}

func (s ReservationStatus) Valid() bool {
	switch s {
	case StatusPending, StatusConfirmed, StatusCompleted, StatusCancelled:
		return true
	}
	return false
}

type Reservation struct {
	ID     uuid.UUID  `gorm:"type:uuid;primary_key" json:"id"`
	UserID *uuid.UUID `gorm:"type:uuid;index" json:"user_id"` // nil for staff-created walk-ins

	PetName string `gorm:"not null" json:"pet_name"`
	PetType string `gorm:"not null" json:"pet_type"`
	PetAge  string `json:"pet_age"`

	OwnerName  string `gorm:"not null" json:"owner_name"`
	OwnerPhone string `gorm:"not null" json:"owner_phone"`
	OwnerEmail string `json:"owner_email"`

	ReservationDate string `gorm:"type:varchar(10);not null;index:idx_slot" json:"reservation_date"` // YYYY-MM-DD
	ReservationTime string `gorm:"type:varchar(5);not null;index:idx_slot" json:"reservation_time"`  // HH:MM

	ServiceType string  `gorm:"not null" json:"service_type"`
	VaccineType string  `json:"vaccine_type"`
	Notes       string  `json:"notes"`
	Price       float64 `gorm:"type:decimal(10,2);default:0.0" json:"price"`

	Status       ReservationStatus `gorm:"type:varchar(20);not null;default:'pending';index" json:"status"`
	ReminderSent bool              `gorm:"default:false" json:"reminder_sent"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"-"`
}

func (r *Reservation) BeforeCreate(tx *gorm.DB) (err error) {
	if r.ID == uuid.Nil {
		r.ID = uuid.New()
	}
	return
}
