// Package repository defines the store contracts the services consume, with
// a GORM/Postgres implementation for production and an in-memory one for
// tests.
package repository

import (
	"context"

	"github.com/google/uuid"

	"vetclinic-backend/models"
)

// UserStore persists identities. Lookups for inactive users still return the
// row; deciding what an inactive identity may do is the caller's business.
type UserStore interface {
	Create(ctx context.Context, user *models.User) error
	FindByID(ctx context.Context, id uuid.UUID) (*models.User, error)
	FindByEmail(ctx context.Context, email string) (*models.User, error)
	FindByGoogleID(ctx context.Context, googleID string) (*models.User, error)
	LinkGoogleID(ctx context.Context, id uuid.UUID, googleID string) error
	UpdateField(ctx context.Context, id uuid.UUID, field string, value interface{}) error
}

// ReservationFilter narrows List results. Zero values mean "no constraint".
type ReservationFilter struct {
	UserID   *uuid.UUID
	Status   models.ReservationStatus
	DateFrom string
	DateTo   string
	Search   string // matched against pet name, owner name, owner phone
}

// ReservationStore persists reservations and owns slot arbitration: Create
// and Update fail with apperrors.ErrSlotTaken when another active reservation
// holds the same (date, time), atomically with the write.
type ReservationStore interface {
	Create(ctx context.Context, r *models.Reservation) error
	FindByID(ctx context.Context, id uuid.UUID) (*models.Reservation, error)
	List(ctx context.Context, f ReservationFilter, page, limit int) ([]models.Reservation, int64, error)
	Update(ctx context.Context, r *models.Reservation) error
	Delete(ctx context.Context, id uuid.UUID) error
	SetReminderSent(ctx context.Context, id uuid.UUID) error

	// DueForReminder returns active reservations on the given date whose
	// reminder has not been sent yet.
	DueForReminder(ctx context.Context, date string) ([]models.Reservation, error)

	Statistics(ctx context.Context, days int) (*ReservationStats, error)
}

// SMSFilter narrows archive listings.
type SMSFilter struct {
	SentBy      *uuid.UUID
	Phone       string // substring match
	Status      string
	MessageType models.MessageType
	DateFrom    string
	DateTo      string
}

// SMSStore is the append-only notification archive.
type SMSStore interface {
	Create(ctx context.Context, rec *models.SMSRecord) error
	List(ctx context.Context, f SMSFilter, page, limit int) ([]models.SMSRecord, int64, error)
	Statistics(ctx context.Context, days int) (*SMSStats, error)
}

type SMSDaily struct {
	Date  string  `json:"date"`
	Count int64   `json:"count"`
	Cost  float64 `json:"cost"`
}

type SMSStats struct {
	Total       int64      `json:"total_messages"`
	SentCount   int64      `json:"sent_count"`
	FailedCount int64      `json:"failed_count"`
	TotalCost   float64    `json:"total_cost"`
	AvgCost     float64    `json:"avg_cost"`
	SuccessRate float64    `json:"success_rate"`
	Daily       []SMSDaily `json:"daily_stats"`
}

type ReservationDaily struct {
	Date    string  `json:"date"`
	Count   int64   `json:"count"`
	Revenue float64 `json:"revenue"`
}

type ServiceBucket struct {
	ServiceType string  `json:"service_type"`
	Count       int64   `json:"count"`
	Revenue     float64 `json:"revenue"`
}

type ReservationStats struct {
	Total        int64              `json:"total_reservations"`
	Pending      int64              `json:"pending_count"`
	Confirmed    int64              `json:"confirmed_count"`
	Completed    int64              `json:"completed_count"`
	Cancelled    int64              `json:"cancelled_count"`
	TotalRevenue float64            `json:"total_revenue"`
	AvgPrice     float64            `json:"avg_price"`
	Daily        []ReservationDaily `json:"daily_stats"`
	Services     []ServiceBucket    `json:"service_stats"`
}
