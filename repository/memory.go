// In-memory store implementations with the same contracts as the GORM ones.
// The service tests run against these; the mutex gives Create/Update the same
// check-then-write atomicity the Postgres transaction provides.
package repository

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"vetclinic-backend/apperrors"
	"vetclinic-backend/models"
	"vetclinic-backend/utils"
)

type MemoryUserStore struct {
	mu    sync.RWMutex
	users map[uuid.UUID]models.User
}

func NewMemoryUserStore() *MemoryUserStore {
	return &MemoryUserStore{users: make(map[uuid.UUID]models.User)}
}

func (s *MemoryUserStore) Create(ctx context.Context, user *models.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if user.ID == uuid.Nil {
		user.ID = uuid.New()
	}
	hashed, err := utils.HashPassword(user.Password)
	if err != nil {
		return err
	}
	user.Password = hashed
	user.CreatedAt = time.Now()
	s.users[user.ID] = *user
	return nil
}

func (s *MemoryUserStore) FindByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if u, ok := s.users[id]; ok {
		return &u, nil
	}
	return nil, apperrors.ErrNotFound
}

func (s *MemoryUserStore) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, u := range s.users {
		if u.Email == email {
			u := u
			return &u, nil
		}
	}
	return nil, apperrors.ErrNotFound
}

func (s *MemoryUserStore) FindByGoogleID(ctx context.Context, googleID string) (*models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, u := range s.users {
		if u.GoogleID != "" && u.GoogleID == googleID {
			u := u
			return &u, nil
		}
	}
	return nil, apperrors.ErrNotFound
}

func (s *MemoryUserStore) LinkGoogleID(ctx context.Context, id uuid.UUID, googleID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[id]
	if !ok {
		return apperrors.ErrNotFound
	}
	u.GoogleID = googleID
	s.users[id] = u
	return nil
}

func (s *MemoryUserStore) UpdateField(ctx context.Context, id uuid.UUID, field string, value interface{}) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[id]
	if !ok {
		return apperrors.ErrNotFound
	}
	switch field {
	case "last_login":
		if t, ok := value.(*time.Time); ok {
			u.LastLogin = t
		}
	case "avatar":
		if v, ok := value.(string); ok {
			u.Avatar = v
		}
	case "is_active":
		if v, ok := value.(bool); ok {
			u.IsActive = v
		}
	case "google_id":
		if v, ok := value.(string); ok {
			u.GoogleID = v
		}
	}
	s.users[id] = u
	return nil
}

type MemoryReservationStore struct {
	mu           sync.Mutex
	reservations map[uuid.UUID]models.Reservation
}

func NewMemoryReservationStore() *MemoryReservationStore {
	return &MemoryReservationStore{reservations: make(map[uuid.UUID]models.Reservation)}
}

func (s *MemoryReservationStore) slotTakenLocked(date, timeOfDay string, exclude uuid.UUID) bool {
	for _, r := range s.reservations {
		if r.ID != exclude && r.ReservationDate == date && r.ReservationTime == timeOfDay && r.Status.Active() {
			return true
		}
	}
	return false
}

func (s *MemoryReservationStore) Create(ctx context.Context, r *models.Reservation) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.slotTakenLocked(r.ReservationDate, r.ReservationTime, uuid.Nil) {
		return apperrors.ErrSlotTaken
	}
	if r.ID == uuid.Nil {
		r.ID = uuid.New()
	}
	r.CreatedAt = time.Now()
	s.reservations[r.ID] = *r
	return nil
}

func (s *MemoryReservationStore) FindByID(ctx context.Context, id uuid.UUID) (*models.Reservation, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if r, ok := s.reservations[id]; ok {
		return &r, nil
	}
	return nil, apperrors.ErrNotFound
}

func (s *MemoryReservationStore) List(ctx context.Context, f ReservationFilter, page, limit int) ([]models.Reservation, int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var matched []models.Reservation
	for _, r := range s.reservations {
		if f.UserID != nil && (r.UserID == nil || *r.UserID != *f.UserID) {
			continue
		}
		if f.Status != "" && r.Status != f.Status {
			continue
		}
		if f.DateFrom != "" && r.ReservationDate < f.DateFrom {
			continue
		}
		if f.DateTo != "" && r.ReservationDate > f.DateTo {
			continue
		}
		if f.Search != "" {
			term := strings.ToLower(f.Search)
			if !strings.Contains(strings.ToLower(r.PetName), term) &&
				!strings.Contains(strings.ToLower(r.OwnerName), term) &&
				!strings.Contains(r.OwnerPhone, term) {
				continue
			}
		}
		matched = append(matched, r)
	}

	sort.Slice(matched, func(i, j int) bool {
		if matched[i].ReservationDate != matched[j].ReservationDate {
			return matched[i].ReservationDate > matched[j].ReservationDate
		}
		return matched[i].ReservationTime > matched[j].ReservationTime
	})

	total := int64(len(matched))
	start := (page - 1) * limit
	if start >= len(matched) {
		return []models.Reservation{}, total, nil
	}
	end := start + limit
	if end > len(matched) {
		end = len(matched)
	}
	return matched[start:end], total, nil
}

func (s *MemoryReservationStore) Update(ctx context.Context, r *models.Reservation) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.reservations[r.ID]; !ok {
		return apperrors.ErrNotFound
	}
	if r.Status.Active() && s.slotTakenLocked(r.ReservationDate, r.ReservationTime, r.ID) {
		return apperrors.ErrSlotTaken
	}
	s.reservations[r.ID] = *r
	return nil
}

func (s *MemoryReservationStore) Delete(ctx context.Context, id uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.reservations[id]; !ok {
		return apperrors.ErrNotFound
	}
	delete(s.reservations, id)
	return nil
}

func (s *MemoryReservationStore) SetReminderSent(ctx context.Context, id uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	r, ok := s.reservations[id]
	if !ok {
		return apperrors.ErrNotFound
	}
	r.ReminderSent = true
	s.reservations[id] = r
	return nil
}

func (s *MemoryReservationStore) DueForReminder(ctx context.Context, date string) ([]models.Reservation, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var due []models.Reservation
	for _, r := range s.reservations {
		if r.ReservationDate == date && !r.ReminderSent && r.Status.Active() {
			due = append(due, r)
		}
	}
	sort.Slice(due, func(i, j int) bool { return due[i].ReservationTime < due[j].ReservationTime })
	return due, nil
}

func (s *MemoryReservationStore) Statistics(ctx context.Context, days int) (*ReservationStats, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	cutoff := time.Now().AddDate(0, 0, -days)
	stats := &ReservationStats{}
	daily := make(map[string]*ReservationDaily)
	services := make(map[string]*ServiceBucket)

	for _, r := range s.reservations {
		if r.CreatedAt.Before(cutoff) {
			continue
		}
		stats.Total++
		stats.TotalRevenue += r.Price
		switch r.Status {
		case models.StatusPending:
			stats.Pending++
		case models.StatusConfirmed:
			stats.Confirmed++
		case models.StatusCompleted:
			stats.Completed++
		case models.StatusCancelled:
			stats.Cancelled++
		}

		day := r.CreatedAt.Format(utils.DateLayout)
		if daily[day] == nil {
			daily[day] = &ReservationDaily{Date: day}
		}
		daily[day].Count++
		daily[day].Revenue += r.Price

		if services[r.ServiceType] == nil {
			services[r.ServiceType] = &ServiceBucket{ServiceType: r.ServiceType}
		}
		services[r.ServiceType].Count++
		services[r.ServiceType].Revenue += r.Price
	}

	if stats.Total > 0 {
		stats.AvgPrice = stats.TotalRevenue / float64(stats.Total)
	}
	for _, d := range daily {
		stats.Daily = append(stats.Daily, *d)
	}
	sort.Slice(stats.Daily, func(i, j int) bool { return stats.Daily[i].Date > stats.Daily[j].Date })
	for _, b := range services {
		stats.Services = append(stats.Services, *b)
	}
	sort.Slice(stats.Services, func(i, j int) bool { return stats.Services[i].Count > stats.Services[j].Count })

	return stats, nil
}

type MemorySMSStore struct {
	mu      sync.Mutex
	records []models.SMSRecord
}

func NewMemorySMSStore() *MemorySMSStore {
	return &MemorySMSStore{}
}

func (s *MemorySMSStore) Create(ctx context.Context, rec *models.SMSRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if rec.ID == uuid.Nil {
		rec.ID = uuid.New()
	}
	s.records = append(s.records, *rec)
	return nil
}

// Records returns a snapshot of everything written so far, oldest first.
func (s *MemorySMSStore) Records() []models.SMSRecord {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]models.SMSRecord, len(s.records))
	copy(out, s.records)
	return out
}

func (s *MemorySMSStore) List(ctx context.Context, f SMSFilter, page, limit int) ([]models.SMSRecord, int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var matched []models.SMSRecord
	for _, rec := range s.records {
		if f.SentBy != nil && (rec.SentBy == nil || *rec.SentBy != *f.SentBy) {
			continue
		}
		if f.Phone != "" && !strings.Contains(rec.Phone, f.Phone) {
			continue
		}
		if f.Status != "" && rec.Status != f.Status {
			continue
		}
		if f.MessageType != "" && rec.MessageType != f.MessageType {
			continue
		}
		day := rec.SentAt.Format(utils.DateLayout)
		if f.DateFrom != "" && day < f.DateFrom {
			continue
		}
		if f.DateTo != "" && day > f.DateTo {
			continue
		}
		matched = append(matched, rec)
	}

	sort.Slice(matched, func(i, j int) bool { return matched[i].SentAt.After(matched[j].SentAt) })

	total := int64(len(matched))
	start := (page - 1) * limit
	if start >= len(matched) {
		return []models.SMSRecord{}, total, nil
	}
	end := start + limit
	if end > len(matched) {
		end = len(matched)
	}
	return matched[start:end], total, nil
}

func (s *MemorySMSStore) Statistics(ctx context.Context, days int) (*SMSStats, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	cutoff := time.Now().AddDate(0, 0, -days)
	stats := &SMSStats{}
	daily := make(map[string]*SMSDaily)

	for _, rec := range s.records {
		if rec.SentAt.Before(cutoff) {
			continue
		}
		stats.Total++
		stats.TotalCost += rec.Cost
		if rec.Status == models.SMSStatusSent {
			stats.SentCount++
		} else {
			stats.FailedCount++
		}

		day := rec.SentAt.Format(utils.DateLayout)
		if daily[day] == nil {
			daily[day] = &SMSDaily{Date: day}
		}
		daily[day].Count++
		daily[day].Cost += rec.Cost
	}

	if stats.Total > 0 {
		stats.AvgCost = stats.TotalCost / float64(stats.Total)
		stats.SuccessRate = float64(stats.SentCount) / float64(stats.Total) * 100
	}
	for _, d := range daily {
		stats.Daily = append(stats.Daily, *d)
	}
	sort.Slice(stats.Daily, func(i, j int) bool { return stats.Daily[i].Date > stats.Daily[j].Date })

	return stats, nil
}
