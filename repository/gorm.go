package repository

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"

	"vetclinic-backend/apperrors"
	"vetclinic-backend/models"
)

var activeStatuses = []models.ReservationStatus{models.StatusPending, models.StatusConfirmed}

// isSlotConflict recognizes a unique violation on the partial active-slot
// index, the backstop for races that slip past the in-transaction check.
func isSlotConflict(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505" && pgErr.ConstraintName == "idx_active_slot"
}

type GormUserStore struct {
	db *gorm.DB
}

func NewGormUserStore(db *gorm.DB) *GormUserStore {
	return &GormUserStore{db: db}
}

func (s *GormUserStore) Create(ctx context.Context, user *models.User) error {
	return s.db.WithContext(ctx).Create(user).Error
}

func (s *GormUserStore) FindByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	var user models.User
	if err := s.db.WithContext(ctx).First(&user, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrNotFound
		}
		return nil, err
	}
	return &user, nil
}

func (s *GormUserStore) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	var user models.User
	if err := s.db.WithContext(ctx).First(&user, "email = ?", email).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrNotFound
		}
		return nil, err
	}
	return &user, nil
}

func (s *GormUserStore) FindByGoogleID(ctx context.Context, googleID string) (*models.User, error) {
	var user models.User
	if err := s.db.WithContext(ctx).First(&user, "google_id = ?", googleID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrNotFound
		}
		return nil, err
	}
	return &user, nil
}

func (s *GormUserStore) LinkGoogleID(ctx context.Context, id uuid.UUID, googleID string) error {
	return s.UpdateField(ctx, id, "google_id", googleID)
}

func (s *GormUserStore) UpdateField(ctx context.Context, id uuid.UUID, field string, value interface{}) error {
	res := s.db.WithContext(ctx).Model(&models.User{}).Where("id = ?", id).Update(field, value)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}

type GormReservationStore struct {
	db *gorm.DB
}

func NewGormReservationStore(db *gorm.DB) *GormReservationStore {
	return &GormReservationStore{db: db}
}

// Create inserts the reservation iff no active reservation holds its slot.
// The check and the insert run in one transaction; the partial unique index
// turns any remaining race into a conflict error instead of a double booking.
func (s *GormReservationStore) Create(ctx context.Context, r *models.Reservation) error {
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		taken, err := slotTaken(tx, r.ReservationDate, r.ReservationTime, uuid.Nil)
		if err != nil {
			return err
		}
		if taken {
			return apperrors.ErrSlotTaken
		}
		return tx.Create(r).Error
	})
	if isSlotConflict(err) {
		return apperrors.ErrSlotTaken
	}
	return err
}

func (s *GormReservationStore) FindByID(ctx context.Context, id uuid.UUID) (*models.Reservation, error) {
	var r models.Reservation
	if err := s.db.WithContext(ctx).First(&r, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrNotFound
		}
		return nil, err
	}
	return &r, nil
}

func (s *GormReservationStore) List(ctx context.Context, f ReservationFilter, page, limit int) ([]models.Reservation, int64, error) {
	q := s.db.WithContext(ctx).Model(&models.Reservation{})

	if f.UserID != nil {
		q = q.Where("user_id = ?", *f.UserID)
	}
	if f.Status != "" {
		q = q.Where("status = ?", f.Status)
	}
	if f.DateFrom != "" {
		q = q.Where("reservation_date >= ?", f.DateFrom)
	}
	if f.DateTo != "" {
		q = q.Where("reservation_date <= ?", f.DateTo)
	}
	if f.Search != "" {
		term := "%" + f.Search + "%"
		q = q.Where("pet_name ILIKE ? OR owner_name ILIKE ? OR owner_phone ILIKE ?", term, term, term)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var items []models.Reservation
	err := q.Order("reservation_date DESC, reservation_time DESC").
		Offset((page - 1) * limit).
		Limit(limit).
		Find(&items).Error
	return items, total, err
}

// Update saves the reservation after re-checking the slot against every other
// active reservation, under the same transactional guarantees as Create.
func (s *GormReservationStore) Update(ctx context.Context, r *models.Reservation) error {
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if r.Status.Active() {
			taken, err := slotTaken(tx, r.ReservationDate, r.ReservationTime, r.ID)
			if err != nil {
				return err
			}
			if taken {
				return apperrors.ErrSlotTaken
			}
		}
		return tx.Save(r).Error
	})
	if isSlotConflict(err) {
		return apperrors.ErrSlotTaken
	}
	return err
}

func (s *GormReservationStore) Delete(ctx context.Context, id uuid.UUID) error {
	res := s.db.WithContext(ctx).Delete(&models.Reservation{}, "id = ?", id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}

func (s *GormReservationStore) SetReminderSent(ctx context.Context, id uuid.UUID) error {
	res := s.db.WithContext(ctx).Model(&models.Reservation{}).
		Where("id = ?", id).
		Update("reminder_sent", true)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}

func (s *GormReservationStore) DueForReminder(ctx context.Context, date string) ([]models.Reservation, error) {
	var items []models.Reservation
	err := s.db.WithContext(ctx).
		Where("reservation_date = ? AND reminder_sent = false AND status IN ?", date, activeStatuses).
		Order("reservation_time").
		Find(&items).Error
	return items, err
}

func (s *GormReservationStore) Statistics(ctx context.Context, days int) (*ReservationStats, error) {
	cutoff := time.Now().AddDate(0, 0, -days)
	var stats ReservationStats

	err := s.db.WithContext(ctx).Raw(`
		SELECT COUNT(*) AS total,
		       COALESCE(SUM(CASE WHEN status = 'pending' THEN 1 ELSE 0 END), 0) AS pending,
		       COALESCE(SUM(CASE WHEN status = 'confirmed' THEN 1 ELSE 0 END), 0) AS confirmed,
		       COALESCE(SUM(CASE WHEN status = 'completed' THEN 1 ELSE 0 END), 0) AS completed,
		       COALESCE(SUM(CASE WHEN status = 'cancelled' THEN 1 ELSE 0 END), 0) AS cancelled,
		       COALESCE(SUM(price), 0) AS total_revenue,
		       COALESCE(AVG(price), 0) AS avg_price
		FROM reservations
		WHERE created_at >= ?`, cutoff).Scan(&stats).Error
	if err != nil {
		return nil, err
	}

	err = s.db.WithContext(ctx).Raw(`
		SELECT to_char(created_at, 'YYYY-MM-DD') AS date,
		       COUNT(*) AS count,
		       COALESCE(SUM(price), 0) AS revenue
		FROM reservations
		WHERE created_at >= ?
		GROUP BY 1
		ORDER BY 1 DESC`, cutoff).Scan(&stats.Daily).Error
	if err != nil {
		return nil, err
	}

	err = s.db.WithContext(ctx).Raw(`
		SELECT service_type,
		       COUNT(*) AS count,
		       COALESCE(SUM(price), 0) AS revenue
		FROM reservations
		WHERE created_at >= ?
		GROUP BY service_type
		ORDER BY count DESC`, cutoff).Scan(&stats.Services).Error
	return &stats, err
}

func slotTaken(tx *gorm.DB, date, timeOfDay string, exclude uuid.UUID) (bool, error) {
	q := tx.Model(&models.Reservation{}).
		Where("reservation_date = ? AND reservation_time = ?", date, timeOfDay).
		Where("status NOT IN ?", []models.ReservationStatus{models.StatusCancelled, models.StatusCompleted})
	if exclude != uuid.Nil {
		q = q.Where("id <> ?", exclude)
	}
	var count int64
	if err := q.Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

type GormSMSStore struct {
	db *gorm.DB
}

func NewGormSMSStore(db *gorm.DB) *GormSMSStore {
	return &GormSMSStore{db: db}
}

func (s *GormSMSStore) Create(ctx context.Context, rec *models.SMSRecord) error {
	return s.db.WithContext(ctx).Create(rec).Error
}

func (s *GormSMSStore) List(ctx context.Context, f SMSFilter, page, limit int) ([]models.SMSRecord, int64, error) {
	q := s.db.WithContext(ctx).Model(&models.SMSRecord{})

	if f.SentBy != nil {
		q = q.Where("sent_by = ?", *f.SentBy)
	}
	if f.Phone != "" {
		q = q.Where("phone LIKE ?", "%"+f.Phone+"%")
	}
	if f.Status != "" {
		q = q.Where("status = ?", f.Status)
	}
	if f.MessageType != "" {
		q = q.Where("message_type = ?", f.MessageType)
	}
	if f.DateFrom != "" {
		q = q.Where("sent_at::date >= ?", f.DateFrom)
	}
	if f.DateTo != "" {
		q = q.Where("sent_at::date <= ?", f.DateTo)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var items []models.SMSRecord
	err := q.Order("sent_at DESC").
		Offset((page - 1) * limit).
		Limit(limit).
		Find(&items).Error
	return items, total, err
}

func (s *GormSMSStore) Statistics(ctx context.Context, days int) (*SMSStats, error) {
	cutoff := time.Now().AddDate(0, 0, -days)
	var stats SMSStats

	err := s.db.WithContext(ctx).Raw(`
		SELECT COUNT(*) AS total,
		       COALESCE(SUM(CASE WHEN status = 'sent' THEN 1 ELSE 0 END), 0) AS sent_count,
		       COALESCE(SUM(CASE WHEN status = 'failed' THEN 1 ELSE 0 END), 0) AS failed_count,
		       COALESCE(SUM(cost), 0) AS total_cost,
		       COALESCE(AVG(cost), 0) AS avg_cost
		FROM sms_records
		WHERE sent_at >= ?`, cutoff).Scan(&stats).Error
	if err != nil {
		return nil, err
	}

	if stats.Total > 0 {
		stats.SuccessRate = float64(stats.SentCount) / float64(stats.Total) * 100
	}

	err = s.db.WithContext(ctx).Raw(`
		SELECT to_char(sent_at, 'YYYY-MM-DD') AS date,
		       COUNT(*) AS count,
		       COALESCE(SUM(cost), 0) AS cost
		FROM sms_records
		WHERE sent_at >= ?
		GROUP BY 1
		ORDER BY 1 DESC`, cutoff).Scan(&stats.Daily).Error
	return &stats, err
}
