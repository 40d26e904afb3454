package services

import (
	"context"

	"vetclinic-backend/models"
	"vetclinic-backend/repository"
)

// ArchiveService is the read side over the dispatch audit trail and the
// reservation store: paginated listings and day-bucketed aggregation. It
// never writes.
type ArchiveService struct {
	sms          repository.SMSStore
	reservations repository.ReservationStore
}

func NewArchiveService(sms repository.SMSStore, reservations repository.ReservationStore) *ArchiveService {
	return &ArchiveService{sms: sms, reservations: reservations}
}

// Archive lists dispatch records. Non-admin callers only see messages they
// sent themselves.
func (s *ArchiveService) Archive(ctx context.Context, user *models.User, filter repository.SMSFilter, page, limit int) ([]models.SMSRecord, int64, error) {
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = 20
	}
	if !user.IsAdmin() {
		userID := user.ID
		filter.SentBy = &userID
	}
	return s.sms.List(ctx, filter, page, limit)
}

func (s *ArchiveService) SMSStatistics(ctx context.Context, days int) (*repository.SMSStats, error) {
	if days < 1 {
		days = 30
	}
	return s.sms.Statistics(ctx, days)
}

func (s *ArchiveService) ReservationStatistics(ctx context.Context, days int) (*repository.ReservationStats, error) {
	if days < 1 {
		days = 30
	}
	return s.reservations.Statistics(ctx, days)
}
