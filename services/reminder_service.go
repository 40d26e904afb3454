// services/reminder_service.go
package services

import (
	"context"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"vetclinic-backend/models"
	"vetclinic-backend/repository"
	"vetclinic-backend/utils"
)

// ReminderService sends next-day appointment reminders on a schedule. A
// reservation whose send fails keeps reminder_sent=false and is picked up
// again on the next run.
type ReminderService struct {
	reservations repository.ReservationStore
	sms          *SMSService
	log          *zap.SugaredLogger
	cron         *cron.Cron
}

func NewReminderService(reservations repository.ReservationStore, sms *SMSService, log *zap.SugaredLogger) *ReminderService {
	return &ReminderService{
		reservations: reservations,
		sms:          sms,
		log:          log,
		cron:         cron.New(),
	}
}

// StartScheduler runs the daily pass at 9 AM.
func (s *ReminderService) StartScheduler() error {
	if _, err := s.cron.AddFunc("0 9 * * *", func() {
		s.SendDailyReminders(context.Background())
	}); err != nil {
		return err
	}
	s.cron.Start()
	s.log.Info("reminder scheduler started")
	return nil
}

func (s *ReminderService) Stop() {
	s.cron.Stop()
}

// SendDailyReminders processes every reservation for tomorrow that has not
// been reminded yet.
func (s *ReminderService) SendDailyReminders(ctx context.Context) {
	tomorrow := time.Now().AddDate(0, 0, 1).Format(utils.DateLayout)

	due, err := s.reservations.DueForReminder(ctx, tomorrow)
	if err != nil {
		s.log.Errorw("fetch reservations due for reminder", "date", tomorrow, "error", err)
		return
	}

	sent := 0
	for _, r := range due {
		if err := s.remind(ctx, &r); err != nil {
			s.log.Warnw("reminder not delivered", "reservation", r.ID, "error", err)
			continue
		}
		sent++
	}
	s.log.Infow("daily reminder pass completed", "date", tomorrow, "due", len(due), "sent", sent)
}

func (s *ReminderService) remind(ctx context.Context, r *models.Reservation) error {
	message, err := s.sms.RenderTemplate("reminder", reservationVars(r))
	if err != nil {
		return err
	}

	resID := r.ID
	if _, err := s.sms.Send(ctx, r.OwnerPhone, message, nil, &resID, models.MessageReminder); err != nil {
		return err
	}
	return s.reservations.SetReminderSent(ctx, r.ID)
}
