package services

import (
	"context"
	"strconv"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"vetclinic-backend/apperrors"
	"vetclinic-backend/models"
	"vetclinic-backend/repository"
	"vetclinic-backend/utils"
)

// CreateReservationInput carries a booking request.
type CreateReservationInput struct {
	PetName         string  `json:"pet_name"`
	PetType         string  `json:"pet_type"`
	PetAge          string  `json:"pet_age"`
	OwnerName       string  `json:"owner_name"`
	OwnerPhone      string  `json:"owner_phone"`
	OwnerEmail      string  `json:"owner_email"`
	ReservationDate string  `json:"reservation_date"`
	ReservationTime string  `json:"reservation_time"`
	ServiceType     string  `json:"service_type"`
	VaccineType     string  `json:"vaccine_type"`
	Notes           string  `json:"notes"`
	Price           float64 `json:"price"`
}

// ReservationPatch is the typed partial update. Only the fields listed here
// are mutable; nil means "leave unchanged". The compiler is the allow-list.
type ReservationPatch struct {
	PetName         *string                   `json:"pet_name"`
	PetType         *string                   `json:"pet_type"`
	PetAge          *string                   `json:"pet_age"`
	OwnerName       *string                   `json:"owner_name"`
	OwnerPhone      *string                   `json:"owner_phone"`
	OwnerEmail      *string                   `json:"owner_email"`
	ReservationDate *string                   `json:"reservation_date"`
	ReservationTime *string                   `json:"reservation_time"`
	ServiceType     *string                   `json:"service_type"`
	VaccineType     *string                   `json:"vaccine_type"`
	Notes           *string                   `json:"notes"`
	Price           *float64                  `json:"price"`
	Status          *models.ReservationStatus `json:"status"`
}

// ListOptions are the filters an admin may apply. Non-admin callers are
// always scoped to their own reservations, whatever they pass here.
type ListOptions struct {
	Status   models.ReservationStatus
	DateFrom string
	DateTo   string
	Search   string
	Page     int
	Limit    int
}

// statusTransitions is the single auditable place where allowed status
// changes live. Staff currently drive the workflow by hand, including
// corrections backwards, so every transition is permitted; tightening the
// machine is an edit to this table.
var statusTransitions = map[models.ReservationStatus][]models.ReservationStatus{
	models.StatusPending:   {models.StatusConfirmed, models.StatusCompleted, models.StatusCancelled},
	models.StatusConfirmed: {models.StatusPending, models.StatusCompleted, models.StatusCancelled},
	models.StatusCompleted: {models.StatusPending, models.StatusConfirmed, models.StatusCancelled},
	models.StatusCancelled: {models.StatusPending, models.StatusConfirmed, models.StatusCompleted},
}

func transitionAllowed(from, to models.ReservationStatus) bool {
	if from == to {
		return true
	}
	for _, next := range statusTransitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// BookingService owns the reservation lifecycle: validation, slot
// arbitration, ownership checks, status transitions and the notifications
// they trigger.
type BookingService struct {
	reservations repository.ReservationStore
	sms          *SMSService
	log          *zap.SugaredLogger
}

func NewBookingService(reservations repository.ReservationStore, sms *SMSService, log *zap.SugaredLogger) *BookingService {
	return &BookingService{reservations: reservations, sms: sms, log: log}
}

// canAccess is the one authorization predicate every operation consults:
// admins see everything, users only their own reservations.
func canAccess(user *models.User, r *models.Reservation) bool {
	if user.IsAdmin() {
		return true
	}
	return r.UserID != nil && *r.UserID == user.ID
}

// Create books a slot. The conflict check and insert are atomic in the store;
// the confirmation SMS is best-effort and never rolls the booking back.
func (s *BookingService) Create(ctx context.Context, user *models.User, input CreateReservationInput) (*models.Reservation, error) {
	if err := validateReservationInput(input); err != nil {
		return nil, err
	}

	ownerID := user.ID
	r := &models.Reservation{
		UserID:          &ownerID,
		PetName:         input.PetName,
		PetType:         input.PetType,
		PetAge:          input.PetAge,
		OwnerName:       input.OwnerName,
		OwnerPhone:      input.OwnerPhone,
		OwnerEmail:      input.OwnerEmail,
		ReservationDate: input.ReservationDate,
		ReservationTime: input.ReservationTime,
		ServiceType:     input.ServiceType,
		VaccineType:     input.VaccineType,
		Notes:           input.Notes,
		Price:           input.Price,
		Status:          models.StatusPending,
		ReminderSent:    false,
	}

	if err := s.reservations.Create(ctx, r); err != nil {
		return nil, err
	}

	s.notify(ctx, user, r, "reservation_confirmed", models.MessageReservation)
	return r, nil
}

func (s *BookingService) Get(ctx context.Context, user *models.User, id uuid.UUID) (*models.Reservation, error) {
	r, err := s.reservations.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !canAccess(user, r) {
		return nil, apperrors.ErrForbidden
	}
	return r, nil
}

func (s *BookingService) List(ctx context.Context, user *models.User, opts ListOptions) ([]models.Reservation, int64, error) {
	if opts.Page < 1 {
		opts.Page = 1
	}
	if opts.Limit < 1 {
		opts.Limit = 20
	}

	filter := repository.ReservationFilter{
		Status:   opts.Status,
		DateFrom: opts.DateFrom,
		DateTo:   opts.DateTo,
		Search:   opts.Search,
	}
	if !user.IsAdmin() {
		userID := user.ID
		filter.UserID = &userID
	}

	return s.reservations.List(ctx, filter, opts.Page, opts.Limit)
}

// Update applies the patch under the same ownership check as Get. A date or
// time move re-runs slot arbitration; a status change into confirmed,
// cancelled or completed sends one notification built from the post-update
// reservation.
func (s *BookingService) Update(ctx context.Context, user *models.User, id uuid.UUID, patch ReservationPatch) (*models.Reservation, error) {
	r, err := s.reservations.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !canAccess(user, r) {
		return nil, apperrors.ErrForbidden
	}

	prevStatus := r.Status
	if err := applyPatch(r, patch); err != nil {
		return nil, err
	}
	if !transitionAllowed(prevStatus, r.Status) {
		return nil, apperrors.NewValidationError("status")
	}

	if err := s.reservations.Update(ctx, r); err != nil {
		return nil, err
	}

	if r.Status != prevStatus {
		switch r.Status {
		case models.StatusConfirmed, models.StatusCancelled, models.StatusCompleted:
			s.notify(ctx, user, r, "status_"+string(r.Status), models.MessageNotification)
		}
	}

	return r, nil
}

// Delete hard-deletes; no notification is sent.
func (s *BookingService) Delete(ctx context.Context, user *models.User, id uuid.UUID) error {
	r, err := s.reservations.FindByID(ctx, id)
	if err != nil {
		return err
	}
	if !canAccess(user, r) {
		return apperrors.ErrForbidden
	}
	return s.reservations.Delete(ctx, id)
}

// SendReminder dispatches a reminder for the reservation. Unlike the other
// notifications the dispatch outcome is the point of this operation, so a
// channel failure is returned to the caller and the reminder flag stays
// unset, keeping the reservation eligible for a retry.
func (s *BookingService) SendReminder(ctx context.Context, admin *models.User, id uuid.UUID) (SendResult, error) {
	if !admin.IsAdmin() {
		return SendResult{}, apperrors.ErrForbidden
	}

	r, err := s.reservations.FindByID(ctx, id)
	if err != nil {
		return SendResult{}, err
	}

	message, err := s.sms.RenderTemplate("reminder", reservationVars(r))
	if err != nil {
		return SendResult{}, err
	}

	adminID := admin.ID
	resID := r.ID
	result, err := s.sms.Send(ctx, r.OwnerPhone, message, &adminID, &resID, models.MessageReminder)
	if err != nil {
		return result, err
	}

	if err := s.reservations.SetReminderSent(ctx, r.ID); err != nil {
		return result, err
	}
	return result, nil
}

// notify renders and sends a templated message for the reservation. Failures
// are logged and swallowed: booking success never depends on the channel.
func (s *BookingService) notify(ctx context.Context, user *models.User, r *models.Reservation, templateID string, messageType models.MessageType) {
	message, err := s.sms.RenderTemplate(templateID, reservationVars(r))
	if err != nil {
		s.log.Errorw("render notification template", "template", templateID, "error", err)
		return
	}
	userID := user.ID
	resID := r.ID
	if _, err := s.sms.Send(ctx, r.OwnerPhone, message, &userID, &resID, messageType); err != nil {
		s.log.Warnw("reservation notification not delivered", "reservation", r.ID, "error", err)
	}
}

func reservationVars(r *models.Reservation) map[string]string {
	return map[string]string{
		"owner_name":     r.OwnerName,
		"pet_name":       r.PetName,
		"date":           r.ReservationDate,
		"time":           r.ReservationTime,
		"service_type":   r.ServiceType,
		"reservation_id": r.ID.String(),
		"price":          strconv.FormatFloat(r.Price, 'f', -1, 64),
	}
}

func validateReservationInput(input CreateReservationInput) error {
	var missing []string
	required := []struct {
		name  string
		value string
	}{
		{"pet_name", input.PetName},
		{"pet_type", input.PetType},
		{"owner_name", input.OwnerName},
		{"owner_phone", input.OwnerPhone},
		{"reservation_date", input.ReservationDate},
		{"reservation_time", input.ReservationTime},
		{"service_type", input.ServiceType},
	}
	for _, f := range required {
		if f.value == "" {
			missing = append(missing, f.name)
		}
	}
	if len(missing) > 0 {
		return &apperrors.ValidationError{Fields: missing}
	}

	if !utils.ValidDate(input.ReservationDate) {
		return apperrors.NewValidationError("reservation_date")
	}
	if !utils.ValidTime(input.ReservationTime) {
		return apperrors.NewValidationError("reservation_time")
	}
	if !utils.ValidatePhone(input.OwnerPhone) {
		return apperrors.NewValidationError("owner_phone")
	}
	return nil
}

func applyPatch(r *models.Reservation, patch ReservationPatch) error {
	if patch.PetName != nil {
		r.PetName = *patch.PetName
	}
	if patch.PetType != nil {
		r.PetType = *patch.PetType
	}
	if patch.PetAge != nil {
		r.PetAge = *patch.PetAge
	}
	if patch.OwnerName != nil {
		r.OwnerName = *patch.OwnerName
	}
	if patch.OwnerPhone != nil {
		if !utils.ValidatePhone(*patch.OwnerPhone) {
			return apperrors.NewValidationError("owner_phone")
		}
		r.OwnerPhone = *patch.OwnerPhone
	}
	if patch.OwnerEmail != nil {
		r.OwnerEmail = *patch.OwnerEmail
	}
	if patch.ReservationDate != nil {
		if !utils.ValidDate(*patch.ReservationDate) {
			return apperrors.NewValidationError("reservation_date")
		}
		r.ReservationDate = *patch.ReservationDate
	}
	if patch.ReservationTime != nil {
		if !utils.ValidTime(*patch.ReservationTime) {
			return apperrors.NewValidationError("reservation_time")
		}
		r.ReservationTime = *patch.ReservationTime
	}
	if patch.ServiceType != nil {
		r.ServiceType = *patch.ServiceType
	}
	if patch.VaccineType != nil {
		r.VaccineType = *patch.VaccineType
	}
	if patch.Notes != nil {
		r.Notes = *patch.Notes
	}
	if patch.Price != nil {
		r.Price = *patch.Price
	}
	if patch.Status != nil {
		if !patch.Status.Valid() {
			return apperrors.NewValidationError("status")
		}
		r.Status = *patch.Status
	}
	return nil
}
