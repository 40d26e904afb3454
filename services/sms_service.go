package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"vetclinic-backend/apperrors"
	"vetclinic-backend/models"
	"vetclinic-backend/repository"
	"vetclinic-backend/utils"
)

// Message templates, keyed by template id. Placeholders use {key} syntax and
// are filled by RenderTemplate. The catalog is fixed at compile time.
var smsTemplates = map[string]string{
	"reservation_confirmed": "سلام {owner_name} عزیز\nنوبت شما با موفقیت ثبت شد:\nحیوان: {pet_name}\nتاریخ: {date}\nساعت: {time}\nنوع خدمت: {service_type}\nشماره رزرو: {reservation_id}",
	"reminder":              "سلام {owner_name} عزیز\nیادآوری نوبت دامپزشکی شما:\nحیوان: {pet_name}\nتاریخ: {date}\nساعت: {time}\nنوع خدمت: {service_type}\nلطفاً در زمان مقرر حضور داشته باشید.",
	"status_confirmed":      "سلام {owner_name} عزیز\nنوبت شما تأیید شد\nشماره رزرو: {reservation_id}\nتاریخ: {date}\nساعت: {time}",
	"status_cancelled":      "سلام {owner_name} عزیز\nنوبت شما لغو شد\nشماره رزرو: {reservation_id}\nتاریخ: {date}\nساعت: {time}",
	"status_completed":      "سلام {owner_name} عزیز\nویزیت شما تکمیل شد\nشماره رزرو: {reservation_id}\nتاریخ: {date}\nساعت: {time}",
}

// SendResult is the outcome of one dispatch attempt.
type SendResult struct {
	Success   bool    `json:"success"`
	Phone     string  `json:"phone"`
	MessageID string  `json:"message_id,omitempty"`
	Cost      float64 `json:"cost"`
	Status    string  `json:"status"`
	Error     string  `json:"error,omitempty"`
}

// SMSService dispatches messages through the configured channel and writes
// one archive record per attempt, success or failure.
type SMSService struct {
	channel Channel
	archive repository.SMSStore
	timeout time.Duration
	log     *zap.SugaredLogger
}

func NewSMSService(channel Channel, archive repository.SMSStore, timeout time.Duration, log *zap.SugaredLogger) *SMSService {
	return &SMSService{channel: channel, archive: archive, timeout: timeout, log: log}
}

// Send normalizes the phone, makes exactly one channel call and records the
// attempt. A channel failure is returned wrapped in ErrChannelFailure, after
// the failed record has been written; the caller decides whether that sinks
// its own operation.
func (s *SMSService) Send(ctx context.Context, phone, message string, sentBy *uuid.UUID, reservationID *uuid.UUID, messageType models.MessageType) (SendResult, error) {
	normalized := utils.NormalizePhone(phone)

	callCtx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()
	resp, sendErr := s.channel.Send(callCtx, normalized, message)

	result := SendResult{
		Phone:     normalized,
		Success:   sendErr == nil,
		MessageID: resp.MessageID,
		Cost:      resp.Cost,
		Status:    models.SMSStatusSent,
	}
	if sendErr != nil {
		result.Status = models.SMSStatusFailed
		result.Cost = 0
		result.MessageID = ""
		result.Error = sendErr.Error()
		s.log.Warnw("sms dispatch failed", "phone", normalized, "type", messageType, "error", sendErr)
	}

	rec := &models.SMSRecord{
		SentBy:        sentBy,
		ReservationID: reservationID,
		Phone:         normalized,
		Message:       message,
		MessageType:   messageType,
		Status:        result.Status,
		MessageID:     result.MessageID,
		Cost:          result.Cost,
		SentAt:        time.Now(),
	}
	if err := s.archive.Create(ctx, rec); err != nil {
		// The attempt must never go unrecorded; a write failure outranks the
		// dispatch outcome.
		return result, fmt.Errorf("archive sms record: %w", err)
	}

	if sendErr != nil {
		return result, fmt.Errorf("%w: %v", apperrors.ErrChannelFailure, sendErr)
	}
	return result, nil
}

// SendBulk dispatches one message per phone. A failed recipient does not
// abort the rest; results come back in input order, one per phone.
func (s *SMSService) SendBulk(ctx context.Context, phones []string, message string, sentBy *uuid.UUID, messageType models.MessageType) ([]SendResult, error) {
	results := make([]SendResult, 0, len(phones))
	for _, phone := range phones {
		result, err := s.Send(ctx, phone, message, sentBy, nil, messageType)
		if err != nil && !errors.Is(err, apperrors.ErrChannelFailure) {
			return results, err
		}
		results = append(results, result)
	}
	return results, nil
}

// RenderTemplate substitutes {key} placeholders in the named template.
// Unresolved placeholders stay verbatim so the archive shows exactly what was
// handed to the channel; a template typo must not turn into a lost message.
func (s *SMSService) RenderTemplate(templateID string, vars map[string]string) (string, error) {
	tmpl, ok := smsTemplates[templateID]
	if !ok {
		return "", fmt.Errorf("%w: sms template %q", apperrors.ErrNotFound, templateID)
	}
	message := tmpl
	for key, value := range vars {
		message = strings.ReplaceAll(message, "{"+key+"}", value)
	}
	return message, nil
}
