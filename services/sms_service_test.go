package services

import (
	"context"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"vetclinic-backend/apperrors"
	"vetclinic-backend/models"
)

func TestSendNormalizesPhone(t *testing.T) {
	env := newTestEnv(t)

	for raw, want := range map[string]string{
		"09123456789":    "989123456789",
		"9123456789":     "989123456789",
		"0912-345-6789":  "989123456789",
		"+989123456789":  "989123456789",
		"00989123456789": "00989123456789",
	} {
		result, err := env.sms.Send(context.Background(), raw, "hello", nil, nil, models.MessageCustom)
		require.NoError(t, err, "raw=%q", raw)
		assert.Equal(t, want, result.Phone, "raw=%q", raw)
	}
}

func TestSendArchivesSuccess(t *testing.T) {
	env := newTestEnv(t)
	sender := uuid.New()

	result, err := env.sms.Send(context.Background(), "09123456789", "پیام آزمایشی", &sender, nil, models.MessageCustom)
	require.NoError(t, err)
	assert.True(t, result.Success)
	assert.Equal(t, models.SMSStatusSent, result.Status)
	assert.Equal(t, "prov-989123456789", result.MessageID)
	assert.Equal(t, 120.0, result.Cost)

	records := env.archive.Records()
	require.Len(t, records, 1)
	rec := records[0]
	assert.Equal(t, "989123456789", rec.Phone)
	assert.Equal(t, "پیام آزمایشی", rec.Message)
	assert.Equal(t, models.SMSStatusSent, rec.Status)
	assert.Equal(t, "prov-989123456789", rec.MessageID)
	assert.Equal(t, 120.0, rec.Cost)
	require.NotNil(t, rec.SentBy)
	assert.Equal(t, sender, *rec.SentBy)
	assert.Nil(t, rec.ReservationID)
}

func TestSendArchivesFailure(t *testing.T) {
	env := newTestEnv(t)
	env.channel.failAll = true

	result, err := env.sms.Send(context.Background(), "09123456789", "hello", nil, nil, models.MessageCustom)
	assert.ErrorIs(t, err, apperrors.ErrChannelFailure)
	assert.False(t, result.Success)
	assert.Equal(t, models.SMSStatusFailed, result.Status)
	assert.Zero(t, result.Cost)
	assert.Empty(t, result.MessageID)
	assert.Equal(t, "channel unreachable", result.Error)

	// The failed attempt still lands in the archive, with zero cost.
	records := env.archive.Records()
	require.Len(t, records, 1)
	assert.Equal(t, models.SMSStatusFailed, records[0].Status)
	assert.Zero(t, records[0].Cost)
	assert.Empty(t, records[0].MessageID)
}

func TestSendBulkContinuesPastFailures(t *testing.T) {
	env := newTestEnv(t)
	env.channel.failPhones["989120000002"] = true
	sender := uuid.New()

	phones := []string{"09120000001", "09120000002", "09120000003"}
	results, err := env.sms.SendBulk(context.Background(), phones, "hello", &sender, models.MessageBulk)
	require.NoError(t, err)
	require.Len(t, results, 3)

	assert.True(t, results[0].Success)
	assert.False(t, results[1].Success)
	assert.True(t, results[2].Success)
	assert.Equal(t, "989120000002", results[1].Phone)

	// One record per attempt, in input order.
	records := env.archive.Records()
	require.Len(t, records, 3)
	assert.Equal(t, "989120000001", records[0].Phone)
	assert.Equal(t, "989120000002", records[1].Phone)
	assert.Equal(t, "989120000003", records[2].Phone)
	assert.Equal(t, models.SMSStatusFailed, records[1].Status)
	for _, rec := range records {
		assert.Equal(t, models.MessageBulk, rec.MessageType)
	}
}

func TestRenderTemplate(t *testing.T) {
	env := newTestEnv(t)

	message, err := env.sms.RenderTemplate("reservation_confirmed", map[string]string{
		"owner_name":     "Sara",
		"pet_name":       "Rocky",
		"date":           "2025-03-10",
		"time":           "14:00",
		"service_type":   "checkup",
		"reservation_id": "abc-123",
	})
	require.NoError(t, err)
	assert.Contains(t, message, "Sara")
	assert.Contains(t, message, "Rocky")
	assert.Contains(t, message, "2025-03-10")
	assert.Contains(t, message, "14:00")
	assert.NotContains(t, message, "{")
}

func TestRenderTemplateUnresolvedPlaceholderKeptVerbatim(t *testing.T) {
	env := newTestEnv(t)

	message, err := env.sms.RenderTemplate("reminder", map[string]string{
		"owner_name": "Sara",
	})
	require.NoError(t, err)
	assert.Contains(t, message, "Sara")
	assert.True(t, strings.Contains(message, "{pet_name}"), "missing vars stay as literal placeholders")
}

func TestRenderTemplateUnknownID(t *testing.T) {
	env := newTestEnv(t)

	_, err := env.sms.RenderTemplate("no_such_template", nil)
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}
