package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"vetclinic-backend/models"
	"vetclinic-backend/utils"
)

func TestSendDailyReminders(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	owner := env.newUser(t, "owner@clinic.test", models.RoleUser)
	reminders := NewReminderService(env.reservations, env.sms, env.bookings.log)

	tomorrow := time.Now().AddDate(0, 0, 1).Format(utils.DateLayout)
	nextWeek := time.Now().AddDate(0, 0, 7).Format(utils.DateLayout)

	due, err := env.bookings.Create(ctx, owner, bookingInput(tomorrow, "09:00"))
	require.NoError(t, err)
	cancelled, err := env.bookings.Create(ctx, owner, bookingInput(tomorrow, "10:00"))
	require.NoError(t, err)
	_, err = env.bookings.Update(ctx, owner, cancelled.ID, ReservationPatch{Status: ptr(models.StatusCancelled)})
	require.NoError(t, err)
	later, err := env.bookings.Create(ctx, owner, bookingInput(nextWeek, "09:00"))
	require.NoError(t, err)

	before := len(env.archive.Records())
	reminders.SendDailyReminders(ctx)

	records := env.archive.Records()
	require.Len(t, records, before+1, "only the active reservation for tomorrow gets a reminder")
	rec := records[len(records)-1]
	assert.Equal(t, models.MessageReminder, rec.MessageType)
	assert.Equal(t, due.ID, *rec.ReservationID)
	assert.Nil(t, rec.SentBy, "scheduled reminders have no sending user")

	got, err := env.reservations.FindByID(ctx, due.ID)
	require.NoError(t, err)
	assert.True(t, got.ReminderSent)

	got, err = env.reservations.FindByID(ctx, later.ID)
	require.NoError(t, err)
	assert.False(t, got.ReminderSent)
}

func TestSendDailyRemindersSkipsAlreadyReminded(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	owner := env.newUser(t, "owner@clinic.test", models.RoleUser)
	reminders := NewReminderService(env.reservations, env.sms, env.bookings.log)

	tomorrow := time.Now().AddDate(0, 0, 1).Format(utils.DateLayout)
	r, err := env.bookings.Create(ctx, owner, bookingInput(tomorrow, "09:00"))
	require.NoError(t, err)
	require.NoError(t, env.reservations.SetReminderSent(ctx, r.ID))

	before := len(env.archive.Records())
	reminders.SendDailyReminders(ctx)
	assert.Len(t, env.archive.Records(), before)
}

func TestSendDailyRemindersFailureLeavesFlagUnset(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	owner := env.newUser(t, "owner@clinic.test", models.RoleUser)
	reminders := NewReminderService(env.reservations, env.sms, env.bookings.log)

	tomorrow := time.Now().AddDate(0, 0, 1).Format(utils.DateLayout)
	r, err := env.bookings.Create(ctx, owner, bookingInput(tomorrow, "09:00"))
	require.NoError(t, err)

	env.channel.failAll = true
	reminders.SendDailyReminders(ctx)

	// The failed attempt is archived but the reservation stays eligible for
	// the next pass.
	records := env.archive.Records()
	last := records[len(records)-1]
	assert.Equal(t, models.SMSStatusFailed, last.Status)
	assert.Equal(t, models.MessageReminder, last.MessageType)

	got, err := env.reservations.FindByID(ctx, r.ID)
	require.NoError(t, err)
	assert.False(t, got.ReminderSent)

	// Once the channel recovers, the next pass delivers and sets the flag.
	env.channel.failAll = false
	reminders.SendDailyReminders(ctx)
	got, err = env.reservations.FindByID(ctx, r.ID)
	require.NoError(t, err)
	assert.True(t, got.ReminderSent)
}

func TestReminderSchedulerStartStop(t *testing.T) {
	env := newTestEnv(t)
	reminders := NewReminderService(env.reservations, env.sms, env.bookings.log)

	require.NoError(t, reminders.StartScheduler())
	reminders.Stop()
}
