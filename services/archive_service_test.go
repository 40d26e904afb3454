package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"vetclinic-backend/models"
	"vetclinic-backend/repository"
)

func newArchiveEnv(t *testing.T) (*testEnv, *ArchiveService) {
	t.Helper()
	env := newTestEnv(t)
	return env, NewArchiveService(env.archive, env.reservations)
}

func TestArchiveScopedToSender(t *testing.T) {
	env, archive := newArchiveEnv(t)
	ctx := context.Background()
	alice := env.newUser(t, "alice@clinic.test", models.RoleUser)
	bob := env.newUser(t, "bob@clinic.test", models.RoleUser)
	admin := env.newUser(t, "admin@clinic.test", models.RoleAdmin)

	_, err := env.sms.Send(ctx, "09120000001", "from alice", &alice.ID, nil, models.MessageCustom)
	require.NoError(t, err)
	_, err = env.sms.Send(ctx, "09120000002", "from bob", &bob.ID, nil, models.MessageCustom)
	require.NoError(t, err)

	records, total, err := archive.Archive(ctx, alice, repository.SMSFilter{}, 0, 0)
	require.NoError(t, err)
	assert.EqualValues(t, 1, total)
	require.Len(t, records, 1)
	assert.Equal(t, "from alice", records[0].Message)

	// Pointing the filter at someone else does not widen a user's view.
	records, _, err = archive.Archive(ctx, alice, repository.SMSFilter{SentBy: &bob.ID}, 1, 20)
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, alice.ID, *records[0].SentBy)

	_, total, err = archive.Archive(ctx, admin, repository.SMSFilter{}, 1, 20)
	require.NoError(t, err)
	assert.EqualValues(t, 2, total)
}

func TestArchiveFilters(t *testing.T) {
	env, archive := newArchiveEnv(t)
	ctx := context.Background()
	admin := env.newUser(t, "admin@clinic.test", models.RoleAdmin)

	env.channel.failPhones["989120000002"] = true
	_, err := env.sms.Send(ctx, "09120000001", "ok", &admin.ID, nil, models.MessageCustom)
	require.NoError(t, err)
	_, err = env.sms.Send(ctx, "09120000002", "broken", &admin.ID, nil, models.MessageBulk)
	require.Error(t, err)

	records, total, err := archive.Archive(ctx, admin, repository.SMSFilter{Status: models.SMSStatusFailed}, 1, 20)
	require.NoError(t, err)
	assert.EqualValues(t, 1, total)
	require.Len(t, records, 1)
	assert.Equal(t, "broken", records[0].Message)

	records, _, err = archive.Archive(ctx, admin, repository.SMSFilter{MessageType: models.MessageCustom}, 1, 20)
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, "ok", records[0].Message)

	records, _, err = archive.Archive(ctx, admin, repository.SMSFilter{Phone: "989120000001"}, 1, 20)
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, "989120000001", records[0].Phone)
}

func TestSMSStatistics(t *testing.T) {
	env, archive := newArchiveEnv(t)
	ctx := context.Background()
	admin := env.newUser(t, "admin@clinic.test", models.RoleAdmin)

	env.channel.failPhones["989120000003"] = true
	for _, phone := range []string{"09120000001", "09120000002", "09120000003"} {
		env.sms.Send(ctx, phone, "hello", &admin.ID, nil, models.MessageCustom)
	}

	stats, err := archive.SMSStatistics(ctx, 0)
	require.NoError(t, err)
	assert.EqualValues(t, 3, stats.Total)
	assert.EqualValues(t, 2, stats.SentCount)
	assert.EqualValues(t, 1, stats.FailedCount)
	assert.Equal(t, 240.0, stats.TotalCost)
	assert.Equal(t, 80.0, stats.AvgCost)
	assert.InDelta(t, 66.67, stats.SuccessRate, 0.01)
	require.Len(t, stats.Daily, 1)
	assert.EqualValues(t, 3, stats.Daily[0].Count)
}

func TestReservationStatistics(t *testing.T) {
	env, archive := newArchiveEnv(t)
	ctx := context.Background()
	admin := env.newUser(t, "admin@clinic.test", models.RoleAdmin)

	r1, err := env.bookings.Create(ctx, admin, bookingInput("2025-03-10", "09:00"))
	require.NoError(t, err)
	_, err = env.bookings.Create(ctx, admin, bookingInput("2025-03-10", "10:00"))
	require.NoError(t, err)
	vaccination := bookingInput("2025-03-11", "09:00")
	vaccination.ServiceType = "vaccination"
	vaccination.Price = 900
	_, err = env.bookings.Create(ctx, admin, vaccination)
	require.NoError(t, err)

	_, err = env.bookings.Update(ctx, admin, r1.ID, ReservationPatch{Status: ptr(models.StatusCompleted)})
	require.NoError(t, err)

	stats, err := archive.ReservationStatistics(ctx, 7)
	require.NoError(t, err)
	assert.EqualValues(t, 3, stats.Total)
	assert.EqualValues(t, 2, stats.Pending)
	assert.EqualValues(t, 1, stats.Completed)
	assert.Equal(t, 1900.0, stats.TotalRevenue)
	require.Len(t, stats.Services, 2)
	assert.Equal(t, "checkup", stats.Services[0].ServiceType)
	assert.EqualValues(t, 2, stats.Services[0].Count)
}
