package services

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"go.uber.org/zap"

	"vetclinic-backend/config"
	"vetclinic-backend/models"
	"vetclinic-backend/repository"
)

// fakeChannel scripts provider behavior for tests. Phones listed in
// failPhones (or every phone when failAll is set) get a transport error.
type fakeChannel struct {
	mu         sync.Mutex
	failAll    bool
	failPhones map[string]bool
	calls      []string
}

func (f *fakeChannel) Send(ctx context.Context, phone, message string) (ChannelResponse, error) {
	f.mu.Lock()
	f.calls = append(f.calls, phone)
	f.mu.Unlock()
	if f.failAll || f.failPhones[phone] {
		return ChannelResponse{}, errors.New("channel unreachable")
	}
	return ChannelResponse{MessageID: "prov-" + phone, Cost: 120}, nil
}

func (f *fakeChannel) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.calls)
}

type testEnv struct {
	users        *repository.MemoryUserStore
	reservations *repository.MemoryReservationStore
	archive      *repository.MemorySMSStore
	channel      *fakeChannel
	tokens       *TokenService
	sms          *SMSService
	bookings     *BookingService
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	env := &testEnv{
		users:        repository.NewMemoryUserStore(),
		reservations: repository.NewMemoryReservationStore(),
		archive:      repository.NewMemorySMSStore(),
		channel:      &fakeChannel{failPhones: map[string]bool{}},
	}
	log := zap.NewNop().Sugar()
	env.tokens = NewTokenService(config.JWTConfig{Secret: "test-secret", Expiry: time.Hour}, env.users)
	env.sms = NewSMSService(env.channel, env.archive, time.Second, log)
	env.bookings = NewBookingService(env.reservations, env.sms, log)
	return env
}

func (env *testEnv) newUser(t *testing.T, email, role string) *models.User {
	t.Helper()
	user := &models.User{
		Email:     email,
		Password:  "secret-password",
		FirstName: strings.Split(email, "@")[0],
		LastName:  "Test",
		Role:      role,
		IsActive:  true,
	}
	if err := env.users.Create(context.Background(), user); err != nil {
		t.Fatalf("create user: %v", err)
	}
	return user
}

func bookingInput(date, timeOfDay string) CreateReservationInput {
	return CreateReservationInput{
		PetName:         "Rocky",
		PetType:         "dog",
		PetAge:          "3",
		OwnerName:       "Sara Ahmadi",
		OwnerPhone:      "09123456789",
		ReservationDate: date,
		ReservationTime: timeOfDay,
		ServiceType:     "checkup",
		Price:           500,
	}
}

func ptr[T any](v T) *T { return &v }
