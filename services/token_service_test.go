package services

import (
	"context"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"vetclinic-backend/apperrors"
	"vetclinic-backend/models"
)

func TestIssueValidateRoundTrip(t *testing.T) {
	env := newTestEnv(t)
	userID := uuid.New()

	token, err := env.tokens.Issue(userID, models.RoleAdmin, time.Hour)
	require.NoError(t, err)

	claims, err := env.tokens.Validate(token)
	require.NoError(t, err)
	assert.Equal(t, userID, claims.UserID)
	assert.Equal(t, models.RoleAdmin, claims.Role)
	assert.True(t, claims.ExpiresAt.After(time.Now()))
}

func TestValidateExpiredToken(t *testing.T) {
	env := newTestEnv(t)

	// Correctly signed but already expired.
	claims := Claims{
		UserID: uuid.New(),
		Role:   models.RoleUser,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(time.Now().Add(-2 * time.Hour)),
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(-time.Hour)),
		},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("test-secret"))
	require.NoError(t, err)

	_, err = env.tokens.Validate(token)
	assert.ErrorIs(t, err, apperrors.ErrUnauthenticated)
}

func TestValidateTamperedToken(t *testing.T) {
	env := newTestEnv(t)

	token, err := env.tokens.Issue(uuid.New(), models.RoleUser, time.Hour)
	require.NoError(t, err)

	var dots []int
	for i, ch := range token {
		if ch == '.' {
			dots = append(dots, i)
		}
	}
	require.Len(t, dots, 2)

	starts := []int{0, dots[0] + 1, dots[1] + 1}
	for seg := range starts {
		pos := starts[seg]
		tampered := []byte(token)
		if tampered[pos] == 'A' {
			tampered[pos] = 'B'
		} else {
			tampered[pos] = 'A'
		}
		_, err := env.tokens.Validate(string(tampered))
		assert.ErrorIsf(t, err, apperrors.ErrUnauthenticated, "segment %d", seg)
	}
}

func TestValidateMalformedToken(t *testing.T) {
	env := newTestEnv(t)

	for _, token := range []string{"", "not-a-token", "a.b", "a.b.c.d"} {
		_, err := env.tokens.Validate(token)
		assert.ErrorIs(t, err, apperrors.ErrUnauthenticated)
	}
}

func TestValidateWrongSecret(t *testing.T) {
	env := newTestEnv(t)

	claims := Claims{
		UserID: uuid.New(),
		Role:   models.RoleUser,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(time.Now()),
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("other-secret"))
	require.NoError(t, err)

	_, err = env.tokens.Validate(token)
	assert.ErrorIs(t, err, apperrors.ErrUnauthenticated)
}

func TestResolveIdentity(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	user := env.newUser(t, "vet@clinic.test", models.RoleUser)

	token, err := env.tokens.Issue(user.ID, user.Role, time.Hour)
	require.NoError(t, err)

	resolved, err := env.tokens.ResolveIdentity(ctx, token)
	require.NoError(t, err)
	assert.Equal(t, user.ID, resolved.ID)
	assert.Equal(t, user.Email, resolved.Email)
}

func TestResolveIdentityUnknownUser(t *testing.T) {
	env := newTestEnv(t)

	token, err := env.tokens.Issue(uuid.New(), models.RoleUser, time.Hour)
	require.NoError(t, err)

	_, err = env.tokens.ResolveIdentity(context.Background(), token)
	assert.ErrorIs(t, err, apperrors.ErrUnauthenticated)
}

func TestResolveIdentityInactiveUser(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	user := env.newUser(t, "gone@clinic.test", models.RoleUser)
	require.NoError(t, env.users.UpdateField(ctx, user.ID, "is_active", false))

	token, err := env.tokens.Issue(user.ID, user.Role, time.Hour)
	require.NoError(t, err)

	_, err = env.tokens.ResolveIdentity(ctx, token)
	assert.ErrorIs(t, err, apperrors.ErrUnauthenticated)
}

func TestRefresh(t *testing.T) {
	env := newTestEnv(t)
	userID := uuid.New()

	token, err := env.tokens.Issue(userID, models.RoleAdmin, time.Hour)
	require.NoError(t, err)

	fresh, err := env.tokens.Refresh(token)
	require.NoError(t, err)

	claims, err := env.tokens.Validate(fresh)
	require.NoError(t, err)
	assert.Equal(t, userID, claims.UserID)
	assert.Equal(t, models.RoleAdmin, claims.Role)
}

func TestRefreshRejectsExpired(t *testing.T) {
	env := newTestEnv(t)

	claims := Claims{
		UserID: uuid.New(),
		Role:   models.RoleUser,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(time.Now().Add(-2 * time.Hour)),
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(-time.Hour)),
		},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("test-secret"))
	require.NoError(t, err)

	_, err = env.tokens.Refresh(token)
	assert.ErrorIs(t, err, apperrors.ErrUnauthenticated)
}
