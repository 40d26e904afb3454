package services

import (
	"context"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"vetclinic-backend/apperrors"
	"vetclinic-backend/config"
	"vetclinic-backend/models"
	"vetclinic-backend/repository"
)

// Claims is the decoded session token payload.
type Claims struct {
	UserID uuid.UUID `json:"user_id"`
	Role   string    `json:"role"`
	jwt.RegisteredClaims
}

// TokenService issues and validates stateless HS256 bearer tokens. Nothing is
// stored server-side, so there is no revocation; tokens die by expiry only.
type TokenService struct {
	secret []byte
	expiry time.Duration
	users  repository.UserStore
}

func NewTokenService(cfg config.JWTConfig, users repository.UserStore) *TokenService {
	return &TokenService{
		secret: []byte(cfg.Secret),
		expiry: cfg.Expiry,
		users:  users,
	}
}

// Issue signs a token for the identity. A non-positive ttl falls back to the
// configured default.
func (s *TokenService) Issue(userID uuid.UUID, role string, ttl time.Duration) (string, error) {
	if ttl <= 0 {
		ttl = s.expiry
	}
	now := time.Now()
	claims := Claims{
		UserID: userID,
		Role:   role,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
}

// Validate checks signature and expiry. Malformed tokens, bad signatures and
// expired tokens all collapse into ErrUnauthenticated; callers never learn
// which one it was.
func (s *TokenService) Validate(tokenString string) (*Claims, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return s.secret, nil
	})
	if err != nil || !token.Valid {
		return nil, fmt.Errorf("%w: %v", apperrors.ErrUnauthenticated, err)
	}
	return claims, nil
}

// ResolveIdentity validates the token and loads the identity behind it.
// Missing and deactivated users are indistinguishable from a bad token.
func (s *TokenService) ResolveIdentity(ctx context.Context, tokenString string) (*models.User, error) {
	claims, err := s.Validate(tokenString)
	if err != nil {
		return nil, err
	}
	user, err := s.users.FindByID(ctx, claims.UserID)
	if err != nil {
		return nil, fmt.Errorf("%w: unknown identity", apperrors.ErrUnauthenticated)
	}
	if !user.IsActive {
		return nil, fmt.Errorf("%w: identity deactivated", apperrors.ErrUnauthenticated)
	}
	return user, nil
}

// Refresh re-issues a token with a fresh expiry. An expired token cannot be
// refreshed; the caller has to log in again.
func (s *TokenService) Refresh(tokenString string) (string, error) {
	claims, err := s.Validate(tokenString)
	if err != nil {
		return "", err
	}
	return s.Issue(claims.UserID, claims.Role, 0)
}
