package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"vetclinic-backend/apperrors"
	"vetclinic-backend/models"
	"vetclinic-backend/repository"
	"vetclinic-backend/utils"
)

type RegisterInput struct {
	Email     string `json:"email" binding:"required,email"`
	Password  string `json:"password" binding:"required,min=8"`
	FirstName string `json:"first_name" binding:"required"`
	LastName  string `json:"last_name" binding:"required"`
	Phone     string `json:"phone"`
}

type GoogleLoginInput struct {
	GoogleID  string `json:"google_id" binding:"required"`
	Email     string `json:"email" binding:"required,email"`
	FirstName string `json:"first_name" binding:"required"`
	LastName  string `json:"last_name" binding:"required"`
}

// AuthService handles registration and the two login paths (credentials,
// Google). It returns the identity plus a fresh session token.
type AuthService struct {
	users  repository.UserStore
	tokens *TokenService
}

func NewAuthService(users repository.UserStore, tokens *TokenService) *AuthService {
	return &AuthService{users: users, tokens: tokens}
}

func (s *AuthService) Register(ctx context.Context, input RegisterInput) (*models.User, string, error) {
	if _, err := s.users.FindByEmail(ctx, input.Email); err == nil {
		return nil, "", apperrors.ErrEmailTaken
	} else if !errors.Is(err, apperrors.ErrNotFound) {
		return nil, "", err
	}

	user := &models.User{
		Email:     input.Email,
		Password:  input.Password, // hashed in BeforeCreate hook
		FirstName: input.FirstName,
		LastName:  input.LastName,
		Phone:     input.Phone,
		Role:      models.RoleUser,
		IsActive:  true,
	}
	if err := s.users.Create(ctx, user); err != nil {
		return nil, "", err
	}

	token, err := s.tokens.Issue(user.ID, user.Role, 0)
	if err != nil {
		return nil, "", err
	}
	return user, token, nil
}

func (s *AuthService) Login(ctx context.Context, email, password string) (*models.User, string, error) {
	user, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, "", fmt.Errorf("%w: invalid credentials", apperrors.ErrUnauthenticated)
		}
		return nil, "", err
	}
	if !user.IsActive || !utils.CheckPasswordHash(password, user.Password) {
		return nil, "", fmt.Errorf("%w: invalid credentials", apperrors.ErrUnauthenticated)
	}

	now := time.Now()
	if err := s.users.UpdateField(ctx, user.ID, "last_login", &now); err != nil {
		return nil, "", err
	}

	token, err := s.tokens.Issue(user.ID, user.Role, 0)
	if err != nil {
		return nil, "", err
	}
	return user, token, nil
}

// GoogleLogin signs in by external id: an existing linked account wins, then
// an account with the same email gets linked, otherwise a fresh account is
// created with an unusable random password.
func (s *AuthService) GoogleLogin(ctx context.Context, input GoogleLoginInput) (*models.User, string, error) {
	user, err := s.users.FindByGoogleID(ctx, input.GoogleID)
	if err != nil && !errors.Is(err, apperrors.ErrNotFound) {
		return nil, "", err
	}

	if user == nil || errors.Is(err, apperrors.ErrNotFound) {
		user, err = s.users.FindByEmail(ctx, input.Email)
		switch {
		case err == nil:
			if err := s.users.LinkGoogleID(ctx, user.ID, input.GoogleID); err != nil {
				return nil, "", err
			}
		case errors.Is(err, apperrors.ErrNotFound):
			user = &models.User{
				Email:     input.Email,
				Password:  uuid.NewString(), // never used for login
				FirstName: input.FirstName,
				LastName:  input.LastName,
				GoogleID:  input.GoogleID,
				Role:      models.RoleUser,
				IsActive:  true,
			}
			if err := s.users.Create(ctx, user); err != nil {
				return nil, "", err
			}
		default:
			return nil, "", err
		}
	}

	if !user.IsActive {
		return nil, "", fmt.Errorf("%w: identity deactivated", apperrors.ErrUnauthenticated)
	}

	token, err := s.tokens.Issue(user.ID, user.Role, 0)
	if err != nil {
		return nil, "", err
	}
	return user, token, nil
}
