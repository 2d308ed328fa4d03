package api

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/ustamapp/ustamapp-client/internal/apiclient"
	"github.com/ustamapp/ustamapp-client/internal/domain"
	"github.com/ustamapp/ustamapp-client/internal/session"
	"go.uber.org/zap"
)

type Credentials struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type RegisterRequest struct {
	Email     string          `json:"email"`
	Password  string          `json:"password"`
	FirstName string          `json:"first_name"`
	LastName  string          `json:"last_name"`
	Phone     string          `json:"phone,omitempty"`
	UserType  domain.UserType `json:"user_type"`
	City      string          `json:"city,omitempty"`
}

type AuthResult struct {
	Token string      `json:"access_token"`
	User  domain.User `json:"user"`
}

// Login authenticates and stores the returned session.
func (s *Service) Login(ctx context.Context, creds Credentials) (AuthResult, error) {
	creds.Email = strings.TrimSpace(creds.Email)
	if creds.Email == "" || creds.Password == "" {
		return AuthResult{}, fmt.Errorf("%w: email and password are required", domain.ErrValidation)
	}

	result, err := call[AuthResult](ctx, s, apiclient.RequestSpec{
		Method:   http.MethodPost,
		Endpoint: "/api/auth/login",
		Body:     creds,
	})
	if err != nil {
		return AuthResult{}, err
	}
	if err := s.saveSession(ctx, result); err != nil {
		return AuthResult{}, err
	}
	return result, nil
}

// Register creates an account. The session is stored when the backend
// signs the new user in directly.
func (s *Service) Register(ctx context.Context, req RegisterRequest) (AuthResult, error) {
	if !req.UserType.IsValid() {
		return AuthResult{}, fmt.Errorf("%w: invalid user type %q", domain.ErrValidation, req.UserType)
	}

	result, err := call[AuthResult](ctx, s, apiclient.RequestSpec{
		Method:   http.MethodPost,
		Endpoint: "/api/auth/register",
		Body:     req,
	})
	if err != nil {
		return AuthResult{}, err
	}
	if result.Token != "" {
		if err := s.saveSession(ctx, result); err != nil {
			return AuthResult{}, err
		}
	}
	return result, nil
}

// Logout notifies the backend and always clears the local session.
func (s *Service) Logout(ctx context.Context) error {
	remoteErr := exec(ctx, s, apiclient.RequestSpec{
		Method:       http.MethodPost,
		Endpoint:     "/api/auth/logout",
		RequiresAuth: true,
	})
	if remoteErr != nil {
		s.logger.Warn("logout request failed", zap.Error(remoteErr))
	}

	if s.sessions != nil {
		if err := s.sessions.Clear(ctx); err != nil {
			return fmt.Errorf("failed to clear session: %w", err)
		}
	}
	return remoteErr
}

func (s *Service) Profile(ctx context.Context) (domain.User, error) {
	return call[domain.User](ctx, s, apiclient.RequestSpec{
		Method:       http.MethodGet,
		Endpoint:     "/api/auth/profile",
		RequiresAuth: true,
	})
}

func (s *Service) saveSession(ctx context.Context, result AuthResult) error {
	if s.sessions == nil {
		return nil
	}
	if result.Token == "" {
		return &apiclient.APIError{
			Message: apiclient.GenericMessage,
			Status:  http.StatusOK,
			Code:    apiclient.CodeInvalidResponse,
		}
	}

	err := s.sessions.Save(ctx, session.Session{
		Token:    result.Token,
		UserType: result.User.UserType,
		UserID:   result.User.ID,
	})
	if err != nil {
		return fmt.Errorf("failed to store session: %w", err)
	}
	return nil
}
