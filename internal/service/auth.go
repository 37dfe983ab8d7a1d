package service

import (
	"context"
	"log/slog"
	"strings"

	"github.com/DukeRupert/rcadmin/internal/domain"
	"github.com/DukeRupert/rcadmin/internal/metrics"
)

// =============================================================================
// Interface Definition
// =============================================================================

// AuthService signs administrators in and out against the remote auth API.
//
// It does not keep session state; the session manager owns that.
type AuthService interface {
	// Login exchanges credentials for a bearer token.
	// Returns domain.EINVALID when email or password is missing and
	// domain.EUNAUTHORIZED when the auth API rejects the credentials.
	Login(ctx context.Context, email, password string) (*domain.LoginResult, error)

	// Logout asks the auth API to revoke the token in ctx.
	Logout(ctx context.Context) error
}

// =============================================================================
// Implementation
// =============================================================================

type authService struct {
	api    AuthAPI
	role   string
	logger *slog.Logger
}

// NewAuthService creates an AuthService. Every login is made with role.
func NewAuthService(api AuthAPI, role string, logger *slog.Logger) AuthService {
	if role == "" {
		role = domain.RoleSuperAdmin
	}
	return &authService{
		api:    api,
		role:   role,
		logger: logger,
	}
}

func (s *authService) Login(ctx context.Context, email, password string) (*domain.LoginResult, error) {
	const op = "auth.login"

	email = strings.TrimSpace(email)
	if email == "" || password == "" {
		return nil, domain.Invalid(op, "Email and password are required")
	}

	result, err := s.api.Login(ctx, domain.Credentials{
		Email:    email,
		Password: password,
		Role:     s.role,
	})
	if err != nil {
		outcome := "error"
		switch domain.ErrorCode(err) {
		case domain.EUNAUTHORIZED, domain.EFORBIDDEN, domain.EINVALID, domain.ENOTFOUND:
			outcome = "rejected"
		}
		metrics.LoginAttemptsTotal.WithLabelValues(outcome).Inc()
		s.logger.Info("login failed", "email", email, "outcome", outcome, "error", err)
		return nil, err
	}

	metrics.LoginAttemptsTotal.WithLabelValues("success").Inc()
	s.logger.Info("login succeeded", "email", result.User.Email)
	return result, nil
}

func (s *authService) Logout(ctx context.Context) error {
	if err := s.api.Logout(ctx); err != nil {
		s.logger.Warn("remote logout failed", "error", err)
		return err
	}
	return nil
}
