package service

import (
	"context"
	"log/slog"
	"sort"

	"github.com/DukeRupert/rcadmin/internal/domain"
)

// AdminService manages the administrator accounts of the marketplace.
type AdminService interface {
	// List returns all admin accounts, newest first.
	List(ctx context.Context) ([]domain.Admin, error)

	// Create validates params and creates the account.
	// Returns a *domain.ValidationError when the form is incomplete.
	Create(ctx context.Context, params domain.CreateAdminParams) error

	// Delete removes the account with id.
	// Returns domain.ENOTFOUND when no such account is listed.
	Delete(ctx context.Context, id string) (*domain.Admin, error)
}

type adminService struct {
	api    AccountsAPI
	logger *slog.Logger
}

// NewAdminService creates an AdminService.
func NewAdminService(api AccountsAPI, logger *slog.Logger) AdminService {
	return &adminService{api: api, logger: logger}
}

func (s *adminService) List(ctx context.Context) ([]domain.Admin, error) {
	admins, err := s.api.ListAdmins(ctx)
	if err != nil {
		return nil, domain.Wrap(err, domain.ErrorCode(err), "admin.list", "Failed to fetch admin accounts")
	}
	sort.SliceStable(admins, func(i, j int) bool {
		return admins[i].CreatedAt.After(admins[j].CreatedAt)
	})
	return admins, nil
}

func (s *adminService) Create(ctx context.Context, params domain.CreateAdminParams) error {
	params.Normalize()
	if err := params.Validate(); err != nil {
		return err
	}

	if err := s.api.CreateAdmin(ctx, params); err != nil {
		return err
	}

	s.logger.Info("admin account created", "email", params.Email, "role", params.Role)
	return nil
}

func (s *adminService) Delete(ctx context.Context, id string) (*domain.Admin, error) {
	const op = "admin.delete"

	// The accounts API needs the email alongside the id.
	admins, err := s.api.ListAdmins(ctx)
	if err != nil {
		return nil, domain.Wrap(err, domain.ErrorCode(err), op, "Failed to fetch admin accounts")
	}

	var target *domain.Admin
	for i := range admins {
		if admins[i].ID == id {
			target = &admins[i]
			break
		}
	}
	if target == nil {
		return nil, domain.Errorf(domain.ENOTFOUND, op, "Admin not found")
	}

	if err := s.api.DeleteAdmin(ctx, target.ID, target.Email); err != nil {
		return nil, err
	}

	s.logger.Info("admin account deleted", "id", target.ID, "email", target.Email)
	return target, nil
}
