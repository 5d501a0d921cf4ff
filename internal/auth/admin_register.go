package auth

import (
	"context"
	"errors"
	"strings"

	"github.com/angelmondragon/webmarket/internal/users"
	"github.com/angelmondragon/webmarket/pkg/config"
	"github.com/angelmondragon/webmarket/pkg/db"
	"github.com/angelmondragon/webmarket/pkg/enums"
	pkgerrors "github.com/angelmondragon/webmarket/pkg/errors"
	"github.com/angelmondragon/webmarket/pkg/security"
	"gorm.io/gorm"
)

// AdminSeedRequest names the bootstrap admin account.
type AdminSeedRequest struct {
	Name     string
	Email    string
	Password string
}

// AdminSeedResult reports what the bootstrap did.
type AdminSeedResult struct {
	User     *users.UserDTO
	Created  bool
	Promoted bool
}

// AdminSeeder creates the admin account, or promotes and re-keys an existing one.
type AdminSeeder interface {
	Seed(ctx context.Context, req AdminSeedRequest) (*AdminSeedResult, error)
}

// AdminSeederParams names the dependencies for the admin bootstrap.
type AdminSeederParams struct {
	DB             *db.Client
	PasswordConfig config.PasswordConfig
}

type adminSeeder struct {
	db          *db.Client
	passwordCfg config.PasswordConfig
}

// NewAdminSeeder builds the admin bootstrap used by cmd/migrate seed-admin.
func NewAdminSeeder(params AdminSeederParams) (AdminSeeder, error) {
	if params.DB == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "database client required")
	}
	return &adminSeeder{
		db:          params.DB,
		passwordCfg: params.PasswordConfig,
	}, nil
}

// AdminSeedFromConfig maps the bootstrap env block onto a seed request.
func AdminSeedFromConfig(cfg config.BootstrapConfig) AdminSeedRequest {
	return AdminSeedRequest{Name: cfg.AdminName, Email: cfg.AdminEmail, Password: cfg.AdminPassword}
}

func (s *adminSeeder) Seed(ctx context.Context, req AdminSeedRequest) (*AdminSeedResult, error) {
	email := users.NormalizeEmail(req.Email)
	if email == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "admin email is required")
	}
	name := strings.TrimSpace(req.Name)
	if name == "" {
		name = "Admin"
	}
	if err := security.ValidatePassword(req.Password); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, err.Error())
	}

	passwordHash, err := security.HashPassword(req.Password, s.passwordCfg)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "hash password")
	}

	result := &AdminSeedResult{}
	err = s.db.WithTx(ctx, func(tx *gorm.DB) error {
		userRepo := users.NewRepository(tx)

		existing, err := userRepo.FindByEmail(ctx, email)
		switch {
		case err == nil:
			if err := userRepo.UpdateCredentials(ctx, existing.ID, passwordHash, enums.UserRoleAdmin); err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "promote user")
			}
			result.Promoted = existing.Role != enums.UserRoleAdmin
			existing.Role = enums.UserRoleAdmin
			result.User = users.FromModel(existing)
			return nil
		case !errors.Is(err, gorm.ErrRecordNotFound):
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "check user email")
		}

		user, err := userRepo.Create(ctx, users.CreateUserDTO{
			Name:         name,
			Email:        email,
			PasswordHash: passwordHash,
			Role:         enums.UserRoleAdmin,
		})
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "create user")
		}
		result.Created = true
		result.User = users.FromModel(user)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}
