package users

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/angelmondragon/webmarket/pkg/auth"
	pkgerrors "github.com/angelmondragon/webmarket/pkg/errors"
	"github.com/angelmondragon/webmarket/pkg/logger"
	"gorm.io/gorm"
)

// Service covers profile reads and edits.
type Service interface {
	Get(ctx context.Context, actor auth.Actor, id uint) (*UserDTO, error)
	UpdateName(ctx context.Context, actor auth.Actor, id uint, req UpdateUserRequest) (*UserDTO, error)
}

type service struct {
	repo *Repository
	logg *logger.Logger
}

func NewService(repo *Repository, logg *logger.Logger) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("users repository required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	return &service{repo: repo, logg: logg}, nil
}

func (s *service) Get(ctx context.Context, actor auth.Actor, id uint) (*UserDTO, error) {
	if !actor.CanAccessUser(id) {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "cannot view another user")
	}
	user, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "User not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load user")
	}
	return FromModel(user), nil
}

func (s *service) UpdateName(ctx context.Context, actor auth.Actor, id uint, req UpdateUserRequest) (*UserDTO, error) {
	if !actor.CanAccessUser(id) {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "cannot edit another user")
	}
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "name is required")
	}
	ok, err := s.repo.UpdateName(ctx, id, name)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update user")
	}
	if !ok {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "User not found")
	}
	s.logg.Info(s.logg.WithUserID(ctx, fmt.Sprint(id)), "user.profile_updated")
	return s.Get(ctx, actor, id)
}
