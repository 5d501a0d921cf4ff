package storefront

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/angelmondragon/webmarket/pkg/enums"
	"github.com/angelmondragon/webmarket/pkg/localstore"
	"github.com/angelmondragon/webmarket/pkg/logger"
)

// User is the signed-in account as remembered between runs. Role is for display only.
type User struct {
	ID           uint           `json:"id"`
	Name         string         `json:"name"`
	Email        string         `json:"email"`
	Role         enums.UserRole `json:"role"`
	AccessToken  string         `json:"access_token"`
	RefreshToken string         `json:"refresh_token"`
}

func (u User) IsAdmin() bool {
	return u.Role == enums.UserRoleAdmin
}

// SessionStore persists the signed-in user under localstore.KeyUser.
type SessionStore struct {
	store localstore.Store
	logg  *logger.Logger
}

func NewSessionStore(store localstore.Store, logg *logger.Logger) (*SessionStore, error) {
	if store == nil {
		return nil, fmt.Errorf("local store required")
	}
	if logg == nil {
		logg = logger.Nop()
	}
	return &SessionStore{store: store, logg: logg}, nil
}

// CurrentUser returns the remembered user. A missing or unreadable entry reads as logged out.
func (s *SessionStore) CurrentUser(ctx context.Context) (User, bool) {
	raw, err := s.store.Get(ctx, localstore.KeyUser)
	if err != nil {
		if !errors.Is(err, localstore.ErrNotFound) {
			s.logg.Warn(s.logg.WithField(ctx, "error", err.Error()), "session.load_failed")
		}
		return User{}, false
	}
	var user User
	if err := json.Unmarshal(raw, &user); err != nil || user.ID == 0 {
		s.logg.Warn(ctx, "session.corrupt")
		return User{}, false
	}
	return user, true
}

func (s *SessionStore) SaveUser(ctx context.Context, user User) error {
	raw, err := json.Marshal(user)
	if err != nil {
		return fmt.Errorf("encode session: %w", err)
	}
	if err := s.store.Set(ctx, localstore.KeyUser, raw); err != nil {
		return fmt.Errorf("save session: %w", err)
	}
	return nil
}

func (s *SessionStore) Logout(ctx context.Context) error {
	if err := s.store.Delete(ctx, localstore.KeyUser); err != nil && !errors.Is(err, localstore.ErrNotFound) {
		return fmt.Errorf("clear session: %w", err)
	}
	return nil
}
