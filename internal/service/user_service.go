package service

import (
	"context"
	"database/sql"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/markbates/goth"
	"github.com/pickemparty/pickem-app/internal/store"
	users "github.com/pickemparty/pickem-app/internal/user"
	"github.com/pickemparty/pickem-app/internal/utils"
)

type UserService struct {
	db    *sqlx.DB
	store *store.UserStore
}

func NewUserService(db *sqlx.DB, store *store.UserStore) *UserService {
	return &UserService{db: db, store: store}
}

func (s *UserService) FindOrCreateUserByProvider(ctx context.Context, gothUser goth.User) (*users.User, error) {
	user, err := s.store.GetUserByProvider(ctx, gothUser.Provider, gothUser.UserID)

	if err == nil {
		if utils.OrZero(user.AvatarURL) != gothUser.AvatarURL || user.Username != gothUser.NickName {
			user.Username = gothUser.NickName
			user.AvatarURL = utils.StringOrNil(gothUser.AvatarURL)
			s.store.UpdateUserNameAndAvatar(ctx, user)
		}
		return user, nil
	}

	if err == sql.ErrNoRows {
		newUser := &users.User{
			ID:         uuid.New(),
			Email:      gothUser.Email,
			Username:   gothUser.Name,
			Provider:   &gothUser.Provider,
			ProviderID: &gothUser.UserID,
			AvatarURL:  utils.StringOrNil(gothUser.AvatarURL),
		}
		err := s.store.CreateUser(ctx, newUser)
		return newUser, err
	}

	return nil, err
}

// EnsureGuestUser returns the shared local-party guest account, creating it
// on first use.
func (s *UserService) EnsureGuestUser(ctx context.Context) (*users.User, error) {
	guestID := uuid.MustParse("00000000-0000-0000-0000-000000000001")
	user, err := s.store.GetUser(ctx, guestID)
	if err == nil {
		return user, nil
	}

	if err == sql.ErrNoRows {
		guestUser := &users.User{
			ID:       guestID,
			Email:    "guest@pickem.party",
			Username: "Guest User",
		}
		err := s.store.CreateUser(ctx, guestUser)
		return guestUser, err
	}
	return nil, err
}
