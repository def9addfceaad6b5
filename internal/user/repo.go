package user

import (
	"context"

	"github.com/nanayawb/kentecart/internal/types/user"
)

type UserRepository interface {
	CreateUser(ctx context.Context, u *user.User) error
	FindUserByLogin(ctx context.Context, login string) (*user.User, error)
}
