package identity

import "context"

type StoreAPI interface {
	CreateUser(ctx context.Context, user User) (User, error)
	FindByUsername(ctx context.Context, username string) (User, error)
	ListUsers(ctx context.Context) ([]User, error)
	LastGeneratedEmployeeID(ctx context.Context) (string, error)
	UpdatePasswordHash(ctx context.Context, userID int64, hash string) error
}
