package middleware

import (
	"context"

	"intranet/internal/domain/identity"
)

type ctxKey string

const ctxKeyUser ctxKey = "user"

// UserContext is the authenticated caller attached to the request context by
// the Auth middleware.
type UserContext struct {
	UserID     int64
	EmployeeID string
	Username   string
	Department string
}

func WithUser(ctx context.Context, user UserContext) context.Context {
	return context.WithValue(ctx, ctxKeyUser, user)
}

func GetUser(ctx context.Context) (UserContext, bool) {
	user, ok := ctx.Value(ctxKeyUser).(UserContext)
	return user, ok
}

func userFromClaims(claims *identity.Claims) UserContext {
	return UserContext{
		UserID:     claims.UserID,
		EmployeeID: claims.EmployeeID,
		Username:   claims.Username,
		Department: claims.Department,
	}
}
