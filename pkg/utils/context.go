package utils

import (
	"context"
	"time"

	"pvb-admin/pkg/contextkeys"
	apperrors "pvb-admin/pkg/errors"

	"github.com/labstack/echo/v4"
)

func ContextWithTimeout(ctx echo.Context, timeout time.Duration) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx.Request().Context(), timeout)
}

// Identity is the caller as asserted by a verified bearer token.
type Identity struct {
	Email string
	Name  string
	Role  string
}

func (i Identity) IsAdmin() bool { return i.Role == "admin" }

func ContextWithIdentity(ctx context.Context, identity Identity) context.Context {
	return context.WithValue(ctx, contextkeys.IdentityKey, identity)
}

func GetIdentityFromCtx(ctx context.Context) (Identity, error) {
	identity, ok := ctx.Value(contextkeys.IdentityKey).(Identity)
	if !ok {
		return Identity{}, apperrors.ErrIdentityNotFoundInContext
	}
	return identity, nil
}

func GetRequestIDFromCtx(ctx context.Context) string {
	id, _ := ctx.Value(contextkeys.RequestIDKey).(string)
	return id
}
