// Package identity carries the authenticated caller through
// context.Context. Nothing here is global: the session middleware puts
// the user in, resolvers and directive middleware read it back out.
package identity

import (
	"context"

	"canteen-backend/internal/models"
)

type userKey struct{}

type clientIPKey struct{}

func WithUser(ctx context.Context, u *models.User) context.Context {
	return context.WithValue(ctx, userKey{}, u)
}

func UserFrom(ctx context.Context) (*models.User, bool) {
	if v := ctx.Value(userKey{}); v != nil {
		if u, ok := v.(*models.User); ok && u != nil {
			return u, true
		}
	}
	return nil, false
}

func WithClientIP(ctx context.Context, ip string) context.Context {
	return context.WithValue(ctx, clientIPKey{}, ip)
}

func ClientIPFrom(ctx context.Context) string {
	if v := ctx.Value(clientIPKey{}); v != nil {
		if ip, ok := v.(string); ok {
			return ip
		}
	}
	return ""
}
