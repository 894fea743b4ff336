package graph

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"testing"
	"time"

	"github.com/graphql-go/graphql"
	"github.com/stretchr/testify/require"

	"canteen-backend/internal/identity"
	"canteen-backend/internal/logging"
	"canteen-backend/internal/models"
	"canteen-backend/internal/ratelimit"
)

func resolveParams(ctx context.Context, field string) graphql.ResolveParams {
	return graphql.ResolveParams{
		Context: ctx,
		Info:    graphql.ResolveInfo{FieldName: field},
	}
}

func TestUppercaseString(t *testing.T) {
	next := func(p graphql.ResolveParams) (interface{}, error) {
		return "hello, canteen", nil
	}

	result, err := Uppercase(next)(resolveParams(context.Background(), "greeting"))
	require.NoError(t, err)
	require.Equal(t, "HELLO, CANTEEN", result)
}

func TestUppercaseNonString(t *testing.T) {
	next := func(p graphql.ResolveParams) (interface{}, error) {
		return 42, nil
	}

	result, err := Uppercase(next)(resolveParams(context.Background(), "count"))
	require.NoError(t, err)
	require.Equal(t, 42, result)
}

func TestUppercasePropagatesError(t *testing.T) {
	boom := errors.New("boom")
	next := func(p graphql.ResolveParams) (interface{}, error) {
		return nil, boom
	}

	_, err := Uppercase(next)(resolveParams(context.Background(), "greeting"))
	require.ErrorIs(t, err, boom)
}

func TestAuthRejectsAnonymous(t *testing.T) {
	called := false
	next := func(p graphql.ResolveParams) (interface{}, error) {
		called = true
		return "secret", nil
	}

	_, err := Auth(next)(resolveParams(context.Background(), "currentUser"))
	require.ErrorIs(t, err, ErrUnauthorized)
	require.False(t, called, "wrapped resolver must not run for anonymous callers")
}

func TestAuthAllowsAuthenticated(t *testing.T) {
	user := &models.User{ID: 1, Username: "alice"}
	ctx := identity.WithUser(context.Background(), user)

	next := func(p graphql.ResolveParams) (interface{}, error) {
		return "secret", nil
	}

	result, err := Auth(next)(resolveParams(ctx, "currentUser"))
	require.NoError(t, err)
	require.Equal(t, "secret", result)
}

func TestLimitBlocksSecondCallWithinWindow(t *testing.T) {
	store := ratelimit.NewMemoryStore()
	now := time.Date(2024, 5, 10, 9, 0, 0, 0, time.UTC)
	store.Now = func() time.Time { return now }

	calls := 0
	next := func(p graphql.ResolveParams) (interface{}, error) {
		calls++
		return "ok", nil
	}

	limited := Limit(store, LimitConfig{Key: "k", Amount: 1, Timeout: 5 * time.Second})(next)
	ctx := identity.WithClientIP(context.Background(), "10.0.0.1")

	result, err := limited(resolveParams(ctx, "registrations"))
	require.NoError(t, err)
	require.Equal(t, "ok", result)

	_, err = limited(resolveParams(ctx, "registrations"))
	require.ErrorIs(t, err, ErrRateLimited)
	require.Equal(t, 1, calls)

	now = now.Add(6 * time.Second)
	_, err = limited(resolveParams(ctx, "registrations"))
	require.NoError(t, err)
	require.Equal(t, 2, calls)
}

func TestLimitCountsFailedCalls(t *testing.T) {
	store := ratelimit.NewMemoryStore()
	now := time.Date(2024, 5, 10, 9, 0, 0, 0, time.UTC)
	store.Now = func() time.Time { return now }

	boom := errors.New("boom")
	next := func(p graphql.ResolveParams) (interface{}, error) {
		return nil, boom
	}

	limited := Limit(store, LimitConfig{Key: "k", Amount: 1, Timeout: 5 * time.Second})(next)
	ctx := identity.WithClientIP(context.Background(), "10.0.0.1")

	_, err := limited(resolveParams(ctx, "registrations"))
	require.ErrorIs(t, err, boom)

	// The slot was reserved before the failing resolver ran.
	_, err = limited(resolveParams(ctx, "registrations"))
	require.ErrorIs(t, err, ErrRateLimited)
}

func TestLimitKeysIncludeCallerIdentity(t *testing.T) {
	store := ratelimit.NewMemoryStore()
	next := func(p graphql.ResolveParams) (interface{}, error) {
		return "ok", nil
	}

	limited := Limit(store, LimitConfig{Key: "k", Amount: 1, Timeout: 5 * time.Second})(next)

	_, err := limited(resolveParams(identity.WithClientIP(context.Background(), "10.0.0.1"), "registrations"))
	require.NoError(t, err)

	// A different caller gets its own slot.
	_, err = limited(resolveParams(identity.WithClientIP(context.Background(), "10.0.0.2"), "registrations"))
	require.NoError(t, err)
}

func TestLogPropagatesErrorAfterLogging(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, nil))
	ctx := logging.IntoContext(context.Background(), logger)

	boom := errors.New("boom")
	next := func(p graphql.ResolveParams) (interface{}, error) {
		return nil, boom
	}

	_, err := Log(slog.LevelInfo)(next)(resolveParams(ctx, "register"))
	require.ErrorIs(t, err, boom)
	require.Contains(t, buf.String(), "field resolve failed")
	require.Contains(t, buf.String(), "field resolved", "elapsed time is logged even on failure")
}

func TestWrapAppliesDeclarationOrder(t *testing.T) {
	var order []string
	tag := func(name string) Middleware {
		return func(next graphql.FieldResolveFn) graphql.FieldResolveFn {
			return func(p graphql.ResolveParams) (interface{}, error) {
				order = append(order, name)
				return next(p)
			}
		}
	}

	base := func(p graphql.ResolveParams) (interface{}, error) {
		order = append(order, "base")
		return nil, nil
	}

	_, err := Wrap(base, tag("outer"), tag("middle"), tag("inner"))(resolveParams(context.Background(), "x"))
	require.NoError(t, err)
	require.Equal(t, []string{"outer", "middle", "inner", "base"}, order)
}

func TestLogGuardsShortCircuitsOfInnerMiddleware(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, nil))
	ctx := logging.IntoContext(context.Background(), logger)

	base := func(p graphql.ResolveParams) (interface{}, error) {
		t.Fatal("business resolver must not run")
		return nil, nil
	}

	// Log declared before Auth, so Auth's rejection happens inside
	// Log's guarded region.
	wrapped := Wrap(base, Log(slog.LevelInfo), Auth)
	_, err := wrapped(resolveParams(ctx, "currentUser"))
	require.ErrorIs(t, err, ErrUnauthorized)
	require.Contains(t, buf.String(), "field resolve failed")
}
