package graph

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/graphql-go/graphql"

	"canteen-backend/internal/identity"
	"canteen-backend/internal/logging"
	"canteen-backend/internal/ratelimit"
)

var (
	ErrUnauthorized = errors.New("Unauthorized")
	ErrRateLimited  = errors.New("Rate limit exceeded")
)

// Middleware wraps a field resolver with cross-cutting behavior. The
// schema declares middleware per field; declaration order is wrap
// order, outermost first, the business resolver innermost.
type Middleware func(next graphql.FieldResolveFn) graphql.FieldResolveFn

func Wrap(base graphql.FieldResolveFn, mws ...Middleware) graphql.FieldResolveFn {
	resolve := base
	for i := len(mws) - 1; i >= 0; i-- {
		resolve = mws[i](resolve)
	}
	return resolve
}

// Auth rejects anonymous callers before the wrapped resolver runs.
func Auth(next graphql.FieldResolveFn) graphql.FieldResolveFn {
	return func(p graphql.ResolveParams) (interface{}, error) {
		if _, ok := identity.UserFrom(p.Context); !ok {
			return nil, ErrUnauthorized
		}
		return next(p)
	}
}

type LimitConfig struct {
	Key     string
	Amount  int
	Timeout time.Duration
}

// Limit rejects a call when the caller already holds the slot for this
// field. The slot is reserved before the wrapped resolver runs, so a
// failing resolver still counts against the window.
func Limit(store ratelimit.Store, cfg LimitConfig) Middleware {
	return func(next graphql.FieldResolveFn) graphql.FieldResolveFn {
		return func(p graphql.ResolveParams) (interface{}, error) {
			key := fmt.Sprintf("limit:%s:%s:%s", cfg.Key, identity.ClientIPFrom(p.Context), p.Info.FieldName)

			taken, err := store.Exists(p.Context, key)
			if err != nil {
				return nil, err
			}
			if taken {
				return nil, ErrRateLimited
			}
			if err := store.SetWithTTL(p.Context, key, cfg.Timeout); err != nil {
				return nil, err
			}
			return next(p)
		}
	}
}

// Log records the invocation, any resolver error, and the elapsed time.
// Errors are re-propagated untouched.
func Log(level slog.Level) Middleware {
	return func(next graphql.FieldResolveFn) graphql.FieldResolveFn {
		return func(p graphql.ResolveParams) (interface{}, error) {
			l := logging.FromContext(p.Context)
			l.Log(p.Context, level, "field resolving", "field", p.Info.FieldName)

			start := time.Now()
			defer func() {
				l.Log(p.Context, level, "field resolved", "field", p.Info.FieldName, "duration_ms", time.Since(start).Milliseconds())
			}()

			result, err := next(p)
			if err != nil {
				l.Error("field resolve failed", "field", p.Info.FieldName, "error", err)
				return nil, err
			}
			return result, nil
		}
	}
}

// Uppercase upper-cases string results and passes everything else
// through unchanged.
func Uppercase(next graphql.FieldResolveFn) graphql.FieldResolveFn {
	return func(p graphql.ResolveParams) (interface{}, error) {
		result, err := next(p)
		if err != nil {
			return result, err
		}
		if s, ok := result.(string); ok {
			return strings.ToUpper(s), nil
		}
		return result, nil
	}
}
