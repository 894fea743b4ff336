package session

import (
	"net/http"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/labstack/echo/v4"
	"gorm.io/gorm"

	"canteen-backend/internal/identity"
	"canteen-backend/internal/models"
)

const CookieName = "session"

type Middleware struct {
	DB     *gorm.DB
	Secret []byte
}

func NewToken(user *models.User, secret []byte, exp time.Time) (string, error) {
	claims := jwt.MapClaims{
		"sub":  user.ID,
		"role": user.Role,
		"exp":  exp.Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(secret)
}

// Resolve turns a valid session cookie into an identity on the request
// context. Missing or bad cookies leave the request anonymous; field
// middleware decides whether that matters.
func (m *Middleware) Resolve(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		cookie, err := c.Cookie(CookieName)
		if err != nil {
			return next(c)
		}

		token, err := jwt.Parse(cookie.Value, func(t *jwt.Token) (interface{}, error) {
			return m.Secret, nil
		}, jwt.WithValidMethods([]string{"HS256"}))
		if err != nil || !token.Valid {
			return next(c)
		}

		claims, ok := token.Claims.(jwt.MapClaims)
		if !ok {
			return next(c)
		}
		sub, ok := claims["sub"].(float64)
		if !ok {
			return next(c)
		}

		var user models.User
		if err := m.DB.Where("id = ?", uint(sub)).First(&user).Error; err != nil {
			return next(c)
		}

		ctx := identity.WithUser(c.Request().Context(), &user)
		c.SetRequest(c.Request().WithContext(ctx))
		return next(c)
	}
}

func (m *Middleware) RequireAdmin(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		user, ok := identity.UserFrom(c.Request().Context())
		if !ok {
			return echo.NewHTTPError(http.StatusUnauthorized, "login required")
		}
		if user.Role != "admin" {
			return echo.NewHTTPError(http.StatusForbidden, "admin only")
		}
		return next(c)
	}
}
