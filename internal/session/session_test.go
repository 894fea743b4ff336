package session

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"canteen-backend/internal/identity"
	"canteen-backend/internal/models"
)

func initTestDB(t *testing.T) *gorm.DB {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	if err != nil {
		t.Fatalf("failed to connect to in-memory db: %v", err)
	}
	if err := db.AutoMigrate(&models.User{}); err != nil {
		t.Fatalf("failed to migrate tables: %v", err)
	}
	return db
}

func seedUser(t *testing.T, db *gorm.DB, role string) *models.User {
	user := models.User{
		Email:        "alice@example.com",
		Name:         "Alice",
		Entity:       models.EntityGarena,
		Location:     models.LocationHN,
		Username:     "alice",
		PasswordHash: "x",
		Role:         role,
	}
	require.NoError(t, db.Create(&user).Error)
	return &user
}

func runResolve(t *testing.T, m *Middleware, cookie *http.Cookie) (*models.User, bool) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodPost, "/graphql", nil)
	if cookie != nil {
		req.AddCookie(cookie)
	}
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	var got *models.User
	var ok bool
	handler := m.Resolve(func(c echo.Context) error {
		got, ok = identity.UserFrom(c.Request().Context())
		return nil
	})
	require.NoError(t, handler(c))
	return got, ok
}

func TestResolveInjectsUser(t *testing.T) {
	db := initTestDB(t)
	secret := []byte("test_secret")
	m := &Middleware{DB: db, Secret: secret}
	user := seedUser(t, db, "user")

	token, err := NewToken(user, secret, time.Now().Add(time.Hour))
	require.NoError(t, err)

	got, ok := runResolve(t, m, &http.Cookie{Name: CookieName, Value: token})
	require.True(t, ok)
	require.Equal(t, user.ID, got.ID)
	require.Equal(t, user.Username, got.Username)
}

func TestResolveMissingCookieIsAnonymous(t *testing.T) {
	m := &Middleware{DB: initTestDB(t), Secret: []byte("test_secret")}

	_, ok := runResolve(t, m, nil)
	require.False(t, ok)
}

func TestResolveBadTokenIsAnonymous(t *testing.T) {
	db := initTestDB(t)
	m := &Middleware{DB: db, Secret: []byte("test_secret")}
	user := seedUser(t, db, "user")

	token, err := NewToken(user, []byte("other_secret"), time.Now().Add(time.Hour))
	require.NoError(t, err)

	_, ok := runResolve(t, m, &http.Cookie{Name: CookieName, Value: token})
	require.False(t, ok)
}

func TestResolveExpiredTokenIsAnonymous(t *testing.T) {
	db := initTestDB(t)
	secret := []byte("test_secret")
	m := &Middleware{DB: db, Secret: secret}
	user := seedUser(t, db, "user")

	token, err := NewToken(user, secret, time.Now().Add(-time.Hour))
	require.NoError(t, err)

	_, ok := runResolve(t, m, &http.Cookie{Name: CookieName, Value: token})
	require.False(t, ok)
}

func TestRequireAdmin(t *testing.T) {
	db := initTestDB(t)
	m := &Middleware{DB: db, Secret: []byte("test_secret")}
	admin := seedUser(t, db, "admin")

	next := func(c echo.Context) error { return c.NoContent(http.StatusOK) }

	e := echo.New()

	// Anonymous.
	req := httptest.NewRequest(http.MethodGet, "/api/v1/admin/meals", nil)
	c := e.NewContext(req, httptest.NewRecorder())
	err := m.RequireAdmin(next)(c)
	he, ok := err.(*echo.HTTPError)
	require.True(t, ok)
	require.Equal(t, http.StatusUnauthorized, he.Code)

	// Plain user.
	plain := &models.User{ID: 99, Role: "user"}
	req = httptest.NewRequest(http.MethodGet, "/api/v1/admin/meals", nil)
	req = req.WithContext(identity.WithUser(req.Context(), plain))
	c = e.NewContext(req, httptest.NewRecorder())
	err = m.RequireAdmin(next)(c)
	he, ok = err.(*echo.HTTPError)
	require.True(t, ok)
	require.Equal(t, http.StatusForbidden, he.Code)

	// Admin.
	req = httptest.NewRequest(http.MethodGet, "/api/v1/admin/meals", nil)
	req = req.WithContext(identity.WithUser(req.Context(), admin))
	rec := httptest.NewRecorder()
	c = e.NewContext(req, rec)
	require.NoError(t, m.RequireAdmin(next)(c))
	require.Equal(t, http.StatusOK, rec.Code)
}
