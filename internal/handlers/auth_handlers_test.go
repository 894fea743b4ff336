package handlers

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/require"

	"canteen-backend/internal/events"
	"canteen-backend/internal/hash"
	"canteen-backend/internal/models"
	"canteen-backend/internal/session"
)

func seedLoginUser(t *testing.T, h *AuthHandler) models.User {
	pwHash, err := hash.HashPassword("password")
	require.NoError(t, err)

	user := models.User{
		Email:        "alice@example.com",
		Name:         "Alice",
		Entity:       models.EntityGarena,
		Location:     models.LocationHN,
		Username:     "alice",
		PasswordHash: pwHash,
		Role:         "user",
	}
	require.NoError(t, h.DB.Create(&user).Error)
	return user
}

func loginRequest(t *testing.T, h *AuthHandler, username, password string) (*httptest.ResponseRecorder, error) {
	payload, _ := json.Marshal(map[string]string{
		"username": username,
		"password": password,
	})

	e := echo.New()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/login", bytes.NewReader(payload))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	return rec, h.Login(c)
}

func TestLoginSetsSessionCookie(t *testing.T) {
	h := &AuthHandler{
		DB:        InitTestDB(t),
		JWTSecret: []byte("test_secret"),
		Producer:  &events.Producer{},
	}
	seedLoginUser(t, h)

	rec, err := loginRequest(t, h, "alice", "password")
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, rec.Code)

	var cookie *http.Cookie
	for _, c := range rec.Result().Cookies() {
		if c.Name == session.CookieName {
			cookie = c
		}
	}
	require.NotNil(t, cookie, "session cookie must be set")
	require.NotEmpty(t, cookie.Value)
	require.True(t, cookie.HttpOnly)

	require.NotContains(t, rec.Body.String(), "PasswordHash")
}

func TestLoginWrongPassword(t *testing.T) {
	h := &AuthHandler{
		DB:        InitTestDB(t),
		JWTSecret: []byte("test_secret"),
		Producer:  &events.Producer{},
	}
	seedLoginUser(t, h)

	_, err := loginRequest(t, h, "alice", "wrong")
	he, ok := err.(*echo.HTTPError)
	require.True(t, ok, "expected HTTPError")
	require.Equal(t, http.StatusUnauthorized, he.Code)
}

func TestLoginUnknownUser(t *testing.T) {
	h := &AuthHandler{
		DB:        InitTestDB(t),
		JWTSecret: []byte("test_secret"),
		Producer:  &events.Producer{},
	}

	_, err := loginRequest(t, h, "nobody", "password")
	he, ok := err.(*echo.HTTPError)
	require.True(t, ok, "expected HTTPError")
	require.Equal(t, http.StatusUnauthorized, he.Code)
}

func TestLogoutExpiresCookie(t *testing.T) {
	h := &AuthHandler{
		DB:        InitTestDB(t),
		JWTSecret: []byte("test_secret"),
		Producer:  &events.Producer{},
	}

	e := echo.New()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/logout", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	require.NoError(t, h.Logout(c))
	require.Equal(t, http.StatusOK, rec.Code)

	cookies := rec.Result().Cookies()
	require.NotEmpty(t, cookies)
	require.Equal(t, session.CookieName, cookies[0].Name)
	require.Empty(t, cookies[0].Value)
}
