package server

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"agencydesk/internal/models"

	"github.com/alicebob/miniredis/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testPassword = "Sup3rSecret!Pass"

func authTestApp(s *Server) *fiber.App {
	app := fiber.New()
	app.Post("/api/auth/signup", s.Signup)
	app.Post("/api/auth/login", s.Login)
	app.Post("/api/auth/refresh", s.Refresh)
	app.Post("/api/auth/logout", s.Logout)
	app.Get("/api/users/me", s.AuthRequired(), s.GetMyProfile)
	return app
}

func bearerRequest(method, path, token string) *http.Request {
	req := httptest.NewRequest(method, path, nil)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	return req
}

func decodeToken(t *testing.T, resp *http.Response) string {
	t.Helper()
	defer func() { _ = resp.Body.Close() }()
	var body struct {
		Token string `json:"token"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	require.NotEmpty(t, body.Token)
	return body.Token
}

func TestSignupLoginFlow(t *testing.T) {
	t.Parallel()

	s, _ := newTestServer(t)
	app := authTestApp(s)

	resp := postJSON(t, app, "/api/auth/signup", map[string]any{
		"username": "newuser",
		"email":    "newuser@example.com",
		"password": testPassword,
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	token := decodeToken(t, resp)

	// The fresh token works against a protected route.
	meResp, err := app.Test(bearerRequest(http.MethodGet, "/api/users/me", token))
	require.NoError(t, err)
	defer func() { _ = meResp.Body.Close() }()
	assert.Equal(t, http.StatusOK, meResp.StatusCode)

	var me models.User
	require.NoError(t, json.NewDecoder(meResp.Body).Decode(&me))
	assert.Equal(t, "newuser", me.Username)
	assert.Equal(t, models.UserRoleUser, me.Role)

	// Duplicate signup is refused.
	dup := postJSON(t, app, "/api/auth/signup", map[string]any{
		"username": "newuser2",
		"email":    "newuser@example.com",
		"password": testPassword,
	})
	defer func() { _ = dup.Body.Close() }()
	assert.Equal(t, http.StatusConflict, dup.StatusCode)

	// Wrong password is a 401 with no hint which part was wrong.
	bad := postJSON(t, app, "/api/auth/login", map[string]any{
		"email":    "newuser@example.com",
		"password": "WrongPassword123!",
	})
	defer func() { _ = bad.Body.Close() }()
	assert.Equal(t, http.StatusUnauthorized, bad.StatusCode)

	good := postJSON(t, app, "/api/auth/login", map[string]any{
		"email":    "newuser@example.com",
		"password": testPassword,
	})
	require.Equal(t, http.StatusOK, good.StatusCode)
	decodeToken(t, good)
}

func TestSignupRejectsWeakPassword(t *testing.T) {
	t.Parallel()

	s, _ := newTestServer(t)
	app := authTestApp(s)

	resp := postJSON(t, app, "/api/auth/signup", map[string]any{
		"username": "weak",
		"email":    "weak@example.com",
		"password": "short",
	})
	defer func() { _ = resp.Body.Close() }()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestAuthRequiredRejectsBadTokens(t *testing.T) {
	t.Parallel()

	s, _ := newTestServer(t)
	app := authTestApp(s)

	missing, err := app.Test(bearerRequest(http.MethodGet, "/api/users/me", ""))
	require.NoError(t, err)
	defer func() { _ = missing.Body.Close() }()
	assert.Equal(t, http.StatusUnauthorized, missing.StatusCode)

	garbage, err := app.Test(bearerRequest(http.MethodGet, "/api/users/me", "not-a-jwt"))
	require.NoError(t, err)
	defer func() { _ = garbage.Body.Close() }()
	assert.Equal(t, http.StatusUnauthorized, garbage.StatusCode)
}

func TestLogoutRevokesToken(t *testing.T) {
	t.Parallel()

	mr, err := miniredis.Run()
	require.NoError(t, err)
	defer mr.Close()

	s, _ := newTestServer(t)
	s.redis = redis.NewClient(&redis.Options{Addr: mr.Addr()})
	app := authTestApp(s)

	signup := postJSON(t, app, "/api/auth/signup", map[string]any{
		"username": "leaver",
		"email":    "leaver@example.com",
		"password": testPassword,
	})
	require.Equal(t, http.StatusCreated, signup.StatusCode)
	token := decodeToken(t, signup)

	logout, err := app.Test(bearerRequest(http.MethodPost, "/api/auth/logout", token))
	require.NoError(t, err)
	defer func() { _ = logout.Body.Close() }()
	require.Equal(t, http.StatusOK, logout.StatusCode)

	// The revoked jti must no longer authenticate.
	me, err := app.Test(bearerRequest(http.MethodGet, "/api/users/me", token))
	require.NoError(t, err)
	defer func() { _ = me.Body.Close() }()
	assert.Equal(t, http.StatusUnauthorized, me.StatusCode)
}

func TestRefreshRotatesToken(t *testing.T) {
	t.Parallel()

	mr, err := miniredis.Run()
	require.NoError(t, err)
	defer mr.Close()

	s, _ := newTestServer(t)
	s.redis = redis.NewClient(&redis.Options{Addr: mr.Addr()})
	app := authTestApp(s)

	signup := postJSON(t, app, "/api/auth/signup", map[string]any{
		"username": "rotator",
		"email":    "rotator@example.com",
		"password": testPassword,
	})
	require.Equal(t, http.StatusCreated, signup.StatusCode)
	oldToken := decodeToken(t, signup)

	refresh, err := app.Test(bearerRequest(http.MethodPost, "/api/auth/refresh", oldToken))
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, refresh.StatusCode)
	newToken := decodeToken(t, refresh)
	assert.NotEqual(t, oldToken, newToken)

	// Old token is revoked, new token still works.
	oldMe, err := app.Test(bearerRequest(http.MethodGet, "/api/users/me", oldToken))
	require.NoError(t, err)
	defer func() { _ = oldMe.Body.Close() }()
	assert.Equal(t, http.StatusUnauthorized, oldMe.StatusCode)

	newMe, err := app.Test(bearerRequest(http.MethodGet, "/api/users/me", newToken))
	require.NoError(t, err)
	defer func() { _ = newMe.Body.Close() }()
	assert.Equal(t, http.StatusOK, newMe.StatusCode)
}

func TestIssueWSTicketSingleUse(t *testing.T) {
	t.Parallel()

	mr, err := miniredis.Run()
	require.NoError(t, err)
	defer mr.Close()

	s, db := newTestServer(t)
	s.redis = redis.NewClient(&redis.Options{Addr: mr.Addr()})

	admin := models.User{Username: "streamer", Email: "streamer@example.com", Password: "pw", Role: models.UserRoleAdmin}
	mustCreate(t, db, &admin)

	app := testApp(admin.ID, func(app *fiber.App) {
		app.Post("/api/ws/ticket", s.IssueWSTicket)
	})
	// A separate app without the locals stub exercises ticket auth itself.
	wsApp := fiber.New()
	wsApp.Get("/api/ws/admin", s.AuthRequired(), func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"userID": c.Locals("userID")})
	})

	resp := postJSON(t, app, "/api/ws/ticket", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	defer func() { _ = resp.Body.Close() }()
	var body struct {
		Ticket    string `json:"ticket"`
		ExpiresIn int    `json:"expires_in"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	require.NotEmpty(t, body.Ticket)
	assert.Equal(t, 30, body.ExpiresIn)

	// First use succeeds.
	first, err := wsApp.Test(httptest.NewRequest(http.MethodGet, "/api/ws/admin?ticket="+body.Ticket, nil))
	require.NoError(t, err)
	defer func() { _ = first.Body.Close() }()
	assert.Equal(t, http.StatusOK, first.StatusCode)

	// Redis key is consumed.
	exists, err := s.redis.Exists(t.Context(), fmt.Sprintf("ws_ticket:%s", body.Ticket)).Result()
	require.NoError(t, err)
	assert.EqualValues(t, 0, exists)

	// Second use fails on a websocket path.
	second, err := wsApp.Test(httptest.NewRequest(http.MethodGet, "/api/ws/admin?ticket="+body.Ticket, nil))
	require.NoError(t, err)
	defer func() { _ = second.Body.Close() }()
	assert.Equal(t, http.StatusUnauthorized, second.StatusCode)
}
