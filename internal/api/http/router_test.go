package http

import (
	"encoding/json"
	"io"
	nethttp "net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/spec-kit/auth-service/internal/api/http/handlers"
	"github.com/spec-kit/auth-service/internal/auth"
	"github.com/spec-kit/auth-service/internal/config"
	"github.com/spec-kit/auth-service/internal/observability"
	"github.com/spec-kit/auth-service/internal/service"
	"github.com/spec-kit/auth-service/internal/service/servicetest"
)

func newTestApp(t *testing.T) *fiber.App {
	t.Helper()

	cfg := config.AuthConfig{
		JWTSecret:             "test-secret",
		AccessTokenTTLMinutes: 60,
		BcryptCost:            bcrypt.MinCost,
	}
	authService := service.NewAuthService(cfg, servicetest.NewUserRepo(), zap.NewNop())

	app := fiber.New()
	RegisterMiddlewares(app, zap.NewNop(), observability.NewMetrics(), 0)
	RegisterRoutes(app, RouteConfig{
		Health:         handlers.NewHealthHandler("auth-service-test", "test", nil, nil),
		Auth:           handlers.NewAuthHandler(authService),
		Profile:        handlers.NewProfileHandler(),
		AuthMiddleware: auth.NewMiddleware(authService.TokenManager()),
	})
	return app
}

func postJSON(t *testing.T, app *fiber.App, path, body string) *nethttp.Response {
	t.Helper()
	req := httptest.NewRequest(nethttp.MethodPost, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req)
	require.NoError(t, err)
	return resp
}

func postForm(t *testing.T, app *fiber.App, path string, form url.Values) *nethttp.Response {
	t.Helper()
	req := httptest.NewRequest(nethttp.MethodPost, path, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	resp, err := app.Test(req)
	require.NoError(t, err)
	return resp
}

func decodeBody(t *testing.T, resp *nethttp.Response) map[string]any {
	t.Helper()
	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	var out map[string]any
	require.NoError(t, json.Unmarshal(raw, &out))
	return out
}

func TestRegisterLoginProfileFlow(t *testing.T) {
	app := newTestApp(t)

	resp := postJSON(t, app, "/register", `{"username":"alice","email":"alice@x.com","password":"Secr3t!"}`)
	require.Equal(t, nethttp.StatusCreated, resp.StatusCode)
	body := decodeBody(t, resp)
	require.Equal(t, "User registered successfully", body["message"])

	// Same username, different email: conflict.
	resp = postJSON(t, app, "/register", `{"username":"alice","email":"other@x.com","password":"Secr3t!"}`)
	require.Equal(t, nethttp.StatusBadRequest, resp.StatusCode)
	body = decodeBody(t, resp)
	require.Equal(t, "CONFLICT", body["error"].(map[string]any)["code"])

	resp = postForm(t, app, "/login", url.Values{"username": {"alice"}, "password": {"Secr3t!"}})
	require.Equal(t, nethttp.StatusOK, resp.StatusCode)
	body = decodeBody(t, resp)
	token, _ := body["access_token"].(string)
	require.NotEmpty(t, token)
	require.Equal(t, "bearer", body["token_type"])

	req := httptest.NewRequest(nethttp.MethodGet, "/profile", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	profileResp, err := app.Test(req)
	require.NoError(t, err)
	require.Equal(t, nethttp.StatusOK, profileResp.StatusCode)
	body = decodeBody(t, profileResp)
	user := body["user"].(map[string]any)
	require.Equal(t, "alice", user["username"])
	require.Equal(t, float64(1), user["user_id"])

	resp = postForm(t, app, "/login", url.Values{"username": {"alice"}, "password": {"wrong"}})
	require.Equal(t, nethttp.StatusBadRequest, resp.StatusCode)
	body = decodeBody(t, resp)
	require.Equal(t, "INVALID_CREDENTIALS", body["error"].(map[string]any)["code"])
}

func TestProfile_Unauthorized(t *testing.T) {
	app := newTestApp(t)

	req := httptest.NewRequest(nethttp.MethodGet, "/profile", nil)
	resp, err := app.Test(req)
	require.NoError(t, err)
	require.Equal(t, nethttp.StatusUnauthorized, resp.StatusCode)

	req = httptest.NewRequest(nethttp.MethodGet, "/profile", nil)
	req.Header.Set("Authorization", "Bearer garbage.token.here")
	resp, err = app.Test(req)
	require.NoError(t, err)
	require.Equal(t, nethttp.StatusUnauthorized, resp.StatusCode)
	body := decodeBody(t, resp)
	require.Equal(t, "invalid token", body["error"].(map[string]any)["message"])
}

func TestRegister_ValidationFailures(t *testing.T) {
	app := newTestApp(t)

	for _, body := range []string{
		`{"username":"","email":"a@x.com","password":"p"}`,
		`{"username":"a","email":"","password":"p"}`,
		`{"username":"a","email":"a@x.com","password":""}`,
		`{"username":"a","email":"not-an-email","password":"p"}`,
	} {
		resp := postJSON(t, app, "/register", body)
		require.Equal(t, nethttp.StatusBadRequest, resp.StatusCode, "body: %s", body)
	}
}

func TestHealthLive(t *testing.T) {
	app := newTestApp(t)

	req := httptest.NewRequest(nethttp.MethodGet, "/health/live", nil)
	resp, err := app.Test(req)
	require.NoError(t, err)
	require.Equal(t, nethttp.StatusOK, resp.StatusCode)
	body := decodeBody(t, resp)
	require.Equal(t, "alive", body["status"])
}
