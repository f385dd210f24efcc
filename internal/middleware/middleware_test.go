package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/trentd187/gym-finder/internal/models"
	"github.com/trentd187/gym-finder/internal/service"
)

type fakeAuth struct {
	tokens map[string]*models.User
	err    error
}

func (f *fakeAuth) Authenticate(_ context.Context, token string) (*models.User, error) {
	if f.err != nil {
		return nil, f.err
	}
	if u, ok := f.tokens[token]; ok {
		return u, nil
	}
	return nil, &service.Error{Kind: service.ErrAuth, Message: "Invalid token"}
}

func newGatedApp(auth TokenAuthenticator) *fiber.App {
	app := fiber.New()
	app.Post("/write", RequireToken(auth, zap.NewNop()), func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"user": c.Locals("username")})
	})
	return app
}

func post(t *testing.T, app *fiber.App, body, authHeader string) int {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/write", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	if authHeader != "" {
		req.Header.Set("Authorization", authHeader)
	}
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	return resp.StatusCode
}

func TestRequireToken(t *testing.T) {
	auth := &fakeAuth{tokens: map[string]*models.User{"good": {ID: 1, Username: "budi"}}}
	app := newGatedApp(auth)

	assert.Equal(t, http.StatusOK, post(t, app, `{}`, "Bearer good"))
	assert.Equal(t, http.StatusOK, post(t, app, `{"name":"Kediri","token":"good"}`, ""))
	assert.Equal(t, http.StatusForbidden, post(t, app, `{}`, ""))
	assert.Equal(t, http.StatusForbidden, post(t, app, `{}`, "Bearer bad"))
	assert.Equal(t, http.StatusForbidden, post(t, app, `{}`, "Basic good"))
	assert.Equal(t, http.StatusForbidden, post(t, app, `not json`, ""))
}

func TestRequireToken_StorageFailure(t *testing.T) {
	app := newGatedApp(&fakeAuth{err: errors.New("database is locked")})

	assert.Equal(t, http.StatusInternalServerError, post(t, app, `{}`, "Bearer good"))
}

func TestBearerToken(t *testing.T) {
	assert.Equal(t, "abc", bearerToken("Bearer abc"))
	assert.Equal(t, "", bearerToken("abc"))
	assert.Equal(t, "", bearerToken(""))
}

func TestRateLimiter(t *testing.T) {
	rl := NewRateLimiter(rate.Limit(0.001), 2, time.Minute)

	assert.True(t, rl.Allow("a"))
	assert.True(t, rl.Allow("a"))
	assert.False(t, rl.Allow("a"))
	assert.True(t, rl.Allow("b"), "keys have independent buckets")

	rl.evict(time.Now().Add(2 * time.Minute))
	assert.True(t, rl.Allow("a"), "an evicted key starts with a full bucket")

	rl.Stop()
	rl.Stop()
}
