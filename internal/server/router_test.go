package server

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/trentd187/gym-finder/internal/config"
	"github.com/trentd187/gym-finder/internal/database"
)

type testEnv struct {
	app *fiber.App
}

// newTestEnv starts a server over a fresh SQLite file. mutate may adjust the config
// before the server is built; seed runs the demo fixture first.
func newTestEnv(t *testing.T, seed bool, mutate func(*config.Config)) *testEnv {
	t.Helper()
	cfg := &config.Config{
		Port:        "0",
		DataDir:     t.TempDir(),
		DBFile:      "test.db",
		JWTSecret:   "test-secret",
		CORSOrigins: "*",
	}
	if mutate != nil {
		mutate(cfg)
	}

	log := zap.NewNop()
	db, err := database.Connect(cfg, log)
	require.NoError(t, err)
	t.Cleanup(func() { _ = database.Close(db) })
	require.NoError(t, database.RunMigrations(db, log))
	if seed {
		_, err := database.Seed(context.Background(), db, log)
		require.NoError(t, err)
	}

	srv := New(cfg, db, log)
	t.Cleanup(func() { _ = srv.Shutdown(time.Second) })
	return &testEnv{app: srv.App}
}

func (e *testEnv) do(t *testing.T, method, path string, body interface{}, headers map[string]string) (int, []byte) {
	t.Helper()
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	resp, err := e.app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()
	out, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp.StatusCode, out
}

func decode[T any](t *testing.T, raw []byte) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(raw, &v), "body: %s", raw)
	return v
}

func (e *testEnv) login(t *testing.T, username, password string) string {
	t.Helper()
	status, body := e.do(t, http.MethodPost, "/api/auth/login", fiber.Map{"username": username, "password": password}, nil)
	require.Equal(t, http.StatusOK, status, "body: %s", body)
	return decode[map[string]string](t, body)["token"]
}

func TestHealth(t *testing.T) {
	env := newTestEnv(t, false, nil)

	status, body := env.do(t, http.MethodGet, "/health", nil, nil)
	assert.Equal(t, http.StatusOK, status)
	assert.JSONEq(t, `{"status":"ok"}`, string(body))
}

func TestRegister(t *testing.T) {
	env := newTestEnv(t, false, nil)
	creds := fiber.Map{"username": "budi", "password": "rahasia"}

	status, body := env.do(t, http.MethodPost, "/api/auth/register", creds, nil)
	require.Equal(t, http.StatusCreated, status, "body: %s", body)
	res := decode[map[string]interface{}](t, body)
	assert.Equal(t, "budi", res["username"])
	assert.NotZero(t, res["id"])

	status, body = env.do(t, http.MethodPost, "/api/auth/register", creds, nil)
	assert.Equal(t, http.StatusConflict, status)
	assert.JSONEq(t, `{"error":"Username already exists"}`, string(body))

	status, _ = env.do(t, http.MethodPost, "/api/auth/register", fiber.Map{"username": "siti"}, nil)
	assert.Equal(t, http.StatusBadRequest, status)
}

func TestLogin(t *testing.T) {
	env := newTestEnv(t, false, nil)
	status, _ := env.do(t, http.MethodPost, "/api/auth/register", fiber.Map{"username": "budi", "password": "rahasia"}, nil)
	require.Equal(t, http.StatusCreated, status)

	status, body := env.do(t, http.MethodPost, "/api/auth/login", fiber.Map{"username": "budi", "password": "salah"}, nil)
	assert.Equal(t, http.StatusUnauthorized, status)
	assert.JSONEq(t, `{"error":"Invalid credentials"}`, string(body))

	status, _ = env.do(t, http.MethodPost, "/api/auth/login", fiber.Map{"username": "ghost", "password": "rahasia"}, nil)
	assert.Equal(t, http.StatusUnauthorized, status)

	status, _ = env.do(t, http.MethodPost, "/api/auth/login", fiber.Map{"username": "budi"}, nil)
	assert.Equal(t, http.StatusBadRequest, status)

	status, body = env.do(t, http.MethodPost, "/api/auth/login", fiber.Map{"username": "budi", "password": "rahasia"}, nil)
	require.Equal(t, http.StatusOK, status)
	res := decode[map[string]string](t, body)
	assert.Equal(t, "Login successful", res["message"])
	assert.NotEmpty(t, res["token"])

	again := env.login(t, "budi", "rahasia")
	assert.NotEqual(t, res["token"], again)
}

func TestLocations(t *testing.T) {
	env := newTestEnv(t, true, nil)

	status, body := env.do(t, http.MethodGet, "/api/location", nil, nil)
	require.Equal(t, http.StatusOK, status)
	list := decode[[]map[string]interface{}](t, body)
	require.Len(t, list, 3)

	status, body = env.do(t, http.MethodGet, "/api/location/1", nil, nil)
	require.Equal(t, http.StatusOK, status)
	assert.JSONEq(t, `{"id":1,"name":"Sidoarjo"}`, string(body))

	status, _ = env.do(t, http.MethodGet, "/api/location/999", nil, nil)
	assert.Equal(t, http.StatusNotFound, status)

	status, _ = env.do(t, http.MethodGet, "/api/location/abc", nil, nil)
	assert.Equal(t, http.StatusBadRequest, status)

	status, body = env.do(t, http.MethodPost, "/api/location", fiber.Map{"name": "Kediri"}, nil)
	require.Equal(t, http.StatusCreated, status)
	assert.Equal(t, "Kediri", decode[map[string]interface{}](t, body)["name"])

	status, _ = env.do(t, http.MethodPost, "/api/location", fiber.Map{"name": "Kediri"}, nil)
	assert.Equal(t, http.StatusConflict, status)

	status, _ = env.do(t, http.MethodPost, "/api/location", fiber.Map{}, nil)
	assert.Equal(t, http.StatusBadRequest, status)
}

func TestGetGym_NonNumericID(t *testing.T) {
	env := newTestEnv(t, true, nil)

	status, body := env.do(t, http.MethodGet, "/api/gym/abc", nil, nil)
	assert.Equal(t, http.StatusBadRequest, status)
	assert.JSONEq(t, `{"error":"Invalid ID format."}`, string(body))
}

func TestGetGym(t *testing.T) {
	env := newTestEnv(t, true, nil)

	status, body := env.do(t, http.MethodGet, "/api/gym/11", nil, nil)
	require.Equal(t, http.StatusOK, status)
	gym := decode[map[string]interface{}](t, body)
	assert.Equal(t, "Malang Fitness Center", gym["name"])
	assert.Equal(t, "https://www.google.com/maps/search/?api=1&query=-7.9754,112.6231", gym["gmaps_url"])

	status, _ = env.do(t, http.MethodGet, "/api/gym/999", nil, nil)
	assert.Equal(t, http.StatusNotFound, status)
}

func TestListGyms(t *testing.T) {
	env := newTestEnv(t, true, nil)

	status, body := env.do(t, http.MethodGet, "/api/gym", nil, nil)
	require.Equal(t, http.StatusOK, status)
	gyms := decode[[]map[string]interface{}](t, body)
	assert.Len(t, gyms, 15)
	for _, g := range gyms {
		assert.NotEmpty(t, g["gmaps_url"])
	}
}

func TestSearchGyms_Malang(t *testing.T) {
	env := newTestEnv(t, true, nil)

	status, body := env.do(t, http.MethodGet, "/api/gym/search/Malang", nil, nil)
	require.Equal(t, http.StatusOK, status)
	gyms := decode[[]map[string]interface{}](t, body)
	require.Len(t, gyms, 5)
	for _, g := range gyms {
		assert.Equal(t, "Malang", g["location"])
		want := "https://www.google.com/maps/search/?api=1&query=" +
			formatJSONNumber(g["latitude"]) + "," + formatJSONNumber(g["longitude"])
		assert.Equal(t, want, g["gmaps_url"])
	}

	status, body = env.do(t, http.MethodGet, "/api/gym/search/Jakarta", nil, nil)
	require.Equal(t, http.StatusOK, status)
	assert.JSONEq(t, `[]`, string(body))
}

func TestSearchGyms_EscapedLocation(t *testing.T) {
	env := newTestEnv(t, false, nil)

	status, _ := env.do(t, http.MethodPost, "/api/gym", fiber.Map{"name": "Batu Fitness", "location": "Kota Batu"}, nil)
	require.Equal(t, http.StatusCreated, status)

	status, body := env.do(t, http.MethodGet, "/api/gym/search/Kota%20Batu", nil, nil)
	require.Equal(t, http.StatusOK, status)
	assert.Len(t, decode[[]map[string]interface{}](t, body), 1)
}

func TestCreateGym(t *testing.T) {
	env := newTestEnv(t, false, nil)

	status, body := env.do(t, http.MethodPost, "/api/gym", fiber.Map{
		"name":      "Ijen Fitness Corner",
		"location":  "Malang",
		"latitude":  -7.9,
		"longitude": 112.6,
		"address":   "Jl. Ijen",
		"photoUrl":  "https://example.com/ijen.jpg",
	}, nil)
	require.Equal(t, http.StatusCreated, status, "body: %s", body)
	gym := decode[map[string]interface{}](t, body)
	assert.Equal(t, "https://www.google.com/maps/search/?api=1&query=-7.9,112.6", gym["gmaps_url"])
	assert.Equal(t, "Jl. Ijen", gym["address"])
	assert.Equal(t, "https://example.com/ijen.jpg", gym["photoUrl"])

	// Older clients send "nama" and may omit the longitude.
	status, body = env.do(t, http.MethodPost, "/api/gym", fiber.Map{
		"nama":     "Half Located Gym",
		"location": "Malang",
		"latitude": -7.9,
	}, nil)
	require.Equal(t, http.StatusCreated, status, "body: %s", body)
	partial := decode[map[string]interface{}](t, body)
	assert.Equal(t, "Half Located Gym", partial["name"])
	assert.NotContains(t, partial, "gmaps_url")

	status, body = env.do(t, http.MethodGet, "/api/gym", nil, nil)
	require.Equal(t, http.StatusOK, status)
	listed := decode[[]map[string]interface{}](t, body)
	require.Len(t, listed, 1)
	assert.Equal(t, "Ijen Fitness Corner", listed[0]["name"])

	status, _ = env.do(t, http.MethodGet, "/api/gym/2", nil, nil)
	assert.Equal(t, http.StatusNotFound, status)

	status, _ = env.do(t, http.MethodPost, "/api/gym", fiber.Map{"name": "No Location"}, nil)
	assert.Equal(t, http.StatusBadRequest, status)
}

func TestWriteToken(t *testing.T) {
	env := newTestEnv(t, false, func(cfg *config.Config) { cfg.RequireWriteToken = true })

	status, _ := env.do(t, http.MethodPost, "/api/auth/register", fiber.Map{"username": "budi", "password": "rahasia"}, nil)
	require.Equal(t, http.StatusCreated, status)

	status, _ = env.do(t, http.MethodPost, "/api/location", fiber.Map{"name": "Kediri"}, nil)
	assert.Equal(t, http.StatusForbidden, status)

	status, _ = env.do(t, http.MethodPost, "/api/location", fiber.Map{"name": "Kediri", "token": "token-budi-1"}, nil)
	assert.Equal(t, http.StatusForbidden, status)

	first := env.login(t, "budi", "rahasia")

	status, body := env.do(t, http.MethodPost, "/api/location", fiber.Map{"name": "Kediri", "token": first}, nil)
	require.Equal(t, http.StatusCreated, status, "body: %s", body)

	status, _ = env.do(t, http.MethodPost, "/api/gym",
		fiber.Map{"name": "Kediri Gym", "location": "Kediri"},
		map[string]string{"Authorization": "Bearer " + first})
	assert.Equal(t, http.StatusCreated, status)

	// A new login replaces the stored token; the old one stops working.
	second := env.login(t, "budi", "rahasia")

	status, _ = env.do(t, http.MethodPost, "/api/location", fiber.Map{"name": "Blitar", "token": first}, nil)
	assert.Equal(t, http.StatusForbidden, status)

	status, _ = env.do(t, http.MethodPost, "/api/location", fiber.Map{"name": "Blitar", "token": second}, nil)
	assert.Equal(t, http.StatusCreated, status)

	// Reads stay public.
	status, _ = env.do(t, http.MethodGet, "/api/location", nil, nil)
	assert.Equal(t, http.StatusOK, status)
}

func TestAuthRateLimit(t *testing.T) {
	env := newTestEnv(t, false, func(cfg *config.Config) {
		cfg.AuthRateLimit = 0.01
		cfg.AuthRateBurst = 1
	})
	creds := fiber.Map{"username": "budi", "password": "rahasia"}

	status, _ := env.do(t, http.MethodPost, "/api/auth/login", creds, nil)
	assert.Equal(t, http.StatusUnauthorized, status)

	status, _ = env.do(t, http.MethodPost, "/api/auth/login", creds, nil)
	assert.Equal(t, http.StatusTooManyRequests, status)

	// Register has its own bucket.
	status, _ = env.do(t, http.MethodPost, "/api/auth/register", creds, nil)
	assert.Equal(t, http.StatusCreated, status)
}

func TestUnknownRoute(t *testing.T) {
	env := newTestEnv(t, false, nil)

	status, body := env.do(t, http.MethodGet, "/api/gyms", nil, nil)
	assert.Equal(t, http.StatusNotFound, status)
	assert.Contains(t, decode[map[string]string](t, body), "error")
}

// formatJSONNumber renders a decoded JSON number the way the map link does.
func formatJSONNumber(v interface{}) string {
	raw, _ := json.Marshal(v)
	return string(raw)
}
