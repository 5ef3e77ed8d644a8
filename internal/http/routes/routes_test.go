package routes_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mo-amir99/lms-progress-server/internal/http/routes"
	"github.com/mo-amir99/lms-progress-server/internal/testutil"
	"github.com/mo-amir99/lms-progress-server/pkg/config"
	"github.com/mo-amir99/lms-progress-server/pkg/logger"
	"github.com/mo-amir99/lms-progress-server/pkg/middleware"
)

type envelope struct {
	Success    bool            `json:"success"`
	Message    string          `json:"message"`
	Data       json.RawMessage `json:"data"`
	Error      json.RawMessage `json:"error"`
	Pagination struct {
		Count int64 `json:"count"`
	} `json:"pagination"`
}

type client struct {
	t      *testing.T
	engine *gin.Engine
	token  string
}

func newClient(t *testing.T) *client {
	t.Helper()
	gin.SetMode(gin.TestMode)

	cfg := &config.Config{
		Env:              "test",
		JWTSecret:        "access-secret",
		JWTRefreshSecret: "refresh-secret",
		AccessTokenTTL:   time.Minute,
		RefreshTokenTTL:  time.Hour,
	}

	log := logger.NewNop()
	engine := gin.New()
	engine.Use(middleware.RequestID(), middleware.Recovery(log))
	routes.Register(engine, cfg, testutil.NewDB(t), log, nil)

	return &client{t: t, engine: engine}
}

func (c *client) do(method, path string, body interface{}) (int, envelope) {
	c.t.Helper()

	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(c.t, err)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	rec := httptest.NewRecorder()
	c.engine.ServeHTTP(rec, req)

	var env envelope
	if rec.Body.Len() > 0 {
		require.NoError(c.t, json.Unmarshal(rec.Body.Bytes(), &env), rec.Body.String())
	}
	return rec.Code, env
}

func decode[T any](t *testing.T, raw json.RawMessage) T {
	t.Helper()
	var out T
	require.NoError(t, json.Unmarshal(raw, &out))
	return out
}

type tokens struct {
	Access  string `json:"access"`
	Refresh string `json:"refresh"`
}

func (c *client) register(username string) tokens {
	c.t.Helper()

	status, env := c.do(http.MethodPost, "/api/auth/register", map[string]string{
		"username": username,
		"password": "password123",
	})
	require.Equal(c.t, http.StatusCreated, status)

	resp := decode[struct {
		Tokens tokens `json:"tokens"`
	}](c.t, env.Data)
	c.token = resp.Tokens.Access
	return resp.Tokens
}

type idOnly struct {
	ID string `json:"id"`
}

func TestProgressFlow(t *testing.T) {
	c := newClient(t)
	c.register("alice")

	status, env := c.do(http.MethodPost, "/api/products", map[string]string{"name": "Go Course"})
	require.Equal(t, http.StatusCreated, status)
	productID := decode[idOnly](t, env.Data).ID

	status, env = c.do(http.MethodPost, "/api/lessons", map[string]interface{}{
		"title":     "Intro",
		"video_url": "https://videos.example.com/intro",
		"duration":  100,
	})
	require.Equal(t, http.StatusCreated, status)
	lessonID := decode[idOnly](t, env.Data).ID

	status, _ = c.do(http.MethodPost, "/api/product-lessons", map[string]string{"product": productID, "lesson": lessonID})
	require.Equal(t, http.StatusCreated, status)

	// Linked but not purchased.
	status, env = c.do(http.MethodGet, "/api/lessons", nil)
	require.Equal(t, http.StatusOK, status)
	assert.Zero(t, env.Pagination.Count)

	status, _ = c.do(http.MethodPost, "/api/product-access", map[string]string{"product": productID})
	require.Equal(t, http.StatusCreated, status)

	status, env = c.do(http.MethodPost, "/api/product-access", map[string]string{"product": productID})
	assert.Equal(t, http.StatusConflict, status)
	assert.False(t, env.Success)

	status, env = c.do(http.MethodGet, "/api/lessons", nil)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, int64(1), env.Pagination.Count)

	status, _ = c.do(http.MethodPost, "/api/lesson-views", map[string]interface{}{"lesson": lessonID, "view_duration": 101})
	assert.Equal(t, http.StatusBadRequest, status)

	status, env = c.do(http.MethodPost, "/api/lesson-views", map[string]interface{}{"lesson": lessonID, "view_duration": 85})
	require.Equal(t, http.StatusCreated, status)
	view := decode[struct {
		ID     string `json:"id"`
		Status string `json:"status"`
	}](t, env.Data)
	assert.Equal(t, "viewed", view.Status)

	status, env = c.do(http.MethodPatch, "/api/lesson-views/"+view.ID, map[string]interface{}{"view_duration": 10})
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, "not_viewed", decode[struct {
		Status string `json:"status"`
	}](t, env.Data).Status)

	status, _ = c.do(http.MethodPut, "/api/lesson-views/"+view.ID, map[string]interface{}{"view_duration": 10})
	assert.Equal(t, http.StatusBadRequest, status)

	status, env = c.do(http.MethodGet, "/api/products/statistics", nil)
	require.Equal(t, http.StatusOK, status)
	rows := decode[[]struct {
		ProductID          string  `json:"product_id"`
		ViewedLessonsCount int64   `json:"viewed_lessons_count"`
		TotalViewTime      int64   `json:"total_view_time"`
		StudentsCount      int64   `json:"students_count"`
		PurchasePercentage float64 `json:"purchase_percentage"`
	}](t, env.Data)
	require.Len(t, rows, 1)
	assert.Equal(t, productID, rows[0].ProductID)
	assert.Zero(t, rows[0].ViewedLessonsCount)
	assert.Equal(t, int64(1), rows[0].StudentsCount)
	assert.Equal(t, 100.0, rows[0].PurchasePercentage)

	status, _ = c.do(http.MethodGet, "/api/products/statistics?owned=maybe", nil)
	assert.Equal(t, http.StatusBadRequest, status)

	status, _ = c.do(http.MethodDelete, "/api/products/"+productID, nil)
	assert.Equal(t, http.StatusNoContent, status)

	status, env = c.do(http.MethodGet, "/api/products", nil)
	require.Equal(t, http.StatusOK, status)
	assert.Zero(t, env.Pagination.Count)

	status, _ = c.do(http.MethodGet, "/api/products/"+productID, nil)
	assert.Equal(t, http.StatusOK, status)
}

func TestOtherUsersCannotSeeRows(t *testing.T) {
	c := newClient(t)
	c.register("alice")

	status, env := c.do(http.MethodPost, "/api/products", map[string]string{"name": "Private"})
	require.Equal(t, http.StatusCreated, status)
	productID := decode[idOnly](t, env.Data).ID

	status, env = c.do(http.MethodPost, "/api/product-access", map[string]string{"product": productID})
	require.Equal(t, http.StatusCreated, status)
	accessID := decode[idOnly](t, env.Data).ID

	c.register("bob")

	status, _ = c.do(http.MethodGet, "/api/products/"+productID, nil)
	assert.Equal(t, http.StatusNotFound, status)

	status, _ = c.do(http.MethodGet, "/api/product-access/"+accessID, nil)
	assert.Equal(t, http.StatusNotFound, status)

	status, _ = c.do(http.MethodGet, "/api/products/not-a-uuid", nil)
	assert.Equal(t, http.StatusNotFound, status)

	// Statistics stay global unless owned=true.
	status, env = c.do(http.MethodGet, "/api/products/statistics", nil)
	require.Equal(t, http.StatusOK, status)
	assert.Len(t, decode[[]idOnly](t, env.Data), 1)

	status, env = c.do(http.MethodGet, "/api/products/statistics?owned=true", nil)
	require.Equal(t, http.StatusOK, status)
	assert.Empty(t, decode[[]idOnly](t, env.Data))
}

func TestAuthLifecycle(t *testing.T) {
	c := newClient(t)

	status, _ := c.do(http.MethodGet, "/api/users/me", nil)
	assert.Equal(t, http.StatusUnauthorized, status)

	pair := c.register("carol")

	status, env := c.do(http.MethodGet, "/api/users/me", nil)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, "carol", decode[struct {
		Username string `json:"username"`
	}](t, env.Data).Username)

	status, _ = c.do(http.MethodPost, "/api/auth/register", map[string]string{"username": "carol", "password": "password123"})
	assert.Equal(t, http.StatusConflict, status)

	status, env = c.do(http.MethodPost, "/api/auth/register", map[string]string{"username": "bad name!", "password": "password123"})
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Contains(t, string(env.Error), "username")

	status, _ = c.do(http.MethodPost, "/api/auth/login", map[string]string{"username": "carol", "password": "wrong-password"})
	assert.Equal(t, http.StatusUnauthorized, status)

	status, env = c.do(http.MethodPost, "/api/auth/refresh-token", map[string]string{"refresh": pair.Refresh})
	require.Equal(t, http.StatusOK, status)
	rotated := decode[tokens](t, env.Data)
	assert.NotEmpty(t, rotated.Access)

	// The previous refresh token was replaced.
	status, _ = c.do(http.MethodPost, "/api/auth/refresh-token", map[string]string{"refresh": pair.Refresh})
	assert.Equal(t, http.StatusUnauthorized, status)

	c.token = rotated.Access
	status, _ = c.do(http.MethodPost, "/api/auth/logout", nil)
	assert.Equal(t, http.StatusNoContent, status)

	status, _ = c.do(http.MethodPost, "/api/auth/refresh-token", map[string]string{"refresh": rotated.Refresh})
	assert.Equal(t, http.StatusUnauthorized, status)

	status, env = c.do(http.MethodPost, "/api/auth/login", map[string]string{"username": "carol", "password": "password123"})
	require.Equal(t, http.StatusOK, status)
	assert.True(t, env.Success)
}

func TestOperationalEndpoints(t *testing.T) {
	c := newClient(t)

	status, _ := c.do(http.MethodGet, "/health", nil)
	assert.Equal(t, http.StatusOK, status)

	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	rec := httptest.NewRecorder()
	c.engine.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "lms_statistics_query_duration_seconds")
}
