package http

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/immxrtalbeast/bolao/internal/auth"
	"github.com/immxrtalbeast/bolao/internal/metrics"
	"github.com/immxrtalbeast/bolao/internal/repository"
	"github.com/immxrtalbeast/bolao/internal/service"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/require"
)

type testServer struct {
	router *gin.Engine
	tokens *auth.TokenManager
	users  *service.UserService
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	gin.SetMode(gin.TestMode)

	log := slog.New(slog.NewTextHandler(io.Discard, nil))

	userRepo := repository.NewInMemoryUserRepository()
	poolRepo := repository.NewInMemoryPoolRepository(userRepo, 4)

	tokens, err := auth.NewTokenManager("test-secret", time.Hour)
	require.NoError(t, err)

	reg := prometheus.NewRegistry()
	recorder := metrics.NewCollector(reg)

	users := service.NewUserService(userRepo, log)
	pools := service.NewPoolService(poolRepo, log, recorder, service.PoolOptions{})

	router := SetupRouter(
		NewPoolController(pools, log),
		NewUserController(users, tokens, log),
		RouterOptions{
			AllowOrigins:   []string{"http://localhost:3000"},
			Tokens:         tokens,
			Log:            log,
			Metrics:        recorder,
			MetricsPath:    "/metrics",
			MetricsHandler: metrics.Handler(reg),
		},
	)

	return &testServer{router: router, tokens: tokens, users: users}
}

// signUp registers a user directly through the service and returns a token
// for it.
func (s *testServer) signUp(t *testing.T, name, avatarURL string) (uuid.UUID, string) {
	t.Helper()

	user, err := s.users.CreateUser(context.Background(), name, "", avatarURL)
	require.NoError(t, err)

	token, err := s.tokens.Issue(user)
	require.NoError(t, err)

	return user.ID, token
}

func (s *testServer) do(t *testing.T, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var reader io.Reader
	switch b := body.(type) {
	case nil:
	case string:
		reader = bytes.NewBufferString(b)
	default:
		raw, err := json.Marshal(b)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}

	req := httptest.NewRequest(method, path, reader)
	if reader != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	return w
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()

	var v T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &v), w.Body.String())
	return v
}

type messageBody struct {
	Message string            `json:"message"`
	Issues  map[string]string `json:"issues"`
}

func (s *testServer) createPool(t *testing.T, title, token string) string {
	t.Helper()

	w := s.do(t, http.MethodPost, "/pools", token, map[string]string{"title": title})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	return decode[struct {
		Code string `json:"code"`
	}](t, w).Code
}

func (s *testServer) joinPool(t *testing.T, code, token string) *httptest.ResponseRecorder {
	t.Helper()
	return s.do(t, http.MethodPost, "/pools/join", token, map[string]string{"code": code})
}
