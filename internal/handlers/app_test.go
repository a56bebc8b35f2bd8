package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"unitalent/talent-center/internal/config"
	"unitalent/talent-center/internal/metrics"
	"unitalent/talent-center/internal/models"
	"unitalent/talent-center/internal/repositories"
	"unitalent/talent-center/internal/services"
	"unitalent/talent-center/internal/testdb"
)

const (
	testAdminKey    = "test-admin-key"
	testMaxFileSize = 1 << 20
)

type stubProvider struct {
	mu       sync.Mutex
	response string
	err      error
	calls    int
}

func (s *stubProvider) Name() string { return "stub" }

func (s *stubProvider) Complete(_ context.Context, _ string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls++
	if s.err != nil {
		return "", s.err
	}
	return s.response, nil
}

func (s *stubProvider) set(response string, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.response, s.err = response, err
}

func (s *stubProvider) callCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls
}

type recordingQueue struct {
	mu  sync.Mutex
	ids []uuid.UUID
}

func (q *recordingQueue) Enqueue(id uuid.UUID) {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.ids = append(q.ids, id)
}

func (q *recordingQueue) enqueued() []uuid.UUID {
	q.mu.Lock()
	defer q.mu.Unlock()
	return append([]uuid.UUID(nil), q.ids...)
}

type testServer struct {
	app      *fiber.App
	db       *gorm.DB
	provider *stubProvider
	queue    *recordingQueue
	students repositories.StudentRepository
	registry *prometheus.Registry
}

type serverOption func(*Deps)

func withAdminKey(key string) serverOption {
	return func(d *Deps) { d.AdminAPIKey = key }
}

func newTestServer(t *testing.T, opts ...serverOption) *testServer {
	t.Helper()

	db := testdb.New(t)
	provider := &stubProvider{response: `{"talentScore": 72, "reasoning": "Strong project record."}`}
	queue := &recordingQueue{}
	registry := prometheus.NewRegistry()
	m := metrics.MustNew(registry)
	log := zap.NewNop()

	students := repositories.NewStudentRepository(db)
	portfolio := repositories.NewPortfolioRepository(db)

	flow := services.NewTalentScoreFlow(provider, services.FlowOptions{Clamp: true}, log, m)
	scorer := services.NewTalentScoreService(flow, students, config.ScoringConfig{
		FallbackMin:      config.DefaultFallbackMin,
		FallbackMax:      config.DefaultFallbackMax,
		MaxCertTextRunes: 1500,
	}, log, m)
	storage := services.NewStorageService(t.TempDir(), testMaxFileSize)

	deps := Deps{
		Score:         NewScoreHandler(flow, scorer),
		Students:      NewStudentHandler(students, scorer, storage, queue, log),
		Portfolio:     NewPortfolioHandler(students, portfolio, scorer, storage, services.NewPDFParserService(), queue, log),
		Search:        NewSearchHandler(services.NewSearchService(students, nil, nil)),
		Organizations: NewOrganizationHandler(repositories.NewOrganizationRepository(db)),
		News:          NewNewsHandler(repositories.NewNewsRepository(db)),
		StudentOrgs:   NewStudentOrganizationHandler(repositories.NewStudentOrganizationRepository(db)),
		AdminAPIKey:   testAdminKey,
		Gatherer:      registry,
		BodyLimit:     BodyLimitFor(testMaxFileSize),
	}
	for _, opt := range opts {
		opt(&deps)
	}

	return &testServer{
		app:      NewApp(deps),
		db:       db,
		provider: provider,
		queue:    queue,
		students: students,
		registry: registry,
	}
}

// do sends a JSON request and returns the status and raw body.
func (s *testServer) do(t *testing.T, method, path string, body any, headers ...string) (int, []byte) {
	t.Helper()

	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(payload)
	}

	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
	}
	for i := 0; i+1 < len(headers); i += 2 {
		req.Header.Set(headers[i], headers[i+1])
	}

	return s.send(t, req)
}

func (s *testServer) send(t *testing.T, req *http.Request) (int, []byte) {
	t.Helper()

	resp, err := s.app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp.StatusCode, data
}

func (s *testServer) register(t *testing.T, email, firstName string) models.StudentProfile {
	t.Helper()

	status, body := s.do(t, http.MethodPost, "/api/v1/students", map[string]any{
		"email":      email,
		"first_name": firstName,
		"faculty":    "Engineering",
		"skills":     []string{"Go", "SQL"},
	})
	require.Equal(t, http.StatusCreated, status, string(body))

	var resp models.StudentResponse
	require.NoError(t, json.Unmarshal(body, &resp))
	require.NotNil(t, resp.Student)
	return *resp.Student
}

func decode[T any](t *testing.T, body []byte) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(body, &v), string(body))
	return v
}

func TestHealth(t *testing.T) {
	srv := newTestServer(t)

	status, body := srv.do(t, http.MethodGet, "/api/v1/health", nil)

	assert.Equal(t, http.StatusOK, status)
	assert.Contains(t, string(body), `"healthy"`)
}

func TestMetricsEndpoint(t *testing.T) {
	srv := newTestServer(t)
	srv.register(t, "metrics@example.com", "Aysel")

	status, body := srv.do(t, http.MethodGet, "/metrics", nil)

	assert.Equal(t, http.StatusOK, status)
	assert.Contains(t, string(body), "talent_center_talent_score_runs_total")
}

func TestUnknownRouteUsesErrorHandler(t *testing.T) {
	srv := newTestServer(t)

	status, body := srv.do(t, http.MethodGet, "/api/v1/nope", nil)

	assert.Equal(t, http.StatusNotFound, status)
	resp := decode[map[string]any](t, body)
	assert.EqualValues(t, http.StatusNotFound, resp["code"])
}

func TestAdminRoutesRequireKey(t *testing.T) {
	srv := newTestServer(t)
	org := map[string]any{"name": "ADA Robotics"}

	status, _ := srv.do(t, http.MethodPost, "/api/v1/admin/organizations", org)
	assert.Equal(t, http.StatusUnauthorized, status)

	status, _ = srv.do(t, http.MethodPost, "/api/v1/admin/organizations", org,
		fiber.HeaderAuthorization, "Bearer wrong-key")
	assert.Equal(t, http.StatusUnauthorized, status)

	status, _ = srv.do(t, http.MethodPost, "/api/v1/admin/organizations", org,
		fiber.HeaderAuthorization, "Bearer "+testAdminKey)
	assert.Equal(t, http.StatusCreated, status)
}

func TestAdminRoutesDisabledWithoutKey(t *testing.T) {
	srv := newTestServer(t, withAdminKey(""))

	status, _ := srv.do(t, http.MethodPost, "/api/v1/admin/news", map[string]any{"title": "Hackathon"},
		fiber.HeaderAuthorization, "Bearer anything")

	assert.Equal(t, http.StatusServiceUnavailable, status)
}
