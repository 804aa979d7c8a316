package web_test

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

	"github.com/ThreeDotsLabs/watermill"
	"github.com/gofiber/fiber/v3"
	"github.com/medgate/medgate/pkg/channels/gochannel"
	checkpointmemory "github.com/medgate/medgate/pkg/checkpoint/memory"
	"github.com/medgate/medgate/pkg/dispatch"
	"github.com/medgate/medgate/pkg/engine"
	"github.com/medgate/medgate/pkg/eventbus"
	"github.com/medgate/medgate/pkg/models"
	"github.com/medgate/medgate/pkg/persistence"
	persistencefile "github.com/medgate/medgate/pkg/persistence/file"
	"github.com/medgate/medgate/pkg/protocol"
	"github.com/medgate/medgate/pkg/registry"
	"github.com/medgate/medgate/pkg/routing"
	"github.com/medgate/medgate/pkg/synthesis"
	"github.com/medgate/medgate/pkg/web"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubFetcher struct{}

func (f *stubFetcher) Fetch(_ context.Context, url string) (*models.ContentSnapshot, error) {
	return &models.ContentSnapshot{URL: url, Title: "Test page", WordCount: 400}, nil
}

type stubTask struct {
	id     string
	score  float64
	passed bool
}

func (s *stubTask) ID() string { return s.id }

func (s *stubTask) Evaluate(_ context.Context, _ *models.ContentSnapshot) (*models.TaskResult, error) {
	return &models.TaskResult{
		TaskID:          s.id,
		Passed:          s.passed,
		Score:           s.score,
		PassedChecks:    []string{},
		Issues:          []string{},
		Recommendations: []string{},
	}, nil
}

type stubFactory struct {
	task protocol.Task
}

func (f *stubFactory) ID() string             { return f.task.ID() }
func (f *stubFactory) Schema() map[string]any { return nil }

func (f *stubFactory) Create(_ map[string]any) (protocol.Task, error) {
	return f.task, nil
}

type testEnv struct {
	app         *fiber.App
	persistence persistence.Persistence
}

func setupTestApp(t *testing.T) testEnv {
	t.Helper()

	logger := slog.Default()
	store := persistencefile.NewPersistence(t.TempDir())
	checkpoints := checkpointmemory.NewStore(logger)

	reg := registry.NewRegistry(logger)
	reg.RegisterTask(&stubFactory{task: &stubTask{id: "metadata", score: 0.9, passed: true}})
	reg.RegisterTask(&stubFactory{task: &stubTask{id: "editorial", score: 1.0, passed: true}})

	router, err := routing.NewRouter([]routing.Rule{
		{Label: "all", Pattern: "", Tasks: []string{"metadata", "editorial"}},
	})
	require.NoError(t, err)

	pub, sub, err := gochannel.CreateTestChannel(watermill.NewSlogLogger(logger))
	require.NoError(t, err)

	bus := eventbus.NewWatermillEventBus(pub, sub)

	eng := engine.NewEngine(engine.Config{
		Logger:      logger,
		Persistence: store,
		Checkpoints: checkpoints,
		Registry:    reg,
		Router:      router,
		Dispatcher:  dispatch.NewDispatcher(5 * time.Second),
		Fetcher:     &stubFetcher{},
		Synthesizer: synthesis.NewSynthesizer(),
		EventBus:    bus,
		RunTimeout:  10 * time.Second,
	})

	broker := web.NewStreamBroker(logger)

	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	require.NoError(t, broker.Attach(ctx, bus))

	handlers := web.NewAPIHandlers(logger, eng, store, checkpoints, reg, broker)

	app := fiber.New()
	handlers.Register(app)

	return testEnv{app: app, persistence: store}
}

func postJSON(t *testing.T, app *fiber.App, path string, body any) *http.Response {
	t.Helper()

	payload, err := json.Marshal(body)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")

	resp, err := app.Test(req)
	require.NoError(t, err)

	return resp
}

func decodeRun(t *testing.T, resp *http.Response) models.Run {
	t.Helper()

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	var run models.Run
	require.NoError(t, json.Unmarshal(body, &run))

	return run
}

func waitForStatus(t *testing.T, store persistence.Persistence, runID string, status models.RunStatus) {
	t.Helper()

	require.Eventually(t, func() bool {
		run, err := store.RunByID(context.Background(), runID)

		return err == nil && run.Status == status
	}, 5*time.Second, 10*time.Millisecond)
}

func TestCreateRun(t *testing.T) {
	t.Parallel()

	env := setupTestApp(t)

	resp := postJSON(t, env.app, "/runs", web.CreateRunRequest{
		URL:         "https://example.org/healthy-lifestyle/water",
		RequestedBy: "tester",
	})

	require.Equal(t, http.StatusCreated, resp.StatusCode)

	run := decodeRun(t, resp)
	assert.NotEmpty(t, run.ID)
	assert.Equal(t, models.RunStatusPending, run.Status)
	assert.Equal(t, "tester", run.RequestedBy)

	waitForStatus(t, env.persistence, run.ID, models.RunStatusAwaitingDecision)
}

func TestCreateRun_Validation(t *testing.T) {
	t.Parallel()

	env := setupTestApp(t)

	tests := []struct {
		name string
		body any
	}{
		{name: "missing url", body: web.CreateRunRequest{RequestedBy: "tester"}},
		{name: "malformed url", body: web.CreateRunRequest{URL: "not a url"}},
		{name: "not json", body: "plain text"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			resp := postJSON(t, env.app, "/runs", tt.body)

			assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
		})
	}
}

func TestGetRun(t *testing.T) {
	t.Parallel()

	env := setupTestApp(t)

	created := decodeRun(t, postJSON(t, env.app, "/runs", web.CreateRunRequest{
		URL: "https://example.org/page",
	}))

	req := httptest.NewRequest(http.MethodGet, "/runs/"+created.ID, nil)
	resp, err := env.app.Test(req)
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	run := decodeRun(t, resp)
	assert.Equal(t, created.ID, run.ID)
}

func TestGetRun_NotFound(t *testing.T) {
	t.Parallel()

	env := setupTestApp(t)

	req := httptest.NewRequest(http.MethodGet, "/runs/does-not-exist", nil)
	resp, err := env.app.Test(req)
	require.NoError(t, err)

	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	assert.Contains(t, resp.Header.Get("Content-Type"), "json")
}

func TestListRuns(t *testing.T) {
	t.Parallel()

	env := setupTestApp(t)

	for range 3 {
		resp := postJSON(t, env.app, "/runs", web.CreateRunRequest{URL: "https://example.org/page"})
		require.Equal(t, http.StatusCreated, resp.StatusCode)
	}

	req := httptest.NewRequest(http.MethodGet, "/runs?limit=2", nil)
	resp, err := env.app.Test(req)
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	var listing struct {
		Runs  []models.Run `json:"runs"`
		Count int          `json:"count"`
	}
	require.NoError(t, json.Unmarshal(body, &listing))
	assert.Equal(t, 2, listing.Count)
	assert.Len(t, listing.Runs, 2)
}

func TestSubmitDecision(t *testing.T) {
	t.Parallel()

	env := setupTestApp(t)

	created := decodeRun(t, postJSON(t, env.app, "/runs", web.CreateRunRequest{
		URL: "https://example.org/page",
	}))

	waitForStatus(t, env.persistence, created.ID, models.RunStatusAwaitingDecision)

	resp := postJSON(t, env.app, "/runs/"+created.ID+"/decision", web.DecisionRequest{
		Decision:   "approve",
		Feedback:   "publish it",
		ReviewedBy: "reviewer-1",
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	run := decodeRun(t, resp)
	assert.Equal(t, models.RunStatusApproved, run.Status)
	assert.Equal(t, "publish it", run.Feedback)

	// A second decision must be refused.
	resp = postJSON(t, env.app, "/runs/"+created.ID+"/decision", web.DecisionRequest{
		Decision: "reject",
	})
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
}

func TestSubmitDecision_Preconditions(t *testing.T) {
	t.Parallel()

	env := setupTestApp(t)

	resp := postJSON(t, env.app, "/runs/unknown/decision", web.DecisionRequest{Decision: "approve"})
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	resp = postJSON(t, env.app, "/runs/unknown/decision", web.DecisionRequest{Decision: "maybe"})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	pending := models.NewRun("run-pending", "https://example.org/page", "tester")
	require.NoError(t, env.persistence.SaveRun(context.Background(), pending))

	resp = postJSON(t, env.app, "/runs/run-pending/decision", web.DecisionRequest{Decision: "approve"})
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
}

func TestStreamRun_TerminalRunGetsSnapshotOnly(t *testing.T) {
	t.Parallel()

	env := setupTestApp(t)

	run := models.NewRun("run-done", "https://example.org/page", "tester")
	run.Status = models.RunStatusApproved
	require.NoError(t, env.persistence.SaveRun(context.Background(), run))

	req := httptest.NewRequest(http.MethodGet, "/runs/run-done/stream", nil)
	resp, err := env.app.Test(req)
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, resp.Header.Get("Content-Type"), "text/event-stream")

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	assert.Contains(t, string(body), "event: run.snapshot")
	assert.Contains(t, string(body), `"status":"approved"`)
}

func TestHealthCheck(t *testing.T) {
	t.Parallel()

	env := setupTestApp(t)

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	resp, err := env.app.Test(req)
	require.NoError(t, err)

	assert.Equal(t, http.StatusOK, resp.StatusCode)
}
