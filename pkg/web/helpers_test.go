package web_test

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"net/http/httptest"
	"testing"

	"github.com/dukex/trainflow/pkg/catalog"
	"github.com/dukex/trainflow/pkg/persistence/file"
	"github.com/dukex/trainflow/pkg/registry"
	"github.com/dukex/trainflow/pkg/services"
	"github.com/dukex/trainflow/pkg/sessions"
	"github.com/dukex/trainflow/pkg/web"
	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v3"
	"github.com/stretchr/testify/require"
)

type testAPI struct {
	app       *fiber.App
	workflows *services.Workflow
}

func setupTestApp(t *testing.T) *testAPI {
	t.Helper()

	logger := slog.New(slog.DiscardHandler)

	reg := registry.NewRegistry(logger, catalog.Default())
	reg.RegisterDefaultNodes()

	store, err := sessions.NewMemoryStore(logger)
	require.NoError(t, err)

	t.Cleanup(func() {
		require.NoError(t, store.Close())
	})

	persistence := file.NewPersistence(t.TempDir())

	workflowService := services.NewWorkflow(persistence, reg, services.WithLogger(logger))
	editorService := services.NewEditor(store, workflowService, reg, services.WithLogger(logger))
	instanceService := services.NewInstance(persistence, workflowService, reg.Catalog(), services.WithLogger(logger))

	handlers := web.NewAPIHandlers(
		workflowService,
		editorService,
		instanceService,
		validator.New(validator.WithRequiredStructEnabled()),
		reg,
	)

	app := fiber.New()
	handlers.Register(app)

	return &testAPI{app: app, workflows: workflowService}
}

// do sends a request with an optional JSON body and returns the status and body.
func (a *testAPI) do(t *testing.T, method, path string, body any) (int, []byte) {
	t.Helper()

	var reader io.Reader

	if body != nil {
		payload, err := json.Marshal(body)
		require.NoError(t, err)

		reader = bytes.NewReader(payload)
	}

	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := a.app.Test(req)
	require.NoError(t, err)

	defer func() {
		err := resp.Body.Close()
		if err != nil {
			t.Logf("Failed to close response body: %v", err)
		}
	}()

	respBody, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	return resp.StatusCode, respBody
}

// doJSON sends a request, checks the status and decodes the response into out.
func (a *testAPI) doJSON(t *testing.T, method, path string, body any, wantStatus int, out any) {
	t.Helper()

	status, respBody := a.do(t, method, path, body)
	require.Equal(t, wantStatus, status, string(respBody))

	if out != nil {
		require.NoError(t, json.Unmarshal(respBody, out))
	}
}

type problem struct {
	Type      string         `json:"type"`
	Status    int            `json:"status"`
	Detail    string         `json:"detail"`
	Instance  string         `json:"instance"`
	Missing   []string       `json:"missing"`
	Readiness map[string]any `json:"readiness"`
}

func (a *testAPI) problem(t *testing.T, method, path string, body any, wantStatus int) problem {
	t.Helper()

	var p problem

	a.doJSON(t, method, path, body, wantStatus, &p)

	return p
}
