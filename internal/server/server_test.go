package server

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/Rachit-Gandhi/ProjectNavigator/api"
	"github.com/Rachit-Gandhi/ProjectNavigator/internal/ingest"
	"github.com/Rachit-Gandhi/ProjectNavigator/internal/rag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type echoModel struct{}

func (echoModel) Complete(_ context.Context, _, user string) (string, error) {
	return "echo: " + user, nil
}

type staticRetriever struct {
	docs []rag.Document
}

func (r staticRetriever) Retrieve(context.Context, string, string, []string) ([]rag.Document, error) {
	return r.docs, nil
}

func testPipeline(t *testing.T) *rag.Pipeline {
	t.Helper()
	p, err := rag.New(rag.Config{
		Model:     echoModel{},
		Retriever: staticRetriever{docs: []rag.Document{{Source: "a.py", Content: "body"}}},
	})
	require.NoError(t, err)
	return p
}

// fixture builds a data root with alpha (a.py, b.txt) and beta projects
// plus a rule config, and returns a ready server.
func fixture(t *testing.T, pipeline *rag.Pipeline) (*Server, string) {
	t.Helper()
	root := t.TempDir()

	for _, name := range []string{"alpha", "beta"} {
		dir := filepath.Join(root, name)
		require.NoError(t, os.Mkdir(dir, 0o755))
		require.NoError(t, os.WriteFile(filepath.Join(dir, ingest.DescriptionFilename), []byte(name+" project"), 0o644))
	}
	require.NoError(t, os.WriteFile(filepath.Join(root, "alpha", "a.py"), []byte("print()"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(root, "alpha", "b.txt"), []byte("notes"), 0o644))

	rulesPath := filepath.Join(root, "rules.yaml")
	require.NoError(t, os.WriteFile(rulesPath, []byte("patterns:\n  - match: \"*.py\"\n    tag: code\n"), 0o644))

	return New(Config{
		RulesPath:       rulesPath,
		DefaultDataPath: root,
		Pipeline:        pipeline,
	}), root
}

func doJSON(t *testing.T, s *Server, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	payload, err := json.Marshal(body)
	require.NoError(t, err)
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(payload))
	rec := httptest.NewRecorder()
	s.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	return out
}

func TestIngest_PreviewsPlans(t *testing.T) {
	s, _ := fixture(t, nil)

	rec := doJSON(t, s, "/v1/ingest", api.IngestRequest{})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	resp := decode[api.IngestResponse](t, rec)
	require.Len(t, resp.Projects, 2)

	alpha := resp.Projects[0]
	assert.Equal(t, "alpha", alpha.ProjectID)
	assert.Equal(t, "alpha project", alpha.Description)
	assert.Equal(t, 2, alpha.FileCount)
	for _, f := range alpha.Files {
		switch f.Path {
		case "a.py":
			assert.Equal(t, []string{"code"}, f.Tags)
		case "b.txt":
			assert.Empty(t, f.Tags)
		default:
			t.Fatalf("unexpected file %s", f.Path)
		}
	}

	// Plans land in the registry.
	assert.NotNil(t, s.Registry().Get("beta"))
}

func TestIngest_Subset(t *testing.T) {
	s, _ := fixture(t, nil)

	rec := doJSON(t, s, "/v1/ingest", api.IngestRequest{Projects: []string{"alpha"}})
	require.Equal(t, http.StatusOK, rec.Code)

	resp := decode[api.IngestResponse](t, rec)
	require.Len(t, resp.Projects, 1)
	assert.Equal(t, "alpha", resp.Projects[0].ProjectID)
}

func TestIngest_MissingDataRoot(t *testing.T) {
	s, root := fixture(t, nil)

	rec := doJSON(t, s, "/v1/ingest", api.IngestRequest{DataPath: filepath.Join(root, "absent")})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestIngest_NoProjectsIs404(t *testing.T) {
	s, _ := fixture(t, nil)

	rec := doJSON(t, s, "/v1/ingest", api.IngestRequest{Projects: []string{"gamma"}})
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestIngest_EnsureDescriptions(t *testing.T) {
	s, root := fixture(t, nil)
	require.NoError(t, os.Mkdir(filepath.Join(root, "gamma"), 0o755))

	// Without text for gamma the batch fails.
	rec := doJSON(t, s, "/v1/ingest", api.IngestRequest{
		Projects:           []string{"gamma"},
		EnsureDescriptions: true,
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = doJSON(t, s, "/v1/ingest", api.IngestRequest{
		Projects:           []string{"gamma"},
		EnsureDescriptions: true,
		Descriptions:       map[string]string{"gamma": "gamma project"},
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	resp := decode[api.IngestResponse](t, rec)
	require.Len(t, resp.Projects, 1)
	assert.Equal(t, "gamma project", resp.Projects[0].Description)
}

func TestLockAndChat(t *testing.T) {
	s, _ := fixture(t, testPipeline(t))

	rec := doJSON(t, s, "/v1/session/lock", api.LockRequest{SessionID: "s1", ProjectID: "alpha"})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "alpha", decode[api.ChatResponse](t, rec).ProjectID)

	rec = doJSON(t, s, "/v1/chat", api.ChatRequest{SessionID: "s1", Message: "what is in #code here?"})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	resp := decode[api.ChatResponse](t, rec)
	assert.Equal(t, "alpha", resp.ProjectID)
	assert.Equal(t, []string{"code"}, resp.Filters)
	assert.Contains(t, resp.Response, "echo:")
}

func TestChat_UnlockedSessionIs409(t *testing.T) {
	s, _ := fixture(t, testPipeline(t))
	rec := doJSON(t, s, "/v1/chat", api.ChatRequest{SessionID: "s1", Message: "hello"})
	assert.Equal(t, http.StatusConflict, rec.Code)
}

func TestChat_EmptyMessages(t *testing.T) {
	s, _ := fixture(t, testPipeline(t))

	rec := doJSON(t, s, "/v1/chat", api.ChatRequest{SessionID: "s1", Message: "   "})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = doJSON(t, s, "/v1/chat", api.ChatRequest{SessionID: "s1", Message: "#code #docs"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestChat_SlashCommands(t *testing.T) {
	s, _ := fixture(t, testPipeline(t))

	rec := doJSON(t, s, "/v1/chat", api.ChatRequest{SessionID: "s1", Message: "/clear"})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Session cleared.", decode[api.ChatResponse](t, rec).Response)

	rec = doJSON(t, s, "/v1/chat", api.ChatRequest{SessionID: "s1", Message: "/dance"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestChat_AutoLock(t *testing.T) {
	s, _ := fixture(t, testPipeline(t))

	// Registry empty: nothing to route to.
	rec := doJSON(t, s, "/v1/chat", api.ChatRequest{SessionID: "s1", Message: "hello", AutoLock: true})
	assert.Equal(t, http.StatusNotFound, rec.Code)

	// Fill the registry; the default router has no strategy.
	require.Equal(t, http.StatusOK, doJSON(t, s, "/v1/ingest", api.IngestRequest{}).Code)
	rec = doJSON(t, s, "/v1/chat", api.ChatRequest{SessionID: "s1", Message: "hello", AutoLock: true})
	assert.Equal(t, http.StatusNotImplemented, rec.Code)
}

func TestChat_NoPipelineIs501(t *testing.T) {
	s, _ := fixture(t, nil)
	rec := doJSON(t, s, "/v1/chat", api.ChatRequest{SessionID: "s1", Message: "hello", ProjectID: "alpha"})
	assert.Equal(t, http.StatusNotImplemented, rec.Code)
}
