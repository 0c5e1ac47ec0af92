// test/e2e/e2e_test.go
package e2e

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"content-brainstorm/internal/analysis"
	"content-brainstorm/internal/common/config"
	"content-brainstorm/internal/common/logger"
	"content-brainstorm/internal/models"
	"content-brainstorm/internal/openai"
	"content-brainstorm/internal/server"
	"content-brainstorm/internal/storage"
)

// The e2e suite wires the real pipeline end to end: HTTP handlers, the
// orchestrator, the OpenAI client against a stub upstream, and the in-memory
// session store. Only the AI service itself is faked.

const stubAnalysisPayload = `{"status":"SUCCESS","summary":"A review management article","channels":{` +
	`"INSTAGRAM":[{"idea":"reel walkthrough","rationale":"visual","pros":["reach"],"cons":["effort"]}],` +
	`"X":[{"idea":"tip thread","rationale":"snackable","pros":["shareable"],"cons":[]}],` +
	`"LINKEDIN":[{"idea":"case study post","rationale":"professional","pros":["authority"],"cons":[]}]}}`

func stubUpstream(t *testing.T, payload string) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/responses", r.URL.Path)

		envelope := map[string]interface{}{
			"output": []interface{}{
				map[string]interface{}{
					"content": []interface{}{
						map[string]interface{}{"type": "output_text", "text": payload},
					},
				},
			},
		}
		w.WriteHeader(http.StatusOK)
		json.NewEncoder(w).Encode(envelope)
	}))
}

func newPipeline(t *testing.T, upstreamURL string) *server.Server {
	t.Helper()

	cfg := config.OpenAIConfig{
		BaseURL:           upstreamURL,
		APIKey:            "e2e-key",
		Model:             "gpt-4o-mini",
		Temperature:       0.7,
		RetryMaxAttempts:  3,
		RetryInitialDelay: 1,
		RetryMaxBackoff:   5,
		SchemaName:        "content_ideas_schema",
		IdeaMinItems:      1,
		IdeaMaxItems:      2,
		BusinessContext:   "review management startup",
		TargetAudience:    "small business owners",
	}
	limits := config.AnalysisConfig{
		MaxContentLength:       50000,
		TruncatedContentLength: 30000,
		TruncationThreshold:    10000,
	}

	log := logger.NewTestLogger(t)
	store := storage.NewMemoryStore(50, log)
	llm := openai.NewClient(cfg, limits.TruncationThreshold, nil, log)
	svc := analysis.NewService(cfg, limits, llm, store, log)
	return server.New(svc, nil, "content-brainstorm", "test", log)
}

func TestAnalyzeAndRetrieveSession(t *testing.T) {
	upstream := stubUpstream(t, stubAnalysisPayload)
	defer upstream.Close()

	api := httptest.NewServer(newPipeline(t, upstream.URL).Routes())
	defer api.Close()

	// Analyze with the default channel set.
	body := `{"title":"Post","fullText":"an article about collecting reviews","url":"https://example.com/post"}`
	resp, err := http.Post(api.URL+"/api/analysis/analyze", "application/json", strings.NewReader(body))
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var analyzed models.AnalysisResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&analyzed))
	assert.Equal(t, models.StatusSuccess, analyzed.Status)
	assert.NotEmpty(t, analyzed.SessionID)
	assert.Equal(t, "A review management article", analyzed.Summary)
	assert.Len(t, analyzed.Channels, 3)

	// The stored session is retrievable through the API.
	getResp, err := http.Get(api.URL + "/api/analysis/sessions/" + analyzed.SessionID)
	require.NoError(t, err)
	defer getResp.Body.Close()
	require.Equal(t, http.StatusOK, getResp.StatusCode)

	var session models.AnalysisSession
	require.NoError(t, json.NewDecoder(getResp.Body).Decode(&session))
	assert.Equal(t, analyzed.SessionID, session.SessionID)
	assert.Equal(t, "an article about collecting reviews", session.OriginalContent)
	assert.Equal(t, 3, session.IdeaCount())

	// And shows up in the listing and stats.
	listResp, err := http.Get(api.URL + "/api/analysis/sessions")
	require.NoError(t, err)
	defer listResp.Body.Close()

	var listing struct {
		Count int `json:"count"`
	}
	require.NoError(t, json.NewDecoder(listResp.Body).Decode(&listing))
	assert.Equal(t, 1, listing.Count)

	statsResp, err := http.Get(api.URL + "/api/monitoring/stats")
	require.NoError(t, err)
	defer statsResp.Body.Close()

	var stats map[string]interface{}
	require.NoError(t, json.NewDecoder(statsResp.Body).Decode(&stats))
	assert.Equal(t, "memory", stats["implementation"])
}

func TestAnalyzeFailurePathStaysStructured(t *testing.T) {
	upstream := stubUpstream(t, "this is not JSON at all")
	defer upstream.Close()

	api := httptest.NewServer(newPipeline(t, upstream.URL).Routes())
	defer api.Close()

	resp, err := http.Post(api.URL+"/api/analysis/analyze", "application/json",
		strings.NewReader(`{"fullText":"some content"}`))
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var analyzed models.AnalysisResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&analyzed))
	assert.Equal(t, models.StatusFailure, analyzed.Status)
	assert.Contains(t, analyzed.Summary, "Analysis error: ")
	assert.Empty(t, analyzed.Channels)
}

func TestSessionNotFoundReturns404(t *testing.T) {
	upstream := stubUpstream(t, stubAnalysisPayload)
	defer upstream.Close()

	api := httptest.NewServer(newPipeline(t, upstream.URL).Routes())
	defer api.Close()

	resp, err := http.Get(api.URL + "/api/analysis/sessions/does-not-exist")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestHealthEndpoint(t *testing.T) {
	upstream := stubUpstream(t, stubAnalysisPayload)
	defer upstream.Close()

	api := httptest.NewServer(newPipeline(t, upstream.URL).Routes())
	defer api.Close()

	resp, err := http.Get(api.URL + "/api/monitoring/health")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	var health map[string]interface{}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&health))
	assert.Equal(t, "UP", health["status"])
}
