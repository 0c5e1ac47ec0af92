package analysis

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"content-brainstorm/internal/common/config"
	apperrors "content-brainstorm/internal/common/errors"
	"content-brainstorm/internal/common/logger"
	"content-brainstorm/internal/models"
	"content-brainstorm/internal/openai"
	"content-brainstorm/internal/storage"
)

// mockLLM scripts Analyze outcomes and records every call.
type mockLLM struct {
	results      []openai.Result
	calls        int
	inputs       []string
	instructions []string
}

func (m *mockLLM) Analyze(_ context.Context, instructions, input string, _ map[string]interface{}) openai.Result {
	m.calls++
	m.inputs = append(m.inputs, input)
	m.instructions = append(m.instructions, instructions)

	idx := m.calls - 1
	if idx >= len(m.results) {
		idx = len(m.results) - 1
	}
	return m.results[idx]
}

func testOpenAIConfig() config.OpenAIConfig {
	return config.OpenAIConfig{
		SchemaName:      "content_ideas_schema",
		IdeaMinItems:    1,
		IdeaMaxItems:    2,
		BusinessContext: "review management startup",
		TargetAudience:  "small business owners",
	}
}

func testLimits() config.AnalysisConfig {
	return config.AnalysisConfig{
		MaxContentLength:       100,
		TruncatedContentLength: 50,
		TruncationThreshold:    10,
	}
}

func newTestService(llm *mockLLM) (*Service, storage.SessionStore) {
	store := storage.NewMemoryStore(10, logger.NewNoOpLogger())
	svc := NewService(testOpenAIConfig(), testLimits(), llm, store, logger.NewNoOpLogger())
	return svc, store
}

const validPayload = `{"status":"SUCCESS","summary":"Great content","channels":{` +
	`"INSTAGRAM":[{"idea":"reel walkthrough","rationale":"visual","pros":["high reach"],"cons":["effort"]}],` +
	`"X":[{"idea":"thread of tips","rationale":"snackable","pros":["shareable"],"cons":[]}]}}`

func successResult(content string) openai.Result {
	return openai.Result{Success: true, Content: content}
}

func TestAnalyzeContentEmptyInput(t *testing.T) {
	llm := &mockLLM{}
	svc, _ := newTestService(llm)

	resp := svc.AnalyzeContent(context.Background(), &models.AnalysisRequest{FullText: "   "})

	assert.Equal(t, models.StatusFailure, resp.Status)
	assert.Equal(t, msgNoContent, resp.Summary)
	assert.Empty(t, resp.SessionID)
	assert.NotNil(t, resp.Channels)
	assert.Zero(t, llm.calls, "AI service must not be called for empty input")
}

func TestAnalyzeContentSuccess(t *testing.T) {
	llm := &mockLLM{results: []openai.Result{successResult(validPayload)}}
	svc, _ := newTestService(llm)

	req := &models.AnalysisRequest{
		Title:    "Post",
		FullText: "a useful article about reviews",
		URL:      "https://example.com",
		Channels: []string{"instagram", "FACEBOOK", "x"},
	}
	resp := svc.AnalyzeContent(context.Background(), req)

	assert.Equal(t, models.StatusSuccess, resp.Status)
	assert.NotEmpty(t, resp.SessionID)
	assert.Equal(t, "Great content", resp.Summary)
	assert.Len(t, resp.Channels, 2)
	assert.Len(t, resp.Channels["INSTAGRAM"], 1)
	assert.Len(t, resp.Channels["X"], 1)
	assert.Equal(t, 1, llm.calls)

	// Unknown FACEBOOK dropped from the prompt, survivors keep request order.
	assert.Contains(t, llm.instructions[0], "INSTAGRAM, X")
	assert.NotContains(t, llm.instructions[0], "FACEBOOK")

	session, err := svc.GetSession(context.Background(), resp.SessionID)
	assert.NoError(t, err)
	assert.Equal(t, "a useful article about reviews", session.OriginalContent)
	assert.Equal(t, "Great content", session.Summary)
	assert.Len(t, session.Channels, 2)
	assert.Equal(t, models.ChannelInstagram, session.Channels[0].Channel)
}

func TestAnalyzeContentDefaultsChannels(t *testing.T) {
	llm := &mockLLM{results: []openai.Result{{
		Success:      false,
		ErrorCode:    apperrors.ErrCodeTransportFailure,
		ErrorMessage: "upstream down",
	}}}
	svc, _ := newTestService(llm)

	resp := svc.AnalyzeContent(context.Background(), &models.AnalysisRequest{
		FullText: "content",
		Channels: []string{"FACEBOOK", "TIKTOK"},
	})

	assert.Equal(t, models.StatusFailure, resp.Status)
	// All-unknown channel lists fall back to the default set.
	assert.Contains(t, llm.instructions[0], "INSTAGRAM, X, LINKEDIN")
}

func TestAnalyzeContentLLMFailure(t *testing.T) {
	llm := &mockLLM{results: []openai.Result{{
		Success:      false,
		ErrorCode:    apperrors.ErrCodeEmptyUpstreamResponse,
		ErrorMessage: "AI service returned empty response",
	}}}
	svc, store := newTestService(llm)

	resp := svc.AnalyzeContent(context.Background(), &models.AnalysisRequest{FullText: "content"})

	assert.Equal(t, models.StatusFailure, resp.Status)
	assert.Equal(t, analysisErrorPrefix+"AI service returned empty response", resp.Summary)
	assert.Equal(t, 1, llm.calls)

	sessions, err := store.List(context.Background())
	assert.NoError(t, err)
	assert.Empty(t, sessions, "failed analyses must not be persisted")
}

func TestAnalyzeContentTruncatedRetryOnce(t *testing.T) {
	// Structurally broken JSON on both attempts: one shrink-and-retry, then a
	// terminal truncation failure.
	llm := &mockLLM{results: []openai.Result{successResult(`{"status":`)}}
	svc, _ := newTestService(llm)

	fullText := strings.Repeat("a", 80) // above the 50-char retry floor
	resp := svc.AnalyzeContent(context.Background(), &models.AnalysisRequest{FullText: fullText})

	assert.Equal(t, models.StatusFailure, resp.Status)
	assert.Equal(t, "Received incomplete response from AI service. Please try again.", resp.Summary)
	assert.Equal(t, 2, llm.calls)
	assert.Len(t, llm.inputs[0], 80)
	assert.Len(t, llm.inputs[1], 50, "retry must resubmit with shortened content")
}

func TestAnalyzeContentTruncatedNoRetryForShortContent(t *testing.T) {
	llm := &mockLLM{results: []openai.Result{successResult(`{"status":`)}}
	svc, _ := newTestService(llm)

	resp := svc.AnalyzeContent(context.Background(), &models.AnalysisRequest{FullText: "short content"})

	assert.Equal(t, models.StatusFailure, resp.Status)
	assert.Equal(t, 1, llm.calls, "no retry when content is already below the shrink floor")
}

func TestAnalyzeContentTruncatedRetrySucceeds(t *testing.T) {
	llm := &mockLLM{results: []openai.Result{
		successResult(`{"status":`),
		successResult(validPayload),
	}}
	svc, _ := newTestService(llm)

	fullText := strings.Repeat("b", 80)
	resp := svc.AnalyzeContent(context.Background(), &models.AnalysisRequest{
		FullText: fullText,
		Channels: []string{"INSTAGRAM", "X"},
	})

	assert.Equal(t, models.StatusSuccess, resp.Status)
	assert.Equal(t, 2, llm.calls)

	session, err := svc.GetSession(context.Background(), resp.SessionID)
	assert.NoError(t, err)
	assert.Len(t, session.OriginalContent, 50, "stored content reflects the successful attempt")
	assert.Len(t, session.Channels, 2, "retry must not duplicate channel records")
}

func TestAnalyzeContentClientTruncationAlsoRetried(t *testing.T) {
	// Truncation classified by the AI client (long payload, no closing brace)
	// gets the same single shrink-and-retry as the structural check.
	llm := &mockLLM{results: []openai.Result{
		{
			Success:      false,
			ErrorCode:    apperrors.ErrCodeTruncatedResponse,
			ErrorMessage: "Received incomplete response from AI service. Please try again.",
		},
		successResult(validPayload),
	}}
	svc, _ := newTestService(llm)

	fullText := strings.Repeat("d", 80)
	resp := svc.AnalyzeContent(context.Background(), &models.AnalysisRequest{
		FullText: fullText,
		Channels: []string{"INSTAGRAM", "X"},
	})

	assert.Equal(t, models.StatusSuccess, resp.Status)
	assert.Equal(t, 2, llm.calls)
	assert.Len(t, llm.inputs[1], 50)
}

func TestAnalyzeContentProactiveTruncation(t *testing.T) {
	llm := &mockLLM{results: []openai.Result{successResult(validPayload)}}
	svc, _ := newTestService(llm)

	fullText := strings.Repeat("c", 150) // above the 100-char cap
	resp := svc.AnalyzeContent(context.Background(), &models.AnalysisRequest{
		FullText: fullText,
		Channels: []string{"INSTAGRAM", "X"},
	})

	assert.Equal(t, models.StatusSuccess, resp.Status)
	assert.Len(t, llm.inputs[0], 50, "oversized content is cut to the truncated length before the first call")
}

func TestAnalyzeContentSemanticRejection(t *testing.T) {
	llm := &mockLLM{results: []openai.Result{
		successResult(`{"status":"FAILURE","summary":"The page contains no analyzable text","channels":{}}`),
	}}
	svc, _ := newTestService(llm)

	resp := svc.AnalyzeContent(context.Background(), &models.AnalysisRequest{FullText: "content"})

	assert.Equal(t, models.StatusFailure, resp.Status)
	assert.Equal(t, "The page contains no analyzable text", resp.Summary)
	assert.Equal(t, 1, llm.calls)
}

func TestAnalyzeContentSemanticRejectionDefaultMessage(t *testing.T) {
	llm := &mockLLM{results: []openai.Result{
		successResult(`{"status":"FAILURE","summary":"","channels":{}}`),
	}}
	svc, _ := newTestService(llm)

	resp := svc.AnalyzeContent(context.Background(), &models.AnalysisRequest{FullText: "content"})

	assert.Equal(t, models.StatusFailure, resp.Status)
	assert.Equal(t, msgAICouldNotAnalyze, resp.Summary)
}

func TestAnalyzeContentSchemaViolation(t *testing.T) {
	// SUCCESS payload missing a requested channel violates the schema sent to
	// the AI service.
	llm := &mockLLM{results: []openai.Result{
		successResult(`{"status":"SUCCESS","summary":"ok","channels":{}}`),
	}}
	svc, _ := newTestService(llm)

	resp := svc.AnalyzeContent(context.Background(), &models.AnalysisRequest{
		FullText: "content",
		Channels: []string{"INSTAGRAM", "X"},
	})

	assert.Equal(t, models.StatusFailure, resp.Status)
	assert.Equal(t, "Failed to parse AI response", resp.Summary)
}

func TestAnalyzeContentOmitsEmptyChannels(t *testing.T) {
	cfg := testOpenAIConfig()
	cfg.IdeaMinItems = 0 // allow empty idea arrays for this scenario

	payload := `{"status":"SUCCESS","summary":"ok","channels":{` +
		`"INSTAGRAM":[{"idea":"i","rationale":"r","pros":[],"cons":[]}],"X":[]}}`
	llm := &mockLLM{results: []openai.Result{successResult(payload)}}
	store := storage.NewMemoryStore(10, logger.NewNoOpLogger())
	svc := NewService(cfg, testLimits(), llm, store, logger.NewNoOpLogger())

	resp := svc.AnalyzeContent(context.Background(), &models.AnalysisRequest{
		FullText: "content",
		Channels: []string{"INSTAGRAM", "X"},
	})

	assert.Equal(t, models.StatusSuccess, resp.Status)
	assert.Contains(t, resp.Channels, "INSTAGRAM")
	assert.NotContains(t, resp.Channels, "X", "channels with zero ideas are omitted")
}

func TestAnalyzeContentEnsuresIdeaSlices(t *testing.T) {
	llm := &mockLLM{results: []openai.Result{successResult(validPayload)}}
	svc, _ := newTestService(llm)

	resp := svc.AnalyzeContent(context.Background(), &models.AnalysisRequest{
		FullText: "content",
		Channels: []string{"INSTAGRAM", "X"},
	})

	assert.Equal(t, models.StatusSuccess, resp.Status)
	for _, ideas := range resp.Channels {
		for _, idea := range ideas {
			assert.NotNil(t, idea.Pros)
			assert.NotNil(t, idea.Cons)
		}
	}
}

func TestGetSessionNotFound(t *testing.T) {
	svc, _ := newTestService(&mockLLM{})

	_, err := svc.GetSession(context.Background(), "missing")
	assert.Error(t, err)
	assert.True(t, apperrors.IsCode(err, apperrors.ErrCodeSessionNotFound))
}

func TestListSessionsAndStats(t *testing.T) {
	llm := &mockLLM{results: []openai.Result{successResult(validPayload)}}
	svc, _ := newTestService(llm)

	resp := svc.AnalyzeContent(context.Background(), &models.AnalysisRequest{
		FullText: "content",
		Channels: []string{"INSTAGRAM", "X"},
	})
	assert.Equal(t, models.StatusSuccess, resp.Status)

	sessions, err := svc.ListSessions(context.Background())
	assert.NoError(t, err)
	assert.Len(t, sessions, 1)

	stats := svc.StoreStats(context.Background())
	assert.Equal(t, "memory", stats["implementation"])
	assert.Equal(t, 1, stats["totalSessions"])
}
