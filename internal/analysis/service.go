// Package analysis drives the end-to-end content analysis pipeline: input
// validation, truncation policy, AI call, parse-and-store, truncation retry
// and response assembly.
package analysis

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"content-brainstorm/internal/common/config"
	apperrors "content-brainstorm/internal/common/errors"
	"content-brainstorm/internal/common/logger"
	"content-brainstorm/internal/common/metrics"
	"content-brainstorm/internal/common/validation"
	"content-brainstorm/internal/models"
	"content-brainstorm/internal/openai"
	"content-brainstorm/internal/storage"
)

const (
	msgNoContent = "No content provided for analysis - please ensure the page content is being " +
		"captured properly by the extension. Check if the page has loaded completely or if there " +
		"are any content extraction issues."
	msgAICouldNotAnalyze = "AI could not analyze content"
	msgAnalyzedOK        = "Content analyzed successfully"
	msgInternalError     = "Analysis error: unexpected internal error"

	analysisErrorPrefix = "Analysis error: "
)

// LLMClient is the outbound AI contract. An interface so tests can stub the
// upstream and count calls.
type LLMClient interface {
	Analyze(ctx context.Context, instructions, input string, format map[string]interface{}) openai.Result
}

// Service orchestrates one analysis request end to end. All terminal failures
// are returned as structured responses; nothing escapes to the transport
// layer under normal operation.
type Service struct {
	cfg    config.OpenAIConfig
	limits config.AnalysisConfig
	llm    LLMClient
	store  storage.SessionStore
	logger logger.Logger
}

func NewService(cfg config.OpenAIConfig, limits config.AnalysisConfig, llm LLMClient, store storage.SessionStore, log logger.Logger) *Service {
	return &Service{
		cfg:    cfg,
		limits: limits,
		llm:    llm,
		store:  store,
		logger: log.With(map[string]interface{}{
			"component": "analysis-service",
		}),
	}
}

// AnalyzeContent processes extracted page content and generates structured
// ideas by channel.
func (s *Service) AnalyzeContent(ctx context.Context, req *models.AnalysisRequest) (resp *models.AnalysisResponse) {
	start := time.Now()
	defer func() {
		metrics.AnalysisDuration.Observe(time.Since(start).Seconds())
		if r := recover(); r != nil {
			s.logger.Error("panic during content analysis", map[string]interface{}{
				"panic": r,
			})
			metrics.AnalysesFailed.WithLabelValues(string(apperrors.ErrCodeInputRejected)).Inc()
			resp = failureResponse("", msgInternalError)
		}
	}()

	if strings.TrimSpace(req.FullText) == "" {
		s.logger.Warn("empty or null content received", map[string]interface{}{
			"url":           req.URL,
			"contentLength": len(req.FullText),
		})
		metrics.AnalysesFailed.WithLabelValues(string(apperrors.ErrCodeInputRejected)).Inc()
		return failureResponse("", msgNoContent)
	}

	sessionID := uuid.NewString()
	session := models.NewSessionFromRequest(req, sessionID)

	// Tradeoff between availability and accuracy: long content is truncated
	// proactively for a higher success rate with the AI service.
	content := session.OriginalContent
	if len(content) > s.limits.MaxContentLength {
		content = content[:s.limits.TruncatedContentLength]
	}

	channels := s.resolveChannels(req.Channels)
	channelKeys := models.ChannelKeys(channels)

	instructions := openai.BuildInstructions(channelKeys, s.cfg.BusinessContext, s.cfg.TargetAudience)
	schema := openai.AnalysisSchema(channelKeys, s.cfg.IdeaMinItems, s.cfg.IdeaMaxItems)
	format := openai.TextFormat(s.cfg.SchemaName, schema)

	// At most one shrink-and-retry on a truncated response classification.
	for attempt := 0; ; attempt++ {
		result := s.llm.Analyze(ctx, instructions, content, format)
		if !result.Success {
			if attempt == 0 && s.shouldShrinkAndRetry(result.ErrorCode, len(content)) {
				s.logger.Warn("truncated response detected, retrying with shorter content", map[string]interface{}{
					"sessionId":     sessionID,
					"contentLength": len(content),
				})
				content = content[:s.limits.TruncatedContentLength]
				continue
			}
			s.logger.Warn("AI analysis failed", map[string]interface{}{
				"sessionId": sessionID,
				"errorCode": string(result.ErrorCode),
				"error":     result.ErrorMessage,
			})
			metrics.AnalysesFailed.WithLabelValues(string(result.ErrorCode)).Inc()
			return failureResponse(sessionID, analysisErrorPrefix+result.ErrorMessage)
		}

		response, parseErr := s.parseAndStore(ctx, session, content, result.Content, channels, schema)
		if parseErr == nil {
			metrics.AnalysesCompleted.Inc()
			return response
		}

		if attempt == 0 && s.shouldShrinkAndRetry(parseErr.Code, len(content)) {
			s.logger.Warn("truncated response detected, retrying with shorter content", map[string]interface{}{
				"sessionId":     sessionID,
				"contentLength": len(content),
			})
			content = content[:s.limits.TruncatedContentLength]
			session.Channels = nil
			continue
		}

		metrics.AnalysesFailed.WithLabelValues(string(parseErr.Code)).Inc()
		return failureResponse(sessionID, parseErr.Message)
	}
}

// shouldShrinkAndRetry reports whether a truncation classification warrants
// one resubmission with shortened content. Content already at or below the
// shrink floor cannot get shorter, so retrying would only repeat the failure.
func (s *Service) shouldShrinkAndRetry(code apperrors.ErrorCode, contentLength int) bool {
	return code == apperrors.ErrCodeTruncatedResponse &&
		contentLength > s.limits.TruncatedContentLength
}

// resolveChannels canonicalizes the caller-supplied channel list, falling
// back to the default triple when none survive normalization.
func (s *Service) resolveChannels(requested []string) []models.Channel {
	if len(requested) == 0 {
		return models.DefaultChannels()
	}

	channels, unknown := models.NormalizeChannels(requested)
	if len(unknown) > 0 {
		s.logger.Warn("dropping unknown channels", map[string]interface{}{
			"unknown": unknown,
		})
	}
	if len(channels) == 0 {
		return models.DefaultChannels()
	}
	return channels
}

// parseAndStore validates the AI response, maps it into the session and
// persists it. The returned error's code tells the caller whether a
// shrink-and-retry is worthwhile.
func (s *Service) parseAndStore(ctx context.Context, session *models.AnalysisSession, attemptContent, jsonContent string, channels []models.Channel, schema map[string]interface{}) (*models.AnalysisResponse, *apperrors.StandardError) {
	// Safety net: structured output is requested but never trusted blindly.
	if !IsWellFormedJSON(jsonContent) {
		s.logger.Error("invalid or truncated JSON response detected", map[string]interface{}{
			"sessionId":     session.SessionID,
			"contentLength": len(jsonContent),
		})
		return nil, apperrors.NewTruncatedResponseError("response failed structural validation")
	}

	var payload openai.AnalysisPayload
	if err := json.Unmarshal([]byte(jsonContent), &payload); err != nil {
		s.logger.Error("failed to parse AI analysis response", map[string]interface{}{
			"sessionId":     session.SessionID,
			"error":         err.Error(),
			"contentLength": len(jsonContent),
		})
		return nil, apperrors.NewDecodeFailureError(err)
	}

	// Semantic rejection first: a FAILURE payload carries no channel data and
	// would trip the schema check for the wrong reason.
	if payload.Status != string(models.StatusSuccess) {
		reason := payload.Summary
		if reason == "" {
			reason = msgAICouldNotAnalyze
		}
		return nil, apperrors.NewSemanticRejectionError(reason)
	}

	if stdErr := validateAgainstSchema(jsonContent, schema); stdErr != nil {
		s.logger.Error("AI response violates the requested schema", map[string]interface{}{
			"sessionId": session.SessionID,
			"details":   stdErr.Details,
		})
		return nil, stdErr
	}

	// Walk the requested channels in order; idea order within a channel is
	// preserved as returned.
	for _, channel := range channels {
		ideas := payload.Channels[string(channel)]
		for i := range ideas {
			ideas[i].EnsureSlices()
		}
		session.AddChannel(channel, ideas)
	}

	summary := payload.Summary
	if summary == "" {
		summary = msgAnalyzedOK
	}
	session.Summary = summary
	session.OriginalContent = attemptContent

	if err := s.store.Store(ctx, session); err != nil {
		return nil, apperrors.NewSessionStoreFailedError(err)
	}

	return buildSuccessResponse(session, summary), nil
}

// validateAgainstSchema cross-checks the decoded payload against the exact
// schema sent to the AI service.
func validateAgainstSchema(jsonContent string, schema map[string]interface{}) *apperrors.StandardError {
	violations, err := validation.AgainstSchema(jsonContent, schema)
	if err != nil {
		return apperrors.NewDecodeFailureError(err)
	}
	if len(violations) > 0 {
		return apperrors.NewDecodeFailureError(fmt.Errorf("schema violations: %s", strings.Join(violations, "; ")))
	}
	return nil
}

// GetSession returns a stored session by id.
func (s *Service) GetSession(ctx context.Context, sessionID string) (*models.AnalysisSession, error) {
	return s.store.Get(ctx, sessionID)
}

// ListSessions returns all stored sessions (for monitoring).
func (s *Service) ListSessions(ctx context.Context) ([]*models.AnalysisSession, error) {
	return s.store.List(ctx)
}

// StoreStats returns backend statistics (for monitoring).
func (s *Service) StoreStats(ctx context.Context) map[string]interface{} {
	return s.store.Stats(ctx)
}

func buildSuccessResponse(session *models.AnalysisSession, summary string) *models.AnalysisResponse {
	channelsMap := make(map[string][]models.IdeaDetail)
	for _, channel := range session.Channels {
		// Channels with zero ideas are omitted, not included as empty lists.
		if len(channel.Ideas) > 0 {
			channelsMap[string(channel.Channel)] = channel.Ideas
		}
	}

	return &models.AnalysisResponse{
		Status:    models.StatusSuccess,
		SessionID: session.SessionID,
		Summary:   summary,
		Channels:  channelsMap,
	}
}

func failureResponse(sessionID, errorMessage string) *models.AnalysisResponse {
	return &models.AnalysisResponse{
		Status:    models.StatusFailure,
		SessionID: sessionID,
		Summary:   errorMessage,
		Channels:  map[string][]models.IdeaDetail{},
	}
}
