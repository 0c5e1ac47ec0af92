package openai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"content-brainstorm/internal/common/config"
	apperrors "content-brainstorm/internal/common/errors"
	commonhttp "content-brainstorm/internal/common/http"
	"content-brainstorm/internal/common/logger"
	"content-brainstorm/internal/common/metrics"
	"content-brainstorm/internal/models"
)

const responsesEndpoint = "/responses"

// Result is the outcome of one Analyze call. Content and ErrorMessage are
// never both populated.
type Result struct {
	Success      bool
	Content      string
	ErrorCode    apperrors.ErrorCode
	ErrorMessage string
}

// AnalysisPayload is the typed decode target for the structured JSON the AI
// returns inside the envelope.
type AnalysisPayload struct {
	Status   string                         `json:"status"`
	Summary  string                         `json:"summary"`
	Channels map[string][]models.IdeaDetail `json:"channels"`
}

// Client calls the responses API with structured output and bounded retries.
type Client struct {
	cfg                 config.OpenAIConfig
	truncationThreshold int
	httpClient          *commonhttp.Client
	logger              logger.Logger
}

func NewClient(cfg config.OpenAIConfig, truncationThreshold int, httpClient *commonhttp.Client, log logger.Logger) *Client {
	if httpClient == nil {
		httpClient = commonhttp.NewClient(config.GetDuration(cfg.Timeout))
	}
	return &Client{
		cfg:                 cfg,
		truncationThreshold: truncationThreshold,
		httpClient:          httpClient,
		logger: log.With(map[string]interface{}{
			"component": "openai-client",
		}),
	}
}

// Analyze posts instructions + input with the given structured-output format
// and returns the aggregated assistant text. No semantic JSON parsing happens
// here; the caller validates and decodes the content.
func (c *Client) Analyze(ctx context.Context, instructions, input string, format map[string]interface{}) Result {
	requestBody := map[string]interface{}{
		"model":        c.cfg.Model,
		"instructions": instructions,
		"input":        input,
		"text": map[string]interface{}{
			"format": format,
		},
		"temperature": c.cfg.Temperature,
	}

	body, err := json.Marshal(requestBody)
	if err != nil {
		return failure(apperrors.NewTransportFailureError(err.Error()))
	}

	raw, stdErr := c.postWithRetry(ctx, body)
	if stdErr != nil {
		return failure(stdErr)
	}

	return c.extractResult(raw)
}

// postWithRetry issues the HTTP call with exponential backoff. Only 429, 408
// and 5xx responses are retried; everything else fails immediately.
func (c *Client) postWithRetry(ctx context.Context, body []byte) (map[string]interface{}, *apperrors.StandardError) {
	var lastErr error

	for attempt := 1; attempt <= c.cfg.RetryMaxAttempts; attempt++ {
		if attempt > 1 {
			backoff := config.GetDuration(c.cfg.RetryInitialDelay) * time.Duration(1<<(attempt-2))
			if maxBackoff := config.GetDuration(c.cfg.RetryMaxBackoff); backoff > maxBackoff {
				backoff = maxBackoff
			}
			metrics.LLMRetries.Inc()
			c.logger.Warn("retrying AI request", map[string]interface{}{
				"attempt": attempt,
				"backoff": backoff.String(),
			})
			select {
			case <-time.After(backoff):
			case <-ctx.Done():
				return nil, apperrors.NewTransportFailureError(ctx.Err().Error())
			}
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.BaseURL+responsesEndpoint, bytes.NewReader(body))
		if err != nil {
			return nil, apperrors.NewTransportFailureError(err.Error())
		}
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("Authorization", "Bearer "+c.cfg.APIKey)

		resp, err := c.httpClient.Do(req)
		if err != nil {
			// Transport-level errors are not retried.
			metrics.LLMRequests.WithLabelValues("transport_error").Inc()
			return nil, apperrors.NewTransportFailureError(err.Error())
		}

		if resp.StatusCode == http.StatusOK {
			metrics.LLMRequests.WithLabelValues("200").Inc()
			defer resp.Body.Close()
			var raw map[string]interface{}
			if err := json.NewDecoder(resp.Body).Decode(&raw); err != nil {
				return nil, apperrors.NewTransportFailureError(fmt.Sprintf("decode response body: %v", err))
			}
			return raw, nil
		}

		snippet := readBodySnippet(resp.Body)
		resp.Body.Close()
		metrics.LLMRequests.WithLabelValues(fmt.Sprintf("%d", resp.StatusCode)).Inc()

		if !isRetryableStatus(resp.StatusCode) {
			return nil, apperrors.NewTransportFailureError(fmt.Sprintf("status %d: %s", resp.StatusCode, snippet))
		}
		lastErr = fmt.Errorf("status %d: %s", resp.StatusCode, snippet)
	}

	return nil, apperrors.NewTransportFailureError(lastErr.Error())
}

// isRetryableStatus reports whether the upstream status is worth retrying:
// rate limits, request timeouts and server errors.
func isRetryableStatus(status int) bool {
	return status == http.StatusTooManyRequests ||
		status == http.StatusRequestTimeout ||
		status >= http.StatusInternalServerError
}

// extractResult pulls the assistant text out of the envelope and classifies
// empty, non-structured and truncation-risk responses.
func (c *Client) extractResult(raw map[string]interface{}) Result {
	text, found := ExtractAssistantText(raw)
	if !found {
		details := upstreamDiagnostics(raw)
		c.logger.Error("AI returned empty response", map[string]interface{}{
			"diagnostics": details,
		})
		return failure(apperrors.NewEmptyUpstreamResponseError(details))
	}

	trimmed := strings.TrimSpace(text)
	if !strings.HasPrefix(trimmed, "{") {
		c.logger.Error("AI returned plain text instead of structured JSON", map[string]interface{}{
			"responseLength": len(trimmed),
		})
		return failure(apperrors.NewNonStructuredResponseError())
	}

	if len(trimmed) > c.truncationThreshold && !strings.HasSuffix(trimmed, "}") {
		c.logger.Warn("AI response looks truncated", map[string]interface{}{
			"responseLength": len(trimmed),
			"threshold":      c.truncationThreshold,
		})
		return failure(apperrors.NewTruncatedResponseError(
			fmt.Sprintf("response of %d chars does not terminate with '}'", len(trimmed))))
	}

	return Result{Success: true, Content: text}
}

// upstreamDiagnostics collects best-effort status/error fields from the raw
// body for failure messages.
func upstreamDiagnostics(raw map[string]interface{}) string {
	var sb strings.Builder
	if status, ok := raw["status"]; ok {
		fmt.Fprintf(&sb, "status=%v", status)
	}
	if errField, ok := raw["error"]; ok && errField != nil {
		if sb.Len() > 0 {
			sb.WriteString(" ")
		}
		fmt.Fprintf(&sb, "error=%v", errField)
	}
	return sb.String()
}

func readBodySnippet(r io.Reader) string {
	data, _ := io.ReadAll(io.LimitReader(r, 512))
	return strings.TrimSpace(string(data))
}

func failure(err *apperrors.StandardError) Result {
	return Result{
		Success:      false,
		ErrorCode:    err.Code,
		ErrorMessage: err.Message,
	}
}
