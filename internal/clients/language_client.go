package clients

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"github.com/spacesedan/tonecheck/config"
	"github.com/spacesedan/tonecheck/internal/models"
	"golang.org/x/oauth2"
)

// LanguageClient calls the Google Cloud Natural Language analyzeSentiment endpoint.
type LanguageClient struct {
	Client      *http.Client
	Endpoint    string
	APIKey      string
	MaxAttempts int
	backoff     time.Duration
}

func NewLanguageClient(cfg config.LanguageSettings) *LanguageClient {
	httpClient := &http.Client{}
	auth := "api_key"
	if cfg.APIKey == "" && cfg.AccessToken != "" {
		httpClient = oauth2.NewClient(context.Background(),
			oauth2.StaticTokenSource(&oauth2.Token{AccessToken: cfg.AccessToken}))
		auth = "oauth2"
	}
	httpClient.Timeout = cfg.Timeout

	attempts := cfg.MaxAttempts
	if attempts < 1 {
		attempts = 1
	}

	slog.Info("[LanguageClient] Initializing Client",
		slog.String("endpoint", cfg.Endpoint),
		slog.String("auth", auth),
		slog.Duration("timeout", cfg.Timeout),
		slog.Int("max_attempts", attempts))

	if cfg.APIKey == "" && cfg.AccessToken == "" {
		slog.Warn("[LanguageClient] No GOOGLE_CLOUD_API_KEY or GOOGLE_CLOUD_ACCESS_TOKEN configured, requests will be rejected")
	}

	return &LanguageClient{
		Client:      httpClient,
		Endpoint:    cfg.Endpoint,
		APIKey:      cfg.APIKey,
		MaxAttempts: attempts,
		backoff:     INITIAL_BACKOFF,
	}
}

func (l *LanguageClient) AnalyzeSentiment(ctx context.Context, text string) (models.SentimentAnalysis, error) {
	input := models.AnalyzeSentimentRequest{
		Document: models.Document{
			Type:    models.DOCUMENT_TYPE_PLAIN_TEXT,
			Content: text,
		},
	}

	start := time.Now()
	body, err := l.postJSON(ctx, input)
	if err != nil {
		slog.Error("[LanguageClient] Sentiment analysis request failed",
			slog.Duration("elapsed", time.Since(start)))
		return models.SentimentAnalysis{}, err
	}

	result, err := parseSentiment(body)
	if err != nil {
		slog.Error("[LanguageClient] Failed to parse response",
			slog.String("error", err.Error()),
			getPreview(body))
		return models.SentimentAnalysis{}, err
	}

	slog.Info("[LanguageClient] Sentiment analysis request successful",
		slog.Duration("elapsed", time.Since(start)))
	return result, nil
}

func (l *LanguageClient) requestURL() (string, error) {
	u, err := url.Parse(l.Endpoint)
	if err != nil {
		return "", fmt.Errorf("invalid endpoint: %w", err)
	}
	if l.APIKey != "" {
		q := u.Query()
		q.Set("key", l.APIKey)
		u.RawQuery = q.Encode()
	}
	return u.String(), nil
}

func (l *LanguageClient) postJSON(ctx context.Context, input interface{}) ([]byte, error) {
	payload, err := json.Marshal(input)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal input: %w", err)
	}

	endpoint, err := l.requestURL()
	if err != nil {
		return nil, err
	}

	newRequest := func() (*http.Request, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(payload))
		if err != nil {
			return nil, fmt.Errorf("failed to build request: %w", err)
		}
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("User-Agent", USER_AGENT)
		return req, nil
	}

	resp, err := l.DoWithRetry(ctx, newRequest)
	if err != nil {
		slog.Error("[LanguageClient] Request failed",
			slog.String("error", err.Error()))
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		slog.Warn("[LanguageClient] Unexpected status code",
			slog.Int("status_code", resp.StatusCode),
			getPreview(respBody))
		return nil, fmt.Errorf("unexpected status code %d", resp.StatusCode)
	}

	return respBody, nil
}

// DoWithRetry retries transport errors and 5xx responses with exponential
// backoff until MaxAttempts is used up.
func (l *LanguageClient) DoWithRetry(ctx context.Context, newRequest func() (*http.Request, error)) (*http.Response, error) {
	var resp *http.Response
	var err error
	backoff := l.backoff

	for attempt := 0; attempt < l.MaxAttempts; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(backoff):
			}
			backoff *= 2
			if backoff > MAX_BACKOFF {
				backoff = MAX_BACKOFF
			}
		}

		var req *http.Request
		req, err = newRequest()
		if err != nil {
			return nil, err
		}

		resp, err = l.Client.Do(req)
		err = redactURL(err)
		if err == nil && resp.StatusCode < 500 {
			return resp, nil
		}
		if attempt == l.MaxAttempts-1 {
			break
		}

		slog.Warn("[LanguageClient] Request failed, will retry",
			slog.Int("attempt", attempt+1),
			slog.String("error", errMsg(err, resp)))

		if resp != nil {
			resp.Body.Close()
		}
	}

	return resp, err
}

// parseSentiment requires a valid JSON body but tolerates a missing or
// malformed documentSentiment, which yields a zero score.
func parseSentiment(body []byte) (models.SentimentAnalysis, error) {
	var payload interface{}
	if err := json.Unmarshal(body, &payload); err != nil {
		return models.SentimentAnalysis{}, fmt.Errorf("failed to unmarshal response: %w", err)
	}

	var result models.SentimentAnalysis
	root, ok := payload.(map[string]interface{})
	if !ok {
		return result, nil
	}
	if language, ok := root["language"].(string); ok {
		result.Language = language
	}
	sentiment, ok := root["documentSentiment"].(map[string]interface{})
	if !ok {
		return result, nil
	}
	if score, ok := sentiment["score"].(float64); ok {
		result.Score = score
	}
	if magnitude, ok := sentiment["magnitude"].(float64); ok {
		result.Magnitude = magnitude
	}
	return result, nil
}

func getPreview(respBody []byte) slog.Attr {
	raw := string(respBody)
	if len(raw) > 50 {
		raw = raw[:50]
	}
	return slog.String("raw_response", raw)
}

// redactURL drops the request URL from transport errors since it carries the API key.
func redactURL(err error) error {
	var urlErr *url.Error
	if errors.As(err, &urlErr) {
		return fmt.Errorf("%s: %w", urlErr.Op, urlErr.Err)
	}
	return err
}

func errMsg(err error, resp *http.Response) string {
	if err != nil {
		return err.Error()
	}
	if resp != nil {
		return fmt.Sprintf("status code %d", resp.StatusCode)
	}
	return "unknown error"
}
