// Package llm is a small OpenAI-compatible chat completions client used as the
// plan generator.
package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/fitpilot/fitpilot-backend/internal/platform/envutil"
	"github.com/fitpilot/fitpilot-backend/internal/platform/httpx"
	"github.com/fitpilot/fitpilot-backend/internal/platform/logger"
)

const (
	DefaultBaseURL     = "https://open.bigmodel.cn/api/paas/v4"
	DefaultChatPath    = "/chat/completions"
	DefaultModel       = "glm-4.5-air"
	DefaultTemperature = 0.7
	DefaultTopP        = 0.7
)

type Config struct {
	BaseURL  string
	APIKey   string
	ChatPath string
	// Timeout bounds a single attempt.
	Timeout time.Duration
	// MaxAttempts counts the first call; only transport timeouts are retried.
	MaxAttempts  int
	RetryBackoff time.Duration
}

// ConfigFromEnv reads LLM_* variables.
func ConfigFromEnv() Config {
	return Config{
		BaseURL:      envutil.String("LLM_BASE_URL", DefaultBaseURL),
		APIKey:       envutil.String("LLM_API_KEY", ""),
		ChatPath:     envutil.String("LLM_CHAT_PATH", DefaultChatPath),
		Timeout:      envutil.Duration("LLM_TIMEOUT", 60*time.Second),
		MaxAttempts:  envutil.Int("LLM_MAX_ATTEMPTS", 2),
		RetryBackoff: envutil.Duration("LLM_RETRY_BACKOFF", 300*time.Millisecond),
	}
}

type ChatOptions struct {
	Model       string
	Temperature float64
	TopP        float64
	MaxTokens   int
}

type Client struct {
	log        *logger.Logger
	baseURL    string
	apiKey     string
	chatPath   string
	timeout    time.Duration
	attempts   int
	backoff    time.Duration
	httpClient *http.Client
}

func New(log *logger.Logger, cfg Config) (*Client, error) {
	baseURL := strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	if baseURL == "" {
		return nil, errors.New("llm: base_url required")
	}
	chatPath := strings.TrimSpace(cfg.ChatPath)
	if chatPath == "" {
		chatPath = DefaultChatPath
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 60 * time.Second
	}
	attempts := cfg.MaxAttempts
	if attempts <= 0 {
		attempts = 2
	}
	backoff := cfg.RetryBackoff
	if backoff < 0 {
		backoff = 0
	}
	if log == nil {
		log = logger.Nop()
	}

	tr := &http.Transport{
		Proxy: http.ProxyFromEnvironment,
		DialContext: (&net.Dialer{
			Timeout:   10 * time.Second,
			KeepAlive: 30 * time.Second,
		}).DialContext,
		ForceAttemptHTTP2:     true,
		MaxIdleConns:          20,
		IdleConnTimeout:       90 * time.Second,
		TLSHandshakeTimeout:   10 * time.Second,
		ExpectContinueTimeout: 1 * time.Second,
	}

	return &Client{
		log:        log.With("client", "llm"),
		baseURL:    baseURL,
		apiKey:     strings.TrimSpace(cfg.APIKey),
		chatPath:   chatPath,
		timeout:    timeout,
		attempts:   attempts,
		backoff:    backoff,
		httpClient: &http.Client{Transport: tr},
	}, nil
}

// NewWithHTTPClient is intended for tests; it avoids network access by using a custom RoundTripper.
func NewWithHTTPClient(log *logger.Logger, cfg Config, httpClient *http.Client) (*Client, error) {
	c, err := New(log, cfg)
	if err != nil {
		return nil, err
	}
	if httpClient != nil {
		c.httpClient = httpClient
	}
	return c, nil
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatCompletionRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	Temperature float64       `json:"temperature"`
	TopP        float64       `json:"top_p,omitempty"`
	MaxTokens   int           `json:"max_tokens,omitempty"`
}

type chatCompletionResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content,omitempty"`
		} `json:"message,omitempty"`
		Text string `json:"text,omitempty"`
	} `json:"choices"`
}

// Chat sends one system and one user message and returns the completion text
// with any surrounding code fence removed.
func (c *Client) Chat(ctx context.Context, systemPrompt, userPrompt string, opts ChatOptions) (string, error) {
	msgs := make([]chatMessage, 0, 2)
	if s := strings.TrimSpace(systemPrompt); s != "" {
		msgs = append(msgs, chatMessage{Role: "system", Content: s})
	}
	if u := strings.TrimSpace(userPrompt); u != "" {
		msgs = append(msgs, chatMessage{Role: "user", Content: u})
	}
	if len(msgs) == 0 {
		return "", errors.New("llm: no messages")
	}

	model := strings.TrimSpace(opts.Model)
	if model == "" {
		model = DefaultModel
	}
	reqBody := chatCompletionRequest{
		Model:       model,
		Messages:    msgs,
		Temperature: opts.Temperature,
		TopP:        opts.TopP,
		MaxTokens:   opts.MaxTokens,
	}

	var lastErr error
	for attempt := 1; attempt <= c.attempts; attempt++ {
		var resp chatCompletionResponse
		err := c.doJSON(ctx, reqBody, &resp)
		if err == nil {
			text := sanitizeText(extractChatText(resp))
			if text == "" {
				return "", ErrEmptyCompletion
			}
			return text, nil
		}
		lastErr = err
		if !httpx.IsTimeout(err) || ctx.Err() != nil || attempt == c.attempts {
			break
		}
		c.log.Warn("llm call timed out, retrying", "attempt", attempt, "model", model)
		if err := httpx.Sleep(ctx, httpx.Jitter(c.backoff*time.Duration(attempt))); err != nil {
			return "", err
		}
	}
	return "", fmt.Errorf("llm chat: %w", lastErr)
}

func (c *Client) doJSON(ctx context.Context, body any, out any) error {
	var buf bytes.Buffer
	if err := json.NewEncoder(&buf).Encode(body); err != nil {
		return err
	}

	ctx2, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx2, http.MethodPost, c.baseURL+c.chatPath, &buf)
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
		return &HTTPError{StatusCode: resp.StatusCode, Body: string(raw)}
	}
	return json.NewDecoder(resp.Body).Decode(out)
}

func extractChatText(resp chatCompletionResponse) string {
	for _, ch := range resp.Choices {
		if strings.TrimSpace(ch.Message.Content) != "" {
			return ch.Message.Content
		}
		if strings.TrimSpace(ch.Text) != "" {
			return ch.Text
		}
	}
	return ""
}

func sanitizeText(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	firstNL := strings.IndexByte(s, '\n')
	if firstNL == -1 {
		return strings.TrimSpace(strings.Trim(s, "`"))
	}
	s = s[firstNL+1:]
	if idx := strings.LastIndex(s, "```"); idx != -1 {
		s = s[:idx]
	}
	return strings.TrimSpace(s)
}
