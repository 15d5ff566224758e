package api

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"scam-arena/internal/config"
	"scam-arena/internal/constants"
	"scam-arena/internal/domain"

	"github.com/rs/zerolog"
	"github.com/valyala/fasthttp"
)

type Role string

const (
	RoleSystem    Role = "system"
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

type Message struct {
	Role    Role   `json:"role"`
	Content string `json:"content"`
}

// ChatOptions zero values fall back to the client defaults.
type ChatOptions struct {
	Temperature float64
	MaxTokens   int
}

type ChatRequest struct {
	Model               string    `json:"model"`
	Messages            []Message `json:"messages"`
	Stream              bool      `json:"stream"`
	MaxCompletionTokens int       `json:"max_completion_tokens"`
	Temperature         float64   `json:"temperature"`
	TopP                float64   `json:"top_p"`
}

type ChatResponse struct {
	ID      string       `json:"id"`
	Model   string       `json:"model"`
	Choices []ChatChoice `json:"choices"`
	Usage   *ChatUsage   `json:"usage,omitempty"`
}

type ChatChoice struct {
	Index        int     `json:"index"`
	Message      Message `json:"message"`
	FinishReason string  `json:"finish_reason"`
}

type ChatUsage struct {
	PromptTokens     int `json:"prompt_tokens"`
	CompletionTokens int `json:"completion_tokens"`
	TotalTokens      int `json:"total_tokens"`
}

type KeySource interface {
	Next() (string, error)
}

// CerebrasClient sends chat completions, taking a fresh key from the rotator
// on every call.
type CerebrasClient struct {
	keys    KeySource
	baseURL string
	model   string
	client  *fasthttp.Client
	logger  zerolog.Logger
}

func NewCerebrasClient(cfg *config.Config, keys KeySource, logger zerolog.Logger) *CerebrasClient {
	return &CerebrasClient{
		keys:    keys,
		baseURL: strings.TrimRight(cfg.CerebrasBaseURL, "/"),
		model:   cfg.CerebrasModel,
		// no ReadTimeout: completions run as long as the endpoint needs
		client: &fasthttp.Client{
			MaxConnsPerHost:     100,
			WriteTimeout:        10 * time.Second,
			MaxIdleConnDuration: 1 * time.Minute,
		},
		logger: logger,
	}
}

// Chat returns the first completion's text, or "" when the response has none.
func (c *CerebrasClient) Chat(ctx context.Context, messages []Message, opts ChatOptions) (string, error) {
	apiKey, err := c.keys.Next()
	if err != nil {
		return "", err
	}

	reqBody := ChatRequest{
		Model:               c.model,
		Messages:            messages,
		Stream:              false,
		MaxCompletionTokens: opts.MaxTokens,
		Temperature:         opts.Temperature,
		TopP:                constants.DefaultTopP,
	}
	if reqBody.MaxCompletionTokens == 0 {
		reqBody.MaxCompletionTokens = constants.DefaultMaxTokens
	}
	if reqBody.Temperature == 0 {
		reqBody.Temperature = constants.DefaultTemperature
	}

	start := time.Now()
	resp, err := doRequest[ChatResponse](ctx, c.client, fasthttp.MethodPost, c.baseURL+"/chat/completions", apiKey, reqBody)
	if err != nil {
		c.logger.Error().Err(err).Str("model", c.model).Msg("chat completion failed")
		return "", fmt.Errorf("cerebras chat: %w", err)
	}

	event := c.logger.Debug().
		Str("model", c.model).
		Int("messages", len(messages)).
		Int64("duration_ms", time.Since(start).Milliseconds())
	if resp.Usage != nil {
		event = event.
			Int("prompt_tokens", resp.Usage.PromptTokens).
			Int("completion_tokens", resp.Usage.CompletionTokens).
			Int("total_tokens", resp.Usage.TotalTokens)
	}
	event.Msg("chat completion done")

	if len(resp.Choices) == 0 {
		return "", nil
	}
	return resp.Choices[0].Message.Content, nil
}

func doRequest[T any](ctx context.Context, client *fasthttp.Client, method, url, apiKey string, body any) (*T, error) {
	req := fasthttp.AcquireRequest()
	resp := fasthttp.AcquireResponse()
	defer fasthttp.ReleaseRequest(req)
	defer fasthttp.ReleaseResponse(resp)

	payload, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("failed to encode request: %w", err)
	}

	req.SetRequestURI(url)
	req.Header.SetMethod(method)
	req.Header.SetContentType("application/json")
	req.Header.Set("Authorization", "Bearer "+apiKey)
	req.SetBody(payload)

	deadline, ok := ctx.Deadline()
	if ok {
		if err := client.DoDeadline(req, resp, deadline); err != nil {
			return nil, fmt.Errorf("%w: %w", domain.ErrUpstream, err)
		}
	} else {
		if err := client.Do(req, resp); err != nil {
			return nil, fmt.Errorf("%w: %w", domain.ErrUpstream, err)
		}
	}

	if resp.StatusCode() != fasthttp.StatusOK {
		return nil, fmt.Errorf("%w: status %d: %s", domain.ErrUpstream, resp.StatusCode(), string(resp.Body()))
	}

	var result T
	if err := json.Unmarshal(resp.Body(), &result); err != nil {
		return nil, fmt.Errorf("%w: failed to decode response: %w", domain.ErrUpstream, err)
	}
	return &result, nil
}
