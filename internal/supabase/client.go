// Package supabase talks to a Supabase project through its PostgREST API.
package supabase

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"scam-arena/internal/config"
	"scam-arena/internal/constants"
	"scam-arena/internal/domain"

	"github.com/rs/zerolog"
	"github.com/valyala/fasthttp"
)

// postgres invalid_text_representation, e.g. a malformed uuid in a filter
const codeInvalidText = "22P02"

// StatusError is a non-2xx PostgREST response. It matches domain.ErrUpstream.
type StatusError struct {
	Method  string
	Path    string
	Status  int
	Code    string
	Message string
	Body    string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("supabase %s %s: status %d: %s", e.Method, e.Path, e.Status, e.Body)
}

func (e *StatusError) Unwrap() error { return domain.ErrUpstream }

// rejectedFilter reports whether the store refused the request's filter
// value rather than failing on its own.
func rejectedFilter(err error) bool {
	var serr *StatusError
	if !errors.As(err, &serr) {
		return false
	}
	return serr.Code == codeInvalidText || serr.Status == fasthttp.StatusBadRequest
}

type Client struct {
	baseURL    string
	anonKey    string
	serviceKey string
	client     *fasthttp.Client
	logger     zerolog.Logger
}

func NewClient(cfg *config.Config, logger zerolog.Logger) *Client {
	return &Client{
		baseURL:    strings.TrimRight(cfg.SupabaseURL, "/"),
		anonKey:    cfg.SupabaseAnonKey,
		serviceKey: cfg.SupabaseServiceKey,
		client: &fasthttp.Client{
			MaxConnsPerHost:     100,
			ReadTimeout:         10 * time.Second,
			WriteTimeout:        10 * time.Second,
			MaxIdleConnDuration: 1 * time.Minute,
		},
		logger: logger,
	}
}

// adminKey returns the service role key every write needs.
func (c *Client) adminKey() (string, error) {
	if c.baseURL == "" || c.serviceKey == "" {
		return "", fmt.Errorf("%w: Supabase not configured, set SUPABASE_URL and SUPABASE_SERVICE_ROLE_KEY",
			domain.ErrConfiguration)
	}
	return c.serviceKey, nil
}

// readKey prefers the public key and falls back to the service key.
func (c *Client) readKey() (string, error) {
	if c.baseURL != "" && c.anonKey != "" {
		return c.anonKey, nil
	}
	return c.adminKey()
}

type request struct {
	method string
	path   string
	query  url.Values
	body   any
	key    string
	// ask PostgREST to echo the affected rows
	returnRows bool
}

func (c *Client) do(ctx context.Context, r request, out any) error {
	req := fasthttp.AcquireRequest()
	resp := fasthttp.AcquireResponse()
	defer fasthttp.ReleaseRequest(req)
	defer fasthttp.ReleaseResponse(resp)

	uri := c.baseURL + "/rest/v1/" + r.path
	if len(r.query) > 0 {
		uri += "?" + r.query.Encode()
	}
	req.SetRequestURI(uri)
	req.Header.SetMethod(r.method)
	req.Header.Set("apikey", r.key)
	req.Header.Set("Authorization", "Bearer "+r.key)
	req.Header.Set("Accept", "application/json")
	if r.returnRows {
		req.Header.Set("Prefer", "return=representation")
	}
	if r.body != nil {
		payload, err := json.Marshal(r.body)
		if err != nil {
			return fmt.Errorf("failed to encode request: %w", err)
		}
		req.Header.SetContentType("application/json")
		req.SetBody(payload)
	}

	deadline, ok := ctx.Deadline()
	if !ok {
		deadline = time.Now().Add(constants.StoreAPITimeout)
	}
	if err := c.client.DoDeadline(req, resp, deadline); err != nil {
		c.logger.Error().Err(err).Str("method", r.method).Str("path", r.path).Msg("supabase request failed")
		return fmt.Errorf("%w: supabase %s %s: %w", domain.ErrUpstream, r.method, r.path, err)
	}

	status := resp.StatusCode()
	if status < 200 || status >= 300 {
		serr := &StatusError{Method: r.method, Path: r.path, Status: status, Body: string(resp.Body())}
		var pgErr struct {
			Code    string `json:"code"`
			Message string `json:"message"`
		}
		if json.Unmarshal(resp.Body(), &pgErr) == nil {
			serr.Code, serr.Message = pgErr.Code, pgErr.Message
		}
		c.logger.Error().
			Int("status", status).
			Str("code", serr.Code).
			Str("method", r.method).
			Str("path", r.path).
			Msg("supabase returned error status")
		return serr
	}

	if out == nil || len(resp.Body()) == 0 {
		return nil
	}
	if err := json.Unmarshal(resp.Body(), out); err != nil {
		return fmt.Errorf("%w: failed to decode supabase response: %w", domain.ErrUpstream, err)
	}
	return nil
}

func eq(v string) string {
	return "eq." + v
}
