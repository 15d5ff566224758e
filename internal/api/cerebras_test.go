package api

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"scam-arena/internal/config"
	"scam-arena/internal/constants"
	"scam-arena/internal/domain"
	"scam-arena/internal/keyring"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T, baseURL string, keys ...string) *CerebrasClient {
	t.Helper()
	cfg := &config.Config{CerebrasBaseURL: baseURL, CerebrasModel: constants.DefaultModel}
	return NewCerebrasClient(cfg, keyring.New(keys, zerolog.Nop()), zerolog.Nop())
}

func writeChat(w http.ResponseWriter, content string) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(ChatResponse{
		Choices: []ChatChoice{{Message: Message{Role: RoleAssistant, Content: content}}},
	})
}

func TestChatSendsRequest(t *testing.T) {
	var got ChatRequest
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer csk-one", r.Header.Get("Authorization"))
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))

		body, err := io.ReadAll(r.Body)
		require.NoError(t, err)
		require.NoError(t, json.Unmarshal(body, &got))
		writeChat(w, "hi there")
	}))
	defer server.Close()

	client := newTestClient(t, server.URL, "csk-one")
	text, err := client.Chat(context.Background(), []Message{
		{Role: RoleSystem, Content: "be brief"},
		{Role: RoleUser, Content: "hello"},
		{Role: RoleAssistant, Content: "earlier"},
	}, ChatOptions{})
	require.NoError(t, err)
	assert.Equal(t, "hi there", text)

	assert.Equal(t, constants.DefaultModel, got.Model)
	assert.False(t, got.Stream)
	assert.Equal(t, 0.6, got.Temperature)
	assert.Equal(t, 0.95, got.TopP)
	assert.Equal(t, 4096, got.MaxCompletionTokens)
	require.Len(t, got.Messages, 3)
	assert.Equal(t, RoleSystem, got.Messages[0].Role)
	assert.Equal(t, RoleUser, got.Messages[1].Role)
	assert.Equal(t, RoleAssistant, got.Messages[2].Role)
}

func TestChatPassesOptions(t *testing.T) {
	var got ChatRequest
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewDecoder(r.Body).Decode(&got)
		writeChat(w, "ok")
	}))
	defer server.Close()

	client := newTestClient(t, server.URL, "csk-one")
	_, err := client.Chat(context.Background(), []Message{{Role: RoleUser, Content: "x"}},
		ChatOptions{Temperature: 0.8, MaxTokens: 2048})
	require.NoError(t, err)
	assert.Equal(t, 0.8, got.Temperature)
	assert.Equal(t, 2048, got.MaxCompletionTokens)
}

func TestChatRotatesKeysPerCall(t *testing.T) {
	var auths []string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		auths = append(auths, r.Header.Get("Authorization"))
		writeChat(w, "ok")
	}))
	defer server.Close()

	client := newTestClient(t, server.URL, "csk-a", "bogus", "csk-b")
	for range 3 {
		_, err := client.Chat(context.Background(), []Message{{Role: RoleUser, Content: "x"}}, ChatOptions{})
		require.NoError(t, err)
	}
	assert.Equal(t, []string{"Bearer csk-a", "Bearer csk-b", "Bearer csk-a"}, auths)
}

func TestChatEmptyChoices(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"choices": []}`))
	}))
	defer server.Close()

	client := newTestClient(t, server.URL, "csk-a")
	text, err := client.Chat(context.Background(), []Message{{Role: RoleUser, Content: "x"}}, ChatOptions{})
	require.NoError(t, err)
	assert.Equal(t, "", text)
}

func TestChatErrorStatusIsUpstream(t *testing.T) {
	var count atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		count.Add(1)
		w.WriteHeader(http.StatusTooManyRequests)
		w.Write([]byte("rate limited"))
	}))
	defer server.Close()

	client := newTestClient(t, server.URL, "csk-a")
	_, err := client.Chat(context.Background(), []Message{{Role: RoleUser, Content: "x"}}, ChatOptions{})
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrUpstream)
	assert.Contains(t, err.Error(), "429")
	assert.Contains(t, err.Error(), "rate limited")
	assert.Equal(t, int32(1), count.Load(), "no retry expected")
}

func TestChatWithoutKeysMakesNoRequest(t *testing.T) {
	var count atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		count.Add(1)
	}))
	defer server.Close()

	client := newTestClient(t, server.URL)
	_, err := client.Chat(context.Background(), []Message{{Role: RoleUser, Content: "x"}}, ChatOptions{})
	assert.ErrorIs(t, err, domain.ErrConfiguration)
	assert.Zero(t, count.Load())
}

func TestChatLogsTokenUsage(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(ChatResponse{
			Choices: []ChatChoice{{Message: Message{Role: RoleAssistant, Content: "ok"}}},
			Usage:   &ChatUsage{PromptTokens: 30, CompletionTokens: 12, TotalTokens: 42},
		})
	}))
	defer server.Close()

	var buf bytes.Buffer
	cfg := &config.Config{CerebrasBaseURL: server.URL, CerebrasModel: constants.DefaultModel}
	client := NewCerebrasClient(cfg, keyring.New([]string{"csk-a"}, zerolog.Nop()), zerolog.New(&buf))

	_, err := client.Chat(context.Background(), []Message{{Role: RoleUser, Content: "x"}}, ChatOptions{})
	require.NoError(t, err)

	var entry map[string]any
	require.NoError(t, json.Unmarshal(bytes.TrimSpace(buf.Bytes()), &entry))
	assert.Equal(t, "chat completion done", entry["message"])
	assert.Equal(t, float64(30), entry["prompt_tokens"])
	assert.Equal(t, float64(12), entry["completion_tokens"])
	assert.Equal(t, float64(42), entry["total_tokens"])
}
