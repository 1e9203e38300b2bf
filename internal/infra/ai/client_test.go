package ai

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/agencydesk/crm-sla-sweep/internal/config"
)

func testConfig(baseURL string) *config.AIConfig {
	return &config.AIConfig{
		BaseURL:    baseURL,
		APIKey:     "test-key",
		Model:      "test-model",
		TimeoutMs:  2000,
		MaxRetries: 0,
	}
}

func TestGenerateMissingAPIKey(t *testing.T) {
	client := NewClient(&config.AIConfig{BaseURL: "http://localhost:0", Model: "m", TimeoutMs: 100})

	_, err := client.Generate(context.Background(), GenerateRequest{Prompt: "hello"})
	if !errors.Is(err, ErrMissingAPIKey) {
		t.Fatalf("expected ErrMissingAPIKey, got %v", err)
	}
	if !IsConfigError(err) {
		t.Error("missing key should classify as a config error")
	}
}

func TestGenerateSuccess(t *testing.T) {
	var gotPath, gotKey string
	var gotBody generateContentRequest

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotKey = r.Header.Get("x-goog-api-key")
		if err := json.NewDecoder(r.Body).Decode(&gotBody); err != nil {
			t.Errorf("failed to decode request body: %v", err)
		}

		resp := map[string]any{
			"candidates": []map[string]any{
				{"content": map[string]any{"parts": []map[string]any{{"text": "summary text"}}}},
			},
			"modelVersion": "test-model-001",
		}
		if err := json.NewEncoder(w).Encode(resp); err != nil {
			t.Errorf("failed to encode response: %v", err)
		}
	}))
	defer server.Close()

	client := NewClient(testConfig(server.URL))

	resp, err := client.Generate(context.Background(), GenerateRequest{
		SystemPrompt: "You summarize insurance pipelines.",
		Prompt:       "summarize",
		Document:     &InlineDocument{MIMEType: "application/pdf", Data: []byte("fake-pdf")},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if resp.Text != "summary text" {
		t.Errorf("text = %q, want %q", resp.Text, "summary text")
	}
	if resp.Model != "test-model-001" {
		t.Errorf("model = %q, want %q", resp.Model, "test-model-001")
	}
	if gotPath != "/v1beta/models/test-model:generateContent" {
		t.Errorf("path = %q", gotPath)
	}
	if gotKey != "test-key" {
		t.Errorf("api key header = %q", gotKey)
	}
	if gotBody.SystemInstruction == nil {
		t.Error("expected system instruction in request")
	}
	if len(gotBody.Contents) != 1 || len(gotBody.Contents[0].Parts) != 2 {
		t.Fatalf("expected one content with text + inline document, got %+v", gotBody.Contents)
	}
	if gotBody.Contents[0].Parts[1].InlineData == nil {
		t.Error("expected inline document part")
	}
}

func TestGenerateServerError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	client := NewClient(testConfig(server.URL))

	_, err := client.Generate(context.Background(), GenerateRequest{Prompt: "summarize"})
	if !errors.Is(err, ErrProviderUnavailable) {
		t.Fatalf("expected ErrProviderUnavailable, got %v", err)
	}
}

func TestGenerateNoRetryOnClientError(t *testing.T) {
	var calls int
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		calls++
		w.WriteHeader(http.StatusBadRequest)
	}))
	defer server.Close()

	cfg := testConfig(server.URL)
	cfg.MaxRetries = 3
	client := NewClient(cfg)

	_, err := client.Generate(context.Background(), GenerateRequest{Prompt: "summarize"})
	if err == nil {
		t.Fatal("expected error on 400 response")
	}
	if errors.Is(err, ErrProviderUnavailable) {
		t.Errorf("a 4xx must not classify as provider unavailable: %v", err)
	}
	if calls != 1 {
		t.Errorf("4xx responses must not be retried, got %d attempts", calls)
	}
}

func TestGenerateRetriesServerError(t *testing.T) {
	var calls int
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		calls++
		if calls < 3 {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		resp := map[string]any{
			"candidates": []map[string]any{
				{"content": map[string]any{"parts": []map[string]any{{"text": "recovered"}}}},
			},
		}
		if err := json.NewEncoder(w).Encode(resp); err != nil {
			t.Errorf("failed to encode response: %v", err)
		}
	}))
	defer server.Close()

	cfg := testConfig(server.URL)
	cfg.MaxRetries = 3
	cfg.TimeoutMs = 5000
	client := NewClient(cfg)

	resp, err := client.Generate(context.Background(), GenerateRequest{Prompt: "summarize"})
	if err != nil {
		t.Fatalf("unexpected error after recovery: %v", err)
	}
	if resp.Text != "recovered" {
		t.Errorf("text = %q, want %q", resp.Text, "recovered")
	}
	if calls != 3 {
		t.Errorf("expected 3 attempts, got %d", calls)
	}
}

func TestGenerateEmptyCandidates(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		if _, err := w.Write([]byte(`{"candidates": []}`)); err != nil {
			t.Errorf("failed to write response: %v", err)
		}
	}))
	defer server.Close()

	client := NewClient(testConfig(server.URL))

	_, err := client.Generate(context.Background(), GenerateRequest{Prompt: "summarize"})
	if !errors.Is(err, ErrInvalidOutput) {
		t.Fatalf("expected ErrInvalidOutput, got %v", err)
	}
}
