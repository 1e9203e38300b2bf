package summary

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/agencydesk/crm-sla-sweep/internal/infra/ai"
)

type fakeClient struct {
	text string
	err  error
	got  ai.GenerateRequest
}

func (f *fakeClient) Generate(_ context.Context, req ai.GenerateRequest) (*ai.GenerateResponse, error) {
	f.got = req
	if f.err != nil {
		return nil, f.err
	}
	return &ai.GenerateResponse{Text: f.text, Model: "test-model"}, nil
}

func sampleLeads() []LeadProjection {
	return []LeadProjection{
		{Name: "Acme Logistics", Status: "qualified", Score: 82, LastContactAt: time.Date(2025, 5, 20, 10, 0, 0, 0, time.UTC)},
		{Name: "Harbor Freight Co", Status: "new", Score: 45, LastContactAt: time.Date(2025, 5, 28, 15, 30, 0, 0, time.UTC)},
	}
}

func TestPipelineSummary(t *testing.T) {
	client := &fakeClient{text: "```json\n" + `{
		"headline": "Two active leads, one hot",
		"highlights": ["Acme Logistics is qualified at score 82"],
		"risks": ["Harbor Freight Co has not been contacted recently"],
		"next_steps": ["Schedule a call with Acme"]
	}` + "\n```"}

	svc := NewService(client)
	result, err := svc.PipelineSummary(context.Background(), sampleLeads())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Headline != "Two active leads, one hot" {
		t.Errorf("headline = %q", result.Headline)
	}
	if len(result.Highlights) != 1 || len(result.Risks) != 1 {
		t.Errorf("unexpected summary shape: %+v", result)
	}

	if !strings.Contains(client.got.Prompt, "Acme Logistics") {
		t.Error("prompt must include the lead data")
	}
	if !strings.Contains(client.got.Prompt, "2 leads") {
		t.Error("prompt must state the lead count")
	}
	if client.got.SystemPrompt == "" {
		t.Error("system prompt must be set")
	}
}

func TestPipelineSummaryNoLeads(t *testing.T) {
	svc := NewService(&fakeClient{})
	if _, err := svc.PipelineSummary(context.Background(), nil); !errors.Is(err, ErrNoLeads) {
		t.Fatalf("expected ErrNoLeads, got %v", err)
	}
}

func TestPipelineSummaryProviderError(t *testing.T) {
	client := &fakeClient{err: ai.ErrProviderUnavailable}
	svc := NewService(client)
	if _, err := svc.PipelineSummary(context.Background(), sampleLeads()); !errors.Is(err, ai.ErrProviderUnavailable) {
		t.Fatalf("expected provider error passthrough, got %v", err)
	}
}

func TestPipelineSummaryInvalidOutput(t *testing.T) {
	client := &fakeClient{text: "I cannot produce JSON today."}
	svc := NewService(client)
	if _, err := svc.PipelineSummary(context.Background(), sampleLeads()); !errors.Is(err, ai.ErrInvalidOutput) {
		t.Fatalf("expected ErrInvalidOutput, got %v", err)
	}
}

func TestPipelineSummaryMissingHeadline(t *testing.T) {
	client := &fakeClient{text: `{"headline": "", "highlights": []}`}
	svc := NewService(client)
	if _, err := svc.PipelineSummary(context.Background(), sampleLeads()); !errors.Is(err, ai.ErrInvalidOutput) {
		t.Fatalf("expected ErrInvalidOutput on validator failure, got %v", err)
	}
}
