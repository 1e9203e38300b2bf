package summary

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/agencydesk/crm-sla-sweep/internal/infra/ai"
)

// LeadProjection is the narrow view of a lead handed to the model.
// Only fields the summary needs cross the provider boundary.
type LeadProjection struct {
	Name          string    `json:"name"`
	Status        string    `json:"status"`
	Score         int       `json:"score"`
	LastContactAt time.Time `json:"last_contact_at"`
}

// PipelineSummary is the structured result the model must produce.
type PipelineSummary struct {
	Headline   string   `json:"headline"`
	Highlights []string `json:"highlights"`
	Risks      []string `json:"risks"`
	NextSteps  []string `json:"next_steps"`
}

var ErrNoLeads = errors.New("no leads to summarize")

const systemPrompt = `You are a sales assistant for an insurance agency.
Summarize the lead pipeline you are given. Respond with a single JSON
object using exactly these keys: "headline" (one sentence),
"highlights" (array of strings), "risks" (array of strings),
"next_steps" (array of strings). Output JSON only, no prose.`

// Service produces AI-generated pipeline summaries.
type Service struct {
	client ai.Client
}

func NewService(client ai.Client) *Service {
	return &Service{client: client}
}

// PipelineSummary asks the provider to summarize the given leads.
// Provider and decode failures surface as the ai package's sentinel
// errors so the handler can distinguish configuration problems from
// transient ones.
func (s *Service) PipelineSummary(ctx context.Context, leads []LeadProjection) (*PipelineSummary, error) {
	if len(leads) == 0 {
		return nil, ErrNoLeads
	}

	prompt, err := buildPrompt(leads)
	if err != nil {
		return nil, fmt.Errorf("build prompt: %w", err)
	}

	resp, err := s.client.Generate(ctx, ai.GenerateRequest{
		SystemPrompt: systemPrompt,
		Prompt:       prompt,
	})
	if err != nil {
		return nil, err
	}

	result, err := ai.DecodeJSON(resp.Text, validateSummary)
	if err != nil {
		return nil, err
	}

	slog.DebugContext(ctx, "pipeline summary generated",
		slog.Int("leads", len(leads)),
		slog.String("model", resp.Model),
		slog.Int64("latency_ms", resp.LatencyMs),
	)
	return &result, nil
}

func buildPrompt(leads []LeadProjection) (string, error) {
	encoded, err := json.Marshal(leads)
	if err != nil {
		return "", err
	}

	var b strings.Builder
	b.WriteString("Current pipeline (")
	fmt.Fprintf(&b, "%d leads", len(leads))
	b.WriteString("):\n")
	b.Write(encoded)
	return b.String(), nil
}

func validateSummary(s PipelineSummary) error {
	if strings.TrimSpace(s.Headline) == "" {
		return errors.New("missing headline")
	}
	return nil
}
