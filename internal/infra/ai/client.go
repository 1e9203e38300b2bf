package ai

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"net/http"
	"time"

	"github.com/agencydesk/crm-sla-sweep/internal/config"
)

// InlineDocument is a single document payload (e.g. a scanned policy
// PDF) attached inline to a generation request.
type InlineDocument struct {
	MIMEType string
	Data     []byte
}

// GenerateRequest holds the parameters for one generation call.
type GenerateRequest struct {
	SystemPrompt string
	Prompt       string
	Document     *InlineDocument
}

// GenerateResponse holds the raw text result of one generation call.
type GenerateResponse struct {
	Text      string
	Model     string
	LatencyMs int64
}

// Client provides access to the generative-text provider.
type Client interface {
	Generate(ctx context.Context, req GenerateRequest) (*GenerateResponse, error)
}

type httpClient struct {
	cfg  *config.AIConfig
	http *http.Client
}

func NewClient(cfg *config.AIConfig) Client {
	return &httpClient{
		cfg:  cfg,
		http: &http.Client{},
	}
}

type generateContentRequest struct {
	SystemInstruction *content  `json:"system_instruction,omitempty"`
	Contents          []content `json:"contents"`
}

type content struct {
	Role  string `json:"role,omitempty"`
	Parts []part `json:"parts"`
}

type part struct {
	Text       string      `json:"text,omitempty"`
	InlineData *inlineData `json:"inline_data,omitempty"`
}

type inlineData struct {
	MIMEType string `json:"mime_type"`
	Data     string `json:"data"`
}

type generateContentResponse struct {
	Candidates []struct {
		Content content `json:"content"`
	} `json:"candidates"`
	ModelVersion string `json:"modelVersion"`
}

func (c *httpClient) Generate(ctx context.Context, req GenerateRequest) (*GenerateResponse, error) {
	if !c.cfg.Enabled() {
		return nil, ErrMissingAPIKey
	}

	start := time.Now()

	ctx, cancel := context.WithTimeout(ctx, time.Duration(c.cfg.TimeoutMs)*time.Millisecond)
	defer cancel()

	body := buildRequestBody(req)

	var lastErr error
	attempts := 1 + c.cfg.MaxRetries

	for i := 0; i < attempts; i++ {
		if i > 0 {
			backoff := time.Duration(math.Pow(2, float64(i-1))) * 200 * time.Millisecond
			select {
			case <-ctx.Done():
				return nil, fmt.Errorf("%w: %v", ErrTimeout, lastErr)
			case <-time.After(backoff):
			}
		}

		resp, err := c.doRequest(ctx, body)
		if err == nil {
			return &GenerateResponse{
				Text:      resp.text(),
				Model:     resp.ModelVersion,
				LatencyMs: time.Since(start).Milliseconds(),
			}, nil
		}
		lastErr = err

		// Only provider-side failures are worth another attempt. A 4xx
		// comes back identical no matter how often it is sent, and
		// context expiry is terminal.
		if !errors.Is(err, ErrProviderUnavailable) || ctx.Err() != nil {
			break
		}
	}

	if ctx.Err() != nil {
		return nil, fmt.Errorf("%w: %v", ErrTimeout, lastErr)
	}
	return nil, lastErr
}

func buildRequestBody(req GenerateRequest) *generateContentRequest {
	parts := []part{{Text: req.Prompt}}
	if req.Document != nil {
		parts = append(parts, part{
			InlineData: &inlineData{
				MIMEType: req.Document.MIMEType,
				Data:     base64.StdEncoding.EncodeToString(req.Document.Data),
			},
		})
	}

	body := &generateContentRequest{
		Contents: []content{{Role: "user", Parts: parts}},
	}
	if req.SystemPrompt != "" {
		body.SystemInstruction = &content{Parts: []part{{Text: req.SystemPrompt}}}
	}
	return body
}

func (c *httpClient) doRequest(ctx context.Context, body *generateContentRequest) (*generateContentResponse, error) {
	payload, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	url := fmt.Sprintf("%s/v1beta/models/%s:generateContent", c.cfg.BaseURL, c.cfg.Model)

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("x-goog-api-key", c.cfg.APIKey)

	resp, err := c.http.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrProviderUnavailable, err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		if resp.StatusCode >= 500 {
			return nil, fmt.Errorf("%w: status %d", ErrProviderUnavailable, resp.StatusCode)
		}
		return nil, fmt.Errorf("unexpected status code: %d", resp.StatusCode)
	}

	var parsed generateContentResponse
	if err := json.Unmarshal(respBody, &parsed); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidOutput, err)
	}
	if len(parsed.Candidates) == 0 {
		return nil, fmt.Errorf("%w: empty candidate list", ErrInvalidOutput)
	}

	return &parsed, nil
}

func (r *generateContentResponse) text() string {
	if len(r.Candidates) == 0 {
		return ""
	}
	var out string
	for _, p := range r.Candidates[0].Content.Parts {
		out += p.Text
	}
	return out
}

// IsConfigError reports whether err is a caller-fixable configuration
// problem rather than a transient provider failure.
func IsConfigError(err error) bool {
	return errors.Is(err, ErrMissingAPIKey)
}
