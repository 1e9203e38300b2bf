package ai

import (
	"errors"
	"testing"
)

type testPayload struct {
	Overview string `json:"overview"`
	Count    int    `json:"count"`
}

func TestDecodeJSON(t *testing.T) {
	tests := []struct {
		name    string
		raw     string
		want    testPayload
		wantErr bool
	}{
		{
			name: "plain object",
			raw:  `{"overview": "steady", "count": 3}`,
			want: testPayload{Overview: "steady", Count: 3},
		},
		{
			name: "markdown fenced",
			raw:  "```json\n{\"overview\": \"steady\", \"count\": 3}\n```",
			want: testPayload{Overview: "steady", Count: 3},
		},
		{
			name: "surrounding prose",
			raw:  "Here is the summary you asked for:\n{\"overview\": \"steady\", \"count\": 3}\nLet me know if you need more.",
			want: testPayload{Overview: "steady", Count: 3},
		},
		{
			name: "line comments",
			raw:  "{\n\"overview\": \"steady\", // concise\n\"count\": 3\n}",
			want: testPayload{Overview: "steady", Count: 3},
		},
		{
			name: "braces inside string values",
			raw:  `{"overview": "risk {high} this week", "count": 1}`,
			want: testPayload{Overview: "risk {high} this week", Count: 1},
		},
		{
			name:    "no object at all",
			raw:     "I could not produce a summary.",
			wantErr: true,
		},
		{
			name:    "unbalanced braces",
			raw:     `{"overview": "steady", "count": 3`,
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := DecodeJSON[testPayload](tt.raw, nil)

			if tt.wantErr {
				if !errors.Is(err, ErrInvalidOutput) {
					t.Fatalf("expected ErrInvalidOutput, got %v", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tt.want {
				t.Errorf("got %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestDecodeJSONValidator(t *testing.T) {
	raw := `{"overview": "", "count": -1}`

	_, err := DecodeJSON[testPayload](raw, func(p testPayload) error {
		if p.Overview == "" {
			return errors.New("overview is required")
		}
		return nil
	})

	if !errors.Is(err, ErrInvalidOutput) {
		t.Errorf("expected ErrInvalidOutput from validator, got %v", err)
	}
}
