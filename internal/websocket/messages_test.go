package websocket

import (
	"errors"
	"fmt"
	"testing"
)

func TestDecodeAnalysisRequest(t *testing.T) {
	tests := []struct {
		name          string
		message       string
		wantTimestamp string
		wantLocation  *string
	}{
		{
			name:          "timestamp and location",
			message:       `{"timestamp": 100, "location": "Yard"}`,
			wantTimestamp: `100`,
			wantLocation:  strPtr("Yard"),
		},
		{
			name:          "no location",
			message:       `{"timestamp": 200}`,
			wantTimestamp: `200`,
		},
		{
			name:    "empty object",
			message: `{}`,
		},
		{
			name:          "browser payload with audio blob",
			message:       `{"audio_blob": "GkXfo59ChoEBQveBAULygQRC84EIQoKEd2VibUKHgQRChYEC", "timestamp": 1715000000000, "location": "Local Environment"}`,
			wantTimestamp: `1715000000000`,
			wantLocation:  strPtr("Local Environment"),
		},
		{
			name:          "string timestamp",
			message:       `{"timestamp": "10:30"}`,
			wantTimestamp: `"10:30"`,
		},
		{
			name:          "object timestamp",
			message:       `{"timestamp": {"ms": 5}}`,
			wantTimestamp: `{"ms": 5}`,
		},
		{
			name:          "null location treated as absent",
			message:       `{"timestamp": 1, "location": null}`,
			wantTimestamp: `1`,
		},
		{
			name:          "leading whitespace",
			message:       "  \n{\"timestamp\": 3}",
			wantTimestamp: `3`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, err := DecodeAnalysisRequest([]byte(tt.message))
			if err != nil {
				t.Fatalf("DecodeAnalysisRequest() error: %v", err)
			}

			if string(req.Timestamp) != tt.wantTimestamp {
				t.Errorf("Expected timestamp %q, got %q", tt.wantTimestamp, string(req.Timestamp))
			}

			switch {
			case tt.wantLocation == nil && req.Location != nil:
				t.Errorf("Expected no location, got %q", *req.Location)
			case tt.wantLocation != nil && req.Location == nil:
				t.Errorf("Expected location %q, got none", *tt.wantLocation)
			case tt.wantLocation != nil && *req.Location != *tt.wantLocation:
				t.Errorf("Expected location %q, got %q", *tt.wantLocation, *req.Location)
			}

			if string(req.Audio) != tt.message {
				t.Error("Request audio should carry the raw payload")
			}
		})
	}
}

func TestDecodeAnalysisRequest_Invalid(t *testing.T) {
	invalidMessages := []string{
		`{invalid json}`,
		`{"timestamp": }`,
		``,
		`   `,
		`null`,
		`[1, 2, 3]`,
		`42`,
		`"text"`,
		`{"location": 5}`,
		`{"location": ["Yard"]}`,
	}

	for i, msg := range invalidMessages {
		t.Run(fmt.Sprintf("invalid_%d", i), func(t *testing.T) {
			_, err := DecodeAnalysisRequest([]byte(msg))
			if !errors.Is(err, ErrInvalidRequest) {
				t.Errorf("Expected ErrInvalidRequest for %q, got %v", msg, err)
			}
		})
	}
}

func strPtr(s string) *string { return &s }
