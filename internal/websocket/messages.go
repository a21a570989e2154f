package websocket

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/satriahrh/nature-translator/domain/entities"
)

// ErrInvalidRequest is returned for inbound messages that cannot be decoded
var ErrInvalidRequest = errors.New("invalid analysis request")

// AnalyzeMessage is the inbound message shape. Any other fields, such as the
// base64 audio blob browsers send, are accepted and ignored.
type AnalyzeMessage struct {
	Timestamp json.RawMessage `json:"timestamp"`
	Location  *string         `json:"location"`
}

// DecodeAnalysisRequest decodes one inbound text frame. The payload must be
// a JSON object; a non-string location is rejected. The whole payload is
// kept as the request's audio so the classifier sees everything the caller
// sent.
func DecodeAnalysisRequest(payload []byte) (entities.AnalysisRequest, error) {
	trimmed := bytes.TrimSpace(payload)
	if len(trimmed) == 0 || trimmed[0] != '{' {
		return entities.AnalysisRequest{}, fmt.Errorf("%w: expected a JSON object", ErrInvalidRequest)
	}

	var msg AnalyzeMessage
	if err := json.Unmarshal(trimmed, &msg); err != nil {
		return entities.AnalysisRequest{}, fmt.Errorf("%w: %v", ErrInvalidRequest, err)
	}

	return entities.AnalysisRequest{
		Timestamp: msg.Timestamp,
		Location:  msg.Location,
		Audio:     payload,
	}, nil
}
