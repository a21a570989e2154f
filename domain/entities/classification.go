package entities

import "encoding/json"

// DefaultLocation is reported when the caller does not say where it is listening
const DefaultLocation = "Nearby"

// Classification is what a classifier says about a piece of audio
type Classification struct {
	Animal     string  `json:"animal"`
	Message    string  `json:"message"`
	Confidence float64 `json:"confidence"`
}

// AnalysisRequest is one decoded streaming request.
//
// Timestamp holds the caller's raw JSON value so it can be echoed back
// byte for byte; nil means the field was absent. Location is nil when the
// caller did not send one. Audio is the opaque request payload handed to
// the classifier.
type AnalysisRequest struct {
	Timestamp json.RawMessage
	Location  *string
	Audio     []byte
}

// ClassificationResult is the enriched result sent back on the stream.
// A nil Timestamp is encoded as JSON null.
type ClassificationResult struct {
	ID        string          `json:"id"`
	Timestamp json.RawMessage `json:"timestamp"`
	Location  string          `json:"location"`
	Classification
}
