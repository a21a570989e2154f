package usecase

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/satriahrh/nature-translator/domain/entities"
	"github.com/satriahrh/nature-translator/domain/repositories"
	"github.com/satriahrh/nature-translator/internal/metrics"
)

// AnalysisService turns classifier output into what the endpoints return
type AnalysisService struct {
	classifier repositories.Classifier
	metrics    *metrics.Metrics
	logger     *zap.Logger
	newID      func() string
}

// NewAnalysisService creates a new analysis service
func NewAnalysisService(
	classifier repositories.Classifier,
	m *metrics.Metrics,
	logger *zap.Logger,
) *AnalysisService {
	return &AnalysisService{
		classifier: classifier,
		metrics:    m,
		logger:     logger,
		newID:      uuid.NewString,
	}
}

// AnalyzeStream classifies one streaming request and annotates the result
// with a fresh id, the caller's timestamp and the caller's location.
func (s *AnalysisService) AnalyzeStream(ctx context.Context, req entities.AnalysisRequest) (*entities.ClassificationResult, error) {
	classification, err := s.classify(ctx, metrics.SourceStream, req.Audio)
	if err != nil {
		return nil, err
	}

	location := entities.DefaultLocation
	if req.Location != nil {
		location = *req.Location
	}

	return &entities.ClassificationResult{
		ID:             s.newID(),
		Timestamp:      req.Timestamp,
		Location:       location,
		Classification: classification,
	}, nil
}

// AnalyzeUpload classifies an uploaded file. The file content is never
// passed on; the classifier gets the no-audio signal.
func (s *AnalysisService) AnalyzeUpload(ctx context.Context) (entities.Classification, error) {
	return s.classify(ctx, metrics.SourceUpload, nil)
}

func (s *AnalysisService) classify(ctx context.Context, source string, audio []byte) (entities.Classification, error) {
	start := time.Now()
	classification, err := s.classifier.Classify(ctx, audio)
	s.metrics.ClassificationLatency.WithLabelValues(source).Observe(time.Since(start).Seconds())
	if err != nil {
		s.logger.Error("Classification failed",
			zap.String("source", source),
			zap.Error(err))
		return entities.Classification{}, fmt.Errorf("classification failed: %w", err)
	}

	s.metrics.ClassificationsTotal.WithLabelValues(source, classification.Animal).Inc()
	return classification, nil
}
