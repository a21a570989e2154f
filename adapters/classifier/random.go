package classifier

import (
	"context"
	"math"
	"math/rand/v2"
	"sync"

	"go.uber.org/zap"

	"github.com/satriahrh/nature-translator/domain/entities"
	"github.com/satriahrh/nature-translator/domain/repositories"
)

const (
	defaultMinConfidence = 0.7
	defaultMaxConfidence = 0.99
)

// RandomClassifier is a stand-in for a real sound classifier. It never looks
// at the audio; it picks a catalog entry at random instead.
type RandomClassifier struct {
	catalog *entities.Catalog
	logger  *zap.Logger

	minConfidence float64
	maxConfidence float64

	mu  sync.Mutex
	rng *rand.Rand
}

// Option configures a RandomClassifier
type Option func(*RandomClassifier)

// WithSeed makes the classifier deterministic
func WithSeed(seed1, seed2 uint64) Option {
	return func(c *RandomClassifier) {
		c.rng = rand.New(rand.NewPCG(seed1, seed2))
	}
}

// WithConfidenceRange overrides the [lo, hi) confidence range.
// Ranges where lo >= hi are ignored.
func WithConfidenceRange(lo, hi float64) Option {
	return func(c *RandomClassifier) {
		if lo < hi {
			c.minConfidence = lo
			c.maxConfidence = hi
		}
	}
}

// NewRandomClassifier creates a new random classifier over the given catalog
func NewRandomClassifier(catalog *entities.Catalog, logger *zap.Logger, opts ...Option) repositories.Classifier {
	c := &RandomClassifier{
		catalog:       catalog,
		logger:        logger,
		minConfidence: defaultMinConfidence,
		maxConfidence: defaultMaxConfidence,
		rng:           rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64())),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Classify implements repositories.Classifier
func (c *RandomClassifier) Classify(ctx context.Context, audio []byte) (entities.Classification, error) {
	c.mu.Lock()
	category := c.rng.IntN(c.catalog.Len())
	index := c.rng.IntN(c.catalog.MessageCount(category))
	confidence := c.minConfidence + c.rng.Float64()*(c.maxConfidence-c.minConfidence)
	c.mu.Unlock()

	// Rounding can land exactly on the upper bound
	if confidence >= c.maxConfidence {
		confidence = math.Nextafter(c.maxConfidence, c.minConfidence)
	}

	animal, message := c.catalog.Message(category, index)

	c.logger.Debug("Classified audio",
		zap.Int("audioSize", len(audio)),
		zap.String("animal", animal),
		zap.Float64("confidence", confidence))

	return entities.Classification{
		Animal:     animal,
		Message:    message,
		Confidence: confidence,
	}, nil
}
