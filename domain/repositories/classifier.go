package repositories

import (
	"context"

	"github.com/satriahrh/nature-translator/domain/entities"
)

// Classifier abstracts any animal sound classifier
type Classifier interface {
	// Classify labels a piece of audio. A nil audio slice means no audio
	// was supplied, which implementations must accept.
	Classify(ctx context.Context, audio []byte) (entities.Classification, error)
}
