package embedding

import (
	"errors"
	"fmt"

	"github.com/kailas-cloud/tripdex/internal/domain"
	"github.com/kailas-cloud/tripdex/internal/metrics"
)

// encodingError tags err with domain.ErrEncoding unless it already carries it.
func encodingError(err error) error {
	if errors.Is(err, domain.ErrEncoding) {
		return err
	}
	return fmt.Errorf("%w: %w", domain.ErrEncoding, err)
}

func recordError(provider, model, kind string) {
	metrics.EmbeddingErrorsTotal.WithLabelValues(provider, model, kind).Inc()
}
