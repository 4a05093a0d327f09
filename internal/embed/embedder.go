// Package embed turns free-text documents into fixed-length normalized
// vectors. Two interchangeable strategies exist: a dense sentence-embedding
// service and a sparse TF-IDF fallback. The strategy is negotiated once at
// startup and never changes mid-run, so similarity scores stay comparable.
package embed

import (
	"context"
	"time"

	"go.uber.org/zap"
)

// Strategy tags the embedding scheme selected for the run.
type Strategy string

const (
	// StrategyDense uses a pretrained sentence-embedding model behind a
	// local HTTP sidecar.
	StrategyDense Strategy = "dense"
	// StrategySparse is the TF-IDF fallback with a vocabulary fit jointly
	// over both document batches.
	StrategySparse Strategy = "sparse"
)

// Embedder produces L2-normalized document vectors.
type Embedder interface {
	// Strategy reports which scheme this embedder implements.
	Strategy() Strategy

	// EmbedPair embeds two batches in one shared vector space, so a left
	// row and a right row are directly comparable by cosine similarity.
	EmbedPair(ctx context.Context, left, right []string) (l, r [][]float64, err error)

	// Embed embeds documents in the model's own space. Only the dense
	// strategy supports it; the sparse fallback has no meaning outside a
	// jointly fitted corpus.
	Embed(ctx context.Context, texts []string) ([][]float64, error)
}

// Config selects and parameterizes the embedding backend.
type Config struct {
	Endpoint string
	Model    string
	Timeout  time.Duration
}

// Select negotiates the embedding strategy for the process. It probes the
// dense service once; when the probe fails the sparse fallback is selected
// permanently for this run, logged a single time, never retried per call.
func Select(ctx context.Context, cfg Config, log *zap.Logger) Embedder {
	if cfg.Endpoint != "" {
		client := NewClient(cfg.Endpoint, cfg.Model, cfg.Timeout)
		if err := client.Health(ctx); err == nil {
			log.Info("embedding strategy selected",
				zap.String("strategy", string(StrategyDense)),
				zap.String("endpoint", cfg.Endpoint),
				zap.String("model", cfg.Model),
			)
			return client
		} else {
			log.Warn("embedding service unavailable, falling back to tf-idf",
				zap.String("endpoint", cfg.Endpoint),
				zap.Error(err),
			)
		}
	} else {
		log.Info("no embedding endpoint configured, using tf-idf")
	}

	return NewSparse()
}
