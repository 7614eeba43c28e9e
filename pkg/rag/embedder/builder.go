// Package embedder turns one logical text into a single fixed-length vector,
// averaging across segments when the text is too long for one provider call.
package embedder

import (
	"context"
	"math"
	"strings"

	"marketing-assistant-be/internal/pkg/logger"
	"marketing-assistant-be/pkg/apperror"
	"marketing-assistant-be/pkg/embedding"
	"marketing-assistant-be/pkg/textproc"

	"golang.org/x/sync/errgroup"
)

const (
	DefaultDimensions  = 1536
	defaultConcurrency = 8
)

type Config struct {
	Dimensions    int
	MaxTokens     int
	OverlapTokens int
	Concurrency   int
}

type Builder struct {
	provider   embedding.EmbeddingProvider
	segmenter  *textproc.Segmenter
	normalizer *textproc.Normalizer
	cfg        Config
	logger     logger.ILogger
}

func NewBuilder(
	provider embedding.EmbeddingProvider,
	segmenter *textproc.Segmenter,
	normalizer *textproc.Normalizer,
	cfg Config,
	log logger.ILogger,
) *Builder {
	if cfg.Dimensions <= 0 {
		cfg.Dimensions = DefaultDimensions
	}
	if cfg.MaxTokens <= 0 {
		cfg.MaxTokens = 8000
	}
	if cfg.Concurrency <= 0 {
		cfg.Concurrency = defaultConcurrency
	}
	if log == nil {
		log = logger.Nop()
	}
	return &Builder{
		provider:   provider,
		segmenter:  segmenter,
		normalizer: normalizer,
		cfg:        cfg,
		logger:     log,
	}
}

func (b *Builder) Dimensions() int {
	return b.cfg.Dimensions
}

// Embed normalizes and segments text, embeds every segment and returns the
// element-wise mean. One failed segment fails the whole call.
func (b *Builder) Embed(ctx context.Context, text string) ([]float32, error) {
	if strings.TrimSpace(text) == "" {
		return nil, apperror.ErrEmptyInput
	}

	normalized, truncated := b.normalizer.Normalize(text)
	if truncated {
		b.logger.Warn("EMBEDDER", "Text exceeds maximum length, truncating", map[string]interface{}{
			"original_length": len(text),
		})
	}

	segments, err := b.segmenter.Segment(ctx, normalized, b.cfg.MaxTokens, b.cfg.OverlapTokens)
	if err != nil {
		return nil, err
	}

	if len(segments) == 1 {
		return b.embedOne(ctx, segments[0])
	}

	b.logger.Info("EMBEDDER", "Text split into segments", map[string]interface{}{
		"segments": len(segments),
	})

	vectors := make([][]float32, len(segments))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(b.cfg.Concurrency)

	for i, segment := range segments {
		i, segment := i, segment
		g.Go(func() error {
			vec, err := b.embedOne(gctx, segment)
			if err != nil {
				return err
			}
			vectors[i] = vec
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		b.logger.Error("EMBEDDER", "Segment embedding failed", map[string]interface{}{
			"error":    err.Error(),
			"segments": len(segments),
		})
		return nil, err
	}

	return Mean(vectors), nil
}

func (b *Builder) embedOne(ctx context.Context, text string) ([]float32, error) {
	res, err := b.provider.Generate(ctx, text)
	if err != nil {
		return nil, apperror.NewProviderError("embedding", err)
	}
	if res == nil {
		return nil, &apperror.ShapeError{Expected: b.cfg.Dimensions, Reason: "provider returned no embedding"}
	}
	if err := Validate(res.Embedding.Values, b.cfg.Dimensions); err != nil {
		return nil, err
	}
	return res.Embedding.Values, nil
}

// Validate rejects vectors of the wrong length or with NaN/Inf elements.
func Validate(vec []float32, dims int) error {
	if len(vec) != dims {
		return &apperror.ShapeError{Expected: dims, Got: len(vec)}
	}
	for _, v := range vec {
		f := float64(v)
		if math.IsNaN(f) || math.IsInf(f, 0) {
			return &apperror.ShapeError{Expected: dims, Got: len(vec), Reason: "non-finite value"}
		}
	}
	return nil
}

// Mean is the element-wise arithmetic mean. All vectors must share one length.
func Mean(vectors [][]float32) []float32 {
	if len(vectors) == 0 {
		return nil
	}
	sums := make([]float64, len(vectors[0]))
	for _, vec := range vectors {
		for i, v := range vec {
			sums[i] += float64(v)
		}
	}
	out := make([]float32, len(sums))
	n := float64(len(vectors))
	for i, s := range sums {
		out[i] = float32(s / n)
	}
	return out
}
