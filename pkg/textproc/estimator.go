package textproc

import (
	"context"
	"fmt"
	"hash/fnv"
	"unicode/utf8"

	"marketing-assistant-be/internal/pkg/logger"
	"marketing-assistant-be/pkg/embedding"

	lru "github.com/hashicorp/golang-lru/v2"
)

// TokenEstimator never fails: implementations fall back to the character heuristic.
type TokenEstimator interface {
	Estimate(ctx context.Context, text string) int
}

// HeuristicTokens is ceil(characters / 4).
func HeuristicTokens(text string) int {
	n := utf8.RuneCountInString(text)
	return (n + 3) / 4
}

type HeuristicEstimator struct{}

func (HeuristicEstimator) Estimate(_ context.Context, text string) int {
	return HeuristicTokens(text)
}

// ProviderEstimator asks the embedding provider for token usage and caches
// the answers. Any provider failure degrades to the heuristic.
type ProviderEstimator struct {
	counter embedding.TokenCounter
	cache   *lru.Cache[uint64, int]
	logger  logger.ILogger
}

func NewProviderEstimator(counter embedding.TokenCounter, cacheSize int, log logger.ILogger) (*ProviderEstimator, error) {
	if cacheSize <= 0 {
		cacheSize = 4096
	}
	cache, err := lru.New[uint64, int](cacheSize)
	if err != nil {
		return nil, fmt.Errorf("create token cache: %w", err)
	}
	if log == nil {
		log = logger.Nop()
	}
	return &ProviderEstimator{counter: counter, cache: cache, logger: log}, nil
}

func (e *ProviderEstimator) Estimate(ctx context.Context, text string) (tokens int) {
	key := hashText(text)
	if n, ok := e.cache.Get(key); ok {
		return n
	}

	defer func() {
		if r := recover(); r != nil {
			e.logger.Warn("TOKENS", "Token counter panicked, using heuristic", map[string]interface{}{"panic": fmt.Sprint(r)})
			tokens = HeuristicTokens(text)
		}
	}()

	n, err := e.counter.CountTokens(ctx, text)
	if err != nil {
		e.logger.Debug("TOKENS", "Provider token count failed, using heuristic", map[string]interface{}{
			"error":  err.Error(),
			"length": len(text),
		})
		return HeuristicTokens(text)
	}

	e.cache.Add(key, n)
	return n
}

func hashText(text string) uint64 {
	h := fnv.New64a()
	h.Write([]byte(text))
	return h.Sum64()
}
