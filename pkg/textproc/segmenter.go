package textproc

import (
	"context"
	"regexp"
	"strings"

	"marketing-assistant-be/pkg/apperror"
)

var sentenceEndRegex = regexp.MustCompile(`[.!?]\s+`)

// Segmenter splits text into token-bounded, overlapping segments.
type Segmenter struct {
	estimator TokenEstimator
}

func NewSegmenter(estimator TokenEstimator) *Segmenter {
	if estimator == nil {
		estimator = HeuristicEstimator{}
	}
	return &Segmenter{estimator: estimator}
}

// Segment returns [text] when it fits in maxTokens. Otherwise sentences are
// packed greedily; each new segment is seeded with the last overlapTokens
// words of the previous one. A sentence larger than maxTokens is split on
// word boundaries with no overlap between its pieces.
func (s *Segmenter) Segment(ctx context.Context, text string, maxTokens, overlapTokens int) ([]string, error) {
	if strings.TrimSpace(text) == "" {
		return nil, apperror.ErrEmptyInput
	}
	if maxTokens <= 0 {
		return nil, apperror.NewInputError("maxTokens", "must be positive")
	}
	if overlapTokens < 0 {
		overlapTokens = 0
	}

	if s.estimator.Estimate(ctx, text) <= maxTokens {
		return []string{text}, nil
	}

	var (
		segments      []string
		current       string
		currentTokens int
	)

	emit := func() {
		if current != "" {
			segments = append(segments, current)
		}
		current = ""
		currentTokens = 0
	}

	for _, sentence := range SplitSentences(text) {
		sentenceTokens := s.estimator.Estimate(ctx, sentence)

		if sentenceTokens > maxTokens {
			emit()
			segments = append(segments, hardSplit(sentence, maxTokens)...)
			continue
		}

		if current == "" {
			current, currentTokens = sentence, sentenceTokens
			continue
		}

		if currentTokens+sentenceTokens <= maxTokens {
			current += " " + sentence
			currentTokens += sentenceTokens
			continue
		}

		overlap := tailWords(current, overlapTokens)
		emit()

		if overlap != "" {
			seeded := overlap + " " + sentence
			if seededTokens := s.estimator.Estimate(ctx, seeded); seededTokens <= maxTokens {
				current, currentTokens = seeded, seededTokens
				continue
			}
		}
		current, currentTokens = sentence, sentenceTokens
	}
	emit()

	return segments, nil
}

// SplitSentences splits after '.', '!' or '?' followed by whitespace.
// Terminal punctuation stays with its sentence.
func SplitSentences(text string) []string {
	var sentences []string
	start := 0
	for _, loc := range sentenceEndRegex.FindAllStringIndex(text, -1) {
		if s := strings.TrimSpace(text[start : loc[0]+1]); s != "" {
			sentences = append(sentences, s)
		}
		start = loc[1]
	}
	if s := strings.TrimSpace(text[start:]); s != "" {
		sentences = append(sentences, s)
	}
	return sentences
}

// hardSplit packs words using the character heuristic so an oversized
// sentence does not cost one provider call per word.
func hardSplit(sentence string, maxTokens int) []string {
	var (
		parts []string
		words []string
		chars int
	)
	for _, word := range strings.Fields(sentence) {
		extra := len([]rune(word))
		if len(words) > 0 {
			extra++ // joining space
		}
		if len(words) > 0 && (chars+extra+3)/4 > maxTokens {
			parts = append(parts, strings.Join(words, " "))
			words, chars = nil, 0
			extra = len([]rune(word))
		}
		words = append(words, word)
		chars += extra
	}
	if len(words) > 0 {
		parts = append(parts, strings.Join(words, " "))
	}
	return parts
}

func tailWords(text string, n int) string {
	if n <= 0 {
		return ""
	}
	words := strings.Fields(text)
	if len(words) > n {
		words = words[len(words)-n:]
	}
	return strings.Join(words, " ")
}
