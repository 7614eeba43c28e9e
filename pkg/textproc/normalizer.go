package textproc

import (
	"regexp"
	"sort"
	"strings"
	"unicode/utf8"
)

// DefaultDomainTerms are protected from case folding and stripping during normalization.
var DefaultDomainTerms = []string{
	"Google Ads", "Facebook Ads", "Instagram Ads", "Meta Ads", "Email List",
	"Photography", "Photographer", "Studio", "Portrait", "Wedding", "Session",
	"Client", "Booking", "Package", "Pricing", "Marketing", "Social Media",
	"Website", "SEO", "Analytics", "ROI", "Conversion", "Lead", "Funnel",
	"Google", "Facebook", "Instagram", "Meta", "Email",
	"Photography to Profits", "P2P",
}

const DefaultMaxTextLength = 1000000

var (
	whitespaceRegex  = regexp.MustCompile(`\s+`)
	punctuationRegex = regexp.MustCompile(`[^\w\s$%.,!?]`)
	numberRegex      = regexp.MustCompile(`\d+`)
)

type NormalizeOptions struct {
	PreserveCase        bool
	PreserveNumbers     bool
	PreservePunctuation bool
	DomainTerms         []string
	MaxTextLength       int
}

func DefaultNormalizeOptions() NormalizeOptions {
	return NormalizeOptions{
		PreserveCase:        true,
		PreserveNumbers:     true,
		PreservePunctuation: true,
		DomainTerms:         DefaultDomainTerms,
		MaxTextLength:       DefaultMaxTextLength,
	}
}

type Normalizer struct {
	opts  NormalizeOptions
	terms []string
}

func NewNormalizer(opts NormalizeOptions) *Normalizer {
	if opts.MaxTextLength <= 0 {
		opts.MaxTextLength = DefaultMaxTextLength
	}

	// Longest first so "Google Ads" wins over "Google"
	terms := make([]string, 0, len(opts.DomainTerms))
	for _, t := range opts.DomainTerms {
		if t != "" {
			terms = append(terms, t)
		}
	}
	sort.SliceStable(terms, func(i, j int) bool {
		return len(terms[i]) > len(terms[j])
	})

	return &Normalizer{opts: opts, terms: terms}
}

// Normalize collapses whitespace and applies the configured stripping rules.
// Domain terms are matched case-sensitively and come back unchanged.
// The second return value reports whether the input was truncated.
func (n *Normalizer) Normalize(text string) (string, bool) {
	truncated := false
	if utf8.RuneCountInString(text) > n.opts.MaxTextLength {
		text = string([]rune(text)[:n.opts.MaxTextLength])
		truncated = true
	}

	processed := text
	var restore []string // placeholder, term pairs for strings.NewReplacer
	for i, term := range n.terms {
		if !strings.Contains(processed, term) {
			continue
		}
		ph := placeholder(i)
		processed = strings.ReplaceAll(processed, term, ph)
		restore = append(restore, ph, term)
	}

	if !n.opts.PreserveCase {
		processed = strings.ToLower(processed)
	}

	processed = strings.TrimSpace(whitespaceRegex.ReplaceAllString(processed, " "))

	if !n.opts.PreservePunctuation {
		processed = punctuationRegex.ReplaceAllString(processed, " ")
	}

	if !n.opts.PreserveNumbers {
		processed = numberRegex.ReplaceAllString(processed, " ")
	}

	if len(restore) > 0 {
		processed = strings.NewReplacer(restore...).Replace(processed)
	}

	return strings.TrimSpace(whitespaceRegex.ReplaceAllString(processed, " ")), truncated
}

// placeholder encodes the index in lowercase letters only, so the token
// survives case folding, number stripping and punctuation stripping.
func placeholder(i int) string {
	var b strings.Builder
	b.WriteString("__dterm")
	for {
		b.WriteByte(byte('a' + i%26))
		i /= 26
		if i == 0 {
			break
		}
	}
	b.WriteString("__")
	return b.String()
}
