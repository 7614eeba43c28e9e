package textproc

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalize(t *testing.T) {
	tests := []struct {
		name  string
		opts  func(*NormalizeOptions)
		input string
		want  string
	}{
		{
			name:  "collapses whitespace",
			input: "  Hello \n\t world  ",
			want:  "Hello world",
		},
		{
			name:  "case folding protects domain terms",
			opts:  func(o *NormalizeOptions) { o.PreserveCase = false },
			input: "Our Photography Studio runs Google Ads CAMPAIGNS",
			want:  "our Photography Studio runs Google Ads campaigns",
		},
		{
			name:  "number stripping protects domain terms",
			opts:  func(o *NormalizeOptions) { o.PreserveNumbers = false },
			input: "We booked 25 clients in 2024 via P2P",
			want:  "We booked clients in via P2P",
		},
		{
			name:  "punctuation stripping keeps sentence marks and currency",
			opts:  func(o *NormalizeOptions) { o.PreservePunctuation = false },
			input: "Hello (world) ~ $50% off!",
			want:  "Hello world $50% off!",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			opts := DefaultNormalizeOptions()
			if tt.opts != nil {
				tt.opts(&opts)
			}
			got, truncated := NewNormalizer(opts).Normalize(tt.input)
			assert.Equal(t, tt.want, got)
			assert.False(t, truncated)
		})
	}
}

func TestNormalizeTruncates(t *testing.T) {
	opts := DefaultNormalizeOptions()
	opts.MaxTextLength = 5

	got, truncated := NewNormalizer(opts).Normalize("abcdefgh")
	assert.Equal(t, "abcde", got)
	assert.True(t, truncated)
}

func TestPlaceholderIsLettersOnly(t *testing.T) {
	assert.Equal(t, "__dterma__", placeholder(0))
	assert.Equal(t, "__dtermbb__", placeholder(27))
}
