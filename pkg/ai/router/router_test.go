package router

import (
	"context"
	"errors"
	"testing"

	"marketing-assistant-be/pkg/llm"
	"marketing-assistant-be/pkg/specialist"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeLLM struct {
	reply   string
	err     error
	calls   int
	history []llm.Message
	options *llm.Options
}

func (f *fakeLLM) Chat(_ context.Context, history []llm.Message, opts ...llm.Option) (string, error) {
	f.calls++
	f.history = history
	f.options = llm.ApplyOptions(opts...)
	return f.reply, f.err
}

func (f *fakeLLM) Generate(ctx context.Context, prompt string, opts ...llm.Option) (string, error) {
	return f.Chat(ctx, []llm.Message{{Role: "user", Content: prompt}}, opts...)
}

func newRouter(provider llm.LLMProvider, shortCircuit bool) *Router {
	registry := specialist.BuildRegistry(nil, provider, nil)
	return NewRouter(provider, registry, Options{KeywordShortCircuit: shortCircuit}, nil)
}

func TestRoute(t *testing.T) {
	tests := []struct {
		name  string
		reply string
		err   error
		want  []string
	}{
		{name: "known ids", reply: `["google_ads", "copywriting"]`, want: []string{"google_ads", "copywriting"}},
		{name: "lower-cased before parsing", reply: `["Google_Ads"]`, want: []string{"google_ads"}},
		{name: "code fence", reply: "```json\n[\"quiz\"]\n```", want: []string{"quiz"}},
		{name: "none sentinel", reply: `["none"]`, want: []string{"none"}},
		{name: "empty array", reply: `[]`, want: []string{}},
		{name: "malformed json", reply: `google_ads please`, want: []string{"none"}},
		{name: "empty reply", reply: ``, want: []string{"none"}},
		{name: "provider failure", err: errors.New("timeout"), want: []string{"none"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			provider := &fakeLLM{reply: tt.reply, err: tt.err}
			got := newRouter(provider, false).Route(context.Background(), "query")
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestRouteUsesZeroTemperatureAndListsSpecialists(t *testing.T) {
	provider := &fakeLLM{reply: `["none"]`}
	newRouter(provider, false).Route(context.Background(), "hello")

	require.Len(t, provider.history, 2)
	assert.Contains(t, provider.history[0].Content, "facebook_ads, google_ads, copywriting, quiz")
	assert.Equal(t, "hello", provider.history[1].Content)
	assert.Equal(t, float64(0), provider.options.Temperature)
}

func TestRouteKeywordShortCircuit(t *testing.T) {
	provider := &fakeLLM{reply: `["google_ads"]`}
	r := newRouter(provider, true)

	assert.Equal(t, []string{"none"}, r.Route(context.Background(), "hello"))
	assert.Equal(t, 0, provider.calls)

	assert.Equal(t, []string{"google_ads"}, r.Route(context.Background(), "is ppc worth it"))
	assert.Equal(t, 1, provider.calls)
}

func TestIsGeneric(t *testing.T) {
	assert.True(t, IsGeneric(nil))
	assert.True(t, IsGeneric([]string{}))
	assert.True(t, IsGeneric([]string{"none"}))
	assert.True(t, IsGeneric([]string{"quiz", "none"}))
	assert.False(t, IsGeneric([]string{"quiz"}))
}

func TestParseResponseDeduplicates(t *testing.T) {
	ids, err := ParseResponse(`["quiz","QUIZ"," copywriting "]`)
	require.NoError(t, err)
	assert.Equal(t, []string{"quiz", "copywriting"}, ids)
}
