package specialist

import (
	"context"
	"errors"
	"testing"

	"marketing-assistant-be/pkg/llm"
	"marketing-assistant-be/pkg/store"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeLLM struct {
	reply    string
	err      error
	panicMsg string
	history  []llm.Message
	options  *llm.Options
}

func (f *fakeLLM) Chat(_ context.Context, history []llm.Message, opts ...llm.Option) (string, error) {
	if f.panicMsg != "" {
		panic(f.panicMsg)
	}
	f.history = history
	f.options = llm.ApplyOptions(opts...)
	return f.reply, f.err
}

func (f *fakeLLM) Generate(ctx context.Context, prompt string, opts ...llm.Option) (string, error) {
	return f.Chat(ctx, []llm.Message{{Role: "user", Content: prompt}}, opts...)
}

func testDef() Definition {
	return Definition{
		ID:           "google_ads",
		Name:         "Google Ads Expert",
		SystemPrompt: "PROMPT",
		Keywords:     []string{"Google Ads", "PPC"},
	}
}

func TestCanHandle(t *testing.T) {
	e := NewExpert(testDef(), &fakeLLM{}, nil)

	assert.True(t, e.CanHandle("How do I set up GOOGLE ADS?"))
	assert.True(t, e.CanHandle("is ppc worth it"))
	assert.False(t, e.CanHandle("hello"))
}

func TestAnswerBuildsMessagesAndSources(t *testing.T) {
	provider := &fakeLLM{reply: "Use exact match keywords."}
	e := NewExpert(testDef(), provider, nil)

	c := &store.Context{
		RelevantDocuments: []store.Document{{Content: "doc one"}, {Content: "doc two"}},
		ScrapedPages:      []store.ScrapedPage{{URL: "https://example.com/pricing", Content: "pricing page"}},
		PriorTurns: []store.Turn{
			{Role: store.RoleUser, Content: "earlier question"},
			{Role: store.RoleAssistant, Content: "earlier answer"},
		},
	}

	res := e.Answer(context.Background(), "What keywords?", c)

	assert.Empty(t, res.Error)
	assert.Equal(t, "Use exact match keywords.", res.Content)
	assert.Equal(t, []string{store.SourceDatabase, "https://example.com/pricing"}, res.Sources)

	require.Len(t, provider.history, 4)
	assert.Equal(t, "system", provider.history[0].Role)
	assert.Equal(t,
		"PROMPT\n\nRelevant documents:\ndoc one\n---\ndoc two\n\nScraped content:\nURL: https://example.com/pricing\nTitle: N/A\nContent: pricing page",
		provider.history[0].Content)
	assert.Equal(t, "earlier question", provider.history[1].Content)
	assert.Equal(t, "earlier answer", provider.history[2].Content)
	assert.Equal(t, llm.Message{Role: "user", Content: "What keywords?"}, provider.history[3])
	assert.Equal(t, 0.7, provider.options.Temperature)
}

func TestAnswerNeverReturnsProviderErrors(t *testing.T) {
	res := NewExpert(testDef(), &fakeLLM{err: errors.New("timeout")}, nil).
		Answer(context.Background(), "q", &store.Context{})

	assert.Equal(t, "", res.Content)
	assert.Contains(t, res.Error, "timeout")

	res = NewExpert(testDef(), &fakeLLM{panicMsg: "nil map"}, nil).
		Answer(context.Background(), "q", nil)
	assert.NotEmpty(t, res.Error)
}

func TestRegistry(t *testing.T) {
	r := BuildRegistry(nil, &fakeLLM{}, nil)

	assert.Equal(t, []string{"facebook_ads", "google_ads", "copywriting", "quiz"}, r.IDs())

	s, ok := r.Get(" Google_Ads ")
	require.True(t, ok)
	assert.Equal(t, "Google Ads Expert", s.Name())

	_, ok = r.Get("none")
	assert.False(t, ok)

	matched := r.Matching("Build me a quiz funnel")
	require.Len(t, matched, 1)
	assert.Equal(t, "quiz", matched[0].ID())
}

func TestParseDefinitions(t *testing.T) {
	raw := []byte(`
specialists:
  - id: Pricing
    name: Pricing Expert
    system_prompt: You price photography packages.
    keywords: [price, package]
    temperature: 0.2
`)
	defs, err := ParseDefinitions(raw)
	require.NoError(t, err)
	require.Len(t, defs, 1)
	assert.Equal(t, "pricing", defs[0].ID)
	require.NotNil(t, defs[0].Temperature)
	assert.Equal(t, 0.2, *defs[0].Temperature)

	_, err = ParseDefinitions([]byte("specialists:\n  - id: a\n"))
	assert.Error(t, err)

	_, err = ParseDefinitions([]byte("specialists:\n  - id: a\n    system_prompt: x\n  - id: A\n    system_prompt: y\n"))
	assert.Error(t, err)
}
