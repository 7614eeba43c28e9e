package ollama

import (
	"context"
	"errors"

	"marketing-assistant-be/pkg/llm"
)

var errEmptyReply = errors.New("ollama returned an empty message")

// Provider implements llm.LLMProvider on /api/chat without streaming.
type Provider struct {
	client *Client
}

var _ llm.LLMProvider = (*Provider)(nil)

func NewProvider(client *Client) *Provider {
	return &Provider{client: client}
}

type chatRequest struct {
	Model     string        `json:"model"`
	Messages  []llm.Message `json:"messages"`
	Stream    bool          `json:"stream"`
	KeepAlive string        `json:"keep_alive,omitempty"`
	Options   chatOptions   `json:"options"`
}

// Temperature is a pointer so an explicit 0 reaches the server.
type chatOptions struct {
	Temperature *float64 `json:"temperature,omitempty"`
	NumPredict  int      `json:"num_predict,omitempty"`
}

type chatResponse struct {
	Message    llm.Message `json:"message"`
	Done       bool        `json:"done"`
	DoneReason string      `json:"done_reason"`
}

func (p *Provider) Chat(ctx context.Context, history []llm.Message, opts ...llm.Option) (string, error) {
	options := llm.ApplyOptions(opts...)
	model := p.client.Model()
	if options.Model != "" {
		model = options.Model
	}

	temperature := options.Temperature
	var res chatResponse
	if err := p.client.Post(ctx, "/api/chat", chatRequest{
		Model:     model,
		Messages:  history,
		KeepAlive: p.client.KeepAlive(),
		Options: chatOptions{
			Temperature: &temperature,
			NumPredict:  options.MaxTokens,
		},
	}, &res); err != nil {
		return "", err
	}

	if res.Message.Content == "" {
		return "", errEmptyReply
	}
	return res.Message.Content, nil
}

func (p *Provider) Generate(ctx context.Context, prompt string, opts ...llm.Option) (string, error) {
	return p.Chat(ctx, []llm.Message{{Role: "user", Content: prompt}}, opts...)
}
