package report

import (
	"context"
	stderrors "errors"
	"strings"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"

	"github.com/Taichi-iskw/yt-trend/internal/errors"
)

// ChatClient sends one system + user exchange to a chat model
type ChatClient interface {
	Complete(ctx context.Context, system, user string) (string, error)
}

// ChatConfig configures an OpenAI-compatible endpoint such as OpenRouter
type ChatConfig struct {
	APIKey      string
	BaseURL     string
	Model       string
	Temperature float64
	MaxTokens   int
	// Referer and Title are sent as OpenRouter attribution headers when set
	Referer string
	Title   string
}

// openAIChatClient implements ChatClient with openai-go
type openAIChatClient struct {
	client openai.Client
	cfg    ChatConfig
}

// NewChatClient creates a ChatClient for an OpenAI-compatible API
func NewChatClient(cfg ChatConfig, opts ...option.RequestOption) (ChatClient, error) {
	if strings.TrimSpace(cfg.APIKey) == "" {
		return nil, errors.New(errors.CodeInvalidArg, "OPENROUTER_API_KEY is not set")
	}
	if strings.TrimSpace(cfg.Model) == "" {
		return nil, errors.New(errors.CodeInvalidArg, "report model is not set")
	}

	clientOpts := []option.RequestOption{
		option.WithAPIKey(cfg.APIKey),
	}
	if strings.TrimSpace(cfg.BaseURL) != "" {
		clientOpts = append(clientOpts, option.WithBaseURL(cfg.BaseURL))
	}
	if cfg.Referer != "" {
		clientOpts = append(clientOpts, option.WithHeader("HTTP-Referer", cfg.Referer))
	}
	if cfg.Title != "" {
		clientOpts = append(clientOpts, option.WithHeader("X-Title", cfg.Title))
	}
	clientOpts = append(clientOpts, opts...)

	return &openAIChatClient{
		client: openai.NewClient(clientOpts...),
		cfg:    cfg,
	}, nil
}

func (c *openAIChatClient) Complete(ctx context.Context, system, user string) (string, error) {
	params := openai.ChatCompletionNewParams{
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.SystemMessage(system),
			openai.UserMessage(user),
		},
		Model:       c.cfg.Model,
		Temperature: openai.Float(c.cfg.Temperature),
	}
	if c.cfg.MaxTokens > 0 {
		params.MaxTokens = openai.Int(int64(c.cfg.MaxTokens))
	}

	resp, err := c.client.Chat.Completions.New(ctx, params)
	if err != nil {
		return "", errors.Wrap(err, errors.CodeExternal, "chat completion failed")
	}
	if len(resp.Choices) == 0 {
		return "", errors.Wrap(stderrors.New("no choices"), errors.CodeExternal, "model returned no choices")
	}
	content := strings.TrimSpace(resp.Choices[0].Message.Content)
	if content == "" {
		return "", errors.New(errors.CodeExternal, "model returned empty content")
	}
	return content, nil
}
