package stockgenius

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
)

type openAIProvider struct {
	client openai.Client
	model  string
	logger *slog.Logger
}

func newOpenAIProvider(apiKey, model, baseURL string, logger *slog.Logger, extra ...option.RequestOption) *openAIProvider {
	opts := []option.RequestOption{option.WithAPIKey(apiKey)}
	if u := strings.TrimSpace(baseURL); u != "" {
		opts = append(opts, option.WithBaseURL(u))
	}
	opts = append(opts, extra...)
	return &openAIProvider{
		client: openai.NewClient(opts...),
		model:  model,
		logger: logger,
	}
}

func (p *openAIProvider) Name() string { return ProviderOpenAI }

func (p *openAIProvider) Complete(ctx context.Context, req ChatRequest) (ChatResult, error) {
	logAIPromptDebug(p.logger, ProviderOpenAI, p.model, req)

	resp, err := p.client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Model: openai.ChatModel(p.model),
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.SystemMessage(req.System),
			openai.UserMessage(req.User),
		},
		MaxTokens: openai.Int(aiMaxOutputTokens),
	})
	if err != nil {
		return ChatResult{}, fmt.Errorf("openai chat completion failed: %w", err)
	}
	if len(resp.Choices) == 0 {
		return ChatResult{}, emptyContentError(ProviderOpenAI)
	}
	content := strings.TrimSpace(resp.Choices[0].Message.Content)
	if content == "" {
		return ChatResult{}, emptyContentError(ProviderOpenAI)
	}
	model := resp.Model
	if model == "" {
		model = p.model
	}
	return ChatResult{Model: model, Content: content}, nil
}
