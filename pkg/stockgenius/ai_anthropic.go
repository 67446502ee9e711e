package stockgenius

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
)

type anthropicProvider struct {
	client anthropic.Client
	model  string
	logger *slog.Logger
}

func newAnthropicProvider(apiKey, model, baseURL string, logger *slog.Logger, extra ...option.RequestOption) *anthropicProvider {
	opts := []option.RequestOption{option.WithAPIKey(apiKey)}
	if u := strings.TrimSpace(baseURL); u != "" {
		opts = append(opts, option.WithBaseURL(u))
	}
	opts = append(opts, extra...)
	return &anthropicProvider{
		client: anthropic.NewClient(opts...),
		model:  model,
		logger: logger,
	}
}

func (p *anthropicProvider) Name() string { return ProviderAnthropic }

func (p *anthropicProvider) Complete(ctx context.Context, req ChatRequest) (ChatResult, error) {
	logAIPromptDebug(p.logger, ProviderAnthropic, p.model, req)

	params := anthropic.MessageNewParams{
		Model:     anthropic.Model(p.model),
		MaxTokens: aiMaxOutputTokens,
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(req.User)),
		},
	}
	if req.System != "" {
		params.System = []anthropic.TextBlockParam{{Text: req.System}}
	}

	resp, err := p.client.Messages.New(ctx, params)
	if err != nil {
		return ChatResult{}, fmt.Errorf("anthropic messages call failed: %w", err)
	}

	var sb strings.Builder
	for _, block := range resp.Content {
		if block.Type == "text" {
			sb.WriteString(block.Text)
		}
	}
	content := strings.TrimSpace(sb.String())
	if content == "" {
		return ChatResult{}, emptyContentError(ProviderAnthropic)
	}
	model := string(resp.Model)
	if model == "" {
		model = p.model
	}
	return ChatResult{Model: model, Content: content}, nil
}
