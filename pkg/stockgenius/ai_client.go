package stockgenius

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
)

// Supported LLM provider names.
const (
	ProviderOpenAI    = "openai"
	ProviderAnthropic = "anthropic"
	ProviderGemini    = "gemini"
)

var defaultProviderModels = map[string]string{
	ProviderOpenAI:    "gpt-4",
	ProviderAnthropic: "claude-sonnet-4-20250514",
	ProviderGemini:    "gemini-2.0-flash",
}

const aiMaxOutputTokens = 2048

// ChatRequest is a single role-tagged exchange: a system persona and a user request.
type ChatRequest struct {
	System string
	User   string
}

// ChatResult is the opaque completion text and the model that produced it.
type ChatResult struct {
	Model   string
	Content string
}

// LLMProvider is the chat-completion collaborator.
type LLMProvider interface {
	Name() string
	Complete(ctx context.Context, req ChatRequest) (ChatResult, error)
}

// LLMConfig selects and configures a provider.
type LLMConfig struct {
	Provider string
	APIKey   string
	Model    string
	BaseURL  string
	Logger   *slog.Logger
}

// NewLLMProvider builds the provider named in cfg. An empty model uses the provider default.
func NewLLMProvider(ctx context.Context, cfg LLMConfig) (LLMProvider, error) {
	name := strings.ToLower(strings.TrimSpace(cfg.Provider))
	if name == "" {
		name = ProviderOpenAI
	}
	if strings.TrimSpace(cfg.APIKey) == "" {
		return nil, invalidInputf("api key is required for llm provider %s", name)
	}
	model := strings.TrimSpace(cfg.Model)
	if model == "" {
		model = DefaultModel(name)
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	switch name {
	case ProviderOpenAI:
		return newOpenAIProvider(cfg.APIKey, model, cfg.BaseURL, logger), nil
	case ProviderAnthropic:
		return newAnthropicProvider(cfg.APIKey, model, cfg.BaseURL, logger), nil
	case ProviderGemini:
		return newGeminiProvider(ctx, cfg.APIKey, model, cfg.BaseURL, logger)
	default:
		return nil, invalidInputf("unsupported llm provider: %s", cfg.Provider)
	}
}

// DefaultModel returns the default model for a provider name.
func DefaultModel(provider string) string {
	return defaultProviderModels[strings.ToLower(strings.TrimSpace(provider))]
}

func logAIPromptDebug(logger *slog.Logger, provider, model string, req ChatRequest) {
	if logger == nil {
		logger = slog.Default()
	}
	logger.Debug("ai request prompt",
		"provider", provider,
		"model", model,
		"system_prompt", req.System,
		"user_prompt", req.User,
	)
}

func emptyContentError(provider string) error {
	return fmt.Errorf("%s response content is empty", provider)
}
