// Package llm provides LLM and embedding services using langchaingo.
package llm

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/bedrockruntime"
	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/anthropic"
	"github.com/tmc/langchaingo/llms/bedrock"
	"github.com/tmc/langchaingo/llms/ollama"
	"github.com/tmc/langchaingo/llms/openai"

	"github.com/gogoair/flightchat/internal/config"
	"github.com/gogoair/flightchat/internal/metrics"
	"github.com/gogoair/flightchat/internal/models"
)

// ErrFatalAPI marks provider errors that retrying cannot fix (auth, billing).
var ErrFatalAPI = errors.New("fatal API error")

// Response is the outcome of one generation call.
type Response struct {
	Content string
	Usage   models.TokenUsage
}

// Model wraps a langchaingo chat model for text generation.
type Model struct {
	llm       llms.Model
	modelName string
	metrics   *metrics.Collector
}

// NewModel creates an LLM model based on configuration.
func NewModel(ctx context.Context, cfg config.Config, mc *metrics.Collector) (*Model, error) {
	var model llms.Model
	var err error

	switch cfg.LLMProvider {
	case config.ProviderOllama:
		model, err = ollama.New(
			ollama.WithModel(cfg.LLMModel),
			ollama.WithServerURL(cfg.OllamaHost),
		)
		if err != nil {
			return nil, fmt.Errorf("create ollama model: %w", err)
		}

	case config.ProviderOpenAI:
		if cfg.OpenAIAPIKey == "" {
			return nil, fmt.Errorf("OpenAI API key required")
		}
		model, err = openai.New(
			openai.WithToken(cfg.OpenAIAPIKey),
			openai.WithModel(cfg.LLMModel),
		)
		if err != nil {
			return nil, fmt.Errorf("create openai model: %w", err)
		}

	case config.ProviderAnthropic:
		if cfg.AnthropicAPIKey == "" {
			return nil, fmt.Errorf("Anthropic API key required")
		}
		model, err = anthropic.New(
			anthropic.WithToken(cfg.AnthropicAPIKey),
			anthropic.WithModel(cfg.LLMModel),
		)
		if err != nil {
			return nil, fmt.Errorf("create anthropic model: %w", err)
		}

	case config.ProviderBedrock:
		awsCfg, awsErr := awsconfig.LoadDefaultConfig(ctx)
		if awsErr != nil {
			return nil, fmt.Errorf("load aws config: %w", awsErr)
		}
		client := bedrockruntime.NewFromConfig(awsCfg)
		model, err = bedrock.New(
			bedrock.WithModel(cfg.LLMModel),
			bedrock.WithClient(client),
		)
		if err != nil {
			return nil, fmt.Errorf("create bedrock model: %w", err)
		}

	default:
		return nil, fmt.Errorf("unsupported LLM provider: %s", cfg.LLMProvider)
	}

	return &Model{
		llm:       model,
		modelName: cfg.LLMModel,
		metrics:   mc,
	}, nil
}

// Model returns the LLM model name.
func (m *Model) Model() string {
	return m.modelName
}

// Generate produces text from a single prompt, with usage metadata.
func (m *Model) Generate(ctx context.Context, prompt string) (Response, error) {
	messages := []llms.MessageContent{
		llms.TextParts(llms.ChatMessageTypeHuman, prompt),
	}
	return m.generate(ctx, messages)
}

// GenerateWithHistory produces text from a system instruction, the prior
// conversation turns in order, and the current user input as the final turn.
func (m *Model) GenerateWithHistory(ctx context.Context, system string, history []models.Turn, user string) (Response, error) {
	messages := make([]llms.MessageContent, 0, len(history)+2)
	if system != "" {
		messages = append(messages, llms.TextParts(llms.ChatMessageTypeSystem, system))
	}
	for _, turn := range history {
		role := llms.ChatMessageTypeHuman
		if turn.Role == "assistant" {
			role = llms.ChatMessageTypeAI
		}
		messages = append(messages, llms.TextParts(role, turn.Content))
	}
	messages = append(messages, llms.TextParts(llms.ChatMessageTypeHuman, user))

	return m.generate(ctx, messages)
}

func (m *Model) generate(ctx context.Context, messages []llms.MessageContent) (Response, error) {
	start := time.Now()
	resp, err := m.llm.GenerateContent(ctx, messages)
	duration := time.Since(start)

	if err != nil {
		return Response{}, wrapFatalError(fmt.Errorf("generate: %w", err))
	}
	if len(resp.Choices) == 0 {
		return Response{}, fmt.Errorf("no response choices")
	}

	choice := resp.Choices[0]
	usage := usageFromGenerationInfo(choice.GenerationInfo)

	if m.metrics != nil {
		m.metrics.RecordLLMUsage(metrics.OpLLMGenerate, duration,
			int64(usage["prompt_tokens"]), int64(usage["completion_tokens"]))
	}

	return Response{
		Content: choice.Content,
		Usage:   usage,
	}, nil
}

// usageFromGenerationInfo normalizes provider token counters to snake_case
// keys. Providers disagree on key names and numeric types.
func usageFromGenerationInfo(info map[string]any) models.TokenUsage {
	usage := models.TokenUsage{}
	aliases := map[string]string{
		"CompletionTokens":  "completion_tokens",
		"completion_tokens": "completion_tokens",
		"output_tokens":     "completion_tokens",
		"PromptTokens":      "prompt_tokens",
		"prompt_tokens":     "prompt_tokens",
		"input_tokens":      "prompt_tokens",
		"TotalTokens":       "total_tokens",
		"total_tokens":      "total_tokens",
	}
	for key, val := range info {
		name, ok := aliases[key]
		if !ok {
			continue
		}
		switch n := val.(type) {
		case int:
			usage[name] = n
		case int64:
			usage[name] = int(n)
		case float64:
			usage[name] = int(n)
		}
	}
	if _, ok := usage["total_tokens"]; !ok {
		if usage["prompt_tokens"] > 0 || usage["completion_tokens"] > 0 {
			usage["total_tokens"] = usage["prompt_tokens"] + usage["completion_tokens"]
		}
	}
	return usage
}

// fatalMarkers are substrings of provider errors that indicate a
// non-retryable account or auth problem.
var fatalMarkers = []string{
	"credit balance",
	"rate limit",
	"quota",
	"billing",
	"api key",
	"authentication",
	"unauthorized",
	"401",
	"403",
}

func isFatalAPIError(err error) bool {
	if err == nil {
		return false
	}
	msg := strings.ToLower(err.Error())
	for _, marker := range fatalMarkers {
		if strings.Contains(msg, marker) {
			return true
		}
	}
	return false
}

// wrapFatalError tags fatal provider errors with ErrFatalAPI so callers can
// distinguish them with errors.Is. Non-fatal errors pass through unchanged.
func wrapFatalError(err error) error {
	if err == nil {
		return nil
	}
	if isFatalAPIError(err) {
		return fmt.Errorf("%w: %v", ErrFatalAPI, err)
	}
	return err
}
