package generate

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	oai "github.com/openai/openai-go"
	"github.com/openai/openai-go/option"

	"github.com/dgallion1/docmind/internal/doctree"
)

// DefaultLocalURL is LM Studio's OpenAI-compatible endpoint.
const DefaultLocalURL = "http://localhost:1234/v1"

// OpenAIConfig configures a chat generator for any OpenAI-compatible server.
type OpenAIConfig struct {
	BaseURL     string
	APIKey      string
	Model       string
	Temperature float64
	MaxTokens   int
	Timeout     time.Duration
}

// OpenAI generates answers with the chat completions endpoint.
type OpenAI struct {
	client      oai.Client
	model       string
	temperature float64
	maxTokens   int
	log         *slog.Logger
}

func NewOpenAI(cfg OpenAIConfig, log *slog.Logger) (*OpenAI, error) {
	if cfg.Model == "" {
		return nil, errors.New("openai generator: model is required")
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultLocalURL
	}
	if cfg.APIKey == "" {
		// Local servers ignore the key but the client insists on one.
		cfg.APIKey = "lm-studio"
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 120 * time.Second
	}
	if cfg.MaxTokens <= 0 {
		cfg.MaxTokens = 500
	}
	client := oai.NewClient(
		option.WithBaseURL(cfg.BaseURL),
		option.WithAPIKey(cfg.APIKey),
		option.WithRequestTimeout(cfg.Timeout),
		option.WithMaxRetries(0),
	)
	return &OpenAI{
		client:      client,
		model:       cfg.Model,
		temperature: cfg.Temperature,
		maxTokens:   cfg.MaxTokens,
		log:         log.With("generator", "openai", "model", cfg.Model),
	}, nil
}

func (g *OpenAI) Complete(ctx context.Context, question string, chunks []doctree.Retrieved) (string, error) {
	params := oai.ChatCompletionNewParams{
		Model: oai.ChatModel(g.model),
		Messages: []oai.ChatCompletionMessageParamUnion{
			oai.SystemMessage(SystemPrompt),
			oai.UserMessage(BuildUserPrompt(question, chunks)),
		},
		Temperature: oai.Float(g.temperature),
		MaxTokens:   oai.Int(int64(g.maxTokens)),
	}
	return withRetry(ctx, g.log, func(ctx context.Context) (string, error) {
		resp, err := g.client.Chat.Completions.New(ctx, params)
		if err != nil {
			var apiErr *oai.Error
			if errors.As(err, &apiErr) && (apiErr.StatusCode == http.StatusTooManyRequests || apiErr.StatusCode >= 500) {
				return "", &RetryableError{StatusCode: apiErr.StatusCode, Message: apiErr.Error()}
			}
			return "", fmt.Errorf("chat completion: %w", err)
		}
		if len(resp.Choices) == 0 {
			return "", ErrEmptyAnswer
		}
		answer := strings.TrimSpace(resp.Choices[0].Message.Content)
		if answer == "" {
			return "", ErrEmptyAnswer
		}
		return answer, nil
	})
}
