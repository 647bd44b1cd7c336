package llmservice

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/ollama"
	"github.com/tmc/langchaingo/schema"
)

// Generator is a synchronous generative model call. A failed or timed-out
// call returns an error the composer recovers from locally; no transport
// detail ever reaches the end user.
type Generator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

// Options bound decoding so the model cannot ramble or continue into a
// fabricated next turn.
type Options struct {
	Temperature float64
	MaxTokens   int
	StopWords   []string
	Timeout     time.Duration
}

// OllamaClient talks to an Ollama server through langchaingo.
type OllamaClient struct {
	llm  *ollama.LLM
	opts Options
}

func NewOllamaClient(baseURL, model string, opts Options) (*OllamaClient, error) {
	log.Debug().Str("base_url", baseURL).Str("model", model).Msg("Initializing LLM client")

	llm, err := ollama.New(
		ollama.WithServerURL(baseURL),
		ollama.WithModel(model),
	)
	if err != nil {
		return nil, err
	}
	if opts.Timeout == 0 {
		opts.Timeout = 60 * time.Second
	}
	return &OllamaClient{llm: llm, opts: opts}, nil
}

func (c *OllamaClient) Generate(ctx context.Context, prompt string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, c.opts.Timeout)
	defer cancel()

	messages := []llms.MessageContent{
		{
			Role:  schema.ChatMessageTypeHuman,
			Parts: []llms.ContentPart{llms.TextContent{Text: prompt}},
		},
	}

	resp, err := c.llm.GenerateContent(ctx, messages,
		llms.WithTemperature(c.opts.Temperature),
		llms.WithMaxTokens(c.opts.MaxTokens),
		llms.WithStopWords(c.opts.StopWords),
	)
	if err != nil {
		return "", fmt.Errorf("generating content: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("model returned no choices")
	}
	return strings.TrimSpace(resp.Choices[0].Content), nil
}
