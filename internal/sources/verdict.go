// Wikithat - Encyclopedia Topic Comparison Pipeline
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/wikithat

package sources

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/sashabaranov/go-openai"

	"github.com/tomtom215/wikithat/internal/config"
	"github.com/tomtom215/wikithat/internal/logging"
	"github.com/tomtom215/wikithat/internal/metrics"
	"github.com/tomtom215/wikithat/internal/models"
	"github.com/tomtom215/wikithat/internal/validation"
)

// Verdict defaults.
const (
	DefaultXAIBaseURL   = "https://api.x.ai/v1"
	DefaultVerdictModel = "grok-4-1-fast-reasoning"
	DefaultTemperature  = 0.7
	DefaultMaxTokens    = 1500
	maxVerdictURLLength = 500
	verdictService      = "xai"
)

const verdictSystemPrompt = `You compare how two encyclopedias cover the same topic.
Read both articles and describe, in Markdown, what each emphasizes, omits or frames differently.
Use a ### title, a section for each source, and finish with a one-sentence **VERDICT:**.`

// VerdictClient generates comparison verdicts through an OpenAI-compatible
// chat completion API.
type VerdictClient struct {
	client      *openai.Client
	model       string
	temperature float32
	maxTokens   int
	breaker     *Breaker
}

// NewVerdictClient creates a verdict client. It returns a
// models.ConfigurationError when no API key is configured.
func NewVerdictClient(cfg *config.XAIConfig) (*VerdictClient, error) {
	if strings.TrimSpace(cfg.APIKey) == "" {
		return nil, &models.ConfigurationError{Component: "verdict generator", Setting: "XAI_API_KEY"}
	}

	oc := openai.DefaultConfig(cfg.APIKey)
	oc.BaseURL = DefaultXAIBaseURL
	if cfg.BaseURL != "" {
		oc.BaseURL = strings.TrimRight(cfg.BaseURL, "/")
	}
	oc.HTTPClient = NewHTTPClient(cfg.Timeout)

	c := &VerdictClient{
		client:      openai.NewClientWithConfig(oc),
		model:       cfg.Model,
		temperature: cfg.Temperature,
		maxTokens:   cfg.MaxTokens,
		breaker:     NewBreaker("xai-api"),
	}
	if c.model == "" {
		c.model = DefaultVerdictModel
	}
	if c.temperature <= 0 {
		c.temperature = DefaultTemperature
	}
	if c.maxTokens <= 0 {
		c.maxTokens = DefaultMaxTokens
	}
	return c, nil
}

// GenerateVerdict asks the model to compare the two article URLs for topic.
// All inputs are sanitized before they reach the prompt.
func (c *VerdictClient) GenerateVerdict(ctx context.Context, topic, sourceAURL, sourceBURL string) (string, error) {
	cleanTopic, err := validation.SanitizeInput(topic, validation.DefaultMaxInputLength)
	if err != nil {
		return "", fmt.Errorf("topic: %w", err)
	}
	cleanA, err := validation.SanitizeInput(sourceAURL, maxVerdictURLLength)
	if err != nil {
		return "", fmt.Errorf("source A url: %w", err)
	}
	cleanB, err := validation.SanitizeInput(sourceBURL, maxVerdictURLLength)
	if err != nil {
		return "", fmt.Errorf("source B url: %w", err)
	}

	req := openai.ChatCompletionRequest{
		Model:       c.model,
		Temperature: c.temperature,
		MaxTokens:   c.maxTokens,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: verdictSystemPrompt},
			{
				Role: openai.ChatMessageRoleUser,
				Content: fmt.Sprintf("Topic: %s\n\nWikipedia article: %s\nGrokipedia article: %s",
					cleanTopic, cleanA, cleanB),
			},
		},
	}

	start := time.Now()
	verdict, err := Execute(c.breaker, func() (string, error) {
		resp, err := c.client.CreateChatCompletion(ctx, req)
		if err != nil {
			return "", classifyOpenAIError(ctx, err)
		}
		if len(resp.Choices) == 0 || strings.TrimSpace(resp.Choices[0].Message.Content) == "" {
			return "", errors.New("no verdict generated")
		}

		logging.Ctx(ctx).Info().
			Str("topic", cleanTopic).
			Int("total_tokens", resp.Usage.TotalTokens).
			Msg("Verdict generated")
		return resp.Choices[0].Message.Content, nil
	})
	metrics.RecordExternalCall(verdictService, time.Since(start), err)
	if err != nil {
		return "", err
	}
	return verdict, nil
}

// classifyOpenAIError marks 429 and 5xx responses and network failures as transient.
func classifyOpenAIError(ctx context.Context, err error) error {
	if ctx.Err() != nil {
		return ctx.Err()
	}

	status := 0
	var apiErr *openai.APIError
	var reqErr *openai.RequestError
	switch {
	case errors.As(err, &apiErr):
		status = apiErr.HTTPStatusCode
	case errors.As(err, &reqErr):
		status = reqErr.HTTPStatusCode
	default:
		return &models.TransientFetchError{Op: "verdict", Err: err}
	}

	if status == http.StatusTooManyRequests || status >= 500 {
		return &models.TransientFetchError{Op: "verdict", StatusCode: status, Err: err}
	}
	return fmt.Errorf("verdict request rejected (status %d): %w", status, err)
}
