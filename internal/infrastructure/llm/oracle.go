package llm

import (
	"context"
	"fmt"

	openai "github.com/sashabaranov/go-openai"

	"TopicCurator/internal/config"
	"TopicCurator/internal/ports"
)

// Oracle implements ports.Oracle backed by any OpenAI-compatible chat
// completion API. No structural guarantee is made about responses;
// callers must parse defensively.
type Oracle struct {
	client *openai.Client
	model  string
}

var _ ports.Oracle = (*Oracle)(nil)

// NewOracle builds a client from configuration.
func NewOracle(cfg config.OracleConfig) *Oracle {
	clientCfg := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		clientCfg.BaseURL = cfg.BaseURL
	}
	return &Oracle{
		client: openai.NewClientWithConfig(clientCfg),
		model:  cfg.Model,
	}
}

// Invoke performs one chat completion with the given instruction pair.
// Transport errors propagate to the caller; there is no retry here.
func (o *Oracle) Invoke(ctx context.Context, system, user string) (string, error) {
	if o == nil || o.client == nil {
		return "", fmt.Errorf("oracle client is not configured")
	}

	resp, err := o.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: o.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: system},
			{Role: openai.ChatMessageRoleUser, Content: user},
		},
	})
	if err != nil {
		return "", fmt.Errorf("chat completion: %w", err)
	}

	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("chat completion returned no choices")
	}

	return resp.Choices[0].Message.Content, nil
}
