// Package ai generates echod's answers through an Ark chat model when
// credentials are configured. The stream handler falls back to the canned
// responder when this service is unavailable.
package ai

import (
	"context"
	"fmt"

	"github.com/cloudwego/eino/components/prompt"
	"github.com/cloudwego/eino/compose"
	"github.com/cloudwego/eino/schema"

	"github.com/sharondevs/echo-chat/internal/config"
)

// Service wraps the prompt-template-plus-model chain.
type Service struct {
	cfg   config.AIConfig
	chain compose.Runnable[map[string]any, *schema.Message]
}

// NewService compiles the answer chain. Fails when the model cannot be
// constructed from the configuration.
func NewService(ctx context.Context, cfg config.AIConfig) (*Service, error) {
	chatModel, err := cfg.NewChatModel(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to create chat model: %w", err)
	}

	promptTemplate := prompt.FromMessages(
		schema.FString,
		schema.SystemMessage("{system}"),
		schema.UserMessage("{query}"),
	)

	chain := compose.NewChain[map[string]any, *schema.Message]()
	chain.AppendChatTemplate(promptTemplate)
	chain.AppendChatModel(chatModel)

	runnable, err := chain.Compile(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to compile answer chain: %w", err)
	}

	return &Service{cfg: cfg, chain: runnable}, nil
}

// StreamAnswer streams model output for one question, grounded on the
// supplied context text (reference sections or uploaded document excerpts).
func (s *Service) StreamAnswer(ctx context.Context, question, grounding string) (*schema.StreamReader[*schema.Message], error) {
	input := map[string]any{
		"system": buildSystemPrompt(grounding),
		"query":  question,
	}

	stream, err := s.chain.Stream(ctx, input)
	if err != nil {
		return nil, fmt.Errorf("failed to stream answer: %w", err)
	}
	return stream, nil
}
