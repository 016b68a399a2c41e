// internal/agents/generate-reply/generator.go
package generatereply

import (
	"context"
	"errors"
	"fmt"

	openai "github.com/sashabaranov/go-openai"

	"loan-assistant/internal/models"
)

// TextGenerator produces one assistant reply given a system prompt and
// the running conversation.
type TextGenerator interface {
	Generate(ctx context.Context, systemPrompt string, history []models.Message, userText string) (string, error)
}

// OpenAIGenerator backs TextGenerator with the chat completions API.
type OpenAIGenerator struct {
	client *openai.Client
	config *Config
}

func NewOpenAIGenerator(apiKey string, config *Config) (*OpenAIGenerator, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("openai api key is required")
	}
	return &OpenAIGenerator{
		client: openai.NewClient(apiKey),
		config: config,
	}, nil
}

func (g *OpenAIGenerator) Generate(ctx context.Context, systemPrompt string, history []models.Message, userText string) (string, error) {
	msgs := make([]openai.ChatCompletionMessage, 0, len(history)+2)
	msgs = append(msgs, openai.ChatCompletionMessage{
		Role:    openai.ChatMessageRoleSystem,
		Content: systemPrompt,
	})
	for _, m := range history {
		role := openai.ChatMessageRoleUser
		if m.Role == "assistant" {
			role = openai.ChatMessageRoleAssistant
		}
		msgs = append(msgs, openai.ChatCompletionMessage{Role: role, Content: m.Content})
	}
	msgs = append(msgs, openai.ChatCompletionMessage{
		Role:    openai.ChatMessageRoleUser,
		Content: userText,
	})

	resp, err := g.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:       g.config.Model,
		Messages:    msgs,
		MaxTokens:   g.config.MaxTokens,
		Temperature: g.config.Temperature,
	})
	if err != nil {
		return "", fmt.Errorf("chat completion: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", errors.New("chat completion returned no choices")
	}
	return resp.Choices[0].Message.Content, nil
}
