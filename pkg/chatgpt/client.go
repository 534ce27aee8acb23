package chatgpt

import (
	"context"
	"fmt"

	"github.com/sashabaranov/go-openai"
)

type client struct {
	api   *openai.Client
	model string
}

func NewClient(token, model string) (*client, error) {
	if token == "" {
		return nil, fmt.Errorf("token is empty")
	}
	return &client{
		api:   openai.NewClient(token),
		model: model,
	}, nil
}

// GenerateCompletion sends a single prompt without any conversation history.
// Each call is an independent completion.
func (c *client) GenerateCompletion(ctx context.Context, prompt string) (string, error) {
	resp, err := c.api.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: c.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleUser, Content: prompt},
		},
	})
	if err != nil {
		return "", fmt.Errorf("creating chat completion: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("no completion choices returned")
	}
	return resp.Choices[0].Message.Content, nil
}
