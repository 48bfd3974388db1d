package enricher

import (
	"context"
	"fmt"

	"github.com/sashabaranov/go-openai"
)

// OpenAIProvider generates context through the chat completions API.
type OpenAIProvider struct {
	client    *openai.Client
	apiKey    string
	model     string
	maxTokens int
}

func NewOpenAIProvider(apiKey, model string, maxTokens int) *OpenAIProvider {
	return &OpenAIProvider{
		client:    openai.NewClient(apiKey),
		apiKey:    apiKey,
		model:     model,
		maxTokens: maxTokens,
	}
}

// NewOpenAIProviderWithBaseURL points the provider at a custom endpoint,
// used by tests.
func NewOpenAIProviderWithBaseURL(apiKey, model string, maxTokens int, baseURL string) *OpenAIProvider {
	clientConfig := openai.DefaultConfig(apiKey)
	clientConfig.BaseURL = baseURL
	return &OpenAIProvider{
		client:    openai.NewClientWithConfig(clientConfig),
		apiKey:    apiKey,
		model:     model,
		maxTokens: maxTokens,
	}
}

func (p *OpenAIProvider) Name() string { return "openai" }

func (p *OpenAIProvider) Available() bool { return p.apiKey != "" }

func (p *OpenAIProvider) Generate(ctx context.Context, promptText string) (string, error) {
	resp, err := p.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:     p.model,
		MaxTokens: p.maxTokens,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleUser, Content: promptText},
		},
	})
	if err != nil {
		return "", fmt.Errorf("openai completion: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("openai response has no choices")
	}
	return resp.Choices[0].Message.Content, nil
}
