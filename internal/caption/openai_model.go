package caption

import (
	"context"
	"fmt"

	openai "github.com/sashabaranov/go-openai"
)

// OpenAIModel implements Model over the OpenAI vision chat API.
type OpenAIModel struct {
	client *openai.Client
	model  string
}

// NewOpenAIModel returns a vision model client. model defaults to gpt-4o-mini
// when empty.
func NewOpenAIModel(apiKey, model string) *OpenAIModel {
	if model == "" {
		model = openai.GPT4oMini
	}
	return &OpenAIModel{client: openai.NewClient(apiKey), model: model}
}

// Caption sends the prompt and the image in a single user message and returns
// the raw model answer.
func (m *OpenAIModel) Caption(ctx context.Context, prompt, imageBase64 string) (string, error) {
	req := openai.ChatCompletionRequest{
		Model: m.model,
		Messages: []openai.ChatCompletionMessage{
			{
				Role: openai.ChatMessageRoleUser,
				MultiContent: []openai.ChatMessagePart{
					{Type: openai.ChatMessagePartTypeText, Text: prompt},
					{
						Type: openai.ChatMessagePartTypeImageURL,
						ImageURL: &openai.ChatMessageImageURL{
							URL: "data:image/jpeg;base64," + imageBase64,
						},
					},
				},
			},
		},
	}
	resp, err := m.client.CreateChatCompletion(ctx, req)
	if err != nil {
		return "", fmt.Errorf("openai chat completion: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("openai returned no choices")
	}
	return resp.Choices[0].Message.Content, nil
}
