package llm

import (
	"context"

	"github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"
	"github.com/openai/openai-go/v3/responses"
	"github.com/openai/openai-go/v3/shared"
)

// Client issues one summarization request and returns the summary text.
// Implementations must honor ctx cancellation and deadlines.
type Client interface {
	Complete(ctx context.Context, prompt string) (string, error)
}

// OpenAIClient implements Client using the OpenAI Responses API.
type OpenAIClient struct {
	client openai.Client
	model  shared.ChatModel
}

// NewOpenAIClient creates a client for the given API key. An empty model
// selects GPT-5 Mini.
func NewOpenAIClient(apiKey string, model shared.ChatModel) *OpenAIClient {
	if model == "" {
		model = shared.ChatModelGPT5Mini
	}
	return &OpenAIClient{
		client: openai.NewClient(option.WithAPIKey(apiKey)),
		model:  model,
	}
}

// Complete sends one prompt and returns the model's output text.
func (c *OpenAIClient) Complete(ctx context.Context, prompt string) (string, error) {
	response, err := c.client.Responses.New(ctx, responses.ResponseNewParams{
		Model: c.model,
		Input: responses.ResponseNewParamsInputUnion{
			OfInputItemList: responses.ResponseInputParam{
				responses.ResponseInputItemParamOfMessage(
					responses.ResponseInputMessageContentListParam{
						responses.ResponseInputContentParamOfInputText(prompt),
					},
					"user",
				),
			},
		},
	})
	if err != nil {
		return "", err
	}
	return response.OutputText(), nil
}
