package diagnosis

import (
	"context"
	"errors"
	"strings"

	openai "github.com/sashabaranov/go-openai"
)

// OpenAIPredictor asks a chat completion model to pick the most likely
// disease from the catalog.  Answers outside the catalog are returned as
// given; the catalog lookup then yields NoPrescription.
type OpenAIPredictor struct {
	client *openai.Client
	model  string
}

// NewOpenAIPredictor builds a predictor for apiKey.  baseURL overrides the
// API endpoint when non-empty.
func NewOpenAIPredictor(apiKey, model, baseURL string) *OpenAIPredictor {
	cfg := openai.DefaultConfig(apiKey)
	if baseURL != "" {
		cfg.BaseURL = baseURL
	}
	if model == "" {
		model = "gpt-4o-mini"
	}
	return &OpenAIPredictor{client: openai.NewClientWithConfig(cfg), model: model}
}

func (p *OpenAIPredictor) Predict(ctx context.Context, symptoms []string) (string, error) {
	resp, err := p.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: p.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: systemPrompt()},
			{Role: openai.ChatMessageRoleUser, Content: "Symptoms: " + strings.Join(symptoms, ", ")},
		},
		Temperature: 0,
	})
	if err != nil {
		return "", err
	}
	if len(resp.Choices) == 0 {
		return "", errors.New("empty completion")
	}
	answer := strings.TrimSpace(resp.Choices[0].Message.Content)
	answer = strings.Trim(answer, ".\"'")
	// Prefer the catalog's spelling when the model changes case.
	for _, d := range Diseases() {
		if strings.EqualFold(d, answer) {
			return d, nil
		}
	}
	return answer, nil
}

func systemPrompt() string {
	return "You are a triage classifier. Reply with exactly one disease name and nothing else. " +
		"Choose from: " + strings.Join(Diseases(), "; ") + ". " +
		"If none fits, reply with the most likely disease name."
}
