package adapters

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"weaveit-pipeline/application/ports/outbound"
	"weaveit-pipeline/config"

	"github.com/sashabaranov/go-openai"
)

var errEmptyCompletion = errors.New("completion contained no text")

type scriptEnhancer struct {
	logger    outbound.LoggerPort
	gptConfig *config.GptConfig
	client    *openai.Client
}

// NewScriptEnhancer talks to any OpenAI compatible chat completions API.
// GPT_API_URL is the API base, e.g. https://api.openai.com/v1.
func NewScriptEnhancer(gptConfig *config.GptConfig, logger outbound.LoggerPort) outbound.ScriptEnhancerPort {
	clientConfig := openai.DefaultConfig(gptConfig.ApiKey)
	clientConfig.BaseURL = strings.TrimRight(gptConfig.ApiUrl, "/")
	clientConfig.HTTPClient = &http.Client{Timeout: gptConfig.Timeout}

	return &scriptEnhancer{
		logger:    logger,
		gptConfig: gptConfig,
		client:    openai.NewClientWithConfig(clientConfig),
	}
}

func (s *scriptEnhancer) Enhance(ctx context.Context, req outbound.EnhanceScriptRequest) (string, error) {
	resp, err := s.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:     s.gptConfig.Model,
		MaxTokens: s.gptConfig.MaxTokens,
		Messages: []openai.ChatCompletionMessage{
			{
				Role:    openai.ChatMessageRoleSystem,
				Content: s.systemPrompt(req.Title),
			},
			{
				Role:    openai.ChatMessageRoleUser,
				Content: req.Script,
			},
		},
	})
	if err != nil {
		fields := map[string]interface{}{"model": s.gptConfig.Model}
		var apiErr *openai.APIError
		if errors.As(err, &apiErr) {
			fields["status"] = apiErr.HTTPStatusCode
		}
		s.logger.ErrorWithFields(err, "Chat completion request failed", fields)
		return "", err
	}

	if len(resp.Choices) == 0 || strings.TrimSpace(resp.Choices[0].Message.Content) == "" {
		s.logger.WarnWithFields("Chat completion returned no content", map[string]interface{}{
			"model":   s.gptConfig.Model,
			"choices": len(resp.Choices),
		})
		return "", errEmptyCompletion
	}

	return resp.Choices[0].Message.Content, nil
}

func (s *scriptEnhancer) systemPrompt(title string) string {
	prompt := "You explain content to an audience. Rewrite the script the user sends as a clear, " +
		"spoken explanation that a narrator will read aloud.\n" +
		"- Use plain sentences without markdown, lists or code blocks.\n" +
		"- Describe what code does instead of reading it symbol by symbol.\n" +
		"- Keep the order of the original material."
	if title != "" {
		prompt += fmt.Sprintf("\nThe content is titled: %s.", title)
	}
	return prompt
}
