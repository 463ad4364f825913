package config

import (
	"fmt"
	"os"
	"time"
)

type GptConfig struct {
	ApiUrl    string
	ApiKey    string
	Model     string
	MaxTokens int
	Timeout   time.Duration
}

func GetGptConfig() (*GptConfig, error) {
	model := os.Getenv("GPT_MODEL")
	if model == "" {
		return nil, fmt.Errorf("GPT_MODEL must be set")
	}
	apiUrl := os.Getenv("GPT_API_URL")
	if apiUrl == "" {
		return nil, fmt.Errorf("GPT_API_URL must be set")
	}
	apiKey := os.Getenv("GPT_API_KEY")
	if apiKey == "" {
		return nil, fmt.Errorf("GPT_API_KEY must be set")
	}
	maxTokens, err := getIntEnv("GPT_MAX_TOKENS", 1500)
	if err != nil {
		return nil, err
	}
	timeoutSeconds, err := getIntEnv("GPT_TIMEOUT_SECONDS", 60)
	if err != nil {
		return nil, err
	}
	return &GptConfig{
		ApiUrl:    apiUrl,
		ApiKey:    apiKey,
		Model:     model,
		MaxTokens: maxTokens,
		Timeout:   time.Duration(timeoutSeconds) * time.Second,
	}, nil
}
