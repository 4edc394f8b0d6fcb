package llm

type Config struct {
	APIKey    string
	Model     string
	BaseURL   string
	MaxTokens int64
}

func DefaultConfig(apiKey string) Config {
	return Config{
		APIKey:    apiKey,
		Model:     "claude-sonnet-4-5",
		MaxTokens: 4096,
	}
}
