package config

// GeminiModels defines which Gemini models to use for different tasks
type GeminiModels struct {
	// Assessment scores a completed questionnaire (quality over speed)
	Assessment string `yaml:"assessment" json:"assessment"`

	// Chat answers follow-up questions about a result (needs to be fast)
	Chat string `yaml:"chat" json:"chat"`
}

// AIConfig holds all AI-related configuration
type AIConfig struct {
	APIKey        string       `yaml:"apiKey" json:"-"` // Never serialize
	BaseURL       string       `yaml:"baseUrl" json:"baseUrl"`
	Models        GeminiModels `yaml:"models" json:"models"`
	TimeoutMS     int          `yaml:"timeoutMs" json:"timeoutMs"`
	ChatTimeoutMS int          `yaml:"chatTimeoutMs" json:"chatTimeoutMs"`
}

// DefaultAIConfig returns the default AI configuration
func DefaultAIConfig() AIConfig {
	return AIConfig{
		BaseURL: "https://generativelanguage.googleapis.com/v1beta/models",
		Models: GeminiModels{
			Assessment: "gemini-2.5-pro",
			Chat:       "gemini-2.5-flash",
		},
		TimeoutMS:     60000, // a full assessment routinely takes tens of seconds
		ChatTimeoutMS: 20000,
	}
}

func (c *AIConfig) applyEnv() {
	c.APIKey = getEnv("GEMINI_API_KEY", c.APIKey)
	c.BaseURL = getEnv("GEMINI_BASE_URL", c.BaseURL)
	c.Models.Assessment = getEnv("GEMINI_MODEL_ASSESSMENT", c.Models.Assessment)
	c.Models.Chat = getEnv("GEMINI_MODEL_CHAT", c.Models.Chat)
}

// IsEnabled returns true if the AI API is configured
func (c *AIConfig) IsEnabled() bool {
	return c.APIKey != ""
}

// ModelEndpoint returns the full endpoint for a given model
func (c *AIConfig) ModelEndpoint(model string) string {
	return c.BaseURL + "/" + model + ":generateContent"
}
