package ai

// newMistral creates the Mistral provider. La Plateforme serves the same
// chat completions format as OpenAI, including json_schema output.
func newMistral(cfg ProviderConfig) *chatProvider {
	if cfg.BaseURL == "" {
		cfg.BaseURL = "https://api.mistral.ai/v1"
	}
	return &chatProvider{name: "mistral", config: cfg, client: newHTTPClient()}
}
