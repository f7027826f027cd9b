package factory

import (
	"ai-writepad-be/pkg/provider"
	"ai-writepad-be/pkg/provider/openai"
	"ai-writepad-be/pkg/provider/router"
)

// NewCompletionProvider resolves the configured endpoint/model pair into a
// concrete backend. Malformed configuration surfaces as *provider.ConfigError
// here, before any network call.
func NewCompletionProvider(endpoint, model, apiKey string) (provider.CompletionProvider, provider.ModelSpec, error) {
	spec, err := provider.ParseModelSpec(endpoint, model)
	if err != nil {
		return nil, provider.ModelSpec{}, err
	}

	switch spec.Kind {
	case provider.KindOpenAICompatible:
		return openai.New(spec.BaseURL, apiKey), spec, nil
	default:
		return router.New("", apiKey), spec, nil
	}
}
