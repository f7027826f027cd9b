package provider

import (
	"strings"
)

// Kind discriminates the backend shape a model spec resolves to.
type Kind string

const (
	KindRouter           Kind = "router"
	KindOpenAICompatible Kind = "openai_compatible"
)

// Delimiter separating a router model from a forced provider hint,
// e.g. "moonshotai/kimi-k2::deepinfra/fp4".
const providerDelimiter = "::"

// ModelSpec is the resolved form of the user-configured endpoint/model pair.
type ModelSpec struct {
	Kind Kind

	// Router fields
	Model        string
	ProviderHint string

	// OpenAI-compatible fields
	BaseURL string
}

// ParseModelSpec resolves the configured endpoint and model strings into a
// tagged variant. Resolution order:
//
//  1. An endpoint starting with http:// or https:// is an OpenAI-compatible
//     server and must end with /v1.
//  2. Otherwise the model string is a router identifier; "model::provider"
//     splits into the model plus a provider routing hint.
//
// All validation happens here, before any network call.
func ParseModelSpec(endpoint, model string) (ModelSpec, error) {
	if strings.HasPrefix(endpoint, "http://") || strings.HasPrefix(endpoint, "https://") {
		trimmed := strings.TrimRight(endpoint, "/")
		if !strings.HasSuffix(trimmed, "/v1") {
			return ModelSpec{}, &ConfigError{Reason: "OpenAI-compatible endpoint must end with /v1: " + endpoint}
		}
		return ModelSpec{
			Kind:    KindOpenAICompatible,
			BaseURL: trimmed,
			Model:   model,
		}, nil
	}

	if endpoint != "" {
		return ModelSpec{}, &ConfigError{Reason: "endpoint is not an http(s) URL: " + endpoint}
	}
	if model == "" {
		return ModelSpec{}, &ConfigError{Reason: "no model configured"}
	}

	spec := ModelSpec{Kind: KindRouter, Model: model}
	if idx := strings.Index(model, providerDelimiter); idx >= 0 {
		spec.Model = model[:idx]
		spec.ProviderHint = model[idx+len(providerDelimiter):]
		if spec.Model == "" {
			return ModelSpec{}, &ConfigError{Reason: "empty model before " + providerDelimiter}
		}
		if spec.ProviderHint == "" {
			return ModelSpec{}, &ConfigError{Reason: "empty provider hint after " + providerDelimiter}
		}
	}
	return spec, nil
}
