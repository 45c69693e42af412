package inference

import (
	"context"
	"fmt"
	"strings"

	"github.com/DigitariaWebs/corp1o1-sub005/internal/utils/httpclients"
	"github.com/DigitariaWebs/corp1o1-sub005/internal/utils/platformerrors"
)

// ProviderKind selects the authentication scheme for a backend.
type ProviderKind string

const (
	ProviderOpenAI           ProviderKind = "openai"
	ProviderAzureOpenAI      ProviderKind = "azure-openai"
	ProviderAnthropic        ProviderKind = "anthropic"
	ProviderOpenAICompatible ProviderKind = "openai-compatible"
)

// Provider describes one configured model backend.
type Provider struct {
	Name         string       `yaml:"name"`
	Kind         ProviderKind `yaml:"kind"`
	BaseURL      string       `yaml:"base_url"`
	APIKey       string       `yaml:"api_key"`
	DefaultModel string       `yaml:"default_model"`
}

// NewGateway builds a Gateway for the provider, attaching the auth headers its
// kind requires.
func NewGateway(provider Provider) Gateway {
	clientName := fmt.Sprintf("%sClient", provider.Name)
	client := httpclients.NewClient(clientName)

	apiKey := strings.TrimSpace(provider.APIKey)
	if apiKey != "" && strings.ToLower(apiKey) != "none" {
		switch provider.Kind {
		case ProviderAzureOpenAI:
			client.SetHeader("api-key", apiKey)
		case ProviderAnthropic:
			client.SetHeader("X-API-Key", apiKey)
			client.SetHeader("Anthropic-Version", "2023-06-01")
		default:
			client.SetHeader("Authorization", fmt.Sprintf("Bearer %s", apiKey))
		}
	}

	return NewOpenAIGateway(client, provider.Name, provider.BaseURL)
}

// Registry holds the configured backends and hands out gateways by name.
type Registry struct {
	gateways    map[string]Gateway
	providers   map[string]Provider
	defaultName string
}

// NewRegistry builds a registry from the configured providers. The first
// provider is the default.
func NewRegistry(providers []Provider) (*Registry, error) {
	if len(providers) == 0 {
		return nil, fmt.Errorf("no model providers configured")
	}

	reg := &Registry{
		gateways:    make(map[string]Gateway, len(providers)),
		providers:   make(map[string]Provider, len(providers)),
		defaultName: providers[0].Name,
	}
	for _, p := range providers {
		if strings.TrimSpace(p.Name) == "" {
			return nil, fmt.Errorf("model provider with empty name")
		}
		if _, exists := reg.gateways[p.Name]; exists {
			return nil, fmt.Errorf("duplicate model provider %q", p.Name)
		}
		reg.gateways[p.Name] = NewGateway(p)
		reg.providers[p.Name] = p
	}
	return reg, nil
}

// Default returns the default gateway and its provider definition.
func (r *Registry) Default() (Gateway, Provider) {
	return r.gateways[r.defaultName], r.providers[r.defaultName]
}

// Get returns the gateway and provider for name. An empty name resolves to the
// default provider.
func (r *Registry) Get(ctx context.Context, name string) (Gateway, Provider, error) {
	if strings.TrimSpace(name) == "" {
		gw, p := r.Default()
		return gw, p, nil
	}
	gw, ok := r.gateways[name]
	if !ok {
		return nil, Provider{}, platformerrors.NewError(ctx, platformerrors.LayerInfrastructure, platformerrors.ErrorTypeValidation, fmt.Sprintf("unknown model provider %q", name), nil, "a9b8c7d6-e5f4-4a3b-9c2d-1e0f9a8b7c6d")
	}
	return gw, r.providers[name], nil
}

// Names lists the registered provider names.
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.gateways))
	for name := range r.gateways {
		names = append(names, name)
	}
	return names
}
