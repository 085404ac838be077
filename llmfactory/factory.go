package llmfactory

import (
	"strings"
	"sync"

	"github.com/effective-security/xlog"
	"github.com/pkg/errors"
	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/openai"
)

var logger = xlog.NewPackageLogger("github.com/globalguide/travelagent", "llmfactory")

type Factory interface {
	// DefaultModel returns the model of the first configured provider.
	DefaultModel() (llms.Model, error)
	// ModelByName returns the model of the named provider.
	ModelByName(name string) (llms.Model, error)
}

// Load returns a factory from the config file at location.
func Load(location string) (Factory, error) {
	cfg, err := LoadConfig(location)
	if err != nil {
		return nil, err
	}
	return New(cfg), nil
}

type factory struct {
	cfg *Config

	byName map[string]llms.Model
	lock   sync.Mutex
}

// New creates a new LLM factory
func New(cfg *Config) Factory {
	return &factory{
		cfg:    cfg,
		byName: make(map[string]llms.Model),
	}
}

// NewLLM creates the langchaingo client for one provider.
func NewLLM(cfg *ProviderConfig) (llms.Model, error) {
	var opts []openai.Option
	if cfg.Token != "" {
		opts = append(opts, openai.WithToken(cfg.Token))
	}

	switch typ := strings.ToUpper(cfg.OpenAI.APIType); typ {
	case "AZURE", "AZURE_AD":
		if typ == "AZURE" {
			opts = append(opts, openai.WithAPIType(openai.APITypeAzure))
		} else {
			opts = append(opts, openai.WithAPIType(openai.APITypeAzureAD))
		}
		opts = append(opts, openai.WithAPIVersion(cfg.OpenAI.APIVersion))
	default:
		opts = append(opts, openai.WithAPIType(openai.APITypeOpenAI))
	}

	if cfg.DefaultModel != "" {
		opts = append(opts, openai.WithModel(cfg.DefaultModel))
	}
	if cfg.OpenAI.BaseURL != "" {
		opts = append(opts, openai.WithBaseURL(cfg.OpenAI.BaseURL))
	}
	if cfg.OpenAI.OrgID != "" {
		opts = append(opts, openai.WithOrganization(cfg.OpenAI.OrgID))
	}
	return openai.New(opts...)
}

func (f *factory) DefaultModel() (llms.Model, error) {
	if len(f.cfg.Providers) == 0 {
		return nil, errors.New("no providers configured")
	}
	return f.ModelByName(f.cfg.Providers[0].Name)
}

func (f *factory) ModelByName(name string) (llms.Model, error) {
	f.lock.Lock()
	defer f.lock.Unlock()

	if client, ok := f.byName[name]; ok {
		return client, nil
	}

	for _, cfg := range f.cfg.Providers {
		if cfg.Name == name {
			model, err := NewLLM(cfg)
			if err != nil {
				return nil, err
			}

			logger.KV(xlog.DEBUG,
				"status", "created_llm",
				"type", cfg.OpenAI.APIType,
				"model", cfg.DefaultModel,
				"name", cfg.Name)

			f.byName[name] = model
			return model, nil
		}
	}
	return nil, errors.Errorf("provider not found for name: %s", name)
}
