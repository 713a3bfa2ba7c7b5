package cmd

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	anthropicsdk "github.com/anthropics/anthropic-sdk-go"
	"github.com/spf13/viper"

	concierge "github.com/charleneleong-ai/multi-agent-travel-concierge"
	"github.com/charleneleong-ai/multi-agent-travel-concierge/agent"
	"github.com/charleneleong-ai/multi-agent-travel-concierge/logging"
	"github.com/charleneleong-ai/multi-agent-travel-concierge/model"
	"github.com/charleneleong-ai/multi-agent-travel-concierge/model/anthropic"
	"github.com/charleneleong-ai/multi-agent-travel-concierge/model/openai"
	"github.com/charleneleong-ai/multi-agent-travel-concierge/travel"
)

// loadConfig resolves configuration from (highest priority first) CONCIERGE_*
// environment variables and an optional concierge.yaml config file.
func loadConfig() (*viper.Viper, error) {
	cfg := viper.New()
	cfg.SetDefault("provider", "openai")
	cfg.SetDefault("log_level", "info")
	cfg.SetDefault("log_format", "text")
	cfg.SetDefault("decision_timeout", "60s")
	cfg.SetDefault("selection_timeout", "10s")
	cfg.SetDefault("tool_timeout", "15s")

	cfg.SetEnvPrefix("CONCIERGE")
	cfg.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	cfg.AutomaticEnv()

	cfg.SetConfigName("concierge")
	cfg.SetConfigType("yaml")
	cfg.AddConfigPath(".")
	cfg.AddConfigPath("$HOME/.config/concierge")
	if err := cfg.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}
	return cfg, nil
}

func buildLogger(cfg *viper.Viper) logging.Logger {
	level := slog.LevelInfo
	switch strings.ToLower(cfg.GetString("log_level")) {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	}
	return logging.New(&logging.Config{
		Level:  level,
		Format: cfg.GetString("log_format"),
	})
}

func buildModel(cfg *viper.Viper) (model.Model, error) {
	switch provider := strings.ToLower(cfg.GetString("provider")); provider {
	case "openai":
		return openai.NewModel(func(o *openai.Options) {
			if name := cfg.GetString("model"); name != "" {
				o.Model = name
			}
		}), nil
	case "anthropic":
		return anthropic.NewModel(func(o *anthropic.Options) {
			if name := cfg.GetString("model"); name != "" {
				o.Model = anthropicsdk.Model(name)
			}
			o.APIKey = cfg.GetString("anthropic_api_key")
		}), nil
	default:
		return nil, fmt.Errorf("unknown model provider %q", provider)
	}
}

// wireConcierge assembles the fully configured concierge: model, travel
// client, agents and tools.
func wireConcierge() (*concierge.Concierge, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}
	logger := buildLogger(cfg)

	llm, err := buildModel(cfg)
	if err != nil {
		return nil, err
	}

	rapidAPIKey := cfg.GetString("rapidapi_key")
	if rapidAPIKey == "" {
		return nil, fmt.Errorf("rapidapi_key is required (set CONCIERGE_RAPIDAPI_KEY)")
	}
	client := travel.NewClient(rapidAPIKey, func(o *travel.ClientOptions) {
		o.Logger = logger
	})

	c := concierge.New(func(o *concierge.Options) {
		o.Selector = agent.NewModelSelector(llm)
		o.SelectionTimeout = durationSetting(cfg, "selection_timeout")
		o.DecisionTimeout = durationSetting(cfg, "decision_timeout")
		o.ToolTimeout = durationSetting(cfg, "tool_timeout")
		o.Logger = logger
	})

	if err := travel.RegisterTools(c.Invoker(), client); err != nil {
		return nil, fmt.Errorf("register travel tools: %w", err)
	}

	for _, desc := range []struct {
		name string
		err  error
	}{
		{"travel_planner", c.RegisterAgent(travel.NewTravelPlannerAgent(llm, client))},
		{"legal_advisor", c.RegisterAgent(travel.NewLegalAdvisorAgent(llm))},
		{"local_expert", c.RegisterAgent(travel.NewLocalExpertAgent(llm, client))},
	} {
		if desc.err != nil {
			return nil, fmt.Errorf("register agent %s: %w", desc.name, desc.err)
		}
	}

	return c, nil
}

func durationSetting(cfg *viper.Viper, key string) time.Duration {
	d, err := time.ParseDuration(cfg.GetString(key))
	if err != nil {
		return 0
	}
	return d
}
