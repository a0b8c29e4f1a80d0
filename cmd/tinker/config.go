package main

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/martinemde/tinker/llm"
)

// Config holds the CLI configuration. Values come from tinker.yaml when
// present, with environment variables taking precedence.
type Config struct {
	Model           string `yaml:"model"`
	Provider        string `yaml:"provider"`
	Workspace       string `yaml:"workspace"`
	SystemPrompt    string `yaml:"system_prompt"`
	MaxToolRounds   int    `yaml:"max_tool_rounds"`
	MaxOutputTokens int    `yaml:"max_output_tokens"`
	LogFile         string `yaml:"log_file"`
}

const defaultConfigFile = "tinker.yaml"

// LoadConfig reads the optional config file and applies environment
// overrides. A missing file is not an error; a malformed one is.
func LoadConfig(path string) (Config, error) {
	var cfg Config

	if path == "" {
		path = defaultConfigFile
	}
	data, err := os.ReadFile(path)
	if err == nil {
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return Config{}, fmt.Errorf("parsing %s: %w", path, err)
		}
	} else if !os.IsNotExist(err) {
		return Config{}, fmt.Errorf("reading %s: %w", path, err)
	}

	applyEnvOverrides(&cfg)
	applyDefaults(&cfg)
	return cfg, nil
}

func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("TINKER_MODEL"); v != "" {
		cfg.Model = v
	}
	if v := os.Getenv("TINKER_PROVIDER"); v != "" {
		cfg.Provider = v
	}
	if v := os.Getenv("TINKER_WORKSPACE"); v != "" {
		cfg.Workspace = v
	}
	if v := os.Getenv("TINKER_SYSTEM_PROMPT"); v != "" {
		cfg.SystemPrompt = v
	}
	if v := os.Getenv("TINKER_LOG_FILE"); v != "" {
		cfg.LogFile = v
	}
}

func applyDefaults(cfg *Config) {
	if cfg.Provider == "" && cfg.Model != "" {
		cfg.Provider = llm.ProviderForModel(cfg.Model)
	}
	if cfg.Model == "" {
		provider := cfg.Provider
		if provider == "" {
			provider = "anthropic"
		}
		cfg.Model = llm.DefaultModel(provider)
	}
}
