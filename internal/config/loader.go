// Package config loads the service's YAML configuration with defaults,
// environment overrides, and ${ENV_VAR} expansion for secrets.
package config

import (
	"fmt"
	"os"
	"regexp"

	"github.com/Cloudinfo-Github/call-center-ai/core/audio"
	"github.com/Cloudinfo-Github/call-center-ai/core/realtime"
	openaiembed "github.com/Cloudinfo-Github/call-center-ai/core/embeddings/openai"
	"gopkg.in/yaml.v3"
)

// Defaults returns the configuration used when no file is present.
func Defaults() Config {
	return Config{
		OpenAI: OpenAIConfig{
			Model:          realtime.DefaultModel,
			EmbeddingModel: openaiembed.DefaultModel,
		},
		Session: SessionConfig{
			Voice: realtime.DefaultVoice,
		},
		Knowledge: KnowledgeConfig{
			Store:           "memory",
			CacheTTLMinutes: 60,
		},
		Audio: AudioConfig{
			Format: string(audio.FormatPCM16),
		},
	}
}

// envVarPattern matches ${VAR_NAME} references in strings.
var envVarPattern = regexp.MustCompile(`\$\{([A-Za-z_][A-Za-z0-9_]*)\}`)

// expandEnvVars replaces ${VAR} references with environment values.
// Unset variables are left unchanged.
func expandEnvVars(s string) string {
	return envVarPattern.ReplaceAllStringFunc(s, func(match string) string {
		if value, ok := os.LookupEnv(match[2 : len(match)-1]); ok {
			return value
		}
		return match
	})
}

// expandSensitiveFields processes ${ENV_VAR} references in credential
// fields so keys and connection strings can stay out of the file.
func expandSensitiveFields(cfg *Config) {
	cfg.OpenAI.APIKey = expandEnvVars(cfg.OpenAI.APIKey)
	cfg.Knowledge.MongoURI = expandEnvVars(cfg.Knowledge.MongoURI)
	cfg.Knowledge.RedisAddr = expandEnvVars(cfg.Knowledge.RedisAddr)
}

// Load reads the config file, applies defaults and environment
// overrides, and returns the merged Config. A missing file produces
// defaults only.
func Load(path string) (Config, error) {
	cfg := Defaults()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			applyEnvOverrides(&cfg)
			return cfg, nil
		}
		return cfg, err
	}

	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("failed to parse config: %w", err)
	}

	applyDefaults(&cfg)
	applyEnvOverrides(&cfg)
	expandSensitiveFields(&cfg)
	return cfg, nil
}

// applyDefaults fills zero-value fields after an explicit file load.
func applyDefaults(cfg *Config) {
	if cfg.OpenAI.Model == "" {
		cfg.OpenAI.Model = realtime.DefaultModel
	}
	if cfg.OpenAI.EmbeddingModel == "" {
		cfg.OpenAI.EmbeddingModel = openaiembed.DefaultModel
	}
	if cfg.Session.Voice == "" {
		cfg.Session.Voice = realtime.DefaultVoice
	}
	if cfg.Knowledge.Store == "" {
		cfg.Knowledge.Store = "memory"
	}
	if cfg.Knowledge.CacheTTLMinutes == 0 {
		cfg.Knowledge.CacheTTLMinutes = 60
	}
	if cfg.Audio.Format == "" {
		cfg.Audio.Format = string(audio.FormatPCM16)
	}
}

// applyEnvOverrides reads CALLCENTERAI_* environment variables over
// whatever the file provided.
func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("CALLCENTERAI_OPENAI_API_KEY"); v != "" {
		cfg.OpenAI.APIKey = v
	}
	if v := os.Getenv("CALLCENTERAI_MODEL"); v != "" {
		cfg.OpenAI.Model = v
	}
	if v := os.Getenv("CALLCENTERAI_VOICE"); v != "" {
		cfg.Session.Voice = v
	}
	if v := os.Getenv("CALLCENTERAI_MONGO_URI"); v != "" {
		cfg.Knowledge.MongoURI = v
	}
	if v := os.Getenv("CALLCENTERAI_REDIS_ADDR"); v != "" {
		cfg.Knowledge.RedisAddr = v
	}
}
