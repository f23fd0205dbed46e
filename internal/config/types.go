package config

// Config is the root configuration for the call-center service.
type Config struct {
	OpenAI    OpenAIConfig    `yaml:"openai,omitempty"`
	Session   SessionConfig   `yaml:"session,omitempty"`
	Knowledge KnowledgeConfig `yaml:"knowledge,omitempty"`
	Audio     AudioConfig     `yaml:"audio,omitempty"`
}

// OpenAIConfig holds credentials and model choices. APIKey supports
// ${ENV_VAR} references so the key never lives in the file.
type OpenAIConfig struct {
	APIKey         string `yaml:"apiKey,omitempty"`
	Model          string `yaml:"model,omitempty"`
	EmbeddingModel string `yaml:"embeddingModel,omitempty"`
}

// SessionConfig shapes the realtime session.
type SessionConfig struct {
	Voice        string   `yaml:"voice,omitempty"`
	Instructions string   `yaml:"instructions,omitempty"`
	Temperature  *float64 `yaml:"temperature,omitempty"`
	Modalities   []string `yaml:"modalities,omitempty"`
}

// KnowledgeConfig selects and connects the knowledge store.
type KnowledgeConfig struct {
	Store           string   `yaml:"store,omitempty"` // "memory" | "mongo"
	MongoURI        string   `yaml:"mongoUri,omitempty"`
	MongoDatabase   string   `yaml:"mongoDatabase,omitempty"`
	MongoCollection string   `yaml:"mongoCollection,omitempty"`
	RedisAddr       string   `yaml:"redisAddr,omitempty"` // empty disables the hot cache
	CacheTTLMinutes int      `yaml:"cacheTtlMinutes,omitempty"`
	MinSimilarity   *float64 `yaml:"minSimilarity,omitempty"`
}

// AudioConfig selects the wire audio format.
type AudioConfig struct {
	Format string `yaml:"format,omitempty"` // "pcm16" | "g711_ulaw" | "g711_alaw"
}
