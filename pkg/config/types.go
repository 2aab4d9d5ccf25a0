package config

import "time"

// Config is the full deckmind configuration, loaded from deckmind.yaml with
// environment-variable and flag overrides layered on top.
type Config struct {
	Server      ServerConfig      `mapstructure:"server"`
	VectorStore VectorStoreConfig `mapstructure:"vector_store"`
	Embedding   EmbeddingConfig   `mapstructure:"embedding"`
	LLM         LLMConfig         `mapstructure:"llm"`
	Sources     SourcesConfig     `mapstructure:"sources"`
	Pipeline    PipelineConfig    `mapstructure:"pipeline"`
	Log         LogConfig         `mapstructure:"log"`
}

// ServerConfig holds API server settings.
type ServerConfig struct {
	Listen string `mapstructure:"listen"`
}

// VectorStoreConfig holds vector backend settings. Provider selects the
// driver: "sqlite" (embedded) or "milvus" (remote).
type VectorStoreConfig struct {
	Provider   string `mapstructure:"provider"`
	Path       string `mapstructure:"path"`
	URL        string `mapstructure:"url"`
	Collection string `mapstructure:"collection"`
	Dimensions int    `mapstructure:"dimensions"`
}

// EmbeddingConfig holds embedding provider settings. Provider is "ollama"
// or "openai".
type EmbeddingConfig struct {
	Provider string `mapstructure:"provider"`
	Target   string `mapstructure:"target"`
	Model    string `mapstructure:"model"`
	APIKey   string `mapstructure:"api_key"`
}

// LLMConfig holds generative-text provider settings.
type LLMConfig struct {
	Target   string `mapstructure:"target"`
	Model    string `mapstructure:"model"`
	APIKey   string `mapstructure:"api_key"`
	Template string `mapstructure:"template"`
}

// SourcesConfig holds external knowledge source settings. Enabled names the
// sources queried per page; an empty list means all registered sources.
type SourcesConfig struct {
	Enabled          []string      `mapstructure:"enabled"`
	PerSourceTimeout time.Duration `mapstructure:"per_source_timeout"`
	ScholarAPIKey    string        `mapstructure:"scholar_api_key"`
}

// PipelineConfig holds per-document processing settings.
type PipelineConfig struct {
	ContextTopK     int `mapstructure:"context_top_k"`
	PageConcurrency int `mapstructure:"page_concurrency"`
}

// LogConfig holds logging settings.
type LogConfig struct {
	Debug  bool   `mapstructure:"debug"`
	Format string `mapstructure:"format"` // "pretty", "json", or "text"
}
