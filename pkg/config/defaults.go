package config

import "time"

const (
	defaultListen = ":8000"

	defaultVectorProvider   = "sqlite"
	defaultVectorPath       = "deckmind.db"
	defaultVectorCollection = "slide_pages"
	defaultDimensions       = 384

	defaultEmbeddingProvider = "ollama"
	defaultEmbeddingTarget   = "http://localhost:11434"
	defaultEmbeddingModel    = "all-minilm"

	defaultLLMTarget   = "https://api.openai.com/v1"
	defaultLLMModel    = "gpt-4-turbo-preview"
	defaultLLMTemplate = "default"

	defaultPerSourceTimeout = 10 * time.Second

	defaultContextTopK     = 3
	defaultPageConcurrency = 4

	defaultLogFormat = "pretty"
)

// NewDefaultConfig returns a Config with sane defaults for all fields.
// This is the single source of truth for default values.
func NewDefaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Listen: defaultListen,
		},
		VectorStore: VectorStoreConfig{
			Provider:   defaultVectorProvider,
			Path:       defaultVectorPath,
			Collection: defaultVectorCollection,
			Dimensions: defaultDimensions,
		},
		Embedding: EmbeddingConfig{
			Provider: defaultEmbeddingProvider,
			Target:   defaultEmbeddingTarget,
			Model:    defaultEmbeddingModel,
		},
		LLM: LLMConfig{
			Target:   defaultLLMTarget,
			Model:    defaultLLMModel,
			Template: defaultLLMTemplate,
		},
		Sources: SourcesConfig{
			PerSourceTimeout: defaultPerSourceTimeout,
		},
		Pipeline: PipelineConfig{
			ContextTopK:     defaultContextTopK,
			PageConcurrency: defaultPageConcurrency,
		},
		Log: LogConfig{
			Format: defaultLogFormat,
		},
	}
}
