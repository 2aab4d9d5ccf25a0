// Package servecmder provides the serve command running the deckmind API server.
package servecmder

import (
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/deckmind/deckmind/api"
	"github.com/deckmind/deckmind/pkg/augment"
	"github.com/deckmind/deckmind/pkg/config"
	"github.com/deckmind/deckmind/pkg/embeddings"
	ollamaembed "github.com/deckmind/deckmind/pkg/embeddings/ollama"
	openaiembed "github.com/deckmind/deckmind/pkg/embeddings/openai"
	"github.com/deckmind/deckmind/pkg/index"
	openaillm "github.com/deckmind/deckmind/pkg/llm/openai"
	"github.com/deckmind/deckmind/pkg/logger"
	"github.com/deckmind/deckmind/pkg/pipeline"
	"github.com/deckmind/deckmind/pkg/sources"
	"github.com/deckmind/deckmind/pkg/vector"
	"github.com/deckmind/deckmind/pkg/vector/milvus"
	"github.com/deckmind/deckmind/pkg/vector/sqlitevec"
)

type ServeCommander struct {
	listen    string
	configDir string
	debug     bool
	cfg       *config.Config
	logger    *slog.Logger
}

const serveLongDesc string = `Run the deckmind API server.

The server accepts extracted presentations, augments every page through the
knowledge pipeline, and serves semantic search over indexed content.`

const serveShortDesc string = "Run the deckmind API server"

func NewServeCmd() *cobra.Command {
	cmder := &ServeCommander{}

	cmd := &cobra.Command{
		Use:   "serve",
		Short: serveShortDesc,
		Long:  serveLongDesc,
		RunE: func(cmd *cobra.Command, _ []string) error {
			var err error
			cmder.debug, err = cmd.Flags().GetBool("debug")
			if err != nil {
				return fmt.Errorf("could not get debug flag: %v", err)
			}
			cmder.configDir, err = cmd.Flags().GetString("config")
			if err != nil {
				return fmt.Errorf("could not get config flag: %v", err)
			}
			return cmder.run()
		},
	}

	cmd.Flags().StringVarP(&cmder.listen, "listen", "l", "", "Address for the API server to listen on")

	return cmd
}

func (c *ServeCommander) run() error {
	v, err := config.InitViper(c.configDir)
	if err != nil {
		return err
	}
	c.cfg, err = config.Load(v)
	if err != nil {
		return err
	}
	if c.listen != "" {
		c.cfg.Server.Listen = c.listen
	}

	c.logger = newLogger(c.cfg.Log, c.debug)

	embedder, err := c.createEmbedder()
	if err != nil {
		return err
	}
	defer embedder.Close()

	driver, err := c.createVectorDriver()
	if err != nil {
		return err
	}
	defer driver.Close()

	idx := index.New(embedder, driver, c.logger)

	chatter, err := openaillm.NewClient(openaillm.Config{
		BaseURL: c.cfg.LLM.Target,
		APIKey:  c.cfg.LLM.APIKey,
		Model:   c.cfg.LLM.Model,
	})
	if err != nil {
		return fmt.Errorf("creating llm client: %w", err)
	}
	augmenter := augment.NewClient(chatter, augment.Config{Model: c.cfg.LLM.Model}, c.logger)

	aggregator := sources.NewAggregator(c.createProviders(), sources.Config{
		PerSourceTimeout: c.cfg.Sources.PerSourceTimeout,
	}, c.logger)

	pipe := pipeline.New(idx, augmenter, aggregator, pipeline.Config{
		ContextTopK:     c.cfg.Pipeline.ContextTopK,
		TemplateType:    augment.TemplateType(c.cfg.LLM.Template),
		PageConcurrency: c.cfg.Pipeline.PageConcurrency,
	}, c.logger)

	server := api.NewServer(api.Config{ListenAddr: c.cfg.Server.Listen}, pipe, idx, c.logger)

	errChan := make(chan error, 1)
	go func() {
		if err := server.Run(); err != nil {
			errChan <- fmt.Errorf("API server error: %w", err)
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errChan:
		return err
	case sig := <-sigChan:
		c.logger.Info("received signal, shutting down", "signal", sig.String())
		return server.Shutdown()
	}
}

func (c *ServeCommander) createEmbedder() (embeddings.Embedder, error) {
	switch c.cfg.Embedding.Provider {
	case "openai":
		embedder, err := openaiembed.NewEmbedder(openaiembed.EmbedderConfig{
			BaseURL: c.cfg.Embedding.Target,
			APIKey:  c.cfg.Embedding.APIKey,
			Model:   c.cfg.Embedding.Model,
		})
		if err != nil {
			return nil, fmt.Errorf("creating openai embedder: %w", err)
		}
		return embedder, nil
	case "ollama", "":
		embedder, err := ollamaembed.NewEmbedder(ollamaembed.EmbedderConfig{
			BaseURL: c.cfg.Embedding.Target,
			Model:   c.cfg.Embedding.Model,
		})
		if err != nil {
			return nil, fmt.Errorf("creating ollama embedder: %w", err)
		}
		return embedder, nil
	default:
		return nil, fmt.Errorf("unknown embedding provider: %q", c.cfg.Embedding.Provider)
	}
}

func (c *ServeCommander) createVectorDriver() (vector.Driver, error) {
	switch c.cfg.VectorStore.Provider {
	case "milvus":
		driver, err := milvus.NewDriver(milvus.Config{
			URL:            c.cfg.VectorStore.URL,
			CollectionName: c.cfg.VectorStore.Collection,
			Dimensions:     uint(c.cfg.VectorStore.Dimensions),
		}, c.logger)
		if err != nil {
			return nil, fmt.Errorf("creating milvus driver: %w", err)
		}
		c.logger.Info("using milvus vector store", "url", c.cfg.VectorStore.URL)
		return driver, nil
	case "sqlite", "":
		driver, err := sqlitevec.NewDriver(sqlitevec.Config{
			DBPath:     c.cfg.VectorStore.Path,
			Dimensions: uint(c.cfg.VectorStore.Dimensions),
		}, c.logger)
		if err != nil {
			return nil, fmt.Errorf("creating sqlite-vec driver: %w", err)
		}
		c.logger.Info("using sqlite vector store", "path", c.cfg.VectorStore.Path)
		return driver, nil
	default:
		return nil, fmt.Errorf("unknown vector store provider: %q", c.cfg.VectorStore.Provider)
	}
}

func (c *ServeCommander) createProviders() []sources.Provider {
	all := []sources.Provider{
		sources.NewWikipediaProvider(sources.WikipediaConfig{}),
		sources.NewArxivProvider(sources.ArxivConfig{}),
		sources.NewScholarProvider(sources.ScholarConfig{APIKey: c.cfg.Sources.ScholarAPIKey}),
	}

	if len(c.cfg.Sources.Enabled) == 0 {
		return all
	}

	enabled := make(map[string]bool, len(c.cfg.Sources.Enabled))
	for _, name := range c.cfg.Sources.Enabled {
		enabled[name] = true
	}

	var providers []sources.Provider
	for _, p := range all {
		if enabled[string(p.Name())] {
			providers = append(providers, p)
		}
	}
	return providers
}

func newLogger(cfg config.LogConfig, debug bool) *slog.Logger {
	opts := []logger.Option{
		logger.WithDebug(debug || cfg.Debug),
	}
	switch cfg.Format {
	case "json":
		opts = append(opts, logger.WithJSON(true))
	case "pretty":
		opts = append(opts, logger.WithPretty(true))
	}
	return logger.New(opts...)
}
