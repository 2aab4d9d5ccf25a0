// Package searchcmder provides a one-shot external knowledge source query
// from the terminal.
package searchcmder

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/deckmind/deckmind/pkg/config"
	"github.com/deckmind/deckmind/pkg/logger"
	"github.com/deckmind/deckmind/pkg/sources"
)

type SearchCommander struct {
	limit   int
	enabled []string
	debug   bool
}

const searchLongDesc string = `Query the external knowledge sources (Wikipedia, arXiv, Semantic Scholar)
and print the merged, relevance-ranked results.`

const searchShortDesc string = "Query external knowledge sources"

func NewSearchCmd() *cobra.Command {
	cmder := &SearchCommander{}

	cmd := &cobra.Command{
		Use:   "search <query>",
		Short: searchShortDesc,
		Long:  searchLongDesc,
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var err error
			cmder.debug, err = cmd.Flags().GetBool("debug")
			if err != nil {
				return fmt.Errorf("could not get debug flag: %v", err)
			}
			configDir, err := cmd.Flags().GetString("config")
			if err != nil {
				return fmt.Errorf("could not get config flag: %v", err)
			}
			return cmder.run(cmd, configDir, strings.Join(args, " "))
		},
	}

	cmd.Flags().IntVarP(&cmder.limit, "limit", "n", sources.DefaultPerSourceLimit, "Results per source")
	cmd.Flags().StringSliceVarP(&cmder.enabled, "sources", "s", nil, "Sources to query (default: all)")

	return cmd
}

func (c *SearchCommander) run(cmd *cobra.Command, configDir, query string) error {
	v, err := config.InitViper(configDir)
	if err != nil {
		return err
	}
	cfg, err := config.Load(v)
	if err != nil {
		return err
	}

	log := logger.New(logger.WithDebug(c.debug), logger.WithPretty(true))

	providers := []sources.Provider{
		sources.NewWikipediaProvider(sources.WikipediaConfig{}),
		sources.NewArxivProvider(sources.ArxivConfig{}),
		sources.NewScholarProvider(sources.ScholarConfig{APIKey: cfg.Sources.ScholarAPIKey}),
	}
	aggregator := sources.NewAggregator(providers, sources.Config{
		PerSourceTimeout: cfg.Sources.PerSourceTimeout,
	}, log)

	var requested []sources.SourceName
	for _, name := range c.enabled {
		requested = append(requested, sources.SourceName(name))
	}

	out := aggregator.SearchAll(context.Background(), query, requested, c.limit)

	for name, outcome := range out.BySource {
		if outcome.Failed() {
			cmd.PrintErrf("%s: %s\n", name, outcome.Reason)
		}
	}

	if len(out.Merged) == 0 {
		cmd.Println("no results")
		return nil
	}

	for i, r := range out.Merged {
		cmd.Printf("%2d. [%s] %s (%.2f)\n", i+1, r.Source, r.Title, r.RelevanceScore)
		if r.Summary != "" {
			cmd.Printf("    %s\n", r.Summary)
		}
		if r.URL != "" {
			cmd.Printf("    %s\n", r.URL)
		}
	}
	return nil
}
