// Package deckmindcmder
package deckmindcmder

import (
	"github.com/spf13/cobra"

	searchcmder "github.com/deckmind/deckmind/cmd/deckmind/search"
	servecmder "github.com/deckmind/deckmind/cmd/deckmind/serve"
)

const deckmindLongDesc string = `Deckmind augments presentation slides with generated explanatory
content, semantically similar material the system has already seen, and
results from external knowledge sources.

Run services using:
  deckmind serve       Run the API server
  deckmind search      Query external knowledge sources from the terminal`

const deckmindShortDesc string = "Deckmind - Slide Knowledge Augmentation"

func NewDeckmindCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "deckmind",
		Short: deckmindShortDesc,
		Long:  deckmindLongDesc,
	}

	// Global flags
	cmd.PersistentFlags().BoolP("debug", "d", false, "Enable debug logging")
	cmd.PersistentFlags().StringP("config", "c", "", "Directory containing deckmind.yaml")

	// Add subcommands
	cmd.AddCommand(servecmder.NewServeCmd())
	cmd.AddCommand(searchcmder.NewSearchCmd())

	return cmd
}
