package main

import (
	"fmt"
	"os"

	"github.com/boddenberg/card-advisor-go/internal/catalog"
	"github.com/boddenberg/card-advisor-go/internal/config"

	"github.com/spf13/cobra"
)

var catalogPath string

// rootCmd is the base command for the advisor CLI.
var rootCmd = &cobra.Command{
	Use:   "advisor",
	Short: "Credit card advisor",
	Long: `advisor picks the credit card that gives the longest interest-free
period for a planned purchase, and shows the reward it earns.

Run 'advisor serve' for the HTTP API or 'advisor recommend' for a one-off
answer in the terminal.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		// .env is optional and never overrides the real environment.
		if err := config.LoadDotEnv(); err != nil {
			return fmt.Errorf("load .env: %w", err)
		}
		if catalogPath == "" {
			catalogPath = os.Getenv("CATALOG_PATH")
		}
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&catalogPath, "catalog", "", "YAML card catalog (default: built-in catalog, or $CATALOG_PATH)")
}

// loadCatalog returns the catalog named by --catalog, or the built-in one.
func loadCatalog() (*catalog.Catalog, error) {
	if catalogPath == "" {
		return catalog.Default(), nil
	}
	return catalog.LoadFile(catalogPath)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
