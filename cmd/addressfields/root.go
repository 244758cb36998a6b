package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/goliatone/go-addressfields/internal/logging"
	"github.com/goliatone/go-addressfields/pkg/catalog"
)

// Execute runs the root command and exits non-zero on failure.
func Execute() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "addressfields",
		Short:         "Resolve postal address form fields per country and locale",
		Long:          `addressfields reports which address fields a form should collect for a country, in which order, with which labels, and which subdivisions a region field offers.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.PersistentFlags().String("config", "", "Configuration file (YAML or JSON)")
	root.PersistentFlags().String("catalog", "", "Country metadata document (YAML or JSON); embedded catalog when empty")
	root.PersistentFlags().String("log-level", "warn", "Log level (debug, info, warn, error)")

	root.AddCommand(newResolveCmd(surveyPrompter{}))
	root.AddCommand(newCountriesCmd())
	root.AddCommand(newServeCmd())
	return root
}

// loadCatalog returns the embedded catalog, or the document at path when set.
func loadCatalog(path string) (*catalog.Static, error) {
	if path == "" {
		return catalog.Default()
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open catalog: %w", err)
	}
	defer f.Close()
	return catalog.Load(f, path)
}

func commandLogger(cmd *cobra.Command) *slog.Logger {
	level, _ := cmd.Flags().GetString("log-level")
	return logging.NewWithWriter(cmd.ErrOrStderr(), logging.ParseLevel(level))
}
