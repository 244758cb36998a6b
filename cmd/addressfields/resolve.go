package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/goliatone/go-addressfields/internal/config"
	"github.com/goliatone/go-addressfields/pkg/address"
	"github.com/goliatone/go-addressfields/pkg/catalog"
	"github.com/goliatone/go-addressfields/pkg/locale"
	"github.com/goliatone/go-addressfields/pkg/session"
)

type resolveOptions struct {
	country        string
	locale         string
	defaultLocale  string
	asJSON         bool
	attemptTimeout time.Duration
	maxAttempts    int
}

type resolveOutput struct {
	Country          string                    `json:"country"`
	RequestedCountry string                    `json:"requestedCountry"`
	Locale           string                    `json:"locale"`
	Fields           []address.FieldDescriptor `json:"fields"`
}

func newResolveCmd(prompter countryPrompter) *cobra.Command {
	var opts resolveOptions
	cmd := &cobra.Command{
		Use:   "resolve",
		Short: "Print the address fields for a country",
		Long:  `Resolves the ordered address fields for a country and locale. Without --country an interactive prompt is shown when stdin is a terminal.`,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			configPath, _ := cmd.Flags().GetString("config")
			cfg, err := config.Load(configPath)
			if err != nil {
				return err
			}
			catalogPath := applyConfig(cmd, &opts, cfg, configPath != "")

			cat, err := loadCatalog(catalogPath)
			if err != nil {
				return err
			}
			if opts.defaultLocale == "" {
				opts.defaultLocale = cat.DefaultLocale()
			}

			ctx := cmd.Context()
			if ctx == nil {
				ctx = context.Background()
			}
			if strings.TrimSpace(opts.country) == "" {
				if prompter == nil || !prompter.Interactive() {
					return errors.New("addressfields: --country is required")
				}
				opts.country, err = prompter.SelectCountry(ctx, cat.Countries())
				if err != nil {
					return err
				}
			}

			res, err := runResolve(ctx, catalog.NewSanitized(cat), opts, commandLogger(cmd))
			if err != nil {
				return err
			}
			return printResolved(cmd.OutOrStdout(), res, opts.asJSON)
		},
	}

	cmd.Flags().StringVarP(&opts.country, "country", "c", "", "ISO 3166-1 alpha-2 country code")
	cmd.Flags().StringVarP(&opts.locale, "locale", "l", "", "Locale preference (BCP 47)")
	cmd.Flags().StringVar(&opts.defaultLocale, "default-locale", "", "Locale used when --locale is empty or invalid")
	cmd.Flags().BoolVar(&opts.asJSON, "json", false, "Print JSON instead of a table")
	cmd.Flags().DurationVar(&opts.attemptTimeout, "timeout", session.DefaultAttemptTimeout, "Timeout for each metadata fetch attempt (overrides config)")
	cmd.Flags().IntVar(&opts.maxAttempts, "attempts", session.DefaultMaxAttempts, "Metadata fetch attempts before giving up (overrides config)")
	return cmd
}

// applyConfig fills the options that were not set on the command line from
// cfg and returns the catalog path to load. Locale and catalog settings are
// only taken from cfg when a configuration file was given.
func applyConfig(cmd *cobra.Command, opts *resolveOptions, cfg config.Config, fromFile bool) string {
	flags := cmd.Flags()
	if !flags.Changed("timeout") {
		opts.attemptTimeout = cfg.Session.AttemptTimeout
	}
	if !flags.Changed("attempts") {
		opts.maxAttempts = cfg.Session.MaxAttempts
	}

	catalogPath, _ := flags.GetString("catalog")
	if !fromFile {
		return catalogPath
	}
	if opts.defaultLocale == "" {
		opts.defaultLocale = cfg.DefaultLocale
	}
	if catalogPath == "" {
		catalogPath = cfg.CatalogPath
	}
	return catalogPath
}

func runResolve(ctx context.Context, cat catalog.Catalog, opts resolveOptions, logger *slog.Logger) (session.Result, error) {
	s := session.New(cat,
		session.WithLogger(logger),
		session.WithLocaleResolver(locale.NewResolver(locale.WithDefault(opts.defaultLocale))),
		session.WithAttemptTimeout(opts.attemptTimeout),
		session.WithMaxAttempts(opts.maxAttempts),
	)
	defer s.Close()

	if _, err := s.Select(strings.ToUpper(opts.country), opts.locale); err != nil {
		return session.Result{}, err
	}
	res, err := s.Wait(ctx)
	if err != nil {
		return session.Result{}, err
	}
	logger.Debug("resolved address fields", "country", res.Country, "locale", res.Locale, "status", res.Status.String())
	if !res.Ready() {
		return res, fmt.Errorf("addressfields: metadata for %s unavailable: %w", res.Country, res.Err)
	}
	return res, nil
}

func printResolved(w io.Writer, res session.Result, asJSON bool) error {
	if asJSON {
		fields := res.Fields
		if fields == nil {
			fields = []address.FieldDescriptor{}
		}
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(resolveOutput{
			Country:          res.Country,
			RequestedCountry: res.Requested,
			Locale:           res.Locale,
			Fields:           fields,
		})
	}

	fmt.Fprintf(w, "%s (%s)\n", res.Country, res.Locale)
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "FIELD\tLABEL\tREQUIRED\tOPTIONS")
	for _, field := range res.Fields {
		required := "yes"
		if !field.Required {
			required = "no"
		}
		options := "-"
		if field.HasZoneOptions() {
			options = fmt.Sprintf("%d", len(field.ZoneOptions))
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", field.Key, field.Label, required, options)
	}
	return tw.Flush()
}
