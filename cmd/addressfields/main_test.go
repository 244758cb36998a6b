package main

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"

	"github.com/goliatone/go-addressfields/internal/config"
	"github.com/goliatone/go-addressfields/internal/logging"
	"github.com/goliatone/go-addressfields/pkg/address"
	"github.com/goliatone/go-addressfields/pkg/catalog"
	"github.com/goliatone/go-addressfields/pkg/metrics"
)

type stubPrompter struct {
	interactive bool
	code        string
	offered     []catalog.CountryInfo
}

func (p *stubPrompter) Interactive() bool { return p.interactive }

func (p *stubPrompter) SelectCountry(_ context.Context, countries []catalog.CountryInfo) (string, error) {
	p.offered = countries
	return p.code, nil
}

func execute(t *testing.T, cmd *cobra.Command, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func resolveRoot(prompter countryPrompter) *cobra.Command {
	root := newRootCmd()
	for _, c := range root.Commands() {
		if c.Name() == "resolve" {
			root.RemoveCommand(c)
		}
	}
	root.AddCommand(newResolveCmd(prompter))
	return root
}

func TestResolveCommand_JSON(t *testing.T) {
	out, err := execute(t, newRootCmd(), "resolve", "--country", "pr", "--locale", "fr", "--json")
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}

	var got resolveOutput
	if err := json.Unmarshal([]byte(out), &got); err != nil {
		t.Fatalf("decode output: %v\n%s", err, out)
	}
	if got.Country != "US" || got.RequestedCountry != "PR" || got.Locale != "fr" {
		t.Fatalf("unexpected header: %#v", got)
	}
	keys := make([]address.FieldKey, 0, len(got.Fields))
	for _, f := range got.Fields {
		keys = append(keys, f.Key)
	}
	want := []address.FieldKey{address.FieldAddress1, address.FieldAddress2, address.FieldCity, address.FieldZone, address.FieldPostalCode}
	if len(keys) != len(want) {
		t.Fatalf("unexpected fields: %v", keys)
	}
	for i := range want {
		if keys[i] != want[i] {
			t.Fatalf("unexpected field order: %v", keys)
		}
	}
}

func TestResolveCommand_Table(t *testing.T) {
	out, err := execute(t, newRootCmd(), "resolve", "-c", "DE", "-l", "de")
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if !strings.HasPrefix(out, "DE (de)\n") {
		t.Fatalf("unexpected heading: %q", out)
	}
	if !strings.Contains(out, "Straße und Hausnummer") {
		t.Fatalf("expected German street label, got:\n%s", out)
	}
}

func TestResolveCommand_RequiresCountryWithoutTerminal(t *testing.T) {
	_, err := execute(t, resolveRoot(&stubPrompter{}), "resolve")
	if err == nil || !strings.Contains(err.Error(), "--country") {
		t.Fatalf("expected missing country error, got %v", err)
	}
}

func TestResolveCommand_PromptsForCountry(t *testing.T) {
	prompter := &stubPrompter{interactive: true, code: "CA"}
	out, err := execute(t, resolveRoot(prompter), "resolve", "--json")
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if len(prompter.offered) == 0 {
		t.Fatalf("expected countries to be offered")
	}
	if !strings.Contains(out, `"country": "CA"`) {
		t.Fatalf("expected CA output, got:\n%s", out)
	}
}

func writeConfig(t *testing.T, raw string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "addressfields.yaml")
	if err := os.WriteFile(path, []byte(raw), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestResolveCommand_ReadsConfigFile(t *testing.T) {
	path := writeConfig(t, "defaultLocale: fr\nsession:\n  attemptTimeout: 2s\n  maxAttempts: 1\n")

	out, err := execute(t, newRootCmd(), "resolve", "--config", path, "--country", "CA", "--json")
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	var got resolveOutput
	if err := json.Unmarshal([]byte(out), &got); err != nil {
		t.Fatalf("decode output: %v\n%s", err, out)
	}
	if got.Locale != "fr" {
		t.Fatalf("expected config default locale fr, got %q", got.Locale)
	}
}

func TestApplyConfig_SessionSettings(t *testing.T) {
	cfg := config.Defaults()
	cfg.Session.AttemptTimeout = 250 * time.Millisecond
	cfg.Session.MaxAttempts = 3
	cfg.DefaultLocale = "es"
	cfg.CatalogPath = "custom.yaml"

	cmd := newResolveCmd(nil)
	var opts resolveOptions
	if path := applyConfig(cmd, &opts, cfg, true); path != "custom.yaml" {
		t.Fatalf("expected catalog path from config, got %q", path)
	}
	if opts.attemptTimeout != 250*time.Millisecond || opts.maxAttempts != 3 || opts.defaultLocale != "es" {
		t.Fatalf("unexpected options: %#v", opts)
	}

	cmd = newResolveCmd(nil)
	if err := cmd.Flags().Set("attempts", "5"); err != nil {
		t.Fatalf("set flag: %v", err)
	}
	opts = resolveOptions{maxAttempts: 5, defaultLocale: "de"}
	applyConfig(cmd, &opts, cfg, false)
	if opts.maxAttempts != 5 {
		t.Fatalf("expected --attempts to win over config, got %d", opts.maxAttempts)
	}
	if opts.attemptTimeout != 250*time.Millisecond {
		t.Fatalf("expected timeout from config, got %v", opts.attemptTimeout)
	}
	if opts.defaultLocale != "de" {
		t.Fatalf("expected explicit default locale to be kept, got %q", opts.defaultLocale)
	}
}

func TestCountriesCommand(t *testing.T) {
	out, err := execute(t, newRootCmd(), "countries", "--json")
	if err != nil {
		t.Fatalf("countries: %v", err)
	}
	var got []catalog.CountryInfo
	if err := json.Unmarshal([]byte(out), &got); err != nil {
		t.Fatalf("decode output: %v", err)
	}
	if len(got) == 0 || got[0].Code != "AU" {
		t.Fatalf("unexpected countries: %#v", got)
	}
}

func TestServerHandler_ServesFieldsAndMetrics(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	static, err := catalog.Default()
	if err != nil {
		t.Fatalf("default catalog: %v", err)
	}
	cfg := config.Defaults()
	cfg.BasePath = "/v1"
	reg := prometheus.NewRegistry()
	logger := logging.NewNop()

	handler, err := newServerHandler(cfg, buildCatalog(static, client, cfg, metrics.New(reg), logger), reg, logger)
	if err != nil {
		t.Fatalf("server handler: %v", err)
	}
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	for i := 0; i < 2; i++ {
		res, err := http.Get(srv.URL + "/v1/api/address-fields?country=IE")
		if err != nil {
			t.Fatalf("get fields: %v", err)
		}
		res.Body.Close()
		if res.StatusCode != http.StatusOK {
			t.Fatalf("expected 200, got %d", res.StatusCode)
		}
	}
	if !mr.Exists(cfg.Redis.Prefix + "IE:en") {
		t.Fatalf("expected metadata to be cached, keys: %v", mr.Keys())
	}

	res, err := http.Get(srv.URL + "/metrics")
	if err != nil {
		t.Fatalf("get metrics: %v", err)
	}
	defer res.Body.Close()
	var body bytes.Buffer
	if _, err := body.ReadFrom(res.Body); err != nil {
		t.Fatalf("read metrics: %v", err)
	}
	if !strings.Contains(body.String(), `addressfields_catalog_cache_results_total{result="hit"} 1`) {
		t.Fatalf("expected a cache hit in metrics, got:\n%s", body.String())
	}
}
