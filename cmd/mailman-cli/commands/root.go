package commands

import (
	"context"
	"fmt"
	"os"
	"time"

	"mailman-admin/internal/components/telemetry"
	"mailman-admin/internal/scrapers/mailman"
	"mailman-admin/lib/configutil"
	"mailman-admin/lib/restyutil"
	"mailman-admin/lib/serviceutil"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
)

type Config struct {
	BaseUrl  string `json:"base_url"`
	Password string `json:"password"`

	// ValidateCerts defaults to true when omitted.
	ValidateCerts    *bool  `json:"validate_certs"`
	SubmitLabel      string `json:"submit_label"`
	Timeout          string `json:"timeout"`
	CloudflareBypass bool   `json:"cloudflare_bypass"`

	// Layout replaces mailman.DefaultLayout entirely when set.
	Layout *mailman.Layout `json:"layout"`
}

var (
	configPath *string
	dumpHttp   *string
	baseUrl    *string
)

var rootCmd = &cobra.Command{
	Use:   "mailman-cli",
	Short: "mailman-cli administers the members of a mailman 2 mailing list.",
}

func init() {
	configPath = rootCmd.PersistentFlags().String("config", "mailman.json5", "The json5 config to read the list url and password from.")
	dumpHttp = rootCmd.PersistentFlags().String("dump-http", "", "A directory to dump every http exchange into.")
	baseUrl = rootCmd.PersistentFlags().String("base-url", "", "Overrides the base_url of the config.")
}

func ExecuteContext(ctx context.Context) {
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func clientOptions(cfg Config) (mailman.ClientOptions, error) {
	opts := mailman.ClientOptions{
		BaseUrl:            cfg.BaseUrl,
		Password:           cfg.Password,
		SkipCertValidation: cfg.ValidateCerts != nil && !*cfg.ValidateCerts,
		SubmitLabel:        cfg.SubmitLabel,
		CloudflareBypass:   cfg.CloudflareBypass,
		Layout:             cfg.Layout,
	}
	if *baseUrl != "" {
		opts.BaseUrl = *baseUrl
	}
	if opts.BaseUrl == "" {
		return opts, fmt.Errorf("base_url is not configured")
	}
	if cfg.Timeout != "" {
		timeout, err := time.ParseDuration(cfg.Timeout)
		if err != nil {
			return opts, fmt.Errorf("parse timeout: %w", err)
		}
		opts.Timeout = timeout
	}
	if *dumpHttp != "" {
		output, err := restyutil.NewFilesystemOutput(*dumpHttp)
		if err != nil {
			return opts, fmt.Errorf("create dump directory: %w", err)
		}
		opts.MessageOutput = output
	}
	return opts, nil
}

// createClient reads the config and logs in, exiting on failure.
func createClient(ctx context.Context) *mailman.Client {
	cfg, err := configutil.ReadConfig[Config](*configPath)
	if err != nil {
		serviceutil.Fatal("failed to read config", err)
	}
	opts, err := clientOptions(cfg)
	if err != nil {
		serviceutil.Fatal("invalid config", err)
	}

	tel := telemetry.NewMeteredAPI(telemetry.SlogAPI{}, nil)
	client, err := mailman.NewClient(ctx, opts, tel)
	if err != nil {
		serviceutil.Fatal("failed to login to mailman", err)
	}
	return client
}

func newTable() table.Writer {
	t := table.NewWriter()
	t.SetStyle(table.StyleRounded)
	t.SetOutputMirror(os.Stdout)
	return t
}
