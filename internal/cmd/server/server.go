// Package server parses gateway command flags and launches the HTTP API
// runtime.
package server

import (
	"context"
	"flag"

	entrypoint "github.com/halcyonlabs/inneros/internal/platform/cmd"
	gateway "github.com/halcyonlabs/inneros/internal/services/gateway/app"
)

// Config holds gateway command configuration.
type Config struct {
	Addr           string `env:"INNEROS_SERVER_ADDR" envDefault:":8080"`
	DataDir        string `env:"INNEROS_SERVER_DATA_DIR" envDefault:"data"`
	AuthKey        string `env:"INNEROS_SERVER_AUTH_KEY"`
	AuthIssuer     string `env:"INNEROS_SERVER_AUTH_ISSUER" envDefault:"inneros"`
	EdgeBaseURL    string `env:"INNEROS_EDGE_BASE_URL"`
	EdgeWebhookURL string `env:"INNEROS_EDGE_WEBHOOK_URL"`
	EdgeAPIKey     string `env:"INNEROS_EDGE_API_KEY"`
	PDFExport      bool   `env:"INNEROS_SERVER_PDF_EXPORT"`
	BrowserPath    string `env:"INNEROS_SERVER_BROWSER_PATH"`
}

// ParseConfig parses environment and flags into a Config.
func ParseConfig(fs *flag.FlagSet, args []string) (Config, error) {
	var cfg Config
	if err := entrypoint.ParseConfig(&cfg); err != nil {
		return Config{}, err
	}
	fs.StringVar(&cfg.Addr, "addr", cfg.Addr, "The HTTP listen address")
	fs.StringVar(&cfg.DataDir, "data-dir", cfg.DataDir, "The SQLite data directory")
	fs.StringVar(&cfg.AuthKey, "auth-key", cfg.AuthKey, "The bearer-token HMAC signing key")
	fs.StringVar(&cfg.AuthIssuer, "auth-issuer", cfg.AuthIssuer, "The bearer-token issuer")
	fs.StringVar(&cfg.EdgeBaseURL, "edge-base-url", cfg.EdgeBaseURL, "The edge function base URL")
	fs.StringVar(&cfg.EdgeWebhookURL, "edge-webhook-url", cfg.EdgeWebhookURL, "The edge delivery webhook URL")
	fs.StringVar(&cfg.EdgeAPIKey, "edge-api-key", cfg.EdgeAPIKey, "The edge function API key")
	fs.BoolVar(&cfg.PDFExport, "pdf-export", cfg.PDFExport, "Enable binder PDF printing")
	fs.StringVar(&cfg.BrowserPath, "browser-path", cfg.BrowserPath, "Browser binary for PDF printing")
	if err := entrypoint.ParseArgs(fs, args); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Run starts the gateway runtime.
func Run(ctx context.Context, cfg Config) error {
	return entrypoint.RunWithTelemetry(ctx, entrypoint.ServiceServer, func(context.Context) error {
		return gateway.Run(ctx, gateway.RuntimeConfig{
			Addr:           cfg.Addr,
			DataDir:        cfg.DataDir,
			AuthKey:        cfg.AuthKey,
			AuthIssuer:     cfg.AuthIssuer,
			EdgeBaseURL:    cfg.EdgeBaseURL,
			EdgeWebhookURL: cfg.EdgeWebhookURL,
			EdgeAPIKey:     cfg.EdgeAPIKey,
			PDFExport:      cfg.PDFExport,
			BrowserPath:    cfg.BrowserPath,
		})
	})
}
