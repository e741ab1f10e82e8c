// Package app wires every domain service behind the HTTP API and runs the
// gateway server.
package app

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/halcyonlabs/inneros/internal/api"
	"github.com/halcyonlabs/inneros/internal/platform/cache"
	cachesqlite "github.com/halcyonlabs/inneros/internal/platform/cache/sqlite"
	"github.com/halcyonlabs/inneros/internal/platform/detach"
	"github.com/halcyonlabs/inneros/internal/platform/edge"
	"github.com/halcyonlabs/inneros/internal/services/assessments/culture"
	assessments "github.com/halcyonlabs/inneros/internal/services/assessments/domain"
	assessmentsqlite "github.com/halcyonlabs/inneros/internal/services/assessments/storage/sqlite"
	binders "github.com/halcyonlabs/inneros/internal/services/binders/domain"
	"github.com/halcyonlabs/inneros/internal/services/binders/export"
	"github.com/halcyonlabs/inneros/internal/services/binders/render"
	bindersqlite "github.com/halcyonlabs/inneros/internal/services/binders/storage/sqlite"
	broadcasts "github.com/halcyonlabs/inneros/internal/services/broadcasts/domain"
	broadcastsqlite "github.com/halcyonlabs/inneros/internal/services/broadcasts/storage/sqlite"
	documents "github.com/halcyonlabs/inneros/internal/services/documents/domain"
	documentsqlite "github.com/halcyonlabs/inneros/internal/services/documents/storage/sqlite"
	insights "github.com/halcyonlabs/inneros/internal/services/insights/domain"
	practices "github.com/halcyonlabs/inneros/internal/services/practices/domain"
	practicesqlite "github.com/halcyonlabs/inneros/internal/services/practices/storage/sqlite"
	preferences "github.com/halcyonlabs/inneros/internal/services/preferences/domain"
	preferencesqlite "github.com/halcyonlabs/inneros/internal/services/preferences/storage/sqlite"
	properties "github.com/halcyonlabs/inneros/internal/services/properties/domain"
	propertysqlite "github.com/halcyonlabs/inneros/internal/services/properties/storage/sqlite"
)

// RuntimeConfig controls gateway startup.
type RuntimeConfig struct {
	Addr           string
	DataDir        string
	AuthKey        string
	AuthIssuer     string
	EdgeBaseURL    string
	EdgeWebhookURL string
	EdgeAPIKey     string
	// PDFExport enables binder PDF printing through a headless browser.
	PDFExport bool
	// BrowserPath overrides the browser binary used for PDF printing.
	BrowserPath string
}

const (
	defaultAddr    = ":8080"
	defaultDataDir = "data"
	defaultIssuer  = "inneros"

	readHeaderTimeout = 5 * time.Second
	shutdownTimeout   = 10 * time.Second
)

// Run starts all stores and services and serves the HTTP API until the
// context ends.
func Run(ctx context.Context, cfg RuntimeConfig) error {
	if ctx == nil {
		ctx = context.Background()
	}
	if strings.TrimSpace(cfg.Addr) == "" {
		cfg.Addr = defaultAddr
	}
	if strings.TrimSpace(cfg.DataDir) == "" {
		cfg.DataDir = defaultDataDir
	}
	if strings.TrimSpace(cfg.AuthKey) == "" {
		return fmt.Errorf("auth signing key is required")
	}
	if strings.TrimSpace(cfg.AuthIssuer) == "" {
		cfg.AuthIssuer = defaultIssuer
	}
	if strings.TrimSpace(cfg.EdgeBaseURL) == "" {
		return fmt.Errorf("edge base url is required")
	}

	if err := os.MkdirAll(cfg.DataDir, 0o755); err != nil {
		return fmt.Errorf("create data dir: %w", err)
	}

	closeStore := func(name string, close func() error) {
		if err := close(); err != nil {
			log.Printf("close %s sqlite store: %v", name, err)
		}
	}

	documentStore, err := documentsqlite.Open(filepath.Join(cfg.DataDir, "documents.db"))
	if err != nil {
		return fmt.Errorf("open document sqlite store: %w", err)
	}
	defer closeStore("document", documentStore.Close)

	propertyStore, err := propertysqlite.Open(filepath.Join(cfg.DataDir, "properties.db"))
	if err != nil {
		return fmt.Errorf("open property sqlite store: %w", err)
	}
	defer closeStore("property", propertyStore.Close)

	practiceStore, err := practicesqlite.Open(filepath.Join(cfg.DataDir, "practices.db"))
	if err != nil {
		return fmt.Errorf("open practice sqlite store: %w", err)
	}
	defer closeStore("practice", practiceStore.Close)

	assessmentStore, err := assessmentsqlite.Open(filepath.Join(cfg.DataDir, "assessments.db"))
	if err != nil {
		return fmt.Errorf("open assessment sqlite store: %w", err)
	}
	defer closeStore("assessment", assessmentStore.Close)

	preferenceStore, err := preferencesqlite.Open(filepath.Join(cfg.DataDir, "preferences.db"))
	if err != nil {
		return fmt.Errorf("open preference sqlite store: %w", err)
	}
	defer closeStore("preference", preferenceStore.Close)

	broadcastStore, err := broadcastsqlite.Open(filepath.Join(cfg.DataDir, "broadcasts.db"))
	if err != nil {
		return fmt.Errorf("open broadcast sqlite store: %w", err)
	}
	defer closeStore("broadcast", broadcastStore.Close)

	binderStore, err := bindersqlite.Open(filepath.Join(cfg.DataDir, "binders.db"))
	if err != nil {
		return fmt.Errorf("open binder sqlite store: %w", err)
	}
	defer closeStore("binder", binderStore.Close)

	cacheStore, err := cachesqlite.Open(filepath.Join(cfg.DataDir, "cache.db"))
	if err != nil {
		return fmt.Errorf("open cache sqlite store: %w", err)
	}
	defer closeStore("cache", cacheStore.Close)

	edgeClient, err := edge.New(edge.Config{
		BaseURL:    cfg.EdgeBaseURL,
		WebhookURL: cfg.EdgeWebhookURL,
		APIKey:     cfg.EdgeAPIKey,
	})
	if err != nil {
		return fmt.Errorf("create edge client: %w", err)
	}

	runner := detach.NewRunner(log.Printf)
	defer runner.Close()

	documentService, err := documents.NewService(documentStore, edgeClient, edgeClient)
	if err != nil {
		return fmt.Errorf("create document service: %w", err)
	}
	propertyService, err := properties.NewService(propertyStore)
	if err != nil {
		return fmt.Errorf("create property service: %w", err)
	}
	detector, err := culture.NewDetector()
	if err != nil {
		return fmt.Errorf("create culture detector: %w", err)
	}
	assessmentService, err := assessments.NewService(assessmentStore, detector)
	if err != nil {
		return fmt.Errorf("create assessment service: %w", err)
	}
	practiceService, err := practices.NewService(practiceStore, assessmentChecker{assessments: assessmentService})
	if err != nil {
		return fmt.Errorf("create practice service: %w", err)
	}
	preferenceService, err := preferences.NewService(preferenceStore)
	if err != nil {
		return fmt.Errorf("create preference service: %w", err)
	}
	broadcastService, err := broadcasts.NewService(broadcastStore)
	if err != nil {
		return fmt.Errorf("create broadcast service: %w", err)
	}

	renderer, err := render.New()
	if err != nil {
		return fmt.Errorf("create binder renderer: %w", err)
	}
	var printer binders.Printer
	if cfg.PDFExport {
		pdf := export.NewPrinter()
		pdf.BrowserPath = cfg.BrowserPath
		printer = pdf
	}
	binderService, err := binders.NewService(
		binderStore,
		documentSource{documents: documentService},
		propertySource{properties: propertyService},
		renderer,
		printer,
	)
	if err != nil {
		return fmt.Errorf("create binder service: %w", err)
	}

	insightService, err := insights.NewService(
		insights.NewEdgeMetrics(edgeClient),
		edgeClient,
		insights.LocalCounts{
			Documents:  insights.CountFunc(documentStore.CountDocuments),
			Properties: insights.CountFunc(propertyStore.CountProperties),
			Broadcasts: insights.CountFunc(broadcastStore.CountBroadcasts),
		},
		cache.New(cacheStore, time.Now),
		runner,
	)
	if err != nil {
		return fmt.Errorf("create insights service: %w", err)
	}

	authenticator, err := api.NewAuthenticator([]byte(cfg.AuthKey), cfg.AuthIssuer)
	if err != nil {
		return fmt.Errorf("create authenticator: %w", err)
	}
	server, err := api.NewServer(api.Services{
		Assessments: assessmentService,
		Binders:     binderService,
		Broadcasts:  broadcastService,
		Documents:   documentService,
		Insights:    insightService,
		Practices:   practiceService,
		Preferences: preferenceService,
		Properties:  propertyService,
	}, authenticator)
	if err != nil {
		return fmt.Errorf("create api server: %w", err)
	}

	httpServer := &http.Server{
		Addr:              cfg.Addr,
		Handler:           server.Handler(),
		ReadHeaderTimeout: readHeaderTimeout,
	}

	serveErr := make(chan error, 1)
	log.Printf("gateway listening on %s", cfg.Addr)
	go func() {
		serveErr <- httpServer.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutdown http server: %w", err)
		}
		return nil
	case err := <-serveErr:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("serve http: %w", err)
	}
}
