// Package export prints rendered binder HTML to PDF through a headless
// browser.
package export

import (
	"context"
	"fmt"
	"io"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/proto"
)

// Printer rasterizes HTML documents to PDF with a headless Chromium
// instance. Each call launches and tears down its own browser; binder
// generation is rare enough that keeping one warm is not worth the
// lifecycle handling.
type Printer struct {
	// BrowserPath overrides the browser binary; empty means rod's
	// default lookup.
	BrowserPath string
}

// NewPrinter creates a PDF printer.
func NewPrinter() *Printer {
	return &Printer{}
}

// PrintPDF renders the HTML document and returns the PDF bytes.
func (p *Printer) PrintPDF(ctx context.Context, html []byte) ([]byte, error) {
	if p == nil {
		return nil, fmt.Errorf("printer is not configured")
	}
	if len(html) == 0 {
		return nil, fmt.Errorf("html document is required")
	}

	chrome := launcher.New().Headless(true)
	if p.BrowserPath != "" {
		chrome = chrome.Bin(p.BrowserPath)
	}
	controlURL, err := chrome.Launch()
	if err != nil {
		return nil, fmt.Errorf("launch browser: %w", err)
	}
	defer chrome.Cleanup()

	browser := rod.New().ControlURL(controlURL).Context(ctx)
	if err := browser.Connect(); err != nil {
		return nil, fmt.Errorf("connect to browser: %w", err)
	}
	defer func() { _ = browser.Close() }()

	page, err := browser.Page(proto.TargetCreateTarget{URL: "about:blank"})
	if err != nil {
		return nil, fmt.Errorf("open page: %w", err)
	}
	defer func() { _ = page.Close() }()

	if err := page.SetDocumentContent(string(html)); err != nil {
		return nil, fmt.Errorf("set page content: %w", err)
	}
	if err := page.WaitLoad(); err != nil {
		return nil, fmt.Errorf("wait for page load: %w", err)
	}

	reader, err := page.PDF(&proto.PagePrintToPDF{
		PrintBackground:   true,
		PreferCSSPageSize: true,
	})
	if err != nil {
		return nil, fmt.Errorf("print page to pdf: %w", err)
	}
	data, err := io.ReadAll(reader)
	if err != nil {
		return nil, fmt.Errorf("read pdf stream: %w", err)
	}
	return data, nil
}
