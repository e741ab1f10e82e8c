// Package render turns assembled binder content into a styled HTML
// document suitable for PDF printing.
package render

import (
	"bytes"
	"fmt"
	"html/template"
	"strings"

	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/halcyonlabs/inneros/internal/services/binders/domain"
)

const binderTemplate = `<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<title>{{.Title}}</title>
<style>
body { font-family: Georgia, serif; margin: 2rem; color: #1a1a2e; }
h1 { border-bottom: 3px solid #1a1a2e; padding-bottom: 0.5rem; }
h2 { margin-top: 2rem; }
table { width: 100%; border-collapse: collapse; }
th, td { border: 1px solid #ccc; padding: 0.4rem 0.6rem; text-align: left; }
.meta { color: #555; }
</style>
</head>
<body>
<h1>{{.Title}}</h1>
<p class="meta">Prepared for {{.PreparedFor}} &middot; Generated {{.GeneratedOn}} &middot; Estimated {{.PageEstimate}} pages</p>
{{- if .Documents}}
<h2>Documents</h2>
<table>
<tr><th>Title</th><th>Words</th><th>Sections</th><th>Updated</th></tr>
{{- range .Documents}}
<tr><td>{{.Title}}</td><td>{{.WordCount}}</td><td>{{.SectionList}}</td><td>{{.UpdatedOn}}</td></tr>
{{- end}}
</table>
{{- end}}
{{- if .Properties}}
<h2>Properties</h2>
<table>
<tr><th>Name</th><th>Rooms</th><th>Occupancy</th><th>Monthly revenue</th><th>Monthly profit</th></tr>
{{- range .Properties}}
<tr><td>{{.Name}}</td><td>{{.Rooms}}</td><td>{{.Occupancy}}</td><td>{{.Revenue}}</td><td>{{.Profit}}</td></tr>
{{- end}}
</table>
{{- end}}
</body>
</html>
`

const dateLayout = "January 2, 2006"

// Renderer renders binder content with English number and currency
// formatting.
type Renderer struct {
	tmpl    *template.Template
	printer *message.Printer
}

// New creates a binder renderer.
func New() (*Renderer, error) {
	tmpl, err := template.New("binder").Parse(binderTemplate)
	if err != nil {
		return nil, fmt.Errorf("parse binder template: %w", err)
	}
	return &Renderer{tmpl: tmpl, printer: message.NewPrinter(language.English)}, nil
}

type binderView struct {
	Title        string
	PreparedFor  string
	GeneratedOn  string
	PageEstimate int
	Documents    []documentView
	Properties   []propertyView
}

type documentView struct {
	Title       string
	WordCount   string
	SectionList string
	UpdatedOn   string
}

type propertyView struct {
	Name      string
	Rooms     string
	Occupancy string
	Revenue   string
	Profit    string
}

// Render produces the binder HTML document.
func (r *Renderer) Render(content domain.Content) ([]byte, error) {
	if r == nil || r.tmpl == nil {
		return nil, fmt.Errorf("renderer is not configured")
	}

	view := binderView{
		Title:        content.Title,
		PreparedFor:  content.PreparedFor,
		GeneratedOn:  content.GeneratedAt.Format(dateLayout),
		PageEstimate: content.PageEstimate,
	}
	for _, document := range content.Documents {
		view.Documents = append(view.Documents, documentView{
			Title:       document.Title,
			WordCount:   r.printer.Sprintf("%d", document.WordCount),
			SectionList: strings.Join(document.Sections, ", "),
			UpdatedOn:   document.UpdatedAt.Format(dateLayout),
		})
	}
	for _, property := range content.Properties {
		view.Properties = append(view.Properties, propertyView{
			Name:      property.Name,
			Rooms:     fmt.Sprintf("%d/%d occupied", property.OccupiedRooms, property.TotalRooms),
			Occupancy: r.printer.Sprintf("%.1f%%", property.OccupancyPercent),
			Revenue:   r.formatCents(property.MonthlyRevenueCents),
			Profit:    r.formatCents(property.MonthlyProfitCents),
		})
	}

	var buf bytes.Buffer
	if err := r.tmpl.Execute(&buf, view); err != nil {
		return nil, fmt.Errorf("execute binder template: %w", err)
	}
	return buf.Bytes(), nil
}

func (r *Renderer) formatCents(cents int64) string {
	sign := ""
	if cents < 0 {
		sign = "-"
		cents = -cents
	}
	return sign + r.printer.Sprintf("$%.2f", float64(cents)/100)
}
