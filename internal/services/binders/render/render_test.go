package render

import (
	"strings"
	"testing"
	"time"

	"github.com/sebdah/goldie/v2"

	"github.com/halcyonlabs/inneros/internal/services/binders/domain"
)

func sampleContent() domain.Content {
	return domain.Content{
		Title:       "Q3 Compliance Binder",
		PreparedFor: "Morgan Reyes",
		GeneratedAt: time.Date(2026, 7, 1, 12, 0, 0, 0, time.UTC),
		Documents: []domain.DocumentItem{
			{
				Title:     "Operations Manual",
				WordCount: 12480,
				Sections:  []string{"Overview", "Safety"},
				UpdatedAt: time.Date(2026, 6, 12, 0, 0, 0, 0, time.UTC),
			},
			{
				Title:     "Fire Safety Policy",
				WordCount: 980,
				Sections:  []string{"Drills"},
				UpdatedAt: time.Date(2026, 5, 3, 0, 0, 0, 0, time.UTC),
			},
		},
		Properties: []domain.PropertyItem{
			{
				Name:                "Harbor House",
				TotalRooms:          4,
				OccupiedRooms:       3,
				OccupancyPercent:    75,
				MonthlyRevenueCents: 150000,
				MonthlyProfitCents:  42550,
			},
		},
		PageEstimate: 3,
	}
}

func TestRenderGolden(t *testing.T) {
	t.Parallel()

	renderer, err := New()
	if err != nil {
		t.Fatalf("new renderer: %v", err)
	}
	html, err := renderer.Render(sampleContent())
	if err != nil {
		t.Fatalf("render binder: %v", err)
	}

	g := goldie.New(t)
	g.Assert(t, "compliance_binder", html)
}

func TestRenderFormatsNumbers(t *testing.T) {
	t.Parallel()

	renderer, err := New()
	if err != nil {
		t.Fatalf("new renderer: %v", err)
	}
	html, err := renderer.Render(sampleContent())
	if err != nil {
		t.Fatalf("render binder: %v", err)
	}
	rendered := string(html)

	for _, want := range []string{"12,480", "$1,500.00", "$425.50", "75.0%", "3/4 occupied", "July 1, 2026"} {
		if !strings.Contains(rendered, want) {
			t.Errorf("rendered binder missing %q", want)
		}
	}
}

func TestRenderNegativeProfit(t *testing.T) {
	t.Parallel()

	renderer, err := New()
	if err != nil {
		t.Fatalf("new renderer: %v", err)
	}
	content := sampleContent()
	content.Properties[0].MonthlyProfitCents = -125050
	html, err := renderer.Render(content)
	if err != nil {
		t.Fatalf("render binder: %v", err)
	}
	if !strings.Contains(string(html), "-$1,250.50") {
		t.Errorf("rendered binder missing negative profit, got %s", html)
	}
}

func TestRenderEscapesContent(t *testing.T) {
	t.Parallel()

	renderer, err := New()
	if err != nil {
		t.Fatalf("new renderer: %v", err)
	}
	content := sampleContent()
	content.Title = "Audit <script>alert(1)</script>"
	html, err := renderer.Render(content)
	if err != nil {
		t.Fatalf("render binder: %v", err)
	}
	if strings.Contains(string(html), "<script>alert(1)</script>") {
		t.Error("rendered binder did not escape title markup")
	}
}

func TestRenderOmitsEmptySections(t *testing.T) {
	t.Parallel()

	renderer, err := New()
	if err != nil {
		t.Fatalf("new renderer: %v", err)
	}
	content := sampleContent()
	content.Documents = nil
	html, err := renderer.Render(content)
	if err != nil {
		t.Fatalf("render binder: %v", err)
	}
	if strings.Contains(string(html), "<h2>Documents</h2>") {
		t.Error("rendered binder includes empty documents section")
	}
	if !strings.Contains(string(html), "<h2>Properties</h2>") {
		t.Error("rendered binder missing properties section")
	}
}
