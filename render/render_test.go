package render

import (
	"os"
	"strings"
	"testing"
	"time"

	"swellforecaster/swell"
)

const sampleForecast = `# O'ahu Surf Forecast

## North Shore

| Day | Faces |
|-----|-------|
| Sat | 4-6 ft |
`

func TestRenderHTML(t *testing.T) {
	now := time.Date(2026, 8, 30, 6, 0, 0, 0, swell.HST)
	html, err := renderHTML(sampleForecast, now)
	if err != nil {
		t.Fatalf("renderHTML failed: %v", err)
	}
	s := string(html)

	if !strings.Contains(s, "<h1>") {
		t.Error("heading not rendered")
	}
	if !strings.Contains(s, "<table>") {
		t.Error("table extension not applied")
	}
	if !strings.Contains(s, "<style>") {
		t.Error("css not embedded")
	}
	if !strings.Contains(s, "2026-08-30") {
		t.Error("date missing from title")
	}
}

func TestWriteCreatesTimestampedFiles(t *testing.T) {
	dir := t.TempDir()
	now := time.Date(2026, 8, 30, 16, 30, 0, 0, time.UTC) // 06:30 HST

	out, err := Write(dir, sampleForecast, now)
	if err != nil {
		t.Fatalf("Write failed: %v", err)
	}

	if !strings.HasSuffix(out.Markdown, "forecast_20260830_0630.md") {
		t.Errorf("markdown path not timestamped in HST: %s", out.Markdown)
	}
	md, err := os.ReadFile(out.Markdown)
	if err != nil {
		t.Fatalf("markdown not written: %v", err)
	}
	if string(md) != sampleForecast {
		t.Error("markdown content altered")
	}

	html, err := os.ReadFile(out.HTML)
	if err != nil {
		t.Fatalf("html not written: %v", err)
	}
	if !strings.Contains(string(html), "<table>") {
		t.Error("html missing rendered table")
	}
}
