// Package render writes the forecast to disk as Markdown, HTML, and PDF.
package render

import (
	"bytes"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"time"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	goldmarkhtml "github.com/yuin/goldmark/renderer/html"

	"swellforecaster/swell"
)

const htmlCSS = `body { font-family: Georgia, serif; max-width: 48em; margin: 2em auto; padding: 0 1em; line-height: 1.5; color: #222; }
h1 { border-bottom: 2px solid #1a6fa8; padding-bottom: 0.3em; }
h2 { color: #1a6fa8; margin-top: 1.5em; }
table { border-collapse: collapse; margin: 1em 0; }
th, td { border: 1px solid #ccc; padding: 0.4em 0.8em; text-align: left; }
th { background: #eef5fa; }
em { color: #666; }`

// Outputs records where each rendered form landed. PDF is empty when the
// print step was skipped.
type Outputs struct {
	Markdown string
	HTML     string
	PDF      string
}

var md = goldmark.New(
	goldmark.WithExtensions(extension.Table, extension.Strikethrough),
	goldmark.WithRendererOptions(goldmarkhtml.WithUnsafe()),
)

// Write renders the forecast into outputDir as forecast_<timestamp>.md, .html,
// and .pdf, timestamped in HST. Markdown and HTML failures are fatal; a PDF
// failure only logs a warning since it needs a local Chrome.
func Write(outputDir, forecast string, now time.Time) (*Outputs, error) {
	if err := os.MkdirAll(outputDir, 0o755); err != nil {
		return nil, fmt.Errorf("creating output dir: %w", err)
	}
	stamp := now.In(swell.HST).Format("20060102_1504")
	base := filepath.Join(outputDir, "forecast_"+stamp)

	out := &Outputs{Markdown: base + ".md", HTML: base + ".html"}

	if err := os.WriteFile(out.Markdown, []byte(forecast), 0o644); err != nil {
		return nil, fmt.Errorf("writing markdown: %w", err)
	}

	html, err := renderHTML(forecast, now)
	if err != nil {
		return nil, err
	}
	if err := os.WriteFile(out.HTML, html, 0o644); err != nil {
		return nil, fmt.Errorf("writing html: %w", err)
	}

	pdfPath := base + ".pdf"
	if err := RenderPDF(out.HTML, pdfPath); err != nil {
		log.Printf("Warning: PDF generation skipped: %v", err)
	} else {
		out.PDF = pdfPath
	}
	return out, nil
}

func renderHTML(forecast string, now time.Time) ([]byte, error) {
	var body bytes.Buffer
	if err := md.Convert([]byte(forecast), &body); err != nil {
		return nil, fmt.Errorf("rendering html: %w", err)
	}

	var page bytes.Buffer
	fmt.Fprintf(&page, `<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<title>O'ahu Surf Forecast - %s</title>
<style>
%s
</style>
</head>
<body>
`, now.In(swell.HST).Format("2006-01-02"), htmlCSS)
	page.Write(body.Bytes())
	page.WriteString("\n</body>\n</html>\n")
	return page.Bytes(), nil
}
