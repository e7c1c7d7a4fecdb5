package render

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"time"

	"github.com/chromedp/cdproto/page"
	"github.com/chromedp/chromedp"
)

// RenderPDF prints an HTML file to PDF through headless Chrome. Returns an
// error without side effects when no Chrome binary is on the PATH.
func RenderPDF(htmlPath, pdfPath string) error {
	if !chromeAvailable() {
		return fmt.Errorf("no chrome or chromium binary found")
	}

	abs, err := filepath.Abs(htmlPath)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
	defer cancel()
	ctx, cancelChrome := chromedp.NewContext(ctx)
	defer cancelChrome()

	var pdf []byte
	err = chromedp.Run(ctx,
		chromedp.Navigate("file://"+abs),
		chromedp.ActionFunc(func(ctx context.Context) error {
			var err error
			pdf, _, err = page.PrintToPDF().
				WithPrintBackground(true).
				WithPaperWidth(8.5).
				WithPaperHeight(11).
				Do(ctx)
			return err
		}),
	)
	if err != nil {
		return fmt.Errorf("printing pdf: %w", err)
	}
	return os.WriteFile(pdfPath, pdf, 0o644)
}

func chromeAvailable() bool {
	for _, name := range []string{"google-chrome", "chromium", "chromium-browser", "chrome"} {
		if _, err := exec.LookPath(name); err == nil {
			return true
		}
	}
	return false
}
