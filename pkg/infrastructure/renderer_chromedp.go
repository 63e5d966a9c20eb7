package infrastructure

import (
	"context"
	"os"
	"path/filepath"
	"time"

	"github.com/chromedp/cdproto/page"
	"github.com/chromedp/chromedp"
)

const renderTimeout = 60 * time.Second

// ChromedpRenderer prints self-contained HTML to an A4 PDF with headless
// Chrome. Each call starts its own browser.
type ChromedpRenderer struct {
	execPath string
}

// NewChromedpRenderer uses the Chrome binary at execPath, or the one
// chromedp finds on PATH when execPath is empty.
func NewChromedpRenderer(execPath string) *ChromedpRenderer {
	return &ChromedpRenderer{execPath: execPath}
}

func (r *ChromedpRenderer) allocatorOptions() []chromedp.ExecAllocatorOption {
	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", true),
		chromedp.Flag("no-sandbox", true),
		chromedp.Flag("disable-gpu", true),
		chromedp.Flag("disable-dev-shm-usage", true),
	)
	if r.execPath != "" {
		opts = append(opts, chromedp.ExecPath(r.execPath))
	}
	return opts
}

func (r *ChromedpRenderer) RenderHTMLToPDF(ctx context.Context, html string) ([]byte, error) {
	allocCtx, cancel := chromedp.NewExecAllocator(ctx, r.allocatorOptions()...)
	defer cancel()

	cctx, cancelCtx := chromedp.NewContext(allocCtx)
	defer cancelCtx()

	runCtx, cancelRun := context.WithTimeout(cctx, renderTimeout)
	defer cancelRun()

	tmpDir, err := os.MkdirTemp("", "nscv-print-")
	if err != nil {
		return nil, err
	}
	defer os.RemoveAll(tmpDir)

	htmlPath := filepath.Join(tmpDir, "index.html")
	if err := os.WriteFile(htmlPath, []byte(html), 0o644); err != nil {
		return nil, err
	}

	var pdf []byte
	err = chromedp.Run(runCtx,
		chromedp.Navigate("file://"+htmlPath),
		chromedp.WaitReady("body", chromedp.ByQuery),
		chromedp.ActionFunc(func(ctx context.Context) error {
			var err error
			// A4: 8.27 x 11.69 in
			pdf, _, err = page.PrintToPDF().WithPrintBackground(true).
				WithPaperWidth(8.27).
				WithPaperHeight(11.69).
				WithPreferCSSPageSize(true).
				Do(ctx)
			return err
		}),
	)
	if err != nil {
		return nil, err
	}
	return pdf, nil
}
