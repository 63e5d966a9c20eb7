package usecase

import (
	"bytes"
	"context"
	"embed"
	"errors"
	"fmt"
	"html/template"
	"net/url"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/net/publicsuffix"

	"nextstep-cv/internal/form"
	"nextstep-cv/internal/model"
	"nextstep-cv/pkg/apperror"
	"nextstep-cv/pkg/logger"
)

const (
	ExportFilename    = "resume.pdf"
	PDFContentType    = "application/pdf"
	renderAttempts    = 3
	renderBaseBackoff = time.Second
)

//go:embed templates/print.html templates/print.css
var printFS embed.FS

var printTemplate = template.Must(template.New("print.html").Funcs(template.FuncMap{
	"stylesheet": func() template.CSS {
		b, _ := printFS.ReadFile("templates/print.css")
		return template.CSS(b)
	},
	"linkLabel": linkLabel,
}).ParseFS(printFS, "templates/print.html"))

// linkLabel shortens a URL to its registrable domain for display,
// e.g. "https://www.github.com/jane/p1" -> "github.com".
func linkLabel(raw string) string {
	candidate := raw
	if !strings.HasPrefix(candidate, "http://") && !strings.HasPrefix(candidate, "https://") {
		candidate = "https://" + candidate
	}
	u, err := url.Parse(candidate)
	if err != nil || u.Hostname() == "" {
		return raw
	}
	host := u.Hostname()
	if etld, err := publicsuffix.EffectiveTLDPlusOne(host); err == nil {
		return etld
	}
	return strings.TrimPrefix(host, "www.")
}

var errNotPDF = errors.New("renderer output is not a PDF")

type Renderer interface {
	RenderHTMLToPDF(ctx context.Context, html string) ([]byte, error)
}

// Exporter prints the current draft to a PDF locally, without the
// generation service.
type Exporter struct {
	renderer Renderer
	log      logger.Logger
	backoff  time.Duration
}

func NewExporter(r Renderer, log logger.Logger) *Exporter {
	return &Exporter{renderer: r, log: log, backoff: renderBaseBackoff}
}

// HTML renders the print view of the draft.
func (e *Exporter) HTML(f *form.Form) (string, error) {
	var buf bytes.Buffer
	if err := printTemplate.Execute(&buf, model.NewPayload(f)); err != nil {
		return "", err
	}
	return buf.String(), nil
}

func (e *Exporter) Export(ctx context.Context, f *form.Form) (*Document, error) {
	if e.renderer == nil {
		return nil, apperror.New(apperror.ErrSubmission, "PDF export is not available.", "no renderer configured", nil)
	}
	html, err := e.HTML(f)
	if err != nil {
		return nil, apperror.NewInternal("render print template", err)
	}

	var pdf []byte
	for i := 0; i < renderAttempts; i++ {
		pdf, err = e.renderer.RenderHTMLToPDF(ctx, html)
		if err == nil && !bytes.HasPrefix(pdf, []byte("%PDF")) {
			err = fmt.Errorf("%w (len=%d)", errNotPDF, len(pdf))
		}
		if err == nil {
			break
		}
		e.log.Warn("render attempt failed", zap.Int("attempt", i+1), zap.Error(err))
		if i < renderAttempts-1 {
			t := time.NewTimer(e.backoff << i)
			select {
			case <-t.C:
			case <-ctx.Done():
				t.Stop()
				return nil, apperror.New(apperror.ErrSubmission, "Failed to export resume.", "export abandoned", ctx.Err())
			}
		}
	}
	if err != nil {
		return nil, apperror.New(apperror.ErrSubmission, "Failed to export resume.", fmt.Sprintf("render failed after %d attempts", renderAttempts), err)
	}

	return &Document{Filename: ExportFilename, ContentType: PDFContentType, Bytes: pdf}, nil
}
