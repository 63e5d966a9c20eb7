package importer

import (
	"context"
	"io"
	"mime"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/gabriel-vasile/mimetype"
	"go.uber.org/zap"

	"nextstep-cv/pkg/apperror"
	"nextstep-cv/pkg/logger"
	"nextstep-cv/pkg/metrics"
)

const (
	MsgBadExtension = "Please upload a PDF or DOCX file"
	MsgBadType      = "Only PDF and DOCX files are accepted"

	MIMEPDF  = "application/pdf"
	MIMEDOCX = "application/vnd.openxmlformats-officedocument.wordprocessingml.document"

	// DefaultDelay mimics the time a real extraction step would take.
	DefaultDelay = 1500 * time.Millisecond

	// CreateLocation is where an accepted import lands the user.
	CreateLocation = "/create"
)

// AllowedExtensions maps lowercased extensions to the MIME type the
// browser is expected to declare for them.
var AllowedExtensions = map[string]string{
	"pdf":  MIMEPDF,
	"docx": MIMEDOCX,
}

// Upload is one file as received from the client.
type Upload struct {
	// Owner is the client ID the upload belongs to.
	Owner       string
	Filename    string
	ContentType string
	Open        func() (io.ReadCloser, error)
}

// ImportedFile describes a saved upload.
type ImportedFile struct {
	Name         string
	Path         string
	Size         int64
	DeclaredType string
	DetectedType string
}

// Processor receives every accepted file. Extraction is not implemented
// yet, so NopProcessor is the default.
type Processor func(ctx context.Context, f ImportedFile) error

func NopProcessor(context.Context, ImportedFile) error { return nil }

// Result tells the caller whether to move on to the form.
type Result struct {
	Navigate bool
	Location string
	File     *ImportedFile
}

type Saver interface {
	Save(ctx context.Context, owner, name string, r io.Reader) (path string, n int64, err error)
}

// DirSaver writes files into Dir/<owner> under their own name, replacing
// any previous file of that name from the same owner. Uploads without an
// owner go straight into Dir.
type DirSaver struct {
	Dir string
}

func (d DirSaver) Save(_ context.Context, owner, name string, r io.Reader) (string, int64, error) {
	dir := d.Dir
	if owner != "" {
		dir = filepath.Join(d.Dir, safeName(owner))
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", 0, err
	}
	path := filepath.Join(dir, name)
	f, err := os.Create(path)
	if err != nil {
		return "", 0, err
	}
	n, err := io.Copy(f, r)
	if cerr := f.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		os.Remove(path)
		return "", 0, err
	}
	return path, n, nil
}

type Importer struct {
	saver   Saver
	process Processor
	delay   time.Duration
	log     logger.Logger
	metrics *metrics.Metrics
}

func New(saver Saver, process Processor, delay time.Duration, log logger.Logger, m *metrics.Metrics) *Importer {
	if process == nil {
		process = NopProcessor
	}
	return &Importer{saver: saver, process: process, delay: delay, log: log, metrics: m}
}

// Extension returns the lowercased text after the last dot, or "" when
// the name has none.
func Extension(name string) string {
	i := strings.LastIndexByte(name, '.')
	if i < 0 {
		return ""
	}
	return strings.ToLower(name[i+1:])
}

// CheckName validates the file name against the extension allow-list.
func CheckName(name string) error {
	if _, ok := AllowedExtensions[Extension(name)]; !ok {
		return apperror.NewImportValidation(MsgBadExtension, "extension of "+name)
	}
	return nil
}

// CheckDeclaredType validates the client-declared MIME type. An empty or
// generic octet-stream declaration carries no information and passes.
func CheckDeclaredType(contentType string) error {
	if contentType == "" {
		return nil
	}
	mt, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		return apperror.NewImportValidation(MsgBadType, "unparseable content type "+contentType)
	}
	switch mt {
	case "application/octet-stream", MIMEPDF, MIMEDOCX:
		return nil
	}
	return apperror.NewImportValidation(MsgBadType, "declared type "+mt)
}

// Select handles a drop or file-picker selection. Only the first file is
// looked at; an empty selection does nothing.
func (im *Importer) Select(ctx context.Context, files []Upload) (Result, error) {
	if len(files) == 0 {
		return Result{}, nil
	}
	up := files[0]
	if len(files) > 1 {
		im.log.Debug("ignoring extra files in selection", zap.Int("count", len(files)-1))
	}

	if err := CheckName(up.Filename); err != nil {
		im.metrics.Import(metrics.ResultRejected)
		return Result{}, err
	}
	if err := CheckDeclaredType(up.ContentType); err != nil {
		im.metrics.Import(metrics.ResultRejected)
		return Result{}, err
	}

	f, err := im.save(ctx, up)
	if err != nil {
		im.metrics.Import(metrics.ResultFailure)
		return Result{}, apperror.NewImport("save "+up.Filename, err)
	}
	im.log.Info("resume imported",
		zap.String("name", f.Name),
		zap.Int64("size", f.Size),
		zap.String("detected_type", f.DetectedType))

	if err := im.process(ctx, *f); err != nil {
		im.metrics.Import(metrics.ResultFailure)
		return Result{}, apperror.NewImport("process "+f.Name, err)
	}

	if im.delay > 0 {
		t := time.NewTimer(im.delay)
		defer t.Stop()
		select {
		case <-t.C:
		case <-ctx.Done():
			im.metrics.Import(metrics.ResultFailure)
			return Result{}, apperror.NewImport("processing abandoned", ctx.Err())
		}
	}

	im.metrics.Import(metrics.ResultSuccess)
	return Result{Navigate: true, Location: CreateLocation, File: f}, nil
}

func (im *Importer) save(ctx context.Context, up Upload) (*ImportedFile, error) {
	rc, err := up.Open()
	if err != nil {
		return nil, err
	}
	defer rc.Close()

	name := safeName(up.Filename)
	path, n, err := im.saver.Save(ctx, up.Owner, name, rc)
	if err != nil {
		return nil, err
	}

	f := &ImportedFile{Name: name, Path: path, Size: n, DeclaredType: up.ContentType}
	if mt, err := mimetype.DetectFile(path); err == nil {
		f.DetectedType = mt.String()
	}
	return f, nil
}

// safeName strips any directory part a client may have sent.
func safeName(name string) string {
	base := filepath.Base(strings.ReplaceAll(name, `\`, "/"))
	if base == "." || base == "/" || base == "" || strings.HasPrefix(base, ".") {
		return "upload." + Extension(name)
	}
	return base
}
