package usecase

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"nextstep-cv/internal/domain"
	"nextstep-cv/internal/form"
	"nextstep-cv/internal/model"
	"nextstep-cv/pkg/apperror"
	"nextstep-cv/pkg/logger"
	"nextstep-cv/pkg/metrics"
	"nextstep-cv/pkg/remote"
)

type fakeGenerator struct {
	body        []byte
	contentType string
	err         error
	calls       int
	payload     interface{}
}

func (g *fakeGenerator) Generate(_ context.Context, payload interface{}) ([]byte, string, error) {
	g.calls++
	g.payload = payload
	return g.body, g.contentType, g.err
}

type memRepo struct {
	mu    sync.Mutex
	saved []domain.Submission
}

func (r *memRepo) Save(_ context.Context, s *domain.Submission) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.saved = append(r.saved, *s)
	return nil
}

func completeForm(t *testing.T) *form.Form {
	t.Helper()
	f := form.New()
	require.NoError(t, f.Profile.Set("fullName", "Jane Doe"))
	require.NoError(t, f.Profile.Set("email", "jane@x.com"))
	require.NoError(t, f.Profile.Set("summary", "Engineer"))
	require.NoError(t, f.UpdateField(form.SectionProjects, 0, "title", "P1"))
	require.NoError(t, f.UpdateField(form.SectionProjects, 0, "description", "D1"))
	require.NoError(t, f.UpdateField(form.SectionProjects, 0, "techStack", "Go"))
	require.NoError(t, f.UpdateField(form.SectionEducation, 0, "degree", "BSc"))
	require.NoError(t, f.UpdateField(form.SectionEducation, 0, "institution", "Uni"))
	require.NoError(t, f.UpdateField(form.SectionEducation, 0, "duration", "2018-2022"))
	require.NoError(t, f.UpdateField(form.SectionTechnicalSkills, 0, "value", "Go"))
	return f
}

func TestSubmitReturnsDocument(t *testing.T) {
	gen := &fakeGenerator{body: []byte("PK\x03\x04docx"), contentType: "application/octet-stream"}
	repo := &memRepo{}
	s := NewSubmitter(gen, repo, logger.Nop(), metrics.New())

	doc, err := s.Submit(context.Background(), "jane", completeForm(t))
	require.NoError(t, err)
	assert.Equal(t, "resume.docx", doc.Filename)
	assert.Equal(t, DOCXContentType, doc.ContentType)
	assert.Equal(t, gen.body, doc.Bytes)

	p, ok := gen.payload.(model.GenerationPayload)
	require.True(t, ok)
	assert.Equal(t, "Jane Doe", p.FullName)
	assert.Equal(t, []string{"Go"}, p.TechnicalSkills)

	require.Len(t, repo.saved, 1)
	assert.Equal(t, domain.SubmissionCompleted, repo.saved[0].Status)
	assert.Equal(t, "jane", repo.saved[0].Username)
	assert.Equal(t, len(gen.body), repo.saved[0].SizeBytes)
}

func TestSubmitKeepsRemoteContentType(t *testing.T) {
	gen := &fakeGenerator{body: []byte("x"), contentType: "application/msword"}
	s := NewSubmitter(gen, nil, logger.Nop(), nil)

	doc, err := s.Submit(context.Background(), "jane", completeForm(t))
	require.NoError(t, err)
	assert.Equal(t, "application/msword", doc.ContentType)
}

func TestSubmitRejectsIncompleteDraft(t *testing.T) {
	gen := &fakeGenerator{}
	s := NewSubmitter(gen, nil, logger.Nop(), metrics.New())

	_, err := s.Submit(context.Background(), "jane", form.New())
	require.Error(t, err)
	assert.ErrorIs(t, err, apperror.ErrInvalidInput)
	assert.Contains(t, apperror.UserMessage(err, ""), "Full Name is required")
	assert.Zero(t, gen.calls)
}

func TestSubmitFailureKeepsDraft(t *testing.T) {
	gen := &fakeGenerator{err: errors.New("status 500")}
	repo := &memRepo{}
	s := NewSubmitter(gen, repo, logger.Nop(), metrics.New())
	f := completeForm(t)

	_, err := s.Submit(context.Background(), "jane", f)
	require.Error(t, err)
	assert.ErrorIs(t, err, apperror.ErrSubmission)
	assert.Equal(t, "Failed to generate and download resume.", apperror.UserMessage(err, ""))
	assert.Equal(t, "Jane Doe", f.Profile.FullName)

	require.Len(t, repo.saved, 1)
	assert.Equal(t, domain.SubmissionFailed, repo.saved[0].Status)
	assert.Contains(t, repo.saved[0].Error, "status 500")
}

func TestSubmitOversizedReplyIsSubmissionFailure(t *testing.T) {
	gen := &fakeGenerator{err: remote.ErrTooLarge}
	s := NewSubmitter(gen, nil, logger.Nop(), nil)

	doc, err := s.Submit(context.Background(), "jane", completeForm(t))
	assert.Nil(t, doc)
	assert.ErrorIs(t, err, apperror.ErrSubmission)
	assert.Equal(t, "Failed to generate and download resume.", apperror.UserMessage(err, ""))
}

func TestSubmitDropsLateReply(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	gen := &fakeGenerator{body: []byte("late")}
	s := NewSubmitter(gen, nil, logger.Nop(), nil)

	doc, err := s.Submit(ctx, "jane", completeForm(t))
	assert.Nil(t, doc)
	assert.ErrorIs(t, err, context.Canceled)
}

type fakeRenderer struct {
	outputs [][]byte
	errs    []error
	calls   int
	html    string
}

func (r *fakeRenderer) RenderHTMLToPDF(_ context.Context, html string) ([]byte, error) {
	i := r.calls
	r.calls++
	r.html = html
	var err error
	if i < len(r.errs) {
		err = r.errs[i]
	}
	var out []byte
	if i < len(r.outputs) {
		out = r.outputs[i]
	}
	return out, err
}

func TestExportHTML(t *testing.T) {
	e := NewExporter(nil, logger.Nop())
	f := completeForm(t)
	require.NoError(t, f.Profile.Set("fullName", "Jane <b>Doe</b>"))

	html, err := e.HTML(f)
	require.NoError(t, err)
	assert.Contains(t, html, "Jane &lt;b&gt;Doe&lt;/b&gt;")
	assert.Contains(t, html, "<h2>Projects</h2>")
	assert.Contains(t, html, "@page")
}

func TestExportRetriesUntilPDF(t *testing.T) {
	r := &fakeRenderer{
		outputs: [][]byte{nil, []byte("<html>"), []byte("%PDF-1.7 ok")},
		errs:    []error{errors.New("chrome crashed")},
	}
	e := NewExporter(r, logger.Nop())
	e.backoff = time.Millisecond

	doc, err := e.Export(context.Background(), completeForm(t))
	require.NoError(t, err)
	assert.Equal(t, 3, r.calls)
	assert.Equal(t, "resume.pdf", doc.Filename)
	assert.Equal(t, PDFContentType, doc.ContentType)
	assert.True(t, strings.HasPrefix(string(doc.Bytes), "%PDF"))
	assert.Contains(t, r.html, "Jane Doe")
}

func TestExportGivesUp(t *testing.T) {
	r := &fakeRenderer{errs: []error{errors.New("a"), errors.New("b"), errors.New("c")}}
	e := NewExporter(r, logger.Nop())
	e.backoff = time.Millisecond

	_, err := e.Export(context.Background(), completeForm(t))
	require.Error(t, err)
	assert.ErrorIs(t, err, apperror.ErrSubmission)
	assert.Equal(t, 3, r.calls)
}

func TestExportWithoutRenderer(t *testing.T) {
	_, err := NewExporter(nil, logger.Nop()).Export(context.Background(), completeForm(t))
	assert.ErrorIs(t, err, apperror.ErrSubmission)
}

func TestLinkLabel(t *testing.T) {
	assert.Equal(t, "github.com", linkLabel("https://www.github.com/jane/p1"))
	assert.Equal(t, "example.co.uk", linkLabel("demo.example.co.uk/app"))
	assert.Equal(t, "localhost", linkLabel("http://localhost:8080/x"))
}
