package usecase

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"nextstep-cv/internal/domain"
	"nextstep-cv/internal/form"
	"nextstep-cv/internal/model"
	"nextstep-cv/pkg/apperror"
	"nextstep-cv/pkg/logger"
	"nextstep-cv/pkg/metrics"
)

const (
	DocumentFilename = "resume.docx"
	DOCXContentType  = "application/vnd.openxmlformats-officedocument.wordprocessingml.document"
)

type Generator interface {
	Generate(ctx context.Context, payload interface{}) ([]byte, string, error)
}

type SubmissionsRepo interface {
	Save(ctx context.Context, s *domain.Submission) error
}

// Document is a file ready to be handed to the user.
type Document struct {
	Filename    string
	ContentType string
	Bytes       []byte
}

type Submitter struct {
	gen     Generator
	repo    SubmissionsRepo
	log     logger.Logger
	metrics *metrics.Metrics
}

func NewSubmitter(gen Generator, repo SubmissionsRepo, log logger.Logger, m *metrics.Metrics) *Submitter {
	return &Submitter{gen: gen, repo: repo, log: log, metrics: m}
}

// Submit sends the whole draft to the generation service in one request.
// The draft itself is never modified, so a failed attempt can be retried
// as-is.
func (s *Submitter) Submit(ctx context.Context, username string, f *form.Form) (*Document, error) {
	payload := model.NewPayload(f)

	if err := model.Validate(payload); err != nil {
		s.metrics.Submission(metrics.ResultRejected)
		var verr *model.ValidationError
		if errors.As(err, &verr) {
			return nil, apperror.NewInvalidInput("Please complete the form: "+strings.Join(verr.Issues, "; "), "payload validation", err)
		}
		return nil, apperror.NewInternal("payload validation", err)
	}

	now := time.Now()
	sub := &domain.Submission{
		ID:             uuid.New(),
		Username:       username,
		Status:         domain.SubmissionPending,
		PayloadVersion: model.PayloadVersion,
		CreatedAt:      now,
		UpdatedAt:      now,
	}

	body, contentType, err := s.gen.Generate(ctx, payload)
	if err == nil && ctx.Err() != nil {
		err = ctx.Err()
	}
	if err != nil {
		s.metrics.Submission(metrics.ResultFailure)
		sub.Status = domain.SubmissionFailed
		sub.Error = err.Error()
		s.record(sub)
		return nil, apperror.NewSubmission("generate request", err)
	}

	sub.Status = domain.SubmissionCompleted
	sub.SizeBytes = len(body)
	s.record(sub)
	s.metrics.Submission(metrics.ResultSuccess)
	s.log.Info("resume generated", zap.String("submission_id", sub.ID.String()), zap.Int("size", len(body)))

	return &Document{
		Filename:    DocumentFilename,
		ContentType: documentType(contentType),
		Bytes:       body,
	}, nil
}

// record persists the log entry best-effort. It runs on its own short
// context so a cancelled request still leaves a trace.
func (s *Submitter) record(sub *domain.Submission) {
	if s.repo == nil {
		return
	}
	sub.UpdatedAt = time.Now()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := s.repo.Save(ctx, sub); err != nil {
		s.log.Warn("unable to record submission (non-fatal)", zap.String("submission_id", sub.ID.String()), zap.Error(err))
	}
}

func documentType(remote string) string {
	if remote == "" || strings.HasPrefix(remote, "application/octet-stream") || strings.HasPrefix(remote, "application/json") {
		return DOCXContentType
	}
	return remote
}
