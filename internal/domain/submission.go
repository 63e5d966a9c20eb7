package domain

import (
	"time"

	"github.com/google/uuid"
)

const (
	SubmissionPending   = "pending"
	SubmissionCompleted = "completed"
	SubmissionFailed    = "failed"
)

// Submission records one attempt to turn a resume draft into a document.
type Submission struct {
	ID             uuid.UUID `json:"id"`
	Username       string    `json:"username"`
	Status         string    `json:"status"`
	PayloadVersion string    `json:"payload_version"`
	SizeBytes      int       `json:"size_bytes"`
	Error          string    `json:"error,omitempty"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}
