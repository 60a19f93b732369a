package domain

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

const (
	JobTypeTranscribe = "transcribe"

	JobStatusPending      = "pending"
	JobStatusDownloading  = "downloading"
	JobStatusTranscribing = "transcribing"
	JobStatusCompleted    = "completed"
	JobStatusFailed       = "failed"
)

// Job is one background unit of work. Rows are append-only history: a retry
// is a new row, and completed/failed are terminal.
type Job struct {
	ID           uuid.UUID      `gorm:"type:uuid;primaryKey" json:"id"`
	VideoID      string         `gorm:"column:video_id;index;not null" json:"video_id"`
	JobType      string         `gorm:"column:job_type;not null;index" json:"job_type"`
	Status       string         `gorm:"column:status;not null;index" json:"status"`
	ErrorMessage string         `gorm:"column:error_message" json:"error_message,omitempty"`
	Metadata     datatypes.JSON `gorm:"column:metadata" json:"metadata,omitempty"`
	CreatedAt    time.Time      `gorm:"not null;index" json:"created_at"`
	CompletedAt  *time.Time     `gorm:"column:completed_at" json:"completed_at,omitempty"`
}

func (Job) TableName() string { return "jobs" }

// Terminal reports whether the job can never change status again.
func (j *Job) Terminal() bool {
	return j != nil && (j.Status == JobStatusCompleted || j.Status == JobStatusFailed)
}
