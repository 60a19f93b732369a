package repos

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/yungbote/tubebase-backend/internal/domain"
	"github.com/yungbote/tubebase-backend/internal/platform/logger"
)

type JobRepo interface {
	Create(ctx context.Context, tx *gorm.DB, job *domain.Job) (*domain.Job, error)
	GetByID(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*domain.Job, error)
	// GetActiveByVideoID returns the newest non-terminal job for the pair, or
	// nil when none is in flight.
	GetActiveByVideoID(ctx context.Context, tx *gorm.DB, videoID, jobType string) (*domain.Job, error)
	UpdateStatus(ctx context.Context, tx *gorm.DB, id uuid.UUID, status, errorMessage string) error
	ListByVideoID(ctx context.Context, tx *gorm.DB, videoID string) ([]*domain.Job, error)
	DeleteByVideoID(ctx context.Context, tx *gorm.DB, videoID string) error
}

type jobRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewJobRepo(db *gorm.DB, baseLog *logger.Logger) JobRepo {
	return &jobRepo{db: db, log: baseLog.With("repo", "JobRepo")}
}

func (r *jobRepo) Create(ctx context.Context, tx *gorm.DB, job *domain.Job) (*domain.Job, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	if job.ID == uuid.Nil {
		job.ID = uuid.New()
	}
	if job.Status == "" {
		job.Status = domain.JobStatusPending
	}
	if err := transaction.WithContext(ctx).Create(job).Error; err != nil {
		return nil, err
	}
	return job, nil
}

func (r *jobRepo) GetByID(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*domain.Job, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	var job domain.Job
	err := transaction.WithContext(ctx).Where("id = ?", id).First(&job).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &job, nil
}

func (r *jobRepo) GetActiveByVideoID(ctx context.Context, tx *gorm.DB, videoID, jobType string) (*domain.Job, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	var job domain.Job
	err := transaction.WithContext(ctx).
		Where("video_id = ? AND job_type = ? AND status NOT IN (?, ?)",
			videoID, jobType, domain.JobStatusCompleted, domain.JobStatusFailed).
		Order("created_at DESC").
		First(&job).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &job, nil
}

func (r *jobRepo) UpdateStatus(ctx context.Context, tx *gorm.DB, id uuid.UUID, status, errorMessage string) error {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	updates := map[string]any{
		"status":        status,
		"error_message": errorMessage,
	}
	if status == domain.JobStatusCompleted || status == domain.JobStatusFailed {
		now := time.Now().UTC()
		updates["completed_at"] = &now
	}
	return transaction.WithContext(ctx).
		Model(&domain.Job{}).
		Where("id = ?", id).
		Updates(updates).Error
}

// DeleteByVideoID drops the job history for a video. Only the video delete
// cascade calls this; jobs are otherwise append-only.
func (r *jobRepo) DeleteByVideoID(ctx context.Context, tx *gorm.DB, videoID string) error {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	return transaction.WithContext(ctx).
		Where("video_id = ?", videoID).
		Delete(&domain.Job{}).Error
}

func (r *jobRepo) ListByVideoID(ctx context.Context, tx *gorm.DB, videoID string) ([]*domain.Job, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	var results []*domain.Job
	if err := transaction.WithContext(ctx).
		Where("video_id = ?", videoID).
		Order("created_at DESC").
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}
