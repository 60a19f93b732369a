package repos

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/yungbote/tubebase-backend/internal/domain"
	"github.com/yungbote/tubebase-backend/internal/platform/logger"
)

type VideoRepo interface {
	Create(ctx context.Context, tx *gorm.DB, video *domain.Video) (*domain.Video, error)
	GetByVideoID(ctx context.Context, tx *gorm.DB, videoID string) (*domain.Video, error)
	GetByVideoIDs(ctx context.Context, tx *gorm.DB, videoIDs []string) ([]*domain.Video, error)
	List(ctx context.Context, tx *gorm.DB, limit, offset int) ([]*domain.VideoListItem, error)
	Count(ctx context.Context, tx *gorm.DB) (int64, error)
	Delete(ctx context.Context, tx *gorm.DB, videoID string) (bool, error)
}

type videoRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewVideoRepo(db *gorm.DB, baseLog *logger.Logger) VideoRepo {
	return &videoRepo{db: db, log: baseLog.With("repo", "VideoRepo")}
}

func (r *videoRepo) Create(ctx context.Context, tx *gorm.DB, video *domain.Video) (*domain.Video, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	if err := transaction.WithContext(ctx).Create(video).Error; err != nil {
		return nil, err
	}
	return video, nil
}

func (r *videoRepo) GetByVideoID(ctx context.Context, tx *gorm.DB, videoID string) (*domain.Video, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	var video domain.Video
	err := transaction.WithContext(ctx).Where("video_id = ?", videoID).First(&video).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &video, nil
}

func (r *videoRepo) GetByVideoIDs(ctx context.Context, tx *gorm.DB, videoIDs []string) ([]*domain.Video, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	var results []*domain.Video
	if len(videoIDs) == 0 {
		return results, nil
	}
	if err := transaction.WithContext(ctx).
		Where("video_id IN ?", videoIDs).
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

// List returns videos newest-first with their derived-state flags. The job
// join only surfaces an active transcription job, terminal ones stay hidden.
func (r *videoRepo) List(ctx context.Context, tx *gorm.DB, limit, offset int) ([]*domain.VideoListItem, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	var results []*domain.VideoListItem
	if err := transaction.WithContext(ctx).
		Table("videos v").
		Select(`v.*,
			(t.id IS NOT NULL) AS has_transcript,
			(t.summary IS NOT NULL AND t.summary != '') AS has_summary,
			j.status AS transcript_job_status`).
		Joins("LEFT JOIN transcripts t ON v.video_id = t.video_id").
		Joins(`LEFT JOIN jobs j ON v.video_id = j.video_id
			AND j.job_type = ?
			AND j.status NOT IN (?, ?)`,
			domain.JobTypeTranscribe, domain.JobStatusCompleted, domain.JobStatusFailed).
		Order("v.scraped_at DESC, v.created_at DESC").
		Limit(limit).
		Offset(offset).
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (r *videoRepo) Count(ctx context.Context, tx *gorm.DB) (int64, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	var count int64
	if err := transaction.WithContext(ctx).Model(&domain.Video{}).Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

func (r *videoRepo) Delete(ctx context.Context, tx *gorm.DB, videoID string) (bool, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	res := transaction.WithContext(ctx).Where("video_id = ?", videoID).Delete(&domain.Video{})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}
