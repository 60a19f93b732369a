package repos

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/yungbote/tubebase-backend/internal/domain"
	"github.com/yungbote/tubebase-backend/internal/platform/logger"
)

type TranscriptSearchRow struct {
	domain.Transcript
	VideoTitle string `json:"video_title"`
	VideoURL   string `json:"video_url"`
}

type TranscriptSummaryRow struct {
	VideoID     string `json:"video_id"`
	Summary     string `json:"summary"`
	VideoTitle  string `json:"video_title"`
	ChannelName string `json:"channel_name"`
}

type TranscriptRepo interface {
	Create(ctx context.Context, tx *gorm.DB, videoID, content string) (*domain.Transcript, error)
	GetByVideoID(ctx context.Context, tx *gorm.DB, videoID string) (*domain.Transcript, error)
	UpdateSummary(ctx context.Context, tx *gorm.DB, videoID, summary string) error
	DeleteByVideoID(ctx context.Context, tx *gorm.DB, videoID string) error
	Search(ctx context.Context, tx *gorm.DB, query string, limit int) ([]*TranscriptSearchRow, error)
	// ListUnembeddedVideoIDs returns ids of videos whose transcript has
	// content but no chunks yet.
	ListUnembeddedVideoIDs(ctx context.Context, tx *gorm.DB) ([]string, error)
	ListVideoIDsWithContent(ctx context.Context, tx *gorm.DB) ([]string, error)
	CountWithContent(ctx context.Context, tx *gorm.DB) (int64, error)
	GetAllSummaries(ctx context.Context, tx *gorm.DB) ([]*TranscriptSummaryRow, error)
}

type transcriptRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewTranscriptRepo(db *gorm.DB, baseLog *logger.Logger) TranscriptRepo {
	return &transcriptRepo{db: db, log: baseLog.With("repo", "TranscriptRepo")}
}

func (r *transcriptRepo) Create(ctx context.Context, tx *gorm.DB, videoID, content string) (*domain.Transcript, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	transcript := &domain.Transcript{
		VideoID:   videoID,
		Content:   content,
		IndexedAt: time.Now().UTC(),
	}
	if err := transaction.WithContext(ctx).Create(transcript).Error; err != nil {
		return nil, err
	}
	return transcript, nil
}

func (r *transcriptRepo) GetByVideoID(ctx context.Context, tx *gorm.DB, videoID string) (*domain.Transcript, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	var transcript domain.Transcript
	err := transaction.WithContext(ctx).Where("video_id = ?", videoID).First(&transcript).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &transcript, nil
}

func (r *transcriptRepo) UpdateSummary(ctx context.Context, tx *gorm.DB, videoID, summary string) error {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	return transaction.WithContext(ctx).
		Model(&domain.Transcript{}).
		Where("video_id = ?", videoID).
		Update("summary", summary).Error
}

func (r *transcriptRepo) DeleteByVideoID(ctx context.Context, tx *gorm.DB, videoID string) error {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	return transaction.WithContext(ctx).
		Where("video_id = ?", videoID).
		Delete(&domain.Transcript{}).Error
}

func (r *transcriptRepo) Search(ctx context.Context, tx *gorm.DB, query string, limit int) ([]*TranscriptSearchRow, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	if limit <= 0 {
		limit = 20
	}
	var results []*TranscriptSearchRow
	if err := transaction.WithContext(ctx).
		Table("transcripts t").
		Select("t.*, v.video_title, v.video_url").
		Joins("JOIN videos v ON t.video_id = v.video_id").
		Where("t.content LIKE ?", "%"+query+"%").
		Limit(limit).
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (r *transcriptRepo) ListUnembeddedVideoIDs(ctx context.Context, tx *gorm.DB) ([]string, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	var ids []string
	if err := transaction.WithContext(ctx).
		Table("transcripts t").
		Select("t.video_id").
		Joins("LEFT JOIN transcript_chunks tc ON t.video_id = tc.video_id").
		Where("t.content IS NOT NULL AND t.content != ''").
		Group("t.video_id").
		Having("COUNT(tc.id) = 0").
		Scan(&ids).Error; err != nil {
		return nil, err
	}
	return ids, nil
}

func (r *transcriptRepo) ListVideoIDsWithContent(ctx context.Context, tx *gorm.DB) ([]string, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	var ids []string
	if err := transaction.WithContext(ctx).
		Model(&domain.Transcript{}).
		Select("video_id").
		Where("content IS NOT NULL AND content != ''").
		Scan(&ids).Error; err != nil {
		return nil, err
	}
	return ids, nil
}

func (r *transcriptRepo) CountWithContent(ctx context.Context, tx *gorm.DB) (int64, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	var count int64
	if err := transaction.WithContext(ctx).
		Model(&domain.Transcript{}).
		Where("content IS NOT NULL AND content != ''").
		Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

func (r *transcriptRepo) GetAllSummaries(ctx context.Context, tx *gorm.DB) ([]*TranscriptSummaryRow, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	var results []*TranscriptSummaryRow
	if err := transaction.WithContext(ctx).
		Table("transcripts t").
		Select("t.video_id, t.summary, v.video_title, v.channel_name").
		Joins("JOIN videos v ON t.video_id = v.video_id").
		Where("t.summary IS NOT NULL AND t.summary != ''").
		Order("v.scraped_at DESC").
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}
