package repos

import (
	"context"

	"gorm.io/gorm"

	"github.com/yungbote/tubebase-backend/internal/domain"
	"github.com/yungbote/tubebase-backend/internal/platform/logger"
)

type ChunkRepo interface {
	CreateBatch(ctx context.Context, tx *gorm.DB, chunks []*domain.TranscriptChunk) ([]*domain.TranscriptChunk, error)
	GetByVideoID(ctx context.Context, tx *gorm.DB, videoID string) ([]*domain.TranscriptChunk, error)
	GetByIDs(ctx context.Context, tx *gorm.DB, ids []uint) ([]*domain.TranscriptChunk, error)
	CountByVideoID(ctx context.Context, tx *gorm.DB, videoID string) (int64, error)
	Count(ctx context.Context, tx *gorm.DB) (int64, error)
	CountDistinctVideos(ctx context.Context, tx *gorm.DB) (int64, error)
	DeleteByVideoID(ctx context.Context, tx *gorm.DB, videoID string) error
	DeleteAll(ctx context.Context, tx *gorm.DB) error
}

type chunkRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewChunkRepo(db *gorm.DB, baseLog *logger.Logger) ChunkRepo {
	return &chunkRepo{db: db, log: baseLog.With("repo", "ChunkRepo")}
}

func (r *chunkRepo) CreateBatch(ctx context.Context, tx *gorm.DB, chunks []*domain.TranscriptChunk) ([]*domain.TranscriptChunk, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	if len(chunks) == 0 {
		return []*domain.TranscriptChunk{}, nil
	}

	// Keep batches small because Content is large.
	const batchSize = 100

	if err := transaction.WithContext(ctx).CreateInBatches(chunks, batchSize).Error; err != nil {
		return nil, err
	}
	return chunks, nil
}

func (r *chunkRepo) GetByVideoID(ctx context.Context, tx *gorm.DB, videoID string) ([]*domain.TranscriptChunk, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	var results []*domain.TranscriptChunk
	if err := transaction.WithContext(ctx).
		Where("video_id = ?", videoID).
		Order("chunk_index ASC").
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (r *chunkRepo) GetByIDs(ctx context.Context, tx *gorm.DB, ids []uint) ([]*domain.TranscriptChunk, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	var results []*domain.TranscriptChunk
	if len(ids) == 0 {
		return results, nil
	}
	if err := transaction.WithContext(ctx).
		Where("id IN ?", ids).
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (r *chunkRepo) CountByVideoID(ctx context.Context, tx *gorm.DB, videoID string) (int64, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	var count int64
	if err := transaction.WithContext(ctx).
		Model(&domain.TranscriptChunk{}).
		Where("video_id = ?", videoID).
		Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

func (r *chunkRepo) Count(ctx context.Context, tx *gorm.DB) (int64, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	var count int64
	if err := transaction.WithContext(ctx).
		Model(&domain.TranscriptChunk{}).
		Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

func (r *chunkRepo) CountDistinctVideos(ctx context.Context, tx *gorm.DB) (int64, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	var count int64
	if err := transaction.WithContext(ctx).
		Model(&domain.TranscriptChunk{}).
		Distinct("video_id").
		Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

func (r *chunkRepo) DeleteByVideoID(ctx context.Context, tx *gorm.DB, videoID string) error {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	return transaction.WithContext(ctx).
		Where("video_id = ?", videoID).
		Delete(&domain.TranscriptChunk{}).Error
}

func (r *chunkRepo) DeleteAll(ctx context.Context, tx *gorm.DB) error {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	return transaction.WithContext(ctx).
		Where("1 = 1").
		Delete(&domain.TranscriptChunk{}).Error
}
