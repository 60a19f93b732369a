package repos

import (
	"context"

	"gorm.io/gorm"

	"github.com/yungbote/tubebase-backend/internal/domain"
	"github.com/yungbote/tubebase-backend/internal/platform/logger"
)

type ClusterRepo interface {
	// ReplaceAll swaps the entire cluster state inside the given transaction:
	// delete both tables, then insert the new labels and assignments. Callers
	// must pass a transaction so readers never observe the empty window.
	ReplaceAll(ctx context.Context, tx *gorm.DB, labels []*domain.ClusterLabel, assignments []*domain.VideoClusterAssignment) error
	GetLabels(ctx context.Context, tx *gorm.DB) ([]*domain.ClusterLabel, error)
	GetAssignments(ctx context.Context, tx *gorm.DB) ([]*domain.VideoClusterAssignment, error)
	DeleteAssignment(ctx context.Context, tx *gorm.DB, videoID string) error
}

type clusterRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewClusterRepo(db *gorm.DB, baseLog *logger.Logger) ClusterRepo {
	return &clusterRepo{db: db, log: baseLog.With("repo", "ClusterRepo")}
}

func (r *clusterRepo) ReplaceAll(ctx context.Context, tx *gorm.DB, labels []*domain.ClusterLabel, assignments []*domain.VideoClusterAssignment) error {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	if err := transaction.WithContext(ctx).
		Where("1 = 1").
		Delete(&domain.VideoClusterAssignment{}).Error; err != nil {
		return err
	}
	if err := transaction.WithContext(ctx).
		Where("1 = 1").
		Delete(&domain.ClusterLabel{}).Error; err != nil {
		return err
	}
	if len(labels) > 0 {
		if err := transaction.WithContext(ctx).Create(labels).Error; err != nil {
			return err
		}
	}
	if len(assignments) > 0 {
		if err := transaction.WithContext(ctx).Create(assignments).Error; err != nil {
			return err
		}
	}
	return nil
}

func (r *clusterRepo) GetLabels(ctx context.Context, tx *gorm.DB) ([]*domain.ClusterLabel, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	var results []*domain.ClusterLabel
	if err := transaction.WithContext(ctx).
		Order("cluster_id ASC").
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (r *clusterRepo) GetAssignments(ctx context.Context, tx *gorm.DB) ([]*domain.VideoClusterAssignment, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	var results []*domain.VideoClusterAssignment
	if err := transaction.WithContext(ctx).
		Order("cluster_id ASC, video_id ASC").
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (r *clusterRepo) DeleteAssignment(ctx context.Context, tx *gorm.DB, videoID string) error {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	return transaction.WithContext(ctx).
		Where("video_id = ?", videoID).
		Delete(&domain.VideoClusterAssignment{}).Error
}
