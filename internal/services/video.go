package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/yungbote/tubebase-backend/internal/data/repos"
	"github.com/yungbote/tubebase-backend/internal/domain"
	"github.com/yungbote/tubebase-backend/internal/platform/apierr"
	"github.com/yungbote/tubebase-backend/internal/platform/logger"
	"github.com/yungbote/tubebase-backend/internal/vectorstore"
)

type VideoPage struct {
	Videos     []*domain.VideoListItem `json:"videos"`
	Page       int                     `json:"page"`
	PerPage    int                     `json:"per_page"`
	Total      int64                   `json:"total"`
	TotalPages int                     `json:"total_pages"`
}

type TranscriptStatus struct {
	VideoID   string     `json:"video_id"`
	Indexed   bool       `json:"indexed"`
	IndexedAt *time.Time `json:"indexed_at,omitempty"`
}

type VideoService interface {
	CreateVideo(ctx context.Context, video *domain.Video) (*domain.Video, error)
	GetVideo(ctx context.Context, videoID string) (*domain.Video, error)
	ListVideos(ctx context.Context, page, perPage int) (*VideoPage, error)
	// DeleteVideo removes the video and every derived row in one
	// transaction: transcript, chunks, vectors, jobs, cluster assignment.
	DeleteVideo(ctx context.Context, videoID string) error

	GetTranscript(ctx context.Context, videoID string) (*domain.Transcript, error)
	GetTranscriptStatus(ctx context.Context, videoID string) (*TranscriptStatus, error)
	SearchTranscripts(ctx context.Context, query string, limit int) ([]*repos.TranscriptSearchRow, error)
}

type videoService struct {
	db             *gorm.DB
	videoRepo      repos.VideoRepo
	transcriptRepo repos.TranscriptRepo
	chunkRepo      repos.ChunkRepo
	jobRepo        repos.JobRepo
	clusterRepo    repos.ClusterRepo
	vectors        vectorstore.Store
	log            *logger.Logger
}

func NewVideoService(
	db *gorm.DB,
	videoRepo repos.VideoRepo,
	transcriptRepo repos.TranscriptRepo,
	chunkRepo repos.ChunkRepo,
	jobRepo repos.JobRepo,
	clusterRepo repos.ClusterRepo,
	vectors vectorstore.Store,
	baseLog *logger.Logger,
) VideoService {
	return &videoService{
		db:             db,
		videoRepo:      videoRepo,
		transcriptRepo: transcriptRepo,
		chunkRepo:      chunkRepo,
		jobRepo:        jobRepo,
		clusterRepo:    clusterRepo,
		vectors:        vectors,
		log:            baseLog.With("service", "VideoService"),
	}
}

func (s *videoService) CreateVideo(ctx context.Context, video *domain.Video) (*domain.Video, error) {
	if strings.TrimSpace(video.VideoID) == "" || strings.TrimSpace(video.VideoTitle) == "" {
		return nil, apierr.New(400, "bad_request", fmt.Errorf("video_id and video_title are required"))
	}

	existing, err := s.videoRepo.GetByVideoID(ctx, nil, video.VideoID)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, apierr.Conflict(fmt.Errorf("video %s already exists", video.VideoID))
	}

	created, err := s.videoRepo.Create(ctx, nil, video)
	if err != nil {
		return nil, err
	}
	s.log.Info("Video created", "video_id", created.VideoID)
	return created, nil
}

func (s *videoService) GetVideo(ctx context.Context, videoID string) (*domain.Video, error) {
	video, err := s.videoRepo.GetByVideoID(ctx, nil, videoID)
	if err != nil {
		return nil, err
	}
	if video == nil {
		return nil, apierr.NotFound(fmt.Errorf("video %s not found", videoID))
	}
	return video, nil
}

func (s *videoService) ListVideos(ctx context.Context, page, perPage int) (*VideoPage, error) {
	if page < 1 {
		page = 1
	}
	if perPage < 1 {
		perPage = 20
	}
	if perPage > 100 {
		perPage = 100
	}

	total, err := s.videoRepo.Count(ctx, nil)
	if err != nil {
		return nil, err
	}
	videos, err := s.videoRepo.List(ctx, nil, perPage, (page-1)*perPage)
	if err != nil {
		return nil, err
	}

	totalPages := int((total + int64(perPage) - 1) / int64(perPage))
	if totalPages < 1 {
		totalPages = 1
	}
	return &VideoPage{
		Videos:     videos,
		Page:       page,
		PerPage:    perPage,
		Total:      total,
		TotalPages: totalPages,
	}, nil
}

func (s *videoService) DeleteVideo(ctx context.Context, videoID string) error {
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := s.vectors.DeleteByVideoID(ctx, tx, videoID); err != nil {
			return err
		}
		if err := s.chunkRepo.DeleteByVideoID(ctx, tx, videoID); err != nil {
			return err
		}
		if err := s.transcriptRepo.DeleteByVideoID(ctx, tx, videoID); err != nil {
			return err
		}
		if err := s.jobRepo.DeleteByVideoID(ctx, tx, videoID); err != nil {
			return err
		}
		if err := s.clusterRepo.DeleteAssignment(ctx, tx, videoID); err != nil {
			return err
		}
		deleted, err := s.videoRepo.Delete(ctx, tx, videoID)
		if err != nil {
			return err
		}
		if !deleted {
			return apierr.NotFound(fmt.Errorf("video %s not found", videoID))
		}
		return nil
	})
	if err != nil {
		return err
	}
	s.log.Info("Video deleted", "video_id", videoID)
	return nil
}

func (s *videoService) GetTranscript(ctx context.Context, videoID string) (*domain.Transcript, error) {
	transcript, err := s.transcriptRepo.GetByVideoID(ctx, nil, videoID)
	if err != nil {
		return nil, err
	}
	if transcript == nil {
		return nil, apierr.NotFound(fmt.Errorf("transcript not found for %s", videoID))
	}
	return transcript, nil
}

func (s *videoService) GetTranscriptStatus(ctx context.Context, videoID string) (*TranscriptStatus, error) {
	transcript, err := s.transcriptRepo.GetByVideoID(ctx, nil, videoID)
	if err != nil {
		return nil, err
	}
	status := &TranscriptStatus{VideoID: videoID}
	if transcript != nil {
		status.Indexed = true
		indexedAt := transcript.IndexedAt
		status.IndexedAt = &indexedAt
	}
	return status, nil
}

func (s *videoService) SearchTranscripts(ctx context.Context, query string, limit int) ([]*repos.TranscriptSearchRow, error) {
	if strings.TrimSpace(query) == "" {
		return nil, apierr.New(400, "bad_request", fmt.Errorf("search query is required"))
	}
	return s.transcriptRepo.Search(ctx, nil, query, limit)
}
