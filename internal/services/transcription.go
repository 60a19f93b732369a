package services

import (
	"context"
	"fmt"
	"os"
	"strings"
	"sync"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/yungbote/tubebase-backend/internal/data/repos"
	"github.com/yungbote/tubebase-backend/internal/domain"
	"github.com/yungbote/tubebase-backend/internal/platform/apierr"
	"github.com/yungbote/tubebase-backend/internal/platform/logger"
	"github.com/yungbote/tubebase-backend/internal/vectorstore"
)

// AudioAcquirer produces a local audio artifact from a video source URL.
type AudioAcquirer interface {
	AcquireAudio(ctx context.Context, sourceURL string, outDir string) (string, error)
}

type TranscriptionService interface {
	// StartTranscription validates the submission, creates a pending job and
	// hands the pipeline to a background goroutine. The returned job is the
	// caller's only handle; progress is observed by polling it.
	StartTranscription(ctx context.Context, videoID, provider string, force bool) (*domain.Job, error)
	GetJob(ctx context.Context, id uuid.UUID) (*domain.Job, error)
	GetActiveJob(ctx context.Context, videoID string) (*domain.Job, error)
	ListJobs(ctx context.Context, videoID string) ([]*domain.Job, error)
	// Wait blocks until all in-flight jobs have reached a terminal state.
	// Used on shutdown so abandoned jobs are the crash case only.
	Wait()
}

type transcriptionService struct {
	db             *gorm.DB
	videoRepo      repos.VideoRepo
	transcriptRepo repos.TranscriptRepo
	chunkRepo      repos.ChunkRepo
	jobRepo        repos.JobRepo
	clusterRepo    repos.ClusterRepo
	settingRepo    repos.SettingRepo
	vectors        vectorstore.Store
	media          AudioAcquirer
	providers      ProviderFactory
	embedding      EmbeddingService
	log            *logger.Logger
	wg             sync.WaitGroup
}

func NewTranscriptionService(
	db *gorm.DB,
	videoRepo repos.VideoRepo,
	transcriptRepo repos.TranscriptRepo,
	chunkRepo repos.ChunkRepo,
	jobRepo repos.JobRepo,
	clusterRepo repos.ClusterRepo,
	settingRepo repos.SettingRepo,
	vectors vectorstore.Store,
	media AudioAcquirer,
	providers ProviderFactory,
	embedding EmbeddingService,
	baseLog *logger.Logger,
) TranscriptionService {
	return &transcriptionService{
		db:             db,
		videoRepo:      videoRepo,
		transcriptRepo: transcriptRepo,
		chunkRepo:      chunkRepo,
		jobRepo:        jobRepo,
		clusterRepo:    clusterRepo,
		settingRepo:    settingRepo,
		vectors:        vectors,
		media:          media,
		providers:      providers,
		embedding:      embedding,
		log:            baseLog.With("service", "TranscriptionService"),
	}
}

func (s *transcriptionService) StartTranscription(ctx context.Context, videoID, providerName string, force bool) (*domain.Job, error) {
	video, err := s.videoRepo.GetByVideoID(ctx, nil, videoID)
	if err != nil {
		return nil, err
	}
	if video == nil {
		return nil, apierr.NotFound(fmt.Errorf("video %s not found", videoID))
	}

	// Single-flight: best-effort check here, backed by the partial unique
	// index on (video_id, job_type) for non-terminal statuses.
	active, err := s.jobRepo.GetActiveByVideoID(ctx, nil, videoID, domain.JobTypeTranscribe)
	if err != nil {
		return nil, err
	}
	if active != nil {
		return nil, apierr.Conflict(fmt.Errorf("transcription already in progress for %s", videoID))
	}

	transcript, err := s.transcriptRepo.GetByVideoID(ctx, nil, videoID)
	if err != nil {
		return nil, err
	}
	if transcript != nil {
		if !force {
			return nil, apierr.Conflict(fmt.Errorf("transcript already exists for %s", videoID))
		}
		if err := s.wipeDerivedState(ctx, videoID); err != nil {
			return nil, fmt.Errorf("wipe existing transcript for %s: %w", videoID, err)
		}
		s.log.Info("Forced re-transcription, wiped existing transcript", "video_id", videoID)
	}

	resolved, err := s.resolveProviderName(ctx, providerName)
	if err != nil {
		return nil, err
	}
	provider, err := s.providers(resolved)
	if err != nil {
		return nil, err
	}

	job, err := s.jobRepo.Create(ctx, nil, &domain.Job{
		VideoID: videoID,
		JobType: domain.JobTypeTranscribe,
		Status:  domain.JobStatusPending,
	})
	if err != nil {
		return nil, err
	}

	s.log.Info("Transcription job submitted",
		"job_id", job.ID.String(),
		"video_id", videoID,
		"provider", resolved,
	)

	s.wg.Add(1)
	go s.runJob(job.ID, videoID, provider)

	return job, nil
}

func (s *transcriptionService) resolveProviderName(ctx context.Context, explicit string) (string, error) {
	name := strings.TrimSpace(explicit)
	if name == "" {
		stored, err := s.settingRepo.Get(ctx, nil, domain.SettingTranscriptionProvider)
		if err != nil {
			return "", err
		}
		name = strings.TrimSpace(stored)
	}
	if name == "" {
		name = ProviderAssemblyAI
	}
	return name, nil
}

// wipeDerivedState removes the transcript and everything embedding built
// from it, in one transaction.
func (s *transcriptionService) wipeDerivedState(ctx context.Context, videoID string) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := s.vectors.DeleteByVideoID(ctx, tx, videoID); err != nil {
			return err
		}
		if err := s.chunkRepo.DeleteByVideoID(ctx, tx, videoID); err != nil {
			return err
		}
		if err := s.clusterRepo.DeleteAssignment(ctx, tx, videoID); err != nil {
			return err
		}
		return s.transcriptRepo.DeleteByVideoID(ctx, tx, videoID)
	})
}

// runJob drives the pipeline on its own goroutine with a background context;
// the submitting request has already returned. All outcomes land in the job
// row, never in a return value.
func (s *transcriptionService) runJob(jobID uuid.UUID, videoID string, provider TranscriptionProvider) {
	defer s.wg.Done()

	ctx := context.Background()

	defer func() {
		if r := recover(); r != nil {
			s.log.Error("Transcription job panicked", "job_id", jobID.String(), "video_id", videoID, "panic", r)
			s.failJob(ctx, jobID, fmt.Sprintf("unexpected error: %v", r))
		}
	}()

	video, err := s.videoRepo.GetByVideoID(ctx, nil, videoID)
	if err != nil {
		s.failJob(ctx, jobID, fmt.Sprintf("load video: %v", err))
		return
	}
	if video == nil || strings.TrimSpace(video.VideoURL) == "" {
		s.failJob(ctx, jobID, "Video not found or missing URL")
		return
	}

	tmpDir, err := os.MkdirTemp("", "tb_transcribe_")
	if err != nil {
		s.failJob(ctx, jobID, fmt.Sprintf("create temp dir: %v", err))
		return
	}
	defer func() {
		if rmErr := os.RemoveAll(tmpDir); rmErr != nil {
			s.log.Warn("Failed to remove temp dir", "dir", tmpDir, "error", rmErr)
		}
	}()

	if err := s.jobRepo.UpdateStatus(ctx, nil, jobID, domain.JobStatusDownloading, ""); err != nil {
		s.log.Error("Failed to update job status", "job_id", jobID.String(), "error", err)
		return
	}
	s.log.Info("Downloading audio", "job_id", jobID.String(), "video_id", videoID)

	audioPath, err := s.media.AcquireAudio(ctx, video.VideoURL, tmpDir)
	if err != nil {
		s.failJob(ctx, jobID, fmt.Sprintf("audio download failed: %v", err))
		return
	}

	if err := s.jobRepo.UpdateStatus(ctx, nil, jobID, domain.JobStatusTranscribing, ""); err != nil {
		s.log.Error("Failed to update job status", "job_id", jobID.String(), "error", err)
		return
	}
	s.log.Info("Transcribing audio", "job_id", jobID.String(), "video_id", videoID)

	text, err := provider.Transcribe(ctx, audioPath)
	if err != nil {
		s.failJob(ctx, jobID, fmt.Sprintf("transcription failed: %v", err))
		return
	}
	if strings.TrimSpace(text) == "" {
		s.failJob(ctx, jobID, "Transcription returned empty text")
		return
	}

	if _, err := s.transcriptRepo.Create(ctx, nil, videoID, text); err != nil {
		s.failJob(ctx, jobID, fmt.Sprintf("store transcript: %v", err))
		return
	}

	if err := s.jobRepo.UpdateStatus(ctx, nil, jobID, domain.JobStatusCompleted, ""); err != nil {
		s.log.Error("Failed to mark job completed", "job_id", jobID.String(), "error", err)
		return
	}
	s.log.Info("Transcription complete", "job_id", jobID.String(), "video_id", videoID)

	// Best-effort: an embedding failure leaves the job completed. The
	// embedding status endpoint exposes the gap and EmbedAllUnembedded is
	// the recovery path.
	if _, err := s.embedding.EmbedVideo(ctx, videoID); err != nil {
		s.log.Warn("Post-transcription embedding failed", "video_id", videoID, "error", err)
	}
}

func (s *transcriptionService) failJob(ctx context.Context, jobID uuid.UUID, message string) {
	if err := s.jobRepo.UpdateStatus(ctx, nil, jobID, domain.JobStatusFailed, message); err != nil {
		s.log.Error("Failed to mark job failed", "job_id", jobID.String(), "error", err)
	}
}

func (s *transcriptionService) GetJob(ctx context.Context, id uuid.UUID) (*domain.Job, error) {
	job, err := s.jobRepo.GetByID(ctx, nil, id)
	if err != nil {
		return nil, err
	}
	if job == nil {
		return nil, apierr.NotFound(fmt.Errorf("job %s not found", id))
	}
	return job, nil
}

func (s *transcriptionService) GetActiveJob(ctx context.Context, videoID string) (*domain.Job, error) {
	return s.jobRepo.GetActiveByVideoID(ctx, nil, videoID, domain.JobTypeTranscribe)
}

func (s *transcriptionService) ListJobs(ctx context.Context, videoID string) ([]*domain.Job, error) {
	return s.jobRepo.ListByVideoID(ctx, nil, videoID)
}

func (s *transcriptionService) Wait() {
	s.wg.Wait()
}
