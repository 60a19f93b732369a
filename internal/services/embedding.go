package services

import (
	"context"
	"fmt"
	"sync"

	"golang.org/x/sync/errgroup"
	"gorm.io/gorm"

	"github.com/yungbote/tubebase-backend/internal/chunker"
	"github.com/yungbote/tubebase-backend/internal/data/repos"
	"github.com/yungbote/tubebase-backend/internal/domain"
	"github.com/yungbote/tubebase-backend/internal/platform/apierr"
	"github.com/yungbote/tubebase-backend/internal/platform/logger"
	"github.com/yungbote/tubebase-backend/internal/vectorstore"
)

// Embedder is the external embedding call: one batched request per call,
// one 768-dim vector per input text.
type Embedder interface {
	Embed(ctx context.Context, inputs []string) ([][]float32, error)
}

// How many videos embed concurrently during the batch drivers. Each video is
// a single batched API call, so this bounds in-flight external requests.
const maxConcurrentEmbeds = 3

type VideoError struct {
	VideoID string `json:"video_id"`
	Error   string `json:"error"`
}

type EmbedBatchResult struct {
	Embedded int          `json:"embedded"`
	Total    int          `json:"total"`
	Errors   []VideoError `json:"errors"`
}

type EmbeddingStatus struct {
	TotalTranscripts int64 `json:"total_transcripts"`
	EmbeddedVideos   int64 `json:"embedded_videos"`
	UnembeddedVideos int64 `json:"unembedded_videos"`
	TotalChunks      int64 `json:"total_chunks"`
}

type EmbeddingService interface {
	// EmbedVideo chunks a video's transcript, embeds every chunk in one
	// batched call and persists chunk+vector pairs transactionally. Returns
	// the chunk count. Idempotent: existing chunks short-circuit.
	EmbedVideo(ctx context.Context, videoID string) (int, error)
	EmbedAllUnembedded(ctx context.Context) (*EmbedBatchResult, error)
	RebuildAllEmbeddings(ctx context.Context) (*EmbedBatchResult, error)
	Status(ctx context.Context) (*EmbeddingStatus, error)
}

type embeddingService struct {
	db             *gorm.DB
	transcriptRepo repos.TranscriptRepo
	chunkRepo      repos.ChunkRepo
	vectors        vectorstore.Store
	embedder       Embedder
	chunker        *chunker.Chunker
	log            *logger.Logger
}

func NewEmbeddingService(
	db *gorm.DB,
	transcriptRepo repos.TranscriptRepo,
	chunkRepo repos.ChunkRepo,
	vectors vectorstore.Store,
	embedder Embedder,
	baseLog *logger.Logger,
) EmbeddingService {
	return &embeddingService{
		db:             db,
		transcriptRepo: transcriptRepo,
		chunkRepo:      chunkRepo,
		vectors:        vectors,
		embedder:       embedder,
		chunker:        chunker.New(chunker.DefaultChunkSize, chunker.DefaultOverlap),
		log:            baseLog.With("service", "EmbeddingService"),
	}
}

func (s *embeddingService) EmbedVideo(ctx context.Context, videoID string) (int, error) {
	transcript, err := s.transcriptRepo.GetByVideoID(ctx, nil, videoID)
	if err != nil {
		return 0, fmt.Errorf("load transcript for %s: %w", videoID, err)
	}
	if transcript == nil || transcript.Content == "" {
		return 0, apierr.NotFound(fmt.Errorf("video %s has no transcript to embed", videoID))
	}

	existing, err := s.chunkRepo.CountByVideoID(ctx, nil, videoID)
	if err != nil {
		return 0, err
	}
	if existing > 0 {
		return int(existing), nil
	}

	texts := s.chunker.Chunk(transcript.Content)
	if len(texts) == 0 {
		return 0, apierr.NotFound(fmt.Errorf("video %s transcript produced no chunks", videoID))
	}

	embeddings, err := s.embedder.Embed(ctx, texts)
	if err != nil {
		return 0, apierr.ExternalService(fmt.Errorf("embed %d chunks for %s: %w", len(texts), videoID, err))
	}
	if len(embeddings) != len(texts) {
		return 0, apierr.ExternalService(fmt.Errorf(
			"embedding count mismatch for %s: %d texts, %d vectors", videoID, len(texts), len(embeddings)))
	}

	// Chunk rows and their vectors commit as one unit; a reader never sees a
	// chunk without its vector.
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		chunks := make([]*domain.TranscriptChunk, len(texts))
		for i, text := range texts {
			chunks[i] = &domain.TranscriptChunk{
				VideoID:    videoID,
				ChunkIndex: i,
				Content:    text,
			}
		}
		if _, err := s.chunkRepo.CreateBatch(ctx, tx, chunks); err != nil {
			return err
		}

		vectors := make([]vectorstore.Vector, len(chunks))
		for i, chunk := range chunks {
			vectors[i] = vectorstore.Vector{ChunkID: chunk.ID, Values: embeddings[i]}
		}
		return s.vectors.UpsertBatch(ctx, tx, vectors)
	})
	if err != nil {
		return 0, fmt.Errorf("persist chunks for %s: %w", videoID, err)
	}

	s.log.Info("Video embedded", "video_id", videoID, "chunks", len(texts))
	return len(texts), nil
}

func (s *embeddingService) EmbedAllUnembedded(ctx context.Context) (*EmbedBatchResult, error) {
	ids, err := s.transcriptRepo.ListUnembeddedVideoIDs(ctx, nil)
	if err != nil {
		return nil, err
	}
	return s.embedBatch(ctx, ids), nil
}

func (s *embeddingService) RebuildAllEmbeddings(ctx context.Context) (*EmbedBatchResult, error) {
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := s.vectors.DeleteAll(ctx, tx); err != nil {
			return err
		}
		return s.chunkRepo.DeleteAll(ctx, tx)
	})
	if err != nil {
		return nil, fmt.Errorf("wipe existing embeddings: %w", err)
	}
	s.log.Info("Cleared all existing embeddings")

	ids, err := s.transcriptRepo.ListVideoIDsWithContent(ctx, nil)
	if err != nil {
		return nil, err
	}
	return s.embedBatch(ctx, ids), nil
}

// embedBatch embeds each video independently; one video's failure is
// recorded and never aborts the rest.
func (s *embeddingService) embedBatch(ctx context.Context, videoIDs []string) *EmbedBatchResult {
	result := &EmbedBatchResult{Total: len(videoIDs), Errors: []VideoError{}}
	var mu sync.Mutex

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(maxConcurrentEmbeds)

	for _, videoID := range videoIDs {
		g.Go(func() error {
			count, err := s.EmbedVideo(gctx, videoID)
			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				s.log.Error("Failed to embed video", "video_id", videoID, "error", err)
				result.Errors = append(result.Errors, VideoError{VideoID: videoID, Error: err.Error()})
				return nil
			}
			if count > 0 {
				result.Embedded++
			}
			return nil
		})
	}

	// Workers report failures through the result, never through the group.
	_ = g.Wait()
	return result
}

func (s *embeddingService) Status(ctx context.Context) (*EmbeddingStatus, error) {
	totalTranscripts, err := s.transcriptRepo.CountWithContent(ctx, nil)
	if err != nil {
		return nil, err
	}
	embeddedVideos, err := s.chunkRepo.CountDistinctVideos(ctx, nil)
	if err != nil {
		return nil, err
	}
	totalChunks, err := s.chunkRepo.Count(ctx, nil)
	if err != nil {
		return nil, err
	}
	return &EmbeddingStatus{
		TotalTranscripts: totalTranscripts,
		EmbeddedVideos:   embeddedVideos,
		UnembeddedVideos: totalTranscripts - embeddedVideos,
		TotalChunks:      totalChunks,
	}, nil
}
