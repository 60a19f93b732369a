package services

import (
	"context"
	"fmt"

	"github.com/yungbote/tubebase-backend/internal/data/repos"
	"github.com/yungbote/tubebase-backend/internal/domain"
	"github.com/yungbote/tubebase-backend/internal/platform/apierr"
	"github.com/yungbote/tubebase-backend/internal/platform/logger"
	"github.com/yungbote/tubebase-backend/internal/vectorstore"
)

const (
	defaultSearchK        = 10
	defaultGroupedSearchK = 20
)

// SearchResult is one chunk hit joined back to its text and video metadata.
type SearchResult struct {
	VideoID     string  `json:"video_id"`
	VideoTitle  string  `json:"video_title"`
	ChannelName string  `json:"channel_name"`
	ChunkIndex  int     `json:"chunk_index"`
	Content     string  `json:"content"`
	Distance    float64 `json:"distance"`
}

type SearchService interface {
	// SearchSimilar returns up to k chunks in non-decreasing distance order.
	// An empty vector index yields an empty result, not an error.
	SearchSimilar(ctx context.Context, query string, k int) ([]*SearchResult, error)
	// SearchSimilarGrouped keeps only the closest chunk per video, preserving
	// the distance order of the underlying results.
	SearchSimilarGrouped(ctx context.Context, query string, k int) ([]*SearchResult, error)
}

type searchService struct {
	videoRepo repos.VideoRepo
	chunkRepo repos.ChunkRepo
	vectors   vectorstore.Store
	embedder  Embedder
	log       *logger.Logger
}

func NewSearchService(
	videoRepo repos.VideoRepo,
	chunkRepo repos.ChunkRepo,
	vectors vectorstore.Store,
	embedder Embedder,
	baseLog *logger.Logger,
) SearchService {
	return &searchService{
		videoRepo: videoRepo,
		chunkRepo: chunkRepo,
		vectors:   vectors,
		embedder:  embedder,
		log:       baseLog.With("service", "SearchService"),
	}
}

func (s *searchService) SearchSimilar(ctx context.Context, query string, k int) ([]*SearchResult, error) {
	if k <= 0 {
		k = defaultSearchK
	}

	count, err := s.vectors.Count(ctx)
	if err != nil {
		return nil, err
	}
	if count == 0 {
		return []*SearchResult{}, nil
	}

	embeddings, err := s.embedder.Embed(ctx, []string{query})
	if err != nil {
		return nil, apierr.ExternalService(fmt.Errorf("embed query: %w", err))
	}
	if len(embeddings) != 1 {
		return nil, apierr.ExternalService(fmt.Errorf("query embedding returned %d vectors", len(embeddings)))
	}

	matches, err := s.vectors.QueryNearest(ctx, embeddings[0], k)
	if err != nil {
		return nil, err
	}
	if len(matches) == 0 {
		return []*SearchResult{}, nil
	}

	chunkIDs := make([]uint, len(matches))
	for i, m := range matches {
		chunkIDs[i] = m.ChunkID
	}
	chunks, err := s.chunkRepo.GetByIDs(ctx, nil, chunkIDs)
	if err != nil {
		return nil, err
	}
	chunksByID := make(map[uint]*domain.TranscriptChunk, len(chunks))
	for _, c := range chunks {
		chunksByID[c.ID] = c
	}

	videoIDs := make([]string, 0, len(matches))
	seenVideos := map[string]bool{}
	for _, m := range matches {
		if !seenVideos[m.VideoID] {
			seenVideos[m.VideoID] = true
			videoIDs = append(videoIDs, m.VideoID)
		}
	}
	videos, err := s.videoRepo.GetByVideoIDs(ctx, nil, videoIDs)
	if err != nil {
		return nil, err
	}
	videosByID := make(map[string]*domain.Video, len(videos))
	for _, v := range videos {
		videosByID[v.VideoID] = v
	}

	results := make([]*SearchResult, 0, len(matches))
	for _, m := range matches {
		chunk := chunksByID[m.ChunkID]
		if chunk == nil {
			continue
		}
		result := &SearchResult{
			VideoID:    m.VideoID,
			ChunkIndex: chunk.ChunkIndex,
			Content:    chunk.Content,
			Distance:   m.Distance,
		}
		if video := videosByID[m.VideoID]; video != nil {
			result.VideoTitle = video.VideoTitle
			result.ChannelName = video.ChannelName
		}
		results = append(results, result)
	}
	return results, nil
}

func (s *searchService) SearchSimilarGrouped(ctx context.Context, query string, k int) ([]*SearchResult, error) {
	if k <= 0 {
		k = defaultGroupedSearchK
	}
	results, err := s.SearchSimilar(ctx, query, k)
	if err != nil {
		return nil, err
	}

	seen := map[string]bool{}
	grouped := make([]*SearchResult, 0, len(results))
	for _, r := range results {
		if seen[r.VideoID] {
			continue
		}
		seen[r.VideoID] = true
		grouped = append(grouped, r)
	}
	return grouped, nil
}
