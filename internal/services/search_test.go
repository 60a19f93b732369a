package services

import (
	"context"
	"testing"

	"gorm.io/gorm"

	"github.com/yungbote/tubebase-backend/internal/data/repos"
	"github.com/yungbote/tubebase-backend/internal/domain"
	"github.com/yungbote/tubebase-backend/internal/vectorstore"
)

// seedEmbeddedChunk stores one chunk with a vector at the given first
// component, so distances to a zero query are directly controllable.
func seedEmbeddedChunk(t *testing.T, db *gorm.DB, store vectorstore.Store, videoID string, index int, content string, first float32) {
	t.Helper()
	chunk := &domain.TranscriptChunk{VideoID: videoID, ChunkIndex: index, Content: content}
	if err := db.Create(chunk).Error; err != nil {
		t.Fatalf("create chunk: %v", err)
	}
	err := store.UpsertBatch(context.Background(), nil, []vectorstore.Vector{
		{ChunkID: chunk.ID, Values: testVec(first)},
	})
	if err != nil {
		t.Fatalf("upsert vector: %v", err)
	}
}

func newSearchFixture(t *testing.T) (*gorm.DB, vectorstore.Store, SearchService, *fakeEmbedder) {
	t.Helper()
	db := newTestDB(t)
	log := newTestLog(t)
	store := vectorstore.New(db, log)
	embedder := &fakeEmbedder{byText: map[string][]float32{
		"test query": testVec(0),
	}}
	svc := NewSearchService(
		repos.NewVideoRepo(db, log),
		repos.NewChunkRepo(db, log),
		store,
		embedder,
		log,
	)
	return db, store, svc, embedder
}

func TestSearchSimilarEmptyIndex(t *testing.T) {
	_, _, svc, embedder := newSearchFixture(t)

	results, err := svc.SearchSimilar(context.Background(), "test query", 5)
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	if len(results) != 0 {
		t.Fatalf("expected no results on empty index, got %d", len(results))
	}
	if embedder.calls != 0 {
		t.Fatalf("empty index must not embed the query, got %d calls", embedder.calls)
	}
}

func TestSearchSimilarOrderingAndMetadata(t *testing.T) {
	db, store, svc, _ := newSearchFixture(t)
	ctx := context.Background()

	seedVideo(t, db, "v1", "First Video", "https://example.com/v1")
	seedVideo(t, db, "v2", "Second Video", "https://example.com/v2")
	seedEmbeddedChunk(t, db, store, "v1", 0, "far chunk", 5)
	seedEmbeddedChunk(t, db, store, "v2", 0, "close chunk", 1)
	seedEmbeddedChunk(t, db, store, "v1", 1, "middle chunk", 3)

	results, err := svc.SearchSimilar(ctx, "test query", 10)
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	if len(results) != 3 {
		t.Fatalf("got %d results, want 3", len(results))
	}
	for i := 1; i < len(results); i++ {
		if results[i].Distance < results[i-1].Distance {
			t.Fatalf("results not ordered by distance: %+v", results)
		}
	}
	if results[0].Content != "close chunk" || results[0].VideoTitle != "Second Video" {
		t.Fatalf("unexpected first result: %+v", results[0])
	}
	if results[0].ChannelName != "Test Channel" {
		t.Fatalf("channel metadata missing: %+v", results[0])
	}

	// k bounds the result count.
	results, err = svc.SearchSimilar(ctx, "test query", 2)
	if err != nil {
		t.Fatalf("search with k=2: %v", err)
	}
	if len(results) != 2 {
		t.Fatalf("got %d results, want 2", len(results))
	}
}

func TestSearchSimilarGroupedDedupe(t *testing.T) {
	db, store, svc, _ := newSearchFixture(t)
	ctx := context.Background()

	seedVideo(t, db, "v1", "First Video", "https://example.com/v1")
	seedVideo(t, db, "v2", "Second Video", "https://example.com/v2")
	seedEmbeddedChunk(t, db, store, "v1", 0, "v1 close", 1)
	seedEmbeddedChunk(t, db, store, "v1", 1, "v1 far", 4)
	seedEmbeddedChunk(t, db, store, "v2", 0, "v2 middle", 2)

	results, err := svc.SearchSimilarGrouped(ctx, "test query", 10)
	if err != nil {
		t.Fatalf("grouped search: %v", err)
	}
	if len(results) != 2 {
		t.Fatalf("got %d grouped results, want 2", len(results))
	}
	if results[0].VideoID != "v1" || results[0].Content != "v1 close" {
		t.Fatalf("v1 entry is not its closest chunk: %+v", results[0])
	}
	if results[1].VideoID != "v2" {
		t.Fatalf("expected v2 second, got %+v", results[1])
	}
	if results[0].Distance > results[1].Distance {
		t.Fatalf("grouped results lost distance ordering")
	}
}
