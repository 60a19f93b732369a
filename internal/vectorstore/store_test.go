package vectorstore

import (
	"context"
	"path/filepath"
	"testing"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/yungbote/tubebase-backend/internal/domain"
	"github.com/yungbote/tubebase-backend/internal/platform/logger"
)

func newTestStore(t *testing.T) (Store, *gorm.DB) {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(filepath.Join(t.TempDir(), "test.db")), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	if err := db.AutoMigrate(&domain.TranscriptChunk{}, &domain.ChunkEmbedding{}); err != nil {
		t.Fatalf("migrate: %v", err)
	}

	log, err := logger.New("development")
	if err != nil {
		t.Fatalf("logger: %v", err)
	}
	return New(db, log), db
}

func makeVec(first float32) []float32 {
	v := make([]float32, Dim)
	v[0] = first
	return v
}

func seedChunk(t *testing.T, db *gorm.DB, videoID string, index int) uint {
	t.Helper()
	chunk := &domain.TranscriptChunk{VideoID: videoID, ChunkIndex: index, Content: "chunk"}
	if err := db.Create(chunk).Error; err != nil {
		t.Fatalf("create chunk: %v", err)
	}
	return chunk.ID
}

func TestEncodeDecodeRoundtrip(t *testing.T) {
	in := []float32{1.5, -2.25, 0, 3.14159}
	out, err := DecodeVector(EncodeVector(in))
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(out) != len(in) {
		t.Fatalf("length %d, want %d", len(out), len(in))
	}
	for i := range in {
		if out[i] != in[i] {
			t.Fatalf("component %d: %v != %v", i, out[i], in[i])
		}
	}

	if _, err := DecodeVector([]byte{1, 2, 3}); err == nil {
		t.Fatalf("expected error for truncated blob")
	}
}

func TestUpsertBatchRejectsWrongDim(t *testing.T) {
	store, db := newTestStore(t)
	chunkID := seedChunk(t, db, "v1", 0)

	err := store.UpsertBatch(context.Background(), nil, []Vector{
		{ChunkID: chunkID, Values: []float32{1, 2, 3}},
	})
	if err == nil {
		t.Fatalf("expected dimension error")
	}
}

func TestQueryNearestOrdering(t *testing.T) {
	store, db := newTestStore(t)
	ctx := context.Background()

	// Three chunks at distances 1, 2, 3 from the origin query.
	vectors := []Vector{
		{ChunkID: seedChunk(t, db, "v1", 0), Values: makeVec(2)},
		{ChunkID: seedChunk(t, db, "v2", 0), Values: makeVec(1)},
		{ChunkID: seedChunk(t, db, "v3", 0), Values: makeVec(3)},
	}
	if err := store.UpsertBatch(ctx, nil, vectors); err != nil {
		t.Fatalf("upsert: %v", err)
	}

	matches, err := store.QueryNearest(ctx, makeVec(0), 10)
	if err != nil {
		t.Fatalf("query: %v", err)
	}
	if len(matches) != 3 {
		t.Fatalf("got %d matches, want 3", len(matches))
	}
	for i := 1; i < len(matches); i++ {
		if matches[i].Distance < matches[i-1].Distance {
			t.Fatalf("distances not non-decreasing: %v", matches)
		}
	}
	if matches[0].VideoID != "v2" {
		t.Fatalf("closest match is %s, want v2", matches[0].VideoID)
	}

	// k bounds the result count.
	matches, err = store.QueryNearest(ctx, makeVec(0), 2)
	if err != nil {
		t.Fatalf("query with k=2: %v", err)
	}
	if len(matches) != 2 {
		t.Fatalf("got %d matches, want 2", len(matches))
	}
}

func TestVideoMeans(t *testing.T) {
	store, db := newTestStore(t)
	ctx := context.Background()

	vectors := []Vector{
		{ChunkID: seedChunk(t, db, "v1", 0), Values: makeVec(2)},
		{ChunkID: seedChunk(t, db, "v1", 1), Values: makeVec(4)},
		{ChunkID: seedChunk(t, db, "v2", 0), Values: makeVec(10)},
	}
	if err := store.UpsertBatch(ctx, nil, vectors); err != nil {
		t.Fatalf("upsert: %v", err)
	}

	means, err := store.VideoMeans(ctx)
	if err != nil {
		t.Fatalf("means: %v", err)
	}
	if len(means) != 2 {
		t.Fatalf("got %d videos, want 2", len(means))
	}
	if got := means["v1"][0]; got != 3 {
		t.Fatalf("v1 mean first component %v, want 3", got)
	}
	if got := means["v2"][0]; got != 10 {
		t.Fatalf("v2 mean first component %v, want 10", got)
	}
}

func TestDeleteByVideoID(t *testing.T) {
	store, db := newTestStore(t)
	ctx := context.Background()

	vectors := []Vector{
		{ChunkID: seedChunk(t, db, "v1", 0), Values: makeVec(1)},
		{ChunkID: seedChunk(t, db, "v2", 0), Values: makeVec(2)},
	}
	if err := store.UpsertBatch(ctx, nil, vectors); err != nil {
		t.Fatalf("upsert: %v", err)
	}

	if err := store.DeleteByVideoID(ctx, nil, "v1"); err != nil {
		t.Fatalf("delete: %v", err)
	}

	count, err := store.Count(ctx)
	if err != nil {
		t.Fatalf("count: %v", err)
	}
	if count != 1 {
		t.Fatalf("got %d embeddings after delete, want 1", count)
	}

	matches, err := store.QueryNearest(ctx, makeVec(0), 10)
	if err != nil {
		t.Fatalf("query: %v", err)
	}
	if len(matches) != 1 || matches[0].VideoID != "v2" {
		t.Fatalf("unexpected matches after delete: %v", matches)
	}
}
