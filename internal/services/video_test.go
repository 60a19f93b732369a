package services

import (
	"context"
	"testing"

	"gorm.io/gorm"

	"github.com/yungbote/tubebase-backend/internal/data/repos"
	"github.com/yungbote/tubebase-backend/internal/domain"
	"github.com/yungbote/tubebase-backend/internal/platform/apierr"
	"github.com/yungbote/tubebase-backend/internal/vectorstore"
)

func newVideoFixture(t *testing.T) (*gorm.DB, vectorstore.Store, VideoService) {
	t.Helper()
	db := newTestDB(t)
	log := newTestLog(t)
	store := vectorstore.New(db, log)
	svc := NewVideoService(
		db,
		repos.NewVideoRepo(db, log),
		repos.NewTranscriptRepo(db, log),
		repos.NewChunkRepo(db, log),
		repos.NewJobRepo(db, log),
		repos.NewClusterRepo(db, log),
		store,
		log,
	)
	return db, store, svc
}

func TestCreateVideoValidation(t *testing.T) {
	_, _, svc := newVideoFixture(t)
	ctx := context.Background()

	tests := []struct {
		name  string
		video *domain.Video
	}{
		{"missing id", &domain.Video{VideoTitle: "Title"}},
		{"missing title", &domain.Video{VideoID: "v1"}},
		{"blank id", &domain.Video{VideoID: "  ", VideoTitle: "Title"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := svc.CreateVideo(ctx, tt.video); err == nil {
				t.Fatalf("expected validation error")
			}
		})
	}
}

func TestCreateVideoDuplicateConflict(t *testing.T) {
	_, _, svc := newVideoFixture(t)
	ctx := context.Background()

	if _, err := svc.CreateVideo(ctx, &domain.Video{VideoID: "v1", VideoTitle: "Title"}); err != nil {
		t.Fatalf("first create: %v", err)
	}
	_, err := svc.CreateVideo(ctx, &domain.Video{VideoID: "v1", VideoTitle: "Other"})
	if !apierr.IsCode(err, apierr.CodeConflict) {
		t.Fatalf("expected conflict, got %v", err)
	}
}

func TestListVideosPagination(t *testing.T) {
	db, _, svc := newVideoFixture(t)
	ctx := context.Background()

	for _, id := range []string{"v1", "v2", "v3", "v4", "v5"} {
		seedVideo(t, db, id, "Video "+id, "https://example.com/"+id)
	}

	page, err := svc.ListVideos(ctx, 1, 2)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if page.Total != 5 || page.TotalPages != 3 || len(page.Videos) != 2 {
		t.Fatalf("unexpected page: total=%d pages=%d len=%d", page.Total, page.TotalPages, len(page.Videos))
	}

	last, err := svc.ListVideos(ctx, 3, 2)
	if err != nil {
		t.Fatalf("last page: %v", err)
	}
	if len(last.Videos) != 1 {
		t.Fatalf("last page has %d videos, want 1", len(last.Videos))
	}

	// Out-of-range inputs are clamped rather than rejected.
	clamped, err := svc.ListVideos(ctx, 0, -1)
	if err != nil {
		t.Fatalf("clamped list: %v", err)
	}
	if clamped.Page != 1 || clamped.PerPage != 20 {
		t.Fatalf("clamping failed: page=%d per_page=%d", clamped.Page, clamped.PerPage)
	}
}

func TestDeleteVideoCascades(t *testing.T) {
	db, store, svc := newVideoFixture(t)
	ctx := context.Background()

	seedVideo(t, db, "v1", "Video", "https://example.com/v1")
	seedTranscript(t, db, "v1", "content")
	chunk := &domain.TranscriptChunk{VideoID: "v1", ChunkIndex: 0, Content: "chunk"}
	if err := db.Create(chunk).Error; err != nil {
		t.Fatalf("seed chunk: %v", err)
	}
	if err := store.UpsertBatch(ctx, nil, []vectorstore.Vector{{ChunkID: chunk.ID, Values: testVec(1)}}); err != nil {
		t.Fatalf("seed vector: %v", err)
	}
	if err := db.Create(&domain.Job{VideoID: "v1", JobType: domain.JobTypeTranscribe, Status: domain.JobStatusCompleted}).Error; err != nil {
		t.Fatalf("seed job: %v", err)
	}
	if err := db.Create(&domain.VideoClusterAssignment{VideoID: "v1", ClusterID: 0}).Error; err != nil {
		t.Fatalf("seed assignment: %v", err)
	}

	if err := svc.DeleteVideo(ctx, "v1"); err != nil {
		t.Fatalf("delete: %v", err)
	}

	counts := map[string]int64{}
	for name, model := range map[string]any{
		"videos":      &domain.Video{},
		"transcripts": &domain.Transcript{},
		"chunks":      &domain.TranscriptChunk{},
		"vectors":     &domain.ChunkEmbedding{},
		"jobs":        &domain.Job{},
		"assignments": &domain.VideoClusterAssignment{},
	} {
		var c int64
		db.Model(model).Count(&c)
		counts[name] = c
	}
	for name, c := range counts {
		if c != 0 {
			t.Fatalf("%s not cascaded: %d rows remain", name, c)
		}
	}
}

func TestDeleteVideoNotFound(t *testing.T) {
	_, _, svc := newVideoFixture(t)

	err := svc.DeleteVideo(context.Background(), "missing")
	if !apierr.IsCode(err, apierr.CodeNotFound) {
		t.Fatalf("expected not_found, got %v", err)
	}
}

func TestGetTranscriptStatus(t *testing.T) {
	db, _, svc := newVideoFixture(t)
	ctx := context.Background()

	seedVideo(t, db, "v1", "Video", "https://example.com/v1")

	status, err := svc.GetTranscriptStatus(ctx, "v1")
	if err != nil {
		t.Fatalf("status: %v", err)
	}
	if status.Indexed || status.IndexedAt != nil {
		t.Fatalf("unindexed video reported indexed: %+v", status)
	}

	seedTranscript(t, db, "v1", "content")
	status, err = svc.GetTranscriptStatus(ctx, "v1")
	if err != nil {
		t.Fatalf("status after transcript: %v", err)
	}
	if !status.Indexed || status.IndexedAt == nil {
		t.Fatalf("indexed video reported unindexed: %+v", status)
	}
}

func TestSearchTranscripts(t *testing.T) {
	db, _, svc := newVideoFixture(t)
	ctx := context.Background()

	seedVideo(t, db, "v1", "Go Talk", "https://example.com/v1")
	seedTranscript(t, db, "v1", "today we discuss goroutines and channels")
	seedVideo(t, db, "v2", "Cooking", "https://example.com/v2")
	seedTranscript(t, db, "v2", "how to bake bread")

	if _, err := svc.SearchTranscripts(ctx, "  ", 10); err == nil {
		t.Fatalf("expected error for blank query")
	}

	rows, err := svc.SearchTranscripts(ctx, "goroutines", 10)
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	if len(rows) != 1 || rows[0].VideoID != "v1" {
		t.Fatalf("unexpected rows: %+v", rows)
	}
}
