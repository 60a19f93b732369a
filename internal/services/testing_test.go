package services

import (
	"context"
	"fmt"
	"hash/fnv"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/yungbote/tubebase-backend/internal/data/repos"
	"github.com/yungbote/tubebase-backend/internal/domain"
	"github.com/yungbote/tubebase-backend/internal/platform/gemini"
	"github.com/yungbote/tubebase-backend/internal/platform/logger"
	"github.com/yungbote/tubebase-backend/internal/vectorstore"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(filepath.Join(t.TempDir(), "test.db")), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	if err := db.AutoMigrate(
		&domain.Video{},
		&domain.Transcript{},
		&domain.TranscriptChunk{},
		&domain.ChunkEmbedding{},
		&domain.Job{},
		&domain.ClusterLabel{},
		&domain.VideoClusterAssignment{},
		&domain.Setting{},
	); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return db
}

func newTestLog(t *testing.T) *logger.Logger {
	t.Helper()
	log, err := logger.New("development")
	if err != nil {
		t.Fatalf("logger: %v", err)
	}
	return log
}

func seedVideo(t *testing.T, db *gorm.DB, videoID, title, url string) {
	t.Helper()
	video := &domain.Video{VideoID: videoID, VideoTitle: title, VideoURL: url, ChannelName: "Test Channel"}
	if err := db.Create(video).Error; err != nil {
		t.Fatalf("seed video %s: %v", videoID, err)
	}
}

func seedTranscript(t *testing.T, db *gorm.DB, videoID, content string) {
	t.Helper()
	log := newTestLog(t)
	if _, err := repos.NewTranscriptRepo(db, log).Create(context.Background(), nil, videoID, content); err != nil {
		t.Fatalf("seed transcript %s: %v", videoID, err)
	}
}

// fakeEmbedder hands out deterministic vectors derived from the text. Inputs
// containing failSubstring fail the whole batch, mimicking a provider error.
type fakeEmbedder struct {
	mu            sync.Mutex
	calls         int
	failSubstring string
	byText        map[string][]float32
}

func (f *fakeEmbedder) Embed(_ context.Context, inputs []string) ([][]float32, error) {
	f.mu.Lock()
	f.calls++
	f.mu.Unlock()

	out := make([][]float32, len(inputs))
	for i, text := range inputs {
		if f.failSubstring != "" && strings.Contains(text, f.failSubstring) {
			return nil, fmt.Errorf("simulated embedding failure")
		}
		if v, ok := f.byText[text]; ok {
			out[i] = v
			continue
		}
		h := fnv.New32a()
		_, _ = h.Write([]byte(text))
		out[i] = testVec(float32(h.Sum32()%1000) / 1000)
	}
	return out, nil
}

func testVec(first float32) []float32 {
	v := make([]float32, vectorstore.Dim)
	v[0] = first
	return v
}

// fakeGenerator is a TextGenerator returning a fixed label or an error.
type fakeGenerator struct {
	mu      sync.Mutex
	calls   int
	text    string
	err     error
	prompts []string
}

func (f *fakeGenerator) GenerateText(_ context.Context, _ string, user string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	f.prompts = append(f.prompts, user)
	if f.err != nil {
		return "", f.err
	}
	return f.text, nil
}

// fakeGeminiClient implements gemini.Client for summary and chat tests.
type fakeGeminiClient struct {
	generated string
	genErr    error
	deltas    []string
	streamErr error
	system    string
	prompt    string
}

func (f *fakeGeminiClient) Embed(_ context.Context, inputs []string) ([][]float32, error) {
	out := make([][]float32, len(inputs))
	for i := range inputs {
		out[i] = testVec(0)
	}
	return out, nil
}

func (f *fakeGeminiClient) GenerateText(_ context.Context, system, user string) (string, error) {
	f.system = system
	f.prompt = user
	if f.genErr != nil {
		return "", f.genErr
	}
	return f.generated, nil
}

func (f *fakeGeminiClient) GenerateTextWithAudio(_ context.Context, _ string, _ string) (string, error) {
	return f.generated, f.genErr
}

func (f *fakeGeminiClient) StreamText(_ context.Context, system string, _ []gemini.Turn, user string, onDelta func(string)) (string, error) {
	f.system = system
	f.prompt = user
	if f.streamErr != nil {
		return "", f.streamErr
	}
	var full strings.Builder
	for _, d := range f.deltas {
		full.WriteString(d)
		if onDelta != nil {
			onDelta(d)
		}
	}
	return full.String(), nil
}

// fakeAcquirer drops a dummy audio file into the requested directory and
// remembers the directory so cleanup can be asserted.
type fakeAcquirer struct {
	mu      sync.Mutex
	err     error
	outDirs []string
}

func (f *fakeAcquirer) AcquireAudio(_ context.Context, _ string, outDir string) (string, error) {
	f.mu.Lock()
	f.outDirs = append(f.outDirs, outDir)
	f.mu.Unlock()
	if f.err != nil {
		return "", f.err
	}
	path := filepath.Join(outDir, "audio.mp3")
	if err := os.WriteFile(path, []byte("fake audio"), 0o644); err != nil {
		return "", err
	}
	return path, nil
}

func (f *fakeAcquirer) lastOutDir() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.outDirs) == 0 {
		return ""
	}
	return f.outDirs[len(f.outDirs)-1]
}

// fakeTranscriptionProvider returns canned text.
type fakeTranscriptionProvider struct {
	text string
	err  error
}

func (f *fakeTranscriptionProvider) Transcribe(_ context.Context, _ string) (string, error) {
	return f.text, f.err
}

func fixedProviderFactory(p TranscriptionProvider) ProviderFactory {
	return func(string) (TranscriptionProvider, error) {
		return p, nil
	}
}

// failingStore wraps a vector store and fails UpsertBatch, so the
// chunk+vector transaction must roll back.
type failingStore struct {
	vectorstore.Store
}

func (f *failingStore) UpsertBatch(_ context.Context, _ *gorm.DB, _ []vectorstore.Vector) error {
	return fmt.Errorf("simulated vector store failure")
}

// countingTranscriptRepo counts summary reads.
type countingTranscriptRepo struct {
	repos.TranscriptRepo
	mu           sync.Mutex
	summaryCalls int
}

func (c *countingTranscriptRepo) GetAllSummaries(ctx context.Context, tx *gorm.DB) ([]*repos.TranscriptSummaryRow, error) {
	c.mu.Lock()
	c.summaryCalls++
	c.mu.Unlock()
	return c.TranscriptRepo.GetAllSummaries(ctx, tx)
}

// failingClusterRepo fails the atomic replace.
type failingClusterRepo struct {
	repos.ClusterRepo
}

func (f *failingClusterRepo) ReplaceAll(_ context.Context, _ *gorm.DB, _ []*domain.ClusterLabel, _ []*domain.VideoClusterAssignment) error {
	return fmt.Errorf("simulated cluster persist failure")
}

// recordingEmbeddingService records best-effort embedding invocations from
// the transcription pipeline.
type recordingEmbeddingService struct {
	mu       sync.Mutex
	videoIDs []string
	err      error
}

func (f *recordingEmbeddingService) EmbedVideo(_ context.Context, videoID string) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.videoIDs = append(f.videoIDs, videoID)
	if f.err != nil {
		return 0, f.err
	}
	return 1, nil
}

func (f *recordingEmbeddingService) EmbedAllUnembedded(_ context.Context) (*EmbedBatchResult, error) {
	return &EmbedBatchResult{}, nil
}

func (f *recordingEmbeddingService) RebuildAllEmbeddings(_ context.Context) (*EmbedBatchResult, error) {
	return &EmbedBatchResult{}, nil
}

func (f *recordingEmbeddingService) Status(_ context.Context) (*EmbeddingStatus, error) {
	return &EmbeddingStatus{}, nil
}

func (f *recordingEmbeddingService) embeddedVideos() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]string, len(f.videoIDs))
	copy(out, f.videoIDs)
	return out
}
