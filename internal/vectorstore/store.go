package vectorstore

import (
	"context"
	"encoding/binary"
	"fmt"
	"math"
	"sort"

	"gorm.io/gorm"

	"github.com/yungbote/tubebase-backend/internal/domain"
	"github.com/yungbote/tubebase-backend/internal/platform/logger"
)

// Dim is the embedding width every stored vector must have.
const Dim = 768

type Vector struct {
	ChunkID uint
	Values  []float32
}

// Match pairs a chunk with its distance to the query vector. Lower is closer.
type Match struct {
	ChunkID  uint
	VideoID  string
	Distance float64
}

// Store is the vector index adapter. Vectors live in the chunk_embeddings
// table 1:1 with transcript chunks; queries are exact brute-force scans in
// Euclidean distance, which is plenty at bookmark-collection scale.
type Store interface {
	UpsertBatch(ctx context.Context, tx *gorm.DB, vectors []Vector) error
	QueryNearest(ctx context.Context, q []float32, k int) ([]Match, error)
	Count(ctx context.Context) (int64, error)
	// VideoMeans returns the component-wise mean of each video's chunk
	// vectors, keyed by video id.
	VideoMeans(ctx context.Context) (map[string][]float32, error)
	DeleteByVideoID(ctx context.Context, tx *gorm.DB, videoID string) error
	DeleteAll(ctx context.Context, tx *gorm.DB) error
}

type store struct {
	db  *gorm.DB
	log *logger.Logger
}

func New(db *gorm.DB, baseLog *logger.Logger) Store {
	return &store{db: db, log: baseLog.With("service", "VectorStore")}
}

func (s *store) UpsertBatch(ctx context.Context, tx *gorm.DB, vectors []Vector) error {
	transaction := tx
	if transaction == nil {
		transaction = s.db
	}
	if len(vectors) == 0 {
		return nil
	}
	rows := make([]*domain.ChunkEmbedding, 0, len(vectors))
	for _, v := range vectors {
		if len(v.Values) != Dim {
			return fmt.Errorf("vector for chunk %d has dim %d, want %d", v.ChunkID, len(v.Values), Dim)
		}
		rows = append(rows, &domain.ChunkEmbedding{
			ChunkID:   v.ChunkID,
			Embedding: EncodeVector(v.Values),
		})
	}
	return transaction.WithContext(ctx).CreateInBatches(rows, 200).Error
}

type embeddingRow struct {
	ChunkID   uint   `gorm:"column:chunk_id"`
	VideoID   string `gorm:"column:video_id"`
	Embedding []byte `gorm:"column:embedding"`
}

func (s *store) QueryNearest(ctx context.Context, q []float32, k int) ([]Match, error) {
	if len(q) != Dim {
		return nil, fmt.Errorf("query vector has dim %d, want %d", len(q), Dim)
	}
	if k <= 0 {
		return nil, nil
	}

	var rows []embeddingRow
	if err := s.db.WithContext(ctx).
		Table("chunk_embeddings ce").
		Select("ce.chunk_id, tc.video_id, ce.embedding").
		Joins("JOIN transcript_chunks tc ON tc.id = ce.chunk_id").
		Find(&rows).Error; err != nil {
		return nil, err
	}

	matches := make([]Match, 0, len(rows))
	for _, row := range rows {
		vec, err := DecodeVector(row.Embedding)
		if err != nil {
			s.log.Warn("Skipping undecodable embedding", "chunk_id", row.ChunkID, "error", err)
			continue
		}
		matches = append(matches, Match{
			ChunkID:  row.ChunkID,
			VideoID:  row.VideoID,
			Distance: euclideanDistance(q, vec),
		})
	}

	sort.Slice(matches, func(i, j int) bool { return matches[i].Distance < matches[j].Distance })
	if len(matches) > k {
		matches = matches[:k]
	}
	return matches, nil
}

func (s *store) Count(ctx context.Context) (int64, error) {
	var count int64
	if err := s.db.WithContext(ctx).Model(&domain.ChunkEmbedding{}).Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

func (s *store) VideoMeans(ctx context.Context) (map[string][]float32, error) {
	var rows []embeddingRow
	if err := s.db.WithContext(ctx).
		Table("chunk_embeddings ce").
		Select("ce.chunk_id, tc.video_id, ce.embedding").
		Joins("JOIN transcript_chunks tc ON tc.id = ce.chunk_id").
		Find(&rows).Error; err != nil {
		return nil, err
	}

	sums := map[string][]float64{}
	counts := map[string]int{}
	for _, row := range rows {
		vec, err := DecodeVector(row.Embedding)
		if err != nil {
			s.log.Warn("Skipping undecodable embedding", "chunk_id", row.ChunkID, "error", err)
			continue
		}
		acc, ok := sums[row.VideoID]
		if !ok {
			acc = make([]float64, Dim)
			sums[row.VideoID] = acc
		}
		for i, x := range vec {
			acc[i] += float64(x)
		}
		counts[row.VideoID]++
	}

	means := make(map[string][]float32, len(sums))
	for vid, acc := range sums {
		n := float64(counts[vid])
		mean := make([]float32, Dim)
		for i := range acc {
			mean[i] = float32(acc[i] / n)
		}
		means[vid] = mean
	}
	return means, nil
}

func (s *store) DeleteByVideoID(ctx context.Context, tx *gorm.DB, videoID string) error {
	transaction := tx
	if transaction == nil {
		transaction = s.db
	}
	return transaction.WithContext(ctx).
		Where("chunk_id IN (?)",
			transaction.Model(&domain.TranscriptChunk{}).Select("id").Where("video_id = ?", videoID)).
		Delete(&domain.ChunkEmbedding{}).Error
}

func (s *store) DeleteAll(ctx context.Context, tx *gorm.DB) error {
	transaction := tx
	if transaction == nil {
		transaction = s.db
	}
	return transaction.WithContext(ctx).
		Where("1 = 1").
		Delete(&domain.ChunkEmbedding{}).Error
}

// EncodeVector serializes a float32 slice as little-endian bytes, the same
// layout sqlite-vec and friends use.
func EncodeVector(values []float32) []byte {
	out := make([]byte, 4*len(values))
	for i, v := range values {
		binary.LittleEndian.PutUint32(out[i*4:], math.Float32bits(v))
	}
	return out
}

func DecodeVector(blob []byte) ([]float32, error) {
	if len(blob)%4 != 0 {
		return nil, fmt.Errorf("embedding blob length %d not a multiple of 4", len(blob))
	}
	out := make([]float32, len(blob)/4)
	for i := range out {
		out[i] = math.Float32frombits(binary.LittleEndian.Uint32(blob[i*4:]))
	}
	return out, nil
}

func euclideanDistance(a, b []float32) float64 {
	var sum float64
	for i := range a {
		d := float64(a[i]) - float64(b[i])
		sum += d * d
	}
	return math.Sqrt(sum)
}
