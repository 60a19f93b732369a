package domain

import (
	"time"
)

// Transcript holds the full text for one video. At most one row per video;
// only the summary is ever updated after creation.
type Transcript struct {
	ID        uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	VideoID   string    `gorm:"column:video_id;uniqueIndex;not null" json:"video_id"`
	Content   string    `gorm:"column:content" json:"content"`
	Summary   string    `gorm:"column:summary" json:"summary,omitempty"`
	IndexedAt time.Time `gorm:"column:indexed_at;not null" json:"indexed_at"`
}

func (Transcript) TableName() string { return "transcripts" }

// TranscriptChunk is one embedded segment of a transcript. ChunkIndex is
// zero-based and contiguous within a video. Chunks exist only once the video
// has been embedded; each chunk is paired 1:1 with a ChunkEmbedding row in
// the same transaction.
type TranscriptChunk struct {
	ID         uint   `gorm:"primaryKey;autoIncrement" json:"id"`
	VideoID    string `gorm:"column:video_id;index;not null" json:"video_id"`
	ChunkIndex int    `gorm:"column:chunk_index;not null" json:"chunk_index"`
	Content    string `gorm:"column:content;not null" json:"content"`
}

func (TranscriptChunk) TableName() string { return "transcript_chunks" }

// ChunkEmbedding stores the 768-dim float32 vector for one chunk as a
// little-endian blob. Never mutated.
type ChunkEmbedding struct {
	ChunkID   uint   `gorm:"column:chunk_id;primaryKey" json:"chunk_id"`
	Embedding []byte `gorm:"column:embedding;not null" json:"-"`
}

func (ChunkEmbedding) TableName() string { return "chunk_embeddings" }
