package domain

import (
	"time"
)

// ClusterLabel and VideoClusterAssignment are regenerated wholesale on every
// clustering run; they are never patched incrementally.
type ClusterLabel struct {
	ClusterID  int    `gorm:"column:cluster_id;primaryKey" json:"cluster_id"`
	Label      string `gorm:"column:label;not null" json:"label"`
	VideoCount int    `gorm:"column:video_count;not null" json:"video_count"`
}

func (ClusterLabel) TableName() string { return "cluster_labels" }

type VideoClusterAssignment struct {
	VideoID   string `gorm:"column:video_id;primaryKey" json:"video_id"`
	ClusterID int    `gorm:"column:cluster_id;index;not null" json:"cluster_id"`
}

func (VideoClusterAssignment) TableName() string { return "video_clusters" }

// Setting is a persisted key/value configuration pair (transcription
// provider selection, Gemini model override).
type Setting struct {
	Key       string    `gorm:"column:key;primaryKey" json:"key"`
	Value     string    `gorm:"column:value" json:"value"`
	UpdatedAt time.Time `gorm:"not null" json:"updated_at"`
}

func (Setting) TableName() string { return "settings" }

const (
	SettingTranscriptionProvider = "transcription_provider"
	SettingGeminiModel           = "gemini_model"
)
