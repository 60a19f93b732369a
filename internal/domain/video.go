package domain

import (
	"time"
)

// Video is the root entity. VideoID is the external identifier from the
// source platform; every derived row hangs off it and is deleted with it.
type Video struct {
	ID              uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	VideoID         string    `gorm:"column:video_id;uniqueIndex;not null" json:"video_id"`
	VideoTitle      string    `gorm:"column:video_title;not null" json:"video_title"`
	VideoURL        string    `gorm:"column:video_url" json:"video_url"`
	ChannelID       string    `gorm:"column:channel_id;index" json:"channel_id"`
	ChannelIDSource string    `gorm:"column:channel_id_source" json:"channel_id_source"`
	ChannelName     string    `gorm:"column:channel_name" json:"channel_name"`
	ChannelURL      string    `gorm:"column:channel_url" json:"channel_url"`
	ScrapedAt       string    `gorm:"column:scraped_at;index" json:"scraped_at"`
	CreatedAt       time.Time `gorm:"not null" json:"created_at"`
}

func (Video) TableName() string { return "videos" }

// VideoListItem is a Video joined with its derived-state flags for listings.
type VideoListItem struct {
	Video
	HasTranscript       bool   `json:"has_transcript"`
	HasSummary          bool   `json:"has_summary"`
	TranscriptJobStatus string `json:"transcript_job_status,omitempty"`
}
