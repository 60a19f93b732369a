package services

import (
	"context"
	"fmt"
	"hash/fnv"
	"math"
	"sort"
	"strings"

	"gorm.io/gorm"

	"github.com/yungbote/tubebase-backend/internal/data/repos"
	"github.com/yungbote/tubebase-backend/internal/domain"
	"github.com/yungbote/tubebase-backend/internal/platform/apierr"
	"github.com/yungbote/tubebase-backend/internal/platform/logger"
	"github.com/yungbote/tubebase-backend/internal/vectorstore"
)

// TextGenerator is the external language-generation call used for cluster
// labels and summaries.
type TextGenerator interface {
	GenerateText(ctx context.Context, system string, user string) (string, error)
}

type ClusterSummary struct {
	ClusterID  int    `json:"cluster_id"`
	Label      string `json:"label"`
	VideoCount int    `json:"video_count"`
}

type ClusterBuildResult struct {
	Clusters      []*ClusterSummary `json:"clusters"`
	TotalVideos   int               `json:"total_videos"`
	TotalClusters int               `json:"total_clusters"`
}

// ClusterView is one persisted cluster with its member videos, for reads.
type ClusterView struct {
	ClusterID  int             `json:"cluster_id"`
	Label      string          `json:"label"`
	VideoCount int             `json:"video_count"`
	Videos     []*domain.Video `json:"videos"`
}

type ClusteringService interface {
	// BuildClusters recomputes topic clusters over per-video mean vectors.
	// k <= 0 picks a default from the video count. The previous cluster
	// state is replaced atomically.
	BuildClusters(ctx context.Context, k int) (*ClusterBuildResult, error)
	GetClusters(ctx context.Context) ([]*ClusterView, error)
}

type clusteringService struct {
	db             *gorm.DB
	videoRepo      repos.VideoRepo
	transcriptRepo repos.TranscriptRepo
	clusterRepo    repos.ClusterRepo
	vectors        vectorstore.Store
	generator      TextGenerator
	log            *logger.Logger
}

func NewClusteringService(
	db *gorm.DB,
	videoRepo repos.VideoRepo,
	transcriptRepo repos.TranscriptRepo,
	clusterRepo repos.ClusterRepo,
	vectors vectorstore.Store,
	generator TextGenerator,
	baseLog *logger.Logger,
) ClusteringService {
	return &clusteringService{
		db:             db,
		videoRepo:      videoRepo,
		transcriptRepo: transcriptRepo,
		clusterRepo:    clusterRepo,
		vectors:        vectors,
		generator:      generator,
		log:            baseLog.With("service", "ClusteringService"),
	}
}

func (s *clusteringService) BuildClusters(ctx context.Context, k int) (*ClusterBuildResult, error) {
	means, err := s.vectors.VideoMeans(ctx)
	if err != nil {
		return nil, err
	}
	if len(means) < 2 {
		return nil, apierr.InsufficientData(fmt.Errorf(
			"need at least 2 embedded videos to cluster, have %d", len(means)))
	}

	// Fixed iteration order so the seeded k-means is reproducible.
	videoIDs := make([]string, 0, len(means))
	for vid := range means {
		videoIDs = append(videoIDs, vid)
	}
	sort.Strings(videoIDs)

	points := make([][]float32, len(videoIDs))
	for i, vid := range videoIDs {
		points[i] = means[vid]
	}

	if k <= 0 {
		k = chooseK(len(videoIDs))
	}
	if k > len(videoIDs) {
		k = len(videoIDs)
	}

	assignment := kmeansPartition(points, k)

	members := map[int][]string{}
	for i, clusterID := range assignment {
		members[clusterID] = append(members[clusterID], videoIDs[i])
	}
	clusterIDs := make([]int, 0, len(members))
	for id := range members {
		clusterIDs = append(clusterIDs, id)
	}
	sort.Ints(clusterIDs)

	// One summary read for the whole run; every cluster label shares it.
	summaryByVideo := s.loadSummaries(ctx)

	labels := make([]*domain.ClusterLabel, 0, len(clusterIDs))
	assignments := make([]*domain.VideoClusterAssignment, 0, len(videoIDs))
	summaries := make([]*ClusterSummary, 0, len(clusterIDs))
	for _, clusterID := range clusterIDs {
		vids := members[clusterID]
		label := s.labelCluster(ctx, vids, summaryByVideo)

		labels = append(labels, &domain.ClusterLabel{
			ClusterID:  clusterID,
			Label:      label,
			VideoCount: len(vids),
		})
		for _, vid := range vids {
			assignments = append(assignments, &domain.VideoClusterAssignment{
				VideoID:   vid,
				ClusterID: clusterID,
			})
		}
		summaries = append(summaries, &ClusterSummary{
			ClusterID:  clusterID,
			Label:      label,
			VideoCount: len(vids),
		})
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return s.clusterRepo.ReplaceAll(ctx, tx, labels, assignments)
	})
	if err != nil {
		return nil, fmt.Errorf("persist clusters: %w", err)
	}

	s.log.Info("Built clusters", "clusters", len(labels), "videos", len(videoIDs))
	return &ClusterBuildResult{
		Clusters:      summaries,
		TotalVideos:   len(videoIDs),
		TotalClusters: len(labels),
	}, nil
}

func chooseK(videoCount int) int {
	k := int(math.Round(math.Sqrt(float64(videoCount))))
	if k < 3 {
		k = 3
	}
	if k > 15 {
		k = 15
	}
	return k
}

// loadSummaries maps video id to stored summary. A read failure degrades the
// labels, never the build.
func (s *clusteringService) loadSummaries(ctx context.Context) map[string]string {
	rows, err := s.transcriptRepo.GetAllSummaries(ctx, nil)
	if err != nil {
		s.log.Warn("Failed to load summaries for cluster labels", "error", err)
		return nil
	}
	byVideo := make(map[string]string, len(rows))
	for _, row := range rows {
		byVideo[row.VideoID] = row.Summary
	}
	return byVideo
}

// labelCluster asks the language model for a short topic label. Any failure
// degrades to a deterministic placeholder derived from the member set.
func (s *clusteringService) labelCluster(ctx context.Context, videoIDs []string, summaryByVideo map[string]string) string {
	label, err := s.generateLabel(ctx, videoIDs, summaryByVideo)
	if err != nil {
		s.log.Warn("Cluster labeling failed, using placeholder", "error", err)
		return fallbackLabel(videoIDs)
	}
	return label
}

func (s *clusteringService) generateLabel(ctx context.Context, videoIDs []string, summaryByVideo map[string]string) (string, error) {
	videos, err := s.videoRepo.GetByVideoIDs(ctx, nil, videoIDs)
	if err != nil {
		return "", err
	}

	descriptions := make([]string, 0, len(videos))
	for _, v := range videos {
		line := v.VideoTitle
		if line == "" {
			line = "Untitled"
		}
		if v.ChannelName != "" {
			line += fmt.Sprintf(" (by %s)", v.ChannelName)
		}
		if summary := summaryByVideo[v.VideoID]; summary != "" {
			if len(summary) > 300 {
				summary = summary[:300]
			}
			line += "\nSummary: " + summary
		}
		descriptions = append(descriptions, line)
	}

	prompt := "Below is a list of YouTube videos that have been grouped together by topic similarity. " +
		"Generate a short, descriptive topic label (2-5 words) that best describes the common theme. " +
		"Return ONLY the label text, nothing else.\n\n" +
		strings.Join(descriptions, "\n---\n")

	text, err := s.generator.GenerateText(ctx, "", prompt)
	if err != nil {
		return "", err
	}

	label := strings.Trim(strings.TrimSpace(text), `"'`)
	if label == "" {
		return "", fmt.Errorf("empty label from generator")
	}
	if len(label) > 100 {
		label = label[:100]
	}
	return label, nil
}

func fallbackLabel(videoIDs []string) string {
	sorted := make([]string, len(videoIDs))
	copy(sorted, videoIDs)
	sort.Strings(sorted)

	h := fnv.New32a()
	for _, vid := range sorted {
		_, _ = h.Write([]byte(vid))
	}
	return fmt.Sprintf("Topic %d", h.Sum32()%1000)
}

func (s *clusteringService) GetClusters(ctx context.Context) ([]*ClusterView, error) {
	labels, err := s.clusterRepo.GetLabels(ctx, nil)
	if err != nil {
		return nil, err
	}
	assignments, err := s.clusterRepo.GetAssignments(ctx, nil)
	if err != nil {
		return nil, err
	}

	memberIDs := map[int][]string{}
	allIDs := make([]string, 0, len(assignments))
	for _, a := range assignments {
		memberIDs[a.ClusterID] = append(memberIDs[a.ClusterID], a.VideoID)
		allIDs = append(allIDs, a.VideoID)
	}

	videos, err := s.videoRepo.GetByVideoIDs(ctx, nil, allIDs)
	if err != nil {
		return nil, err
	}
	videosByID := make(map[string]*domain.Video, len(videos))
	for _, v := range videos {
		videosByID[v.VideoID] = v
	}

	views := make([]*ClusterView, 0, len(labels))
	for _, label := range labels {
		view := &ClusterView{
			ClusterID:  label.ClusterID,
			Label:      label.Label,
			VideoCount: label.VideoCount,
			Videos:     []*domain.Video{},
		}
		for _, vid := range memberIDs[label.ClusterID] {
			if v := videosByID[vid]; v != nil {
				view.Videos = append(view.Videos, v)
			}
		}
		views = append(views, view)
	}
	return views, nil
}
