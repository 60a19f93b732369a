package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/yungbote/tubebase-backend/internal/data/repos"
	"github.com/yungbote/tubebase-backend/internal/domain"
	"github.com/yungbote/tubebase-backend/internal/platform/apierr"
	"github.com/yungbote/tubebase-backend/internal/platform/gemini"
	"github.com/yungbote/tubebase-backend/internal/platform/logger"
)

const (
	SummaryTypeNarrative  = "narrative"
	SummaryTypeStructured = "structured"
)

const structuredSummaryPrompt = "You are a technical documentation generator. " +
	"Analyze the transcript and extract structured FAQ-style technical information.\n" +
	"Return the response in this format:\n\n" +
	"## Project Overview\n- Name:\n- Purpose:\n- Target Users:\n\n" +
	"## Tech Stack\n- Operating System:\n- Programming Languages:\n- Backend Framework:\n" +
	"- Frontend Framework:\n- UI Library:\n- Database:\n- APIs Used:\n- AI Models Used:\n" +
	"- Cloud Provider:\n- Deployment Platform:\n\n" +
	"## Architecture\n- Pattern Used:\n- Infrastructure:\n- Authentication:\n- Data Storage Strategy:\n\n" +
	"## DevOps\n- CI/CD:\n- Containerization:\n- Environment Variables Mentioned:\n\n" +
	"## Features\n- Core Features:\n- Integrations:\n- Security Features:\n\n" +
	"## Monetization\n- Pricing Model:\n- Subscription / Credits / Pay-per-use:\n\n" +
	"## Known Issues / Limitations\n\n" +
	"If a category is not mentioned, state \"Not specified.\"\n" +
	"Do not summarize the transcript narratively. Only extract structured facts.\n\n"

const narrativeSummaryPrompt = "Summarize the following YouTube video transcript in 2-4 concise paragraphs. " +
	"Include the key topics, main arguments, and any notable conclusions.\n\n"

type SummaryService interface {
	// GenerateSummary produces and stores a summary for a video's
	// transcript. summaryType is "structured" (default) or "narrative".
	GenerateSummary(ctx context.Context, videoID, summaryType string) (string, error)
}

type summaryService struct {
	videoRepo      repos.VideoRepo
	transcriptRepo repos.TranscriptRepo
	settingRepo    repos.SettingRepo
	generator      gemini.Client
	log            *logger.Logger
}

func NewSummaryService(
	videoRepo repos.VideoRepo,
	transcriptRepo repos.TranscriptRepo,
	settingRepo repos.SettingRepo,
	generator gemini.Client,
	baseLog *logger.Logger,
) SummaryService {
	return &summaryService{
		videoRepo:      videoRepo,
		transcriptRepo: transcriptRepo,
		settingRepo:    settingRepo,
		generator:      generator,
		log:            baseLog.With("service", "SummaryService"),
	}
}

func (s *summaryService) GenerateSummary(ctx context.Context, videoID, summaryType string) (string, error) {
	transcript, err := s.transcriptRepo.GetByVideoID(ctx, nil, videoID)
	if err != nil {
		return "", err
	}
	if transcript == nil {
		return "", apierr.NotFound(fmt.Errorf("transcript not found for %s", videoID))
	}
	if strings.TrimSpace(transcript.Content) == "" {
		return "", apierr.NotFound(fmt.Errorf("transcript for %s has no content", videoID))
	}

	videoTitle := "Unknown"
	if video, err := s.videoRepo.GetByVideoID(ctx, nil, videoID); err == nil && video != nil {
		videoTitle = video.VideoTitle
	}

	var prompt string
	if summaryType == SummaryTypeNarrative {
		prompt = narrativeSummaryPrompt
	} else {
		prompt = structuredSummaryPrompt
	}
	prompt += fmt.Sprintf("Video Title: %s\n\nTranscript:\n%s", videoTitle, transcript.Content)

	generator := s.modelForSettings(ctx)
	text, err := generator.GenerateText(ctx, "", prompt)
	if err != nil {
		return "", apierr.ExternalService(fmt.Errorf("generate summary for %s: %w", videoID, err))
	}
	if strings.TrimSpace(text) == "" {
		return "", apierr.EmptyResult(fmt.Errorf("summary generation returned empty text for %s", videoID))
	}

	if err := s.transcriptRepo.UpdateSummary(ctx, nil, videoID, text); err != nil {
		return "", fmt.Errorf("store summary for %s: %w", videoID, err)
	}

	s.log.Info("Summary generated", "video_id", videoID, "type", summaryType, "length", len(text))
	return text, nil
}

// modelForSettings applies the persisted gemini_model override when set.
func (s *summaryService) modelForSettings(ctx context.Context) gemini.Client {
	model, err := s.settingRepo.Get(ctx, nil, domain.SettingGeminiModel)
	if err != nil {
		s.log.Warn("Failed to read model setting", "error", err)
		return s.generator
	}
	return gemini.WithModel(s.generator, model)
}
