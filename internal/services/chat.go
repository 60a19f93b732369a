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

// How many chunks feed the chat context window.
const chatRetrievalK = 8

const chatSystemPrompt = "You are a helpful assistant that answers questions based on a knowledge base " +
	"of YouTube video transcripts. Use the following transcript context to answer " +
	"the user's question. If the context doesn't contain relevant information, say so " +
	"honestly. Always mention which video(s) your answer is based on when applicable.\n\n" +
	"Knowledge Base Context:\n"

type ChatTurn struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type ChatService interface {
	// StreamAnswer retrieves knowledge-base context for the message and
	// streams the model's answer through onDelta. Returns the full text.
	StreamAnswer(ctx context.Context, message string, history []ChatTurn, onDelta func(delta string)) (string, error)
}

type chatService struct {
	transcriptRepo repos.TranscriptRepo
	settingRepo    repos.SettingRepo
	search         SearchService
	generator      gemini.Client
	log            *logger.Logger
}

func NewChatService(
	transcriptRepo repos.TranscriptRepo,
	settingRepo repos.SettingRepo,
	search SearchService,
	generator gemini.Client,
	baseLog *logger.Logger,
) ChatService {
	return &chatService{
		transcriptRepo: transcriptRepo,
		settingRepo:    settingRepo,
		search:         search,
		generator:      generator,
		log:            baseLog.With("service", "ChatService"),
	}
}

func (s *chatService) StreamAnswer(ctx context.Context, message string, history []ChatTurn, onDelta func(delta string)) (string, error) {
	if strings.TrimSpace(message) == "" {
		return "", apierr.New(400, "bad_request", fmt.Errorf("empty chat message"))
	}

	kbContext := s.buildContext(ctx, message)

	turns := make([]gemini.Turn, 0, len(history))
	for _, h := range history {
		role := "user"
		if h.Role != "user" {
			role = "model"
		}
		turns = append(turns, gemini.Turn{Role: role, Text: h.Content})
	}

	generator := s.modelForSettings(ctx)
	text, err := generator.StreamText(ctx, chatSystemPrompt+kbContext, turns, message, onDelta)
	if err != nil {
		return text, apierr.ExternalService(fmt.Errorf("chat generation: %w", err))
	}
	return text, nil
}

// buildContext tries vector retrieval first and falls back to stored
// summaries; retrieval failures degrade the context, never the chat.
func (s *chatService) buildContext(ctx context.Context, message string) string {
	results, err := s.search.SearchSimilar(ctx, message, chatRetrievalK)
	if err != nil {
		s.log.Warn("Chat retrieval failed, falling back to summaries", "error", err)
	}
	if len(results) > 0 {
		parts := make([]string, 0, len(results))
		for _, r := range results {
			title := r.VideoTitle
			if title == "" {
				title = "Unknown"
			}
			parts = append(parts, fmt.Sprintf("=== Video: %s ===\n%s", title, r.Content))
		}
		return strings.Join(parts, "\n\n")
	}

	summaries, err := s.transcriptRepo.GetAllSummaries(ctx, nil)
	if err != nil {
		s.log.Warn("Chat summary fallback failed", "error", err)
	}
	if len(summaries) > 0 {
		parts := make([]string, 0, len(summaries))
		for _, row := range summaries {
			parts = append(parts, fmt.Sprintf("Video: %s (by %s)\nSummary: %s",
				row.VideoTitle, row.ChannelName, row.Summary))
		}
		return strings.Join(parts, "\n\n")
	}

	return "No transcripts are available in the knowledge base yet."
}

func (s *chatService) modelForSettings(ctx context.Context) gemini.Client {
	model, err := s.settingRepo.Get(ctx, nil, domain.SettingGeminiModel)
	if err != nil {
		s.log.Warn("Failed to read model setting", "error", err)
		return s.generator
	}
	return gemini.WithModel(s.generator, model)
}
