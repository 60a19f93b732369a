package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/yungbote/tubebase-backend/internal/platform/apierr"
	"github.com/yungbote/tubebase-backend/internal/platform/assemblyai"
	"github.com/yungbote/tubebase-backend/internal/platform/gemini"
	"github.com/yungbote/tubebase-backend/internal/platform/logger"
)

const (
	ProviderAssemblyAI = "assemblyai"
	ProviderGemini     = "gemini"
)

// TranscriptionProvider turns a local audio file into transcript text. The
// provider set is closed; selection happens by name at submission time.
type TranscriptionProvider interface {
	Transcribe(ctx context.Context, audioPath string) (string, error)
}

// ProviderFactory resolves a provider name into a ready client, failing with
// a configuration error when the name is unknown or its credential is absent.
type ProviderFactory func(name string) (TranscriptionProvider, error)

func NewProviderFactory(baseLog *logger.Logger) ProviderFactory {
	return func(name string) (TranscriptionProvider, error) {
		switch name {
		case ProviderAssemblyAI:
			client, err := assemblyai.NewClient(baseLog)
			if err != nil {
				return nil, apierr.Configuration(fmt.Errorf("assemblyai provider unavailable: %w", err))
			}
			return &assemblyaiProvider{client: client}, nil
		case ProviderGemini:
			client, err := gemini.NewClient(baseLog)
			if err != nil {
				return nil, apierr.Configuration(fmt.Errorf("gemini provider unavailable: %w", err))
			}
			return &geminiProvider{client: client}, nil
		default:
			return nil, apierr.Configuration(fmt.Errorf("unknown transcription provider %q", name))
		}
	}
}

type assemblyaiProvider struct {
	client assemblyai.Client
}

// Transcribe renders the sentence timeline as one timestamped line per
// sentence, [M:SS] under an hour and [H:MM:SS] above.
func (p *assemblyaiProvider) Transcribe(ctx context.Context, audioPath string) (string, error) {
	sentences, err := p.client.Transcribe(ctx, audioPath)
	if err != nil {
		return "", err
	}

	lines := make([]string, 0, len(sentences))
	for _, s := range sentences {
		text := strings.TrimSpace(s.Text)
		if text == "" {
			continue
		}
		lines = append(lines, formatOffset(s.StartMS)+" "+text)
	}
	return strings.Join(lines, "\n"), nil
}

func formatOffset(ms int) string {
	if ms < 0 {
		ms = 0
	}
	total := ms / 1000
	hours := total / 3600
	minutes := (total % 3600) / 60
	seconds := total % 60
	if hours > 0 {
		return fmt.Sprintf("[%d:%02d:%02d]", hours, minutes, seconds)
	}
	return fmt.Sprintf("[%d:%02d]", minutes, seconds)
}

const transcribeInstruction = "Transcribe this audio recording. " +
	"Return only the verbatim transcript text, with no commentary, " +
	"headers, or speaker labels."

type geminiProvider struct {
	client gemini.Client
}

func (p *geminiProvider) Transcribe(ctx context.Context, audioPath string) (string, error) {
	return p.client.GenerateTextWithAudio(ctx, transcribeInstruction, audioPath)
}
