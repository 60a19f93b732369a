package services

import (
	"context"
	"fmt"
	"testing"

	"github.com/yungbote/tubebase-backend/internal/platform/assemblyai"
)

type fakeAssemblyAI struct {
	sentences []assemblyai.Sentence
	err       error
}

func (f *fakeAssemblyAI) Transcribe(_ context.Context, _ string) ([]assemblyai.Sentence, error) {
	return f.sentences, f.err
}

func TestFormatOffset(t *testing.T) {
	tests := []struct {
		ms   int
		want string
	}{
		{0, "[0:00]"},
		{-500, "[0:00]"},
		{1000, "[0:01]"},
		{59999, "[0:59]"},
		{60000, "[1:00]"},
		{754000, "[12:34]"},
		{3599000, "[59:59]"},
		{3600000, "[1:00:00]"},
		{4210000, "[1:10:10]"},
		{45296000, "[12:34:56]"},
	}
	for _, tt := range tests {
		if got := formatOffset(tt.ms); got != tt.want {
			t.Fatalf("formatOffset(%d) = %q, want %q", tt.ms, got, tt.want)
		}
	}
}

func TestAssemblyAIProviderRendersTimeline(t *testing.T) {
	p := &assemblyaiProvider{client: &fakeAssemblyAI{sentences: []assemblyai.Sentence{
		{Text: "Welcome to the show.", StartMS: 0},
		{Text: "   ", StartMS: 4000},
		{Text: "Today we cover indexing.", StartMS: 65000},
		{Text: "And wrap up.", StartMS: 3723000},
	}}}

	got, err := p.Transcribe(context.Background(), "/tmp/audio.mp3")
	if err != nil {
		t.Fatalf("transcribe: %v", err)
	}
	want := "[0:00] Welcome to the show.\n" +
		"[1:05] Today we cover indexing.\n" +
		"[1:02:03] And wrap up."
	if got != want {
		t.Fatalf("rendered transcript:\n%q\nwant:\n%q", got, want)
	}
}

func TestAssemblyAIProviderPropagatesError(t *testing.T) {
	p := &assemblyaiProvider{client: &fakeAssemblyAI{err: fmt.Errorf("upstream down")}}
	if _, err := p.Transcribe(context.Background(), "/tmp/audio.mp3"); err == nil {
		t.Fatalf("expected error")
	}
}

func TestGeminiProviderUsesAudioGeneration(t *testing.T) {
	client := &fakeGeminiClient{generated: "verbatim transcript"}
	p := &geminiProvider{client: client}

	got, err := p.Transcribe(context.Background(), "/tmp/audio.mp3")
	if err != nil {
		t.Fatalf("transcribe: %v", err)
	}
	if got != "verbatim transcript" {
		t.Fatalf("got %q", got)
	}
}
