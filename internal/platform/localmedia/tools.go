package localmedia

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	"github.com/yungbote/tubebase-backend/internal/platform/logger"
)

// Tools wraps the external media binaries the transcription pipeline shells
// out to. Only yt-dlp is required; it must be on PATH (or pointed at via
// YTDLP_PATH).
type Tools struct {
	log       *logger.Logger
	ytdlpPath string
}

func NewTools(log *logger.Logger) *Tools {
	ytdlp := strings.TrimSpace(os.Getenv("YTDLP_PATH"))
	if ytdlp == "" {
		ytdlp = "yt-dlp"
	}
	return &Tools{
		log:       log.With("service", "LocalMediaTools"),
		ytdlpPath: ytdlp,
	}
}

// AcquireAudio downloads the audio track of sourceURL into outDir as mp3 and
// returns the path of the downloaded file. outDir must already exist.
func (t *Tools) AcquireAudio(ctx context.Context, sourceURL string, outDir string) (string, error) {
	if strings.TrimSpace(sourceURL) == "" {
		return "", fmt.Errorf("empty source url")
	}

	outTemplate := filepath.Join(outDir, "%(id)s.%(ext)s")
	args := []string{
		"-x",
		"--audio-format", "mp3",
		"--no-playlist",
		"-o", outTemplate,
		sourceURL,
	}

	started := time.Now()
	cmd := exec.CommandContext(ctx, t.ytdlpPath, args...)
	out, err := cmd.CombinedOutput()
	if err != nil {
		return "", fmt.Errorf("yt-dlp failed: %w: %s", err, truncateOutput(out))
	}

	audioPath, err := newestFileWithExt(outDir, ".mp3")
	if err != nil {
		return "", fmt.Errorf("yt-dlp produced no mp3 in %s: %w", outDir, err)
	}

	t.log.Info("Audio downloaded",
		"source_url", sourceURL,
		"audio_path", audioPath,
		"elapsed", time.Since(started).String(),
	)
	return audioPath, nil
}

func newestFileWithExt(dir string, ext string) (string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return "", err
	}

	var (
		newest    string
		newestMod time.Time
	)
	for _, entry := range entries {
		if entry.IsDir() || !strings.EqualFold(filepath.Ext(entry.Name()), ext) {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			continue
		}
		if newest == "" || info.ModTime().After(newestMod) {
			newest = filepath.Join(dir, entry.Name())
			newestMod = info.ModTime()
		}
	}
	if newest == "" {
		return "", fmt.Errorf("no %s file found", ext)
	}
	return newest, nil
}

func truncateOutput(out []byte) string {
	s := strings.TrimSpace(string(out))
	const limit = 2000
	if len(s) > limit {
		return s[len(s)-limit:]
	}
	return s
}
