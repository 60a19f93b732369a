package assemblyai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/yungbote/tubebase-backend/internal/pkg/httpx"
	"github.com/yungbote/tubebase-backend/internal/platform/logger"
)

// Sentence is one transcript sentence with its start offset in milliseconds.
type Sentence struct {
	Text    string `json:"text"`
	StartMS int    `json:"start"`
}

// Client transcribes local audio files through the AssemblyAI REST API:
// upload the file, create a transcript job, poll until it settles, then
// fetch the sentence breakdown.
type Client interface {
	Transcribe(ctx context.Context, audioPath string) ([]Sentence, error)
}

type client struct {
	log          *logger.Logger
	baseURL      string
	apiKey       string
	httpClient   *http.Client
	pollInterval time.Duration
	maxRetries   int
}

func NewClient(log *logger.Logger) (Client, error) {
	if log == nil {
		return nil, fmt.Errorf("logger required")
	}

	apiKey := strings.TrimSpace(os.Getenv("ASSEMBLYAI_API_KEY"))
	if apiKey == "" {
		return nil, fmt.Errorf("missing ASSEMBLYAI_API_KEY")
	}

	baseURL := strings.TrimSpace(os.Getenv("ASSEMBLYAI_BASE_URL"))
	if baseURL == "" {
		baseURL = "https://api.assemblyai.com"
	}
	baseURL = strings.TrimRight(baseURL, "/")

	pollSec := 3
	if v := os.Getenv("ASSEMBLYAI_POLL_SECONDS"); v != "" {
		if parsed, err := strconv.Atoi(strings.TrimSpace(v)); err == nil && parsed > 0 {
			pollSec = parsed
		}
	}

	maxRetries := 4
	if v := os.Getenv("ASSEMBLYAI_MAX_RETRIES"); v != "" {
		if parsed, err := strconv.Atoi(strings.TrimSpace(v)); err == nil && parsed >= 0 {
			maxRetries = parsed
		}
	}

	return &client{
		log:          log.With("service", "AssemblyAIClient"),
		baseURL:      baseURL,
		apiKey:       apiKey,
		httpClient:   &http.Client{Timeout: 120 * time.Second},
		pollInterval: time.Duration(pollSec) * time.Second,
		maxRetries:   maxRetries,
	}, nil
}

type aaiHTTPError struct {
	StatusCode int
	Body       string
}

func (e *aaiHTTPError) Error() string {
	return fmt.Sprintf("assemblyai http %d: %s", e.StatusCode, e.Body)
}

func (e *aaiHTTPError) HTTPStatusCode() int { return e.StatusCode }

func (c *client) doOnce(ctx context.Context, method, path, contentType string, body io.Reader) ([]byte, *http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return nil, nil, err
	}
	req.Header.Set("Authorization", c.apiKey)
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, nil, err
	}
	raw, readErr := io.ReadAll(resp.Body)
	_ = resp.Body.Close()
	if readErr != nil {
		return nil, resp, readErr
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return raw, resp, &aaiHTTPError{StatusCode: resp.StatusCode, Body: string(raw)}
	}
	return raw, resp, nil
}

func (c *client) doJSON(ctx context.Context, method, path string, body any, out any) error {
	backoff := 1 * time.Second

	for attempt := 0; attempt <= c.maxRetries; attempt++ {
		if ctx.Err() != nil {
			return ctx.Err()
		}

		var rdr io.Reader
		if body != nil {
			b, err := json.Marshal(body)
			if err != nil {
				return err
			}
			rdr = bytes.NewReader(b)
		}

		raw, resp, err := c.doOnce(ctx, method, path, "application/json", rdr)
		if err == nil {
			if out == nil {
				return nil
			}
			if uErr := json.Unmarshal(raw, out); uErr != nil {
				return fmt.Errorf("assemblyai decode error: %w; raw=%s", uErr, string(raw))
			}
			return nil
		}

		if !httpx.IsRetryableError(err) || attempt == c.maxRetries {
			return err
		}

		sleepFor := httpx.JitterSleep(httpx.RetryAfterDuration(resp, backoff, 10*time.Second))
		c.log.Warn("AssemblyAI request retrying",
			"path", path,
			"attempt", attempt+1,
			"sleep", sleepFor.String(),
			"error", err.Error(),
		)
		time.Sleep(sleepFor)
		backoff *= 2
	}

	return fmt.Errorf("unreachable retry loop")
}

type uploadResponse struct {
	UploadURL string `json:"upload_url"`
}

func (c *client) upload(ctx context.Context, audioPath string) (string, error) {
	f, err := os.Open(audioPath)
	if err != nil {
		return "", fmt.Errorf("open audio file: %w", err)
	}
	defer f.Close()

	// Uploads stream the raw file body; not worth a retry loop since the
	// reader cannot be rewound mid-flight.
	raw, _, err := c.doOnce(ctx, "POST", "/v2/upload", "application/octet-stream", f)
	if err != nil {
		return "", err
	}

	var resp uploadResponse
	if err := json.Unmarshal(raw, &resp); err != nil {
		return "", fmt.Errorf("assemblyai decode error: %w; raw=%s", err, string(raw))
	}
	if resp.UploadURL == "" {
		return "", fmt.Errorf("assemblyai upload returned no url")
	}
	return resp.UploadURL, nil
}

type transcriptRequest struct {
	AudioURL string `json:"audio_url"`
}

type transcriptResponse struct {
	ID     string `json:"id"`
	Status string `json:"status"`
	Error  string `json:"error"`
}

type sentencesResponse struct {
	Sentences []Sentence `json:"sentences"`
}

func (c *client) Transcribe(ctx context.Context, audioPath string) ([]Sentence, error) {
	uploadURL, err := c.upload(ctx, audioPath)
	if err != nil {
		return nil, err
	}

	var created transcriptResponse
	if err := c.doJSON(ctx, "POST", "/v2/transcript", transcriptRequest{AudioURL: uploadURL}, &created); err != nil {
		return nil, err
	}
	if created.ID == "" {
		return nil, fmt.Errorf("assemblyai transcript create returned no id")
	}

	c.log.Info("AssemblyAI transcript submitted", "transcript_id", created.ID)

	ticker := time.NewTicker(c.pollInterval)
	defer ticker.Stop()

	for {
		var current transcriptResponse
		if err := c.doJSON(ctx, "GET", "/v2/transcript/"+created.ID, nil, &current); err != nil {
			return nil, err
		}

		switch current.Status {
		case "completed":
			var sentences sentencesResponse
			if err := c.doJSON(ctx, "GET", "/v2/transcript/"+created.ID+"/sentences", nil, &sentences); err != nil {
				return nil, err
			}
			return sentences.Sentences, nil
		case "error":
			return nil, fmt.Errorf("assemblyai transcription failed: %s", current.Error)
		}

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-ticker.C:
		}
	}
}
