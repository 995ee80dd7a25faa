// Package speech turns inbound voice notes into text and outbound
// replies into audio, through any OpenAI-compatible audio API.
package speech

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"time"
)

// Transcriber converts recorded audio into text.
type Transcriber interface {
	Transcribe(ctx context.Context, filename string, audio []byte) (string, error)
}

// Synthesizer converts reply text into spoken audio.
type Synthesizer interface {
	Synthesize(ctx context.Context, text string) ([]byte, error)
}

// Client talks to an OpenAI-compatible /v1/audio API.
type Client struct {
	BaseURL string
	APIKey  string
	Voice   string
	HTTP    *http.Client
}

func NewClient(baseURL, apiKey, voice string) *Client {
	if voice == "" {
		voice = "alloy"
	}
	return &Client{
		BaseURL: baseURL,
		APIKey:  apiKey,
		Voice:   voice,
		HTTP:    &http.Client{Timeout: 60 * time.Second},
	}
}

// Transcribe uploads the audio as multipart form data and returns the
// recognized text.
func (c *Client) Transcribe(ctx context.Context, filename string, audio []byte) (string, error) {
	var body bytes.Buffer
	w := multipart.NewWriter(&body)

	part, err := w.CreateFormFile("file", filename)
	if err != nil {
		return "", fmt.Errorf("build form: %w", err)
	}
	if _, err := part.Write(audio); err != nil {
		return "", fmt.Errorf("build form: %w", err)
	}
	if err := w.WriteField("model", "whisper-1"); err != nil {
		return "", fmt.Errorf("build form: %w", err)
	}
	if err := w.Close(); err != nil {
		return "", fmt.Errorf("build form: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.BaseURL+"/v1/audio/transcriptions", &body)
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", w.FormDataContentType())
	req.Header.Set("Authorization", "Bearer "+c.APIKey)

	resp, err := c.HTTP.Do(req)
	if err != nil {
		return "", fmt.Errorf("transcription request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return "", fmt.Errorf("transcription request: status %d: %s", resp.StatusCode, msg)
	}

	var out struct {
		Text string `json:"text"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", fmt.Errorf("decode transcription: %w", err)
	}
	return out.Text, nil
}

// Synthesize returns MP3 audio for the given text.
func (c *Client) Synthesize(ctx context.Context, text string) ([]byte, error) {
	payload, err := json.Marshal(map[string]string{
		"model":           "tts-1",
		"voice":           c.Voice,
		"input":           text,
		"response_format": "mp3",
	})
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.BaseURL+"/v1/audio/speech", bytes.NewReader(payload))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.APIKey)

	resp, err := c.HTTP.Do(req)
	if err != nil {
		return nil, fmt.Errorf("speech request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return nil, fmt.Errorf("speech request: status %d: %s", resp.StatusCode, msg)
	}
	return io.ReadAll(resp.Body)
}

// Disabled satisfies both interfaces for deployments without a speech
// backend configured.
type Disabled struct{}

func (Disabled) Transcribe(ctx context.Context, filename string, audio []byte) (string, error) {
	return "", fmt.Errorf("speech is not enabled")
}

func (Disabled) Synthesize(ctx context.Context, text string) ([]byte, error) {
	return nil, fmt.Errorf("speech is not enabled")
}
