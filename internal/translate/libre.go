package translate

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"strings"
	"time"
)

const (
	// maxChunkLen keeps individual requests under the size LibreTranslate
	// handles reliably.
	maxChunkLen   = 500
	retryAttempts = 3
)

// Client talks to a LibreTranslate server.
type Client struct {
	endpoint string
	http     *http.Client
}

// New creates a client for the given /translate endpoint.
func New(endpoint string) *Client {
	return &Client{
		endpoint: endpoint,
		http:     &http.Client{Timeout: 15 * time.Second},
	}
}

// Translate returns text in the target language. Long text is split at
// word boundaries and translated chunk by chunk; transient failures are
// retried with backoff.
func (c *Client) Translate(ctx context.Context, text, sourceLang, targetLang string) (string, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return "", fmt.Errorf("empty text")
	}
	if sourceLang == "" {
		sourceLang = "auto"
	}

	var parts []string
	for _, chunk := range splitChunks(text, maxChunkLen) {
		translated, err := c.translateChunk(ctx, chunk, sourceLang, targetLang)
		if err != nil {
			return "", err
		}
		parts = append(parts, translated)
	}
	return strings.Join(parts, " "), nil
}

func (c *Client) translateChunk(ctx context.Context, chunk, sourceLang, targetLang string) (string, error) {
	body, err := json.Marshal(map[string]string{
		"q":      chunk,
		"source": sourceLang,
		"target": targetLang,
	})
	if err != nil {
		return "", err
	}

	var lastErr error
	for attempt := 1; attempt <= retryAttempts; attempt++ {
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
		if err != nil {
			return "", err
		}
		req.Header.Set("Content-Type", "application/json")

		resp, err := c.http.Do(req)
		if err != nil {
			lastErr = err
		} else {
			translated, err := decodeResponse(resp)
			if err == nil {
				return translated, nil
			}
			lastErr = err
		}

		log.Printf("Translation attempt %d/%d failed: %v", attempt, retryAttempts, lastErr)
		if attempt < retryAttempts {
			select {
			case <-time.After(time.Duration(attempt*attempt) * time.Second):
			case <-ctx.Done():
				return "", ctx.Err()
			}
		}
	}
	return "", fmt.Errorf("translation failed after %d attempts: %v", retryAttempts, lastErr)
}

func decodeResponse(resp *http.Response) (string, error) {
	defer resp.Body.Close()
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", err
	}
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("server returned %d: %s", resp.StatusCode, strings.TrimSpace(string(data)))
	}

	var parsed struct {
		TranslatedText string `json:"translatedText"`
	}
	if err := json.Unmarshal(data, &parsed); err != nil {
		return "", fmt.Errorf("unexpected response: %s", strings.TrimSpace(string(data)))
	}
	if parsed.TranslatedText == "" {
		return "", fmt.Errorf("response missing translatedText: %s", strings.TrimSpace(string(data)))
	}
	return parsed.TranslatedText, nil
}

// splitChunks breaks text into pieces no longer than limit, splitting at
// word boundaries when possible.
func splitChunks(text string, limit int) []string {
	if len(text) <= limit {
		return []string{text}
	}

	var chunks []string
	var current strings.Builder
	for _, word := range strings.Fields(text) {
		if current.Len() > 0 && current.Len()+1+len(word) > limit {
			chunks = append(chunks, current.String())
			current.Reset()
		}
		if current.Len() > 0 {
			current.WriteByte(' ')
		}
		// A single word over the limit gets hard-split.
		for len(word) > limit {
			chunks = append(chunks, word[:limit])
			word = word[limit:]
		}
		current.WriteString(word)
	}
	if current.Len() > 0 {
		chunks = append(chunks, current.String())
	}
	return chunks
}
