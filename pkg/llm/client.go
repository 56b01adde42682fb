// Package llm is the second-tier extractor: it submits a document as inline
// binary content to an OpenAI-compatible multimodal endpoint and parses the
// reply into the same payload shape the heuristic parser produces.
package llm

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"regexp"
	"strings"
	"time"

	"github.com/shouniet/medpetrx/pkg/parse"
)

type Config struct {
	APIKey  string        // falls back to env OPENAI_API_KEY
	BaseURL string        // default https://api.openai.com/v1
	Model   string        // e.g. "gpt-4o-mini"
	Timeout time.Duration // per-call HTTP timeout
}

type Client struct {
	cfg        Config
	httpClient *http.Client
}

// ConfigFromEnv reads the OPENAI_* variables, leaving defaults to NewClient.
func ConfigFromEnv() Config {
	return Config{
		APIKey:  os.Getenv("OPENAI_API_KEY"),
		BaseURL: os.Getenv("OPENAI_BASE_URL"),
		Model:   os.Getenv("OPENAI_MODEL"),
	}
}

func NewClient(cfg Config) *Client {
	if cfg.APIKey == "" {
		cfg.APIKey = os.Getenv("OPENAI_API_KEY")
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = "https://api.openai.com/v1"
	}
	if cfg.Model == "" {
		cfg.Model = "gpt-4o-mini"
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 60 * time.Second
	}
	return &Client{
		cfg:        cfg,
		httpClient: &http.Client{Timeout: cfg.Timeout},
	}
}

// Configured reports whether the client has credentials to call out with.
func (c *Client) Configured() bool {
	return c != nil && c.cfg.APIKey != ""
}

// ExtractDocument submits the file bytes inline (PDF as a file part, images
// as a data-URI image part) with the fixed category contract and parses the
// textual reply. Called at most once per document.
func (c *Client) ExtractDocument(ctx context.Context, data []byte, mediaType string) (parse.Payload, error) {
	start := time.Now()

	b64 := base64.StdEncoding.EncodeToString(data)
	var docPart map[string]any
	if mediaType == "application/pdf" {
		docPart = map[string]any{
			"type": "file",
			"file": map[string]any{
				"filename":  "document.pdf",
				"file_data": "data:application/pdf;base64," + b64,
			},
		}
	} else {
		docPart = map[string]any{
			"type":      "image_url",
			"image_url": map[string]any{"url": "data:" + mediaType + ";base64," + b64},
		}
	}

	body := map[string]any{
		"model":      c.cfg.Model,
		"max_tokens": 4096,
		"messages": []map[string]any{
			{
				"role": "user",
				"content": []map[string]any{
					docPart,
					{"type": "text", "text": extractionPrompt},
				},
			},
		},
	}

	raw, err := c.post(ctx, strings.TrimRight(c.cfg.BaseURL, "/")+"/chat/completions", body)
	if err != nil {
		return parse.Payload{}, err
	}

	var cc struct {
		Choices []struct {
			Message struct {
				Content string `json:"content"`
			} `json:"message"`
		} `json:"choices"`
	}
	if err := json.Unmarshal(raw, &cc); err != nil {
		return parse.Payload{}, fmt.Errorf("decode response: %w", err)
	}
	if len(cc.Choices) == 0 {
		return parse.Payload{}, fmt.Errorf("no choices in response")
	}

	content := []byte(stripMarkdownFences(cc.Choices[0].Message.Content))
	if err := validateAgainstSchema(buildPayloadSchema(), content); err != nil {
		return parse.Payload{}, fmt.Errorf("malformed extractor reply: %w", err)
	}

	var payload parse.Payload
	if err := json.Unmarshal(content, &payload); err != nil {
		return parse.Payload{}, fmt.Errorf("unmarshal payload: %w", err)
	}

	log.Printf("llm extract ok: model=%s meds=%d vaccines=%d allergies=%d problems=%d vitals=%d elapsed=%dms",
		c.cfg.Model, len(payload.Medications), len(payload.Vaccines), len(payload.Allergies),
		len(payload.Problems), len(payload.Vitals), time.Since(start).Milliseconds())
	return payload, nil
}

func (c *Client) post(ctx context.Context, url string, body map[string]any) ([]byte, error) {
	b, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(b))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+c.cfg.APIKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("extractor http error: %w", err)
	}
	defer resp.Body.Close()

	buf, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("extractor status %d: %s", resp.StatusCode, string(buf))
	}
	return buf, nil
}

var (
	leadingFenceRE  = regexp.MustCompile("^```(?:json)?\\s*")
	trailingFenceRE = regexp.MustCompile("\\s*```$")
)

// stripMarkdownFences removes an optional ```json ... ``` wrapper the model
// sometimes adds despite the JSON-only instruction.
func stripMarkdownFences(raw string) string {
	raw = strings.TrimSpace(raw)
	raw = leadingFenceRE.ReplaceAllString(raw, "")
	raw = trailingFenceRE.ReplaceAllString(raw, "")
	return strings.TrimSpace(raw)
}
