package hf

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

	"github.com/raizapp/fleetops-backend/internal/pkg/ctxutil"
	"github.com/raizapp/fleetops-backend/internal/pkg/errors"
	"github.com/raizapp/fleetops-backend/internal/pkg/logger"
)

// Message is one chat turn. Content is either a plain string or a
// []ContentPart for multimodal user turns.
type Message struct {
	Role    string `json:"role"`
	Content any    `json:"content"`
}

type ContentPart struct {
	Type     string    `json:"type"` // "text" | "image_url"
	Text     string    `json:"text,omitempty"`
	ImageURL *ImageURL `json:"image_url,omitempty"`
}

type ImageURL struct {
	URL string `json:"url"`
}

// Request is one composed model call. HasImage selects the vision-capable
// model variant.
type Request struct {
	Messages []Message
	HasImage bool
}

// Client issues chat completions against the hosted router endpoint. It
// performs no retries; retry policy belongs to the caller.
type Client interface {
	Complete(ctx context.Context, req Request) (string, error)
}

type client struct {
	log         *logger.Logger
	baseURL     string
	token       string
	visionModel string
	textModel   string
	maxTokens   int
	httpClient  *http.Client
}

func NewClient(log *logger.Logger) (Client, error) {
	if log == nil {
		return nil, fmt.Errorf("logger required")
	}

	token := strings.TrimSpace(os.Getenv("HF_TOKEN"))
	if token == "" {
		token = strings.TrimSpace(os.Getenv("HUGGINGFACE_TOKEN"))
	}
	if token == "" {
		log.Warn("No HF_TOKEN/HUGGINGFACE_TOKEN set; assistant calls will fail until configured")
	}

	baseURL := strings.TrimSpace(os.Getenv("HF_BASE_URL"))
	if baseURL == "" {
		baseURL = "https://router.huggingface.co"
	}
	baseURL = strings.TrimRight(baseURL, "/")

	visionModel := strings.TrimSpace(os.Getenv("HF_VISION_MODEL"))
	if visionModel == "" {
		visionModel = "zai-org/GLM-4.5V"
	}
	textModel := strings.TrimSpace(os.Getenv("HF_TEXT_MODEL"))
	if textModel == "" {
		textModel = "Qwen/Qwen2.5-7B-Instruct"
	}

	timeoutSec := 90
	if v := os.Getenv("HF_TIMEOUT_SECONDS"); v != "" {
		if parsed, err := strconv.Atoi(strings.TrimSpace(v)); err == nil && parsed > 0 {
			timeoutSec = parsed
		}
	}

	return &client{
		log:         log.With("service", "HFClient"),
		baseURL:     baseURL,
		token:       token,
		visionModel: visionModel,
		textModel:   textModel,
		maxTokens:   1024,
		httpClient:  &http.Client{Timeout: time.Duration(timeoutSec) * time.Second},
	}, nil
}

type completionRequest struct {
	Model     string    `json:"model"`
	Messages  []Message `json:"messages"`
	MaxTokens int       `json:"max_tokens"`
}

type completionResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
	Error *struct {
		Message string `json:"message"`
	} `json:"error,omitempty"`
}

func (c *client) Complete(ctx context.Context, req Request) (string, error) {
	if c.token == "" {
		return "", errors.ErrNotConfigured
	}

	model := c.textModel
	if req.HasImage {
		model = c.visionModel
	}

	body := completionRequest{
		Model:     model,
		Messages:  req.Messages,
		MaxTokens: c.maxTokens,
	}

	var buf bytes.Buffer
	if err := json.NewEncoder(&buf).Encode(body); err != nil {
		return "", err
	}

	httpReq, err := http.NewRequestWithContext(ctxutil.Default(ctx), http.MethodPost, c.baseURL+"/v1/chat/completions", &buf)
	if err != nil {
		return "", err
	}
	httpReq.Header.Set("Authorization", "Bearer "+c.token)
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return "", &APIError{Err: err}
	}
	raw, readErr := io.ReadAll(resp.Body)
	_ = resp.Body.Close()
	if readErr != nil {
		return "", &APIError{StatusCode: resp.StatusCode, Err: readErr}
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		apiErr := &APIError{StatusCode: resp.StatusCode, Body: apiErrorMessage(raw)}
		c.log.Warn("Model request failed", "model", model, "status", resp.StatusCode, "error", apiErr.Body)
		return "", apiErr
	}

	var out completionResponse
	if err := json.Unmarshal(raw, &out); err != nil {
		return "", fmt.Errorf("decode completion: %w", err)
	}
	if len(out.Choices) == 0 {
		return "", fmt.Errorf("completion had no choices")
	}
	return strings.TrimSpace(out.Choices[0].Message.Content), nil
}

// apiErrorMessage pulls the error message out of an error body when the
// router returns structured JSON, falling back to the raw text.
func apiErrorMessage(raw []byte) string {
	var out completionResponse
	if err := json.Unmarshal(raw, &out); err == nil && out.Error != nil && out.Error.Message != "" {
		return out.Error.Message
	}
	return string(raw)
}
