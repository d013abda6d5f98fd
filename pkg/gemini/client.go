package gemini

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	pkgerrors "github.com/algobros/terminal-backend/pkg/errors"
)

const (
	defaultBaseURL             = "https://generativelanguage.googleapis.com/v1beta"
	defaultModel               = "gemini-3-pro-preview"
	defaultTimeout             = 120 * time.Second
	requestBodyReadLimit int64 = 4096
)

var errAPIKeyRequired = errors.New("gemini api key is required")

// Client wraps the Gemini generateContent REST API.
type Client struct {
	httpClient *http.Client
	baseURL    string
	apiKey     string
	model      string
}

// Option configures optional client behavior.
type Option func(*Client)

// WithHTTPClient overrides the default HTTP client.
func WithHTTPClient(client *http.Client) Option {
	return func(c *Client) {
		if client != nil {
			c.httpClient = client
		}
	}
}

// WithBaseURL overrides the configured API base URL.
func WithBaseURL(baseURL string) Option {
	return func(c *Client) {
		trimmed := strings.TrimSpace(baseURL)
		if trimmed != "" {
			c.baseURL = trimmed
		}
	}
}

// WithModel overrides the default model.
func WithModel(model string) Option {
	return func(c *Client) {
		trimmed := strings.TrimSpace(model)
		if trimmed != "" {
			c.model = trimmed
		}
	}
}

// WithTimeout overrides the default HTTP timeout.
func WithTimeout(timeout time.Duration) Option {
	return func(c *Client) {
		if timeout > 0 {
			c.httpClient.Timeout = timeout
		}
	}
}

// NewClient builds the Gemini client given an API key.
func NewClient(apiKey string, opts ...Option) (*Client, error) {
	trimmedKey := strings.TrimSpace(apiKey)
	if trimmedKey == "" {
		return nil, errAPIKeyRequired
	}

	client := &Client{
		apiKey:     trimmedKey,
		baseURL:    defaultBaseURL,
		model:      defaultModel,
		httpClient: &http.Client{Timeout: defaultTimeout},
	}

	for _, opt := range opts {
		if opt != nil {
			opt(client)
		}
	}

	if client.httpClient == nil {
		client.httpClient = &http.Client{Timeout: defaultTimeout}
	}

	return client, nil
}

// Part is one piece of multimodal request content.
type Part struct {
	Text       string
	InlineData *Blob
}

// Blob is binary content attached inline to a request.
type Blob struct {
	MIMEType string
	Data     []byte
}

// GenerateOptions constrain the model response.
type GenerateOptions struct {
	// ResponseSchema forces a JSON response matching the schema when set.
	ResponseSchema map[string]any
	Temperature    *float64
}

type apiPart struct {
	Text       string       `json:"text,omitempty"`
	InlineData *apiInlineData `json:"inline_data,omitempty"`
}

type apiInlineData struct {
	MIMEType string `json:"mime_type"`
	Data     string `json:"data"`
}

type apiGenerationConfig struct {
	ResponseMIMEType string         `json:"responseMimeType,omitempty"`
	ResponseSchema   map[string]any `json:"responseSchema,omitempty"`
	Temperature      *float64       `json:"temperature,omitempty"`
}

type apiRequest struct {
	Contents []struct {
		Parts []apiPart `json:"parts"`
	} `json:"contents"`
	GenerationConfig *apiGenerationConfig `json:"generationConfig,omitempty"`
}

type apiResponse struct {
	Candidates []struct {
		Content struct {
			Parts []struct {
				Text string `json:"text"`
			} `json:"parts"`
		} `json:"content"`
		FinishReason string `json:"finishReason"`
	} `json:"candidates"`
	Error *struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
		Status  string `json:"status"`
	} `json:"error"`
}

// GenerateContent sends a single multimodal request and returns the first
// candidate's text. There is no retry; the caller decides how failures
// surface.
func (c *Client) GenerateContent(ctx context.Context, parts []Part, opts GenerateOptions) (string, error) {
	if c == nil {
		return "", pkgerrors.New(pkgerrors.CodeDependency, "gemini client not configured")
	}
	if len(parts) == 0 {
		return "", pkgerrors.New(pkgerrors.CodeValidation, "at least one content part is required")
	}

	req := apiRequest{}
	req.Contents = make([]struct {
		Parts []apiPart `json:"parts"`
	}, 1)
	for _, p := range parts {
		part := apiPart{Text: p.Text}
		if p.InlineData != nil {
			part.InlineData = &apiInlineData{
				MIMEType: p.InlineData.MIMEType,
				Data:     base64.StdEncoding.EncodeToString(p.InlineData.Data),
			}
		}
		req.Contents[0].Parts = append(req.Contents[0].Parts, part)
	}
	if opts.ResponseSchema != nil || opts.Temperature != nil {
		cfg := &apiGenerationConfig{Temperature: opts.Temperature}
		if opts.ResponseSchema != nil {
			cfg.ResponseMIMEType = "application/json"
			cfg.ResponseSchema = opts.ResponseSchema
		}
		req.GenerationConfig = cfg
	}

	payload, err := json.Marshal(req)
	if err != nil {
		return "", pkgerrors.Wrap(pkgerrors.CodeDependency, err, "marshal generate request")
	}

	endpoint := fmt.Sprintf("%s/models/%s:generateContent", strings.TrimRight(c.baseURL, "/"), c.model)
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(payload))
	if err != nil {
		return "", pkgerrors.Wrap(pkgerrors.CodeDependency, err, "build generate request")
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("x-goog-api-key", c.apiKey)

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return "", pkgerrors.Wrap(pkgerrors.CodeDependency, err, "execute generate request")
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, requestBodyReadLimit))
		return "", pkgerrors.Wrap(pkgerrors.CodeDependency, fmt.Errorf("status %d: %s", resp.StatusCode, strings.TrimSpace(string(msg))), "generate request failed")
	}

	var apiResp apiResponse
	if err := json.NewDecoder(resp.Body).Decode(&apiResp); err != nil {
		return "", pkgerrors.Wrap(pkgerrors.CodeDependency, err, "decode generate response")
	}
	if apiResp.Error != nil {
		return "", pkgerrors.New(pkgerrors.CodeDependency, fmt.Sprintf("gemini error %s: %s", apiResp.Error.Status, apiResp.Error.Message))
	}
	if len(apiResp.Candidates) == 0 || len(apiResp.Candidates[0].Content.Parts) == 0 {
		return "", pkgerrors.New(pkgerrors.CodeDependency, "gemini returned no candidates")
	}

	var out strings.Builder
	for _, p := range apiResp.Candidates[0].Content.Parts {
		out.WriteString(p.Text)
	}
	return out.String(), nil
}

// ExtractVideoKnowledge transcribes the trading concepts taught in a video
// into plain text strategy notes.
func (c *Client) ExtractVideoKnowledge(ctx context.Context, mimeType string, data []byte, title string) (string, error) {
	if len(data) == 0 {
		return "", pkgerrors.New(pkgerrors.CodeValidation, "video data is required")
	}

	prompt := "You are a trading mentor's assistant. Watch this educational trading video" +
		" and extract every concept, rule and setup it teaches as concise strategy notes." +
		" Write plain text, one concept per paragraph. Do not add commentary."
	if strings.TrimSpace(title) != "" {
		prompt += " The video is titled: " + strings.TrimSpace(title) + "."
	}

	return c.GenerateContent(ctx, []Part{
		{Text: prompt},
		{InlineData: &Blob{MIMEType: mimeType, Data: data}},
	}, GenerateOptions{})
}
