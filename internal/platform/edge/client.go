// Package edge is the HTTP client for hosted serverless functions and the
// AI content webhook. Request and response bodies are ad hoc JSON payloads
// owned by the remote functions; this client keeps all of that loose JSON at
// one boundary and hands typed values to callers.
package edge

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	apperrors "github.com/halcyonlabs/inneros/internal/platform/errors"
	"github.com/halcyonlabs/inneros/internal/platform/timeouts"
	"github.com/tidwall/gjson"
	"github.com/tidwall/sjson"
)

// maxResponseBytes caps how much of an edge response is read into memory.
const maxResponseBytes = 4 << 20

// Client invokes hosted edge functions over HTTP.
type Client struct {
	baseURL    string
	webhookURL string
	apiKey     string
	httpClient *http.Client
}

// Config defines edge client wiring.
type Config struct {
	// BaseURL is the edge function host, e.g. https://edge.example.com.
	BaseURL string
	// WebhookURL is the AI content generation webhook endpoint.
	WebhookURL string
	// APIKey is sent as a bearer token on every call.
	APIKey string
	// HTTPClient may be nil; a client with the edge call timeout is used.
	HTTPClient *http.Client
}

// New constructs an edge client.
func New(cfg Config) (*Client, error) {
	baseURL := strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	if baseURL == "" {
		return nil, fmt.Errorf("edge base url is required")
	}
	if _, err := url.Parse(baseURL); err != nil {
		return nil, fmt.Errorf("parse edge base url: %w", err)
	}
	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: timeouts.EdgeCall}
	}
	return &Client{
		baseURL:    baseURL,
		webhookURL: strings.TrimSpace(cfg.WebhookURL),
		apiKey:     strings.TrimSpace(cfg.APIKey),
		httpClient: httpClient,
	}, nil
}

// DashboardCounts is the aggregate snapshot returned by the
// analytics-aggregate function. Missing fields degrade to zero.
type DashboardCounts struct {
	Documents      int
	Properties     int
	Broadcasts     int
	ActiveMembers  int
	CacheHitRate   float64
	AvgResponseMs  float64
	RAGQuality     float64
	HandoffSuccess float64
}

// AggregateDashboard invokes the analytics-aggregate function for one tenant.
func (c *Client) AggregateDashboard(ctx context.Context, tenantID string) (DashboardCounts, error) {
	payload, err := sjson.SetBytes([]byte(`{}`), "tenant_id", strings.TrimSpace(tenantID))
	if err != nil {
		return DashboardCounts{}, fmt.Errorf("build aggregate payload: %w", err)
	}
	body, err := c.invoke(ctx, "analytics-aggregate", payload)
	if err != nil {
		return DashboardCounts{}, err
	}
	result := gjson.ParseBytes(body)
	return DashboardCounts{
		Documents:      int(result.Get("counts.documents").Int()),
		Properties:     int(result.Get("counts.properties").Int()),
		Broadcasts:     int(result.Get("counts.broadcasts").Int()),
		ActiveMembers:  int(result.Get("counts.active_members").Int()),
		CacheHitRate:   result.Get("metrics.cache_hit_rate").Float(),
		AvgResponseMs:  result.Get("metrics.avg_response_ms").Float(),
		RAGQuality:     result.Get("metrics.rag_quality").Float(),
		HandoffSuccess: result.Get("metrics.handoff_success").Float(),
	}, nil
}

// ExtractText invokes the extract-text function for an uploaded file.
func (c *Client) ExtractText(ctx context.Context, fileURL string) (string, error) {
	fileURL = strings.TrimSpace(fileURL)
	if fileURL == "" {
		return "", apperrors.New(apperrors.CodeInvalidArgument, "file url is required")
	}
	payload, err := sjson.SetBytes([]byte(`{}`), "file_url", fileURL)
	if err != nil {
		return "", fmt.Errorf("build extract payload: %w", err)
	}
	body, err := c.invoke(ctx, "extract-text", payload)
	if err != nil {
		return "", err
	}
	text := gjson.GetBytes(body, "text")
	if !text.Exists() {
		return "", apperrors.New(apperrors.CodeUpstreamBadPayload, "extract-text response missing text field")
	}
	return text.String(), nil
}

// ExtractFacts invokes the extract-facts function over free text.
func (c *Client) ExtractFacts(ctx context.Context, text string) ([]string, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, apperrors.New(apperrors.CodeInvalidArgument, "text is required")
	}
	payload, err := sjson.SetBytes([]byte(`{}`), "text", text)
	if err != nil {
		return nil, fmt.Errorf("build facts payload: %w", err)
	}
	body, err := c.invoke(ctx, "extract-facts", payload)
	if err != nil {
		return nil, err
	}
	var facts []string
	for _, fact := range gjson.GetBytes(body, "facts").Array() {
		value := strings.TrimSpace(fact.String())
		if value != "" {
			facts = append(facts, value)
		}
	}
	return facts, nil
}

// DeliveryRequest identifies one broadcast chunk to deliver.
type DeliveryRequest struct {
	BroadcastID string
	Subject     string
	Body        string
	Recipients  []string
}

// DeliveryResult reports per-chunk delivery counts.
type DeliveryResult struct {
	Delivered int
	Failed    int
}

// DeliverBroadcast invokes the deliver-broadcast function for one chunk of
// recipients.
func (c *Client) DeliverBroadcast(ctx context.Context, req DeliveryRequest) (DeliveryResult, error) {
	if strings.TrimSpace(req.BroadcastID) == "" {
		return DeliveryResult{}, apperrors.New(apperrors.CodeInvalidArgument, "broadcast id is required")
	}
	if len(req.Recipients) == 0 {
		return DeliveryResult{}, apperrors.New(apperrors.CodeInvalidArgument, "recipients are required")
	}

	payload := []byte(`{}`)
	var err error
	payload, err = sjson.SetBytes(payload, "broadcast_id", strings.TrimSpace(req.BroadcastID))
	if err == nil {
		payload, err = sjson.SetBytes(payload, "subject", req.Subject)
	}
	if err == nil {
		payload, err = sjson.SetBytes(payload, "body", req.Body)
	}
	if err == nil {
		payload, err = sjson.SetBytes(payload, "recipients", req.Recipients)
	}
	if err != nil {
		return DeliveryResult{}, fmt.Errorf("build delivery payload: %w", err)
	}

	body, err := c.invoke(ctx, "deliver-broadcast", payload)
	if err != nil {
		return DeliveryResult{}, err
	}
	return DeliveryResult{
		Delivered: int(gjson.GetBytes(body, "delivered").Int()),
		Failed:    int(gjson.GetBytes(body, "failed").Int()),
	}, nil
}

// GenerateContent posts a prompt to the AI content webhook and returns the
// generated text.
func (c *Client) GenerateContent(ctx context.Context, prompt string, contextBlock string) (string, error) {
	if c == nil || c.webhookURL == "" {
		return "", apperrors.New(apperrors.CodeUpstreamUnavailable, "ai webhook is not configured")
	}
	prompt = strings.TrimSpace(prompt)
	if prompt == "" {
		return "", apperrors.New(apperrors.CodeInvalidArgument, "prompt is required")
	}

	payload := []byte(`{}`)
	var err error
	payload, err = sjson.SetBytes(payload, "prompt", prompt)
	if err == nil && strings.TrimSpace(contextBlock) != "" {
		payload, err = sjson.SetBytes(payload, "context", contextBlock)
	}
	if err != nil {
		return "", fmt.Errorf("build webhook payload: %w", err)
	}

	webhookCtx, cancel := context.WithTimeout(ctx, timeouts.Webhook)
	defer cancel()
	body, err := c.post(webhookCtx, c.webhookURL, payload)
	if err != nil {
		return "", err
	}
	content := gjson.GetBytes(body, "content")
	if !content.Exists() {
		return "", apperrors.New(apperrors.CodeUpstreamBadPayload, "webhook response missing content field")
	}
	return content.String(), nil
}

func (c *Client) invoke(ctx context.Context, function string, payload []byte) ([]byte, error) {
	if c == nil || c.httpClient == nil {
		return nil, apperrors.New(apperrors.CodeUpstreamUnavailable, "edge client is not configured")
	}
	return c.post(ctx, c.baseURL+"/functions/v1/"+function, payload)
}

func (c *Client) post(ctx context.Context, endpoint string, payload []byte) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("build edge request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.CodeUpstreamUnavailable, "edge call failed", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return nil, apperrors.Wrap(apperrors.CodeUpstreamBadPayload, "read edge response", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, apperrors.WithMetadata(
			apperrors.CodeUpstreamUnavailable,
			fmt.Sprintf("edge call returned status %d", resp.StatusCode),
			map[string]string{"status": fmt.Sprintf("%d", resp.StatusCode)},
		)
	}
	if !gjson.ValidBytes(body) {
		return nil, apperrors.New(apperrors.CodeUpstreamBadPayload, "edge response is not valid json")
	}
	return body, nil
}
