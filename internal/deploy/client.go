// Package deploy uploads compiled worker artifacts to the workers hosting
// platform over its HTTP API.
package deploy

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/ai-primitives/mdxld-workers/internal/compiler/metadata"
)

const (
	defaultEndpoint = "https://api.workers.dev"
	scriptFileName  = "worker.js"
	uploadTimeout   = 60 * time.Second
)

// Config configures a deploy client.
type Config struct {
	// Endpoint is the platform API base URL. Defaults to the public API.
	Endpoint string
	// AccountID scopes uploads to a platform account.
	AccountID string
	// APIToken authenticates as a bearer token. Ignored when ServiceKey
	// is set.
	APIToken string
	// ServiceKey, when set, mints short-lived signed service tokens per
	// request instead of sending a long-lived bearer token.
	ServiceKey string
	// HTTPClient overrides the default client, mainly for tests.
	HTTPClient *http.Client
	// Logger receives structured upload logs. Defaults to a no-op logger.
	Logger *zap.Logger
}

// Client talks to the workers platform API.
type Client struct {
	endpoint   string
	accountID  string
	apiToken   string
	serviceKey string
	httpClient *http.Client
	logger     *zap.Logger
}

// Deployment describes one successful worker upload.
type Deployment struct {
	ID     string `json:"id"`
	Worker string `json:"worker"`
	URL    string `json:"url,omitempty"`
}

// APIError is a structured error from the platform's error envelope.
type APIError struct {
	StatusCode int
	Code       int
	Message    string
}

// Error implements the error interface
func (e *APIError) Error() string {
	if e.Code != 0 {
		return fmt.Sprintf("platform API error %d (code %d): %s", e.StatusCode, e.Code, e.Message)
	}
	return fmt.Sprintf("platform API error %d: %s", e.StatusCode, e.Message)
}

// NewClient creates a deploy client. AccountID and one of APIToken or
// ServiceKey are required.
func NewClient(cfg Config) (*Client, error) {
	if cfg.AccountID == "" {
		return nil, fmt.Errorf("deploy: account ID is required")
	}
	if cfg.APIToken == "" && cfg.ServiceKey == "" {
		return nil, fmt.Errorf("deploy: an API token or service key is required")
	}

	endpoint := cfg.Endpoint
	if endpoint == "" {
		endpoint = defaultEndpoint
	}
	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: uploadTimeout}
	}
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Client{
		endpoint:   endpoint,
		accountID:  cfg.AccountID,
		apiToken:   cfg.APIToken,
		serviceKey: cfg.ServiceKey,
		httpClient: httpClient,
		logger:     logger,
	}, nil
}

// UploadWorker uploads a compiled worker script and its metadata.
//
// The request body is multipart: a "metadata" JSON part naming the main
// module plus the normalized document metadata, and the ES module itself.
// Every attempt carries a fresh idempotency key so the platform can
// deduplicate retried uploads.
func (c *Client) UploadWorker(ctx context.Context, name string, script []byte, meta metadata.Metadata) (*Deployment, error) {
	if name == "" {
		return nil, fmt.Errorf("deploy: worker name is required")
	}
	if len(script) == 0 {
		return nil, fmt.Errorf("deploy: worker script is empty")
	}

	body, contentType, err := buildUploadBody(script, meta)
	if err != nil {
		return nil, err
	}

	url := fmt.Sprintf("%s/accounts/%s/workers/scripts/%s", c.endpoint, c.accountID, name)
	req, err := http.NewRequestWithContext(ctx, http.MethodPut, url, body)
	if err != nil {
		return nil, fmt.Errorf("deploy: failed to build request: %w", err)
	}
	req.Header.Set("Content-Type", contentType)
	req.Header.Set("Idempotency-Key", uuid.NewString())
	if err := c.authorize(req); err != nil {
		return nil, err
	}

	c.logger.Info("uploading worker",
		zap.String("worker", name),
		zap.String("account", c.accountID),
		zap.Int("script_bytes", len(script)),
		zap.Strings("routes", meta.Routes()),
	)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("deploy: upload failed: %w", err)
	}
	defer func() {
		_, _ = io.Copy(io.Discard, resp.Body)
		_ = resp.Body.Close()
	}()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		apiErr := parseAPIError(resp)
		c.logger.Warn("worker upload rejected",
			zap.String("worker", name),
			zap.Int("status", apiErr.StatusCode),
			zap.String("message", apiErr.Message),
		)
		return nil, apiErr
	}

	deployment, err := parseDeployment(resp.Body, name)
	if err != nil {
		return nil, err
	}

	c.logger.Info("worker deployed",
		zap.String("worker", name),
		zap.String("deployment_id", deployment.ID),
	)
	return deployment, nil
}

// buildUploadBody assembles the multipart upload payload.
func buildUploadBody(script []byte, meta metadata.Metadata) (*bytes.Buffer, string, error) {
	uploadMeta := map[string]any{
		"main_module": scriptFileName,
		"metadata":    meta,
	}
	metaJSON, err := json.Marshal(uploadMeta)
	if err != nil {
		return nil, "", fmt.Errorf("deploy: failed to serialize upload metadata: %w", err)
	}

	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)

	metaPart, err := writer.CreateFormField("metadata")
	if err != nil {
		return nil, "", fmt.Errorf("deploy: failed to create metadata part: %w", err)
	}
	if _, err := metaPart.Write(metaJSON); err != nil {
		return nil, "", fmt.Errorf("deploy: failed to write metadata part: %w", err)
	}

	// Scripts travel gzipped; the platform inflates on receipt.
	compressed, err := metadata.Compress(script)
	if err != nil {
		return nil, "", fmt.Errorf("deploy: failed to compress worker script: %w", err)
	}

	header := textproto.MIMEHeader{}
	header.Set("Content-Disposition",
		fmt.Sprintf(`form-data; name=%q; filename=%q`, scriptFileName, scriptFileName))
	header.Set("Content-Type", "application/javascript+module")
	header.Set("Content-Encoding", "gzip")
	scriptPart, err := writer.CreatePart(header)
	if err != nil {
		return nil, "", fmt.Errorf("deploy: failed to create script part: %w", err)
	}
	if _, err := scriptPart.Write(compressed); err != nil {
		return nil, "", fmt.Errorf("deploy: failed to write script part: %w", err)
	}

	if err := writer.Close(); err != nil {
		return nil, "", fmt.Errorf("deploy: failed to finalize upload body: %w", err)
	}
	return &buf, writer.FormDataContentType(), nil
}

// parseAPIError decodes the platform's error envelope, falling back to the
// raw status when the body is not the expected shape.
func parseAPIError(resp *http.Response) *APIError {
	apiErr := &APIError{StatusCode: resp.StatusCode, Message: resp.Status}

	var envelope struct {
		Errors []struct {
			Code    int    `json:"code"`
			Message string `json:"message"`
		} `json:"errors"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err == nil && len(envelope.Errors) > 0 {
		apiErr.Code = envelope.Errors[0].Code
		apiErr.Message = envelope.Errors[0].Message
	}
	return apiErr
}

// parseDeployment decodes a successful upload response. A platform that
// returns no body still yields a usable deployment record.
func parseDeployment(body io.Reader, name string) (*Deployment, error) {
	deployment := &Deployment{Worker: name}

	var envelope struct {
		Result Deployment `json:"result"`
	}
	if err := json.NewDecoder(body).Decode(&envelope); err != nil {
		if err == io.EOF {
			return deployment, nil
		}
		return nil, fmt.Errorf("deploy: failed to decode response: %w", err)
	}

	if envelope.Result.ID != "" {
		deployment.ID = envelope.Result.ID
	}
	if envelope.Result.URL != "" {
		deployment.URL = envelope.Result.URL
	}
	return deployment, nil
}
