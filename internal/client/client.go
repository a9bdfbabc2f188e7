// Package client talks to the plan generation and feedback submission
// services over JSON/HTTP.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/RevCBH/planrate/internal/dataset"
	"github.com/RevCBH/planrate/internal/plan"
)

// DefaultTimeout bounds a single call when no custom HTTP client is given.
// Generation can take a while, so this is generous.
const DefaultTimeout = 120 * time.Second

const (
	generatePath = "/api/generate-plan"
	submitPath   = "/api/submit-feedback"
	exportPath   = "/api/export-dataset/"
)

// Client calls the generation service and the submission service, which
// may live at different base URLs.
type Client struct {
	generateURL string
	submitURL   string
	client      *http.Client
}

// New creates a Client with a default HTTP client
func New(generateURL, submitURL string) *Client {
	return NewWithClient(generateURL, submitURL, &http.Client{
		Timeout: DefaultTimeout,
	})
}

// NewWithClient creates a Client with a custom HTTP client
func NewWithClient(generateURL, submitURL string, client *http.Client) *Client {
	return &Client{
		generateURL: strings.TrimRight(generateURL, "/"),
		submitURL:   strings.TrimRight(submitURL, "/"),
		client:      client,
	}
}

// Generate requests a new plan. The request is validated locally first and
// an invalid one never reaches the network.
func (c *Client) Generate(ctx context.Context, req plan.GenerateRequest) (*plan.Plan, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	var p plan.Plan
	if err := c.postJSON(ctx, OpGenerate, c.generateURL+generatePath, req, &p); err != nil {
		return nil, err
	}
	if err := p.Validate(); err != nil {
		return nil, &RemoteError{Op: OpGenerate, Err: fmt.Errorf("invalid plan: %w", err)}
	}
	return &p, nil
}

// Submit sends an assembled feedback record and returns the aggregated
// dataset.
func (c *Client) Submit(ctx context.Context, s dataset.Submission) (*dataset.SubmitResult, error) {
	var result dataset.SubmitResult
	if err := c.postJSON(ctx, OpSubmit, c.submitURL+submitPath, s, &result); err != nil {
		return nil, err
	}
	if !result.Success || result.Dataset == nil {
		return nil, &RemoteError{Op: OpSubmit, Err: errors.New("service did not return a dataset")}
	}
	return &result, nil
}

// Export downloads a stored dataset in the given format and returns the
// raw body.
func (c *Client) Export(ctx context.Context, sessionID string, format dataset.Format) ([]byte, error) {
	if sessionID == "" {
		return nil, ErrEmptySessionID
	}
	if format == "" {
		format = dataset.FormatJSON
	}

	u := c.submitURL + exportPath + url.PathEscape(sessionID) + "?format=" + url.QueryEscape(string(format))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, &RemoteError{Op: OpExport, Err: fmt.Errorf("create request: %w", err)}
	}

	body, err := c.do(OpExport, req)
	if err != nil {
		return nil, err
	}
	return body, nil
}

func (c *Client) postJSON(ctx context.Context, op Operation, u string, in, out any) error {
	payload, err := json.Marshal(in)
	if err != nil {
		return &RemoteError{Op: op, Err: fmt.Errorf("marshal request: %w", err)}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, u, bytes.NewReader(payload))
	if err != nil {
		return &RemoteError{Op: op, Err: fmt.Errorf("create request: %w", err)}
	}
	req.Header.Set("Content-Type", "application/json")

	body, err := c.do(op, req)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(body, out); err != nil {
		return &RemoteError{Op: op, Err: fmt.Errorf("decode response: %w", err)}
	}
	return nil
}

func (c *Client) do(op Operation, req *http.Request) ([]byte, error) {
	resp, err := c.client.Do(req)
	if err != nil {
		return nil, &RemoteError{Op: op, Err: err}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &RemoteError{Op: op, Status: resp.StatusCode, Err: fmt.Errorf("read response: %w", err)}
	}

	if resp.StatusCode >= 400 {
		return nil, &RemoteError{
			Op:     op,
			Status: resp.StatusCode,
			Detail: parseDetail(body),
		}
	}
	return body, nil
}

// parseDetail pulls the human readable message out of an error body. The
// detail is either a string or a list of field errors with a msg each.
func parseDetail(body []byte) string {
	var envelope struct {
		Detail json.RawMessage `json:"detail"`
	}
	if err := json.Unmarshal(body, &envelope); err != nil || len(envelope.Detail) == 0 {
		return ""
	}

	var s string
	if err := json.Unmarshal(envelope.Detail, &s); err == nil {
		return s
	}

	var items []struct {
		Msg string `json:"msg"`
	}
	if err := json.Unmarshal(envelope.Detail, &items); err == nil {
		msgs := make([]string, 0, len(items))
		for _, it := range items {
			if it.Msg != "" {
				msgs = append(msgs, it.Msg)
			}
		}
		return strings.Join(msgs, "; ")
	}
	return ""
}
