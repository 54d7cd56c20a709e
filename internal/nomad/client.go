// Package nomad talks to the NOMAD v1 Archive Service.
package nomad

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/agentic-research/nomadkit/api"
	"github.com/agentic-research/nomadkit/internal/config"
	"github.com/agentic-research/nomadkit/internal/docpath"
	"github.com/ohler55/ojg/oj"
	"go.uber.org/zap"
	"resty.dev/v3"
)

// ErrStatus is wrapped by errors for non-2xx answers.
var ErrStatus = errors.New("unexpected status")

// Client fetches entry archives and raw files.
// It performs one blocking request per call and never retries.
type Client struct {
	http   *resty.Client
	logger *zap.Logger
}

// NewClient builds a client for cfg. A nil logger discards output.
func NewClient(cfg *config.Archive, logger *zap.Logger) (*Client, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	timeout, err := cfg.TimeoutDuration()
	if err != nil {
		return nil, err
	}

	hc := resty.New().
		SetBaseURL(strings.TrimRight(cfg.BaseURL, "/")).
		SetTimeout(timeout).
		SetHeader("User-Agent", "nomadkit")

	return &Client{http: hc, logger: logger}, nil
}

// Close releases idle connections.
func (c *Client) Close() error {
	return c.http.Close()
}

// Archive fetches the archive of one entry. The returned document is the
// "data" object of the response, so its paths start with "archive/".
func (c *Client) Archive(ctx context.Context, entryID string) (docpath.Node, error) {
	if entryID == "" {
		return nil, fmt.Errorf("archive: empty entry id")
	}

	body, err := c.get(ctx, "/entries/{entry_id}/archive", entryID, "")
	if err != nil {
		return nil, fmt.Errorf("archive %s: %w", entryID, err)
	}

	parsed, err := oj.Parse(body)
	if err != nil {
		return nil, fmt.Errorf("archive %s: decode response: %w", entryID, err)
	}
	envelope, _ := parsed.(map[string]any)
	data, ok := envelope[api.EntryData].(map[string]any)
	if !ok {
		return nil, fmt.Errorf("archive %s: response has no data", entryID)
	}

	doc, err := docpath.FromValue(data)
	if err != nil {
		return nil, fmt.Errorf("archive %s: %w", entryID, err)
	}
	return doc, nil
}

// RawFile fetches a raw upload file of an entry, e.g. control.in.
func (c *Client) RawFile(ctx context.Context, entryID, name string) (string, error) {
	if entryID == "" {
		return "", fmt.Errorf("raw file: empty entry id")
	}
	if name == "" {
		return "", fmt.Errorf("raw file: empty file name")
	}

	body, err := c.get(ctx, "/entries/{entry_id}/raw/{name}", entryID, name)
	if err != nil {
		return "", fmt.Errorf("raw file %s of %s: %w", name, entryID, err)
	}
	return string(body), nil
}

func (c *Client) get(ctx context.Context, route, entryID, name string) ([]byte, error) {
	req := c.http.R().
		SetContext(ctx).
		SetPathParam("entry_id", entryID)
	if name != "" {
		// Raw paths may contain directories.
		req.SetRawPathParam("name", name)
	}

	c.logger.Debug("archive request",
		zap.String("route", route),
		zap.String("entry_id", entryID),
		zap.String("name", name))

	res, err := req.Get(route)
	if err != nil {
		return nil, err
	}
	if res.IsError() {
		c.logger.Warn("archive request failed",
			zap.String("entry_id", entryID),
			zap.Int("status", res.StatusCode()))
		return nil, fmt.Errorf("%w %d", ErrStatus, res.StatusCode())
	}
	return res.Bytes(), nil
}
