// Package webhook pushes outline changes to an external HTTP endpoint.
package webhook

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/dgallion1/docoutline/internal/doctree"
)

// Client communicates with the outline webhook endpoint.
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
}

func NewClient(baseURL, apiKey string) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		apiKey:  apiKey,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// OutlineRequest is the body for PUT /outlines/{docID}.
type OutlineRequest struct {
	DocID       string             `json:"doc_id"`
	Revision    uint64             `json:"revision"`
	Dialect     string             `json:"dialect"`
	MaxDepth    int                `json:"max_depth"`
	ContentHash string             `json:"content_hash"`
	BuiltAt     string             `json:"built_at"`
	Headings    []*doctree.Heading `json:"headings"`
}

// PublishOutline stores the outline of a document revision.
func (c *Client) PublishOutline(ctx context.Context, o *doctree.Outline) error {
	body, err := json.Marshal(OutlineRequest{
		DocID:       o.DocID,
		Revision:    o.Revision,
		Dialect:     o.Dialect,
		MaxDepth:    o.MaxDepth,
		ContentHash: o.ContentHash,
		BuiltAt:     o.BuiltAt.Format(time.RFC3339),
		Headings:    doctree.Resolved(o.Headings, o.DocumentEnd),
	})
	if err != nil {
		return fmt.Errorf("marshal outline: %w", err)
	}
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPut, c.outlineURL(o.DocID), bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return fmt.Errorf("put outline: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated && resp.StatusCode != http.StatusNoContent {
		respBody, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return fmt.Errorf("put outline %s: status %d: %s", o.DocID, resp.StatusCode, string(respBody))
	}
	return nil
}

// DeleteOutline removes a closed document's outline.
func (c *Client) DeleteOutline(ctx context.Context, docID string) error {
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodDelete, c.outlineURL(docID), nil)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	httpReq.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return fmt.Errorf("delete outline: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusNoContent && resp.StatusCode != http.StatusNotFound {
		respBody, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return fmt.Errorf("delete outline %s: status %d: %s", docID, resp.StatusCode, string(respBody))
	}
	return nil
}

func (c *Client) outlineURL(docID string) string {
	return c.baseURL + "/outlines/" + url.PathEscape(docID)
}

// Close releases idle connections.
func (c *Client) Close() {
	c.httpClient.CloseIdleConnections()
}
