package storage

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// Client talks to the hosted Supabase Storage REST API for one bucket.
type Client struct {
	BaseURL string
	APIKey  string
	Bucket  string
	HTTP    *http.Client
}

// New creates a storage client.
func New(baseURL, apiKey, bucket string) *Client {
	return &Client{
		BaseURL: strings.TrimRight(baseURL, "/"),
		APIKey:  apiKey,
		Bucket:  bucket,
		HTTP:    &http.Client{Timeout: 30 * time.Second},
	}
}

// Upload stores data under objectPath in the bucket and returns the public
// URL of the new object. Existing objects are not overwritten.
func (c *Client) Upload(ctx context.Context, objectPath string, data []byte, contentType string) (string, error) {
	url := fmt.Sprintf("%s/storage/v1/object/%s/%s", c.BaseURL, c.Bucket, objectPath)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(data))
	if err != nil {
		return "", fmt.Errorf("storage: create request failed: %w", err)
	}
	c.authorize(req)
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	req.Header.Set("Content-Type", contentType)
	req.Header.Set("Cache-Control", "3600")
	req.Header.Set("x-upsert", "false")

	resp, err := c.HTTP.Do(req)
	if err != nil {
		return "", fmt.Errorf("storage: upload request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		body, _ := io.ReadAll(resp.Body)
		return "", fmt.Errorf("storage: upload failed (%d): %s", resp.StatusCode, string(body))
	}
	return c.PublicURL(objectPath), nil
}

// Remove deletes a single object from the bucket.
func (c *Client) Remove(ctx context.Context, objectPath string) error {
	url := fmt.Sprintf("%s/storage/v1/object/%s/%s", c.BaseURL, c.Bucket, objectPath)
	req, err := http.NewRequestWithContext(ctx, http.MethodDelete, url, nil)
	if err != nil {
		return fmt.Errorf("storage: create request failed: %w", err)
	}
	c.authorize(req)

	resp, err := c.HTTP.Do(req)
	if err != nil {
		return fmt.Errorf("storage: remove request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		body, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("storage: remove failed (%d): %s", resp.StatusCode, string(body))
	}
	return nil
}

// PublicURL returns the unauthenticated URL of an object in the bucket.
func (c *Client) PublicURL(objectPath string) string {
	return fmt.Sprintf("%s/storage/v1/object/public/%s/%s", c.BaseURL, c.Bucket, objectPath)
}

// PathFromURL extracts the object path from one of this bucket's public
// URLs. It reports false for URLs that point elsewhere.
func (c *Client) PathFromURL(publicURL string) (string, bool) {
	prefix := fmt.Sprintf("%s/storage/v1/object/public/%s/", c.BaseURL, c.Bucket)
	if !strings.HasPrefix(publicURL, prefix) {
		return "", false
	}
	objectPath := strings.TrimPrefix(publicURL, prefix)
	if objectPath == "" {
		return "", false
	}
	return objectPath, true
}

func (c *Client) authorize(req *http.Request) {
	req.Header.Set("Authorization", "Bearer "+c.APIKey)
	req.Header.Set("apikey", c.APIKey)
}
