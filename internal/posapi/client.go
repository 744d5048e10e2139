package posapi

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/skybi/posctl/internal/hashmap"
)

const productCacheCleanupInterval = 10 * time.Second

// Client represents the typed client of the point-of-sale backend API.
// Authentication is left to the given HTTP client's transport.
type Client struct {
	baseURL string
	http    *http.Client

	products *hashmap.ExpiringMap[int64, *Product]
}

// New creates a new backend API client.
// Product lookups are cached for productCacheLifetime; a lifetime of 0 disables caching.
func New(baseURL string, httpClient *http.Client, productCacheLifetime time.Duration) (*Client, error) {
	parsed, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("invalid API base URL: %w", err)
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return nil, fmt.Errorf("invalid API base URL: unsupported scheme '%s'", parsed.Scheme)
	}
	if httpClient == nil {
		httpClient = http.DefaultClient
	}

	client := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    httpClient,
	}
	if productCacheLifetime > 0 {
		client.products = hashmap.NewExpiring[int64, *Product](productCacheLifetime)
		client.products.ScheduleCleanupTask(productCacheCleanupInterval)
	}
	return client, nil
}

// Close stops the background work of the client
func (client *Client) Close() {
	if client.products != nil {
		client.products.StopCleanupTask()
	}
}

// url joins the base URL and the given path the same way regardless of leading or trailing slashes
func (client *Client) url(path string) string {
	return client.baseURL + "/" + strings.TrimLeft(path, "/")
}

// do sends a single request and decodes a successful response into target (if non-nil).
// Non-2xx responses are returned as *Error; nothing is retried.
func (client *Client) do(ctx context.Context, method, path string, payload, target any) error {
	var body io.Reader
	if payload != nil {
		raw, err := json.Marshal(payload)
		if err != nil {
			return err
		}
		body = bytes.NewReader(raw)
	}

	request, err := http.NewRequestWithContext(ctx, method, client.url(path), body)
	if err != nil {
		return err
	}
	response, err := client.http.Do(request)
	if err != nil {
		return err
	}
	defer response.Body.Close()

	raw, err := io.ReadAll(response.Body)
	if err != nil {
		return err
	}
	if response.StatusCode < 200 || response.StatusCode > 299 {
		return newError(response.StatusCode, raw)
	}

	if target == nil {
		return nil
	}
	if len(bytes.TrimSpace(raw)) == 0 {
		return fmt.Errorf("%w: empty body", ErrMalformedResponse)
	}
	decoder := json.NewDecoder(bytes.NewReader(raw))
	decoder.UseNumber()
	if err := decoder.Decode(target); err != nil {
		return fmt.Errorf("%w: %v", ErrMalformedResponse, err)
	}
	return nil
}

func pathID(id int64) string {
	return strconv.FormatInt(id, 10)
}
