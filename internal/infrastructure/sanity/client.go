package sanity

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

	"BlogEngine/internal/domain"
)

const maxErrorBody = 512

// Options points the client at one project dataset.
type Options struct {
	ProjectID  string
	Dataset    string
	Token      string
	APIVersion string
	// BaseURL overrides https://<project>.api.sanity.io.
	BaseURL    string
	HTTPClient *http.Client
}

// Client speaks the HTTP query, mutate and assets APIs.
type Client struct {
	base    string
	dataset string
	token   string
	http    *http.Client
}

// NewClient builds a client without contacting the API.
func NewClient(opts Options) *Client {
	version := strings.TrimPrefix(opts.APIVersion, "v")
	if version == "" {
		version = "2024-01-01"
	}
	base := opts.BaseURL
	if base == "" {
		base = fmt.Sprintf("https://%s.api.sanity.io", opts.ProjectID)
	}
	httpClient := opts.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 30 * time.Second}
	}
	return &Client{
		base:    strings.TrimRight(base, "/") + "/v" + version,
		dataset: opts.Dataset,
		token:   opts.Token,
		http:    httpClient,
	}
}

// APIError is a non-2xx answer from the API.
type APIError struct {
	Status int
	Body   string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("sanity: status %d: %s", e.Status, e.Body)
}

// Query runs a GROQ query and decodes its result into out. Params are
// JSON-encoded as the query API expects.
func (c *Client) Query(ctx context.Context, groq string, params map[string]any, out any) error {
	values := url.Values{}
	values.Set("query", groq)
	for name, v := range params {
		raw, err := json.Marshal(v)
		if err != nil {
			return fmt.Errorf("encode param %s: %w", name, err)
		}
		values.Set("$"+name, string(raw))
	}
	endpoint := fmt.Sprintf("%s/data/query/%s?%s", c.base, c.dataset, values.Encode())

	var envelope struct {
		Result json.RawMessage `json:"result"`
	}
	if err := c.do(ctx, http.MethodGet, endpoint, "", nil, &envelope); err != nil {
		return err
	}
	if out == nil || len(envelope.Result) == 0 {
		return nil
	}
	if err := json.Unmarshal(envelope.Result, out); err != nil {
		return fmt.Errorf("decode query result: %w", err)
	}
	return nil
}

// Mutate commits mutations in one transaction and returns the touched ids.
func (c *Client) Mutate(ctx context.Context, mutations ...map[string]any) ([]string, error) {
	body, err := json.Marshal(map[string]any{"mutations": mutations})
	if err != nil {
		return nil, fmt.Errorf("encode mutations: %w", err)
	}
	endpoint := fmt.Sprintf("%s/data/mutate/%s?returnIds=true", c.base, c.dataset)

	var res struct {
		TransactionID string `json:"transactionId"`
		Results       []struct {
			ID string `json:"id"`
		} `json:"results"`
	}
	if err := c.do(ctx, http.MethodPost, endpoint, "application/json", body, &res); err != nil {
		return nil, err
	}
	ids := make([]string, 0, len(res.Results))
	for _, r := range res.Results {
		ids = append(ids, r.ID)
	}
	return ids, nil
}

// UploadImage stores raw image bytes as an asset and returns its document id.
func (c *Client) UploadImage(ctx context.Context, data []byte, filename, contentType string) (string, error) {
	if contentType == "" {
		contentType = "image/jpeg"
	}
	endpoint := fmt.Sprintf("%s/assets/images/%s?filename=%s", c.base, c.dataset, url.QueryEscape(filename))

	var res struct {
		Document struct {
			ID string `json:"_id"`
		} `json:"document"`
	}
	if err := c.do(ctx, http.MethodPost, endpoint, contentType, data, &res); err != nil {
		return "", err
	}
	if res.Document.ID == "" {
		return "", errors.New("sanity: upload returned no asset id")
	}
	return res.Document.ID, nil
}

func (c *Client) do(ctx context.Context, method, endpoint, contentType string, body []byte, out any) error {
	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}
	req, err := http.NewRequestWithContext(ctx, method, endpoint, reader)
	if err != nil {
		return fmt.Errorf("new request: %w", err)
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("do request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		apiErr := &APIError{Status: resp.StatusCode, Body: strings.TrimSpace(string(snippet))}
		if resp.StatusCode == http.StatusNotFound {
			return fmt.Errorf("%w: %w", domain.ErrStoreNotFound, apiErr)
		}
		return apiErr
	}
	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}
