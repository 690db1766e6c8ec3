// Package kibela is a minimal client for the Kibela GraphQL API, covering
// only the queries and mutations the importer issues.
package kibela

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/hashicorp/go-retryablehttp"
)

// DefaultEndpoint returns the GraphQL endpoint for a team subdomain.
func DefaultEndpoint(team string) string {
	return fmt.Sprintf("https://%s.kibe.la/api/v1", team)
}

// Client issues GraphQL requests against one team endpoint. Retries and
// backoff for transient failures are delegated to the underlying
// retryablehttp client; the importer itself never retries.
type Client struct {
	endpoint  string
	token     string
	userAgent string
	http      *retryablehttp.Client
}

// NewClient creates a client for the given endpoint and access token.
func NewClient(endpoint, token, userAgent string) *Client {
	rc := retryablehttp.NewClient()
	rc.Logger = nil
	return &Client{
		endpoint:  endpoint,
		token:     token,
		userAgent: userAgent,
		http:      rc,
	}
}

type request struct {
	Query     string      `json:"query"`
	Variables interface{} `json:"variables,omitempty"`
}

type responseError struct {
	Message string `json:"message"`
}

type response struct {
	Data   json.RawMessage `json:"data"`
	Errors []responseError `json:"errors"`
}

// do posts one GraphQL request and decodes the response data into out.
// A non-2xx status or a non-empty errors array is an error.
func (c *Client) do(ctx context.Context, query string, variables, out interface{}) error {
	body, err := json.Marshal(request{Query: query, Variables: variables})
	if err != nil {
		return fmt.Errorf("kibela: encode request: %w", err)
	}

	req, err := retryablehttp.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("kibela: build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.token)
	if c.userAgent != "" {
		req.Header.Set("User-Agent", c.userAgent)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("kibela: request: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("kibela: read response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("kibela: %s returned %d: %s", c.endpoint, resp.StatusCode, strings.TrimSpace(string(raw)))
	}

	var parsed response
	if err := json.Unmarshal(raw, &parsed); err != nil {
		return fmt.Errorf("kibela: decode response: %w", err)
	}
	if len(parsed.Errors) > 0 {
		msgs := make([]string, len(parsed.Errors))
		for i, e := range parsed.Errors {
			msgs[i] = e.Message
		}
		return fmt.Errorf("kibela: %s", strings.Join(msgs, "; "))
	}

	if out != nil {
		if err := json.Unmarshal(parsed.Data, out); err != nil {
			return fmt.Errorf("kibela: decode data: %w", err)
		}
	}
	return nil
}
