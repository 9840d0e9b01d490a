package jobber

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"golang.org/x/oauth2"

	"jobprofit/internal/log"
	"jobprofit/internal/pace"
)

// Config holds everything the client needs to talk to the billing API and
// how hard it may lean on it.
type Config struct {
	URL            string
	AccessToken    string
	TokenFile      string
	GraphQLVersion string
	Timeout        time.Duration

	DateField string // "createdAt" or "sentAt"

	InvoicePageSize  int
	LineItemPageSize int
	InvoicePageLimit int // 0 = unbounded

	TimesheetPageSize  int
	TimesheetPageLimit int

	InvoicePacer   pace.Pacer
	TimesheetPacer pace.Pacer
}

// Client is an authenticated GraphQL client for the Jobber API. It issues
// plain POST queries; token refresh and authorization flows live outside.
type Client struct {
	httpClient *http.Client
	config     Config
	logger     *log.Logger
}

func NewClient(ctx context.Context, config Config, logger *log.Logger) (*Client, error) {
	token := config.AccessToken
	if token == "" && config.TokenFile != "" {
		raw, err := os.ReadFile(config.TokenFile)
		if err != nil {
			return nil, fmt.Errorf("read token file: %w", err)
		}
		token = strings.TrimSpace(string(raw))
	}
	if token == "" {
		return nil, fmt.Errorf("no access token configured")
	}

	ts := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: token})
	httpClient := oauth2.NewClient(ctx, ts)
	if config.Timeout <= 0 {
		config.Timeout = 30 * time.Second
	}
	httpClient.Timeout = config.Timeout

	return &Client{
		httpClient: httpClient,
		config:     config,
		logger:     logger.WithComponent("jobber"),
	}, nil
}

type graphQLRequest struct {
	Query     string         `json:"query"`
	Variables map[string]any `json:"variables,omitempty"`
}

type graphQLError struct {
	Message string `json:"message"`
}

type graphQLResponse struct {
	Data   json.RawMessage `json:"data"`
	Errors []graphQLError  `json:"errors"`
}

// query posts one GraphQL document and decodes the data payload into out.
func (c *Client) query(ctx context.Context, query string, variables map[string]any, out any) error {
	body, err := json.Marshal(graphQLRequest{Query: query, Variables: variables})
	if err != nil {
		return fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.config.URL, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-JOBBER-GRAPHQL-VERSION", c.config.GraphQLVersion)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("execute request: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("unexpected status %d: %s", resp.StatusCode, truncate(raw, 200))
	}

	var envelope graphQLResponse
	if err := json.Unmarshal(raw, &envelope); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	if len(envelope.Errors) > 0 {
		msgs := make([]string, len(envelope.Errors))
		for i, e := range envelope.Errors {
			msgs[i] = e.Message
		}
		return fmt.Errorf("graphql errors: %s", strings.Join(msgs, "; "))
	}

	if err := json.Unmarshal(envelope.Data, out); err != nil {
		return fmt.Errorf("decode data: %w", err)
	}
	return nil
}

func truncate(raw []byte, n int) string {
	if len(raw) > n {
		return string(raw[:n]) + "..."
	}
	return string(raw)
}
