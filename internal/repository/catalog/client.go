package catalog

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/PizzaHomicide/reel/internal/log"
	"github.com/machinebox/graphql"
)

const requestTimeout = 10 * time.Second

// ErrNoEndpoint is returned when no catalog endpoint has been configured
var ErrNoEndpoint = errors.New("catalog endpoint is not configured")

// Client is the generic client for making queries to the catalog GraphQL API
type Client struct {
	client    *graphql.Client
	endpoint  string
	authToken string
}

// NewClient creates a client for the catalog at endpoint.  The token is optional.
func NewClient(endpoint, authToken string) (*Client, error) {
	if endpoint == "" {
		return nil, ErrNoEndpoint
	}

	httpClient := &http.Client{Timeout: requestTimeout}
	client := graphql.NewClient(endpoint, graphql.WithHTTPClient(httpClient))
	client.Log = func(s string) { log.Trace("Catalog GraphQL", "message", s) }

	log.Debug("Created catalog client", "endpoint", endpoint, "authenticated", authToken != "")
	return &Client{
		client:    client,
		endpoint:  endpoint,
		authToken: authToken,
	}, nil
}

func (c *Client) Query(ctx context.Context, query string, variables map[string]interface{}, result interface{}) error {
	req := graphql.NewRequest(query)

	if c.authToken != "" {
		req.Header.Set("Authorization", "Bearer "+c.authToken)
	}

	for key, value := range variables {
		req.Var(key, value)
	}

	if err := c.client.Run(ctx, req, result); err != nil {
		return classifyError(err)
	}
	return nil
}

type NetworkError struct {
	Err error
}

func (e NetworkError) Error() string {
	return fmt.Sprintf("network error: %v", e.Err)
}

func (e NetworkError) Unwrap() error {
	return e.Err
}

// classifyError wraps errors caused by the catalog being unreachable in a NetworkError
func classifyError(err error) error {
	var netErr *url.Error
	if errors.As(err, &netErr) && (netErr.Timeout() ||
		strings.Contains(err.Error(), "connection refused") ||
		strings.Contains(err.Error(), "no such host") ||
		strings.Contains(err.Error(), "i/o timeout")) {
		return NetworkError{Err: err}
	}
	return err
}
