// Package openai implements the realtime session transport over the OpenAI
// Realtime API websocket.
package openai

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"os"

	"github.com/gorilla/websocket"

	"github.com/Cloudinfo-Github/call-center-ai/core/realtime"
)

const defaultBaseURL = "wss://api.openai.com/v1/realtime"

type Client struct {
	apiKey  string
	baseURL string
	dialer  *websocket.Dialer
}

type ClientOption func(*Client)

func WithAPIKey(apiKey string) ClientOption {
	return func(c *Client) { c.apiKey = apiKey }
}

// WithBaseURL overrides the service endpoint, e.g. for an Azure OpenAI
// deployment or a test server.
func WithBaseURL(baseURL string) ClientOption {
	return func(c *Client) { c.baseURL = baseURL }
}

func WithDialer(dialer *websocket.Dialer) ClientOption {
	return func(c *Client) { c.dialer = dialer }
}

func NewClient(opts ...ClientOption) *Client {
	client := &Client{
		baseURL: defaultBaseURL,
		dialer:  websocket.DefaultDialer,
	}
	for _, opt := range opts {
		opt(client)
	}
	return client
}

// Connect opens a session with the given configuration. The returned session
// is ready to stream: the configuration has already been applied via
// session.update.
func (c *Client) Connect(ctx context.Context, config realtime.SessionConfig) (*Session, error) {
	apiKey := c.apiKey
	if apiKey == "" {
		apiKey = os.Getenv("OPENAI_API_KEY")
	}
	if apiKey == "" {
		return nil, &realtime.ConnectError{Err: fmt.Errorf("openai api key not found")}
	}

	endpoint, err := url.Parse(c.baseURL)
	if err != nil {
		return nil, &realtime.ConnectError{Err: fmt.Errorf("invalid base url: %w", err)}
	}
	query := endpoint.Query()
	query.Set("model", config.Model)
	endpoint.RawQuery = query.Encode()

	conn, _, err := c.dialer.DialContext(ctx, endpoint.String(), http.Header{
		"Authorization": {"Bearer " + apiKey},
		"OpenAI-Beta":   {"realtime=v1"},
	})
	if err != nil {
		return nil, &realtime.ConnectError{Err: fmt.Errorf("failed to open socket connection: %w", err)}
	}

	session := &Session{conn: conn}
	if err := session.sendSessionUpdate(config); err != nil {
		_ = session.Close()
		return nil, &realtime.ConnectError{Err: fmt.Errorf("failed to configure session: %w", err)}
	}

	return session, nil
}
