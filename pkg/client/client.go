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

	"github.com/diwise/service-chassis/pkg/infrastructure/o11y/tracing"
	"github.com/florax/florax-dashboard/internal/pkg/infrastructure/logging"
	"github.com/google/uuid"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"golang.org/x/oauth2"
)

//go:generate moq -rm -out client_mock.go . APIClient

// APIClient issues calls against the FloraX REST API. Successful JSON bodies
// are decoded into out, unless out is a *[]byte which receives the raw body.
type APIClient interface {
	Do(ctx context.Context, method, path string, params Params, out any) error
	BaseURL() string
}

// TokenSource is the session slot the client reads the bearer token from
// and clears when the backend rejects it.
type TokenSource interface {
	Token(ctx context.Context) (*oauth2.Token, bool)
	Clear(ctx context.Context) error
}

// UnauthorizedHandler is invoked once for every 401 response, after the
// token has been cleared.
type UnauthorizedHandler func(ctx context.Context)

// Params carries the optional query string and JSON body of a request.
type Params struct {
	Query url.Values
	Body  any
}

var (
	ErrNetwork      = errors.New("no response from server")
	ErrUnauthorized = errors.New("unauthorized")
)

// HTTPError is returned for any non-2xx response.
type HTTPError struct {
	StatusCode int
	Body       []byte
}

func (e *HTTPError) Error() string {
	return fmt.Sprintf("request failed with status code %d", e.StatusCode)
}

func (e *HTTPError) Is(target error) bool {
	return target == ErrUnauthorized && e.StatusCode == http.StatusUnauthorized
}

var tracer = otel.Tracer("florax-dashboard/client")

type apiClient struct {
	url            string
	httpClient     *http.Client
	timeout        *time.Duration
	tokens         TokenSource
	onUnauthorized UnauthorizedHandler
}

// Option configures a client
type Option func(*apiClient)

// WithHTTPClient replaces the default instrumented client. A nil client
// keeps the default.
func WithHTTPClient(httpClient *http.Client) Option {
	return func(c *apiClient) {
		if httpClient != nil {
			c.httpClient = httpClient
		}
	}
}

// WithTimeout sets a timeout on every call, whichever http client ends up
// being used. Zero means no timeout.
func WithTimeout(timeout time.Duration) Option {
	return func(c *apiClient) {
		c.timeout = &timeout
	}
}

func WithTokenSource(tokens TokenSource) Option {
	return func(c *apiClient) {
		c.tokens = tokens
	}
}

func WithUnauthorizedHandler(h UnauthorizedHandler) Option {
	return func(c *apiClient) {
		c.onUnauthorized = h
	}
}

// New creates a client bound to baseURL. The base address is fixed for the
// lifetime of the client.
func New(baseURL string, opts ...Option) APIClient {
	c := &apiClient{
		url: strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{
			Transport: otelhttp.NewTransport(http.DefaultTransport),
		},
	}

	for _, opt := range opts {
		opt(c)
	}

	if c.timeout != nil {
		httpClient := *c.httpClient
		httpClient.Timeout = *c.timeout
		c.httpClient = &httpClient
	}

	return c
}

func (c *apiClient) BaseURL() string {
	return c.url
}

func (c *apiClient) Do(ctx context.Context, method, path string, params Params, out any) error {
	var err error
	ctx, span := tracer.Start(ctx, strings.ToLower(method)+" "+path)
	defer func() { tracing.RecordAnyErrorAndEndSpan(err, span) }()

	requestID := uuid.NewString()
	span.SetAttributes(attribute.String("request_id", requestID))

	log := logging.GetLoggerFromContext(ctx).With().Str("method", method).Str("path", path).Str("request_id", requestID).Logger()

	u := c.url + path
	if len(params.Query) > 0 {
		u += "?" + params.Query.Encode()
	}

	var body io.Reader
	if params.Body != nil {
		b, marshalErr := json.Marshal(params.Body)
		if marshalErr != nil {
			err = fmt.Errorf("failed to marshal request body: %w", marshalErr)
			return err
		}
		body = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, u, body)
	if err != nil {
		err = fmt.Errorf("failed to create http request: %w", err)
		return err
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Request-ID", requestID)

	if c.tokens != nil {
		if token, ok := c.tokens.Token(ctx); ok {
			token.SetAuthHeader(req)
		}
	}

	log.Debug().Msg("sending request")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		err = fmt.Errorf("%w: %w", ErrNetwork, err)
		log.Error().Err(err).Msg("request failed")
		return err
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		err = fmt.Errorf("failed to read response body: %w", err)
		return err
	}

	span.SetAttributes(attribute.Int("http.status_code", resp.StatusCode))

	if resp.StatusCode == http.StatusUnauthorized {
		c.unauthorized(ctx)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		err = &HTTPError{StatusCode: resp.StatusCode, Body: respBody}
		log.Error().Int("status", resp.StatusCode).Msg("request failed")
		return err
	}

	if raw, ok := out.(*[]byte); ok {
		*raw = respBody
		return nil
	}

	if out == nil || len(bytes.TrimSpace(respBody)) == 0 {
		return nil
	}

	err = json.Unmarshal(respBody, out)
	if err != nil {
		err = fmt.Errorf("failed to unmarshal response body: %w", err)
		return err
	}

	return nil
}

func (c *apiClient) unauthorized(ctx context.Context) {
	log := logging.GetLoggerFromContext(ctx)

	if c.tokens != nil {
		if err := c.tokens.Clear(ctx); err != nil {
			log.Error().Err(err).Msg("could not clear session token")
		}
	}

	if c.onUnauthorized != nil {
		c.onUnauthorized(ctx)
	}
}
