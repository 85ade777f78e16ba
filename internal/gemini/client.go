// Package gemini calls the Google Gemini API to generate assessment text.
package gemini

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"google.golang.org/genai"

	"github.com/tjfontaine/lca-gateway/internal/tokens"
)

const (
	// DefaultModel is used when no model is configured.
	DefaultModel = "gemini-1.5-flash"

	tracerName = "github.com/tjfontaine/lca-gateway/internal/gemini"
)

// Generator produces free text for a prompt.
type Generator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

// Config holds the settings a Client is built from.
type Config struct {
	APIKey string
	Model  string
}

// Option configures the client.
type Option func(*options)

type options struct {
	httpClient *http.Client
	baseURL    string
	logger     *slog.Logger
	counter    *tokens.Counter
}

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(httpClient *http.Client) Option {
	return func(o *options) {
		o.httpClient = httpClient
	}
}

// WithBaseURL overrides the API endpoint.
func WithBaseURL(baseURL string) Option {
	return func(o *options) {
		o.baseURL = strings.TrimSuffix(baseURL, "/")
	}
}

// WithLogger sets the logger used for request diagnostics.
func WithLogger(logger *slog.Logger) Option {
	return func(o *options) {
		o.logger = logger
	}
}

// WithTokenCounter sets the counter used to estimate prompt size.
func WithTokenCounter(counter *tokens.Counter) Option {
	return func(o *options) {
		o.counter = counter
	}
}

// Client sends prompts to a Gemini model. One call per Generate; no retries.
type Client struct {
	client  *genai.Client
	model   string
	logger  *slog.Logger
	counter *tokens.Counter
}

// New creates a Gemini client. It fails when the API key is missing.
func New(ctx context.Context, cfg Config, opts ...Option) (*Client, error) {
	apiKey := strings.TrimSpace(cfg.APIKey)
	if apiKey == "" {
		return nil, fmt.Errorf("gemini: API key is required")
	}

	model := strings.TrimSpace(cfg.Model)
	if model == "" {
		model = DefaultModel
	}

	o := &options{}
	for _, opt := range opts {
		opt(o)
	}
	if o.logger == nil {
		o.logger = slog.Default()
	}
	if o.counter == nil {
		o.counter = tokens.NewCounter()
	}

	cc := &genai.ClientConfig{
		APIKey:     apiKey,
		Backend:    genai.BackendGeminiAPI,
		HTTPClient: o.httpClient,
	}
	if o.baseURL != "" {
		cc.HTTPOptions = genai.HTTPOptions{BaseURL: o.baseURL}
	}

	client, err := genai.NewClient(ctx, cc)
	if err != nil {
		return nil, fmt.Errorf("gemini: failed to create client: %w", err)
	}

	return &Client{
		client:  client,
		model:   model,
		logger:  o.logger,
		counter: o.counter,
	}, nil
}

// Model returns the model identifier requests are sent to.
func (c *Client) Model() string {
	return c.model
}

// Generate sends prompt to the model and returns the text of the first
// candidate. Every failure is returned as a *ServiceError.
func (c *Client) Generate(ctx context.Context, prompt string) (string, error) {
	promptTokens, estimated := c.counter.Count(prompt)

	ctx, span := otel.Tracer(tracerName).Start(ctx, "gemini.generate", trace.WithSpanKind(trace.SpanKindClient))
	defer span.End()
	span.SetAttributes(
		attribute.String("gemini.model", c.model),
		attribute.Int("gemini.prompt_tokens", promptTokens),
		attribute.Bool("gemini.prompt_tokens_estimated", estimated),
	)

	c.logger.DebugContext(ctx, "sending request to gemini",
		slog.String("model", c.model),
		slog.Int("prompt_tokens", promptTokens),
	)

	resp, err := c.client.Models.GenerateContent(ctx, c.model, genai.Text(prompt), nil)
	if err != nil {
		serr := classify("generate", err)
		span.RecordError(serr)
		span.SetStatus(codes.Error, serr.Message)
		return "", serr
	}

	text := resp.Text()
	if strings.TrimSpace(text) == "" {
		serr := &ServiceError{Op: "generate", Kind: KindEmpty, Message: emptyReason(resp)}
		span.RecordError(serr)
		span.SetStatus(codes.Error, serr.Message)
		return "", serr
	}

	span.SetAttributes(attribute.Int("gemini.response_chars", len(text)))
	c.logger.DebugContext(ctx, "received gemini response",
		slog.String("model", c.model),
		slog.Int("response_chars", len(text)),
	)

	return text, nil
}

// emptyReason explains why a response carried no text.
func emptyReason(resp *genai.GenerateContentResponse) string {
	if resp == nil {
		return "model returned no response"
	}
	if resp.PromptFeedback != nil && resp.PromptFeedback.BlockReason != "" {
		return fmt.Sprintf("prompt blocked: %s", resp.PromptFeedback.BlockReason)
	}
	if len(resp.Candidates) == 0 {
		return "model returned no candidates"
	}
	if fr := resp.Candidates[0].FinishReason; fr != "" {
		return fmt.Sprintf("model returned no text (finish reason %s)", fr)
	}
	return "model returned no text"
}
