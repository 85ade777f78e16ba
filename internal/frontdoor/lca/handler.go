// Package lca is the HTTP frontdoor for lifecycle assessments.
package lca

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/tjfontaine/lca-gateway/internal/domain"
	"github.com/tjfontaine/lca-gateway/internal/gemini"
	lcapkg "github.com/tjfontaine/lca-gateway/internal/lca"
	"github.com/tjfontaine/lca-gateway/internal/server"
)

// UpstreamUnavailableMessage is sent when the model API cannot be reached.
const UpstreamUnavailableMessage = "The AI assessment service is temporarily unavailable. Please try again later."

// AssessResponse is the success envelope for POST /assess.
type AssessResponse struct {
	Success  bool                    `json:"success"`
	Data     lcapkg.AssessmentResult `json:"data"`
	Metadata Metadata                `json:"metadata"`
}

type Metadata struct {
	RequestID        string `json:"request_id"`
	ProcessingTimeMS int64  `json:"processing_time_ms"`
	StagesAnalyzed   int    `json:"stages_analyzed"`
	Timestamp        string `json:"timestamp"`
	Disclaimer       string `json:"disclaimer"`
}

// FailureResponse reports an assessment that could not be produced.
type FailureResponse struct {
	Success   bool   `json:"success"`
	Error     string `json:"error"`
	Message   string `json:"message"`
	Timestamp string `json:"timestamp"`
}

type HealthResponse struct {
	Status    string   `json:"status"`
	Service   string   `json:"service"`
	Version   string   `json:"version"`
	Features  []string `json:"features"`
	Timestamp string   `json:"timestamp"`
}

type SupportedMaterialsResponse struct {
	Materials []string `json:"materials"`
	Processes []string `json:"processes"`
	Note      string   `json:"note"`
	Timestamp string   `json:"timestamp"`
}

// Option configures the handler.
type Option func(*Handler)

// WithClock replaces time.Now, for deterministic timestamps in tests.
func WithClock(now func() time.Time) Option {
	return func(h *Handler) {
		h.now = now
	}
}

// WithLogger sets the logger used for assessment events.
func WithLogger(logger *slog.Logger) Option {
	return func(h *Handler) {
		h.logger = logger
	}
}

// WithDevelopment exposes internal error messages in failure responses.
func WithDevelopment(development bool) Option {
	return func(h *Handler) {
		h.development = development
	}
}

type Handler struct {
	generator   gemini.Generator
	logger      *slog.Logger
	now         func() time.Time
	development bool
}

func NewHandler(generator gemini.Generator, opts ...Option) *Handler {
	h := &Handler{
		generator: generator,
		logger:    slog.Default(),
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// HandleAssess validates the request, asks the model for an assessment and
// returns the parsed stages. Model output that does not parse is replaced by
// the fixed fallback result; the response does not say so.
func (h *Handler) HandleAssess(w http.ResponseWriter, r *http.Request) {
	start := h.now()
	ctx := r.Context()
	requestID := server.GetRequestID(ctx)
	server.AddLogField(ctx, "frontdoor", "lca")

	body, err := io.ReadAll(r.Body)
	if err != nil {
		apiErr := domain.ErrInvalidRequest("Request body could not be read").WithCode(domain.ErrorCodeMalformedBody)
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			apiErr = domain.ErrInvalidRequest(fmt.Sprintf("Request body exceeds %d bytes", maxErr.Limit)).
				WithCode(domain.ErrorCodeBodyTooLarge).
				WithStatusCode(http.StatusRequestEntityTooLarge)
		}
		server.AddError(ctx, err)
		h.writeRequestError(w, apiErr)
		return
	}

	fields, err := lcapkg.DecodeFields(body)
	if err != nil {
		server.AddError(ctx, err)
		h.writeRequestError(w, err)
		return
	}

	req, err := lcapkg.Validate(fields)
	if err != nil {
		server.AddError(ctx, err)
		h.writeRequestError(w, err)
		return
	}

	server.AddLogField(ctx, "material", req.Material)
	server.AddLogField(ctx, "process", req.Process)

	h.logger.InfoContext(ctx, "lca assessment request",
		slog.String("request_id", requestID),
		slog.String("material", req.Material),
		slog.String("process", req.Process),
		slog.String("timestamp", server.Timestamp(start)),
		slog.String("ip", server.ClientIP(r)),
	)

	text, err := h.generator.Generate(ctx, lcapkg.BuildPrompt(req))
	if err != nil {
		h.logger.ErrorContext(ctx, "lca assessment failed",
			slog.String("request_id", requestID),
			slog.String("material", req.Material),
			slog.String("process", req.Process),
			slog.String("timestamp", server.Timestamp(h.now())),
			slog.String("ip", server.ClientIP(r)),
			slog.String("error", err.Error()),
		)
		server.AddError(ctx, err)
		h.writeFailure(w, err)
		return
	}

	result, outcome := lcapkg.Parse(text)
	if outcome.Fallback {
		h.logger.WarnContext(ctx, "model response replaced by fallback assessment",
			slog.String("request_id", requestID),
			slog.String("reason", outcome.Reason),
			slog.Int("response_chars", len(text)),
		)
		server.AddLogField(ctx, "fallback", "true")
	}

	finished := h.now()
	elapsed := finished.Sub(start)

	h.logger.InfoContext(ctx, "lca assessment completed",
		slog.String("request_id", requestID),
		slog.Int("stages", len(result)),
		slog.Any("stage_names", result.StageNames()),
		slog.Duration("processing_time", elapsed),
		slog.Bool("fallback", outcome.Fallback),
	)
	server.AddLogField(ctx, "stages", strconv.Itoa(len(result)))

	server.WriteJSON(w, http.StatusOK, AssessResponse{
		Success: true,
		Data:    result,
		Metadata: Metadata{
			RequestID:        fmt.Sprintf("lca_%d", finished.UnixMilli()),
			ProcessingTimeMS: elapsed.Milliseconds(),
			StagesAnalyzed:   len(result),
			Timestamp:        server.Timestamp(finished),
			Disclaimer:       lcapkg.Disclaimer,
		},
	})
}

// HandleHealth reports the static service descriptor.
func (h *Handler) HandleHealth(w http.ResponseWriter, r *http.Request) {
	server.WriteJSON(w, http.StatusOK, HealthResponse{
		Status:    "healthy",
		Service:   lcapkg.ServiceName,
		Version:   lcapkg.ServiceVersion,
		Features:  lcapkg.Features,
		Timestamp: server.Timestamp(h.now()),
	})
}

func (h *Handler) HandleSupportedMaterials(w http.ResponseWriter, r *http.Request) {
	server.WriteJSON(w, http.StatusOK, SupportedMaterialsResponse{
		Materials: lcapkg.SupportedMaterials,
		Processes: lcapkg.SupportedProcesses,
		Note:      lcapkg.CatalogNote,
		Timestamp: server.Timestamp(h.now()),
	})
}

// writeRequestError answers a request the client got wrong.
func (h *Handler) writeRequestError(w http.ResponseWriter, err error) {
	var apiErr *domain.APIError
	if !errors.As(err, &apiErr) {
		apiErr = domain.ErrInvalidRequest(err.Error())
	}

	title := "Validation Error"
	if apiErr.Code == domain.ErrorCodeBodyTooLarge {
		title = "Payload Too Large"
	}
	server.WriteJSON(w, apiErr.HTTPStatusCode(), server.ErrorBody{
		Error:   title,
		Message: apiErr.Message,
	})
}

// writeFailure translates a model call error into the failure envelope.
func (h *Handler) writeFailure(w http.ResponseWriter, err error) {
	apiErr := classifyFailure(err, h.development)

	title := "Assessment Failed"
	switch apiErr.Type {
	case domain.ErrorTypeUpstream:
		title = "AI Service Unavailable"
	case domain.ErrorTypeRateLimit:
		title = "Rate Limit Exceeded"
	}

	server.WriteJSON(w, apiErr.HTTPStatusCode(), FailureResponse{
		Success:   false,
		Error:     title,
		Message:   apiErr.Message,
		Timestamp: server.Timestamp(h.now()),
	})
}

// classifyFailure maps a Generate error onto the API error taxonomy. Quota
// rejections from the model API become rate limit errors and other API or
// transport failures become upstream errors. Everything else is a server
// error whose detail is only kept in development.
func classifyFailure(err error, development bool) *domain.APIError {
	var serr *gemini.ServiceError
	if errors.As(err, &serr) {
		switch {
		case serr.RateLimited():
			return domain.ErrRateLimit(server.RateLimitExceededMessage)
		case serr.Upstream():
			return domain.ErrUpstream(UpstreamUnavailableMessage)
		}
	}

	if development {
		return domain.ErrServer(err.Error())
	}
	return domain.ErrServer(server.GenericErrorMessage)
}
