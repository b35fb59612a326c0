package contact

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log"
	"math"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/orsayn/site-api/internal/contact/application"
	"github.com/orsayn/site-api/internal/contact/domain"
	"github.com/orsayn/site-api/internal/interfaces/http/common"
)

// Route is the contact form endpoint.
const Route = "/api/contact"

const (
	MessageTooManyRequests = "Too many requests. Please wait 1 minute."
	MessageSuccess         = "Candidature envoyée avec succès"
	MessageDegraded        = "Candidature envoyée (CRM temporairement indisponible)"
	MessageUnexpected      = "Une erreur est survenue. Veuillez réessayer ou nous contacter directement."
)

// Submitter is the contact pipeline as seen by the HTTP layer.
type Submitter interface {
	Admit(ctx context.Context, clientID, method, path string) application.Decision
	Process(ctx context.Context, clientID string, sub domain.Submission) domain.Result
}

// Handler serves the contact form endpoint.
type Handler struct {
	logger     *log.Logger
	submitter  Submitter
	trustProxy bool
}

// Config defines dependencies required by Handler.
type Config struct {
	Logger    *log.Logger
	Submitter Submitter
	// TrustProxyHeaders keys the gate on X-Forwarded-For / X-Real-IP.
	TrustProxyHeaders bool
}

func NewHandler(cfg Config) *Handler {
	return &Handler{
		logger:     cfg.Logger,
		submitter:  cfg.Submitter,
		trustProxy: cfg.TrustProxyHeaders,
	}
}

// Register mounts the contact route. Every method is routed here so that
// non-POST requests get the JSON 405 body.
func (h *Handler) Register(r chi.Router) {
	r.HandleFunc(Route, h.submitHandler())
}

type successResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

func (h *Handler) submitHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			common.MethodNotAllowed(h.logger, w, http.MethodPost)
			return
		}

		defer func() {
			if rec := recover(); rec != nil {
				h.logf("contact: unexpected panic: %v", rec)
				common.WriteError(h.logger, w, http.StatusInternalServerError, MessageUnexpected)
			}
		}()

		clientID := common.ClientID(r, h.trustProxy)
		decision := h.submitter.Admit(r.Context(), clientID, r.Method, Route)
		if !decision.Allowed {
			w.Header().Set("Retry-After", retryAfterSeconds(decision.RetryAfter))
			common.WriteError(h.logger, w, http.StatusTooManyRequests, MessageTooManyRequests)
			return
		}

		sub, err := decodeSubmission(r.Body)
		if err != nil {
			h.logf("contact: decode body from %s: %v", clientID, err)
			common.WriteError(h.logger, w, http.StatusInternalServerError, MessageUnexpected)
			return
		}

		result := h.submitter.Process(r.Context(), clientID, sub)
		status, payload := Outcome(result)
		common.WriteJSON(h.logger, w, status, payload)
	}
}

// decodeSubmission reads exactly one JSON value from body. Anything but
// whitespace after it is an error.
func decodeSubmission(body io.Reader) (domain.Submission, error) {
	dec := json.NewDecoder(io.LimitReader(body, common.MaxContactRequestBody))
	var sub domain.Submission
	if err := dec.Decode(&sub); err != nil {
		return domain.Submission{}, err
	}
	if err := dec.Decode(&json.RawMessage{}); !errors.Is(err, io.EOF) {
		return domain.Submission{}, errors.New("unexpected data after the JSON body")
	}
	return sub, nil
}

// Outcome maps a pipeline result to the HTTP status and body. A failed record
// write only softens the message; a failed email is not visible at all.
func Outcome(result domain.Result) (int, any) {
	switch {
	case result.Invalid != nil:
		return http.StatusBadRequest, common.ErrorResponse{Error: result.Invalid.Message}
	case result.Degraded():
		return http.StatusOK, successResponse{Success: true, Message: MessageDegraded}
	case result.Accepted():
		return http.StatusOK, successResponse{Success: true, Message: MessageSuccess}
	default:
		return http.StatusInternalServerError, common.ErrorResponse{Error: MessageUnexpected}
	}
}

func retryAfterSeconds(d time.Duration) string {
	seconds := int(math.Ceil(d.Seconds()))
	if seconds < 1 {
		seconds = 1
	}
	return strconv.Itoa(seconds)
}

func (h *Handler) logf(format string, args ...any) {
	if h.logger != nil {
		h.logger.Printf(format, args...)
	}
}
