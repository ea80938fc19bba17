package summarize

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"text-summarizer/internal/domain/entity"
	"text-summarizer/internal/handler/http/respond"
	summarizeUC "text-summarizer/internal/usecase/summarize"
)

// Handler serves POST /api/summarize.
type Handler struct {
	Svc summarizeUC.Summarizer

	// MaxBodyBytes caps the request body. Zero or negative means unlimited.
	MaxBodyBytes int64
}

// Register registers the summarize endpoint with the given mux.
// Only POST is routed; other methods get 405 from the mux.
func Register(mux *http.ServeMux, h Handler) {
	mux.Handle("POST /api/summarize", h)
}

// ServeHTTP 要約生成
//
// 200 {"summary": "..."} on success. 400 for an empty body, a malformed
// payload or whitespace-only text, 413 for an oversized body and 500 with a
// fixed message for every summarization failure.
func (h Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	req, err := h.decode(w, r)
	if err != nil {
		respond.SafeError(r.Context(), w, intakeError(err))
		return
	}

	if err := req.Validate(); err != nil {
		respond.SafeError(r.Context(), w, intakeError(err))
		return
	}

	summary, err := h.Svc.Summarize(r.Context(), req)
	if err != nil {
		respond.SafeError(r.Context(), w, summarizeError(err))
		return
	}

	respond.JSON(w, http.StatusOK, Response{Summary: summary})
}

// decode reads the whole body and parses it into a SummarizeRequest.
// The hints are carried through verbatim.
func (h Handler) decode(w http.ResponseWriter, r *http.Request) (entity.SummarizeRequest, error) {
	body := r.Body
	if body == nil {
		return entity.SummarizeRequest{}, entity.ErrEmptyBody
	}
	if h.MaxBodyBytes > 0 {
		body = http.MaxBytesReader(w, body, h.MaxBodyBytes)
	}

	data, err := io.ReadAll(body)
	if err != nil {
		return entity.SummarizeRequest{}, fmt.Errorf("read body: %w", err)
	}
	if len(bytes.TrimSpace(data)) == 0 {
		return entity.SummarizeRequest{}, entity.ErrEmptyBody
	}

	var payload *Request
	if err := json.Unmarshal(data, &payload); err != nil {
		return entity.SummarizeRequest{}, fmt.Errorf("%w: %w", entity.ErrMalformedPayload, err)
	}
	// a literal null is as good as no body
	if payload == nil {
		return entity.SummarizeRequest{}, entity.ErrEmptyBody
	}

	return entity.SummarizeRequest{
		Text:        payload.Text,
		SummaryType: entity.SummaryType(payload.SummaryType),
		Length:      entity.SummaryLength(payload.Length),
	}, nil
}

func intakeError(err error) error {
	var maxErr *http.MaxBytesError
	switch {
	case errors.As(err, &maxErr):
		return respond.NewAppError(http.StatusRequestEntityTooLarge, MsgBodyTooLarge, err)
	case errors.Is(err, entity.ErrEmptyBody):
		return respond.NewAppError(http.StatusBadRequest, MsgNoBody, err)
	case errors.Is(err, entity.ErrMalformedPayload):
		return respond.NewAppError(http.StatusBadRequest, MsgInvalidBody, err)
	case errors.Is(err, entity.ErrTextRequired):
		return respond.NewAppError(http.StatusBadRequest, MsgTextRequired, err)
	default:
		return err
	}
}

func summarizeError(err error) error {
	switch {
	case errors.Is(err, summarizeUC.ErrConfiguration):
		return respond.NewAppError(http.StatusInternalServerError, MsgMissingAPIKey, err)
	case errors.Is(err, summarizeUC.ErrStaging), errors.Is(err, summarizeUC.ErrSpawn):
		return respond.NewAppError(http.StatusInternalServerError, MsgStartFailed, err)
	case errors.Is(err, summarizeUC.ErrProcessFailure):
		return respond.NewAppError(http.StatusInternalServerError, MsgGenerationFailed, err)
	default:
		return err
	}
}
