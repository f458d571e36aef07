package handler

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"time"

	"training-planner/internal/domain"
	"training-planner/internal/usecase"
)

const maxBodyBytes = 1 << 20

type PlanUseCase interface {
	Chat(ctx context.Context, in usecase.ChatInput) (domain.PlanPayload, error)
	GeneratePlan(ctx context.Context, prompt string) (domain.PlanPayload, error)
	UpdatePlan(ctx context.Context, plan *domain.TrainingPlan) error
	Document(ctx context.Context) (string, error)
}

// ModelInfo is reported by the health endpoint.
type ModelInfo struct {
	Endpoint string `json:"endpoint"`
	Model    string `json:"model"`
	HasToken bool   `json:"hasToken"`
}

type chatRequest struct {
	Message string               `json:"message"`
	History []domain.ChatMessage `json:"history"`
}

type generateRequest struct {
	Prompt string `json:"prompt"`
}

type updateRequest struct {
	TrainingPlan *domain.TrainingPlan `json:"trainingPlan"`
}

type updateResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

type documentResponse struct {
	Message     string `json:"message"`
	HTMLContent string `json:"htmlContent"`
}

type healthResponse struct {
	Status      string    `json:"status"`
	Timestamp   string    `json:"timestamp"`
	ModelConfig ModelInfo `json:"modelConfig"`
}

type errorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details"`
	Code    string `json:"code"`
}

type Handler struct {
	uc    PlanUseCase
	model ModelInfo
	log   *slog.Logger
	now   func() time.Time
}

func NewHandler(uc PlanUseCase, model ModelInfo, log *slog.Logger) (*Handler, error) {
	if uc == nil {
		return nil, errors.New("handler: use case must not be nil")
	}
	if log == nil {
		log = slog.Default()
	}
	return &Handler{uc: uc, model: model, log: log, now: time.Now}, nil
}

func (h *Handler) Chat(w http.ResponseWriter, r *http.Request) {
	const failure = "chat request failed"
	var req chatRequest
	if err := decodeBody(w, r, &req, false); err != nil {
		h.writeError(w, r, failure, invalidBody(err))
		return
	}
	out, err := h.uc.Chat(r.Context(), usecase.ChatInput{Message: req.Message, History: req.History})
	if err != nil {
		h.writeError(w, r, failure, err)
		return
	}
	writeJSON(w, http.StatusOK, out)
}

func (h *Handler) GeneratePlan(w http.ResponseWriter, r *http.Request) {
	const failure = "failed to generate training plan"
	var req generateRequest
	if err := decodeBody(w, r, &req, true); err != nil {
		h.writeError(w, r, failure, invalidBody(err))
		return
	}
	out, err := h.uc.GeneratePlan(r.Context(), req.Prompt)
	if err != nil {
		h.writeError(w, r, failure, err)
		return
	}
	writeJSON(w, http.StatusOK, out)
}

func (h *Handler) UpdatePlan(w http.ResponseWriter, r *http.Request) {
	const failure = "failed to update training plan"
	var req updateRequest
	if err := decodeBody(w, r, &req, false); err != nil {
		h.writeError(w, r, failure, invalidBody(err))
		return
	}
	if err := h.uc.UpdatePlan(r.Context(), req.TrainingPlan); err != nil {
		h.writeError(w, r, failure, err)
		return
	}
	writeJSON(w, http.StatusOK, updateResponse{Success: true, Message: "training plan updated"})
}

func (h *Handler) GetDocument(w http.ResponseWriter, r *http.Request) {
	doc, err := h.uc.Document(r.Context())
	if err != nil {
		h.writeError(w, r, "failed to read training plan", err)
		return
	}
	writeJSON(w, http.StatusOK, documentResponse{Message: "training plan loaded", HTMLContent: doc})
}

func (h *Handler) Health(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, healthResponse{
		Status:      "healthy",
		Timestamp:   h.now().UTC().Format(time.RFC3339),
		ModelConfig: h.model,
	})
}

func decodeBody(w http.ResponseWriter, r *http.Request, dst any, allowEmpty bool) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err := dec.Decode(dst); err != nil {
		if allowEmpty && errors.Is(err, io.EOF) {
			return nil
		}
		return err
	}
	return nil
}

func invalidBody(err error) error {
	return &usecase.Error{Code: usecase.ErrorInvalidInput, Reason: "invalid_body", Err: err}
}

func (h *Handler) writeError(w http.ResponseWriter, r *http.Request, message string, err error) {
	status, code, details := mapError(err)
	attrs := []any{"err", err, "status", status, "code", code, "correlation_id", correlationIDFrom(r.Context())}
	if status >= http.StatusInternalServerError {
		h.log.Error(message, attrs...)
	} else {
		h.log.Warn(message, attrs...)
	}
	writeJSON(w, status, errorResponse{Error: message, Details: details, Code: code})
}

func mapError(err error) (int, string, string) {
	var ucErr *usecase.Error
	if !errors.As(err, &ucErr) {
		return http.StatusInternalServerError, string(usecase.ErrorInternal), err.Error()
	}
	switch ucErr.Code {
	case usecase.ErrorInvalidInput:
		return http.StatusBadRequest, string(ucErr.Code), ucErr.Detail()
	case usecase.ErrorRateLimited:
		return http.StatusTooManyRequests, string(ucErr.Code), ucErr.Detail()
	case usecase.ErrorUpstream:
		return http.StatusBadGateway, string(ucErr.Code), ucErr.Detail()
	default:
		return http.StatusInternalServerError, string(usecase.ErrorInternal), ucErr.Detail()
	}
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	body, err := json.Marshal(payload)
	if err != nil {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`{"error":"failed to encode response","details":"","code":"INTERNAL_ERROR"}`))
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write(body)
}
