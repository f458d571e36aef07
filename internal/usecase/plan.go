package usecase

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"unicode/utf8"

	"training-planner/internal/domain"
	"training-planner/internal/normalizer"
	"training-planner/internal/projector"
)

const defaultMaxMessage = 4000

type LLMClient interface {
	Chat(ctx context.Context, messages []domain.ChatMessage) (string, error)
}

type DocumentProjector interface {
	Apply(ctx context.Context, plan domain.TrainingPlan) (projector.Report, error)
	Document(ctx context.Context) ([]byte, error)
}

type httpStatusCoder interface {
	HTTPStatusCode() int
}

// PlanService turns user requests into training plans and writes plans into
// the training plan document.
type PlanService struct {
	llm           LLMClient
	docs          DocumentProjector
	maxMessageLen int
	log           *slog.Logger
}

type ChatInput struct {
	Message string
	History []domain.ChatMessage
}

func NewPlanService(llm LLMClient, docs DocumentProjector, maxMessageLen int, log *slog.Logger) (*PlanService, error) {
	if llm == nil {
		return nil, errors.New("usecase: llm client must not be nil")
	}
	if docs == nil {
		return nil, errors.New("usecase: document projector must not be nil")
	}
	if maxMessageLen <= 0 {
		maxMessageLen = defaultMaxMessage
	}
	if log == nil {
		log = slog.Default()
	}
	return &PlanService{
		llm:           llm,
		docs:          docs,
		maxMessageLen: maxMessageLen,
		log:           log,
	}, nil
}

// Chat answers message in the context of history. The payload carries a
// training plan only when the model reply was structured.
func (s *PlanService) Chat(ctx context.Context, in ChatInput) (domain.PlanPayload, error) {
	message := strings.TrimSpace(in.Message)
	if message == "" {
		return domain.PlanPayload{}, newError(ErrorInvalidInput, "empty_message", nil)
	}
	if utf8.RuneCountInString(message) > s.maxMessageLen {
		return domain.PlanPayload{}, newError(ErrorInvalidInput, "message_too_long", nil)
	}
	return s.complete(ctx, buildChatMessages(message, in.History))
}

// GeneratePlan asks for a plan from a single prompt. An empty prompt asks for
// a general weekly plan.
func (s *PlanService) GeneratePlan(ctx context.Context, prompt string) (domain.PlanPayload, error) {
	if utf8.RuneCountInString(prompt) > s.maxMessageLen {
		return domain.PlanPayload{}, newError(ErrorInvalidInput, "message_too_long", nil)
	}
	return s.complete(ctx, buildPlanMessages(prompt))
}

// UpdatePlan projects plan into the document.
func (s *PlanService) UpdatePlan(ctx context.Context, plan *domain.TrainingPlan) error {
	if plan == nil {
		return newError(ErrorInvalidInput, "missing_training_plan", nil)
	}
	report, err := s.docs.Apply(ctx, *plan)
	if err != nil {
		return documentError(err)
	}
	s.log.Info("training plan document updated", "updated", report.Updated, "missing", report.Missing)
	return nil
}

// Document returns the current training plan document.
func (s *PlanService) Document(ctx context.Context) (string, error) {
	doc, err := s.docs.Document(ctx)
	if err != nil {
		return "", documentError(err)
	}
	return string(doc), nil
}

func (s *PlanService) complete(ctx context.Context, messages []domain.ChatMessage) (domain.PlanPayload, error) {
	raw, err := s.llm.Chat(ctx, messages)
	if err != nil {
		if status, ok := upstreamStatusCode(err); ok && status == 429 {
			return domain.PlanPayload{}, newError(ErrorRateLimited, "model_rate_limited", err)
		}
		return domain.PlanPayload{}, newError(ErrorUpstream, "model_error", err)
	}

	payload := normalizer.Normalize(raw)
	s.log.Debug("model reply normalized", "structured", payload.TrainingPlan != nil, "bytes", len(raw))
	return payload, nil
}

func documentError(err error) *Error {
	var docErr *projector.DocumentError
	if errors.As(err, &docErr) {
		if docErr.Op == projector.OpWrite {
			return newError(ErrorInternal, "document_write_error", err)
		}
		return newError(ErrorInternal, "document_read_error", err)
	}
	return newError(ErrorInternal, "projection_error", err)
}

func upstreamStatusCode(err error) (int, bool) {
	var statusErr httpStatusCoder
	if !errors.As(err, &statusErr) {
		return 0, false
	}
	return statusErr.HTTPStatusCode(), true
}
