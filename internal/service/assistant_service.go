package service

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"go.uber.org/zap"

	"github.com/operai/workforce-api/internal/assistant"
	"github.com/operai/workforce-api/internal/llm"
	"github.com/operai/workforce-api/internal/models"
	"github.com/operai/workforce-api/pkg/config"
	appErrors "github.com/operai/workforce-api/pkg/errors"
)

type assistantMessageRepository interface {
	Create(ctx context.Context, msg *models.AssistantMessage) error
	ListRecent(ctx context.Context, userID, sessionID string, limit int) ([]models.AssistantMessage, error)
}

type auditWriter interface {
	CreateAuditLog(ctx context.Context, log *models.AuditLog) error
}

// ChatRequest is one user turn to the assistant.
type ChatRequest struct {
	Message   string `json:"message" validate:"required"`
	SessionID string `json:"session_id"`
}

// ChatResponse is the assistant's reply plus the per-action outcomes.
type ChatResponse struct {
	SessionID string                   `json:"session_id"`
	Thought   string                   `json:"thought"`
	Response  string                   `json:"response"`
	Results   []assistant.ActionResult `json:"results"`
}

// AssistantService drives the natural-language assistant: it prompts the
// language model, parses the returned intent and executes it through the
// action engine.
type AssistantService struct {
	engine    *assistant.Engine
	client    llm.Client
	messages  assistantMessageRepository
	audit     auditWriter
	cfg       config.AssistantConfig
	validator *validator.Validate
	logger    *zap.Logger

	llmLatency    prometheus.Histogram
	actionResults *prometheus.CounterVec
}

// NewAssistantService constructs an AssistantService and registers its
// metrics.
func NewAssistantService(
	engine *assistant.Engine,
	client llm.Client,
	messages assistantMessageRepository,
	audit auditWriter,
	cfg config.AssistantConfig,
	validate *validator.Validate,
	logger *zap.Logger,
	registerer prometheus.Registerer,
) *AssistantService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if registerer == nil {
		registerer = prometheus.NewRegistry()
	}
	factory := promauto.With(registerer)
	return &AssistantService{
		engine:    engine,
		client:    client,
		messages:  messages,
		audit:     audit,
		cfg:       cfg,
		validator: validate,
		logger:    logger,
		llmLatency: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "assistant_llm_request_duration_seconds",
			Help:    "Latency of chat completion calls to the language model.",
			Buckets: prometheus.DefBuckets,
		}),
		actionResults: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "assistant_actions_total",
			Help: "Assistant actions executed, labelled by action and outcome.",
		}, []string{"action", "outcome"}),
	}
}

// Chat runs one assistant turn for the authenticated user.
func (s *AssistantService) Chat(ctx context.Context, claims *models.JWTClaims, req ChatRequest) (*ChatResponse, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid chat payload")
	}
	if !s.cfg.Enabled {
		return nil, appErrors.New("ASSISTANT_DISABLED", http.StatusServiceUnavailable, "the assistant is disabled")
	}

	sessionID := req.SessionID
	if sessionID == "" {
		sessionID = uuid.NewString()
	}

	actor := assistant.Actor{ID: claims.UserID, Role: claims.Role, Email: claims.Email}
	systemPrompt := s.engine.BuildSystemPrompt(actor)

	started := time.Now()
	raw, err := s.client.Complete(ctx, systemPrompt, req.Message)
	s.llmLatency.Observe(time.Since(started).Seconds())
	if err != nil {
		s.logger.Error("llm completion failed", zap.String("user_id", claims.UserID), zap.Error(err))
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "assistant is temporarily unavailable")
	}

	result, err := s.engine.ExecuteIntent(ctx, actor, raw)
	if err != nil {
		return nil, err
	}

	for _, r := range result.Results {
		outcome := "success"
		if !r.Success {
			outcome = "failure"
		}
		s.actionResults.WithLabelValues(string(r.Action), outcome).Inc()
	}

	if err := s.messages.Create(ctx, &models.AssistantMessage{
		UserID:    claims.UserID,
		SessionID: sessionID,
		Message:   req.Message,
		Response:  result.Response,
	}); err != nil {
		s.logger.Warn("failed to persist assistant message", zap.Error(err))
	}

	summary, _ := json.Marshal(map[string]interface{}{
		"session_id": sessionID,
		"actions":    len(result.Results),
	})
	if err := s.audit.CreateAuditLog(ctx, &models.AuditLog{
		UserID:     &claims.UserID,
		Action:     models.AuditActionAssistantRun,
		Resource:   "assistant",
		ResourceID: &sessionID,
		NewValues:  summary,
	}); err != nil {
		s.logger.Warn("failed to record assistant audit log", zap.Error(err))
	}

	return &ChatResponse{
		SessionID: sessionID,
		Thought:   result.Thought,
		Response:  result.Response,
		Results:   result.Results,
	}, nil
}

// History returns the recent exchanges of one session, oldest first.
func (s *AssistantService) History(ctx context.Context, claims *models.JWTClaims, sessionID string) ([]models.AssistantMessage, error) {
	limit := s.cfg.HistoryLimit
	if limit <= 0 {
		limit = 100
	}
	messages, err := s.messages.ListRecent(ctx, claims.UserID, sessionID, limit)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list assistant history")
	}
	return messages, nil
}

// Catalog returns the actions available to the caller's role.
func (s *AssistantService) Catalog(role models.UserRole) []assistant.CatalogEntry {
	return s.engine.Catalog(role)
}
