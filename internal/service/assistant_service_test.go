package service

import (
	"context"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/operai/workforce-api/internal/assistant"
	"github.com/operai/workforce-api/internal/llm"
	"github.com/operai/workforce-api/internal/models"
	"github.com/operai/workforce-api/pkg/config"
	appErrors "github.com/operai/workforce-api/pkg/errors"
)

type assistantMessageStub struct {
	saved []*models.AssistantMessage
}

func (s *assistantMessageStub) Create(ctx context.Context, msg *models.AssistantMessage) error {
	s.saved = append(s.saved, msg)
	return nil
}

func (s *assistantMessageStub) ListRecent(ctx context.Context, userID, sessionID string, limit int) ([]models.AssistantMessage, error) {
	var out []models.AssistantMessage
	for _, msg := range s.saved {
		if msg.UserID == userID && msg.SessionID == sessionID {
			out = append(out, *msg)
		}
	}
	if limit > 0 && len(out) > limit {
		out = out[len(out)-limit:]
	}
	return out, nil
}

type auditStub struct {
	logs []*models.AuditLog
}

func (s *auditStub) CreateAuditLog(ctx context.Context, log *models.AuditLog) error {
	s.logs = append(s.logs, log)
	return nil
}

func newAssistantFixture(reply string) (*AssistantService, *assistantMessageStub, *auditStub) {
	engine := assistant.NewEngine(assistant.Stores{}, nil, nil, nil)
	messages := &assistantMessageStub{}
	audit := &auditStub{}
	svc := NewAssistantService(
		engine,
		&llm.StaticClient{Reply: reply},
		messages,
		audit,
		config.AssistantConfig{Enabled: true, HistoryLimit: 10},
		nil, nil,
		prometheus.NewRegistry(),
	)
	return svc, messages, audit
}

func TestChatPersistsMessageAndAudit(t *testing.T) {
	svc, messages, audit := newAssistantFixture(`{"thought": "just chat", "actions": [], "response": "Hello there"}`)

	resp, err := svc.Chat(context.Background(), claimsFor("emp-1", models.RoleEmployee), ChatRequest{Message: "hi"})
	require.NoError(t, err)
	assert.Equal(t, "Hello there", resp.Response)
	assert.NotEmpty(t, resp.SessionID)
	assert.Empty(t, resp.Results)

	require.Len(t, messages.saved, 1)
	assert.Equal(t, "hi", messages.saved[0].Message)
	assert.Equal(t, "Hello there", messages.saved[0].Response)

	require.Len(t, audit.logs, 1)
	assert.Equal(t, models.AuditActionAssistantRun, audit.logs[0].Action)
}

func TestChatKeepsProvidedSession(t *testing.T) {
	svc, messages, _ := newAssistantFixture(`{"thought": "t", "actions": [], "response": "ok"}`)

	resp, err := svc.Chat(context.Background(), claimsFor("emp-1", models.RoleEmployee), ChatRequest{Message: "hi", SessionID: "session-42"})
	require.NoError(t, err)
	assert.Equal(t, "session-42", resp.SessionID)
	assert.Equal(t, "session-42", messages.saved[0].SessionID)
}

func TestChatMalformedReply(t *testing.T) {
	svc, messages, _ := newAssistantFixture("Sorry, I cannot help with that.")

	_, err := svc.Chat(context.Background(), claimsFor("emp-1", models.RoleEmployee), ChatRequest{Message: "hi"})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrMalformedIntent.Code, appErrors.FromError(err).Code)
	assert.Empty(t, messages.saved)
}

func TestChatDisabled(t *testing.T) {
	svc, _, _ := newAssistantFixture(`{"thought": "t", "actions": [], "response": "ok"}`)
	svc.cfg.Enabled = false

	_, err := svc.Chat(context.Background(), claimsFor("emp-1", models.RoleEmployee), ChatRequest{Message: "hi"})
	require.Error(t, err)
	assert.Equal(t, "ASSISTANT_DISABLED", appErrors.FromError(err).Code)
}

func TestHistoryScopedToSession(t *testing.T) {
	svc, messages, _ := newAssistantFixture(`{"thought": "t", "actions": [], "response": "ok"}`)
	emp := claimsFor("emp-1", models.RoleEmployee)

	_, err := svc.Chat(context.Background(), emp, ChatRequest{Message: "first", SessionID: "s1"})
	require.NoError(t, err)
	_, err = svc.Chat(context.Background(), emp, ChatRequest{Message: "other", SessionID: "s2"})
	require.NoError(t, err)

	require.Len(t, messages.saved, 2)
	history, err := svc.History(context.Background(), emp, "s1")
	require.NoError(t, err)
	require.Len(t, history, 1)
	assert.Equal(t, "first", history[0].Message)
}
