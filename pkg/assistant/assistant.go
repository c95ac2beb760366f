package assistant

import (
	"context"
	"fmt"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"
	"github.com/nats-io/nats.go"
	"github.com/openai/openai-go"
	"github.com/pkg/errors"

	"github.com/TradecrewAI/tradecrew/pkg/helpers"
)

const historyWindow = 20

const systemPrompt = "You are the admin assistant for a small Australian trades business. " +
	"Answer briefly and practically about emails, quoting, invoicing, scheduling and compliance paperwork."

type completionService interface {
	Completions(ctx context.Context, messages []openai.ChatCompletionMessageParamUnion, model string) (openai.ChatCompletionMessage, error)
}

// Service runs LLM-backed chat sessions on top of the shared store.
type Service struct {
	aiService completionService
	storage   Storage
	nc        *nats.Conn
	logger    *log.Logger
	model     string
}

func NewService(logger *log.Logger, aiService completionService, storage Storage, nc *nats.Conn, model string) *Service {
	return &Service{
		aiService: aiService,
		storage:   storage,
		nc:        nc,
		logger:    logger,
		model:     model,
	}
}

// SendMessage appends a user message to the session, asks the model for a
// reply using the recent history, persists both sides and publishes the
// assistant's reply on the session's NATS subject.
func (s *Service) SendMessage(ctx context.Context, sessionID string, text string) (*Message, error) {
	session, err := s.storage.GetSession(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if session == nil {
		return nil, errors.Errorf("session %s not found", sessionID)
	}

	history, err := s.storage.GetMessagesBySessionID(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	messageHistory := make([]openai.ChatCompletionMessageParamUnion, 0, historyWindow+2)
	messageHistory = append(messageHistory, openai.SystemMessage(systemPrompt))
	for _, m := range helpers.SafeLastN(history, historyWindow) {
		switch m.Role {
		case RoleAssistant:
			messageHistory = append(messageHistory, openai.AssistantMessage(m.Text))
		default:
			messageHistory = append(messageHistory, openai.UserMessage(m.Text))
		}
	}
	messageHistory = append(messageHistory, openai.UserMessage(text))

	completion, err := s.aiService.Completions(ctx, messageHistory, s.model)
	if err != nil {
		return nil, errors.Wrap(err, "chat completion failed")
	}

	_, err = s.storage.AddMessage(ctx, Message{
		ID:        uuid.New().String(),
		SessionID: sessionID,
		Role:      RoleUser,
		Text:      text,
		CreatedAt: time.Now().UTC(),
	})
	if err != nil {
		return nil, err
	}

	reply := Message{
		ID:        uuid.New().String(),
		SessionID: sessionID,
		Role:      RoleAssistant,
		Text:      completion.Content,
		CreatedAt: time.Now().UTC(),
	}
	if _, err := s.storage.AddMessage(ctx, reply); err != nil {
		return nil, err
	}

	if s.nc != nil {
		subject := fmt.Sprintf("chat.%s", sessionID)
		if err := helpers.NatsPublish(s.nc, subject, reply); err != nil {
			s.logger.Warn("Failed to publish chat event", "subject", subject, "error", err)
		}
	}

	return &reply, nil
}

func (s *Service) CreateSession(ctx context.Context, userID, name string) (Session, error) {
	return s.storage.CreateSession(ctx, userID, name)
}

func (s *Service) GetSession(ctx context.Context, sessionID string) (*Session, error) {
	return s.storage.GetSession(ctx, sessionID)
}

func (s *Service) GetMessages(ctx context.Context, sessionID string) ([]*Message, error) {
	return s.storage.GetMessagesBySessionID(ctx, sessionID)
}

func (s *Service) ListSessions(ctx context.Context, userID string) ([]*Session, error) {
	return s.storage.ListSessions(ctx, userID)
}

func (s *Service) DeleteSession(ctx context.Context, sessionID string) error {
	return s.storage.DeleteSession(ctx, sessionID)
}
