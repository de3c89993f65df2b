package service

import (
	"context"
	"strings"
	"time"

	"github.com/boddenberg/ops-console-bfa-go/internal/domain"
	"github.com/boddenberg/ops-console-bfa-go/internal/infra/observability"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
)

// Assistant runs the command-resolution pipeline for one message:
// read context, append the user turn, classify, dispatch, append the reply.
type Assistant struct {
	sessions   *SessionManager
	classifier *Classifier
	dispatcher *Dispatcher
	metrics    *observability.Metrics
	logger     *zap.Logger
}

// NewAssistant creates the assistant service with all dependencies injected.
func NewAssistant(
	sessions *SessionManager,
	classifier *Classifier,
	dispatcher *Dispatcher,
	metrics *observability.Metrics,
	logger *zap.Logger,
) *Assistant {
	return &Assistant{
		sessions:   sessions,
		classifier: classifier,
		dispatcher: dispatcher,
		metrics:    metrics,
		logger:     logger,
	}
}

// Sessions exposes the session manager to the HTTP layer.
func (a *Assistant) Sessions() *SessionManager {
	return a.sessions
}

// HandleMessage processes one user message. The returned error only reports
// conversation-store problems; dispatch failures come back as a Response
// with Error set.
//
// The run is detached from ctx cancellation: a client that goes away does not
// stop a dispatch that is already in flight.
func (a *Assistant) HandleMessage(ctx context.Context, sessionID, text string) (*domain.Exchange, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, &domain.ErrValidation{Field: "text", Message: "message text is required"}
	}

	sess, err := a.session(sessionID)
	if err != nil {
		return nil, err
	}

	ctx = context.WithoutCancel(ctx)
	ctx, span := tracer.Start(ctx, "Assistant.HandleMessage")
	defer span.End()
	span.SetAttributes(attribute.String("session.id", sessionID))

	start := time.Now()
	defer func() {
		a.metrics.RecordRequestDuration("assistant", time.Since(start))
	}()

	conv := sess.Conversation

	// Context comes from the turns before this message.
	recent, err := conv.Recent(ctx, ContextWindow)
	if err != nil {
		return nil, err
	}

	userTurn := newTurn(domain.SpeakerUser, text)
	if err := conv.Append(ctx, userTurn); err != nil {
		return nil, err
	}

	typing := true
	if err := conv.BeginTyping(ctx); err != nil {
		typing = false
		a.logger.Warn("typing indicator not raised", zap.String("session_id", sessionID), zap.Error(err))
	}

	snap := sess.Snapshot.Current()
	intent := a.classifier.Classify(text, snap, recent)
	a.metrics.IncrIntent(intent.Tag)
	span.SetAttributes(attribute.String("intent", string(intent.Tag)))

	a.logger.Info("assistant message received",
		zap.String("session_id", sessionID),
		zap.String("intent", string(intent.Tag)),
		zap.Int("text_length", len(text)),
	)

	resp := a.dispatcher.Dispatch(ctx, intent, text, snap)

	assistantTurn := newTurn(domain.SpeakerAssistant, resp.Text)
	assistantTurn.Action = resp.Action
	assistantTurn.Error = resp.Error

	appendErr := conv.Append(ctx, assistantTurn)
	if typing {
		if err := conv.EndTyping(ctx); err != nil {
			a.logger.Warn("typing indicator not cleared", zap.String("session_id", sessionID), zap.Error(err))
		}
	}
	if appendErr != nil {
		return nil, appendErr
	}

	return &domain.Exchange{
		SessionID: sessionID,
		Intent:    intent.Tag,
		User:      userTurn,
		Assistant: assistantTurn,
	}, nil
}

// Classify runs extraction, context analysis and classification without
// touching the conversation. sessionID is optional; without it the text is
// classified against an empty snapshot and no history.
func (a *Assistant) Classify(ctx context.Context, sessionID, text string) (*domain.ClassifyResponse, error) {
	var (
		snap   *domain.Snapshot
		recent []domain.ConversationTurn
	)
	if sessionID != "" {
		sess, err := a.session(sessionID)
		if err != nil {
			return nil, err
		}
		snap = sess.Snapshot.Current()
		if recent, err = sess.Conversation.Recent(ctx, ContextWindow); err != nil {
			return nil, err
		}
	}

	intent, entities, signal := a.classifier.Analyze(text, snap, recent)
	return &domain.ClassifyResponse{Intent: intent, Entities: entities, Context: signal}, nil
}

// Turns returns the whole conversation of a session and its typing state.
func (a *Assistant) Turns(ctx context.Context, sessionID string) (*domain.TurnsResponse, error) {
	sess, err := a.session(sessionID)
	if err != nil {
		return nil, err
	}

	turns, err := sess.Conversation.All(ctx)
	if err != nil {
		return nil, err
	}
	typing, err := sess.Conversation.Typing(ctx)
	if err != nil {
		return nil, err
	}
	return &domain.TurnsResponse{SessionID: sessionID, Typing: typing, Turns: turns}, nil
}

// session looks up a live session and counts the lookup against the session cache.
func (a *Assistant) session(id string) (*Session, error) {
	sess, err := a.sessions.Get(id)
	if err != nil {
		a.metrics.IncrCacheMiss("sessions")
		return nil, err
	}
	a.metrics.IncrCacheHit("sessions")
	return sess, nil
}

func newTurn(speaker domain.Speaker, text string) domain.ConversationTurn {
	return domain.ConversationTurn{
		ID:        uuid.New().String(),
		Speaker:   speaker,
		Text:      text,
		Timestamp: time.Now(),
	}
}
