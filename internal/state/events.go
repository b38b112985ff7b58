package state

import (
	"context"
	"encoding/json"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"

	"github.com/narahq/nara-chat/internal/logger"
)

// ChangesTopic is the pub/sub topic every store mutation is announced on.
const ChangesTopic = "state.changes"

// ChangeKind identifies which part of the store a [Change] concerns.
type ChangeKind string

const (
	KindConversations ChangeKind = "conversations"
	KindSelection     ChangeKind = "selection"
	KindMessages      ChangeKind = "messages"
	KindFeedback      ChangeKind = "feedback"
	KindPendingDelete ChangeKind = "pending_delete"
	KindDraft         ChangeKind = "draft"
	KindReset         ChangeKind = "reset"
)

// Change is the payload published on [ChangesTopic] after each mutation.
// Consumers treat it as a hint to re-read the store, not as a data carrier.
type Change struct {
	Kind           ChangeKind `json:"kind"`
	ConversationID string     `json:"conversation_id,omitempty"`
	MessageID      string     `json:"message_id,omitempty"`
}

func decodeChange(msg *message.Message) (Change, error) {
	var ch Change
	if err := json.Unmarshal(msg.Payload, &ch); err != nil {
		return Change{}, err
	}
	return ch, nil
}

// Changes subscribes to the store's mutation stream and returns a typed
// channel of decoded events. Undecodable payloads are logged and skipped.
// The channel closes when ctx is cancelled or the store is closed.
func (s *Store) Changes(ctx context.Context) (<-chan Change, error) {
	raw, err := s.pubSub.Subscribe(ctx, ChangesTopic)
	if err != nil {
		return nil, err
	}

	out := make(chan Change)
	go func() {
		defer close(out)
		for msg := range raw {
			ch, decodeErr := decodeChange(msg)
			msg.Ack()
			if decodeErr != nil {
				s.logger.Warn().Err(decodeErr).Msg("dropping undecodable state change event")
				continue
			}

			select {
			case out <- ch:
			case <-ctx.Done():
				return
			}
		}
	}()

	return out, nil
}

func (s *Store) publish(ch Change) {
	payload, err := json.Marshal(ch)
	if err != nil {
		s.logger.Error().Err(err).Msg("marshal state change event")
		return
	}

	if err := s.pubSub.Publish(ChangesTopic, message.NewMessage(watermill.NewUUID(), payload)); err != nil {
		s.logger.Error().Err(err).Str("kind", string(ch.Kind)).Msg("publish state change event")
	}
}

// watermillLogger bridges watermill's logging interface onto the
// application logger.
type watermillLogger struct {
	logger *logger.Logger
}

func (w watermillLogger) Error(msg string, err error, fields watermill.LogFields) {
	w.logger.Error().Err(err).Fields(map[string]any(fields)).Msg(msg)
}

func (w watermillLogger) Info(msg string, fields watermill.LogFields) {
	w.logger.Info().Fields(map[string]any(fields)).Msg(msg)
}

func (w watermillLogger) Debug(msg string, fields watermill.LogFields) {
	w.logger.Debug().Fields(map[string]any(fields)).Msg(msg)
}

func (w watermillLogger) Trace(msg string, fields watermill.LogFields) {
	w.logger.Trace().Fields(map[string]any(fields)).Msg(msg)
}

func (w watermillLogger) With(fields watermill.LogFields) watermill.LoggerAdapter {
	child := &logger.Logger{Logger: w.logger.With().Fields(map[string]any(fields)).Logger()}
	return watermillLogger{logger: child}
}
