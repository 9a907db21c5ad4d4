package message

import (
	"context"
	"log/slog"

	"github.com/deskhq/deskhq/internal/conversation"
)

// AppendStore is the storage surface the recorder needs.
type AppendStore interface {
	Append(ctx context.Context, input AppendInput) (Message, error)
}

// Recorder writes inbound content onto conversations. Exactly one message
// is written per event; on a freshly opened conversation that message is
// its opening content, there is no separate seed write to duplicate.
type Recorder struct {
	store  AppendStore
	logger *slog.Logger
}

func NewRecorder(log *slog.Logger, store AppendStore) *Recorder {
	return &Recorder{
		store:  store,
		logger: log.With(slog.String("service", "message")),
	}
}

// Record appends the event body to the conversation, tagged with the
// vendor entry and message ids for provenance.
func (r *Recorder) Record(ctx context.Context, conv conversation.Conversation, fresh bool, input AppendInput) (Message, error) {
	input.ConversationID = conv.ID
	msg, err := r.store.Append(ctx, input)
	if err != nil {
		return Message{}, err
	}
	r.logger.Info("message recorded",
		slog.String("message_id", msg.ID),
		slog.String("conversation_id", conv.ID),
		slog.Bool("opening", fresh))
	return msg, nil
}
