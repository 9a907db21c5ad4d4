package conversation

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/deskhq/deskhq/internal/actor"
	"github.com/deskhq/deskhq/internal/channel"
)

// RouteStore is the storage surface the router needs.
type RouteStore interface {
	FindOpenByChannelAndActor(ctx context.Context, channelID, actorID string) (Conversation, error)
	Create(ctx context.Context, input CreateInput) (Conversation, error)
}

// Router decides which conversation an inbound event lands on. An open
// conversation for the (channel, actor) pair is reused; otherwise a new
// one is opened, so a closed conversation never silently reopens.
type Router struct {
	store  RouteStore
	logger *slog.Logger
}

func NewRouter(log *slog.Logger, store RouteStore) *Router {
	return &Router{
		store:  store,
		logger: log.With(slog.String("service", "conversation")),
	}
}

// Route returns the conversation for an inbound event and whether it was
// freshly opened by this call.
func (r *Router) Route(ctx context.Context, ch channel.Channel, act actor.Actor) (Conversation, bool, error) {
	existing, err := r.store.FindOpenByChannelAndActor(ctx, ch.ID, act.ID)
	if err == nil {
		return existing, false, nil
	}
	if !errors.Is(err, ErrNotFound) {
		return Conversation{}, false, err
	}

	created, err := r.store.Create(ctx, CreateInput{
		ChannelID:    ch.ID,
		ActorID:      act.ID,
		Title:        Title(act),
		SupportGroup: ch.SupportGroup,
		Metadata:     map[string]any{"channel_id": ch.ID},
	})
	if err != nil {
		return Conversation{}, false, err
	}
	r.logger.Info("conversation opened",
		slog.String("conversation_id", created.ID),
		slog.String("channel_id", ch.ID),
		slog.String("actor_id", act.ID))
	return created, true, nil
}

// Title renders the conversation title for a new inbound sender.
func Title(act actor.Actor) string {
	return fmt.Sprintf("New WhatsApp message from %s (%s)", act.DisplayName(), act.Handle)
}
