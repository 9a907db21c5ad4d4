package whatsapp

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/deskhq/deskhq/internal/actor"
	"github.com/deskhq/deskhq/internal/channel"
	"github.com/deskhq/deskhq/internal/conversation"
	"github.com/deskhq/deskhq/internal/journal"
	"github.com/deskhq/deskhq/internal/message"
)

// ChannelStore resolves the channel addressed by a callback id.
type ChannelStore interface {
	GetByCallbackID(ctx context.Context, callbackID string) (channel.Channel, error)
}

// IdentityResolver maps a vendor sender onto an actor, creating one when
// absent. The bool reports whether the actor was created by this call.
type IdentityResolver interface {
	ResolveOrCreate(ctx context.Context, provider, phone, displayName string) (actor.Actor, bool, error)
}

// ConversationRouter picks the conversation an event lands on. The bool
// reports whether the conversation was freshly opened.
type ConversationRouter interface {
	Route(ctx context.Context, ch channel.Channel, act actor.Actor) (conversation.Conversation, bool, error)
}

// MessageRecorder writes the event content onto the conversation.
type MessageRecorder interface {
	Record(ctx context.Context, conv conversation.Conversation, fresh bool, input message.AppendInput) (message.Message, error)
}

// DeliveryJournal records the outcome of each delivery for audit.
type DeliveryJournal interface {
	Record(ctx context.Context, input journal.RecordInput) error
}

// Pipeline ties the webhook stages together. Validate runs synchronously
// in the request cycle; Process may run there too or be handed to a
// worker once the raw body has been captured.
type Pipeline struct {
	channels      ChannelStore
	identities    IdentityResolver
	conversations ConversationRouter
	messages      MessageRecorder
	journal       DeliveryJournal
	logger        *slog.Logger
}

// NewPipeline assembles the pipeline. journal may be nil to disable
// delivery auditing.
func NewPipeline(log *slog.Logger, channels ChannelStore, identities IdentityResolver, conversations ConversationRouter, messages MessageRecorder, deliveryJournal DeliveryJournal) *Pipeline {
	return &Pipeline{
		channels:      channels,
		identities:    identities,
		conversations: conversations,
		messages:      messages,
		journal:       deliveryJournal,
		logger:        log.With(slog.String("service", "whatsapp")),
	}
}

// Validate resolves the channel for callbackID and checks the body
// signature against its secret. It performs no parsing and no writes, so
// it is safe to run before trusting anything in the body.
func (p *Pipeline) Validate(ctx context.Context, raw []byte, callbackID, signature string) error {
	ch, err := p.resolveChannel(ctx, callbackID)
	if err != nil {
		return err
	}
	if err := VerifySignature(raw, signature, []byte(ch.AppSecret)); err != nil {
		p.logger.Warn("webhook signature rejected",
			slog.String("callback_id", callbackID),
			slog.String("channel_id", ch.ID))
		return err
	}
	return nil
}

// Process parses the body and maps it onto an actor, a conversation, and
// a recorded message. Callers must run Validate on the same body first.
// A ProcessableError means the delivery should be acknowledged to the
// vendor without any writes having happened.
func (p *Pipeline) Process(ctx context.Context, raw []byte, callbackID string) (message.Message, error) {
	ch, err := p.resolveChannel(ctx, callbackID)
	if err != nil {
		return message.Message{}, err
	}

	event, err := Parse(ch, raw)
	if err != nil {
		p.recordDelivery(ctx, ch.ID, event, journal.OutcomeIgnored, err.Error())
		var pe *ProcessableError
		if errors.As(err, &pe) && pe.Reason == ReasonVendorError {
			p.logger.Warn("vendor reported delivery failure",
				slog.String("channel_id", ch.ID),
				slog.Int("vendor_code", pe.VendorCode),
				slog.String("detail", pe.Detail))
		}
		return message.Message{}, err
	}

	act, actorCreated, err := p.identities.ResolveOrCreate(ctx, ch.Provider, event.SenderPhone, event.SenderName)
	if err != nil {
		p.recordDelivery(ctx, ch.ID, event, journal.OutcomeFailed, err.Error())
		return message.Message{}, fmt.Errorf("resolve actor: %w", err)
	}

	conv, fresh, err := p.conversations.Route(ctx, ch, act)
	if err != nil {
		p.recordDelivery(ctx, ch.ID, event, journal.OutcomeFailed, err.Error())
		return message.Message{}, fmt.Errorf("route conversation: %w", err)
	}

	msg, err := p.messages.Record(ctx, conv, fresh, message.AppendInput{
		Body:            event.Body,
		EntryID:         event.EntryID,
		VendorMessageID: event.MessageID,
	})
	if err != nil {
		p.recordDelivery(ctx, ch.ID, event, journal.OutcomeFailed, err.Error())
		return message.Message{}, fmt.Errorf("record message: %w", err)
	}

	p.recordDelivery(ctx, ch.ID, event, journal.OutcomeProcessed, "")
	p.logger.Info("webhook processed",
		slog.String("channel_id", ch.ID),
		slog.String("conversation_id", conv.ID),
		slog.String("message_id", msg.ID),
		slog.Bool("actor_created", actorCreated),
		slog.Bool("conversation_created", fresh))
	return msg, nil
}

func (p *Pipeline) resolveChannel(ctx context.Context, callbackID string) (channel.Channel, error) {
	ch, err := p.channels.GetByCallbackID(ctx, callbackID)
	if errors.Is(err, channel.ErrNotFound) {
		return channel.Channel{}, fmt.Errorf("%w: %s", ErrNoChannel, callbackID)
	}
	if err != nil {
		return channel.Channel{}, fmt.Errorf("resolve channel: %w", err)
	}
	if ch.Disabled {
		return channel.Channel{}, fmt.Errorf("%w: %s", ErrNoChannel, callbackID)
	}
	return ch, nil
}

// recordDelivery is best effort; a journal failure never changes the
// delivery outcome.
func (p *Pipeline) recordDelivery(ctx context.Context, channelID string, event InboundEvent, outcome, detail string) {
	if p.journal == nil {
		return
	}
	err := p.journal.Record(ctx, journal.RecordInput{
		ChannelID:       channelID,
		EntryID:         event.EntryID,
		VendorMessageID: event.MessageID,
		Outcome:         outcome,
		Detail:          detail,
	})
	if err != nil {
		p.logger.Warn("journal write failed", slog.String("error", err.Error()))
	}
}
