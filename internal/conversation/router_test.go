package conversation

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/deskhq/deskhq/internal/actor"
	"github.com/deskhq/deskhq/internal/channel"
)

type fakeRouteStore struct {
	open    []Conversation
	created []Conversation
}

func (f *fakeRouteStore) FindOpenByChannelAndActor(_ context.Context, channelID, actorID string) (Conversation, error) {
	for _, conv := range f.open {
		if conv.ChannelID == channelID && conv.ActorID == actorID && conv.State == StateOpen {
			return conv, nil
		}
	}
	return Conversation{}, ErrNotFound
}

func (f *fakeRouteStore) Create(_ context.Context, input CreateInput) (Conversation, error) {
	conv := Conversation{
		ID:           "conv-new",
		ChannelID:    input.ChannelID,
		ActorID:      input.ActorID,
		Title:        input.Title,
		State:        StateOpen,
		SupportGroup: input.SupportGroup,
		Metadata:     input.Metadata,
	}
	f.created = append(f.created, conv)
	return conv, nil
}

func TestRouteReusesOpenConversation(t *testing.T) {
	store := &fakeRouteStore{open: []Conversation{
		{ID: "conv-1", ChannelID: "ch-1", ActorID: "act-1", State: StateOpen},
	}}
	router := NewRouter(slog.New(slog.NewTextHandler(io.Discard, nil)), store)

	conv, created, err := router.Route(context.Background(),
		channel.Channel{ID: "ch-1"}, actor.Actor{ID: "act-1"})
	require.NoError(t, err)
	assert.False(t, created)
	assert.Equal(t, "conv-1", conv.ID)
	assert.Empty(t, store.created)
}

func TestRouteOpensNewConversationWhenOnlyClosedExists(t *testing.T) {
	store := &fakeRouteStore{open: []Conversation{
		{ID: "conv-1", ChannelID: "ch-1", ActorID: "act-1", State: StateClosed},
	}}
	router := NewRouter(slog.New(slog.NewTextHandler(io.Discard, nil)), store)

	act := actor.Actor{ID: "act-1", GivenName: "Jane", FamilyName: "Doe", Handle: "+15551234567"}
	conv, created, err := router.Route(context.Background(),
		channel.Channel{ID: "ch-1", SupportGroup: "support"}, act)
	require.NoError(t, err)
	assert.True(t, created)
	require.Len(t, store.created, 1)
	assert.Equal(t, "New WhatsApp message from Jane Doe (+15551234567)", conv.Title)
	assert.Equal(t, "support", conv.SupportGroup)
	assert.Equal(t, "ch-1", conv.Metadata["channel_id"])
}

func TestRouteScopesByChannel(t *testing.T) {
	store := &fakeRouteStore{open: []Conversation{
		{ID: "conv-1", ChannelID: "ch-other", ActorID: "act-1", State: StateOpen},
	}}
	router := NewRouter(slog.New(slog.NewTextHandler(io.Discard, nil)), store)

	_, created, err := router.Route(context.Background(),
		channel.Channel{ID: "ch-1"}, actor.Actor{ID: "act-1", GivenName: "Jane"})
	require.NoError(t, err)
	assert.True(t, created)
}
