// Package conversation manages support conversations opened by inbound
// messages and the routing of new events onto them.
package conversation

import "time"

// Conversation states. Inbound routing only distinguishes open from
// everything else; agents move conversations to closed out of band.
const (
	StateOpen   = "open"
	StateClosed = "closed"
)

// Conversation is a support thread between one actor and one channel.
type Conversation struct {
	ID           string         `json:"id"`
	ChannelID    string         `json:"channel_id"`
	ActorID      string         `json:"actor_id"`
	Title        string         `json:"title"`
	State        string         `json:"state"`
	SupportGroup string         `json:"support_group"`
	Metadata     map[string]any `json:"metadata"`
	CreatedAt    time.Time      `json:"created_at"`
	UpdatedAt    time.Time      `json:"updated_at"`
}

// CreateInput holds the fields for opening a conversation.
type CreateInput struct {
	ChannelID    string
	ActorID      string
	Title        string
	SupportGroup string
	Metadata     map[string]any
}
