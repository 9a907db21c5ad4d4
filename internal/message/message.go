// Package message persists the content of inbound events.
package message

import "time"

// Message is a single inbound text on a conversation, annotated with the
// vendor identifiers it arrived under.
type Message struct {
	ID              string    `json:"id"`
	ConversationID  string    `json:"conversation_id"`
	Body            string    `json:"body"`
	EntryID         string    `json:"entry_id"`
	VendorMessageID string    `json:"vendor_message_id"`
	CreatedAt       time.Time `json:"created_at"`
}

// AppendInput holds the fields for appending a message.
type AppendInput struct {
	ConversationID  string
	Body            string
	EntryID         string
	VendorMessageID string
}
