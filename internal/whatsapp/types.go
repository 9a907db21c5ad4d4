// Package whatsapp implements the WhatsApp Business Cloud API webhook
// ingestion pipeline: signature verification, payload parsing, and the
// mapping of inbound messages onto actors, conversations, and messages.
package whatsapp

import "time"

// Payload is the vendor webhook envelope. Deliveries multiplex several
// account-level event kinds through the same body; only changes whose
// field is "messages" carry inbound customer messages.
type Payload struct {
	Object string  `json:"object"`
	Entry  []Entry `json:"entry"`
}

type Entry struct {
	ID      string   `json:"id"`
	Changes []Change `json:"changes"`
}

type Change struct {
	Field string `json:"field"`
	Value Value  `json:"value"`
}

type Value struct {
	MessagingProduct string           `json:"messaging_product"`
	Metadata         ValueMetadata    `json:"metadata"`
	Contacts         []Contact        `json:"contacts"`
	Messages         []InboundMessage `json:"messages"`
	Statuses         []Status         `json:"statuses"`
}

// Status is a delivery-status callback for an outbound message. The
// pipeline acknowledges these without processing them.
type Status struct {
	ID          string `json:"id"`
	Status      string `json:"status"`
	Timestamp   string `json:"timestamp"`
	RecipientID string `json:"recipient_id"`
}

type ValueMetadata struct {
	DisplayPhoneNumber string `json:"display_phone_number"`
	PhoneNumberID      string `json:"phone_number_id"`
}

type Contact struct {
	Profile Profile `json:"profile"`
	WaID    string  `json:"wa_id"`
}

type Profile struct {
	Name string `json:"name"`
}

type InboundMessage struct {
	From      string        `json:"from"`
	ID        string        `json:"id"`
	Timestamp string        `json:"timestamp"`
	Type      string        `json:"type"`
	Text      *Text         `json:"text,omitempty"`
	Errors    []VendorError `json:"errors,omitempty"`
}

type Text struct {
	Body string `json:"body"`
}

// VendorError is a per-message delivery failure reported by the vendor.
type VendorError struct {
	Code      int    `json:"code"`
	Title     string `json:"title"`
	Message   string `json:"message"`
	ErrorData struct {
		Details string `json:"details"`
	} `json:"error_data"`
}

// MessageKindText is the only message kind the pipeline records.
const MessageKindText = "text"

// InboundEvent is the normalized result of parsing one delivery. It is
// built per request and consumed immediately, never persisted as-is.
type InboundEvent struct {
	EntryID     string
	MessageID   string
	SenderPhone string
	SenderName  string
	Timestamp   time.Time
	Kind        string
	Body        string
}
