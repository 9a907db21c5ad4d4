package whatsapp

import (
	"encoding/json"
	"strconv"
	"time"

	"github.com/deskhq/deskhq/internal/channel"
)

const fieldMessages = "messages"

// Parse extracts the single inbound message event from a webhook body.
// It is a pure function: no storage access, no side effects. Every
// unsupported shape yields a ProcessableError naming what was wrong
// rather than a best-guess event.
func Parse(ch channel.Channel, raw []byte) (InboundEvent, error) {
	var payload Payload
	if err := json.Unmarshal(raw, &payload); err != nil {
		return InboundEvent{}, newProcessable(ReasonMalformed, "decode payload: %v", err)
	}
	if len(payload.Entry) == 0 {
		return InboundEvent{}, newProcessable(ReasonMissingContent, "payload carries no entry")
	}
	entry := payload.Entry[0]
	if len(entry.Changes) == 0 {
		return InboundEvent{}, newProcessable(ReasonMissingContent, "entry carries no changes")
	}

	var change *Change
	for i := range entry.Changes {
		if entry.Changes[i].Field == fieldMessages {
			change = &entry.Changes[i]
			break
		}
	}
	if change == nil {
		return InboundEvent{}, newProcessable(ReasonNotMessages,
			"delivery field %q is not %q", entry.Changes[0].Field, fieldMessages)
	}
	value := change.Value

	// Shared-webhook setups deliver every account's traffic to every
	// registered endpoint; events for another phone number id are not ours.
	if ch.PhoneNumberID != "" && value.Metadata.PhoneNumberID != "" &&
		value.Metadata.PhoneNumberID != ch.PhoneNumberID {
		return InboundEvent{}, newProcessable(ReasonWrongRecipient,
			"delivery addressed to phone number id %q", value.Metadata.PhoneNumberID)
	}

	if len(value.Messages) == 0 {
		if len(value.Statuses) > 0 {
			return InboundEvent{}, newProcessable(ReasonNotMessages,
				"delivery carries status callbacks, not messages")
		}
		return InboundEvent{}, newProcessable(ReasonMissingContent, "value carries no messages")
	}
	if len(value.Contacts) == 0 {
		return InboundEvent{}, newProcessable(ReasonMissingContent, "value carries no contacts")
	}
	msg := value.Messages[0]
	contact := value.Contacts[0]

	if len(msg.Errors) > 0 {
		vendorErr := msg.Errors[0]
		detail := vendorErr.Message
		if detail == "" {
			detail = vendorErr.Title
		}
		if vendorErr.ErrorData.Details != "" {
			detail += ": " + vendorErr.ErrorData.Details
		}
		return InboundEvent{}, &ProcessableError{
			Reason:     ReasonVendorError,
			Detail:     detail,
			VendorCode: vendorErr.Code,
		}
	}

	if msg.Type != MessageKindText || msg.Text == nil {
		return InboundEvent{}, newProcessable(ReasonUnsupportedType,
			"unsupported message type %q", msg.Type)
	}

	timestamp, err := parseTimestamp(msg.Timestamp)
	if err != nil {
		return InboundEvent{}, newProcessable(ReasonMalformed,
			"message timestamp %q: %v", msg.Timestamp, err)
	}

	sender := msg.From
	if sender == "" {
		sender = contact.WaID
	}
	if sender == "" {
		return InboundEvent{}, newProcessable(ReasonMissingContent, "message carries no sender id")
	}

	return InboundEvent{
		EntryID:     entry.ID,
		MessageID:   msg.ID,
		SenderPhone: sender,
		SenderName:  contact.Profile.Name,
		Timestamp:   timestamp,
		Kind:        MessageKindText,
		Body:        msg.Text.Body,
	}, nil
}

func parseTimestamp(raw string) (time.Time, error) {
	if raw == "" {
		return time.Time{}, nil
	}
	seconds, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return time.Time{}, err
	}
	return time.Unix(seconds, 0).UTC(), nil
}
