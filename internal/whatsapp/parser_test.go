package whatsapp

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/deskhq/deskhq/internal/channel"
)

func textPayload(field, msgType, extra string) []byte {
	body := fmt.Sprintf(`{
		"object": "whatsapp_business_account",
		"entry": [{
			"id": "222259550976437",
			"changes": [{
				"value": {
					"messaging_product": "whatsapp",
					"metadata": {
						"display_phone_number": "15551340563",
						"phone_number_id": "105290765808900"
					},
					"contacts": [{
						"profile": {"name": "Jane Doe"},
						"wa_id": "15551234567"
					}],
					"messages": [{
						"from": "15551234567",
						"id": "wamid.HBgNNDkxNTE1NTg5MTQ2NBUCABIYFjNFQjBDMUM4M0Y5RDgxDg==",
						"timestamp": "1707921703",
						"type": %q
						%s
					}]
				},
				"field": %q
			}]
		}]
	}`, msgType, extra, field)
	return []byte(body)
}

func TestParseTextMessage(t *testing.T) {
	ch := channel.Channel{ID: "ch-1", PhoneNumberID: "105290765808900"}
	raw := textPayload("messages", "text", `, "text": {"body": "Hello, world!"}`)

	event, err := Parse(ch, raw)
	require.NoError(t, err)
	assert.Equal(t, "222259550976437", event.EntryID)
	assert.Equal(t, "wamid.HBgNNDkxNTE1NTg5MTQ2NBUCABIYFjNFQjBDMUM4M0Y5RDgxDg==", event.MessageID)
	assert.Equal(t, "15551234567", event.SenderPhone)
	assert.Equal(t, "Jane Doe", event.SenderName)
	assert.Equal(t, "Hello, world!", event.Body)
	assert.Equal(t, MessageKindText, event.Kind)
	assert.Equal(t, time.Unix(1707921703, 0).UTC(), event.Timestamp)
}

func TestParseRejectsNonMessageField(t *testing.T) {
	ch := channel.Channel{ID: "ch-1"}
	raw := textPayload("statuses", "text", `, "text": {"body": "hi"}`)

	_, err := Parse(ch, raw)
	require.True(t, IsProcessable(err))
	var pe *ProcessableError
	require.ErrorAs(t, err, &pe)
	assert.Equal(t, ReasonNotMessages, pe.Reason)
}

func TestParseRejectsUnsupportedType(t *testing.T) {
	ch := channel.Channel{ID: "ch-1"}
	raw := textPayload("messages", "image", "")

	_, err := Parse(ch, raw)
	var pe *ProcessableError
	require.ErrorAs(t, err, &pe)
	assert.Equal(t, ReasonUnsupportedType, pe.Reason)
	assert.Contains(t, pe.Detail, "image")
}

func TestParseRejectsVendorError(t *testing.T) {
	ch := channel.Channel{ID: "ch-1"}
	raw := textPayload("messages", "text",
		`, "errors": [{"code": 130429, "title": "Rate limit hit", "message": "Rate limit hit", "error_data": {"details": "Message failed to send because there were too many messages sent from this phone number in a short period of time"}}]`)

	_, err := Parse(ch, raw)
	var pe *ProcessableError
	require.ErrorAs(t, err, &pe)
	assert.Equal(t, ReasonVendorError, pe.Reason)
	assert.Equal(t, 130429, pe.VendorCode)
	assert.Contains(t, pe.Detail, "Rate limit hit")
	assert.Contains(t, pe.Detail, "too many messages")
}

func TestParseRejectsOtherPhoneNumberID(t *testing.T) {
	ch := channel.Channel{ID: "ch-1", PhoneNumberID: "999999999999999"}
	raw := textPayload("messages", "text", `, "text": {"body": "hi"}`)

	_, err := Parse(ch, raw)
	var pe *ProcessableError
	require.ErrorAs(t, err, &pe)
	assert.Equal(t, ReasonWrongRecipient, pe.Reason)
}

func TestParseRejectsMissingShapes(t *testing.T) {
	ch := channel.Channel{ID: "ch-1"}
	tests := []struct {
		name string
		raw  string
	}{
		{"no entry", `{"object": "whatsapp_business_account", "entry": []}`},
		{"no changes", `{"object": "whatsapp_business_account", "entry": [{"id": "1", "changes": []}]}`},
		{"no messages", `{"entry": [{"id": "1", "changes": [{"field": "messages", "value": {"contacts": [{"wa_id": "1"}], "messages": []}}]}]}`},
		{"no contacts", `{"entry": [{"id": "1", "changes": [{"field": "messages", "value": {"contacts": [], "messages": [{"type": "text", "text": {"body": "hi"}}]}}]}]}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse(ch, []byte(tt.raw))
			var pe *ProcessableError
			require.ErrorAs(t, err, &pe)
			assert.Equal(t, ReasonMissingContent, pe.Reason)
		})
	}
}

func TestParseRejectsStatusCallback(t *testing.T) {
	ch := channel.Channel{ID: "ch-1"}
	raw := []byte(`{"entry": [{"id": "1", "changes": [{"field": "messages", "value": {
		"statuses": [{"id": "wamid.1", "status": "delivered", "timestamp": "1707921703", "recipient_id": "15551234567"}]
	}}]}]}`)

	_, err := Parse(ch, raw)
	var pe *ProcessableError
	require.ErrorAs(t, err, &pe)
	assert.Equal(t, ReasonNotMessages, pe.Reason)
}

func TestParseRejectsMalformedBody(t *testing.T) {
	ch := channel.Channel{ID: "ch-1"}

	_, err := Parse(ch, []byte(`{not json`))
	var pe *ProcessableError
	require.ErrorAs(t, err, &pe)
	assert.Equal(t, ReasonMalformed, pe.Reason)
}

func TestParseRejectsBadTimestamp(t *testing.T) {
	ch := channel.Channel{ID: "ch-1"}
	raw := []byte(`{"entry": [{"id": "1", "changes": [{"field": "messages", "value": {
		"contacts": [{"profile": {"name": "Jane"}, "wa_id": "15551234567"}],
		"messages": [{"from": "15551234567", "id": "wamid.1", "timestamp": "not-a-number", "type": "text", "text": {"body": "hi"}}]
	}}]}]}`)

	_, err := Parse(ch, raw)
	var pe *ProcessableError
	require.ErrorAs(t, err, &pe)
	assert.Equal(t, ReasonMalformed, pe.Reason)
}
