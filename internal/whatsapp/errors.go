package whatsapp

import (
	"errors"
	"fmt"
)

var (
	// ErrNoChannel means the callback id does not resolve to a configured,
	// enabled channel. There is no fallback or default channel.
	ErrNoChannel = errors.New("no channel configured for callback id")

	// ErrInvalidSignature means the HMAC over the raw body did not match.
	ErrInvalidSignature = errors.New("webhook signature mismatch")
)

// ProcessableReason classifies why a well-formed delivery carries no
// actionable message.
type ProcessableReason string

const (
	ReasonNotMessages     ProcessableReason = "not_a_message"
	ReasonMissingContent  ProcessableReason = "missing_content"
	ReasonVendorError     ProcessableReason = "vendor_error"
	ReasonUnsupportedType ProcessableReason = "unsupported_type"
	ReasonWrongRecipient  ProcessableReason = "wrong_recipient"
	ReasonMalformed       ProcessableReason = "malformed_payload"
)

// ProcessableError marks a delivery that validated fine but cannot be
// processed. The caller acknowledges it to the vendor so the delivery is
// not retried, and no identity, conversation, or message writes happen.
type ProcessableError struct {
	Reason     ProcessableReason
	Detail     string
	VendorCode int
}

func (e *ProcessableError) Error() string {
	if e.VendorCode != 0 {
		return fmt.Sprintf("unprocessable delivery (%s, vendor code %d): %s", e.Reason, e.VendorCode, e.Detail)
	}
	return fmt.Sprintf("unprocessable delivery (%s): %s", e.Reason, e.Detail)
}

func newProcessable(reason ProcessableReason, format string, args ...any) *ProcessableError {
	return &ProcessableError{Reason: reason, Detail: fmt.Sprintf(format, args...)}
}

// IsProcessable reports whether err is a ProcessableError.
func IsProcessable(err error) bool {
	var pe *ProcessableError
	return errors.As(err, &pe)
}
