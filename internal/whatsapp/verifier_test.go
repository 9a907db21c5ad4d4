package whatsapp

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestVerifySignatureRoundTrip(t *testing.T) {
	body := []byte(`{"object":"whatsapp_business_account"}`)
	secret := []byte("channel-secret")

	sig := Sign(body, secret)
	assert.NoError(t, VerifySignature(body, sig, secret))
	assert.NoError(t, VerifySignature(body, "sha256="+sig, secret))
}

func TestVerifySignatureRejectsMutations(t *testing.T) {
	body := []byte(`{"object":"whatsapp_business_account"}`)
	secret := []byte("channel-secret")
	sig := Sign(body, secret)

	mutated := append([]byte(nil), body...)
	mutated[0] ^= 0x01
	assert.ErrorIs(t, VerifySignature(mutated, sig, secret), ErrInvalidSignature)

	badSig := []byte(sig)
	if badSig[0] == 'a' {
		badSig[0] = 'b'
	} else {
		badSig[0] = 'a'
	}
	assert.ErrorIs(t, VerifySignature(body, string(badSig), secret), ErrInvalidSignature)
}

func TestVerifySignatureRejectsWrongSecret(t *testing.T) {
	body := []byte("payload")
	sig := Sign(body, []byte("secret-a"))
	assert.ErrorIs(t, VerifySignature(body, sig, []byte("secret-b")), ErrInvalidSignature)
}

func TestVerifySignatureRejectsEmptySignature(t *testing.T) {
	err := VerifySignature([]byte("payload"), "", []byte("secret"))
	require.ErrorIs(t, err, ErrInvalidSignature)

	err = VerifySignature([]byte("payload"), "sha256=", []byte("secret"))
	require.ErrorIs(t, err, ErrInvalidSignature)
}
