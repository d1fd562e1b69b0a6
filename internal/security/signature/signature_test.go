package signature

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dropDatabas3/replayguard/internal/nonce"
)

func signedPayload(t *testing.T) (nonce.NoncePayload, string, string) {
	t.Helper()
	pub, priv, err := GenerateKey()
	require.NoError(t, err)
	p := nonce.NoncePayload{
		Nonce:   nonce.New("n1", time.Now()),
		Message: "hi",
	}
	return p, Sign(p, priv), EncodePublicKey(pub)
}

func TestVerify_Valid(t *testing.T) {
	p, sig, pub := signedPayload(t)
	assert.NoError(t, Verify(p, sig, pub))
}

func TestVerify_TamperedMessage(t *testing.T) {
	p, sig, pub := signedPayload(t)
	p.Message = "hi!"
	err := Verify(p, sig, pub)
	require.Error(t, err)
	assert.Equal(t, KindInvalidSignature, KindOf(err))
	assert.True(t, errors.Is(err, ErrSignature))
}

func TestVerify_TamperedNonce(t *testing.T) {
	p, sig, pub := signedPayload(t)
	p.Nonce.IssuedAt++
	assert.Equal(t, KindInvalidSignature, KindOf(Verify(p, sig, pub)))
}

func TestVerify_WrongKey(t *testing.T) {
	p, sig, _ := signedPayload(t)
	other, _, err := GenerateKey()
	require.NoError(t, err)
	assert.Equal(t, KindInvalidSignature, KindOf(Verify(p, sig, EncodePublicKey(other))))
}

func TestVerify_FailureKinds(t *testing.T) {
	p, sig, pub := signedPayload(t)

	// y = 2 no tiene x en la curva.
	offCurve := make([]byte, 32)
	offCurve[0] = 2

	cases := []struct {
		name string
		sig  string
		pub  string
		want Kind
	}{
		{"pub_not_base64", sig, "***", KindDecode},
		{"pub_padded", sig, pub + "=", KindDecode},
		{"pub_std_alphabet", sig, "+/+/" + pub[4:], KindDecode},
		{"pub_short", sig, Encoding.EncodeToString(make([]byte, 31)), KindInvalidKeyLength},
		{"pub_long", sig, Encoding.EncodeToString(make([]byte, 33)), KindInvalidKeyLength},
		{"sig_not_base64", "%%%", pub, KindDecode},
		{"sig_short", Encoding.EncodeToString(make([]byte, 63)), pub, KindInvalidSignatureLength},
		{"pub_off_curve", sig, Encoding.EncodeToString(offCurve), KindMalformedKey},
		{"sig_zero", Encoding.EncodeToString(make([]byte, 64)), pub, KindInvalidSignature},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := Verify(p, tc.sig, tc.pub)
			require.Error(t, err)
			assert.Equal(t, tc.want, KindOf(err), "err=%v", err)
		})
	}
}

func TestVerify_KeyCheckedBeforeSignature(t *testing.T) {
	p, _, _ := signedPayload(t)
	err := Verify(p, "%%%", "***")
	assert.Equal(t, KindDecode, KindOf(err))

	var se *Error
	require.True(t, errors.As(err, &se))
	assert.Equal(t, "public_key", se.Field)
}

func TestShortKey(t *testing.T) {
	assert.Equal(t, "abcdefgh", ShortKey("abcdefghijk"))
	assert.Equal(t, "???", ShortKey("abc"))
}

func TestKindOf_NonSignatureError(t *testing.T) {
	assert.Equal(t, Kind(""), KindOf(errors.New("boom")))
	assert.Equal(t, Kind(""), KindOf(nil))
}
