package verify

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dropDatabas3/replayguard/internal/nonce"
	"github.com/dropDatabas3/replayguard/internal/security/signature"
	"github.com/dropDatabas3/replayguard/internal/verify"
)

// stubVerifier devuelve siempre el mismo outcome y guarda el último request.
type stubVerifier struct {
	out  verify.Outcome
	last nonce.SignedRequest
}

func (s *stubVerifier) Handle(_ context.Context, req nonce.SignedRequest) verify.Outcome {
	s.last = req
	return s.out
}

const validBody = `{"nonce_payload":{"nonce":{"id":"n1","issued_at":1713038460000},"message":"hi"},"signature":"sig","public_key":"pk"}`

func post(t *testing.T, c *VerifyController, body, contentType string) (*httptest.ResponseRecorder, map[string]string) {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/api/verify-signature", strings.NewReader(body))
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	rr := httptest.NewRecorder()
	c.VerifySignature(rr, req)

	var m map[string]string
	_ = json.Unmarshal(rr.Body.Bytes(), &m)
	return rr, m
}

func TestVerifySignature_Accepted(t *testing.T) {
	sv := &stubVerifier{out: verify.Outcome{Accepted: true}}
	rr, body := post(t, NewVerifyController(sv, 0), validBody, "application/json")

	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "Signature is valid and nonce accepted", body["message"])
	assert.Equal(t, "n1", sv.last.NoncePayload.Nonce.ID)
	assert.Equal(t, int64(1713038460000), sv.last.NoncePayload.Nonce.IssuedAt)
	assert.Equal(t, "hi", sv.last.NoncePayload.Message)
	assert.Equal(t, "sig", sv.last.Signature)
	assert.Equal(t, "pk", sv.last.PublicKey)
}

func TestVerifySignature_OutcomeMapping(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantCode   string
		wantReason string
	}{
		{
			name:       "validation",
			err:        &verify.ValidationError{Reason: verify.ReasonExpiredNonce, Field: "nonce_payload.nonce.issued_at"},
			wantStatus: http.StatusBadRequest,
			wantCode:   "INVALID_PAYLOAD",
			wantReason: "expired_nonce",
		},
		{
			name:       "replay",
			err:        &verify.ReplayError{NonceID: "n1"},
			wantStatus: http.StatusConflict,
			wantCode:   "REPLAY_ATTACK",
			wantReason: "replay_attack",
		},
		{
			name:       "signature",
			err:        &verify.SignatureError{Err: &signature.Error{Kind: signature.KindInvalidSignature}},
			wantStatus: http.StatusUnauthorized,
			wantCode:   "INVALID_SIGNATURE",
			wantReason: "invalid_signature",
		},
		{
			name:       "registry",
			err:        &verify.RegistryError{Err: errors.New("backend down")},
			wantStatus: http.StatusInternalServerError,
			wantCode:   "INTERNAL_SERVER_ERROR",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := NewVerifyController(&stubVerifier{out: verify.Outcome{Err: tt.err}}, 0)
			rr, body := post(t, c, validBody, "application/json")

			assert.Equal(t, tt.wantStatus, rr.Code)
			assert.Equal(t, "error", body["status"])
			assert.Equal(t, tt.wantCode, body["code"])
			assert.Equal(t, tt.wantReason, body["reason"])
			assert.NotContains(t, rr.Body.String(), "backend down")
		})
	}
}

func TestVerifySignature_BadBodies(t *testing.T) {
	sv := &stubVerifier{out: verify.Outcome{Accepted: true}}
	c := NewVerifyController(sv, 256)

	t.Run("not_json", func(t *testing.T) {
		rr, body := post(t, c, "{nope", "application/json")
		assert.Equal(t, http.StatusBadRequest, rr.Code)
		assert.Equal(t, "INVALID_PAYLOAD", body["code"])
		assert.Equal(t, "malformed_request", body["reason"])
	})

	t.Run("issued_at_not_integer", func(t *testing.T) {
		rr, body := post(t, c, `{"nonce_payload":{"nonce":{"id":"n","issued_at":"soon"},"message":"m"}}`, "application/json")
		assert.Equal(t, http.StatusBadRequest, rr.Code)
		assert.Equal(t, "malformed_request", body["reason"])
	})

	t.Run("invalid_utf8", func(t *testing.T) {
		rr, body := post(t, c, "{\"nonce_payload\":{\"nonce\":{\"id\":\"n\",\"issued_at\":1},\"message\":\"\xff\xfe\"}}", "application/json")
		assert.Equal(t, http.StatusBadRequest, rr.Code)
		assert.Equal(t, "malformed_request", body["reason"])
		assert.Empty(t, sv.last.NoncePayload.Nonce.ID, "no llega al pipeline")
	})

	t.Run("trailing_garbage", func(t *testing.T) {
		rr, body := post(t, c, `{"signature":"s"} {}`, "application/json")
		assert.Equal(t, http.StatusBadRequest, rr.Code)
		assert.Equal(t, "malformed_request", body["reason"])
	})

	t.Run("wrong_content_type", func(t *testing.T) {
		rr, _ := post(t, c, validBody, "text/plain")
		assert.Equal(t, http.StatusUnsupportedMediaType, rr.Code)
	})

	t.Run("too_large", func(t *testing.T) {
		big := `{"nonce_payload":{"message":"` + strings.Repeat("a", 1024) + `"}}`
		rr, body := post(t, c, big, "application/json")
		assert.Equal(t, http.StatusRequestEntityTooLarge, rr.Code)
		assert.Equal(t, "BODY_TOO_LARGE", body["code"])
	})
}

func TestVerifySignature_AbsentIssuedAtIsZero(t *testing.T) {
	sv := &stubVerifier{out: verify.Outcome{Accepted: true}}
	rr, _ := post(t, NewVerifyController(sv, 0), `{"nonce_payload":{"nonce":{"id":"n"},"message":"m"}}`, "application/json")
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Zero(t, sv.last.NoncePayload.Nonce.IssuedAt)
}

func TestVerifySignature_ExplicitZeroIssuedAtIsAbsent(t *testing.T) {
	sv := &stubVerifier{out: verify.Outcome{Accepted: true}}
	rr, _ := post(t, NewVerifyController(sv, 0), `{"nonce_payload":{"nonce":{"id":"n","issued_at":0},"message":"m"}}`, "application/json")
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Zero(t, sv.last.NoncePayload.Nonce.IssuedAt)
	assert.Equal(t, "n", sv.last.NoncePayload.Nonce.ID)
}
