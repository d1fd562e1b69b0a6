// Package holder es el lado que firma: genera nonces, firma payloads y los envía al
// verifier. Lo usan el CLI cmd/holder y los tests de punta a punta.
package holder

import (
	"crypto/ed25519"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/dropDatabas3/replayguard/internal/nonce"
	"github.com/dropDatabas3/replayguard/internal/security/signature"
)

// Holder tiene una identidad Ed25519 y firma un nonce nuevo por mensaje.
type Holder struct {
	priv   ed25519.PrivateKey
	pubB64 string
	now    func() time.Time
}

// Option configura un Holder.
type Option func(*Holder)

// WithClock reemplaza time.Now (tests, o simular un reloj desfasado).
func WithClock(now func() time.Time) Option {
	return func(h *Holder) { h.now = now }
}

// New crea un Holder con un keypair efímero.
func New(opts ...Option) (*Holder, error) {
	_, priv, err := signature.GenerateKey()
	if err != nil {
		return nil, fmt.Errorf("holder: generate key: %w", err)
	}
	return FromPrivateKey(priv, opts...), nil
}

// FromSeed crea un Holder a partir de una seed base64url de 32 bytes (ver EncodeSeed).
func FromSeed(seedB64 string, opts ...Option) (*Holder, error) {
	seed, err := signature.Encoding.DecodeString(seedB64)
	if err != nil {
		return nil, fmt.Errorf("holder: decode seed: %w", err)
	}
	if len(seed) != ed25519.SeedSize {
		return nil, fmt.Errorf("holder: seed must be %d bytes, got %d", ed25519.SeedSize, len(seed))
	}
	return FromPrivateKey(ed25519.NewKeyFromSeed(seed), opts...), nil
}

func FromPrivateKey(priv ed25519.PrivateKey, opts ...Option) *Holder {
	h := &Holder{
		priv:   priv,
		pubB64: signature.EncodePublicKey(priv.Public().(ed25519.PublicKey)),
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// PublicKey devuelve la clave pública en base64url sin padding.
func (h *Holder) PublicKey() string { return h.pubB64 }

// Seed devuelve la seed privada en base64url sin padding.
func (h *Holder) Seed() string { return EncodeSeed(h.priv) }

// EncodeSeed serializa la seed de priv en el formato que acepta FromSeed.
func EncodeSeed(priv ed25519.PrivateKey) string {
	return signature.Encoding.EncodeToString(priv.Seed())
}

// Sign firma msg con un nonce nuevo (uuid v4) emitido ahora.
func (h *Holder) Sign(msg string) nonce.SignedRequest {
	return h.SignAt(uuid.NewString(), h.now(), msg)
}

// SignAt firma msg con un nonce explícito.
func (h *Holder) SignAt(id string, issued time.Time, msg string) nonce.SignedRequest {
	p := nonce.NoncePayload{Nonce: nonce.New(id, issued), Message: msg}
	return nonce.SignedRequest{
		NoncePayload: p,
		Signature:    signature.Sign(p, h.priv),
		PublicKey:    h.pubB64,
	}
}
