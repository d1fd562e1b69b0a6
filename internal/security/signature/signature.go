// Package signature verifica (y, para el holder, produce) firmas Ed25519 sobre la
// serialización canónica de un nonce.NoncePayload.
//
// Claves y firmas viajan como base64 URL-safe sin padding. Verify es una función pura:
// no tiene estado ni efectos laterales y nunca hace panic ante input malformado.
package signature

import (
	"crypto/ed25519"
	"crypto/rand"
	"encoding/base64"
	"fmt"

	"filippo.io/edwards25519"

	"github.com/dropDatabas3/replayguard/internal/nonce"
)

// Encoding es la codificación de claves y firmas en el wire.
var Encoding = base64.RawURLEncoding

// Verify valida signatureB64 sobre payload.Canonical() con la clave publicKeyB64.
// Devuelve nil si la firma es válida o un *Error con el paso que falló.
func Verify(payload nonce.NoncePayload, signatureB64, publicKeyB64 string) error {
	pub, err := decodePublicKey(publicKeyB64)
	if err != nil {
		return err
	}

	sig, err := Encoding.DecodeString(signatureB64)
	if err != nil {
		return &Error{Kind: KindDecode, Field: "signature", Err: err}
	}
	if len(sig) != ed25519.SignatureSize {
		return &Error{
			Kind:  KindInvalidSignatureLength,
			Field: "signature",
			Err:   fmt.Errorf("got %d bytes, want %d", len(sig), ed25519.SignatureSize),
		}
	}

	// La clave tiene que ser un punto comprimido válido de Edwards25519.
	if _, err := new(edwards25519.Point).SetBytes(pub); err != nil {
		return &Error{Kind: KindMalformedKey, Field: "public_key", Err: err}
	}

	if !ed25519.Verify(ed25519.PublicKey(pub), payload.Canonical(), sig) {
		return &Error{Kind: KindInvalidSignature}
	}
	return nil
}

func decodePublicKey(publicKeyB64 string) ([]byte, error) {
	pub, err := Encoding.DecodeString(publicKeyB64)
	if err != nil {
		return nil, &Error{Kind: KindDecode, Field: "public_key", Err: err}
	}
	if len(pub) != ed25519.PublicKeySize {
		return nil, &Error{
			Kind:  KindInvalidKeyLength,
			Field: "public_key",
			Err:   fmt.Errorf("got %d bytes, want %d", len(pub), ed25519.PublicKeySize),
		}
	}
	return pub, nil
}

// GenerateKey crea un par de claves Ed25519 nuevo.
func GenerateKey() (ed25519.PublicKey, ed25519.PrivateKey, error) {
	return ed25519.GenerateKey(rand.Reader)
}

// Sign firma payload.Canonical() y devuelve la firma codificada para el wire.
func Sign(payload nonce.NoncePayload, priv ed25519.PrivateKey) string {
	return Encoding.EncodeToString(ed25519.Sign(priv, payload.Canonical()))
}

// EncodePublicKey codifica una clave pública para el wire.
func EncodePublicKey(pub ed25519.PublicKey) string {
	return Encoding.EncodeToString(pub)
}

// ShortKey devuelve los primeros 8 caracteres de una clave codificada, para logs.
func ShortKey(publicKeyB64 string) string {
	if len(publicKeyB64) < 8 {
		return "???"
	}
	return publicKeyB64[:8]
}
