// Package nonce define el modelo de datos firmado por el holder: Nonce, NoncePayload y
// SignedRequest, junto con la serialización canónica sobre la que se calcula la firma.
package nonce

import "time"

// Nonce es el token de frescura de un solo uso que viaja dentro del payload firmado.
type Nonce struct {
	// ID opaco y único (formato UUID, no se exige que sea un UUID real).
	ID string `json:"id"`
	// IssuedAt es el instante de emisión en milisegundos epoch (UTC).
	IssuedAt int64 `json:"issued_at"`
}

// IssuedTime devuelve IssuedAt como time.Time.
func (n Nonce) IssuedTime() time.Time {
	return time.UnixMilli(n.IssuedAt).UTC()
}

// NoncePayload es exactamente lo que firma el holder.
type NoncePayload struct {
	Nonce   Nonce  `json:"nonce"`
	Message string `json:"message"`
}

// SignedRequest es el cuerpo de POST /api/verify-signature.
type SignedRequest struct {
	NoncePayload NoncePayload `json:"nonce_payload"`
	// Signature: base64url sin padding de una firma de 64 bytes.
	Signature string `json:"signature"`
	// PublicKey: base64url sin padding de una verifying key de 32 bytes.
	PublicKey string `json:"public_key"`
}

// New arma un Nonce con el id dado emitido en t.
func New(id string, t time.Time) Nonce {
	return Nonce{ID: id, IssuedAt: t.UnixMilli()}
}
