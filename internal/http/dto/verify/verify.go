// Package verify contiene los DTOs del endpoint de verificación de firmas.
package verify

import "github.com/dropDatabas3/replayguard/internal/nonce"

// AcceptedMessage es el cuerpo de éxito que esperan los holders existentes.
const AcceptedMessage = "Signature is valid and nonce accepted"

// NonceDTO usa puntero en issued_at para distinguir "ausente" de un valor.
type NonceDTO struct {
	ID       string `json:"id"`
	IssuedAt *int64 `json:"issued_at"`
}

type NoncePayloadDTO struct {
	Nonce   NonceDTO `json:"nonce"`
	Message string   `json:"message"`
}

// VerifyRequest es el cuerpo de POST /api/verify-signature.
type VerifyRequest struct {
	NoncePayload NoncePayloadDTO `json:"nonce_payload"`
	Signature    string          `json:"signature"`
	PublicKey    string          `json:"public_key"`
}

// ToDomain convierte el DTO. El dominio no distingue ausente de cero: un issued_at
// ausente y un "issued_at": 0 explícito quedan ambos en 0, y el pipeline rechaza los
// dos como missing_issued_at. Epoch 0 nunca es una emisión fresca.
func (r VerifyRequest) ToDomain() nonce.SignedRequest {
	var issuedAt int64
	if r.NoncePayload.Nonce.IssuedAt != nil {
		issuedAt = *r.NoncePayload.Nonce.IssuedAt
	}
	return nonce.SignedRequest{
		NoncePayload: nonce.NoncePayload{
			Nonce:   nonce.Nonce{ID: r.NoncePayload.Nonce.ID, IssuedAt: issuedAt},
			Message: r.NoncePayload.Message,
		},
		Signature: r.Signature,
		PublicKey: r.PublicKey,
	}
}

type VerifyResponse struct {
	Message string `json:"message"`
}
