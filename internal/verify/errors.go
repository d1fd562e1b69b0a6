package verify

import (
	"errors"
	"fmt"

	"github.com/dropDatabas3/replayguard/internal/security/signature"
)

// Clases de error, para errors.Is.
var (
	ErrValidation = errors.New("verify: invalid payload")
	ErrReplay     = errors.New("verify: replay attack")
	ErrSignature  = errors.New("verify: invalid signature")
	ErrRegistry   = errors.New("verify: nonce registry unavailable")
)

// ValidationReason distingue los motivos de un ValidationError.
type ValidationReason string

const (
	ReasonMalformedRequest ValidationReason = "malformed_request"
	ReasonEmptyMessage     ValidationReason = "empty_message"
	ReasonEmptyNonceID     ValidationReason = "empty_nonce_id"
	ReasonMissingIssuedAt  ValidationReason = "missing_issued_at"
	ReasonIssuedInFuture   ValidationReason = "issued_at_in_future"
	ReasonExpiredNonce     ValidationReason = "expired_nonce"
)

// ValidationError: payload malformado o fuera de la ventana de frescura.
// El cliente se recupera emitiendo un nonce nuevo con la hora correcta.
type ValidationError struct {
	Reason ValidationReason
	Field  string
	Detail string
}

func (e *ValidationError) Error() string {
	if e.Detail != "" {
		return fmt.Sprintf("verify: %s: %s (%s)", e.Field, e.Reason, e.Detail)
	}
	return fmt.Sprintf("verify: %s: %s", e.Field, e.Reason)
}

func (e *ValidationError) Is(target error) bool { return target == ErrValidation }

// Malformed crea el ValidationError para un cuerpo que no se pudo decodificar.
func Malformed(err error) *ValidationError {
	return &ValidationError{Reason: ReasonMalformedRequest, Field: "body", Detail: err.Error()}
}

// ReplayError: el nonce ya fue consumido. Terminal para ese nonce.
type ReplayError struct {
	NonceID string
}

func (e *ReplayError) Error() string {
	return fmt.Sprintf("verify: nonce %q already used", e.NonceID)
}

func (e *ReplayError) Is(target error) bool { return target == ErrReplay }

// SignatureError: la firma no verifica (corrupción, clave equivocada o manipulación).
type SignatureError struct {
	Err error // *signature.Error
}

func (e *SignatureError) Error() string { return "verify: " + e.Err.Error() }

func (e *SignatureError) Unwrap() error { return e.Err }

func (e *SignatureError) Is(target error) bool { return target == ErrSignature }

// Kind devuelve el paso de verificación que falló.
func (e *SignatureError) Kind() signature.Kind { return signature.KindOf(e.Err) }

// RegistryError: el backend del registro falló. No es culpa del cliente; el request
// se rechaza igual (nunca se acepta sin haber registrado el nonce).
type RegistryError struct {
	Err error
}

func (e *RegistryError) Error() string { return "verify: registry: " + e.Err.Error() }

func (e *RegistryError) Unwrap() error { return e.Err }

func (e *RegistryError) Is(target error) bool { return target == ErrRegistry }
