package verify

import "errors"

// Clases de outcome (también usadas como label de métricas).
const (
	ClassAccepted   = "accepted"
	ClassValidation = "validation"
	ClassReplay     = "replay"
	ClassSignature  = "signature"
	ClassInternal   = "internal"
)

// Outcome es el resultado de Handle: Accepted, o rechazado con Err.
type Outcome struct {
	Accepted bool
	Err      error
}

// Class devuelve la clase del outcome.
func (o Outcome) Class() string {
	switch {
	case o.Accepted:
		return ClassAccepted
	case errors.Is(o.Err, ErrValidation):
		return ClassValidation
	case errors.Is(o.Err, ErrReplay):
		return ClassReplay
	case errors.Is(o.Err, ErrSignature):
		return ClassSignature
	default:
		return ClassInternal
	}
}

// Reason devuelve el motivo legible por máquina.
func (o Outcome) Reason() string {
	if o.Accepted {
		return "ok"
	}
	var (
		ve *ValidationError
		se *SignatureError
	)
	switch {
	case errors.As(o.Err, &ve):
		return string(ve.Reason)
	case errors.Is(o.Err, ErrReplay):
		return "replay_attack"
	case errors.As(o.Err, &se):
		return string(se.Kind())
	default:
		return "internal_error"
	}
}
