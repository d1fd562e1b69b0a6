package signature

import (
	"errors"
	"fmt"
)

// Kind identifica en qué paso falló la verificación.
type Kind string

const (
	KindDecode                 Kind = "decode_error"
	KindInvalidKeyLength       Kind = "invalid_key_length"
	KindInvalidSignatureLength Kind = "invalid_signature_length"
	KindMalformedKey           Kind = "malformed_key"
	KindInvalidSignature       Kind = "invalid_signature"
)

// ErrSignature permite errors.Is(err, ErrSignature) para cualquier *Error.
var ErrSignature = errors.New("signature: verification failed")

// Error es el resultado fallido de Verify.
type Error struct {
	Kind  Kind
	Field string // "public_key" | "signature" (vacío si no aplica)
	Err   error
}

func (e *Error) Error() string {
	msg := string(e.Kind)
	if e.Field != "" {
		msg = e.Field + ": " + msg
	}
	if e.Err != nil {
		return fmt.Sprintf("signature: %s: %v", msg, e.Err)
	}
	return "signature: " + msg
}

func (e *Error) Unwrap() error { return e.Err }

// Is hace que todo *Error matchee ErrSignature.
func (e *Error) Is(target error) bool { return target == ErrSignature }

// KindOf extrae el Kind de un error devuelto por Verify, o "" si no es un *Error.
func KindOf(err error) Kind {
	var se *Error
	if errors.As(err, &se) {
		return se.Kind
	}
	return ""
}
