package logger

import (
	"time"

	"go.uber.org/zap"
)

// =================================================================================
// CAMPOS ESTÁNDAR - HTTP
// =================================================================================

func RequestID(v string) zap.Field { return zap.String("request_id", v) }

func Method(v string) zap.Field { return zap.String("method", v) }

func Path(v string) zap.Field { return zap.String("path", v) }

func Status(v int) zap.Field { return zap.Int("status", v) }

func Bytes(v int) zap.Field { return zap.Int("bytes", v) }

func ClientIP(v string) zap.Field { return zap.String("client_ip", v) }

// DurationMs crea un campo para la duración en milisegundos.
func DurationMs(v time.Duration) zap.Field { return zap.Int64("duration_ms", v.Milliseconds()) }

// =================================================================================
// CAMPOS ESTÁNDAR - VERIFICACIÓN
// =================================================================================

// NonceID es el id del nonce; también sirve como trace id del request.
func NonceID(v string) zap.Field { return zap.String("nonce_id", v) }

// IssuedAt es issued_at del nonce en ms epoch.
func IssuedAt(v int64) zap.Field { return zap.Int64("issued_at", v) }

// PubKeyShort recibe el prefijo de la clave pública (nunca la clave completa).
func PubKeyShort(v string) zap.Field { return zap.String("pubkey", v) }

// Outcome: accepted | validation | replay | signature | internal.
func Outcome(v string) zap.Field { return zap.String("outcome", v) }

// Reason es el motivo de rechazo legible por máquina.
func Reason(v string) zap.Field { return zap.String("reason", v) }

// =================================================================================
// CAMPOS ESTÁNDAR - SISTEMA
// =================================================================================

func Component(v string) zap.Field { return zap.String("component", v) }

func Op(v string) zap.Field { return zap.String("op", v) }

func Layer(v string) zap.Field { return zap.String("layer", v) }

func Err(err error) zap.Field { return zap.Error(err) }

func String(key, v string) zap.Field { return zap.String(key, v) }

func Int(key string, v int) zap.Field { return zap.Int(key, v) }

func Any(key string, v any) zap.Field { return zap.Any(key, v) }
