// Package verify implementa el pipeline de validación de un SignedRequest:
//
//	Structural -> Freshness -> Replay -> Signature -> Accepted
//
// Cada paso corta el pipeline al fallar. El nonce se registra ANTES de verificar la
// firma: un id se consume con el primer intento que pasa la frescura, tenga o no una
// firma válida, y cualquier reenvío posterior es un replay. No hay rollback.
package verify

import (
	"context"
	"fmt"
	"time"
	"unicode/utf8"

	"github.com/dropDatabas3/replayguard/internal/metrics"
	"github.com/dropDatabas3/replayguard/internal/nonce"
	"github.com/dropDatabas3/replayguard/internal/observability/logger"
	"github.com/dropDatabas3/replayguard/internal/registry"
	"github.com/dropDatabas3/replayguard/internal/security/signature"
)

// DefaultWindow es la antigüedad máxima de issued_at.
const DefaultWindow = 30 * time.Second

// Pipeline valida requests firmados. Es seguro para uso concurrente; el único estado
// compartido es el registro de nonces.
type Pipeline struct {
	store  registry.Store
	window time.Duration
	now    func() time.Time
}

// Option configura un Pipeline.
type Option func(*Pipeline)

// WithWindow cambia la ventana de frescura.
func WithWindow(d time.Duration) Option {
	return func(p *Pipeline) {
		if d > 0 {
			p.window = d
		}
	}
}

// WithClock inyecta el reloj (tests).
func WithClock(now func() time.Time) Option {
	return func(p *Pipeline) {
		if now != nil {
			p.now = now
		}
	}
}

// NewPipeline crea un pipeline sobre store.
func NewPipeline(store registry.Store, opts ...Option) *Pipeline {
	p := &Pipeline{
		store:  store,
		window: DefaultWindow,
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Window devuelve la ventana de frescura configurada.
func (p *Pipeline) Window() time.Duration { return p.window }

// Handle corre el pipeline completo sobre req.
func (p *Pipeline) Handle(ctx context.Context, req nonce.SignedRequest) Outcome {
	start := time.Now()
	n := req.NoncePayload.Nonce
	log := logger.From(ctx).With(
		logger.Layer("service"),
		logger.Op("verify.Handle"),
		logger.NonceID(n.ID),
		logger.IssuedAt(n.IssuedAt),
	)

	out := Outcome{Err: p.run(ctx, req)}
	out.Accepted = out.Err == nil

	class, reason := out.Class(), out.Reason()
	metrics.ObserveOutcome(class, reason, time.Since(start))

	switch class {
	case ClassAccepted:
		log.Info("Signature is valid and nonce accepted",
			logger.PubKeyShort(signature.ShortKey(req.PublicKey)))
	case ClassInternal:
		log.Error("verification aborted", logger.Outcome(class), logger.Err(out.Err))
	default:
		log.Warn("request rejected",
			logger.Outcome(class),
			logger.Reason(reason),
			logger.Err(out.Err),
		)
	}
	return out
}

func (p *Pipeline) run(ctx context.Context, req nonce.SignedRequest) error {
	payload := req.NoncePayload

	if err := checkStructure(payload); err != nil {
		return err
	}
	if err := p.checkFreshness(payload.Nonce); err != nil {
		return err
	}

	// Sección crítica: solo el test-and-set del registro, nunca la criptografía.
	fresh, err := p.store.CheckAndRecord(ctx, payload.Nonce.ID)
	if err != nil {
		return &RegistryError{Err: err}
	}
	if !fresh {
		return &ReplayError{NonceID: payload.Nonce.ID}
	}

	if err := signature.Verify(payload, req.Signature, req.PublicKey); err != nil {
		return &SignatureError{Err: err}
	}
	return nil
}

// checkStructure valida los campos obligatorios. issued_at == 0 se trata como ausente:
// el DTO de transporte deja en 0 un issued_at que no vino en el cuerpo.
func checkStructure(p nonce.NoncePayload) error {
	switch {
	case !utf8.ValidString(p.Message) || !utf8.ValidString(p.Nonce.ID):
		return &ValidationError{Reason: ReasonMalformedRequest, Field: "nonce_payload", Detail: "invalid UTF-8"}
	case p.Message == "":
		return &ValidationError{Reason: ReasonEmptyMessage, Field: "nonce_payload.message"}
	case p.Nonce.ID == "":
		return &ValidationError{Reason: ReasonEmptyNonceID, Field: "nonce_payload.nonce.id"}
	case p.Nonce.IssuedAt == 0:
		return &ValidationError{Reason: ReasonMissingIssuedAt, Field: "nonce_payload.nonce.issued_at"}
	}
	return nil
}

func (p *Pipeline) checkFreshness(n nonce.Nonce) error {
	now := p.now().UnixMilli()
	if n.IssuedAt > now {
		return &ValidationError{
			Reason: ReasonIssuedInFuture,
			Field:  "nonce_payload.nonce.issued_at",
			Detail: fmt.Sprintf("%dms ahead of verifier clock", n.IssuedAt-now),
		}
	}
	// Comparar contra el corte y no restar: now - issued_at desborda int64 para
	// issued_at muy negativos.
	if cutoff := now - p.window.Milliseconds(); n.IssuedAt < cutoff {
		return &ValidationError{
			Reason: ReasonExpiredNonce,
			Field:  "nonce_payload.nonce.issued_at",
			Detail: fmt.Sprintf("issued_at %d older than cutoff %d (window %dms)", n.IssuedAt, cutoff, p.window.Milliseconds()),
		}
	}
	return nil
}
