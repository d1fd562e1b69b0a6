// Package verify contiene el controller de POST /api/verify-signature.
package verify

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"io"
	"net/http"
	"strings"
	"unicode/utf8"

	dto "github.com/dropDatabas3/replayguard/internal/http/dto/verify"
	httperrors "github.com/dropDatabas3/replayguard/internal/http/errors"
	"github.com/dropDatabas3/replayguard/internal/nonce"
	"github.com/dropDatabas3/replayguard/internal/observability/logger"
	"github.com/dropDatabas3/replayguard/internal/verify"
)

// DefaultMaxBodyBytes acota el cuerpo del request.
const DefaultMaxBodyBytes int64 = 1 << 20

var errInvalidUTF8 = stderrors.New("body is not valid UTF-8")

// Verifier es lo que el controller necesita del pipeline.
type Verifier interface {
	Handle(ctx context.Context, req nonce.SignedRequest) verify.Outcome
}

type VerifyController struct {
	verifier     Verifier
	maxBodyBytes int64
}

// NewVerifyController crea el controller. maxBodyBytes <= 0 usa DefaultMaxBodyBytes.
func NewVerifyController(v Verifier, maxBodyBytes int64) *VerifyController {
	if maxBodyBytes <= 0 {
		maxBodyBytes = DefaultMaxBodyBytes
	}
	return &VerifyController{verifier: v, maxBodyBytes: maxBodyBytes}
}

// VerifySignature maneja POST /api/verify-signature
func (c *VerifyController) VerifySignature(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := logger.From(ctx).With(logger.Layer("controller"), logger.Op("VerifyController.VerifySignature"))

	ct := strings.ToLower(r.Header.Get("Content-Type"))
	if !strings.Contains(ct, "application/json") {
		httperrors.WriteError(w, httperrors.ErrUnsupportedMediaType)
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, c.maxBodyBytes)
	defer r.Body.Close()

	body, err := io.ReadAll(r.Body)
	if err != nil {
		var tooLarge *http.MaxBytesError
		if stderrors.As(err, &tooLarge) {
			httperrors.WriteError(w, httperrors.ErrBodyTooLarge)
			return
		}
		log.Debug("body read failed", logger.Err(err))
		writeOutcome(w, verify.Outcome{Err: verify.Malformed(err)})
		return
	}
	// encoding/json reemplaza UTF-8 inválido por U+FFFD en vez de fallar.
	if !utf8.Valid(body) {
		writeOutcome(w, verify.Outcome{Err: verify.Malformed(errInvalidUTF8)})
		return
	}

	var req dto.VerifyRequest
	if err := json.Unmarshal(body, &req); err != nil {
		log.Debug("invalid body", logger.Err(err))
		writeOutcome(w, verify.Outcome{Err: verify.Malformed(err)})
		return
	}

	writeOutcome(w, c.verifier.Handle(ctx, req.ToDomain()))
}

// writeOutcome traduce el veredicto del pipeline a la respuesta HTTP.
func writeOutcome(w http.ResponseWriter, out verify.Outcome) {
	if out.Accepted {
		w.Header().Set("Content-Type", "application/json; charset=utf-8")
		w.WriteHeader(http.StatusOK)
		_ = json.NewEncoder(w).Encode(dto.VerifyResponse{Message: dto.AcceptedMessage})
		return
	}
	httperrors.WriteError(w, toAppError(out))
}

func toAppError(out verify.Outcome) *httperrors.AppError {
	var (
		ve *verify.ValidationError
		se *verify.SignatureError
	)
	switch {
	case stderrors.As(out.Err, &ve):
		return httperrors.ErrInvalidPayload.
			WithReason(string(ve.Reason)).
			WithDetail(strings.TrimPrefix(ve.Error(), "verify: "))
	case stderrors.Is(out.Err, verify.ErrReplay):
		return httperrors.ErrReplayAttack.WithReason(out.Reason())
	case stderrors.As(out.Err, &se):
		return httperrors.ErrInvalidSignature.
			WithReason(string(se.Kind())).
			WithDetail(se.Err.Error())
	default:
		return httperrors.ErrInternalServerError.WithCause(out.Err)
	}
}
