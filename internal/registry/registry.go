// Package registry implementa el registro de nonces ya consumidos.
//
// El registro expone una sola capacidad, CheckAndRecord: "insertar si no existe" atómico.
// Backends:
//   - set:    conjunto sin límite ni expiración (vive lo que vive el proceso).
//   - window: mapa con expiración indexada por la ventana de frescura. Un id aceptado
//     tiene issued_at >= momento_de_registro - ventana, así que pasada la ventana ningún
//     request con ese id puede superar el chequeo de frescura y la entrada se puede soltar.
//
// Ningún backend persiste entre reinicios ni se comparte entre instancias.
package registry

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
)

// Store es el registro de nonces. Las implementaciones deben ser seguras para uso concurrente.
type Store interface {
	// CheckAndRecord registra id y devuelve true si no estaba presente.
	// Si ya estaba, devuelve false y no modifica el estado.
	// Para dos llamadas concurrentes con el mismo id, exactamente una observa true.
	CheckAndRecord(ctx context.Context, id string) (bool, error)

	// Len devuelve la cantidad de ids registrados (para el backend window puede incluir
	// entradas vencidas que el janitor todavía no limpió).
	Len() int

	// Ping devuelve error si el store ya no acepta registros (p.ej. ErrClosed).
	Ping(ctx context.Context) error

	// Close libera recursos.
	Close() error
}

// Backends soportados.
const (
	BackendSet    = "set"
	BackendWindow = "window"
)

// Config configura el backend del registro.
type Config struct {
	Backend string // "window" (default) | "set"

	// Window es la ventana de frescura del pipeline. Solo aplica a "window".
	Window time.Duration
	// Margin se suma a Window como TTL de cada entrada, para tolerar saltos de reloj.
	Margin time.Duration
	// CleanupInterval es la frecuencia con la que se purgan entradas vencidas.
	CleanupInterval time.Duration
}

// Errores de registro.
var (
	ErrEmptyID        = errors.New("registry: empty nonce id")
	ErrClosed         = errors.New("registry: store closed")
	ErrUnknownBackend = errors.New("registry: unknown backend")
)

// New crea un Store según la configuración.
func New(cfg Config) (Store, error) {
	switch strings.ToLower(strings.TrimSpace(cfg.Backend)) {
	case BackendWindow, "":
		if cfg.Window <= 0 {
			return nil, fmt.Errorf("registry: window backend requires a positive window, got %s", cfg.Window)
		}
		return NewWindow(cfg.Window+cfg.Margin, cfg.CleanupInterval), nil
	case BackendSet:
		return NewSet(), nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownBackend, cfg.Backend)
	}
}
