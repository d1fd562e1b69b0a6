package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/dropDatabas3/replayguard/internal/holder"
	"github.com/dropDatabas3/replayguard/internal/nonce"
	"github.com/dropDatabas3/replayguard/internal/observability/logger"
	"github.com/dropDatabas3/replayguard/internal/security/signature"
	"github.com/dropDatabas3/replayguard/internal/util/atomicwrite"
)

func envOr(k, def string) string {
	if v := strings.TrimSpace(os.Getenv(k)); v != "" {
		return v
	}
	return def
}

type app struct {
	url     string
	message string
	seed    string
	timeout time.Duration
}

func (a *app) holder() (*holder.Holder, error) {
	if a.seed != "" {
		return holder.FromSeed(a.seed)
	}
	return holder.New()
}

func (a *app) client() *holder.Client {
	return holder.NewClient(a.url, &http.Client{Timeout: a.timeout})
}

func (a *app) submit(ctx context.Context, c *holder.Client, label string, req nonce.SignedRequest) error {
	log := logger.From(ctx)
	res, err := c.Submit(ctx, req)
	if err != nil {
		return err
	}
	log.Debug("response received",
		logger.NonceID(req.NoncePayload.Nonce.ID),
		logger.Status(res.StatusCode),
	)
	fmt.Printf("%s: status=%d body=%s\n", label, res.StatusCode, strings.TrimSpace(string(res.Body)))
	return nil
}

func main() {
	_ = godotenv.Load()
	logger.Init(logger.Config{Env: envOr("APP_ENV", "dev"), Level: envOr("LOG_LEVEL", "info"), ServiceName: "holder"})
	defer func() { _ = logger.Sync() }()

	a := &app{}

	root := &cobra.Command{
		Use:           "holder",
		Short:         "Firma nonces y los envía al verifier",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&a.url, "url", envOr("VERIFY_SIGNATURE_API_URL", holder.DefaultURL), "Endpoint del verifier (env VERIFY_SIGNATURE_API_URL)")
	root.PersistentFlags().StringVar(&a.message, "message", "Hello Verifier!", "Mensaje a firmar")
	root.PersistentFlags().StringVar(&a.seed, "seed", envOr("HOLDER_SEED", ""), "Seed base64url de la clave privada (env HOLDER_SEED); vacío genera una efímera")
	root.PersistentFlags().DurationVar(&a.timeout, "timeout", 10*time.Second, "Timeout HTTP por request")

	var envFile string
	root.PersistentFlags().StringVar(&envFile, "env-file", "", "Archivo con HOLDER_SEED (p.ej. el generado por keygen --out)")
	root.PersistentPreRunE = func(cmd *cobra.Command, _ []string) error {
		if envFile == "" {
			return nil
		}
		vals, err := godotenv.Read(envFile)
		if err != nil {
			return fmt.Errorf("env-file: %w", err)
		}
		if seed := vals["HOLDER_SEED"]; seed != "" && !cmd.Flags().Changed("seed") {
			a.seed = seed
		}
		return nil
	}

	// send: un request válido
	sendCmd := &cobra.Command{
		Use:   "send",
		Short: "Envía un mensaje firmado con un nonce nuevo (espera 200)",
		RunE: func(cmd *cobra.Command, args []string) error {
			h, err := a.holder()
			if err != nil {
				return err
			}
			logger.L().Info("sending payload", logger.String("url", a.url), logger.PubKeyShort(signature.ShortKey(h.PublicKey())))
			return a.submit(cmd.Context(), a.client(), "send", h.Sign(a.message))
		},
	}

	// replay: el mismo request dos veces
	replayCmd := &cobra.Command{
		Use:   "replay",
		Short: "Envía el mismo request firmado dos veces (espera 200 y luego 409)",
		RunE: func(cmd *cobra.Command, args []string) error {
			h, err := a.holder()
			if err != nil {
				return err
			}
			c := a.client()
			req := h.Sign(a.message)
			if err := a.submit(cmd.Context(), c, "first", req); err != nil {
				return err
			}
			return a.submit(cmd.Context(), c, "replay", req)
		},
	}

	// expired: nonce emitido fuera de la ventana
	var age time.Duration
	expiredCmd := &cobra.Command{
		Use:   "expired",
		Short: "Envía un nonce emitido hace --age (espera 400)",
		RunE: func(cmd *cobra.Command, args []string) error {
			h, err := a.holder()
			if err != nil {
				return err
			}
			req := h.SignAt(uuid.NewString(), time.Now().Add(-age), a.message)
			return a.submit(cmd.Context(), a.client(), "expired", req)
		},
	}
	expiredCmd.Flags().DurationVar(&age, "age", 31*time.Second, "Antigüedad del nonce")

	// flood: muchos nonces distintos en paralelo
	var count, parallel int
	floodCmd := &cobra.Command{
		Use:   "flood",
		Short: "Envía --count requests válidos (muestra el 429 al pasar el rate limit)",
		RunE: func(cmd *cobra.Command, args []string) error {
			if count <= 0 || parallel <= 0 {
				return fmt.Errorf("--count y --parallel deben ser > 0")
			}
			h, err := a.holder()
			if err != nil {
				return err
			}
			c := a.client()

			var (
				mu       sync.Mutex
				byStatus = map[int]int{}
			)
			g, ctx := errgroup.WithContext(cmd.Context())
			g.SetLimit(parallel)
			for i := 0; i < count; i++ {
				req := h.Sign(fmt.Sprintf("Rate limit test request %d", i+1))
				label := fmt.Sprintf("request %d", i+1)
				g.Go(func() error {
					res, err := c.Submit(ctx, req)
					if err != nil {
						return err
					}
					mu.Lock()
					byStatus[res.StatusCode]++
					mu.Unlock()
					fmt.Printf("%s: status=%d\n", label, res.StatusCode)
					return nil
				})
			}
			if err := g.Wait(); err != nil {
				return err
			}
			fmt.Printf("summary: %v\n", byStatus)
			return nil
		},
	}
	floodCmd.Flags().IntVar(&count, "count", 15, "Cantidad de requests")
	floodCmd.Flags().IntVar(&parallel, "parallel", 4, "Requests en vuelo a la vez")

	// keygen: identidad persistente; --out la deja en un archivo estilo .env (0600)
	var keyOut string
	keygenCmd := &cobra.Command{
		Use:   "keygen",
		Short: "Genera un keypair Ed25519 (seed y clave pública en base64url)",
		RunE: func(cmd *cobra.Command, args []string) error {
			h, err := holder.New()
			if err != nil {
				return err
			}
			if keyOut != "" {
				line := fmt.Sprintf("HOLDER_SEED=%s\n", h.Seed())
				if err := atomicwrite.WriteFile(keyOut, []byte(line), 0o600); err != nil {
					return err
				}
				fmt.Printf("seed written to %s\n", keyOut)
			} else {
				fmt.Printf("HOLDER_SEED=%s\n", h.Seed())
			}
			fmt.Printf("public_key=%s\n", h.PublicKey())
			return nil
		},
	}
	keygenCmd.Flags().StringVar(&keyOut, "out", "", "Archivo donde guardar HOLDER_SEED (cargable con --env-file)")

	root.AddCommand(sendCmd, replayCmd, expiredCmd, floodCmd, keygenCmd)

	if err := root.ExecuteContext(context.Background()); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		_ = logger.Sync()
		os.Exit(1)
	}
}
