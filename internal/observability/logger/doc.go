// Package logger provee un logger Zap singleton con scoping por contexto.
//
// Inicialización (una vez en main.go):
//
//	logger.Init(logger.Config{
//	    Env:   cfg.App.Env,   // "dev" o "prod"
//	    Level: cfg.Log.Level, // "debug", "info", "warn", "error"
//	    ServiceName: "verifier",
//	})
//	defer logger.Sync()
//
// En el pipeline y los controllers:
//
//	log := logger.From(ctx)
//	log.Info("nonce accepted", logger.NonceID(id), logger.PubKeyShort(pk))
//
// Sin contexto se usa el singleton: logger.L().
package logger
