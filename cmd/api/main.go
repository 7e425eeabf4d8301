package main

import (
	"net/http"
	"os"
	"time"

	"github.com/joho/godotenv"

	"farm-records/internal/adapters/auth/jwtverifier"
	"farm-records/internal/adapters/auth/storeauth"
	"farm-records/internal/platform/config"
	"farm-records/internal/platform/logger"
	"farm-records/internal/ports/auth"
	"farm-records/internal/router"
)

func main() {
	// .env es opcional; en despliegue las vars vienen del entorno.
	_ = godotenv.Load()

	cfg, err := config.Load(".")
	if err != nil {
		logger.NewFromEnv().Error("config inválida", map[string]any{"error": err.Error()})
		os.Exit(1)
	}

	log := logger.New(logger.Options{
		Level:  logger.ParseLevel(cfg.Log.Level),
		Format: logger.ParseFormat(cfg.Log.Format),
		App:    "farm-records",
	})

	srv := &http.Server{
		Addr: ":" + cfg.Server.Port,
		Handler: router.NewRouter(router.Options{
			AuthVerifier: buildVerifier(cfg),
			Log:          log,
		}),
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 10 * time.Second,
	}

	log.Info("starting server", map[string]any{"addr": srv.Addr})
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Error("server error", map[string]any{"error": err.Error()})
		os.Exit(1)
	}
}

// buildVerifier elige el modo de autenticación: secreto HS256 local,
// verificación contra el record store, o nil (modo dev con header de
// debug).
func buildVerifier(cfg config.Config) auth.AuthVerifier {
	if cfg.Auth.JWTSecret != "" {
		return jwtverifier.New(cfg.Auth.JWTSecret)
	}
	if cfg.Auth.UseStore && cfg.Store.URL != "" {
		return storeauth.New(storeauth.Config{
			BaseURL: cfg.Store.URL,
			Timeout: cfg.Store.Timeout,
		})
	}
	return nil
}
