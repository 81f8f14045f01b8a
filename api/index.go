package handler

import (
	"context"
	"net/http"

	"github.com/wadjakorntonsri/go-diecast-catalog/pkg/app"
	"github.com/wadjakorntonsri/go-diecast-catalog/pkg/config"
	"github.com/wadjakorntonsri/go-diecast-catalog/pkg/logging"
)

var mux http.Handler

func init() {
	cfg := config.Load()
	logger := logging.Setup(cfg.LogLevel, cfg.AppEnv)

	// Note: On Vercel, local sqlite files are ephemeral unless DATABASE_URL points at Turso
	application, err := app.Build(context.Background(), cfg)
	if err != nil {
		logger.Error("failed to initialize application", "error", err)
		panic(err)
	}
	mux = application.Handler
}

// Handler is the entrypoint for Vercel
func Handler(w http.ResponseWriter, r *http.Request) {
	mux.ServeHTTP(w, r)
}
