// Command mockservices runs local stand-ins for the account and document
// generation services so the web app can be exercised end to end.
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"nextstep-cv/pkg/logger"
)

func envOr(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func startMock(addr string, h http.Handler, name string, log logger.Logger) *http.Server {
	srv := &http.Server{Addr: addr, Handler: h, ReadHeaderTimeout: 10 * time.Second}
	go func() {
		log.Info("mock listening", zap.String("service", name), zap.String("addr", addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("mock server failed", err, zap.String("service", name))
		}
	}()
	return srv
}

func main() {
	log := logger.New(envOr("APP_ENV", "development"))

	auth := startMock(envOr("MOCK_AUTH_ADDR", ":3001"), newAuthMux(newUsers(), log), "auth", log)
	gen := startMock(envOr("MOCK_GEN_ADDR", ":3002"), newGenerateMux(log), "generate", log)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	_ = auth.Shutdown(shutdownCtx)
	_ = gen.Shutdown(shutdownCtx)
}
