package controller

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/rs/cors"

	"github.com/greenstamp/greenstamp-wallet/internal/logging"
)

const shutdownTimeout = 10 * time.Second

// NewServer wraps handler with cors for browser frontends
func NewServer(address string, handler http.Handler) *http.Server {
	corsHandler := cors.New(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{
			http.MethodGet,
			http.MethodPost,
			http.MethodOptions,
		},
		AllowedHeaders: []string{"*"},
		ExposedHeaders: []string{HeaderCorrelationID},
	})

	return &http.Server{
		Addr:              address,
		Handler:           corsHandler.Handler(handler),
		ReadHeaderTimeout: 10 * time.Second,
	}
}

// Serve runs srv until ctx is cancelled and then shuts it down
func Serve(ctx context.Context, srv *http.Server) error {
	errChan := make(chan error, 1)
	go func() {
		logging.L.Info().Str("address", srv.Addr).Msg("http server listening")
		if err := srv.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
			errChan <- err
		}
		close(errChan)
	}()

	select {
	case err := <-errChan:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	logging.L.Info().Msg("http server stopped")
	return nil
}
