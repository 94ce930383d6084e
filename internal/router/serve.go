package router

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

const shutdownTimeout = 10 * time.Second

// Serve runs e on addr until ctx is done, then drains in-flight requests.
// It returns early with the listen error if the server cannot start.
func Serve(ctx context.Context, e *echo.Echo, addr string, log *zap.Logger) error {
	startErr := make(chan error, 1)
	go func() {
		log.Info("Server starting", zap.String("addr", addr))
		if err := e.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			startErr <- err
		}
		close(startErr)
	}()

	select {
	case err, ok := <-startErr:
		if ok {
			return err
		}
		return nil
	case <-ctx.Done():
	}

	log.Info("Shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return e.Shutdown(shutdownCtx)
}
