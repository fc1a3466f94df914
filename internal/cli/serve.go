package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/aretw0/stepper"
	httpAdapter "github.com/aretw0/stepper/pkg/adapters/http"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// ShutdownTimeout bounds how long in-flight requests may run after a stop signal.
const ShutdownTimeout = 5 * time.Second

// WithStreams feeds engine events to streams, for the SSE endpoint.
func WithStreams(streams *httpAdapter.StreamManager) SetupOption {
	return WithHooks(stepper.WithLifecycleHooks(streams.Hooks()))
}

// NewServer builds the HTTP server for app. streams must be the StreamManager
// whose hooks were passed to Setup, so that SSE clients see engine events.
func NewServer(app *App, streams *httpAdapter.StreamManager, addr string) *http.Server {
	if addr == "" {
		addr = app.Config.HTTP.Addr
	}
	opts := []httpAdapter.Option{
		httpAdapter.WithStreams(streams),
		httpAdapter.WithLogger(app.Logger),
	}
	if app.Config.HTTP.MetricsPath != "" {
		opts = append(opts, httpAdapter.WithMetrics(app.Config.HTTP.MetricsPath,
			promhttp.HandlerFor(app.Metrics, promhttp.HandlerOpts{})))
	}
	return &http.Server{
		Addr:              addr,
		Handler:           httpAdapter.NewHandler(app.Engine, opts...),
		ReadHeaderTimeout: 10 * time.Second,
	}
}

// Serve runs srv until ctx is done, then shuts it down gracefully.
func Serve(ctx context.Context, srv *http.Server, out io.Writer) error {
	printSystemMessage(out, "Starting stepper server on %s", srv.Addr)
	serverErrors := make(chan error, 1)
	go func() {
		serverErrors <- srv.ListenAndServe()
	}()

	select {
	case err := <-serverErrors:
		return fmt.Errorf("server error: %w", err)
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		closeErr := srv.Close()
		return fmt.Errorf("graceful shutdown did not complete in %v: %w", ShutdownTimeout, errors.Join(err, closeErr))
	}
	printSystemMessage(out, "Server stopped gracefully")
	return nil
}
