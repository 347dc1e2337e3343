package sankey

import (
	"context"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"time"
)

// Handler serves the interactive page at every path. The page is rendered
// per request so a browser refresh after a config tweak and re-run sees the
// new artifact.
func Handler(d Diagram) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		if err := RenderHTML(d, w); err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
		}
	})
}

// Serve hosts the diagram on bind:port until ctx is done.
func Serve(ctx context.Context, d Diagram, bind string, port int, log *slog.Logger) error {
	addr := fmt.Sprintf("%s:%d", bind, port)
	srv := &http.Server{Addr: addr, Handler: Handler(d)}

	errCh := make(chan error, 1)
	go func() { errCh <- srv.ListenAndServe() }()

	if log != nil {
		log.Info("serving diagram", slog.String("url", "http://"+addr))
	}

	select {
	case <-ctx.Done():
		shutCtx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
		defer cancel()
		return srv.Shutdown(shutCtx)
	case err := <-errCh:
		if err != nil && err != http.ErrServerClosed {
			return fmt.Errorf("serve diagram: %w", err)
		}
		return nil
	}
}

// serveEphemeral starts the diagram on a loopback listener with a random
// port and returns its base URL plus a stop func. Used by the PNG capture.
func serveEphemeral(d Diagram) (base string, stop func() error, err error) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		return "", nil, fmt.Errorf("listen: %w", err)
	}
	srv := &http.Server{Handler: Handler(d)}
	go srv.Serve(ln)

	stop = func() error {
		ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
		defer cancel()
		return srv.Shutdown(ctx)
	}
	return fmt.Sprintf("http://%s", ln.Addr()), stop, nil
}
