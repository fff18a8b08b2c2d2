package httputil

import (
	"context"
	"errors"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"
)

// NewServer returns http.Server with sane timeouts
func NewServer(addr string, handler http.Handler) *http.Server {
	return &http.Server{
		Addr:         addr,
		ReadTimeout:  120 * time.Second,
		WriteTimeout: 120 * time.Second,
		IdleTimeout:  120 * time.Second,
		Handler:      handler,
	}
}

// ListenAndServe runs srv until ctx is cancelled or we get SIGINT / SIGTERM,
// then shuts it down gracefully, waiting up to 5 seconds for
// in-flight requests.
// ready, if not nil, is called after we start listening
func ListenAndServe(ctx context.Context, srv *http.Server, ready func(addr string)) error {
	ln, err := (&net.ListenConfig{}).Listen(ctx, "tcp", srv.Addr)
	if err != nil {
		return err
	}
	if ready != nil {
		ready(ln.Addr().String())
	}

	chServerErr := make(chan error, 1)
	go func() {
		err := srv.Serve(ln)
		// mute error caused by Shutdown()
		if errors.Is(err, http.ErrServerClosed) {
			err = nil
		}
		chServerErr <- err
	}()

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt /* SIGINT */, syscall.SIGTERM)
	defer stop()

	select {
	case err = <-chServerErr:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	err = srv.Shutdown(shutdownCtx)
	if errors.Is(err, context.DeadlineExceeded) {
		// timeout
		return nil
	}
	return err
}
