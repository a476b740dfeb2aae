package server

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/vampire-games/vampired/internal/logging"
	"golang.org/x/sync/errgroup"
)

const drainTimeout = 10 * time.Second

// New binds the listener up front so a bad port fails before anything
// else is wired.
func New(port string) (*Server, error) {
	listener, err := net.Listen("tcp", ":"+port)
	if err != nil {
		return nil, fmt.Errorf("listen on port %s: %w", port, err)
	}

	return &Server{listener: listener}, nil
}

type Server struct {
	listener net.Listener
}

func (s *Server) Addr() string {
	return s.listener.Addr().String()
}

// ServeHTTP serves until the context is cancelled, then drains in-flight
// requests.
func (s *Server) ServeHTTP(ctx context.Context, srv *http.Server) error {
	logger := logging.FromContext(ctx).Named("server")

	group, ctx := errgroup.WithContext(ctx)

	group.Go(func() error {
		<-ctx.Done()
		logger.Infof("shutting down http server")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), drainTimeout)
		defer cancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutdown server: %w", err)
		}
		return nil
	})

	group.Go(func() error {
		logger.Infof("listening on %s", s.Addr())
		if err := srv.Serve(s.listener); err != nil && err != http.ErrServerClosed {
			return fmt.Errorf("serve: %w", err)
		}
		return nil
	})

	return group.Wait()
}

func HandleHealth(ctx context.Context) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-ctx.Done():
			w.WriteHeader(http.StatusServiceUnavailable)
		default:
			w.WriteHeader(http.StatusOK)
		}
	})
}
