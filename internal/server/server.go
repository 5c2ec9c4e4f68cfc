package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/mgpai22/momentnav/internal/logging"
	"github.com/mgpai22/momentnav/internal/media"
	"github.com/mgpai22/momentnav/internal/navigator"
	"github.com/mgpai22/momentnav/internal/timeline"
)

type Config struct {
	Address string
	// watch the library roots and rebuild links on change
	Watch bool
	Roots []string
}

// Server runs the HTTP API, the SSE stream and the library watcher
type Server struct {
	cfg    Config
	nav    *navigator.Navigator
	coord  *timeline.Coordinator
	broker *Broker
	logger *logging.Logger
}

// New wires a server. broker should also be the coordinator's notify target
// (timeline.WithNotify(broker.PublishTimeline)).
func New(
	cfg Config,
	nav *navigator.Navigator,
	coord *timeline.Coordinator,
	broker *Broker,
	logger *logging.Logger,
) *Server {
	return &Server{
		cfg:    cfg,
		nav:    nav,
		coord:  coord,
		broker: broker,
		logger: logging.OrNop(logger),
	}
}

func (s *Server) Handler() http.Handler {
	return NewRouter(NewHandler(s.nav, s.coord, s.logger), s.broker)
}

// rebuilds the links and tells clients about it
func (s *Server) rebuild(ctx context.Context) {
	links, err := s.nav.Rebuild(ctx)
	if err != nil {
		s.logger.Errorw("Library rebuild failed", "error", err)
		return
	}
	s.broker.Publish(Event{Type: "library.rebuilt", Data: map[string]int{
		"links":     links.Len(),
		"unmatched": len(links.Unmatched()),
	}})
}

// Run serves until ctx is cancelled or SIGINT/SIGTERM arrives
func (s *Server) Run(ctx context.Context) error {
	httpServer := &http.Server{
		Addr:              s.cfg.Address,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)

	if s.cfg.Watch {
		g.Go(func() error {
			return media.Watch(gctx, s.cfg.Roots, s.logger, func() { s.rebuild(gctx) })
		})
	}

	g.Go(func() error {
		s.logger.Infow("Starting HTTP server", "address", s.cfg.Address)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("HTTP server error: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		quit := make(chan os.Signal, 1)
		signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
		defer signal.Stop(quit)

		select {
		case sig := <-quit:
			s.logger.Infow("Received shutdown signal", "signal", sig.String())
		case <-gctx.Done():
		}

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		// SSE streams end when the broker closes
		s.broker.Close()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			s.logger.Errorw("HTTP server shutdown error", "error", err)
		}
		return context.Canceled
	})

	err := g.Wait()
	if errors.Is(err, context.Canceled) {
		err = nil
	}
	if err != nil {
		return err
	}
	s.logger.Infow("Server stopped")
	return nil
}
