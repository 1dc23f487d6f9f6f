package server

import (
	"context"
	"errors"
	"log"
	"net/http"

	"github.com/ordodb/ordo/internal/storage"
)

// Server is the OrdoDB HTTP server. It owns the query handler and, when
// given one, the background compactor.
type Server struct {
	db        *storage.Database
	compactor *storage.BackgroundCompactor
	addr      string
	handler   *QueryHandler
}

// NewServer creates a server. A nil compactor disables background compaction.
func NewServer(db *storage.Database, addr string, compactor *storage.BackgroundCompactor) *Server {
	return &Server{
		db:        db,
		compactor: compactor,
		addr:      addr,
		handler:   NewQueryHandler(db),
	}
}

// Start runs the HTTP server and the background compactor until the context
// is cancelled, then shuts down gracefully.
func (s *Server) Start(ctx context.Context) error {
	mux := http.NewServeMux()
	mux.HandleFunc("/", s.handler.HandleQuery)
	mux.HandleFunc("/ping", s.handler.HandlePing)

	if s.compactor != nil {
		go s.compactor.Run(ctx)
	}

	srv := &http.Server{
		Addr:    s.addr,
		Handler: mux,
	}

	go func() {
		<-ctx.Done()
		if err := srv.Shutdown(context.Background()); err != nil {
			log.Printf("[server] shutdown: %v", err)
		}
	}()

	log.Printf("[server] listening on %s", s.addr)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
