package server

import (
	"fmt"
	"io"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/ordodb/ordo/internal/engine"
	"github.com/ordodb/ordo/internal/parser"
	"github.com/ordodb/ordo/internal/storage"
)

// QueryHandler serves queries over HTTP.
type QueryHandler struct {
	db *storage.Database
}

// NewQueryHandler creates a new query handler.
func NewQueryHandler(db *storage.Database) *QueryHandler {
	return &QueryHandler{db: db}
}

// HandleQuery processes a query sent via the query parameter or request body.
func (h *QueryHandler) HandleQuery(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query().Get("query")
	if query == "" {
		body, err := io.ReadAll(r.Body)
		if err != nil {
			http.Error(w, "failed to read request body", http.StatusBadRequest)
			return
		}
		query = strings.TrimSpace(string(body))
	}

	if query == "" {
		http.Error(w, "empty query", http.StatusBadRequest)
		return
	}

	format := ParseFormat(r.URL.Query().Get("format"))

	stmt, err := parser.ParseQuery(query)
	if err != nil {
		log.Printf("[http] parse error: %v", err)
		http.Error(w, fmt.Sprintf("parse error: %v", err), http.StatusBadRequest)
		return
	}

	start := time.Now()
	result, err := engine.Execute(stmt, h.db)
	if err != nil {
		log.Printf("[http] query failed: %v", err)
		http.Error(w, fmt.Sprintf("execution error: %v", err), http.StatusInternalServerError)
		return
	}
	log.Printf("[http] query ok in %s: %d rows", time.Since(start).Round(time.Microsecond), len(result.Rows))

	if result.Message != "" {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		fmt.Fprintln(w, result.Message)
		return
	}

	w.Header().Set("Content-Type", format.ContentType())
	if err := FormatResult(w, result, format); err != nil {
		http.Error(w, fmt.Sprintf("format error: %v", err), http.StatusInternalServerError)
	}
}

// HandlePing responds with "Ok." for health checks.
func (h *QueryHandler) HandlePing(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	fmt.Fprintln(w, "Ok.")
}
