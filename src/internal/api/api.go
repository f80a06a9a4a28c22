// Package api serves lookups and the reading log over JSON.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"bookshelf/src/internal/bookmeta"
	"bookshelf/src/internal/schema"
	"bookshelf/src/internal/stats"
	"bookshelf/src/internal/store"
)

// Searcher is the lookup surface the handlers need; *lookup.Client satisfies it.
type Searcher interface {
	Search(ctx context.Context, q bookmeta.Query, maxResults int, preferred bookmeta.Source) ([]bookmeta.BookRecord, error)
}

// Books is the reading-log surface; *store.Store satisfies it.
type Books interface {
	List() ([]schema.Entry, error)
	Add(e schema.Entry) (schema.Entry, error)
	Delete(idOrTitle string) (int, error)
}

// Server holds the dependencies shared by every handler.
type Server struct {
	search Searcher
	books  Books
	logger *slog.Logger
}

// New returns a Server. A nil logger discards output.
func New(search Searcher, books Books, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Server{search: search, books: books, logger: logger}
}

// Handler returns a router with every route registered.
func (s *Server) Handler() http.Handler {
	r := mux.NewRouter()
	s.RegisterRoutes(r)
	return r
}

// RegisterRoutes wires the API onto r.
func (s *Server) RegisterRoutes(r *mux.Router) {
	r.HandleFunc("/health", s.health).Methods(http.MethodGet)
	r.HandleFunc("/v1/search", s.searchText).Methods(http.MethodGet)
	r.HandleFunc("/v1/isbn/{isbn}", s.searchISBN).Methods(http.MethodGet)
	r.HandleFunc("/v1/books", s.listBooks).Methods(http.MethodGet)
	r.HandleFunc("/v1/books", s.addBook).Methods(http.MethodPost)
	r.HandleFunc("/v1/books/{id}", s.deleteBook).Methods(http.MethodDelete)
	r.HandleFunc("/v1/stats", s.stats).Methods(http.MethodGet)
}

type errorBody struct {
	Error  string              `json:"error"`
	Source string              `json:"source,omitempty"`
	Reason string              `json:"reason,omitempty"`
	Fields []schema.FieldError `json:"fields,omitempty"`
}

func (s *Server) health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) searchText(w http.ResponseWriter, r *http.Request) {
	s.runSearch(w, r, bookmeta.TextQuery(r.URL.Query().Get("q")))
}

func (s *Server) searchISBN(w http.ResponseWriter, r *http.Request) {
	s.runSearch(w, r, bookmeta.ISBNQuery(mux.Vars(r)["isbn"]))
}

func (s *Server) runSearch(w http.ResponseWriter, r *http.Request, q bookmeta.Query) {
	params := r.URL.Query()
	maxResults := 0
	if v := params.Get("max"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			writeJSON(w, http.StatusBadRequest, errorBody{Error: "max must be an integer"})
			return
		}
		maxResults = n
	}
	src, err := bookmeta.ParseSource(params.Get("source"))
	if err != nil {
		s.writeError(w, err)
		return
	}
	recs, err := s.search.Search(r.Context(), q, maxResults, src)
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"results": recs})
}

func (s *Server) listBooks(w http.ResponseWriter, r *http.Request) {
	entries, err := s.books.List()
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"books": entries})
}

func (s *Server) addBook(w http.ResponseWriter, r *http.Request) {
	var e schema.Entry
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, 1<<20))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&e); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody{Error: "invalid JSON body"})
		return
	}
	saved, err := s.books.Add(e)
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, saved)
}

func (s *Server) deleteBook(w http.ResponseWriter, r *http.Request) {
	n, err := s.books.Delete(mux.Vars(r)["id"])
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]int{"deleted": n})
}

func (s *Server) stats(w http.ResponseWriter, r *http.Request) {
	top := 10
	if v := r.URL.Query().Get("top"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			writeJSON(w, http.StatusBadRequest, errorBody{Error: "top must be an integer"})
			return
		}
		top = n
	}
	entries, err := s.books.List()
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, stats.Summarize(entries, top))
}

// writeError maps the error taxonomy onto HTTP statuses.
func (s *Server) writeError(w http.ResponseWriter, err error) {
	var (
		up   *bookmeta.UpstreamError
		bad  *bookmeta.MalformedError
		verr *schema.ValidationError
	)
	switch {
	case errors.Is(err, bookmeta.ErrInvalidQuery):
		writeJSON(w, http.StatusBadRequest, errorBody{Error: err.Error()})
	case errors.As(err, &verr):
		writeJSON(w, http.StatusBadRequest, errorBody{Error: "invalid entry", Fields: verr.Fields})
	case errors.As(err, &up):
		status := http.StatusBadGateway
		if up.Reason == bookmeta.ReasonTimeout {
			status = http.StatusGatewayTimeout
		}
		s.logger.Warn("upstream unavailable", "source", up.Source, "reason", up.Reason, "err", up.Err)
		writeJSON(w, status, errorBody{Error: "upstream unavailable", Source: string(up.Source), Reason: string(up.Reason)})
	case errors.As(err, &bad):
		s.logger.Warn("malformed upstream response", "source", bad.Source, "err", bad.Err)
		writeJSON(w, http.StatusBadGateway, errorBody{Error: "malformed upstream response", Source: string(bad.Source)})
	case errors.Is(err, store.ErrNotFound):
		writeJSON(w, http.StatusNotFound, errorBody{Error: err.Error()})
	default:
		s.logger.Error("request failed", "err", err)
		writeJSON(w, http.StatusInternalServerError, errorBody{Error: "internal error"})
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
