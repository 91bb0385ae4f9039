package server

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/url"
	"strconv"

	"github.com/emrgen/sweater/internal/command"
	"github.com/emrgen/sweater/internal/domain"
	"github.com/emrgen/sweater/internal/graph"
	"github.com/emrgen/sweater/internal/oid"
	"github.com/emrgen/sweater/internal/service"
	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/cors"
	"github.com/sirupsen/logrus"
)

const maxCommandsSize = 4 << 20

type applyResponse struct {
	Results []*service.Result `json:"results"`
	Error   string            `json:"error,omitempty"`
}

type thesisResponse struct {
	ID oid.ID `json:"id"`
	*domain.Thesis
}

type taggedResponse struct {
	Tag string   `json:"tag"`
	IDs []oid.ID `json:"ids"`
}

type errorResponse struct {
	Error string `json:"error"`
}

// NewHandler routes the http api to the thesis service and the graph exporter.
func NewHandler(svc *service.ThesisService, exporter *graph.Exporter) http.Handler {
	h := &handler{service: svc, exporter: exporter}

	router := chi.NewRouter()
	router.Use(RequestTimeInterceptor)
	router.Use(chimiddleware.Recoverer)
	router.Use(cors.New(cors.Options{
		AllowedOrigins: []string{"*"}, // All origins are allowed
		AllowedMethods: []string{http.MethodGet, http.MethodPost},
		AllowedHeaders: []string{"Content-Type"},
	}).Handler)

	router.Route("/v1", func(r chi.Router) {
		r.Post("/commands", h.applyCommands)
		r.Get("/graph", h.exportGraph)
		r.Get("/theses/{ref}", h.getThesis)
		r.Get("/tags/{tag}", h.getTagged)
	})

	return router
}

type handler struct {
	service  *service.ThesisService
	exporter *graph.Exporter
}

func (h *handler) applyCommands(w http.ResponseWriter, r *http.Request) {
	atomic := false
	if value := r.URL.Query().Get("atomic"); value != "" {
		var err error
		if atomic, err = strconv.ParseBool(value); err != nil {
			writeJSON(w, http.StatusBadRequest, errorResponse{Error: "atomic: " + err.Error()})
			return
		}
	}

	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxCommandsSize))
	if err != nil {
		writeJSON(w, http.StatusRequestEntityTooLarge, errorResponse{Error: err.Error()})
		return
	}

	var results []*service.Result
	if atomic {
		results, err = h.service.ApplyAtomic(r.Context(), string(body))
	} else {
		results, err = h.service.Apply(r.Context(), string(body))
	}
	if results == nil {
		results = []*service.Result{}
	}

	if err != nil {
		writeJSON(w, statusOf(err), applyResponse{Results: results, Error: err.Error()})
		return
	}

	writeJSON(w, http.StatusOK, applyResponse{Results: results})
}

func (h *handler) exportGraph(w http.ResponseWriter, r *http.Request) {
	graph, err := h.exporter.Export(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}

	w.Header().Set("Content-Type", "text/vnd.graphviz; charset=utf-8")
	if _, err := io.WriteString(w, graph); err != nil {
		logrus.Errorf("write graph: %v", err)
	}
}

func (h *handler) getThesis(w http.ResponseWriter, r *http.Request) {
	ref, err := urlParam(r, "ref")
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: err.Error()})
		return
	}

	thesis, err := h.service.Get(r.Context(), ref)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, thesisResponse{ID: thesis.ID(), Thesis: thesis})
}

func (h *handler) getTagged(w http.ResponseWriter, r *http.Request) {
	tag, err := urlParam(r, "tag")
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: err.Error()})
		return
	}

	ids, err := h.service.Tagged(r.Context(), tag)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, taggedResponse{Tag: tag, IDs: ids})
}

// urlParam returns the decoded path parameter. chi matches on the raw path
// when the request has one, leaving its parameters escaped.
func urlParam(r *http.Request, key string) (string, error) {
	value := chi.URLParam(r, key)
	if r.URL.RawPath == "" {
		return value, nil
	}

	return url.PathUnescape(value)
}

// statusOf maps the error taxonomy onto http status codes.
func statusOf(err error) int {
	switch {
	case errors.Is(err, service.ErrStoreFailure):
		return http.StatusInternalServerError
	case errors.Is(err, service.ErrUnknownThesis), errors.Is(err, service.ErrUnknownReference):
		return http.StatusNotFound
	case errors.Is(err, command.ErrParse),
		errors.Is(err, service.ErrUnknownRelationKind),
		errors.Is(err, oid.ErrMalformedIdentifier),
		errors.Is(err, domain.ErrInvalidText),
		errors.Is(err, domain.ErrInvalidTag),
		errors.Is(err, domain.ErrInvalidAlias),
		errors.Is(err, domain.ErrInvalidRelationKind),
		errors.Is(err, domain.ErrInvalidContent):
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}

func writeError(w http.ResponseWriter, err error) {
	status := statusOf(err)
	if status == http.StatusInternalServerError {
		logrus.Errorf("request failed: %v", err)
	}
	writeJSON(w, status, errorResponse{Error: err.Error()})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logrus.Errorf("write response: %v", err)
	}
}
