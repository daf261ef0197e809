// Package httpapi exposes the screening pipeline over HTTP. It is a thin
// surface: one endpoint runs a screen, the rest list and export what was run.
package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strconv"
	"strings"

	"github.com/gorilla/mux"

	"github.com/rahardian/conflict-screen/internal/history"
	"github.com/rahardian/conflict-screen/internal/screening"
)

type Runner interface {
	Run(ctx context.Context, req screening.AssignmentRequest) (screening.ScreenResult, error)
}

type PDFRenderer interface {
	Render(ctx context.Context, markdown, title string) ([]byte, error)
}

type Server struct {
	runner   Runner
	history  *history.Store
	renderer PDFRenderer
}

// NewServer builds the route table. history and renderer may be nil; the
// corresponding endpoints then report 501.
func NewServer(runner Runner, hist *history.Store, renderer PDFRenderer) http.Handler {
	s := &Server{runner: runner, history: hist, renderer: renderer}
	r := mux.NewRouter()
	r.HandleFunc("/v1/screenings", s.handleCreateScreening).Methods(http.MethodPost)
	r.HandleFunc("/v1/screenings/{id}/report.pdf", s.handleReportPDF).Methods(http.MethodGet)
	r.HandleFunc("/v1/history", s.handleListHistory).Methods(http.MethodGet)
	r.HandleFunc("/v1/history", s.handleClearHistory).Methods(http.MethodDelete)
	r.HandleFunc("/v1/health", s.handleHealth).Methods(http.MethodGet)
	return r
}

func (s *Server) handleCreateScreening(w http.ResponseWriter, r *http.Request) {
	var req screening.AssignmentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}

	res, err := s.runner.Run(r.Context(), req)
	if err != nil {
		var ie *screening.InputError
		if errors.As(err, &ie) {
			writeError(w, http.StatusBadRequest, ie.Error())
			return
		}
		log.Printf("screening failed request_id=%s stage=%s err=%q", res.RequestID, screening.StageNameFromError(err), err.Error())
		writeError(w, http.StatusBadGateway, "screening failed: "+err.Error())
		return
	}

	if s.history != nil && res.Outcome == screening.OutcomeComplete {
		blob, _ := json.Marshal(res)
		if _, err := s.history.Save(r.Context(), history.Entry{
			ID:              res.RequestID,
			Assignor:        res.Request.Assignor,
			Address:         res.Request.Address,
			Summary:         res.Report.Summary,
			ClientSentiment: res.Report.ClientSentiment,
			CandidateCount:  len(res.Candidates),
			ResultJSON:      string(blob),
		}); err != nil {
			log.Printf("history save failed request_id=%s err=%q", res.RequestID, err.Error())
		}
	}
	writeJSON(w, http.StatusOK, res)
}

func (s *Server) handleReportPDF(w http.ResponseWriter, r *http.Request) {
	if s.history == nil || s.renderer == nil {
		writeError(w, http.StatusNotImplemented, "report rendering is not configured")
		return
	}
	id := mux.Vars(r)["id"]
	entry, ok, err := s.history.Get(r.Context(), id)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if !ok {
		writeError(w, http.StatusNotFound, "no analysis with id "+id)
		return
	}
	var res screening.ScreenResult
	if err := json.Unmarshal([]byte(entry.ResultJSON), &res); err != nil {
		writeError(w, http.StatusInternalServerError, "stored result is unreadable: "+err.Error())
		return
	}
	pdf, err := s.renderer.Render(r.Context(), screening.BuildMarkdown(res), "Laporan Analisis Konflik")
	if err != nil {
		writeError(w, http.StatusInternalServerError, "render failed: "+err.Error())
		return
	}
	w.Header().Set("Content-Type", "application/pdf")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(pdf)
}

func (s *Server) handleListHistory(w http.ResponseWriter, r *http.Request) {
	if s.history == nil {
		writeError(w, http.StatusNotImplemented, "history is not configured")
		return
	}
	limit := parseInt(r.URL.Query().Get("limit"), 50)
	entries, err := s.history.List(r.Context(), limit)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"ok": true, "analyses": entries})
}

func (s *Server) handleClearHistory(w http.ResponseWriter, r *http.Request) {
	if s.history == nil {
		writeError(w, http.StatusNotImplemented, "history is not configured")
		return
	}
	if err := s.history.Clear(r.Context()); err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"ok": true})
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"ok": true})
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]any{"ok": false, "error": message})
}

func parseInt(value string, def int) int {
	if strings.TrimSpace(value) == "" {
		return def
	}
	v, err := strconv.Atoi(value)
	if err != nil {
		return def
	}
	return v
}
