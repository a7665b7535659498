package httpadapter

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"matrixlead/internal/domain"
	"matrixlead/internal/ports"
	"matrixlead/internal/services/leads"
	"matrixlead/internal/workers/qualifyrunner"
)

// Server exposes the lead intake and qualification API over chi.
type Server struct {
	leads     *leads.Service
	jobs      ports.JobRepository
	processor qualifyrunner.Processor
	log       *slog.Logger
}

func New(leadSvc *leads.Service, jobs ports.JobRepository, processor qualifyrunner.Processor, log *slog.Logger) *Server {
	return &Server{leads: leadSvc, jobs: jobs, processor: processor, log: log}
}

func (s *Server) Routes() chi.Router {
	r := chi.NewRouter()
	r.Use(requestLogger(s.log))

	r.Get("/healthz", s.handleHealthz)
	r.Method(http.MethodGet, "/metrics", promhttp.Handler())

	r.Route("/api/leads", func(r chi.Router) {
		r.Post("/", s.handleCreateLead)
		r.Get("/", s.handleListLeads)
		r.Get("/{id}", s.handleGetLead)
		r.Get("/{id}/logs", s.handleLeadLogs)
		r.Post("/{id}/qualify", s.handleQualify)
	})
	return r
}

type leadRequest struct {
	Name    string `json:"name"`
	Email   string `json:"email"`
	Phone   string `json:"phone"`
	Company string `json:"company"`
	Budget  string `json:"budget"`
	Source  string `json:"source"`
	Message string `json:"message"`
}

type leadResponse struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Email       string    `json:"email"`
	Phone       string    `json:"phone,omitempty"`
	Company     string    `json:"company,omitempty"`
	Budget      string    `json:"budget,omitempty"`
	Source      string    `json:"source,omitempty"`
	Message     string    `json:"message,omitempty"`
	EmailDomain string    `json:"email_domain,omitempty"`
	Status      string    `json:"status"`
	Score       float64   `json:"score"`
	Confidence  float64   `json:"confidence"`
	RiskFlags   []string  `json:"risk_flags"`
	Enriched    bool      `json:"enriched"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

type logResponse struct {
	ID        string         `json:"id"`
	LeadID    string         `json:"lead_id"`
	Action    string         `json:"action"`
	Details   map[string]any `json:"details"`
	CreatedAt time.Time      `json:"created_at"`
}

func toLeadResponse(lead domain.Lead) leadResponse {
	flags := lead.RiskFlags
	if flags == nil {
		flags = []string{}
	}
	return leadResponse{
		ID: lead.ID, Name: lead.Name, Email: lead.Email, Phone: lead.Phone,
		Company: lead.Company, Budget: lead.Budget, Source: lead.Source,
		Message: lead.Message, EmailDomain: lead.EmailDomain, Status: lead.Status,
		Score: lead.Score, Confidence: lead.Confidence, RiskFlags: flags,
		Enriched: lead.Enriched, CreatedAt: lead.CreatedAt, UpdatedAt: lead.UpdatedAt,
	}
}

func (s *Server) handleHealthz(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleCreateLead(w http.ResponseWriter, r *http.Request) {
	var req leadRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if req.Email == "" && req.Phone == "" {
		writeError(w, http.StatusBadRequest, "lead needs at least an email or a phone number")
		return
	}

	lead, err := s.leads.Create(r.Context(), leads.CreateInput{
		Name: req.Name, Email: req.Email, Phone: req.Phone,
		Company: req.Company, Budget: req.Budget, Source: req.Source, Message: req.Message,
	})
	if err != nil {
		s.log.Error("lead create failed", "error", err)
		writeError(w, http.StatusInternalServerError, "could not create lead")
		return
	}
	writeJSON(w, http.StatusCreated, toLeadResponse(lead))
}

func (s *Server) handleListLeads(w http.ResponseWriter, r *http.Request) {
	all, err := s.leads.List(r.Context())
	if err != nil {
		s.log.Error("lead list failed", "error", err)
		writeError(w, http.StatusInternalServerError, "could not list leads")
		return
	}
	out := make([]leadResponse, 0, len(all))
	for _, lead := range all {
		out = append(out, toLeadResponse(lead))
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleGetLead(w http.ResponseWriter, r *http.Request) {
	lead, err := s.leads.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.notFoundOr500(w, err, "could not load lead")
		return
	}
	writeJSON(w, http.StatusOK, toLeadResponse(lead))
}

func (s *Server) handleLeadLogs(w http.ResponseWriter, r *http.Request) {
	logs, err := s.leads.Logs(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.notFoundOr500(w, err, "could not load lead logs")
		return
	}
	out := make([]logResponse, 0, len(logs))
	for _, entry := range logs {
		out = append(out, logResponse{
			ID: entry.ID, LeadID: entry.LeadID, Action: entry.Action,
			Details: entry.Details, CreatedAt: entry.CreatedAt,
		})
	}
	writeJSON(w, http.StatusOK, out)
}

// handleQualify enqueues a fresh qualification job. With ?wait=true the job is
// processed inline and the updated lead returned; otherwise 202.
func (s *Server) handleQualify(w http.ResponseWriter, r *http.Request) {
	leadID := chi.URLParam(r, "id")
	jobID, err := s.leads.Requalify(r.Context(), leadID)
	if err != nil {
		s.notFoundOr500(w, err, "could not enqueue qualification")
		return
	}

	if r.URL.Query().Get("wait") != "true" {
		writeJSON(w, http.StatusAccepted, map[string]string{"lead_id": leadID, "job_id": jobID})
		return
	}

	timeout := 60
	if t, err := strconv.Atoi(r.URL.Query().Get("timeout")); err == nil && t > 0 {
		timeout = t
	}
	ctx, cancel := context.WithTimeout(r.Context(), time.Duration(timeout)*time.Second)
	defer cancel()

	if err := qualifyrunner.ProcessInline(ctx, s.jobs, s.processor, leadID); err != nil {
		s.log.Error("inline qualification failed", "lead_id", leadID, "error", err)
		writeError(w, http.StatusInternalServerError, "qualification failed")
		return
	}
	lead, err := s.leads.Get(ctx, leadID)
	if err != nil {
		s.notFoundOr500(w, err, "could not load lead")
		return
	}
	writeJSON(w, http.StatusOK, toLeadResponse(lead))
}

func (s *Server) notFoundOr500(w http.ResponseWriter, err error, msg string) {
	if errors.Is(err, ports.ErrNotFound) {
		writeError(w, http.StatusNotFound, "lead not found")
		return
	}
	s.log.Error(msg, "error", err)
	writeError(w, http.StatusInternalServerError, msg)
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, code int, msg string) {
	writeJSON(w, code, map[string]string{"error": msg})
}
