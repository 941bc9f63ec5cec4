package chi

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/kailas-cloud/scriptforge/internal/domain"
	domcorpus "github.com/kailas-cloud/scriptforge/internal/domain/corpus"
	domgen "github.com/kailas-cloud/scriptforge/internal/domain/generation"
	cataloguc "github.com/kailas-cloud/scriptforge/internal/usecase/catalog"
	generationuc "github.com/kailas-cloud/scriptforge/internal/usecase/generation"
	healthuc "github.com/kailas-cloud/scriptforge/internal/usecase/health"
	traininguc "github.com/kailas-cloud/scriptforge/internal/usecase/training"
)

const defaultMaxBodyBytes = 1 << 20

// ScriptReader looks up single corpus entries.
type ScriptReader interface {
	Get(id string) (domcorpus.Document, error)
}

// errorHandler tries to handle a domain error. Returns true if handled.
type errorHandler func(w http.ResponseWriter, err error) bool

// Server serves the scriptforge HTTP API.
type Server struct {
	generation    *generationuc.Service
	training      *traininguc.Service
	scripts       ScriptReader
	catalog       *cataloguc.Service
	health        *healthuc.Service
	logger        *zap.Logger
	maxBodyBytes  int64
	errorHandlers []errorHandler
}

// NewServer creates an HTTP API server.
func NewServer(
	generation *generationuc.Service,
	training *traininguc.Service,
	scripts ScriptReader,
	catalog *cataloguc.Service,
	health *healthuc.Service,
	logger *zap.Logger,
) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &Server{
		generation:   generation,
		training:     training,
		scripts:      scripts,
		catalog:      catalog,
		health:       health,
		logger:       logger,
		maxBodyBytes: defaultMaxBodyBytes,
	}
	s.errorHandlers = []errorHandler{
		sentinelHandler(domain.ErrNotFound, http.StatusNotFound, "Script not found"),
		sentinelHandler(domain.ErrAlreadyExists, http.StatusConflict, "Script already exists"),
		invalidInputHandler,
	}
	return s
}

// WithMaxBodyBytes limits request body size.
func (s *Server) WithMaxBodyBytes(n int64) *Server {
	if n > 0 {
		s.maxBodyBytes = n
	}
	return s
}

// Routes mounts the API on r.
func (s *Server) Routes(r chi.Router) {
	r.Get("/health", s.HealthCheck)
	r.Post("/generate", s.Generate)
	r.Post("/train", s.Train)
	r.Get("/train/status/*", s.TrainingStatus)
	r.Get("/scripts", s.ListScripts)
	r.Get("/scripts/search", s.SearchScripts)
	r.Get("/scripts/stats", s.ScriptStats)
	// File scripts are addressed by their relative path, which may contain slashes.
	// A trailing /download serves the raw text as an attachment.
	r.Get("/scripts/*", s.GetScript)
	r.Get("/metrics", s.Metrics)
}

// HealthCheck handles GET /health.
func (s *Server) HealthCheck(w http.ResponseWriter, r *http.Request) {
	probe, _ := strconv.ParseBool(r.URL.Query().Get("probe"))
	report := s.health.Check(r.Context(), probe)

	writeJSON(w, http.StatusOK, healthResponse{
		Status:            string(report.Status),
		Timestamp:         report.Timestamp,
		TrainingDataCount: report.CorpusSize,
		OpenAIAvailable:   report.ProviderActive,
		OpenAIStatus:      string(report.Provider),
	})
}

// Generate handles POST /generate.
func (s *Server) Generate(w http.ResponseWriter, r *http.Request) {
	var req generateRequest
	if err := s.decode(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if req.Prompt == nil {
		writeError(w, http.StatusBadRequest, "Prompt is required")
		return
	}

	res, err := s.generation.Generate(r.Context(), domgen.Request{
		Prompt:     *req.Prompt,
		OutputType: domgen.OutputType(req.OutputType),
		History:    req.ConversationHistory,
	})
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, generateResponse{
		Content:    res.Content,
		OutputType: string(res.OutputType),
		Timestamp:  time.Now().UTC(),
		Prompt:     *req.Prompt,
		Source:     string(res.Source),
	})
}

// Train handles POST /train with a JSON body or a multipart file upload.
func (s *Server) Train(w http.ResponseWriter, r *http.Request) {
	if isMultipart(r) {
		s.trainUpload(w, r)
		return
	}

	var req trainRequest
	if err := s.decode(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if req.Content == "" {
		writeError(w, http.StatusBadRequest, "Script content is required")
		return
	}

	doc, count, err := s.training.Train(r.Context(), traininguc.Input{
		Content:  req.Content,
		ScriptID: req.ScriptID,
		Metadata: req.Metadata,
	})
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}

	writeTrained(w, doc, count)
}

func writeTrained(w http.ResponseWriter, doc domcorpus.Document, count int) {
	writeJSON(w, http.StatusOK, trainResponse{
		Message:           "Training data processed successfully",
		ScriptID:          doc.ID,
		ParsedData:        doc.Structure(),
		TrainingDataCount: count,
	})
}

// TrainingStatus handles GET /train/status/{id}. Training is synchronous, so every
// stored script is complete.
func (s *Server) TrainingStatus(w http.ResponseWriter, r *http.Request) {
	doc, err := s.scripts.Get(chi.URLParam(r, "*"))
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}

	title, _ := doc.Metadata["title"].(string)
	writeJSON(w, http.StatusOK, trainingStatusResponse{
		ScriptID:  doc.ID,
		Title:     title,
		Status:    "completed",
		Source:    string(doc.Source),
		Timestamp: doc.Timestamp,
	})
}

// Metrics handles GET /metrics.
func (s *Server) Metrics(w http.ResponseWriter, r *http.Request) {
	promhttp.Handler().ServeHTTP(w, r)
}

// decode reads a JSON body capped at maxBodyBytes.
func (s *Server) decode(w http.ResponseWriter, r *http.Request, v any) error {
	r.Body = http.MaxBytesReader(w, r.Body, s.maxBodyBytes)
	return json.NewDecoder(r.Body).Decode(v)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, errorResponse{Error: message})
}

// sentinelHandler returns an errorHandler that matches a single sentinel error.
func sentinelHandler(sentinel error, status int, message string) errorHandler {
	return func(w http.ResponseWriter, err error) bool {
		if !errors.Is(err, sentinel) {
			return false
		}
		writeError(w, status, message)
		return true
	}
}

// invalidInputHandler reports validation failures with the wrapped detail.
func invalidInputHandler(w http.ResponseWriter, err error) bool {
	if !errors.Is(err, domain.ErrInvalidInput) {
		return false
	}
	writeError(w, http.StatusBadRequest, err.Error())
	return true
}

func (s *Server) handleDomainError(w http.ResponseWriter, r *http.Request, err error) {
	log := s.logger.With(zap.String("request_id", chiMiddleware.GetReqID(r.Context())))
	for _, h := range s.errorHandlers {
		if h(w, err) {
			log.Debug("domain error", zap.Error(err))
			return
		}
	}
	log.Error("internal error", zap.Error(err))
	writeError(w, http.StatusInternalServerError, "Internal server error")
}
