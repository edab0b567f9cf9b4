package http

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/tidwall/gjson"

	"github.com/sophialabs/stubwire/internal/domain/endpoint"
	"github.com/sophialabs/stubwire/internal/domain/trace"
	"github.com/sophialabs/stubwire/internal/infrastructure/ports"
	"github.com/sophialabs/stubwire/internal/infrastructure/services"
	"github.com/sophialabs/stubwire/internal/infrastructure/usecases"
)

const maxBodySize = 10 << 20 // 10 MB

// Server is the HTTP front of the mock engine: an /__admin authoring and
// inspection surface plus a catch-all handler that feeds everything else
// into the dispatcher. Routing of mock requests is the engine's own path
// matcher, so chi only carries the admin routes.
type Server struct {
	router     *chi.Mux
	dispatchUC *usecases.DispatchUseCase
	upsertUC   *usecases.UpsertEndpointUseCase
	deleteUC   *usecases.DeleteEndpointUseCase
	loadUC     *usecases.LoadEndpointsUseCase
	registry   *services.EndpointRegistry
	traceBuf   *trace.RingBuffer
	logger     ports.Logger
}

// NewServer creates a Server with its routes built. loadUC may be nil when
// no seed directory is configured; the reload operation then reports 501.
func NewServer(
	dispatchUC *usecases.DispatchUseCase,
	upsertUC *usecases.UpsertEndpointUseCase,
	deleteUC *usecases.DeleteEndpointUseCase,
	loadUC *usecases.LoadEndpointsUseCase,
	registry *services.EndpointRegistry,
	traceBuf *trace.RingBuffer,
	logger ports.Logger,
) *Server {
	s := &Server{
		dispatchUC: dispatchUC,
		upsertUC:   upsertUC,
		deleteUC:   deleteUC,
		loadUC:     loadUC,
		registry:   registry,
		traceBuf:   traceBuf,
		logger:     logger,
	}
	s.router = s.buildRouter()
	return s
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

func (s *Server) buildRouter() *chi.Mux {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(middleware.RealIP)

	r.Route("/__admin", func(r chi.Router) {
		r.Get("/endpoints", s.handleListEndpoints)
		r.Post("/endpoints", s.handleUpsertEndpoint)
		r.Delete("/endpoints", s.handleDeleteEndpoint)
		r.Get("/trace", s.handleGetTrace)
		r.Post("/reload", s.handleReload)
	})

	// Everything else is a mock request.
	r.NotFound(s.mockHandler)
	r.MethodNotAllowed(s.mockHandler)

	return r
}

func (s *Server) mockHandler(w http.ResponseWriter, r *http.Request) {
	s.logger.Info("request received", "method", r.Method, "path", r.URL.Path, "query", r.URL.RawQuery, "remote", r.RemoteAddr)

	defer func() { _ = r.Body.Close() }()
	raw, err := io.ReadAll(io.LimitReader(r.Body, maxBodySize))
	if err != nil {
		http.Error(w, "failed to read request body", http.StatusBadRequest)
		return
	}

	input := &usecases.DispatchInput{
		Method:     r.Method,
		RequestURI: r.URL.RequestURI(),
		Body:       parseBodyObject(raw),
	}

	result := s.dispatchUC.Execute(r.Context(), input)

	switch result.Outcome {
	case trace.OutcomeNotFound:
		s.logger.Info("request unmatched", "method", r.Method, "path", r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusNotFound)
		writeJSON(w, map[string]any{
			"error":   "no_match",
			"method":  r.Method,
			"path":    r.URL.Path,
			"message": "No endpoint registered for this path",
			"known":   result.KnownEndpoints,
		})

	case trace.OutcomeRateLimited:
		s.logger.Info("request rate-limited", "endpoint", result.EndpointID)
		w.Header().Set("Content-Type", "application/json")
		w.Header().Set("Retry-After", "1")
		w.WriteHeader(http.StatusTooManyRequests)
		writeJSON(w, map[string]string{
			"error":   "rate_limited",
			"message": "Too many requests",
		})

	case trace.OutcomeRenderError:
		// The transport reports 500; the scenario's intended status code
		// travels in the payload as a distinct signal.
		s.logger.Error("template render failed", "endpoint", result.EndpointID, "error", result.Err)
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusInternalServerError)
		writeJSON(w, map[string]any{
			"error":           "render_error",
			"message":         result.Err.Error(),
			"intended_status": result.Status,
			"raw":             string(result.Raw),
		})

	default:
		for k, v := range result.Headers {
			w.Header().Set(k, v)
		}
		w.Header().Set("Content-Type", services.InferContentType(result.ContentType, result.Raw))
		w.WriteHeader(result.Status)
		if _, err := w.Write(result.Raw); err != nil {
			s.logger.Debug("failed to write response body", "error", err)
		}
		s.logger.Info("request matched", "method", r.Method, "path", r.URL.Path,
			"endpoint", result.EndpointID, "scenario", result.Scenario, "status", result.Status)
	}
}

// parseBodyObject parses the request body tolerantly: a valid JSON object
// becomes the body params, anything else (empty, invalid, array, scalar)
// yields nil so conditions bind an empty body mapping.
func parseBodyObject(raw []byte) map[string]any {
	if len(raw) == 0 || !gjson.ValidBytes(raw) {
		return nil
	}
	parsed := gjson.ParseBytes(raw)
	if !parsed.IsObject() {
		return nil
	}
	obj, ok := parsed.Value().(map[string]any)
	if !ok {
		return nil
	}
	return obj
}

// apiDefinition is the authoring payload.
type apiDefinition struct {
	EndpointID       string            `json:"endpointId"`
	Method           string            `json:"method"`
	StatusCode       int               `json:"statusCode"`
	Delay            int               `json:"delay"`
	ResponseTemplate string            `json:"responseTemplate"`
	Scenarios        []apiScenario     `json:"scenarios,omitempty"`
	Engine           string            `json:"engine,omitempty"`
	Headers          map[string]string `json:"headers,omitempty"`
	ContentType      string            `json:"contentType,omitempty"`
	Policy           *apiPolicy        `json:"policy,omitempty"`
}

type apiScenario struct {
	Name             string `json:"name"`
	Condition        string `json:"condition,omitempty"`
	StatusCode       int    `json:"statusCode"`
	Delay            int    `json:"delay"`
	ResponseTemplate string `json:"responseTemplate"`
}

type apiPolicy struct {
	RateLimit *apiRateLimit `json:"rateLimit,omitempty"`
}

type apiRateLimit struct {
	Rate  float64 `json:"rate"`
	Burst int     `json:"burst"`
	Key   string  `json:"key,omitempty"`
}

func (a *apiDefinition) toDomain() *endpoint.Definition {
	def := &endpoint.Definition{
		PathPattern:     a.EndpointID,
		Method:          a.Method,
		DefaultStatus:   a.StatusCode,
		DefaultDelayMs:  a.Delay,
		DefaultTemplate: a.ResponseTemplate,
		Engine:          a.Engine,
		Headers:         a.Headers,
		ContentType:     a.ContentType,
	}
	for _, sc := range a.Scenarios {
		def.Scenarios = append(def.Scenarios, endpoint.Scenario{
			Name:      sc.Name,
			Condition: sc.Condition,
			Status:    sc.StatusCode,
			DelayMs:   sc.Delay,
			Template:  sc.ResponseTemplate,
		})
	}
	if a.Policy != nil && a.Policy.RateLimit != nil {
		def.Policy = &endpoint.Policy{
			RateLimit: &endpoint.RateLimit{
				Rate:  a.Policy.RateLimit.Rate,
				Burst: a.Policy.RateLimit.Burst,
				Key:   a.Policy.RateLimit.Key,
			},
		}
	}
	return def
}

func (s *Server) handleListEndpoints(w http.ResponseWriter, _ *http.Request) {
	eps := s.registry.Snapshot()
	list := make([]map[string]any, 0, len(eps))
	for _, ep := range eps {
		list = append(list, map[string]any{
			"identity":  ep.Identity,
			"method":    ep.Method,
			"path":      ep.PathPattern,
			"status":    ep.Default.Status,
			"scenarios": len(ep.Scenarios),
		})
	}
	w.Header().Set("Content-Type", "application/json")
	writeJSON(w, list)
}

func (s *Server) handleUpsertEndpoint(w http.ResponseWriter, r *http.Request) {
	defer func() { _ = r.Body.Close() }()
	raw, err := io.ReadAll(io.LimitReader(r.Body, maxBodySize))
	if err != nil {
		http.Error(w, "failed to read request body", http.StatusBadRequest)
		return
	}

	var payload apiDefinition
	if err := json.Unmarshal(raw, &payload); err != nil {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusBadRequest)
		writeJSON(w, map[string]string{"error": "invalid_payload", "message": err.Error()})
		return
	}

	identity, err := s.upsertUC.Execute(r.Context(), payload.toDomain())
	if err != nil {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusBadRequest)
		writeJSON(w, map[string]string{"error": "upsert_failed", "message": err.Error()})
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	writeJSON(w, map[string]string{"status": "ok", "identity": identity})
}

func (s *Server) handleDeleteEndpoint(w http.ResponseWriter, r *http.Request) {
	method := r.URL.Query().Get("method")
	path := r.URL.Query().Get("path")
	if path == "" {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusBadRequest)
		writeJSON(w, map[string]string{"error": "invalid_request", "message": "path query parameter is required"})
		return
	}

	if err := s.deleteUC.Execute(r.Context(), method, path); err != nil {
		if errors.Is(err, endpoint.ErrNotFound) {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusNotFound)
			writeJSON(w, map[string]string{"error": "not_found", "message": "no such endpoint: " + endpoint.Identity(method, path)})
			return
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusInternalServerError)
		writeJSON(w, map[string]string{"error": "delete_failed", "message": err.Error()})
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleGetTrace(w http.ResponseWriter, r *http.Request) {
	n := 10
	if lastParam := r.URL.Query().Get("last"); lastParam != "" {
		if parsed, err := strconv.Atoi(lastParam); err == nil && parsed > 0 {
			n = parsed
		}
	}

	entries := s.traceBuf.Last(n)
	w.Header().Set("Content-Type", "application/json")
	writeJSON(w, entries)
}

func (s *Server) handleReload(w http.ResponseWriter, r *http.Request) {
	if s.loadUC == nil {
		http.Error(w, "no seed directory configured", http.StatusNotImplemented)
		return
	}

	if err := s.loadUC.Execute(r.Context()); err != nil {
		s.logger.Error("reload failed", "error", err)
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusInternalServerError)
		writeJSON(w, map[string]string{
			"error":   "reload_failed",
			"message": "seed reload failed, check server logs",
		})
		return
	}

	w.Header().Set("Content-Type", "application/json")
	writeJSON(w, map[string]string{"status": "ok", "message": "endpoint seeds reloaded"})
}

func writeJSON(w http.ResponseWriter, v any) {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	_ = enc.Encode(v)
}
