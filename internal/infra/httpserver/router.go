package httpserver

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	appinspection "github.com/bryanwahyu/ip-inspection/internal/application/inspection"
	domain "github.com/bryanwahyu/ip-inspection/internal/domain/inspection"
	"github.com/bryanwahyu/ip-inspection/internal/middleware"
)

const maxBodyBytes = 1 << 20

var (
	allowedHeaders = []string{"authorization", "x-client-info", "apikey", "content-type"}
	allowedMethods = []string{http.MethodPost, http.MethodGet, http.MethodOptions}
)

type Options struct {
	// Checkers back /health. Empty means always healthy.
	Checkers map[string]middleware.HealthChecker
	// Limiter guards the inspection route. Nil disables limiting.
	Limiter *middleware.RateLimiter
}

type Router struct {
	inspectSvc *appinspection.Service
}

func NewRouter(inspectSvc *appinspection.Service, opts Options) http.Handler {
	r := &Router{inspectSvc: inspectSvc}
	mux := chi.NewRouter()

	// staticCORS goes first so recovered panics still carry the headers
	mux.Use(staticCORS)
	mux.Use(chimw.RequestID)
	mux.Use(middleware.LoggingMiddleware)
	mux.Use(middleware.MetricsMiddleware)
	mux.Use(chimw.Recoverer)
	mux.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: allowedMethods,
		AllowedHeaders: allowedHeaders,
		MaxAge:         300,
	}))
	mux.Use(middleware.BearerCredential)

	// must be set before Route so sub-routers inherit them
	mux.MethodNotAllowed(func(w http.ResponseWriter, req *http.Request) {
		writeJSON(w, http.StatusMethodNotAllowed, errorBody{Error: "method not allowed"})
	})
	mux.NotFound(func(w http.ResponseWriter, req *http.Request) {
		writeJSON(w, http.StatusNotFound, errorBody{Error: "not found"})
	})

	mux.Get("/health", middleware.HealthHandler(opts.Checkers))
	mux.Get("/ready", middleware.ReadinessHandler(opts.Checkers["database"]))
	mux.Get("/live", middleware.LivenessHandler)
	mux.Get("/metrics", middleware.MetricsHandler)

	limit := func(h http.Handler) http.Handler { return h }
	if opts.Limiter != nil {
		limit = opts.Limiter.Middleware
	}

	for _, base := range []string{"/v1/ip-inspection", "/functions/v1/ip-inspection"} {
		mux.Route(base, func(rt chi.Router) {
			rt.With(limit).Post("/", r.wrap(r.handleInspect))
			rt.Options("/", handlePreflight)
			rt.Get("/records", r.wrap(r.handleRecords))
		})
	}

	return mux
}

type handlerFunc func(http.ResponseWriter, *http.Request) error

type errorBody struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}

func (r *Router) wrap(h handlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, req *http.Request) {
		if err := h(w, req); err != nil {
			status, msg := classify(err)
			log.Printf("http method=%s path=%s status=%d err=%v", req.Method, req.URL.Path, status, err)
			writeJSON(w, status, errorBody{Error: msg, Details: err.Error()})
		}
	}
}

// classify maps an error chain to a status code and a client-facing message.
func classify(err error) (int, string) {
	switch {
	case errors.Is(err, domain.ErrInvalidInput):
		return http.StatusBadRequest, domain.ErrInvalidInput.Error()
	case errors.Is(err, domain.ErrMonitoringUnavailable):
		return http.StatusInternalServerError, domain.ErrMonitoringUnavailable.Error()
	case errors.Is(err, domain.ErrScoringNotConfigured):
		return http.StatusInternalServerError, domain.ErrScoringNotConfigured.Error()
	case errors.Is(err, domain.ErrScoringUnavailable):
		return http.StatusInternalServerError, domain.ErrScoringUnavailable.Error()
	default:
		return http.StatusInternalServerError, "internal error"
	}
}

type inspectRequest struct {
	IPAddresses []string `json:"ipAddresses"`
	Addresses   []string `json:"addresses"`
}

// POST /v1/ip-inspection
// Body: {"ipAddresses": ["10.162.1.1"]}
func (r *Router) handleInspect(w http.ResponseWriter, req *http.Request) error {
	var body inspectRequest
	if err := json.NewDecoder(io.LimitReader(req.Body, maxBodyBytes)).Decode(&body); err != nil && !errors.Is(err, io.EOF) {
		return fmt.Errorf("%w: decode body: %v", domain.ErrInvalidInput, err)
	}
	addrs := body.IPAddresses
	if len(addrs) == 0 {
		addrs = body.Addresses
	}
	addrs = middleware.SanitizeAddresses(addrs)
	if len(addrs) > 0 {
		middleware.IncrementInspections()
	}

	res, err := r.inspectSvc.Inspect(req.Context(), appinspection.InspectCommand{
		Addresses:  addrs,
		Credential: middleware.CredentialFromContext(req.Context()),
	})
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrMonitoringUnavailable):
			middleware.IncrementMonitoringFailures()
		case errors.Is(err, domain.ErrScoringUnavailable):
			middleware.IncrementScoringFailures()
		}
		return err
	}
	writeJSON(w, http.StatusOK, res)
	return nil
}

// GET /v1/ip-inspection/records?limit=
func (r *Router) handleRecords(w http.ResponseWriter, req *http.Request) error {
	limit, _ := strconv.Atoi(req.URL.Query().Get("limit"))
	list, err := r.inspectSvc.ListRecords(req.Context(), middleware.CredentialFromContext(req.Context()), middleware.ValidateLimit(limit))
	if err != nil {
		return err
	}
	writeJSON(w, http.StatusOK, map[string]any{"records": list})
	return nil
}

// OPTIONS without a CORS request method never reaches the cors handler's
// preflight branch; answer it the same way.
func handlePreflight(w http.ResponseWriter, req *http.Request) {
	w.WriteHeader(http.StatusOK)
}

// staticCORS puts the permissive headers on every response, including
// requests that carry no Origin header.
func staticCORS(next http.Handler) http.Handler {
	methods := strings.Join(allowedMethods, ", ")
	headers := strings.Join(allowedHeaders, ", ")
	return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		h := w.Header()
		h.Set("Access-Control-Allow-Origin", "*")
		h.Set("Access-Control-Allow-Headers", headers)
		h.Set("Access-Control-Allow-Methods", methods)
		next.ServeHTTP(w, req)
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("http step=encode_failed err=%v", err)
	}
}
