package commands

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/spanlight/spanlight/internal/config"
	"github.com/spanlight/spanlight/pkg/classify"
	"github.com/spanlight/spanlight/pkg/grammar"
	"github.com/spanlight/spanlight/pkg/observability"
	"github.com/spanlight/spanlight/pkg/ruleset"
	"github.com/spanlight/spanlight/pkg/version"
)

// Write and idle timeouts scale off the configured read timeout.
const (
	writeTimeoutMultiplier = 2
	idleTimeoutMultiplier  = 4

	// shutdownGrace bounds draining in-flight requests on SIGTERM.
	shutdownGrace = 10 * time.Second
)

// ClassifyRequest holds the request body for the classify API endpoint.
type ClassifyRequest struct {
	Source   string `json:"source"`
	Language string `json:"language,omitempty"`
	Filename string `json:"filename,omitempty"`
}

// ClassifyResponse holds the response body for the classify API endpoint.
type ClassifyResponse struct {
	Language    string                `json:"language,omitempty"`
	Degraded    bool                  `json:"degraded,omitempty"`
	Annotations []classify.Annotation `json:"annotations"`
	Error       string                `json:"error,omitempty"`
}

// LanguageEntry is one grammar in the languages API response.
type LanguageEntry struct {
	Name       string   `json:"name"`
	Extensions []string `json:"extensions"`
}

// LanguagesResponse holds the response body for the languages API endpoint.
// IndentWidth is the configured indent hint for editors driving indentation
// from classification output.
type LanguagesResponse struct {
	Languages   []LanguageEntry `json:"languages"`
	IndentWidth int             `json:"indent_width"`
}

// ServeCommand holds the flags for the serve command.
type ServeCommand struct {
	addr string
}

// NewServeCommand creates and configures the serve command.
func NewServeCommand() *cobra.Command {
	cmd := &ServeCommand{}

	cobraCmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the classification HTTP server",
		Long: `Start an HTTP server exposing classification over a JSON API.

Endpoints:
  POST /v1/classify    Classify one source document
  GET  /v1/languages   List compiled grammars
  GET  /healthz        Liveness probe
  GET  /readyz         Readiness probe
  GET  /metrics        Prometheus scrape endpoint`,
		Args: cobra.NoArgs,
		RunE: cmd.Run,
	}

	cobraCmd.Flags().StringVar(&cmd.addr, "addr", "", "listen address (overrides config, default :8080)")

	return cobraCmd
}

// Run executes the serve command.
func (c *ServeCommand) Run(cobraCmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig(cobraCmd)
	if err != nil {
		return err
	}

	addr := cfg.Server.Addr
	if c.addr != "" {
		addr = c.addr
	}

	if addr == "" {
		addr = config.DefaultServerAddr
	}

	providers, err := initServeObservability(cfg)
	if err != nil {
		return err
	}

	defer func() {
		shutdownErr := providers.Shutdown(context.Background())
		if shutdownErr != nil {
			providers.Logger.Warn("observability shutdown failed", "error", shutdownErr)
		}
	}()

	// Prometheus instruments must come from the scrape handler's own meter
	// provider, or they never show up in /metrics.
	promHandler, promMeterProvider, err := observability.PrometheusHandler()
	if err != nil {
		return err
	}

	meter := promMeterProvider.Meter("spanlight")

	red, err := observability.NewREDMetrics(meter)
	if err != nil {
		return err
	}

	classifyMetrics, err := observability.NewClassifyMetrics(meter)
	if err != nil {
		return err
	}

	tables := newTableCache(cfg)
	api := newAPIServer(tables, red, classifyMetrics, cfg)

	mux := http.NewServeMux()
	mux.Handle("/v1/", observability.HTTPMiddleware(providers.Tracer, api.routes()))
	mux.Handle("/healthz", observability.HealthHandler())
	mux.Handle("/readyz", observability.ReadyHandler(func(_ context.Context) error {
		_, readyErr := tables.Table("go")

		return readyErr
	}))
	mux.Handle("/metrics", promHandler)

	readTimeout := time.Duration(cfg.Server.TimeoutSeconds) * time.Second

	server := &http.Server{
		Addr:         addr,
		Handler:      mux,
		ReadTimeout:  readTimeout,
		WriteTimeout: writeTimeoutMultiplier * readTimeout,
		IdleTimeout:  idleTimeoutMultiplier * readTimeout,
	}

	ctx, stop := signal.NotifyContext(cobraCmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)

	go func() {
		errCh <- server.ListenAndServe()
	}()

	providers.Logger.Info("classification server listening", "addr", addr)

	select {
	case err = <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}

		return fmt.Errorf("server failed: %w", err)
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownGrace)
	defer cancel()

	err = server.Shutdown(shutdownCtx)
	if err != nil {
		return fmt.Errorf("server shutdown: %w", err)
	}

	providers.Logger.Info("server stopped")

	return nil
}

func initServeObservability(cfg *config.Config) (observability.Providers, error) {
	obsCfg := observability.DefaultConfig()
	obsCfg.ServiceVersion = version.Version
	obsCfg.Mode = observability.ModeServe
	obsCfg.LogJSON = true

	if cfg.Telemetry.Enabled {
		obsCfg.OTLPEndpoint = os.Getenv("OTEL_EXPORTER_OTLP_ENDPOINT")
		obsCfg.OTLPHeaders = observability.ParseOTLPHeaders(os.Getenv("OTEL_EXPORTER_OTLP_HEADERS"))
		obsCfg.OTLPInsecure = os.Getenv("OTEL_EXPORTER_OTLP_INSECURE") == "true"
	}

	return observability.Init(obsCfg)
}

// apiServer holds the dependencies of the JSON API handlers.
type apiServer struct {
	tables          *ruleset.TableCache
	red             *observability.REDMetrics
	classifyMetrics *observability.ClassifyMetrics
	maxBodyBytes    int64
	indentWidth     int
}

func newAPIServer(tables *ruleset.TableCache, red *observability.REDMetrics, classifyMetrics *observability.ClassifyMetrics, cfg *config.Config) *apiServer {
	maxBodyBytes := int64(config.DefaultServerMaxBodyBytes)
	indentWidth := config.DefaultIndentWidth

	if cfg != nil {
		if cfg.Server.MaxBodyBytes > 0 {
			maxBodyBytes = cfg.Server.MaxBodyBytes
		}

		if cfg.IndentWidth > 0 {
			indentWidth = cfg.IndentWidth
		}
	}

	return &apiServer{
		tables:          tables,
		red:             red,
		classifyMetrics: classifyMetrics,
		maxBodyBytes:    maxBodyBytes,
		indentWidth:     indentWidth,
	}
}

// routes builds the API mux.
func (api *apiServer) routes() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/v1/classify", api.withRED("http.classify", api.handleClassify))
	mux.HandleFunc("/v1/languages", api.withRED("http.languages", api.handleLanguages))

	return mux
}

func (api *apiServer) handleClassify(responseWriter http.ResponseWriter, request *http.Request) {
	if request.Method != http.MethodPost {
		http.Error(responseWriter, "Method not allowed", http.StatusMethodNotAllowed)

		return
	}

	request.Body = http.MaxBytesReader(responseWriter, request.Body, api.maxBodyBytes)

	var req ClassifyRequest

	decodeErr := json.NewDecoder(request.Body).Decode(&req)
	if decodeErr != nil {
		http.Error(responseWriter, "Invalid request body", http.StatusBadRequest)

		return
	}

	start := time.Now()
	response := ClassifyResponse{Annotations: []classify.Annotation{}}

	res, err := classifyBytes(request.Context(), api.tables, req.Filename, []byte(req.Source), req.Language)
	if err != nil {
		response.Error = fmt.Sprintf("Classification failed: %v", err)
		writeJSON(request.Context(), responseWriter, http.StatusInternalServerError, response)

		return
	}

	if res.Degraded {
		api.classifyMetrics.RecordParseFailure(request.Context(), res.Language)
	} else {
		api.classifyMetrics.RecordFile(request.Context(), res.Language,
			int64(res.Size), int64(len(res.Result.Resolved)), time.Since(start))
	}

	response.Language = res.Language
	response.Degraded = res.Degraded

	if res.Result.Resolved != nil {
		response.Annotations = res.Result.Resolved
	}

	writeJSON(request.Context(), responseWriter, http.StatusOK, response)
}

func (api *apiServer) handleLanguages(responseWriter http.ResponseWriter, request *http.Request) {
	if request.Method != http.MethodGet {
		http.Error(responseWriter, "Method not allowed", http.StatusMethodNotAllowed)

		return
	}

	names := grammar.Languages()
	response := LanguagesResponse{
		Languages:   make([]LanguageEntry, 0, len(names)),
		IndentWidth: api.indentWidth,
	}

	for _, name := range names {
		response.Languages = append(response.Languages, LanguageEntry{
			Name:       name,
			Extensions: grammar.Extensions(name),
		})
	}

	writeJSON(request.Context(), responseWriter, http.StatusOK, response)
}

// statusRecorder captures the response status for RED accounting.
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (rec *statusRecorder) WriteHeader(code int) {
	rec.status = code
	rec.ResponseWriter.WriteHeader(code)
}

// withRED wraps a handler with request, error, and duration recording.
func (api *apiServer) withRED(op string, next http.HandlerFunc) http.HandlerFunc {
	return func(responseWriter http.ResponseWriter, request *http.Request) {
		if api.red == nil {
			next(responseWriter, request)

			return
		}

		doneInflight := api.red.TrackInflight(request.Context(), op)
		defer doneInflight()

		start := time.Now()
		rec := &statusRecorder{ResponseWriter: responseWriter, status: http.StatusOK}

		next(rec, request)

		status := "ok"
		if rec.status >= http.StatusInternalServerError {
			status = "error"
		}

		api.red.RecordRequest(request.Context(), op, status, time.Since(start))
	}
}

// writeJSON encodes the given value as JSON and writes it with the status.
func writeJSON(ctx context.Context, responseWriter http.ResponseWriter, status int, value any) {
	responseWriter.Header().Set("Content-Type", "application/json")
	responseWriter.WriteHeader(status)

	encodeErr := json.NewEncoder(responseWriter).Encode(value)
	if encodeErr != nil {
		slog.Default().ErrorContext(ctx, "failed to encode JSON response", "error", encodeErr)
	}
}
