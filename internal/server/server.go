// Package server exposes report rendering and the report archive over HTTP.
package server

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"

	"github.com/Omkesh-Jadhav/chaturVima-sub001/internal/archive"
	"github.com/Omkesh-Jadhav/chaturVima-sub001/internal/assembler"
	"github.com/Omkesh-Jadhav/chaturVima-sub001/internal/pipeline"
	"github.com/Omkesh-Jadhav/chaturVima-sub001/internal/report"
	"github.com/Omkesh-Jadhav/chaturVima-sub001/internal/snapshot"
)

const defaultMaxBodyBytes = 5 << 20

// Renderer runs one report render.
type Renderer interface {
	Run(ctx context.Context, req pipeline.Request) (pipeline.Result, error)
}

// Archive stores rendered reports.
type Archive interface {
	Save(ctx context.Context, subject report.Subject, doc *assembler.Document) (archive.Record, error)
	Get(ctx context.Context, id string) (archive.Record, error)
	List(ctx context.Context, limit int) ([]archive.Record, error)
	PDF(ctx context.Context, id string) (string, []byte, error)
}

// ViewOpener opens the live dashboard at url. The returned func releases it.
type ViewOpener func(ctx context.Context, url string) (snapshot.View, func(), error)

// ChromeOpener opens dashboards in headless Chromium.
func ChromeOpener(opts snapshot.ChromeOptions) ViewOpener {
	return func(ctx context.Context, url string) (snapshot.View, func(), error) {
		v, err := snapshot.OpenChrome(ctx, url, opts)
		if err != nil {
			return nil, nil, err
		}
		return v, v.Close, nil
	}
}

type Config struct {
	Addr            string
	ShutdownTimeout time.Duration
	MaxBodyBytes    int64
	// DrawFromModel draws charts from the model when no dashboard URL is given.
	DrawFromModel bool
}

type Dependencies struct {
	Renderer Renderer
	// Archive may be nil, in which case archiving endpoints are unavailable.
	Archive  Archive
	OpenView ViewOpener
}

type Server struct {
	cfg    Config
	deps   Dependencies
	logger *zerolog.Logger
	router *chi.Mux
	server *http.Server
}

func New(logger zerolog.Logger, cfg Config, deps Dependencies) *Server {
	if cfg.MaxBodyBytes <= 0 {
		cfg.MaxBodyBytes = defaultMaxBodyBytes
	}
	if cfg.ShutdownTimeout <= 0 {
		cfg.ShutdownTimeout = 10 * time.Second
	}
	s := &Server{cfg: cfg, deps: deps, logger: &logger}

	router := chi.NewRouter()
	router.Use(middleware.RequestID)
	router.Use(Logger(&logger))
	router.Use(middleware.Recoverer)

	router.Get("/healthz", s.handleHealth)
	router.Route("/v1/reports", func(r chi.Router) {
		r.Post("/", s.handleCreate)
		r.Post("/pdf", s.handleRenderPDF)
		r.Get("/", s.handleList)
		r.Get("/{id}", s.handleGet)
		r.Get("/{id}/pdf", s.handleDownload)
	})

	s.router = router
	s.server = &http.Server{Addr: cfg.Addr, Handler: router, ReadHeaderTimeout: 10 * time.Second}
	return s
}

func (s *Server) Handler() http.Handler { return s.router }

// ListenAndServe serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) ListenAndServe(ctx context.Context) error {
	serverErrors := make(chan error, 1)
	go func() {
		s.logger.Info().Str("addr", s.server.Addr).Msg("starting server")
		serverErrors <- s.server.ListenAndServe()
	}()

	select {
	case err := <-serverErrors:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		s.logger.Info().Msg("shutdown initiated")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), s.cfg.ShutdownTimeout)
		defer cancel()

		err := s.server.Shutdown(shutdownCtx)
		if err != nil {
			s.logger.Error().Err(err).Msg("graceful shutdown failed")
			err = s.server.Close()
		}
		return err
	}
}

type renderRequest struct {
	Subject      report.Subject  `json:"subject"`
	Model        json.RawMessage `json:"model"`
	DashboardURL string          `json:"dashboardUrl,omitempty"`
}

type createResponse struct {
	ID            string   `json:"id"`
	Filename      string   `json:"filename"`
	Pages         int      `json:"pages"`
	MissingCharts []string `json:"missingCharts"`
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"status": "ok"})
}

func (s *Server) handleCreate(w http.ResponseWriter, r *http.Request) {
	if s.deps.Archive == nil {
		writeError(w, r, NewUnavailableError("report archive is not configured"))
		return
	}
	req, model, err := s.decodeRender(w, r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	res, err := s.render(r.Context(), req, model)
	if err != nil {
		writeError(w, r, err)
		return
	}
	rec, err := s.deps.Archive.Save(r.Context(), req.Subject, res.Document)
	if err != nil {
		zerolog.Ctx(r.Context()).Error().Err(err).Msg("archive report failed")
		writeError(w, r, NewInternalError("failed to archive report"))
		return
	}
	writeJSON(w, http.StatusCreated, createResponse{
		ID:            rec.ID,
		Filename:      rec.Filename,
		Pages:         rec.Pages,
		MissingCharts: rec.MissingCharts,
	})
}

func (s *Server) handleRenderPDF(w http.ResponseWriter, r *http.Request) {
	req, model, err := s.decodeRender(w, r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	res, err := s.render(r.Context(), req, model)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writePDF(w, res.Document.Filename, res.Document.PDF)
}

func (s *Server) handleList(w http.ResponseWriter, r *http.Request) {
	if s.deps.Archive == nil {
		writeError(w, r, NewUnavailableError("report archive is not configured"))
		return
	}
	limit := 0
	if v := strings.TrimSpace(r.URL.Query().Get("limit")); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			writeError(w, r, NewValidationError("limit must be a non-negative integer"))
			return
		}
		limit = n
	}
	recs, err := s.deps.Archive.List(r.Context(), limit)
	if err != nil {
		zerolog.Ctx(r.Context()).Error().Err(err).Msg("list reports failed")
		writeError(w, r, NewInternalError("failed to list reports"))
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"reports": recs})
}

func (s *Server) handleGet(w http.ResponseWriter, r *http.Request) {
	if s.deps.Archive == nil {
		writeError(w, r, NewUnavailableError("report archive is not configured"))
		return
	}
	rec, err := s.deps.Archive.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, r, archiveError(r, err))
		return
	}
	writeJSON(w, http.StatusOK, rec)
}

func (s *Server) handleDownload(w http.ResponseWriter, r *http.Request) {
	if s.deps.Archive == nil {
		writeError(w, r, NewUnavailableError("report archive is not configured"))
		return
	}
	name, pdf, err := s.deps.Archive.PDF(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, r, archiveError(r, err))
		return
	}
	writePDF(w, name, pdf)
}

func archiveError(r *http.Request, err error) error {
	if errors.Is(err, archive.ErrNotFound) {
		return NewNotFoundError("report not found")
	}
	zerolog.Ctx(r.Context()).Error().Err(err).Msg("archive lookup failed")
	return NewInternalError("failed to read report")
}

func (s *Server) decodeRender(w http.ResponseWriter, r *http.Request) (renderRequest, *report.Model, error) {
	var req renderRequest
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, s.cfg.MaxBodyBytes))
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return req, nil, NewTooLargeError(tooLarge.Limit)
		}
		return req, nil, NewValidationError("invalid request body")
	}
	if err := json.Unmarshal(body, &req); err != nil {
		return req, nil, NewValidationJSONError(err)
	}
	if len(bytes.TrimSpace(req.Model)) == 0 || string(bytes.TrimSpace(req.Model)) == "null" {
		return req, nil, NewValidationError("model is required")
	}
	model, err := report.DecodeBytes(req.Model)
	if err != nil {
		return req, nil, NewValidationError(err.Error())
	}
	if req.DashboardURL != "" {
		u, err := url.Parse(req.DashboardURL)
		if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
			return req, nil, NewValidationError("dashboardUrl must be an absolute http(s) URL")
		}
	}
	return req, model, nil
}

func (s *Server) render(ctx context.Context, req renderRequest, model *report.Model) (pipeline.Result, error) {
	log := zerolog.Ctx(ctx)
	view, release := s.view(ctx, req, model)
	defer release()

	res, err := s.deps.Renderer.Run(ctx, pipeline.Request{Subject: req.Subject, Model: model, View: view})
	if err != nil {
		log.Error().Err(err).Msg("render report failed")
		return res, NewInternalError("failed to render report")
	}
	log.Info().
		Str("filename", res.Document.Filename).
		Int("pages", res.Document.Pages).
		Int("missing_charts", len(res.Document.MissingCharts)).
		Msg("report rendered")
	return res, nil
}

// view picks the chart source for a request. A dashboard that cannot be
// opened degrades to a render without charts.
func (s *Server) view(ctx context.Context, req renderRequest, model *report.Model) (snapshot.View, func()) {
	noop := func() {}
	switch {
	case req.DashboardURL != "" && s.deps.OpenView != nil:
		v, release, err := s.deps.OpenView(ctx, req.DashboardURL)
		if err != nil {
			zerolog.Ctx(ctx).Warn().Err(err).Str("url", req.DashboardURL).Msg("dashboard unavailable, rendering without charts")
			return nil, noop
		}
		if release == nil {
			release = noop
		}
		return v, release
	case s.cfg.DrawFromModel:
		return snapshot.NewModelView(model), noop
	default:
		return nil, noop
	}
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, r *http.Request, err error) {
	apiErr := asAPIError(err)
	if apiErr.Status >= http.StatusInternalServerError {
		zerolog.Ctx(r.Context()).Warn().Str("code", apiErr.Code).Msg(apiErr.Message)
	}
	writeJSON(w, apiErr.Status, map[string]any{"error": apiErr.Message, "code": apiErr.Code})
}

func writePDF(w http.ResponseWriter, filename string, pdf []byte) {
	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	w.Header().Set("Content-Length", strconv.Itoa(len(pdf)))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(pdf)
}
