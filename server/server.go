// Package server exposes detection and generation over HTTP.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"retainformat/common"
	"retainformat/config"
	"retainformat/feedback"
	"retainformat/format"
	"retainformat/preview"
	"retainformat/richtext"
	"retainformat/surface"
)

// Server serves HTTP API. Every request reads its own document, only the
// feedback collector is shared.
type Server struct {
	doc        *config.DocumentConfig
	srv        *config.ServerConfig
	stylesheet []byte
	feedback   *feedback.Collector
	log        *zap.Logger
}

// New creates server, fb may be nil when feedback is disabled.
func New(cfg *config.Config, stylesheet []byte, fb *feedback.Collector, log *zap.Logger) *Server {
	if log == nil {
		log = zap.NewNop()
	}
	return &Server{
		doc:        &cfg.Document,
		srv:        &cfg.Server,
		stylesheet: stylesheet,
		feedback:   fb,
		log:        log.Named("server"),
	}
}

// Router returns handler with all routes.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(s.logRequests)
	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestSize(s.srv.MaxBodyBytes))

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	r.Route("/api", func(r chi.Router) {
		r.Post("/detect", s.handleDetect)
		r.Post("/generate", s.handleGenerate)
		r.Post("/feedback", s.handleFeedback)
	})
	return r
}

// Serve listens until context is cancelled, then shuts down gracefully.
func (s *Server) Serve(ctx context.Context, listen string) error {
	ln, err := net.Listen("tcp", listen)
	if err != nil {
		return fmt.Errorf("unable to listen on %s: %w", listen, err)
	}
	return s.serve(ctx, ln)
}

func (s *Server) serve(ctx context.Context, ln net.Listener) error {
	srv := &http.Server{
		Handler:           s.Router(),
		ReadHeaderTimeout: 10 * time.Second,
		WriteTimeout:      60 * time.Second,
		IdleTimeout:       60 * time.Second,
		ErrorLog:          zap.NewStdLog(s.log),
	}

	errc := make(chan error, 1)
	go func() {
		s.log.Info("Server starting", zap.Stringer("address", ln.Addr()))
		errc <- srv.Serve(ln)
	}()

	select {
	case err := <-errc:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("server failed: %w", err)
	case <-ctx.Done():
	}

	s.log.Info("Server shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("unable to shutdown server: %w", err)
	}
	s.log.Info("Server stopped")
	return nil
}

func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		defer func() {
			s.log.Debug("Request served",
				zap.String("id", middleware.GetReqID(r.Context())),
				zap.String("method", r.Method),
				zap.String("path", r.URL.Path),
				zap.Int("status", ww.Status()),
				zap.Int("bytes", ww.BytesWritten()),
				zap.Duration("elapsed", time.Since(start)))
		}()
		next.ServeHTTP(ww, r)
	})
}

type documentRequest struct {
	HTML     string               `json:"html,omitempty"`
	Markdown string               `json:"markdown,omitempty"`
	Theme    string               `json:"theme,omitempty"`
	Updates  []format.LabelUpdate `json:"updates,omitempty"`
}

type detectResponse struct {
	Theme   string            `json:"theme"`
	Formats []format.Detected `json:"formats"`
	Message string            `json:"message,omitempty"`
}

type generateResponse struct {
	Output      string            `json:"output"`
	PreviewHTML string            `json:"preview_html"`
	Raw         bool              `json:"raw"`
	Formats     []format.Detected `json:"formats"`
	Warnings    []string          `json:"warnings,omitempty"`
}

type feedbackRequest struct {
	Kind    string `json:"kind"`
	Contact string `json:"contact"`
}

type errorResponse struct {
	Error string `json:"error"`
}

// requestError is returned to the client as is.
type requestError struct {
	status int
	err    error
}

func (e *requestError) Error() string { return e.err.Error() }
func (e *requestError) Unwrap() error { return e.err }

func badRequest(format string, args ...any) error {
	return &requestError{status: http.StatusBadRequest, err: fmt.Errorf(format, args...)}
}

func decode(r *http.Request, v any) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		var tooBig *http.MaxBytesError
		if errors.As(err, &tooBig) {
			return &requestError{status: http.StatusRequestEntityTooLarge, err: err}
		}
		return badRequest("invalid request body: %w", err)
	}
	return nil
}

// open reads document from request and places it onto surface.
func (s *Server) open(req *documentRequest) (*surface.Surface, error) {
	in, text := common.InputFmtHtml, req.HTML
	switch {
	case len(req.HTML) > 0 && len(req.Markdown) > 0:
		return nil, badRequest("only one of html or markdown is expected")
	case len(req.Markdown) > 0:
		in, text = common.InputFmtMarkdown, req.Markdown
	}

	name := req.Theme
	if len(name) == 0 {
		name = s.doc.Theme
	}
	tc, ok := s.doc.ThemeByName(name)
	if !ok {
		return nil, badRequest("unknown theme %q", name)
	}
	theme := surface.ThemeFromConfig(name, tc)

	doc, err := richtext.ReadString(text, richtext.Options{
		Format:     in,
		Sanitize:   s.doc.Sanitize,
		Stylesheet: s.stylesheet,
		Root:       theme.Root,
		Log:        s.log,
	})
	if err != nil {
		if errors.Is(err, richtext.ErrBinaryInput) {
			return nil, badRequest("%w", err)
		}
		return nil, err
	}
	return surface.New(doc, theme, s.log), nil
}

func (s *Server) handleDetect(w http.ResponseWriter, r *http.Request) {
	var req documentRequest
	if err := decode(r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	surf, err := s.open(&req)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	set := surf.Detect()
	resp := detectResponse{Theme: surf.Theme().Name, Formats: set.Formats()}
	if set.Empty() {
		resp.Formats = []format.Detected{}
		resp.Message = format.EmptyMessage
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleGenerate(w http.ResponseWriter, r *http.Request) {
	var req documentRequest
	if err := decode(r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	surf, err := s.open(&req)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	set := surf.Detect()
	for _, u := range req.Updates {
		if err := set.Apply(u); err != nil {
			s.writeError(w, r, &requestError{status: http.StatusUnprocessableEntity, err: err})
			return
		}
	}

	res := surf.Generate(set)
	resp := generateResponse{
		Output:      res.Output,
		PreviewHTML: preview.HTML(preview.Tokenize(res.Output)),
		Raw:         res.Raw,
		Formats:     set.Formats(),
	}
	if resp.Formats == nil {
		resp.Formats = []format.Detected{}
	}
	if !res.Raw {
		if err := preview.CheckXML(res.Output); err != nil {
			resp.Warnings = append(resp.Warnings, err.Error())
		}
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleFeedback(w http.ResponseWriter, r *http.Request) {
	if s.feedback == nil {
		s.writeError(w, r, &requestError{status: http.StatusNotFound, err: errors.New("feedback is disabled")})
		return
	}
	var req feedbackRequest
	if err := decode(r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	if len(strings.TrimSpace(req.Kind)) == 0 {
		s.writeError(w, r, badRequest("feedback kind is required"))
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": s.feedback.Submit(r.Context(), req.Kind, req.Contact)})
}

func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := http.StatusInternalServerError
	var re *requestError
	if errors.As(err, &re) {
		status = re.status
	}
	if status == http.StatusInternalServerError {
		s.log.Error("Request failed", zap.String("id", middleware.GetReqID(r.Context())), zap.Error(err))
	} else {
		s.log.Debug("Request rejected", zap.String("id", middleware.GetReqID(r.Context())), zap.Int("status", status), zap.Error(err))
	}
	writeJSON(w, status, errorResponse{Error: err.Error()})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
