// Package httpapi exposes translation, consistency checks, glossaries and
// the archive over a JSON API.
package httpapi

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/rs/zerolog"

	"github.com/marczakme/enzo-translator/internal"
	"github.com/marczakme/enzo-translator/internal/workflow"
)

type Options struct {
	Addr            string
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	ShutdownTimeout time.Duration
}

// Deps are the components the handlers call.
type Deps struct {
	Workflow   *workflow.Service
	Glossaries internal.GlossaryStore
	Archive    internal.ArchiveStore
	Languages  []string
	Label      func(string) string
}

type Server struct {
	deps   Deps
	logger zerolog.Logger
	opts   Options
}

func NewServer(deps Deps, logger zerolog.Logger, opts Options) *Server {
	if strings.TrimSpace(opts.Addr) == "" {
		opts.Addr = ":8080"
	}
	if opts.ReadTimeout <= 0 {
		opts.ReadTimeout = 30 * time.Second
	}
	// one request makes two sequential LLM calls
	if opts.WriteTimeout <= 0 {
		opts.WriteTimeout = 5 * time.Minute
	}
	if opts.ShutdownTimeout <= 0 {
		opts.ShutdownTimeout = 10 * time.Second
	}
	if deps.Label == nil {
		deps.Label = strings.ToUpper
	}

	return &Server{
		deps:   deps,
		logger: logger,
		opts:   opts,
	}
}

// Handler builds the echo instance with every route registered.
func (s *Server) Handler() *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.HTTPErrorHandler = s.httpErrorHandler

	e.Use(middleware.Recover())
	e.Use(middleware.RequestID())
	e.Use(middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogStatus:    true,
		LogURI:       true,
		LogMethod:    true,
		LogLatency:   true,
		LogRemoteIP:  true,
		LogRequestID: true,
		LogError:     true,
		LogValuesFunc: func(c echo.Context, v middleware.RequestLoggerValues) error {
			if v.Error != nil {
				s.logger.Error().
					Err(v.Error).
					Str("method", v.Method).
					Str("uri", v.URI).
					Int("status", v.Status).
					Dur("latency", v.Latency).
					Str("request_id", v.RequestID).
					Msg("http request failed")
				return nil
			}

			s.logger.Info().
				Str("method", v.Method).
				Str("uri", v.URI).
				Int("status", v.Status).
				Dur("latency", v.Latency).
				Str("request_id", v.RequestID).
				Msg("http request")
			return nil
		},
	}))

	api := e.Group("/api/v1")
	api.GET("/health", s.handleHealth)
	api.GET("/languages", s.handleLanguages)
	api.POST("/translate", s.handleTranslate)
	api.POST("/consistency", s.handleConsistency)
	api.GET("/glossary", s.handleGlossaryStats)
	api.GET("/glossary/:lang", s.handleGlossaryGet)
	api.PUT("/glossary/:lang", s.handleGlossaryPut)
	api.GET("/archive/:lang", s.handleArchiveIndex)
	api.GET("/archive/:lang/:file", s.handleArchiveRead)

	return e
}

func (s *Server) Start(ctx context.Context) error {
	if s == nil || s.deps.Workflow == nil || s.deps.Glossaries == nil {
		return fmt.Errorf("server is not initialized")
	}

	e := s.Handler()
	httpServer := &http.Server{
		Addr:         s.opts.Addr,
		Handler:      e,
		ReadTimeout:  s.opts.ReadTimeout,
		WriteTimeout: s.opts.WriteTimeout,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), s.opts.ShutdownTimeout)
		defer cancel()
		if shutdownErr := e.Shutdown(shutdownCtx); shutdownErr != nil {
			s.logger.Error().Err(shutdownErr).Msg("server shutdown failed")
		}
	}()

	s.logger.Info().Str("addr", s.opts.Addr).Msg("http server started")
	if err := e.StartServer(httpServer); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("start server: %w", err)
	}
	s.logger.Info().Msg("http server stopped")
	return nil
}

func (s *Server) httpErrorHandler(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}

	status := http.StatusInternalServerError
	message := "Internal server error"
	var he *echo.HTTPError
	if errors.As(err, &he) {
		status = he.Code
		switch v := he.Message.(type) {
		case string:
			if strings.TrimSpace(v) != "" {
				message = v
			}
		default:
			if text := strings.TrimSpace(http.StatusText(status)); text != "" {
				message = text
			}
		}
	} else if err != nil {
		message = err.Error()
	}

	if status >= 500 {
		_ = internalError(c, "Internal server error")
		return
	}
	_ = fail(c, status, message, nil)
}

// knownLanguage normalizes the :lang parameter and reports whether it is
// a configured market.
func (s *Server) knownLanguage(c echo.Context) (string, bool) {
	lang := strings.ToLower(strings.TrimSpace(c.Param("lang")))
	return lang, s.isLanguage(lang)
}

func (s *Server) handleHealth(c echo.Context) error {
	return success(c, map[string]any{
		"service": "enzo-translator",
		"time":    time.Now().UTC(),
	})
}

type languageItem struct {
	Code  string `json:"code"`
	Label string `json:"label"`
}

func (s *Server) handleLanguages(c echo.Context) error {
	items := make([]languageItem, 0, len(s.deps.Languages))
	for _, l := range s.deps.Languages {
		items = append(items, languageItem{Code: l, Label: s.deps.Label(l)})
	}
	return success(c, map[string]any{"items": items})
}
