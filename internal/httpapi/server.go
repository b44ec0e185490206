// Package httpapi exposes a translation session over HTTP: jsend JSON
// endpoints for every user action and a websocket stream of state snapshots.
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

	"github.com/valpere/glosstran/internal/controller"
	"github.com/valpere/glosstran/internal/glossary"
	"github.com/valpere/glosstran/internal/history"
	"github.com/valpere/glosstran/internal/intake"
)

// maxImageBytes bounds uploaded images.
const maxImageBytes = 20 << 20

// HistoryLog is the part of the history store the API reads and clears.
type HistoryLog interface {
	LoadAll(ctx context.Context) []history.Entry
	Clear(ctx context.Context)
}

// GlossaryStore persists the session glossary between runs.
type GlossaryStore interface {
	SaveGlossary(ctx context.Context, terms []glossary.Term) error
	LoadGlossary(ctx context.Context) ([]glossary.Term, error)
}

type Options struct {
	Listen          string
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	ShutdownTimeout time.Duration
}

type Server struct {
	ctl       *controller.Controller
	history   HistoryLog
	glossPers GlossaryStore
	logger    zerolog.Logger
	opts      Options
}

// NewServer wires the API to a session. glossaries may be nil, in which case
// the save and load endpoints answer 501.
func NewServer(ctl *controller.Controller, hist HistoryLog, glossaries GlossaryStore, logger zerolog.Logger, opts Options) *Server {
	if strings.TrimSpace(opts.Listen) == "" {
		opts.Listen = "127.0.0.1:8080"
	}
	if opts.ReadTimeout <= 0 {
		opts.ReadTimeout = 30 * time.Second
	}
	if opts.ShutdownTimeout <= 0 {
		opts.ShutdownTimeout = 10 * time.Second
	}
	return &Server{
		ctl:       ctl,
		history:   hist,
		glossPers: glossaries,
		logger:    logger.With().Str("component", "httpapi").Logger(),
		opts:      opts,
	}
}

// Handler builds the echo router. WriteTimeout is left to the http.Server
// because the websocket stream is long-lived.
func (s *Server) Handler() *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.HTTPErrorHandler = s.httpErrorHandler

	e.Use(middleware.Recover())
	e.Use(middleware.RequestID())
	e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins: []string{"*"},
		AllowMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete, http.MethodOptions},
		AllowHeaders: []string{"Origin", "Content-Type", "Accept"},
		MaxAge:       3600,
	}))
	e.Use(middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogStatus:    true,
		LogURI:       true,
		LogMethod:    true,
		LogLatency:   true,
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
			s.logger.Debug().
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
	api.GET("/state", s.handleState)
	api.GET("/events", s.handleEvents)

	api.PUT("/input", s.handleSetInput)
	api.PUT("/source", s.handleSetSource)
	api.PUT("/target", s.handleSetTarget)
	api.PUT("/style", s.handleSetStyle)
	api.PUT("/mode", s.handleSetMode)
	api.POST("/swap", s.handleSwap)
	api.POST("/translate", s.handleTranslate)
	api.POST("/stop", s.handleStop)
	api.POST("/reset", s.handleReset)

	api.GET("/glossary", s.handleGlossary)
	api.PUT("/glossary", s.handleReplaceGlossary)
	api.POST("/glossary/terms", s.handleAddTerm)
	api.PATCH("/glossary/terms/:id", s.handleUpdateTerm)
	api.DELETE("/glossary/terms/:id", s.handleRemoveTerm)
	api.POST("/glossary/save", s.handleSaveGlossary)
	api.POST("/glossary/load", s.handleLoadGlossary)

	api.GET("/history", s.handleHistory)
	api.DELETE("/history", s.handleClearHistory)
	api.POST("/history/:id/select", s.handleSelectHistory)

	api.POST("/image", s.handleStageImage)
	api.DELETE("/image", s.handleClearImage)
	api.POST("/image/extract", s.handleExtract)
	api.POST("/image/stop", s.handleStopExtraction)
	api.PUT("/image/text", s.handleEditExtracted)
	api.POST("/image/confirm", s.handleConfirmExtracted)
	api.DELETE("/alert", s.handleDismissAlert)

	return e
}

// Start serves until ctx is cancelled.
func (s *Server) Start(ctx context.Context) error {
	e := s.Handler()
	httpServer := &http.Server{
		Addr:        s.opts.Listen,
		Handler:     e,
		ReadTimeout: s.opts.ReadTimeout,
		IdleTimeout: 60 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), s.opts.ShutdownTimeout)
		defer cancel()
		if shutdownErr := e.Shutdown(shutdownCtx); shutdownErr != nil {
			s.logger.Error().Err(shutdownErr).Msg("server shutdown failed")
		}
	}()

	s.logger.Info().Str("addr", s.opts.Listen).Msg("glosstran server started")

	if err := e.StartServer(httpServer); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("start server: %w", err)
	}
	s.logger.Info().Msg("glosstran server stopped")
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

// controllerError maps session errors to jsend failures.
func (s *Server) controllerError(c echo.Context, err error) error {
	switch {
	case errors.Is(err, controller.ErrInvalidLanguage),
		errors.Is(err, controller.ErrInvalidStyle),
		errors.Is(err, controller.ErrInvalidMode):
		return fail(c, http.StatusBadRequest, err.Error(), nil)
	case errors.Is(err, controller.ErrHistoryNotFound),
		errors.Is(err, glossary.ErrTermNotFound):
		return failNotFound(c, err.Error())
	case errors.Is(err, controller.ErrSwapAutoSource),
		errors.Is(err, controller.ErrSameLanguage),
		errors.Is(err, controller.ErrImageMode),
		errors.Is(err, controller.ErrTextMode),
		errors.Is(err, intake.ErrNoImage),
		errors.Is(err, intake.ErrExtracting),
		errors.Is(err, intake.ErrNotVerifying):
		return fail(c, http.StatusConflict, err.Error(), nil)
	case errors.Is(err, controller.ErrClosed):
		return fail(c, http.StatusServiceUnavailable, err.Error(), nil)
	default:
		s.logger.Error().Err(err).Msg("request failed")
		return internalError(c, "Internal server error")
	}
}

// reply answers with the session state after a successful action.
func (s *Server) reply(c echo.Context, err error) error {
	if err != nil {
		return s.controllerError(c, err)
	}
	return success(c, s.ctl.Snapshot())
}

func (s *Server) handleHealth(c echo.Context) error {
	return success(c, map[string]any{
		"service": "glosstran",
		"time":    time.Now().UTC(),
	})
}
