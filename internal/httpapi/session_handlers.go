package httpapi

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/valpere/glosstran/internal/controller"
	"github.com/valpere/glosstran/internal/glossary"
	"github.com/valpere/glosstran/internal/language"
)

type languageOption struct {
	Code   language.Language `json:"code"`
	Label  string            `json:"label"`
	Target bool              `json:"target"`
}

type styleOption struct {
	Code  language.Style `json:"code"`
	Label string         `json:"label"`
}

type textRequest struct {
	Text string `json:"text"`
}

type languageRequest struct {
	Language string `json:"language"`
}

type styleRequest struct {
	Style string `json:"style"`
}

type modeRequest struct {
	Mode string `json:"mode"`
}

func (s *Server) handleLanguages(c echo.Context) error {
	langs := make([]languageOption, 0, len(language.All))
	for _, l := range language.All {
		langs = append(langs, languageOption{Code: l, Label: l.Label(), Target: l.IsTarget()})
	}
	styles := make([]styleOption, 0, len(language.Styles))
	for _, st := range language.Styles {
		styles = append(styles, styleOption{Code: st, Label: st.Label()})
	}
	return success(c, map[string]any{
		"languages": langs,
		"styles":    styles,
	})
}

func (s *Server) handleState(c echo.Context) error {
	return success(c, s.ctl.Snapshot())
}

func (s *Server) handleSetInput(c echo.Context) error {
	var req textRequest
	if err := c.Bind(&req); err != nil {
		return fail(c, http.StatusBadRequest, "Invalid request body", nil)
	}
	return s.reply(c, s.ctl.SetInput(req.Text))
}

func (s *Server) handleSetSource(c echo.Context) error {
	var req languageRequest
	if err := c.Bind(&req); err != nil {
		return fail(c, http.StatusBadRequest, "Invalid request body", nil)
	}
	l, err := language.Parse(req.Language)
	if err != nil {
		return failValidation(c, map[string]string{"language": err.Error()})
	}
	return s.reply(c, s.ctl.SetSource(l))
}

func (s *Server) handleSetTarget(c echo.Context) error {
	var req languageRequest
	if err := c.Bind(&req); err != nil {
		return fail(c, http.StatusBadRequest, "Invalid request body", nil)
	}
	l, err := language.ParseTarget(req.Language)
	if err != nil {
		return failValidation(c, map[string]string{"language": err.Error()})
	}
	return s.reply(c, s.ctl.SetTarget(l))
}

func (s *Server) handleSetStyle(c echo.Context) error {
	var req styleRequest
	if err := c.Bind(&req); err != nil {
		return fail(c, http.StatusBadRequest, "Invalid request body", nil)
	}
	st, err := language.ParseStyle(req.Style)
	if err != nil {
		return failValidation(c, map[string]string{"style": err.Error()})
	}
	return s.reply(c, s.ctl.SetStyle(st))
}

func (s *Server) handleSetMode(c echo.Context) error {
	var req modeRequest
	if err := c.Bind(&req); err != nil {
		return fail(c, http.StatusBadRequest, "Invalid request body", nil)
	}
	m := controller.Mode(req.Mode)
	if !m.Valid() {
		return failValidation(c, map[string]string{"mode": "must be text or image"})
	}
	return s.reply(c, s.ctl.SetMode(m))
}

func (s *Server) handleSwap(c echo.Context) error {
	return s.reply(c, s.ctl.Swap())
}

func (s *Server) handleTranslate(c echo.Context) error {
	return s.reply(c, s.ctl.TranslateNow())
}

func (s *Server) handleStop(c echo.Context) error {
	s.ctl.Stop()
	return success(c, s.ctl.Snapshot())
}

func (s *Server) handleReset(c echo.Context) error {
	s.ctl.Reset()
	return success(c, s.ctl.Snapshot())
}

type termPatch struct {
	Source *string `json:"source"`
	Target *string `json:"target"`
}

type glossaryRequest struct {
	Terms []glossary.Term `json:"terms"`
}

func (s *Server) glossaryView() map[string]any {
	terms := s.ctl.Snapshot().Glossary
	return map[string]any{
		"terms":        terms,
		"active_count": len(glossary.ActiveTerms(terms)),
	}
}

func (s *Server) handleGlossary(c echo.Context) error {
	return success(c, s.glossaryView())
}

func (s *Server) handleReplaceGlossary(c echo.Context) error {
	var req glossaryRequest
	if err := c.Bind(&req); err != nil {
		return fail(c, http.StatusBadRequest, "Invalid request body", nil)
	}
	s.ctl.ReplaceGlossary(req.Terms)
	return success(c, s.glossaryView())
}

func (s *Server) handleAddTerm(c echo.Context) error {
	term := s.ctl.AddTerm()
	return successWithStatus(c, http.StatusCreated, term)
}

func (s *Server) handleUpdateTerm(c echo.Context) error {
	var req termPatch
	if err := c.Bind(&req); err != nil {
		return fail(c, http.StatusBadRequest, "Invalid request body", nil)
	}
	if req.Source == nil && req.Target == nil {
		return failValidation(c, map[string]string{"source": "source or target is required"})
	}

	id := c.Param("id")
	if req.Source != nil {
		if err := s.ctl.UpdateTerm(id, glossary.FieldSource, *req.Source); err != nil {
			return s.controllerError(c, err)
		}
	}
	if req.Target != nil {
		if err := s.ctl.UpdateTerm(id, glossary.FieldTarget, *req.Target); err != nil {
			return s.controllerError(c, err)
		}
	}
	return success(c, s.glossaryView())
}

func (s *Server) handleRemoveTerm(c echo.Context) error {
	if err := s.ctl.RemoveTerm(c.Param("id")); err != nil {
		return s.controllerError(c, err)
	}
	return success(c, s.glossaryView())
}

func (s *Server) handleSaveGlossary(c echo.Context) error {
	if s.glossPers == nil {
		return fail(c, http.StatusNotImplemented, "Glossary storage is not configured", nil)
	}
	terms := glossary.ActiveTerms(s.ctl.Snapshot().Glossary)
	if err := s.glossPers.SaveGlossary(c.Request().Context(), terms); err != nil {
		s.logger.Error().Err(err).Msg("save glossary failed")
		return internalError(c, "Failed to save glossary")
	}
	return success(c, map[string]any{"saved": len(terms)})
}

func (s *Server) handleLoadGlossary(c echo.Context) error {
	if s.glossPers == nil {
		return fail(c, http.StatusNotImplemented, "Glossary storage is not configured", nil)
	}
	terms, err := s.glossPers.LoadGlossary(c.Request().Context())
	if err != nil {
		s.logger.Error().Err(err).Msg("load glossary failed")
		return internalError(c, "Failed to load glossary")
	}
	s.ctl.ReplaceGlossary(terms)
	return success(c, s.glossaryView())
}

func (s *Server) handleHistory(c echo.Context) error {
	return success(c, map[string]any{
		"entries": s.history.LoadAll(c.Request().Context()),
	})
}

func (s *Server) handleClearHistory(c echo.Context) error {
	s.history.Clear(c.Request().Context())
	return success(c, map[string]any{"entries": []any{}})
}

func (s *Server) handleSelectHistory(c echo.Context) error {
	return s.reply(c, s.ctl.SelectHistory(c.Request().Context(), c.Param("id")))
}
