package httpapi

import (
	"bytes"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/marczakme/enzo-translator/internal"
	"github.com/marczakme/enzo-translator/internal/glossary"
	"github.com/marczakme/enzo-translator/internal/orchestrator"
	"github.com/marczakme/enzo-translator/internal/provider"
	"github.com/marczakme/enzo-translator/internal/workflow"
)

const maxGlossaryBody = 8 << 20

func (s *Server) handleTranslate(c echo.Context) error {
	var in workflow.Input
	if err := c.Bind(&in); err != nil {
		return fail(c, http.StatusBadRequest, "Invalid JSON body", nil)
	}
	in.LanguageCode = strings.ToLower(strings.TrimSpace(in.LanguageCode))
	if in.LanguageCode != "" && !s.isLanguage(in.LanguageCode) {
		return failValidation(c, map[string]string{"language": "unsupported language " + in.LanguageCode})
	}

	out, err := s.deps.Workflow.Translate(c.Request().Context(), in)
	if err == nil {
		return success(c, out)
	}

	var (
		unknown    *provider.UnknownProviderError
		configErr  *provider.ConfigurationError
		requestErr *provider.ProviderRequestError
		stageErr   *orchestrator.StageError
	)
	switch {
	case errors.Is(err, workflow.ErrInvalidInput):
		return fail(c, http.StatusBadRequest, err.Error(), nil)
	case errors.As(err, &unknown):
		return fail(c, http.StatusBadRequest, err.Error(), nil)
	case errors.As(err, &configErr):
		return upstreamError(c, http.StatusServiceUnavailable, err.Error(), out)
	case errors.As(err, &requestErr), errors.As(err, &stageErr):
		return upstreamError(c, http.StatusBadGateway, err.Error(), out)
	}
	s.logger.Error().Err(err).Msg("translate failed")
	return internalError(c, "Translation failed")
}

type consistencyRequest struct {
	LanguageCode string `json:"language"`
	Source       string `json:"source"`
	Translation  string `json:"translation"`
}

func (s *Server) handleConsistency(c echo.Context) error {
	var req consistencyRequest
	if err := c.Bind(&req); err != nil {
		return fail(c, http.StatusBadRequest, "Invalid JSON body", nil)
	}
	lang := strings.ToLower(strings.TrimSpace(req.LanguageCode))
	if !s.isLanguage(lang) {
		return failValidation(c, map[string]string{"language": "unsupported language " + req.LanguageCode})
	}

	report, err := s.deps.Workflow.Check(c.Request().Context(), lang, req.Source, req.Translation)
	if err != nil {
		s.logger.Error().Err(err).Str("language", lang).Msg("consistency check failed")
		return internalError(c, "Failed to check consistency")
	}
	return success(c, report)
}

func (s *Server) handleGlossaryStats(c echo.Context) error {
	stats := glossary.Monitor(c.Request().Context(), s.deps.Glossaries, s.deps.Languages)
	return success(c, map[string]any{"items": stats})
}

func (s *Server) handleGlossaryGet(c echo.Context) error {
	lang, ok := s.knownLanguage(c)
	if !ok {
		return fail(c, http.StatusNotFound, "Unknown language", nil)
	}

	entries, err := s.deps.Glossaries.Load(c.Request().Context(), lang)
	if err != nil {
		s.logger.Error().Err(err).Str("language", lang).Msg("load glossary failed")
		return internalError(c, "Failed to load glossary")
	}

	if strings.EqualFold(c.QueryParam("format"), "csv") {
		var buf bytes.Buffer
		if err := glossary.WriteCSV(&buf, entries); err != nil {
			return internalError(c, "Failed to render glossary")
		}
		c.Response().Header().Set(echo.HeaderContentDisposition, `attachment; filename="glossary_`+lang+`.csv"`)
		return c.Blob(http.StatusOK, "text/csv; charset=utf-8", buf.Bytes())
	}
	return success(c, map[string]any{
		"language": lang,
		"items":    entries,
	})
}

// handleGlossaryPut replaces a glossary with a JSON array of entries or,
// for text/csv bodies, an imported CSV file.
func (s *Server) handleGlossaryPut(c echo.Context) error {
	lang, ok := s.knownLanguage(c)
	if !ok {
		return fail(c, http.StatusNotFound, "Unknown language", nil)
	}

	body := http.MaxBytesReader(c.Response(), c.Request().Body, maxGlossaryBody)
	var entries []internal.GlossaryEntry
	if strings.HasPrefix(c.Request().Header.Get(echo.HeaderContentType), "text/csv") {
		parsed, err := glossary.ReadCSV(body)
		if err != nil {
			return fail(c, http.StatusBadRequest, err.Error(), nil)
		}
		entries = parsed
	} else if err := json.NewDecoder(body).Decode(&entries); err != nil {
		return fail(c, http.StatusBadRequest, "Invalid JSON body", nil)
	}

	entries = glossary.Normalize(entries)
	if err := s.deps.Glossaries.Save(c.Request().Context(), lang, entries); err != nil {
		s.logger.Error().Err(err).Str("language", lang).Msg("save glossary failed")
		return internalError(c, "Failed to save glossary")
	}
	s.logger.Info().Str("language", lang).Int("entries", len(entries)).Msg("glossary replaced")
	return success(c, map[string]any{
		"language": lang,
		"items":    entries,
	})
}

func (s *Server) handleArchiveIndex(c echo.Context) error {
	lang, ok := s.knownLanguage(c)
	if !ok {
		return fail(c, http.StatusNotFound, "Unknown language", nil)
	}
	if s.deps.Archive == nil {
		return fail(c, http.StatusNotFound, "Archive is disabled", nil)
	}

	entries, err := s.deps.Archive.Index(c.Request().Context(), lang)
	if err != nil {
		s.logger.Error().Err(err).Str("language", lang).Msg("load archive index failed")
		return internalError(c, "Failed to load archive")
	}
	return success(c, map[string]any{
		"language": lang,
		"items":    entries,
	})
}

func (s *Server) handleArchiveRead(c echo.Context) error {
	lang, ok := s.knownLanguage(c)
	if !ok {
		return fail(c, http.StatusNotFound, "Unknown language", nil)
	}
	if s.deps.Archive == nil {
		return fail(c, http.StatusNotFound, "Archive is disabled", nil)
	}

	text, err := s.deps.Archive.Read(c.Request().Context(), lang, c.Param("file"))
	switch {
	case errors.Is(err, internal.ErrNotFound):
		return fail(c, http.StatusNotFound, "Record not found", nil)
	case err != nil:
		return fail(c, http.StatusBadRequest, err.Error(), nil)
	}
	return c.Blob(http.StatusOK, "text/plain; charset=utf-8", []byte(text))
}

func (s *Server) isLanguage(lang string) bool {
	for _, l := range s.deps.Languages {
		if l == lang {
			return true
		}
	}
	return false
}
