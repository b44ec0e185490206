package httpapi

import (
	"io"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
)

// handleStageImage accepts either a multipart "image" file or a raw image
// body with an optional ?name= query parameter. A payload that is not an
// image is not an error; the response reports staged=false.
func (s *Server) handleStageImage(c echo.Context) error {
	name, data, err := readImage(c)
	if err != nil {
		return fail(c, http.StatusBadRequest, err.Error(), nil)
	}
	staged := s.ctl.StageImage(name, data)
	return success(c, map[string]any{
		"staged": staged,
		"state":  s.ctl.Snapshot(),
	})
}

func readImage(c echo.Context) (string, []byte, error) {
	req := c.Request()
	req.Body = http.MaxBytesReader(c.Response(), req.Body, maxImageBytes)

	if strings.HasPrefix(req.Header.Get(echo.HeaderContentType), echo.MIMEMultipartForm) {
		fh, err := c.FormFile("image")
		if err != nil {
			return "", nil, err
		}
		f, err := fh.Open()
		if err != nil {
			return "", nil, err
		}
		defer f.Close()
		data, err := io.ReadAll(f)
		if err != nil {
			return "", nil, err
		}
		return fh.Filename, data, nil
	}

	data, err := io.ReadAll(req.Body)
	if err != nil {
		return "", nil, err
	}
	name := c.QueryParam("name")
	if name == "" {
		name = "pasted-image"
	}
	return name, data, nil
}

func (s *Server) handleClearImage(c echo.Context) error {
	s.ctl.ClearImage()
	return success(c, s.ctl.Snapshot())
}

func (s *Server) handleExtract(c echo.Context) error {
	return s.reply(c, s.ctl.ExtractText())
}

func (s *Server) handleStopExtraction(c echo.Context) error {
	s.ctl.StopExtraction()
	return success(c, s.ctl.Snapshot())
}

func (s *Server) handleEditExtracted(c echo.Context) error {
	var req textRequest
	if err := c.Bind(&req); err != nil {
		return fail(c, http.StatusBadRequest, "Invalid request body", nil)
	}
	return s.reply(c, s.ctl.EditExtractedText(req.Text))
}

func (s *Server) handleConfirmExtracted(c echo.Context) error {
	return s.reply(c, s.ctl.ConfirmExtractedText())
}

func (s *Server) handleDismissAlert(c echo.Context) error {
	s.ctl.DismissAlert()
	return success(c, s.ctl.Snapshot())
}
