package http

import (
	"io"
	"strings"

	"github.com/gofiber/fiber/v2"

	"insight_server/core/service"
	"insight_server/pkg/apperr"
)

// UploadHandler serves the single-file summarization endpoint.
type UploadHandler struct {
	orchestrator *service.Orchestrator
}

func NewUploadHandler(orchestrator *service.Orchestrator) *UploadHandler {
	return &UploadHandler{orchestrator: orchestrator}
}

func (h *UploadHandler) Register(app *fiber.App) {
	app.Post("/summarize", h.Summarize)
}

// Summarize accepts one uploaded .eml file and returns its summary,
// tone and the extracted body text.
func (h *UploadHandler) Summarize(c *fiber.Ctx) error {
	fileHeader, err := c.FormFile("file")
	if err != nil {
		return apperr.BadRequest("missing file upload")
	}

	if !strings.HasSuffix(strings.ToLower(fileHeader.Filename), ".eml") {
		return apperr.UnsupportedMedia("only .eml files are supported")
	}

	file, err := fileHeader.Open()
	if err != nil {
		return apperr.BadRequest("failed to open uploaded file")
	}
	defer file.Close()

	raw, err := io.ReadAll(file)
	if err != nil {
		return apperr.BadRequest("failed to read uploaded file")
	}

	result, err := h.orchestrator.ProcessUpload(c.Context(), raw)
	if err != nil {
		return err
	}

	return c.JSON(result)
}
