package handlers

import (
	"github.com/gofiber/fiber/v2"

	"alfredoptarigan/interview-prep/internal/services"
)

type ResumeHandler struct {
	uploads   services.UploadReader
	interview services.InterviewService
}

func NewResumeHandler(uploads services.UploadReader, interview services.InterviewService) *ResumeHandler {
	return &ResumeHandler{
		uploads:   uploads,
		interview: interview,
	}
}

// HandleParseResume handles POST /api/parse_resume
func (h *ResumeHandler) HandleParseResume(c *fiber.Ctx) error {
	file, err := c.FormFile("file")
	if err != nil {
		return respondError(c, "", services.NewError(services.KindEmptyInput, "missing upload field 'file'", err))
	}

	data, err := h.uploads.ReadUpload(file)
	if err != nil {
		return respondError(c, "", err)
	}

	resp, err := h.interview.ParseResume(requestContext(c), file.Filename, data)
	if err != nil {
		return respondError(c, "Parse error", err)
	}

	return c.JSON(resp)
}
