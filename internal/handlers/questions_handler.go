package handlers

import (
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/go-playground/validator/v10/non-standard/validators"
	"github.com/gofiber/fiber/v2"

	"alfredoptarigan/interview-prep/internal/models"
	"alfredoptarigan/interview-prep/internal/services"
)

var questionsValidator = newQuestionsValidator()

func newQuestionsValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	mustRegister(v, "notblank", validators.NotBlank)
	mustRegister(v, "interview_type", func(fl validator.FieldLevel) bool {
		return models.InterviewType(fl.Field().String()).Valid()
	})
	return v
}

func mustRegister(v *validator.Validate, tag string, fn validator.Func) {
	if err := v.RegisterValidation(tag, fn); err != nil {
		panic(fmt.Sprintf("invalid validator %q: %v", tag, err))
	}
}

type QuestionsHandler struct {
	interview services.InterviewService
}

func NewQuestionsHandler(interview services.InterviewService) *QuestionsHandler {
	return &QuestionsHandler{interview: interview}
}

// HandleGenerateQuestions handles POST /api/generate_questions
func (h *QuestionsHandler) HandleGenerateQuestions(c *fiber.Ctx) error {
	var req models.GenerateQuestionsRequest

	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusUnprocessableEntity).JSON(models.ErrorResponse{
			Detail: "Invalid request payload: " + err.Error(),
			Error:  "invalid_request",
		})
	}

	if err := questionsValidator.Struct(&req); err != nil {
		return c.Status(fiber.StatusUnprocessableEntity).JSON(models.ErrorResponse{
			Detail: validationDetail(err),
			Error:  "invalid_request",
		})
	}

	set, err := h.interview.GenerateQuestions(requestContext(c), req)
	if err != nil {
		return respondError(c, "Question generation error", err)
	}

	return c.JSON(set)
}

func validationDetail(err error) string {
	verrs, ok := err.(validator.ValidationErrors)
	if !ok {
		return err.Error()
	}

	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		switch fe.Tag() {
		case "required", "notblank":
			msgs = append(msgs, fmt.Sprintf("%s is required", fe.Field()))
		case "interview_type":
			msgs = append(msgs, fmt.Sprintf("%s must be one of Behavioral, Engineering Manager, Mixed", fe.Field()))
		case "min", "max":
			msgs = append(msgs, fmt.Sprintf("%s must be between 1 and 10", fe.Field()))
		default:
			msgs = append(msgs, fmt.Sprintf("%s is invalid", fe.Field()))
		}
	}
	return strings.Join(msgs, "; ")
}
