package services

import (
	"context"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"alfredoptarigan/interview-prep/internal/models"
)

const (
	parseTemperature     float32 = 0.2
	questionsTemperature float32 = 0.5
)

type InterviewService interface {
	ParseResume(ctx context.Context, filename string, data []byte) (*models.ParseResponse, error)
	GenerateQuestions(ctx context.Context, req models.GenerateQuestionsRequest) (*models.QuestionSet, error)
}

type interviewService struct {
	extractor     TextExtractor
	gateway       CompletionGateway
	normalizer    ResponseNormalizer
	promptBuilder *PromptBuilder
	logger        logrus.FieldLogger
}

func NewInterviewService(
	extractor TextExtractor,
	gateway CompletionGateway,
	normalizer ResponseNormalizer,
	promptBuilder *PromptBuilder,
	logger logrus.FieldLogger,
) InterviewService {
	return &interviewService{
		extractor:     extractor,
		gateway:       gateway,
		normalizer:    normalizer,
		promptBuilder: promptBuilder,
		logger:        logger,
	}
}

func (s *interviewService) ParseResume(ctx context.Context, filename string, data []byte) (*models.ParseResponse, error) {
	start := time.Now()
	logger := s.logger.WithFields(logrus.Fields{
		"request_id": RequestIDFromContext(ctx),
		"filename":   filename,
		"bytes":      len(data),
	})
	logger.Info("Parsing resume")

	// Step 1: Extract text
	text, err := s.extractor.ExtractText(filename, data)
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(text) == "" {
		return nil, NewError(KindEmptyInput, "could not extract text", nil)
	}

	// Step 2: Ask the model to parse it
	completion, err := s.gateway.Complete(ctx, CompletionRequest{
		Messages:    s.promptBuilder.BuildParseMessages(text),
		Temperature: parseTemperature,
		JSONMode:    true,
	})
	if err != nil {
		return nil, err
	}

	// Step 3: Normalize the profile
	profile, err := s.normalizer.NormalizeProfile(completion.Text)
	if err != nil {
		logger.WithError(err).Warn("Model output rejected")
		return nil, err
	}

	fields := logrus.Fields{
		"text_chars": len([]rune(text)),
		"duration":   time.Since(start).String(),
	}
	if completion.TokensUsed != nil {
		fields["tokens_used"] = *completion.TokensUsed
	}
	logger.WithFields(fields).Info("Resume parsed")

	return &models.ParseResponse{
		Profile:    *profile,
		TokensUsed: completion.TokensUsed,
	}, nil
}

func (s *interviewService) GenerateQuestions(ctx context.Context, req models.GenerateQuestionsRequest) (*models.QuestionSet, error) {
	start := time.Now()
	req.ApplyDefaults()
	req.Profile.EnsureLists()

	logger := s.logger.WithFields(logrus.Fields{
		"request_id":     RequestIDFromContext(ctx),
		"role":           req.Role,
		"interview_type": req.InterviewType,
		"per_item":       *req.PerItem,
	})
	logger.Info("Generating interview questions")

	params := QuestionParams{
		Profile:       req.Profile,
		Role:          strings.TrimSpace(req.Role),
		InterviewType: req.InterviewType,
		PerItem:       *req.PerItem,
	}
	if req.Company != nil {
		params.Company = strings.TrimSpace(*req.Company)
	}
	if req.RawText != nil {
		params.RawText = *req.RawText
	}

	messages, err := s.promptBuilder.BuildQuestionsMessages(params)
	if err != nil {
		return nil, NewError(KindInternal, "could not build prompt", err)
	}

	completion, err := s.gateway.Complete(ctx, CompletionRequest{
		Messages:    messages,
		Temperature: questionsTemperature,
		JSONMode:    true,
	})
	if err != nil {
		return nil, err
	}

	set, err := s.normalizer.NormalizeQuestions(completion.Text)
	if err != nil {
		logger.WithError(err).Warn("Model output rejected")
		return nil, err
	}

	logger.WithFields(logrus.Fields{
		"items":    countItems(set),
		"duration": time.Since(start).String(),
	}).Info("Interview questions generated")

	return set, nil
}

func countItems(set *models.QuestionSet) int {
	return len(set.Education) + len(set.WorkExperience) + len(set.Projects) + len(set.Skills) + len(set.Leadership)
}

type requestIDKey struct{}

func ContextWithRequestID(ctx context.Context, requestID string) context.Context {
	return context.WithValue(ctx, requestIDKey{}, requestID)
}

func RequestIDFromContext(ctx context.Context) string {
	id, _ := ctx.Value(requestIDKey{}).(string)
	return id
}
