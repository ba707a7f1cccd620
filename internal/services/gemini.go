package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	"google.golang.org/genai"
)

type Role string

const (
	RoleSystem Role = "system"
	RoleUser   Role = "user"
)

// Message is one role-tagged entry of a completion request.
type Message struct {
	Role    Role
	Content string
}

type CompletionRequest struct {
	Messages    []Message
	Temperature float32
	JSONMode    bool
}

// Completion is the raw model output. TokensUsed is nil when the provider
// did not report usage.
type Completion struct {
	Text       string
	TokensUsed *int
}

// CompletionGateway sends role-tagged messages to a hosted model.
type CompletionGateway interface {
	Complete(ctx context.Context, req CompletionRequest) (*Completion, error)
}

type GeminiOptions struct {
	APIKey          string
	Model           string
	MaxOutputTokens int32
	Timeout         time.Duration
	// BaseURL overrides the Gemini API endpoint. Empty means the SDK default.
	BaseURL string
}

type geminiGateway struct {
	client          *genai.Client
	modelName       string
	maxOutputTokens int32
	timeout         time.Duration
	logger          logrus.FieldLogger
}

func NewGeminiGateway(ctx context.Context, opts GeminiOptions, logger logrus.FieldLogger) (CompletionGateway, error) {
	if opts.APIKey == "" {
		return nil, fmt.Errorf("gemini API key is required")
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:      opts.APIKey,
		Backend:     genai.BackendGeminiAPI,
		HTTPOptions: genai.HTTPOptions{BaseURL: opts.BaseURL},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create gemini client: %w", err)
	}

	if opts.Model == "" {
		opts.Model = "gemini-2.5-flash"
	}
	if opts.MaxOutputTokens <= 0 {
		opts.MaxOutputTokens = 8192
	}

	return &geminiGateway{
		client:          client,
		modelName:       opts.Model,
		maxOutputTokens: opts.MaxOutputTokens,
		timeout:         opts.Timeout,
		logger:          logger.WithField("component", "gemini"),
	}, nil
}

// Complete implements CompletionGateway.
func (g *geminiGateway) Complete(ctx context.Context, req CompletionRequest) (*Completion, error) {
	if g.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, g.timeout)
		defer cancel()
	}

	temperature := req.Temperature
	config := &genai.GenerateContentConfig{
		Temperature:     &temperature,
		MaxOutputTokens: g.maxOutputTokens,
	}
	if req.JSONMode {
		config.ResponseMIMEType = "application/json"
	}

	var system []string
	var contents []*genai.Content
	for _, m := range req.Messages {
		switch m.Role {
		case RoleSystem:
			system = append(system, m.Content)
		default:
			contents = append(contents, genai.NewContentFromText(m.Content, genai.RoleUser))
		}
	}
	if len(system) > 0 {
		config.SystemInstruction = &genai.Content{
			Parts: []*genai.Part{genai.NewPartFromText(strings.Join(system, "\n\n"))},
		}
	}
	if len(contents) == 0 {
		return nil, NewError(KindInternal, "completion request has no user message", nil)
	}

	start := time.Now()
	resp, err := g.client.Models.GenerateContent(ctx, g.modelName, contents, config)
	if err != nil {
		fields := logrus.Fields{"model": g.modelName, "error": err.Error()}
		var apiErr genai.APIError
		if errors.As(err, &apiErr) {
			fields["status_code"] = apiErr.Code
		}
		g.logger.WithFields(fields).Error("Gemini API call failed")
		return nil, NewError(KindGatewayFailure, "completion request failed", err)
	}
	if resp == nil {
		return nil, NewError(KindGatewayFailure, "no response generated (nil response)", nil)
	}

	text := resp.Text()
	if strings.TrimSpace(text) == "" {
		return nil, NewError(KindGatewayFailure, "no text content in response", nil)
	}

	completion := &Completion{Text: text}
	if resp.UsageMetadata != nil {
		total := int(resp.UsageMetadata.TotalTokenCount)
		completion.TokensUsed = &total
	}

	fields := logrus.Fields{
		"model":     g.modelName,
		"duration":  time.Since(start).String(),
		"json_mode": req.JSONMode,
	}
	if completion.TokensUsed != nil {
		fields["tokens_used"] = *completion.TokensUsed
	}
	g.logger.WithFields(fields).Debug("Gemini response received")

	return completion, nil
}
