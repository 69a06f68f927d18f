package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"github.com/googleapis/gax-go/v2/apierror"
	"github.com/sirupsen/logrus"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"

	"tonecheck-backend/internal/fallback"
	"tonecheck-backend/internal/models"
)

// ContentGenerator is the slice of *genai.GenerativeModel the relay uses.
type ContentGenerator interface {
	GenerateContent(ctx context.Context, parts ...genai.Part) (*genai.GenerateContentResponse, error)
}

var _ ContentGenerator = (*genai.GenerativeModel)(nil)

type ToneService struct {
	client *genai.Client
	model  ContentGenerator
	log    logrus.FieldLogger
}

func NewToneService(apiKey, modelName string, log logrus.FieldLogger) (*ToneService, error) {
	ctx := context.Background()
	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}

	model := client.GenerativeModel(modelName)
	model.SetTemperature(0.7)
	model.SetTopP(0.95)
	model.SetTopK(40)
	model.SetMaxOutputTokens(1024)

	return &ToneService{
		client: client,
		model:  model,
		log:    log,
	}, nil
}

// NewToneServiceWithGenerator wires an already configured generator.
func NewToneServiceWithGenerator(gen ContentGenerator, log logrus.FieldLogger) *ToneService {
	return &ToneService{model: gen, log: log}
}

func (s *ToneService) Close() {
	if s.client != nil {
		s.client.Close()
	}
}

// Analyze asks the model for a tone analysis of email. Unparseable model
// output is not an error: the templated relay fallback is returned instead.
func (s *ToneService) Analyze(ctx context.Context, email string) (models.AnalysisResult, error) {
	log := s.log.WithField("email_length", len(email))
	log.Debug("Making request to Gemini API")

	resp, err := s.model.GenerateContent(ctx, genai.Text(BuildTonePrompt(email)))
	if err != nil {
		var blocked *genai.BlockedError
		if errors.As(err, &blocked) {
			log.WithError(err).Error("Gemini blocked the request")
			return models.AnalysisResult{}, &MalformedResponseError{Reason: err.Error()}
		}

		upstreamErr := toUpstreamError(err)
		log.WithFields(logrus.Fields{
			"status": upstreamErr.Status,
			"body":   upstreamErr.Body,
		}).Error("Gemini API error response")
		return models.AnalysisResult{}, upstreamErr
	}

	generated, err := firstCandidateText(resp)
	if err != nil {
		log.WithError(err).Error("Unexpected Gemini response structure")
		return models.AnalysisResult{}, err
	}

	log.WithFields(logrus.Fields{
		"generated_length":  len(generated),
		"generated_preview": preview(generated, 100),
	}).Debug("Gemini API response received")

	result, err := ParseAnalysis(generated)
	if err != nil {
		log.WithError(err).WithField("raw", generated).Warn("JSON parsing failed, using fallback response")
		return fallback.Relay(email), nil
	}

	if !result.Complete() {
		log.Warn("Gemini response missing fields, filling from fallback")
		result = fallback.Fill(result, email)
	}

	return result, nil
}

// BuildTonePrompt embeds the email verbatim in a strict JSON instruction.
func BuildTonePrompt(email string) string {
	var b strings.Builder

	b.WriteString("Analyze the tone of this email and provide 3 improved versions. Respond ONLY with valid JSON in this exact format:\n\n")
	b.WriteString(`{
  "analysis": "Brief analysis of current tone (1-2 sentences)",
  "professional": "Professional version of the email",
  "friendly": "Friendly version of the email",
  "concise": "Concise version of the email"
}`)
	b.WriteString("\n\nEmail to analyze: \"")
	b.WriteString(email)
	b.WriteString("\"\n\nRemember: Return only valid JSON, no additional text or formatting.")

	return b.String()
}

var (
	jsonFence  = regexp.MustCompile("```json\n?")
	plainFence = regexp.MustCompile("```\n?")
)

// StripCodeFences removes Markdown fences, tagged json or not, anywhere in text.
func StripCodeFences(text string) string {
	text = jsonFence.ReplaceAllString(text, "")
	text = plainFence.ReplaceAllString(text, "")
	return strings.TrimSpace(text)
}

// ParseAnalysis strictly decodes the model's reply after fence cleanup.
func ParseAnalysis(generated string) (models.AnalysisResult, error) {
	var result models.AnalysisResult
	if err := json.Unmarshal([]byte(StripCodeFences(generated)), &result); err != nil {
		return models.AnalysisResult{}, err
	}
	return result, nil
}

func firstCandidateText(resp *genai.GenerateContentResponse) (string, error) {
	if resp == nil || len(resp.Candidates) == 0 || resp.Candidates[0] == nil {
		return "", &MalformedResponseError{Reason: "no candidates"}
	}
	content := resp.Candidates[0].Content
	if content == nil || len(content.Parts) == 0 {
		return "", &MalformedResponseError{Reason: "candidate has no content"}
	}
	text, ok := content.Parts[0].(genai.Text)
	if !ok {
		return "", &MalformedResponseError{Reason: fmt.Sprintf("first part is %T, not text", content.Parts[0])}
	}
	return string(text), nil
}

// toUpstreamError pulls the status and body out of the client library's
// error types. Errors without either keep status 0 and their message.
func toUpstreamError(err error) *UpstreamError {
	var gErr *googleapi.Error
	if errors.As(err, &gErr) {
		body := gErr.Body
		if body == "" {
			body = gErr.Message
		}
		return &UpstreamError{Status: gErr.Code, Body: body}
	}

	var apiErr *apierror.APIError
	if errors.As(err, &apiErr) {
		status := apiErr.HTTPCode()
		if status < 0 {
			status = 0
		}
		return &UpstreamError{Status: status, Body: apiErr.Error()}
	}

	return &UpstreamError{Body: err.Error()}
}

func preview(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}
