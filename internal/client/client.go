// Package client calls the tone relay and falls back to the local heuristic
// whenever the relay cannot produce a result.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/sirupsen/logrus"

	"tonecheck-backend/internal/fallback"
	"tonecheck-backend/internal/models"
)

const minEmailRunes = 10

var (
	ErrEmptyEmail    = errors.New("please enter an email draft to analyze")
	ErrEmailTooShort = errors.New("please enter a longer email (at least 10 characters)")
)

// RelayError explains why a relay result could not be used.
type RelayError struct {
	Status  int
	Message string
}

func (e *RelayError) Error() string {
	if e.Status != 0 {
		return fmt.Sprintf("relay status %d: %s", e.Status, e.Message)
	}
	return "relay: " + e.Message
}

// Analysis is the outcome shown to the user. When Fallback is set the result
// came from the local heuristic and Cause says why.
type Analysis struct {
	models.AnalysisResult
	Fallback bool
	Cause    error
}

type Client struct {
	httpClient *http.Client
	relayURL   string
	log        logrus.FieldLogger
}

func New(relayURL string, log logrus.FieldLogger) *Client {
	return &Client{
		httpClient: &http.Client{Timeout: 60 * time.Second},
		relayURL:   relayURL,
		log:        log,
	}
}

// LocalFallbackAnalysis is the heuristic used when the relay fails.
func LocalFallbackAnalysis(emailText string) models.AnalysisResult {
	return fallback.Local(emailText)
}

// Analyze validates emailText and asks the relay for an analysis. The only
// errors returned are input validation errors; relay failures yield a local
// fallback Analysis instead.
func (c *Client) Analyze(ctx context.Context, emailText string) (Analysis, error) {
	email := strings.TrimSpace(emailText)
	if email == "" {
		return Analysis{}, ErrEmptyEmail
	}
	if utf8.RuneCountInString(email) < minEmailRunes {
		return Analysis{}, ErrEmailTooShort
	}

	result, err := c.callRelay(ctx, email)
	if err != nil {
		c.log.WithError(err).Warn("AI analysis failed, using local fallback")
		return Analysis{
			AnalysisResult: LocalFallbackAnalysis(email),
			Fallback:       true,
			Cause:          err,
		}, nil
	}

	return Analysis{AnalysisResult: withPlaceholders(result)}, nil
}

type relayReply struct {
	models.AnalysisResult
	Error   string `json:"error"`
	Details string `json:"details"`
}

func (c *Client) callRelay(ctx context.Context, email string) (models.AnalysisResult, error) {
	body, err := json.Marshal(models.AnalysisRequest{Email: &email})
	if err != nil {
		return models.AnalysisResult{}, fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.relayURL, bytes.NewReader(body))
	if err != nil {
		return models.AnalysisResult{}, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return models.AnalysisResult{}, &RelayError{Message: err.Error()}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return models.AnalysisResult{}, &RelayError{Status: resp.StatusCode, Message: strings.TrimSpace(string(msg))}
	}

	var reply relayReply
	if err := json.NewDecoder(resp.Body).Decode(&reply); err != nil {
		return models.AnalysisResult{}, &RelayError{Status: resp.StatusCode, Message: "decode response: " + err.Error()}
	}
	if reply.Error != "" {
		return models.AnalysisResult{}, &RelayError{Status: resp.StatusCode, Message: reply.Error}
	}

	return reply.AnalysisResult, nil
}

func withPlaceholders(r models.AnalysisResult) models.AnalysisResult {
	if r.Analysis == "" {
		r.Analysis = "Analysis completed"
	}
	if r.Professional == "" {
		r.Professional = "Professional version not available"
	}
	if r.Friendly == "" {
		r.Friendly = "Friendly version not available"
	}
	if r.Concise == "" {
		r.Concise = "Concise version not available"
	}
	return r
}
