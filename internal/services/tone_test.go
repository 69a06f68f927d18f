package services

import (
	"context"
	"encoding/json"
	"errors"
	"reflect"
	"strings"
	"testing"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/googleapi"

	"tonecheck-backend/internal/fallback"
	"tonecheck-backend/internal/logging"
	"tonecheck-backend/internal/models"
)

type fakeGenerator struct {
	resp   *genai.GenerateContentResponse
	err    error
	calls  int
	prompt string
}

func (f *fakeGenerator) GenerateContent(ctx context.Context, parts ...genai.Part) (*genai.GenerateContentResponse, error) {
	f.calls++
	if len(parts) > 0 {
		if t, ok := parts[0].(genai.Text); ok {
			f.prompt = string(t)
		}
	}
	return f.resp, f.err
}

func textResponse(text string) *genai.GenerateContentResponse {
	return &genai.GenerateContentResponse{
		Candidates: []*genai.Candidate{
			{Content: &genai.Content{Role: "model", Parts: []genai.Part{genai.Text(text)}}},
		},
	}
}

func newTestService(gen ContentGenerator) *ToneService {
	return NewToneServiceWithGenerator(gen, logging.Discard())
}

func TestAnalyze_ParsesModelJSON(t *testing.T) {
	gen := &fakeGenerator{resp: textResponse("```json\n" + `{"analysis":"Demanding.","professional":"P","friendly":"F","concise":"C"}` + "\n```")}
	svc := newTestService(gen)

	got, err := svc.Analyze(context.Background(), "I need the report by tomorrow. This is urgent.")
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	expected := models.AnalysisResult{Analysis: "Demanding.", Professional: "P", Friendly: "F", Concise: "C"}
	if got != expected {
		t.Errorf("Expected %+v, got %+v", expected, got)
	}
	if gen.calls != 1 {
		t.Errorf("Expected exactly one upstream call, got %d", gen.calls)
	}
	if !strings.Contains(gen.prompt, `Email to analyze: "I need the report by tomorrow. This is urgent."`) {
		t.Errorf("Expected email embedded in prompt, got %q", gen.prompt)
	}
}

func TestAnalyze_NotJSONUsesRelayFallback(t *testing.T) {
	email := "Send the numbers by Friday."
	gen := &fakeGenerator{resp: textResponse("not json at all")}
	svc := newTestService(gen)

	got, err := svc.Analyze(context.Background(), email)
	if err != nil {
		t.Fatalf("Expected formatting failure to be absorbed, got %v", err)
	}
	if got != fallback.Relay(email) {
		t.Errorf("Expected relay fallback, got %+v", got)
	}
	for _, field := range []string{got.Professional, got.Friendly, got.Concise} {
		if !strings.Contains(field, email) {
			t.Errorf("Expected %q to embed the email", field)
		}
	}
	if gen.calls != 1 {
		t.Errorf("Expected no retry, got %d calls", gen.calls)
	}
}

func TestAnalyze_MissingFieldsFilled(t *testing.T) {
	email := "Where is the invoice?"
	gen := &fakeGenerator{resp: textResponse(`{"analysis":"Abrupt.","friendly":"Hey! Any news on the invoice?"}`)}
	svc := newTestService(gen)

	got, err := svc.Analyze(context.Background(), email)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if !got.Complete() {
		t.Fatalf("Expected all fields set, got %+v", got)
	}
	if got.Analysis != "Abrupt." || got.Friendly != "Hey! Any news on the invoice?" {
		t.Errorf("Expected model fields kept, got %+v", got)
	}
	if got.Concise != email+" Please advise." {
		t.Errorf("Expected concise from fallback, got %q", got.Concise)
	}
}

func TestAnalyze_UpstreamStatus(t *testing.T) {
	gen := &fakeGenerator{err: &googleapi.Error{Code: 429, Body: `{"error":{"message":"quota exceeded"}}`}}
	svc := newTestService(gen)

	_, err := svc.Analyze(context.Background(), "Hello there, any update?")

	var upstreamErr *UpstreamError
	if !errors.As(err, &upstreamErr) {
		t.Fatalf("Expected UpstreamError, got %T: %v", err, err)
	}
	if upstreamErr.Status != 429 {
		t.Errorf("Expected status 429, got %d", upstreamErr.Status)
	}
	if !strings.Contains(err.Error(), "quota exceeded") {
		t.Errorf("Expected body in error, got %q", err.Error())
	}
}

func TestAnalyze_TransportError(t *testing.T) {
	gen := &fakeGenerator{err: errors.New("dial tcp: connection refused")}
	svc := newTestService(gen)

	_, err := svc.Analyze(context.Background(), "Hello there, any update?")

	var upstreamErr *UpstreamError
	if !errors.As(err, &upstreamErr) {
		t.Fatalf("Expected UpstreamError, got %T", err)
	}
	if upstreamErr.Status != 0 {
		t.Errorf("Expected status 0, got %d", upstreamErr.Status)
	}
}

func TestAnalyze_MalformedShapes(t *testing.T) {
	tests := []struct {
		name string
		resp *genai.GenerateContentResponse
		err  error
	}{
		{"nil response", nil, nil},
		{"no candidates", &genai.GenerateContentResponse{}, nil},
		{"nil content", &genai.GenerateContentResponse{Candidates: []*genai.Candidate{{}}}, nil},
		{"no parts", &genai.GenerateContentResponse{Candidates: []*genai.Candidate{{Content: &genai.Content{}}}}, nil},
		{"non-text part", &genai.GenerateContentResponse{Candidates: []*genai.Candidate{
			{Content: &genai.Content{Parts: []genai.Part{genai.Blob{MIMEType: "image/png", Data: []byte{1}}}}},
		}}, nil},
		{"blocked", nil, &genai.BlockedError{}},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			svc := newTestService(&fakeGenerator{resp: tc.resp, err: tc.err})

			_, err := svc.Analyze(context.Background(), "Hello there, any update?")

			var malformed *MalformedResponseError
			if !errors.As(err, &malformed) {
				t.Fatalf("Expected MalformedResponseError, got %T: %v", err, err)
			}
		})
	}
}

func TestStripCodeFences_RoundTrip(t *testing.T) {
	plain := `{"analysis":"x","professional":"p","friendly":"f","concise":"c"}`
	fenced := "```json\n" + plain + "\n```"

	var direct, cleaned models.AnalysisResult
	if err := json.Unmarshal([]byte(plain), &direct); err != nil {
		t.Fatalf("Failed to parse plain JSON: %v", err)
	}
	if err := json.Unmarshal([]byte(StripCodeFences(fenced)), &cleaned); err != nil {
		t.Fatalf("Failed to parse cleaned JSON: %v", err)
	}
	if !reflect.DeepEqual(direct, cleaned) {
		t.Errorf("Expected %+v, got %+v", direct, cleaned)
	}
}

func TestStripCodeFences(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{"json tag", "```json\n{}\n```", "{}"},
		{"untagged", "```\n{}\n```", "{}"},
		{"no newline after tag", "```json{}```", "{}"},
		{"surrounding whitespace", "  \n```json\n{}\n```\n  ", "{}"},
		{"no fences", `{"a":1}`, `{"a":1}`},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := StripCodeFences(tc.input); got != tc.expected {
				t.Errorf("Expected %q, got %q", tc.expected, got)
			}
		})
	}
}

func TestParseAnalysis_RejectsTrailingProse(t *testing.T) {
	if _, err := ParseAnalysis(`Sure! {"analysis":"x"}`); err == nil {
		t.Error("Expected strict parsing to reject leading prose")
	}
}

func TestBuildTonePrompt_NamesAllFields(t *testing.T) {
	prompt := BuildTonePrompt("Quick question about the budget.")
	for _, field := range []string{`"analysis"`, `"professional"`, `"friendly"`, `"concise"`} {
		if !strings.Contains(prompt, field) {
			t.Errorf("Expected prompt to name %s", field)
		}
	}
	if !strings.Contains(prompt, "Respond ONLY with valid JSON") {
		t.Error("Expected strict JSON instruction")
	}
}
