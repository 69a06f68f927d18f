package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/sirupsen/logrus"

	"tonecheck-backend/internal/middleware"
	"tonecheck-backend/internal/models"
	"tonecheck-backend/internal/services"
)

const maxRequestBytes = 1 << 20

type toneAnalyzer interface {
	Analyze(ctx context.Context, email string) (models.AnalysisResult, error)
}

type AnalyzeHandler struct {
	analyzer toneAnalyzer
	log      logrus.FieldLogger
}

func NewAnalyzeHandler(analyzer toneAnalyzer, log logrus.FieldLogger) *AnalyzeHandler {
	return &AnalyzeHandler{analyzer: analyzer, log: log}
}

// Analyze relays {"email": "..."} to the model and writes an AnalysisResult.
func (h *AnalyzeHandler) Analyze(w http.ResponseWriter, r *http.Request) {
	log := h.log.WithField("request_id", middleware.GetRequestID(r.Context()))

	email, err := decodeEmail(w, r)
	if err != nil {
		log.WithError(err).Info("Rejected tone analysis request")
		handleServiceError(w, err)
		return
	}

	result, err := h.analyzer.Analyze(r.Context(), email)
	if err != nil {
		log.WithError(err).Error("Tone analysis failed")
		handleServiceError(w, err)
		return
	}

	log.Info("Returning successful response")
	writeJSON(w, http.StatusOK, result)
}

// Preflight answers CORS preflight requests; the CORS middleware sets headers.
func (h *AnalyzeHandler) Preflight(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
}

func (h *AnalyzeHandler) MethodNotAllowed(w http.ResponseWriter, r *http.Request) {
	h.log.WithField("method", r.Method).Info("Non-POST request received")
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusMethodNotAllowed)
	w.Write([]byte("Method Not Allowed"))
}

func decodeEmail(w http.ResponseWriter, r *http.Request) (string, error) {
	var req models.AnalysisRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxRequestBytes)).Decode(&req); err != nil {
		if errors.Is(err, io.EOF) {
			return "", &services.ValidationError{Message: "No request body"}
		}
		return "", &services.ValidationError{Message: "Invalid request body: " + err.Error()}
	}
	if req.Email == nil {
		return "", &services.ValidationError{Message: "Missing required field: email"}
	}
	return *req.Email, nil
}

func handleServiceError(w http.ResponseWriter, err error) {
	var validationErr *services.ValidationError
	if errors.As(err, &validationErr) {
		writeJSON(w, http.StatusBadRequest, errorResp("Invalid request", validationErr.Message))
		return
	}
	writeJSON(w, http.StatusInternalServerError, errorResp("Failed to analyze email", err.Error()))
}
