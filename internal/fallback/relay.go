package fallback

import "tonecheck-backend/internal/models"

const RelayAnalysis = "Unable to analyze tone - please try again"

// Relay is the fixed result returned when the model answered with text that
// is not valid JSON. The email is embedded verbatim in every suggestion.
func Relay(email string) models.AnalysisResult {
	return models.AnalysisResult{
		Analysis:     RelayAnalysis,
		Professional: "Dear [Recipient], " + email + " Thank you for your consideration.",
		Friendly:     "Hi! " + email + " Thanks so much!",
		Concise:      email + " Please advise.",
	}
}

// Fill replaces empty fields of result with the matching Relay field.
func Fill(result models.AnalysisResult, email string) models.AnalysisResult {
	fb := Relay(email)
	if result.Analysis == "" {
		result.Analysis = fb.Analysis
	}
	if result.Professional == "" {
		result.Professional = fb.Professional
	}
	if result.Friendly == "" {
		result.Friendly = fb.Friendly
	}
	if result.Concise == "" {
		result.Concise = fb.Concise
	}
	return result
}
