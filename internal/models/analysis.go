package models

// AnalysisRequest is the payload sent to the tone relay.
// Email is a pointer so an absent field can be told apart from an empty one.
type AnalysisRequest struct {
	Email *string `json:"email"`
}

// AnalysisResult is the normalized tone analysis with three rewritten drafts.
type AnalysisResult struct {
	Analysis     string `json:"analysis"`
	Professional string `json:"professional"`
	Friendly     string `json:"friendly"`
	Concise      string `json:"concise"`
}

// Complete reports whether every field carries text.
func (a AnalysisResult) Complete() bool {
	return a.Analysis != "" && a.Professional != "" && a.Friendly != "" && a.Concise != ""
}

// ErrorResponse is the relay's error payload.
type ErrorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details"`
}
