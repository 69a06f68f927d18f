// Package fallback produces tone analyses without calling the model. Local is
// the client-side heuristic; Relay is the template the relay answers with when
// the model's reply cannot be parsed.
package fallback

import (
	"regexp"
	"strings"

	"tonecheck-backend/internal/models"
)

const (
	ToneUrgent     = "Direct and urgent - may come across as demanding"
	TonePolite     = "Polite and professional - well balanced"
	ToneApologetic = "Apologetic tone - perhaps too deferential"
	ToneAbrupt     = "Somewhat abrupt - could benefit from more courtesy"
	ToneDefault    = "Professional but could be enhanced"
)

const (
	shortEmailRunes = 50
	excerptRunes    = 100
	conciseMaxRunes = 80
	conciseSuffix   = " Please advise. Thank you."
)

var courtesyWords = regexp.MustCompile(`(?i)please|thank you|thanks|hi|hello|dear`)

// Local builds a full analysis from keyword checks and string templates.
func Local(email string) models.AnalysisResult {
	return models.AnalysisResult{
		Analysis:     "Current tone: " + ClassifyTone(email),
		Professional: Professional(email),
		Friendly:     Friendly(email),
		Concise:      Concise(email),
	}
}

// ClassifyTone returns the first matching tone label; order matters.
func ClassifyTone(email string) string {
	lower := strings.ToLower(email)
	hasPlease := strings.Contains(lower, "please")
	hasThank := strings.Contains(lower, "thank")

	switch {
	case containsAny(lower, "urgent", "need", "asap"):
		return ToneUrgent
	case hasPlease && hasThank:
		return TonePolite
	case containsAny(lower, "sorry", "apologize"):
		return ToneApologetic
	case !hasPlease && !hasThank:
		return ToneAbrupt
	default:
		return ToneDefault
	}
}

func Professional(text string) string {
	if runeLen(text) < shortEmailRunes {
		return "Dear [Recipient], I hope this message finds you well. " + text +
			" I would appreciate your assistance with this matter. Thank you for your time and consideration. Best regards."
	}
	return "Dear [Recipient], I hope this email finds you well. " + truncate(text, excerptRunes) +
		"... I would be grateful for your prompt attention to this matter. Please let me know if you need any additional information. Thank you for your cooperation. Best regards."
}

func Friendly(text string) string {
	if runeLen(text) < shortEmailRunes {
		return "Hi there! Hope you're having a great day! " + text +
			" Would you mind helping me out with this? Thanks so much for your time! "
	}
	return "Hi! I hope you're doing well! " + truncate(text, excerptRunes) +
		"... I'd really appreciate your help with this when you get a chance. Thanks a bunch! "
}

// Concise strips courtesy words (substrings included) and caps the body at 80
// characters before the fixed closing.
func Concise(text string) string {
	body := strings.TrimSpace(courtesyWords.ReplaceAllString(text, ""))
	if runeLen(body) > conciseMaxRunes {
		body = truncate(body, conciseMaxRunes) + "..."
	}
	return body + conciseSuffix
}

func containsAny(s string, subs ...string) bool {
	for _, sub := range subs {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}

func runeLen(s string) int {
	return len([]rune(s))
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}
