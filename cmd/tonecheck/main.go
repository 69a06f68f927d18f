// Command tonecheck analyzes an email draft from the terminal.
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"tonecheck-backend/internal/client"
	"tonecheck-backend/internal/logging"
	"tonecheck-backend/internal/models"
)

var (
	titleStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#7D56F4"))
	toneStyle  = lipgloss.NewStyle().Bold(true)
	boxStyle   = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).Padding(0, 1).Width(80)
	warnStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#E5C07B"))
	errStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#E06C75"))
)

func main() {
	relayURL := flag.String("relay", envOr("TONECHECK_RELAY_URL", "http://localhost:8080/api/v1/analyze-tone"), "tone relay URL")
	email := flag.String("email", "", "email draft (read from stdin when empty)")
	local := flag.Bool("local", false, "skip the relay and use the local heuristic")
	flag.Parse()

	text := *email
	if text == "" {
		b, err := io.ReadAll(os.Stdin)
		if err != nil {
			fmt.Fprintln(os.Stderr, errStyle.Render("read stdin: "+err.Error()))
			os.Exit(1)
		}
		text = string(b)
	}

	if *local {
		render(client.LocalFallbackAnalysis(strings.TrimSpace(text)))
		return
	}

	c := client.New(*relayURL, logging.Discard())
	analysis, err := c.Analyze(context.Background(), text)
	if err != nil {
		// only input validation errors reach here
		fmt.Fprintln(os.Stderr, errStyle.Render(err.Error()))
		os.Exit(2)
	}

	if analysis.Fallback {
		fmt.Fprintln(os.Stderr, warnStyle.Render(fmt.Sprintf("AI analysis failed: %v. Showing local suggestions.", analysis.Cause)))
	}
	render(analysis.AnalysisResult)
}

func render(r models.AnalysisResult) {
	fmt.Println(toneStyle.Render(r.Analysis))
	fmt.Println()
	for _, s := range []struct{ title, text string }{
		{"Professional Version", r.Professional},
		{"Friendly Version", r.Friendly},
		{"Concise Version", r.Concise},
	} {
		fmt.Println(titleStyle.Render(s.title))
		fmt.Println(boxStyle.Render(s.text))
	}
}

func envOr(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}
