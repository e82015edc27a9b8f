package tui

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/aretw0/ruleflow/pkg/domain"
	"github.com/charmbracelet/glamour"
	"golang.org/x/term"
)

// NewRenderer returns a function that renders markdown using glamour.
func NewRenderer() func(string) (string, error) {
	r, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(), // Automatically detect light/dark background
	)
	if err != nil {
		return func(markdown string) (string, error) { return markdown, nil }
	}

	return func(markdown string) (string, error) {
		return r.Render(markdown)
	}
}

// IsTerminal reports whether f is attached to a terminal.
func IsTerminal(f *os.File) bool {
	return term.IsTerminal(int(f.Fd()))
}

// Printer writes reports and verdicts either as rendered markdown (rich)
// or as the raw markdown source (plain, for pipes and CI logs).
type Printer struct {
	w      io.Writer
	rich   bool
	render func(string) (string, error)
}

// NewPrinter creates a Printer on w. Rich output is used only when w is a terminal.
func NewPrinter(w io.Writer) *Printer {
	p := &Printer{w: w}
	if f, ok := w.(*os.File); ok && IsTerminal(f) {
		p.rich = true
		p.render = NewRenderer()
	}
	return p
}

// Report prints the validation report of the workflow called name.
func (p *Printer) Report(name string, report domain.ValidationReport) error {
	return p.print(ReportMarkdown(name, report))
}

// Verdict prints the payload sent to the evaluator and its verdict.
func (p *Printer) Verdict(ruleID string, payload any, verdict *domain.Verdict) error {
	md, err := VerdictMarkdown(ruleID, payload, verdict)
	if err != nil {
		return err
	}
	return p.print(md)
}

func (p *Printer) print(markdown string) error {
	out := markdown
	if p.rich && p.render != nil {
		rendered, err := p.render(markdown)
		if err != nil {
			return fmt.Errorf("render failed: %w", err)
		}
		out = rendered
	}
	_, err := io.WriteString(p.w, out)
	return err
}

// ReportMarkdown formats a validation report as markdown.
func ReportMarkdown(name string, report domain.ValidationReport) string {
	var sb strings.Builder

	status := "valid"
	if !report.Valid {
		status = "invalid"
	}
	fmt.Fprintf(&sb, "## %s: %s\n\n", name, status)

	for _, issue := range report.Issues {
		if issue.NodeID != "" {
			fmt.Fprintf(&sb, "- **%s** `%s`: %s\n", issue.Check, issue.NodeID, issue.Message)
		} else {
			fmt.Fprintf(&sb, "- **%s**: %s\n", issue.Check, issue.Message)
		}
	}
	if len(report.Issues) > 0 {
		sb.WriteString("\n")
	}
	return sb.String()
}

// VerdictMarkdown formats a trial evaluation as markdown.
func VerdictMarkdown(ruleID string, payload any, verdict *domain.Verdict) (string, error) {
	data, err := json.MarshalIndent(payload, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to encode payload: %w", err)
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "## Rule %s\n\n", ruleID)
	sb.WriteString("```json\n")
	sb.Write(data)
	sb.WriteString("\n```\n\n")

	if verdict == nil {
		return sb.String(), nil
	}

	result := "fail"
	if verdict.ConditionResult {
		result = "pass"
	}
	fmt.Fprintf(&sb, "**Result:** %s\n\n", result)
	for _, action := range verdict.ActionsApplied {
		b, err := json.Marshal(action)
		if err != nil {
			return "", fmt.Errorf("failed to encode action: %w", err)
		}
		fmt.Fprintf(&sb, "- `%s`\n", b)
	}
	if len(verdict.ActionsApplied) > 0 {
		sb.WriteString("\n")
	}
	return sb.String(), nil
}
