package report

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"golang.org/x/term"
)

const fallbackWidth = 80

var (
	titleStyle   = lipgloss.NewStyle().Bold(true)
	successStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("42"))
	failureStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
	skippedStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("245"))
	borderStyle  = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			Padding(0, 1)
)

// Print renders the report to the run's output sink.
func (r *Report) Print(w io.Writer) {
	width := fallbackWidth
	if f, ok := w.(*os.File); ok {
		if tw, _, err := term.GetSize(int(f.Fd())); err == nil && tw > 0 {
			width = tw
		}
	}

	var b strings.Builder
	header := fmt.Sprintf("%s — %s", r.PipelineName, r.ConnectorName)
	b.WriteString(titleStyle.Render(header))
	b.WriteString("\n")
	b.WriteString(fmt.Sprintf("state: %s", stateStyle(r.State).Render(string(r.State))))
	b.WriteString("\n")
	b.WriteString(fmt.Sprintf("branch: %s @ %s", r.GitBranch, shortRevision(r.GitRevision)))
	if d := r.Duration(); d > 0 {
		b.WriteString(fmt.Sprintf("\nduration: %s", d.Round(time.Millisecond)))
	}

	if len(r.StepResults) == 0 {
		b.WriteString("\n")
		b.WriteString(failureStyle.Render("no steps were executed"))
	}

	for _, result := range r.StepResults {
		line := fmt.Sprintf("%-20s %s", result.StepID, statusStyle(result.Status).Render(result.Status))
		if result.Description != "" {
			line += "  " + skippedStyle.Render(result.Description)
		}
		b.WriteString("\n")
		b.WriteString(line)
	}

	boxed := borderStyle.MaxWidth(width).Render(b.String())
	fmt.Fprintln(w, boxed)
}

func stateStyle(state RunState) lipgloss.Style {
	switch state {
	case StateSuccessful:
		return successStyle
	default:
		return failureStyle
	}
}

func statusStyle(status string) lipgloss.Style {
	switch status {
	case StatusSuccess:
		return successStyle
	case StatusFailed:
		return failureStyle
	default:
		return skippedStyle
	}
}

func shortRevision(revision string) string {
	if len(revision) > 8 {
		return revision[:8]
	}
	return revision
}
