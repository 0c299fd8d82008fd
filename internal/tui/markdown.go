package tui

import (
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/glamour"

	"github.com/mrz1836/faster/internal/domain"
)

// markdownWordWrap is the wrap width for rendered task details.
const markdownWordWrap = 80

var (
	glamourRenderer     *glamour.TermRenderer //nolint:gochecknoglobals // cached renderer
	glamourRendererOnce sync.Once             //nolint:gochecknoglobals // guards glamourRenderer
)

// getGlamourRenderer returns a cached renderer, or nil if one could not be built.
func getGlamourRenderer() *glamour.TermRenderer {
	glamourRendererOnce.Do(func() {
		style := glamour.WithAutoStyle()
		if !HasColorSupport() {
			style = glamour.WithStandardStyle("notty")
		}
		r, err := glamour.NewTermRenderer(style, glamour.WithWordWrap(markdownWordWrap))
		if err == nil {
			glamourRenderer = r
		}
	})
	return glamourRenderer
}

// RenderMarkdown renders md for the terminal. If rendering fails the source
// is returned unchanged.
func RenderMarkdown(md string) string {
	if r := getGlamourRenderer(); r != nil {
		if out, err := r.Render(md); err == nil {
			return out
		}
	}
	return md
}

// TaskMarkdown describes a task as a markdown document.
func TaskMarkdown(t *domain.Task) string {
	var b strings.Builder

	fmt.Fprintf(&b, "# Task %s\n\n", t.ID)
	fmt.Fprintf(&b, "**Status:** %s %s\n\n", TaskStatusIcon(t.Status), t.Status)

	b.WriteString("## Directive\n\n")
	b.WriteString("```\n")
	b.WriteString(strings.TrimRight(t.Command, "\n"))
	b.WriteString("\n```\n\n")

	b.WriteString("## Details\n\n")
	b.WriteString("| Field | Value |\n|---|---|\n")
	model := t.Model
	if model == "" {
		model = "default"
	}
	fmt.Fprintf(&b, "| Model | %s |\n", model)
	fmt.Fprintf(&b, "| Created | %s |\n", formatTimestamp(&t.CreatedAt))
	fmt.Fprintf(&b, "| Started | %s |\n", formatTimestamp(t.StartedAt))
	fmt.Fprintf(&b, "| Finished | %s |\n", formatTimestamp(t.CompletedAt))
	fmt.Fprintf(&b, "| Duration | %s |\n", FormatDuration(t.Duration()))

	if t.Error != "" {
		b.WriteString("\n## Error\n\n")
		b.WriteString("```\n")
		b.WriteString(strings.TrimRight(t.Error, "\n"))
		b.WriteString("\n```\n")
	}

	return b.String()
}

func formatTimestamp(t *time.Time) string {
	if t == nil || t.IsZero() {
		return "-"
	}
	return t.Local().Format(time.DateTime)
}
