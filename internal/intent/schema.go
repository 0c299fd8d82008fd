// Package intent turns free-form spoken or typed text into a fixed Command
// shape using deterministic keyword rules.
//
// Import rules:
//   - CAN import: internal/clock, internal/errors, standard library
//   - MUST NOT import: internal/task, internal/daemon, internal/cli
package intent

import (
	"encoding/json"
	"fmt"
	"maps"
	"slices"
	"strings"
	"time"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	fastererrors "github.com/mrz1836/faster/internal/errors"
)

// Intent is the closed set of command categories.
type Intent string

// Intent values. The string form is also the JSON form.
const (
	Orchestrate Intent = "ORCHESTRATE"
	Research    Intent = "RESEARCH"
	Code        Intent = "CODE"
	Test        Intent = "TEST"
)

// AllIntents returns every intent in classification priority order.
func AllIntents() []Intent {
	return []Intent{Orchestrate, Research, Test, Code}
}

// ParseIntent converts a case-insensitive name to an Intent.
func ParseIntent(s string) (Intent, error) {
	candidate := Intent(strings.ToUpper(strings.TrimSpace(s)))
	if slices.Contains(AllIntents(), candidate) {
		return candidate, nil
	}
	return "", fmt.Errorf("%w: unknown intent %q", fastererrors.ErrInvalidArgument, s)
}

// String implements fmt.Stringer.
func (i Intent) String() string {
	return string(i)
}

// Title returns the intent in title case, e.g. "Orchestrate".
func (i Intent) Title() string {
	return cases.Title(language.English).String(strings.ToLower(string(i)))
}

// Description returns a one-line summary of what the intent covers.
func (i Intent) Description() string {
	switch i {
	case Orchestrate:
		return "Manage workflows, coordinate agents, spawn tasks"
	case Research:
		return "Search code, gather context, read documentation"
	case Code:
		return "Generate, edit, refactor code"
	case Test:
		return "Run tests, debug failures, fix issues"
	default:
		return ""
	}
}

// UnmarshalText rejects names outside the closed set.
func (i *Intent) UnmarshalText(text []byte) error {
	parsed, err := ParseIntent(string(text))
	if err != nil {
		return err
	}
	*i = parsed
	return nil
}

// Command is the normalized result of processing one transcript.
// Only Directive crosses into the task queue.
type Command struct {
	Intent     Intent            `json:"intent"`
	Directive  string            `json:"directive"`
	Entities   []string          `json:"entities"`
	Context    map[string]string `json:"context"`
	Confidence float64           `json:"confidence"`
	CreatedAt  time.Time         `json:"created_at"`
}

// NewCommand creates a Command with an empty context stamped with the current time.
func NewCommand(intent Intent, directive string, entities []string, confidence float64) *Command {
	if entities == nil {
		entities = []string{}
	}
	return &Command{
		Intent:     intent,
		Directive:  directive,
		Entities:   entities,
		Context:    make(map[string]string),
		Confidence: confidence,
		CreatedAt:  time.Now().UTC(),
	}
}

// WithContext sets one context entry and returns the command for chaining.
func (c *Command) WithContext(key, value string) *Command {
	if c.Context == nil {
		c.Context = make(map[string]string)
	}
	c.Context[key] = value
	return c
}

// WithContexts merges entries into the context, overwriting existing keys.
func (c *Command) WithContexts(entries map[string]string) *Command {
	if c.Context == nil {
		c.Context = make(map[string]string, len(entries))
	}
	maps.Copy(c.Context, entries)
	return c
}

// IsConfident reports whether the confidence meets threshold.
func (c *Command) IsConfident(threshold float64) bool {
	return c.Confidence >= threshold
}

// Prompt renders the directive followed by a context block, keys sorted.
//
//	run the tests
//
//	Context:
//	- scope: broad
//	- urgency: high
func (c *Command) Prompt() string {
	if len(c.Context) == 0 {
		return c.Directive
	}

	var b strings.Builder
	b.WriteString(c.Directive)
	b.WriteString("\n\nContext:")
	for _, key := range slices.Sorted(maps.Keys(c.Context)) {
		fmt.Fprintf(&b, "\n- %s: %s", key, c.Context[key])
	}
	return b.String()
}

// JSON returns the command as indented JSON.
func (c *Command) JSON() ([]byte, error) {
	return json.MarshalIndent(c, "", "  ")
}

// AmbiguityResolution records how a vague phrase was mapped to an entity.
type AmbiguityResolution struct {
	FromPhrase string  `json:"from_phrase"`
	ToEntity   string  `json:"to_entity"`
	Context    string  `json:"context"`
	Confidence float64 `json:"confidence"`
}

// ExtractionResult is a Command plus the bookkeeping of how it was produced.
type ExtractionResult struct {
	Command             *Command              `json:"command"`
	Transcript          string                `json:"transcript"`
	ProcessingTime      time.Duration         `json:"processing_time_ns"`
	AmbiguitiesResolved []AmbiguityResolution `json:"ambiguities_resolved"`
}
