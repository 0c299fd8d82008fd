package intent

import (
	"slices"
	"strings"

	"github.com/rs/zerolog"

	"github.com/mrz1836/faster/internal/clock"
	"github.com/mrz1836/faster/internal/constants"
)

// Confidence levels assigned by classification.
const (
	MatchedConfidence = 0.85
	DefaultConfidence = 0.60
)

type keywordRule struct {
	intent   Intent
	keywords []string
}

// classificationRules are checked in order; the first rule with any keyword
// present wins. Keywords match as plain substrings.
//
//nolint:gochecknoglobals // fixed rule table
var classificationRules = []keywordRule{
	{Orchestrate, []string{"run", "execute", "start", "launch", "deploy", "build"}},
	{Research, []string{"find", "search", "look", "where", "what", "show", "list"}},
	{Test, []string{"test", "debug", "fix", "check", "verify"}},
	{Code, []string{"create", "add", "write", "update", "refactor", "implement", "generate"}},
}

// fillerPhrases are removed as literal, case-sensitive substrings.
//
//nolint:gochecknoglobals // fixed word list
var fillerPhrases = []string{
	"um", "uh", "like", "you know", "actually", "basically",
	"just", "please", "can you", "could you", "i want", "i need",
}

//nolint:gochecknoglobals // fixed word lists
var (
	fileExtensions   = []string{".rs", ".php", ".js"}
	testKinds        = []string{"unit", "integration"}
	structureWords   = []string{"class", "function", "method"}
	urgencyKeywords  = []string{"urgent", "asap", "quick", "fast", "now"}
	broadKeywords    = []string{"all", "every", "entire", "whole"}
	narrowKeywords   = []string{"this", "that", "single", "one"}
	structureConnect = "for"
)

// Context keys and values set by the processor.
const (
	ContextUrgency = "urgency"
	ContextScope   = "scope"
	UrgencyHigh    = "high"
	ScopeBroad     = "broad"
	ScopeNarrow    = "narrow"
)

// Config holds processor settings.
type Config struct {
	// ConfidenceThreshold is the level below which callers should confirm a
	// command before acting on it.
	ConfidenceThreshold float64
}

// DefaultProcessorConfig returns the stock threshold.
func DefaultProcessorConfig() Config {
	return Config{ConfidenceThreshold: constants.DefaultConfidenceThreshold}
}

// Processor maps transcripts to Commands. It holds no mutable state and is
// safe for concurrent use.
type Processor struct {
	cfg    Config
	clock  clock.Clock
	logger zerolog.Logger
}

// Option configures a Processor.
type Option func(*Processor)

// WithClock sets the time source used for CreatedAt and ProcessingTime.
func WithClock(c clock.Clock) Option {
	return func(p *Processor) {
		p.clock = c
	}
}

// WithLogger sets a debug logger.
func WithLogger(logger zerolog.Logger) Option {
	return func(p *Processor) {
		p.logger = logger
	}
}

// NewProcessor creates a Processor.
func NewProcessor(cfg Config, opts ...Option) *Processor {
	p := &Processor{
		cfg:    cfg,
		clock:  clock.RealClock{},
		logger: zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Threshold returns the configured confidence threshold.
func (p *Processor) Threshold() float64 {
	return p.cfg.ConfidenceThreshold
}

// Process converts a transcript into a Command. It never fails; empty input
// yields a Code command with an empty directive and default confidence.
func (p *Processor) Process(transcript string) *Command {
	return p.Extract(transcript).Command
}

// Extract is Process plus timing and the ambiguity resolutions applied.
func (p *Processor) Extract(transcript string) ExtractionResult {
	start := p.clock.Now()
	lower := strings.ToLower(transcript)

	intent, confidence := classify(lower)
	entities, resolutions := extractEntities(lower, intent)

	cmd := &Command{
		Intent:     intent,
		Directive:  CleanDirective(transcript),
		Entities:   entities,
		Context:    buildContext(lower),
		Confidence: confidence,
		CreatedAt:  start,
	}

	p.logger.Debug().
		Str("intent", intent.String()).
		Float64("confidence", confidence).
		Int("entities", len(entities)).
		Msg("transcript processed")

	return ExtractionResult{
		Command:             cmd,
		Transcript:          transcript,
		ProcessingTime:      p.clock.Now().Sub(start),
		AmbiguitiesResolved: resolutions,
	}
}

func classify(lower string) (Intent, float64) {
	for _, rule := range classificationRules {
		if containsAny(lower, rule.keywords) {
			return rule.intent, MatchedConfidence
		}
	}
	return Code, DefaultConfidence
}

func extractEntities(lower string, intent Intent) ([]string, []AmbiguityResolution) {
	entities := []string{}
	var resolutions []AmbiguityResolution
	words := strings.Fields(lower)

	if containsAny(lower, fileExtensions) {
		for _, word := range words {
			if strings.Contains(word, ".") && !strings.HasSuffix(word, ".") {
				entities = append(entities, word)
			}
		}
	}

	if intent == Test {
		for _, kind := range testKinds {
			if strings.Contains(lower, kind) {
				entities = append(entities, kind)
			}
		}
	}

	for i, word := range words {
		if !slices.Contains(structureWords, word) || i+1 >= len(words) {
			continue
		}
		next := words[i+1]
		if next != structureConnect {
			entities = append(entities, next)
			continue
		}
		if i+2 < len(words) {
			name := words[i+2]
			entities = append(entities, name)
			resolutions = append(resolutions, AmbiguityResolution{
				FromPhrase: strings.Join(words[i:i+3], " "),
				ToEntity:   name,
				Context:    word,
				Confidence: MatchedConfidence,
			})
		}
	}

	return entities, resolutions
}

// CleanDirective strips filler phrases and collapses whitespace, repeating
// until nothing changes so that cleaning a cleaned directive is a no-op.
// Removal is literal and case-sensitive, so a filler inside a longer word
// is removed too.
func CleanDirective(text string) string {
	cleaned := text
	for {
		next := cleaned
		for _, filler := range fillerPhrases {
			next = strings.ReplaceAll(next, filler, "")
		}
		next = collapse(next)
		if next == cleaned {
			return cleaned
		}
		cleaned = next
	}
}

func collapse(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

func buildContext(lower string) map[string]string {
	ctx := make(map[string]string)

	if containsAny(lower, urgencyKeywords) {
		ctx[ContextUrgency] = UrgencyHigh
	}

	switch {
	case containsAny(lower, broadKeywords):
		ctx[ContextScope] = ScopeBroad
	case containsAny(lower, narrowKeywords):
		ctx[ContextScope] = ScopeNarrow
	}

	return ctx
}

func containsAny(text string, patterns []string) bool {
	for _, p := range patterns {
		if strings.Contains(text, p) {
			return true
		}
	}
	return false
}

// ProcessingMillis returns ProcessingTime in whole milliseconds.
func (r ExtractionResult) ProcessingMillis() int64 {
	return r.ProcessingTime.Milliseconds()
}
