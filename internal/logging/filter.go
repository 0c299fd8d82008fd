// Package logging keeps credentials and oversized directives out of faster's
// log files. Directives are free-form user text and may carry tokens that
// were pasted or dictated, so everything written to disk passes through
// FilteringWriter.
package logging

import (
	"io"
	"regexp"
	"strings"
	"unicode/utf8"
)

// RedactedValue replaces anything that looks like a credential.
const RedactedValue = "[REDACTED]"

// DirectivePreviewLength is how many runes of a directive go into a log line.
const DirectivePreviewLength = 80

//nolint:gochecknoglobals // compiled once, shared by every writer
var sensitivePatterns = []*regexp.Regexp{
	regexp.MustCompile(`sk-ant-[a-zA-Z0-9_-]+`),
	regexp.MustCompile(`sk-[a-zA-Z0-9]{20,}`),
	regexp.MustCompile(`gh[pousr]_[a-zA-Z0-9]{20,}`),
	regexp.MustCompile(`(?i)bearer\s+[a-zA-Z0-9._-]{20,}`),
	regexp.MustCompile(`(?i)(api[_-]?key|token|secret|password)\s*[:=]\s*["']?[^\s"']{8,}["']?`),
	regexp.MustCompile(`(?i)-----BEGIN[A-Z\s]+PRIVATE KEY-----`),
}

//nolint:gochecknoglobals // lookup table
var sensitiveFieldNames = []string{
	"api_key",
	"apikey",
	"token",
	"secret",
	"password",
	"credential",
	"private_key",
	"authorization",
}

// ContainsSensitiveData reports whether s matches any credential pattern.
func ContainsSensitiveData(s string) bool {
	for _, pattern := range sensitivePatterns {
		if pattern.MatchString(s) {
			return true
		}
	}
	return false
}

// FilterSensitiveValue replaces every credential match in value.
func FilterSensitiveValue(value string) string {
	for _, pattern := range sensitivePatterns {
		value = pattern.ReplaceAllString(value, RedactedValue)
	}
	return value
}

// IsSensitiveFieldName reports whether a log field name implies a secret value.
func IsSensitiveFieldName(name string) bool {
	lower := strings.ToLower(name)
	for _, sensitive := range sensitiveFieldNames {
		if strings.Contains(lower, sensitive) {
			return true
		}
	}
	return false
}

// SafeValue returns value fit for a log field called name.
//
//	log.Debug().Str("cli_path", logging.SafeValue("cli_path", cfg.CLIPath)).Msg("executor ready")
func SafeValue(name, value string) string {
	if IsSensitiveFieldName(name) {
		return RedactedValue
	}
	return FilterSensitiveValue(value)
}

// Directive returns a filtered, single-line preview of a task directive.
func Directive(command string) string {
	preview := strings.Join(strings.Fields(FilterSensitiveValue(command)), " ")
	if utf8.RuneCountInString(preview) <= DirectivePreviewLength {
		return preview
	}
	runes := []rune(preview)
	return string(runes[:DirectivePreviewLength-1]) + "…"
}

// FilteringWriter redacts credentials from everything written through it.
type FilteringWriter struct {
	w io.Writer
}

// NewFilteringWriter wraps w.
func NewFilteringWriter(w io.Writer) *FilteringWriter {
	return &FilteringWriter{w: w}
}

// Write filters p and reports len(p) on success so callers never see a short write.
func (fw *FilteringWriter) Write(p []byte) (int, error) {
	if _, err := fw.w.Write([]byte(FilterSensitiveValue(string(p)))); err != nil {
		return 0, err
	}
	return len(p), nil
}
