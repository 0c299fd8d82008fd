package config

import (
	"context"
	"os"
	"os/exec"
	"regexp"
	"strconv"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/mrz1836/faster/internal/constants"
	"github.com/mrz1836/faster/internal/errors"
	"github.com/mrz1836/faster/internal/process"
)

// Tool names checked by doctor.
const (
	ToolClaude    = "claude"
	ToolOsascript = "osascript"
	ToolSay       = "say"
	ToolEditor    = "editor"

	// MinVersionClaude is the oldest claude CLI known to accept --model.
	MinVersionClaude = "1.0.0"

	// DefaultEditor is used when $EDITOR is unset.
	DefaultEditor = "vi"
)

//nolint:gochecknoglobals // compiled once
var (
	claudeVersionPatterns = []*regexp.Regexp{
		regexp.MustCompile(`(?i)claude[- ]?code[- ]?v?(\d+\.\d+(?:\.\d+)?)`),
		regexp.MustCompile(`v?(\d+\.\d+\.\d+)`),
	}
)

// ToolStatus represents the installation status of an external tool.
//
//nolint:recvcheck // UnmarshalJSON requires pointer receiver per json.Unmarshaler interface
type ToolStatus int

const (
	// ToolStatusMissing indicates the tool is not installed.
	ToolStatusMissing ToolStatus = iota

	// ToolStatusInstalled indicates the tool is installed and meets version requirements.
	ToolStatusInstalled

	// ToolStatusOutdated indicates the tool is installed but below the minimum version.
	ToolStatusOutdated
)

// maxVersionSegments is the number of segments in a semantic version (major.minor.patch).
const maxVersionSegments = 3

// String returns a human-readable representation of the tool status.
func (s ToolStatus) String() string {
	switch s {
	case ToolStatusInstalled:
		return "installed"
	case ToolStatusMissing:
		return "missing"
	case ToolStatusOutdated:
		return "outdated"
	default:
		return "unknown"
	}
}

// MarshalJSON implements json.Marshaler for human-readable JSON output.
func (s ToolStatus) MarshalJSON() ([]byte, error) {
	return []byte(`"` + s.String() + `"`), nil
}

// UnmarshalJSON implements json.Unmarshaler for parsing JSON status strings.
// Unknown values decode as missing.
func (s *ToolStatus) UnmarshalJSON(data []byte) error {
	switch strings.Trim(string(data), `"`) {
	case "installed":
		*s = ToolStatusInstalled
	case "outdated":
		*s = ToolStatusOutdated
	default:
		*s = ToolStatusMissing
	}
	return nil
}

// Tool represents an external tool that faster depends on.
type Tool struct {
	// Name is the tool identifier (e.g., "claude", "say").
	Name string `json:"name"`

	// Command is the executable that was looked up.
	Command string `json:"command"`

	// Required indicates the daemon cannot run tasks without it.
	Required bool `json:"required"`

	// Purpose says which feature needs the tool.
	Purpose string `json:"purpose"`

	// MinVersion is the minimum required version (semver format).
	MinVersion string `json:"min_version,omitempty"`

	// CurrentVersion is the detected installed version.
	CurrentVersion string `json:"current_version,omitempty"`

	// Path is where the executable was found.
	Path string `json:"path,omitempty"`

	// Status is the current installation status.
	Status ToolStatus `json:"status"`

	// InstallHint provides installation instructions for missing tools.
	InstallHint string `json:"install_hint"`
}

// ToolDetectionResult holds the results of detecting all tools.
type ToolDetectionResult struct {
	// Tools contains the detection result for each tool, in check order.
	Tools []Tool `json:"tools"`

	// HasMissingRequired indicates if any required tools are missing or outdated.
	HasMissingRequired bool `json:"has_missing_required"`
}

// MissingRequiredTools returns the required tools that are missing or outdated.
func (r *ToolDetectionResult) MissingRequiredTools() []Tool {
	var missing []Tool
	for _, tool := range r.Tools {
		if tool.Required && tool.Status != ToolStatusInstalled {
			missing = append(missing, tool)
		}
	}
	return missing
}

// ToolDetector detects the installation status of external tools.
type ToolDetector interface {
	// Detect checks all configured tools and returns their status.
	Detect(ctx context.Context) (*ToolDetectionResult, error)
}

// VersionFunc reports a tool's version string.
type VersionFunc func(ctx context.Context) (string, error)

// DefaultToolDetector implements ToolDetector.
type DefaultToolDetector struct {
	executor      process.Executor
	claudePath    string
	editor        string
	versionChecks map[string]VersionFunc
}

// DetectorOption configures a DefaultToolDetector.
type DetectorOption func(*DefaultToolDetector)

// WithExecutor replaces the process runner used for lookups and version checks.
func WithExecutor(executor process.Executor) DetectorOption {
	return func(d *DefaultToolDetector) {
		d.executor = executor
	}
}

// WithVersionCheck asks fn for the named tool's version instead of running
// its version flag directly.
func WithVersionCheck(name string, fn VersionFunc) DetectorOption {
	return func(d *DefaultToolDetector) {
		d.versionChecks[name] = fn
	}
}

// NewToolDetector creates a detector for the configured claude executable.
func NewToolDetector(claudePath string, opts ...DetectorOption) *DefaultToolDetector {
	if claudePath == "" {
		claudePath = DefaultClaudeCLIPath
	}
	d := &DefaultToolDetector{
		executor:      &process.DefaultExecutor{},
		claudePath:    claudePath,
		editor:        EditorCommand(),
		versionChecks: make(map[string]VersionFunc),
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// EditorCommand returns the executable named by $EDITOR, or DefaultEditor.
// Arguments in $EDITOR (e.g. "code -w") are dropped.
func EditorCommand() string {
	if fields := strings.Fields(os.Getenv("EDITOR")); len(fields) > 0 {
		return fields[0]
	}
	return DefaultEditor
}

// toolConfig holds the configuration for detecting a specific tool.
type toolConfig struct {
	name        string
	command     string
	versionFlag string
	minVersion  string
	required    bool
	purpose     string
	installHint string
	parseFunc   func(output string) string
}

func (d *DefaultToolDetector) toolConfigs() []toolConfig {
	return []toolConfig{
		{
			name:        ToolClaude,
			command:     d.claudePath,
			versionFlag: "--version",
			minVersion:  MinVersionClaude,
			required:    true,
			purpose:     "runs queued tasks",
			installHint: "Install Claude CLI: npm install -g @anthropic-ai/claude-code",
			parseFunc:   parseClaudeVersion,
		},
		{
			name:        ToolOsascript,
			command:     ToolOsascript,
			purpose:     "voice capture",
			installHint: "Voice capture needs macOS; use 'faster add' elsewhere",
		},
		{
			name:        ToolSay,
			command:     ToolSay,
			purpose:     "spoken feedback",
			installHint: "Spoken feedback needs macOS; set tts.enabled: false elsewhere",
		},
		{
			name:        ToolEditor,
			command:     d.editor,
			purpose:     "faster config edit",
			installHint: "Set $EDITOR to your editor",
		},
	}
}

// Detect checks all configured tools concurrently and returns their status.
func (d *DefaultToolDetector) Detect(ctx context.Context) (*ToolDetectionResult, error) {
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	default:
	}

	detectCtx, cancel := context.WithTimeout(ctx, constants.ToolDetectionTimeout)
	defer cancel()

	configs := d.toolConfigs()
	result := &ToolDetectionResult{
		Tools: make([]Tool, len(configs)),
	}

	g, gCtx := errgroup.WithContext(detectCtx)
	for i, cfg := range configs {
		g.Go(func() error {
			result.Tools[i] = d.detectTool(gCtx, cfg)
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, errors.Wrap(err, "failed to detect tools")
	}

	result.HasMissingRequired = len(result.MissingRequiredTools()) > 0
	return result, nil
}

// detectTool detects a single tool's status.
func (d *DefaultToolDetector) detectTool(ctx context.Context, cfg toolConfig) Tool {
	tool := Tool{
		Name:        cfg.name,
		Command:     cfg.command,
		Required:    cfg.required,
		Purpose:     cfg.purpose,
		MinVersion:  cfg.minVersion,
		InstallHint: cfg.installHint,
		Status:      ToolStatusMissing,
	}

	path, err := d.executor.LookPath(cfg.command)
	if err != nil {
		return tool
	}
	tool.Path = path
	tool.Status = ToolStatusInstalled

	if cfg.versionFlag == "" {
		return tool
	}

	output, err := d.version(ctx, cfg)
	if err != nil {
		tool.CurrentVersion = "unknown"
		return tool
	}

	tool.CurrentVersion = cfg.parseFunc(output)
	if tool.CurrentVersion == "" {
		tool.CurrentVersion = "unknown"
		return tool
	}

	if cfg.minVersion != "" && CompareVersions(tool.CurrentVersion, cfg.minVersion) < 0 {
		tool.Status = ToolStatusOutdated
	}
	return tool
}

// version runs the tool's version flag, or its registered VersionFunc.
func (d *DefaultToolDetector) version(ctx context.Context, cfg toolConfig) (string, error) {
	if fn, ok := d.versionChecks[cfg.name]; ok {
		return fn(ctx)
	}
	cmd := exec.CommandContext(ctx, cfg.command, cfg.versionFlag) //nolint:gosec // command comes from config
	stdout, stderr, err := d.executor.Execute(ctx, cmd)
	return process.Combined(stdout, stderr), err
}

// parseClaudeVersion extracts the version from "claude --version" output,
// e.g. "2.0.76 (Claude Code)".
func parseClaudeVersion(output string) string {
	for _, re := range claudeVersionPatterns {
		if m := re.FindStringSubmatch(output); len(m) > 1 {
			return m[1]
		}
	}
	return ""
}

// CompareVersions compares two semantic versions.
// Returns -1 if a < b, 0 if a == b, 1 if a > b. Missing segments count as zero.
func CompareVersions(a, b string) int {
	pa, pb := parseVersionParts(a), parseVersionParts(b)
	for i := range maxVersionSegments {
		switch {
		case pa[i] < pb[i]:
			return -1
		case pa[i] > pb[i]:
			return 1
		}
	}
	return 0
}

// parseVersionParts splits "1.2.3" into its numeric segments.
// Unparseable segments count as zero.
func parseVersionParts(version string) [maxVersionSegments]int {
	var parts [maxVersionSegments]int
	for i, s := range strings.SplitN(strings.TrimPrefix(version, "v"), ".", maxVersionSegments) {
		n, err := strconv.Atoi(s)
		if err == nil {
			parts[i] = n
		}
	}
	return parts
}
