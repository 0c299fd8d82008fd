package cli

import (
	"fmt"
	"io"
	"maps"
	"slices"
	"strings"

	"github.com/spf13/cobra"

	"github.com/mrz1836/faster/internal/errors"
	"github.com/mrz1836/faster/internal/intent"
	"github.com/mrz1836/faster/internal/tui"
)

// AddParseCommand adds the parse command to the root command.
func AddParseCommand(root *cobra.Command) {
	cmd := &cobra.Command{
		Use:   "parse <text...>",
		Short: "Show how text would be interpreted without queuing it",
		Long: `Run intent extraction on text and print the resulting command: intent,
confidence, cleaned directive, entities and context hints.

Examples:
  faster parse "um can you refactor the class for authentication"
  faster parse -o json find where the config is loaded`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			w := cmd.OutOrStdout()
			format := outputFormat(cmd)
			cfg, err := loadConfig(cmd)
			if err != nil {
				return silenceJSONError(cmd, handleError(format, err))
			}
			return silenceJSONError(cmd, runParseWithDeps(w, format, newProcessor(cfg), strings.Join(args, " ")))
		},
	}
	root.AddCommand(cmd)
}

// runParseWithDeps prints the extraction result for text.
func runParseWithDeps(w io.Writer, format string, processor *intent.Processor, text string) error {
	if strings.TrimSpace(text) == "" {
		return handleError(format, fmt.Errorf("%w: text %w", errors.ErrInvalidArgument, errors.ErrEmptyValue))
	}

	result := processor.Extract(text)
	logger := GetLogger()
	logger.Debug().
		Str("intent", result.Command.Intent.String()).
		Int64("took_ms", result.ProcessingMillis()).
		Msg("text parsed")

	out := tui.NewOutput(w, format)
	if format == OutputJSON {
		return out.JSON(result)
	}

	command := result.Command
	threshold := processor.Threshold()

	confidence := fmt.Sprintf("%.0f%%", command.Confidence*100)
	if !command.IsConfident(threshold) {
		confidence += tui.StyleDim.Render(fmt.Sprintf(" (below %.0f%%, would ask to confirm)", threshold*100))
	}

	printField(w, "Intent", fmt.Sprintf("%s · %s", command.Intent, command.Intent.Description()))
	printField(w, "Confidence", confidence)
	printField(w, "Directive", command.Directive)
	if len(command.Entities) > 0 {
		printField(w, "Entities", strings.Join(command.Entities, ", "))
	}
	for _, key := range slices.Sorted(maps.Keys(command.Context)) {
		printField(w, "Context", key+"="+command.Context[key])
	}
	for _, r := range result.AmbiguitiesResolved {
		printField(w, "Resolved", fmt.Sprintf("%q → %s", r.FromPhrase, r.ToEntity))
	}
	printField(w, "Took", fmt.Sprintf("%d ms", result.ProcessingMillis()))

	if prompt := command.Prompt(); prompt != command.Directive {
		_, _ = fmt.Fprintln(w)
		_, _ = fmt.Fprintln(w, tui.StyleBold.Render("Prompt"))
		_, _ = fmt.Fprintln(w, prompt)
	}
	return nil
}

func printField(w io.Writer, label, value string) {
	_, _ = fmt.Fprintf(w, "%s %s\n", tui.StyleBold.Render(fmt.Sprintf("%-11s", label+":")), value)
}
