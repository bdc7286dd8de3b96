// seekassist - DeepSeek coding assistant
// Entry point: cobra command tree over the assist orchestrator.

package main

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matiasleandrokruk/seekassist/internal/version"
)

// Exit codes.
const (
	exitOK      = 0
	exitFailure = 1
	exitUsage   = 2
)

// errReported marks an error whose message has already been shown through the
// notifier, so run only maps it to an exit code.
var errReported = errors.New("reported")

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

func run(args []string, out, errOut io.Writer) int {
	root := newRootCmd(out, errOut)
	root.SetArgs(args)

	cmd, err := root.ExecuteC()
	switch {
	case err == nil:
		return exitOK
	case errors.Is(err, errReported):
		return exitFailure
	case isUsageError(cmd, err):
		fmt.Fprintln(errOut, "Error:", err)     //nolint:errcheck
		fmt.Fprint(errOut, cmd.UsageString()) //nolint:errcheck
		return exitUsage
	default:
		newNotifier(errOut, errOut, nil).Notify(LevelDisrupt, err.Error())
		return exitFailure
	}
}

// isUsageError reports flag, argument and command-lookup errors, which cobra
// returns before RunE is entered.
func isUsageError(cmd *cobra.Command, err error) bool {
	var ue usageError
	if errors.As(err, &ue) {
		return cmd != nil
	}
	msg := err.Error()
	return cmd != nil && (strings.HasPrefix(msg, "unknown command") || strings.HasPrefix(msg, "required flag"))
}

type usageError struct{ err error }

func (e usageError) Error() string { return e.err.Error() }

func (e usageError) Unwrap() error { return e.err }

// checkArgs tags positional-argument failures as usage errors.
func checkArgs(v cobra.PositionalArgs) cobra.PositionalArgs {
	return func(cmd *cobra.Command, args []string) error {
		if err := v(cmd, args); err != nil {
			return usageError{err}
		}
		return nil
	}
}

// rootOptions are the persistent flags.
type rootOptions struct {
	logLevel string
	out      io.Writer
	errOut   io.Writer
}

func (o *rootOptions) logger() *slog.Logger {
	var level slog.Level
	if err := level.UnmarshalText([]byte(o.logLevel)); err != nil {
		level = slog.LevelWarn
	}
	return slog.New(slog.NewTextHandler(o.errOut, &slog.HandlerOptions{Level: level}))
}

func newRootCmd(out, errOut io.Writer) *cobra.Command {
	opts := &rootOptions{out: out, errOut: errOut}

	root := &cobra.Command{
		Use:   version.Name,
		Short: "seekassist - DeepSeek code generation, fixes and project analysis",
		Long: `seekassist sends prompts, broken code or a whole project tree to a
DeepSeek-compatible chat-completions API and prints the classified result.

The API key is stored once with "seekassist key set" (or DEEPSEEK_API_KEY).
"seekassist serve" exposes the same operations to an editor panel over HTTP
and "seekassist mcp" exposes them as MCP tools over stdio.`,
		Version:       version.String(),
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.SetOut(out)
	root.SetErr(errOut)
	root.SetVersionTemplate("{{.Version}}\n")
	root.SetFlagErrorFunc(func(_ *cobra.Command, err error) error {
		return usageError{err}
	})
	root.PersistentFlags().StringVar(&opts.logLevel, "log-level", "warn", "log level: debug, info, warn, error")

	root.AddCommand(
		newGenerateCmd(opts),
		newFixCmd(opts),
		newAnalyzeCmd(opts),
		newKeyCmd(opts),
		newHistoryCmd(opts),
		newServeCmd(opts),
		newMCPCmd(opts),
		newTokenCmd(opts),
		newVersionCmd(opts),
	)
	return root
}

func newVersionCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Args:  checkArgs(cobra.NoArgs),
		RunE: func(_ *cobra.Command, _ []string) error {
			_, err := fmt.Fprintln(opts.out, version.String())
			return err
		},
	}
}
