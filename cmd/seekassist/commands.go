package main

import (
	"bufio"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/matiasleandrokruk/seekassist/internal/domain/assist"
	"github.com/matiasleandrokruk/seekassist/internal/domain/editor"
	"github.com/matiasleandrokruk/seekassist/internal/domain/project"
	"github.com/matiasleandrokruk/seekassist/pkg/auth"
)

// ===== ASSIST COMMANDS =====

func newGenerateCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "generate [prompt...]",
		Short: "Generate code from a prompt (reads stdin when no prompt is given)",
		RunE: func(cmd *cobra.Command, args []string) error {
			prompt := strings.Join(args, " ")
			if len(args) == 0 {
				b, err := io.ReadAll(cmd.InOrStdin())
				if err != nil {
					return fmt.Errorf("read prompt: %w", err)
				}
				prompt = string(b)
			}
			if strings.TrimSpace(prompt) == "" {
				return usageError{errors.New("prompt is empty")}
			}

			return withApp(cmd.Context(), opts, func(a *app) error {
				return a.report(a.orch.SendRequest(cmd.Context(), prompt, assist.ModeGenerate))
			})
		},
	}
}

type fixOptions struct {
	file    string
	problem string
	apply   bool
}

func newFixCmd(opts *rootOptions) *cobra.Command {
	fo := &fixOptions{}
	cmd := &cobra.Command{
		Use:   "fix --problem TEXT [--file PATH [--apply]]",
		Short: "Ask for a corrected version of a file or of code on stdin",
		Args:  checkArgs(cobra.NoArgs),
		RunE: func(cmd *cobra.Command, _ []string) error {
			if strings.TrimSpace(fo.problem) == "" {
				return usageError{errors.New("--problem is empty")}
			}
			if fo.apply && fo.file == "" {
				return usageError{errors.New("--apply needs --file")}
			}
			return withApp(cmd.Context(), opts, func(a *app) error {
				return runFix(cmd, a, fo)
			})
		},
	}
	cmd.Flags().StringVarP(&fo.file, "file", "f", "", "file holding the broken code")
	cmd.Flags().StringVarP(&fo.problem, "problem", "p", "", "description of the problem")
	cmd.Flags().BoolVar(&fo.apply, "apply", false, "replace the file content with the fix and save it")
	cmd.MarkFlagRequired("problem") //nolint:errcheck
	return cmd
}

func runFix(cmd *cobra.Command, a *app, fo *fixOptions) error {
	var (
		code string
		doc  *editor.FileDocument
	)
	if fo.file != "" {
		d, err := editor.Open(fo.file, a.bus)
		if err != nil {
			return err
		}
		if code, err = d.CurrentFileContent(); err != nil {
			return err
		}
		doc = d
	} else {
		b, err := io.ReadAll(cmd.InOrStdin())
		if err != nil {
			return fmt.Errorf("read code: %w", err)
		}
		code = string(b)
	}
	if strings.TrimSpace(code) == "" {
		return usageError{errors.New("no code to fix")}
	}

	out := a.orch.RequestFix(cmd.Context(), code, fo.problem)
	if err := a.report(out); err != nil || !fo.apply {
		return err
	}

	fa := assist.ApplyAndAnnounce(doc, out, a.bus, a.logger)
	if fa.Error != "" {
		a.notify.Notify(LevelDisrupt, "apply fix: "+fa.Error)
		return errReported
	}
	a.notify.Notify(LevelFlash, "fix applied to "+fa.Path)
	return nil
}

type analyzeOptions struct {
	extensions []string
	maxFiles   int
}

func newAnalyzeCmd(opts *rootOptions) *cobra.Command {
	ao := &analyzeOptions{}
	cmd := &cobra.Command{
		Use:   "analyze [root]",
		Short: "Analyze a project tree (default: the current directory)",
		Args:  checkArgs(cobra.MaximumNArgs(1)),
		RunE: func(cmd *cobra.Command, args []string) error {
			root := "."
			if len(args) == 1 {
				root = args[0]
			}
			files, err := project.Scan(root, project.Options{
				MaxFiles:   ao.maxFiles,
				Extensions: normalizeExtensions(ao.extensions),
			})
			if err != nil {
				return err
			}
			if len(files) == 0 {
				return fmt.Errorf("no text files found under %s", root)
			}

			return withApp(cmd.Context(), opts, func(a *app) error {
				a.notify.Notify(LevelSilent, fmt.Sprintf("analyzing %d files", len(files)))
				return a.report(a.orch.RequestProjectAnalysis(cmd.Context(), files))
			})
		},
	}
	cmd.Flags().StringSliceVar(&ao.extensions, "ext", nil, "only include these extensions (go,ts,...)")
	cmd.Flags().IntVar(&ao.maxFiles, "max-files", project.DefaultMaxFiles, "maximum number of files sent")
	return cmd
}

func normalizeExtensions(exts []string) []string {
	out := make([]string, 0, len(exts))
	for _, e := range exts {
		e = strings.ToLower(strings.TrimSpace(e))
		if e == "" {
			continue
		}
		if !strings.HasPrefix(e, ".") {
			e = "." + e
		}
		out = append(out, e)
	}
	return out
}

// ===== KEY COMMANDS =====

func newKeyCmd(opts *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "key",
		Short: "Manage the stored API key",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "set [key]",
		Short: "Store the API key (reads one line from stdin when omitted)",
		Args:  checkArgs(cobra.MaximumNArgs(1)),
		RunE: func(cmd *cobra.Command, args []string) error {
			key := ""
			if len(args) == 1 {
				key = args[0]
			} else {
				line, err := bufio.NewReader(cmd.InOrStdin()).ReadString('\n')
				if err != nil && !errors.Is(err, io.EOF) {
					return fmt.Errorf("read key: %w", err)
				}
				key = line
			}
			if strings.TrimSpace(key) == "" {
				return usageError{errors.New("key is empty; use \"key clear\" to remove it")}
			}

			return withApp(cmd.Context(), opts, func(a *app) error {
				changed, err := a.keys.Update(cmd.Context(), key)
				if err != nil {
					return err
				}
				if changed {
					a.notify.Notify(LevelFlash, "API key saved")
				} else {
					a.notify.Notify(LevelFlash, "API key unchanged")
				}
				return nil
			})
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "clear",
		Short: "Remove the stored API key",
		Args:  checkArgs(cobra.NoArgs),
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withApp(cmd.Context(), opts, func(a *app) error {
				changed, err := a.keys.Clear(cmd.Context())
				if err != nil {
					return err
				}
				if changed {
					a.notify.Notify(LevelFlash, "API key removed")
				} else {
					a.notify.Notify(LevelFlash, "no API key was stored")
				}
				return nil
			})
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "status",
		Short: "Show whether an API key is configured",
		Args:  checkArgs(cobra.NoArgs),
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withApp(cmd.Context(), opts, func(a *app) error {
				configured := "no"
				if a.keys.Valid() {
					configured = "yes"
				}
				a.notify.KeyValue("configured", configured)
				if src := a.keys.Source(); src != "" {
					a.notify.KeyValue("source", src)
				}
				a.notify.KeyValue("provider", a.cfg.Provider)
				a.notify.KeyValue("model", a.cfg.Model)
				a.notify.KeyValue("state", a.orch.State().String())
				return nil
			})
		},
	})
	return cmd
}

// ===== HISTORY =====

func newHistoryCmd(opts *rootOptions) *cobra.Command {
	var (
		limit  int
		asJSON bool
	)
	cmd := &cobra.Command{
		Use:   "history",
		Short: "List recent requests, newest first",
		Args:  checkArgs(cobra.NoArgs),
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withApp(cmd.Context(), opts, func(a *app) error {
				entries, err := a.history.List(cmd.Context(), limit)
				if err != nil {
					return err
				}
				if asJSON {
					enc := json.NewEncoder(opts.out)
					enc.SetIndent("", "  ")
					return enc.Encode(entries)
				}
				if len(entries) == 0 {
					a.notify.Muted("no requests recorded")
					return nil
				}
				for _, e := range entries {
					status := e.Outcome
					if e.FailureKind != "" {
						status += " (" + e.FailureKind + ")"
					}
					fmt.Fprintf(opts.out, "%s  %-8s %-22s %6dms %7d chars\n", //nolint:errcheck
						e.CreatedAt.Local().Format(time.DateTime), e.Mode, status, e.DurationMs, e.Characters)
				}
				return nil
			})
		},
	}
	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "number of entries")
	cmd.Flags().BoolVar(&asJSON, "json", false, "print JSON")
	return cmd
}

// ===== TOKEN =====

func newTokenCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "token <client>",
		Short: "Issue a bearer token for an editor panel (needs JWT_SECRET)",
		Args:  checkArgs(cobra.ExactArgs(1)),
		RunE: func(_ *cobra.Command, args []string) error {
			token, err := auth.GenerateJWT(args[0])
			if err != nil {
				return err
			}
			_, err = fmt.Fprintln(opts.out, token)
			return err
		},
	}
}
