package main

import (
	"fmt"
	"io"
	"log/slog"

	"github.com/charmbracelet/lipgloss"
)

// Level is how loudly a notice reaches the user.
type Level int

const (
	// LevelSilent only logs.
	LevelSilent Level = iota
	// LevelFlash prints a one-line status.
	LevelFlash
	// LevelDisrupt prints an error badge on the error stream.
	LevelDisrupt
)

var (
	colorSuccess = lipgloss.Color("#10B981")
	colorError   = lipgloss.Color("#EF4444")
	colorWarning = lipgloss.Color("#F59E0B")
	colorMuted   = lipgloss.Color("#6B7280")
	colorLabel   = lipgloss.Color("#22D3EE")
)

// Notifier renders user-facing notices. Styles are bound to the output
// writer's renderer so redirected output carries no escape codes.
type Notifier struct {
	out    io.Writer
	errOut io.Writer
	logger *slog.Logger

	flash   lipgloss.Style
	warn    lipgloss.Style
	badge   lipgloss.Style
	message lipgloss.Style
	label   lipgloss.Style
	muted   lipgloss.Style
}

func newNotifier(out, errOut io.Writer, logger *slog.Logger) *Notifier {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	ro := lipgloss.NewRenderer(out)
	re := lipgloss.NewRenderer(errOut)
	return &Notifier{
		out:     out,
		errOut:  errOut,
		logger:  logger,
		flash:   ro.NewStyle().Bold(true).Foreground(colorSuccess),
		warn:    ro.NewStyle().Foreground(colorWarning),
		badge:   re.NewStyle().Bold(true).Foreground(lipgloss.Color("#FFF")).Background(colorError).Padding(0, 1),
		message: re.NewStyle().Foreground(colorError),
		label:   ro.NewStyle().Bold(true).Foreground(colorLabel),
		muted:   ro.NewStyle().Foreground(colorMuted),
	}
}

// Notify shows msg at level. Every notice is also logged.
func (n *Notifier) Notify(level Level, msg string) {
	switch level {
	case LevelFlash:
		n.logger.Info(msg)
		fmt.Fprintln(n.out, n.flash.Render("✓ "+msg)) //nolint:errcheck
	case LevelDisrupt:
		n.logger.Error(msg)
		fmt.Fprintln(n.errOut, n.badge.Render("ERROR"), n.message.Render(msg)) //nolint:errcheck
	default:
		n.logger.Info(msg)
	}
}

// Warn prints a highlighted line that is not an error.
func (n *Notifier) Warn(msg string) {
	n.logger.Warn(msg)
	fmt.Fprintln(n.out, n.warn.Render("! "+msg)) //nolint:errcheck
}

// KeyValue prints an aligned "label value" line.
func (n *Notifier) KeyValue(label, value string) {
	fmt.Fprintf(n.out, "%s %s\n", n.label.Render(fmt.Sprintf("%-11s", label)), value) //nolint:errcheck
}

// Muted prints secondary text.
func (n *Notifier) Muted(msg string) {
	fmt.Fprintln(n.out, n.muted.Render(msg)) //nolint:errcheck
}
