package main

import (
	"fmt"
	"os"

	"github.com/fatih/color"
	"github.com/spf13/viper"

	"github.com/dmitry-t/inkscape-export-layers/internal/layers"
)

// cliLogger implements export.Logger with colored output on stderr.
type cliLogger struct {
	info, warn, fail *color.Color
}

func newLogger() *cliLogger {
	if viper.GetBool("no_color") {
		color.NoColor = true
	}
	return &cliLogger{
		info: color.New(color.FgCyan),
		warn: color.New(color.FgYellow),
		fail: color.New(color.FgRed),
	}
}

func (l *cliLogger) Infof(format string, args ...any) {
	l.info.Fprintf(os.Stderr, format+"\n", args...)
}

func (l *cliLogger) Warnf(format string, args ...any) {
	l.warn.Fprintf(os.Stderr, "⚠ "+format+"\n", args...)
}

func (l *cliLogger) Errorf(format string, args ...any) {
	l.fail.Fprintf(os.Stderr, "✗ "+format+"\n", args...)
}

func reportWarnings(l *cliLogger, warnings []layers.Warning) {
	for _, w := range warnings {
		l.Warnf("%s", w.Message)
	}
}

// truncate shortens s to n runes for table output.
func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return fmt.Sprintf("%s...", string(r[:n-3]))
}
