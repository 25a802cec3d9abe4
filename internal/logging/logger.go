package logging

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/log"
)

const (
	KeyAccount = "account"
	KeyAction  = "action"
	KeyRun     = "run"
)

type Options struct {
	Level      string
	Prefix     string
	Timestamps bool
}

func New(w io.Writer, opts Options) (*log.Logger, error) {
	level := log.InfoLevel
	if raw := strings.TrimSpace(opts.Level); raw != "" {
		parsed, err := log.ParseLevel(raw)
		if err != nil {
			return nil, fmt.Errorf("parse log level %q: %w", raw, err)
		}
		level = parsed
	}

	logger := log.NewWithOptions(w, log.Options{
		Level:           level,
		Prefix:          opts.Prefix,
		ReportTimestamp: opts.Timestamps,
		TimeFormat:      time.DateTime,
	})
	logger.SetStyles(newStyles())

	return logger, nil
}

// Discard is used where no logger was injected.
func Discard() *log.Logger {
	return log.NewWithOptions(io.Discard, log.Options{Level: log.FatalLevel})
}

func newStyles() *log.Styles {
	styles := log.DefaultStyles()
	styles.Keys[KeyAccount] = lipgloss.NewStyle().Foreground(lipgloss.Color("86"))
	styles.Values[KeyAccount] = lipgloss.NewStyle().Foreground(lipgloss.Color("86")).Bold(true)
	styles.Keys[KeyAction] = lipgloss.NewStyle().Foreground(lipgloss.Color("69"))
	styles.Keys[KeyRun] = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
	styles.Values[KeyRun] = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))

	return styles
}
