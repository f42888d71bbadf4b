package errors

import (
	"fmt"
	"strings"
)

// ANSI color codes
const (
	colorReset  = "\033[0m"
	colorRed    = "\033[31m"
	colorYellow = "\033[33m"
	colorCyan   = "\033[36m"
	colorGray   = "\033[90m"
	colorBold   = "\033[1m"
)

// FormatForTerminal formats a CompileError for terminal output with ANSI colors
func (e CompileError) FormatForTerminal() string {
	var sb strings.Builder

	severityColor := getSeverityColor(e.Severity)
	sb.WriteString(fmt.Sprintf("%s%s%s [%s/%s]: %s\n",
		colorBold+severityColor,
		titleCase(e.Severity.String()),
		colorReset,
		e.Phase,
		e.Code,
		e.Message))

	if e.Location.File != "" {
		if e.Location.Line > 0 {
			sb.WriteString(fmt.Sprintf("  %s-->%s %s:%d:%d\n",
				colorCyan, colorReset,
				e.Location.File, e.Location.Line, e.Location.Column))
		} else {
			sb.WriteString(fmt.Sprintf("  %s-->%s %s\n",
				colorCyan, colorReset, e.Location.File))
		}
	}

	return sb.String()
}

func getSeverityColor(s Severity) string {
	switch s {
	case Warning:
		return colorYellow
	case Info:
		return colorGray
	default:
		return colorRed
	}
}

func titleCase(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
