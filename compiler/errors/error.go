// Package errors defines the structured error type shared by every compile
// phase, plus terminal and JSON renderings for CLI and tooling consumers.
package errors

import "fmt"

// Severity represents the severity level of an error
type Severity int

const (
	Info Severity = iota
	Warning
	Error
	Fatal
)

// String returns the string representation of the severity
func (s Severity) String() string {
	switch s {
	case Info:
		return "info"
	case Warning:
		return "warning"
	case Error:
		return "error"
	case Fatal:
		return "fatal"
	default:
		return "unknown"
	}
}

// MarshalJSON implements json.Marshaler for Severity
func (s Severity) MarshalJSON() ([]byte, error) {
	return []byte(`"` + s.String() + `"`), nil
}

// UnmarshalJSON implements json.Unmarshaler for Severity
func (s *Severity) UnmarshalJSON(data []byte) error {
	str := string(data)
	if len(str) >= 2 && str[0] == '"' && str[len(str)-1] == '"' {
		str = str[1 : len(str)-1]
	}

	switch str {
	case "info":
		*s = Info
	case "warning":
		*s = Warning
	case "error":
		*s = Error
	case "fatal":
		*s = Fatal
	default:
		*s = Error // Default to Error if unknown
	}
	return nil
}

// Compile phases, in pipeline order.
const (
	PhaseFrontmatter = "frontmatter"
	PhaseNormalize   = "normalize"
	PhaseCodegen     = "codegen"
	PhaseDeploy      = "deploy"
)

// SourceLocation represents a location in a source document
type SourceLocation struct {
	File   string `json:"file"`
	Line   int    `json:"line,omitempty"`
	Column int    `json:"column,omitempty"`
}

// CompileError represents a comprehensive compile error
type CompileError struct {
	Phase    string         `json:"phase"`   // frontmatter, normalize, codegen, deploy
	Code     string         `json:"code"`    // "FM001", "CG001", ...
	Message  string         `json:"message"` // Human-readable message
	Location SourceLocation `json:"location"`
	Severity Severity       `json:"severity"`
}

// Error implements the error interface
func (e CompileError) Error() string {
	if e.Location.Line > 0 {
		return fmt.Sprintf("%s:%d:%d: %s: %s",
			e.Location.File, e.Location.Line, e.Location.Column, e.Code, e.Message)
	}
	if e.Location.File != "" {
		return fmt.Sprintf("%s: %s: %s", e.Location.File, e.Code, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// IsError returns true for Error and Fatal severities
func (e CompileError) IsError() bool {
	return e.Severity == Error || e.Severity == Fatal
}

// IsWarning returns true for Warning severity
func (e CompileError) IsWarning() bool {
	return e.Severity == Warning
}

// New builds a CompileError at Error severity for the given phase.
func New(phase, code, file, message string) CompileError {
	return CompileError{
		Phase:    phase,
		Code:     code,
		Message:  message,
		Location: SourceLocation{File: file},
		Severity: Error,
	}
}

// Wrap builds a CompileError from an underlying error, preserving its text.
func Wrap(phase, code, file string, err error) CompileError {
	return New(phase, code, file, err.Error())
}
