package ot

import (
	"errors"
	"fmt"
)

// ErrFontFormat is wrapped by every error returned from Parse for a binary
// that is not a usable OpenType font.
var ErrFontFormat = errors.New("OpenType font format")

// errFontFormat produces user level errors for font parsing.
func errFontFormat(message string) error {
	return fmt.Errorf("%w: %s", ErrFontFormat, message)
}

// ErrorSeverity represents the severity level of a font parsing error.
type ErrorSeverity int

const (
	// SeverityCritical indicates an error that makes the font unusable.
	SeverityCritical ErrorSeverity = iota
	// SeverityMajor indicates an error which drops a table or lookup from the result.
	SeverityMajor
	// SeverityMinor indicates an issue that can be safely ignored in most cases.
	SeverityMinor
)

// String returns a human-readable representation of the error severity.
func (s ErrorSeverity) String() string {
	switch s {
	case SeverityCritical:
		return "CRITICAL"
	case SeverityMajor:
		return "MAJOR"
	case SeverityMinor:
		return "MINOR"
	default:
		return "UNKNOWN"
	}
}

// FontError represents an error encountered during font parsing.
// Errors are accumulated during parsing and can be inspected afterwards
// with Font.Errors.
type FontError struct {
	Table    Tag           // The OpenType table where the error occurred (e.g., "GSUB", "GPOS")
	Section  string        // Specific section within the table (e.g., "LookupList", "ScriptList")
	Issue    string        // Human-readable description of the issue
	Severity ErrorSeverity // Severity level of the error
	Offset   uint32        // Byte offset in the font file where the error occurred (0 if unknown)
}

// Error implements the error interface.
func (e FontError) Error() string {
	if e.Offset > 0 {
		return fmt.Sprintf("[%s] %s/%s at offset %d: %s", e.Severity, e.Table, e.Section, e.Offset, e.Issue)
	}
	return fmt.Sprintf("[%s] %s/%s: %s", e.Severity, e.Table, e.Section, e.Issue)
}

// Unwrap lets critical font errors match ErrFontFormat.
func (e FontError) Unwrap() error {
	if e.Severity == SeverityCritical {
		return ErrFontFormat
	}
	return nil
}

// FontWarning represents a non-critical issue encountered during font parsing,
// e.g. a lookup subtable in an unsupported format which has been skipped.
type FontWarning struct {
	Table  Tag    // The OpenType table where the warning occurred
	Issue  string // Human-readable description of the warning
	Lookup int    // Lookup index the warning refers to, -1 if not lookup related
}

// String returns a human-readable representation of the warning.
func (w FontWarning) String() string {
	if w.Lookup >= 0 {
		return fmt.Sprintf("[WARNING] %s lookup %d: %s", w.Table, w.Lookup, w.Issue)
	}
	return fmt.Sprintf("[WARNING] %s: %s", w.Table, w.Issue)
}

// errorCollector accumulates errors and warnings during font parsing.
type errorCollector struct {
	errors   []FontError
	warnings []FontWarning
}

func (ec *errorCollector) addError(table Tag, section string, issue string, severity ErrorSeverity, offset uint32) {
	ec.errors = append(ec.errors, FontError{
		Table:    table,
		Section:  section,
		Issue:    issue,
		Severity: severity,
		Offset:   offset,
	})
}

func (ec *errorCollector) addWarning(table Tag, lookup int, issue string) {
	tracer().Debugf("%s lookup %d: %s", table, lookup, issue)
	ec.warnings = append(ec.warnings, FontWarning{
		Table:  table,
		Issue:  issue,
		Lookup: lookup,
	})
}

// critical returns the first error with critical severity, if any.
func (ec *errorCollector) critical() error {
	for _, err := range ec.errors {
		if err.Severity == SeverityCritical {
			return err
		}
	}
	return nil
}
