// Package printutils contains helpers for printing colored output.
package printutils

import "github.com/fatih/color"

var (
	// ErrFprintf is a wrapper for printing colored errors.
	ErrFprintf = color.New(color.FgRed).FprintfFunc()
	// SuccessFprintf is a wrapper for printing colored successes.
	SuccessFprintf = color.New(color.FgGreen).FprintfFunc()
	// WarnFprintf is a wrapper for printing colored warnings.
	WarnFprintf = color.New(color.FgYellow, color.Bold).FprintfFunc()
	// NeutralFprintf is a wrapper for printing neutral messages.
	NeutralFprintf = color.New().FprintfFunc()
	// HighlightSprint is a wrapper for highlighting strings with color.
	HighlightSprint = color.New(color.FgYellow).SprintFunc()
	// HighlightSprintf is a wrapper for highlighting formatted strings with color.
	HighlightSprintf = color.New(color.FgYellow).SprintfFunc()
	// BoldSprint is a wrapper for printing bold headings.
	BoldSprint = color.New(color.Bold).SprintFunc()
)
