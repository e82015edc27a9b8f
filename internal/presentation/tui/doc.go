// Package tui renders validation reports and trial verdicts for the terminal.
package tui
