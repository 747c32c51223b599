// Package ui holds terminal presentation helpers for fspec list commands.
//
// Subpackages:
//
//   - static: borderless tables rendered with lipgloss/table
//   - styles: shared colors for lifecycle states and hook flags
//
// Everything here produces plain strings. Nothing reads from the terminal.
package ui
